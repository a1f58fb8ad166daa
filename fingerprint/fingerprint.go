// Package fingerprint derives the canonical deduplication key for a group
// of alignment records sharing one query name.
package fingerprint

import (
	"bytes"
	"encoding/binary"
	"fmt"

	"github.com/grailbio/streammd/samrec"
)

// strand records forward/reverse orientation with forward < reverse so the
// canonical ordering in spec terms ("forward<reverse on strand") falls out
// of a plain numeric comparison.
type strand uint8

const (
	forward strand = iota
	reverse
)

// kind tags which shape of fingerprint was produced, so that a single-end,
// paired, and mixed-mappedness template can never collide on the same key
// even if their coordinate tuples happen to match byte-for-byte.
type kind byte

const (
	kindSingle kind = 'S'
	kindPaired kind = 'P'
	kindMixed  kind = 'M'
)

type coord struct {
	ref    string
	pos    int
	strand strand
}

// less implements the total order from spec.md §4.4: lexicographic on
// ref_name, numeric on coord, forward < reverse on strand.
func (c coord) less(o coord) bool {
	if c.ref != o.ref {
		return c.ref < o.ref
	}
	if c.pos != o.pos {
		return c.pos < o.pos
	}
	return c.strand < o.strand
}

func (c coord) write(buf *bytes.Buffer) {
	buf.WriteString(c.ref)
	buf.WriteByte(0)
	var posBuf [8]byte
	binary.LittleEndian.PutUint64(posBuf[:], uint64(int64(c.pos)))
	buf.Write(posBuf[:])
	buf.WriteByte(byte(c.strand))
}

// unclippedCoord computes the 5'-soft-clip-corrected reference coordinate
// for one mapped primary alignment record, per spec.md §4.4.
func unclippedCoord(r *samrec.Record) (coord, error) {
	ops, err := samrec.ParseCigar(r.Cigar())
	if err != nil {
		return coord{}, err
	}
	pos := r.Pos()
	if !r.IsReverse() {
		lead := samrec.LeadingSoftClip(ops)
		return coord{ref: r.RName(), pos: pos - lead, strand: forward}, nil
	}
	trail := samrec.TrailingSoftClip(ops)
	span := samrec.ReferenceSpan(ops)
	return coord{ref: r.RName(), pos: pos + span + trail - 1, strand: reverse}, nil
}

// Fingerprint derives the canonical deduplication key for group, a set of
// records sharing one query name. ok is false when the template is not
// eligible for duplicate marking (every primary alignment is unmapped);
// callers should forward such templates unchanged and count them as
// unmapped rather than treat !ok as an error.
func Fingerprint(group []*samrec.Record) (key []byte, ok bool, err error) {
	if len(group) == 0 {
		return nil, false, fmt.Errorf("fingerprint: empty qname group")
	}

	var primaries []*samrec.Record
	for _, r := range group {
		if !r.IsSecondary() && !r.IsSupplementary() {
			primaries = append(primaries, r)
		}
	}
	if len(primaries) == 0 {
		return nil, false, fmt.Errorf("fingerprint: qname group %q has no primary alignment", group[0].QName())
	}
	if len(primaries) > 2 {
		return nil, false, fmt.Errorf("fingerprint: qname group %q has %d primary alignments, want 1 or 2", group[0].QName(), len(primaries))
	}

	var mapped []*samrec.Record
	for _, r := range primaries {
		if !r.IsUnmapped() {
			mapped = append(mapped, r)
		}
	}
	if len(mapped) == 0 {
		return nil, false, nil
	}

	var buf bytes.Buffer
	switch len(primaries) {
	case 1:
		c, err := unclippedCoord(primaries[0])
		if err != nil {
			return nil, false, err
		}
		buf.WriteByte(byte(kindSingle))
		c.write(&buf)
	case 2:
		if len(mapped) == 1 {
			c, err := unclippedCoord(mapped[0])
			if err != nil {
				return nil, false, err
			}
			buf.WriteByte(byte(kindMixed))
			c.write(&buf)
		} else {
			c1, err := unclippedCoord(primaries[0])
			if err != nil {
				return nil, false, err
			}
			c2, err := unclippedCoord(primaries[1])
			if err != nil {
				return nil, false, err
			}
			if c2.less(c1) {
				c1, c2 = c2, c1
			}
			buf.WriteByte(byte(kindPaired))
			c1.write(&buf)
			c2.write(&buf)
		}
	}
	return buf.Bytes(), true, nil
}
