// Package samrec parses and re-emits tab-separated alignment records from a
// sequence alignment text stream, preserving every byte except the flag
// field when a record is marked as a duplicate.
package samrec

import (
	"fmt"
	"strconv"
	"strings"
)

// Flag is the 16-bit alignment flag field. Bit layout follows the standard
// alignment format.
type Flag uint16

const (
	Paired Flag = 1 << iota
	ProperPair
	Unmapped
	MateUnmapped
	Reverse
	MateReverse
	Read1
	Read2
	Secondary
	QCFail
	Duplicate
	Supplementary
)

// minFields is the number of mandatory tab-separated fields in a record
// line: QNAME, FLAG, RNAME, POS, MAPQ, CIGAR, RNEXT, PNEXT, TLEN, SEQ, QUAL.
const minFields = 11

const (
	fieldQName = iota
	fieldFlag
	fieldRName
	fieldPos
	fieldMapQ
	fieldCigar
	fieldRNext
	fieldPNext
	fieldTLen
	fieldSeq
	fieldQual
)

// Record is a parsed alignment line. Fields are kept as their original
// text so that pass-through bytes are preserved exactly; only SetDuplicate
// rewrites a field (FLAG).
type Record struct {
	fields []string
}

// Parse splits a single non-header record line into its fields. The line
// must carry at least the 11 mandatory SAM-style fields; anything past
// field 11 (optional tags) is preserved verbatim as extra fields.
func Parse(line string) (*Record, error) {
	fields := strings.Split(line, "\t")
	if len(fields) < minFields {
		return nil, fmt.Errorf("samrec: record has %d fields, want at least %d: %q", len(fields), minFields, line)
	}
	if _, err := strconv.ParseUint(fields[fieldFlag], 10, 16); err != nil {
		return nil, fmt.Errorf("samrec: invalid flag field %q: %w", fields[fieldFlag], err)
	}
	if _, err := strconv.Atoi(fields[fieldPos]); err != nil {
		return nil, fmt.Errorf("samrec: invalid pos field %q: %w", fields[fieldPos], err)
	}
	return &Record{fields: fields}, nil
}

// QName returns the query name (field 1).
func (r *Record) QName() string { return r.fields[fieldQName] }

// Flag returns the parsed 16-bit flag field.
func (r *Record) Flag() Flag {
	v, _ := strconv.ParseUint(r.fields[fieldFlag], 10, 16)
	return Flag(v)
}

// SetFlag rewrites the flag field. This is the only field Parse guarantees
// can be safely mutated and re-serialized.
func (r *Record) SetFlag(f Flag) {
	r.fields[fieldFlag] = strconv.FormatUint(uint64(f), 10)
}

// MarkDuplicate sets the 0x400 duplicate bit on the record's flag field.
func (r *Record) MarkDuplicate() {
	r.SetFlag(r.Flag() | Duplicate)
}

// RName returns the reference name (field 3).
func (r *Record) RName() string { return r.fields[fieldRName] }

// Pos returns the 1-based leftmost mapped position (field 4).
func (r *Record) Pos() int {
	v, _ := strconv.Atoi(r.fields[fieldPos])
	return v
}

// Cigar returns the raw cigar string (field 6).
func (r *Record) Cigar() string { return r.fields[fieldCigar] }

// IsUnmapped reports whether the 0x4 flag bit is set.
func (r *Record) IsUnmapped() bool { return r.Flag()&Unmapped != 0 }

// IsReverse reports whether the 0x10 flag bit is set.
func (r *Record) IsReverse() bool { return r.Flag()&Reverse != 0 }

// IsSecondary reports whether the 0x100 flag bit is set.
func (r *Record) IsSecondary() bool { return r.Flag()&Secondary != 0 }

// IsSupplementary reports whether the 0x800 flag bit is set.
func (r *Record) IsSupplementary() bool { return r.Flag()&Supplementary != 0 }

// IsRead1 reports whether the 0x40 flag bit is set.
func (r *Record) IsRead1() bool { return r.Flag()&Read1 != 0 }

// IsPaired reports whether the 0x1 flag bit is set.
func (r *Record) IsPaired() bool { return r.Flag()&Paired != 0 }

// String serializes the record back to a tab-separated line, byte-for-byte
// identical to the input except for any field mutated via SetFlag.
func (r *Record) String() string {
	return strings.Join(r.fields, "\t")
}
