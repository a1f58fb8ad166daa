package duplicates

import (
	"bufio"
	"fmt"
	"io"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/streammd/samrec"
)

// defaultBatchSize is the number of qname-group batches coalesced onto one
// work-queue item, matching the original implementation's batching constant
// (streammd markdups.py's samrecords(batchsize=50)); it amortizes channel
// overhead without holding excessive records in flight.
const defaultBatchSize = 50

// qnameBatch is the unit of work handed to a worker: a run of complete
// qname groups. Groups, not individual records, are the unit of
// parallelism (spec.md §4.6).
type qnameBatch struct {
	groups [][]*samrec.Record
}

// runReader forwards header lines verbatim to w, then reads records from r,
// accumulating consecutive same-qname records into groups and grouping runs
// of groups into batches on the returned channel. The channel is closed at
// EOF or on the first fatal error, which is also sent on the returned error
// channel.
func runReader(r io.Reader, w io.Writer, batchSize int) (<-chan qnameBatch, <-chan error) {
	out := make(chan qnameBatch, 64)
	errc := make(chan error, 1)

	go func() {
		defer close(out)
		defer close(errc)

		scanner := bufio.NewScanner(r)
		scanner.Buffer(make([]byte, 0, 64*1024), 64*1024*1024)

		var (
			group     []*samrec.Record
			groupID   string
			haveGroup bool
			closed    = make(map[string]struct{})
			batch     [][]*samrec.Record
		)

		flush := func() {
			if !haveGroup {
				return
			}
			batch = append(batch, group)
			if len(batch) >= batchSize {
				out <- qnameBatch{groups: batch}
				batch = nil
			}
			closed[groupID] = struct{}{}
			group = nil
			haveGroup = false
		}

		for scanner.Scan() {
			line := scanner.Text()
			if line == "" {
				continue
			}
			if line[0] == '@' {
				if _, err := io.WriteString(w, line+"\n"); err != nil {
					errc <- WithKind(errors.IO, fmt.Errorf("duplicates: writing header: %w", err))
					return
				}
				continue
			}
			rec, err := samrec.Parse(line)
			if err != nil {
				errc <- fmt.Errorf("duplicates: %w", err)
				return
			}
			qname := rec.QName()
			if haveGroup && qname == groupID {
				group = append(group, rec)
				continue
			}
			flush()
			if _, seen := closed[qname]; seen {
				errc <- WithKind(errors.Internal, fmt.Errorf("duplicates: qname group %q is not contiguous in input", qname))
				return
			}
			groupID = qname
			group = []*samrec.Record{rec}
			haveGroup = true
		}
		flush()
		if len(batch) > 0 {
			out <- qnameBatch{groups: batch}
		}
		if err := scanner.Err(); err != nil {
			errc <- WithKind(errors.IO, fmt.Errorf("duplicates: reading input: %w", err))
		}
	}()

	return out, errc
}
