package duplicates

import (
	"bufio"
	"io"

	"github.com/grailbio/base/errors"
)

// runWriter drains processed batches from in and writes them to w. Record
// order within a batch (and within a qname group) is preserved; across
// batches produced by different workers, order is not guaranteed, per
// spec.md §5.
func runWriter(w io.Writer, in <-chan qnameBatch) error {
	bw := bufio.NewWriterSize(w, 1<<20)
	for batch := range in {
		for _, group := range batch.groups {
			for _, r := range group {
				if _, err := bw.WriteString(r.String()); err != nil {
					return WithKind(errors.IO, err)
				}
				if err := bw.WriteByte('\n'); err != nil {
					return WithKind(errors.IO, err)
				}
			}
		}
	}
	return WithKind(errors.IO, bw.Flush())
}
