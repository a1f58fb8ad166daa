package duplicates

import (
	"io"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/base/errors"
)

// drainReader reads every batch from out until it's closed, discarding the
// groups; it returns once out is closed so the caller can inspect errc.
func drainReader(out <-chan qnameBatch) {
	for range out {
	}
}

func TestRunReaderNonContiguousQnameIsFatal(t *testing.T) {
	// A,A,B,C,A: the second "A" group reopens a qname already closed by the
	// intervening B and C groups, which must be rejected even though it is
	// not the most recently closed group (spec.md §4.6/§7, "inconsistent
	// qname grouping" is fatal).
	var input strings.Builder
	input.WriteString(rec("A", 0, "chr1", 100) + "\n")
	input.WriteString(rec("A", 0, "chr1", 100) + "\n")
	input.WriteString(rec("B", 0, "chr1", 100) + "\n")
	input.WriteString(rec("C", 0, "chr1", 100) + "\n")
	input.WriteString(rec("A", 0, "chr1", 100) + "\n")

	out, errc := runReader(strings.NewReader(input.String()), io.Discard, defaultBatchSize)
	drainReader(out)

	err := <-errc
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not contiguous")
	assert.True(t, errors.Is(err, errors.Internal))
}

func TestRunReaderContiguousRepeatsAreFine(t *testing.T) {
	var input strings.Builder
	input.WriteString(rec("A", 0, "chr1", 100) + "\n")
	input.WriteString(rec("A", 0, "chr1", 100) + "\n")
	input.WriteString(rec("B", 0, "chr1", 200) + "\n")

	out, errc := runReader(strings.NewReader(input.String()), io.Discard, defaultBatchSize)

	var batches int
	var groups int
	for b := range out {
		batches++
		groups += len(b.groups)
	}
	require.NoError(t, <-errc)
	assert.Equal(t, 1, batches)
	assert.Equal(t, 2, groups)
}
