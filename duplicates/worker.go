package duplicates

import (
	"fmt"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/streammd/bloom"
	"github.com/grailbio/streammd/fingerprint"
	"github.com/grailbio/streammd/samrec"
)

// runWorker drains batches from in, fingerprints and dedups each qname
// group against filter, and forwards every processed batch to out. Once a
// fatal error is encountered it keeps draining in without further
// processing or forwarding, so the reader never blocks sending to a full
// channel while the pipeline unwinds (spec.md §4.6: a fatal error still
// drains in-flight batches).
func runWorker(in <-chan qnameBatch, out chan<- qnameBatch, filter *bloom.Filter, m *Metrics) error {
	var firstErr error
	for batch := range in {
		if firstErr != nil {
			continue
		}
		for _, group := range batch.groups {
			if err := processGroup(group, filter, m); err != nil {
				firstErr = err
				break
			}
		}
		if firstErr == nil {
			out <- batch
		}
	}
	return firstErr
}

// processGroup implements the per-template decision in spec.md §4.6: skip
// unmapped templates, otherwise consult the Bloom filter with at-most-once
// insertion semantics and mark every record in the group if the template
// was already present.
func processGroup(group []*samrec.Record, filter *bloom.Filter, m *Metrics) error {
	m.ReadsProcessed += uint64(len(group))
	for _, r := range group {
		if r.IsSecondary() || r.IsSupplementary() {
			m.SecondarySupplementary++
		}
	}

	key, ok, err := fingerprint.Fingerprint(group)
	if err != nil {
		return WithKind(errors.Internal, fmt.Errorf("duplicates: %w", err))
	}
	if !ok {
		m.TemplatesUnmapped++
		return nil
	}

	m.TemplatesProcessed++
	if !filter.Add(key) {
		m.TemplatesMarkedDuplicate++
		for _, r := range group {
			r.MarkDuplicate()
		}
	}
	return nil
}
