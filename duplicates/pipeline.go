// Package duplicates implements the reader/worker/writer pipeline that
// marks PCR/optical duplicates in a qname-grouped sequence alignment text
// stream using a shared Bloom filter.
package duplicates

import (
	"fmt"
	"io"
	"sync"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/base/sync/multierror"
	"github.com/grailbio/streammd/bloom"
)

// Opts configures one run of the pipeline.
type Opts struct {
	// NItems is the expected number of templates (the Bloom filter's n).
	NItems uint64
	// FPRate is the target false-positive rate at NItems templates.
	FPRate float64
	// MemBits overrides the Bloom filter's bit-array width. Zero means
	// derive the memory-optimal width from NItems and FPRate.
	MemBits uint64
	// Workers is the number of worker goroutines. Fewer than 1 is treated
	// as 1.
	Workers int

	Input  io.Reader
	Output io.Writer
}

// Result is the outcome of one pipeline run: merged metrics and the filter
// used, for the caller to render into a metrics file.
type Result struct {
	Metrics *Metrics
	Filter  *bloom.Filter
}

// newFilter builds the Bloom filter for opts, translating a memory-too-small
// configuration into an errors.Invalid error per spec.md §7/§9.
func newFilter(opts Opts) (*bloom.Filter, error) {
	if opts.MemBits == 0 {
		return bloom.New(opts.NItems, opts.FPRate), nil
	}
	f, err := bloom.NewWithMemory(opts.NItems, opts.FPRate, opts.MemBits)
	if err != nil {
		return nil, errors.E(errors.Invalid, err)
	}
	return f, nil
}

// Run executes one full pipeline: it reads opts.Input, forwards the header
// verbatim, fans qname-group batches out to opts.Workers goroutines that
// fingerprint and dedup each template against a shared Bloom filter, and
// writes the (possibly re-flagged) records to opts.Output. It returns once
// the entire input has been drained, whether or not an error occurred
// along the way — per spec.md §4.6, a fatal error still drains in-flight
// batches rather than abandoning them.
func Run(opts Opts) (*Result, error) {
	workers := opts.Workers
	if workers < 1 {
		workers = 1
	}

	filter, err := newFilter(opts)
	if err != nil {
		return nil, err
	}

	batchesIn, readErrc := runReader(opts.Input, opts.Output, defaultBatchSize)
	batchesOut := make(chan qnameBatch, workers*4)

	errs := multierror.NewMultiError(workers + 2)
	workerMetrics := make([]*Metrics, workers)

	var workerGroup sync.WaitGroup
	for i := 0; i < workers; i++ {
		workerMetrics[i] = newMetrics()
		workerGroup.Add(1)
		go func(i int) {
			defer workerGroup.Done()
			if err := runWorker(batchesIn, batchesOut, filter, workerMetrics[i]); err != nil {
				log.Error.Printf("duplicates: worker %d: %v", i, err)
				errs.Add(fmt.Errorf("worker %d: %w", i, err))
			}
		}(i)
	}

	go func() {
		workerGroup.Wait()
		close(batchesOut)
	}()

	if err := runWriter(opts.Output, batchesOut); err != nil {
		errs.Add(fmt.Errorf("writer: %w", err))
	}
	if err := <-readErrc; err != nil {
		errs.Add(fmt.Errorf("reader: %w", err))
	}

	merged := newMetrics()
	for _, wm := range workerMetrics {
		merged.Add(wm)
	}
	result := &Result{Metrics: merged, Filter: filter}

	if err := errs.Err(); err != nil {
		return result, err
	}
	return result, nil
}
