package duplicates

import (
	"fmt"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/streammd/bloom"
)

// Metrics accumulates the monotonic counters named in spec.md §4.7. A
// Metrics is owned by a single worker goroutine while a run is in flight and
// merged into a run-level total via Add once all workers finish, the same
// per-worker-then-merge shape as grailbio/bio/markduplicates.Metrics.
type Metrics struct {
	TemplatesProcessed       uint64
	TemplatesMarkedDuplicate uint64
	TemplatesUnmapped        uint64
	SecondarySupplementary   uint64
	ReadsProcessed           uint64
}

func newMetrics() *Metrics { return &Metrics{} }

// Add merges the counters in other into m.
func (m *Metrics) Add(other *Metrics) {
	m.TemplatesProcessed += other.TemplatesProcessed
	m.TemplatesMarkedDuplicate += other.TemplatesMarkedDuplicate
	m.TemplatesUnmapped += other.TemplatesUnmapped
	m.SecondarySupplementary += other.SecondarySupplementary
	m.ReadsProcessed += other.ReadsProcessed
}

// Summary renders the plain-text key/value metrics file contents required
// by spec.md §4.7 and §6.
func Summary(m *Metrics, f *bloom.Filter) string {
	return fmt.Sprintf(
		"TEMPLATES_PROCESSED\t%d\n"+
			"TEMPLATES_MARKED_DUPLICATE\t%d\n"+
			"TEMPLATES_UNMAPPED\t%d\n"+
			"SECONDARY_OR_SUPPLEMENTARY_READS\t%d\n"+
			"READS_PROCESSED\t%d\n"+
			"N\t%d\n"+
			"P\t%g\n"+
			"M\t%d\n"+
			"K\t%d\n"+
			"ESTIMATED_CARDINALITY\t%d\n"+
			"ESTIMATED_FALSE_POSITIVE_RATE\t%g\n",
		m.TemplatesProcessed, m.TemplatesMarkedDuplicate, m.TemplatesUnmapped,
		m.SecondarySupplementary, m.ReadsProcessed,
		f.N(), f.P(), f.M(), f.K(),
		f.CountEstimate(), f.EstimatedFalsePositiveRate())
}

// WriteMetricsFile writes the run summary to path, in the spirit of
// markduplicates.writeMetrics: os.Create plus errors.E wrapping, with the
// close error folded in if the write itself succeeded.
func WriteMetricsFile(path string, m *Metrics, f *bloom.Filter) (err error) {
	file, err := os.Create(path)
	if err != nil {
		return errors.E(errors.IO, err, "couldn't create metrics file:", path)
	}
	defer func() {
		if cerr := file.Close(); err == nil && cerr != nil {
			err = errors.E(errors.IO, cerr, "error closing metrics file:", path)
		}
	}()
	if _, err = file.WriteString(Summary(m, f)); err != nil {
		return errors.E(errors.IO, err, "error writing metrics file:", path)
	}
	return nil
}
