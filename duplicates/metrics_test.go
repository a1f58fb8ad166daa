package duplicates

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/grailbio/streammd/bloom"
)

func TestMetricsAdd(t *testing.T) {
	a := &Metrics{TemplatesProcessed: 1, TemplatesMarkedDuplicate: 1, ReadsProcessed: 2}
	b := &Metrics{TemplatesProcessed: 3, TemplatesUnmapped: 1, ReadsProcessed: 4}
	a.Add(b)
	assert.EqualValues(t, 4, a.TemplatesProcessed)
	assert.EqualValues(t, 1, a.TemplatesMarkedDuplicate)
	assert.EqualValues(t, 1, a.TemplatesUnmapped)
	assert.EqualValues(t, 6, a.ReadsProcessed)
}

func TestWriteMetricsFileRoundTrips(t *testing.T) {
	m := &Metrics{TemplatesProcessed: 10, TemplatesMarkedDuplicate: 2}
	f := bloom.New(100, 1e-6)
	f.Add([]byte("a"))

	path := filepath.Join(t.TempDir(), "metrics.txt")
	require.NoError(t, WriteMetricsFile(path, m, f))

	contents, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(contents), "TEMPLATES_PROCESSED\t10\n")
	assert.Contains(t, string(contents), "TEMPLATES_MARKED_DUPLICATE\t2\n")
}

func TestWriteMetricsFileBadPath(t *testing.T) {
	m := &Metrics{}
	f := bloom.New(10, 1e-6)
	err := WriteMetricsFile(filepath.Join(t.TempDir(), "nope", "metrics.txt"), m, f)
	assert.Error(t, err)
	assert.Equal(t, 1, ExitCode(err))
}
