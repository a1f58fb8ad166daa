package duplicates

import (
	"bufio"
	"strconv"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// rec builds one single-end mapped record line: qname, flag, rname, pos.
func rec(qname string, flag int, rname string, pos int) string {
	return strings.Join([]string{
		qname, strconv.Itoa(flag), rname, strconv.Itoa(pos), "60", "50M", "*", "0", "0", "*", "*",
	}, "\t")
}

func flagField(line string) int {
	fields := strings.Split(line, "\t")
	v := 0
	for _, c := range fields[1] {
		v = v*10 + int(c-'0')
	}
	return v
}

// runPipeline builds an input stream from identically-fingerprinted and
// distinct single-end templates and runs Run with the given worker count.
func runPipeline(t *testing.T, workers int) ([]string, *Result) {
	t.Helper()

	var input strings.Builder
	input.WriteString("@HD\tVN:1.6\tSO:queryname\n")
	// three templates at the same coordinate: one original, two duplicates.
	input.WriteString(rec("read-a", 0, "chr1", 100) + "\n")
	input.WriteString(rec("read-b", 0, "chr1", 100) + "\n")
	input.WriteString(rec("read-c", 0, "chr1", 100) + "\n")
	// one template at a distinct coordinate: stays unmarked.
	input.WriteString(rec("read-d", 0, "chr1", 200) + "\n")

	var output strings.Builder
	opts := Opts{
		NItems:  100,
		FPRate:  1e-6,
		Workers: workers,
		Input:   strings.NewReader(input.String()),
		Output:  &output,
	}
	result, err := Run(opts)
	require.NoError(t, err)

	var lines []string
	scanner := bufio.NewScanner(strings.NewReader(output.String()))
	for scanner.Scan() {
		line := scanner.Text()
		if line == "" || line[0] == '@' {
			continue
		}
		lines = append(lines, line)
	}
	return lines, result
}

func TestPipelineSingleWorker(t *testing.T) {
	lines, result := runPipeline(t, 1)
	require.Len(t, lines, 4)

	marked := 0
	for _, line := range lines {
		if flagField(line)&int(1<<10) != 0 {
			marked++
		}
	}
	assert.Equal(t, 2, marked, "exactly two of the three coincident templates are marked duplicate")
	assert.EqualValues(t, 4, result.Metrics.TemplatesProcessed)
	assert.EqualValues(t, 2, result.Metrics.TemplatesMarkedDuplicate)
}

func TestPipelineMultipleWorkers(t *testing.T) {
	lines, result := runPipeline(t, 4)
	require.Len(t, lines, 4)

	marked := 0
	for _, line := range lines {
		if flagField(line)&int(1<<10) != 0 {
			marked++
		}
	}
	assert.Equal(t, 2, marked)
	assert.EqualValues(t, 4, result.Metrics.TemplatesProcessed)
	assert.EqualValues(t, 2, result.Metrics.TemplatesMarkedDuplicate)
	assert.EqualValues(t, 0, result.Metrics.TemplatesUnmapped)
}

func TestPipelineHeaderPassthrough(t *testing.T) {
	var output strings.Builder
	opts := Opts{
		NItems:  10,
		FPRate:  1e-6,
		Workers: 2,
		Input:   strings.NewReader("@HD\tVN:1.6\n@SQ\tSN:chr1\tLN:1000\n" + rec("read-a", 0, "chr1", 1) + "\n"),
		Output:  &output,
	}
	_, err := Run(opts)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(output.String(), "@HD\tVN:1.6\n@SQ\tSN:chr1\tLN:1000\n"))
}

func TestPipelineUnmappedTemplateNotConsumed(t *testing.T) {
	var output strings.Builder
	opts := Opts{
		NItems: 10,
		FPRate: 1e-6,
		Input:  strings.NewReader(rec("read-a", samrecUnmappedFlag, "*", 0) + "\n"),
		Output: &output,
	}
	res, err := Run(opts)
	require.NoError(t, err)
	assert.EqualValues(t, 1, res.Metrics.TemplatesUnmapped)
	assert.EqualValues(t, 0, res.Metrics.TemplatesProcessed)
}

const samrecUnmappedFlag = 4
