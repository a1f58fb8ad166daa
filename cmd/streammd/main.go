// streammd marks PCR and optical duplicate alignment records in a
// queryname-grouped sequence alignment text stream.
//
// Usage: streammd [flags] [--input PATH] [--output PATH]
package main

import (
	"flag"
	"os"

	"github.com/grailbio/base/errors"
	"github.com/grailbio/base/log"
	"github.com/grailbio/streammd/duplicates"
)

var (
	nItemsFlag  uint64
	fprateFlag  float64
	memFlag     uint64
	workersFlag int
	metricsFlag string
	inputFlag   string
	outputFlag  string
)

// flagVars registers both the short and long spelling of each flag against
// the same variable, the way stdlib flag aliases a short form when a
// program's contract (here spec.md §6) promises one.
func flagVars() {
	for _, name := range []string{"n", "n-items"} {
		flag.Uint64Var(&nItemsFlag, name, 1e9, "expected number of templates")
	}
	for _, name := range []string{"p", "fp-rate"} {
		flag.Float64Var(&fprateFlag, name, 1e-6, "target false-positive rate at -n templates")
	}
	for _, name := range []string{"m", "mem"} {
		flag.Uint64Var(&memFlag, name, 0, "Bloom filter memory in bytes; 0 derives the memory-optimal width from -n and -p")
	}
	for _, name := range []string{"w", "workers"} {
		flag.IntVar(&workersFlag, name, 1, "number of worker goroutines")
	}
	flag.StringVar(&metricsFlag, "metrics", "", "path to write run metrics; empty disables metrics output")
	flag.StringVar(&inputFlag, "input", "-", "input path; - or omitted means standard input")
	flag.StringVar(&outputFlag, "output", "-", "output path; - or omitted means standard output")
}

func main() {
	log.SetFlags(log.Ldate | log.Ltime | log.Lmicroseconds | log.Lshortfile)
	flagVars()
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage: streammd [flags]

streammd reads a queryname-grouped sequence alignment text stream,
marks PCR and optical duplicate templates using a probabilistic set
membership filter, and writes the (possibly re-flagged) stream back
out. Header lines are forwarded unchanged. Input and output default to
standard input and standard output.
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	input, err := openInput(inputFlag)
	if err != nil {
		log.Error.Printf("streammd: %v", err)
		os.Exit(duplicates.ExitCode(err))
	}
	defer input.Close()

	output, err := openOutput(outputFlag)
	if err != nil {
		log.Error.Printf("streammd: %v", err)
		os.Exit(duplicates.ExitCode(err))
	}
	defer output.Close()

	opts := duplicates.Opts{
		NItems:  nItemsFlag,
		FPRate:  fprateFlag,
		MemBits: memFlag * 8,
		Workers: workersFlag,
		Input:   input,
		Output:  output,
	}

	result, err := duplicates.Run(opts)
	if result != nil && metricsFlag != "" {
		if werr := duplicates.WriteMetricsFile(metricsFlag, result.Metrics, result.Filter); werr != nil {
			log.Error.Printf("streammd: %v", werr)
			if err == nil {
				err = werr
			}
		}
	}
	if err != nil {
		log.Error.Printf("streammd: %v", err)
		os.Exit(duplicates.ExitCode(err))
	}
}

// openInput opens path for reading, treating "" and "-" as standard input.
func openInput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdin, nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, errors.E(errors.IO, err, "couldn't open input:", path)
	}
	return f, nil
}

// openOutput opens path for writing, treating "" and "-" as standard output.
func openOutput(path string) (*os.File, error) {
	if path == "" || path == "-" {
		return os.Stdout, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, errors.E(errors.IO, err, "couldn't create output:", path)
	}
	return f, nil
}
