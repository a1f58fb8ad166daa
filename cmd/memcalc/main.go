// memcalc prints the Bloom filter memory requirement and hash count k for
// n items at a target maximum false-positive rate p.
//
// Usage:
//
//	memcalc N_ITEMS FP_RATE [MEM]
//
// MEM is a human-friendly size such as "4GiB"; if omitted, the
// memory-optimal (minimum) value is calculated instead.
package main

import (
	"flag"
	"fmt"
	"os"
	"strconv"

	"github.com/dustin/go-humanize"
	"github.com/grailbio/base/log"
	"github.com/grailbio/streammd/bloom"
)

func main() {
	log.SetFlags(0)
	flag.Usage = func() {
		os.Stderr.WriteString(`Usage: memcalc N_ITEMS FP_RATE [MEM]

Print Bloom filter memory requirements and number of hash functions k for
N_ITEMS items and target maximum false positive rate FP_RATE.

Compare the values of mem and k:
  memcalc 1000000000 1e-6       # calculate minimum mem required
  memcalc 1000000000 1e-6 4GiB  # specify 4GiB

MEM is a human-friendly size. If not specified, the memory-optimal
(minimum) value will be calculated. The advantage to specifying more than
this is that the number of hash functions k required to meet the target
false-positive rate p is reduced, giving better performance. k is very
sensitive to m around the minimum; as a rule of thumb allowing just 1.25x
the minimum mem roughly halves the value of k. A warning is printed if
n, p cannot be satisfied with the specified memory.
`)
		flag.PrintDefaults()
	}
	flag.Parse()

	args := flag.Args()
	if len(args) < 2 || len(args) > 3 {
		flag.Usage()
		os.Exit(2)
	}

	n, err := strconv.ParseUint(args[0], 10, 64)
	if err != nil {
		log.Error.Printf("memcalc: invalid N_ITEMS %q: %v", args[0], err)
		os.Exit(2)
	}
	p, err := strconv.ParseFloat(args[1], 64)
	if err != nil {
		log.Error.Printf("memcalc: invalid FP_RATE %q: %v", args[1], err)
		os.Exit(2)
	}

	var (
		m       uint64
		k       uint32
		memText string
	)
	if len(args) == 3 {
		memText = args[2]
		memBytes, err := humanize.ParseBytes(memText)
		if err != nil {
			log.Error.Printf("memcalc: invalid MEM %q: %v", memText, err)
			os.Exit(2)
		}
		m = memBytes * 8
		k, err = bloom.SizeForMemory(n, p, m)
		if err != nil {
			log.Error.Print(err)
			os.Exit(1)
		}
	} else {
		m, k = bloom.SizeFor(n, p)
		memText = humanize.IBytes(m / 8)
	}

	log.Info.Printf("n=%d; p=%g", n, p)
	fmt.Printf("mem=%s; k=%d\n", memText, k)
}
