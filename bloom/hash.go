package bloom

import (
	"sync"

	"github.com/grailbio/base/log"
	"github.com/klauspost/cpuid/v2"
	"github.com/zeebo/xxh3"
)

var logFeaturesOnce sync.Once

// logCPUFeatures emits a one-time debug line describing whether the running
// CPU has the vector extensions xxh3's fast path wants. It never changes
// behavior; it only helps explain throughput differences across machines,
// the same role gloom's doc comments describe for GOAMD64 tuning.
func logCPUFeatures() {
	logFeaturesOnce.Do(func() {
		log.Debug.Printf("bloom: cpu=%s avx2=%v sse2=%v", cpuid.CPU.BrandName,
			cpuid.CPU.Supports(cpuid.AVX2), cpuid.CPU.Supports(cpuid.SSE2))
	})
}

// hasher produces k independent uniform hash values from one key via
// Kirsch-Mitzenmacher double hashing: a single 128-bit hash of the key is
// split into (h1, h2), and the i-th index is h1 + i*h2.
//
// Ref: Kirsch & Mitzenmacher (2006) https://doi.org/10.1007/11841036_42
type hasher struct {
	h1, h2 uint64
}

func newHasher(key []byte) hasher {
	h := xxh3.Hash128(key)
	return hasher{h1: h.Hi, h2: h.Lo}
}

// index returns the i-th hash value, unreduced (callers apply mod-m or
// mask-and reduction depending on whether m is a power of two).
func (h hasher) index(i uint64) uint64 {
	return h.h1 + i*h.h2
}
