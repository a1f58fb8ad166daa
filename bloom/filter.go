package bloom

import (
	"fmt"
	"math"
)

// maxK bounds the search for a hash count satisfying a memory-constrained
// sizing request. It matches the original implementation's search bound;
// no realistic (n, p) needs more than a handful of hash functions, but the
// search has to stop somewhere.
const maxK = 100

// SizeFor returns the memory-optimal bit-array width m and hash count k for
// a filter holding n items at false-positive rate p. This is the "m_k_min"
// diagnostic named in the design: it performs no allocation.
//
// m is the smallest integer satisfying m >= -n*ln(p) / (ln 2)^2. k is
// round(m/n * ln 2) in theory, but the published known-answer values for
// this system resolve to ceil(m/n * ln 2) rather than the nearest integer,
// so ceil is what this function computes; see DESIGN.md.
func SizeFor(n uint64, p float64) (m uint64, k uint32) {
	if n == 0 {
		n = 1
	}
	nf := float64(n)
	mf := math.Ceil(-nf * math.Log(p) / (math.Ln2 * math.Ln2))
	m = uint64(mf)
	kf := math.Ceil(mf / nf * math.Ln2)
	if kf < 1 {
		kf = 1
	}
	k = uint32(kf)
	return m, k
}

// NoMemorySolutionError is returned by SizeForMemory and NewWithMemory when
// no k in [1, maxK] achieves the target false-positive rate within the
// requested memory budget. MinBits is the theoretical minimum m for (n, p),
// for the caller to suggest as a replacement --mem value.
type NoMemorySolutionError struct {
	N       uint64
	P       float64
	MemBits uint64
	MinBits uint64
}

func (e *NoMemorySolutionError) Error() string {
	return fmt.Sprintf("bloom: no solution for mem=%d bits with n=%d p=%g (k<=%d); minimum mem is %d bits",
		e.MemBits, e.N, e.P, maxK, e.MinBits)
}

// SizeForMemory returns the hash count k that best approaches false-positive
// rate p for n items within a fixed bit-array width memBits. Unlike
// SizeFor, there is no closed-form k, so this evaluates the false-positive
// formula for k = 1..maxK and returns the first k that satisfies p.
func SizeForMemory(n uint64, p float64, memBits uint64) (k uint32, err error) {
	if n == 0 {
		n = 1
	}
	m := float64(memBits)
	nf := float64(n)
	for kk := 1; kk <= maxK; kk++ {
		kf := float64(kk)
		fpr := math.Pow(1-math.Pow(1-1/m, kf*nf), kf)
		if fpr < p {
			return uint32(kk), nil
		}
	}
	_, minBits := SizeFor(n, p)
	return 0, &NoMemorySolutionError{N: n, P: p, MemBits: memBits, MinBits: uint64(minBits)}
}

// Filter is a space-optimal, thread-safe Bloom filter. Once constructed, m
// and k never change; the underlying bit array is monotonically
// non-decreasing (bits only ever go 0->1).
type Filter struct {
	n    uint64
	p    float64
	m    uint64
	k    uint32
	bits *bitArray
	pow2 bool
}

// New constructs a Filter sized for n expected items at false-positive rate
// p, using the memory-optimal (m, k) from SizeFor.
func New(n uint64, p float64) *Filter {
	m, k := SizeFor(n, p)
	return newFilter(n, p, m, k)
}

// NewWithMemory constructs a Filter whose bit array occupies exactly
// memBits bits, choosing the best k for n items at false-positive rate p
// within that budget. It returns a *NoMemorySolutionError if memBits is too
// small to meet p for any k <= maxK.
func NewWithMemory(n uint64, p float64, memBits uint64) (*Filter, error) {
	k, err := SizeForMemory(n, p, memBits)
	if err != nil {
		return nil, err
	}
	return newFilter(n, p, memBits, k), nil
}

func newFilter(n uint64, p float64, m uint64, k uint32) *Filter {
	if k < 1 {
		k = 1
	}
	logCPUFeatures()
	return &Filter{
		n:    n,
		p:    p,
		m:    m,
		k:    k,
		bits: newBitArray(m),
		pow2: m&(m-1) == 0,
	}
}

func (f *Filter) index(h hasher, i uint64) uint64 {
	v := h.index(i)
	if f.pow2 {
		return v & (f.m - 1)
	}
	return v % f.m
}

// Add inserts key and reports whether it was new: true if at least one of
// the k bits transitioned 0->1 (the key was definitely not present before),
// false if all k bits were already set ("probably present"). This is the
// at-most-once insertion signal the duplicate-marking pipeline relies on:
// exactly one caller racing to add the same novel key observes true.
func (f *Filter) Add(key []byte) bool {
	h := newHasher(key)
	added := false
	for i := uint64(0); i < uint64(f.k); i++ {
		if f.bits.setIfUnset(f.index(h, i)) {
			added = true
		}
	}
	return added
}

// Contains reports whether key might be present. False positives are
// possible; false negatives are not; it always returns true for any key
// previously passed to a successful Add.
func (f *Filter) Contains(key []byte) bool {
	h := newHasher(key)
	for i := uint64(0); i < uint64(f.k); i++ {
		if !f.bits.test(f.index(h, i)) {
			return false
		}
	}
	return true
}

// CountEstimate returns an estimate of the number of distinct items added,
// derived from the fraction of bits set.
//
// Ref: Swamidass & Baldi (2007) https://doi.org/10.1021/ci600358f
func (f *Filter) CountEstimate() uint64 {
	x := f.bits.popCount()
	if x == 0 {
		return 0
	}
	m := float64(f.m)
	k := float64(f.k)
	estimate := -(m / k) * math.Log(1-float64(x)/m)
	if estimate < 0 || math.IsNaN(estimate) || math.IsInf(estimate, 0) {
		return f.bits.len()
	}
	return uint64(math.Round(estimate))
}

// EstimatedFalsePositiveRate estimates the current false-positive rate
// given the items actually stored so far (via CountEstimate), using the
// theoretical bound (1 - e^(-kn/m))^k.
func (f *Filter) EstimatedFalsePositiveRate() float64 {
	x := f.CountEstimate()
	if x == 0 {
		return 0
	}
	m := float64(f.m)
	k := float64(f.k)
	return math.Pow(1-math.Exp(-k*float64(x)/m), k)
}

// N returns the configured expected item count.
func (f *Filter) N() uint64 { return f.n }

// P returns the configured target false-positive rate.
func (f *Filter) P() float64 { return f.p }

// M returns the bit-array width.
func (f *Filter) M() uint64 { return f.m }

// K returns the number of hash functions used per key.
func (f *Filter) K() uint32 { return f.k }
