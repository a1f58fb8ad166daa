// Package bloom implements a space-optimal, thread-safe Bloom filter keyed
// by arbitrary byte strings.
//
// Sizing follows the standard analytic formulas for a target item count n
// and false-positive rate p. Indexing uses Kirsch-Mitzenmacher double
// hashing over a single 128-bit hash of the key, so membership tests and
// insertions cost one hash computation regardless of k. The underlying bit
// array supports concurrent, lock-free insertion: multiple goroutines may
// call Filter.Add concurrently without external synchronization.
package bloom
