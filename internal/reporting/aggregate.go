// Package reporting builds request statistics and financial summaries on top
// of one generic bucketing routine. Every function here is pure and safe to
// call concurrently over shared, unmodified input.
package reporting

import "github.com/shopspring/decimal"

// Bucket accumulates a record count and an exact decimal sum.
type Bucket struct {
	Count int             `json:"count"`
	Sum   decimal.Decimal `json:"sum"`
}

func (b Bucket) add(v decimal.Decimal) Bucket {
	return Bucket{Count: b.Count + 1, Sum: b.Sum.Add(v)}
}

// Mean is Sum/Count; ok is false for an empty bucket.
func (b Bucket) Mean() (decimal.Decimal, bool) {
	if b.Count == 0 {
		return decimal.Zero, false
	}
	return b.Sum.Div(decimal.NewFromInt(int64(b.Count))), true
}

// Groups maps a bucket key to its bucket. Keys with no records are absent.
type Groups[K comparable] map[K]Bucket

// Measure extracts the numeric quantity summed for a record.
type Measure[T any] func(T) decimal.Decimal

// CountOnly is the measure for groupings that only count.
func CountOnly[T any](T) decimal.Decimal {
	return decimal.Zero
}

// GroupBy places every record in exactly one bucket chosen by key and adds
// its measure to that bucket.
func GroupBy[T any, K comparable](records []T, key func(T) K, measure Measure[T]) Groups[K] {
	groups := make(Groups[K])
	for _, r := range records {
		k := key(r)
		groups[k] = groups[k].add(measure(r))
	}
	return groups
}

// Summarize folds every record into a single bucket.
func Summarize[T any](records []T, measure Measure[T]) Bucket {
	var b Bucket
	for _, r := range records {
		b = b.add(measure(r))
	}
	return b
}

// Filter returns the records keep accepts, preserving order.
func Filter[T any](records []T, keep func(T) bool) []T {
	out := make([]T, 0, len(records))
	for _, r := range records {
		if keep(r) {
			out = append(out, r)
		}
	}
	return out
}

// Total folds every bucket of g into one.
func (g Groups[K]) Total() Bucket {
	var total Bucket
	for _, b := range g {
		total.Count += b.Count
		total.Sum = total.Sum.Add(b.Sum)
	}
	return total
}

// Counts projects g onto record counts.
func (g Groups[K]) Counts() map[K]int {
	out := make(map[K]int, len(g))
	for k, b := range g {
		out[k] = b.Count
	}
	return out
}

// Sums projects g onto decimal sums.
func (g Groups[K]) Sums() map[K]decimal.Decimal {
	out := make(map[K]decimal.Decimal, len(g))
	for k, b := range g {
		out[k] = b.Sum
	}
	return out
}
