package domain

import "time"

// Overlaps reports whether the half-open intervals [startA, endA) and
// [startB, endB) share any instant. Two intervals that touch exactly at a
// boundary (endA == startB) do not overlap. Degenerate intervals (zero
// duration, or end before start) never overlap anything.
func Overlaps(startA, endA, startB, endB time.Time) bool {
	return startA.Before(endB) && startB.Before(endA)
}
