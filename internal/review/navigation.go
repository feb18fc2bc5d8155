package review

import "citadel/internal/verdict"

// NextUnreviewed scans record numbers 1..total in order and returns the
// first one absent from the verdict map. The second return is false when
// every record has been reviewed.
func NextUnreviewed(reviewed map[int]verdict.Entry, total int) (int, bool) {
	for id := 1; id <= total; id++ {
		if _, ok := reviewed[id]; !ok {
			return id, true
		}
	}
	return 0, false
}

// StartIndex is the zero-based index a fresh session lands on: the first
// unreviewed record, or record 1 when everything is already done.
func StartIndex(reviewed map[int]verdict.Entry, total int) int {
	if id, ok := NextUnreviewed(reviewed, total); ok {
		return id - 1
	}
	return 0
}

// Advance moves forward one record, never past the last.
func Advance(index, total int) int {
	if index+1 > total-1 {
		return total - 1
	}
	return index + 1
}

// Retreat moves back one record, never before the first.
func Retreat(index int) int {
	if index <= 0 {
		return 0
	}
	return index - 1
}

// Jump converts a one-based target record number into a zero-based index,
// silently clamping out-of-range targets to the valid bounds.
func Jump(target, total int) int {
	if target < 1 {
		target = 1
	}
	if target > total {
		target = total
	}
	return target - 1
}
