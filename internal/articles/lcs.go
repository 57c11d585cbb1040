package articles

import "math/bits"

// lcsLength returns the length of the longest common subsequence of a and b
// using the bit-parallel row update of Allison-Dix / Hyyrö. The shorter input
// is encoded as bit vectors, one bit per rune, so each rune of the longer input
// costs one pass over ceil(len(short)/64) words.
func lcsLength(a, b []rune) int {
	if len(a) > len(b) {
		a, b = b, a
	}
	if len(a) == 0 {
		return 0
	}

	words := (len(a) + 63) / 64
	matches := make(map[rune][]uint64)
	for i, r := range a {
		mask, ok := matches[r]
		if !ok {
			mask = make([]uint64, words)
			matches[r] = mask
		}
		mask[i/64] |= 1 << (uint(i) % 64)
	}

	// A zero bit in row marks a position that ends a common subsequence.
	row := make([]uint64, words)
	for i := range row {
		row[i] = ^uint64(0)
	}

	for _, r := range b {
		mask, ok := matches[r]
		if !ok {
			continue
		}
		var carry uint64
		for w, v := range row {
			u := v & mask[w]
			var sum uint64
			sum, carry = bits.Add64(v, u, carry)
			row[w] = sum | (v - u)
		}
	}

	lcs := 0
	for w, v := range row {
		unused := ^v
		if tail := len(a) - w*64; tail < 64 {
			unused &= (uint64(1) << uint(tail)) - 1
		}
		lcs += bits.OnesCount64(unused)
	}
	return lcs
}

// indelRatio is 1 - indel distance / (len(a)+len(b)), where the indel distance
// is len(a)+len(b)-2*LCS.
func indelRatio(a, b []rune) float64 {
	total := len(a) + len(b)
	if total == 0 {
		return 1.0
	}
	return float64(2*lcsLength(a, b)) / float64(total)
}

// ratioUpperBound is the best indelRatio two texts of these lengths can reach.
func ratioUpperBound(la, lb int) float64 {
	total := la + lb
	if total == 0 {
		return 1.0
	}
	return float64(2*min(la, lb)) / float64(total)
}
