// Package matcher picks the upstream trim record that best fits a
// vehicle's trim label by word-overlap scoring.
package matcher

import (
	"strings"
	"unicode"
)

// Words lowercases s, drops every rune that is not a-z, 0-9 or whitespace,
// and splits the rest on whitespace.
func Words(s string) []string {
	cleaned := strings.Map(func(r rune) rune {
		r = unicode.ToLower(r)
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', unicode.IsSpace(r):
			return r
		}
		return -1
	}, s)
	return strings.Fields(cleaned)
}

// Similarity scores a against b as the number of distinct words they share
// divided by the word count of the longer one. It is 0 when either side
// normalizes to nothing.
func Similarity(a, b string) float64 {
	wa, wb := Words(a), Words(b)
	if len(wa) == 0 || len(wb) == 0 {
		return 0
	}
	inB := make(map[string]struct{}, len(wb))
	for _, w := range wb {
		inB[w] = struct{}{}
	}
	seen := make(map[string]struct{}, len(wa))
	matches := 0
	for _, w := range wa {
		if _, dup := seen[w]; dup {
			continue
		}
		seen[w] = struct{}{}
		if _, ok := inB[w]; ok {
			matches++
		}
	}
	return float64(matches) / float64(max(len(wa), len(wb)))
}

// Score is the best Similarity between target and any of fields.
func Score(target string, fields ...string) float64 {
	best := 0.0
	for _, f := range fields {
		if s := Similarity(target, f); s > best {
			best = s
		}
	}
	return best
}

// BestMatch returns the candidate whose fields score highest against target.
// An empty list yields ok=false and a single candidate is returned as is.
// Ties keep the earliest candidate, and when nothing scores above zero the
// first candidate wins.
func BestMatch[T any](candidates []T, target string, fields func(T) []string) (best T, ok bool) {
	switch len(candidates) {
	case 0:
		return best, false
	case 1:
		return candidates[0], true
	}
	best = candidates[0]
	bestScore := 0.0
	for _, c := range candidates {
		if s := Score(target, fields(c)...); s > bestScore {
			best, bestScore = c, s
		}
	}
	return best, true
}
