// Package match annotates candidate entities with structural duplicate and
// fuzzy parent-name match results.
package match

import (
	"regexp"
	"strings"
)

var nonAlnumRe = regexp.MustCompile(`[^a-z0-9 ]+`)

// NormalizeName folds case, strips punctuation and collapses whitespace so
// "Acme Corp" and "acme corp." compare equal before scoring.
func NormalizeName(name string) string {
	s := strings.ToLower(strings.TrimSpace(name))
	s = nonAlnumRe.ReplaceAllString(s, "")
	return strings.Join(strings.Fields(s), " ")
}

// NormalizeDomain reduces a website value to its bare host: scheme, www
// prefix, path and port are dropped.
func NormalizeDomain(website string) string {
	s := strings.ToLower(strings.TrimSpace(website))
	if s == "" {
		return ""
	}
	if i := strings.Index(s, "://"); i >= 0 {
		s = s[i+3:]
	}
	if i := strings.IndexAny(s, "/?#"); i >= 0 {
		s = s[:i]
	}
	if i := strings.Index(s, ":"); i >= 0 {
		s = s[:i]
	}
	s = strings.TrimPrefix(s, "www.")
	return s
}

// Similarity scores two already-normalized strings on a 0-100 scale using
// Levenshtein distance over the longer length. Two empty strings score 0:
// a blank reference never matches anything.
func Similarity(a, b string) int {
	if a == "" && b == "" {
		return 0
	}
	if a == b {
		return 100
	}

	dist := levenshtein(a, b)
	longest := len([]rune(a))
	if l := len([]rune(b)); l > longest {
		longest = l
	}
	if longest == 0 {
		return 0
	}

	score := 100 - (dist*100+longest/2)/longest
	if score < 0 {
		score = 0
	}
	return score
}

// levenshtein computes edit distance over runes with a two-row matrix.
func levenshtein(a, b string) int {
	ra := []rune(a)
	rb := []rune(b)

	if len(ra) == 0 {
		return len(rb)
	}
	if len(rb) == 0 {
		return len(ra)
	}

	prev := make([]int, len(rb)+1)
	curr := make([]int, len(rb)+1)
	for j := range prev {
		prev[j] = j
	}

	for i := 1; i <= len(ra); i++ {
		curr[0] = i
		for j := 1; j <= len(rb); j++ {
			cost := 1
			if ra[i-1] == rb[j-1] {
				cost = 0
			}
			curr[j] = min3(prev[j]+1, curr[j-1]+1, prev[j-1]+cost)
		}
		prev, curr = curr, prev
	}

	return prev[len(rb)]
}

func min3(a, b, c int) int {
	if b < a {
		a = b
	}
	if c < a {
		a = c
	}
	return a
}
