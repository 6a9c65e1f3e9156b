package agent

import (
	"sort"
	"strings"

	"github.com/pmezard/go-difflib/difflib"
)

// Defaults for Suggest
const (
	DefaultMaxSuggestions = 5
	DefaultMinSimilarity  = 0.6
)

// Suggest returns up to DefaultMaxSuggestions options similar to candidate
func Suggest(candidate string, options []string) []string {
	return Match(candidate, options, DefaultMaxSuggestions, DefaultMinSimilarity)
}

// Match ranks options by character-level similarity to candidate and returns
// at most maxResults whose score is at least minSimilarity. The score is
// 2*M/T, where M is the number of matched characters and T the combined
// length. Equal scores keep catalog order.
func Match(candidate string, options []string, maxResults int, minSimilarity float64) []string {
	if maxResults <= 0 || len(options) == 0 {
		return nil
	}

	type scored struct {
		option string
		score  float64
	}

	matcher := difflib.NewMatcher(nil, chars(candidate))
	var hits []scored
	for _, option := range options {
		matcher.SetSeq1(chars(option))
		// Cheap upper bounds first
		if matcher.RealQuickRatio() < minSimilarity || matcher.QuickRatio() < minSimilarity {
			continue
		}
		if score := matcher.Ratio(); score >= minSimilarity {
			hits = append(hits, scored{option: option, score: score})
		}
	}

	sort.SliceStable(hits, func(i, j int) bool {
		return hits[i].score > hits[j].score
	})

	if len(hits) > maxResults {
		hits = hits[:maxResults]
	}
	result := make([]string, len(hits))
	for i, h := range hits {
		result[i] = h.option
	}
	return result
}

func chars(s string) []string {
	return strings.Split(s, "")
}
