// Cinematch - Movie Recommendation Front-End
// Copyright 2026 Tom F. (tomtom215)
// SPDX-License-Identifier: AGPL-3.0-or-later
// https://github.com/tomtom215/cinematch

package recommend

import (
	"regexp"
	"sort"
	"strings"

	"github.com/reiver/go-porterstemmer"

	"github.com/tomtom215/cinematch/internal/catalog"
)

const maxSuggestions = 5

var (
	wordPattern = regexp.MustCompile(`[\pL\pN]+`)

	titleStopwords = map[string]bool{
		"a": true, "an": true, "the": true, "of": true, "and": true,
		"in": true, "on": true, "to": true, "for": true, "with": true,
	}
)

// Suggester proposes catalog titles that share stemmed words with a query.
type Suggester struct {
	titles []string
	tokens []map[string]struct{}
}

// NewSuggester indexes each distinct title of c once, in catalog order.
func NewSuggester(c *catalog.Catalog) *Suggester {
	s := &Suggester{}
	seen := make(map[string]bool, c.Len())
	c.Each(func(_ int, m catalog.Movie) bool {
		if seen[m.Title] {
			return true
		}
		seen[m.Title] = true
		s.titles = append(s.titles, m.Title)
		s.tokens = append(s.tokens, stemmedTokens(m.Title))
		return true
	})
	return s
}

// Suggest returns up to limit titles ranked by shared word count, then by
// catalog order. A title containing the whole query, ignoring case, counts
// one extra word.
func (s *Suggester) Suggest(query string, limit int) []string {
	q := stemmedTokens(query)
	lowered := strings.ToLower(strings.TrimSpace(query))
	if len(q) == 0 && lowered == "" {
		return nil
	}

	type hit struct {
		pos   int
		score int
	}
	var hits []hit
	for i, toks := range s.tokens {
		score := 0
		for t := range q {
			if _, ok := toks[t]; ok {
				score++
			}
		}
		if lowered != "" && strings.Contains(strings.ToLower(s.titles[i]), lowered) {
			score++
		}
		if score > 0 {
			hits = append(hits, hit{pos: i, score: score})
		}
	}

	sort.SliceStable(hits, func(a, b int) bool {
		return hits[a].score > hits[b].score
	})
	if len(hits) > limit {
		hits = hits[:limit]
	}
	out := make([]string, len(hits))
	for i, h := range hits {
		out[i] = s.titles[h.pos]
	}
	return out
}

func stemmedTokens(s string) map[string]struct{} {
	set := make(map[string]struct{})
	for _, w := range wordPattern.FindAllString(strings.ToLower(s), -1) {
		if titleStopwords[w] {
			continue
		}
		set[porterstemmer.StemString(w)] = struct{}{}
	}
	return set
}
