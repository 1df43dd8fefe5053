package booking

import (
	"strings"

	"github.com/yegors/skyglyde/internal/catalog"
)

// Matcher picks the arrival skyport for a free-text destination
type Matcher interface {
	Match(destination string) catalog.Skyport
}

// MatchRule maps destinations containing any keyword to a skyport
type MatchRule struct {
	Keywords  []string
	SkyportID int
}

// KeywordMatcher evaluates its rules in order; the first rule with a
// keyword contained in the lower-cased destination wins. Unmatched
// destinations get the fallback skyport.
type KeywordMatcher struct {
	Rules     []MatchRule
	Fallback  catalog.Skyport
	skyportOf map[int]catalog.Skyport
}

// DefaultMatchRules are the Berlin landmark rules
var DefaultMatchRules = []MatchRule{
	{Keywords: []string{"alexander"}, SkyportID: 2},
	{Keywords: []string{"brandenburg", "gate"}, SkyportID: 1},
	{Keywords: []string{"potsdamer"}, SkyportID: 3},
	{Keywords: []string{"charlottenburg"}, SkyportID: 4},
}

// NewKeywordMatcher builds a matcher over the skyport catalog. The
// fallback is the first catalog entry so that identical input always
// yields the same skyport.
func NewKeywordMatcher(rules []MatchRule) *KeywordMatcher {
	skyports := catalog.Skyports()
	m := &KeywordMatcher{
		Rules:     rules,
		Fallback:  skyports[0],
		skyportOf: make(map[int]catalog.Skyport, len(skyports)),
	}
	for _, s := range skyports {
		m.skyportOf[s.ID] = s
	}
	return m
}

// DefaultMatcher returns a matcher with DefaultMatchRules
func DefaultMatcher() *KeywordMatcher {
	return NewKeywordMatcher(DefaultMatchRules)
}

// Match implements Matcher
func (m *KeywordMatcher) Match(destination string) catalog.Skyport {
	lower := strings.ToLower(destination)
	for _, rule := range m.Rules {
		for _, keyword := range rule.Keywords {
			if !strings.Contains(lower, keyword) {
				continue
			}
			if s, ok := m.skyportOf[rule.SkyportID]; ok {
				return s
			}
		}
	}
	return m.Fallback
}
