// Package fallback answers chat messages without the completion service.
// Replies and action detection are ordered keyword rules; the first rule
// whose matcher accepts the lowercased input wins.
package fallback

import "strings"

// Matcher decides whether a rule applies. It receives lowercased input.
type Matcher func(lowered string) bool

// Rule pairs a matcher with the value it yields.
type Rule[T any] struct {
	Name  string
	Match Matcher
	Value T
}

// First returns the first rule in rules that matches input.
func First[T any](rules []Rule[T], input string) (Rule[T], bool) {
	lowered := strings.ToLower(input)
	for _, r := range rules {
		if r.Match != nil && r.Match(lowered) {
			return r, true
		}
	}
	return Rule[T]{}, false
}

// ContainsAny matches input containing at least one of words. Words are
// compared as given, so pass them lowercased.
func ContainsAny(words ...string) Matcher {
	return func(lowered string) bool {
		for _, w := range words {
			if strings.Contains(lowered, w) {
				return true
			}
		}
		return false
	}
}
