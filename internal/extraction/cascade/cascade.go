// Package cascade implements ordered pattern lists: each rule is tried in
// turn and the first match that its validator accepts wins.
package cascade

import (
	"regexp"
	"strings"
)

// Rule pairs a pattern with the validator that turns its submatches into a
// value. Accept returning false is a validation-miss and the cascade moves on.
type Rule[T any] struct {
	Name    string
	Pattern *regexp.Regexp
	Accept  func(match []string) (T, bool)
}

// Cascade is evaluated strictly in slice order.
type Cascade[T any] []Rule[T]

// Find returns the value of the first accepted rule and that rule's name.
// Every match of a rule is offered to Accept before falling through.
func (c Cascade[T]) Find(text string) (T, string, bool) {
	for _, r := range c {
		for _, m := range r.Pattern.FindAllStringSubmatch(text, -1) {
			if v, ok := r.Accept(m); ok {
				return v, r.Name, true
			}
		}
	}
	var zero T
	return zero, "", false
}

// Names lists the rules in precedence order.
func (c Cascade[T]) Names() []string {
	out := make([]string, len(c))
	for i, r := range c {
		out[i] = r.Name
	}
	return out
}

// Group accepts the trimmed n-th submatch when it is non-empty and clean
// (if given) accepts it.
func Group(n int, clean func(string) (string, bool)) func([]string) (string, bool) {
	return func(m []string) (string, bool) {
		if n >= len(m) {
			return "", false
		}
		v := strings.TrimSpace(m[n])
		if v == "" {
			return "", false
		}
		if clean != nil {
			return clean(v)
		}
		return v, true
	}
}
