package cascade

import (
	"regexp"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"
)

func TestCascadeOrder(t *testing.T) {
	c := Cascade[string]{
		{Name: "labeled", Pattern: regexp.MustCompile(`Code:\s*(\w+)`), Accept: Group(1, nil)},
		{Name: "bare", Pattern: regexp.MustCompile(`#(\w+)`), Accept: Group(1, nil)},
	}

	tests := []struct {
		name     string
		text     string
		want     string
		wantRule string
		wantOK   bool
	}{
		{"first rule wins", "#B1 Code: A1", "A1", "labeled", true},
		{"falls through", "ref #B1", "B1", "bare", true},
		{"no match", "nothing here", "", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, rule, ok := c.Find(tt.text)
			if got != tt.want || rule != tt.wantRule || ok != tt.wantOK {
				t.Errorf("Find(%q) = (%q, %q, %v), want (%q, %q, %v)", tt.text, got, rule, ok, tt.want, tt.wantRule, tt.wantOK)
			}
		})
	}
}

func TestCascadeValidationMiss(t *testing.T) {
	digitsOnly := func(s string) (string, bool) {
		return s, strings.Trim(s, "0123456789") == ""
	}
	c := Cascade[string]{
		{Name: "no", Pattern: regexp.MustCompile(`No:\s*(\w+)`), Accept: Group(1, digitsOnly)},
		{Name: "ref", Pattern: regexp.MustCompile(`Ref:\s*(\w+)`), Accept: Group(1, nil)},
	}

	got, rule, ok := c.Find("No: abc No: 42 Ref: x")
	if !ok || got != "42" || rule != "no" {
		t.Errorf("Find() = (%q, %q, %v), want later match of the same rule", got, rule, ok)
	}
	got, rule, _ = c.Find("No: abc Ref: x")
	if got != "x" || rule != "ref" {
		t.Errorf("Find() = (%q, %q), want fall-through to ref", got, rule)
	}

	if diff := cmp.Diff([]string{"no", "ref"}, c.Names()); diff != "" {
		t.Errorf("Names() mismatch (-want +got):\n%s", diff)
	}
}
