// Package worddiff compares two versions of a text word by word and reports the
// result as an ordered list of same/added/removed segments.
//
// Small inputs are aligned with a longest-common-subsequence table over word and
// whitespace tokens. When the table would exceed the configured cell budget the
// comparison falls back to a line-level walk. Concatenating the segments that are
// not added always reproduces the old text, and concatenating the segments that
// are not removed always reproduces the new text.
package worddiff

import (
	"fmt"
	"strings"
)

// Kind tags a segment.
type Kind string

const (
	Same    Kind = "same"
	Added   Kind = "added"
	Removed Kind = "removed"
)

// Strategy names the algorithm that produced a Result.
type Strategy string

const (
	StrategyWord Strategy = "word"
	StrategyLine Strategy = "line"
)

// LineFallback selects how large inputs are diffed.
type LineFallback string

const (
	// FallbackHeuristic walks both line lists in parallel using set membership.
	// It may over-report changes when lines are reordered.
	FallbackHeuristic LineFallback = "heuristic"
	// FallbackMyers computes a minimal line diff.
	FallbackMyers LineFallback = "myers"
)

// DefaultMaxCells is the largest token-pair product aligned word by word.
const DefaultMaxCells = 500_000

// Segment is a maximal run of text sharing one kind.
type Segment struct {
	Kind Kind   `json:"kind" yaml:"kind"`
	Text string `json:"text" yaml:"text"`
}

// Result is the outcome of Compare.
type Result struct {
	Segments     []Segment `json:"segments" yaml:"segments"`
	AddedWords   int       `json:"addedWords" yaml:"addedWords"`
	RemovedWords int       `json:"removedWords" yaml:"removedWords"`
	Strategy     Strategy  `json:"strategy" yaml:"strategy"`
}

// OldText rebuilds the old input from the segments.
func (r Result) OldText() string {
	return r.join(Added)
}

// NewText rebuilds the new input from the segments.
func (r Result) NewText() string {
	return r.join(Removed)
}

// Changed reports whether the inputs differ.
func (r Result) Changed() bool {
	for _, s := range r.Segments {
		if s.Kind != Same {
			return true
		}
	}
	return false
}

func (r Result) join(skip Kind) string {
	var b strings.Builder
	for _, s := range r.Segments {
		if s.Kind != skip {
			b.WriteString(s.Text)
		}
	}
	return b.String()
}

type options struct {
	maxCells int
	fallback LineFallback
}

// Option configures Compare.
type Option func(*options)

// WithMaxCells sets the word alignment budget. Values <= 0 restore DefaultMaxCells.
func WithMaxCells(n int) Option {
	return func(o *options) {
		if n <= 0 {
			n = DefaultMaxCells
		}
		o.maxCells = n
	}
}

// WithLineFallback selects the algorithm used once the budget is exceeded.
// Unknown values are ignored.
func WithLineFallback(f LineFallback) Option {
	return func(o *options) {
		switch f {
		case FallbackHeuristic, FallbackMyers:
			o.fallback = f
		}
	}
}

// ParseLineFallback validates a configured fallback name. The empty string maps
// to FallbackHeuristic.
func ParseLineFallback(s string) (LineFallback, error) {
	switch LineFallback(strings.ToLower(strings.TrimSpace(s))) {
	case "", FallbackHeuristic:
		return FallbackHeuristic, nil
	case FallbackMyers:
		return FallbackMyers, nil
	default:
		return "", fmt.Errorf("unknown line fallback %q (valid: %s, %s)", s, FallbackHeuristic, FallbackMyers)
	}
}

// Compare diffs oldText against newText. It never fails.
func Compare(oldText, newText string, opts ...Option) Result {
	o := options{maxCells: DefaultMaxCells, fallback: FallbackHeuristic}
	for _, opt := range opts {
		opt(&o)
	}

	a, b := Tokenize(oldText), Tokenize(newText)

	// Compare in int64 so huge inputs cannot overflow on 32-bit platforms.
	if int64(len(a))*int64(len(b)) > int64(o.maxCells) {
		var ops []Segment
		if o.fallback == FallbackMyers {
			ops = myersLines(oldText, newText)
		} else {
			ops = heuristicLines(oldText, newText)
		}
		return reduce(ops, StrategyLine)
	}

	return reduce(alignTokens(a, b), StrategyWord)
}
