package worddiff

import (
	"strings"

	"znkr.io/diff"
)

// splitLines splits text after each newline. Every line keeps its terminator,
// so joining the result yields text unchanged.
func splitLines(text string) []string {
	lines := strings.SplitAfter(text, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

func lineSet(lines []string) map[string]struct{} {
	set := make(map[string]struct{}, len(lines))
	for _, l := range lines {
		set[l] = struct{}{}
	}
	return set
}

// heuristicLines walks both line lists in parallel. A mismatched line missing
// from the other side is reported on its own; otherwise both cursors advance
// with a removal followed by an insertion.
func heuristicLines(oldText, newText string) []Segment {
	a, b := splitLines(oldText), splitLines(newText)
	inOld, inNew := lineSet(a), lineSet(b)

	ops := make([]Segment, 0, max(len(a), len(b)))
	i, j := 0, 0
	for i < len(a) || j < len(b) {
		if i < len(a) && j < len(b) && a[i] == b[j] {
			ops = append(ops, Segment{Kind: Same, Text: a[i]})
			i++
			j++
			continue
		}
		if i < len(a) {
			if _, ok := inNew[a[i]]; !ok {
				ops = append(ops, Segment{Kind: Removed, Text: a[i]})
				i++
				continue
			}
		}
		if j < len(b) {
			if _, ok := inOld[b[j]]; !ok {
				ops = append(ops, Segment{Kind: Added, Text: b[j]})
				j++
				continue
			}
		}
		if i < len(a) {
			ops = append(ops, Segment{Kind: Removed, Text: a[i]})
			i++
		}
		if j < len(b) {
			ops = append(ops, Segment{Kind: Added, Text: b[j]})
			j++
		}
	}

	return ops
}

// myersLines computes a line diff with znkr.io/diff.
func myersLines(oldText, newText string) []Segment {
	edits := diff.Edits(splitLines(oldText), splitLines(newText))

	ops := make([]Segment, 0, len(edits))
	for _, e := range edits {
		switch e.Op {
		case diff.Match:
			ops = append(ops, Segment{Kind: Same, Text: e.X})
		case diff.Delete:
			ops = append(ops, Segment{Kind: Removed, Text: e.X})
		case diff.Insert:
			ops = append(ops, Segment{Kind: Added, Text: e.Y})
		}
	}

	return ops
}
