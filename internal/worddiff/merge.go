package worddiff

import "strings"

// reduce merges consecutive operations of the same kind and counts the words
// in added and removed segments.
func reduce(ops []Segment, strategy Strategy) Result {
	res := Result{Segments: merge(ops), Strategy: strategy}
	for _, s := range res.Segments {
		switch s.Kind {
		case Added:
			res.AddedWords += len(strings.Fields(s.Text))
		case Removed:
			res.RemovedWords += len(strings.Fields(s.Text))
		}
	}
	return res
}

func merge(ops []Segment) []Segment {
	segments := make([]Segment, 0, len(ops))
	var b strings.Builder

	for i, op := range ops {
		b.WriteString(op.Text)
		if i+1 < len(ops) && ops[i+1].Kind == op.Kind {
			continue
		}
		segments = append(segments, Segment{Kind: op.Kind, Text: b.String()})
		b.Reset()
	}

	return segments
}
