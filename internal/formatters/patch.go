package formatters

import (
	"resumediff/internal/worddiff"

	"github.com/sergi/go-diff/diffmatchpatch"
)

// PatchFormatter prints the segments as a diff-match-patch patch that turns
// the old text into the new one.
type PatchFormatter struct{}

func (pf *PatchFormatter) Format(data any) (string, error) {
	result, err := compareOutputOf(data)
	if err != nil {
		return "", err
	}

	dmp := diffmatchpatch.New()
	patches := dmp.PatchMake(toDiffs(result.Segments))
	return dmp.PatchToText(patches), nil
}

func (pf *PatchFormatter) SupportedType() string {
	return "CompareOutput"
}

func toDiffs(segments []worddiff.Segment) []diffmatchpatch.Diff {
	diffs := make([]diffmatchpatch.Diff, 0, len(segments))
	for _, seg := range segments {
		op := diffmatchpatch.DiffEqual
		switch seg.Kind {
		case worddiff.Added:
			op = diffmatchpatch.DiffInsert
		case worddiff.Removed:
			op = diffmatchpatch.DiffDelete
		}
		diffs = append(diffs, diffmatchpatch.Diff{Type: op, Text: seg.Text})
	}
	return diffs
}
