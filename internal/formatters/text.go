package formatters

import (
	"fmt"
	"strings"

	"resumediff/internal/types"
	"resumediff/internal/worddiff"

	"github.com/fatih/color"
)

// inlineStyle renders changed segments inside running text
type inlineStyle struct {
	removed func(string) string
	added   func(string) string
}

var bracketStyle = inlineStyle{
	removed: func(s string) string { return "[-" + s + "-]" },
	added:   func(s string) string { return "{+" + s + "+}" },
}

var markdownStyle = inlineStyle{
	removed: func(s string) string { return wrapMarkdown(s, "~~") },
	added:   func(s string) string { return wrapMarkdown(s, "**") },
}

func colorStyle() inlineStyle {
	removed := color.New(color.FgRed, color.CrossedOut)
	added := color.New(color.FgGreen, color.Bold)
	// Output may be written to a file or pipe, so ignore terminal detection.
	removed.EnableColor()
	added.EnableColor()
	return inlineStyle{
		removed: func(s string) string { return removed.Sprint(s) },
		added:   func(s string) string { return added.Sprint(s) },
	}
}

// wrapMarkdown surrounds the word content of s with marker and keeps leading
// and trailing whitespace outside, since markdown ignores "** foo**".
func wrapMarkdown(s, marker string) string {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return s
	}
	start := strings.Index(s, trimmed)
	return s[:start] + marker + trimmed + marker + s[start+len(trimmed):]
}

func renderInline(segments []worddiff.Segment, style inlineStyle) string {
	var b strings.Builder
	for _, seg := range segments {
		switch seg.Kind {
		case worddiff.Removed:
			b.WriteString(style.removed(seg.Text))
		case worddiff.Added:
			b.WriteString(style.added(seg.Text))
		default:
			b.WriteString(seg.Text)
		}
	}
	return b.String()
}

func labelOr(label, fallback string) string {
	if label == "" {
		return fallback
	}
	return label
}

// CompareTextFormatter prints the diff inline with [-removed-] and {+added+}
// markers, or with ANSI colours when Color is set.
type CompareTextFormatter struct {
	Color bool
}

func (ctf *CompareTextFormatter) Format(data any) (string, error) {
	result, err := compareOutputOf(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	writeCompareSummary(&output, result)
	output.WriteString("\n=== DIFF ===\n")
	output.WriteString(renderInline(result.Segments, ctf.style()))
	output.WriteString("\n")
	return output.String(), nil
}

func (ctf *CompareTextFormatter) style() inlineStyle {
	if ctf.Color {
		return colorStyle()
	}
	return bracketStyle
}

func (ctf *CompareTextFormatter) SupportedType() string {
	return "CompareOutput"
}

func writeCompareSummary(output *strings.Builder, result types.CompareOutput) {
	output.WriteString("=== COMPARISON ===\n")
	if result.ID != "" {
		fmt.Fprintf(output, "ID: %s\n", result.ID)
	}
	fmt.Fprintf(output, "Old: %s\n", labelOr(result.OldLabel, "old"))
	fmt.Fprintf(output, "New: %s\n", labelOr(result.NewLabel, "new"))
	fmt.Fprintf(output, "Strategy: %s\n", result.Strategy)
	if !result.Changed {
		output.WriteString("No changes.\n")
		return
	}
	fmt.Fprintf(output, "Added words: %d\n", result.AddedWords)
	fmt.Fprintf(output, "Removed words: %d\n", result.RemovedWords)
}

// TailorTextFormatter handles text formatting for tailor results
type TailorTextFormatter struct {
	Color bool
}

func (ttf *TailorTextFormatter) Format(data any) (string, error) {
	result, err := tailorOutputOf(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("=== TAILORED RESUME ===\n\n")
	output.WriteString(result.TailoredResume)
	output.WriteString("\n\n")

	output.WriteString("=== SUMMARY ===\n")
	output.WriteString(result.Summary)
	output.WriteString("\n")
	if len(result.Highlights) > 0 {
		output.WriteString("\nHighlights:\n")
		for _, h := range result.Highlights {
			fmt.Fprintf(&output, "- %s\n", h)
		}
	}
	output.WriteString("\n")

	inner := CompareTextFormatter{Color: ttf.Color}
	diff, err := inner.Format(result.Diff)
	if err != nil {
		return "", err
	}
	output.WriteString(diff)

	return output.String(), nil
}

func (ttf *TailorTextFormatter) SupportedType() string {
	return "TailorResumeOutput"
}
