package formatters

import (
	"fmt"
	"strings"

	"resumediff/internal/types"
)

// CompareMarkdownFormatter renders removed words as ~~strikethrough~~ and
// added words as **bold**.
type CompareMarkdownFormatter struct{}

func (cmf *CompareMarkdownFormatter) Format(data any) (string, error) {
	result, err := compareOutputOf(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder
	writeCompareMarkdown(&output, result, "#")
	return output.String(), nil
}

func (cmf *CompareMarkdownFormatter) SupportedType() string {
	return "CompareOutput"
}

func writeCompareMarkdown(output *strings.Builder, result types.CompareOutput, heading string) {
	fmt.Fprintf(output, "%s Comparison: %s → %s\n\n", heading,
		labelOr(result.OldLabel, "old"), labelOr(result.NewLabel, "new"))

	output.WriteString("| Metric | Value |\n")
	output.WriteString("|--------|-------|\n")
	fmt.Fprintf(output, "| Strategy | %s |\n", result.Strategy)
	fmt.Fprintf(output, "| Added words | %d |\n", result.AddedWords)
	fmt.Fprintf(output, "| Removed words | %d |\n", result.RemovedWords)
	output.WriteString("\n")

	if !result.Changed {
		output.WriteString("_No changes._\n")
		return
	}
	output.WriteString(renderInline(result.Segments, markdownStyle))
	output.WriteString("\n")
}

// TailorMarkdownFormatter handles markdown formatting for tailor results
type TailorMarkdownFormatter struct{}

func (tmf *TailorMarkdownFormatter) Format(data any) (string, error) {
	result, err := tailorOutputOf(data)
	if err != nil {
		return "", err
	}

	var output strings.Builder

	output.WriteString("# Tailored Resume\n\n")
	output.WriteString(result.TailoredResume)
	output.WriteString("\n\n")

	output.WriteString("## Summary\n\n")
	output.WriteString(result.Summary)
	output.WriteString("\n\n")

	if len(result.Highlights) > 0 {
		output.WriteString("### Highlights\n\n")
		for _, h := range result.Highlights {
			fmt.Fprintf(&output, "- %s\n", h)
		}
		output.WriteString("\n")
	}

	writeCompareMarkdown(&output, result.Diff, "##")
	return output.String(), nil
}

func (tmf *TailorMarkdownFormatter) SupportedType() string {
	return "TailorResumeOutput"
}
