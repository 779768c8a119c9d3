package formatters

import (
	"encoding/json"
	"strings"
	"testing"

	"resumediff/internal/types"
	"resumediff/internal/worddiff"

	"github.com/sergi/go-diff/diffmatchpatch"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func sampleCompare() types.CompareOutput {
	return types.CompareOutput{
		ID:           "id-1",
		OldLabel:     "base",
		NewLabel:     "tailored",
		Strategy:     worddiff.StrategyWord,
		Changed:      true,
		AddedWords:   1,
		RemovedWords: 1,
		Segments: []worddiff.Segment{
			{Kind: worddiff.Same, Text: "led "},
			{Kind: worddiff.Removed, Text: "a"},
			{Kind: worddiff.Added, Text: "the"},
			{Kind: worddiff.Same, Text: " team"},
		},
	}
}

func compareOf(oldText, newText string) types.CompareOutput {
	r := worddiff.Compare(oldText, newText)
	return types.CompareOutput{
		Strategy:     r.Strategy,
		Changed:      r.Changed(),
		AddedWords:   r.AddedWords,
		RemovedWords: r.RemovedWords,
		Segments:     r.Segments,
	}
}

func TestRegistryFormat(t *testing.T) {
	registry := NewFormatterRegistry()

	tests := []struct {
		name    string
		data    any
		format  string
		wantErr bool
	}{
		{name: "json any", data: map[string]int{"a": 1}, format: "json"},
		{name: "yaml any", data: map[string]int{"a": 1}, format: "yaml"},
		{name: "text compare", data: sampleCompare(), format: "text"},
		{name: "text compare pointer", data: ptr(sampleCompare()), format: "text"},
		{name: "markdown tailor", data: types.TailorResumeOutput{Diff: sampleCompare()}, format: "markdown"},
		{name: "unified compare", data: sampleCompare(), format: "unified"},
		{name: "patch tailor", data: types.TailorResumeOutput{Diff: sampleCompare()}, format: "patch"},
		{name: "text for unknown type", data: map[string]int{"a": 1}, format: "text", wantErr: true},
		{name: "unknown format", data: sampleCompare(), format: "html", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := registry.Format(tt.data, tt.format)
			if tt.wantErr {
				assert.ErrorContains(t, err, "no formatter found")
				return
			}
			assert.NoError(t, err)
		})
	}
}

func ptr[T any](v T) *T { return &v }

func TestGetSupportedFormats(t *testing.T) {
	got := NewFormatterRegistry().GetSupportedFormats()
	assert.Equal(t, []string{"json", "markdown", "patch", "text", "unified", "yaml"}, got)
}

func TestJSONFormatter(t *testing.T) {
	out, err := (&JSONFormatter{}).Format(sampleCompare())
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, "word", decoded["strategy"])
	assert.EqualValues(t, 1, decoded["addedWords"])

	segments := decoded["segments"].([]any)
	require.Len(t, segments, 4)
	assert.Equal(t, map[string]any{"kind": "removed", "text": "a"}, segments[1])
}

func TestYAMLFormatter(t *testing.T) {
	out, err := (&YAMLFormatter{}).Format(sampleCompare())
	require.NoError(t, err)

	var decoded types.CompareOutput
	require.NoError(t, yaml.Unmarshal([]byte(out), &decoded))
	assert.Equal(t, sampleCompare(), decoded)
}

func TestCompareTextFormatter(t *testing.T) {
	out, err := (&CompareTextFormatter{}).Format(sampleCompare())
	require.NoError(t, err)

	want := "=== COMPARISON ===\n" +
		"ID: id-1\n" +
		"Old: base\n" +
		"New: tailored\n" +
		"Strategy: word\n" +
		"Added words: 1\n" +
		"Removed words: 1\n" +
		"\n=== DIFF ===\n" +
		"led [-a-]{+the+} team\n"
	assert.Equal(t, want, out)
}

func TestCompareTextFormatterUnchanged(t *testing.T) {
	out, err := (&CompareTextFormatter{}).Format(compareOf("same text", "same text"))
	require.NoError(t, err)
	assert.Contains(t, out, "No changes.\n")
	assert.Contains(t, out, "Old: old\nNew: new\n")
	assert.NotContains(t, out, "ID:")
}

func TestCompareTextFormatterColor(t *testing.T) {
	out, err := (&CompareTextFormatter{Color: true}).Format(sampleCompare())
	require.NoError(t, err)

	assert.Contains(t, out, "\x1b[")
	assert.Contains(t, out, "the")
	assert.NotContains(t, out, "{+")
	assert.NotContains(t, out, "[-")
}

func TestCompareMarkdownFormatter(t *testing.T) {
	out, err := (&CompareMarkdownFormatter{}).Format(sampleCompare())
	require.NoError(t, err)

	want := "# Comparison: base → tailored\n\n" +
		"| Metric | Value |\n" +
		"|--------|-------|\n" +
		"| Strategy | word |\n" +
		"| Added words | 1 |\n" +
		"| Removed words | 1 |\n" +
		"\n" +
		"led ~~a~~**the** team\n"
	assert.Equal(t, want, out)
}

func TestWrapMarkdown(t *testing.T) {
	assert.Equal(t, " **brown**", wrapMarkdown(" brown", "**"))
	assert.Equal(t, "~~old words~~\n", wrapMarkdown("old words\n", "~~"))
	assert.Equal(t, "  ", wrapMarkdown("  ", "**"))
}

func TestTailorFormatters(t *testing.T) {
	result := types.TailorResumeOutput{
		TailoredResume: "Go engineer who led the team",
		Summary:        "Emphasised leadership",
		Highlights:     []string{"Leadership", "Go"},
		Diff:           sampleCompare(),
	}

	text, err := (&TailorTextFormatter{}).Format(result)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(text, "=== TAILORED RESUME ===\n\nGo engineer who led the team\n\n"))
	assert.Contains(t, text, "=== SUMMARY ===\nEmphasised leadership\n")
	assert.Contains(t, text, "Highlights:\n- Leadership\n- Go\n")
	assert.Contains(t, text, "led [-a-]{+the+} team")

	md, err := (&TailorMarkdownFormatter{}).Format(&result)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(md, "# Tailored Resume\n\n"))
	assert.Contains(t, md, "### Highlights\n\n- Leadership\n- Go\n")
	assert.Contains(t, md, "## Comparison: base → tailored")

	_, err = (&TailorTextFormatter{}).Format(sampleCompare())
	assert.ErrorContains(t, err, "expected TailorResumeOutput")
}

func TestUnifiedFormatter(t *testing.T) {
	result := compareOf("one\ntwo\nthree\n", "one\n2\nthree\n")
	result.OldLabel = "base.txt"
	result.NewLabel = "tailored.txt"

	out, err := (&UnifiedFormatter{Context: 3}).Format(result)
	require.NoError(t, err)

	want := "--- base.txt\n" +
		"+++ tailored.txt\n" +
		"@@ -1,3 +1,3 @@\n" +
		" one\n" +
		"-two\n" +
		"+2\n" +
		" three\n"
	assert.Equal(t, want, out)
}

func TestUnifiedFormatterMissingNewline(t *testing.T) {
	out, err := (&UnifiedFormatter{Context: 3}).Format(compareOf("a\nb", "a\nc"))
	require.NoError(t, err)

	want := "--- old\n" +
		"+++ new\n" +
		"@@ -1,2 +1,2 @@\n" +
		" a\n" +
		"-b\n" +
		"\\ No newline at end of file\n" +
		"+c\n" +
		"\\ No newline at end of file\n"
	assert.Equal(t, want, out)
}

func TestUnifiedFormatterUnchanged(t *testing.T) {
	out, err := (&UnifiedFormatter{Context: 3}).Format(compareOf("x\n", "x\n"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestHunkRange(t *testing.T) {
	start, n := hunkRange(0, 3)
	assert.Equal(t, 1, start)
	assert.Equal(t, 3, n)

	start, n = hunkRange(4, 4)
	assert.Equal(t, 4, start)
	assert.Equal(t, 0, n)
}

func TestPatchFormatterApplies(t *testing.T) {
	oldText := "Senior engineer. Led a team of five.\nShipped payments.\n"
	newText := "Staff engineer. Led the platform team of eight.\nShipped payments and billing.\n"

	out, err := (&PatchFormatter{}).Format(compareOf(oldText, newText))
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(out, "@@ -"))

	dmp := diffmatchpatch.New()
	patches, err := dmp.PatchFromText(out)
	require.NoError(t, err)

	applied, ok := dmp.PatchApply(patches, oldText)
	assert.Equal(t, newText, applied)
	for _, hunkApplied := range ok {
		assert.True(t, hunkApplied)
	}
}

func TestPatchFormatterUnchanged(t *testing.T) {
	out, err := (&PatchFormatter{}).Format(compareOf("same", "same"))
	require.NoError(t, err)
	assert.Empty(t, out)
}

func TestToDiffs(t *testing.T) {
	got := toDiffs(sampleCompare().Segments)
	want := []diffmatchpatch.Diff{
		{Type: diffmatchpatch.DiffEqual, Text: "led "},
		{Type: diffmatchpatch.DiffDelete, Text: "a"},
		{Type: diffmatchpatch.DiffInsert, Text: "the"},
		{Type: diffmatchpatch.DiffEqual, Text: " team"},
	}
	assert.Equal(t, want, got)
}
