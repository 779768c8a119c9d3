package formatters

import (
	"fmt"
	"strings"

	"znkr.io/diff"
)

const missingNewline = "\\ No newline at end of file\n"

// UnifiedFormatter prints a unified line diff of the two texts rebuilt from
// the segments. An unchanged comparison yields empty output.
type UnifiedFormatter struct {
	Context int
}

func (uf *UnifiedFormatter) Format(data any) (string, error) {
	result, err := compareOutputOf(data)
	if err != nil {
		return "", err
	}

	engine := result.Result()
	oldLines := splitLines(engine.OldText())
	newLines := splitLines(engine.NewText())

	hunks := diff.Hunks(oldLines, newLines, diff.Context(uf.Context))
	if len(hunks) == 0 {
		return "", nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "--- %s\n", labelOr(result.OldLabel, "old"))
	fmt.Fprintf(&b, "+++ %s\n", labelOr(result.NewLabel, "new"))
	for _, h := range hunks {
		oldStart, oldCount := hunkRange(h.PosX, h.EndX)
		newStart, newCount := hunkRange(h.PosY, h.EndY)
		fmt.Fprintf(&b, "@@ -%d,%d +%d,%d @@\n", oldStart, oldCount, newStart, newCount)
		for _, e := range h.Edits {
			switch e.Op {
			case diff.Match:
				writeUnifiedLine(&b, " ", e.X)
			case diff.Delete:
				writeUnifiedLine(&b, "-", e.X)
			case diff.Insert:
				writeUnifiedLine(&b, "+", e.Y)
			}
		}
	}
	return b.String(), nil
}

func (uf *UnifiedFormatter) SupportedType() string {
	return "CompareOutput"
}

// hunkRange converts a half-open line range into the 1-based start and
// length of a hunk header. Empty ranges point at the line before them.
func hunkRange(pos, end int) (int, int) {
	n := end - pos
	if n == 0 {
		return pos, 0
	}
	return pos + 1, n
}

func writeUnifiedLine(b *strings.Builder, prefix, line string) {
	b.WriteString(prefix)
	b.WriteString(line)
	if !strings.HasSuffix(line, "\n") {
		b.WriteString("\n")
		b.WriteString(missingNewline)
	}
}

// splitLines splits s after each newline, keeping the terminators.
func splitLines(s string) []string {
	if s == "" {
		return nil
	}
	lines := strings.SplitAfter(s, "\n")
	if lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}
