package utils

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
)

// Resumes and job descriptions are plain text or lightweight markup.
var textExtensions = []string{".txt", ".md", ".markdown", ".text", ".rst", ".adoc", ".tex"}

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// ValidateInputFile checks that filename is a regular file no larger
// than maxSize bytes. A maxSize of zero or less disables the size check.
func ValidateInputFile(filename string, maxSize int64) error {
	if filename == "" {
		return fmt.Errorf("filename cannot be empty")
	}

	info, err := os.Stat(filename)
	switch {
	case os.IsNotExist(err):
		return fmt.Errorf("file does not exist: %s", filename)
	case err != nil:
		return fmt.Errorf("cannot access file %s: %w", filename, err)
	case info.IsDir():
		return fmt.Errorf("path is a directory, not a file: %s", filename)
	case maxSize > 0 && info.Size() > maxSize:
		return fmt.Errorf("file %s is %s, limit is %s",
			filename, FormatFileSize(info.Size()), FormatFileSize(maxSize))
	}
	return nil
}

// ValidateOutputFile checks if the output file path is usable, creating its
// directory when missing
func ValidateOutputFile(filename string) error {
	if filename == "" {
		return nil // stdout
	}

	if info, err := os.Stat(filename); err == nil && info.IsDir() {
		return fmt.Errorf("output path is a directory: %s", filename)
	}

	dir := filepath.Dir(filename)
	if dir == "." {
		return nil
	}
	if err := os.MkdirAll(dir, 0750); err != nil {
		return fmt.Errorf("cannot create directory %s: %w", dir, err)
	}
	return nil
}

// IsTextFile reports whether filename has a known plain-text extension
func IsTextFile(filename string) bool {
	return slices.Contains(textExtensions, strings.ToLower(filepath.Ext(filename)))
}

// IsBinary reports whether content looks like a binary document, such as a
// PDF or DOCX export, by checking the first 8KB for NUL bytes.
func IsBinary(content []byte) bool {
	head := content[:min(len(content), 8*1024)]
	return bytes.IndexByte(head, 0) >= 0
}

// StripBOM removes a leading UTF-8 byte order mark. Editors on Windows add
// one, and it would otherwise show up as a changed first word.
func StripBOM(content []byte) []byte {
	return bytes.TrimPrefix(content, utf8BOM)
}

// FormatFileSize returns a human-readable file size
func FormatFileSize(size int64) string {
	const unit = 1024
	if size < unit {
		return fmt.Sprintf("%d B", size)
	}
	div, exp := int64(unit), 0
	for n := size / unit; n >= unit; n /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(size)/float64(div), "KMGTPE"[exp])
}
