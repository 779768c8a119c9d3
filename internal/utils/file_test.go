package utils

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestValidateInputFile(t *testing.T) {
	dir := t.TempDir()
	small := filepath.Join(dir, "resume.txt")
	require.NoError(t, os.WriteFile(small, []byte("Go engineer"), 0600))
	large := filepath.Join(dir, "large.txt")
	require.NoError(t, os.WriteFile(large, []byte(strings.Repeat("x", 2048)), 0600))

	tests := []struct {
		name    string
		file    string
		maxSize int64
		wantErr string
	}{
		{name: "readable file", file: small, maxSize: 1024},
		{name: "no size limit", file: large},
		{name: "too large", file: large, maxSize: 1024, wantErr: "limit is 1.0 KB"},
		{name: "empty name", file: "", wantErr: "cannot be empty"},
		{name: "missing", file: filepath.Join(dir, "missing.txt"), wantErr: "does not exist"},
		{name: "directory", file: dir, wantErr: "is a directory"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := ValidateInputFile(tt.file, tt.maxSize)
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			assert.ErrorContains(t, err, tt.wantErr)
		})
	}
}

func TestValidateOutputFile(t *testing.T) {
	dir := t.TempDir()

	assert.NoError(t, ValidateOutputFile(""))

	nested := filepath.Join(dir, "out", "diff.json")
	require.NoError(t, ValidateOutputFile(nested))
	info, err := os.Stat(filepath.Dir(nested))
	require.NoError(t, err)
	assert.True(t, info.IsDir())

	assert.ErrorContains(t, ValidateOutputFile(dir), "is a directory")
}

func TestIsTextFile(t *testing.T) {
	assert.True(t, IsTextFile("resume.txt"))
	assert.True(t, IsTextFile("RESUME.MD"))
	assert.True(t, IsTextFile("cv.adoc"))
	assert.False(t, IsTextFile("resume.pdf"))
	assert.False(t, IsTextFile("resume"))
}

func TestFormatFileSize(t *testing.T) {
	assert.Equal(t, "512 B", FormatFileSize(512))
	assert.Equal(t, "1.0 KB", FormatFileSize(1024))
	assert.Equal(t, "1.5 MB", FormatFileSize(1536*1024))
}

func TestIsBinary(t *testing.T) {
	assert.False(t, IsBinary([]byte("Senior engineer\n")))
	assert.False(t, IsBinary(nil))
	assert.True(t, IsBinary([]byte("PK\x03\x04\x00\x00word/document.xml")))

	late := append([]byte(strings.Repeat("a", 9000)), 0)
	assert.False(t, IsBinary(late), "only the first 8KB are inspected")
}

func TestStripBOM(t *testing.T) {
	assert.Equal(t, []byte("Resume"), StripBOM([]byte("\xEF\xBB\xBFResume")))
	assert.Equal(t, []byte("Resume"), StripBOM([]byte("Resume")))
	assert.Equal(t, []byte("x\xEF\xBB\xBF"), StripBOM([]byte("x\xEF\xBB\xBF")))
}
