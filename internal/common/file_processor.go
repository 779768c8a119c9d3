package common

import (
	"fmt"
	"os"
	"path/filepath"
	"unicode/utf8"

	"resumediff/internal/errors"
	"resumediff/internal/utils"
)

// FileProcessor reads resume and job description files and writes results
type FileProcessor struct {
	logger      *errors.Logger
	maxFileSize int64
}

// NewFileProcessor creates a new file processor. Files larger than
// maxFileSize bytes are rejected; zero disables the check.
func NewFileProcessor(logger *errors.Logger, maxFileSize int64) *FileProcessor {
	return &FileProcessor{logger: logger, maxFileSize: maxFileSize}
}

// ReadText reads a text document. Binary documents are rejected and a
// leading byte order mark is dropped so it does not appear in the diff.
func (fp *FileProcessor) ReadText(filename string) (string, error) {
	content, err := os.ReadFile(filename)
	if err != nil {
		if os.IsNotExist(err) {
			return "", errors.NewIOError(errors.ErrCodeFileNotFound,
				fmt.Sprintf("File not found: %s", filename), err)
		}
		return "", errors.NewIOError(errors.ErrCodeFileNotReadable,
			fmt.Sprintf("Cannot read file: %s", filename), err)
	}

	if utils.IsBinary(content) {
		return "", errors.NewValidationError(errors.ErrCodeBinaryInput,
			fmt.Sprintf("%s looks like a binary document; export it as plain text first", filename), nil).
			WithContext("file", filename)
	}
	if !utf8.Valid(content) {
		fp.logger.Warn("File is not valid UTF-8, invalid bytes will be compared as-is", "filename", filename)
	}
	return string(utils.StripBOM(content)), nil
}

// WriteFile writes content to a file with directory creation
func (fp *FileProcessor) WriteFile(filename, content string) error {
	if dir := filepath.Dir(filename); dir != "." {
		if err := os.MkdirAll(dir, 0750); err != nil {
			return errors.NewIOError(errors.ErrCodeOutputFailed,
				fmt.Sprintf("Cannot create directory: %s", dir), err)
		}
	}

	if err := os.WriteFile(filename, []byte(content), 0600); err != nil {
		return errors.NewIOError(errors.ErrCodeOutputFailed,
			fmt.Sprintf("Cannot write file: %s", filename), err)
	}
	return nil
}

// ValidateAndReadFiles validates and reads the input documents in order
func (fp *FileProcessor) ValidateAndReadFiles(filenames ...string) ([]string, error) {
	contents := make([]string, 0, len(filenames))

	for _, filename := range filenames {
		if err := utils.ValidateInputFile(filename, fp.maxFileSize); err != nil {
			return nil, errors.NewValidationError("INVALID_INPUT_FILE",
				fmt.Sprintf("Invalid file %s", filename), err).WithContext("file", filename)
		}

		if !utils.IsTextFile(filename) {
			fp.logger.Debug("Unrecognised text extension, reading anyway", "filename", filename)
		}

		content, err := fp.ReadText(filename)
		if err != nil {
			return nil, err
		}
		contents = append(contents, content)
	}

	return contents, nil
}

// ValidateOutputFile validates output file path
func (fp *FileProcessor) ValidateOutputFile(filename string) error {
	if err := utils.ValidateOutputFile(filename); err != nil {
		return errors.NewValidationError("INVALID_OUTPUT_FILE",
			fmt.Sprintf("Invalid output file: %s", filename), err)
	}
	return nil
}
