package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"
)

// maxPromptFileSize bounds prompt override files.
const maxPromptFileSize = 64 * 1024

// loadPromptFiles replaces inline prompts with the content of configured prompt files.
// A file path takes precedence over an inline prompt.
func (c *Config) loadPromptFiles() error {
	p := &c.AI.CustomPrompts

	for _, item := range []struct {
		kind   string
		path   string
		target *string
	}{
		{"system", p.SystemPromptFile, &p.SystemPrompt},
		{"user", p.UserPromptFile, &p.UserPrompt},
	} {
		if item.path == "" {
			continue
		}
		content, err := readPromptFile(item.path)
		if err != nil {
			return fmt.Errorf("%s prompt: %w", item.kind, err)
		}
		*item.target = content
		log.Printf("[CONFIG] Loaded %s prompt from %s (%d bytes)", item.kind, item.path, len(content))
	}

	return nil
}

func readPromptFile(path string) (string, error) {
	path = filepath.Clean(path)

	info, err := os.Stat(path)
	if err != nil {
		return "", fmt.Errorf("cannot access prompt file %s: %w", path, err)
	}
	if info.IsDir() {
		return "", fmt.Errorf("prompt file %s is a directory", path)
	}
	if info.Size() > maxPromptFileSize {
		return "", fmt.Errorf("prompt file %s is too large (%d bytes, max %d)", path, info.Size(), maxPromptFileSize)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", fmt.Errorf("failed to read prompt file %s: %w", path, err)
	}

	content := strings.TrimSpace(string(data))
	if content == "" {
		return "", fmt.Errorf("prompt file %s is empty", path)
	}
	return content, nil
}
