package formatters

import (
	"encoding/json"
	"fmt"
	"slices"

	"resumediff/internal/types"

	"gopkg.in/yaml.v3"
)

// Formatter interface for different output formats
type Formatter interface {
	Format(data any) (string, error)
	SupportedType() string
}

// Option configures a FormatterRegistry
type Option func(*registryOptions)

type registryOptions struct {
	color   bool
	context int
}

// WithColor enables ANSI colours in the text formatter
func WithColor(enabled bool) Option {
	return func(o *registryOptions) { o.color = enabled }
}

// WithContextLines sets the number of unchanged lines around unified hunks
func WithContextLines(n int) Option {
	return func(o *registryOptions) {
		if n >= 0 {
			o.context = n
		}
	}
}

// FormatterRegistry manages all available formatters
type FormatterRegistry struct {
	formatters map[string]map[string]Formatter // format -> type -> formatter
}

// NewFormatterRegistry creates a new formatter registry with default formatters
func NewFormatterRegistry(opts ...Option) *FormatterRegistry {
	o := registryOptions{context: 3}
	for _, opt := range opts {
		opt(&o)
	}

	registry := &FormatterRegistry{
		formatters: make(map[string]map[string]Formatter),
	}

	registry.RegisterFormatter("json", "any", &JSONFormatter{})
	registry.RegisterFormatter("yaml", "any", &YAMLFormatter{})
	registry.RegisterFormatter("text", "CompareOutput", &CompareTextFormatter{Color: o.color})
	registry.RegisterFormatter("text", "TailorResumeOutput", &TailorTextFormatter{Color: o.color})
	registry.RegisterFormatter("markdown", "CompareOutput", &CompareMarkdownFormatter{})
	registry.RegisterFormatter("markdown", "TailorResumeOutput", &TailorMarkdownFormatter{})
	registry.RegisterFormatter("unified", "CompareOutput", &UnifiedFormatter{Context: o.context})
	registry.RegisterFormatter("unified", "TailorResumeOutput", &UnifiedFormatter{Context: o.context})
	registry.RegisterFormatter("patch", "CompareOutput", &PatchFormatter{})
	registry.RegisterFormatter("patch", "TailorResumeOutput", &PatchFormatter{})

	return registry
}

// RegisterFormatter registers a new formatter for a specific format and data type
func (fr *FormatterRegistry) RegisterFormatter(format, dataType string, formatter Formatter) {
	if fr.formatters[format] == nil {
		fr.formatters[format] = make(map[string]Formatter)
	}
	fr.formatters[format][dataType] = formatter
}

// Format formats data using the appropriate formatter
func (fr *FormatterRegistry) Format(data any, format string) (string, error) {
	dataType := getDataType(data)

	if formatters, exists := fr.formatters[format]; exists {
		if formatter, exists := formatters[dataType]; exists {
			return formatter.Format(data)
		}
		if formatter, exists := formatters["any"]; exists {
			return formatter.Format(data)
		}
	}

	return "", fmt.Errorf("no formatter found for format '%s' and type '%s'", format, dataType)
}

// GetSupportedFormats returns all supported formats in sorted order
func (fr *FormatterRegistry) GetSupportedFormats() []string {
	formats := make([]string, 0, len(fr.formatters))
	for format := range fr.formatters {
		formats = append(formats, format)
	}
	slices.Sort(formats)
	return formats
}

func getDataType(data any) string {
	switch data.(type) {
	case types.CompareOutput, *types.CompareOutput:
		return "CompareOutput"
	case types.TailorResumeOutput, *types.TailorResumeOutput:
		return "TailorResumeOutput"
	default:
		return "any"
	}
}

// compareOutputOf accepts CompareOutput by value or pointer, and the diff
// embedded in a TailorResumeOutput.
func compareOutputOf(data any) (types.CompareOutput, error) {
	switch v := data.(type) {
	case types.CompareOutput:
		return v, nil
	case *types.CompareOutput:
		return *v, nil
	case types.TailorResumeOutput:
		return v.Diff, nil
	case *types.TailorResumeOutput:
		return v.Diff, nil
	default:
		return types.CompareOutput{}, fmt.Errorf("expected CompareOutput, got %T", data)
	}
}

func tailorOutputOf(data any) (types.TailorResumeOutput, error) {
	switch v := data.(type) {
	case types.TailorResumeOutput:
		return v, nil
	case *types.TailorResumeOutput:
		return *v, nil
	default:
		return types.TailorResumeOutput{}, fmt.Errorf("expected TailorResumeOutput, got %T", data)
	}
}

// JSONFormatter handles JSON formatting for any data type
type JSONFormatter struct{}

func (jf *JSONFormatter) Format(data any) (string, error) {
	jsonData, err := json.MarshalIndent(data, "", "  ")
	if err != nil {
		return "", err
	}
	return string(jsonData), nil
}

func (jf *JSONFormatter) SupportedType() string {
	return "any"
}

// YAMLFormatter handles YAML formatting for any data type
type YAMLFormatter struct{}

func (yf *YAMLFormatter) Format(data any) (string, error) {
	out, err := yaml.Marshal(data)
	if err != nil {
		return "", err
	}
	return string(out), nil
}

func (yf *YAMLFormatter) SupportedType() string {
	return "any"
}
