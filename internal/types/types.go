package types

import "resumediff/internal/worddiff"

// CompareInput represents the input for comparing two resume versions
type CompareInput struct {
	OldText  string `json:"oldText" yaml:"oldText"`
	NewText  string `json:"newText" yaml:"newText"`
	OldLabel string `json:"oldLabel,omitempty" yaml:"oldLabel,omitempty"`
	NewLabel string `json:"newLabel,omitempty" yaml:"newLabel,omitempty"`
}

// CompareOutput represents the word-level diff of two resume versions
type CompareOutput struct {
	ID           string             `json:"id" yaml:"id"`
	OldLabel     string             `json:"oldLabel,omitempty" yaml:"oldLabel,omitempty"`
	NewLabel     string             `json:"newLabel,omitempty" yaml:"newLabel,omitempty"`
	Strategy     worddiff.Strategy  `json:"strategy" yaml:"strategy"`
	Changed      bool               `json:"changed" yaml:"changed"`
	AddedWords   int                `json:"addedWords" yaml:"addedWords"`
	RemovedWords int                `json:"removedWords" yaml:"removedWords"`
	Segments     []worddiff.Segment `json:"segments" yaml:"segments"`
}

// Result returns the engine view of the output
func (o CompareOutput) Result() worddiff.Result {
	return worddiff.Result{
		Segments:     o.Segments,
		AddedWords:   o.AddedWords,
		RemovedWords: o.RemovedWords,
		Strategy:     o.Strategy,
	}
}

// TailorResumeInput represents the input for tailoring a resume
type TailorResumeInput struct {
	BaseResume     string `json:"baseResume"`
	JobDescription string `json:"jobDescription"`
}

// TailoredResume is what the AI provider returns for a tailoring request
type TailoredResume struct {
	TailoredResume string   `json:"tailoredResume"`
	Summary        string   `json:"summary"`
	Highlights     []string `json:"highlights"`
}

// TailorResumeOutput represents the tailored resume plus its diff against the base resume
type TailorResumeOutput struct {
	TailoredResume string        `json:"tailoredResume" yaml:"tailoredResume"`
	Summary        string        `json:"summary" yaml:"summary"`
	Highlights     []string      `json:"highlights,omitempty" yaml:"highlights,omitempty"`
	Diff           CompareOutput `json:"diff" yaml:"diff"`
}
