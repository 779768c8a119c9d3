package ai

import (
	"fmt"
	"strings"

	"resumediff/internal/config"
)

// DefaultSystemPrompt is the system instruction for resume tailoring
const DefaultSystemPrompt = `You are an expert resume writer with a strict commitment to honesty and accuracy. Your core principles are:

- NEVER invent, exaggerate, or misattribute any skills or experiences
- Every piece of information must be directly traceable to the base resume
- Keep the structure, section order and wording of the base resume unless a change makes it more relevant
- Prefer small, targeted edits over rewrites so every change is easy to review`

// DefaultUserPrompt is the user prompt template for resume tailoring. The
// first %s receives the base resume, the second the job description.
const DefaultUserPrompt = `Tailor the base resume below for the job description that follows.

**Tasks:**

1. **Tailored Resume**:
   Return the complete tailored resume as plain text. Highlight the skills and experience *explicitly present in the base resume* that matter most for this role.
   Only use keywords from the job description when the corresponding skill or experience exists in the base resume.
   Keep unchanged passages byte for byte identical to the base resume so the differences can be reviewed word by word.

2. **Summary**:
   Describe in two or three sentences what you changed and why.

3. **Highlights**:
   List up to five short phrases naming the most important changes.

**Base Resume:**
-----
%s
-----

**Job Description:**
-----
%s
-----`

// promptSet holds the resolved prompts of a provider
type promptSet struct {
	system string
	user   string
}

// resolvePrompts picks configured prompts over the defaults. Prompt files
// are already read into the inline fields when the configuration loads.
func resolvePrompts(cfg config.PromptConfig) (promptSet, error) {
	p := promptSet{
		system: resolvePrompt(cfg.SystemPrompt, DefaultSystemPrompt),
		user:   resolvePrompt(cfg.UserPrompt, DefaultUserPrompt),
	}
	if n := strings.Count(strings.ReplaceAll(p.user, "%%", ""), "%s"); n != 2 {
		return promptSet{}, fmt.Errorf("user prompt must contain exactly two %%s placeholders (resume, job description), found %d", n)
	}
	return p, nil
}

func resolvePrompt(fromConfig, fromDefault string) string {
	if strings.TrimSpace(fromConfig) != "" {
		return fromConfig
	}
	return fromDefault
}

func (p promptSet) tailorPrompt(baseResume, jobDescription string) string {
	return fmt.Sprintf(p.user, baseResume, jobDescription)
}
