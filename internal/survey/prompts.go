// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package survey

import (
	"bytes"
	"fmt"
	"text/template"

	"github.com/pdiddy/survey-engine/pkg/types"
)

// Mode selects what a session asks the model to do with a paper. The set is
// closed: each mode binds a prompt template and, for code checking, a response
// validator.
type Mode string

const (
	// ModeSummarize produces a structured summary of the paper.
	ModeSummarize Mode = "summarize"

	// ModeExplain answers a user question about the paper.
	ModeExplain Mode = "explain"

	// ModeCodeCheck asks for the paper's code repository link.
	ModeCodeCheck Mode = "code-check"

	// ModeCustom sends the caller's prompt verbatim.
	ModeCustom Mode = "custom"
)

// Valid reports whether the mode is a member of the closed set.
func (m Mode) Valid() bool {
	switch m {
	case ModeSummarize, ModeExplain, ModeCodeCheck, ModeCustom:
		return true
	}
	return false
}

const sectionsPreamble = `You are given the key sections extracted from a research paper.

Abstract:
{{.Sections.Abstract}}

Introduction:
{{.Sections.Introduction}}

Discussion:
{{.Sections.Discussion}}

Conclusion:
{{.Sections.Conclusion}}

`

// summarizeTmpl asks for a structured summary built from the extracted sections.
var summarizeTmpl = template.Must(template.New("summarize").Parse(sectionsPreamble + `Your task is to summarize the paper for a computer science researcher. Cover, in order: the problem the paper addresses and why it matters, the proposed method or approach, the main results, and the stated limitations or open questions. Do not include reference marks, author information, page numbers, figure captions, or table captions. Write the summary as plain prose.

Here is the summary:`))

// explainTmpl answers one user question with the sections as context. Earlier
// questions and answers travel in the conversation history, not the template.
var explainTmpl = template.Must(template.New("explain").Parse(sectionsPreamble + `Your task is to answer a question about this paper. Ground the answer in the sections above; when the sections do not contain the answer, say so instead of guessing.

The question is:
{{.Question}}

Here is the answer:`))

// codeCheckTmpl asks for the paper's repository link in a machine-checkable
// shape: a bare link or the "not available" sentinel, nothing else.
var codeCheckTmpl = template.Must(template.New("codecheck").Parse(sectionsPreamble + `Your task is to report whether the paper provides a link to the code that implements its method. If the sections contain such a link, your answer must be only that link. If they do not, your answer must be exactly "not available". Your answer must contain nothing else.

Here is the answer:`))

// promptData is the template payload shared by all modes.
type promptData struct {
	Sections types.Sections
	Question string
}

// buildPrompt renders the mode's template. override is the verbatim prompt for
// ModeCustom and the question for ModeExplain; for the other modes a non-empty
// override replaces the template entirely.
func buildPrompt(mode Mode, sections types.Sections, override string) (string, error) {
	switch mode {
	case ModeCustom:
		if override == "" {
			return "", &types.ConfigurationError{Key: "prompt", Reason: "custom mode needs a prompt"}
		}
		return override, nil
	case ModeExplain:
		if override == "" {
			return "", &types.ConfigurationError{Key: "question", Reason: "explain mode needs a question"}
		}
		return render(explainTmpl, promptData{Sections: sections, Question: override})
	case ModeSummarize:
		if override != "" {
			return override, nil
		}
		return render(summarizeTmpl, promptData{Sections: sections})
	case ModeCodeCheck:
		if override != "" {
			return override, nil
		}
		return render(codeCheckTmpl, promptData{Sections: sections})
	default:
		return "", &types.ConfigurationError{Key: "mode", Reason: fmt.Sprintf("unknown mode %q", mode)}
	}
}

func render(tmpl *template.Template, data promptData) (string, error) {
	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return "", fmt.Errorf("rendering prompt: %w", err)
	}
	return buf.String(), nil
}
