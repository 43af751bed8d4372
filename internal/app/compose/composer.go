// Package compose turns a classification into an answer from the built-in
// knowledge base. It never fails: every branch degrades toward a more
// generic reply rather than returning an error.
package compose

import (
	"github.com/dishalabs/disha-agent/internal/app/classify"
	"github.com/dishalabs/disha-agent/internal/app/knowledge"
	"github.com/dishalabs/disha-agent/internal/domain"
)

// Reply is a composed answer plus the resources that back it.
type Reply struct {
	Text      string
	Resources []domain.Resource
}

// Picker selects an index in [0, n). The domain-fact fallback is the one
// place nondeterminism is allowed; tests inject a fixed picker.
type Picker func(n int) int

// Composer answers turns from the knowledge base.
type Composer struct {
	base *knowledge.Base
	pick Picker
}

func New(base *knowledge.Base, pick Picker) *Composer {
	if pick == nil {
		pick = func(n int) int { return 0 }
	}
	return &Composer{base: base, pick: pick}
}

// Compose dispatches in a fixed order: exam+sub-intent section, exam
// overview, domain fact, follow-up prompt, generic clarification.
func (c *Composer) Compose(res classify.Result) Reply {
	if res.Exam != "" {
		entry, ok := c.base.Exam(res.Exam)
		if !ok {
			// An exam the classifier knows but the base does not: treat as
			// no match rather than failing the turn.
			return Reply{Text: knowledge.ClarificationPrompt}
		}

		if res.SubIntent != "" {
			if text, ok := c.examSection(entry, res.SubIntent, res.Branch); ok {
				return Reply{Text: text, Resources: entry.Resources}
			}
		}

		return Reply{Text: entry.Overview, Resources: entry.Resources}
	}

	if res.Domain != "" {
		facts := c.base.DomainFacts(res.Domain)
		if len(facts) > 0 {
			return Reply{Text: facts[c.pick(len(facts))]}
		}
	}

	if res.FollowUp {
		return Reply{Text: knowledge.FollowUpPrompt}
	}

	return Reply{Text: knowledge.ClarificationPrompt}
}

// examSection resolves a sub-intent against one exam entry. A missing branch
// syllabus degrades to the exam's general syllabus; a missing section
// reports !ok so the caller can fall back to the overview.
func (c *Composer) examSection(entry knowledge.ExamEntry, intent domain.SubIntent, branch domain.Branch) (string, bool) {
	switch intent {
	case domain.IntentSyllabus:
		if branch != "" {
			if text, ok := entry.Syllabus[branch]; ok {
				return text, true
			}
		}
		if text, ok := entry.Syllabus[domain.BranchGeneral]; ok {
			return text, true
		}
		return "", false
	case domain.IntentStrategy:
		return entry.Strategy, entry.Strategy != ""
	case domain.IntentMaterials:
		return entry.Materials, entry.Materials != ""
	}
	return "", false
}
