package compose

import (
	"strings"
	"testing"

	"github.com/dishalabs/disha-agent/internal/app/classify"
	"github.com/dishalabs/disha-agent/internal/app/knowledge"
	"github.com/dishalabs/disha-agent/internal/domain"
)

func newComposer() *Composer {
	return New(knowledge.New(), func(n int) int { return 0 })
}

func TestComposeGateCSESyllabus(t *testing.T) {
	c := newComposer()

	reply := c.Compose(classify.Result{
		Exam:      domain.ExamGATE,
		SubIntent: domain.IntentSyllabus,
		Branch:    domain.BranchCSE,
	})

	if !strings.Contains(reply.Text, "GATE CSE syllabus") {
		t.Fatalf("expected the CSE syllabus text, got %q", reply.Text)
	}
	if len(reply.Resources) != 4 {
		t.Fatalf("expected the 4 GATE resources unchanged, got %d", len(reply.Resources))
	}
}

func TestComposeUnknownBranchDegradesToGeneralSyllabus(t *testing.T) {
	c := newComposer()
	base := knowledge.New()
	gate, _ := base.Exam(domain.ExamGATE)

	reply := c.Compose(classify.Result{
		Exam:      domain.ExamGATE,
		SubIntent: domain.IntentSyllabus,
		Branch:    domain.Branch("aerospace"),
	})

	if reply.Text != gate.Syllabus[domain.BranchGeneral] {
		t.Fatalf("expected general syllabus fallback, got %q", reply.Text)
	}
}

func TestComposeExamWithoutSubIntentReturnsOverview(t *testing.T) {
	c := newComposer()
	base := knowledge.New()
	cat, _ := base.Exam(domain.ExamCAT)

	reply := c.Compose(classify.Result{Exam: domain.ExamCAT})

	if reply.Text != cat.Overview {
		t.Fatalf("expected CAT overview, got %q", reply.Text)
	}
	if len(reply.Resources) != len(cat.Resources) {
		t.Fatalf("expected overview resources, got %d", len(reply.Resources))
	}
}

func TestComposeDomainFallbackUsesPickerAndNoResources(t *testing.T) {
	base := knowledge.New()
	facts := base.DomainFacts(domain.DomainComputerScience)

	picked := -1
	c := New(base, func(n int) int {
		if n != len(facts) {
			t.Fatalf("picker called with %d, want %d", n, len(facts))
		}
		picked = 1
		return 1
	})

	reply := c.Compose(classify.Result{Domain: domain.DomainComputerScience})

	if picked != 1 {
		t.Fatal("picker was not consulted")
	}
	if reply.Text != facts[1] {
		t.Fatalf("expected fact[1], got %q", reply.Text)
	}
	if len(reply.Resources) != 0 {
		t.Fatalf("domain fallback must carry no resources, got %d", len(reply.Resources))
	}
}

func TestComposeNoMatchReturnsClarification(t *testing.T) {
	c := newComposer()

	reply := c.Compose(classify.Result{})

	if reply.Text != knowledge.ClarificationPrompt {
		t.Fatalf("expected clarification prompt, got %q", reply.Text)
	}
	if len(reply.Resources) != 0 {
		t.Fatalf("clarification must carry no resources")
	}
}

func TestComposeFollowUpWithoutTopic(t *testing.T) {
	c := newComposer()

	reply := c.Compose(classify.Result{FollowUp: true})

	if reply.Text != knowledge.FollowUpPrompt {
		t.Fatalf("expected follow-up prompt, got %q", reply.Text)
	}
}

func TestComposeNeverEmpty(t *testing.T) {
	c := newComposer()

	results := []classify.Result{
		{},
		{Exam: domain.ExamGMAT, SubIntent: domain.IntentStrategy},
		{Exam: domain.ExamUGCNET, SubIntent: domain.IntentMaterials},
		{Domain: domain.DomainHumanities},
		{Exam: domain.Exam("unknown")},
	}
	for _, res := range results {
		if reply := c.Compose(res); strings.TrimSpace(reply.Text) == "" {
			t.Fatalf("empty reply for %+v", res)
		}
	}
}
