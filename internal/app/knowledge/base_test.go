package knowledge

import (
	"strings"
	"testing"

	"github.com/dishalabs/disha-agent/internal/domain"
)

func TestAllExamsPresent(t *testing.T) {
	base := New()

	exams := []domain.Exam{
		domain.ExamGATE, domain.ExamCAT, domain.ExamUGCNET,
		domain.ExamUPSC, domain.ExamGRE, domain.ExamGMAT,
	}
	for _, exam := range exams {
		entry, ok := base.Exam(exam)
		if !ok {
			t.Fatalf("missing exam entry: %s", exam)
		}
		if entry.Overview == "" {
			t.Fatalf("exam %s has no overview", exam)
		}
		if _, ok := entry.Syllabus[domain.BranchGeneral]; !ok {
			t.Fatalf("exam %s has no general syllabus", exam)
		}
		if entry.Strategy == "" || entry.Materials == "" {
			t.Fatalf("exam %s is missing strategy or materials", exam)
		}
		if len(entry.Resources) == 0 {
			t.Fatalf("exam %s has no resources", exam)
		}
	}
}

func TestGateHasFourResourcesAndBranchSyllabi(t *testing.T) {
	base := New()

	gate, ok := base.Exam(domain.ExamGATE)
	if !ok {
		t.Fatal("missing GATE entry")
	}
	if len(gate.Resources) != 4 {
		t.Fatalf("expected 4 GATE resources, got %d", len(gate.Resources))
	}

	for _, branch := range []domain.Branch{domain.BranchCSE, domain.BranchECE, domain.BranchME, domain.BranchCE, domain.BranchEE} {
		if _, ok := gate.Syllabus[branch]; !ok {
			t.Fatalf("missing GATE syllabus for branch %s", branch)
		}
	}

	if !strings.Contains(gate.Syllabus[domain.BranchCSE], "Operating Systems") {
		t.Fatalf("GATE CSE syllabus looks wrong: %q", gate.Syllabus[domain.BranchCSE])
	}
}

func TestResourceURLsAreAbsolute(t *testing.T) {
	base := New()

	for _, exam := range []domain.Exam{domain.ExamGATE, domain.ExamCAT, domain.ExamUGCNET, domain.ExamUPSC, domain.ExamGRE, domain.ExamGMAT} {
		entry, _ := base.Exam(exam)
		for _, res := range entry.Resources {
			if !strings.HasPrefix(res.URL, "https://") {
				t.Fatalf("exam %s resource %q has non-absolute url %q", exam, res.Title, res.URL)
			}
		}
	}
}

func TestDomainFactsPresent(t *testing.T) {
	base := New()

	domains := []domain.Domain{
		domain.DomainEngineering, domain.DomainComputerScience,
		domain.DomainManagement, domain.DomainHumanities, domain.DomainResearch,
	}
	for _, d := range domains {
		if facts := base.DomainFacts(d); len(facts) < 3 {
			t.Fatalf("domain %s has %d facts, want at least 3", d, len(facts))
		}
	}
}
