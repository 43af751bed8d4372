// Package classify maps free-text input to a subject domain, an exam and a
// sub-intent. Classification is a pure function of the input and the recent
// history; all randomness lives in the composer's fallback, never here.
package classify

import (
	"regexp"
	"strings"

	"github.com/dishalabs/disha-agent/internal/domain"
)

// Result is the classifier output for one turn. Zero values mean "not
// detected"; the composer owns the fallback behaviour.
type Result struct {
	Domain    domain.Domain
	Exam      domain.Exam
	SubIntent domain.SubIntent
	Branch    domain.Branch
	FollowUp  bool
}

// domainRule pairs a domain with its keyword set. Order in the table is
// significant: the first domain with a keyword hit wins.
type domainRule struct {
	domain   domain.Domain
	keywords []string
}

// computer_science precedes engineering so "computer engineering" resolves to
// the more specific domain.
var domainTable = []domainRule{
	{domain.DomainComputerScience, []string{"computer", "programming", "coding", "software", "algorithm", "data structure", "operating system", "database"}},
	{domain.DomainEngineering, []string{"engineering", "mechanical", "civil", "electrical", "electronics", "thermodynamics", "circuit"}},
	{domain.DomainManagement, []string{"management", "mba", "business", "marketing", "finance", "b-school"}},
	{domain.DomainHumanities, []string{"history", "geography", "polity", "literature", "philosophy", "sociology", "arts"}},
	{domain.DomainResearch, []string{"research", "phd", "thesis", "dissertation", "fellowship"}},
}

// catContext disambiguates the CAT exam from the ordinary word "cat": the
// token alone never fires, it needs an exam-context keyword alongside.
var catContext = []string{"exam", "mba", "management", "percentile", "iim", "b-school", "entrance"}

// netContext plays the same role for UGC-NET's "net" token. "network" and
// "internet" already fail the word-boundary match, but bare "net" still
// needs context.
var netContext = []string{"exam", "ugc", "jrf", "assistant professor", "lectureship", "nta"}

var interrogativeMarkers = []string{"why", "how", "what", "explain", "tell me more"}

var wordPatterns = map[string]*regexp.Regexp{}

func init() {
	for _, w := range []string{"cat", "gate", "gre", "gmat", "net", "ias", "cs", "cse", "ece", "ee", "me"} {
		wordPatterns[w] = regexp.MustCompile(`\b` + w + `\b`)
	}
}

// containsWord reports whether input contains token as a whole word. Short
// tokens like "cat" and "gre" must not match inside "category" or "degree".
func containsWord(input, token string) bool {
	if re, ok := wordPatterns[token]; ok {
		return re.MatchString(input)
	}
	return strings.Contains(input, token)
}

func containsAny(input string, tokens []string) bool {
	for _, t := range tokens {
		if containsWord(input, t) {
			return true
		}
	}
	return false
}

// Classify maps one turn of input, plus the user's recent turns, to a Result.
// Identical inputs always produce identical results.
func Classify(input string, recentHistory []string) Result {
	text := strings.ToLower(input)

	res := Result{
		Domain: detectDomain(text),
		Exam:   detectExam(text),
	}

	// Sub-intent only means something relative to a detected exam.
	if res.Exam != "" {
		res.SubIntent = detectSubIntent(text)
		res.Branch = detectBranch(text)
	}

	if len(recentHistory) > 1 && containsAny(text, interrogativeMarkers) {
		res.FollowUp = true
	}

	return res
}

func detectDomain(text string) domain.Domain {
	for _, rule := range domainTable {
		for _, kw := range rule.keywords {
			if containsWord(text, kw) {
				return rule.domain
			}
		}
	}
	return ""
}

// detectExam is evaluated independently of domain detection and may fire even
// when no domain matched.
func detectExam(text string) domain.Exam {
	switch {
	case containsWord(text, "gate"):
		return domain.ExamGATE
	case containsWord(text, "cat") && containsAny(text, catContext):
		return domain.ExamCAT
	case strings.Contains(text, "ugc"):
		return domain.ExamUGCNET
	case containsWord(text, "net") && containsAny(text, netContext):
		return domain.ExamUGCNET
	case strings.Contains(text, "upsc"), strings.Contains(text, "civil services"), containsWord(text, "ias"):
		return domain.ExamUPSC
	case containsWord(text, "gre"):
		return domain.ExamGRE
	case containsWord(text, "gmat"):
		return domain.ExamGMAT
	}
	return ""
}

func detectSubIntent(text string) domain.SubIntent {
	switch {
	case strings.Contains(text, "syllabus"), strings.Contains(text, "curriculum"), strings.Contains(text, "topics"):
		return domain.IntentSyllabus
	case strings.Contains(text, "strategy"), strings.Contains(text, "preparation"), strings.Contains(text, "prepare"),
		strings.Contains(text, "crack"), strings.Contains(text, "study plan"):
		return domain.IntentStrategy
	case strings.Contains(text, "materials"), strings.Contains(text, "books"), strings.Contains(text, "resources"),
		strings.Contains(text, "notes"), strings.Contains(text, "study material"):
		return domain.IntentMaterials
	}
	return ""
}

func detectBranch(text string) domain.Branch {
	switch {
	case containsWord(text, "cse"), strings.Contains(text, "computer science"), containsWord(text, "cs"):
		return domain.BranchCSE
	case containsWord(text, "ece"), strings.Contains(text, "electronics"):
		return domain.BranchECE
	case strings.Contains(text, "mechanical"):
		return domain.BranchME
	case strings.Contains(text, "civil"):
		return domain.BranchCE
	case strings.Contains(text, "electrical"), containsWord(text, "ee"):
		return domain.BranchEE
	}
	return ""
}
