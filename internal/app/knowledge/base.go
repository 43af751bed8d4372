// Package knowledge holds the assistant's built-in exam and subject content.
// The tables are built once and never mutated; dispatch over them lives in
// the compose package so lookup order stays auditable in one place.
package knowledge

import "github.com/dishalabs/disha-agent/internal/domain"

// ExamEntry is everything the assistant knows about one examination.
type ExamEntry struct {
	Name     string
	Overview string

	// Syllabus is keyed by branch; BranchGeneral is the fallback when the
	// exam has no sub-tracks or the asked branch is unknown.
	Syllabus map[domain.Branch]string

	Strategy  string
	Materials string

	Resources []domain.Resource
}

// Base is the immutable knowledge base.
type Base struct {
	exams       map[domain.Exam]ExamEntry
	domainFacts map[domain.Domain][]string
}

// Exam returns the entry for an exam, if present.
func (b *Base) Exam(exam domain.Exam) (ExamEntry, bool) {
	e, ok := b.exams[exam]
	return e, ok
}

// DomainFacts returns the fact list for a subject domain.
func (b *Base) DomainFacts(d domain.Domain) []string {
	return b.domainFacts[d]
}

// ClarificationPrompt is the fixed reply when nothing in the input matched.
const ClarificationPrompt = "I can help you with exam preparation and study guidance. " +
	"Could you tell me which subject or exam you have in mind? " +
	"For example: GATE, CAT, UGC-NET, UPSC, GRE or GMAT."

// FollowUpPrompt is used when the input reads as a follow-up question but
// carries no new topic of its own.
const FollowUpPrompt = "Happy to go deeper on what we were discussing. " +
	"Which part would you like me to expand on: the syllabus, the preparation plan, or the study material?"

// New builds the knowledge base.
func New() *Base {
	return &Base{
		exams:       examEntries(),
		domainFacts: domainFacts(),
	}
}

func examEntries() map[domain.Exam]ExamEntry {
	return map[domain.Exam]ExamEntry{
		domain.ExamGATE: {
			Name: "GATE",
			Overview: "GATE (Graduate Aptitude Test in Engineering) is the national entrance for " +
				"M.Tech admissions and PSU recruitment. It is a 3-hour, 100-mark computer-based test: " +
				"General Aptitude (15 marks) plus your chosen engineering paper (85 marks), with MCQ, " +
				"MSQ and numerical answer questions. A good GATE score stays valid for three years.",
			Syllabus: map[domain.Branch]string{
				domain.BranchGeneral: "GATE covers General Aptitude plus the full undergraduate syllabus of your " +
					"engineering discipline. Tell me your branch (CSE, ECE, Mechanical, Civil or Electrical) " +
					"and I can break the paper down section by section.",
				domain.BranchCSE: "GATE CSE syllabus: Engineering Mathematics (discrete maths, linear algebra, " +
					"calculus, probability), Digital Logic, Computer Organization and Architecture, Programming " +
					"and Data Structures, Algorithms, Theory of Computation, Compiler Design, Operating Systems, " +
					"Databases, and Computer Networks, plus the common General Aptitude section.",
				domain.BranchECE: "GATE ECE syllabus: Engineering Mathematics, Networks, Signals and Systems, " +
					"Electronic Devices, Analog Circuits, Digital Circuits, Control Systems, Communications, " +
					"and Electromagnetics, plus General Aptitude.",
				domain.BranchME: "GATE Mechanical syllabus: Engineering Mathematics, Applied Mechanics and Design " +
					"(engineering mechanics, strength of materials, machine design), Fluid Mechanics and Thermal " +
					"Sciences (thermodynamics, heat transfer), and Materials, Manufacturing and Industrial " +
					"Engineering, plus General Aptitude.",
				domain.BranchCE: "GATE Civil syllabus: Engineering Mathematics, Structural Engineering, " +
					"Geotechnical Engineering, Water Resources Engineering, Environmental Engineering, " +
					"Transportation Engineering, and Geomatics, plus General Aptitude.",
				domain.BranchEE: "GATE Electrical syllabus: Engineering Mathematics, Electric Circuits, " +
					"Electromagnetic Fields, Signals and Systems, Electrical Machines, Power Systems, " +
					"Control Systems, Measurements, Analog and Digital Electronics, and Power Electronics, " +
					"plus General Aptitude.",
			},
			Strategy: "A solid GATE plan: finish the full syllabus 3–4 months before the exam, keep one " +
				"short-notes register per subject, and solve the previous 15 years of questions topic-wise. " +
				"From December onward shift to full-length mocks, at least one a week, analysed the same day. " +
				"Accuracy beats attempt count: negative marking punishes guessing on 1-mark MCQs.",
			Materials: "Start with your standard undergraduate texts, then move to previous-year question banks. " +
				"NPTEL lectures cover every GATE subject free of cost, and a single test series is enough; " +
				"more mocks than you can analyse is wasted money.",
			Resources: []domain.Resource{
				{Kind: domain.ResourceCourse, Title: "NPTEL GATE courses", URL: "https://nptel.ac.in", Description: "Free IIT video courses mapped to the GATE syllabus"},
				{Kind: domain.ResourceVideo, Title: "Gate Smashers", URL: "https://www.youtube.com/@GateSmashers", Description: "Subject-wise GATE CSE lecture playlists"},
				{Kind: domain.ResourceBook, Title: "Previous year solved papers", URL: "https://gate2026.iitg.ac.in", Description: "Official papers from the organising institute"},
				{Kind: domain.ResourceNotes, Title: "Made Easy handwritten notes", URL: "https://www.madeeasy.in/postal-study-course", Description: "Condensed revision notes for core subjects"},
			},
		},
		domain.ExamCAT: {
			Name: "CAT",
			Overview: "CAT (Common Admission Test) is the gateway to the IIMs and most top Indian B-schools. " +
				"It is a 2-hour computer-based test with three timed sections: Verbal Ability and Reading " +
				"Comprehension, Data Interpretation and Logical Reasoning, and Quantitative Ability. " +
				"Percentile matters more than raw score, and sectional cut-offs apply.",
			Syllabus: map[domain.Branch]string{
				domain.BranchGeneral: "CAT syllabus: VARC (reading comprehension, para jumbles, para summary), " +
					"DILR (tables, charts, arrangements, puzzles), and QA (arithmetic, algebra, geometry, " +
					"number systems, modern maths). There is no fixed official syllabus; past papers define it.",
			},
			Strategy: "CAT rewards selection over speed: in every section, spend the first minutes choosing " +
				"the sets and questions worth attempting. Build a daily reading habit for VARC, practise DILR " +
				"sets under a strict timer, and keep QA fundamentals sharp with arithmetic first. Take sectional " +
				"tests early and full mocks weekly from August.",
			Materials: "Arun Sharma's series for QA and DILR, daily editorial reading for VARC, and one good " +
				"mock series with detailed percentile analytics. Past CAT papers from the last decade are the " +
				"single best predictor of question style.",
			Resources: []domain.Resource{
				{Kind: domain.ResourceCourse, Title: "IIM CAT official site", URL: "https://iimcat.ac.in", Description: "Registration, past papers and official mocks"},
				{Kind: domain.ResourceBook, Title: "How to Prepare for Quantitative Aptitude for the CAT", URL: "https://www.mheducation.co.in", Description: "Arun Sharma's standard QA text"},
				{Kind: domain.ResourceVideo, Title: "Rodha CAT preparation", URL: "https://www.youtube.com/@Rodha", Description: "Free full-syllabus CAT lecture series"},
			},
		},
		domain.ExamUGCNET: {
			Name: "UGC-NET",
			Overview: "UGC-NET decides eligibility for Assistant Professor posts and the Junior Research " +
				"Fellowship (JRF) in Indian universities. It has two papers in one sitting: Paper 1 on teaching " +
				"and research aptitude (common to all), and Paper 2 on your chosen subject. There is no " +
				"negative marking.",
			Syllabus: map[domain.Branch]string{
				domain.BranchGeneral: "Paper 1: teaching aptitude, research aptitude, comprehension, communication, " +
					"mathematical reasoning, logical reasoning, data interpretation, ICT, people and environment, " +
					"and higher education system. Paper 2 follows the official subject-wise syllabus published by NTA.",
			},
			Strategy: "Treat Paper 1 as a scoring paper: its syllabus is small and question patterns repeat. " +
				"For Paper 2, structure notes unit-wise against the official syllabus and revise with previous " +
				"papers; since there is no negative marking, attempt every question.",
			Materials: "The NTA website publishes the official subject syllabi and past papers. For Paper 1, " +
				"a single dedicated guide plus previous-year questions is sufficient.",
			Resources: []domain.Resource{
				{Kind: domain.ResourceCourse, Title: "NTA UGC-NET portal", URL: "https://ugcnet.nta.ac.in", Description: "Official syllabus, notifications and past papers"},
				{Kind: domain.ResourceNotes, Title: "UGC-NET Paper 1 study notes", URL: "https://www.ugcnetonline.in/syllabus-new.php", Description: "Unit-wise Paper 1 coverage"},
			},
		},
		domain.ExamUPSC: {
			Name: "UPSC CSE",
			Overview: "The UPSC Civil Services Examination selects officers for the IAS, IPS, IFS and allied " +
				"services. It runs in three stages across a year: Prelims (objective, screening), Mains " +
				"(nine descriptive papers), and the Personality Test interview.",
			Syllabus: map[domain.Branch]string{
				domain.BranchGeneral: "Prelims: General Studies (history, geography, polity, economy, environment, " +
					"science, current affairs) and CSAT (aptitude, qualifying). Mains: essay, four GS papers, " +
					"two optional-subject papers, and qualifying language papers. The interview carries 275 marks.",
			},
			Strategy: "Build the foundation from NCERT textbooks, then one standard reference per subject. " +
				"Read one newspaper daily and maintain your own current-affairs notes. Answer writing practice " +
				"for Mains should start months before Prelims results; it is the stage most aspirants underestimate.",
			Materials: "NCERTs (VI–XII), Laxmikanth for polity, Spectrum for modern history, and the Economic " +
				"Survey for economy. Past papers from the UPSC site show exactly how questions are framed.",
			Resources: []domain.Resource{
				{Kind: domain.ResourceCourse, Title: "UPSC official site", URL: "https://upsc.gov.in", Description: "Notifications, syllabus and previous papers"},
				{Kind: domain.ResourceBook, Title: "Indian Polity by M. Laxmikanth", URL: "https://www.mheducation.co.in", Description: "The standard polity reference"},
				{Kind: domain.ResourceNotes, Title: "PIB releases", URL: "https://pib.gov.in", Description: "Primary source for government schemes and policy"},
			},
		},
		domain.ExamGRE: {
			Name: "GRE",
			Overview: "The GRE General Test is required by most US and many international graduate programmes. " +
				"It tests Verbal Reasoning, Quantitative Reasoning and Analytical Writing, is section-adaptive, " +
				"and scores Verbal and Quant on a 130–170 scale each. Scores stay valid for five years.",
			Syllabus: map[domain.Branch]string{
				domain.BranchGeneral: "Verbal: reading comprehension, text completion, sentence equivalence. " +
					"Quant: arithmetic, algebra, geometry, data analysis. Analytical Writing: one 'Analyze an Issue' essay.",
			},
			Strategy: "Start from an official diagnostic test to find your baseline. Vocabulary accrues slowly, " +
				"learn words in context daily rather than cramming lists. For Quant, the maths is school-level; " +
				"the difficulty is traps and time pressure, so drill official questions under timed conditions.",
			Materials: "ETS official guides and POWERPREP mocks are non-negotiable; they are real retired " +
				"questions. Supplement with Manhattan 5lb for volume practice.",
			Resources: []domain.Resource{
				{Kind: domain.ResourceCourse, Title: "ETS GRE official", URL: "https://www.ets.org/gre", Description: "Registration, official guides and free POWERPREP mocks"},
				{Kind: domain.ResourceVideo, Title: "GregMat", URL: "https://www.youtube.com/@GregMat", Description: "Structured GRE prep playlists"},
			},
		},
		domain.ExamGMAT: {
			Name: "GMAT",
			Overview: "The GMAT Focus Edition is the standard admission test for MBA programmes worldwide. " +
				"It has three 45-minute sections (Quantitative Reasoning, Verbal Reasoning, and Data " +
				"Insights) with a total score on a 205–805 scale. Scores are valid for five years.",
			Syllabus: map[domain.Branch]string{
				domain.BranchGeneral: "Quant: arithmetic and algebra problem solving (no geometry in the Focus " +
					"Edition). Verbal: reading comprehension and critical reasoning. Data Insights: data " +
					"sufficiency, multi-source reasoning, tables, graphics and two-part analysis.",
			},
			Strategy: "The GMAT is computer-adaptive per question, so early accuracy matters. Master data " +
				"sufficiency logic before volume practice, keep an error log from day one, and mirror real " +
				"test timing in every practice session.",
			Materials: "The GMAT Official Guide plus the free official Starter Kit mocks from mba.com. " +
				"Target 2–3 months of structured preparation with weekly reviews of your error log.",
			Resources: []domain.Resource{
				{Kind: domain.ResourceCourse, Title: "mba.com official GMAT", URL: "https://www.mba.com", Description: "Registration, Official Guide and free mocks"},
				{Kind: domain.ResourceBook, Title: "GMAT Official Guide", URL: "https://www.mba.com/exam-prep/gmat-official-guide", Description: "Retired real questions with explanations"},
			},
		},
	}
}

func domainFacts() map[domain.Domain][]string {
	return map[domain.Domain][]string{
		domain.DomainEngineering: {
			"Engineering preparation pays off fastest when you work problems rather than re-read theory; aim for a 70/30 split in favour of solving.",
			"For any engineering exam, previous-year questions are the syllabus in disguise: 15 years of papers show every recurring pattern.",
			"Strength of materials, thermodynamics and circuit analysis are the classic score-deciders; give your weakest of them a fixed daily slot.",
		},
		domain.DomainComputerScience: {
			"Data structures and algorithms underpin every CS exam and interview; implement each structure once from scratch before memorising complexities.",
			"Operating systems, DBMS and computer networks together form the core-subject triad most screening tests draw from.",
			"When studying algorithms, trace them on paper with a small input before touching code; it builds the intuition exams test for.",
		},
		domain.DomainManagement: {
			"Management entrance tests reward reading speed and comprehension more than memorised formulas; a daily reading habit is the highest-yield investment.",
			"Data interpretation sets are about set selection: learning to skip the wrong set is worth more marks than solving faster.",
			"Group discussions and interviews weigh structured thinking; practise framing any topic as situation, analysis, recommendation.",
		},
		domain.DomainHumanities: {
			"For humanities papers, answer structure carries marks: introduction, argument with evidence, and a balanced conclusion.",
			"Link static subjects like history and polity to current affairs; examiners increasingly frame questions at that intersection.",
			"Maps, timelines and one-page charts compress humanities syllabi better than long prose notes.",
		},
		domain.DomainResearch: {
			"A focused literature review comes before everything else in research: know what has been done before deciding what you will do.",
			"Research aptitude questions test method vocabulary (sampling, validity, reliability, hypothesis types) more than deep statistics.",
			"Writing a little every day beats writing a lot occasionally; a thesis is built in 500-word increments.",
		},
	}
}
