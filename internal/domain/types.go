package domain

import "time"

type SessionID string
type MessageID uint64

type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

// Domain is a coarse academic subject area used for generic fallback answers.
type Domain string

const (
	DomainEngineering     Domain = "engineering"
	DomainComputerScience Domain = "computer_science"
	DomainManagement      Domain = "management"
	DomainHumanities      Domain = "humanities"
	DomainResearch        Domain = "research"
)

// Exam is a named competitive examination with dedicated structured content.
type Exam string

const (
	ExamGATE   Exam = "gate"
	ExamCAT    Exam = "cat"
	ExamUGCNET Exam = "ugc_net"
	ExamUPSC   Exam = "upsc"
	ExamGRE    Exam = "gre"
	ExamGMAT   Exam = "gmat"
)

// SubIntent is the aspect of an exam the user is asking about.
type SubIntent string

const (
	IntentSyllabus  SubIntent = "syllabus"
	IntentStrategy  SubIntent = "strategy"
	IntentMaterials SubIntent = "materials"
)

// Branch identifies an exam sub-track (e.g. a GATE engineering discipline).
type Branch string

const (
	BranchGeneral Branch = "general"
	BranchCSE     Branch = "cse"
	BranchECE     Branch = "ece"
	BranchME      Branch = "me"
	BranchCE      Branch = "ce"
	BranchEE      Branch = "ee"
)

// ResourceKind classifies a learning resource pointer.
type ResourceKind string

const (
	ResourceVideo   ResourceKind = "video"
	ResourceCourse  ResourceKind = "course"
	ResourceBook    ResourceKind = "book"
	ResourceArticle ResourceKind = "article"
	ResourceNotes   ResourceKind = "notes"
)

// RecognitionState models the speech input lifecycle.
type RecognitionState string

const (
	RecognitionIdle      RecognitionState = "idle"
	RecognitionListening RecognitionState = "listening"
	RecognitionErrored   RecognitionState = "error"
)

// SynthesisState models the speech output lifecycle.
type SynthesisState string

const (
	SynthesisIdle     SynthesisState = "idle"
	SynthesisSpeaking SynthesisState = "speaking"
)

// TranscriptKind identifies whether a recognition event carries partial or
// final text, or reports an engine error.
type TranscriptKind string

const (
	TranscriptPartial TranscriptKind = "partial"
	TranscriptFinal   TranscriptKind = "final"
	TranscriptError   TranscriptKind = "error"
)

// TranscriptEvent is incremental output from a recognition engine.
type TranscriptEvent struct {
	Kind TranscriptKind
	Text string
	Err  *RecognitionError
}

type Timestamp = time.Time
