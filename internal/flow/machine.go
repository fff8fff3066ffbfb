// Package flow implements the candidate-facing interview lifecycle: question
// sequencing, per-question countdowns, answer capture and evaluation state.
// The Machine is an explicit state container (no ambient globals); its State
// is JSON-serializable so callers can persist it on change and restore on load.
package flow

import (
	"sync"

	"interview-backend/internal/session"
)

// Status is the lifecycle state of one interview run.
type Status string

const (
	StatusIdle       Status = "idle"
	StatusCollecting Status = "collecting"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
	StatusPaused     Status = "paused"
	StatusEvaluating Status = "evaluating"
)

// Role identifies the author of a transcript message.
type Role string

const (
	RoleAI     Role = "ai"
	RoleUser   Role = "user"
	RoleSystem Role = "system"
)

// Message is one transcript entry.
type Message struct {
	ID    string `json:"id"`
	Role  Role   `json:"role"`
	Text  string `json:"text"`
	Score *int   `json:"score,omitempty"`
}

// State is the full interview state. It mirrors session progress on the
// client side and is rebuilt from a persisted snapshot across restarts.
type State struct {
	SessionID       string                `json:"sessionId"`
	Candidate       session.CandidateInfo `json:"candidate"`
	Questions       []session.Question    `json:"questions"`
	Current         int                   `json:"current"`
	Messages        []Message             `json:"messages"`
	Answers         map[string]string     `json:"answers"`
	Status          Status                `json:"status"`
	TimeRemaining   int                   `json:"timeRemaining"`
	TotalAsked      int                   `json:"totalAsked"`
	FinalScore      *int                  `json:"finalScore"`
	Summary         string                `json:"summary"`
	EvaluationError string                `json:"evaluationError"`
}

func initialState() State {
	return State{
		Status:  StatusIdle,
		Answers: map[string]string{},
	}
}

// Machine owns one interview's state. All transitions take the lock, so the
// 1s ticker and user-triggered actions may fire from different goroutines.
type Machine struct {
	mu sync.Mutex
	s  State
}

// NewMachine returns a machine in the idle state.
func NewMachine() *Machine {
	return &Machine{s: initialState()}
}

// Restore rebuilds a machine from a persisted snapshot.
func Restore(s State) *Machine {
	if s.Answers == nil {
		s.Answers = map[string]string{}
	}
	if s.Status == "" {
		s.Status = StatusIdle
	}
	return &Machine{s: s}
}

// Snapshot returns a deep copy of the current state.
func (m *Machine) Snapshot() State {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.copyState()
}

func (m *Machine) copyState() State {
	out := m.s
	out.Questions = append([]session.Question(nil), m.s.Questions...)
	out.Messages = append([]Message(nil), m.s.Messages...)
	out.Answers = make(map[string]string, len(m.s.Answers))
	for k, v := range m.s.Answers {
		out.Answers[k] = v
	}
	if m.s.FinalScore != nil {
		score := *m.s.FinalScore
		out.FinalScore = &score
	}
	return out
}

// Status returns the current lifecycle status.
func (m *Machine) Status() Status {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.s.Status
}

// Reset clears all fields back to initial values. Allowed from any state.
func (m *Machine) Reset() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s = initialState()
}

// SetSession records the session identity and moves to collecting.
func (m *Machine) SetSession(candidate session.CandidateInfo, sessionID string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.Candidate = candidate
	m.s.SessionID = sessionID
	m.s.Status = StatusCollecting
}

// SetCandidate merges non-empty fields into the candidate record.
func (m *Machine) SetCandidate(candidate session.CandidateInfo) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if candidate.Name != "" {
		m.s.Candidate.Name = candidate.Name
	}
	if candidate.Email != "" {
		m.s.Candidate.Email = candidate.Email
	}
	if candidate.Phone != "" {
		m.s.Candidate.Phone = candidate.Phone
	}
}

// LoadQuestions installs the question list and rewinds to the first question.
// The interview still awaits an explicit StartInterview.
func (m *Machine) LoadQuestions(questions []session.Question) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.Questions = append([]session.Question(nil), questions...)
	m.s.Current = 0
	m.s.TotalAsked = 0
	m.s.Status = StatusCollecting
}

// StartInterview begins the countdown on the first question. No-op when no
// questions are loaded.
func (m *Machine) StartInterview() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if len(m.s.Questions) == 0 {
		return
	}
	q := m.s.Questions[m.s.Current]
	m.s.Status = StatusInProgress
	m.s.TimeRemaining = q.Difficulty.Duration()
	m.s.TotalAsked = 1
	m.s.Messages = append(m.s.Messages, Message{ID: "q-" + q.ID, Role: RoleAI, Text: q.Text})
}

// Tick decrements the countdown by one second, floored at zero. It reports
// the remaining time and whether the tick applied (only while in_progress).
// Reaching zero does not advance by itself; the runner observes the zero and
// drives the auto-submit.
func (m *Machine) Tick() (remaining int, ticked bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Status != StatusInProgress {
		return m.s.TimeRemaining, false
	}
	if m.s.TimeRemaining > 0 {
		m.s.TimeRemaining--
	}
	return m.s.TimeRemaining, true
}

// SubmitAnswer records (or overwrites) the answer for a question and appends
// a user transcript message. A resubmission for the same question updates the
// existing transcript entry instead of appending a duplicate.
func (m *Machine) SubmitAnswer(questionID, answer string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.submitAnswerLocked(questionID, answer)
}

func (m *Machine) submitAnswerLocked(questionID, answer string) {
	m.s.Answers[questionID] = answer
	msgID := "a-" + questionID
	for i := range m.s.Messages {
		if m.s.Messages[i].ID == msgID {
			m.s.Messages[i].Text = answer
			return
		}
	}
	m.s.Messages = append(m.s.Messages, Message{ID: msgID, Role: RoleUser, Text: answer})
}

// NextQuestion advances to the next question, or completes the interview when
// none remain. Calling it after completion is a no-op.
func (m *Machine) NextQuestion() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextQuestionLocked()
}

func (m *Machine) nextQuestionLocked() {
	if m.s.Status == StatusCompleted {
		return
	}
	if m.s.Current < len(m.s.Questions)-1 {
		m.s.Current++
		q := m.s.Questions[m.s.Current]
		m.s.TimeRemaining = q.Difficulty.Duration()
		m.s.Status = StatusInProgress
		m.s.TotalAsked++
		m.s.Messages = append(m.s.Messages, Message{ID: "q-" + q.ID, Role: RoleAI, Text: q.Text})
		return
	}
	// No more questions (including the never-loaded case).
	m.s.Status = StatusCompleted
	m.s.TimeRemaining = 0
}

// CompleteQuestion submits the answer for the current question and advances,
// but only if questionID still names the current question. A stale call (the
// question already advanced past, e.g. the losing side of a manual-submit vs
// timeout race) is ignored, guaranteeing at-most-once advancement per index.
func (m *Machine) CompleteQuestion(questionID, answer string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Status != StatusInProgress {
		return false
	}
	if m.s.Current >= len(m.s.Questions) || m.s.Questions[m.s.Current].ID != questionID {
		return false
	}
	m.submitAnswerLocked(questionID, answer)
	m.nextQuestionLocked()
	return true
}

// CurrentQuestion returns the question awaiting an answer, if the interview
// is in progress.
func (m *Machine) CurrentQuestion() (session.Question, bool) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Status != StatusInProgress || m.s.Current >= len(m.s.Questions) {
		return session.Question{}, false
	}
	return m.s.Questions[m.s.Current], true
}

// StartEvaluation marks the transcript as being scored.
func (m *Machine) StartEvaluation() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.Status = StatusEvaluating
}

// SetFinalAnalysis records the final score and summary and completes the
// interview, clearing any prior evaluation error.
func (m *Machine) SetFinalAnalysis(finalScore int, summary string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	score := finalScore
	m.s.FinalScore = &score
	m.s.Summary = summary
	m.s.Status = StatusCompleted
	m.s.EvaluationError = ""
}

// SetEvaluationError completes the interview but flags the evaluation as
// failed. The interview stays completed (no more questions to ask); callers
// offer a retry that re-invokes StartEvaluation.
func (m *Machine) SetEvaluationError(message string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.s.Status = StatusCompleted
	m.s.EvaluationError = message
}

// Pause suspends the countdown. Only valid while in_progress.
func (m *Machine) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Status == StatusInProgress {
		m.s.Status = StatusPaused
	}
}

// Resume restarts the countdown after a pause.
func (m *Machine) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.s.Status == StatusPaused {
		m.s.Status = StatusInProgress
	}
}
