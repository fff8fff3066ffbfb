package session

import "time"

// Status tracks server-side session progress. It only ever advances.
type Status string

const (
	StatusUploaded   Status = "uploaded"
	StatusReady      Status = "ready"
	StatusInProgress Status = "in_progress"
	StatusCompleted  Status = "completed"
)

// Difficulty of a generated question; determines the answer countdown.
type Difficulty string

const (
	DifficultyEasy   Difficulty = "easy"
	DifficultyMedium Difficulty = "medium"
	DifficultyHard   Difficulty = "hard"
)

// Duration returns the countdown, in seconds, granted for this difficulty.
func (d Difficulty) Duration() int {
	switch d {
	case DifficultyEasy:
		return 20
	case DifficultyHard:
		return 120
	default:
		return 60
	}
}

// Valid reports whether d is one of the three known difficulties.
func (d Difficulty) Valid() bool {
	switch d {
	case DifficultyEasy, DifficultyMedium, DifficultyHard:
		return true
	}
	return false
}

// CandidateInfo is the closed set of identity fields extracted from a resume
// or supplied by the candidate. Unknown fields are dropped at the boundary.
type CandidateInfo struct {
	Name  string `json:"name,omitempty"`
	Email string `json:"email,omitempty"`
	Phone string `json:"phone,omitempty"`
}

// Question is one generated interview question.
type Question struct {
	ID          string     `json:"id"`
	Text        string     `json:"text"`
	Difficulty  Difficulty `json:"difficulty"`
	TimeSeconds int        `json:"time_seconds"`
	MaxScore    int        `json:"maxScore"`
}

// AnswerRecord is the stored answer for one question. At most one record per
// question id; a resubmission overwrites the answer text.
type AnswerRecord struct {
	QuestionID   string    `json:"questionId"`
	QuestionText string    `json:"questionText"`
	Answer       string    `json:"answer"`
	Score        int       `json:"score"`
	Feedback     string    `json:"feedback,omitempty"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Session is the root persisted entity: one candidate's end-to-end interview.
type Session struct {
	ID         string                  `json:"id"`
	Candidate  CandidateInfo           `json:"candidate"`
	ResumeURL  string                  `json:"resumeUrl,omitempty"`
	ResumeText string                  `json:"resumeText,omitempty"`
	Questions  []Question              `json:"questions"`
	Answers    map[string]AnswerRecord `json:"answers"`
	FinalScore *int                    `json:"finalScore,omitempty"`
	Summary    string                  `json:"summary,omitempty"`
	Status     Status                  `json:"status"`
	CreatedAt  time.Time               `json:"createdAt"`
}

func (s Status) rank() int {
	switch s {
	case StatusUploaded:
		return 0
	case StatusReady:
		return 1
	case StatusInProgress:
		return 2
	case StatusCompleted:
		return 3
	}
	return -1
}

// AdvanceStatus moves the session to the given status only if that is a step
// forward; the persisted status never regresses.
func (s *Session) AdvanceStatus(to Status) {
	if to.rank() > s.Status.rank() {
		s.Status = to
	}
}

// QuestionByID returns the question with the given id, if present.
func (s *Session) QuestionByID(id string) (Question, bool) {
	for _, q := range s.Questions {
		if q.ID == id {
			return q, true
		}
	}
	return Question{}, false
}

// RecordAnswer upserts the answer for a question. The latest write wins on
// resubmission; the original timestamp is kept.
func (s *Session) RecordAnswer(q Question, answer string, now time.Time) {
	if s.Answers == nil {
		s.Answers = make(map[string]AnswerRecord)
	}
	rec, ok := s.Answers[q.ID]
	if !ok {
		rec = AnswerRecord{
			QuestionID:   q.ID,
			QuestionText: q.Text,
			CreatedAt:    now.UTC(),
		}
	}
	rec.Answer = answer
	s.Answers[q.ID] = rec
}
