package interview

import (
	"context"
	"encoding/json"
	"fmt"
	"regexp"
	"strings"

	"github.com/google/uuid"

	"interview-backend/internal/genai"
	"interview-backend/internal/session"
	"interview-backend/internal/shared/telemetry"
)

const (
	defaultQuestionCount = 6
	defaultMaxScore      = 10
	generationTemp       = 0.2
	extractionTemp       = 0.0
	maxOutputTokens      = 8192
)

// Service orchestrates question generation and transcript scoring against the
// external generation service.
type Service struct {
	Store session.Store
	Gen   genai.Generator
}

// GenerateQuestions produces n resume-derived questions (2 easy / 2 medium /
// 2 hard for the default count). Malformed generator output fails with
// ErrQuestionGeneration; it is never papered over with canned questions.
func (s *Service) GenerateQuestions(ctx context.Context, sess session.Session, n int) ([]session.Question, error) {
	if n <= 0 {
		n = defaultQuestionCount
	}

	raw, err := s.Gen.Generate(ctx, questionsPrompt(sess.ResumeText, n), generationTemp, maxOutputTokens)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrQuestionGeneration, err)
	}

	var parsed []rawQuestion
	if err := json.Unmarshal([]byte(sliceFromMarker(raw, '[')), &parsed); err != nil {
		telemetry.Warn("interview.generate.unparseable", map[string]any{
			"session_id": sess.ID,
			"err":        err.Error(),
		})
		return nil, fmt.Errorf("%w: parse response: %v", ErrQuestionGeneration, err)
	}
	if len(parsed) == 0 {
		return nil, fmt.Errorf("%w: empty question list", ErrQuestionGeneration)
	}

	questions := make([]session.Question, 0, len(parsed))
	for _, q := range parsed {
		questions = append(questions, q.repair())
	}
	return questions, nil
}

// rawQuestion tolerates partial generator output; repair fills the gaps.
type rawQuestion struct {
	ID          string             `json:"id"`
	Text        string             `json:"text"`
	Difficulty  session.Difficulty `json:"difficulty"`
	TimeSeconds int                `json:"time_seconds"`
	MaxScore    int                `json:"maxScore"`
}

func (q rawQuestion) repair() session.Question {
	out := session.Question{
		ID:          q.ID,
		Text:        q.Text,
		Difficulty:  q.Difficulty,
		TimeSeconds: q.TimeSeconds,
		MaxScore:    q.MaxScore,
	}
	if out.ID == "" {
		out.ID = uuid.NewString()
	}
	if !out.Difficulty.Valid() {
		out.Difficulty = session.DifficultyMedium
	}
	if out.TimeSeconds <= 0 {
		out.TimeSeconds = out.Difficulty.Duration()
	}
	if out.MaxScore <= 0 {
		out.MaxScore = defaultMaxScore
	}
	return out
}

// SummarizeSession scores the full transcript, returning a final score in
// [0,100] and a short summary. Any failure is ErrEvaluation; a fabricated
// zero score would be indistinguishable from a legitimately low one.
func (s *Service) SummarizeSession(ctx context.Context, sess session.Session) (int, string, error) {
	raw, err := s.Gen.Generate(ctx, summaryPrompt(sess.ResumeText, transcriptText(sess)), generationTemp, maxOutputTokens)
	if err != nil {
		return 0, "", fmt.Errorf("%w: %v", ErrEvaluation, err)
	}

	var parsed struct {
		FinalScore *float64 `json:"finalScore"`
		Summary    *string  `json:"summary"`
	}
	if err := json.Unmarshal([]byte(sliceFromMarker(raw, '{')), &parsed); err != nil {
		return 0, "", fmt.Errorf("%w: parse response: %v", ErrEvaluation, err)
	}
	if parsed.FinalScore == nil || parsed.Summary == nil {
		return 0, "", fmt.Errorf("%w: response missing finalScore or summary", ErrEvaluation)
	}

	score := int(*parsed.FinalScore)
	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return score, *parsed.Summary, nil
}

var (
	emailPattern = regexp.MustCompile(`(?i)[A-Z0-9._%+-]+@[A-Z0-9.-]+\.[A-Z]{2,}`)
	phonePattern = regexp.MustCompile(`\+?\d{7,15}`)
)

// ExtractFields pulls name/email/phone from raw resume text. If the
// generator's output cannot be parsed, it falls back to heuristics over the
// text itself; this only prefills the identity form the candidate can edit.
func (s *Service) ExtractFields(ctx context.Context, resumeText string) session.CandidateInfo {
	raw, err := s.Gen.Generate(ctx, extractFieldsPrompt(resumeText), extractionTemp, maxOutputTokens)
	if err == nil {
		var parsed session.CandidateInfo
		if jsonErr := json.Unmarshal([]byte(sliceFromMarker(raw, '{')), &parsed); jsonErr == nil {
			return parsed
		}
	} else {
		telemetry.Warn("interview.extract_fields.failed", map[string]any{"err": err.Error()})
	}

	info := session.CandidateInfo{}
	if m := emailPattern.FindString(resumeText); m != "" {
		info.Email = m
	}
	if m := phonePattern.FindString(resumeText); m != "" {
		info.Phone = m
	}
	for _, line := range strings.Split(resumeText, "\n") {
		if trimmed := strings.TrimSpace(line); len(trimmed) > 3 {
			info.Name = trimmed
			break
		}
	}
	return info
}

// sliceFromMarker cuts leading prose some generators emit before the JSON
// payload. With no marker present the raw text is returned as-is and the
// caller's parse reports the real problem.
func sliceFromMarker(raw string, marker byte) string {
	if idx := strings.IndexByte(raw, marker); idx >= 0 {
		return raw[idx:]
	}
	return raw
}
