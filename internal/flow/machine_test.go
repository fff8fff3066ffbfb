package flow

import (
	"encoding/json"
	"testing"

	"interview-backend/internal/session"
)

func sampleQuestions() []session.Question {
	return []session.Question{
		{ID: "q1", Text: "What is a closure?", Difficulty: session.DifficultyEasy, TimeSeconds: 20, MaxScore: 10},
		{ID: "q2", Text: "How would you structure state?", Difficulty: session.DifficultyMedium, TimeSeconds: 60, MaxScore: 10},
		{ID: "q3", Text: "Describe a scaling bottleneck.", Difficulty: session.DifficultyHard, TimeSeconds: 120, MaxScore: 10},
	}
}

func startedMachine(t *testing.T) *Machine {
	t.Helper()
	m := NewMachine()
	m.SetSession(session.CandidateInfo{Name: "Ada"}, "sess-1")
	m.LoadQuestions(sampleQuestions())
	m.StartInterview()
	return m
}

func TestStartInterviewRequiresQuestions(t *testing.T) {
	m := NewMachine()
	m.SetSession(session.CandidateInfo{}, "sess-1")
	m.StartInterview()
	if got := m.Status(); got != StatusCollecting {
		t.Fatalf("expected status collecting with no questions, got %s", got)
	}
}

func TestStartInterviewInitialState(t *testing.T) {
	m := startedMachine(t)
	s := m.Snapshot()
	if s.Status != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", s.Status)
	}
	if s.TimeRemaining != 20 {
		t.Fatalf("expected 20s for easy question, got %d", s.TimeRemaining)
	}
	if s.TotalAsked != 1 {
		t.Fatalf("expected totalAsked 1, got %d", s.TotalAsked)
	}
	if len(s.Messages) != 1 || s.Messages[0].Role != RoleAI || s.Messages[0].ID != "q-q1" {
		t.Fatalf("expected one AI message for q1, got %+v", s.Messages)
	}
}

func TestTickNeverNegative(t *testing.T) {
	m := startedMachine(t)
	prev := m.Snapshot().TimeRemaining
	for i := 0; i < 50; i++ {
		remaining, ticked := m.Tick()
		if !ticked {
			t.Fatalf("tick %d did not apply while in_progress", i)
		}
		if remaining > prev {
			t.Fatalf("timeRemaining increased: %d -> %d", prev, remaining)
		}
		if remaining < 0 {
			t.Fatalf("timeRemaining went negative: %d", remaining)
		}
		prev = remaining
	}
	if prev != 0 {
		t.Fatalf("expected countdown floored at 0, got %d", prev)
	}
}

func TestTickNoopOutsideInProgress(t *testing.T) {
	m := startedMachine(t)
	m.Pause()
	before := m.Snapshot().TimeRemaining
	if _, ticked := m.Tick(); ticked {
		t.Fatal("tick applied while paused")
	}
	if got := m.Snapshot().TimeRemaining; got != before {
		t.Fatalf("timeRemaining changed while paused: %d -> %d", before, got)
	}
}

func TestPauseResume(t *testing.T) {
	m := startedMachine(t)
	m.Pause()
	if got := m.Status(); got != StatusPaused {
		t.Fatalf("expected paused, got %s", got)
	}
	m.Resume()
	if got := m.Status(); got != StatusInProgress {
		t.Fatalf("expected in_progress after resume, got %s", got)
	}
	// Resume from a non-paused state does nothing.
	m.Resume()
	if got := m.Status(); got != StatusInProgress {
		t.Fatalf("expected in_progress, got %s", got)
	}
}

func TestNextQuestionAdvances(t *testing.T) {
	m := startedMachine(t)
	m.NextQuestion()
	s := m.Snapshot()
	if s.Current != 1 {
		t.Fatalf("expected current 1, got %d", s.Current)
	}
	if s.TimeRemaining != 60 {
		t.Fatalf("expected 60s for medium question, got %d", s.TimeRemaining)
	}
	if s.TotalAsked != 2 {
		t.Fatalf("expected totalAsked 2, got %d", s.TotalAsked)
	}
}

func TestNextQuestionOnLastCompletes(t *testing.T) {
	m := startedMachine(t)
	m.NextQuestion()
	m.NextQuestion()
	m.NextQuestion()
	s := m.Snapshot()
	if s.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if s.TimeRemaining != 0 {
		t.Fatalf("expected timeRemaining 0 after completion, got %d", s.TimeRemaining)
	}

	// A second call once completed is a no-op.
	m.NextQuestion()
	after := m.Snapshot()
	if after.Status != StatusCompleted || after.Current != s.Current || after.TotalAsked != s.TotalAsked {
		t.Fatalf("completed machine mutated by extra NextQuestion: %+v", after)
	}
}

func TestNextQuestionWithoutQuestionsCompletes(t *testing.T) {
	m := NewMachine()
	m.NextQuestion()
	if got := m.Status(); got != StatusCompleted {
		t.Fatalf("expected completed with no questions, got %s", got)
	}
}

func TestSubmitAnswerOverwritesWithoutDuplicateMessage(t *testing.T) {
	m := startedMachine(t)
	m.SubmitAnswer("q1", "first try")
	m.SubmitAnswer("q1", "second try")
	s := m.Snapshot()
	if s.Answers["q1"] != "second try" {
		t.Fatalf("expected overwritten answer, got %q", s.Answers["q1"])
	}
	count := 0
	for _, msg := range s.Messages {
		if msg.ID == "a-q1" {
			count++
			if msg.Text != "second try" {
				t.Fatalf("expected transcript entry updated, got %q", msg.Text)
			}
		}
	}
	if count != 1 {
		t.Fatalf("expected exactly one user transcript entry for q1, got %d", count)
	}
}

func TestCompleteQuestionRejectsStaleID(t *testing.T) {
	m := startedMachine(t)
	if !m.CompleteQuestion("q1", "answer one") {
		t.Fatal("expected first CompleteQuestion to advance")
	}
	// The losing side of a manual-submit vs timeout race arrives late.
	if m.CompleteQuestion("q1", "") {
		t.Fatal("expected stale CompleteQuestion to be ignored")
	}
	s := m.Snapshot()
	if s.Current != 1 {
		t.Fatalf("expected current 1 after single advancement, got %d", s.Current)
	}
	if s.Answers["q1"] != "answer one" {
		t.Fatalf("stale submit overwrote the answer: %q", s.Answers["q1"])
	}
}

func TestEvaluationSuccessClearsError(t *testing.T) {
	m := startedMachine(t)
	m.CompleteQuestion("q1", "a")
	m.CompleteQuestion("q2", "b")
	m.CompleteQuestion("q3", "c")
	m.StartEvaluation()
	if got := m.Status(); got != StatusEvaluating {
		t.Fatalf("expected evaluating, got %s", got)
	}

	m.SetEvaluationError("service unreachable")
	s := m.Snapshot()
	if s.Status != StatusCompleted || s.EvaluationError == "" {
		t.Fatalf("expected completed with evaluation error, got %+v", s)
	}

	// Retry succeeds.
	m.StartEvaluation()
	m.SetFinalAnalysis(72, "solid fundamentals")
	s = m.Snapshot()
	if s.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if s.FinalScore == nil || *s.FinalScore != 72 {
		t.Fatalf("expected final score 72, got %v", s.FinalScore)
	}
	if s.EvaluationError != "" {
		t.Fatalf("expected evaluation error cleared, got %q", s.EvaluationError)
	}
}

func TestResetReturnsToInitial(t *testing.T) {
	m := startedMachine(t)
	m.SubmitAnswer("q1", "something")
	m.Reset()
	s := m.Snapshot()
	if s.Status != StatusIdle || s.SessionID != "" || len(s.Questions) != 0 || len(s.Messages) != 0 || len(s.Answers) != 0 {
		t.Fatalf("expected initial state after reset, got %+v", s)
	}
}

func TestSnapshotRoundTrip(t *testing.T) {
	m := startedMachine(t)
	m.CompleteQuestion("q1", "answer one")
	m.Tick()

	data, err := json.Marshal(m.Snapshot())
	if err != nil {
		t.Fatalf("marshal snapshot: %v", err)
	}
	var restoredState State
	if err := json.Unmarshal(data, &restoredState); err != nil {
		t.Fatalf("unmarshal snapshot: %v", err)
	}

	restored := Restore(restoredState)
	got := restored.Snapshot()
	want := m.Snapshot()
	if got.Current != want.Current || got.Status != want.Status || got.TimeRemaining != want.TimeRemaining {
		t.Fatalf("restored state diverged: got %+v want %+v", got, want)
	}
	if got.Answers["q1"] != "answer one" {
		t.Fatalf("restored answers diverged: %+v", got.Answers)
	}

	// The restored machine keeps working.
	restored.CompleteQuestion("q2", "answer two")
	if restored.Snapshot().Current != 2 {
		t.Fatalf("restored machine did not advance")
	}
}

func TestSnapshotIsACopy(t *testing.T) {
	m := startedMachine(t)
	s := m.Snapshot()
	s.Answers["q1"] = "mutated"
	s.Questions[0].Text = "mutated"
	if m.Snapshot().Answers["q1"] == "mutated" {
		t.Fatal("snapshot shares the answers map")
	}
	if m.Snapshot().Questions[0].Text == "mutated" {
		t.Fatal("snapshot shares the questions slice")
	}
}

func TestSetCandidateMerges(t *testing.T) {
	m := NewMachine()
	m.SetSession(session.CandidateInfo{Name: "Ada"}, "sess-1")
	m.SetCandidate(session.CandidateInfo{Email: "ada@example.com"})
	s := m.Snapshot()
	if s.Candidate.Name != "Ada" || s.Candidate.Email != "ada@example.com" {
		t.Fatalf("expected merged candidate, got %+v", s.Candidate)
	}
}
