package flow

import (
	"context"
	"sync"
	"testing"
	"time"

	"interview-backend/internal/session"
)

func TestRunnerAutoSubmitsOncePerQuestion(t *testing.T) {
	questions := []session.Question{
		{ID: "q1", Text: "first", Difficulty: session.DifficultyEasy},
		{ID: "q2", Text: "second", Difficulty: session.DifficultyEasy},
	}
	m := NewMachine()
	m.SetSession(session.CandidateInfo{}, "sess-1")
	m.LoadQuestions(questions)
	m.StartInterview()

	var mu sync.Mutex
	var submitted []string
	r := &Runner{
		Machine:  m,
		Interval: time.Millisecond,
		Draft: func(questionID string) string {
			return "draft for " + questionID
		},
		OnAutoSubmit: func(questionID, answer string) {
			mu.Lock()
			submitted = append(submitted, questionID)
			mu.Unlock()
		},
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if err := r.Run(ctx); err != nil {
		t.Fatalf("runner: %v", err)
	}

	mu.Lock()
	defer mu.Unlock()
	if len(submitted) != 2 || submitted[0] != "q1" || submitted[1] != "q2" {
		t.Fatalf("expected exactly one auto-submit per question, got %v", submitted)
	}

	s := m.Snapshot()
	if s.Status != StatusCompleted {
		t.Fatalf("expected completed, got %s", s.Status)
	}
	if s.Answers["q1"] != "draft for q1" || s.Answers["q2"] != "draft for q2" {
		t.Fatalf("expected drafts submitted on timeout, got %+v", s.Answers)
	}
}

func TestRunnerDoesNotTickWhilePaused(t *testing.T) {
	m := NewMachine()
	m.SetSession(session.CandidateInfo{}, "sess-1")
	m.LoadQuestions([]session.Question{{ID: "q1", Text: "only", Difficulty: session.DifficultyHard}})
	m.StartInterview()
	m.Pause()

	r := &Runner{Machine: m, Interval: time.Millisecond}
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := r.Run(ctx); err != context.DeadlineExceeded {
		t.Fatalf("expected deadline (paused machine never completes), got %v", err)
	}

	if got := m.Snapshot().TimeRemaining; got != 120 {
		t.Fatalf("countdown moved while paused: %d", got)
	}
}

func TestRunnerStopsOnManualCompletion(t *testing.T) {
	m := NewMachine()
	m.SetSession(session.CandidateInfo{}, "sess-1")
	m.LoadQuestions([]session.Question{{ID: "q1", Text: "only", Difficulty: session.DifficultyHard}})
	m.StartInterview()

	r := &Runner{Machine: m, Interval: time.Millisecond}
	done := make(chan error, 1)
	go func() { done <- r.Run(context.Background()) }()

	m.CompleteQuestion("q1", "typed answer")

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("runner: %v", err)
		}
	case <-time.After(5 * time.Second):
		t.Fatal("runner did not stop after manual completion")
	}

	if got := m.Snapshot().Answers["q1"]; got != "typed answer" {
		t.Fatalf("manual answer lost: %q", got)
	}
}
