package session

import (
	"sort"
	"time"
)

// Summary is the denormalized interviewer-facing row for one session.
type Summary struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Phone      string    `json:"phone"`
	FinalScore *int      `json:"finalScore"`
	Summary    *string   `json:"summary"`
	Status     Status    `json:"status"`
	CreatedAt  time.Time `json:"createdAt"`
}

// Summaries projects sessions into summary rows and sorts them: scored
// sessions first by score descending, unscored last by creation time
// descending. Ties fall back to id so the order is reproducible.
func Summaries(sessions []Session) []Summary {
	out := make([]Summary, 0, len(sessions))
	for _, s := range sessions {
		row := Summary{
			ID:         s.ID,
			Name:       s.Candidate.Name,
			Email:      s.Candidate.Email,
			Phone:      s.Candidate.Phone,
			FinalScore: s.FinalScore,
			Status:     s.Status,
			CreatedAt:  s.CreatedAt,
		}
		if row.Name == "" {
			row.Name = "Unknown"
		}
		if row.Status == "" {
			row.Status = StatusUploaded
		}
		if s.Summary != "" {
			text := s.Summary
			row.Summary = &text
		}
		out = append(out, row)
	}

	sort.Slice(out, func(i, j int) bool {
		a, b := out[i], out[j]
		switch {
		case a.FinalScore == nil && b.FinalScore == nil:
			if !a.CreatedAt.Equal(b.CreatedAt) {
				return a.CreatedAt.After(b.CreatedAt)
			}
			return a.ID < b.ID
		case a.FinalScore == nil:
			return false
		case b.FinalScore == nil:
			return true
		case *a.FinalScore != *b.FinalScore:
			return *a.FinalScore > *b.FinalScore
		default:
			return a.ID < b.ID
		}
	})
	return out
}
