package interview

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	"interview-backend/internal/session"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server/respond"
)

// Handler exposes the interview flow endpoints.
type Handler struct {
	Svc *Service
}

func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.PATCH("/interview/candidate", h.updateCandidate)
	rg.POST("/interview/generate", h.generateQuestions)
	rg.POST("/interview/answer", h.saveAnswer)
	rg.POST("/interview/finalize", h.finalize)
	rg.GET("/interview/session/:id", h.getSession)
}

type updateCandidateRequest struct {
	SessionID string `json:"sessionId"`
	Name      string `json:"name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

func (h *Handler) updateCandidate(c *gin.Context) {
	var req updateCandidateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sessionId is required", nil)
		return
	}
	c.Set("sessionId", req.SessionID)

	sess, ok := h.loadSession(c, req.SessionID)
	if !ok {
		return
	}

	// Merge, never replace: absent fields keep their stored values.
	if req.Name != "" {
		sess.Candidate.Name = req.Name
	}
	if req.Email != "" {
		sess.Candidate.Email = req.Email
	}
	if req.Phone != "" {
		sess.Candidate.Phone = req.Phone
	}

	if !h.saveSession(c, sess) {
		return
	}
	respond.OK(c, gin.H{"message": "Candidate details updated."})
}

type generateRequest struct {
	SessionID string `json:"sessionId"`
	N         int    `json:"n"`
}

func (h *Handler) generateQuestions(c *gin.Context) {
	var req generateRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sessionId is required", nil)
		return
	}
	c.Set("sessionId", req.SessionID)

	sess, ok := h.loadSession(c, req.SessionID)
	if !ok {
		return
	}

	questions, err := h.Svc.GenerateQuestions(c.Request.Context(), sess, req.N)
	if err != nil {
		metrics.IncGenerationFailed()
		respond.Error(c, http.StatusBadGateway, "question_generation_failed", err.Error(), nil)
		return
	}

	sess.Questions = questions
	sess.AdvanceStatus(session.StatusReady)
	if !h.saveSession(c, sess) {
		return
	}
	metrics.IncInterviewStarted()
	respond.OK(c, gin.H{"sessionId": sess.ID, "questions": questions})
}

type answerRequest struct {
	SessionID  string `json:"sessionId"`
	QuestionID string `json:"questionId"`
	Answer     string `json:"answer"`
}

func (h *Handler) saveAnswer(c *gin.Context) {
	var req answerRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" || strings.TrimSpace(req.QuestionID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sessionId and questionId are required", nil)
		return
	}
	c.Set("sessionId", req.SessionID)

	sess, ok := h.loadSession(c, req.SessionID)
	if !ok {
		return
	}

	question, found := sess.QuestionByID(req.QuestionID)
	if !found {
		respond.Error(c, http.StatusNotFound, "not_found", "question not found", nil)
		return
	}

	sess.RecordAnswer(question, req.Answer, time.Now())
	sess.AdvanceStatus(session.StatusInProgress)
	if !h.saveSession(c, sess) {
		return
	}
	respond.OK(c, gin.H{"message": "Answer saved successfully."})
}

type finalizeRequest struct {
	SessionID string `json:"sessionId"`
}

func (h *Handler) finalize(c *gin.Context) {
	var req finalizeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	if strings.TrimSpace(req.SessionID) == "" {
		respond.Error(c, http.StatusBadRequest, "validation_error", "sessionId is required", nil)
		return
	}
	c.Set("sessionId", req.SessionID)

	sess, ok := h.loadSession(c, req.SessionID)
	if !ok {
		return
	}

	score, summary, err := h.Svc.SummarizeSession(c.Request.Context(), sess)
	if err != nil {
		// The session is left untouched so the caller can retry.
		metrics.IncEvaluationFailed()
		respond.Error(c, http.StatusBadGateway, "evaluation_failed", err.Error(), nil)
		return
	}

	sess.FinalScore = &score
	sess.Summary = summary
	sess.AdvanceStatus(session.StatusCompleted)
	if !h.saveSession(c, sess) {
		return
	}
	metrics.IncInterviewCompleted()
	respond.OK(c, gin.H{"finalScore": score, "summary": summary})
}

func (h *Handler) getSession(c *gin.Context) {
	id := c.Param("id")
	c.Set("sessionId", id)
	sess, ok := h.loadSession(c, id)
	if !ok {
		return
	}
	respond.OK(c, sess)
}

func (h *Handler) loadSession(c *gin.Context, id string) (session.Session, bool) {
	sess, err := h.Svc.Store.Get(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, session.ErrNotFound) {
			respond.Error(c, http.StatusNotFound, "not_found", "session not found", nil)
		} else {
			respond.Error(c, http.StatusServiceUnavailable, "storage_unavailable", "session store unavailable", nil)
		}
		return session.Session{}, false
	}
	return sess, true
}

func (h *Handler) saveSession(c *gin.Context, sess session.Session) bool {
	if err := h.Svc.Store.Save(c.Request.Context(), sess.ID, sess); err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "storage_unavailable", "session store unavailable", nil)
		return false
	}
	return true
}
