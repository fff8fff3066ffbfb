package resume

import (
	"bytes"
	"io"
	"mime/multipart"
	"net/http"
	"os"
	"path/filepath"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"interview-backend/internal/extract"
	"interview-backend/internal/interview"
	"interview-backend/internal/session"
	"interview-backend/internal/shared/metrics"
	"interview-backend/internal/shared/server/respond"
	"interview-backend/internal/shared/storage/object"
	"interview-backend/internal/shared/telemetry"
)

const maxUploadBytes = 5 << 20

// Handler accepts resume uploads and creates interview sessions from them.
type Handler struct {
	Sessions      session.Store
	Objects       object.ObjectStore
	Svc           *interview.Service
	PublicBaseURL string
}

func NewHandler(sessions session.Store, objects object.ObjectStore, svc *interview.Service, publicBaseURL string) *Handler {
	return &Handler{Sessions: sessions, Objects: objects, Svc: svc, PublicBaseURL: publicBaseURL}
}

func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/resume/upload", h.upload)
}

func (h *Handler) upload(c *gin.Context) {
	fileHeader, err := c.FormFile("file")
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "No file uploaded", nil)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		respond.Error(c, http.StatusBadRequest, "validation_error", "file exceeds size limit", nil)
		return
	}

	// Spool to a temp file first; removed on every exit path.
	tmpPath, err := spoolUpload(fileHeader)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return
	}
	defer func() {
		if err := os.Remove(tmpPath); err != nil {
			telemetry.Warn("resume.upload.cleanup_failed", map[string]any{"path": tmpPath, "err": err.Error()})
		}
	}()

	data, err := os.ReadFile(tmpPath)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to read upload", nil)
		return
	}

	sessionID := uuid.NewString()
	c.Set("sessionId", sessionID)

	storageKey, _, mimeType, err := h.Objects.Save(c.Request.Context(), sessionID, fileHeader.Filename, bytes.NewReader(data))
	if err != nil {
		telemetry.Error("resume.upload.store_failed", map[string]any{"session_id": sessionID, "err": err.Error()})
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to store resume", nil)
		return
	}

	rawText, err := extract.Text(data, mimeType, fileHeader.Filename)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "could not extract text from resume", nil)
		return
	}

	candidate := h.Svc.ExtractFields(c.Request.Context(), rawText)

	resumeURL := h.PublicBaseURL + "/files/" + storageKey
	sess := session.Session{
		ID:         sessionID,
		Candidate:  candidate,
		ResumeURL:  resumeURL,
		ResumeText: rawText,
		Questions:  []session.Question{},
		Answers:    map[string]session.AnswerRecord{},
		Status:     session.StatusUploaded,
		CreatedAt:  time.Now().UTC(),
	}
	if err := h.Sessions.Save(c.Request.Context(), sessionID, sess); err != nil {
		respond.Error(c, http.StatusServiceUnavailable, "storage_unavailable", "session store unavailable", nil)
		return
	}

	metrics.IncResumeUploaded()
	respond.OK(c, gin.H{
		"sessionId": sessionID,
		"candidate": candidate,
		"resumeUrl": resumeURL,
	})
}

func spoolUpload(fileHeader *multipart.FileHeader) (string, error) {
	src, err := fileHeader.Open()
	if err != nil {
		return "", err
	}
	defer src.Close()

	tmp, err := os.CreateTemp("", "resume-upload-*"+filepath.Ext(fileHeader.Filename))
	if err != nil {
		return "", err
	}
	defer tmp.Close()

	if _, err := io.Copy(tmp, io.LimitReader(src, maxUploadBytes+1)); err != nil {
		os.Remove(tmp.Name())
		return "", err
	}
	return tmp.Name(), nil
}
