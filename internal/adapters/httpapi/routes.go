package httpapi

import (
	"context"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ananmuhameed/therapy-ai-platform/internal/config"
	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
)

type api struct {
	cfg    config.Config
	ingest primary.IngestService
	reads  primary.SessionReadService
}

func newAPI(cfg config.Config, ingest primary.IngestService, reads primary.SessionReadService) *api {
	return &api{cfg: cfg, ingest: ingest, reads: reads}
}

func registerRoutes(r *gin.Engine, a *api) {
	apiGroup := r.Group("/api")
	{
		apiGroup.GET("/health", a.handleHealth)

		apiGroup.POST("/sessions", a.handleCreateSession)
		apiGroup.GET("/sessions", a.handleListSessions)
		apiGroup.GET("/sessions/:id", a.handleGetSession)
		apiGroup.PATCH("/sessions/:id/notes", a.handleUpdateSessionNotes)

		apiGroup.POST("/sessions/:id/upload-audio", a.handleUploadAudio)
		apiGroup.POST("/sessions/:id/replace-audio", a.handleReplaceAudio)

		apiGroup.GET("/sessions/:id/transcript", a.handleGetTranscript)
		apiGroup.GET("/sessions/:id/report", a.handleGetReport)
		apiGroup.PATCH("/sessions/:id/report", a.handleUpdateReportNotes)
	}
}

func (a *api) handleHealth(c *gin.Context) {
	c.JSON(http.StatusOK, gin.H{"ok": true})
}

func (a *api) handleCreateSession(c *gin.Context) {
	var payload struct {
		TherapistID     string `json:"therapist_id"`
		PatientID       string `json:"patient_id" binding:"required"`
		SessionDate     string `json:"session_date"`
		DurationMinutes int    `json:"duration_minutes"`
		NotesBefore     string `json:"notes_before"`
		NotesAfter      string `json:"notes_after"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := a.ingest.CreateSession(c.Request.Context(), primary.CreateSessionRequest{
		TherapistID:     payload.TherapistID,
		PatientID:       payload.PatientID,
		SessionDate:     payload.SessionDate,
		DurationMinutes: payload.DurationMinutes,
		NotesBefore:     payload.NotesBefore,
		NotesAfter:      payload.NotesAfter,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(http.StatusCreated, sessionJSON(session))
}

func (a *api) handleListSessions(c *gin.Context) {
	limit := 0
	if raw := c.Query("limit"); raw != "" {
		parsed, err := strconv.Atoi(raw)
		if err != nil || parsed < 0 {
			respondMessage(c, http.StatusBadRequest, "invalid limit")
			return
		}
		limit = parsed
	}

	sessions, err := a.ingest.ListSessions(c.Request.Context(), primary.SessionFilters{
		PatientID: c.Query("patient_id"),
		Status:    c.Query("status"),
		Limit:     limit,
	})
	if err != nil {
		respondError(c, err)
		return
	}

	out := make([]gin.H, 0, len(sessions))
	for _, s := range sessions {
		out = append(out, sessionJSON(s))
	}
	c.JSON(http.StatusOK, gin.H{"sessions": out})
}

func (a *api) handleGetSession(c *gin.Context) {
	session, err := a.ingest.GetSession(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionJSON(session))
}

func (a *api) handleUpdateSessionNotes(c *gin.Context) {
	var payload struct {
		NotesBefore string `json:"notes_before"`
		NotesAfter  string `json:"notes_after"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	session, err := a.ingest.UpdateSessionNotes(c.Request.Context(), primary.UpdateSessionNotesRequest{
		SessionID:   c.Param("id"),
		NotesBefore: payload.NotesBefore,
		NotesAfter:  payload.NotesAfter,
	})
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, sessionJSON(session))
}

func (a *api) handleUploadAudio(c *gin.Context) {
	a.ingestAudio(c, a.ingest.UploadAudio, http.StatusCreated)
}

func (a *api) handleReplaceAudio(c *gin.Context) {
	a.ingestAudio(c, a.ingest.ReplaceAudio, http.StatusOK)
}

type ingestOp func(ctx context.Context, req primary.UploadAudioRequest) (*primary.UploadAudioResponse, error)

func (a *api) ingestAudio(c *gin.Context, op ingestOp, successStatus int) {
	fileHeader, err := c.FormFile("audio_file")
	if err != nil {
		respondMessage(c, http.StatusBadRequest, "missing audio_file")
		return
	}

	upload, err := fileHeader.Open()
	if err != nil {
		respondMessage(c, http.StatusInternalServerError, "unable to read uploaded file")
		return
	}
	defer upload.Close()

	resp, err := op(c.Request.Context(), primary.UploadAudioRequest{
		SessionID:    c.Param("id"),
		Filename:     fileHeader.Filename,
		Content:      upload,
		LanguageHint: c.PostForm("language_code"),
	})
	if err != nil {
		respondError(c, err)
		return
	}

	c.JSON(successStatus, gin.H{
		"audio_id":       resp.AudioID,
		"session_status": resp.SessionStatus,
	})
}

func (a *api) handleGetTranscript(c *gin.Context) {
	transcript, err := a.reads.GetTranscript(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, transcriptJSON(transcript))
}

func (a *api) handleGetReport(c *gin.Context) {
	report, err := a.reads.GetReport(c.Request.Context(), c.Param("id"))
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportJSON(report))
}

func (a *api) handleUpdateReportNotes(c *gin.Context) {
	var payload struct {
		TherapistNotes string `json:"therapist_notes"`
	}
	if err := c.ShouldBindJSON(&payload); err != nil {
		respondMessage(c, http.StatusBadRequest, err.Error())
		return
	}

	report, err := a.reads.UpdateTherapistNotes(c.Request.Context(), c.Param("id"), payload.TherapistNotes)
	if err != nil {
		respondError(c, err)
		return
	}
	c.JSON(http.StatusOK, reportJSON(report))
}

func respondError(c *gin.Context, err error) {
	switch {
	case pipeline.IsNotFound(err):
		respondMessage(c, http.StatusNotFound, err.Error())
	case pipeline.IsConflict(err):
		respondMessage(c, http.StatusConflict, err.Error())
	case pipeline.IsValidation(err), pipeline.IsBusiness(err):
		respondMessage(c, http.StatusBadRequest, err.Error())
	default:
		respondMessage(c, http.StatusInternalServerError, "internal error")
	}
}

func respondMessage(c *gin.Context, status int, message string) {
	c.JSON(status, gin.H{"error": message})
}
