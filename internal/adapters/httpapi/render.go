package httpapi

import (
	"github.com/gin-gonic/gin"

	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
)

func sessionJSON(s *primary.Session) gin.H {
	return gin.H{
		"id":                 s.ID,
		"therapist_id":       s.TherapistID,
		"patient_id":         s.PatientID,
		"session_date":       s.SessionDate,
		"duration_minutes":   s.DurationMinutes,
		"status":             s.Status,
		"last_error_stage":   s.LastErrorStage,
		"last_error_message": s.LastErrorMessage,
		"notes_before":       s.NotesBefore,
		"notes_after":        s.NotesAfter,
		"created_at":         s.CreatedAt,
		"updated_at":         s.UpdatedAt,
	}
}

func transcriptJSON(t *primary.Transcript) gin.H {
	return gin.H{
		"id":                 t.ID,
		"session_id":         t.SessionID,
		"status":             t.Status,
		"raw_transcript":     t.RawTranscript,
		"cleaned_transcript": t.CleanedTranscript,
		"word_count":         t.WordCount,
		"language_code":      t.LanguageCode,
		"model_name":         t.ModelName,
		"created_at":         t.CreatedAt,
		"updated_at":         t.UpdatedAt,
	}
}

func reportJSON(r *primary.Report) gin.H {
	return gin.H{
		"id":                r.ID,
		"session_id":        r.SessionID,
		"status":            r.Status,
		"generated_summary": r.GeneratedSummary,
		"key_points":        r.KeyPoints,
		"risk_flags":        r.RiskFlags,
		"treatment_plan":    r.TreatmentPlan,
		"therapist_notes":   r.TherapistNotes,
		"model_name":        r.ModelName,
		"created_at":        r.CreatedAt,
		"updated_at":        r.UpdatedAt,
	}
}
