package app

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/google/uuid"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	corereport "github.com/ananmuhameed/therapy-ai-platform/internal/core/report"
	coresession "github.com/ananmuhameed/therapy-ai-platform/internal/core/session"
	coretranscript "github.com/ananmuhameed/therapy-ai-platform/internal/core/transcript"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// RunReportGeneration executes one report-generation attempt for a session.
//
// The attempt runs in two phases: a first transaction validates the
// transcript, claims the report row, and marks it processing; the provider
// call then happens outside any transaction; a final transaction persists
// the result. A completed report is skipped unless the attempt is forced.
// TherapistNotes survive every path here, including forced regeneration.
func (s *PipelineTaskServiceImpl) RunReportGeneration(ctx context.Context, req primary.TaskAttempt) (*primary.TaskResult, error) {
	release := s.locks.Acquire(req.SessionID)
	defer release()

	sess, err := s.sessions.GetSession(ctx, req.SessionID)
	if pipeline.IsNotFound(err) {
		return &primary.TaskResult{SessionID: req.SessionID, Skipped: true, SkipReason: "session_not_found"}, nil
	}
	if err != nil {
		return nil, err
	}

	var (
		reportID       string
		transcriptText string
		language       string
		skipped        bool
	)
	err = s.store.InTx(ctx, func(tx secondary.PipelineTx) error {
		tr, err := tx.GetTranscriptBySession(ctx, req.SessionID)
		if pipeline.IsNotFound(err) || (err == nil && tr.Status != string(coretranscript.StatusCompleted)) {
			return &pipeline.BusinessError{Reason: "transcript not ready for report generation"}
		}
		if err != nil {
			return err
		}

		transcriptText = corereport.EffectiveText(tr.CleanedTranscript, tr.RawTranscript)
		if transcriptText == "" {
			return &pipeline.BusinessError{Reason: "transcript is empty"}
		}
		language = tr.LanguageCode

		rep, err := tx.GetReportBySession(ctx, req.SessionID)
		if pipeline.IsNotFound(err) {
			rep = &secondary.ReportRecord{
				ID:        uuid.NewString(),
				SessionID: req.SessionID,
				Status:    string(corereport.InitialStatus()),
			}
			if err := tx.CreateReport(ctx, rep); err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
		reportID = rep.ID

		// Idempotency guard: a completed report is regenerated only on an
		// explicit force.
		if rep.Status == string(corereport.StatusCompleted) && !req.Force {
			skipped = true
			if sess.Status != string(coresession.StatusCompleted) {
				return transitionSession(ctx, tx, sess,
					coresession.StatusCompleted, "", "")
			}
			return nil
		}

		if err := tx.UpdateReportStatus(ctx, reportID,
			string(corereport.StatusProcessing)); err != nil {
			return err
		}
		if sess.Status != string(coresession.StatusAnalyzing) {
			return transitionSession(ctx, tx, sess,
				coresession.StatusAnalyzing, "", "")
		}
		return nil
	})
	if err != nil {
		return nil, s.handleReportError(ctx, req, sess, reportID, err)
	}
	if skipped {
		return &primary.TaskResult{
			SessionID:  req.SessionID,
			Skipped:    true,
			SkipReason: "report_already_completed",
			ReportID:   reportID,
		}, nil
	}

	generated, err := s.generateReport(ctx, sess, transcriptText, language)
	if err != nil {
		return nil, s.handleReportError(ctx, req, sess, reportID, err)
	}

	keyPoints, err := json.Marshal(generated.KeyPoints)
	if err != nil {
		return nil, fmt.Errorf("encode key points: %w", err)
	}
	riskFlags, err := json.Marshal(generated.RiskFlags)
	if err != nil {
		return nil, fmt.Errorf("encode risk flags: %w", err)
	}
	treatmentPlan, err := json.Marshal(generated.TreatmentPlan)
	if err != nil {
		return nil, fmt.Errorf("encode treatment plan: %w", err)
	}

	err = s.store.InTx(ctx, func(tx secondary.PipelineTx) error {
		if err := tx.SaveReportResult(ctx, &secondary.ReportRecord{
			ID:                reportID,
			Status:            string(corereport.StatusCompleted),
			GeneratedSummary:  generated.Summary,
			KeyPointsJSON:     string(keyPoints),
			RiskFlagsJSON:     string(riskFlags),
			TreatmentPlanJSON: string(treatmentPlan),
			ModelName:         generated.ModelName,
		}); err != nil {
			return err
		}
		return transitionSession(ctx, tx, sess,
			coresession.StatusCompleted, "", "")
	})
	if err != nil {
		return nil, s.handleReportError(ctx, req, sess, reportID, err)
	}

	s.logger.Printf("report completed for session %s (model %s, %d risk flags)",
		req.SessionID, generated.ModelName, len(generated.RiskFlags))

	return &primary.TaskResult{SessionID: req.SessionID, ReportID: reportID}, nil
}

func (s *PipelineTaskServiceImpl) generateReport(ctx context.Context, sess *secondary.SessionRecord, transcriptText, language string) (*secondary.GeneratedReport, error) {
	if language == "" {
		language = s.defaultLang
	}

	sessionContext := map[string]string{
		"therapist_id": sess.TherapistID,
		"patient_id":   sess.PatientID,
	}
	if sess.SessionDate != "" {
		sessionContext["session_date"] = sess.SessionDate
	}
	if sess.NotesBefore != "" {
		sessionContext["notes_before"] = sess.NotesBefore
	}

	callCtx, cancel := s.providerContext(ctx)
	defer cancel()

	generated, err := s.reporter.GenerateReport(callCtx, secondary.ReportRequest{
		TranscriptText: transcriptText,
		SessionContext: sessionContext,
		Language:       language,
	})
	if err != nil {
		return nil, fmt.Errorf("report provider: %w", err)
	}
	return generated, nil
}

// handleReportError applies the retry policy for one failed attempt.
// Business failures are terminal immediately; retryable failures with budget
// left propagate untouched so the report stays processing while the job
// requeues; final-attempt failures mark report and session failed.
func (s *PipelineTaskServiceImpl) handleReportError(ctx context.Context, req primary.TaskAttempt, sess *secondary.SessionRecord, reportID string, err error) error {
	if pipeline.IsRetryable(err) && !pipeline.IsFinalAttempt(req.Attempt, req.MaxAttempts) {
		s.logger.Printf("report attempt %d/%d failed for session %s: %v",
			req.Attempt, req.MaxAttempts, req.SessionID, err)
		return err
	}
	if markErr := s.markReportFailed(ctx, sess, reportID, err); markErr != nil {
		return markErr
	}
	return err
}

// markReportFailed records terminal failure on the report and the session,
// atomically. A failure can strike before the attempt ever reached the report
// row (transcript not ready, empty transcript), so the row is resolved by
// session and created on demand; the terminal state must be visible on the
// report, not just the session.
func (s *PipelineTaskServiceImpl) markReportFailed(ctx context.Context, sess *secondary.SessionRecord, reportID string, cause error) error {
	return s.store.InTx(ctx, func(tx secondary.PipelineTx) error {
		if reportID == "" {
			rep, err := tx.GetReportBySession(ctx, sess.ID)
			if pipeline.IsNotFound(err) {
				rep = &secondary.ReportRecord{
					ID:        uuid.NewString(),
					SessionID: sess.ID,
					Status:    string(corereport.InitialStatus()),
				}
				if err := tx.CreateReport(ctx, rep); err != nil {
					return err
				}
			} else if err != nil {
				return err
			}
			reportID = rep.ID
		}
		if err := tx.UpdateReportStatus(ctx, reportID,
			string(corereport.StatusFailed)); err != nil {
			return err
		}
		return transitionSession(ctx, tx, sess,
			coresession.StatusFailed,
			pipeline.StageReport,
			pipeline.TruncateErrorMessage(cause.Error()))
	})
}
