package app

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/google/uuid"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	corereport "github.com/ananmuhameed/therapy-ai-platform/internal/core/report"
	coresession "github.com/ananmuhameed/therapy-ai-platform/internal/core/session"
	coretranscript "github.com/ananmuhameed/therapy-ai-platform/internal/core/transcript"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/providers/transcription"
)

// RunTranscription executes one transcription attempt for a session.
//
// A missing session is reported as a skip, not an error: the job references
// data that no longer exists and there is nothing to retry. A missing audio
// attachment is a business failure. A transcript that is already completed
// triggers only status reconciliation, which makes re-delivered jobs safe.
func (s *PipelineTaskServiceImpl) RunTranscription(ctx context.Context, req primary.TaskAttempt) (*primary.TaskResult, error) {
	release := s.locks.Acquire(req.SessionID)
	defer release()

	sess, err := s.sessions.GetSession(ctx, req.SessionID)
	if pipeline.IsNotFound(err) {
		return &primary.TaskResult{SessionID: req.SessionID, Skipped: true, SkipReason: "session_not_found"}, nil
	}
	if err != nil {
		return nil, err
	}

	audio, err := s.audio.GetAudioBySession(ctx, req.SessionID)
	if pipeline.IsNotFound(err) {
		bizErr := &pipeline.BusinessError{Reason: "no audio attached to session"}
		if markErr := s.markTranscriptionFailed(ctx, sess, "", bizErr); markErr != nil {
			return nil, markErr
		}
		return nil, bizErr
	}
	if err != nil {
		return nil, err
	}

	language := audio.LanguageCode
	if language == "" {
		language = s.defaultLang
	}

	tr, err := s.getOrCreateTranscript(ctx, req.SessionID, language)
	if err != nil {
		return nil, err
	}

	// Idempotency guard: a completed transcript is never redone. Reconcile
	// the session status instead so duplicate delivery cannot regress it.
	if tr.Status == string(coretranscript.StatusCompleted) {
		if err := s.reconcileAfterTranscript(ctx, sess); err != nil {
			return nil, err
		}
		return &primary.TaskResult{
			SessionID:    req.SessionID,
			Skipped:      true,
			SkipReason:   "transcript_already_completed",
			TranscriptID: tr.ID,
		}, nil
	}

	if sess.Status != string(coresession.StatusTranscribing) {
		if err := transitionSession(ctx, s.sessions, sess,
			coresession.StatusTranscribing, "", ""); err != nil {
			return nil, err
		}
	}
	if tr.Status != string(coretranscript.StatusTranscribing) {
		if err := s.transcripts.UpdateTranscriptStatus(ctx, tr.ID,
			string(coretranscript.StatusTranscribing)); err != nil {
			return nil, err
		}
	}

	result, err := s.transcribeAudio(ctx, audio, language)
	if err != nil {
		return nil, s.handleTranscriptionError(ctx, req, sess, tr.ID, err)
	}

	// Persist the transcript, advance the session, and schedule report
	// generation atomically. The report job becomes visible to workers only
	// after this commit.
	err = s.store.InTx(ctx, func(tx secondary.PipelineTx) error {
		if err := tx.SaveTranscriptResult(ctx, &secondary.TranscriptRecord{
			ID:                tr.ID,
			Status:            string(coretranscript.StatusCompleted),
			RawTranscript:     result.RawText,
			CleanedTranscript: result.CleanedText,
			WordCount:         result.WordCount,
			LanguageCode:      result.Language,
			ModelName:         result.ModelName,
		}); err != nil {
			return err
		}
		if err := transitionSession(ctx, tx, sess,
			coresession.StatusAnalyzing, "", ""); err != nil {
			return err
		}
		return tx.EnqueueJob(ctx, &secondary.JobRecord{
			ID:          uuid.NewString(),
			SessionID:   req.SessionID,
			Kind:        secondary.JobKindGenerateReport,
			MaxAttempts: s.maxAttempts,
		})
	})
	if err != nil {
		return nil, s.handleTranscriptionError(ctx, req, sess, tr.ID, err)
	}

	s.logger.Printf("transcription completed for session %s (%d words, model %s)",
		req.SessionID, result.WordCount, result.ModelName)

	return &primary.TaskResult{SessionID: req.SessionID, TranscriptID: tr.ID}, nil
}

// transcribeAudio materializes the blob into a temporary file and invokes the
// provider. The temporary copy is removed on every exit path.
func (s *PipelineTaskServiceImpl) transcribeAudio(ctx context.Context, audio *secondary.AudioRecord, language string) (*secondary.TranscriptionResult, error) {
	blob, err := s.blobs.OpenBlob(ctx, audio.BlobKey)
	if err != nil {
		return nil, fmt.Errorf("open audio blob: %w", err)
	}
	defer blob.Close()

	tmp, err := os.CreateTemp("", "therapyd-audio-*"+filepath.Ext(audio.BlobKey))
	if err != nil {
		return nil, fmt.Errorf("create temp audio file: %w", err)
	}
	tmpPath := tmp.Name()
	defer os.Remove(tmpPath)

	_, err = io.Copy(tmp, blob)
	if cerr := tmp.Close(); err == nil {
		err = cerr
	}
	if err != nil {
		return nil, fmt.Errorf("materialize audio blob: %w", err)
	}

	callCtx, cancel := s.providerContext(ctx)
	defer cancel()

	result, err := s.transcriber.Transcribe(callCtx, tmpPath, language)
	if err != nil {
		return nil, fmt.Errorf("transcription provider: %w", err)
	}
	if err := transcription.ValidateResult(result); err != nil {
		return nil, err
	}
	return result, nil
}

// handleTranscriptionError applies the retry policy for one failed attempt:
// retryable failures with budget left propagate untouched for rescheduling;
// everything else marks transcript and session failed before propagating.
func (s *PipelineTaskServiceImpl) handleTranscriptionError(ctx context.Context, req primary.TaskAttempt, sess *secondary.SessionRecord, transcriptID string, err error) error {
	if pipeline.IsRetryable(err) && !pipeline.IsFinalAttempt(req.Attempt, req.MaxAttempts) {
		s.logger.Printf("transcription attempt %d/%d failed for session %s: %v",
			req.Attempt, req.MaxAttempts, req.SessionID, err)
		return err
	}
	if markErr := s.markTranscriptionFailed(ctx, sess, transcriptID, err); markErr != nil {
		return markErr
	}
	return err
}

// markTranscriptionFailed records terminal failure on the transcript (when
// one exists) and the session, atomically.
func (s *PipelineTaskServiceImpl) markTranscriptionFailed(ctx context.Context, sess *secondary.SessionRecord, transcriptID string, cause error) error {
	return s.store.InTx(ctx, func(tx secondary.PipelineTx) error {
		if transcriptID != "" {
			if err := tx.UpdateTranscriptStatus(ctx, transcriptID,
				string(coretranscript.StatusFailed)); err != nil {
				return err
			}
		}
		return transitionSession(ctx, tx, sess,
			coresession.StatusFailed,
			pipeline.StageTranscription,
			pipeline.TruncateErrorMessage(cause.Error()))
	})
}

func (s *PipelineTaskServiceImpl) getOrCreateTranscript(ctx context.Context, sessionID, language string) (*secondary.TranscriptRecord, error) {
	tr, err := s.transcripts.GetTranscriptBySession(ctx, sessionID)
	if err == nil {
		return tr, nil
	}
	if !pipeline.IsNotFound(err) {
		return nil, err
	}

	record := &secondary.TranscriptRecord{
		ID:           uuid.NewString(),
		SessionID:    sessionID,
		Status:       string(coretranscript.InitialStatus()),
		LanguageCode: language,
	}
	if err := s.transcripts.CreateTranscript(ctx, record); err != nil {
		return nil, err
	}
	return record, nil
}

// reconcileAfterTranscript brings the session status in line with a
// completed transcript and whatever the report state is.
func (s *PipelineTaskServiceImpl) reconcileAfterTranscript(ctx context.Context, sess *secondary.SessionRecord) error {
	rep, err := s.reports.GetReportBySession(ctx, sess.ID)
	if err != nil && !pipeline.IsNotFound(err) {
		return err
	}
	reportCompleted := rep != nil && rep.Status == string(corereport.StatusCompleted)

	desired := coresession.AfterTranscriptCompleted(reportCompleted)
	if sess.Status == string(desired) {
		return nil
	}
	return transitionSession(ctx, s.sessions, sess, desired, "", "")
}
