package app

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	coresession "github.com/ananmuhameed/therapy-ai-platform/internal/core/session"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

const maxFilenameLen = 255

// IngestServiceImpl implements the IngestService interface: session creation
// plus the upload-audio and replace-audio operations that start the pipeline.
type IngestServiceImpl struct {
	store       secondary.PipelineStore
	sessions    secondary.SessionRepository
	blobs       secondary.BlobStore
	locks       *SessionLocks
	maxAttempts int
	defaultLang string
}

// NewIngestService creates a new IngestService with injected dependencies.
func NewIngestService(
	store secondary.PipelineStore,
	sessions secondary.SessionRepository,
	blobs secondary.BlobStore,
	locks *SessionLocks,
	maxAttempts int,
	defaultLang string,
) *IngestServiceImpl {
	return &IngestServiceImpl{
		store:       store,
		sessions:    sessions,
		blobs:       blobs,
		locks:       locks,
		maxAttempts: maxAttempts,
		defaultLang: defaultLang,
	}
}

// CreateSession creates a new session in the empty state.
func (s *IngestServiceImpl) CreateSession(ctx context.Context, req primary.CreateSessionRequest) (*primary.Session, error) {
	if req.PatientID == "" {
		return nil, &pipeline.ValidationError{Reason: "patient_id is required"}
	}

	record := &secondary.SessionRecord{
		ID:              uuid.NewString(),
		TherapistID:     req.TherapistID,
		PatientID:       req.PatientID,
		SessionDate:     req.SessionDate,
		DurationMinutes: req.DurationMinutes,
		NotesBefore:     req.NotesBefore,
		NotesAfter:      req.NotesAfter,
		Status:          string(coresession.InitialStatus()),
	}

	if err := s.sessions.CreateSession(ctx, record); err != nil {
		return nil, fmt.Errorf("failed to create session: %w", err)
	}

	return s.GetSession(ctx, record.ID)
}

// GetSession retrieves a session by ID.
func (s *IngestServiceImpl) GetSession(ctx context.Context, sessionID string) (*primary.Session, error) {
	record, err := s.sessions.GetSession(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	return recordToSession(record), nil
}

// ListSessions lists sessions with optional filters.
func (s *IngestServiceImpl) ListSessions(ctx context.Context, filters primary.SessionFilters) ([]*primary.Session, error) {
	if filters.Status != "" && !coresession.IsValid(coresession.Status(filters.Status)) {
		return nil, &pipeline.ValidationError{Reason: fmt.Sprintf("unknown session status %q", filters.Status)}
	}

	records, err := s.sessions.ListSessions(ctx, secondary.SessionFilters{
		PatientID: filters.PatientID,
		Status:    filters.Status,
		Limit:     filters.Limit,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to list sessions: %w", err)
	}

	sessions := make([]*primary.Session, len(records))
	for i, record := range records {
		sessions[i] = recordToSession(record)
	}
	return sessions, nil
}

// UpdateSessionNotes updates the therapist's before/after session notes.
func (s *IngestServiceImpl) UpdateSessionNotes(ctx context.Context, req primary.UpdateSessionNotesRequest) (*primary.Session, error) {
	if err := s.sessions.UpdateSessionNotes(ctx, req.SessionID, req.NotesBefore, req.NotesAfter); err != nil {
		return nil, err
	}
	return s.GetSession(ctx, req.SessionID)
}

// UploadAudio attaches audio to a session that has none and starts the
// pipeline. The blob is written first, then the attachment, status change,
// and transcription job commit atomically; the job row only becomes visible
// to workers after that commit.
func (s *IngestServiceImpl) UploadAudio(ctx context.Context, req primary.UploadAudioRequest) (*primary.UploadAudioResponse, error) {
	return s.ingestAudio(ctx, req, false)
}

// ReplaceAudio swaps the audio of a session that already has an attachment.
// Prior transcript and report progress is discarded (therapist notes are
// kept) and the pipeline restarts from transcribing.
func (s *IngestServiceImpl) ReplaceAudio(ctx context.Context, req primary.UploadAudioRequest) (*primary.UploadAudioResponse, error) {
	return s.ingestAudio(ctx, req, true)
}

func (s *IngestServiceImpl) ingestAudio(ctx context.Context, req primary.UploadAudioRequest, replace bool) (*primary.UploadAudioResponse, error) {
	if req.Content == nil {
		return nil, &pipeline.ValidationError{Reason: "audio file is required"}
	}

	release := s.locks.Acquire(req.SessionID)
	defer release()

	// The blob write happens outside the transaction; on any failure below
	// the orphaned blob is removed again.
	blobKey, _, err := s.blobs.SaveBlob(ctx, req.Content, req.Filename)
	if err != nil {
		return nil, err
	}

	language := req.LanguageHint
	if language == "" {
		language = s.defaultLang
	}

	audioID := uuid.NewString()
	var oldBlobKey string

	err = s.store.InTx(ctx, func(tx secondary.PipelineTx) error {
		sess, err := tx.GetSession(ctx, req.SessionID)
		if err != nil {
			return err
		}

		existing, err := tx.GetAudioBySession(ctx, req.SessionID)
		if err != nil && !pipeline.IsNotFound(err) {
			return err
		}
		hasAudio := existing != nil

		guardCtx := coresession.AudioContext{SessionID: req.SessionID, HasAudio: hasAudio}
		if replace {
			if result := coresession.CanReplaceAudio(guardCtx); !result.Allowed {
				return &pipeline.NotFoundError{Entity: "audio attachment", ID: req.SessionID}
			}
			oldBlobKey = existing.BlobKey
			if err := tx.DeleteAudioBySession(ctx, req.SessionID); err != nil {
				return err
			}
			// Stale pipeline output must never be surfaced after a replace.
			if err := tx.ResetTranscript(ctx, req.SessionID); err != nil {
				return err
			}
			if err := tx.ResetReportContent(ctx, req.SessionID); err != nil {
				return err
			}
		} else {
			if result := coresession.CanUploadAudio(guardCtx); !result.Allowed {
				return &pipeline.ConflictError{Reason: result.Reason}
			}
		}

		if err := tx.CreateAudio(ctx, &secondary.AudioRecord{
			ID:               audioID,
			SessionID:        req.SessionID,
			BlobKey:          blobKey,
			OriginalFilename: truncateFilename(req.Filename),
			LanguageCode:     language,
		}); err != nil {
			return err
		}

		if err := transitionSession(ctx, tx, sess,
			coresession.StatusTranscribing, "", ""); err != nil {
			return err
		}

		return tx.EnqueueJob(ctx, &secondary.JobRecord{
			ID:          uuid.NewString(),
			SessionID:   req.SessionID,
			Kind:        secondary.JobKindTranscribe,
			MaxAttempts: s.maxAttempts,
		})
	})
	if err != nil {
		s.blobs.DeleteBlob(ctx, blobKey)
		return nil, err
	}

	if oldBlobKey != "" {
		// Best effort; the record pointer is already gone.
		s.blobs.DeleteBlob(ctx, oldBlobKey)
	}

	return &primary.UploadAudioResponse{
		AudioID:       audioID,
		SessionStatus: string(coresession.StatusTranscribing),
	}, nil
}

func truncateFilename(name string) string {
	if len(name) > maxFilenameLen {
		return name[:maxFilenameLen]
	}
	return name
}

func recordToSession(record *secondary.SessionRecord) *primary.Session {
	return &primary.Session{
		ID:               record.ID,
		TherapistID:      record.TherapistID,
		PatientID:        record.PatientID,
		SessionDate:      record.SessionDate,
		DurationMinutes:  record.DurationMinutes,
		Status:           record.Status,
		LastErrorStage:   record.LastErrorStage,
		LastErrorMessage: record.LastErrorMessage,
		NotesBefore:      record.NotesBefore,
		NotesAfter:       record.NotesAfter,
		CreatedAt:        record.CreatedAt,
		UpdatedAt:        record.UpdatedAt,
	}
}
