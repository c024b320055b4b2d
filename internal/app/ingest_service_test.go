package app

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/primary"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// ============================================================================
// Test Helpers
// ============================================================================

func newTestIngestService() (*IngestServiceImpl, *fakeStore, *mockBlobStore) {
	store := newFakeStore()
	blobs := newMockBlobStore()
	service := NewIngestService(store, store, blobs, NewSessionLocks(), 3, "ar")
	return service, store, blobs
}

func seedSession(store *fakeStore, id, status string) *secondary.SessionRecord {
	record := &secondary.SessionRecord{
		ID:        id,
		PatientID: "patient-1",
		Status:    status,
	}
	store.sessions[id] = record
	return record
}

func seedAudio(store *fakeStore, sessionID, blobKey string) *secondary.AudioRecord {
	record := &secondary.AudioRecord{
		ID:        "audio-" + sessionID,
		SessionID: sessionID,
		BlobKey:   blobKey,
	}
	store.audio[sessionID] = record
	return record
}

// ============================================================================
// CreateSession Tests
// ============================================================================

func TestCreateSession_Success(t *testing.T) {
	service, store, _ := newTestIngestService()
	ctx := context.Background()

	session, err := service.CreateSession(ctx, primary.CreateSessionRequest{
		TherapistID: "therapist-1",
		PatientID:   "patient-1",
		NotesBefore: "first visit",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if session.ID == "" {
		t.Error("expected session ID to be set")
	}
	if session.Status != "empty" {
		t.Errorf("expected status 'empty', got '%s'", session.Status)
	}
	if session.NotesBefore != "first visit" {
		t.Errorf("expected notes to be kept, got '%s'", session.NotesBefore)
	}
	if len(store.sessions) != 1 {
		t.Errorf("expected 1 stored session, got %d", len(store.sessions))
	}
}

func TestCreateSession_MissingPatient(t *testing.T) {
	service, _, _ := newTestIngestService()

	_, err := service.CreateSession(context.Background(), primary.CreateSessionRequest{})

	if !pipeline.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

// ============================================================================
// ListSessions Tests
// ============================================================================

func TestListSessions_RejectsUnknownStatusFilter(t *testing.T) {
	service, _, _ := newTestIngestService()

	_, err := service.ListSessions(context.Background(), primary.SessionFilters{Status: "archived"})

	if !pipeline.IsValidation(err) {
		t.Fatalf("expected validation error, got %v", err)
	}
}

func TestListSessions_FiltersByStatus(t *testing.T) {
	service, store, _ := newTestIngestService()
	seedSession(store, "sess-1", "completed")
	seedSession(store, "sess-2", "empty")

	sessions, err := service.ListSessions(context.Background(), primary.SessionFilters{Status: "completed"})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if len(sessions) != 1 || sessions[0].ID != "sess-1" {
		t.Errorf("expected only the completed session, got %+v", sessions)
	}
}

// ============================================================================
// UploadAudio Tests
// ============================================================================

func TestUploadAudio_StartsPipeline(t *testing.T) {
	service, store, blobs := newTestIngestService()
	ctx := context.Background()
	seedSession(store, "sess-1", "empty")

	resp, err := service.UploadAudio(ctx, primary.UploadAudioRequest{
		SessionID:    "sess-1",
		Filename:     "session.wav",
		Content:      strings.NewReader("audio bytes"),
		LanguageHint: "en",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.SessionStatus != "transcribing" {
		t.Errorf("expected session status 'transcribing', got '%s'", resp.SessionStatus)
	}
	if store.sessions["sess-1"].Status != "transcribing" {
		t.Errorf("expected stored status 'transcribing', got '%s'", store.sessions["sess-1"].Status)
	}
	if store.audio["sess-1"] == nil {
		t.Fatal("expected audio attachment to be stored")
	}
	if store.audio["sess-1"].LanguageCode != "en" {
		t.Errorf("expected language hint to be kept, got '%s'", store.audio["sess-1"].LanguageCode)
	}
	if len(blobs.blobs) != 1 {
		t.Errorf("expected 1 stored blob, got %d", len(blobs.blobs))
	}

	jobs := store.jobsOfKind(secondary.JobKindTranscribe)
	if len(jobs) != 1 {
		t.Fatalf("expected 1 transcribe job, got %d", len(jobs))
	}
	if jobs[0].SessionID != "sess-1" {
		t.Errorf("expected job for sess-1, got '%s'", jobs[0].SessionID)
	}
	if jobs[0].MaxAttempts != 3 {
		t.Errorf("expected max attempts 3, got %d", jobs[0].MaxAttempts)
	}
}

func TestUploadAudio_DefaultsLanguage(t *testing.T) {
	service, store, _ := newTestIngestService()
	seedSession(store, "sess-1", "empty")

	_, err := service.UploadAudio(context.Background(), primary.UploadAudioRequest{
		SessionID: "sess-1",
		Filename:  "session.wav",
		Content:   strings.NewReader("audio bytes"),
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if store.audio["sess-1"].LanguageCode != "ar" {
		t.Errorf("expected default language 'ar', got '%s'", store.audio["sess-1"].LanguageCode)
	}
}

func TestUploadAudio_ConflictWhenAudioExists(t *testing.T) {
	service, store, blobs := newTestIngestService()
	seedSession(store, "sess-1", "transcribing")
	seedAudio(store, "sess-1", "recordings/original")

	_, err := service.UploadAudio(context.Background(), primary.UploadAudioRequest{
		SessionID: "sess-1",
		Filename:  "other.wav",
		Content:   strings.NewReader("other audio"),
	})

	if !pipeline.IsConflict(err) {
		t.Fatalf("expected conflict error, got %v", err)
	}
	if store.audio["sess-1"].BlobKey != "recordings/original" {
		t.Error("expected original attachment to be untouched")
	}
	// The orphaned blob from the rejected upload is cleaned up.
	if len(blobs.blobs) != 0 {
		t.Errorf("expected rejected blob to be removed, got %d blobs", len(blobs.blobs))
	}
	if len(store.jobs) != 0 {
		t.Errorf("expected no jobs enqueued, got %d", len(store.jobs))
	}
}

func TestUploadAudio_ConcurrentUploadsOneWins(t *testing.T) {
	service, store, blobs := newTestIngestService()
	seedSession(store, "sess-1", "empty")

	errs := make([]error, 2)
	var wg sync.WaitGroup
	for i := range errs {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = service.UploadAudio(context.Background(), primary.UploadAudioRequest{
				SessionID: "sess-1",
				Filename:  "session.wav",
				Content:   strings.NewReader("audio bytes"),
			})
		}(i)
	}
	wg.Wait()

	var successes, conflicts int
	for _, err := range errs {
		switch {
		case err == nil:
			successes++
		case pipeline.IsConflict(err):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	if successes != 1 || conflicts != 1 {
		t.Fatalf("expected exactly one success and one conflict, got %d successes and %d conflicts", successes, conflicts)
	}

	if len(store.jobsOfKind(secondary.JobKindTranscribe)) != 1 {
		t.Error("expected exactly one transcribe job")
	}
	// The loser's blob was removed again.
	if n := blobs.blobCount(); n != 1 {
		t.Errorf("expected exactly 1 stored blob, got %d", n)
	}
}

func TestUploadAudio_SessionNotFound(t *testing.T) {
	service, _, blobs := newTestIngestService()

	_, err := service.UploadAudio(context.Background(), primary.UploadAudioRequest{
		SessionID: "missing",
		Filename:  "session.wav",
		Content:   strings.NewReader("audio bytes"),
	})

	if !pipeline.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
	if len(blobs.blobs) != 0 {
		t.Errorf("expected blob cleanup, got %d blobs", len(blobs.blobs))
	}
}

func TestUploadAudio_EnqueueFailureRollsBack(t *testing.T) {
	service, store, blobs := newTestIngestService()
	seedSession(store, "sess-1", "empty")
	store.enqueueErr = errors.New("queue unavailable")

	_, err := service.UploadAudio(context.Background(), primary.UploadAudioRequest{
		SessionID: "sess-1",
		Filename:  "session.wav",
		Content:   strings.NewReader("audio bytes"),
	})

	if err == nil {
		t.Fatal("expected error")
	}
	if store.sessions["sess-1"].Status != "empty" {
		t.Errorf("expected status rolled back to 'empty', got '%s'", store.sessions["sess-1"].Status)
	}
	if store.audio["sess-1"] != nil {
		t.Error("expected audio attachment rolled back")
	}
	if len(blobs.blobs) != 0 {
		t.Errorf("expected blob cleanup, got %d blobs", len(blobs.blobs))
	}
}

// ============================================================================
// ReplaceAudio Tests
// ============================================================================

func TestReplaceAudio_ResetsPipelineProgress(t *testing.T) {
	service, store, blobs := newTestIngestService()
	ctx := context.Background()
	seedSession(store, "sess-1", "completed")
	seedAudio(store, "sess-1", "recordings/original")
	blobs.blobs["recordings/original"] = []byte("old audio")
	store.transcripts["sess-1"] = &secondary.TranscriptRecord{
		ID:                "tr-1",
		SessionID:         "sess-1",
		Status:            "completed",
		RawTranscript:     "old raw",
		CleanedTranscript: "old cleaned",
		WordCount:         2,
	}
	store.reports["sess-1"] = &secondary.ReportRecord{
		ID:               "rep-1",
		SessionID:        "sess-1",
		Status:           "completed",
		GeneratedSummary: "old summary",
		TherapistNotes:   "clinical impressions",
	}

	resp, err := service.ReplaceAudio(ctx, primary.UploadAudioRequest{
		SessionID: "sess-1",
		Filename:  "corrected.wav",
		Content:   strings.NewReader("new audio"),
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.SessionStatus != "transcribing" {
		t.Errorf("expected status 'transcribing', got '%s'", resp.SessionStatus)
	}

	tr := store.transcripts["sess-1"]
	if tr.Status != "pending" || tr.RawTranscript != "" || tr.WordCount != 0 {
		t.Errorf("expected transcript reset, got %+v", tr)
	}

	rep := store.reports["sess-1"]
	if rep.Status != "draft" || rep.GeneratedSummary != "" {
		t.Errorf("expected report content reset, got %+v", rep)
	}
	if rep.TherapistNotes != "clinical impressions" {
		t.Errorf("expected therapist notes preserved, got '%s'", rep.TherapistNotes)
	}

	if store.audio["sess-1"].OriginalFilename != "corrected.wav" {
		t.Errorf("expected new attachment, got '%s'", store.audio["sess-1"].OriginalFilename)
	}

	// The old blob is gone, the new one remains.
	if _, ok := blobs.blobs["recordings/original"]; ok {
		t.Error("expected old blob to be deleted")
	}
	if len(store.jobsOfKind(secondary.JobKindTranscribe)) != 1 {
		t.Error("expected one transcribe job enqueued")
	}
}

func TestReplaceAudio_FailsWithoutExistingAudio(t *testing.T) {
	service, store, _ := newTestIngestService()
	seedSession(store, "sess-1", "empty")

	_, err := service.ReplaceAudio(context.Background(), primary.UploadAudioRequest{
		SessionID: "sess-1",
		Filename:  "session.wav",
		Content:   strings.NewReader("audio bytes"),
	})

	if !pipeline.IsNotFound(err) {
		t.Fatalf("expected not-found error, got %v", err)
	}
}

func TestReplaceAudio_RecoversFailedSession(t *testing.T) {
	service, store, _ := newTestIngestService()
	sess := seedSession(store, "sess-1", "failed")
	sess.LastErrorStage = "transcription"
	sess.LastErrorMessage = "provider exploded"
	seedAudio(store, "sess-1", "recordings/original")

	resp, err := service.ReplaceAudio(context.Background(), primary.UploadAudioRequest{
		SessionID: "sess-1",
		Filename:  "retry.wav",
		Content:   strings.NewReader("new audio"),
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if resp.SessionStatus != "transcribing" {
		t.Errorf("expected status 'transcribing', got '%s'", resp.SessionStatus)
	}
	if store.sessions["sess-1"].LastErrorStage != "" || store.sessions["sess-1"].LastErrorMessage != "" {
		t.Error("expected error fields cleared on recovery")
	}
}

// ============================================================================
// UpdateSessionNotes Tests
// ============================================================================

func TestUpdateSessionNotes_Success(t *testing.T) {
	service, store, _ := newTestIngestService()
	seedSession(store, "sess-1", "empty")

	session, err := service.UpdateSessionNotes(context.Background(), primary.UpdateSessionNotesRequest{
		SessionID:   "sess-1",
		NotesBefore: "before",
		NotesAfter:  "after",
	})

	if err != nil {
		t.Fatalf("expected no error, got %v", err)
	}
	if session.NotesBefore != "before" || session.NotesAfter != "after" {
		t.Errorf("expected notes updated, got %+v", session)
	}
}
