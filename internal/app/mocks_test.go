package app

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"sync"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// ============================================================================
// In-Memory Store
// ============================================================================

// fakeStore implements secondary.PipelineStore and every repository port over
// shared maps, so direct repository calls and transactional calls observe the
// same state. InTx snapshots the maps and restores them when fn fails, which
// mirrors the rollback behavior the services rely on.
type fakeStore struct {
	sessions    map[string]*secondary.SessionRecord
	audio       map[string]*secondary.AudioRecord      // by session ID
	transcripts map[string]*secondary.TranscriptRecord // by session ID
	reports     map[string]*secondary.ReportRecord     // by session ID
	jobs        []*secondary.JobRecord

	enqueueErr error
	txErr      error
}

func newFakeStore() *fakeStore {
	return &fakeStore{
		sessions:    make(map[string]*secondary.SessionRecord),
		audio:       make(map[string]*secondary.AudioRecord),
		transcripts: make(map[string]*secondary.TranscriptRecord),
		reports:     make(map[string]*secondary.ReportRecord),
	}
}

func (f *fakeStore) InTx(ctx context.Context, fn func(tx secondary.PipelineTx) error) error {
	if f.txErr != nil {
		return f.txErr
	}

	sessions := snapshotMap(f.sessions)
	audio := snapshotMap(f.audio)
	transcripts := snapshotMap(f.transcripts)
	reports := snapshotMap(f.reports)
	jobs := make([]*secondary.JobRecord, len(f.jobs))
	copy(jobs, f.jobs)

	if err := fn(f); err != nil {
		f.sessions = sessions
		f.audio = audio
		f.transcripts = transcripts
		f.reports = reports
		f.jobs = jobs
		return err
	}
	return nil
}

func snapshotMap[V any](in map[string]*V) map[string]*V {
	out := make(map[string]*V, len(in))
	for k, v := range in {
		copied := *v
		out[k] = &copied
	}
	return out
}

// ----------------------------------------------------------------------------
// SessionRepository
// ----------------------------------------------------------------------------

func (f *fakeStore) CreateSession(ctx context.Context, session *secondary.SessionRecord) error {
	f.sessions[session.ID] = session
	return nil
}

func (f *fakeStore) GetSession(ctx context.Context, id string) (*secondary.SessionRecord, error) {
	if s, ok := f.sessions[id]; ok {
		return s, nil
	}
	return nil, &pipeline.NotFoundError{Entity: "session", ID: id}
}

func (f *fakeStore) ListSessions(ctx context.Context, filters secondary.SessionFilters) ([]*secondary.SessionRecord, error) {
	var result []*secondary.SessionRecord
	for _, s := range f.sessions {
		if filters.PatientID != "" && s.PatientID != filters.PatientID {
			continue
		}
		if filters.Status != "" && s.Status != filters.Status {
			continue
		}
		result = append(result, s)
	}
	return result, nil
}

func (f *fakeStore) UpdateSessionStatus(ctx context.Context, id, status, errorStage, errorMessage string) error {
	s, ok := f.sessions[id]
	if !ok {
		return &pipeline.NotFoundError{Entity: "session", ID: id}
	}
	s.Status = status
	s.LastErrorStage = errorStage
	s.LastErrorMessage = errorMessage
	return nil
}

func (f *fakeStore) UpdateSessionNotes(ctx context.Context, id, notesBefore, notesAfter string) error {
	s, ok := f.sessions[id]
	if !ok {
		return &pipeline.NotFoundError{Entity: "session", ID: id}
	}
	s.NotesBefore = notesBefore
	s.NotesAfter = notesAfter
	return nil
}

// ----------------------------------------------------------------------------
// AudioRepository
// ----------------------------------------------------------------------------

func (f *fakeStore) CreateAudio(ctx context.Context, audio *secondary.AudioRecord) error {
	if _, ok := f.audio[audio.SessionID]; ok {
		return &pipeline.ConflictError{Reason: "session already has an audio attachment"}
	}
	f.audio[audio.SessionID] = audio
	return nil
}

func (f *fakeStore) GetAudioBySession(ctx context.Context, sessionID string) (*secondary.AudioRecord, error) {
	if a, ok := f.audio[sessionID]; ok {
		return a, nil
	}
	return nil, &pipeline.NotFoundError{Entity: "audio attachment", ID: sessionID}
}

func (f *fakeStore) DeleteAudioBySession(ctx context.Context, sessionID string) error {
	delete(f.audio, sessionID)
	return nil
}

// ----------------------------------------------------------------------------
// TranscriptRepository
// ----------------------------------------------------------------------------

func (f *fakeStore) GetTranscriptBySession(ctx context.Context, sessionID string) (*secondary.TranscriptRecord, error) {
	if t, ok := f.transcripts[sessionID]; ok {
		return t, nil
	}
	return nil, &pipeline.NotFoundError{Entity: "transcript", ID: sessionID}
}

func (f *fakeStore) CreateTranscript(ctx context.Context, transcript *secondary.TranscriptRecord) error {
	f.transcripts[transcript.SessionID] = transcript
	return nil
}

func (f *fakeStore) UpdateTranscriptStatus(ctx context.Context, id, status string) error {
	for _, t := range f.transcripts {
		if t.ID == id {
			t.Status = status
			return nil
		}
	}
	return &pipeline.NotFoundError{Entity: "transcript", ID: id}
}

func (f *fakeStore) SaveTranscriptResult(ctx context.Context, transcript *secondary.TranscriptRecord) error {
	for _, t := range f.transcripts {
		if t.ID == transcript.ID {
			t.Status = transcript.Status
			t.RawTranscript = transcript.RawTranscript
			t.CleanedTranscript = transcript.CleanedTranscript
			t.WordCount = transcript.WordCount
			t.LanguageCode = transcript.LanguageCode
			t.ModelName = transcript.ModelName
			return nil
		}
	}
	return &pipeline.NotFoundError{Entity: "transcript", ID: transcript.ID}
}

func (f *fakeStore) ResetTranscript(ctx context.Context, sessionID string) error {
	if t, ok := f.transcripts[sessionID]; ok {
		t.Status = "pending"
		t.RawTranscript = ""
		t.CleanedTranscript = ""
		t.WordCount = 0
		t.ModelName = ""
	}
	return nil
}

// ----------------------------------------------------------------------------
// ReportRepository
// ----------------------------------------------------------------------------

func (f *fakeStore) GetReportBySession(ctx context.Context, sessionID string) (*secondary.ReportRecord, error) {
	if r, ok := f.reports[sessionID]; ok {
		return r, nil
	}
	return nil, &pipeline.NotFoundError{Entity: "report", ID: sessionID}
}

func (f *fakeStore) CreateReport(ctx context.Context, report *secondary.ReportRecord) error {
	f.reports[report.SessionID] = report
	return nil
}

func (f *fakeStore) UpdateReportStatus(ctx context.Context, id, status string) error {
	for _, r := range f.reports {
		if r.ID == id {
			r.Status = status
			return nil
		}
	}
	return &pipeline.NotFoundError{Entity: "report", ID: id}
}

func (f *fakeStore) SaveReportResult(ctx context.Context, report *secondary.ReportRecord) error {
	for _, r := range f.reports {
		if r.ID == report.ID {
			r.Status = report.Status
			r.GeneratedSummary = report.GeneratedSummary
			r.KeyPointsJSON = report.KeyPointsJSON
			r.RiskFlagsJSON = report.RiskFlagsJSON
			r.TreatmentPlanJSON = report.TreatmentPlanJSON
			r.ModelName = report.ModelName
			return nil
		}
	}
	return &pipeline.NotFoundError{Entity: "report", ID: report.ID}
}

func (f *fakeStore) UpdateTherapistNotes(ctx context.Context, id, notes string) error {
	for _, r := range f.reports {
		if r.ID == id {
			r.TherapistNotes = notes
			return nil
		}
	}
	return &pipeline.NotFoundError{Entity: "report", ID: id}
}

func (f *fakeStore) ResetReportContent(ctx context.Context, sessionID string) error {
	if r, ok := f.reports[sessionID]; ok {
		r.Status = "draft"
		r.GeneratedSummary = ""
		r.KeyPointsJSON = "[]"
		r.RiskFlagsJSON = "[]"
		r.TreatmentPlanJSON = "[]"
		r.ModelName = ""
	}
	return nil
}

// ----------------------------------------------------------------------------
// JobEnqueuer
// ----------------------------------------------------------------------------

func (f *fakeStore) EnqueueJob(ctx context.Context, job *secondary.JobRecord) error {
	if f.enqueueErr != nil {
		return f.enqueueErr
	}
	f.jobs = append(f.jobs, job)
	return nil
}

func (f *fakeStore) jobsOfKind(kind string) []*secondary.JobRecord {
	var out []*secondary.JobRecord
	for _, j := range f.jobs {
		if j.Kind == kind {
			out = append(out, j)
		}
	}
	return out
}

// ============================================================================
// Blob Store Mock
// ============================================================================

type mockBlobStore struct {
	mu      sync.Mutex
	blobs   map[string][]byte
	nextKey int
	saveErr error
	openErr error
	deleted []string
}

func newMockBlobStore() *mockBlobStore {
	return &mockBlobStore{blobs: make(map[string][]byte)}
}

func (m *mockBlobStore) SaveBlob(ctx context.Context, r io.Reader, filename string) (string, int64, error) {
	if m.saveErr != nil {
		return "", 0, m.saveErr
	}
	data, err := io.ReadAll(r)
	if err != nil {
		return "", 0, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	m.nextKey++
	key := fmt.Sprintf("recordings/blob-%d", m.nextKey)
	m.blobs[key] = data
	return key, int64(len(data)), nil
}

func (m *mockBlobStore) OpenBlob(ctx context.Context, key string) (io.ReadCloser, error) {
	if m.openErr != nil {
		return nil, m.openErr
	}
	m.mu.Lock()
	data, ok := m.blobs[key]
	m.mu.Unlock()
	if !ok {
		return nil, &pipeline.NotFoundError{Entity: "blob", ID: key}
	}
	return io.NopCloser(bytes.NewReader(data)), nil
}

func (m *mockBlobStore) DeleteBlob(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.blobs, key)
	m.deleted = append(m.deleted, key)
	return nil
}

func (m *mockBlobStore) blobCount() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.blobs)
}

// ============================================================================
// Provider Mocks
// ============================================================================

type mockTranscriber struct {
	result *secondary.TranscriptionResult
	err    error
	calls  int
}

func (m *mockTranscriber) Transcribe(ctx context.Context, audioPath, language string) (*secondary.TranscriptionResult, error) {
	m.calls++
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &secondary.TranscriptionResult{
		RawText:     "patient discussed progress",
		CleanedText: "patient discussed progress",
		Language:    language,
		WordCount:   3,
		ModelName:   "test-model",
	}, nil
}

type mockReporter struct {
	result   *secondary.GeneratedReport
	err      error
	calls    int
	lastText string
}

func (m *mockReporter) GenerateReport(ctx context.Context, req secondary.ReportRequest) (*secondary.GeneratedReport, error) {
	m.calls++
	m.lastText = req.TranscriptText
	if m.err != nil {
		return nil, m.err
	}
	if m.result != nil {
		return m.result, nil
	}
	return &secondary.GeneratedReport{
		Summary:       "session summary",
		KeyPoints:     []string{"made progress"},
		RiskFlags:     []secondary.RiskFlag{},
		TreatmentPlan: []string{"continue weekly sessions"},
		ModelName:     "test-model",
	}, nil
}
