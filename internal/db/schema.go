package db

// SchemaSQL is the complete schema for fresh installs.
//
// This is the SINGLE SOURCE OF TRUTH for the database schema. All tests run
// against it via GetSchemaSQL(); do not hardcode CREATE TABLE statements in
// test files. If repository code references a column missing here, tests fail
// immediately with "no such column", catching drift at development time.
const SchemaSQL = `
-- Sessions (one per therapy encounter; owns the pipeline status)
CREATE TABLE IF NOT EXISTS sessions (
	id TEXT PRIMARY KEY,
	therapist_id TEXT NOT NULL DEFAULT '',
	patient_id TEXT NOT NULL DEFAULT '',
	session_date DATETIME,
	duration_minutes INTEGER NOT NULL DEFAULT 0,
	status TEXT NOT NULL CHECK(status IN ('empty', 'uploaded', 'recorded', 'transcribing', 'analyzing', 'completed', 'failed')) DEFAULT 'empty',
	last_error_stage TEXT NOT NULL DEFAULT '',
	last_error_message TEXT NOT NULL DEFAULT '',
	notes_before TEXT NOT NULL DEFAULT '',
	notes_after TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP
);

CREATE INDEX IF NOT EXISTS idx_sessions_patient ON sessions(patient_id);

-- Audio attachments (at most one per session, enforced by the UNIQUE index)
CREATE TABLE IF NOT EXISTS session_audio (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL UNIQUE,
	blob_key TEXT NOT NULL,
	original_filename TEXT NOT NULL DEFAULT '',
	duration_seconds INTEGER NOT NULL DEFAULT 0,
	sample_rate INTEGER NOT NULL DEFAULT 0,
	language_code TEXT NOT NULL DEFAULT '',
	uploaded_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

-- Transcripts (at most one per session; updated in place across retries)
CREATE TABLE IF NOT EXISTS session_transcripts (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL CHECK(status IN ('pending', 'transcribing', 'completed', 'failed')) DEFAULT 'pending',
	raw_transcript TEXT NOT NULL DEFAULT '',
	cleaned_transcript TEXT NOT NULL DEFAULT '',
	word_count INTEGER NOT NULL DEFAULT 0,
	language_code TEXT NOT NULL DEFAULT '',
	model_name TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

-- Reports (at most one per session; therapist_notes is user-owned and is
-- never written by the pipeline)
CREATE TABLE IF NOT EXISTS session_reports (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL UNIQUE,
	status TEXT NOT NULL CHECK(status IN ('draft', 'processing', 'completed', 'failed')) DEFAULT 'draft',
	generated_summary TEXT NOT NULL DEFAULT '',
	key_points TEXT NOT NULL DEFAULT '[]',
	risk_flags TEXT NOT NULL DEFAULT '[]',
	treatment_plan TEXT NOT NULL DEFAULT '[]',
	therapist_notes TEXT NOT NULL DEFAULT '',
	model_name TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

-- Jobs (durable queue; rows are inserted in the same transaction as the data
-- they reference, so a queued job always sees durably written state)
CREATE TABLE IF NOT EXISTS jobs (
	id TEXT PRIMARY KEY,
	session_id TEXT NOT NULL,
	kind TEXT NOT NULL CHECK(kind IN ('transcribe_session', 'generate_report')),
	status TEXT NOT NULL CHECK(status IN ('queued', 'running', 'completed', 'failed')) DEFAULT 'queued',
	force_regenerate INTEGER NOT NULL DEFAULT 0,
	attempts INTEGER NOT NULL DEFAULT 0,
	max_attempts INTEGER NOT NULL DEFAULT 3,
	run_at DATETIME NOT NULL DEFAULT CURRENT_TIMESTAMP,
	last_error TEXT NOT NULL DEFAULT '',
	created_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	updated_at DATETIME DEFAULT CURRENT_TIMESTAMP,
	FOREIGN KEY (session_id) REFERENCES sessions(id) ON DELETE CASCADE
);

CREATE INDEX IF NOT EXISTS idx_jobs_claim ON jobs(status, run_at);
`

// GetSchemaSQL returns the authoritative schema SQL.
func GetSchemaSQL() string {
	return SchemaSQL
}
