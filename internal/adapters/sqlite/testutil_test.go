package sqlite_test

import (
	"context"
	"database/sql"
	"testing"

	_ "github.com/mattn/go-sqlite3"

	"github.com/ananmuhameed/therapy-ai-platform/internal/adapters/sqlite"
	"github.com/ananmuhameed/therapy-ai-platform/internal/db"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

func setupTestDB(t *testing.T) *sql.DB {
	t.Helper()

	database, err := sql.Open("sqlite3", "file::memory:?_fk=1")
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	database.SetMaxOpenConns(1)

	if _, err := database.Exec(db.GetSchemaSQL()); err != nil {
		t.Fatalf("failed to apply schema: %v", err)
	}

	t.Cleanup(func() {
		database.Close()
	})

	return database
}

func insertSession(t *testing.T, database *sql.DB, id, status string) {
	t.Helper()

	repo := sqlite.NewSessionRepository(database)
	err := repo.CreateSession(context.Background(), &secondary.SessionRecord{
		ID:        id,
		PatientID: "patient-1",
		Status:    status,
	})
	if err != nil {
		t.Fatalf("failed to insert session: %v", err)
	}
}

func insertAudio(t *testing.T, database *sql.DB, sessionID string) {
	t.Helper()

	repo := sqlite.NewAudioRepository(database)
	err := repo.CreateAudio(context.Background(), &secondary.AudioRecord{
		ID:        "audio-" + sessionID,
		SessionID: sessionID,
		BlobKey:   "recordings/" + sessionID,
	})
	if err != nil {
		t.Fatalf("failed to insert audio: %v", err)
	}
}
