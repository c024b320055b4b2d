package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/ananmuhameed/therapy-ai-platform/internal/core/pipeline"
	corereport "github.com/ananmuhameed/therapy-ai-platform/internal/core/report"
	"github.com/ananmuhameed/therapy-ai-platform/internal/ports/secondary"
)

// ReportRepository implements secondary.ReportRepository with SQLite.
//
// therapist_notes appears in exactly one UPDATE statement here
// (UpdateTherapistNotes); every other write leaves the column untouched.
type ReportRepository struct {
	db DBTX
}

// NewReportRepository creates a new SQLite report repository.
func NewReportRepository(db DBTX) *ReportRepository {
	return &ReportRepository{db: db}
}

// GetReportBySession retrieves the report for a session.
func (r *ReportRepository) GetReportBySession(ctx context.Context, sessionID string) (*secondary.ReportRecord, error) {
	var createdAt, updatedAt time.Time

	record := &secondary.ReportRecord{}
	err := r.db.QueryRowContext(ctx,
		"SELECT id, session_id, status, generated_summary, key_points, risk_flags, treatment_plan, therapist_notes, model_name, created_at, updated_at FROM session_reports WHERE session_id = ?",
		sessionID,
	).Scan(&record.ID, &record.SessionID, &record.Status, &record.GeneratedSummary,
		&record.KeyPointsJSON, &record.RiskFlagsJSON, &record.TreatmentPlanJSON,
		&record.TherapistNotes, &record.ModelName, &createdAt, &updatedAt)

	if err == sql.ErrNoRows {
		return nil, &pipeline.NotFoundError{Entity: "report", ID: sessionID}
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get report: %w", err)
	}

	record.CreatedAt = createdAt.Format(time.RFC3339)
	record.UpdatedAt = updatedAt.Format(time.RFC3339)
	return record, nil
}

// CreateReport persists a new report row.
func (r *ReportRepository) CreateReport(ctx context.Context, report *secondary.ReportRecord) error {
	if report.ID == "" {
		return fmt.Errorf("report ID must be pre-populated by service layer")
	}

	keyPoints := report.KeyPointsJSON
	if keyPoints == "" {
		keyPoints = "[]"
	}
	riskFlags := report.RiskFlagsJSON
	if riskFlags == "" {
		riskFlags = "[]"
	}
	treatmentPlan := report.TreatmentPlanJSON
	if treatmentPlan == "" {
		treatmentPlan = "[]"
	}

	_, err := r.db.ExecContext(ctx,
		"INSERT INTO session_reports (id, session_id, status, generated_summary, key_points, risk_flags, treatment_plan, model_name) VALUES (?, ?, ?, ?, ?, ?, ?, ?)",
		report.ID, report.SessionID, report.Status, report.GeneratedSummary,
		keyPoints, riskFlags, treatmentPlan, report.ModelName,
	)
	if err != nil {
		return fmt.Errorf("failed to create report: %w", err)
	}
	return nil
}

// UpdateReportStatus sets only the report status.
func (r *ReportRepository) UpdateReportStatus(ctx context.Context, id, status string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE session_reports SET status = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		status, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update report status: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "report", ID: id}
	}
	return nil
}

// SaveReportResult persists generated content together with the new status.
// therapist_notes is deliberately absent from the statement.
func (r *ReportRepository) SaveReportResult(ctx context.Context, report *secondary.ReportRecord) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE session_reports SET status = ?, generated_summary = ?, key_points = ?, risk_flags = ?, treatment_plan = ?, model_name = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		report.Status, report.GeneratedSummary, report.KeyPointsJSON,
		report.RiskFlagsJSON, report.TreatmentPlanJSON, report.ModelName, report.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to save report result: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "report", ID: report.ID}
	}
	return nil
}

// UpdateTherapistNotes replaces the therapist notes. The single write path
// for the field.
func (r *ReportRepository) UpdateTherapistNotes(ctx context.Context, id, notes string) error {
	res, err := r.db.ExecContext(ctx,
		"UPDATE session_reports SET therapist_notes = ?, updated_at = CURRENT_TIMESTAMP WHERE id = ?",
		notes, id,
	)
	if err != nil {
		return fmt.Errorf("failed to update therapist notes: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return &pipeline.NotFoundError{Entity: "report", ID: id}
	}
	return nil
}

// ResetReportContent clears generated fields for a session after its audio
// was replaced, preserving therapist_notes. Missing report is a no-op.
func (r *ReportRepository) ResetReportContent(ctx context.Context, sessionID string) error {
	_, err := r.db.ExecContext(ctx,
		"UPDATE session_reports SET status = ?, generated_summary = '', key_points = '[]', risk_flags = '[]', treatment_plan = '[]', model_name = '', updated_at = CURRENT_TIMESTAMP WHERE session_id = ?",
		string(corereport.StatusDraft), sessionID,
	)
	if err != nil {
		return fmt.Errorf("failed to reset report content: %w", err)
	}
	return nil
}
