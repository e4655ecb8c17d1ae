package repository

import (
	"context"
	"encoding/json"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"moodlens-backend/internal/models"
)

// MeetingRepo persists the final report of each ended meeting session.
// Running sessions live in memory only.
type MeetingRepo struct {
	pool *pgxpool.Pool
}

func NewMeetingRepo(pool *pgxpool.Pool) *MeetingRepo {
	return &MeetingRepo{pool: pool}
}

func (r *MeetingRepo) SaveReport(ctx context.Context, report *models.MeetingReport) error {
	data, err := json.Marshal(report)
	if err != nil {
		return err
	}

	_, err = r.pool.Exec(ctx, `
		INSERT INTO meeting_reports (session_id, user_id, title, engagement_score, duration_seconds, report_json)
		VALUES ($1, $2, $3, $4, $5, $6)
		ON CONFLICT (session_id) DO NOTHING
	`, report.SessionID, report.OwnerID, report.MeetingInfo.Title,
		report.Analytics.EngagementScore, report.DurationSeconds, data)
	return err
}

func (r *MeetingRepo) GetReport(ctx context.Context, sessionID, userID uuid.UUID) (*models.MeetingReport, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		"SELECT report_json FROM meeting_reports WHERE session_id = $1 AND user_id = $2",
		sessionID, userID,
	).Scan(&data)
	if err != nil {
		return nil, err
	}

	report := &models.MeetingReport{}
	if err := json.Unmarshal(data, report); err != nil {
		return nil, err
	}
	return report, nil
}

// ListReports returns report summaries for a user, newest first.
func (r *MeetingRepo) ListReports(ctx context.Context, userID uuid.UUID, limit int) ([]models.MeetingReport, error) {
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	rows, err := r.pool.Query(ctx, `
		SELECT report_json FROM meeting_reports
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	reports := make([]models.MeetingReport, 0)
	for rows.Next() {
		var data []byte
		if err := rows.Scan(&data); err != nil {
			return nil, err
		}
		var report models.MeetingReport
		if err := json.Unmarshal(data, &report); err != nil {
			return nil, err
		}
		reports = append(reports, report)
	}
	return reports, rows.Err()
}
