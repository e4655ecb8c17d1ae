package repository

import (
	"context"
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moodlens-backend/internal/models"
)

type ReadingRepo struct {
	pool *pgxpool.Pool
}

func NewReadingRepo(pool *pgxpool.Pool) *ReadingRepo {
	return &ReadingRepo{pool: pool}
}

func (r *ReadingRepo) Create(ctx context.Context, reading *models.Reading) error {
	reading.ID = uuid.New()

	emotions, err := json.Marshal(reading.Emotions)
	if err != nil {
		return err
	}

	query := `
		INSERT INTO emotion_readings
			(id, user_id, timestamp, emotions_json, dominant_emotion, blink_count, stress_level, wellness_score, session_id, ai_insight)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, NULLIF($9, ''), $10)
		RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		reading.ID, reading.UserID, reading.Timestamp, emotions, reading.DominantEmotion,
		reading.BlinkCount, reading.StressLevel, reading.WellnessScore, reading.SessionID, reading.AIInsight,
	).Scan(&reading.CreatedAt)
}

// GetRecent returns up to limit readings, newest first.
func (r *ReadingRepo) GetRecent(ctx context.Context, userID uuid.UUID, limit int) ([]models.Reading, error) {
	if limit <= 0 || limit > 500 {
		limit = 100
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, timestamp, emotions_json, dominant_emotion, blink_count,
		       stress_level, wellness_score, COALESCE(session_id, ''), ai_insight, created_at
		FROM emotion_readings
		WHERE user_id = $1
		ORDER BY timestamp DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

// GetByTimeRange returns readings in [from, to), oldest first.
func (r *ReadingRepo) GetByTimeRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]models.Reading, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, timestamp, emotions_json, dominant_emotion, blink_count,
		       stress_level, wellness_score, COALESCE(session_id, ''), ai_insight, created_at
		FROM emotion_readings
		WHERE user_id = $1 AND timestamp >= $2 AND timestamp < $3
		ORDER BY timestamp ASC
	`, userID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

// GetBySession returns the readings recorded during one meeting
// session, oldest first.
func (r *ReadingRepo) GetBySession(ctx context.Context, userID uuid.UUID, sessionID string) ([]models.Reading, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, timestamp, emotions_json, dominant_emotion, blink_count,
		       stress_level, wellness_score, COALESCE(session_id, ''), ai_insight, created_at
		FROM emotion_readings
		WHERE user_id = $1 AND session_id = $2
		ORDER BY timestamp ASC
	`, userID, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return scanReadings(rows)
}

func (r *ReadingRepo) DeleteByUser(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM emotion_readings WHERE user_id = $1", userID)
	return err
}

func scanReadings(rows pgx.Rows) ([]models.Reading, error) {
	readings := make([]models.Reading, 0)
	for rows.Next() {
		var reading models.Reading
		var emotions []byte
		if err := rows.Scan(
			&reading.ID, &reading.UserID, &reading.Timestamp, &emotions, &reading.DominantEmotion,
			&reading.BlinkCount, &reading.StressLevel, &reading.WellnessScore, &reading.SessionID,
			&reading.AIInsight, &reading.CreatedAt,
		); err != nil {
			return nil, err
		}
		if err := json.Unmarshal(emotions, &reading.Emotions); err != nil {
			return nil, err
		}
		readings = append(readings, reading)
	}
	return readings, rows.Err()
}
