package repository

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"

	"moodlens-backend/internal/models"
)

type JournalRepo struct {
	pool *pgxpool.Pool
}

func NewJournalRepo(pool *pgxpool.Pool) *JournalRepo {
	return &JournalRepo{pool: pool}
}

func (r *JournalRepo) Create(ctx context.Context, entry *models.JournalEntry) error {
	entry.ID = uuid.New()

	query := `
		INSERT INTO journal_entries (id, user_id, text, mood_rating, ai_analysis)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING created_at`

	return r.pool.QueryRow(ctx, query,
		entry.ID, entry.UserID, entry.Text, entry.MoodRating, entry.AIAnalysis,
	).Scan(&entry.CreatedAt)
}

func (r *JournalRepo) GetByID(ctx context.Context, id, userID uuid.UUID) (*models.JournalEntry, error) {
	entry := &models.JournalEntry{}
	err := r.pool.QueryRow(ctx, `
		SELECT id, user_id, text, mood_rating, ai_analysis, created_at
		FROM journal_entries WHERE id = $1 AND user_id = $2
	`, id, userID).Scan(
		&entry.ID, &entry.UserID, &entry.Text, &entry.MoodRating, &entry.AIAnalysis, &entry.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	return entry, nil
}

// List returns a user's entries, newest first.
func (r *JournalRepo) List(ctx context.Context, userID uuid.UUID, limit int) ([]models.JournalEntry, error) {
	if limit <= 0 || limit > 200 {
		limit = 50
	}
	rows, err := r.pool.Query(ctx, `
		SELECT id, user_id, text, mood_rating, ai_analysis, created_at
		FROM journal_entries
		WHERE user_id = $1
		ORDER BY created_at DESC
		LIMIT $2
	`, userID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	entries := make([]models.JournalEntry, 0)
	for rows.Next() {
		var entry models.JournalEntry
		if err := rows.Scan(
			&entry.ID, &entry.UserID, &entry.Text, &entry.MoodRating, &entry.AIAnalysis, &entry.CreatedAt,
		); err != nil {
			return nil, err
		}
		entries = append(entries, entry)
	}
	return entries, rows.Err()
}

// UpdateAnalysis stores the generated feedback for an entry.
func (r *JournalRepo) UpdateAnalysis(ctx context.Context, id uuid.UUID, analysis string) error {
	_, err := r.pool.Exec(ctx,
		"UPDATE journal_entries SET ai_analysis = $1 WHERE id = $2", analysis, id)
	return err
}

// CountSince reports how many entries a user wrote at or after the
// given time.
func (r *JournalRepo) CountSince(ctx context.Context, userID uuid.UUID, since time.Time) (int, error) {
	var count int
	err := r.pool.QueryRow(ctx,
		"SELECT COUNT(*) FROM journal_entries WHERE user_id = $1 AND created_at >= $2",
		userID, since,
	).Scan(&count)
	return count, err
}

func (r *JournalRepo) Delete(ctx context.Context, id, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM journal_entries WHERE id = $1 AND user_id = $2", id, userID)
	return err
}
