package repository

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"moodlens-backend/internal/models"
)

type UserRepo struct {
	pool *pgxpool.Pool
}

func NewUserRepo(pool *pgxpool.Pool) *UserRepo {
	return &UserRepo{pool: pool}
}

func (r *UserRepo) Create(ctx context.Context, user *models.User) error {
	query := `
		INSERT INTO users (id, email, password_hash, full_name)
		VALUES ($1, $2, $3, $4)
		RETURNING created_at`

	user.ID = uuid.New()
	user.IsActive = true

	return r.pool.QueryRow(ctx, query,
		user.ID, user.Email, user.PasswordHash, user.FullName,
	).Scan(&user.CreatedAt)
}

func (r *UserRepo) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, full_name, is_active, created_at, last_login_at
		FROM users WHERE email = $1`

	err := r.pool.QueryRow(ctx, query, email).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.IsActive, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepo) GetByID(ctx context.Context, id uuid.UUID) (*models.User, error) {
	user := &models.User{}
	query := `SELECT id, email, password_hash, full_name, is_active, created_at, last_login_at
		FROM users WHERE id = $1`

	err := r.pool.QueryRow(ctx, query, id).Scan(
		&user.ID, &user.Email, &user.PasswordHash, &user.FullName,
		&user.IsActive, &user.CreatedAt, &user.LastLoginAt,
	)
	if err != nil {
		return nil, err
	}
	return user, nil
}

// GetEmailByID resolves the address and display name used for email
// notification delivery.
func (r *UserRepo) GetEmailByID(ctx context.Context, id uuid.UUID) (string, string, error) {
	var email, fullName string
	err := r.pool.QueryRow(ctx,
		"SELECT email, full_name FROM users WHERE id = $1", id,
	).Scan(&email, &fullName)
	if err != nil {
		return "", "", err
	}
	return email, fullName, nil
}

func (r *UserRepo) UpdateLastLogin(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET last_login_at = $1 WHERE id = $2", time.Now(), userID)
	return err
}

func (r *UserRepo) UpdatePassword(ctx context.Context, userID uuid.UUID, passwordHash string) error {
	_, err := r.pool.Exec(ctx, "UPDATE users SET password_hash = $1 WHERE id = $2", passwordHash, userID)
	return err
}

func (r *UserRepo) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx, "DELETE FROM users WHERE id = $1", userID)
	return err
}

func (r *UserRepo) CreateNotificationPreferences(ctx context.Context, userID uuid.UUID, prefs models.NotificationPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO notification_preferences (user_id, prefs_json)
		VALUES ($1, $2)
		ON CONFLICT (user_id) DO NOTHING
	`, userID, data)
	return err
}

// GetNotificationPreferences loads the stored preferences, falling back
// to the defaults when the user has none.
func (r *UserRepo) GetNotificationPreferences(ctx context.Context, userID uuid.UUID) (models.NotificationPreferences, error) {
	var data []byte
	err := r.pool.QueryRow(ctx,
		"SELECT prefs_json FROM notification_preferences WHERE user_id = $1", userID,
	).Scan(&data)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.DefaultNotificationPreferences(), nil
	}
	if err != nil {
		return models.NotificationPreferences{}, err
	}

	prefs := models.DefaultNotificationPreferences()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return models.DefaultNotificationPreferences(), nil
	}
	return prefs, nil
}

func (r *UserRepo) UpdateNotificationPreferences(ctx context.Context, userID uuid.UUID, prefs models.NotificationPreferences) error {
	data, err := json.Marshal(prefs)
	if err != nil {
		return err
	}
	_, err = r.pool.Exec(ctx, `
		INSERT INTO notification_preferences (user_id, prefs_json, updated_at)
		VALUES ($1, $2, NOW())
		ON CONFLICT (user_id) DO UPDATE
		SET prefs_json = $2, updated_at = NOW()
	`, userID, data)
	return err
}
