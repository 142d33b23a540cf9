package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quillhq/quill/internal/domain"
	apperrors "github.com/quillhq/quill/pkg/errors"
)

// SessionRepository stores token sessions in Postgres.
type SessionRepository struct {
	db DB
}

// NewSessionRepository creates a session repository.
func NewSessionRepository(db DB) *SessionRepository {
	return &SessionRepository{db: db}
}

const sessionColumns = `id, user_id, access_token, refresh_token, expires_at, device_info, ip_address, user_agent, created_at, updated_at`

func scanSession(row pgx.Row) (*domain.Session, error) {
	var s domain.Session
	err := row.Scan(
		&s.ID, &s.UserID, &s.AccessToken, &s.RefreshToken, &s.ExpiresAt,
		&s.DeviceInfo, &s.IPAddress, &s.UserAgent, &s.CreatedAt, &s.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &s, nil
}

// Create inserts a session and fills in the generated id and timestamps.
func (r *SessionRepository) Create(ctx context.Context, session *domain.Session) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO user_sessions (user_id, access_token, refresh_token, expires_at, device_info, ip_address, user_agent)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING id, created_at, updated_at`,
		session.UserID, session.AccessToken, session.RefreshToken, session.ExpiresAt,
		session.DeviceInfo, session.IPAddress, session.UserAgent,
	).Scan(&session.ID, &session.CreatedAt, &session.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert session: %w", err)
	}
	return nil
}

// GetByAccessToken fetches a session by its raw access token.
func (r *SessionRepository) GetByAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	session, err := scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE access_token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session by access token: %w", err)
	}
	return session, nil
}

// GetByRefreshToken fetches a session by its raw refresh token.
func (r *SessionRepository) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	session, err := scanSession(r.db.QueryRow(ctx,
		`SELECT `+sessionColumns+` FROM user_sessions WHERE refresh_token = $1`, token))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.ErrSessionNotFound
		}
		return nil, fmt.Errorf("select session by refresh token: %w", err)
	}
	return session, nil
}

// ListActiveByUser returns the user's unexpired sessions, newest first.
func (r *SessionRepository) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.Session, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+sessionColumns+`
		FROM user_sessions
		WHERE user_id = $1 AND expires_at > $2
		ORDER BY created_at DESC`,
		userID, now,
	)
	if err != nil {
		return nil, fmt.Errorf("select active sessions: %w", err)
	}
	defer rows.Close()

	var sessions []domain.Session
	for rows.Next() {
		session, err := scanSession(rows)
		if err != nil {
			return nil, fmt.Errorf("scan session: %w", err)
		}
		sessions = append(sessions, *session)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate sessions: %w", err)
	}
	return sessions, nil
}

// UpdateTokens replaces both tokens and the expiry in place, keeping the
// session id stable across refreshes.
func (r *SessionRepository) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE user_sessions
		SET access_token = $2, refresh_token = $3, expires_at = $4, updated_at = now()
		WHERE id = $1`,
		id, accessToken, refreshToken, expiresAt,
	)
	if err != nil {
		return fmt.Errorf("update session tokens: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// Delete removes a session by id.
func (r *SessionRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete session: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.ErrSessionNotFound
	}
	return nil
}

// DeleteByAccessToken removes the session holding the given access token and
// reports whether anything was deleted.
func (r *SessionRepository) DeleteByAccessToken(ctx context.Context, token string) (bool, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE access_token = $1`, token)
	if err != nil {
		return false, fmt.Errorf("delete session by access token: %w", err)
	}
	return tag.RowsAffected() > 0, nil
}

// DeleteAllByUser removes every session of the user and returns the count.
func (r *SessionRepository) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE user_id = $1`, userID)
	if err != nil {
		return 0, fmt.Errorf("delete user sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}

// DeleteExpired removes every session whose expiry has passed.
func (r *SessionRepository) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	tag, err := r.db.Exec(ctx, `DELETE FROM user_sessions WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, fmt.Errorf("delete expired sessions: %w", err)
	}
	return int(tag.RowsAffected()), nil
}
