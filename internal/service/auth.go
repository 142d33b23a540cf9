package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"
	"unicode"

	"golang.org/x/crypto/bcrypt"

	"github.com/quillhq/quill/internal/auth"
	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/event"
	"github.com/quillhq/quill/internal/repository"
	apperrors "github.com/quillhq/quill/pkg/errors"
)

const bcryptCost = 12

// SessionMeta captures request metadata stored with each session.
type SessionMeta struct {
	DeviceInfo string
	IPAddress  string
	UserAgent  string
}

// RegisterInput is the payload for account creation.
type RegisterInput struct {
	Email       string
	Password    string
	DisplayName string
}

// AuthService implements registration, login, and the session lifecycle.
// Session rows, not token claims, are the authority on validity: a token
// whose session is gone is rejected even if its signature and expiry check
// out.
type AuthService struct {
	users    repository.UserRepository
	sessions repository.SessionRepository
	tokens   *auth.TokenManager
	events   *event.Producer
	log      *slog.Logger
	now      func() time.Time
}

// NewAuthService creates the auth service.
func NewAuthService(
	users repository.UserRepository,
	sessions repository.SessionRepository,
	tokens *auth.TokenManager,
	events *event.Producer,
	log *slog.Logger,
) *AuthService {
	return &AuthService{
		users:    users,
		sessions: sessions,
		tokens:   tokens,
		events:   events,
		log:      log,
		now:      time.Now,
	}
}

// Register creates a new account with a bcrypt-hashed password.
func (s *AuthService) Register(ctx context.Context, input RegisterInput) (*domain.User, error) {
	if err := validatePassword(input.Password); err != nil {
		return nil, err
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(input.Password), bcryptCost)
	if err != nil {
		return nil, fmt.Errorf("hash password: %w", err)
	}

	user := &domain.User{
		Email:        input.Email,
		PasswordHash: string(hash),
		DisplayName:  input.DisplayName,
		Role:         "user",
		IsActive:     true,
	}
	if err := s.users.Create(ctx, user); err != nil {
		return nil, err
	}

	s.log.InfoContext(ctx, "user registered", "user_id", user.ID)
	s.events.UserRegistered(ctx, user.ID, user.Email)
	return user, nil
}

// Login verifies credentials and opens a new session. Unknown email and
// wrong password return the same error.
func (s *AuthService) Login(ctx context.Context, email, password string, meta SessionMeta) (*domain.User, *domain.TokenPair, error) {
	user, err := s.users.GetByEmail(ctx, email)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, nil, apperrors.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(password)); err != nil {
		return nil, nil, apperrors.ErrInvalidCredentials
	}

	if !user.IsActive {
		return nil, nil, apperrors.ErrAccountDeactivated
	}

	pair, err := s.openSession(ctx, user.ID, meta)
	if err != nil {
		return nil, nil, err
	}

	now := s.now()
	if err := s.users.UpdateLastLogin(ctx, user.ID, now); err != nil {
		s.log.WarnContext(ctx, "last login update failed", "user_id", user.ID, "error", err)
	}
	user.LastLogin = &now

	s.log.InfoContext(ctx, "user logged in", "user_id", user.ID)
	return user, pair, nil
}

func (s *AuthService) openSession(ctx context.Context, userID string, meta SessionMeta) (*domain.TokenPair, error) {
	accessToken, err := s.tokens.IssueAccessToken(userID)
	if err != nil {
		return nil, err
	}
	refreshToken, err := s.tokens.IssueRefreshToken(userID)
	if err != nil {
		return nil, err
	}

	session := &domain.Session{
		UserID:       userID,
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		ExpiresAt:    s.now().Add(s.tokens.RefreshExpiry()),
		DeviceInfo:   meta.DeviceInfo,
		IPAddress:    meta.IPAddress,
		UserAgent:    meta.UserAgent,
	}
	if err := s.sessions.Create(ctx, session); err != nil {
		return nil, err
	}

	return s.tokenPair(accessToken, refreshToken), nil
}

func (s *AuthService) tokenPair(accessToken, refreshToken string) *domain.TokenPair {
	return &domain.TokenPair{
		AccessToken:  accessToken,
		RefreshToken: refreshToken,
		TokenType:    "bearer",
		ExpiresIn:    int(s.tokens.AccessExpiry().Seconds()),
	}
}

// Refresh rotates both tokens of the session holding the given refresh
// token. The session id survives rotation; the old pair stops working the
// moment the update commits. An expired session is deleted on detection.
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (*domain.TokenPair, error) {
	claims, err := s.tokens.Decode(refreshToken, auth.TokenTypeRefresh)
	if err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByRefreshToken(ctx, refreshToken)
	if err != nil {
		return nil, err
	}

	if !session.ExpiresAt.After(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, apperrors.ErrSessionNotFound) {
			s.log.WarnContext(ctx, "expired session eviction failed", "session_id", session.ID, "error", err)
		}
		return nil, apperrors.ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, claims.Subject)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		// An account deactivated after issuance looks like a missing user.
		return nil, apperrors.ErrUserNotFound
	}

	newAccess, err := s.tokens.IssueAccessToken(session.UserID)
	if err != nil {
		return nil, err
	}
	newRefresh, err := s.tokens.IssueRefreshToken(session.UserID)
	if err != nil {
		return nil, err
	}

	expiresAt := s.now().Add(s.tokens.RefreshExpiry())
	if err := s.sessions.UpdateTokens(ctx, session.ID, newAccess, newRefresh, expiresAt); err != nil {
		return nil, err
	}

	return s.tokenPair(newAccess, newRefresh), nil
}

// CurrentUser resolves an access token to its user, enforcing session
// validity. An expired session is deleted on detection.
func (s *AuthService) CurrentUser(ctx context.Context, accessToken string) (*domain.User, error) {
	if _, err := s.tokens.Decode(accessToken, auth.TokenTypeAccess); err != nil {
		return nil, err
	}

	session, err := s.sessions.GetByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}

	if !session.ExpiresAt.After(s.now()) {
		if err := s.sessions.Delete(ctx, session.ID); err != nil && !errors.Is(err, apperrors.ErrSessionNotFound) {
			s.log.WarnContext(ctx, "expired session eviction failed", "session_id", session.ID, "error", err)
		}
		return nil, apperrors.ErrSessionExpired
	}

	user, err := s.users.GetByID(ctx, session.UserID)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.ErrUserNotFound
		}
		return nil, err
	}
	if !user.IsActive {
		// An account deactivated after issuance looks like a missing user.
		return nil, apperrors.ErrUserNotFound
	}

	return user, nil
}

// Logout deletes the session holding the given access token. Returns false
// when no such session existed.
func (s *AuthService) Logout(ctx context.Context, accessToken string) (bool, error) {
	return s.sessions.DeleteByAccessToken(ctx, accessToken)
}

// LogoutAll deletes every session of the user and returns the count.
// Calling it with no open sessions is not an error.
func (s *AuthService) LogoutAll(ctx context.Context, userID string) (int, error) {
	count, err := s.sessions.DeleteAllByUser(ctx, userID)
	if err != nil {
		return 0, err
	}
	s.log.InfoContext(ctx, "all sessions revoked", "user_id", userID, "count", count)
	return count, nil
}

// ListActiveSessions returns the user's unexpired sessions newest first,
// marking the one matching the presented access token.
func (s *AuthService) ListActiveSessions(ctx context.Context, userID, currentAccessToken string) ([]domain.SessionInfo, error) {
	sessions, err := s.sessions.ListActiveByUser(ctx, userID, s.now())
	if err != nil {
		return nil, err
	}

	infos := make([]domain.SessionInfo, 0, len(sessions))
	for _, session := range sessions {
		infos = append(infos, domain.SessionInfo{
			Session:   session,
			IsCurrent: session.AccessToken == currentAccessToken,
		})
	}
	return infos, nil
}

// ChangePassword verifies the current password, stores the new hash, and
// revokes every session so stolen tokens die with the old password.
func (s *AuthService) ChangePassword(ctx context.Context, userID, currentPassword, newPassword string) error {
	if err := validatePassword(newPassword); err != nil {
		return err
	}

	user, err := s.users.GetByID(ctx, userID)
	if err != nil {
		return err
	}

	if err := bcrypt.CompareHashAndPassword([]byte(user.PasswordHash), []byte(currentPassword)); err != nil {
		return apperrors.ErrInvalidCredentials
	}

	hash, err := bcrypt.GenerateFromPassword([]byte(newPassword), bcryptCost)
	if err != nil {
		return fmt.Errorf("hash password: %w", err)
	}

	if err := s.users.UpdatePassword(ctx, userID, string(hash)); err != nil {
		return err
	}

	count, err := s.sessions.DeleteAllByUser(ctx, userID)
	if err != nil {
		return err
	}

	s.log.InfoContext(ctx, "password changed", "user_id", userID, "sessions_revoked", count)
	return nil
}

func validatePassword(password string) error {
	if len(password) < 8 {
		return apperrors.InvalidInput("password must be at least 8 characters")
	}

	var hasLetter, hasDigit bool
	for _, r := range password {
		switch {
		case unicode.IsLetter(r):
			hasLetter = true
		case unicode.IsDigit(r):
			hasDigit = true
		}
	}
	if !hasLetter || !hasDigit {
		return apperrors.InvalidInput("password must contain both letters and digits")
	}
	return nil
}
