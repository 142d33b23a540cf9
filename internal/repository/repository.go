// Package repository defines the persistence contracts used by the service
// layer. Implementations live in subpackages.
package repository

import (
	"context"
	"time"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/pkg/pagination"
)

// UserRepository persists user accounts.
type UserRepository interface {
	Create(ctx context.Context, user *domain.User) error
	GetByID(ctx context.Context, id string) (*domain.User, error)
	GetByEmail(ctx context.Context, email string) (*domain.User, error)
	UpdateProfile(ctx context.Context, user *domain.User) error
	UpdatePassword(ctx context.Context, id, passwordHash string) error
	UpdateLastLogin(ctx context.Context, id string, at time.Time) error
}

// SessionRepository persists token sessions. Raw access and refresh tokens
// are both stored and both serve as lookup keys.
type SessionRepository interface {
	Create(ctx context.Context, session *domain.Session) error
	GetByAccessToken(ctx context.Context, token string) (*domain.Session, error)
	GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error)
	ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.Session, error)
	UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error
	Delete(ctx context.Context, id string) error
	DeleteByAccessToken(ctx context.Context, token string) (bool, error)
	DeleteAllByUser(ctx context.Context, userID string) (int, error)
	DeleteExpired(ctx context.Context, now time.Time) (int, error)
}

// DocumentRepository persists documents and their version history.
type DocumentRepository interface {
	Create(ctx context.Context, doc *domain.Document) error
	GetByID(ctx context.Context, id string) (*domain.Document, error)
	List(ctx context.Context, ownerID string, filter domain.DocumentFilter, params pagination.Params) ([]domain.Document, int, error)
	Update(ctx context.Context, doc *domain.Document) error
	SoftDelete(ctx context.Context, id string, at time.Time) error
	Restore(ctx context.Context, id string) error
	PermanentDelete(ctx context.Context, id string) error
	Stats(ctx context.Context, ownerID string) (*domain.DocumentStats, error)

	CreateVersion(ctx context.Context, version *domain.DocumentVersion) error
	ListVersions(ctx context.Context, documentID string) ([]domain.DocumentVersion, error)
	GetVersion(ctx context.Context, documentID string, version int) (*domain.DocumentVersion, error)
}

// FolderRepository persists folders.
type FolderRepository interface {
	Create(ctx context.Context, folder *domain.Folder) error
	GetByID(ctx context.Context, id string) (*domain.Folder, error)
	ListByOwner(ctx context.Context, ownerID string) ([]domain.Folder, error)
	Update(ctx context.Context, folder *domain.Folder) error
	Delete(ctx context.Context, id string) error
}
