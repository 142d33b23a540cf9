package service

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/pkg/pagination"
)

type mockUserRepo struct {
	mock.Mock
}

func (m *mockUserRepo) Create(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) GetByID(ctx context.Context, id string) (*domain.User, error) {
	args := m.Called(ctx, id)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) GetByEmail(ctx context.Context, email string) (*domain.User, error) {
	args := m.Called(ctx, email)
	if u := args.Get(0); u != nil {
		return u.(*domain.User), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockUserRepo) UpdateProfile(ctx context.Context, user *domain.User) error {
	args := m.Called(ctx, user)
	return args.Error(0)
}

func (m *mockUserRepo) UpdatePassword(ctx context.Context, id, passwordHash string) error {
	args := m.Called(ctx, id, passwordHash)
	return args.Error(0)
}

func (m *mockUserRepo) UpdateLastLogin(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

type mockSessionRepo struct {
	mock.Mock
}

func (m *mockSessionRepo) Create(ctx context.Context, session *domain.Session) error {
	args := m.Called(ctx, session)
	return args.Error(0)
}

func (m *mockSessionRepo) GetByAccessToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s := args.Get(0); s != nil {
		return s.(*domain.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionRepo) GetByRefreshToken(ctx context.Context, token string) (*domain.Session, error) {
	args := m.Called(ctx, token)
	if s := args.Get(0); s != nil {
		return s.(*domain.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionRepo) ListActiveByUser(ctx context.Context, userID string, now time.Time) ([]domain.Session, error) {
	args := m.Called(ctx, userID, now)
	if s := args.Get(0); s != nil {
		return s.([]domain.Session), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockSessionRepo) UpdateTokens(ctx context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	args := m.Called(ctx, id, accessToken, refreshToken, expiresAt)
	return args.Error(0)
}

func (m *mockSessionRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockSessionRepo) DeleteByAccessToken(ctx context.Context, token string) (bool, error) {
	args := m.Called(ctx, token)
	return args.Bool(0), args.Error(1)
}

func (m *mockSessionRepo) DeleteAllByUser(ctx context.Context, userID string) (int, error) {
	args := m.Called(ctx, userID)
	return args.Int(0), args.Error(1)
}

func (m *mockSessionRepo) DeleteExpired(ctx context.Context, now time.Time) (int, error) {
	args := m.Called(ctx, now)
	return args.Int(0), args.Error(1)
}

type mockDocumentRepo struct {
	mock.Mock
}

func (m *mockDocumentRepo) Create(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *mockDocumentRepo) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	args := m.Called(ctx, id)
	if d := args.Get(0); d != nil {
		return d.(*domain.Document), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentRepo) List(ctx context.Context, ownerID string, filter domain.DocumentFilter, params pagination.Params) ([]domain.Document, int, error) {
	args := m.Called(ctx, ownerID, filter, params)
	if d := args.Get(0); d != nil {
		return d.([]domain.Document), args.Int(1), args.Error(2)
	}
	return nil, args.Int(1), args.Error(2)
}

func (m *mockDocumentRepo) Update(ctx context.Context, doc *domain.Document) error {
	args := m.Called(ctx, doc)
	return args.Error(0)
}

func (m *mockDocumentRepo) SoftDelete(ctx context.Context, id string, at time.Time) error {
	args := m.Called(ctx, id, at)
	return args.Error(0)
}

func (m *mockDocumentRepo) Restore(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDocumentRepo) PermanentDelete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *mockDocumentRepo) Stats(ctx context.Context, ownerID string) (*domain.DocumentStats, error) {
	args := m.Called(ctx, ownerID)
	if s := args.Get(0); s != nil {
		return s.(*domain.DocumentStats), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentRepo) CreateVersion(ctx context.Context, version *domain.DocumentVersion) error {
	args := m.Called(ctx, version)
	return args.Error(0)
}

func (m *mockDocumentRepo) ListVersions(ctx context.Context, documentID string) ([]domain.DocumentVersion, error) {
	args := m.Called(ctx, documentID)
	if v := args.Get(0); v != nil {
		return v.([]domain.DocumentVersion), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockDocumentRepo) GetVersion(ctx context.Context, documentID string, version int) (*domain.DocumentVersion, error) {
	args := m.Called(ctx, documentID, version)
	if v := args.Get(0); v != nil {
		return v.(*domain.DocumentVersion), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockFolderRepo struct {
	mock.Mock
}

func (m *mockFolderRepo) Create(ctx context.Context, folder *domain.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockFolderRepo) GetByID(ctx context.Context, id string) (*domain.Folder, error) {
	args := m.Called(ctx, id)
	if f := args.Get(0); f != nil {
		return f.(*domain.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFolderRepo) ListByOwner(ctx context.Context, ownerID string) ([]domain.Folder, error) {
	args := m.Called(ctx, ownerID)
	if f := args.Get(0); f != nil {
		return f.([]domain.Folder), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockFolderRepo) Update(ctx context.Context, folder *domain.Folder) error {
	args := m.Called(ctx, folder)
	return args.Error(0)
}

func (m *mockFolderRepo) Delete(ctx context.Context, id string) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}
