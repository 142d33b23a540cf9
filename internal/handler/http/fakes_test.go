package http

import (
	"context"
	"sort"
	"strconv"
	"sync"
	"time"

	"github.com/quillhq/quill/internal/domain"
	apperrors "github.com/quillhq/quill/pkg/errors"
	"github.com/quillhq/quill/pkg/pagination"
)

// In-memory repositories so router tests drive the real services end to end.

type memUserRepo struct {
	mu    sync.Mutex
	seq   int
	users map[string]*domain.User
}

func newMemUserRepo() *memUserRepo {
	return &memUserRepo{users: make(map[string]*domain.User)}
}

func (r *memUserRepo) Create(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == user.Email {
			return apperrors.ErrEmailTaken
		}
	}
	r.seq++
	user.ID = "user-" + strconv.Itoa(r.seq)
	user.CreatedAt = time.Now()
	user.UpdatedAt = user.CreatedAt
	clone := *user
	r.users[user.ID] = &clone
	return nil
}

func (r *memUserRepo) GetByID(_ context.Context, id string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	u, ok := r.users[id]
	if !ok {
		return nil, apperrors.NotFound("user", id)
	}
	clone := *u
	return &clone, nil
}

func (r *memUserRepo) GetByEmail(_ context.Context, email string) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.users {
		if u.Email == email {
			clone := *u
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("user", email)
}

func (r *memUserRepo) UpdateProfile(_ context.Context, user *domain.User) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[user.ID]
	if !ok {
		return apperrors.NotFound("user", user.ID)
	}
	stored.DisplayName = user.DisplayName
	stored.AvatarURL = user.AvatarURL
	stored.Bio = user.Bio
	return nil
}

func (r *memUserRepo) UpdatePassword(_ context.Context, id, passwordHash string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.users[id]
	if !ok {
		return apperrors.NotFound("user", id)
	}
	stored.PasswordHash = passwordHash
	return nil
}

func (r *memUserRepo) UpdateLastLogin(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if stored, ok := r.users[id]; ok {
		stored.LastLogin = &at
	}
	return nil
}

type memSessionRepo struct {
	mu       sync.Mutex
	seq      int
	sessions map[string]*domain.Session
}

func newMemSessionRepo() *memSessionRepo {
	return &memSessionRepo{sessions: make(map[string]*domain.Session)}
}

func (r *memSessionRepo) Create(_ context.Context, session *domain.Session) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	session.ID = "sess-" + strconv.Itoa(r.seq)
	session.CreatedAt = time.Now()
	session.UpdatedAt = session.CreatedAt
	clone := *session
	r.sessions[session.ID] = &clone
	return nil
}

func (r *memSessionRepo) GetByAccessToken(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.AccessToken == token {
			clone := *s
			return &clone, nil
		}
	}
	return nil, apperrors.ErrSessionNotFound
}

func (r *memSessionRepo) GetByRefreshToken(_ context.Context, token string) (*domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.sessions {
		if s.RefreshToken == token {
			clone := *s
			return &clone, nil
		}
	}
	return nil, apperrors.ErrSessionNotFound
}

func (r *memSessionRepo) ListActiveByUser(_ context.Context, userID string, now time.Time) ([]domain.Session, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Session
	for _, s := range r.sessions {
		if s.UserID == userID && s.ExpiresAt.After(now) {
			out = append(out, *s)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].CreatedAt.After(out[j].CreatedAt) })
	return out, nil
}

func (r *memSessionRepo) UpdateTokens(_ context.Context, id, accessToken, refreshToken string, expiresAt time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	if !ok {
		return apperrors.ErrSessionNotFound
	}
	s.AccessToken = accessToken
	s.RefreshToken = refreshToken
	s.ExpiresAt = expiresAt
	s.UpdatedAt = time.Now()
	return nil
}

func (r *memSessionRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[id]; !ok {
		return apperrors.ErrSessionNotFound
	}
	delete(r.sessions, id)
	return nil
}

func (r *memSessionRepo) DeleteByAccessToken(_ context.Context, token string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for id, s := range r.sessions {
		if s.AccessToken == token {
			delete(r.sessions, id)
			return true, nil
		}
	}
	return false, nil
}

func (r *memSessionRepo) DeleteAllByUser(_ context.Context, userID string) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, s := range r.sessions {
		if s.UserID == userID {
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}

func (r *memSessionRepo) DeleteExpired(_ context.Context, now time.Time) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	count := 0
	for id, s := range r.sessions {
		if !s.ExpiresAt.After(now) {
			delete(r.sessions, id)
			count++
		}
	}
	return count, nil
}

type memDocumentRepo struct {
	mu       sync.Mutex
	seq      int
	docs     map[string]*domain.Document
	versions []domain.DocumentVersion
}

func newMemDocumentRepo() *memDocumentRepo {
	return &memDocumentRepo{docs: make(map[string]*domain.Document)}
}

func (r *memDocumentRepo) Create(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	doc.ID = "doc-" + strconv.Itoa(r.seq)
	doc.Version = 1
	doc.CreatedAt = time.Now()
	doc.UpdatedAt = doc.CreatedAt
	clone := *doc
	r.docs[doc.ID] = &clone
	return nil
}

func (r *memDocumentRepo) GetByID(_ context.Context, id string) (*domain.Document, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok {
		return nil, apperrors.NotFound("document", id)
	}
	clone := *d
	return &clone, nil
}

func (r *memDocumentRepo) List(_ context.Context, ownerID string, filter domain.DocumentFilter, params pagination.Params) ([]domain.Document, int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Document
	for _, d := range r.docs {
		if d.OwnerID != ownerID {
			continue
		}
		if filter.Deleted != (d.DeletedAt != nil) {
			continue
		}
		if filter.Category != "" && d.Category != filter.Category {
			continue
		}
		if filter.Pinned != nil && d.IsPinned != *filter.Pinned {
			continue
		}
		out = append(out, *d)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, len(out), nil
}

func (r *memDocumentRepo) Update(_ context.Context, doc *domain.Document) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[doc.ID]; !ok {
		return apperrors.NotFound("document", doc.ID)
	}
	clone := *doc
	clone.UpdatedAt = time.Now()
	r.docs[doc.ID] = &clone
	return nil
}

func (r *memDocumentRepo) SoftDelete(_ context.Context, id string, at time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.DeletedAt != nil {
		return apperrors.NotFound("document", id)
	}
	d.DeletedAt = &at
	return nil
}

func (r *memDocumentRepo) Restore(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	d, ok := r.docs[id]
	if !ok || d.DeletedAt == nil {
		return apperrors.NotFound("document", id)
	}
	d.DeletedAt = nil
	return nil
}

func (r *memDocumentRepo) PermanentDelete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.docs[id]; !ok {
		return apperrors.NotFound("document", id)
	}
	delete(r.docs, id)
	return nil
}

func (r *memDocumentRepo) Stats(_ context.Context, ownerID string) (*domain.DocumentStats, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stats := &domain.DocumentStats{}
	categories := make(map[string]struct{})
	for _, d := range r.docs {
		if d.OwnerID != ownerID {
			continue
		}
		if d.DeletedAt != nil {
			stats.Deleted++
			continue
		}
		stats.Total++
		if d.IsPinned {
			stats.Pinned++
		}
		if d.Category != "" {
			categories[d.Category] = struct{}{}
		}
	}
	stats.Categories = len(categories)
	return stats, nil
}

func (r *memDocumentRepo) CreateVersion(_ context.Context, version *domain.DocumentVersion) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	version.ID = "ver-" + strconv.Itoa(r.seq)
	version.CreatedAt = time.Now()
	r.versions = append(r.versions, *version)
	return nil
}

func (r *memDocumentRepo) ListVersions(_ context.Context, documentID string) ([]domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.DocumentVersion
	for _, v := range r.versions {
		if v.DocumentID == documentID {
			out = append(out, v)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Version > out[j].Version })
	return out, nil
}

func (r *memDocumentRepo) GetVersion(_ context.Context, documentID string, version int) (*domain.DocumentVersion, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, v := range r.versions {
		if v.DocumentID == documentID && v.Version == version {
			clone := v
			return &clone, nil
		}
	}
	return nil, apperrors.NotFound("document version", documentID)
}

type memFolderRepo struct {
	mu      sync.Mutex
	seq     int
	folders map[string]*domain.Folder
}

func newMemFolderRepo() *memFolderRepo {
	return &memFolderRepo{folders: make(map[string]*domain.Folder)}
}

func (r *memFolderRepo) Create(_ context.Context, folder *domain.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.seq++
	folder.ID = "folder-" + strconv.Itoa(r.seq)
	folder.CreatedAt = time.Now()
	folder.UpdatedAt = folder.CreatedAt
	clone := *folder
	r.folders[folder.ID] = &clone
	return nil
}

func (r *memFolderRepo) GetByID(_ context.Context, id string) (*domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.folders[id]
	if !ok {
		return nil, apperrors.NotFound("folder", id)
	}
	clone := *f
	return &clone, nil
}

func (r *memFolderRepo) ListByOwner(_ context.Context, ownerID string) ([]domain.Folder, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []domain.Folder
	for _, f := range r.folders {
		if f.OwnerID == ownerID {
			out = append(out, *f)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].SortOrder < out[j].SortOrder })
	return out, nil
}

func (r *memFolderRepo) Update(_ context.Context, folder *domain.Folder) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[folder.ID]; !ok {
		return apperrors.NotFound("folder", folder.ID)
	}
	clone := *folder
	r.folders[folder.ID] = &clone
	return nil
}

func (r *memFolderRepo) Delete(_ context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.folders[id]; !ok {
		return apperrors.NotFound("folder", id)
	}
	delete(r.folders, id)
	return nil
}
