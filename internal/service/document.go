package service

import (
	"context"
	"log/slog"
	"time"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/event"
	"github.com/quillhq/quill/internal/indexer"
	"github.com/quillhq/quill/internal/repository"
	apperrors "github.com/quillhq/quill/pkg/errors"
	"github.com/quillhq/quill/pkg/pagination"
)

// CreateDocumentInput is the payload for document creation.
type CreateDocumentInput struct {
	Title       string
	Description string
	Content     string
	AccessLevel string
	Category    string
	FolderID    *string
	IsPinned    bool
}

// UpdateDocumentInput carries partial updates; nil fields stay unchanged.
type UpdateDocumentInput struct {
	Title         *string
	Description   *string
	Content       *string
	AccessLevel   *string
	Category      *string
	FolderID      *string
	ClearFolder   bool
	IsPinned      *bool
	ChangeSummary string
}

// DocumentService implements ownership-scoped document CRUD with version
// history. Every operation checks that the caller owns the document before
// touching it; non-owners get the same not-found as a missing id.
type DocumentService struct {
	docs    repository.DocumentRepository
	folders repository.FolderRepository
	events  *event.Producer
	index   *indexer.Client
	log     *slog.Logger
	now     func() time.Time
}

// NewDocumentService creates the document service.
func NewDocumentService(
	docs repository.DocumentRepository,
	folders repository.FolderRepository,
	events *event.Producer,
	index *indexer.Client,
	log *slog.Logger,
) *DocumentService {
	return &DocumentService{
		docs:    docs,
		folders: folders,
		events:  events,
		index:   index,
		log:     log,
		now:     time.Now,
	}
}

// Create makes a new document owned by the caller. A folder reference must
// point at a folder the caller owns.
func (s *DocumentService) Create(ctx context.Context, ownerID string, input CreateDocumentInput) (*domain.Document, error) {
	if input.FolderID != nil {
		if err := s.checkFolderOwnership(ctx, ownerID, *input.FolderID); err != nil {
			return nil, err
		}
	}

	accessLevel := input.AccessLevel
	if accessLevel == "" {
		accessLevel = domain.AccessPrivate
	}

	doc := &domain.Document{
		OwnerID:     ownerID,
		Title:       input.Title,
		Description: input.Description,
		Content:     input.Content,
		AccessLevel: accessLevel,
		Category:    input.Category,
		FolderID:    input.FolderID,
		IsPinned:    input.IsPinned,
	}
	if err := s.docs.Create(ctx, doc); err != nil {
		return nil, err
	}

	s.events.DocumentCreated(ctx, doc.ID, ownerID)
	s.index.Index(ctx, doc)
	return doc, nil
}

// Get fetches a document the caller owns. Soft deleted documents are only
// returned when includeDeleted is set.
func (s *DocumentService) Get(ctx context.Context, ownerID, id string, includeDeleted bool) (*domain.Document, error) {
	doc, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if doc.DeletedAt != nil && !includeDeleted {
		return nil, apperrors.NotFound("document", id)
	}
	return doc, nil
}

// List returns the caller's documents matching the filter.
func (s *DocumentService) List(ctx context.Context, ownerID string, filter domain.DocumentFilter, params pagination.Params) (pagination.Result[domain.Document], error) {
	if filter.FolderID != nil {
		if err := s.checkFolderOwnership(ctx, ownerID, *filter.FolderID); err != nil {
			return pagination.Result[domain.Document]{}, err
		}
	}

	docs, total, err := s.docs.List(ctx, ownerID, filter, params)
	if err != nil {
		return pagination.Result[domain.Document]{}, err
	}
	if docs == nil {
		docs = []domain.Document{}
	}
	return pagination.NewResult(docs, total, params), nil
}

// Update applies the given changes, snapshotting the previous content when
// it changes so it can be restored later.
func (s *DocumentService) Update(ctx context.Context, ownerID, id string, input UpdateDocumentInput) (*domain.Document, error) {
	doc, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if doc.DeletedAt != nil {
		return nil, apperrors.NotFound("document", id)
	}

	contentChanged := input.Content != nil && *input.Content != doc.Content
	if contentChanged {
		snapshot := &domain.DocumentVersion{
			DocumentID:    doc.ID,
			Content:       doc.Content,
			Version:       doc.Version,
			ChangedBy:     &ownerID,
			ChangeSummary: input.ChangeSummary,
		}
		if err := s.docs.CreateVersion(ctx, snapshot); err != nil {
			return nil, err
		}
		doc.Version++
		doc.Content = *input.Content
	}

	if input.Title != nil {
		doc.Title = *input.Title
	}
	if input.Description != nil {
		doc.Description = *input.Description
	}
	if input.AccessLevel != nil {
		doc.AccessLevel = *input.AccessLevel
	}
	if input.Category != nil {
		doc.Category = *input.Category
	}
	if input.ClearFolder {
		doc.FolderID = nil
	} else if input.FolderID != nil {
		if err := s.checkFolderOwnership(ctx, ownerID, *input.FolderID); err != nil {
			return nil, err
		}
		doc.FolderID = input.FolderID
	}
	if input.IsPinned != nil {
		doc.IsPinned = *input.IsPinned
	}

	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.events.DocumentUpdated(ctx, doc.ID, ownerID, doc.Version)
	s.index.Index(ctx, doc)
	return doc, nil
}

// Delete soft deletes by default; permanent removes the row and its history.
func (s *DocumentService) Delete(ctx context.Context, ownerID, id string, permanent bool) error {
	doc, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return err
	}

	if permanent {
		if err := s.docs.PermanentDelete(ctx, id); err != nil {
			return err
		}
	} else {
		if doc.DeletedAt != nil {
			return apperrors.NotFound("document", id)
		}
		if err := s.docs.SoftDelete(ctx, id, s.now()); err != nil {
			return err
		}
	}

	s.events.DocumentDeleted(ctx, id, ownerID, permanent)
	s.index.Remove(ctx, id)
	return nil
}

// RestoreDeleted clears a soft delete.
func (s *DocumentService) RestoreDeleted(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	doc, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if doc.DeletedAt == nil {
		return nil, apperrors.InvalidInput("document is not deleted")
	}

	if err := s.docs.Restore(ctx, id); err != nil {
		return nil, err
	}
	doc.DeletedAt = nil

	s.index.Index(ctx, doc)
	return doc, nil
}

// ListVersions returns the document's snapshots, newest first.
func (s *DocumentService) ListVersions(ctx context.Context, ownerID, id string) ([]domain.DocumentVersion, error) {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return nil, err
	}

	versions, err := s.docs.ListVersions(ctx, id)
	if err != nil {
		return nil, err
	}
	if versions == nil {
		versions = []domain.DocumentVersion{}
	}
	return versions, nil
}

// RestoreVersion snapshots the current content and replaces it with an older
// version's content, bumping the version counter.
func (s *DocumentService) RestoreVersion(ctx context.Context, ownerID, id string, versionNumber int) (*domain.Document, error) {
	doc, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}
	if doc.DeletedAt != nil {
		return nil, apperrors.NotFound("document", id)
	}

	version, err := s.docs.GetVersion(ctx, id, versionNumber)
	if err != nil {
		return nil, err
	}

	snapshot := &domain.DocumentVersion{
		DocumentID:    doc.ID,
		Content:       doc.Content,
		Version:       doc.Version,
		ChangedBy:     &ownerID,
		ChangeSummary: "before version restore",
	}
	if err := s.docs.CreateVersion(ctx, snapshot); err != nil {
		return nil, err
	}

	doc.Version++
	doc.Content = version.Content
	if err := s.docs.Update(ctx, doc); err != nil {
		return nil, err
	}

	s.events.DocumentUpdated(ctx, doc.ID, ownerID, doc.Version)
	s.index.Index(ctx, doc)
	return doc, nil
}

// Stats summarizes the caller's documents.
func (s *DocumentService) Stats(ctx context.Context, ownerID string) (*domain.DocumentStats, error) {
	return s.docs.Stats(ctx, ownerID)
}

func (s *DocumentService) getOwned(ctx context.Context, ownerID, id string) (*domain.Document, error) {
	doc, err := s.docs.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if doc.OwnerID != ownerID {
		return nil, apperrors.NotFound("document", id)
	}
	return doc, nil
}

func (s *DocumentService) checkFolderOwnership(ctx context.Context, ownerID, folderID string) error {
	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.OwnerID != ownerID {
		return apperrors.NotFound("folder", folderID)
	}
	return nil
}
