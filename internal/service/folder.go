package service

import (
	"context"
	"log/slog"

	"github.com/quillhq/quill/internal/domain"
	"github.com/quillhq/quill/internal/repository"
	apperrors "github.com/quillhq/quill/pkg/errors"
)

// CreateFolderInput is the payload for folder creation.
type CreateFolderInput struct {
	Name      string
	ParentID  *string
	Icon      string
	SortOrder int
}

// UpdateFolderInput carries partial updates; nil fields stay unchanged.
type UpdateFolderInput struct {
	Name        *string
	ParentID    *string
	ClearParent bool
	Icon        *string
	SortOrder   *int
}

// FolderService implements ownership-scoped folder CRUD. A parent reference
// must point at a folder the caller owns.
type FolderService struct {
	folders repository.FolderRepository
	log     *slog.Logger
}

// NewFolderService creates the folder service.
func NewFolderService(folders repository.FolderRepository, log *slog.Logger) *FolderService {
	return &FolderService{folders: folders, log: log}
}

// Create makes a new folder owned by the caller.
func (s *FolderService) Create(ctx context.Context, ownerID string, input CreateFolderInput) (*domain.Folder, error) {
	if input.ParentID != nil {
		if err := s.checkOwnership(ctx, ownerID, *input.ParentID); err != nil {
			return nil, err
		}
	}

	folder := &domain.Folder{
		OwnerID:   ownerID,
		Name:      input.Name,
		ParentID:  input.ParentID,
		Icon:      input.Icon,
		SortOrder: input.SortOrder,
	}
	if err := s.folders.Create(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Get fetches a folder the caller owns.
func (s *FolderService) Get(ctx context.Context, ownerID, id string) (*domain.Folder, error) {
	return s.getOwned(ctx, ownerID, id)
}

// List returns the caller's folders ordered for display.
func (s *FolderService) List(ctx context.Context, ownerID string) ([]domain.Folder, error) {
	folders, err := s.folders.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, err
	}
	if folders == nil {
		folders = []domain.Folder{}
	}
	return folders, nil
}

// Update applies the given changes. A folder cannot become its own parent.
func (s *FolderService) Update(ctx context.Context, ownerID, id string, input UpdateFolderInput) (*domain.Folder, error) {
	folder, err := s.getOwned(ctx, ownerID, id)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		folder.Name = *input.Name
	}
	if input.ClearParent {
		folder.ParentID = nil
	} else if input.ParentID != nil {
		if *input.ParentID == id {
			return nil, apperrors.InvalidInput("folder cannot be its own parent")
		}
		if err := s.checkOwnership(ctx, ownerID, *input.ParentID); err != nil {
			return nil, err
		}
		folder.ParentID = input.ParentID
	}
	if input.Icon != nil {
		folder.Icon = *input.Icon
	}
	if input.SortOrder != nil {
		folder.SortOrder = *input.SortOrder
	}

	if err := s.folders.Update(ctx, folder); err != nil {
		return nil, err
	}
	return folder, nil
}

// Delete removes a folder the caller owns. Documents inside fall back to the
// root; child folders are removed with it.
func (s *FolderService) Delete(ctx context.Context, ownerID, id string) error {
	if _, err := s.getOwned(ctx, ownerID, id); err != nil {
		return err
	}
	return s.folders.Delete(ctx, id)
}

func (s *FolderService) getOwned(ctx context.Context, ownerID, id string) (*domain.Folder, error) {
	folder, err := s.folders.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if folder.OwnerID != ownerID {
		return nil, apperrors.NotFound("folder", id)
	}
	return folder, nil
}

func (s *FolderService) checkOwnership(ctx context.Context, ownerID, folderID string) error {
	folder, err := s.folders.GetByID(ctx, folderID)
	if err != nil {
		return err
	}
	if folder.OwnerID != ownerID {
		return apperrors.NotFound("folder", folderID)
	}
	return nil
}
