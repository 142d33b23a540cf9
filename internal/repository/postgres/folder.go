package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/jackc/pgx/v5"

	"github.com/quillhq/quill/internal/domain"
	apperrors "github.com/quillhq/quill/pkg/errors"
)

// FolderRepository stores folders in Postgres.
type FolderRepository struct {
	db DB
}

// NewFolderRepository creates a folder repository.
func NewFolderRepository(db DB) *FolderRepository {
	return &FolderRepository{db: db}
}

const folderColumns = `id, owner_id, name, parent_id, icon, sort_order, created_at, updated_at`

func scanFolder(row pgx.Row) (*domain.Folder, error) {
	var f domain.Folder
	err := row.Scan(
		&f.ID, &f.OwnerID, &f.Name, &f.ParentID, &f.Icon, &f.SortOrder,
		&f.CreatedAt, &f.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}
	return &f, nil
}

// Create inserts a folder and fills in the generated id and timestamps.
func (r *FolderRepository) Create(ctx context.Context, folder *domain.Folder) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO folders (owner_id, name, parent_id, icon, sort_order)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at, updated_at`,
		folder.OwnerID, folder.Name, folder.ParentID, folder.Icon, folder.SortOrder,
	).Scan(&folder.ID, &folder.CreatedAt, &folder.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert folder: %w", err)
	}
	return nil
}

// GetByID fetches a folder by id.
func (r *FolderRepository) GetByID(ctx context.Context, id string) (*domain.Folder, error) {
	folder, err := scanFolder(r.db.QueryRow(ctx,
		`SELECT `+folderColumns+` FROM folders WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("folder", id)
		}
		return nil, fmt.Errorf("select folder: %w", err)
	}
	return folder, nil
}

// ListByOwner returns the owner's folders ordered for display.
func (r *FolderRepository) ListByOwner(ctx context.Context, ownerID string) ([]domain.Folder, error) {
	rows, err := r.db.Query(ctx, `
		SELECT `+folderColumns+`
		FROM folders
		WHERE owner_id = $1
		ORDER BY sort_order ASC, name ASC`,
		ownerID,
	)
	if err != nil {
		return nil, fmt.Errorf("select folders: %w", err)
	}
	defer rows.Close()

	var folders []domain.Folder
	for rows.Next() {
		folder, err := scanFolder(rows)
		if err != nil {
			return nil, fmt.Errorf("scan folder: %w", err)
		}
		folders = append(folders, *folder)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate folders: %w", err)
	}
	return folders, nil
}

// Update persists the mutable folder fields.
func (r *FolderRepository) Update(ctx context.Context, folder *domain.Folder) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE folders
		SET name = $2, parent_id = $3, icon = $4, sort_order = $5, updated_at = now()
		WHERE id = $1`,
		folder.ID, folder.Name, folder.ParentID, folder.Icon, folder.SortOrder,
	)
	if err != nil {
		return fmt.Errorf("update folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("folder", folder.ID)
	}
	return nil
}

// Delete removes a folder. Child folders cascade; documents keep existing
// with their folder reference cleared.
func (r *FolderRepository) Delete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM folders WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete folder: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("folder", id)
	}
	return nil
}
