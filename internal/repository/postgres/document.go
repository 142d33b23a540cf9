package postgres

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/jackc/pgx/v5"

	"github.com/quillhq/quill/internal/domain"
	apperrors "github.com/quillhq/quill/pkg/errors"
	"github.com/quillhq/quill/pkg/pagination"
)

// DocumentRepository stores documents and version snapshots in Postgres.
type DocumentRepository struct {
	db DB
}

// NewDocumentRepository creates a document repository.
func NewDocumentRepository(db DB) *DocumentRepository {
	return &DocumentRepository{db: db}
}

const documentColumns = `id, owner_id, title, description, content, access_level, category, folder_id, version, is_pinned, created_at, updated_at, deleted_at`

func scanDocument(row pgx.Row) (*domain.Document, error) {
	var d domain.Document
	err := row.Scan(
		&d.ID, &d.OwnerID, &d.Title, &d.Description, &d.Content, &d.AccessLevel,
		&d.Category, &d.FolderID, &d.Version, &d.IsPinned,
		&d.CreatedAt, &d.UpdatedAt, &d.DeletedAt,
	)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

// Create inserts a document and fills in the generated id and timestamps.
func (r *DocumentRepository) Create(ctx context.Context, doc *domain.Document) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO documents (owner_id, title, description, content, access_level, category, folder_id, is_pinned)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, version, created_at, updated_at`,
		doc.OwnerID, doc.Title, doc.Description, doc.Content, doc.AccessLevel,
		doc.Category, doc.FolderID, doc.IsPinned,
	).Scan(&doc.ID, &doc.Version, &doc.CreatedAt, &doc.UpdatedAt)
	if err != nil {
		return fmt.Errorf("insert document: %w", err)
	}
	return nil
}

// GetByID fetches a document by id, including soft deleted ones. Ownership
// and deletion checks belong to the service layer.
func (r *DocumentRepository) GetByID(ctx context.Context, id string) (*domain.Document, error) {
	doc, err := scanDocument(r.db.QueryRow(ctx,
		`SELECT `+documentColumns+` FROM documents WHERE id = $1`, id))
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("document", id)
		}
		return nil, fmt.Errorf("select document: %w", err)
	}
	return doc, nil
}

// List returns the owner's documents matching the filter, pinned entries
// first, then most recently updated, plus a total count for pagination.
func (r *DocumentRepository) List(ctx context.Context, ownerID string, filter domain.DocumentFilter, params pagination.Params) ([]domain.Document, int, error) {
	var conds []string
	args := []any{ownerID}

	conds = append(conds, "owner_id = $1")
	if filter.Deleted {
		conds = append(conds, "deleted_at IS NOT NULL")
	} else {
		conds = append(conds, "deleted_at IS NULL")
	}
	if filter.Category != "" {
		args = append(args, filter.Category)
		conds = append(conds, "category = $"+strconv.Itoa(len(args)))
	}
	if filter.FolderID != nil {
		args = append(args, *filter.FolderID)
		conds = append(conds, "folder_id = $"+strconv.Itoa(len(args)))
	}
	if filter.Pinned != nil {
		args = append(args, *filter.Pinned)
		conds = append(conds, "is_pinned = $"+strconv.Itoa(len(args)))
	}
	if filter.Search != "" {
		args = append(args, "%"+filter.Search+"%")
		p := strconv.Itoa(len(args))
		conds = append(conds, "(title ILIKE $"+p+" OR content ILIKE $"+p+")")
	}

	where := strings.Join(conds, " AND ")

	var total int
	err := r.db.QueryRow(ctx,
		`SELECT COUNT(*) FROM documents WHERE `+where, args...,
	).Scan(&total)
	if err != nil {
		return nil, 0, fmt.Errorf("count documents: %w", err)
	}

	args = append(args, params.PerPage, params.Offset())
	limit := strconv.Itoa(len(args) - 1)
	offset := strconv.Itoa(len(args))

	rows, err := r.db.Query(ctx, `
		SELECT `+documentColumns+`
		FROM documents
		WHERE `+where+`
		ORDER BY is_pinned DESC, updated_at DESC
		LIMIT $`+limit+` OFFSET $`+offset,
		args...,
	)
	if err != nil {
		return nil, 0, fmt.Errorf("select documents: %w", err)
	}
	defer rows.Close()

	var docs []domain.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan document: %w", err)
		}
		docs = append(docs, *doc)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate documents: %w", err)
	}
	return docs, total, nil
}

// Update persists all mutable fields and bumps updated_at.
func (r *DocumentRepository) Update(ctx context.Context, doc *domain.Document) error {
	tag, err := r.db.Exec(ctx, `
		UPDATE documents
		SET title = $2, description = $3, content = $4, access_level = $5,
		    category = $6, folder_id = $7, version = $8, is_pinned = $9,
		    updated_at = now()
		WHERE id = $1`,
		doc.ID, doc.Title, doc.Description, doc.Content, doc.AccessLevel,
		doc.Category, doc.FolderID, doc.Version, doc.IsPinned,
	)
	if err != nil {
		return fmt.Errorf("update document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("document", doc.ID)
	}
	return nil
}

// SoftDelete marks the document deleted without removing it.
func (r *DocumentRepository) SoftDelete(ctx context.Context, id string, at time.Time) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET deleted_at = $2, updated_at = now() WHERE id = $1 AND deleted_at IS NULL`,
		id, at,
	)
	if err != nil {
		return fmt.Errorf("soft delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("document", id)
	}
	return nil
}

// Restore clears a soft delete.
func (r *DocumentRepository) Restore(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx,
		`UPDATE documents SET deleted_at = NULL, updated_at = now() WHERE id = $1 AND deleted_at IS NOT NULL`,
		id,
	)
	if err != nil {
		return fmt.Errorf("restore document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("document", id)
	}
	return nil
}

// PermanentDelete removes the document row; version history cascades.
func (r *DocumentRepository) PermanentDelete(ctx context.Context, id string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM documents WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete document: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return apperrors.NotFound("document", id)
	}
	return nil
}

// Stats summarizes the owner's documents in a single query.
func (r *DocumentRepository) Stats(ctx context.Context, ownerID string) (*domain.DocumentStats, error) {
	var stats domain.DocumentStats
	err := r.db.QueryRow(ctx, `
		SELECT
			COUNT(*) FILTER (WHERE deleted_at IS NULL),
			COUNT(*) FILTER (WHERE deleted_at IS NULL AND is_pinned),
			COUNT(*) FILTER (WHERE deleted_at IS NOT NULL),
			COUNT(DISTINCT category) FILTER (WHERE deleted_at IS NULL AND category <> '')
		FROM documents
		WHERE owner_id = $1`,
		ownerID,
	).Scan(&stats.Total, &stats.Pinned, &stats.Deleted, &stats.Categories)
	if err != nil {
		return nil, fmt.Errorf("document stats: %w", err)
	}
	return &stats, nil
}

// CreateVersion records a content snapshot.
func (r *DocumentRepository) CreateVersion(ctx context.Context, version *domain.DocumentVersion) error {
	err := r.db.QueryRow(ctx, `
		INSERT INTO document_versions (document_id, content, version, changed_by, change_summary)
		VALUES ($1, $2, $3, $4, $5)
		RETURNING id, created_at`,
		version.DocumentID, version.Content, version.Version, version.ChangedBy, version.ChangeSummary,
	).Scan(&version.ID, &version.CreatedAt)
	if err != nil {
		return fmt.Errorf("insert document version: %w", err)
	}
	return nil
}

// ListVersions returns a document's snapshots, newest first.
func (r *DocumentRepository) ListVersions(ctx context.Context, documentID string) ([]domain.DocumentVersion, error) {
	rows, err := r.db.Query(ctx, `
		SELECT id, document_id, content, version, changed_by, change_summary, created_at
		FROM document_versions
		WHERE document_id = $1
		ORDER BY version DESC`,
		documentID,
	)
	if err != nil {
		return nil, fmt.Errorf("select document versions: %w", err)
	}
	defer rows.Close()

	var versions []domain.DocumentVersion
	for rows.Next() {
		var v domain.DocumentVersion
		err := rows.Scan(&v.ID, &v.DocumentID, &v.Content, &v.Version, &v.ChangedBy, &v.ChangeSummary, &v.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("scan document version: %w", err)
		}
		versions = append(versions, v)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate document versions: %w", err)
	}
	return versions, nil
}

// GetVersion fetches one snapshot by document and version number.
func (r *DocumentRepository) GetVersion(ctx context.Context, documentID string, version int) (*domain.DocumentVersion, error) {
	var v domain.DocumentVersion
	err := r.db.QueryRow(ctx, `
		SELECT id, document_id, content, version, changed_by, change_summary, created_at
		FROM document_versions
		WHERE document_id = $1 AND version = $2`,
		documentID, version,
	).Scan(&v.ID, &v.DocumentID, &v.Content, &v.Version, &v.ChangedBy, &v.ChangeSummary, &v.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NotFound("document version", fmt.Sprintf("%s@%d", documentID, version))
		}
		return nil, fmt.Errorf("select document version: %w", err)
	}
	return &v, nil
}
