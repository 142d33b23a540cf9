package domain

import "time"

// Access levels for documents.
const (
	AccessPrivate = "private"
	AccessShared  = "shared"
	AccessPublic  = "public"
)

// Document is a user-owned document. DeletedAt marks a soft delete; soft
// deleted documents stay queryable for restore until permanently removed.
type Document struct {
	ID          string     `json:"id"`
	OwnerID     string     `json:"owner_id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content"`
	AccessLevel string     `json:"access_level"`
	Category    string     `json:"category,omitempty"`
	FolderID    *string    `json:"folder_id,omitempty"`
	Version     int        `json:"version"`
	IsPinned    bool       `json:"is_pinned"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`
	DeletedAt   *time.Time `json:"deleted_at,omitempty"`
}

// DocumentVersion is a content snapshot taken before each update.
type DocumentVersion struct {
	ID            string    `json:"id"`
	DocumentID    string    `json:"document_id"`
	Content       string    `json:"content"`
	Version       int       `json:"version"`
	ChangedBy     *string   `json:"changed_by,omitempty"`
	ChangeSummary string    `json:"change_summary,omitempty"`
	CreatedAt     time.Time `json:"created_at"`
}

// DocumentFilter narrows document listings.
type DocumentFilter struct {
	Category string
	FolderID *string
	Pinned   *bool
	Search   string
	Deleted  bool
}

// DocumentStats summarizes a user's documents.
type DocumentStats struct {
	Total      int `json:"total"`
	Pinned     int `json:"pinned"`
	Deleted    int `json:"deleted"`
	Categories int `json:"categories"`
}
