package media

import (
	"time"

	"github.com/google/uuid"

	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
)

// UploadInput carries one multipart file destined for a gallery.
type UploadInput struct {
	Filename    string
	ContentType string
	Size        int64
	Data        []byte
}

// ListFilter restricts the viewer media listing.
type ListFilter string

const (
	// FilterNone returns the whole gallery.
	FilterNone ListFilter = ""
	// FilterFavorites restricts to the viewer's own favorites.
	FilterFavorites ListFilter = "favorites"
)

// EngagementCounts aggregates per-media favorite and comment totals.
type EngagementCounts struct {
	Favorites int64
	Comments  int64
}

// MediaDTO is one gallery item as rendered to admins and viewers.
type MediaDTO struct {
	ID              uuid.UUID       `json:"id"`
	GalleryID       uuid.UUID       `json:"gallery_id"`
	Filename        string          `json:"filename"`
	OriginalURL     string          `json:"original_url"`
	ThumbnailURL    *string         `json:"thumbnail_url,omitempty"`
	MediumURL       *string         `json:"medium_url,omitempty"`
	Type            enums.MediaType `json:"type"`
	Width           int             `json:"width"`
	Height          int             `json:"height"`
	SizeBytes       int64           `json:"size"`
	DurationSeconds float64         `json:"duration_seconds,omitempty"`
	SortOrder       int             `json:"sort_order"`
	FavoriteCount   int64           `json:"favorite_count"`
	CommentCount    int64           `json:"comment_count"`
	CreatedAt       time.Time       `json:"created_at"`
}

// CommentView is one comment with its resolved author display name.
type CommentView struct {
	ID         uuid.UUID `json:"id"`
	Content    string    `json:"content"`
	AuthorName string    `json:"author_name"`
	CreatedAt  time.Time `json:"created_at"`
}

// GalleryPermissions mirrors the gallery's engagement flags for viewers.
type GalleryPermissions struct {
	AllowDownload  bool `json:"allow_download"`
	AllowFavorites bool `json:"allow_favorites"`
	AllowComments  bool `json:"allow_comments"`
	AllowSharing   bool `json:"allow_sharing"`
}

// MediaDetailDTO is the single-item viewer payload including the comment
// thread.
type MediaDetailDTO struct {
	MediaDTO
	Permissions GalleryPermissions `json:"permissions"`
	Comments    []CommentView      `json:"comments"`
}

func toDTO(m *models.GalleryMedia, counts EngagementCounts) MediaDTO {
	return MediaDTO{
		ID:              m.ID,
		GalleryID:       m.GalleryID,
		Filename:        m.Filename,
		OriginalURL:     m.OriginalURL,
		ThumbnailURL:    m.ThumbnailURL,
		MediumURL:       m.MediumURL,
		Type:            m.Type,
		Width:           m.Width,
		Height:          m.Height,
		SizeBytes:       m.SizeBytes,
		DurationSeconds: m.DurationSeconds,
		SortOrder:       m.SortOrder,
		FavoriteCount:   counts.Favorites,
		CommentCount:    counts.Comments,
		CreatedAt:       m.CreatedAt,
	}
}
