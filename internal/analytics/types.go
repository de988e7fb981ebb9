package analytics

import (
	"github.com/google/uuid"
)

// EventView is the event name counted as a gallery view.
const EventView = "view"

// DayBucket is one calendar day of view counts.
type DayBucket struct {
	Date  string `json:"date"`
	Views int64  `json:"views"`
}

// DownloadTotals breaks the download audit log down by type.
type DownloadTotals struct {
	Single    int64 `json:"single"`
	Selection int64 `json:"selection"`
	All       int64 `json:"all"`
}

// SummaryDTO is the owner dashboard payload for one gallery.
type SummaryDTO struct {
	GalleryID      uuid.UUID      `json:"gallery_id"`
	TotalViews     int64          `json:"total_views"`
	TotalFavorites int64          `json:"total_favorites"`
	TotalComments  int64          `json:"total_comments"`
	Downloads      DownloadTotals `json:"downloads"`
	ViewsByDay     []DayBucket    `json:"views_by_day"`
}
