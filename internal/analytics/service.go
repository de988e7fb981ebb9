package analytics

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/silvergrain/studio-backend/internal/identity"
	"github.com/silvergrain/studio-backend/pkg/db/models"
	"github.com/silvergrain/studio-backend/pkg/enums"
	pkgerrors "github.com/silvergrain/studio-backend/pkg/errors"
	"github.com/silvergrain/studio-backend/pkg/logger"
)

// histogramDays is the fixed width of the owner dashboard view histogram.
const histogramDays = 30

type analyticsRepository interface {
	FindGalleryByID(ctx context.Context, id uuid.UUID) (*models.Gallery, error)
	FindGalleryForOwner(ctx context.Context, ownerID, id uuid.UUID) (*models.Gallery, error)
	InsertEvent(ctx context.Context, event *models.GalleryAnalytics) error
	CountEvents(ctx context.Context, galleryID uuid.UUID, event string) (int64, error)
	CountFavorites(ctx context.Context, galleryID uuid.UUID) (int64, error)
	CountComments(ctx context.Context, galleryID uuid.UUID) (int64, error)
	CountDownloadsByType(ctx context.Context, galleryID uuid.UUID) (map[enums.DownloadType]int64, error)
	ViewCountsByDay(ctx context.Context, galleryID uuid.UUID, since time.Time) (map[string]int64, error)
}

// Service records viewer events and serves the owner dashboard.
type Service interface {
	Track(ctx context.Context, galleryID uuid.UUID, event string, metadata map[string]any, viewer *identity.Identity) error
	Summary(ctx context.Context, ownerID, galleryID uuid.UUID) (SummaryDTO, error)
}

type service struct {
	repo analyticsRepository
	logg *logger.Logger
	now  func() time.Time
}

// NewService builds the analytics service with the required dependencies.
func NewService(repo analyticsRepository, logg *logger.Logger) (Service, error) {
	if repo == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "analytics repo is required")
	}
	if logg == nil {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "logger is required")
	}
	return &service{repo: repo, logg: logg, now: time.Now}, nil
}

// Track appends one event. The gallery and event name are validated, but
// insert failures are logged and swallowed so viewer flows never break on
// analytics.
func (s *service) Track(ctx context.Context, galleryID uuid.UUID, event string, metadata map[string]any, viewer *identity.Identity) error {
	event = strings.TrimSpace(event)
	if galleryID == uuid.Nil || event == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "gallery id and event are required")
	}
	if _, err := s.repo.FindGalleryByID(ctx, galleryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}

	payload := make(map[string]any, len(metadata)+2)
	for k, v := range metadata {
		payload[k] = v
	}
	if viewer != nil {
		switch viewer.Kind {
		case identity.KindClient:
			payload["client_id"] = viewer.ClientID.String()
		case identity.KindGuest:
			payload["guest_session_id"] = viewer.GuestSessionID.String()
		}
	}

	raw, err := json.Marshal(payload)
	if err != nil {
		s.logg.Warn(ctx, "analytics metadata not serializable, dropping event")
		return nil
	}

	row := &models.GalleryAnalytics{
		ID:        uuid.New(),
		GalleryID: galleryID,
		Event:     event,
		Metadata:  raw,
		CreatedAt: s.now(),
	}
	if err := s.repo.InsertEvent(ctx, row); err != nil {
		s.logg.Error(s.logg.WithGalleryID(ctx, galleryID.String()), "analytics insert failed", err)
	}
	return nil
}

// Summary builds the owner dashboard: totals plus a 30-day view histogram
// of contiguous, zero-filled calendar-day buckets ending today.
func (s *service) Summary(ctx context.Context, ownerID, galleryID uuid.UUID) (SummaryDTO, error) {
	if ownerID == uuid.Nil || galleryID == uuid.Nil {
		return SummaryDTO{}, pkgerrors.New(pkgerrors.CodeValidation, "owner id and gallery id are required")
	}
	if _, err := s.repo.FindGalleryForOwner(ctx, ownerID, galleryID); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return SummaryDTO{}, pkgerrors.New(pkgerrors.CodeNotFound, "gallery not found")
		}
		return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load gallery")
	}

	views, err := s.repo.CountEvents(ctx, galleryID, EventView)
	if err != nil {
		return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count views")
	}
	favorites, err := s.repo.CountFavorites(ctx, galleryID)
	if err != nil {
		return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count favorites")
	}
	comments, err := s.repo.CountComments(ctx, galleryID)
	if err != nil {
		return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count comments")
	}
	downloads, err := s.repo.CountDownloadsByType(ctx, galleryID)
	if err != nil {
		return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count downloads")
	}

	now := s.now().UTC()
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	since := today.AddDate(0, 0, -(histogramDays - 1))
	perDay, err := s.repo.ViewCountsByDay(ctx, galleryID, since)
	if err != nil {
		return SummaryDTO{}, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "count views by day")
	}

	buckets := make([]DayBucket, 0, histogramDays)
	for i := 0; i < histogramDays; i++ {
		day := since.AddDate(0, 0, i).Format("2006-01-02")
		buckets = append(buckets, DayBucket{Date: day, Views: perDay[day]})
	}

	return SummaryDTO{
		GalleryID:      galleryID,
		TotalViews:     views,
		TotalFavorites: favorites,
		TotalComments:  comments,
		Downloads: DownloadTotals{
			Single:    downloads[enums.DownloadTypeSingle],
			Selection: downloads[enums.DownloadTypeSelection],
			All:       downloads[enums.DownloadTypeAll],
		},
		ViewsByDay: buckets,
	}, nil
}
