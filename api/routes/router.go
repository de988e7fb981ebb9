package routes

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/silvergrain/studio-backend/api/controllers"
	"github.com/silvergrain/studio-backend/api/middleware"
	"github.com/silvergrain/studio-backend/internal/access"
	"github.com/silvergrain/studio-backend/internal/accounts"
	"github.com/silvergrain/studio-backend/internal/analytics"
	"github.com/silvergrain/studio-backend/internal/contact"
	"github.com/silvergrain/studio-backend/internal/downloads"
	"github.com/silvergrain/studio-backend/internal/engagement"
	"github.com/silvergrain/studio-backend/internal/galleries"
	"github.com/silvergrain/studio-backend/internal/identity"
	"github.com/silvergrain/studio-backend/internal/media"
	"github.com/silvergrain/studio-backend/pkg/config"
	"github.com/silvergrain/studio-backend/pkg/db"
	"github.com/silvergrain/studio-backend/pkg/logger"
	"github.com/silvergrain/studio-backend/pkg/metrics"
	"github.com/silvergrain/studio-backend/pkg/redis"
	"github.com/silvergrain/studio-backend/pkg/storage/s3"
)

// Deps carries everything the router wires into handlers.
type Deps struct {
	Cfg     *config.Config
	Logg    *logger.Logger
	DB      db.Pinger
	Redis   redis.Pinger
	Storage s3.Pinger

	Resolver    *identity.Resolver
	HTTPMetrics *metrics.HTTPMetrics
	Registry    prometheus.Gatherer
	StartedAt   time.Time

	Accounts   accounts.Service
	Access     access.Service
	Galleries  galleries.Service
	Media      media.Service
	Engagement engagement.Service
	Analytics  analytics.Service
	Downloads  downloads.Service
	Contact    contact.Service
}

func NewRouter(d Deps) http.Handler {
	cfg := d.Cfg
	logg := d.Logg

	r := chi.NewRouter()
	r.Use(
		middleware.Recoverer(logg),
		middleware.RequestID(logg),
		middleware.Metrics(d.HTTPMetrics),
		middleware.Logging(logg),
		middleware.CORS(cfg.App),
	)

	r.Route("/health", func(r chi.Router) {
		r.Get("/live", controllers.HealthLive(cfg))
		r.Get("/ready", controllers.HealthReady(cfg, logg, d.DB, d.Redis, d.Storage, d.StartedAt))
	})

	if d.Registry != nil {
		r.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(d.Registry, promhttp.HandlerOpts{}))
	}

	r.Route("/api/v1/auth", func(r chi.Router) {
		r.Post("/register", controllers.AuthRegister(d.Accounts, logg))
		r.Post("/login", controllers.AuthLogin(d.Accounts, logg))
		r.Post("/owner/login", controllers.OwnerLogin(d.Accounts, logg))
	})

	r.Route("/api/v1/access/{slug}", func(r chi.Router) {
		r.Get("/", controllers.AccessProbe(d.Access, logg))
		r.Post("/verify", controllers.AccessVerify(d.Access, logg))
	})

	r.Post("/api/v1/contact", controllers.ContactSubmit(d.Contact, logg))

	// Admin surface, owner token only.
	r.Group(func(r chi.Router) {
		r.Use(middleware.OwnerAuth(cfg.JWT, logg))

		r.Route("/api/v1/galleries", func(r chi.Router) {
			r.Post("/", controllers.GalleryCreate(d.Galleries, logg))
			r.Get("/", controllers.GalleryList(d.Galleries, logg))

			r.Route("/{galleryId}", func(r chi.Router) {
				r.Get("/", controllers.GalleryGet(d.Galleries, logg))
				r.Patch("/", controllers.GalleryUpdate(d.Galleries, logg))
				r.Delete("/", controllers.GalleryDelete(d.Galleries, logg))
				r.Get("/analytics", controllers.GalleryAnalytics(d.Analytics, logg))

				r.Post("/media", controllers.MediaUpload(d.Media, cfg.Media, logg))
				r.Put("/media/order", controllers.MediaReorder(d.Media, logg))
				r.Delete("/media", controllers.MediaBulkDelete(d.Media, logg))

				r.Post("/clients/{clientId}", controllers.GalleryGrantClient(d.Accounts, logg))
				r.Delete("/clients/{clientId}", controllers.GalleryRevokeClient(d.Accounts, logg))
			})
		})

		r.Route("/api/v1/media/{mediaId}", func(r chi.Router) {
			r.Delete("/", controllers.MediaDelete(d.Media, logg))
			r.Post("/cover", controllers.MediaSetCover(d.Media, logg))
		})
	})

	// Viewer surface, client token or guest session.
	r.Route("/api/v1/view", func(r chi.Router) {
		r.Use(middleware.Viewer(d.Resolver, logg))

		r.Get("/galleries/{galleryId}/media", controllers.ViewGalleryMedia(d.Media, logg))
		r.Route("/media/{mediaId}", func(r chi.Router) {
			r.Get("/", controllers.ViewMediaDetail(d.Media, logg))
			r.Post("/favorite", controllers.FavoriteToggle(d.Engagement, logg))
			r.Post("/comments", controllers.CommentAdd(d.Engagement, logg))
			r.Get("/download", controllers.MediaDownload(d.Downloads, logg))
		})
		r.Delete("/comments/{commentId}", controllers.CommentDelete(d.Engagement, logg))
		r.Post("/downloads", controllers.BatchDownload(d.Downloads, logg))
		r.Post("/analytics/events", controllers.AnalyticsEvent(d.Analytics, logg))
	})

	return r
}
