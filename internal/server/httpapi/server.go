// Package httpapi serves the REST API under /api plus /health and /metrics.
package httpapi

import (
	"context"
	"io"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/journeyconnect/journeyconnect/internal/logging"
	"github.com/journeyconnect/journeyconnect/internal/server/metrics"
	"github.com/journeyconnect/journeyconnect/internal/server/models"
	"github.com/journeyconnect/journeyconnect/internal/server/records"
	"github.com/journeyconnect/journeyconnect/internal/server/services"
)

type SessionAPI interface {
	Establish(ctx context.Context, providerSessionID string) (string, *models.User, error)
	WhoAmI(ctx context.Context, token string) (*models.User, error)
	Invalidate(ctx context.Context, token string) error
}

// RecordAPI is implemented by records.Manager and by services that wrap one.
type RecordAPI[T any] interface {
	Create(ctx context.Context, rec T, actor models.User) (T, error)
	List(ctx context.Context, actor models.User, f records.Filter) ([]T, error)
}

type PaymentAPI interface {
	RecordAPI[models.RentPayment]
	Decide(ctx context.Context, id string, d models.Decision, actor models.User) (*models.RentPayment, error)
}

type MessageAPI interface {
	Send(ctx context.Context, content string, recipientID *string, sender models.User) (models.Message, error)
	List(ctx context.Context, actor models.User) ([]models.Message, error)
}

type SettingsAPI interface {
	Get(ctx context.Context) (*models.Settings, error)
	Update(ctx context.Context, in services.SettingsUpdate, actor models.User) (*models.Settings, error)
}

type UserAPI interface {
	List(ctx context.Context, actor models.User, role models.Role) ([]models.User, error)
	UpdateRole(ctx context.Context, actor models.User, id string, role models.Role) (*models.User, error)
}

type DashboardAPI interface {
	Summary(ctx context.Context, actor models.User, ownerID string) (models.DashboardSummary, error)
}

type UploadAPI interface {
	Upload(ctx context.Context, filename string, body io.Reader, size int64) (string, error)
	DownloadURL(ctx context.Context, key string) (string, error)
}

type Pinger interface {
	PingContext(ctx context.Context) error
}

// Deps lists everything the API needs. All fields are required.
type Deps struct {
	DB               Pinger
	Sessions         SessionAPI
	DrugTests        RecordAPI[models.DrugTest]
	Meetings         RecordAPI[models.Meeting]
	Devotions        RecordAPI[models.Devotion]
	ReadingMaterials RecordAPI[models.ReadingMaterial]
	CalendarEvents   RecordAPI[models.CalendarEvent]
	Payments         PaymentAPI
	Messages         MessageAPI
	Settings         SettingsAPI
	Users            UserAPI
	Dashboard        DashboardAPI
	Uploads          UploadAPI
}

// Options tunes cookie handling.
type Options struct {
	CookieSecure    bool
	SessionValidity time.Duration
}

type Server struct {
	Deps
	opts Options
	log  logging.Logger
	now  func() time.Time
}

func NewServer(deps Deps, opts Options, log logging.Logger) *Server {
	return &Server{Deps: deps, opts: opts, log: log, now: time.Now}
}

func (s *Server) Router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(logFields)
	r.Use(middleware.RealIP)
	r.Use(s.instrument)
	r.Use(s.recoverer)

	r.Get("/health", s.handleHealth)
	r.Handle("/metrics", metrics.Handler())

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/session", s.handleEstablish)
		r.Post("/auth/logout", s.handleLogout)

		r.Group(func(r chi.Router) {
			r.Use(s.authMiddleware)

			r.Get("/auth/me", s.handleMe)

			r.Get("/users", s.handleListUsers)
			r.Patch("/users/{userID}/role", s.handleUpdateRole)

			r.Get("/drug-tests", listRecords(s, s.DrugTests, nil))
			r.Post("/drug-tests", createRecord(s, s.DrugTests))
			r.Get("/meetings", listRecords(s, s.Meetings, nil))
			r.Post("/meetings", createRecord(s, s.Meetings))
			r.Get("/devotions", listRecords(s, s.Devotions, nil))
			r.Post("/devotions", createRecord(s, s.Devotions))
			r.Get("/reading-materials", listRecords(s, s.ReadingMaterials, groupReading))
			r.Post("/reading-materials", createRecord(s, s.ReadingMaterials))
			r.Get("/calendar-events", listRecords(s, s.CalendarEvents, nil, s.upcomingOnly))
			r.Post("/calendar-events", createRecord(s, s.CalendarEvents))

			r.Get("/rent-payments", listRecords[models.RentPayment](s, s.Payments, nil))
			r.Post("/rent-payments", createRecord[models.RentPayment](s, s.Payments))
			r.Patch("/rent-payments/{paymentID}/confirm", s.handleDecidePayment)

			r.Get("/messages", s.handleListMessages)
			r.Post("/messages", s.handleSendMessage)

			r.Get("/admin/settings", s.handleGetSettings)
			r.Patch("/admin/settings", s.handleUpdateSettings)

			r.Get("/dashboard", s.handleDashboard)

			r.Post("/upload", s.handleUpload)
			r.Get("/files/*", s.handleFile)
		})
	})

	return r
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
	defer cancel()

	start := time.Now()
	err := s.DB.PingContext(ctx)
	metrics.ObserveDBPing(time.Since(start))
	if err != nil {
		s.log.Warn(ctx, "health check failed", "error", err)
		writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable"})
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
