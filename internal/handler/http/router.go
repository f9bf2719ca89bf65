package http

import (
	"log/slog"
	"net/http"

	"github.com/cmlabs-hris/hris-attendance-engine/internal/config"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/jwt"
	"github.com/cmlabs-hris/hris-attendance-engine/internal/pkg/metrics"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

func NewRouter(
	app config.AppConfig,
	logger *slog.Logger,
	JWTService jwt.Service,
	m *metrics.Metrics,
	attendanceHandler AttendanceHandler,
	leaveHandler LeaveHandler,
	handoverHandler HandoverHandler,
	shiftHandler ShiftHandler,
	proposalHandler ProposalHandler,
	notificationHandler NotificationHandler,
) *chi.Mux {
	r := chi.NewRouter()

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   app.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Retry-After"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Method(http.MethodGet, "/metrics", m.Handler())

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired(JWTService.JWTAuth()))

		r.Route("/attendance", func(r chi.Router) {
			r.Post("/", attendanceHandler.Create)
			r.Post("/batch", attendanceHandler.BatchRegister)
			r.Get("/", attendanceHandler.List)
			r.Route("/{id}", func(r chi.Router) {
				r.Get("/", attendanceHandler.Get)
				r.Post("/punch", attendanceHandler.Punch)
				r.Post("/recompute", attendanceHandler.Recompute)
				r.Put("/times", attendanceHandler.UpdateTimes)
				r.Post("/pending", attendanceHandler.MarkPending)
				r.Post("/cancel", attendanceHandler.Cancel)

				// Manager only
				r.With(middleware.RequireManager).Post("/approve", attendanceHandler.Approve)
			})
		})

		r.Route("/leaves", func(r chi.Router) {
			r.Post("/", leaveHandler.CreateRequest)
			r.Get("/my", leaveHandler.GetMyRequests)
			r.Get("/{id}", leaveHandler.GetRequest)
			r.Post("/{id}/cancel", leaveHandler.CancelRequest)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Get("/", leaveHandler.ListRequests)
				r.Get("/pending", leaveHandler.ListPending)
				r.Post("/{id}/approve", leaveHandler.ApproveRequest)
				r.Post("/{id}/reject", leaveHandler.RejectRequest)
				r.Delete("/{id}", leaveHandler.DeleteRequest)
			})
		})

		r.Route("/handovers", func(r chi.Router) {
			r.Post("/", handoverHandler.Create)
			r.Get("/", handoverHandler.List)
			r.Put("/items/{itemID}/status", handoverHandler.SetItemStatus)
			r.Get("/{id}", handoverHandler.Get)
			r.Post("/{id}/items", handoverHandler.AddItem)
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Get("/", shiftHandler.List)
			r.Get("/code/{code}", shiftHandler.GetByCode)
			r.Get("/{id}", shiftHandler.Get)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Post("/", shiftHandler.Create)
				r.Put("/{id}", shiftHandler.Update)
				r.Delete("/{id}", shiftHandler.Delete)
			})
		})

		r.Route("/proposals", func(r chi.Router) {
			r.Post("/", proposalHandler.Create)
			r.Get("/", proposalHandler.List)
			r.Get("/{id}", proposalHandler.Get)

			// Manager only
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequireManager)
				r.Put("/{id}/status", proposalHandler.SetStatus)
				r.Put("/{id}/note", proposalHandler.UpdateDecisionNote)
			})
		})

		r.Route("/notifications", func(r chi.Router) {
			r.Get("/", notificationHandler.List)
			r.Get("/unread-count", notificationHandler.UnreadCount)
			r.Post("/read", notificationHandler.MarkAsRead)
			r.Post("/read-all", notificationHandler.MarkAllAsRead)
		})
	})
	return r
}
