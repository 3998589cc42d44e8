package http

import (
	"log/slog"
	"os"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
	"github.com/meetinghours/attendance-backend/internal/domain/user"
	"github.com/meetinghours/attendance-backend/internal/handler/http/middleware"
	"github.com/meetinghours/attendance-backend/internal/pkg/jwt"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

type RouterOptions struct {
	AppName        string
	Version        string
	Env            string
	AllowedOrigins []string
}

type Handlers struct {
	Auth       AuthHandler
	Attendance AttendanceHandler
	Metrics    MetricsHandler
	Window     WindowHandler
	Period     PeriodHandler
	Excuse     ExcuseHandler
	Report     ReportHandler
	User       UserHandler
	Events     EventsHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", opts.AppName),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link", "Content-Disposition"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelDebug,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Handle("/metrics", promhttp.Handler())

	r.Route("/api/v1", func(r chi.Router) {

		r.Route("/auth", func(r chi.Router) {
			r.Get("/oauth/google", h.Auth.LoginWithGoogle)
			r.Get("/oauth/callback/google", h.Auth.OAuthCallbackGoogle)
		})

		// Authenticated by the stream token in the query
		r.Get("/events/stream", h.Events.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService))

			r.Get("/auth/me", h.Auth.Me)
			r.Post("/auth/logout", h.Auth.Logout)
			r.Get("/events/token", h.Events.StreamToken)

			r.Route("/attendance", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceLog))
				r.Post("/", h.Attendance.Submit)
				r.Get("/my", h.Attendance.ListMine)
				r.Get("/windows/{windowID}", h.Attendance.GetForWindow)
			})

			r.Route("/metrics", func(r chi.Router) {
				r.Get("/my", h.Metrics.GetMine)
				r.With(middleware.RequirePermission(user.PermissionMetricsViewAll)).
					Get("/users/{userID}", h.Metrics.GetForUser)
			})

			r.Route("/windows", func(r chi.Router) {
				r.Get("/", h.Window.List)
				r.Get("/upcoming", h.Window.ListUpcoming)
				r.Get("/{id}", h.Window.Get)
				r.With(middleware.AdminOnly).Post("/", h.Window.Create)
			})

			r.Route("/periods", func(r chi.Router) {
				r.Get("/", h.Period.List)
				r.Get("/current", h.Period.Current)
				r.Get("/{id}", h.Period.Get)
				r.With(middleware.AdminOnly).Post("/", h.Period.Create)
			})

			r.Route("/excuses", func(r chi.Router) {
				r.Get("/", h.Excuse.List)
				r.With(middleware.AdminOnly).Post("/", h.Excuse.Create)
			})

			r.Route("/excuse-requests", func(r chi.Router) {
				r.With(middleware.RequirePermission(user.PermissionExcuseRequest)).Post("/", h.Excuse.Request)

				r.Group(func(r chi.Router) {
					r.Use(middleware.AdminOnly)
					r.Get("/pending", h.Excuse.ListPending)
					r.Post("/{id}/approve", h.Excuse.Approve)
					r.Post("/{id}/deny", h.Excuse.Deny)
				})
			})

			r.Route("/reports", func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionReportsView))
				r.Get("/{periodID}", h.Report.GetPeriodReport)
				r.Get("/{periodID}/export", h.Report.ExportPeriodReport)
			})

			r.Route("/users", func(r chi.Router) {
				r.Use(middleware.AdminOnly)
				r.Get("/", h.User.List)
				r.Put("/{id}/admin", h.User.SetAdmin)
				r.Delete("/{id}", h.User.Delete)
			})
		})
	})

	return r
}
