package http

import (
	"log/slog"
	"net/http"
	"os"

	"github.com/cmlabs-hris/hrm-attendance-go/internal/domain/user"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/handler/http/response"
	"github.com/cmlabs-hris/hrm-attendance-go/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	Version        string
	// LogLevel of the request logger; requests are logged at info.
	LogLevel slog.Level
}

type Handlers struct {
	Attendance AttendanceHandler
	Correction CorrectionHandler
	Shift      ShiftHandler
}

func NewRouter(opts RouterOptions, JWTService jwt.Service, h Handlers) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(opts.Env != "production")
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
		Level:       opts.LogLevel,
	})).With(
		slog.String("app", "hrm-attendance"),
		slog.String("version", opts.Version),
		slog.String("env", opts.Env),
	)

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   opts.AllowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  slog.LevelInfo,
		Schema: logFormat,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/healthz"))

	r.Route("/api/v1", func(r chi.Router) {
		r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
		r.Use(middleware.AuthRequired)

		r.Route("/attendance", func(r chi.Router) {
			r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/check-in", h.Attendance.CheckIn)
			r.With(middleware.RequirePermission(user.PermissionAttendanceCreate)).Post("/check-out", h.Attendance.CheckOut)

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
				r.Get("/today", h.Attendance.GetToday)
				r.Get("/monthly", h.Attendance.GetMonthly)
				r.Get("/history", h.Attendance.GetHistory)
			})

			r.With(middleware.RequirePermission(user.PermissionAttendanceViewAll)).Get("/", h.Attendance.List)
		})

		r.Route("/corrections", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionCorrectionCreate))
				r.Post("/", h.Correction.Create)
				r.Get("/my", h.Correction.ListMine)
				r.Get("/{id}", h.Correction.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionCorrectionReview))
				r.Get("/", h.Correction.ListAll)
				r.Post("/{id}/approve", h.Correction.Approve)
				r.Post("/{id}/reject", h.Correction.Reject)
			})
		})

		r.Route("/shifts", func(r chi.Router) {
			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionAttendanceViewOwn))
				r.Get("/", h.Shift.List)
				r.Get("/{id}", h.Shift.Get)
			})

			r.Group(func(r chi.Router) {
				r.Use(middleware.RequirePermission(user.PermissionShiftManage))
				r.Post("/", h.Shift.Create)
				r.Put("/{id}", h.Shift.Update)
				r.Delete("/{id}", h.Shift.Delete)
			})
		})
	})

	r.NotFound(func(w http.ResponseWriter, r *http.Request) {
		response.NotFound(w, "Route not found")
	})

	return r
}
