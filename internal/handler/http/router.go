package http

import (
	"log/slog"
	"os"

	"github.com/cmlabs-hris/hris-payroll-closing/internal/handler/http/middleware"
	"github.com/cmlabs-hris/hris-payroll-closing/internal/pkg/jwt"
	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/go-chi/httplog/v3"
	"github.com/go-chi/jwtauth/v5"
)

// RouterOptions carries the deployment settings the router needs.
type RouterOptions struct {
	AllowedOrigins []string
	Env            string
	LogLevel       slog.Level
}

func NewRouter(
	opts RouterOptions,
	JWTService jwt.Service,
	periodHandler PeriodHandler,
	workflowHandler WorkflowHandler,
	streamHandler StreamHandler,
) *chi.Mux {
	r := chi.NewRouter()
	logFormat := httplog.SchemaECS.Concise(false)
	logger := slog.New(slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{
		ReplaceAttr: logFormat.ReplaceAttr,
	})).With(
		slog.String("app", "hris-payroll-closing"),
		slog.String("version", "v1.0.0"),
		slog.String("env", opts.Env),
	)

	allowedOrigins := opts.AllowedOrigins
	if len(allowedOrigins) == 0 {
		allowedOrigins = []string{"http://localhost:3000"}
	}

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   allowedOrigins,
		AllowCredentials: true,
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Authorization", "Content-Type", "X-CSRF-Token"},
		ExposedHeaders:   []string{"Link"},
		MaxAge:           300,
	}))

	r.Use(httplog.RequestLogger(logger, &httplog.Options{
		Level:  opts.LogLevel,
		Schema: httplog.SchemaECS,
	}))

	r.Use(chiMiddleware.AllowContentEncoding("application/json"))
	r.Use(chiMiddleware.CleanPath)
	r.Use(chiMiddleware.Recoverer)
	r.Use(chiMiddleware.Heartbeat("/"))

	r.Route("/api/v1/payroll-closing", func(r chi.Router) {

		// Stream tokens are checked by the handler
		r.Get("/workflow/{year}/{month}/events", streamHandler.Stream)

		// Requires authentication
		r.Group(func(r chi.Router) {
			r.Use(jwtauth.Verifier(JWTService.JWTAuth()))
			r.Use(middleware.AuthRequired(JWTService.JWTAuth()))
			r.Use(middleware.RequireCompany)
			r.Use(middleware.RequireManager)

			r.Route("/periods", func(r chi.Router) {
				r.Post("/", periodHandler.Create)
				r.Route("/{year}/{month}", func(r chi.Router) {
					r.Get("/", periodHandler.Get)
					r.Get("/runs", periodHandler.ListRuns)
				})
			})

			r.Route("/workflow", func(r chi.Router) {
				r.Post("/stream-token", streamHandler.Token)
				r.Post("/open", workflowHandler.Open)
				r.Post("/validate", workflowHandler.Validate)
				r.Route("/attendance", func(r chi.Router) {
					r.Post("/process", workflowHandler.ProcessAttendance)
					r.Post("/recalculate", workflowHandler.Recalculate)
					r.Post("/save", workflowHandler.SaveAttendance)
				})
				r.Post("/payroll/process", workflowHandler.ProcessPayroll)

				// Owner only
				r.With(middleware.RequireOwner).Post("/clean", workflowHandler.Clean)
			})
		})
	})

	return r
}
