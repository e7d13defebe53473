package server

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/limaJavier/classscheduler/internal/config"
	"github.com/limaJavier/classscheduler/internal/metrics"
	"github.com/limaJavier/classscheduler/pkg/model"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/samber/lo"
)

// SectionProvider is a course provider that can also look up a single section
type SectionProvider interface {
	model.CourseProvider
	SectionForCourse(ctx context.Context, courseId, sectionId string) (*model.ClassSection, error)
}

type Server struct {
	cfg        *config.Config
	provider   SectionProvider
	builder    model.ScheduleBuilder
	logger     zerolog.Logger
	router     chi.Router
	httpServer *http.Server
}

type scheduleResponse struct {
	Id        string            `json:"id"`
	Schedules []*model.Schedule `json:"schedules"`
	Errors    []string          `json:"errors"`
	Truncated bool              `json:"truncated"`
	Total     int               `json:"total"`
}

// New constructs the server. Every request builds its own schedules, nothing is shared between requests but the provider
func New(cfg *config.Config, provider SectionProvider, logger zerolog.Logger) *Server {
	logger = logger.With().Str("component", "server").Logger()

	router := chi.NewRouter()
	router.Use(middleware.RequestID)
	router.Use(middleware.RealIP)
	router.Use(requestLogger(logger))
	router.Use(middleware.Recoverer)
	router.Use(metrics.Middleware)
	router.Use(middleware.Timeout(60 * time.Second))

	srv := &Server{
		cfg:      cfg,
		provider: provider,
		builder:  model.NewScheduleBuilder(provider, logger),
		logger:   logger,
		router:   router,
	}
	srv.configureRoutes()

	srv.httpServer = &http.Server{
		Addr:              fmt.Sprintf("%s:%d", cfg.HTTPBind, cfg.HTTPPort),
		Handler:           router,
		ReadHeaderTimeout: 15 * time.Second,
		IdleTimeout:       60 * time.Second,
	}
	return srv
}

func (srv *Server) configureRoutes() {
	srv.router.Get("/healthz", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})
	srv.router.Handle("/metrics", metrics.Handler())

	srv.router.Route("/api/v1", func(r chi.Router) {
		r.Get("/schedules", srv.handleSchedules)
		r.Get("/courses/{courseId}", srv.handleCourse)
		r.Get("/courses/{courseId}/sections/{sectionId}", srv.handleSection)
	})
}

func (srv *Server) Handler() http.Handler {
	return srv.router
}

// ListenAndServe blocks until the server stops. A graceful shutdown returns nil
func (srv *Server) ListenAndServe() error {
	srv.logger.Info().Str("addr", srv.httpServer.Addr).Msg("HTTP server listening")
	if err := srv.httpServer.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (srv *Server) Shutdown(ctx context.Context) error {
	return srv.httpServer.Shutdown(ctx)
}

func (srv *Server) handleSchedules(w http.ResponseWriter, r *http.Request) {
	courseIds := lo.FlatMap(r.URL.Query()["course"], func(value string, _ int) []string {
		return lo.Compact(lo.Map(strings.Split(value, ","), func(courseId string, _ int) string { return strings.TrimSpace(courseId) }))
	})
	if len(courseIds) == 0 {
		writeError(w, http.StatusBadRequest, "at least one course is required")
		return
	} else if len(courseIds) > srv.cfg.MaxCourses {
		writeError(w, http.StatusBadRequest, fmt.Sprintf("at most %v courses can be scheduled at once", srv.cfg.MaxCourses))
		return
	}

	id := uuid.NewString()
	started := time.Now()
	schedules, courseErrors := srv.builder.Build(r.Context(), courseIds)
	metrics.ObserveBuild(started, len(schedules), len(courseErrors))

	total := len(schedules)
	truncated := total > srv.cfg.MaxSchedules
	if truncated {
		schedules = schedules[:srv.cfg.MaxSchedules]
	}

	srv.logger.Debug().
		Str("build_id", id).
		Strs("courses", courseIds).
		Int("schedules", total).
		Dur("elapsed", time.Since(started)).
		Msg("schedules served")

	// The timeout middleware answers on its own once the deadline passed
	if err := r.Context().Err(); err != nil {
		srv.logger.Warn().Err(err).Str("build_id", id).Msg("request ended before schedules were written")
		return
	}

	writeJSON(w, http.StatusOK, scheduleResponse{
		Id:        id,
		Schedules: schedules,
		Errors:    courseErrors,
		Truncated: truncated,
		Total:     total,
	})
}

func (srv *Server) handleCourse(w http.ResponseWriter, r *http.Request) {
	sections, err := srv.provider.SectionsForCourse(r.Context(), chi.URLParam(r, "courseId"))
	if err != nil {
		srv.writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, sections)
}

func (srv *Server) handleSection(w http.ResponseWriter, r *http.Request) {
	section, err := srv.provider.SectionForCourse(r.Context(), chi.URLParam(r, "courseId"), chi.URLParam(r, "sectionId"))
	if err != nil {
		srv.writeProviderError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, section)
}

func (srv *Server) writeProviderError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, model.ErrInvalidCourseId):
		writeError(w, http.StatusBadRequest, err.Error())
	case errors.Is(err, model.ErrInvalidDepartment), errors.Is(err, model.ErrCourseNotFound), errors.Is(err, model.ErrSectionNotFound):
		writeError(w, http.StatusNotFound, err.Error())
	default:
		srv.logger.Error().Err(err).Msg("course lookup failed")
		writeError(w, http.StatusBadGateway, "course lookup failed")
	}
}

func requestLogger(logger zerolog.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapped := middleware.NewWrapResponseWriter(w, r.ProtoMajor)
			defer func() {
				logger.Info().
					Str("request_id", middleware.GetReqID(r.Context())).
					Str("method", r.Method).
					Str("path", r.URL.Path).
					Int("status", wrapped.Status()).
					Dur("elapsed", time.Since(start)).
					Msg("request served")
			}()
			next.ServeHTTP(wrapped, r)
		})
	}
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, map[string]string{"error": message})
}
