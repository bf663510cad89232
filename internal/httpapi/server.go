package httpapi

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/rs/zerolog"

	"horse.fit/newsfinder/internal/db"
	"horse.fit/newsfinder/internal/globaltime"
)

const (
	defaultPageSize = 50
	maxPageSize     = 200
)

type articleStore interface {
	IsConnected(ctx context.Context) bool
	ListArticlesForDisplay(ctx context.Context, query db.ListArticlesQuery) ([]db.DisplayArticle, error)
	ListSimilarPairs(ctx context.Context, articleID int64) ([]db.SimilarArticle, error)
	ListSimilarArticlesByURL(ctx context.Context, url string) ([]db.SimilarArticle, error)
	LatestSimilarityRun(ctx context.Context) (*db.SimilarityRun, error)
}

type Options struct {
	Addr            string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
}

type Server struct {
	store  articleStore
	logger zerolog.Logger
	opts   Options
}

func NewServer(store articleStore, logger zerolog.Logger, opts Options) *Server {
	addr := strings.TrimSpace(opts.Addr)
	if addr == "" {
		addr = "0.0.0.0:8090"
	}
	readTimeout := opts.ReadTimeout
	if readTimeout <= 0 {
		readTimeout = 10 * time.Second
	}
	writeTimeout := opts.WriteTimeout
	if writeTimeout <= 0 {
		writeTimeout = 30 * time.Second
	}
	shutdownTimeout := opts.ShutdownTimeout
	if shutdownTimeout <= 0 {
		shutdownTimeout = 10 * time.Second
	}

	return &Server{
		store:  store,
		logger: logger,
		opts: Options{
			Addr:            addr,
			ReadTimeout:     readTimeout,
			WriteTimeout:    writeTimeout,
			ShutdownTimeout: shutdownTimeout,
		},
	}
}

// Start serves the read API until ctx is cancelled.
func (s *Server) Start(ctx context.Context) error {
	if s == nil || s.store == nil {
		return fmt.Errorf("server is not initialized")
	}

	e := s.router()
	httpServer := &http.Server{
		Addr:         s.opts.Addr,
		Handler:      e,
		ReadTimeout:  s.opts.ReadTimeout,
		WriteTimeout: s.opts.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), s.opts.ShutdownTimeout)
		defer cancel()
		if shutdownErr := e.Shutdown(shutdownCtx); shutdownErr != nil {
			s.logger.Error().Err(shutdownErr).Msg("server shutdown failed")
		}
	}()

	s.logger.Info().Str("addr", s.opts.Addr).Msg("newsfinder http server started")

	if err := e.StartServer(httpServer); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return fmt.Errorf("start server: %w", err)
	}
	s.logger.Info().Msg("newsfinder http server stopped")
	return nil
}

func (s *Server) router() *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = s.httpErrorHandler

	e.Use(middleware.Recover())
	e.Use(middleware.RequestID())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: []string{"*"},
		AllowMethods: []string{http.MethodGet, http.MethodOptions},
		AllowHeaders: []string{"Origin", "Content-Type", "Accept"},
		MaxAge:       3600,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogStatus:    true,
		LogURI:       true,
		LogMethod:    true,
		LogLatency:   true,
		LogRequestID: true,
		LogError:     true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			event := s.logger.Debug()
			if v.Error != nil {
				event = s.logger.Error().Err(v.Error)
			}
			event.
				Str("method", v.Method).
				Str("uri", v.URI).
				Int("status", v.Status).
				Dur("latency", v.Latency).
				Str("request_id", v.RequestID).
				Msg("http request")
			return nil
		},
	}))

	e.GET("/health", s.handleHealth)
	e.GET("/metrics", echo.WrapHandler(promhttp.Handler()))

	api := e.Group("/api/v1")
	api.GET("/health", s.handleHealth)
	api.GET("/articles", s.handleArticles)
	api.GET("/articles/similar", s.handleSimilarByURL)
	api.GET("/articles/:article_id/similar", s.handleSimilarByID)

	return e
}

func (s *Server) httpErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	message := "Internal server error"
	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		if v, ok := he.Message.(string); ok && strings.TrimSpace(v) != "" {
			message = v
		} else if text := http.StatusText(status); text != "" {
			message = text
		}
	}

	if status >= 500 {
		_ = internalError(c, "Internal server error")
		return
	}
	_ = fail(c, status, message, nil)
}

func (s *Server) handleHealth(c echo.Context) error {
	ctx := c.Request().Context()
	payload := map[string]any{
		"service":   "newsfinder",
		"time":      globaltime.UTC(),
		"datastore": s.store.IsConnected(ctx),
	}

	run, err := s.store.LatestSimilarityRun(ctx)
	switch {
	case err == nil:
		payload["last_run"] = map[string]any{
			"run_uuid":    run.RunUUID,
			"status":      run.Status,
			"articles":    run.ArticleCount,
			"matches":     run.Matches,
			"started_at":  run.StartedAt,
			"finished_at": run.FinishedAt,
		}
	case !db.IsNoRows(err):
		s.logger.Warn().Err(err).Msg("query latest similarity run failed")
	}

	return success(c, payload)
}

func (s *Server) handleArticles(c echo.Context) error {
	page, err := parsePositiveInt(c.QueryParam("page"), 1, 1, 1_000_000)
	if err != nil {
		return failValidation(c, "page", err.Error())
	}
	pageSize, err := parsePositiveInt(c.QueryParam("page_size"), defaultPageSize, 1, maxPageSize)
	if err != nil {
		return failValidation(c, "page_size", err.Error())
	}

	query := db.ListArticlesQuery{
		Limit:  pageSize,
		Offset: (page - 1) * pageSize,
		Source: strings.TrimSpace(c.QueryParam("source")),
	}
	items, err := s.store.ListArticlesForDisplay(c.Request().Context(), query)
	if err != nil {
		s.logger.Error().Err(err).Msg("query articles failed")
		return internalError(c, "Failed to load articles")
	}

	return successItems(c, items, map[string]any{
		"pagination": map[string]any{
			"page":      page,
			"page_size": pageSize,
		},
		"filters": map[string]any{
			"source": query.Source,
		},
	})
}

func (s *Server) handleSimilarByURL(c echo.Context) error {
	url := strings.TrimSpace(c.QueryParam("url"))
	if url == "" {
		return failValidation(c, "url", "is required")
	}

	items, err := s.store.ListSimilarArticlesByURL(c.Request().Context(), url)
	if err != nil {
		if db.IsNoRows(err) {
			return failNotFound(c, "Article not found")
		}
		s.logger.Error().Err(err).Str("url", url).Msg("query similar articles failed")
		return internalError(c, "Failed to load similar articles")
	}
	return successItems(c, filterSimilar(items, c.QueryParam("include_same_source")), nil)
}

func (s *Server) handleSimilarByID(c echo.Context) error {
	articleID, err := strconv.ParseInt(strings.TrimSpace(c.Param("article_id")), 10, 64)
	if err != nil || articleID <= 0 {
		return failValidation(c, "article_id", "must be a positive integer")
	}

	items, err := s.store.ListSimilarPairs(c.Request().Context(), articleID)
	if err != nil {
		s.logger.Error().Err(err).Int64("article_id", articleID).Msg("query similar articles failed")
		return internalError(c, "Failed to load similar articles")
	}
	return successItems(c, filterSimilar(items, c.QueryParam("include_same_source")), nil)
}

// filterSimilar keeps cross-source duplicates unless same-source updates are
// explicitly requested.
func filterSimilar(items []db.SimilarArticle, includeSameSource string) []db.SimilarArticle {
	include, _ := strconv.ParseBool(strings.TrimSpace(includeSameSource))
	out := make([]db.SimilarArticle, 0, len(items))
	for _, item := range items {
		if item.SameSource && !include {
			continue
		}
		out = append(out, item)
	}
	return out
}

func parsePositiveInt(raw string, defaultValue, minValue, maxValue int) (int, error) {
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return defaultValue, nil
	}

	value, err := strconv.Atoi(trimmed)
	if err != nil {
		return 0, fmt.Errorf("must be an integer")
	}
	if value < minValue || value > maxValue {
		return 0, fmt.Errorf("must be between %d and %d", minValue, maxValue)
	}
	return value, nil
}
