package ui

import (
	"context"
	"net/http"
	"time"

	"edabench/adapters/excel"
	"edabench/internal/config"
	"edabench/internal/logging"
	"edabench/internal/recipe"
	"edabench/internal/session"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

// maxUploadBytes bounds multipart uploads kept in memory
const maxUploadBytes = 32 << 20

// Server exposes sessions over a JSON HTTP API
type Server struct {
	router   *gin.Engine
	sessions *session.Registry
	reader   *excel.DataReader
	runner   *recipe.Runner
	logger   *zap.Logger
	cfg      config.ServerConfig
}

// NewServer creates a new web server instance with its routes registered
func NewServer(cfg config.ServerConfig, sessions *session.Registry, reader *excel.DataReader, logger *zap.Logger) *Server {
	if cfg.GinMode != "" {
		gin.SetMode(cfg.GinMode)
	}
	logger = logging.OrNop(logger).Named("http")

	s := &Server{
		router:   gin.New(),
		sessions: sessions,
		reader:   reader,
		runner:   recipe.NewRunner(logger),
		logger:   logger,
		cfg:      cfg,
	}
	s.router.MaxMultipartMemory = maxUploadBytes
	s.setupMiddleware()
	s.setupRoutes()
	return s
}

// Handler returns the router for embedding or tests
func (s *Server) Handler() http.Handler { return s.router }

func (s *Server) setupRoutes() {
	api := s.router.Group("/api")
	api.GET("/health", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"status": "ok"}) })
	api.GET("/recipe/ops", func(c *gin.Context) { c.JSON(http.StatusOK, gin.H{"ops": recipe.Ops()}) })

	api.GET("/sessions", s.handleListSessions)
	api.POST("/sessions", s.handleCreateSession)

	sess := api.Group("/sessions/:id", s.resolveSession())
	{
		sess.GET("", s.handleSessionInfo)
		sess.DELETE("", s.handleCloseSession)
		sess.GET("/preview", s.handlePreview)
		sess.GET("/export", s.handleExport)
		sess.GET("/log", s.handleLog)
		sess.POST("/recipe", s.handleRecipe)

		cols := sess.Group("/columns")
		cols.POST("/combine", derive((*session.Session).Combine))
		cols.POST("/dummies", derive((*session.Session).Dummies))
		cols.POST("/binarize", derive((*session.Session).Binarize))
		cols.POST("/filter", derive((*session.Session).Filter))
		cols.POST("/transform", derive((*session.Session).Transform))
		cols.POST("/invert-likert", derive((*session.Session).InvertLikert))
		cols.POST("/interaction", derive((*session.Session).Interaction))
		cols.POST("/discretize", derive((*session.Session).Discretize))
		cols.POST("/pca", derive((*session.Session).PCA))
		cols.POST("/relabel", derive((*session.Session).Relabel))
		cols.POST("/temporal", derive((*session.Session).ExtractTemporal))
		cols.DELETE("", s.handleRemoveColumns)

		tests := sess.Group("/tests")
		tests.POST("/describe", s.handleDescribe)
		tests.POST("/frequency", s.handleFrequency)
		tests.POST("/contingency", s.handleContingency)
		tests.POST("/correlations", s.handleCorrelations)
		tests.POST("/partial", s.handlePartial)
		tests.POST("/grouped-correlation", s.handleGrouped)
		tests.POST("/one-sample", s.handleOneSample)
		tests.POST("/independent", s.handleIndependent)
		tests.POST("/paired", s.handlePaired)

		anova := sess.Group("/anova")
		anova.GET("", s.handleANOVAStatus)
		anova.POST("/select", s.handleANOVASelect)
		anova.POST("/run", s.handleANOVARun)
		anova.POST("/posthoc", s.handleANOVAPostHoc)

		cl := sess.Group("/clustering")
		cl.POST("/prepare", s.handleClusterPrepare)
		cl.POST("/sweep", s.handleClusterSweep)
		cl.POST("/fit", s.handleClusterFit)
		cl.GET("/projection", s.handleClusterProjection)
		cl.GET("/means", s.handleClusterMeans)
		cl.POST("/persist", s.handleClusterPersist)
	}
}

// Start serves until ctx is cancelled, then shuts down gracefully
func (s *Server) Start(ctx context.Context, addr string) error {
	srv := &http.Server{
		Addr:              addr,
		Handler:           s.router,
		ReadHeaderTimeout: 10 * time.Second,
	}

	errCh := make(chan error, 1)
	go func() {
		s.logger.Info("listening", zap.String("addr", addr))
		errCh <- srv.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err == http.ErrServerClosed {
			return nil
		}
		return err
	case <-ctx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		s.logger.Info("shutting down")
		return srv.Shutdown(shutdownCtx)
	}
}
