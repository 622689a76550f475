package container

import (
	"fmt"

	"edabench/adapters/excel"
	"edabench/internal/config"
	"edabench/internal/logging"
	"edabench/internal/recipe"
	"edabench/internal/session"
	"edabench/ui"

	"go.uber.org/zap"
)

// Container holds all application dependencies and manages their lifecycle
type Container struct {
	Config *config.Config
	Logger *zap.Logger

	Reader   *excel.DataReader
	Sessions *session.Registry
	Runner   *recipe.Runner
}

// New creates a new dependency injection container
func New(cfg *config.Config) (*Container, error) {
	if cfg == nil {
		return nil, fmt.Errorf("config cannot be nil")
	}

	logger, err := logging.New(cfg.Log)
	if err != nil {
		return nil, err
	}
	return NewWithLogger(cfg, logger), nil
}

// NewWithLogger wires the container around an existing logger
func NewWithLogger(cfg *config.Config, logger *zap.Logger) *Container {
	logger = logging.OrNop(logger)
	return &Container{
		Config:   cfg,
		Logger:   logger,
		Reader:   excel.NewDataReader(excel.DefaultExcelConfig(), logger),
		Sessions: session.NewRegistry(cfg, logger),
		Runner:   recipe.NewRunner(logger),
	}
}

// OpenFile loads a CSV or XLSX file into a new session
func (c *Container) OpenFile(path string) (*session.Session, []excel.ColumnReport, error) {
	ds, reports, err := c.Reader.LoadFile(path)
	if err != nil {
		return nil, nil, err
	}
	return c.Sessions.Open(ds), reports, nil
}

// Server builds the HTTP surface over the container's sessions
func (c *Container) Server() *ui.Server {
	return ui.NewServer(c.Config.Server, c.Sessions, c.Reader, c.Logger)
}

// Close flushes buffered log output
func (c *Container) Close() error {
	// Sync on a console logger reports EINVAL on some platforms
	_ = c.Logger.Sync()
	return nil
}
