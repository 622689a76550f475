package ui

import (
	"net/http"
	"strconv"
	"strings"

	"edabench/adapters/excel"
	"edabench/domain/dataset"
	"edabench/internal/errors"
	"edabench/internal/recipe"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

func (s *Server) handleListSessions(c *gin.Context) {
	respond(c, http.StatusOK, gin.H{"sessions": s.sessions.List()})
}

// handleCreateSession loads the uploaded "file" field into a new session
func (s *Server) handleCreateSession(c *gin.Context) {
	fh, err := c.FormFile("file")
	if err != nil {
		badRequest(c, err)
		return
	}
	f, err := fh.Open()
	if err != nil {
		fail(c, errors.Wrap(err, "failed to open upload"))
		return
	}
	defer f.Close()

	ds, reports, err := s.reader.Load(f, fh.Filename)
	if err != nil {
		fail(c, err)
		return
	}
	sess := s.sessions.Open(ds)
	s.logger.Info("dataset uploaded",
		zap.String("file", fh.Filename),
		zap.String("session", sess.ID().String()))
	respond(c, http.StatusCreated, gin.H{"session": sess.Info(), "columns": reports})
}

func (s *Server) handleSessionInfo(c *gin.Context) {
	respond(c, http.StatusOK, current(c).Info())
}

func (s *Server) handleCloseSession(c *gin.Context) {
	if err := s.sessions.Close(current(c).ID()); err != nil {
		fail(c, err)
		return
	}
	c.Status(http.StatusNoContent)
}

// handlePreview renders ?rows= rows of ?columns= (comma separated, default all)
func (s *Server) handlePreview(c *gin.Context) {
	rows := 10
	if raw := c.Query("rows"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil || n < 1 {
			fail(c, errors.InvalidInput("rows must be a positive integer"))
			return
		}
		rows = n
	}
	var names []string
	if raw := c.Query("columns"); raw != "" {
		names = strings.Split(raw, ",")
	}
	sess := current(c)
	for _, n := range names {
		if !sess.ColumnExists(n) {
			fail(c, errors.Wrap(errors.NotFound("column "+n), "preview failed"))
			return
		}
	}
	respond(c, http.StatusOK, gin.H{"rows": sess.Preview(names, rows)})
}

// handleExport downloads the current dataset as ?format=csv (default) or xlsx
func (s *Server) handleExport(c *gin.Context) {
	sess := current(c)
	info := sess.Info()

	switch c.DefaultQuery("format", "csv") {
	case "csv":
		c.Header("Content-Disposition", `attachment; filename="`+info.Dataset+`.csv"`)
		c.Header("Content-Type", "text/csv")
		if err := sess.Read(func(ds *dataset.Dataset) error { return excel.WriteCSV(c.Writer, ds) }); err != nil {
			s.logger.Error("csv export failed", zap.Error(err))
		}
	case "xlsx":
		c.Header("Content-Disposition", `attachment; filename="`+info.Dataset+`.xlsx"`)
		c.Header("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
		if err := sess.Read(func(ds *dataset.Dataset) error { return excel.WriteXLSX(c.Writer, ds) }); err != nil {
			s.logger.Error("xlsx export failed", zap.Error(err))
		}
	default:
		fail(c, errors.InvalidInput("format must be csv or xlsx"))
	}
}

// handleLog returns the operation log as JSON, ?format=text or ?format=html
func (s *Server) handleLog(c *gin.Context) {
	sess := current(c)
	switch c.DefaultQuery("format", "json") {
	case "json":
		respond(c, http.StatusOK, gin.H{"entries": sess.Log()})
	case "text":
		c.String(http.StatusOK, sess.ExportLog())
	case "html":
		c.Data(http.StatusOK, "text/html; charset=utf-8", sess.ExportLogHTML())
	default:
		fail(c, errors.InvalidInput("format must be json, text or html"))
	}
}

// handleRecipe runs a YAML recipe from the request body
func (s *Server) handleRecipe(c *gin.Context) {
	rec, err := recipe.Parse(c.Request.Body)
	if err != nil {
		fail(c, err)
		return
	}
	outcomes, err := s.runner.Run(c.Request.Context(), current(c), rec)
	status := http.StatusOK
	if err != nil {
		status = StatusFor(err)
	}
	respond(c, status, gin.H{"outcomes": outcomes})
}
