package ui

import (
	"net/http"

	"edabench/internal/features"
	"edabench/internal/session"

	"github.com/gin-gonic/gin"
)

// derive binds a JSON body to P and runs a session derivation with it
func derive[P any](fn func(*session.Session, P) (features.Result, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var p P
		if err := c.ShouldBindJSON(&p); err != nil {
			badRequest(c, err)
			return
		}
		res, err := fn(current(c), p)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusCreated, res)
	}
}

type removeRequest struct {
	Columns []string `json:"columns"`
}

func (s *Server) handleRemoveColumns(c *gin.Context) {
	var req removeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		badRequest(c, err)
		return
	}
	res, err := current(c).RemoveColumns(req.Columns...)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}
