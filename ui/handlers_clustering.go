package ui

import (
	"net/http"

	"edabench/internal/clustering"
	"edabench/internal/session"

	"github.com/gin-gonic/gin"
)

type prepareRequest struct {
	Features []string `json:"features"`
}

type fitRequest struct {
	K int `json:"k"`
}

type persistRequest struct {
	Column string `json:"column"`
}

func (s *Server) handleClusterPrepare(c *gin.Context) {
	analyze(func(sess *session.Session, r prepareRequest) (clustering.Preparation, error) {
		return sess.ClusterPrepare(r.Features...)
	})(c)
}

// handleClusterSweep runs the elbow sweep; a client disconnect cancels it
func (s *Server) handleClusterSweep(c *gin.Context) {
	curve, err := current(c).ClusterSweep(c.Request.Context())
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"elbow": curve})
}

func (s *Server) handleClusterFit(c *gin.Context) {
	analyze(func(sess *session.Session, r fitRequest) (clustering.Assignment, error) {
		return sess.ClusterFit(c.Request.Context(), r.K)
	})(c)
}

func (s *Server) handleClusterProjection(c *gin.Context) {
	points, err := current(c).ClusterProject()
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"points": points})
}

func (s *Server) handleClusterMeans(c *gin.Context) {
	means, err := current(c).ClusterMeans()
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, gin.H{"clusters": means})
}

func (s *Server) handleClusterPersist(c *gin.Context) {
	var req persistRequest
	if c.Request.ContentLength != 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
	}
	res, err := current(c).ClusterPersist(req.Column)
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusCreated, res)
}
