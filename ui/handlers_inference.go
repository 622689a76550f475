package ui

import (
	"net/http"

	"edabench/domain/stats"
	"edabench/internal/session"

	"github.com/gin-gonic/gin"
)

type columnsRequest struct {
	Columns []string `json:"columns"`
}

type columnRequest struct {
	Column string `json:"column"`
}

type contingencyRequest struct {
	Row string `json:"row"`
	Col string `json:"col"`
}

type partialRequest struct {
	X string `json:"x"`
	Y string `json:"y"`
	Z string `json:"z"`
}

type groupedRequest struct {
	Group   string   `json:"group"`
	Columns []string `json:"columns"`
}

type oneSampleRequest struct {
	Column string  `json:"column"`
	Mu     float64 `json:"mu"`
}

type independentRequest struct {
	Value string `json:"value"`
	Group string `json:"group"`
}

type pairedRequest struct {
	A string `json:"a"`
	B string `json:"b"`
}

type anovaSelectRequest struct {
	Dependent string   `json:"dependent"`
	Factors   []string `json:"factors"`
}

type postHocRequest struct {
	Factor string              `json:"factor"`
	Method stats.PostHocMethod `json:"method"`
}

// analyze binds a JSON body to R and responds with whatever call returns
func analyze[R any, T any](call func(*session.Session, R) (T, error)) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req R
		if err := c.ShouldBindJSON(&req); err != nil {
			badRequest(c, err)
			return
		}
		res, err := call(current(c), req)
		if err != nil {
			fail(c, err)
			return
		}
		respond(c, http.StatusOK, res)
	}
}

func (s *Server) handleDescribe(c *gin.Context) {
	analyze(func(sess *session.Session, r columnsRequest) (any, error) { return sess.Describe(r.Columns...) })(c)
}

func (s *Server) handleFrequency(c *gin.Context) {
	analyze(func(sess *session.Session, r columnRequest) (stats.FrequencyTable, error) { return sess.Frequency(r.Column) })(c)
}

func (s *Server) handleContingency(c *gin.Context) {
	analyze(func(sess *session.Session, r contingencyRequest) (stats.ContingencyResult, error) {
		return sess.Contingency(r.Row, r.Col)
	})(c)
}

func (s *Server) handleCorrelations(c *gin.Context) {
	analyze(func(sess *session.Session, r columnsRequest) (stats.CorrelationMatrix, error) {
		return sess.Correlations(r.Columns...)
	})(c)
}

func (s *Server) handlePartial(c *gin.Context) {
	analyze(func(sess *session.Session, r partialRequest) (stats.PartialCorrelationResult, error) {
		return sess.Partial(r.X, r.Y, r.Z)
	})(c)
}

func (s *Server) handleGrouped(c *gin.Context) {
	analyze(func(sess *session.Session, r groupedRequest) (stats.GroupedCorrelation, error) {
		return sess.Grouped(r.Group, r.Columns...)
	})(c)
}

func (s *Server) handleOneSample(c *gin.Context) {
	analyze(func(sess *session.Session, r oneSampleRequest) (stats.TTestResult, error) {
		return sess.OneSample(r.Column, r.Mu)
	})(c)
}

func (s *Server) handleIndependent(c *gin.Context) {
	analyze(func(sess *session.Session, r independentRequest) (stats.TTestResult, error) {
		return sess.Independent(r.Value, r.Group)
	})(c)
}

func (s *Server) handlePaired(c *gin.Context) {
	analyze(func(sess *session.Session, r pairedRequest) (stats.TTestResult, error) {
		return sess.Paired(r.A, r.B)
	})(c)
}

func (s *Server) handleANOVAStatus(c *gin.Context) {
	respond(c, http.StatusOK, current(c).ANOVAStatus())
}

func (s *Server) handleANOVASelect(c *gin.Context) {
	analyze(func(sess *session.Session, r anovaSelectRequest) (session.ANOVAStatus, error) {
		if err := sess.ANOVASelect(r.Dependent, r.Factors...); err != nil {
			return session.ANOVAStatus{}, err
		}
		return sess.ANOVAStatus(), nil
	})(c)
}

func (s *Server) handleANOVARun(c *gin.Context) {
	res, err := current(c).ANOVARun()
	if err != nil {
		fail(c, err)
		return
	}
	respond(c, http.StatusOK, res)
}

func (s *Server) handleANOVAPostHoc(c *gin.Context) {
	analyze(func(sess *session.Session, r postHocRequest) (stats.PostHocResult, error) {
		return sess.ANOVAPostHoc(r.Factor, r.Method)
	})(c)
}
