package ui

import (
	"net/http"

	"edabench/internal/errors"
	"edabench/internal/render"

	"github.com/gin-gonic/gin"
)

var statusByCode = map[string]int{
	errors.CodeValidationError:  http.StatusBadRequest,
	errors.CodeInvalidInput:     http.StatusBadRequest,
	errors.CodeNotFound:         http.StatusNotFound,
	errors.CodeNameCollision:    http.StatusConflict,
	errors.CodeInvalidState:     http.StatusConflict,
	errors.CodeDomainViolation:  http.StatusUnprocessableEntity,
	errors.CodeInsufficientData: http.StatusUnprocessableEntity,
	errors.CodeComputation:      http.StatusUnprocessableEntity,
}

// StatusFor maps an error to the HTTP status the API reports for it
func StatusFor(err error) int {
	if status, ok := statusByCode[errors.GetCode(err)]; ok {
		return status
	}
	return http.StatusInternalServerError
}

type errorBody struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func fail(c *gin.Context, err error) {
	code := errors.GetCode(err)
	if code == "UNKNOWN" {
		code = errors.CodeInternalError
	}
	c.JSON(StatusFor(err), gin.H{"error": errorBody{Code: code, Message: err.Error()}})
}

func badRequest(c *gin.Context, err error) {
	fail(c, errors.Wrap(errors.InvalidInput(err.Error()), "invalid request body"))
}

// respond writes v as JSON with non-finite floats rendered as null
func respond(c *gin.Context, status int, v any) {
	c.JSON(status, render.Sanitize(v))
}
