package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"edabench/domain/core"

	"github.com/stretchr/testify/assert"
)

func TestWrapDerivesCodeFromSentinel(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code string
	}{
		{"collision", core.NewCollisionError("age"), CodeNameCollision},
		{"domain", core.NewDomainError("negative input"), CodeDomainViolation},
		{"incomplete labels", fmt.Errorf("city: %w", core.ErrIncompleteLabels), CodeDomainViolation},
		{"insufficient", core.NewInsufficientDataError("no rows"), CodeInsufficientData},
		{"not found", core.NewColumnNotFoundError("x"), CodeNotFound},
		{"coercion", fmt.Errorf("%w: abc", core.ErrCoercion), CodeValidationError},
		{"plain", stderrors.New("boom"), CodeInternalError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			wrapped := Wrap(tt.err, "operation failed")
			assert.Equal(t, tt.code, GetCode(wrapped))
			assert.True(t, stderrors.Is(wrapped, tt.err))
		})
	}
}

func TestWrapKeepsAppErrorCode(t *testing.T) {
	inner := ConfigInvalid("alpha must be in (0,1)")
	outer := Wrapf(inner, "load %s", "config")
	assert.Equal(t, CodeConfigInvalid, GetCode(outer))
	assert.Equal(t, "load config: alpha must be in (0,1)", outer.Error())
}

func TestGetCodeOnBareSentinel(t *testing.T) {
	assert.Equal(t, CodeNameCollision, GetCode(core.NewCollisionError("x")))
	assert.Equal(t, "UNKNOWN", GetCode(stderrors.New("x")))
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestComputationFailedUnwraps(t *testing.T) {
	err := ComputationFailed("chi-square", stderrors.New("zero expected count"))
	assert.True(t, stderrors.Is(err, core.ErrComputation))
	assert.Equal(t, CodeComputation, GetCode(err))
	assert.True(t, stderrors.Is(InvalidState("post-hoc withheld"), core.ErrInvalidState))
}
