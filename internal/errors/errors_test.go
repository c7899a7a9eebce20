package errors

import (
	stderrors "errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"

	"fastfisher/domain/core"
)

func TestWrapKeepsCode(t *testing.T) {
	base := ConfigInvalid("COMPARE_SAMPLES must be positive")
	wrapped := Wrap(base, "loading config")

	assert.Equal(t, CodeConfigInvalid, GetCode(wrapped))
	assert.Equal(t, "loading config: COMPARE_SAMPLES must be positive", wrapped.Error())
	assert.Nil(t, Wrap(nil, "ignored"))
}

func TestWrapForeignError(t *testing.T) {
	err := Wrapf(fmt.Errorf("disk full"), "writing %s", "out.csv")
	assert.Equal(t, CodeInternalError, GetCode(err))
	assert.True(t, IsAppError(err))
	assert.Equal(t, "UNKNOWN", GetCode(fmt.Errorf("plain")))
}

func TestInvalidTableReachesSentinel(t *testing.T) {
	err := InvalidTable(core.NewInvalidTableError("c", "-3", "must be non-negative"))

	assert.Equal(t, CodeInvalidTable, GetCode(err))
	assert.True(t, stderrors.Is(err, core.ErrInvalidTable))
	assert.Contains(t, err.Error(), "c=-3 must be non-negative")

	outer := fmt.Errorf("row 4: %w", err)
	assert.Equal(t, CodeInvalidTable, GetCode(outer))
}

func TestWithCode(t *testing.T) {
	err := WithCode(CodeInvalidInput, fmt.Errorf("bad json"))
	assert.Equal(t, CodeInvalidInput, GetCode(err))
	assert.Equal(t, "bad json", err.Error())
	assert.Nil(t, WithCode(CodeInvalidInput, nil))
}

func TestUnsupportedFormat(t *testing.T) {
	err := UnsupportedFormat("tables.ods")
	assert.Equal(t, CodeUnsupportedFormat, err.Code)
	assert.Contains(t, err.Error(), "tables.ods")
}

func TestReferenceMismatch(t *testing.T) {
	cause := stderrors.New("3 of 200 tables disagree")
	err := ReferenceMismatch(cause)
	assert.Equal(t, CodeReferenceMismatch, GetCode(err))
	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "engine disagrees with reference: 3 of 200 tables disagree", err.Error())
}

func TestWrapKeepsCodeThroughForeignWrapping(t *testing.T) {
	inner := fmt.Errorf("row 2: %w", NotFound("run 42"))
	err := Wrap(inner, "loading history")
	assert.True(t, HasCode(err, CodeNotFound))
	assert.Equal(t, "loading history: row 2: run 42 not found", err.Error())
}

func TestFromDomain(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want string
	}{
		{"table", core.NewInvalidTableError("b", "-2", "must be non-negative"), CodeInvalidTable},
		{"alternative", core.NewInvalidAlternativeError("both"), CodeInvalidInput},
		{"oracle range", fmt.Errorf("%w: n=30000 exceeds 20000", core.ErrOracleUnsupported), CodeValidationError},
		{"disagreement", core.NewDisagreementError("(2,3,0,2)", 0.5, 0.4), CodeReferenceMismatch},
		{"app error", NotFound("run"), CodeNotFound},
		{"foreign", fmt.Errorf("disk full"), "UNKNOWN"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := FromDomain(tt.err)
			assert.Equal(t, tt.want, GetCode(got))
			assert.ErrorIs(t, got, tt.err)
		})
	}
	assert.Nil(t, FromDomain(nil))
}

func TestHTTPStatus(t *testing.T) {
	assert.Equal(t, 400, HTTPStatus(InvalidTable(core.ErrInvalidTable)))
	assert.Equal(t, 400, HTTPStatus(ValidationError("too many")))
	assert.Equal(t, 400, HTTPStatus(UnsupportedFormat("x.ods")))
	assert.Equal(t, 404, HTTPStatus(NotFound("run")))
	assert.Equal(t, 409, HTTPStatus(ReferenceMismatch(fmt.Errorf("3 failures"))))
	assert.Equal(t, 500, HTTPStatus(fmt.Errorf("boom")))
	assert.Equal(t, 500, HTTPStatus(ConfigInvalid("PORT is required")))
}
