package apperrors_test

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/SscSPs/erp_ledger/internal/apperrors"
	"github.com/stretchr/testify/assert"
)

func TestKindOf(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want apperrors.Kind
	}{
		{name: "nil", err: nil, want: apperrors.KindNone},
		{name: "wrapped not found", err: fmt.Errorf("journal entry %w", apperrors.ErrNotFound), want: apperrors.KindNotFound},
		{name: "validation", err: fmt.Errorf("%w: bad date", apperrors.ErrValidation), want: apperrors.KindValidation},
		{name: "conflict", err: fmt.Errorf("x: %w", apperrors.ErrConflict), want: apperrors.KindConflict},
		{name: "unbalanced", err: apperrors.ErrUnbalanced, want: apperrors.KindUnbalanced},
		{name: "already posted", err: apperrors.ErrAlreadyPosted, want: apperrors.KindAlreadyPosted},
		{name: "duplicate", err: apperrors.ErrDuplicate, want: apperrors.KindDuplicate},
		{name: "server app error", err: apperrors.NewAppError(500, "failed to insert", errors.New("connection reset")), want: apperrors.KindPersistence},
		{name: "app error wrapping not found", err: apperrors.NewAppError(500, "lookup", apperrors.ErrNotFound), want: apperrors.KindNotFound},
		{name: "canceled", err: fmt.Errorf("begin: %w", context.Canceled), want: apperrors.KindCanceled},
		{name: "unknown", err: errors.New("boom"), want: apperrors.KindInternal},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, apperrors.KindOf(tt.err))
		})
	}
}

func TestAppError(t *testing.T) {
	inner := errors.New("disk full")
	err := apperrors.NewAppError(http.StatusInternalServerError, "failed to append", inner)

	assert.Equal(t, "failed to append: disk full", err.Error())
	assert.ErrorIs(t, err, inner)
	assert.ErrorIs(t, err, apperrors.ErrPersistence)

	clientErr := apperrors.NewAppError(http.StatusBadRequest, "bad input", nil)
	assert.NotErrorIs(t, clientErr, apperrors.ErrPersistence)
	assert.Equal(t, "bad input", clientErr.Error())
}
