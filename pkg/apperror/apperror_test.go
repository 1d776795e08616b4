package apperror_test

import (
	"errors"
	"fmt"
	"testing"

	"github.com/martinmanurung/account-service/pkg/apperror"
	"github.com/stretchr/testify/assert"
)

func TestErrorIsMatchesKind(t *testing.T) {
	tests := []struct {
		name   string
		err    error
		target error
		want   bool
	}{
		{
			name:   "same kind",
			err:    apperror.UserNotFound("john"),
			target: apperror.ErrUserNotFound,
			want:   true,
		},
		{
			name:   "wrapped",
			err:    fmt.Errorf("login: %w", apperror.UserIsBlocked("42")),
			target: apperror.ErrUserIsBlocked,
			want:   true,
		},
		{
			name:   "different kind",
			err:    apperror.UserNotFound("john"),
			target: apperror.ErrMethodNotAllowed,
			want:   false,
		},
		{
			name:   "conflict is a database error",
			err:    apperror.Conflict(errors.New("duplicate key")),
			target: apperror.ErrDatabase,
			want:   true,
		},
		{
			name:   "database error is not a conflict",
			err:    apperror.Database(errors.New("connection refused")),
			target: apperror.ErrConflict,
			want:   false,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, errors.Is(tt.err, tt.target))
		})
	}
}

func TestErrorUnwrapKeepsCause(t *testing.T) {
	cause := errors.New("bucket unreachable")
	err := apperror.ImagesBucket(cause)

	assert.ErrorIs(t, err, cause)
	assert.Equal(t, "images bucket error: bucket unreachable", err.Error())
}

func TestKindOf(t *testing.T) {
	assert.Equal(t, apperror.KindNonExistSortKey, apperror.KindOf(fmt.Errorf("list: %w", apperror.NonExistSortKey("foo"))))
	assert.Equal(t, apperror.KindUnknown, apperror.KindOf(errors.New("plain")))
	assert.Equal(t, "non_exist_sort_key", apperror.KindNonExistSortKey.String())
}

func TestUserNotFoundMessage(t *testing.T) {
	assert.EqualError(t, apperror.UserNotFound("11111111-1111-1111-1111-111111111111"), "user not found: 11111111-1111-1111-1111-111111111111")
	assert.EqualError(t, apperror.UserNotFound("john@example.com"), "user not found: john@example.com")
}
