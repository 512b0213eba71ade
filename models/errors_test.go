package models

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"
)

func TestTranslate(t *testing.T) {
	plain := errors.New("boom")
	cases := []struct {
		name     string
		err      error
		onUnique error
		kind     error
		same     error
	}{
		{"nil", nil, nil, nil, nil},
		{"not a pq error", plain, nil, nil, plain},
		{"unique with canned error", &pq.Error{Code: "23505"}, EmailTaken, ErrConflict, EmailTaken},
		{"unique without canned error", &pq.Error{Code: "23505"}, nil, ErrConflict, nil},
		{"foreign key", &pq.Error{Code: "23503"}, nil, ErrInvalidState, nil},
		{"check constraint", &pq.Error{Code: "23514"}, nil, ErrValidation, nil},
		{"invalid text", fmt.Errorf("wrapped: %w", &pq.Error{Code: "22P02"}), nil, ErrValidation, nil},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := translate(tc.err, tc.onUnique)
			if tc.err == nil {
				assert.NoError(t, got)
				return
			}
			if tc.kind != nil {
				assert.ErrorIs(t, got, tc.kind)
			}
			if tc.same != nil {
				assert.Same(t, tc.same, got)
			}
		})
	}
}

func TestNotFoundOr(t *testing.T) {
	assert.Same(t, EventNotFound, notFoundOr(sql.ErrNoRows, EventNotFound))
	other := errors.New("other")
	assert.Same(t, other, notFoundOr(other, EventNotFound))
}

func TestErrorMessage(t *testing.T) {
	assert.Equal(t, "Event is full", EventFull.Error())
	assert.ErrorIs(t, AlreadyRegistered, ErrConflict)
	assert.NotErrorIs(t, AlreadyRegistered, ErrInvalidState)
}
