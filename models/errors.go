package models

import (
	"database/sql"
	"errors"

	"github.com/lib/pq"
)

// Error kinds. Match with errors.Is.
var (
	ErrNotFound     = errors.New("not_found")
	ErrInvalidState = errors.New("invalid_state")
	ErrConflict     = errors.New("conflict")
	ErrValidation   = errors.New("validation_error")
	ErrUnauthorized = errors.New("unauthorized")
	ErrForbidden    = errors.New("forbidden")
)

// Error carries a kind and the message shown to API clients.
type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string { return e.Message }
func (e *Error) Unwrap() error { return e.Kind }

func NotFound(msg string) error     { return &Error{Kind: ErrNotFound, Message: msg} }
func InvalidState(msg string) error { return &Error{Kind: ErrInvalidState, Message: msg} }
func Conflict(msg string) error     { return &Error{Kind: ErrConflict, Message: msg} }
func Validation(msg string) error   { return &Error{Kind: ErrValidation, Message: msg} }
func Unauthorized(msg string) error { return &Error{Kind: ErrUnauthorized, Message: msg} }
func Forbidden(msg string) error    { return &Error{Kind: ErrForbidden, Message: msg} }

// Canned errors shared by the repositories and their in-memory doubles.
var (
	EventNotFound        = NotFound("Event not found")
	ParticipantNotFound  = NotFound("Participant not found")
	RegistrationNotFound = NotFound("Registration not found")
	UserNotFound         = NotFound("User not found")
	EventNotPublished    = InvalidState("Cannot register to a non-published event")
	EventFull            = InvalidState("Event is full")
	AlreadyRegistered    = Conflict("Participant already registered to this event")
	EmailTaken           = Conflict("Email already exists")
	NoFieldsToUpdate     = InvalidState("No fields to update")
	BadCredentials       = Unauthorized("Invalid credentials")
)

// Postgres SQLSTATE codes translated at the repository boundary.
const (
	pqUniqueViolation     = "23505"
	pqForeignKeyViolation = "23503"
	pqCheckViolation      = "23514"
	pqInvalidText         = "22P02"
)

// translate maps driver errors to the error taxonomy. onUnique is returned
// for unique violations so callers can pick the right conflict message.
func translate(err error, onUnique error) error {
	if err == nil {
		return nil
	}
	var pqErr *pq.Error
	if !errors.As(err, &pqErr) {
		return err
	}
	switch pqErr.Code {
	case pqUniqueViolation:
		if onUnique != nil {
			return onUnique
		}
		return Conflict("Duplicate entry")
	case pqForeignKeyViolation:
		return InvalidState("Invalid reference")
	case pqCheckViolation, pqInvalidText:
		return Validation("Invalid value")
	}
	return err
}

// notFoundOr swaps sql.ErrNoRows for the given NotFound error.
func notFoundOr(err, nf error) error {
	if errors.Is(err, sql.ErrNoRows) {
		return nf
	}
	return err
}
