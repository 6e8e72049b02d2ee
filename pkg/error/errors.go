package error

import "net/http"

// GenericError is implemented by every error that maps onto an HTTP response.
type GenericError interface {
	Error() string
	ErrCode() string
	StatusCode() int
}

type NotFoundError string

func (err NotFoundError) Error() string {
	return string(err)
}

func (err NotFoundError) ErrCode() string {
	return "NOT_FOUND_ERROR"
}

func (err NotFoundError) StatusCode() int {
	return http.StatusNotFound
}

type ValidationError string

func (err ValidationError) Error() string {
	return string(err)
}

func (err ValidationError) ErrCode() string {
	return "VALIDATION_ERROR"
}

func (err ValidationError) StatusCode() int {
	return http.StatusBadRequest
}

// ConflictError signals a state change that is not allowed from the current state.
type ConflictError string

func (err ConflictError) Error() string {
	return string(err)
}

func (err ConflictError) ErrCode() string {
	return "CONFLICT_ERROR"
}

func (err ConflictError) StatusCode() int {
	return http.StatusConflict
}

// GenerationError wraps failures of the upstream content generator.
type GenerationError string

func (err GenerationError) Error() string {
	return string(err)
}

func (err GenerationError) ErrCode() string {
	return "GENERATION_ERROR"
}

func (err GenerationError) StatusCode() int {
	return http.StatusBadGateway
}

type InternalServerError string

func (err InternalServerError) Error() string {
	return string(err)
}

func (err InternalServerError) ErrCode() string {
	return "INTERNAL_SERVER_ERROR"
}

func (err InternalServerError) StatusCode() int {
	return http.StatusInternalServerError
}
