package gateway

import (
	"fmt"
	"net/http"
)

// NetworkError means no response was received from the task service.
type NetworkError struct {
	Op  string
	Err error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("network error: %s: %v", e.Op, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// NotFoundError is returned for a 404 from the service.
type NotFoundError struct {
	ID      int64
	Message string
}

func (e *NotFoundError) Error() string {
	if e.Message != "" {
		return "task not found: " + e.Message
	}
	return fmt.Sprintf("task not found: %d", e.ID)
}

// InvalidRequestError is returned for a 400 from the service.
type InvalidRequestError struct {
	Message string
}

func (e *InvalidRequestError) Error() string {
	return "invalid request: " + e.Message
}

// ServiceError covers every other non-2xx response.
type ServiceError struct {
	StatusCode int
	Message    string
}

func (e *ServiceError) Error() string {
	msg := e.Message
	if msg == "" {
		msg = http.StatusText(e.StatusCode)
	}
	return fmt.Sprintf("service error %d: %s", e.StatusCode, msg)
}

func errorForStatus(code int, id int64, message string) error {
	switch code {
	case http.StatusNotFound:
		return &NotFoundError{ID: id, Message: message}
	case http.StatusBadRequest:
		if message == "" {
			message = "invalid data"
		}
		return &InvalidRequestError{Message: message}
	default:
		return &ServiceError{StatusCode: code, Message: message}
	}
}
