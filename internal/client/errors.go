package client

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/akilcn01-oss/Inventory-Management/internal/model"
)

var (
	// ErrTransport is matched by every *TransportError.
	ErrTransport = errors.New("transport error")
	// ErrRequestFailed is matched by every *RequestFailedError.
	ErrRequestFailed = errors.New("request failed")
	// ErrDeserialization is matched by every *DeserializationError.
	ErrDeserialization = errors.New("unexpected response body")
	// ErrDownloadFailed is matched by every *DownloadError.
	ErrDownloadFailed = errors.New("download failed")
	// ErrValidation is returned, wrapped in a *model.ValidationError, for drafts refused before any request.
	ErrValidation = model.ErrValidation
	// ErrClientClosed is returned by every call made after Close.
	ErrClientClosed = errors.New("client closed")
	// ErrUnknownReport is returned for a report kind the API does not serve.
	ErrUnknownReport = errors.New("unknown report kind")
)

// TransportError means the request never reached the server or no response came back.
type TransportError struct {
	Op  string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("%s: transport error: %v", e.Op, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

func (e *TransportError) Is(target error) bool { return target == ErrTransport }

// RequestFailedError means the server answered with an unexpected status.
type RequestFailedError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *RequestFailedError) Error() string {
	return fmt.Sprintf("%s: request failed with status %d: %s", e.Op, e.StatusCode, e.Body)
}

func (e *RequestFailedError) Is(target error) bool { return target == ErrRequestFailed }

// Detail is the server's error message, taken from a {"detail": ...} body when there is one.
func (e *RequestFailedError) Detail() string {
	return detailOf(e.Body)
}

// DeserializationError means the response body did not have the expected shape.
type DeserializationError struct {
	Op  string
	Err error
}

func (e *DeserializationError) Error() string {
	return fmt.Sprintf("%s: failed to decode response: %v", e.Op, e.Err)
}

func (e *DeserializationError) Unwrap() error { return e.Err }

func (e *DeserializationError) Is(target error) bool { return target == ErrDeserialization }

// DownloadError means a report could not be downloaded.
type DownloadError struct {
	Kind       model.ReportKind
	StatusCode int
	Body       string
}

func (e *DownloadError) Error() string {
	return fmt.Sprintf("download %s report: status %d: %s", e.Kind, e.StatusCode, e.Body)
}

func (e *DownloadError) Is(target error) bool { return target == ErrDownloadFailed }

func detailOf(body string) string {
	var payload struct {
		Detail string `json:"detail"`
	}
	if err := json.Unmarshal([]byte(body), &payload); err == nil && payload.Detail != "" {
		return payload.Detail
	}
	return strings.TrimSpace(body)
}

// UserMessage turns an error returned by the client into text for the person at the keyboard.
func UserMessage(err error) string {
	if err == nil {
		return ""
	}

	var (
		validationErr *model.ValidationError
		requestErr    *RequestFailedError
		downloadErr   *DownloadError
	)
	switch {
	case errors.As(err, &validationErr):
		return validationErr.Message
	case errors.Is(err, ErrClientClosed):
		return "The application is shutting down."
	case errors.Is(err, ErrTransport):
		return "Cannot reach the inventory server. Check that it is running and that the API URL is correct."
	case errors.As(err, &downloadErr):
		return fmt.Sprintf("Failed to download the %s report (status %d).", downloadErr.Kind, downloadErr.StatusCode)
	case errors.As(err, &requestErr):
		if detail := requestErr.Detail(); detail != "" {
			return fmt.Sprintf("The server rejected the request (status %d): %s", requestErr.StatusCode, detail)
		}
		return fmt.Sprintf("The server rejected the request (status %d).", requestErr.StatusCode)
	case errors.Is(err, ErrDeserialization):
		return "The server sent a response this version of the application does not understand."
	case errors.Is(err, ErrUnknownReport):
		return "Unknown report type."
	default:
		return "Unexpected error: " + err.Error()
	}
}
