package api

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"banbds/internal/domain"
)

// Wire status values of the backend's result envelope.
const (
	StatusSuccess      = "Success"
	StatusError        = "Error"
	StatusNotProcess   = "Not Process"
	StatusUnauthorized = "Unauthorized"
	StatusImageFormat  = "ImageFormat"
	StatusImageToBig   = "ImageToBig"
)

// Envelope is the uniform JSON wrapper around every backend response.
type Envelope struct {
	Status  string          `json:"status"`
	Data    json.RawMessage `json:"data,omitempty"`
	Error   string          `json:"error,omitempty"`
	Message string          `json:"message,omitempty"`
}

var errEmptyBody = errors.New("empty response body")

// DecodeEnvelope parses a response body into the closed Result variant.
// Anything that is not a well-formed envelope with a known status is an error.
func DecodeEnvelope(body []byte) (domain.Result, error) {
	body = bytes.TrimSpace(body)
	if len(body) == 0 {
		return domain.Result{}, errEmptyBody
	}
	var env Envelope
	if err := json.Unmarshal(body, &env); err != nil {
		return domain.Result{}, fmt.Errorf("malformed envelope: %w", err)
	}
	return env.Result()
}

// Result maps the wire status onto a domain.Result.
func (e Envelope) Result() (domain.Result, error) {
	switch e.Status {
	case StatusSuccess:
		res := domain.Result{Kind: domain.ResultSuccess}
		if len(e.Data) > 0 && !bytes.Equal(e.Data, []byte("null")) {
			res.Data = e.Data
		}
		return res, nil
	case StatusUnauthorized:
		return domain.Result{
			Kind:    domain.ResultUnauthorized,
			Reason:  unauthorizedReason(e.Message),
			Message: e.Message,
		}, nil
	case StatusNotProcess:
		return domain.Result{Kind: domain.ResultNotProcessable, Message: e.Message}, nil
	case StatusError:
		msg := e.Error
		if msg == "" {
			msg = e.Message
		}
		return domain.Result{Kind: domain.ResultNotProcessable, Message: msg}, nil
	case StatusImageFormat:
		return domain.Result{Kind: domain.ResultImageRejected, Image: domain.ImageFormat}, nil
	case StatusImageToBig:
		return domain.Result{Kind: domain.ResultImageRejected, Image: domain.ImageTooBig}, nil
	case "":
		return domain.Result{}, errors.New("envelope without status")
	default:
		return domain.Result{}, fmt.Errorf("unknown envelope status %q", e.Status)
	}
}

// unauthorizedReason tells device rejections from user rejections. The
// backend names the credential in the message; anything not naming the
// device is treated as a user rejection so it is never retried.
func unauthorizedReason(message string) domain.UnauthorizedReason {
	if strings.Contains(strings.ToLower(message), "device") {
		return domain.ReasonDevice
	}
	return domain.ReasonUser
}
