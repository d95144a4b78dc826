package api

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"strings"

	"github.com/google/uuid"

	"banbds/internal/domain"
	"banbds/internal/logging"
)

const (
	// DeviceTokenHeader carries the device credential on every call once known.
	DeviceTokenHeader = "x-banbds-device-token"
	// RequestIDHeader tags each attempt so backend logs can be correlated.
	RequestIDHeader = "X-Request-ID"

	maxBodyBytes = 4 << 20
)

// HTTP talks JSON over HTTP to the listing backend.
type HTTP struct {
	Base string
	HTTP *http.Client
	Log  *slog.Logger
}

// NewHTTP returns a client for base. A nil client uses http.DefaultClient.
func NewHTTP(base string, client *http.Client, log *slog.Logger) *HTTP {
	if client == nil {
		client = http.DefaultClient
	}
	return &HTTP{
		Base: strings.TrimRight(base, "/"),
		HTTP: client,
		Log:  logging.OrDiscard(log),
	}
}

type registerRequest struct {
	Brand    string `json:"brand"`
	Model    string `json:"model"`
	DeviceID string `json:"deviceId"`
	OS       string `json:"os"`
	MACID    string `json:"macId"`
}

type registerResponse struct {
	DeviceID string `json:"deviceID"`
	Token    string `json:"token"`
}

type renewRequest struct {
	DeviceID string `json:"deviceID"`
}

type renewResponse struct {
	Token string `json:"token"`
}

// RegisterDevice exchanges a full fingerprint for a new device identity.
func (c *HTTP) RegisterDevice(ctx context.Context, fp domain.Fingerprint) (domain.DeviceID, domain.DeviceToken, error) {
	var out registerResponse
	err := c.exchange(ctx, "/device/register", registerRequest{
		Brand:    fp.Brand,
		Model:    fp.Model,
		DeviceID: fp.HardwareID,
		OS:       fp.OS(),
		MACID:    fp.MACID,
	}, &out)
	if err != nil {
		return "", "", err
	}
	return domain.DeviceID(out.DeviceID), domain.DeviceToken(out.Token), nil
}

// RenewDevice exchanges a known device id for a fresh token.
func (c *HTTP) RenewDevice(ctx context.Context, id domain.DeviceID) (domain.DeviceToken, error) {
	var out renewResponse
	if err := c.exchange(ctx, "/device/renew", renewRequest{DeviceID: id.String()}, &out); err != nil {
		return "", err
	}
	return domain.DeviceToken(out.Token), nil
}

// Send performs one attempt of req with creds attached.
func (c *HTTP) Send(ctx context.Context, req domain.Request, creds domain.Credentials) (domain.Result, error) {
	method := req.Method
	if method == "" {
		method = http.MethodGet
	}
	body, contentType, err := encodeBody(req)
	if err != nil {
		return domain.Result{}, &domain.TransportError{Op: method, URL: c.url(req), Err: err}
	}
	return c.roundTrip(ctx, method, c.url(req), body, contentType, creds)
}

// exchange posts a device credential request and decodes a success payload.
func (c *HTTP) exchange(ctx context.Context, path string, in, out any) error {
	b, err := json.Marshal(in)
	if err != nil {
		return err
	}
	res, err := c.roundTrip(ctx, http.MethodPost, c.Base+path, b, "application/json", domain.Credentials{})
	if err != nil {
		return err
	}
	if res.Kind == domain.ResultUnauthorized {
		return fmt.Errorf("post %s: %w: %s", path, domain.ErrDeviceRejected, res.Message)
	}
	if res.Kind != domain.ResultSuccess {
		return fmt.Errorf("post %s: backend answered %s %q", path, res.Kind, res.Message)
	}
	if len(res.Data) == 0 {
		return fmt.Errorf("post %s: success without payload", path)
	}
	return json.Unmarshal(res.Data, out)
}

func (c *HTTP) roundTrip(
	ctx context.Context,
	method, url string,
	body []byte,
	contentType string,
	creds domain.Credentials,
) (domain.Result, error) {
	var rd io.Reader
	if body != nil {
		rd = bytes.NewReader(body)
	}
	req, err := http.NewRequestWithContext(ctx, method, url, rd)
	if err != nil {
		return domain.Result{}, &domain.TransportError{Op: method, URL: url, Err: err}
	}
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set(RequestIDHeader, uuid.NewString())
	if creds.Device != "" {
		req.Header.Set(DeviceTokenHeader, creds.Device.String())
	}
	if creds.User != "" {
		req.Header.Set("Authorization", "Bearer "+creds.User.String())
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return domain.Result{}, &domain.TransportError{Op: method, URL: url, Err: err}
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBodyBytes))
	if err != nil {
		return domain.Result{}, &domain.TransportError{Op: method, URL: url, Err: err}
	}
	res, err := DecodeEnvelope(raw)
	if err != nil {
		return domain.Result{}, &domain.TransportError{
			Op:  method,
			URL: url,
			Err: fmt.Errorf("%s: %w", resp.Status, err),
		}
	}
	c.Log.Debug("backend response",
		slog.String("method", method),
		slog.String("url", url),
		slog.Int("http_status", resp.StatusCode),
		slog.String("result", res.Kind.String()),
		slog.String("request_id", req.Header.Get(RequestIDHeader)),
	)
	return res, nil
}

func (c *HTTP) url(req domain.Request) string {
	u := c.Base + "/" + strings.TrimLeft(req.Path, "/")
	if len(req.Query) > 0 {
		u += "?" + req.Query.Encode()
	}
	return u
}

// encodeBody renders the request body once so retries resend identical bytes.
func encodeBody(req domain.Request) ([]byte, string, error) {
	switch {
	case req.Upload != nil:
		return encodeMultipart(req.Upload)
	case req.Body != nil:
		b, err := json.Marshal(req.Body)
		if err != nil {
			return nil, "", err
		}
		return b, "application/json", nil
	default:
		return nil, "", nil
	}
}

func encodeMultipart(up *domain.Upload) ([]byte, string, error) {
	buf := new(bytes.Buffer)
	w := multipart.NewWriter(buf)
	for k, v := range up.Fields {
		if err := w.WriteField(k, v); err != nil {
			return nil, "", err
		}
	}
	field := up.Field
	if field == "" {
		field = "file"
	}
	part, err := w.CreateFormFile(field, up.FileName)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(up.Content); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf.Bytes(), w.FormDataContentType(), nil
}

var (
	_ domain.Transport       = (*HTTP)(nil)
	_ domain.DeviceRegistrar = (*HTTP)(nil)
)
