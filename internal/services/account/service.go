package account

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strings"

	"banbds/internal/domain"
	"banbds/internal/logging"
)

// OTP messages the backend uses in NotProcessable answers to /user/otp.
const (
	otpFailed   = "Failed"
	otpThrottle = "Renew"
)

var (
	// ErrOTPFailed means the backend could not send the code.
	ErrOTPFailed = errors.New("otp could not be sent")
	// ErrOTPThrottled means a code was sent recently; retry later.
	ErrOTPThrottled = errors.New("otp requested too often")
	// ErrMissingToken means login succeeded without a user token in the payload.
	ErrMissingToken = errors.New("login response carries no token")
)

// Profile is the public view of the logged-in user.
type Profile struct {
	ID       string `json:"id"`
	Phone    string `json:"phone"`
	FullName string `json:"fullName"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

// ProfileUpdate lists the editable profile fields; empty fields are left unchanged.
type ProfileUpdate struct {
	FullName string `json:"fullName,omitempty"`
	Email    string `json:"email,omitempty"`
	Address  string `json:"address,omitempty"`
	Avatar   string `json:"avatar,omitempty"`
}

type loginRequest struct {
	Phone    string `json:"phone"`
	Password string `json:"password"`
}

type loginResponse struct {
	Token string  `json:"token"`
	User  Profile `json:"user"`
}

type otpRequest struct {
	Phone string `json:"phone"`
}

// Service exposes the user endpoints as plain functions.
type Service struct {
	calls  domain.Caller
	tokens *TokenStore
	log    *slog.Logger
}

// New returns an account service issuing calls through calls.
func New(calls domain.Caller, tokens *TokenStore, log *slog.Logger) *Service {
	return &Service{calls: calls, tokens: tokens, log: logging.OrDiscard(log)}
}

// Login exchanges phone and password for a user token and persists it.
func (s *Service) Login(ctx context.Context, phone, password string) (Profile, error) {
	out, err := s.calls.Call(ctx, domain.Request{
		Method: http.MethodPost,
		Path:   "/user/login",
		Body:   loginRequest{Phone: strings.TrimSpace(phone), Password: password},
	})
	if err != nil {
		return Profile{}, fmt.Errorf("login: %w", err)
	}
	var resp loginResponse
	if err := out.Decode(&resp); err != nil {
		return Profile{}, fmt.Errorf("login: %w", err)
	}
	if resp.Token == "" {
		return Profile{}, fmt.Errorf("login: %w", ErrMissingToken)
	}
	if err := s.tokens.Save(context.WithoutCancel(ctx), domain.UserToken(resp.Token)); err != nil {
		return Profile{}, err
	}
	s.log.Info("user logged in", slog.String("user_id", resp.User.ID))
	return resp.User, nil
}

// Logout forgets the user token. The device session is kept.
func (s *Service) Logout(ctx context.Context) error {
	return s.tokens.Clear(ctx)
}

// LoggedIn reports whether a user token is stored.
func (s *Service) LoggedIn(ctx context.Context) (bool, error) {
	_, ok, err := s.tokens.UserToken(ctx)
	return ok, err
}

// Profile fetches the logged-in user's profile.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	var p Profile
	err := s.userCall(ctx, domain.Request{Method: http.MethodGet, Path: "/user/profile"}, &p)
	return p, err
}

// UpdateProfile saves upd and returns the profile as stored by the backend.
func (s *Service) UpdateProfile(ctx context.Context, upd ProfileUpdate) (Profile, error) {
	var p Profile
	err := s.userCall(ctx, domain.Request{Method: http.MethodPut, Path: "/user/profile", Body: upd}, &p)
	return p, err
}

// SendOTP asks the backend to text a one-time code to phone.
func (s *Service) SendOTP(ctx context.Context, phone string) error {
	out, err := s.calls.Call(ctx, domain.Request{
		Method: http.MethodPost,
		Path:   "/user/otp",
		Body:   otpRequest{Phone: strings.TrimSpace(phone)},
	})
	if err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	if out.Kind == domain.OutcomeBadRequest {
		switch out.Message {
		case otpFailed:
			return ErrOTPFailed
		case otpThrottle:
			return ErrOTPThrottled
		}
	}
	if err := out.Err(); err != nil {
		return fmt.Errorf("send otp: %w", err)
	}
	return nil
}

// CallAsUser runs req as a user-scoped call. A rejected user token is
// cleared before domain.ErrUnauthorizedUser is returned, so a successful
// return never carries OutcomeUnauthorizedUser.
func (s *Service) CallAsUser(ctx context.Context, req domain.Request) (domain.Outcome, error) {
	req.RequiresUser = true
	out, err := s.calls.Call(ctx, req)
	if err != nil {
		return domain.Outcome{}, err
	}
	if out.Kind == domain.OutcomeUnauthorizedUser {
		if err := s.tokens.Clear(context.WithoutCancel(ctx)); err != nil {
			s.log.Warn("clear rejected user token", slog.Any("error", err))
		} else {
			s.log.Info("user session rejected, logged out")
		}
		return domain.Outcome{}, domain.ErrUnauthorizedUser
	}
	return out, nil
}

func (s *Service) userCall(ctx context.Context, req domain.Request, v any) error {
	op := strings.ToLower(req.Method) + " " + req.Path
	out, err := s.CallAsUser(ctx, req)
	if err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	if err := out.Decode(v); err != nil {
		return fmt.Errorf("%s: %w", op, err)
	}
	return nil
}
