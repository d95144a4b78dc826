// Package gateway performs authenticated backend calls with a bounded
// device-token renewal.
//
// A logical call makes at most two attempts: if the first is rejected for
// its device token, the token is refreshed once and the call repeated. A
// second device rejection ends the call with domain.ErrRenewalLoop. User
// rejections and business errors are never retried; they are returned to
// the caller as outcomes.
package gateway

import (
	"context"
	"fmt"
	"log/slog"
	"sync/atomic"

	"banbds/internal/domain"
	"banbds/internal/logging"
)

// maxAttempts bounds a logical call to the original request plus one retry.
const maxAttempts = 2

// Stats are process-wide counters, mainly for diagnostics.
type Stats struct {
	Calls    int64
	Attempts int64
	Renewals int64
}

// Gateway is safe for concurrent use. Each call owns its retry budget;
// concurrent calls may renew independently and the last written token wins.
type Gateway struct {
	session   domain.DeviceSession
	users     domain.UserTokenSource
	transport domain.Transport
	log       *slog.Logger

	calls    atomic.Int64
	attempts atomic.Int64
	renewals atomic.Int64
}

// New builds a gateway. users may be nil when no call requires a user session.
func New(
	session domain.DeviceSession,
	users domain.UserTokenSource,
	transport domain.Transport,
	log *slog.Logger,
) *Gateway {
	return &Gateway{
		session:   session,
		users:     users,
		transport: transport,
		log:       logging.OrDiscard(log),
	}
}

// Call performs req and translates the result into an Outcome.
//
// Errors: domain.ErrNoUserSession (no network call made),
// domain.ErrRenewalFailed, domain.ErrRenewalLoop and *domain.TransportError.
// Cancellation of ctx surfaces as a TransportError, or as ErrRenewalFailed
// when it lands during the renewal; both wrap ctx.Err().
func (g *Gateway) Call(ctx context.Context, req domain.Request) (domain.Outcome, error) {
	g.calls.Add(1)
	log := g.log.With(slog.String("method", req.Method), slog.String("path", req.Path))

	var creds domain.Credentials
	if req.RequiresUser {
		user, err := g.userToken(ctx)
		if err != nil {
			return domain.Outcome{}, err
		}
		creds.User = user
	}

	tok, err := g.session.Token(ctx)
	if err != nil {
		return domain.Outcome{}, err
	}
	creds.Device = tok

	for attempt := 0; attempt < maxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			return domain.Outcome{}, &domain.TransportError{Op: req.Method, URL: req.Path, Err: err}
		}
		g.attempts.Add(1)

		res, err := g.transport.Send(ctx, req, creds)
		if err != nil {
			log.Debug("call failed", slog.Int("attempt", attempt), slog.Any("error", err))
			return domain.Outcome{}, err
		}
		log.Debug("call answered", slog.Int("attempt", attempt), slog.String("result", res.Kind.String()))

		switch res.Kind {
		case domain.ResultSuccess:
			return domain.Outcome{Kind: domain.OutcomeSuccess, Data: res.Data}, nil
		case domain.ResultNotProcessable:
			return domain.Outcome{Kind: domain.OutcomeBadRequest, Message: res.Message}, nil
		case domain.ResultImageRejected:
			return domain.Outcome{Kind: domain.OutcomeImageRejected, Image: res.Image}, nil
		case domain.ResultUnauthorized:
			if res.Reason != domain.ReasonDevice {
				return domain.Outcome{Kind: domain.OutcomeUnauthorizedUser, Message: res.Message}, nil
			}
			if attempt+1 >= maxAttempts {
				break // budget spent; the loop ends
			}
			g.renewals.Add(1)
			log.Info("device token rejected, renewing", slog.String("reason", res.Message))
			if creds.Device, err = g.session.Refresh(ctx, creds.Device); err != nil {
				return domain.Outcome{}, err
			}
		default:
			return domain.Outcome{}, &domain.TransportError{
				Op:  req.Method,
				URL: req.Path,
				Err: fmt.Errorf("unexpected result kind %d", res.Kind),
			}
		}
	}

	log.Warn("renewed device token rejected")
	return domain.Outcome{}, fmt.Errorf("%s %s: %w", req.Method, req.Path, domain.ErrRenewalLoop)
}

// Stats returns a snapshot of the counters.
func (g *Gateway) Stats() Stats {
	return Stats{
		Calls:    g.calls.Load(),
		Attempts: g.attempts.Load(),
		Renewals: g.renewals.Load(),
	}
}

func (g *Gateway) userToken(ctx context.Context) (domain.UserToken, error) {
	if g.users == nil {
		return "", domain.ErrNoUserSession
	}
	tok, ok, err := g.users.UserToken(ctx)
	if err != nil {
		return "", fmt.Errorf("read user token: %w", err)
	}
	if !ok || tok == "" {
		return "", domain.ErrNoUserSession
	}
	return tok, nil
}

// Compile-time assertion that Gateway implements domain.Caller.
var _ domain.Caller = (*Gateway)(nil)
