package device

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"banbds/internal/domain"
	"banbds/internal/logging"
)

// Keys under which the device identity is persisted.
const (
	KeyDeviceID    = "device_id"
	KeyDeviceToken = "device_token"
)

// Service owns the device identity.
//
// Lifecycle:
//   - no identity: the fingerprint is exchanged for (device id, token)
//   - device id only: the id alone is exchanged for a token
//   - token present: the token is returned without a round trip
//
// A rejected token is replaced via Refresh. Writes happen only after a
// usable token is in hand, so cancellation never leaves partial state.
type Service struct {
	store        domain.KeyValueStore
	registrar    domain.DeviceRegistrar
	fingerprints domain.FingerprintProvider
	log          *slog.Logger
}

// New returns a device service backed by the given store and registrar.
func New(
	store domain.KeyValueStore,
	registrar domain.DeviceRegistrar,
	fingerprints domain.FingerprintProvider,
	log *slog.Logger,
) *Service {
	return &Service{
		store:        store,
		registrar:    registrar,
		fingerprints: fingerprints,
		log:          logging.OrDiscard(log),
	}
}

// Token returns the persisted device token, obtaining one when absent.
func (s *Service) Token(ctx context.Context) (domain.DeviceToken, error) {
	tok, ok, err := s.store.Get(ctx, KeyDeviceToken)
	if err != nil {
		return "", renewalFailed("read device token", err)
	}
	if ok && tok != "" {
		return domain.DeviceToken(tok), nil
	}
	return s.obtain(ctx)
}

// Refresh replaces stale after the backend rejected it. If another caller
// already stored a different token, that token is returned as is.
//
// On a failed exchange the stale token is dropped so the next call starts
// from the device id; on cancellation nothing is written.
func (s *Service) Refresh(ctx context.Context, stale domain.DeviceToken) (domain.DeviceToken, error) {
	cur, ok, err := s.store.Get(ctx, KeyDeviceToken)
	if err != nil {
		return "", renewalFailed("read device token", err)
	}
	if ok && cur != "" && domain.DeviceToken(cur) != stale {
		s.log.Debug("device token already replaced by a concurrent renewal")
		return domain.DeviceToken(cur), nil
	}

	tok, err := s.obtain(ctx)
	if err == nil {
		return tok, nil
	}
	if ctx.Err() == nil {
		if rmErr := s.dropIfCurrent(context.WithoutCancel(ctx), stale); rmErr != nil {
			s.log.Warn("drop rejected device token", slog.Any("error", rmErr))
		}
	}
	return "", err
}

// Invalidate drops the persisted token so the next Token call renews it.
func (s *Service) Invalidate(ctx context.Context) error {
	if err := s.store.Remove(ctx, KeyDeviceToken); err != nil {
		return fmt.Errorf("invalidate device token: %w", err)
	}
	return nil
}

// Forget drops both the token and the device id; the next Token call
// bootstraps a new identity from the fingerprint.
func (s *Service) Forget(ctx context.Context) error {
	if err := s.store.Remove(ctx, KeyDeviceToken); err != nil {
		return fmt.Errorf("forget device token: %w", err)
	}
	if err := s.store.Remove(ctx, KeyDeviceID); err != nil {
		return fmt.Errorf("forget device id: %w", err)
	}
	return nil
}

// State reports how much of the identity is persisted.
func (s *Service) State(ctx context.Context) (domain.SessionState, error) {
	if tok, ok, err := s.store.Get(ctx, KeyDeviceToken); err != nil {
		return domain.StateNoIdentity, err
	} else if ok && tok != "" {
		return domain.StateValidToken, nil
	}
	if id, ok, err := s.store.Get(ctx, KeyDeviceID); err != nil {
		return domain.StateNoIdentity, err
	} else if ok && id != "" {
		return domain.StateDeviceIDOnly, nil
	}
	return domain.StateNoIdentity, nil
}

// DeviceID returns the persisted device id, if any.
func (s *Service) DeviceID(ctx context.Context) (domain.DeviceID, bool, error) {
	id, ok, err := s.store.Get(ctx, KeyDeviceID)
	if err != nil || !ok || id == "" {
		return "", false, err
	}
	return domain.DeviceID(id), true, nil
}

// obtain runs the cheapest exchange available and persists its result.
func (s *Service) obtain(ctx context.Context) (domain.DeviceToken, error) {
	id, ok, err := s.DeviceID(ctx)
	if err != nil {
		return "", renewalFailed("read device id", err)
	}
	if !ok {
		return s.bootstrap(ctx)
	}
	tok, err := s.renew(ctx, id)
	if err == nil || !errors.Is(err, domain.ErrDeviceRejected) || ctx.Err() != nil {
		return tok, err
	}

	// The backend no longer knows id: start over from the fingerprint, once.
	s.log.Warn("device id rejected, registering again", slog.String("device_id", id.String()))
	if err := s.Forget(context.WithoutCancel(ctx)); err != nil {
		return "", renewalFailed("drop rejected device id", err)
	}
	return s.bootstrap(ctx)
}

func (s *Service) renew(ctx context.Context, id domain.DeviceID) (domain.DeviceToken, error) {
	tok, err := s.registrar.RenewDevice(ctx, id)
	if err != nil {
		return "", renewalFailed("renew by device id", err)
	}
	if tok == "" {
		return "", renewalFailed("renew by device id", errors.New("empty token"))
	}
	if err := ctx.Err(); err != nil {
		return "", renewalFailed("renew by device id", err)
	}
	if err := s.store.Set(context.WithoutCancel(ctx), KeyDeviceToken, tok.String()); err != nil {
		return "", renewalFailed("persist device token", err)
	}
	s.log.Info("device token renewed", slog.String("device_id", id.String()))
	return tok, nil
}

func (s *Service) bootstrap(ctx context.Context) (domain.DeviceToken, error) {
	fp, err := s.fingerprints.Fingerprint(ctx)
	if err != nil {
		return "", renewalFailed("collect fingerprint", err)
	}
	id, tok, err := s.registrar.RegisterDevice(ctx, fp)
	if err != nil {
		return "", renewalFailed("register device", err)
	}
	if id == "" || tok == "" {
		return "", renewalFailed("register device", errors.New("incomplete identity"))
	}
	if err := ctx.Err(); err != nil {
		return "", renewalFailed("register device", err)
	}

	// The id is written first: a failure between the two writes leaves the
	// device-id-only state, which the next call renews from.
	commit := context.WithoutCancel(ctx)
	if err := s.store.Set(commit, KeyDeviceID, id.String()); err != nil {
		return "", renewalFailed("persist device id", err)
	}
	if err := s.store.Set(commit, KeyDeviceToken, tok.String()); err != nil {
		return "", renewalFailed("persist device token", err)
	}
	s.log.Info("device bootstrapped", slog.String("device_id", id.String()), slog.String("brand", fp.Brand))
	return tok, nil
}

func (s *Service) dropIfCurrent(ctx context.Context, stale domain.DeviceToken) error {
	cur, ok, err := s.store.Get(ctx, KeyDeviceToken)
	if err != nil || !ok || domain.DeviceToken(cur) != stale {
		return err
	}
	return s.store.Remove(ctx, KeyDeviceToken)
}

func renewalFailed(op string, err error) error {
	return fmt.Errorf("%w: %s: %w", domain.ErrRenewalFailed, op, err)
}

// Compile-time assertion that Service implements domain.DeviceSession.
var _ domain.DeviceSession = (*Service)(nil)
