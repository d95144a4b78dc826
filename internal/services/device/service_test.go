package device_test

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"testing"

	"banbds/internal/domain"
	"banbds/internal/fingerprint"
	"banbds/internal/services/device"
	"banbds/internal/store"
)

// fakeRegistrar counts exchanges and hands out numbered tokens.
type fakeRegistrar struct {
	mu        sync.Mutex
	registers int
	renewals  int
	renewedID domain.DeviceID
	seq       int

	registerErr error
	renewErr    error
	// block, when set, makes exchanges wait for ctx cancellation.
	block chan struct{}
}

func (f *fakeRegistrar) RegisterDevice(ctx context.Context, fp domain.Fingerprint) (domain.DeviceID, domain.DeviceToken, error) {
	f.mu.Lock()
	f.registers++
	f.seq++
	n := f.seq
	f.mu.Unlock()
	if f.block != nil {
		close(f.block)
		<-ctx.Done()
		return "", "", ctx.Err()
	}
	if f.registerErr != nil {
		return "", "", f.registerErr
	}
	return "dev-1", domain.DeviceToken("tok-" + strconv.Itoa(n)), nil
}

func (f *fakeRegistrar) RenewDevice(ctx context.Context, id domain.DeviceID) (domain.DeviceToken, error) {
	f.mu.Lock()
	f.renewals++
	f.renewedID = id
	f.seq++
	n := f.seq
	f.mu.Unlock()
	if f.block != nil {
		close(f.block)
		<-ctx.Done()
		return "", ctx.Err()
	}
	if f.renewErr != nil {
		return "", f.renewErr
	}
	return domain.DeviceToken("tok-" + strconv.Itoa(n)), nil
}

var testFingerprint = fingerprint.Static{Brand: "test", Model: "unit", HardwareID: "hw-1", OSName: "linux"}

func newService(kv domain.KeyValueStore, reg *fakeRegistrar) *device.Service {
	return device.New(kv, reg, testFingerprint, nil)
}

func mustGet(t *testing.T, kv domain.KeyValueStore, key string) (string, bool) {
	t.Helper()
	v, ok, err := kv.Get(context.Background(), key)
	if err != nil {
		t.Fatalf("get %s: %v", key, err)
	}
	return v, ok
}

func TestToken_BootstrapsWhenNothingStored(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{}
	svc := newService(kv, reg)

	tok, err := svc.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "tok-1" || reg.registers != 1 || reg.renewals != 0 {
		t.Fatalf("tok=%q registers=%d renewals=%d", tok, reg.registers, reg.renewals)
	}
	if id, _ := mustGet(t, kv, device.KeyDeviceID); id != "dev-1" {
		t.Fatalf("device id = %q", id)
	}
	if v, _ := mustGet(t, kv, device.KeyDeviceToken); v != "tok-1" {
		t.Fatalf("device token = %q", v)
	}
}

func TestToken_SecondCallUsesCache(t *testing.T) {
	reg := &fakeRegistrar{}
	svc := newService(store.NewMemoryStore(), reg)
	ctx := context.Background()

	first, err := svc.Token(ctx)
	if err != nil {
		t.Fatalf("first Token: %v", err)
	}
	second, err := svc.Token(ctx)
	if err != nil {
		t.Fatalf("second Token: %v", err)
	}
	if first != second {
		t.Fatalf("tokens differ: %q vs %q", first, second)
	}
	if got := reg.registers + reg.renewals; got != 1 {
		t.Fatalf("exchanges = %d, want 1", got)
	}
}

func TestToken_DeviceIDOnlyUsesLightweightRenewal(t *testing.T) {
	kv := store.NewMemoryStore()
	_ = kv.Set(context.Background(), device.KeyDeviceID, "dev-known")
	reg := &fakeRegistrar{}
	svc := newService(kv, reg)

	tok, err := svc.Token(context.Background())
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if reg.registers != 0 || reg.renewals != 1 || reg.renewedID != "dev-known" {
		t.Fatalf("registers=%d renewals=%d id=%q", reg.registers, reg.renewals, reg.renewedID)
	}
	if v, _ := mustGet(t, kv, device.KeyDeviceToken); v != tok.String() {
		t.Fatalf("persisted %q, returned %q", v, tok)
	}
}

func TestToken_BackendFailureIsRenewalFailed(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{registerErr: errors.New("connection refused")}
	svc := newService(kv, reg)

	_, err := svc.Token(context.Background())
	if !errors.Is(err, domain.ErrRenewalFailed) {
		t.Fatalf("err = %v, want ErrRenewalFailed", err)
	}
	if _, ok := mustGet(t, kv, device.KeyDeviceID); ok {
		t.Fatal("device id persisted after failed bootstrap")
	}
}

func TestInvalidate_NextTokenRenewsByID(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{}
	svc := newService(kv, reg)
	ctx := context.Background()

	if _, err := svc.Token(ctx); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if err := svc.Invalidate(ctx); err != nil {
		t.Fatalf("Invalidate: %v", err)
	}
	if st, _ := svc.State(ctx); st != domain.StateDeviceIDOnly {
		t.Fatalf("state = %v, want device-id-only", st)
	}
	tok, err := svc.Token(ctx)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if tok != "tok-2" || reg.registers != 1 || reg.renewals != 1 {
		t.Fatalf("tok=%q registers=%d renewals=%d", tok, reg.registers, reg.renewals)
	}
	if st, _ := svc.State(ctx); st != domain.StateValidToken {
		t.Fatalf("state = %v, want valid-token", st)
	}
}

func TestRefresh_ReplacesStaleToken(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	_ = kv.Set(ctx, device.KeyDeviceID, "dev-1")
	_ = kv.Set(ctx, device.KeyDeviceToken, "stale")
	reg := &fakeRegistrar{}
	svc := newService(kv, reg)

	tok, err := svc.Refresh(ctx, "stale")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if tok == "stale" || reg.renewals != 1 {
		t.Fatalf("tok=%q renewals=%d", tok, reg.renewals)
	}
	if v, _ := mustGet(t, kv, device.KeyDeviceToken); v != tok.String() {
		t.Fatalf("persisted %q, want %q", v, tok)
	}
}

func TestRefresh_ReusesConcurrentlyRenewedToken(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	_ = kv.Set(ctx, device.KeyDeviceID, "dev-1")
	_ = kv.Set(ctx, device.KeyDeviceToken, "newer")
	reg := &fakeRegistrar{}
	svc := newService(kv, reg)

	tok, err := svc.Refresh(ctx, "stale")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if tok != "newer" || reg.renewals != 0 {
		t.Fatalf("tok=%q renewals=%d", tok, reg.renewals)
	}
}

func TestRefresh_FailureDropsStaleToken(t *testing.T) {
	kv := store.NewMemoryStore()
	ctx := context.Background()
	_ = kv.Set(ctx, device.KeyDeviceID, "dev-1")
	_ = kv.Set(ctx, device.KeyDeviceToken, "stale")
	svc := newService(kv, &fakeRegistrar{renewErr: errors.New("503")})

	if _, err := svc.Refresh(ctx, "stale"); !errors.Is(err, domain.ErrRenewalFailed) {
		t.Fatalf("err = %v, want ErrRenewalFailed", err)
	}
	if _, ok := mustGet(t, kv, device.KeyDeviceToken); ok {
		t.Fatal("stale token kept after failed renewal")
	}
	if id, _ := mustGet(t, kv, device.KeyDeviceID); id != "dev-1" {
		t.Fatalf("device id = %q, want kept", id)
	}
}

func TestRefresh_CancelledMidRenewalLeavesStateUntouched(t *testing.T) {
	kv := store.NewMemoryStore()
	bg := context.Background()
	_ = kv.Set(bg, device.KeyDeviceID, "dev-1")
	_ = kv.Set(bg, device.KeyDeviceToken, "old")
	reg := &fakeRegistrar{block: make(chan struct{})}
	svc := newService(kv, reg)

	ctx, cancel := context.WithCancel(bg)
	done := make(chan error, 1)
	go func() {
		_, err := svc.Refresh(ctx, "old")
		done <- err
	}()
	<-reg.block
	cancel()
	err := <-done

	if !errors.Is(err, context.Canceled) {
		t.Fatalf("err = %v, want context.Canceled", err)
	}
	if !errors.Is(err, domain.ErrRenewalFailed) {
		t.Fatalf("err = %v, want ErrRenewalFailed wrapping the cancellation", err)
	}
	if v, ok := mustGet(t, kv, device.KeyDeviceToken); !ok || v != "old" {
		t.Fatalf("token = %q (present=%v), want old token untouched", v, ok)
	}
}

func TestToken_CancelledMidBootstrapWritesNothing(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{block: make(chan struct{})}
	svc := newService(kv, reg)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		_, err := svc.Token(ctx)
		done <- err
	}()
	<-reg.block
	cancel()
	<-done

	if st, _ := svc.State(context.Background()); st != domain.StateNoIdentity {
		t.Fatalf("state = %v, want no-identity", st)
	}
}

func TestForget(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{}
	svc := newService(kv, reg)
	ctx := context.Background()

	if _, err := svc.Token(ctx); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if err := svc.Forget(ctx); err != nil {
		t.Fatalf("Forget: %v", err)
	}
	if st, _ := svc.State(ctx); st != domain.StateNoIdentity {
		t.Fatalf("state = %v", st)
	}
	if _, err := svc.Token(ctx); err != nil {
		t.Fatalf("Token: %v", err)
	}
	if reg.registers != 2 {
		t.Fatalf("registers = %d, want 2", reg.registers)
	}
}

func TestToken_RejectedDeviceIDFallsBackToBootstrap(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{renewErr: fmt.Errorf("post /device/renew: %w: Device not registered", domain.ErrDeviceRejected)}
	svc := newService(kv, reg)
	ctx := context.Background()
	if err := kv.Set(ctx, device.KeyDeviceID, "dev-forgotten"); err != nil {
		t.Fatal(err)
	}

	tok, err := svc.Token(ctx)
	if err != nil {
		t.Fatalf("Token: %v", err)
	}
	if reg.renewals != 1 || reg.registers != 1 {
		t.Fatalf("renewals=%d registers=%d, want 1 and 1", reg.renewals, reg.registers)
	}
	if id, _ := mustGet(t, kv, device.KeyDeviceID); id != "dev-1" {
		t.Fatalf("device id = %q, want dev-1", id)
	}
	if got, _ := mustGet(t, kv, device.KeyDeviceToken); got != tok.String() {
		t.Fatalf("stored token = %q, want %q", got, tok)
	}
}

func TestRefresh_RejectedDeviceIDFallsBackToBootstrap(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{renewErr: fmt.Errorf("renew: %w", domain.ErrDeviceRejected)}
	svc := newService(kv, reg)
	ctx := context.Background()
	_ = kv.Set(ctx, device.KeyDeviceID, "dev-forgotten")
	_ = kv.Set(ctx, device.KeyDeviceToken, "tok-old")

	tok, err := svc.Refresh(ctx, "tok-old")
	if err != nil {
		t.Fatalf("Refresh: %v", err)
	}
	if tok == "tok-old" || reg.registers != 1 {
		t.Fatalf("tok=%q registers=%d", tok, reg.registers)
	}
}

func TestToken_RejectedDeviceIDBootstrapsOnlyOnce(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{
		renewErr:    fmt.Errorf("renew: %w", domain.ErrDeviceRejected),
		registerErr: errors.New("backend down"),
	}
	svc := newService(kv, reg)
	ctx := context.Background()
	_ = kv.Set(ctx, device.KeyDeviceID, "dev-forgotten")

	_, err := svc.Token(ctx)
	if !errors.Is(err, domain.ErrRenewalFailed) {
		t.Fatalf("err = %v, want ErrRenewalFailed", err)
	}
	if reg.renewals != 1 || reg.registers != 1 {
		t.Fatalf("renewals=%d registers=%d, want 1 and 1", reg.renewals, reg.registers)
	}
	if st, _ := svc.State(ctx); st != domain.StateNoIdentity {
		t.Fatalf("state = %v, want no-identity", st)
	}
}

func TestToken_OtherRenewFailureKeepsDeviceID(t *testing.T) {
	kv := store.NewMemoryStore()
	reg := &fakeRegistrar{renewErr: errors.New("connection refused")}
	svc := newService(kv, reg)
	ctx := context.Background()
	_ = kv.Set(ctx, device.KeyDeviceID, "dev-1")

	if _, err := svc.Token(ctx); !errors.Is(err, domain.ErrRenewalFailed) {
		t.Fatalf("err = %v", err)
	}
	if reg.registers != 0 {
		t.Fatalf("registers = %d, want 0", reg.registers)
	}
	if id, ok := mustGet(t, kv, device.KeyDeviceID); !ok || id != "dev-1" {
		t.Fatalf("device id = %q, %v", id, ok)
	}
}
