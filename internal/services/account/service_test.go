package account_test

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"banbds/internal/domain"
	"banbds/internal/services/account"
	"banbds/internal/store"
)

type fakeCaller struct {
	outs []domain.Outcome
	err  error
	reqs []domain.Request
}

func (f *fakeCaller) Call(_ context.Context, req domain.Request) (domain.Outcome, error) {
	f.reqs = append(f.reqs, req)
	if f.err != nil {
		return domain.Outcome{}, f.err
	}
	out := f.outs[0]
	if len(f.outs) > 1 {
		f.outs = f.outs[1:]
	}
	return out, nil
}

func ok(t *testing.T, v any) domain.Outcome {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return domain.Outcome{Kind: domain.OutcomeSuccess, Data: b}
}

func newService(calls *fakeCaller) (*account.Service, *account.TokenStore) {
	tokens := account.NewTokenStore(store.NewMemoryStore())
	return account.New(calls, tokens, nil), tokens
}

func TestLogin_PersistsUserToken(t *testing.T) {
	calls := &fakeCaller{}
	calls.outs = []domain.Outcome{ok(t, map[string]any{
		"token": "user-1",
		"user":  map[string]string{"id": "u1", "phone": "0900", "fullName": "Lan"},
	})}
	svc, tokens := newService(calls)

	p, err := svc.Login(context.Background(), " 0900 ", "secret")
	require.NoError(t, err)
	assert.Equal(t, "Lan", p.FullName)

	tok, found, err := tokens.UserToken(context.Background())
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, domain.UserToken("user-1"), tok)

	require.Len(t, calls.reqs, 1)
	assert.Equal(t, "/user/login", calls.reqs[0].Path)
	assert.False(t, calls.reqs[0].RequiresUser)
}

func TestLogin_Rejected(t *testing.T) {
	calls := &fakeCaller{outs: []domain.Outcome{{Kind: domain.OutcomeBadRequest, Message: "wrong password"}}}
	svc, tokens := newService(calls)

	_, err := svc.Login(context.Background(), "0900", "bad")
	var bre *domain.BadRequestError
	require.True(t, errors.As(err, &bre))
	assert.Equal(t, "wrong password", bre.Message)

	_, found, _ := tokens.UserToken(context.Background())
	assert.False(t, found)
}

func TestLogin_MissingToken(t *testing.T) {
	calls := &fakeCaller{outs: []domain.Outcome{ok(t, map[string]any{"user": map[string]string{"id": "u1"}})}}
	svc, _ := newService(calls)

	_, err := svc.Login(context.Background(), "0900", "x")
	assert.ErrorIs(t, err, account.ErrMissingToken)
}

func TestProfile_IsUserScoped(t *testing.T) {
	calls := &fakeCaller{outs: []domain.Outcome{ok(t, map[string]string{"id": "u1", "fullName": "Lan"})}}
	svc, tokens := newService(calls)
	require.NoError(t, tokens.Save(context.Background(), "user-1"))

	p, err := svc.Profile(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "u1", p.ID)
	assert.True(t, calls.reqs[0].RequiresUser)
	assert.Equal(t, "GET", calls.reqs[0].Method)
}

func TestUpdateProfile_SendsBody(t *testing.T) {
	calls := &fakeCaller{outs: []domain.Outcome{ok(t, map[string]string{"id": "u1", "email": "lan@example.com"})}}
	svc, _ := newService(calls)

	p, err := svc.UpdateProfile(context.Background(), account.ProfileUpdate{Email: "lan@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "lan@example.com", p.Email)
	assert.Equal(t, "PUT", calls.reqs[0].Method)
	assert.Equal(t, account.ProfileUpdate{Email: "lan@example.com"}, calls.reqs[0].Body)
}

func TestUserRejection_ClearsToken(t *testing.T) {
	calls := &fakeCaller{outs: []domain.Outcome{{Kind: domain.OutcomeUnauthorizedUser}}}
	svc, tokens := newService(calls)
	require.NoError(t, tokens.Save(context.Background(), "user-1"))

	_, err := svc.Profile(context.Background())
	require.ErrorIs(t, err, domain.ErrUnauthorizedUser)

	loggedIn, err := svc.LoggedIn(context.Background())
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func TestProfile_NoSessionPropagates(t *testing.T) {
	calls := &fakeCaller{err: domain.ErrNoUserSession}
	svc, _ := newService(calls)

	_, err := svc.Profile(context.Background())
	assert.ErrorIs(t, err, domain.ErrNoUserSession)
}

func TestSendOTP(t *testing.T) {
	tests := []struct {
		name string
		out  domain.Outcome
		want error
	}{
		{"sent", domain.Outcome{Kind: domain.OutcomeSuccess}, nil},
		{"failed", domain.Outcome{Kind: domain.OutcomeBadRequest, Message: "Failed"}, account.ErrOTPFailed},
		{"throttled", domain.Outcome{Kind: domain.OutcomeBadRequest, Message: "Renew"}, account.ErrOTPThrottled},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			svc, _ := newService(&fakeCaller{outs: []domain.Outcome{tc.out}})
			err := svc.SendOTP(context.Background(), "0900")
			if tc.want == nil {
				assert.NoError(t, err)
				return
			}
			assert.ErrorIs(t, err, tc.want)
		})
	}
}

func TestSendOTP_OtherBadRequest(t *testing.T) {
	svc, _ := newService(&fakeCaller{outs: []domain.Outcome{{Kind: domain.OutcomeBadRequest, Message: "invalid phone"}}})
	err := svc.SendOTP(context.Background(), "x")
	var bre *domain.BadRequestError
	require.True(t, errors.As(err, &bre))
	assert.Equal(t, "invalid phone", bre.Message)
}

func TestLogout(t *testing.T) {
	svc, tokens := newService(&fakeCaller{})
	ctx := context.Background()
	require.NoError(t, tokens.Save(ctx, "user-1"))
	require.NoError(t, svc.Logout(ctx))

	loggedIn, err := svc.LoggedIn(ctx)
	require.NoError(t, err)
	assert.False(t, loggedIn)
}

func TestTokenStore_SaveReadClear(t *testing.T) {
	ctx := context.Background()
	kv := store.NewMemoryStore()
	tokens := account.NewTokenStore(kv)

	_, ok, err := tokens.UserToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
	require.NoError(t, tokens.Clear(ctx))

	require.NoError(t, tokens.Save(ctx, "user-1"))
	tok, ok, err := tokens.UserToken(ctx)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, domain.UserToken("user-1"), tok)

	require.NoError(t, kv.Set(ctx, account.KeyUserToken, ""))
	_, ok, err = tokens.UserToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok, "an empty stored value is no session")

	require.NoError(t, tokens.Save(ctx, "user-2"))
	require.NoError(t, tokens.Clear(ctx))
	_, ok, err = tokens.UserToken(ctx)
	require.NoError(t, err)
	assert.False(t, ok)
}
