package auth_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/verdantlabs/verdant/api"
	"github.com/verdantlabs/verdant/auth"
	"github.com/verdantlabs/verdant/session"
)

func newStore(t *testing.T) *session.Store {
	t.Helper()
	store, err := session.Open(filepath.Join(t.TempDir(), "session.db"))
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestService_Login_PersistsToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/login", r.URL.Path)

		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "dev@verdant.local", req["email"])
		assert.Equal(t, "hunter2", req["password"])

		json.NewEncoder(w).Encode(map[string]any{
			"code":   200,
			"result": map[string]any{"token": "tok-1", "authenticated": true},
		})
	}))
	defer server.Close()

	store := newStore(t)
	svc := auth.NewService(api.New(server.URL), store)

	err := svc.Login(context.Background(), "dev@verdant.local", "hunter2")
	require.NoError(t, err)

	token, ok, err := store.Token()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-1", token)
}

func TestService_Login_RejectedCredentials(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 with a rejecting envelope.
		json.NewEncoder(w).Encode(map[string]any{
			"code":   200,
			"result": map[string]any{"authenticated": false},
		})
	}))
	defer server.Close()

	store := newStore(t)
	svc := auth.NewService(api.New(server.URL), store)

	err := svc.Login(context.Background(), "dev@verdant.local", "wrong")
	assert.ErrorIs(t, err, auth.ErrInvalidCredentials)

	_, ok, err := store.Token()
	require.NoError(t, err)
	assert.False(t, ok, "a failed login must not leave a token behind")
}

func TestService_Login_NeverRetried(t *testing.T) {
	var attempts atomic.Int32
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		w.WriteHeader(http.StatusServiceUnavailable)
	}))
	defer server.Close()

	svc := auth.NewService(api.New(server.URL), newStore(t))

	err := svc.Login(context.Background(), "dev@verdant.local", "hunter2")
	require.Error(t, err)
	assert.Equal(t, int32(1), attempts.Load(), "auth endpoints are single-attempt")
}

func TestService_Logout_ClearsLocalStateEvenOnServerFailure(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer server.Close()

	store := newStore(t)
	require.NoError(t, store.SetToken("tok-1"))

	sig := session.NewSignal()
	ch, cancel := sig.Subscribe()
	defer cancel()
	sig.Notify() // pending delivery from the outgoing session

	client := api.New(server.URL, api.WithTokenSource(store))
	svc := auth.NewService(client, store, auth.WithSignal(sig))

	err := svc.Logout(context.Background())
	require.Error(t, err, "server failure is still reported")

	_, ok, storeErr := store.Token()
	require.NoError(t, storeErr)
	assert.False(t, ok, "local session must be cleared regardless of the server outcome")

	select {
	case <-ch:
		t.Fatal("pending refresh must not leak past logout")
	default:
	}
}

func TestService_Logout_NoSession(t *testing.T) {
	svc := auth.NewService(api.New("http://127.0.0.1:0"), newStore(t))

	err := svc.Logout(context.Background())
	assert.ErrorIs(t, err, api.ErrNoSession)
}

func TestService_Register_PersistsTokenAndSnapshot(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/auth/register", r.URL.Path)
		// Register responds raw, without the {code, result} wrapper.
		json.NewEncoder(w).Encode(map[string]any{
			"token": "tok-new",
			"user": map[string]string{
				"id":        "u-9",
				"email":     "new@verdant.local",
				"firstName": "New",
				"lastName":  "Gardener",
			},
		})
	}))
	defer server.Close()

	store := newStore(t)
	svc := auth.NewService(api.New(server.URL), store)

	u, err := svc.Register(context.Background(), auth.Registration{
		Email:     "new@verdant.local",
		Password:  "hunter2",
		FirstName: "New",
		LastName:  "Gardener",
	})
	require.NoError(t, err)
	assert.Equal(t, "u-9", u.ID)

	token, ok, err := store.Token()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-new", token)

	snap, err := store.User()
	require.NoError(t, err)
	assert.Equal(t, "new@verdant.local", snap.Email)
}

func TestService_ChangePassword_RejectedResponse(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		// HTTP 200 with a rejecting envelope.
		json.NewEncoder(w).Encode(map[string]any{
			"code":   200,
			"result": map[string]any{"authenticated": false},
		})
	}))
	defer server.Close()

	store := newStore(t)
	svc := auth.NewService(api.New(server.URL), store)

	err := svc.ChangePassword(context.Background(), "dev@verdant.local", "newpass", "newpass")

	var serverErr *api.ServerError
	require.ErrorAs(t, err, &serverErr, "a non-authenticated response must not read as success")

	_, ok, storeErr := store.Token()
	require.NoError(t, storeErr)
	assert.False(t, ok, "a rejected password change must not leave a token behind")
}

func TestSessionRoundTrip(t *testing.T) {
	var gotAuth atomic.Value
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		switch r.URL.Path {
		case "/auth/login":
			json.NewEncoder(w).Encode(map[string]any{
				"code":   200,
				"result": map[string]any{"token": "tok-rt", "authenticated": true},
			})
		case "/user/myInfo":
			gotAuth.Store(r.Header.Get("Authorization"))
			json.NewEncoder(w).Encode(map[string]any{"code": 200, "result": map[string]string{}})
		default:
			w.WriteHeader(http.StatusOK)
		}
	}))
	defer server.Close()

	store := newStore(t)
	client := api.New(server.URL, api.WithTokenSource(store))
	svc := auth.NewService(client, store)

	require.NoError(t, svc.Login(context.Background(), "dev@verdant.local", "hunter2"))

	// The persisted token rides on the next authenticated call.
	_, err := client.Do(context.Background(), api.Call{
		Op:            "get user info",
		Method:        http.MethodGet,
		Path:          "/user/myInfo",
		Authenticated: true,
	})
	require.NoError(t, err)
	assert.Equal(t, "Bearer tok-rt", gotAuth.Load())

	require.NoError(t, svc.Logout(context.Background()))

	// And after logout the same call fails before reaching the network.
	_, err = client.Do(context.Background(), api.Call{
		Op:            "get user info",
		Method:        http.MethodGet,
		Path:          "/user/myInfo",
		Authenticated: true,
	})
	assert.ErrorIs(t, err, api.ErrNoSession)
}

func TestService_VerifyOTP(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var req map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		json.NewEncoder(w).Encode(map[string]any{
			"code":   200,
			"result": map[string]any{"authenticated": req["otp"] == "123456"},
		})
	}))
	defer server.Close()

	svc := auth.NewService(api.New(server.URL), newStore(t))

	ok, err := svc.VerifyOTP(context.Background(), "dev@verdant.local", "123456")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = svc.VerifyOTP(context.Background(), "dev@verdant.local", "000000")
	require.NoError(t, err)
	assert.False(t, ok, "a wrong code is a rejection, not an error")
}

func TestService_ChangePassword_PersistsReissuedToken(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]any{
			"code":   200,
			"result": map[string]any{"token": "tok-rotated", "authenticated": true},
		})
	}))
	defer server.Close()

	store := newStore(t)
	svc := auth.NewService(api.New(server.URL), store)

	err := svc.ChangePassword(context.Background(), "dev@verdant.local", "newpass", "newpass")
	require.NoError(t, err)

	token, ok, err := store.Token()
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "tok-rotated", token)
}
