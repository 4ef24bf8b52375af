// Package auth implements the authentication operations: login, logout,
// registration, and the email/OTP/password-reset sequence. Auth calls are
// never retried; repeated attempts against these endpoints can trip
// server-side lockout policies.
package auth

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/verdantlabs/verdant/api"
	"github.com/verdantlabs/verdant/session"
)

// ErrInvalidCredentials is returned when the backend rejects a login.
var ErrInvalidCredentials = errors.New("invalid credentials")

// Service performs authentication against the backend and owns the local
// session lifecycle around it.
type Service struct {
	client *api.Client
	store  *session.Store
	signal *session.Signal
	logger *slog.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Service) {
		s.logger = logger
	}
}

// WithSignal attaches the session refresh signal, reset on logout.
func WithSignal(sig *session.Signal) Option {
	return func(s *Service) {
		s.signal = sig
	}
}

// NewService creates an auth service over the given transport and store.
func NewService(client *api.Client, store *session.Store, opts ...Option) *Service {
	s := &Service{
		client: client,
		store:  store,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// tokenResult is the authenticated-flag envelope payload shared by login,
// OTP verification, and password change.
type tokenResult struct {
	Token         string `json:"token"`
	Authenticated bool   `json:"authenticated"`
}

// Login authenticates with email and password and persists the returned
// bearer token.
func (s *Service) Login(ctx context.Context, email, password string) error {
	body, err := json.Marshal(map[string]string{
		"email":    email,
		"password": password,
	})
	if err != nil {
		return fmt.Errorf("login: encode request: %w", err)
	}

	data, err := s.client.Do(ctx, api.Call{
		Op:          "login",
		Method:      http.MethodPost,
		Path:        "/auth/login",
		Body:        body,
		ContentType: "application/json",
		Fallback:    "invalid credentials",
	})
	if err != nil {
		return err
	}

	result, err := api.DecodeEnvelope[tokenResult]("login", data, "invalid credentials")
	if err != nil {
		return err
	}
	if !result.Authenticated || result.Token == "" {
		return ErrInvalidCredentials
	}

	if err := s.store.SetToken(result.Token); err != nil {
		return fmt.Errorf("login: persist token: %w", err)
	}
	s.logger.Debug("session established", "email", email)
	return nil
}

// Logout invalidates the session server-side and clears local state. Local
// state is cleared even when the server call fails; a token the server may
// already consider dead is worthless locally.
func (s *Service) Logout(ctx context.Context) error {
	token, ok, err := s.store.Token()
	if err != nil {
		return fmt.Errorf("logout: read session token: %w", err)
	}
	if !ok {
		return api.ErrNoSession
	}

	body, err := json.Marshal(map[string]string{"token": token})
	if err != nil {
		return fmt.Errorf("logout: encode request: %w", err)
	}

	_, callErr := s.client.Do(ctx, api.Call{
		Op:            "logout",
		Method:        http.MethodPost,
		Path:          "/auth/logout",
		Body:          body,
		ContentType:   "application/json",
		Authenticated: true,
		Fallback:      "logout failed",
	})

	if err := s.store.Clear(); err != nil {
		return fmt.Errorf("logout: clear session: %w", err)
	}
	if s.signal != nil {
		s.signal.Reset()
	}
	s.logger.Debug("session cleared")
	return callErr
}

// VerifyEmail asks the backend to start an OTP challenge for the address.
// The returned flag gates progression to the OTP step.
func (s *Service) VerifyEmail(ctx context.Context, email string) (bool, error) {
	return s.verify(ctx, "verify email", "/auth/verifyEmail", map[string]string{
		"email": email,
	})
}

// VerifyOTP validates the one-time code sent to the address. The returned
// flag gates progression to the password-reset step.
func (s *Service) VerifyOTP(ctx context.Context, email, otp string) (bool, error) {
	return s.verify(ctx, "verify otp", "/auth/verify-otp", map[string]string{
		"email": email,
		"otp":   otp,
	})
}

func (s *Service) verify(ctx context.Context, op, path string, payload map[string]string) (bool, error) {
	body, err := json.Marshal(payload)
	if err != nil {
		return false, fmt.Errorf("%s: encode request: %w", op, err)
	}

	data, err := s.client.Do(ctx, api.Call{
		Op:          op,
		Method:      http.MethodPost,
		Path:        path,
		Body:        body,
		ContentType: "application/json",
		Fallback:    "verification failed",
	})
	if err != nil {
		return false, err
	}

	result, err := api.DecodeEnvelope[tokenResult](op, data, "verification failed")
	if err != nil {
		return false, err
	}
	return result.Authenticated, nil
}

// ChangePassword sets a new password after OTP verification. The endpoint
// re-authenticates the user, so the newly issued token is persisted.
func (s *Service) ChangePassword(ctx context.Context, email, newPassword, confirmPassword string) error {
	body, err := json.Marshal(map[string]string{
		"email":           email,
		"newPassword":     newPassword,
		"confirmPassword": confirmPassword,
	})
	if err != nil {
		return fmt.Errorf("change password: encode request: %w", err)
	}

	data, err := s.client.Do(ctx, api.Call{
		Op:          "change password",
		Method:      http.MethodPost,
		Path:        "/auth/changePassword",
		Body:        body,
		ContentType: "application/json",
		Fallback:    "password change failed",
	})
	if err != nil {
		return err
	}

	result, err := api.DecodeEnvelope[tokenResult]("change password", data, "password change failed")
	if err != nil {
		return err
	}
	if !result.Authenticated {
		// The backend signals soft rejections as 200 + authenticated:false,
		// the same way verify-otp does.
		return &api.ServerError{Op: "change password", Status: http.StatusOK, Message: "password change rejected"}
	}
	if result.Token != "" {
		if err := s.store.SetToken(result.Token); err != nil {
			return fmt.Errorf("change password: persist token: %w", err)
		}
	}
	return nil
}

// Registration is the payload for creating an account.
type Registration struct {
	Email     string `json:"email"`
	Password  string `json:"password"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
}

// registerResponse is the register endpoint's shape. Unlike the other auth
// endpoints it carries no {code, result} envelope.
type registerResponse struct {
	Token string       `json:"token"`
	User  session.User `json:"user"`
}

// Register creates an account and persists both the issued token and a
// snapshot of the new user.
func (s *Service) Register(ctx context.Context, reg Registration) (session.User, error) {
	body, err := json.Marshal(reg)
	if err != nil {
		return session.User{}, fmt.Errorf("register: encode request: %w", err)
	}

	data, err := s.client.Do(ctx, api.Call{
		Op:          "register",
		Method:      http.MethodPost,
		Path:        "/auth/register",
		Body:        body,
		ContentType: "application/json",
		Fallback:    "registration failed",
	})
	if err != nil {
		return session.User{}, err
	}

	var resp registerResponse
	if err := api.DecodeJSON("register", data, &resp); err != nil {
		return session.User{}, err
	}
	if resp.Token == "" {
		return session.User{}, &api.ServerError{Op: "register", Status: http.StatusOK, Message: "registration failed"}
	}

	if err := s.store.SetToken(resp.Token); err != nil {
		return session.User{}, fmt.Errorf("register: persist token: %w", err)
	}
	if err := s.store.SetUser(resp.User); err != nil {
		return session.User{}, fmt.Errorf("register: persist user snapshot: %w", err)
	}
	return resp.User, nil
}
