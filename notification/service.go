// Package notification implements the notification operations: unread
// badge count, typed/unread listings, and the bulk mark-all-read
// transition. These calls go through the transport's retry policy.
package notification

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/verdantlabs/verdant/api"
	"github.com/verdantlabs/verdant/session"
)

// Actor is the reduced user shape embedded in a notification.
type Actor struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Notification is one server-produced notification. Read state is only ever
// mutated in bulk via MarkAllRead.
type Notification struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	Type      string `json:"type"`
	ImageURL  string `json:"imageUrl,omitempty"`
	Read      bool   `json:"read"`
	ActionURL string `json:"actionUrl,omitempty"`
	CreatedAt string `json:"createdAt"`
	User      Actor  `json:"user"`
}

// Service performs notification operations against the backend.
type Service struct {
	client *api.Client
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

// WithSignal attaches the session refresh signal, notified after the bulk
// read-state mutation.
func WithSignal(sig *session.Signal) Option {
	return func(s *Service) {
		s.signal = sig
	}
}

// NewService creates a notification service over the given transport.
func NewService(client *api.Client, opts ...Option) *Service {
	s := &Service{
		client: client,
		logger: slog.Default(),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// UnreadCount returns the number of unread notifications. The endpoint
// responds with a bare integer as text.
func (s *Service) UnreadCount(ctx context.Context) (int, error) {
	data, err := s.client.Do(ctx, api.Call{
		Op:            "unread count",
		Method:        http.MethodGet,
		Path:          "/notifications/count/unread",
		Authenticated: true,
		Retry:         true,
		Fallback:      "failed to fetch unread count",
	})
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(strings.TrimSpace(string(data)))
	if err != nil {
		return 0, api.NewParseError("unread count", err)
	}
	return count, nil
}

// ByType fetches one page of notifications carrying the given type tag.
func (s *Service) ByType(ctx context.Context, typ string, page int) (api.Page[Notification], error) {
	data, err := s.client.Do(ctx, api.Call{
		Op:     "notifications by type",
		Method: http.MethodGet,
		Path:   "/notifications/by-type",
		Query: url.Values{
			"type": {typ},
			"page": {strconv.Itoa(page)},
		},
		Authenticated: true,
		Retry:         true,
		Fallback:      "failed to fetch notifications",
	})
	if err != nil {
		return api.Page[Notification]{}, err
	}
	return api.DecodePage[Notification]("notifications by type", data)
}

// Unread returns every currently unread notification, unpaginated.
func (s *Service) Unread(ctx context.Context) ([]Notification, error) {
	data, err := s.client.Do(ctx, api.Call{
		Op:            "unread notifications",
		Method:        http.MethodGet,
		Path:          "/notifications/unread",
		Authenticated: true,
		Retry:         true,
		Fallback:      "failed to fetch unread notifications",
	})
	if err != nil {
		return nil, err
	}

	var list []Notification
	if err := api.DecodeJSON("unread notifications", data, &list); err != nil {
		return nil, err
	}
	return list, nil
}

// MarkAllRead marks every notification as read. The transition is
// idempotent server-side, so retries are safe.
func (s *Service) MarkAllRead(ctx context.Context) error {
	_, err := s.client.Do(ctx, api.Call{
		Op:            "mark all read",
		Method:        http.MethodPatch,
		Path:          "/notifications/mark-all-read",
		Authenticated: true,
		Retry:         true,
		Fallback:      "failed to mark notifications as read",
	})
	if err != nil {
		return err
	}

	if s.signal != nil {
		s.signal.Notify()
	}
	s.logger.Debug("notifications marked read")
	return nil
}
