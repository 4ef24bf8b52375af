// Package plant implements the plant operations: listing, creation, image
// upload, analysis details, and upload history. These calls go through the
// transport's retry policy.
package plant

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"github.com/verdantlabs/verdant/api"
	"github.com/verdantlabs/verdant/session"
)

// recentCount is how many plants the home view shows.
const recentCount = 5

// Service performs plant operations against the backend.
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

// WithSignal attaches the session refresh signal, notified after mutations.
func WithSignal(sig *session.Signal) Option {
	return func(s *Service) {
		s.signal = sig
	}
}

// NewService creates a plant service over the given transport.
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

// List fetches one page of the caller's uploaded plants.
func (s *Service) List(ctx context.Context, page int) (api.Page[Plant], error) {
	data, err := s.client.Do(ctx, api.Call{
		Op:            "list plants",
		Method:        http.MethodGet,
		Path:          "/plants/my-uploads",
		Query:         url.Values{"page": {strconv.Itoa(page)}},
		Authenticated: true,
		Retry:         true,
		Fallback:      "failed to fetch plants",
	})
	if err != nil {
		return api.Page[Plant]{}, err
	}
	return api.DecodePage[Plant]("list plants", data)
}

// Recent returns the most recently added plants, newest first. The backend
// returns page content in ascending creation order, so this takes the last
// entries of page 0 and reverses them; if the server ordering ever changes
// this policy changes meaning with it.
func (s *Service) Recent(ctx context.Context) ([]Plant, error) {
	page, err := s.List(ctx, 0)
	if err != nil {
		return nil, err
	}

	content := page.Content
	start := len(content) - recentCount
	if start < 0 {
		start = 0
	}
	tail := content[start:]

	recent := make([]Plant, 0, len(tail))
	for i := len(tail) - 1; i >= 0; i-- {
		recent = append(recent, tail[i])
	}
	return recent, nil
}

// Create submits a new plant with its first photo. Name and image are
// mandatory; the calling surface validates presence before invoking this.
func (s *Service) Create(ctx context.Context, name string, image api.Upload) (Plant, error) {
	body, contentType, err := api.MultipartBody(
		map[string]string{"name": name},
		map[string]api.Upload{"image": image},
	)
	if err != nil {
		return Plant{}, api.NewFatalError(err)
	}

	data, err := s.client.Do(ctx, api.Call{
		Op:            "create plant",
		Method:        http.MethodPost,
		Path:          "/plants/create",
		Body:          body,
		ContentType:   contentType,
		Authenticated: true,
		Retry:         true,
		Fallback:      "failed to create plant",
	})
	if err != nil {
		return Plant{}, err
	}

	var created Plant
	if err := api.DecodeJSON("create plant", data, &created); err != nil {
		return Plant{}, err
	}

	s.notify()
	s.logger.Debug("plant created", "id", created.ID, "name", created.Name)
	return created, nil
}

// Details fetches the latest analysis snapshot for a plant. An empty
// response body means the backend has not analyzed an image yet; the
// returned placeholder carries the requested ID with nil stage and species
// and Analyzed() == false. Transport failures and malformed bodies are
// errors, so "not yet analyzed" stays distinguishable from "fetch failed".
func (s *Service) Details(ctx context.Context, id string) (Plant, error) {
	data, err := s.client.Do(ctx, api.Call{
		Op:            "plant details",
		Method:        http.MethodGet,
		Path:          "/plants/latest",
		Query:         url.Values{"plantId": {id}},
		Authenticated: true,
		Retry:         true,
		Fallback:      "failed to fetch plant details",
	})
	if err != nil {
		return Plant{}, err
	}

	if len(bytes.TrimSpace(data)) == 0 {
		return Plant{ID: id, Name: "Unnamed Plant"}, nil
	}

	var raw detailsResponse
	if err := api.DecodeJSON("plant details", data, &raw); err != nil {
		return Plant{}, err
	}
	return raw.toPlant(id), nil
}

// History fetches one page of the append-only upload/analysis history for a
// plant. Ordering is server-defined.
func (s *Service) History(ctx context.Context, id string, page int) (api.Page[HistoryEntry], error) {
	data, err := s.client.Do(ctx, api.Call{
		Op:     "plant history",
		Method: http.MethodGet,
		Path:   "/plants/history",
		Query: url.Values{
			"plantId": {id},
			"page":    {strconv.Itoa(page)},
		},
		Authenticated: true,
		Retry:         true,
		Fallback:      "failed to fetch plant history",
	})
	if err != nil {
		return api.Page[HistoryEntry]{}, err
	}
	return api.DecodePage[HistoryEntry]("plant history", data)
}

// UploadImage associates a new photo with an existing plant. Analysis runs
// asynchronously server-side; callers re-fetch Details to observe the
// updated stage and species.
func (s *Service) UploadImage(ctx context.Context, plantID string, image api.Upload) error {
	body, contentType, err := api.MultipartBody(
		map[string]string{"plantId": plantID},
		map[string]api.Upload{"image": image},
	)
	if err != nil {
		return api.NewFatalError(err)
	}

	_, err = s.client.Do(ctx, api.Call{
		Op:            "upload plant image",
		Method:        http.MethodPost,
		Path:          "/plants/upload",
		Body:          body,
		ContentType:   contentType,
		Authenticated: true,
		Retry:         true,
		Fallback:      fmt.Sprintf("failed to upload image for plant %s", plantID),
	})
	if err != nil {
		return err
	}

	s.notify()
	s.logger.Debug("plant image uploaded", "plant_id", plantID)
	return nil
}

func (s *Service) notify() {
	if s.signal != nil {
		s.signal.Notify()
	}
}
