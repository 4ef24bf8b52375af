// Package user implements profile reads and updates.
package user

import (
	"context"
	"net/http"
	"strings"

	"github.com/verdantlabs/verdant/api"
)

// Info is the full profile shape returned by /user/myInfo.
type Info struct {
	Email       string `json:"email"`
	FirstName   string `json:"firstName"`
	LastName    string `json:"lastName"`
	DateOfBirth string `json:"dob,omitempty"`
	AvatarURL   string `json:"avatarUrl,omitempty"`
}

// Profile is the reduced shape returned by /users/me.
type Profile struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	FullName  string `json:"fullName,omitempty"`
	AvatarURL string `json:"avatarUrl,omitempty"`
}

// Update carries the mutable profile fields. First and last name are
// mandatory; the avatar is optional.
type Update struct {
	FirstName string
	LastName  string
	Avatar    *api.Upload
}

// Service reads and mutates the authenticated user's profile. Profile calls
// are single-attempt, like the auth calls they sit next to.
type Service struct {
	client *api.Client
}

// NewService creates a user service over the given transport.
func NewService(client *api.Client) *Service {
	return &Service{client: client}
}

// Info fetches the authenticated user's profile.
func (s *Service) Info(ctx context.Context) (Info, error) {
	data, err := s.client.Do(ctx, api.Call{
		Op:            "get user info",
		Method:        http.MethodGet,
		Path:          "/user/myInfo",
		Authenticated: true,
		Fallback:      "failed to get user info",
	})
	if err != nil {
		return Info{}, err
	}
	return api.DecodeEnvelope[Info]("get user info", data, "failed to get user info")
}

// Update mutates the profile. Names are validated locally before any
// network call; when an avatar is supplied it is sent as a binary multipart
// part alongside the text fields.
func (s *Service) Update(ctx context.Context, upd Update) (Info, error) {
	firstName := strings.TrimSpace(upd.FirstName)
	lastName := strings.TrimSpace(upd.LastName)
	if firstName == "" {
		return Info{}, &api.ValidationError{Field: "firstName", Reason: "first name is required"}
	}
	if lastName == "" {
		return Info{}, &api.ValidationError{Field: "lastName", Reason: "last name is required"}
	}

	fields := map[string]string{
		"firstName": firstName,
		"lastName":  lastName,
	}
	files := map[string]api.Upload{}
	if upd.Avatar != nil {
		files["avatar"] = *upd.Avatar
	}

	body, contentType, err := api.MultipartBody(fields, files)
	if err != nil {
		return Info{}, api.NewFatalError(err)
	}

	data, err := s.client.Do(ctx, api.Call{
		Op:            "update user info",
		Method:        http.MethodPatch,
		Path:          "/user/update-user",
		Body:          body,
		ContentType:   contentType,
		Authenticated: true,
		Fallback:      "failed to update user info",
	})
	if err != nil {
		return Info{}, err
	}
	return api.DecodeEnvelope[Info]("update user info", data, "failed to update user info")
}

// Profile fetches the reduced profile used by the account header.
func (s *Service) Profile(ctx context.Context) (Profile, error) {
	data, err := s.client.Do(ctx, api.Call{
		Op:            "get user profile",
		Method:        http.MethodGet,
		Path:          "/users/me",
		Authenticated: true,
		Fallback:      "failed to fetch user profile",
	})
	if err != nil {
		return Profile{}, err
	}

	var p Profile
	if err := api.DecodeJSON("get user profile", data, &p); err != nil {
		return Profile{}, err
	}
	return p, nil
}
