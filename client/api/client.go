// Package api is the HTTP client for the planner backend. The stores consume
// the narrow Activities/Profiles/Users interfaces so tests can substitute
// mocks for the remote collaborator.
package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"activity-planner/internal/models"
)

// ErrNotFound reports that the requested resource does not exist remotely.
var ErrNotFound = errors.New("not found")

// TokenSource supplies the bearer token attached to every request.
type TokenSource func() string

// Activities is the activity surface of the planner API.
type Activities interface {
	List(ctx context.Context) ([]models.Activity, error)
	Details(ctx context.Context, activityID string) (models.Activity, error)
	Create(ctx context.Context, activity models.Activity) error
	Update(ctx context.Context, activity models.Activity) error
	Delete(ctx context.Context, activityID string) error
	Attend(ctx context.Context, activityID string) error
	Unattend(ctx context.Context, activityID string) error
}

// Profiles is the profile and photo surface of the planner API.
type Profiles interface {
	Get(ctx context.Context, username string) (models.Profile, error)
	UploadPhoto(ctx context.Context, filename string, content io.Reader) (models.Photo, error)
	SetMainPhoto(ctx context.Context, photoID string) error
	DeletePhoto(ctx context.Context, photoID string) error
	UpdateBio(ctx context.Context, displayName string, bio string) error
}

// Users is the account surface of the planner API.
type Users interface {
	Register(ctx context.Context, username, displayName, password string) (models.User, error)
	Login(ctx context.Context, username, password string) (models.User, error)
	Current(ctx context.Context) (models.User, error)
}

// Client talks JSON over HTTP to the planner backend.
type Client struct {
	baseURL string
	http    *http.Client
	token   TokenSource
}

// NewClient builds a Client for the given base URL.
func NewClient(baseURL string, token TokenSource) *Client {
	return &Client{
		baseURL: baseURL,
		http:    &http.Client{Timeout: 30 * time.Second},
		token:   token,
	}
}

var _ Activities = (*Client)(nil)
var _ Profiles = (*Client)(nil)
var _ Users = (*Client)(nil)

// List returns all activities.
func (c *Client) List(ctx context.Context) ([]models.Activity, error) {
	var resp struct {
		Activities []models.Activity `json:"activities"`
	}
	if err := c.do(ctx, http.MethodGet, "/activities", nil, &resp); err != nil {
		return nil, err
	}
	return resp.Activities, nil
}

// Details fetches a single activity.
func (c *Client) Details(ctx context.Context, activityID string) (models.Activity, error) {
	var activity models.Activity
	err := c.do(ctx, http.MethodGet, "/activities/"+activityID, nil, &activity)
	return activity, err
}

// Create stores a new activity.
func (c *Client) Create(ctx context.Context, activity models.Activity) error {
	return c.do(ctx, http.MethodPost, "/activities", activity, nil)
}

// Update replaces an activity.
func (c *Client) Update(ctx context.Context, activity models.Activity) error {
	return c.do(ctx, http.MethodPut, "/activities/"+activity.ID, activity, nil)
}

// Delete removes an activity.
func (c *Client) Delete(ctx context.Context, activityID string) error {
	return c.do(ctx, http.MethodDelete, "/activities/"+activityID, nil, nil)
}

// Attend joins the activity as the current user.
func (c *Client) Attend(ctx context.Context, activityID string) error {
	return c.do(ctx, http.MethodPost, "/activities/"+activityID+"/attend", nil, nil)
}

// Unattend cancels the current user's attendance.
func (c *Client) Unattend(ctx context.Context, activityID string) error {
	return c.do(ctx, http.MethodDelete, "/activities/"+activityID+"/attend", nil, nil)
}

// Get fetches a user's profile.
func (c *Client) Get(ctx context.Context, username string) (models.Profile, error) {
	var profile models.Profile
	err := c.do(ctx, http.MethodGet, "/profiles/"+username, nil, &profile)
	return profile, err
}

// UploadPhoto uploads an image and returns the stored photo.
func (c *Client) UploadPhoto(ctx context.Context, filename string, content io.Reader) (models.Photo, error) {
	var buf bytes.Buffer
	writer := multipart.NewWriter(&buf)
	part, err := writer.CreateFormFile("file", filename)
	if err != nil {
		return models.Photo{}, err
	}
	if _, err := io.Copy(part, content); err != nil {
		return models.Photo{}, err
	}
	if err := writer.Close(); err != nil {
		return models.Photo{}, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/photos", &buf)
	if err != nil {
		return models.Photo{}, err
	}
	req.Header.Set("Content-Type", writer.FormDataContentType())
	c.authorize(req)

	var photo models.Photo
	err = c.send(req, &photo)
	return photo, err
}

// SetMainPhoto marks the photo as the user's main image.
func (c *Client) SetMainPhoto(ctx context.Context, photoID string) error {
	return c.do(ctx, http.MethodPost, "/photos/"+photoID+"/setmain", nil, nil)
}

// DeletePhoto removes a photo.
func (c *Client) DeletePhoto(ctx context.Context, photoID string) error {
	return c.do(ctx, http.MethodDelete, "/photos/"+photoID, nil, nil)
}

// UpdateBio updates the current user's display name and bio.
func (c *Client) UpdateBio(ctx context.Context, displayName string, bio string) error {
	payload := map[string]string{"displayName": displayName, "bio": bio}
	return c.do(ctx, http.MethodPut, "/profile", payload, nil)
}

// Register creates an account and returns the authenticated user.
func (c *Client) Register(ctx context.Context, username, displayName, password string) (models.User, error) {
	payload := map[string]string{"username": username, "displayName": displayName, "password": password}
	var user models.User
	err := c.do(ctx, http.MethodPost, "/users/register", payload, &user)
	return user, err
}

// Login authenticates and returns the user with a fresh token.
func (c *Client) Login(ctx context.Context, username, password string) (models.User, error) {
	payload := map[string]string{"username": username, "password": password}
	var user models.User
	err := c.do(ctx, http.MethodPost, "/users/login", payload, &user)
	return user, err
}

// Current returns the user behind the stored token.
func (c *Client) Current(ctx context.Context) (models.User, error) {
	var user models.User
	err := c.do(ctx, http.MethodGet, "/users/me", nil, &user)
	return user, err
}

func (c *Client) do(ctx context.Context, method, path string, body interface{}, out interface{}) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return err
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	c.authorize(req)

	return c.send(req, out)
}

func (c *Client) send(req *http.Request, out interface{}) error {
	resp, err := c.http.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusNotFound {
		return ErrNotFound
	}
	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		var remote struct {
			Error string `json:"error"`
		}
		_ = json.NewDecoder(resp.Body).Decode(&remote)
		if remote.Error != "" {
			return fmt.Errorf("%s %s: %s (status %d)", req.Method, req.URL.Path, remote.Error, resp.StatusCode)
		}
		return fmt.Errorf("%s %s: status %d", req.Method, req.URL.Path, resp.StatusCode)
	}

	if out == nil {
		return nil
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

func (c *Client) authorize(req *http.Request) {
	if c.token == nil {
		return
	}
	if token := c.token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
}
