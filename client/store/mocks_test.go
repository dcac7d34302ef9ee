package store

import (
	"context"
	"io"
	"sync"

	"github.com/stretchr/testify/mock"

	"activity-planner/client/api"
	"activity-planner/internal/models"
)

type activitiesAPIMock struct {
	mock.Mock
}

func (m *activitiesAPIMock) List(ctx context.Context) ([]models.Activity, error) {
	args := m.Called(ctx)
	var activities []models.Activity
	if val := args.Get(0); val != nil {
		activities = val.([]models.Activity)
	}
	return activities, args.Error(1)
}

func (m *activitiesAPIMock) Details(ctx context.Context, activityID string) (models.Activity, error) {
	args := m.Called(ctx, activityID)
	var activity models.Activity
	if val := args.Get(0); val != nil {
		activity = val.(models.Activity)
	}
	return activity, args.Error(1)
}

func (m *activitiesAPIMock) Create(ctx context.Context, activity models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *activitiesAPIMock) Update(ctx context.Context, activity models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *activitiesAPIMock) Delete(ctx context.Context, activityID string) error {
	args := m.Called(ctx, activityID)
	return args.Error(0)
}

func (m *activitiesAPIMock) Attend(ctx context.Context, activityID string) error {
	args := m.Called(ctx, activityID)
	return args.Error(0)
}

func (m *activitiesAPIMock) Unattend(ctx context.Context, activityID string) error {
	args := m.Called(ctx, activityID)
	return args.Error(0)
}

type profilesAPIMock struct {
	mock.Mock
}

func (m *profilesAPIMock) Get(ctx context.Context, username string) (models.Profile, error) {
	args := m.Called(ctx, username)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *profilesAPIMock) UploadPhoto(ctx context.Context, filename string, content io.Reader) (models.Photo, error) {
	args := m.Called(ctx, filename, content)
	var photo models.Photo
	if val := args.Get(0); val != nil {
		photo = val.(models.Photo)
	}
	return photo, args.Error(1)
}

func (m *profilesAPIMock) SetMainPhoto(ctx context.Context, photoID string) error {
	args := m.Called(ctx, photoID)
	return args.Error(0)
}

func (m *profilesAPIMock) DeletePhoto(ctx context.Context, photoID string) error {
	args := m.Called(ctx, photoID)
	return args.Error(0)
}

func (m *profilesAPIMock) UpdateBio(ctx context.Context, displayName string, bio string) error {
	args := m.Called(ctx, displayName, bio)
	return args.Error(0)
}

type usersAPIMock struct {
	mock.Mock
}

func (m *usersAPIMock) Register(ctx context.Context, username, displayName, password string) (models.User, error) {
	args := m.Called(ctx, username, displayName, password)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *usersAPIMock) Login(ctx context.Context, username, password string) (models.User, error) {
	args := m.Called(ctx, username, password)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *usersAPIMock) Current(ctx context.Context) (models.User, error) {
	args := m.Called(ctx)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

var _ api.Activities = (*activitiesAPIMock)(nil)
var _ api.Profiles = (*profilesAPIMock)(nil)
var _ api.Users = (*usersAPIMock)(nil)

// recordingNotifier captures toast messages for assertions.
type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Error(message string) {
	n.mu.Lock()
	n.messages = append(n.messages, message)
	n.mu.Unlock()
}

func (n *recordingNotifier) Messages() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.messages...)
}

// fakeChannel records channel calls without a live connection.
type fakeChannel struct {
	mu     sync.Mutex
	opened []string
	sent   []string
	closed int
}

func (c *fakeChannel) Open(ctx context.Context, activityID string, token string) {
	c.mu.Lock()
	c.opened = append(c.opened, activityID)
	c.mu.Unlock()
}

func (c *fakeChannel) SendComment(body string) error {
	c.mu.Lock()
	c.sent = append(c.sent, body)
	c.mu.Unlock()
	return nil
}

func (c *fakeChannel) Close() {
	c.mu.Lock()
	c.closed++
	c.mu.Unlock()
}
