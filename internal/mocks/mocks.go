package mocks

import (
	"context"

	"github.com/stretchr/testify/mock"

	"activity-planner/internal/models"
	"activity-planner/internal/repositories"
)

type ActivityRepositoryMock struct {
	mock.Mock
}

func (m *ActivityRepositoryMock) ListActivities(ctx context.Context) ([]models.Activity, error) {
	args := m.Called(ctx)
	var activities []models.Activity
	if val := args.Get(0); val != nil {
		activities = val.([]models.Activity)
	}
	return activities, args.Error(1)
}

func (m *ActivityRepositoryMock) GetActivity(ctx context.Context, activityID string) (models.Activity, error) {
	args := m.Called(ctx, activityID)
	var activity models.Activity
	if val := args.Get(0); val != nil {
		activity = val.(models.Activity)
	}
	return activity, args.Error(1)
}

func (m *ActivityRepositoryMock) CreateActivity(ctx context.Context, activity models.Activity, hostUsername string) error {
	args := m.Called(ctx, activity, hostUsername)
	return args.Error(0)
}

func (m *ActivityRepositoryMock) UpdateActivity(ctx context.Context, activity models.Activity) error {
	args := m.Called(ctx, activity)
	return args.Error(0)
}

func (m *ActivityRepositoryMock) DeleteActivity(ctx context.Context, activityID string) error {
	args := m.Called(ctx, activityID)
	return args.Error(0)
}

func (m *ActivityRepositoryMock) AddAttendee(ctx context.Context, activityID string, username string) error {
	args := m.Called(ctx, activityID, username)
	return args.Error(0)
}

func (m *ActivityRepositoryMock) RemoveAttendee(ctx context.Context, activityID string, username string) error {
	args := m.Called(ctx, activityID, username)
	return args.Error(0)
}

type CommentRepositoryMock struct {
	mock.Mock
}

func (m *CommentRepositoryMock) CreateComment(ctx context.Context, activityID string, username string, body string) (models.Comment, error) {
	args := m.Called(ctx, activityID, username, body)
	var comment models.Comment
	if val := args.Get(0); val != nil {
		comment = val.(models.Comment)
	}
	return comment, args.Error(1)
}

func (m *CommentRepositoryMock) ListComments(ctx context.Context, activityID string) ([]models.Comment, error) {
	args := m.Called(ctx, activityID)
	var comments []models.Comment
	if val := args.Get(0); val != nil {
		comments = val.([]models.Comment)
	}
	return comments, args.Error(1)
}

type ProfileRepositoryMock struct {
	mock.Mock
}

func (m *ProfileRepositoryMock) CreateUser(ctx context.Context, username string, displayName string, passwordHash string) error {
	args := m.Called(ctx, username, displayName, passwordHash)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) GetPasswordHash(ctx context.Context, username string) (string, error) {
	args := m.Called(ctx, username)
	return args.String(0), args.Error(1)
}

func (m *ProfileRepositoryMock) GetProfile(ctx context.Context, username string) (models.Profile, error) {
	args := m.Called(ctx, username)
	var profile models.Profile
	if val := args.Get(0); val != nil {
		profile = val.(models.Profile)
	}
	return profile, args.Error(1)
}

func (m *ProfileRepositoryMock) AddPhoto(ctx context.Context, username string, photo models.Photo) error {
	args := m.Called(ctx, username, photo)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) SetMainPhoto(ctx context.Context, username string, photoID string) error {
	args := m.Called(ctx, username, photoID)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) DeletePhoto(ctx context.Context, username string, photoID string) error {
	args := m.Called(ctx, username, photoID)
	return args.Error(0)
}

func (m *ProfileRepositoryMock) UpdateBio(ctx context.Context, username string, displayName string, bio string) error {
	args := m.Called(ctx, username, displayName, bio)
	return args.Error(0)
}

var _ repositories.ActivityRepository = (*ActivityRepositoryMock)(nil)
var _ repositories.CommentRepository = (*CommentRepositoryMock)(nil)
var _ repositories.ProfileRepository = (*ProfileRepositoryMock)(nil)
