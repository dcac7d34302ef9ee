package store

import (
	"context"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"activity-planner/client/api"
	"activity-planner/internal/models"
)

func newTestRoot(t *testing.T, activities api.Activities, notifier Notifier, channel CommentChannel) *Root {
	t.Helper()
	deps := Deps{
		Activities: activities,
		Profiles:   new(profilesAPIMock),
		Users:      new(usersAPIMock),
		Notifier:   notifier,
		Logger:     zerolog.Nop(),
	}
	if channel != nil {
		deps.NewChannel = func(func(models.Comment)) CommentChannel { return channel }
	}
	root := NewRoot(deps)
	root.Users.setUser(&models.User{Username: "alice", DisplayName: "Alice", Image: "/img/alice.png", Token: "tok"})
	return root
}

func TestLoadActivitiesPopulatesRegistry(t *testing.T) {
	activities := new(activitiesAPIMock)
	root := newTestRoot(t, activities, nil, nil)

	activities.On("List", mock.Anything).Return([]models.Activity{
		{ID: "a1", Title: "hike"},
		{ID: "a2", Title: "film"},
	}, nil).Once()

	require.NoError(t, root.Activities.LoadActivities(context.Background()))
	assert.Equal(t, 2, root.Activities.Registry().Len())
	assert.False(t, root.Activities.LoadingInitial())
	activities.AssertExpectations(t)
}

func TestLoadActivityCacheHitSkipsAPI(t *testing.T) {
	activities := new(activitiesAPIMock)
	root := newTestRoot(t, activities, nil, nil)

	cached := &models.Activity{ID: "a1", Title: "hike"}
	root.Activities.Registry().Upsert(cached)

	got, err := root.Activities.LoadActivity(context.Background(), "a1")
	require.NoError(t, err)
	assert.Same(t, cached, got)
	assert.Same(t, cached, root.Activities.Activity())
	activities.AssertExpectations(t)
}

func TestLoadActivityFetchesOnMiss(t *testing.T) {
	activities := new(activitiesAPIMock)
	root := newTestRoot(t, activities, nil, nil)

	activities.On("Details", mock.Anything, "a1").Return(models.Activity{ID: "a1", Title: "hike"}, nil).Once()

	got, err := root.Activities.LoadActivity(context.Background(), "a1")
	require.NoError(t, err)
	assert.Equal(t, "hike", got.Title)

	cached, ok := root.Activities.Registry().Get("a1")
	require.True(t, ok)
	assert.Same(t, got, cached)
	activities.AssertExpectations(t)
}

func TestLoadActivityNotFound(t *testing.T) {
	activities := new(activitiesAPIMock)
	root := newTestRoot(t, activities, nil, nil)

	activities.On("Details", mock.Anything, "ghost").Return(models.Activity{}, api.ErrNotFound).Once()

	_, err := root.Activities.LoadActivity(context.Background(), "ghost")
	assert.ErrorIs(t, err, api.ErrNotFound)
	assert.Equal(t, 0, root.Activities.Registry().Len())
	activities.AssertExpectations(t)
}

func TestCreateActivitySeedsHost(t *testing.T) {
	activities := new(activitiesAPIMock)
	root := newTestRoot(t, activities, nil, nil)

	activity := models.Activity{ID: "a1", Title: "hike", Date: time.Now()}
	activities.On("Create", mock.Anything, activity).Return(nil).Once()

	require.NoError(t, root.Activities.CreateActivity(context.Background(), activity))

	cached, ok := root.Activities.Registry().Get("a1")
	require.True(t, ok)
	assert.True(t, cached.IsHost)
	assert.True(t, cached.IsGoing)
	require.Len(t, cached.Attendees, 1)
	assert.Equal(t, "alice", cached.Attendees[0].Username)
	assert.True(t, cached.Attendees[0].IsHost)
	assert.Empty(t, cached.Comments)
	assert.False(t, root.Activities.Submitting())
	activities.AssertExpectations(t)
}

func TestCreateActivityFailureLeavesCacheUntouched(t *testing.T) {
	activities := new(activitiesAPIMock)
	notifier := &recordingNotifier{}
	root := newTestRoot(t, activities, notifier, nil)

	activity := models.Activity{ID: "a1", Title: "hike"}
	activities.On("Create", mock.Anything, activity).Return(assert.AnError).Once()

	err := root.Activities.CreateActivity(context.Background(), activity)
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, 0, root.Activities.Registry().Len())
	assert.Equal(t, []string{"Problem submitting data"}, notifier.Messages())
	assert.False(t, root.Activities.Submitting())
	activities.AssertExpectations(t)
}

func TestEditActivityReplacesCacheEntry(t *testing.T) {
	activities := new(activitiesAPIMock)
	root := newTestRoot(t, activities, nil, nil)

	root.Activities.Registry().Upsert(&models.Activity{
		ID:    "a1",
		Title: "hike",
		Venue: "trailhead",
	})

	edited := models.Activity{ID: "a1", Title: "night hike"}
	activities.On("Update", mock.Anything, edited).Return(nil).Once()

	require.NoError(t, root.Activities.EditActivity(context.Background(), edited))

	cached, ok := root.Activities.Registry().Get("a1")
	require.True(t, ok)
	assert.Equal(t, "night hike", cached.Title)
	// full replacement, not a merge
	assert.Empty(t, cached.Venue)
	assert.Same(t, cached, root.Activities.Activity())
	activities.AssertExpectations(t)
}

func TestEditActivityFailureLeavesEntryIdentical(t *testing.T) {
	activities := new(activitiesAPIMock)
	notifier := &recordingNotifier{}
	root := newTestRoot(t, activities, notifier, nil)

	original := &models.Activity{ID: "a1", Title: "hike", Venue: "trailhead"}
	root.Activities.Registry().Upsert(original)
	snapshot := *original

	edited := models.Activity{ID: "a1", Title: "night hike"}
	activities.On("Update", mock.Anything, edited).Return(assert.AnError).Once()

	err := root.Activities.EditActivity(context.Background(), edited)
	assert.ErrorIs(t, err, assert.AnError)

	cached, ok := root.Activities.Registry().Get("a1")
	require.True(t, ok)
	assert.Equal(t, snapshot, *cached)
	assert.Equal(t, []string{"Problem submitting data"}, notifier.Messages())
	assert.False(t, root.Activities.Submitting())
	activities.AssertExpectations(t)
}

func TestDeleteActivityEvictsEntry(t *testing.T) {
	activities := new(activitiesAPIMock)
	root := newTestRoot(t, activities, nil, nil)

	root.Activities.Registry().Upsert(&models.Activity{ID: "a1"})
	activities.On("Delete", mock.Anything, "a1").Run(func(mock.Arguments) {
		// the per-element busy state is visible while the call is in flight
		assert.Equal(t, "a1", root.Activities.Target())
		assert.True(t, root.Activities.Submitting())
	}).Return(nil).Once()

	require.NoError(t, root.Activities.DeleteActivity(context.Background(), "a1"))
	_, ok := root.Activities.Registry().Get("a1")
	assert.False(t, ok)
	assert.Empty(t, root.Activities.Target())
	assert.False(t, root.Activities.Submitting())
	activities.AssertExpectations(t)
}

func TestDeleteActivityFailure(t *testing.T) {
	activities := new(activitiesAPIMock)
	notifier := &recordingNotifier{}
	root := newTestRoot(t, activities, notifier, nil)

	root.Activities.Registry().Upsert(&models.Activity{ID: "a1"})
	activities.On("Delete", mock.Anything, "a1").Return(assert.AnError).Once()

	err := root.Activities.DeleteActivity(context.Background(), "a1")
	assert.ErrorIs(t, err, assert.AnError)
	_, ok := root.Activities.Registry().Get("a1")
	assert.True(t, ok)
	assert.Equal(t, []string{"Problem deleting activity"}, notifier.Messages())
	assert.Empty(t, root.Activities.Target())
	activities.AssertExpectations(t)
}

func TestAttendThenUnattendRestoresAttendees(t *testing.T) {
	activities := new(activitiesAPIMock)
	root := newTestRoot(t, activities, nil, nil)

	activity := &models.Activity{
		ID:        "a1",
		Attendees: []models.Attendee{{Username: "bob", IsHost: true}},
	}
	root.Activities.Registry().Upsert(activity)
	require.True(t, root.Activities.SelectActivity("a1"))

	activities.On("Attend", mock.Anything, "a1").Return(nil).Once()
	require.NoError(t, root.Activities.Attend(context.Background()))
	assert.True(t, activity.IsGoing)
	require.Len(t, activity.Attendees, 2)
	assert.Equal(t, "alice", activity.Attendees[1].Username)

	activities.On("Unattend", mock.Anything, "a1").Return(nil).Once()
	require.NoError(t, root.Activities.Unattend(context.Background()))
	assert.False(t, activity.IsGoing)
	require.Len(t, activity.Attendees, 1)
	assert.Equal(t, "bob", activity.Attendees[0].Username)
	activities.AssertExpectations(t)
}

func TestAttendFailureLeavesCacheUntouched(t *testing.T) {
	activities := new(activitiesAPIMock)
	notifier := &recordingNotifier{}
	root := newTestRoot(t, activities, notifier, nil)

	activity := &models.Activity{ID: "a1", Attendees: []models.Attendee{{Username: "bob", IsHost: true}}}
	root.Activities.Registry().Upsert(activity)
	require.True(t, root.Activities.SelectActivity("a1"))
	snapshot := *activity

	activities.On("Attend", mock.Anything, "a1").Return(assert.AnError).Once()

	err := root.Activities.Attend(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.Equal(t, snapshot, *activity)
	assert.Equal(t, []string{"Problem signing up to activity"}, notifier.Messages())
	assert.False(t, root.Activities.Loading())
	activities.AssertExpectations(t)
}

func TestUnattendFailureNotifies(t *testing.T) {
	activities := new(activitiesAPIMock)
	notifier := &recordingNotifier{}
	root := newTestRoot(t, activities, notifier, nil)

	activity := &models.Activity{
		ID:        "a1",
		IsGoing:   true,
		Attendees: []models.Attendee{{Username: "bob", IsHost: true}, {Username: "alice"}},
	}
	root.Activities.Registry().Upsert(activity)
	require.True(t, root.Activities.SelectActivity("a1"))

	activities.On("Unattend", mock.Anything, "a1").Return(assert.AnError).Once()

	err := root.Activities.Unattend(context.Background())
	assert.ErrorIs(t, err, assert.AnError)
	assert.True(t, activity.IsGoing)
	assert.Len(t, activity.Attendees, 2)
	assert.Equal(t, []string{"Problem cancelling attendance"}, notifier.Messages())
	activities.AssertExpectations(t)
}

func TestAttendWithoutActiveActivity(t *testing.T) {
	root := newTestRoot(t, new(activitiesAPIMock), nil, nil)

	assert.ErrorIs(t, root.Activities.Attend(context.Background()), ErrNoActiveActivity)
	assert.ErrorIs(t, root.Activities.Unattend(context.Background()), ErrNoActiveActivity)
}

func TestActivitiesByDateGroupsCache(t *testing.T) {
	root := newTestRoot(t, new(activitiesAPIMock), nil, nil)

	day := time.Date(2026, 9, 10, 18, 0, 0, 0, time.UTC)
	root.Activities.Registry().Upsert(&models.Activity{ID: "a1", Date: day})
	root.Activities.Registry().Upsert(&models.Activity{ID: "a2", Date: day})

	groups := root.Activities.ActivitiesByDate()
	require.Len(t, groups, 1)
	require.Len(t, groups[0].Activities, 2)
	assert.Equal(t, "a1", groups[0].Activities[0].ID)
	assert.Equal(t, "a2", groups[0].Activities[1].ID)
}

func TestReceiveCommentAppendsInArrivalOrder(t *testing.T) {
	root := newTestRoot(t, new(activitiesAPIMock), nil, nil)

	activity := &models.Activity{ID: "a1"}
	root.Activities.Registry().Upsert(activity)
	require.True(t, root.Activities.SelectActivity("a1"))

	var notified int
	root.Activities.Registry().Subscribe(func() { notified++ })

	root.Activities.ReceiveComment(models.Comment{ID: "c1", Body: "first"})
	root.Activities.ReceiveComment(models.Comment{ID: "c2", Body: "second"})

	require.Len(t, activity.Comments, 2)
	assert.Equal(t, "c1", activity.Comments[0].ID)
	assert.Equal(t, "c2", activity.Comments[1].ID)
	assert.Equal(t, 2, notified)
}

func TestReceiveCommentWithoutActiveActivityDropped(t *testing.T) {
	root := newTestRoot(t, new(activitiesAPIMock), nil, nil)

	root.Activities.ReceiveComment(models.Comment{ID: "c1"})
	assert.Nil(t, root.Activities.Activity())
}

func TestSendCommentGoesThroughChannelOnly(t *testing.T) {
	channel := &fakeChannel{}
	root := newTestRoot(t, new(activitiesAPIMock), nil, channel)

	activity := &models.Activity{ID: "a1"}
	root.Activities.Registry().Upsert(activity)
	require.True(t, root.Activities.SelectActivity("a1"))

	require.NoError(t, root.Activities.SendComment("hello"))
	assert.Equal(t, []string{"hello"}, channel.sent)
	// the author's copy arrives over the channel like everyone else's
	assert.Empty(t, activity.Comments)
}

func TestCommentChannelLifecycle(t *testing.T) {
	channel := &fakeChannel{}
	root := newTestRoot(t, new(activitiesAPIMock), nil, channel)

	// no active activity: nothing to open
	root.Activities.OpenCommentChannel(context.Background())
	assert.Empty(t, channel.opened)

	root.Activities.Registry().Upsert(&models.Activity{ID: "a1"})
	require.True(t, root.Activities.SelectActivity("a1"))

	root.Activities.OpenCommentChannel(context.Background())
	assert.Equal(t, []string{"a1"}, channel.opened)

	root.Activities.CloseCommentChannel()
	assert.Equal(t, 1, channel.closed)
}
