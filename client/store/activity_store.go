package store

import (
	"context"
	"errors"
	"sync"

	"github.com/rs/zerolog"

	"activity-planner/client/api"
	"activity-planner/internal/models"
)

// ErrNoActiveActivity reports an attendance or comment operation without a
// selected activity.
var ErrNoActiveActivity = errors.New("no active activity")

// CommentChannel is the realtime collaborator delivering comment events for
// the currently viewed activity. At most one channel is live at a time;
// opening over a live channel is a caller error.
type CommentChannel interface {
	Open(ctx context.Context, activityID string, token string)
	SendComment(body string) error
	Close()
}

// ActivityStore coordinates activity mutations against the remote API and
// the local registry. Every mutation follows the same template: raise a
// flag, call the remote collaborator, commit to the cache only on success,
// and clear the flag on every path. Failures never touch the cache.
type ActivityStore struct {
	root     *Root
	api      api.Activities
	registry *Registry
	channel  CommentChannel
	log      zerolog.Logger
	notifier Notifier

	mu             sync.Mutex
	activity       *models.Activity
	loadingInitial bool
	submitting     bool
	loading        bool
	target         string
}

func newActivityStore(root *Root, activities api.Activities, registry *Registry, log zerolog.Logger, notifier Notifier) *ActivityStore {
	return &ActivityStore{
		root:     root,
		api:      activities,
		registry: registry,
		log:      log.With().Str("store", "activities").Logger(),
		notifier: notifier,
	}
}

// Registry exposes the underlying cache for reads and subscriptions.
func (s *ActivityStore) Registry() *Registry {
	return s.registry
}

// LoadActivities fetches all activities into the registry.
func (s *ActivityStore) LoadActivities(ctx context.Context) error {
	s.setLoadingInitial(true)
	defer s.setLoadingInitial(false)

	activities, err := s.api.List(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("load activities failed")
		return err
	}

	for i := range activities {
		activity := activities[i]
		s.registry.Upsert(&activity)
	}
	return nil
}

// LoadActivity returns the activity from cache, fetching it on a miss. A
// remote miss surfaces api.ErrNotFound; the caller decides the fallback.
func (s *ActivityStore) LoadActivity(ctx context.Context, activityID string) (*models.Activity, error) {
	if cached, ok := s.registry.Get(activityID); ok {
		s.setActivity(cached)
		return cached, nil
	}

	s.setLoadingInitial(true)
	defer s.setLoadingInitial(false)

	fetched, err := s.api.Details(ctx, activityID)
	if err != nil {
		if !errors.Is(err, api.ErrNotFound) {
			s.log.Error().Err(err).Str("activity_id", activityID).Msg("load activity failed")
		}
		return nil, err
	}

	s.registry.Upsert(&fetched)
	s.setActivity(&fetched)
	return &fetched, nil
}

// SelectActivity points the active-activity reference at a cached entry.
func (s *ActivityStore) SelectActivity(activityID string) bool {
	activity, ok := s.registry.Get(activityID)
	if !ok {
		return false
	}
	s.setActivity(activity)
	return true
}

// ClearActivity drops the active-activity reference.
func (s *ActivityStore) ClearActivity() {
	s.setActivity(nil)
}

// CreateActivity stores the activity remotely, then seeds the cache entry
// with the current user as host.
func (s *ActivityStore) CreateActivity(ctx context.Context, activity models.Activity) error {
	s.setSubmitting(true)
	defer s.setSubmitting(false)

	if err := s.api.Create(ctx, activity); err != nil {
		s.log.Error().Err(err).Str("activity_id", activity.ID).Msg("create activity failed")
		s.notifier.Error("Problem submitting data")
		return err
	}

	attendees := []models.Attendee{}
	if user := s.root.Users.Current(); user != nil {
		attendees = append(attendees, models.Attendee{
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Image:       user.Image,
			IsHost:      true,
		})
	}
	activity.Attendees = attendees
	activity.Comments = []models.Comment{}
	activity.IsHost = true
	activity.IsGoing = true

	s.registry.Upsert(&activity)
	return nil
}

// EditActivity updates the activity remotely, then replaces the cache entry
// with the submitted record and repoints the active reference at it.
func (s *ActivityStore) EditActivity(ctx context.Context, activity models.Activity) error {
	s.setSubmitting(true)
	defer s.setSubmitting(false)

	if err := s.api.Update(ctx, activity); err != nil {
		s.log.Error().Err(err).Str("activity_id", activity.ID).Msg("edit activity failed")
		s.notifier.Error("Problem submitting data")
		return err
	}

	s.registry.Upsert(&activity)
	s.setActivity(&activity)
	return nil
}

// DeleteActivity removes the activity remotely, then evicts the cache entry.
func (s *ActivityStore) DeleteActivity(ctx context.Context, activityID string) error {
	s.setSubmitting(true)
	s.setTarget(activityID)
	defer func() {
		s.setSubmitting(false)
		s.setTarget("")
	}()

	if err := s.api.Delete(ctx, activityID); err != nil {
		s.log.Error().Err(err).Str("activity_id", activityID).Msg("delete activity failed")
		s.notifier.Error("Problem deleting activity")
		return err
	}

	s.registry.Remove(activityID)
	return nil
}

// Attend signs the current user up to the active activity.
func (s *ActivityStore) Attend(ctx context.Context) error {
	activity := s.Activity()
	if activity == nil {
		return ErrNoActiveActivity
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.Attend(ctx, activity.ID); err != nil {
		s.log.Error().Err(err).Str("activity_id", activity.ID).Msg("attend failed")
		s.notifier.Error("Problem signing up to activity")
		return err
	}

	s.mu.Lock()
	if user := s.root.Users.Current(); user != nil {
		activity.Attendees = append(activity.Attendees, models.Attendee{
			Username:    user.Username,
			DisplayName: user.DisplayName,
			Image:       user.Image,
		})
	}
	activity.IsGoing = true
	s.mu.Unlock()

	s.registry.Upsert(activity)
	return nil
}

// Unattend cancels the current user's attendance on the active activity.
func (s *ActivityStore) Unattend(ctx context.Context) error {
	activity := s.Activity()
	if activity == nil {
		return ErrNoActiveActivity
	}

	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.Unattend(ctx, activity.ID); err != nil {
		s.log.Error().Err(err).Str("activity_id", activity.ID).Msg("unattend failed")
		s.notifier.Error("Problem cancelling attendance")
		return err
	}

	username := ""
	if user := s.root.Users.Current(); user != nil {
		username = user.Username
	}

	s.mu.Lock()
	attendees := activity.Attendees[:0:0]
	for _, att := range activity.Attendees {
		if att.Username != username {
			attendees = append(attendees, att)
		}
	}
	activity.Attendees = attendees
	activity.IsGoing = false
	s.mu.Unlock()

	s.registry.Upsert(activity)
	return nil
}

// ActivitiesByDate groups the cached activities by calendar day.
func (s *ActivityStore) ActivitiesByDate() []DateGroup {
	return GroupByDate(s.registry.Values())
}

// OpenCommentChannel connects the realtime channel for the active activity.
// Handshake failures are logged by the channel; the CRUD path is unaffected.
func (s *ActivityStore) OpenCommentChannel(ctx context.Context) {
	activity := s.Activity()
	if activity == nil || s.channel == nil {
		return
	}
	s.channel.Open(ctx, activity.ID, s.root.Users.Token())
}

// CloseCommentChannel tears the realtime channel down; no-op when closed.
func (s *ActivityStore) CloseCommentChannel() {
	if s.channel != nil {
		s.channel.Close()
	}
}

// SendComment posts a comment over the open channel. The comment is not
// appended locally; the author receives it back through ReceiveComment like
// every other participant, so ordering stays canonical.
func (s *ActivityStore) SendComment(body string) error {
	if s.channel == nil {
		return ErrNoActiveActivity
	}
	if err := s.channel.SendComment(body); err != nil {
		s.log.Error().Err(err).Msg("send comment failed")
		return err
	}
	return nil
}

// ReceiveComment appends an inbound comment to the active activity. This is
// the only path by which comments enter the local model.
func (s *ActivityStore) ReceiveComment(comment models.Comment) {
	s.mu.Lock()
	if s.activity == nil {
		s.mu.Unlock()
		s.log.Warn().Str("comment_id", comment.ID).Msg("comment received with no active activity")
		return
	}
	s.activity.Comments = append(s.activity.Comments, comment)
	s.mu.Unlock()

	s.registry.Notify()
}

// Activity returns the active-activity reference, which aliases the cache
// entry (mutations through one are observable through the other).
func (s *ActivityStore) Activity() *models.Activity {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.activity
}

// Submitting reports whether a create/edit/delete call is in flight.
func (s *ActivityStore) Submitting() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.submitting
}

// Loading reports whether an attend/unattend call is in flight.
func (s *ActivityStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// LoadingInitial reports whether an initial fetch is in flight.
func (s *ActivityStore) LoadingInitial() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loadingInitial
}

// Target is the id of the activity a delete is running against, for
// per-element busy indicators.
func (s *ActivityStore) Target() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.target
}

func (s *ActivityStore) setActivity(activity *models.Activity) {
	s.mu.Lock()
	s.activity = activity
	s.mu.Unlock()
}

func (s *ActivityStore) setLoadingInitial(v bool) {
	s.mu.Lock()
	s.loadingInitial = v
	s.mu.Unlock()
}

func (s *ActivityStore) setSubmitting(v bool) {
	s.mu.Lock()
	s.submitting = v
	s.mu.Unlock()
}

func (s *ActivityStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *ActivityStore) setTarget(target string) {
	s.mu.Lock()
	s.target = target
	s.mu.Unlock()
}
