package store

import (
	"sync"

	"activity-planner/internal/models"
)

// Registry is the client-side cache of known activities, keyed by id. It is
// the single source of truth for loaded activities: entries are created on
// first fetch or local creation, replaced in full on upsert, and removed on
// delete. Entries live for the client session; there is no eviction.
//
// Insertion order is preserved so that date grouping is deterministic for
// activities sharing a calendar date.
type Registry struct {
	mu         sync.RWMutex
	activities map[string]*models.Activity
	order      []string

	subMu       sync.Mutex
	subscribers map[int]func()
	nextSub     int
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		activities:  make(map[string]*models.Activity),
		subscribers: make(map[int]func()),
	}
}

// Get looks up an activity by id.
func (r *Registry) Get(activityID string) (*models.Activity, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	activity, ok := r.activities[activityID]
	return activity, ok
}

// Upsert inserts or fully replaces the entry for the activity's id. Fields
// are never merged; the stored value is the given record.
func (r *Registry) Upsert(activity *models.Activity) {
	r.mu.Lock()
	if _, ok := r.activities[activity.ID]; !ok {
		r.order = append(r.order, activity.ID)
	}
	r.activities[activity.ID] = activity
	r.mu.Unlock()

	r.notify()
}

// Remove deletes the entry; it is a no-op when the id is absent.
func (r *Registry) Remove(activityID string) {
	r.mu.Lock()
	if _, ok := r.activities[activityID]; !ok {
		r.mu.Unlock()
		return
	}
	delete(r.activities, activityID)
	for i, id := range r.order {
		if id == activityID {
			r.order = append(r.order[:i], r.order[i+1:]...)
			break
		}
	}
	r.mu.Unlock()

	r.notify()
}

// Values returns a snapshot of all cached activities in insertion order.
func (r *Registry) Values() []*models.Activity {
	r.mu.RLock()
	defer r.mu.RUnlock()
	values := make([]*models.Activity, 0, len(r.order))
	for _, id := range r.order {
		values = append(values, r.activities[id])
	}
	return values
}

// Len reports the number of cached activities.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.activities)
}

// Subscribe registers a callback invoked after every mutation and returns
// the corresponding unsubscribe func.
func (r *Registry) Subscribe(fn func()) func() {
	r.subMu.Lock()
	defer r.subMu.Unlock()
	id := r.nextSub
	r.nextSub++
	r.subscribers[id] = fn
	return func() {
		r.subMu.Lock()
		defer r.subMu.Unlock()
		delete(r.subscribers, id)
	}
}

// Notify wakes subscribers about an in-place mutation of a cached entry,
// such as a comment arriving on the active activity.
func (r *Registry) Notify() {
	r.notify()
}

func (r *Registry) notify() {
	r.subMu.Lock()
	subs := make([]func(), 0, len(r.subscribers))
	for _, fn := range r.subscribers {
		subs = append(subs, fn)
	}
	r.subMu.Unlock()

	for _, fn := range subs {
		fn()
	}
}
