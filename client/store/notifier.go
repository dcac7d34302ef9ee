package store

// Notifier surfaces user-facing failure messages (toasts in a UI layer).
// Failures reported here are never fatal; the cache stays in its
// last-known-good state.
type Notifier interface {
	Error(message string)
}

// NopNotifier drops all notifications.
type NopNotifier struct{}

func (NopNotifier) Error(string) {}
