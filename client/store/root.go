package store

import (
	"github.com/rs/zerolog"

	"activity-planner/client/api"
	"activity-planner/internal/models"
)

// Deps are the collaborators the stores are built over. NewChannel builds
// the realtime channel with the store's inbound comment handler already
// attached; leave it nil for a cache-only composition.
type Deps struct {
	Activities api.Activities
	Profiles   api.Profiles
	Users      api.Users
	NewChannel func(onComment func(models.Comment)) CommentChannel
	Notifier   Notifier
	Logger     zerolog.Logger
}

// Root is the composition of stores. Stores reach each other only through
// their shared root, keeping the cross-store edges (avatar sync, token
// reads) in one place.
type Root struct {
	Activities *ActivityStore
	Profiles   *ProfileStore
	Users      *UserStore
}

// NewRoot wires the stores together over the supplied collaborators.
func NewRoot(deps Deps) *Root {
	if deps.Notifier == nil {
		deps.Notifier = NopNotifier{}
	}

	root := &Root{}
	root.Users = newUserStore(deps.Users, deps.Logger)
	root.Activities = newActivityStore(root, deps.Activities, NewRegistry(), deps.Logger, deps.Notifier)
	root.Profiles = newProfileStore(root, deps.Profiles, deps.Logger, deps.Notifier)

	if deps.NewChannel != nil {
		root.Activities.channel = deps.NewChannel(root.Activities.ReceiveComment)
	}
	return root
}
