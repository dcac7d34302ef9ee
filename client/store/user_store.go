package store

import (
	"context"
	"sync"

	"github.com/rs/zerolog"

	"activity-planner/client/api"
	"activity-planner/internal/models"
)

// UserStore holds the signed-in user and their bearer token. The token read
// here feeds every authorized API call and the realtime handshake.
type UserStore struct {
	api api.Users
	log zerolog.Logger

	mu    sync.Mutex
	user  *models.User
	token string
}

func newUserStore(users api.Users, log zerolog.Logger) *UserStore {
	return &UserStore{
		api: users,
		log: log.With().Str("store", "users").Logger(),
	}
}

// Login exchanges credentials for a user record and stores its token.
func (s *UserStore) Login(ctx context.Context, username, password string) (*models.User, error) {
	user, err := s.api.Login(ctx, username, password)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("login failed")
		return nil, err
	}
	s.setUser(&user)
	return &user, nil
}

// Register creates an account and signs the new user in.
func (s *UserStore) Register(ctx context.Context, username, displayName, password string) (*models.User, error) {
	user, err := s.api.Register(ctx, username, displayName, password)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("register failed")
		return nil, err
	}
	s.setUser(&user)
	return &user, nil
}

// GetCurrent refreshes the user record for an already-held token, as on
// startup with a persisted token.
func (s *UserStore) GetCurrent(ctx context.Context) (*models.User, error) {
	user, err := s.api.Current(ctx)
	if err != nil {
		s.log.Error().Err(err).Msg("current user fetch failed")
		return nil, err
	}
	s.setUser(&user)
	return &user, nil
}

// Logout drops the user and token.
func (s *UserStore) Logout() {
	s.mu.Lock()
	s.user = nil
	s.token = ""
	s.mu.Unlock()
}

// Current returns the signed-in user, or nil.
func (s *UserStore) Current() *models.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// Token returns the bearer token, empty when signed out.
func (s *UserStore) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// SetToken seeds a persisted token before the first GetCurrent call.
func (s *UserStore) SetToken(token string) {
	s.mu.Lock()
	s.token = token
	s.mu.Unlock()
}

// SetImage updates the signed-in user's avatar, keeping it in step with a
// main-photo change on their profile.
func (s *UserStore) SetImage(url string) {
	s.mu.Lock()
	if s.user != nil {
		s.user.Image = url
	}
	s.mu.Unlock()
}

func (s *UserStore) setUser(user *models.User) {
	s.mu.Lock()
	s.user = user
	s.token = user.Token
	s.mu.Unlock()
}
