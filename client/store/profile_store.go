package store

import (
	"context"
	"io"
	"sync"

	"github.com/rs/zerolog"

	"activity-planner/client/api"
	"activity-planner/internal/models"
)

// ProfileStore loads and mutates the profile being viewed. Photo mutations
// follow the confirm-then-commit template and ripple the resulting avatar
// change into the user store when the profile is the signed-in user's own.
type ProfileStore struct {
	root     *Root
	api      api.Profiles
	log      zerolog.Logger
	notifier Notifier

	mu        sync.Mutex
	profile   *models.Profile
	loading   bool
	uploading bool
}

func newProfileStore(root *Root, profiles api.Profiles, log zerolog.Logger, notifier Notifier) *ProfileStore {
	return &ProfileStore{
		root:     root,
		api:      profiles,
		log:      log.With().Str("store", "profiles").Logger(),
		notifier: notifier,
	}
}

// LoadProfile fetches a profile and makes it the viewed profile.
func (s *ProfileStore) LoadProfile(ctx context.Context, username string) (*models.Profile, error) {
	s.setLoading(true)
	defer s.setLoading(false)

	profile, err := s.api.Get(ctx, username)
	if err != nil {
		s.log.Error().Err(err).Str("username", username).Msg("load profile failed")
		return nil, err
	}
	s.setProfile(&profile)
	return &profile, nil
}

// IsCurrentUser reports whether the viewed profile belongs to the signed-in
// user, which gates the photo and bio mutations.
func (s *ProfileStore) IsCurrentUser() bool {
	profile := s.Profile()
	user := s.root.Users.Current()
	if profile == nil || user == nil {
		return false
	}
	return profile.Username == user.Username
}

// UploadPhoto stores a photo remotely, then appends it to the viewed
// profile. A first photo comes back as main and updates the avatar.
func (s *ProfileStore) UploadPhoto(ctx context.Context, filename string, file io.Reader) error {
	s.setUploading(true)
	defer s.setUploading(false)

	photo, err := s.api.UploadPhoto(ctx, filename, file)
	if err != nil {
		s.log.Error().Err(err).Msg("upload photo failed")
		s.notifier.Error("Problem uploading photo")
		return err
	}

	s.mu.Lock()
	if s.profile != nil {
		s.profile.Photos = append(s.profile.Photos, photo)
		if photo.IsMain {
			s.profile.Image = photo.URL
		}
	}
	s.mu.Unlock()

	if photo.IsMain {
		s.root.Users.SetImage(photo.URL)
	}
	return nil
}

// SetMainPhoto flips the main flag remotely, then mirrors the flip across
// the viewed profile's photos and the avatar everywhere it is shown.
func (s *ProfileStore) SetMainPhoto(ctx context.Context, photoID string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.SetMainPhoto(ctx, photoID); err != nil {
		s.log.Error().Err(err).Str("photo_id", photoID).Msg("set main photo failed")
		s.notifier.Error("Problem setting photo as main")
		return err
	}

	var url string
	s.mu.Lock()
	if s.profile != nil {
		for i := range s.profile.Photos {
			photo := &s.profile.Photos[i]
			photo.IsMain = photo.ID == photoID
			if photo.IsMain {
				url = photo.URL
			}
		}
		if url != "" {
			s.profile.Image = url
		}
	}
	s.mu.Unlock()

	if url != "" {
		s.root.Users.SetImage(url)
	}
	return nil
}

// DeletePhoto removes a non-main photo remotely, then from the viewed
// profile.
func (s *ProfileStore) DeletePhoto(ctx context.Context, photoID string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.DeletePhoto(ctx, photoID); err != nil {
		s.log.Error().Err(err).Str("photo_id", photoID).Msg("delete photo failed")
		s.notifier.Error("Problem deleting the photo")
		return err
	}

	s.mu.Lock()
	if s.profile != nil {
		photos := s.profile.Photos[:0:0]
		for _, photo := range s.profile.Photos {
			if photo.ID != photoID {
				photos = append(photos, photo)
			}
		}
		s.profile.Photos = photos
	}
	s.mu.Unlock()
	return nil
}

// UpdateBio saves the display name and bio remotely, then to the viewed
// profile.
func (s *ProfileStore) UpdateBio(ctx context.Context, displayName, bio string) error {
	s.setLoading(true)
	defer s.setLoading(false)

	if err := s.api.UpdateBio(ctx, displayName, bio); err != nil {
		s.log.Error().Err(err).Msg("update bio failed")
		s.notifier.Error("Problem updating bio")
		return err
	}

	s.mu.Lock()
	if s.profile != nil {
		s.profile.DisplayName = displayName
		s.profile.Bio = bio
	}
	s.mu.Unlock()
	return nil
}

// Profile returns the viewed profile, or nil.
func (s *ProfileStore) Profile() *models.Profile {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.profile
}

// Loading reports whether a profile fetch or photo mutation is in flight.
func (s *ProfileStore) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Uploading reports whether a photo upload is in flight.
func (s *ProfileStore) Uploading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.uploading
}

func (s *ProfileStore) setProfile(profile *models.Profile) {
	s.mu.Lock()
	s.profile = profile
	s.mu.Unlock()
}

func (s *ProfileStore) setLoading(v bool) {
	s.mu.Lock()
	s.loading = v
	s.mu.Unlock()
}

func (s *ProfileStore) setUploading(v bool) {
	s.mu.Lock()
	s.uploading = v
	s.mu.Unlock()
}
