package api

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"activity-planner/internal/models"
)

func TestListDecodesEnvelope(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "/activities", r.URL.Path)
		assert.Equal(t, "Bearer tok", r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(map[string]any{
			"activities": []models.Activity{{ID: "a1", Title: "hike"}},
		})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, func() string { return "tok" })
	activities, err := client.List(context.Background())
	require.NoError(t, err)
	require.Len(t, activities, 1)
	assert.Equal(t, "hike", activities[0].Title)
}

func TestDetailsNotFound(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"activity not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	_, err := client.Details(context.Background(), "ghost")
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestCreateSendsJSONBody(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var activity models.Activity
		require.NoError(t, json.NewDecoder(r.Body).Decode(&activity))
		assert.Equal(t, "a1", activity.ID)
		w.WriteHeader(http.StatusCreated)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	require.NoError(t, client.Create(context.Background(), models.Activity{ID: "a1", Title: "hike"}))
}

func TestErrorIncludesRemoteMessage(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"only the host can edit the activity"}`, http.StatusForbidden)
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	err := client.Update(context.Background(), models.Activity{ID: "a1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "only the host can edit the activity")
	assert.Contains(t, err.Error(), "403")
}

func TestUploadPhotoMultipart(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		file, header, err := r.FormFile("file")
		require.NoError(t, err)
		defer file.Close()
		assert.Equal(t, "me.png", header.Filename)

		w.WriteHeader(http.StatusCreated)
		json.NewEncoder(w).Encode(models.Photo{ID: "p1", URL: "/uploads/p1.png", IsMain: true})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, nil)
	photo, err := client.UploadPhoto(context.Background(), "me.png", strings.NewReader("png-bytes"))
	require.NoError(t, err)
	assert.Equal(t, "p1", photo.ID)
	assert.True(t, photo.IsMain)
}

func TestNoAuthHeaderWhenSignedOut(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		json.NewEncoder(w).Encode(models.User{Username: "alice", Token: "tok"})
	}))
	defer srv.Close()

	client := NewClient(srv.URL, func() string { return "" })
	user, err := client.Login(context.Background(), "alice", "pa$$word")
	require.NoError(t, err)
	assert.Equal(t, "tok", user.Token)
}
