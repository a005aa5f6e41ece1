package service

import (
	"errors"
	"sync"
	"testing"
	"time"

	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/testdb"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type memStore struct {
	mu      sync.Mutex
	objects map[string][]byte
	failPut bool
}

func newMemStore() *memStore { return &memStore{objects: map[string][]byte{}} }

func (m *memStore) Put(key, _ string, data []byte) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.failPut {
		return "", errors.New("bucket unavailable")
	}
	m.objects[key] = data
	return "https://cdn.example.com/" + key, nil
}

func (m *memStore) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.objects, key)
	return nil
}

func (m *memStore) KeyFromURL(u string) (string, bool) {
	const prefix = "https://cdn.example.com/"
	if len(u) <= len(prefix) || u[:len(prefix)] != prefix {
		return "", false
	}
	return u[len(prefix):], true
}

var pngHeader = []byte("\x89PNG\r\n\x1a\n\x00\x00\x00\rIHDR\x00\x00\x00\x01\x00\x00\x00\x01")

func TestGetProfile(t *testing.T) {
	db := testdb.New(t)
	svc := NewUserService(repository.NewUserRepo(db), newMemStore(), zap.NewNop())
	user := createUser(t, db, "pat@example.com")

	got, err := svc.GetProfile(user.ID.String())
	require.NoError(t, err)
	assert.Equal(t, "pat@example.com", got.Email)

	_, err = svc.GetProfile(uuid.NewString())
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.GetProfile("not-a-uuid")
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.GetProfile("")
	assert.ErrorIs(t, err, ErrMissingUserID)
}

func TestUpdateProfileAndPassword(t *testing.T) {
	db := testdb.New(t)
	users := repository.NewUserRepo(db)
	svc := NewUserService(users, newMemStore(), zap.NewNop())
	user := createUser(t, db, "pat@example.com")

	bio := "I review lamps"
	got, err := svc.UpdateProfile(&UpdateProfileRequest{UserID: user.ID.String(), Name: " Pat ", Bio: &bio})
	require.NoError(t, err)
	assert.Equal(t, "Pat", got.Name)
	require.NotNil(t, got.Bio)
	assert.Equal(t, bio, *got.Bio)

	_, err = svc.UpdateProfile(&UpdateProfileRequest{UserID: uuid.NewString(), Name: "x"})
	assert.ErrorIs(t, err, ErrUserNotFound)
	_, err = svc.UpdateProfile(&UpdateProfileRequest{UserID: user.ID.String()})
	assert.ErrorIs(t, err, ErrInvalidPayload)

	require.NoError(t, svc.ChangePassword(user.ID, "brand-new"))
	stored, err := users.FindByID(user.ID)
	require.NoError(t, err)
	assert.True(t, stored.CheckPassword("brand-new"))

	assert.ErrorIs(t, svc.ChangePassword(user.ID, "short"), ErrPasswordTooShort)
}

func TestAvatarLifecycle(t *testing.T) {
	db := testdb.New(t)
	users := repository.NewUserRepo(db)
	store := newMemStore()
	svc := NewUserService(users, store, zap.NewNop()).(*userService)
	user := createUser(t, db, "pat@example.com")

	svc.now = func() time.Time { return time.Unix(1700000000, 0) }
	first, err := svc.UploadAvatar(user.ID.String(), "me.PNG", pngHeader)
	require.NoError(t, err)
	assert.Equal(t, "https://cdn.example.com/avatar/"+user.ID.String()+"-1700000000.png", first)

	svc.now = func() time.Time { return time.Unix(1700000100, 0) }
	second, err := svc.UploadAvatar(user.ID.String(), "me.png", pngHeader)
	require.NoError(t, err)
	assert.Len(t, store.objects, 1, "the previous avatar is removed")

	stored, err := users.FindByID(user.ID)
	require.NoError(t, err)
	require.NotNil(t, stored.AvatarURL)
	assert.Equal(t, second, *stored.AvatarURL)

	_, err = svc.UploadAvatar(user.ID.String(), "notes.txt", []byte("plain text"))
	assert.ErrorIs(t, err, ErrInvalidAvatar)
	_, err = svc.UploadAvatar(user.ID.String(), "big.png", make([]byte, MaxAvatarBytes+1))
	assert.ErrorIs(t, err, ErrInvalidAvatar)
	_, err = svc.UploadAvatar(uuid.NewString(), "me.png", pngHeader)
	assert.ErrorIs(t, err, ErrUserNotFound)

	store.failPut = true
	_, err = svc.UploadAvatar(user.ID.String(), "me.png", pngHeader)
	assert.ErrorIs(t, err, ErrAvatarStorage)

	require.NoError(t, svc.RemoveAvatar(user.ID.String()))
	assert.Empty(t, store.objects)
	stored, err = users.FindByID(user.ID)
	require.NoError(t, err)
	assert.Nil(t, stored.AvatarURL)

	require.NoError(t, svc.RemoveAvatar(user.ID.String()), "removing twice is a no-op")
}
