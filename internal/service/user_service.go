package service

import (
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/pkg/storage"
	"scriptaffiliator/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidAvatar = errors.New("avatar must be an image up to 2MB")
	ErrAvatarStorage = errors.New("failed to store avatar")
)

const MaxAvatarBytes = 2 << 20

type UpdateProfileRequest struct {
	UserID string  `json:"userId" validate:"required,uuid"`
	Name   string  `json:"name" validate:"notblank"`
	Bio    *string `json:"bio"`
}

// UserService serves the profile page of the dashboard.
type UserService interface {
	// GetProfile returns ErrUserNotFound for an unknown or malformed id.
	GetProfile(userID string) (*model.UserResponse, error)
	UpdateProfile(req *UpdateProfileRequest) (*model.UserResponse, error)
	ChangePassword(userID uuid.UUID, newPassword string) error
	UploadAvatar(userID, filename string, data []byte) (string, error)
	RemoveAvatar(userID string) error
}

type userService struct {
	userRepo repository.UserRepository
	store    storage.Storage
	log      *zap.Logger
	now      func() time.Time
}

func NewUserService(userRepo repository.UserRepository, store storage.Storage, log *zap.Logger) UserService {
	return &userService{
		userRepo: userRepo,
		store:    store,
		log:      log,
		now:      time.Now,
	}
}

func (s *userService) GetProfile(userID string) (*model.UserResponse, error) {
	if strings.TrimSpace(userID) == "" {
		return nil, ErrMissingUserID
	}
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrUserNotFound
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("fetch user failed", zap.String("user_id", userID), zap.Error(err))
		}
		return nil, ErrUserNotFound
	}
	resp := user.ToResponse()
	return &resp, nil
}

func (s *userService) UpdateProfile(req *UpdateProfileRequest) (*model.UserResponse, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, ErrInvalidPayload
	}
	id := uuid.MustParse(req.UserID)

	fields := map[string]interface{}{
		"name": strings.TrimSpace(req.Name),
		"bio":  emptyToNil(req.Bio),
	}
	if err := s.userRepo.UpdateFields(id, fields); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}
		s.log.Error("update profile failed", zap.String("user_id", req.UserID), zap.Error(err))
		return nil, err
	}
	return s.GetProfile(req.UserID)
}

func (s *userService) ChangePassword(userID uuid.UUID, newPassword string) error {
	if len(newPassword) < minPasswordLength {
		return ErrPasswordTooShort
	}
	var u model.User
	if err := u.SetPassword(newPassword); err != nil {
		return fmt.Errorf("hash password: %w", err)
	}
	if err := s.userRepo.UpdatePassword(userID, u.Password); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}
		return err
	}
	return nil
}

// UploadAvatar stores the image as avatar/<userId>-<unix>.<ext>, replacing
// any previous avatar, and returns its public URL.
func (s *userService) UploadAvatar(userID, filename string, data []byte) (string, error) {
	user, err := s.findUser(userID)
	if err != nil {
		return "", err
	}

	if len(data) == 0 || len(data) > MaxAvatarBytes {
		return "", ErrInvalidAvatar
	}
	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") {
		return "", ErrInvalidAvatar
	}

	ext := strings.ToLower(strings.TrimPrefix(filepath.Ext(filename), "."))
	if ext == "" {
		ext = strings.TrimPrefix(contentType, "image/")
	}
	key := fmt.Sprintf("avatar/%s-%d.%s", user.ID, s.now().Unix(), ext)

	url, err := s.store.Put(key, contentType, data)
	if err != nil {
		s.log.Error("avatar upload failed", zap.String("key", key), zap.Error(err))
		return "", ErrAvatarStorage
	}

	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"avatar_url": url}); err != nil {
		return "", err
	}
	s.removeObject(user.AvatarURL)
	return url, nil
}

func (s *userService) RemoveAvatar(userID string) error {
	user, err := s.findUser(userID)
	if err != nil {
		return err
	}
	if user.AvatarURL == nil {
		return nil
	}
	if err := s.userRepo.UpdateFields(user.ID, map[string]interface{}{"avatar_url": nil}); err != nil {
		return err
	}
	s.removeObject(user.AvatarURL)
	return nil
}

func (s *userService) findUser(userID string) (*model.User, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrMissingUserID
	}
	user, err := s.userRepo.FindByID(id)
	if err != nil {
		return nil, ErrUserNotFound
	}
	return user, nil
}

// removeObject deletes a stored avatar. Failures only leave an orphan.
func (s *userService) removeObject(url *string) {
	if url == nil {
		return
	}
	key, ok := s.store.KeyFromURL(*url)
	if !ok {
		return
	}
	if err := s.store.Delete(key); err != nil {
		s.log.Warn("avatar delete failed", zap.String("key", key), zap.Error(err))
	}
}
