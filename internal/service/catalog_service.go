package service

import (
	"errors"
	"strings"

	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var ErrTitleRequired = errors.New("title is required")

type CategoryService interface {
	List() ([]model.Category, error)
}

type categoryService struct {
	repo repository.CategoryRepository
	log  *zap.Logger
}

func NewCategoryService(repo repository.CategoryRepository, log *zap.Logger) CategoryService {
	return &categoryService{repo: repo, log: log}
}

func (s *categoryService) List() ([]model.Category, error) {
	cats, err := s.repo.FindAll()
	if err != nil {
		s.log.Error("list categories failed", zap.Error(err))
		return nil, err
	}
	return cats, nil
}

// HookService manages opening lines. Hooks without an owner are shared.
type HookService interface {
	List(userID string) ([]model.Hook, error)
	Create(title, userID string) (*model.Hook, error)
}

type hookService struct {
	repo repository.HookRepository
	log  *zap.Logger
}

func NewHookService(repo repository.HookRepository, log *zap.Logger) HookService {
	return &hookService{repo: repo, log: log}
}

func (s *hookService) List(userID string) ([]model.Hook, error) {
	id, err := uuid.Parse(userID)
	if err != nil {
		return nil, ErrMissingUserID
	}
	hooks, err := s.repo.FindVisible(id)
	if err != nil {
		s.log.Error("list hooks failed", zap.Error(err))
		return nil, err
	}
	return hooks, nil
}

func (s *hookService) Create(title, userID string) (*model.Hook, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, ErrTitleRequired
	}

	hook := &model.Hook{Title: title}
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return nil, ErrMissingUserID
		}
		hook.UserID = &id
	}

	if err := s.repo.Create(hook); err != nil {
		s.log.Error("create hook failed", zap.Error(err))
		return nil, err
	}
	return hook, nil
}
