package service

import (
	"errors"

	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/ws"
	"scriptaffiliator/pkg/validator"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrInvalidRequestBody = errors.New("invalid request body")
	ErrScriptNotFound     = errors.New("script not found")
	ErrSaveScripts        = errors.New("failed to save scripts")
	ErrFetchScripts       = errors.New("failed to fetch scripts")
)

type SaveScriptsRequest struct {
	UserID    string   `json:"userId" validate:"required,uuid"`
	ProductID string   `json:"productId" validate:"required,uuid"`
	Scripts   []string `json:"scripts" validate:"required"`
}

type UpdateScriptRequest struct {
	ID      string  `json:"id"`
	Content *string `json:"content"`
}

type PublishRequest struct {
	ID        string `json:"id"`
	IsPublish *bool  `json:"is_publish"`
}

// ScriptService stores generated scripts. Content edits and publish toggles
// are separate writes.
type ScriptService interface {
	Save(req *SaveScriptsRequest) ([]model.Script, error)
	UpdateContent(req *UpdateScriptRequest) error
	SetPublish(req *PublishRequest) error
	ListGrouped(userID string) ([]model.ScriptGroup, error)
	ListByProduct(productID string) ([]model.Script, error)
}

type scriptService struct {
	scriptRepo repository.ScriptRepository
	wsHub      *ws.Hub
	log        *zap.Logger
}

func NewScriptService(sRepo repository.ScriptRepository, hub *ws.Hub, log *zap.Logger) ScriptService {
	return &scriptService{scriptRepo: sRepo, wsHub: hub, log: log}
}

func (s *scriptService) Save(req *SaveScriptsRequest) ([]model.Script, error) {
	if errs := validator.ValidateStruct(req); len(errs) > 0 {
		return nil, ErrInvalidPayload
	}
	userID := uuid.MustParse(req.UserID)
	productID := uuid.MustParse(req.ProductID)

	rows := make([]model.Script, len(req.Scripts))
	for i, content := range req.Scripts {
		rows[i] = model.Script{UserID: userID, ProductID: productID, Content: content}
	}
	if len(rows) == 0 {
		return rows, nil
	}

	if err := s.scriptRepo.CreateBatch(rows); err != nil {
		s.log.Error("save scripts failed", zap.String("product_id", req.ProductID), zap.Error(err))
		return nil, ErrSaveScripts
	}

	s.wsHub.SendToUser(userID, ws.EventScriptSaved, map[string]interface{}{
		"product_id": productID,
		"count":      len(rows),
	})
	return rows, nil
}

func (s *scriptService) UpdateContent(req *UpdateScriptRequest) error {
	id, err := uuid.Parse(req.ID)
	if err != nil || req.Content == nil {
		return ErrInvalidRequestBody
	}
	if err := s.scriptRepo.UpdateContent(id, *req.Content); err != nil {
		return s.writeError("update script content", id, err)
	}
	s.notifyOwner(id, ws.EventScriptUpdated, nil)
	return nil
}

func (s *scriptService) SetPublish(req *PublishRequest) error {
	id, err := uuid.Parse(req.ID)
	if err != nil || req.IsPublish == nil {
		return ErrInvalidRequestBody
	}
	if err := s.scriptRepo.UpdatePublish(id, *req.IsPublish); err != nil {
		return s.writeError("update publish flag", id, err)
	}
	s.notifyOwner(id, ws.EventScriptPublished, map[string]interface{}{"is_publish": *req.IsPublish})
	return nil
}

func (s *scriptService) writeError(op string, id uuid.UUID, err error) error {
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return ErrScriptNotFound
	}
	s.log.Error(op+" failed", zap.String("id", id.String()), zap.Error(err))
	return err
}

func (s *scriptService) notifyOwner(id uuid.UUID, eventType string, extra map[string]interface{}) {
	script, err := s.scriptRepo.FindByID(id)
	if err != nil {
		return
	}
	data := map[string]interface{}{"id": id, "product_id": script.ProductID}
	for k, v := range extra {
		data[k] = v
	}
	s.wsHub.SendToUser(script.UserID, eventType, data)
}

// ListGrouped returns the newest script of each product, newest first, with
// the number of scripts the product has.
func (s *scriptService) ListGrouped(userID string) ([]model.ScriptGroup, error) {
	var owner *uuid.UUID
	if userID != "" {
		id, err := uuid.Parse(userID)
		if err != nil {
			return nil, ErrMissingUserID
		}
		owner = &id
	}

	scripts, err := s.scriptRepo.FindAll(owner)
	if err != nil {
		s.log.Error("fetch scripts failed", zap.Error(err))
		return nil, ErrFetchScripts
	}
	return GroupByProduct(scripts), nil
}

// GroupByProduct expects scripts ordered newest first.
func GroupByProduct(scripts []model.Script) []model.ScriptGroup {
	index := make(map[uuid.UUID]int)
	groups := make([]model.ScriptGroup, 0)
	for _, sc := range scripts {
		if i, ok := index[sc.ProductID]; ok {
			groups[i].ScriptCount++
			continue
		}
		g := model.ScriptGroup{
			ID:          sc.ID,
			Content:     sc.Content,
			CreatedAt:   sc.CreatedAt,
			IsPublish:   sc.IsPublish,
			ProductID:   sc.ProductID,
			ScriptCount: 1,
		}
		if sc.Product != nil {
			g.Product = &model.ProductRef{ID: sc.Product.ID, Name: sc.Product.Name}
		}
		index[sc.ProductID] = len(groups)
		groups = append(groups, g)
	}
	return groups
}

func (s *scriptService) ListByProduct(productID string) ([]model.Script, error) {
	var filter *uuid.UUID
	if productID != "" {
		id, err := uuid.Parse(productID)
		if err != nil {
			return nil, ErrInvalidRequestBody
		}
		filter = &id
	}
	scripts, err := s.scriptRepo.FindByProduct(filter)
	if err != nil {
		s.log.Error("fetch product scripts failed", zap.Error(err))
		return nil, ErrFetchScripts
	}
	return scripts, nil
}
