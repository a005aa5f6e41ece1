package service

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
	"unicode"

	"scriptaffiliator/internal/repository"
	"scriptaffiliator/pkg/genclient"
	"scriptaffiliator/pkg/prompt"
	"scriptaffiliator/pkg/validator"

	"go.uber.org/zap"
	"gorm.io/gorm"
)

var (
	ErrMissingFields      = errors.New("missing required fields")
	ErrInvalidScriptCount = errors.New("scriptCount must be a positive number")
	ErrPromptNotFound     = errors.New("prompt not found")
	ErrGenerationFailed   = errors.New("script generation failed")
)

// FlexInt decodes from a JSON number or a numeric string.
type FlexInt int

func (n *FlexInt) UnmarshalJSON(b []byte) error {
	raw := string(bytes.TrimSpace(b))
	if raw == "null" {
		return nil
	}
	if unquoted, err := strconv.Unquote(raw); err == nil {
		raw = strings.TrimSpace(unquoted)
		if raw == "" {
			*n = 0
			return nil
		}
	}
	if i, err := strconv.Atoi(raw); err == nil {
		*n = FlexInt(i)
		return nil
	}
	f, err := strconv.ParseFloat(raw, 64)
	if err != nil {
		return fmt.Errorf("invalid number %q", raw)
	}
	*n = FlexInt(math.Trunc(f))
	return nil
}

type GenerateRequest struct {
	ProductID    string   `json:"productId" validate:"required"`
	ProductName  string   `json:"productName"`
	KeyPoints    []string `json:"keyPoints" validate:"required,min=1"`
	Tone         string   `json:"tone"`
	Duration     *FlexInt `json:"duration"`
	ContentType  string   `json:"contentType"`
	OpeningLines []string `json:"openingLines"`
	Language     string   `json:"language"`
	ScriptCount  *FlexInt `json:"scriptCount"`
	UserID       string   `json:"userId" validate:"required"`
}

// Validate reports ErrMissingFields when the product, key points or user is
// absent and ErrInvalidScriptCount when scriptCount is given but not
// positive. Opening lines are not checked.
func (r *GenerateRequest) Validate() error {
	if errs := validator.ValidateStruct(r); len(errs) > 0 {
		return ErrMissingFields
	}
	if r.ScriptCount != nil && *r.ScriptCount <= 0 {
		return ErrInvalidScriptCount
	}
	return nil
}

// EffectiveScriptCount is scriptCount times the number of opening lines,
// counting zero opening lines as one. An absent scriptCount means 1.
func (r *GenerateRequest) EffectiveScriptCount() int {
	count := 1
	if r.ScriptCount != nil {
		count = int(*r.ScriptCount)
	}
	lines := len(r.OpeningLines)
	if lines < 1 {
		lines = 1
	}
	return count * lines
}

// Params are the template values for the generation prompt.
func (r *GenerateRequest) Params() prompt.Params {
	var duration interface{}
	if r.Duration != nil {
		duration = int(*r.Duration)
	}
	return prompt.Params{
		"productName":  r.ProductName,
		"keyPoints":    r.KeyPoints,
		"tone":         r.Tone,
		"duration":     duration,
		"contentType":  r.ContentType,
		"openingLines": r.OpeningLines,
		"language":     r.Language,
		"scriptCount":  r.EffectiveScriptCount(),
	}
}

type GeneratedScript struct {
	Script string `json:"script"`
}

type GenerateResult struct {
	Output  string            `json:"output"`
	Scripts []GeneratedScript `json:"scripts,omitempty"`
}

type GenerationService interface {
	Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error)
}

type GenerationOptions struct {
	Model      string
	PromptCode string
	Timeout    time.Duration
}

type generationService struct {
	promptRepo repository.PromptRepository
	generator  genclient.Generator
	opts       GenerationOptions
	log        *zap.Logger
}

func NewGenerationService(pRepo repository.PromptRepository, gen genclient.Generator, opts GenerationOptions, log *zap.Logger) GenerationService {
	return &generationService{promptRepo: pRepo, generator: gen, opts: opts, log: log}
}

func (s *generationService) Generate(ctx context.Context, req *GenerateRequest) (*GenerateResult, error) {
	if err := req.Validate(); err != nil {
		return nil, err
	}

	tmpl, err := s.promptRepo.FindByCode(s.opts.PromptCode)
	if err != nil {
		if !errors.Is(err, gorm.ErrRecordNotFound) {
			s.log.Error("load prompt template failed", zap.String("code", s.opts.PromptCode), zap.Error(err))
		}
		return nil, ErrPromptNotFound
	}
	if strings.TrimSpace(tmpl.Text) == "" {
		return nil, ErrPromptNotFound
	}

	finalPrompt := prompt.Fill(tmpl.Text, req.Params())

	if s.opts.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, s.opts.Timeout)
		defer cancel()
	}

	text, err := s.generator.Generate(ctx, s.opts.Model, finalPrompt)
	if err != nil {
		s.log.Error("script generation failed",
			zap.String("product_id", req.ProductID),
			zap.Int("script_count", req.EffectiveScriptCount()),
			zap.Error(err),
		)
		return nil, ErrGenerationFailed
	}

	result := &GenerateResult{Output: strings.TrimSpace(text)}
	if scripts, err := ParseScripts(result.Output); err == nil {
		result.Scripts = scripts
	}
	return result, nil
}

// ParseScripts decodes model output shaped as [{"script": "..."}], with or
// without a surrounding ``` fence.
func ParseScripts(output string) ([]GeneratedScript, error) {
	body := strings.TrimSpace(output)
	if strings.HasPrefix(body, "```") {
		// the language tag may sit on its own line or touch the payload
		body = strings.TrimLeftFunc(strings.TrimPrefix(body, "```"), unicode.IsLetter)
		body = strings.TrimSuffix(strings.TrimSpace(body), "```")
	}

	var scripts []GeneratedScript
	if err := json.Unmarshal([]byte(body), &scripts); err != nil {
		return nil, fmt.Errorf("parse scripts: %w", err)
	}
	return scripts, nil
}
