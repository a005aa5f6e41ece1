// Package seed loads reference data (categories, prompt templates and global
// hooks) from a YAML file into the database.
package seed

import (
	"fmt"
	"os"
	"sort"
	"strings"

	"scriptaffiliator/internal/model"
	"scriptaffiliator/internal/repository"
	"scriptaffiliator/internal/service"
	"scriptaffiliator/pkg/prompt"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"
)

type File struct {
	Categories []Category `yaml:"categories"`
	Prompts    []Prompt   `yaml:"prompts"`
	Hooks      []string   `yaml:"hooks"`
}

type Category struct {
	Name        string `yaml:"name"`
	Description string `yaml:"description"`
}

type Prompt struct {
	Code string `yaml:"code"`
	Text string `yaml:"text"`
}

// Result counts the rows created or replaced by Apply.
type Result struct {
	Categories int
	Prompts    int
	Hooks      int
	// Warnings lists templates missing generation placeholders.
	Warnings []string
}

// Load reads and decodes a seed file.
func Load(path string) (*File, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read seed file: %w", err)
	}
	return Parse(raw)
}

func Parse(raw []byte) (*File, error) {
	var f File
	if err := yaml.Unmarshal(raw, &f); err != nil {
		return nil, fmt.Errorf("decode seed file: %w", err)
	}
	for i, p := range f.Prompts {
		if strings.TrimSpace(p.Code) == "" {
			return nil, fmt.Errorf("prompt #%d has no code", i+1)
		}
	}
	return &f, nil
}

// Apply writes the seed data in one transaction. Existing categories and
// global hooks are kept; prompts are replaced by code.
func Apply(db *gorm.DB, f *File, log *zap.Logger) (*Result, error) {
	res := &Result{}
	err := db.Transaction(func(tx *gorm.DB) error {
		categories := make([]model.Category, 0, len(f.Categories))
		for _, c := range f.Categories {
			categories = append(categories, model.Category{Name: strings.TrimSpace(c.Name), Description: c.Description})
		}
		n, err := repository.NewCategoryRepo(tx).SeedDefaults(categories)
		if err != nil {
			return fmt.Errorf("seed categories: %w", err)
		}
		res.Categories = n

		prompts := repository.NewPromptRepo(tx)
		for _, p := range f.Prompts {
			if missing := MissingPlaceholders(p.Text); len(missing) > 0 {
				msg := fmt.Sprintf("prompt %s does not use: %s", p.Code, strings.Join(missing, ", "))
				res.Warnings = append(res.Warnings, msg)
				log.Warn("prompt template is missing placeholders",
					zap.String("code", p.Code), zap.Strings("missing", missing))
			}
			if err := prompts.Upsert(&model.Prompt{Code: p.Code, Text: p.Text}); err != nil {
				return fmt.Errorf("seed prompt %s: %w", p.Code, err)
			}
			res.Prompts++
		}

		titles := make([]string, 0, len(f.Hooks))
		for _, h := range f.Hooks {
			if t := strings.TrimSpace(h); t != "" {
				titles = append(titles, t)
			}
		}
		n, err = repository.NewHookRepo(tx).SeedGlobal(titles)
		if err != nil {
			return fmt.Errorf("seed hooks: %w", err)
		}
		res.Hooks = n
		return nil
	})
	if err != nil {
		return nil, err
	}
	return res, nil
}

// MissingPlaceholders returns the generation parameters a template never
// references, sorted.
func MissingPlaceholders(template string) []string {
	used := make(map[string]bool)
	for _, name := range prompt.Placeholders(template) {
		used[name] = true
	}

	var missing []string
	for name := range (&service.GenerateRequest{}).Params() {
		if !used[name] {
			missing = append(missing, name)
		}
	}
	sort.Strings(missing)
	return missing
}
