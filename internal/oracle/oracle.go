// Package oracle is the AI collaborator of the management panel: it
// translates dish names, detects allergens and drafts whole menus.  Its
// answers are advisory; callers must cope with failures.
package oracle

import (
	"context"
	"errors"

	"github.com/iliyamo/menu-factory/internal/model"
)

// ErrNoAPIKey is returned when no key is configured for the AI endpoint.
var ErrNoAPIKey = errors.New("oracle: AI API key missing")

// DefaultSlogan is used when a generated menu comes without one.
const DefaultSlogan = "Cocina de Calidad"

// DishAnalysis is the result of AnalyzeDish.  Translations never contains
// Spanish; Allergens only holds values of the enumeration.
type DishAnalysis struct {
	Translations map[model.Language]string `json:"translations"`
	Allergens    model.Allergens           `json:"allergens"`
}

// Empty is the neutral analysis returned on failure.
func Empty() DishAnalysis {
	return DishAnalysis{Translations: map[model.Language]string{}, Allergens: model.Allergens{}}
}

// GenerateRequest describes the menu to draft.  File is an optional
// uploaded menu (image, PDF or text) described by MimeType.
type GenerateRequest struct {
	Name     string
	Prompt   string
	File     []byte
	MimeType string
}

// GeneratedMenu is a drafted seed for a new instance, already sanitised:
// ids run 1..n, every dish is in the carta with no menu role.
type GeneratedMenu struct {
	Slogan string       `json:"slogan"`
	Dishes []model.Dish `json:"initialPlatos"`
}

// Analyzer is what the data facade needs from the AI side.
type Analyzer interface {
	AnalyzeDish(ctx context.Context, name string) (DishAnalysis, error)
	GenerateMenu(ctx context.Context, req GenerateRequest) (GeneratedMenu, error)
	Translate(ctx context.Context, text string, target model.Language) string
}

// Disabled is the Analyzer used when no API key is configured.
type Disabled struct{}

func (Disabled) AnalyzeDish(context.Context, string) (DishAnalysis, error) {
	return Empty(), ErrNoAPIKey
}

func (Disabled) GenerateMenu(context.Context, GenerateRequest) (GeneratedMenu, error) {
	return GeneratedMenu{}, ErrNoAPIKey
}

func (Disabled) Translate(_ context.Context, text string, _ model.Language) string { return text }
