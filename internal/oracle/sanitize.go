package oracle

import (
	"fmt"
	"strings"

	"github.com/mitchellh/mapstructure"
	"github.com/shopspring/decimal"

	"github.com/iliyamo/menu-factory/internal/model"
)

// rawDish is a generated dish as the model returns it.  Field types are
// loose on purpose; decodeMenu coerces them.
type rawDish struct {
	Price     any      `json:"Precio"`
	NameES    string   `json:"ES_Nombre"`
	NameEU    string   `json:"EU_Nombre"`
	NameEN    string   `json:"EN_Nombre"`
	NameFR    string   `json:"FR_Nombre"`
	NameDE    string   `json:"DE_Nombre"`
	NameIT    string   `json:"IT_Nombre"`
	Type      string   `json:"Tipo"`
	Active    *bool    `json:"Activo_Dia"`
	Ration    *bool    `json:"Es_Racion"`
	Allergens []string `json:"Alergenos"`
}

type rawMenu struct {
	Slogan string    `json:"slogan"`
	Dishes []rawDish `json:"initialPlatos"`
}

func decodeLoose(in any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          "json",
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	return dec.Decode(in)
}

// decodeMenu turns the generic JSON document of a generation answer into a
// clean seed.  Dishes without a Spanish name are dropped.
func decodeMenu(doc map[string]any) (GeneratedMenu, error) {
	var raw rawMenu
	if err := decodeLoose(doc, &raw); err != nil {
		return GeneratedMenu{}, fmt.Errorf("decode generated menu: %w", err)
	}
	out := GeneratedMenu{Slogan: strings.TrimSpace(raw.Slogan), Dishes: []model.Dish{}}
	if out.Slogan == "" {
		out.Slogan = DefaultSlogan
	}
	for _, r := range raw.Dishes {
		name := strings.TrimSpace(r.NameES)
		if name == "" {
			continue
		}
		d := model.Dish{
			ID:         len(out.Dishes) + 1,
			Price:      coercePrice(r.Price),
			NameES:     name,
			NameEU:     strings.TrimSpace(r.NameEU),
			NameEN:     strings.TrimSpace(r.NameEN),
			NameFR:     strings.TrimSpace(r.NameFR),
			NameDE:     strings.TrimSpace(r.NameDE),
			NameIT:     strings.TrimSpace(r.NameIT),
			Categories: model.Categories{model.CategoryCarta},
			Type:       model.DishType(strings.ToUpper(strings.TrimSpace(r.Type))),
			Active:     r.Active == nil || *r.Active,
			Role:       model.RoleNone,
			Allergens:  filterAllergens(r.Allergens),
		}
		if r.Ration != nil {
			d.Ration = *r.Ration
		} else {
			d.Ration = d.Type.RationByDefault()
		}
		out.Dishes = append(out.Dishes, d)
	}
	return out, nil
}

// coercePrice accepts numbers and numeric strings ("12,50" included).
// Anything else, and negative values, become 0.
func coercePrice(v any) decimal.Decimal {
	var d decimal.Decimal
	switch t := v.(type) {
	case float64:
		d = decimal.NewFromFloat(t)
	case int:
		d = decimal.NewFromInt(int64(t))
	case int64:
		d = decimal.NewFromInt(t)
	case string:
		s := strings.TrimSpace(strings.TrimSuffix(strings.TrimSpace(t), "€"))
		p, err := decimal.NewFromString(strings.Replace(s, ",", ".", 1))
		if err != nil {
			return decimal.Zero
		}
		d = p
	default:
		return decimal.Zero
	}
	if d.IsNegative() {
		return decimal.Zero
	}
	return d.Round(2)
}

func filterAllergens(in []string) model.Allergens {
	out := model.Allergens{}
	for _, s := range in {
		if a, ok := model.ParseAllergen(s); ok {
			out = out.With(a)
		}
	}
	return out
}

type rawAnalysis struct {
	Translations map[string]string `json:"translations"`
	Allergens    []string          `json:"allergens"`
}

func decodeAnalysis(doc map[string]any) (DishAnalysis, error) {
	var raw rawAnalysis
	if err := decodeLoose(doc, &raw); err != nil {
		return Empty(), fmt.Errorf("decode analysis: %w", err)
	}
	out := Empty()
	for code, text := range raw.Translations {
		lang, ok := model.ParseLanguage(code)
		if !ok || lang == model.LangES {
			continue
		}
		if text = strings.TrimSpace(text); text != "" {
			out.Translations[lang] = text
		}
	}
	out.Allergens = filterAllergens(raw.Allergens)
	return out, nil
}
