// Package menuview turns a dish collection into the grouped, localised
// structures shown to customers and to restaurant staff.
package menuview

import (
	_ "embed"
	"fmt"
	"sync"

	"gopkg.in/yaml.v3"

	"github.com/iliyamo/menu-factory/internal/model"
)

//go:embed data/i18n.yaml
var i18nYAML []byte

// Labels are the fixed UI strings of one language.
type Labels struct {
	MenuOfTheDay   string            `yaml:"menu_of_the_day" json:"menu_of_the_day"`
	Carta          string            `yaml:"carta" json:"carta"`
	Rations        string            `yaml:"rations" json:"rations"`
	FirstCourses   string            `yaml:"first_courses" json:"first_courses"`
	SecondCourses  string            `yaml:"second_courses" json:"second_courses"`
	Desserts       string            `yaml:"desserts" json:"desserts"`
	PricePerPerson string            `yaml:"price_per_person" json:"price_per_person"`
	AllergenInfo   string            `yaml:"allergen_info" json:"allergen_info"`
	Other          string            `yaml:"other" json:"other"`
	Types          map[string]string `yaml:"types" json:"types"`
	Allergens      map[string]string `yaml:"allergens" json:"allergens"`
}

var (
	labelsOnce sync.Once
	labels     map[model.Language]Labels
)

func loadLabels() {
	var raw map[string]Labels
	if err := yaml.Unmarshal(i18nYAML, &raw); err != nil {
		panic(fmt.Sprintf("menuview: embedded translations: %v", err))
	}
	labels = make(map[model.Language]Labels, len(raw))
	for code, l := range raw {
		if lang, ok := model.ParseLanguage(code); ok {
			labels[lang] = l
		}
	}
}

// LabelsFor returns the strings of lang, falling back to Spanish.
func LabelsFor(lang model.Language) Labels {
	labelsOnce.Do(loadLabels)
	if l, ok := labels[lang]; ok {
		return l
	}
	return labels[model.LangES]
}

// TypeTitle is the section title of a dish type; unknown types are "other".
func (l Labels) TypeTitle(t model.DishType) string {
	if s, ok := l.Types[string(t)]; ok && t.Known() {
		return s
	}
	return l.Other
}

func (l Labels) AllergenName(a model.Allergen) string {
	if s, ok := l.Allergens[string(a)]; ok {
		return s
	}
	return string(a)
}

func (l Labels) RoleTitle(r model.MenuRole) string {
	switch r {
	case model.RoleFirst:
		return l.FirstCourses
	case model.RoleSecond:
		return l.SecondCourses
	case model.RoleDessert:
		return l.Desserts
	case model.RoleRation:
		return l.Rations
	}
	return l.Other
}
