package menuview

import (
	"sort"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/iliyamo/menu-factory/internal/model"
)

// View is one of the three tabs of the menu.
type View string

const (
	ViewMenu    View = "menu"     // fixed-price daily menu
	ViewCarta   View = "carta"    // à la carte
	ViewRations View = "raciones" // shareable rations only
)

// OtherKey groups dishes whose type is not part of the enumeration.
const OtherKey = "OTROS"

// ParseView accepts the view names case-insensitively; "" means carta.
func ParseView(s string) (View, bool) {
	switch v := View(strings.ToLower(strings.TrimSpace(s))); v {
	case ViewMenu, ViewCarta, ViewRations:
		return v, true
	case "":
		return ViewCarta, true
	}
	return "", false
}

var roleOrder = []model.MenuRole{model.RoleFirst, model.RoleSecond, model.RoleDessert}

// AllergenTag is an allergen with its localised name.
type AllergenTag struct {
	Code model.Allergen `json:"code"`
	Name string         `json:"name"`
}

// Item is a dish as shown to customers.
type Item struct {
	ID        int              `json:"id"`
	Name      string           `json:"name"`
	Price     *decimal.Decimal `json:"price,omitempty"` // nil: price hidden
	Ration    bool             `json:"ration"`
	Allergens []AllergenTag    `json:"allergens,omitempty"`
}

// Section is a titled group of items.
type Section struct {
	Key   string `json:"key"`
	Title string `json:"title"`
	Items []Item `json:"items"`
}

// ClientMenu is the payload of the public menu.
type ClientMenu struct {
	View        View             `json:"view"`
	Lang        model.Language   `json:"lang"`
	Title       string           `json:"title"`
	Sections    []Section        `json:"sections"`
	Price       *decimal.Decimal `json:"price,omitempty"`
	PriceLabel  string           `json:"price_label,omitempty"`
	LegendTitle string           `json:"legend_title,omitempty"`
	Legend      []AllergenTag    `json:"legend,omitempty"`
}

// InMenu reports whether d occupies a slot of the fixed daily menu.
func InMenu(d model.Dish) bool {
	return d.Role != model.RoleNone && d.Role != model.RoleRation
}

// Client builds the customer view of dishes.  Only active dishes are shown.
// With allergens set, items carry their allergen tags and the menu gets a
// sorted legend of the allergens present in the visible dishes.
func Client(dishes []model.Dish, price decimal.Decimal, view View, lang model.Language, allergens bool) ClientMenu {
	l := LabelsFor(lang)
	out := ClientMenu{View: view, Lang: lang, Sections: []Section{}}

	var visible []model.Dish
	switch view {
	case ViewMenu:
		out.Title = l.MenuOfTheDay
		byRole := map[model.MenuRole][]model.Dish{}
		for _, d := range dishes {
			if d.Active && InMenu(d) {
				byRole[d.Role] = append(byRole[d.Role], d)
				visible = append(visible, d)
			}
		}
		for _, r := range roleOrder {
			if len(byRole[r]) == 0 {
				continue
			}
			sec := Section{Key: string(r), Title: l.RoleTitle(r)}
			for _, d := range byRole[r] {
				// per-dish prices are not shown inside the fixed menu
				sec.Items = append(sec.Items, item(d, lang, l, false, allergens))
			}
			out.Sections = append(out.Sections, sec)
		}
		p := price
		out.Price = &p
		out.PriceLabel = l.PricePerPerson
	default:
		out.Title = l.Carta
		if view == ViewRations {
			out.Title = l.Rations
		}
		for _, d := range dishes {
			if !d.Active || !d.Categories.Has(model.CategoryCarta) {
				continue
			}
			if view == ViewRations && !d.Ration {
				continue
			}
			visible = append(visible, d)
		}
		for _, g := range groupByType(visible) {
			sec := Section{Key: g.key, Title: g.title(l)}
			for _, d := range g.dishes {
				sec.Items = append(sec.Items, item(d, lang, l, true, allergens))
			}
			out.Sections = append(out.Sections, sec)
		}
	}

	if allergens {
		out.LegendTitle = l.AllergenInfo
		out.Legend = legend(visible, l)
	}
	return out
}

func item(d model.Dish, lang model.Language, l Labels, withPrice, allergens bool) Item {
	it := Item{ID: d.ID, Name: d.Name(lang), Ration: d.Ration}
	if withPrice && d.Price.IsPositive() {
		p := d.Price
		it.Price = &p
	}
	if allergens {
		for _, a := range d.Allergens {
			it.Allergens = append(it.Allergens, AllergenTag{Code: a, Name: l.AllergenName(a)})
		}
	}
	return it
}

// legend is the sorted union of the allergens of dishes.
func legend(dishes []model.Dish, l Labels) []AllergenTag {
	var all model.Allergens
	for _, d := range dishes {
		all = all.Union(d.Allergens)
	}
	sort.Slice(all, func(i, j int) bool { return all[i] < all[j] })
	out := make([]AllergenTag, 0, len(all))
	for _, a := range all {
		out = append(out, AllergenTag{Code: a, Name: l.AllergenName(a)})
	}
	return out
}

type typeGroup struct {
	key    string
	dishes []model.Dish
}

func (g typeGroup) title(l Labels) string {
	if g.key == OtherKey {
		return l.Other
	}
	return l.TypeTitle(model.DishType(g.key))
}

// groupByType groups dishes by type in carta order, keeping the collection
// order inside each group.  Unknown types go last under OtherKey.
func groupByType(dishes []model.Dish) []typeGroup {
	byKey := map[string][]model.Dish{}
	for _, d := range dishes {
		k := string(d.Type)
		if !d.Type.Known() {
			k = OtherKey
		}
		byKey[k] = append(byKey[k], d)
	}
	var out []typeGroup
	for _, t := range model.DishTypes {
		if ds := byKey[string(t)]; len(ds) > 0 {
			out = append(out, typeGroup{key: string(t), dishes: ds})
		}
	}
	if ds := byKey[OtherKey]; len(ds) > 0 {
		out = append(out, typeGroup{key: OtherKey, dishes: ds})
	}
	return out
}
