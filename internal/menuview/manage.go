package menuview

import "github.com/iliyamo/menu-factory/internal/model"

// ManageGroup is a titled group of full dish records for the management
// panel.
type ManageGroup struct {
	Key    string       `json:"key"`
	Title  string       `json:"title"`
	Dishes []model.Dish `json:"dishes"`
}

// Manage groups every dish, active or not, for the management panel.  In
// menu mode it shows the dishes holding a daily-menu slot grouped by role;
// in carta and raciones modes it shows every carta dish grouped by type so
// the ration flag can be toggled on any of them.  Titles are Spanish.
func Manage(dishes []model.Dish, mode View) []ManageGroup {
	l := LabelsFor(model.LangES)
	out := []ManageGroup{}
	if mode == ViewMenu {
		byRole := map[model.MenuRole][]model.Dish{}
		for _, d := range dishes {
			if InMenu(d) {
				byRole[d.Role] = append(byRole[d.Role], d)
			}
		}
		for _, r := range roleOrder {
			if len(byRole[r]) > 0 {
				out = append(out, ManageGroup{Key: string(r), Title: l.RoleTitle(r), Dishes: byRole[r]})
			}
		}
		return out
	}
	var carta []model.Dish
	for _, d := range dishes {
		if d.Categories.Has(model.CategoryCarta) {
			carta = append(carta, d)
		}
	}
	for _, g := range groupByType(carta) {
		out = append(out, ManageGroup{Key: g.key, Title: g.title(l), Dishes: g.dishes})
	}
	return out
}
