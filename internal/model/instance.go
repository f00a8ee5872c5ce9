package model

// Theme describes how the client menu of an instance is styled.
//
// Fields:
//  Font  – font-lora, font-inter, font-serif or font-sans.
//  Style – classic, modern or fresh.
type Theme struct {
	Font  string `json:"font"`
	Style string `json:"style"`
}

// Instance is one independently configured restaurant menu.  The registry
// persists user-created instances as a JSON array of this struct.
//
// Fields:
//  ID            – unique identifier; also the storage key of its dishes.
//  Name          – display name.
//  Slogan        – optional tagline shown under the name.
//  InitialDishes – seed collection used until the first edit.
//  Theme         – optional look of the client view.
type Instance struct {
	ID            string `json:"id"`
	Name          string `json:"name"`
	Slogan        string `json:"slogan"`
	InitialDishes []Dish `json:"initialPlatos"`
	Theme         *Theme `json:"theme,omitempty"`
}

// PriceKey is the storage key of the instance's daily menu price.
func PriceKey(instanceID string) string { return instanceID + "_price" }

// DishesKey is the storage key of the instance's dish collection.
func DishesKey(instanceID string) string { return instanceID }

// Seed returns a private copy of the instance's seed dishes.
func (i Instance) Seed() []Dish {
	return CloneDishes(i.InitialDishes)
}
