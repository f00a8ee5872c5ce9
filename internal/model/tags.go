package model

import (
	"encoding/json"
	"strings"
)

// Allergen is one of the 13 regulated allergen tags.
type Allergen string

const (
	AllergenGluten      Allergen = "GLUTEN"
	AllergenCrustaceans Allergen = "CRUSTACEOS"
	AllergenEggs        Allergen = "HUEVOS"
	AllergenFish        Allergen = "PESCADO"
	AllergenPeanuts     Allergen = "CACAHUETES"
	AllergenSoy         Allergen = "SOJA"
	AllergenDairy       Allergen = "LACTEOS"
	AllergenCelery      Allergen = "APIO"
	AllergenMustard     Allergen = "MOSTAZA"
	AllergenSesame      Allergen = "SESAMO"
	AllergenSulphites   Allergen = "SULFITOS"
	AllergenLupins      Allergen = "ALTRAMUCES"
	AllergenMolluscs    Allergen = "MOLUSCOS"
)

// AllAllergens is the full enumeration in its canonical order.
var AllAllergens = []Allergen{
	AllergenGluten, AllergenCrustaceans, AllergenEggs, AllergenFish, AllergenPeanuts,
	AllergenSoy, AllergenDairy, AllergenCelery, AllergenMustard, AllergenSesame,
	AllergenSulphites, AllergenLupins, AllergenMolluscs,
}

// ParseAllergen normalises s and reports whether it is in the enumeration.
func ParseAllergen(s string) (Allergen, bool) {
	a := Allergen(strings.ToUpper(strings.TrimSpace(s)))
	for _, k := range AllAllergens {
		if a == k {
			return a, true
		}
	}
	return "", false
}

// Allergens is a set of allergen tags kept in insertion order.  It is
// advisory metadata; nothing checks it against the dish name.
type Allergens []Allergen

// NewAllergens builds a set from list, dropping duplicates.
func NewAllergens(list ...Allergen) Allergens {
	out := Allergens{}
	for _, a := range list {
		out = out.With(a)
	}
	return out
}

// Has reports membership.
func (s Allergens) Has(a Allergen) bool {
	for _, x := range s {
		if x == a {
			return true
		}
	}
	return false
}

// With returns the set plus a.
func (s Allergens) With(a Allergen) Allergens {
	if s.Has(a) {
		return s
	}
	return append(s, a)
}

// Union returns every tag of s followed by the tags of o not already in s.
func (s Allergens) Union(o Allergens) Allergens {
	out := append(Allergens{}, s...)
	for _, a := range o {
		out = out.With(a)
	}
	return out
}

func (s Allergens) MarshalJSON() ([]byte, error) {
	if s == nil {
		return []byte("[]"), nil
	}
	return json.Marshal([]Allergen(s))
}

// UnmarshalJSON keeps only tags of the enumeration, normalised and without
// duplicates, so stored collections and patches stay inside the 13 values.
func (s *Allergens) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		return nil
	}
	var raw []string
	if err := json.Unmarshal(b, &raw); err != nil {
		return err
	}
	out := Allergens{}
	for _, v := range raw {
		if a, ok := ParseAllergen(v); ok {
			out = out.With(a)
		}
	}
	*s = out
	return nil
}

// Categories is the set of menu sections a dish is listed in.  On storage
// it is the comma-joined string ("MENU,CARTA").
type Categories []string

const (
	CategoryCarta = "CARTA"
	CategoryMenu  = "MENU"
)

// ParseCategories splits a comma-joined tag string.
func ParseCategories(s string) Categories {
	var out Categories
	for _, p := range strings.Split(s, ",") {
		p = strings.ToUpper(strings.TrimSpace(p))
		if p != "" && !out.Has(p) {
			out = append(out, p)
		}
	}
	return out
}

// Has is the set-membership test the views use for "listed in the carta".
func (c Categories) Has(tag string) bool {
	for _, t := range c {
		if strings.EqualFold(t, tag) {
			return true
		}
	}
	return false
}

func (c Categories) String() string { return strings.Join(c, ",") }

func (c Categories) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

// UnmarshalJSON accepts the stored string form and, for hand-written
// payloads, a JSON array.
func (c *Categories) UnmarshalJSON(b []byte) error {
	if string(b) == "null" {
		*c = nil
		return nil
	}
	var s string
	if err := json.Unmarshal(b, &s); err == nil {
		*c = ParseCategories(s)
		return nil
	}
	var list []string
	if err := json.Unmarshal(b, &list); err != nil {
		return err
	}
	*c = ParseCategories(strings.Join(list, ","))
	return nil
}
