package repository

import (
	"context"       // context carries cancellation to the kv backend
	"encoding/json" // json is the persisted collection format
	"fmt"           // fmt wraps storage errors
	"log"           // log reports every self-healing branch

	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/metrics"
	"github.com/iliyamo/menu-factory/internal/model"
)

// LoadOutcome tells which branch of Load produced the collection.
type LoadOutcome int

const (
	LoadFound         LoadOutcome = iota // persisted collection used as is (after backfill)
	LoadEmptyFallback                    // persisted "[]" while the seed has dishes; seed used
	LoadNotFound                         // nothing persisted; seed used
	LoadCorrupt                          // persisted value unparseable; seed used
	LoadUnavailable                      // storage failed; seed used
)

func (o LoadOutcome) String() string {
	switch o {
	case LoadFound:
		return "found"
	case LoadEmptyFallback:
		return "empty_fallback"
	case LoadNotFound:
		return "not_found"
	case LoadCorrupt:
		return "corrupt"
	case LoadUnavailable:
		return "unavailable"
	}
	return "unknown"
}

// storedDish decodes one persisted record.  The pointer fields shadow the
// embedded ones so Load can tell "absent" from "false"/"empty"; records
// written before those fields existed get them backfilled.
type storedDish struct {
	model.Dish
	Ration    *bool            `json:"Es_Racion"` // nil when the record predates the flag
	Allergens *model.Allergens `json:"Alergenos"` // nil when the record predates allergens
}

func (s storedDish) toDish() model.Dish {
	d := s.Dish
	if s.Ration != nil {
		d.Ration = *s.Ration
	} else {
		d.Ration = d.Type.RationByDefault()
	}
	if s.Allergens != nil && *s.Allergens != nil {
		d.Allergens = *s.Allergens
	} else {
		d.Allergens = model.Allergens{}
	}
	return d
}

// DishStore persists the ordered dish collection of every instance under the
// instance id.  Every write reads, modifies and rewrites the whole
// collection; concurrent writers are last-write-wins.
type DishStore struct {
	kv kv.Store // kv holds one JSON array per instance id
}

// NewDishStore returns a store over s.
func NewDishStore(s kv.Store) *DishStore { return &DishStore{kv: s} }

// Load returns the dishes of inst.  It never fails: missing, empty, corrupt
// or unreachable data yields a copy of the instance seed.
func (r *DishStore) Load(ctx context.Context, inst model.Instance) ([]model.Dish, LoadOutcome) {
	dishes, outcome := r.load(ctx, inst)
	metrics.DishLoads.WithLabelValues(outcome.String()).Inc()
	return dishes, outcome
}

func (r *DishStore) load(ctx context.Context, inst model.Instance) ([]model.Dish, LoadOutcome) {
	raw, found, err := r.kv.Get(ctx, model.DishesKey(inst.ID))
	if err != nil {
		log.Printf("dish-store: %s: storage unavailable, serving seed: %v", inst.ID, err)
		return inst.Seed(), LoadUnavailable
	}
	if !found {
		return inst.Seed(), LoadNotFound // first use of this instance
	}
	var stored []storedDish
	if err := json.Unmarshal([]byte(raw), &stored); err != nil {
		log.Printf("dish-store: %s: corrupt collection, serving seed: %v", inst.ID, err)
		return inst.Seed(), LoadCorrupt
	}
	if len(stored) == 0 && len(inst.InitialDishes) > 0 {
		log.Printf("dish-store: %s: persisted collection is empty, restoring %d seed dishes", inst.ID, len(inst.InitialDishes))
		return inst.Seed(), LoadEmptyFallback
	}
	dishes := make([]model.Dish, len(stored))
	for i, s := range stored {
		dishes[i] = s.toDish()
	}
	return dishes, LoadFound
}

// Save overwrites the persisted collection of instanceID.
func (r *DishStore) Save(ctx context.Context, instanceID string, dishes []model.Dish) error {
	if dishes == nil {
		dishes = []model.Dish{} // persist "[]" rather than "null"
	}
	b, err := json.Marshal(dishes)
	if err != nil {
		return fmt.Errorf("encode dishes: %w", err)
	}
	if err := r.kv.Set(ctx, model.DishesKey(instanceID), string(b)); err != nil {
		return fmt.Errorf("save dishes of %s: %w", instanceID, err)
	}
	return nil
}

// NewDish builds the record add would create with the given id: active,
// outside the daily menu, listed in the carta, no allergens, and the ration
// flag derived from the type unless the patch sets it.
func NewDish(id int, p model.DishPatch) model.Dish {
	d := model.Dish{
		ID:         id,
		Categories: model.Categories{model.CategoryCarta},
		Active:     true,
		Role:       model.RoleNone,
		Allergens:  model.Allergens{},
	}
	d = p.Apply(d)
	if p.Ration == nil {
		d.Ration = d.Type.RationByDefault()
	}
	if len(d.Categories) == 0 {
		d.Categories = model.Categories{model.CategoryCarta}
	}
	return d
}

// Add appends a new dish with id = max existing id + 1 and persists the
// collection.  The created record is returned even when saving fails.
func (r *DishStore) Add(ctx context.Context, inst model.Instance, p model.DishPatch) (model.Dish, error) {
	dishes, _ := r.Load(ctx, inst)
	d := NewDish(model.MaxDishID(dishes)+1, p)
	dishes = append(dishes, d)
	return d, r.Save(ctx, inst.ID, dishes)
}

// Update merges p into the dish with the given id.  An unknown id or an
// empty patch is a silent no-op; found reports whether the id exists.
func (r *DishStore) Update(ctx context.Context, inst model.Instance, id int, p model.DishPatch) (updated model.Dish, found bool, err error) {
	dishes, _ := r.Load(ctx, inst)
	for i := range dishes {
		if dishes[i].ID != id {
			continue
		}
		if p.IsEmpty() {
			return dishes[i], true, nil
		}
		dishes[i] = p.Apply(dishes[i])
		return dishes[i], true, r.Save(ctx, inst.ID, dishes)
	}
	return model.Dish{}, false, nil
}

// Remove drops the dish with the given id.  Removing an unknown id is a
// no-op, which makes the operation idempotent.
func (r *DishStore) Remove(ctx context.Context, inst model.Instance, id int) (found bool, err error) {
	dishes, _ := r.Load(ctx, inst)
	out := dishes[:0:0]
	for _, d := range dishes {
		if d.ID == id {
			found = true
			continue
		}
		out = append(out, d)
	}
	if !found {
		return false, nil
	}
	return true, r.Save(ctx, inst.ID, out)
}

// Reorder persists dishes as the new canonical order.  The list is not
// checked against the stored ids.
func (r *DishStore) Reorder(ctx context.Context, inst model.Instance, dishes []model.Dish) error {
	return r.Save(ctx, inst.ID, dishes)
}
