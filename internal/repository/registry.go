package repository

import (
	"context"       // context carries cancellation to the kv backend
	"encoding/json" // json encodes the registry array
	"fmt"           // fmt wraps storage errors
	"log"           // log reports every fallback branch
	"strconv"       // strconv formats the millisecond suffix of ids
	"time"          // time is the clock behind new ids

	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/utils"
)

// Storage keys of the registry and the active instance pointer.
const (
	RegistryKey = "global_apps_registry"
	ActiveKey   = "current_active_app_id"
)

// Registry resolves the active instance and lists every known instance.  The
// master instance is code-defined and always first; user-created instances
// are persisted as a JSON array under RegistryKey.
type Registry struct {
	kv     kv.Store         // kv holds the registry array and the active pointer
	master model.Instance   // master is the code-defined protected instance
	now    func() time.Time // now stamps new instance ids; tests pin it
}

// NewRegistry builds a registry over s with the embedded master instance.
func NewRegistry(s kv.Store) *Registry {
	return &Registry{kv: s, master: model.Master(), now: time.Now}
}

// WithClock replaces the time source used to build instance ids.
func (r *Registry) WithClock(now func() time.Time) *Registry {
	r.now = now
	return r
}

// Master returns the protected master instance.
func (r *Registry) Master() model.Instance {
	m := r.master
	m.InitialDishes = r.master.Seed()
	return m
}

// IsMaster reports whether id names the protected instance.
func (r *Registry) IsMaster(id string) bool { return id == r.master.ID }

// extras reads the user-created instances.  Missing, corrupt or unreachable
// data all mean "no extra instances".
func (r *Registry) extras(ctx context.Context) []model.Instance {
	raw, found, err := r.kv.Get(ctx, RegistryKey)
	if err != nil {
		log.Printf("registry: storage unavailable, master only: %v", err)
		return nil
	}
	if !found {
		return nil
	}
	var list []model.Instance
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		log.Printf("registry: corrupt registry ignored: %v", err)
		return nil
	}
	out := list[:0]
	for _, inst := range list {
		if inst.ID == "" || r.IsMaster(inst.ID) {
			continue
		}
		out = append(out, inst)
	}
	return out
}

func (r *Registry) saveExtras(ctx context.Context, list []model.Instance) error {
	if list == nil {
		list = []model.Instance{}
	}
	b, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("encode registry: %w", err)
	}
	if err := r.kv.Set(ctx, RegistryKey, string(b)); err != nil {
		return fmt.Errorf("save registry: %w", err)
	}
	return nil
}

// List returns the master followed by the user-created instances in
// persistence order.  It never fails.
func (r *Registry) List(ctx context.Context) []model.Instance {
	extras := r.extras(ctx)
	out := make([]model.Instance, 0, len(extras)+1)
	out = append(out, r.Master())
	return append(out, extras...)
}

// Get looks an instance up by id.
func (r *Registry) Get(ctx context.Context, id string) (model.Instance, error) {
	if r.IsMaster(id) {
		return r.Master(), nil
	}
	for _, inst := range r.extras(ctx) {
		if inst.ID == id {
			return inst, nil
		}
	}
	return model.Instance{}, ErrInstanceNotFound
}

// Active resolves the active instance pointer.  An unset or dangling
// pointer, or a storage failure, yields the master instance.
func (r *Registry) Active(ctx context.Context) model.Instance {
	id, found, err := r.kv.Get(ctx, ActiveKey)
	if err != nil {
		log.Printf("registry: active pointer unreadable, using master: %v", err)
		return r.Master()
	}
	if !found || id == "" {
		return r.Master()
	}
	inst, err := r.Get(ctx, id)
	if err != nil {
		log.Printf("registry: active pointer %q is dangling, using master", id)
		return r.Master()
	}
	return inst
}

// SetActive persists the pointer.  id is not validated; Active copes with
// dangling values.
func (r *Registry) SetActive(ctx context.Context, id string) error {
	if err := r.kv.Set(ctx, ActiveKey, id); err != nil {
		return fmt.Errorf("save active instance: %w", err)
	}
	return nil
}

// Create appends a new instance whose id is the safe form of name plus the
// creation time in milliseconds.  It does not make the instance active.
func (r *Registry) Create(ctx context.Context, name string, seed []model.Dish, theme *model.Theme, slogan string) (model.Instance, error) {
	extras := r.extras(ctx)
	inst := model.Instance{
		ID:            r.newID(name, extras),
		Name:          name,
		Slogan:        slogan,
		InitialDishes: model.CloneDishes(seed),
		Theme:         theme,
	}
	if inst.InitialDishes == nil {
		inst.InitialDishes = []model.Dish{}
	}
	if err := r.saveExtras(ctx, append(extras, inst)); err != nil {
		return model.Instance{}, err
	}
	return inst, nil
}

// maxIDBase keeps "<id>_price" well inside the 191 byte key column of the
// SQL backend, key prefix included.
const maxIDBase = 64

func (r *Registry) newID(name string, existing []model.Instance) string {
	taken := map[string]bool{r.master.ID: true}
	for _, inst := range existing {
		taken[inst.ID] = true
	}
	base := utils.SafeToken(name)
	if len(base) > maxIDBase {
		base = base[:maxIDBase]
	}
	ms := r.now().UnixMilli()
	for {
		id := base + "_" + strconv.FormatInt(ms, 10)
		if !taken[id] {
			return id
		}
		ms++
	}
}

// Delete removes a user-created instance together with its dishes and price.
// Deleting the active instance moves the pointer back to the master.  The
// master itself cannot be deleted and ids missing from the registry yield
// ErrInstanceNotFound without touching storage.
func (r *Registry) Delete(ctx context.Context, id string) error {
	if r.IsMaster(id) {
		log.Printf("registry: refusing to delete protected instance %s", id)
		return ErrProtectedInstance
	}
	extras := r.extras(ctx)
	kept := make([]model.Instance, 0, len(extras))
	for _, inst := range extras {
		if inst.ID != id {
			kept = append(kept, inst)
		}
	}
	// only registered instances own keys; anything else could name a
	// reserved key or another instance's price
	if len(kept) == len(extras) {
		return ErrInstanceNotFound
	}
	if err := r.saveExtras(ctx, kept); err != nil {
		return err // registry untouched on failure, data keys kept too
	}
	if err := r.kv.Delete(ctx, model.DishesKey(id), model.PriceKey(id)); err != nil {
		return fmt.Errorf("erase data of %s: %w", id, err)
	}
	active, found, err := r.kv.Get(ctx, ActiveKey)
	if err == nil && found && active == id {
		return r.SetActive(ctx, r.master.ID)
	}
	return nil
}
