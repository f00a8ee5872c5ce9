package service

import (
	"context" // context flows from the handler down to the kv backend
	"errors"  // errors matches sentinel values from the stores
	"fmt"     // fmt wraps oracle failures
	"log"     // log records swallowed write and publish failures
	"strings" // strings trims names and prompts

	"github.com/shopspring/decimal" // decimal is the menu price type

	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/metrics"
	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/oracle"
	q "github.com/iliyamo/menu-factory/internal/queue"
	"github.com/iliyamo/menu-factory/internal/repository"
)

var (
	// ErrNotPermutation is returned by ReorderDishes when the ids do not
	// match the stored collection exactly.
	ErrNotPermutation = errors.New("order is not a permutation of the stored dishes")
	// ErrGenerationFailed wraps an oracle failure while drafting a new menu.
	ErrGenerationFailed = errors.New("menu generation failed")
	// ErrNameRequired is returned when an instance is created without a name.
	ErrNameRequired = errors.New("instance name is required")
)

// Snapshot is what the views refresh from: the active instance, its dishes
// and its menu price, read together.
type Snapshot struct {
	Instance model.Instance  `json:"instance"`   // the active instance
	Dishes   []model.Dish    `json:"dishes"`     // its dishes in display order
	Price    decimal.Decimal `json:"menu_price"` // its daily menu price
}

// CreateInstanceRequest describes a new restaurant.  When Prompt or File is
// set the oracle drafts the seed and slogan; otherwise Seed is used as is.
type CreateInstanceRequest struct {
	Name     string       // Name is required; the id is derived from it
	Slogan   string       // Slogan overrides the generated one when set
	Theme    *model.Theme // Theme is optional presentation data
	Seed     []model.Dish // Seed is used when nothing is generated
	Prompt   string       // Prompt describes the menu to generate
	File     []byte       // File is an uploaded menu to digitise
	MimeType string       // MimeType describes File
}

// MenuService is the entry point of the views.  Every dish and price call is
// bound to the instance that is active at the time of the call.
type MenuService struct {
	registry *repository.Registry   // registry resolves the active instance on every call
	dishes   *repository.DishStore  // dishes of every instance
	prices   *repository.PriceStore // menu price of every instance
	oracle   oracle.Analyzer        // oracle drafts menus and analyses dishes
	pub      Publisher              // pub announces every committed change
}

// NewMenuService wires the facade.  A nil analyzer or publisher disables the
// corresponding feature.
func NewMenuService(reg *repository.Registry, dishes *repository.DishStore, prices *repository.PriceStore, an oracle.Analyzer, pub Publisher) *MenuService {
	if an == nil {
		an = oracle.Disabled{}
	}
	if pub == nil {
		pub = NopPublisher{}
	}
	return &MenuService{registry: reg, dishes: dishes, prices: prices, oracle: an, pub: pub}
}

// commit finishes a mutation.  Successful writes are counted and announced;
// a write refused because storage is unavailable is dropped with a log line.
func (s *MenuService) commit(ctx context.Context, instanceID string, kind q.ChangeKind, dishID int, err error) error {
	if errors.Is(err, kv.ErrUnavailable) {
		log.Printf("menu: %s on %s not persisted: %v", kind, instanceID, err)
		return nil
	}
	if err != nil {
		return err
	}
	metrics.Mutations.WithLabelValues(string(kind)).Inc()
	if perr := s.pub.Publish(ctx, q.NewEvent(instanceID, kind, dishID)); perr != nil {
		log.Printf("menu: publish %s for %s: %v", kind, instanceID, perr)
	}
	return nil
}

// Snapshot is the bulk refresh accessor.
func (s *MenuService) Snapshot(ctx context.Context) Snapshot {
	inst := s.registry.Active(ctx)
	dishes, _ := s.dishes.Load(ctx, inst)
	return Snapshot{Instance: inst, Dishes: dishes, Price: s.prices.Get(ctx, inst.ID)}
}

func (s *MenuService) Dishes(ctx context.Context) []model.Dish {
	dishes, _ := s.dishes.Load(ctx, s.registry.Active(ctx))
	return dishes
}

func (s *MenuService) MenuPrice(ctx context.Context) decimal.Decimal {
	return s.prices.Get(ctx, s.registry.Active(ctx).ID)
}

func (s *MenuService) SetMenuPrice(ctx context.Context, v decimal.Decimal) error {
	if v.IsNegative() {
		return model.ErrNegativePrice
	}
	inst := s.registry.Active(ctx)
	return s.commit(ctx, inst.ID, q.PriceChanged, 0, s.prices.Set(ctx, inst.ID, v))
}

// AddDish creates a dish in the active instance and returns it.
func (s *MenuService) AddDish(ctx context.Context, p model.DishPatch) (model.Dish, error) {
	if err := p.Validate(); err != nil {
		return model.Dish{}, err
	}
	inst := s.registry.Active(ctx)
	d, err := s.dishes.Add(ctx, inst, p)
	if err = s.commit(ctx, inst.ID, q.DishAdded, d.ID, err); err != nil {
		return model.Dish{}, err
	}
	return d, nil
}

// UpdateDish merges p into dish id.  found is false for an unknown id, which
// is not an error.
func (s *MenuService) UpdateDish(ctx context.Context, id int, p model.DishPatch) (model.Dish, bool, error) {
	if err := p.Validate(); err != nil {
		return model.Dish{}, false, err
	}
	inst := s.registry.Active(ctx)
	d, found, err := s.dishes.Update(ctx, inst, id, p)
	if !found || p.IsEmpty() {
		return d, found, err
	}
	if err = s.commit(ctx, inst.ID, q.DishUpdated, id, err); err != nil {
		return model.Dish{}, true, err
	}
	return d, true, nil
}

// DeleteDish removes dish id; removing an unknown id succeeds.
func (s *MenuService) DeleteDish(ctx context.Context, id int) error {
	inst := s.registry.Active(ctx)
	found, err := s.dishes.Remove(ctx, inst, id)
	if !found {
		return nil
	}
	return s.commit(ctx, inst.ID, q.DishRemoved, id, err)
}

// ToggleActive flips whether dish id is offered today.
func (s *MenuService) ToggleActive(ctx context.Context, id int) (model.Dish, bool, error) {
	return s.toggle(ctx, id, func(d model.Dish) model.DishPatch {
		return model.DishPatch{Active: model.Ptr(!d.Active)}
	})
}

// ToggleRation flips the ration flag of dish id.
func (s *MenuService) ToggleRation(ctx context.Context, id int) (model.Dish, bool, error) {
	return s.toggle(ctx, id, func(d model.Dish) model.DishPatch {
		return model.DishPatch{Ration: model.Ptr(!d.Ration)}
	})
}

// SetMenuRole places dish id in a slot of the daily menu, or out of it with
// model.RoleNone.
func (s *MenuService) SetMenuRole(ctx context.Context, id int, role model.MenuRole) (model.Dish, bool, error) {
	return s.UpdateDish(ctx, id, model.DishPatch{Role: &role})
}

func (s *MenuService) toggle(ctx context.Context, id int, patch func(model.Dish) model.DishPatch) (model.Dish, bool, error) {
	for _, d := range s.Dishes(ctx) {
		if d.ID == id {
			return s.UpdateDish(ctx, id, patch(d))
		}
	}
	return model.Dish{}, false, nil
}

// ReorderDishes stores the dishes in the order of ids, which must name every
// stored dish exactly once.
func (s *MenuService) ReorderDishes(ctx context.Context, ids []int) ([]model.Dish, error) {
	inst := s.registry.Active(ctx)
	current, _ := s.dishes.Load(ctx, inst)
	if len(ids) != len(current) {
		return nil, fmt.Errorf("%w: got %d ids for %d dishes", ErrNotPermutation, len(ids), len(current))
	}
	byID := make(map[int]model.Dish, len(current))
	for _, d := range current {
		byID[d.ID] = d
	}
	ordered := make([]model.Dish, 0, len(ids))
	for _, id := range ids {
		d, ok := byID[id]
		if !ok {
			return nil, fmt.Errorf("%w: unknown or repeated id %d", ErrNotPermutation, id)
		}
		delete(byID, id)
		ordered = append(ordered, d)
	}
	if err := s.commit(ctx, inst.ID, q.DishesReordered, 0, s.dishes.Reorder(ctx, inst, ordered)); err != nil {
		return nil, err
	}
	return ordered, nil
}

// MoveDish is the drag-and-drop gesture: dragged is taken out of the list
// and inserted at the position target held.  Moving a dish onto itself or
// naming an unknown id leaves the order untouched.
func (s *MenuService) MoveDish(ctx context.Context, dragged, target int) ([]model.Dish, error) {
	inst := s.registry.Active(ctx)
	current, _ := s.dishes.Load(ctx, inst)
	from, to := -1, -1
	for i, d := range current {
		switch d.ID {
		case dragged:
			from = i
		case target:
			to = i
		}
	}
	if dragged == target || from < 0 || to < 0 {
		return current, nil
	}
	moved := current[from]
	out := make([]model.Dish, 0, len(current))
	out = append(out, current[:from]...)
	out = append(out, current[from+1:]...)
	out = append(out[:to], append([]model.Dish{moved}, out[to:]...)...)
	if err := s.commit(ctx, inst.ID, q.DishesReordered, dragged, s.dishes.Reorder(ctx, inst, out)); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *MenuService) Instances(ctx context.Context) []model.Instance {
	return s.registry.List(ctx)
}

func (s *MenuService) ActiveInstance(ctx context.Context) model.Instance {
	return s.registry.Active(ctx)
}

// LoadInstance makes id the active instance.
func (s *MenuService) LoadInstance(ctx context.Context, id string) (model.Instance, error) {
	inst, err := s.registry.Get(ctx, id)
	if err != nil {
		return model.Instance{}, err
	}
	if err := s.commit(ctx, id, q.InstanceActivated, 0, s.registry.SetActive(ctx, id)); err != nil {
		return model.Instance{}, err
	}
	return inst, nil
}

// DeleteInstance removes a user-created instance and its data.  The master
// instance yields repository.ErrProtectedInstance and unregistered ids
// repository.ErrInstanceNotFound.
func (s *MenuService) DeleteInstance(ctx context.Context, id string) error {
	err := s.registry.Delete(ctx, id)
	if errors.Is(err, repository.ErrProtectedInstance) {
		return err
	}
	return s.commit(ctx, id, q.InstanceDeleted, 0, err)
}

// CreateInstance registers a new restaurant and makes it active.  When the
// oracle is asked to draft the menu and fails, nothing is created.
func (s *MenuService) CreateInstance(ctx context.Context, req CreateInstanceRequest) (model.Instance, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return model.Instance{}, ErrNameRequired
	}
	seed, slogan := req.Seed, req.Slogan
	if strings.TrimSpace(req.Prompt) != "" || len(req.File) > 0 {
		gen, err := s.oracle.GenerateMenu(ctx, oracle.GenerateRequest{
			Name: name, Prompt: req.Prompt, File: req.File, MimeType: req.MimeType,
		})
		if err != nil {
			log.Printf("menu: generating %q failed: %v", name, err)
			return model.Instance{}, fmt.Errorf("%w: %v", ErrGenerationFailed, err)
		}
		seed = gen.Dishes
		if slogan == "" {
			slogan = gen.Slogan
		}
	}
	inst, err := s.registry.Create(ctx, name, seed, req.Theme, slogan)
	if errors.Is(err, kv.ErrUnavailable) {
		log.Printf("menu: instance %q not persisted: %v", name, err)
		return inst, nil
	}
	if err != nil {
		return model.Instance{}, err
	}
	if err := s.commit(ctx, inst.ID, q.InstanceCreated, 0, nil); err != nil {
		return model.Instance{}, err
	}
	// the instance is already registered; a failed switch leaves the
	// previous active instance in place
	if err := s.commit(ctx, inst.ID, q.InstanceActivated, 0, s.registry.SetActive(ctx, inst.ID)); err != nil {
		log.Printf("menu: instance %s created but not activated: %v", inst.ID, err)
	}
	return inst, nil
}

// AnalyzeDish asks the oracle for translations and allergens of a dish
// name.  It never fails: on error the analysis is empty and warning says
// why.
func (s *MenuService) AnalyzeDish(ctx context.Context, name string) (analysis oracle.DishAnalysis, warning string) {
	a, err := s.oracle.AnalyzeDish(ctx, name)
	if err != nil {
		log.Printf("menu: analysis of %q failed: %v", name, err)
		if errors.Is(err, oracle.ErrNoAPIKey) {
			return oracle.Empty(), "AI analysis is not configured"
		}
		return oracle.Empty(), "AI analysis failed, fill in translations and allergens manually"
	}
	return a, ""
}

// Translate renders text in lang, returning text unchanged on failure.
func (s *MenuService) Translate(ctx context.Context, text string, lang model.Language) string {
	if lang == model.LangES || strings.TrimSpace(text) == "" {
		return text
	}
	return s.oracle.Translate(ctx, text, lang)
}
