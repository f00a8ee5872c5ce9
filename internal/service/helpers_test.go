package service

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/mock"

	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/model"
	"github.com/iliyamo/menu-factory/internal/oracle"
	q "github.com/iliyamo/menu-factory/internal/queue"
	"github.com/iliyamo/menu-factory/internal/repository"
)

// MockAnalyzer is a mock implementation of oracle.Analyzer
type MockAnalyzer struct {
	mock.Mock
}

func (m *MockAnalyzer) AnalyzeDish(ctx context.Context, name string) (oracle.DishAnalysis, error) {
	args := m.Called(ctx, name)
	return args.Get(0).(oracle.DishAnalysis), args.Error(1)
}

func (m *MockAnalyzer) GenerateMenu(ctx context.Context, req oracle.GenerateRequest) (oracle.GeneratedMenu, error) {
	args := m.Called(ctx, req)
	return args.Get(0).(oracle.GeneratedMenu), args.Error(1)
}

func (m *MockAnalyzer) Translate(ctx context.Context, text string, target model.Language) string {
	args := m.Called(ctx, text, target)
	return args.String(0)
}

// recorder collects published events.
type recorder struct {
	mu     sync.Mutex
	events []q.MenuChangedEvent
	err    error
}

func (r *recorder) Publish(_ context.Context, ev q.MenuChangedEvent) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.events = append(r.events, ev)
	return r.err
}

func (r *recorder) kinds() []q.ChangeKind {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []q.ChangeKind
	for _, ev := range r.events {
		out = append(out, ev.Kind)
	}
	return out
}

type fixture struct {
	svc      *MenuService
	store    kv.Store
	registry *repository.Registry
	analyzer *MockAnalyzer
	events   *recorder
}

func newFixture(t *testing.T, store kv.Store) fixture {
	t.Helper()
	reg := repository.NewRegistry(store).WithClock(func() time.Time { return time.UnixMilli(1700000000000) })
	an := new(MockAnalyzer)
	rec := &recorder{}
	svc := NewMenuService(reg, repository.NewDishStore(store), repository.NewPriceStore(store, repository.DefaultMenuPrice), an, rec)
	t.Cleanup(func() { an.AssertExpectations(t) })
	return fixture{svc: svc, store: store, registry: reg, analyzer: an, events: rec}
}

func ids(dishes []model.Dish) []int {
	out := make([]int, 0, len(dishes))
	for _, d := range dishes {
		out = append(out, d.ID)
	}
	return out
}

func seedDishes(n int) []model.Dish {
	out := make([]model.Dish, 0, n)
	for i := 1; i <= n; i++ {
		out = append(out, model.Dish{
			ID:         i,
			NameES:     "Plato",
			Categories: model.Categories{model.CategoryCarta},
			Type:       model.TypeMeat,
			Active:     true,
			Allergens:  model.Allergens{},
		})
	}
	return out
}
