package repository

import (
	"context" // context carries cancellation to the kv backend
	"fmt"     // fmt wraps storage errors
	"log"     // log reports fallbacks to the default price
	"strings" // strings cleans up legacy quoted values

	"github.com/shopspring/decimal" // decimal keeps prices exact

	"github.com/iliyamo/menu-factory/internal/kv"
	"github.com/iliyamo/menu-factory/internal/model"
)

// DefaultMenuPrice is used when no price is configured.
var DefaultMenuPrice = decimal.RequireFromString("16.50")

// PriceStore keeps the per-person daily menu price of each instance as a
// decimal string under "<id>_price".
type PriceStore struct {
	kv  kv.Store        // kv holds one "<id>_price" key per instance
	def decimal.Decimal // def is served whenever nothing usable is stored
}

// NewPriceStore returns a store whose Get falls back to def.
func NewPriceStore(s kv.Store, def decimal.Decimal) *PriceStore {
	return &PriceStore{kv: s, def: def}
}

// Get returns the stored price, or the default when it is absent,
// unparseable or the storage is unreachable.
func (r *PriceStore) Get(ctx context.Context, instanceID string) decimal.Decimal {
	raw, found, err := r.kv.Get(ctx, model.PriceKey(instanceID))
	if err != nil {
		log.Printf("price-store: %s: storage unavailable, using default: %v", instanceID, err)
		return r.def
	}
	if !found {
		return r.def // never set for this instance
	}
	// older writers stored the JSON-encoded string
	v, err := decimal.NewFromString(strings.Trim(strings.TrimSpace(raw), `"`))
	if err != nil {
		log.Printf("price-store: %s: unparseable price %q, using default", instanceID, raw)
		return r.def
	}
	return v
}

// Set stores v verbatim.  The sign is checked by the caller.
func (r *PriceStore) Set(ctx context.Context, instanceID string, v decimal.Decimal) error {
	if err := r.kv.Set(ctx, model.PriceKey(instanceID), v.String()); err != nil {
		return fmt.Errorf("save price of %s: %w", instanceID, err)
	}
	return nil
}
