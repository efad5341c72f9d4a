package handlers

import (
	"context"

	"github.com/cideldill/cideldill/internal/breakpoint"
	"github.com/cideldill/cideldill/internal/cidstore"
	"github.com/cideldill/cideldill/internal/codec"
)

// resolveItems stores any inline data carried by items and reports which
// CIDs among those with no inline data are missing from the store — the
// "demand that each incoming Serialized Item either carries data or names
// a CID already present" rule from spec.md §4.F.
func resolveItems(ctx context.Context, store *cidstore.Store, items []breakpoint.SerializedItem) ([]string, error) {
	var missing []string
	for _, item := range items {
		if item.CID == "" {
			continue
		}
		if len(item.Data) > 0 {
			if err := store.StoreOne(ctx, codec.CID(item.CID), item.Data); err != nil {
				return nil, err
			}
			continue
		}
		exists, err := store.Exists(ctx, codec.CID(item.CID))
		if err != nil {
			return nil, err
		}
		if !exists {
			missing = append(missing, item.CID)
		}
	}
	return missing, nil
}

// resolveOptionalItem is resolveItems for a single, possibly-nil item.
func resolveOptionalItem(ctx context.Context, store *cidstore.Store, item *breakpoint.SerializedItem) ([]string, error) {
	if item == nil {
		return nil, nil
	}
	return resolveItems(ctx, store, []breakpoint.SerializedItem{*item})
}
