package service

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/ikkim/cart-backend/internal/app/model"
	apperrors "github.com/ikkim/cart-backend/internal/errors"
)

// MaxLineItemQuantity is the largest quantity a single line item may hold.
const MaxLineItemQuantity = math.MaxInt32

// Action describes which branch the reconciler took.
type Action int

const (
	ActionMerged Action = iota + 1
	ActionAppended
	ActionNotFoundNoop
)

func (a Action) String() string {
	switch a {
	case ActionMerged:
		return "MERGED"
	case ActionAppended:
		return "APPENDED"
	case ActionNotFoundNoop:
		return "NOT_FOUND_NOOP"
	}
	return fmt.Sprintf("Action(%d)", int(a))
}

func (a Action) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// MergeLineItem adds quantity to the first line item for productID, or appends
// a new line item when the product is absent. items is not modified.
func MergeLineItem(items []model.LineItem, productID string, quantity int) ([]model.LineItem, Action, error) {
	if err := validateLineItem(productID, quantity); err != nil {
		return nil, 0, err
	}

	out := cloneLineItems(items, 1)
	if idx := indexOfProduct(out, productID); idx >= 0 {
		if out[idx].Quantity > MaxLineItemQuantity-quantity {
			return nil, 0, apperrors.Newf(apperrors.KindInvalidQuantity,
				"quantity for product %s would exceed %d", productID, MaxLineItemQuantity)
		}
		out[idx].Quantity += quantity
		return out, ActionMerged, nil
	}

	out = append(out, model.LineItem{ProductID: productID, Quantity: quantity})
	return out, ActionAppended, nil
}

// ReplaceLineItemQuantity sets the quantity of the first line item for
// productID. It never appends: an absent product yields ActionNotFoundNoop
// and an unchanged copy of items.
func ReplaceLineItemQuantity(items []model.LineItem, productID string, quantity int) ([]model.LineItem, Action, error) {
	if err := validateLineItem(productID, quantity); err != nil {
		return nil, 0, err
	}

	out := cloneLineItems(items, 0)
	idx := indexOfProduct(out, productID)
	if idx < 0 {
		return out, ActionNotFoundNoop, nil
	}

	out[idx].Quantity = quantity
	return out, ActionMerged, nil
}

// AppendLineItems appends incoming in order without merging. The batch is
// rejected as a whole if it would put a product id in the cart twice.
func AppendLineItems(items []model.LineItem, incoming []model.LineItem) ([]model.LineItem, error) {
	seen := make(map[string]struct{}, len(items)+len(incoming))
	for _, item := range items {
		seen[item.ProductID] = struct{}{}
	}

	for i, item := range incoming {
		if err := validateLineItem(item.ProductID, item.Quantity); err != nil {
			return nil, apperrors.Newf(apperrors.KindOf(err), "item %d: %s", i, err.Error())
		}
		if _, dup := seen[item.ProductID]; dup {
			return nil, apperrors.Newf(apperrors.KindDuplicateProduct, "product %s already in cart", item.ProductID)
		}
		seen[item.ProductID] = struct{}{}
	}

	out := cloneLineItems(items, len(incoming))
	for _, item := range incoming {
		out = append(out, model.LineItem{ProductID: item.ProductID, Quantity: item.Quantity})
	}
	return out, nil
}

// RemoveLineItem drops every line item for productID and reports how many
// were removed.
func RemoveLineItem(items []model.LineItem, productID string) ([]model.LineItem, int) {
	out := make([]model.LineItem, 0, len(items))
	removed := 0
	for _, item := range items {
		if item.ProductID == productID {
			removed++
			continue
		}
		out = append(out, item)
	}
	return out, removed
}

func validateLineItem(productID string, quantity int) error {
	if productID == "" {
		return apperrors.New(apperrors.KindInvalidInput, "product id is required")
	}
	if quantity < 1 {
		return apperrors.Newf(apperrors.KindInvalidQuantity, "invalid quantity %d: must be a positive integer", quantity)
	}
	if quantity > MaxLineItemQuantity {
		return apperrors.Newf(apperrors.KindInvalidQuantity, "invalid quantity %d: must not exceed %d", quantity, MaxLineItemQuantity)
	}
	return nil
}

// first match wins
func indexOfProduct(items []model.LineItem, productID string) int {
	for i := range items {
		if items[i].ProductID == productID {
			return i
		}
	}
	return -1
}

func cloneLineItems(items []model.LineItem, extra int) []model.LineItem {
	out := make([]model.LineItem, len(items), len(items)+extra)
	copy(out, items)
	return out
}
