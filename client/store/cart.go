package store

import (
	"github.com/tugrulsicakyuz/mobile-delivy/apperr"
	"github.com/tugrulsicakyuz/mobile-delivy/client/model"
)

// ConfirmReplace is asked before a cart holding another restaurant's items is wiped.
// It receives the name of the restaurant currently in the cart.
type ConfirmReplace func(currentRestaurant string) bool

// CartStore holds lines of at most one restaurant.
type CartStore struct {
	kv *KV
}

func NewCartStore(kv *KV) *CartStore {
	return &CartStore{kv: kv}
}

func (s *CartStore) Lines() ([]model.CartLine, error) {
	var lines []model.CartLine
	if _, err := s.kv.Get(keyCart, &lines); err != nil {
		return nil, err
	}
	return lines, nil
}

// AddItem adds qty of item. When the cart holds another restaurant's lines, confirm
// decides: false leaves the cart untouched and returns added=false, true replaces the
// whole cart with the new line.
func (s *CartStore) AddItem(item model.MenuItem, restaurantName string, qty int, confirm ConfirmReplace) (bool, error) {
	switch {
	case qty < 1:
		return false, apperr.Validation("addToCart", "quantity must be at least 1")
	case item.Price <= 0:
		return false, apperr.Validation("addToCart", "item %s has no price", item.Name)
	case !item.IsAvailable:
		return false, apperr.Validation("addToCart", "%s is not available", item.Name)
	}

	lines, err := s.Lines()
	if err != nil {
		return false, err
	}

	line := model.CartLine{
		ItemID:         item.ID,
		Name:           item.Name,
		Price:          item.Price,
		Quantity:       qty,
		RestaurantID:   item.RestaurantID,
		RestaurantName: restaurantName,
	}

	if len(lines) > 0 && lines[0].RestaurantID != item.RestaurantID {
		if confirm == nil || !confirm(lines[0].RestaurantName) {
			return false, nil
		}
		return true, s.kv.Put(keyCart, []model.CartLine{line})
	}

	merged := false
	for i := range lines {
		if lines[i].ItemID == item.ID {
			lines[i].Quantity += qty
			merged = true
			break
		}
	}
	if !merged {
		lines = append(lines, line)
	}
	return true, s.kv.Put(keyCart, lines)
}

// SetQuantity changes a line's quantity; zero or less removes it.
func (s *CartStore) SetQuantity(itemID string, qty int) error {
	lines, err := s.Lines()
	if err != nil {
		return err
	}
	kept := lines[:0]
	for _, l := range lines {
		if l.ItemID == itemID {
			if qty <= 0 {
				continue
			}
			l.Quantity = qty
		}
		kept = append(kept, l)
	}
	return s.kv.Put(keyCart, kept)
}

func (s *CartStore) Remove(itemID string) error {
	return s.SetQuantity(itemID, 0)
}

func (s *CartStore) Clear() error {
	return s.kv.Delete(keyCart)
}

func (s *CartStore) Total() (float64, error) {
	lines, err := s.Lines()
	if err != nil {
		return 0, err
	}
	var total float64
	for _, l := range lines {
		total += l.Price * float64(l.Quantity)
	}
	return total, nil
}
