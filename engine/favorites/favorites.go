// Package favorites keeps each visitor's saved vehicles as one JSON array
// under a fixed storage key.
package favorites

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/WessleyAI/showroom/engine/domain"
	"github.com/WessleyAI/showroom/engine/storage"
)

// StorageKey is where the favorites array lives in a visitor's namespace.
const StorageKey = "favoriteVehicles"

// Repository is the favorites store for one visitor namespace at a time.
type Repository interface {
	List(ctx context.Context, visitor string) ([]domain.Vehicle, error)
	Add(ctx context.Context, visitor string, v domain.Vehicle) error
	Remove(ctx context.Context, visitor, id string) error
	Clear(ctx context.Context, visitor string) error
	IsFavorite(ctx context.Context, visitor, id string) (bool, error)
	Toggle(ctx context.Context, visitor string, v domain.Vehicle) (added bool, err error)
}

// Store implements Repository on top of a storage.Storage.
type Store struct {
	st     storage.Storage
	logger *slog.Logger
}

var _ Repository = (*Store)(nil)

// New creates a Store.
func New(st storage.Storage, logger *slog.Logger) *Store {
	return &Store{st: st, logger: logger}
}

// List returns the visitor's favorites in insertion order. A missing or
// unreadable blob is an empty list.
func (s *Store) List(ctx context.Context, visitor string) ([]domain.Vehicle, error) {
	raw, ok, err := s.st.GetItem(ctx, visitor, StorageKey)
	if err != nil {
		return nil, fmt.Errorf("favorites: load: %w", err)
	}
	if !ok || raw == "" {
		return []domain.Vehicle{}, nil
	}
	var list []domain.Vehicle
	if err := json.Unmarshal([]byte(raw), &list); err != nil {
		s.logger.Warn("discarding unreadable favorites", "visitor", visitor, "err", err)
		return []domain.Vehicle{}, nil
	}
	if list == nil {
		list = []domain.Vehicle{}
	}
	return list, nil
}

func (s *Store) save(ctx context.Context, visitor string, list []domain.Vehicle) error {
	data, err := json.Marshal(list)
	if err != nil {
		return fmt.Errorf("favorites: encode: %w", err)
	}
	if err := s.st.SetItem(ctx, visitor, StorageKey, string(data)); err != nil {
		return fmt.Errorf("favorites: save: %w", err)
	}
	return nil
}

func indexOf(list []domain.Vehicle, id string) int {
	for i, v := range list {
		if v.ID == id {
			return i
		}
	}
	return -1
}

// Add appends v, replacing an entry with the same id in place.
func (s *Store) Add(ctx context.Context, visitor string, v domain.Vehicle) error {
	v = v.WithID()
	list, err := s.List(ctx, visitor)
	if err != nil {
		return err
	}
	if i := indexOf(list, v.ID); i >= 0 {
		list[i] = v
	} else {
		list = append(list, v)
	}
	return s.save(ctx, visitor, list)
}

// Remove drops the vehicle with id. An absent id is not an error and does
// not rewrite the stored list.
func (s *Store) Remove(ctx context.Context, visitor, id string) error {
	list, err := s.List(ctx, visitor)
	if err != nil {
		return err
	}
	i := indexOf(list, id)
	if i < 0 {
		return nil
	}
	return s.save(ctx, visitor, append(list[:i], list[i+1:]...))
}

// Clear forgets every favorite.
func (s *Store) Clear(ctx context.Context, visitor string) error {
	if err := s.st.RemoveItem(ctx, visitor, StorageKey); err != nil {
		return fmt.Errorf("favorites: clear: %w", err)
	}
	return nil
}

// IsFavorite reports whether id is saved.
func (s *Store) IsFavorite(ctx context.Context, visitor, id string) (bool, error) {
	list, err := s.List(ctx, visitor)
	if err != nil {
		return false, err
	}
	return indexOf(list, id) >= 0, nil
}

// Toggle removes v when saved and adds it otherwise, reporting whether it
// was added.
func (s *Store) Toggle(ctx context.Context, visitor string, v domain.Vehicle) (bool, error) {
	v = v.WithID()
	list, err := s.List(ctx, visitor)
	if err != nil {
		return false, err
	}
	if i := indexOf(list, v.ID); i >= 0 {
		return false, s.save(ctx, visitor, append(list[:i], list[i+1:]...))
	}
	return true, s.save(ctx, visitor, append(list, v))
}

// IDs returns the set of saved ids, for flagging search results.
func (s *Store) IDs(ctx context.Context, visitor string) (map[string]bool, error) {
	list, err := s.List(ctx, visitor)
	if err != nil {
		return nil, err
	}
	ids := make(map[string]bool, len(list))
	for _, v := range list {
		ids[v.ID] = true
	}
	return ids, nil
}
