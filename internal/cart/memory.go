package cart

import (
	"context"
	"sync"
)

// MemoryStore хранит корзины в памяти процесса.
type MemoryStore struct {
	mu    sync.RWMutex
	carts map[Key]map[string]Line
}

// NewMemoryStore создаёт пустое хранилище.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{carts: make(map[Key]map[string]Line)}
}

func (s *MemoryStore) Add(_ context.Context, key Key, line Line) (Cart, error) {
	if err := key.validate(); err != nil {
		return Cart{}, err
	}
	if err := line.validate(); err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	lines, ok := s.carts[key]
	if !ok {
		lines = make(map[string]Line)
		s.carts[key] = lines
	}
	if existing, ok := lines[line.ProductID]; ok {
		line.Qty += existing.Qty
		if line.Name == "" {
			line.Name = existing.Name
		}
	}
	lines[line.ProductID] = line
	return s.snapshotLocked(key), nil
}

func (s *MemoryStore) SetQty(_ context.Context, key Key, productID string, qty int32) (Cart, error) {
	if err := key.validate(); err != nil {
		return Cart{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	line, ok := s.carts[key][productID]
	if !ok {
		return Cart{}, ErrLineNotFound
	}
	if qty <= 0 {
		delete(s.carts[key], productID)
	} else {
		line.Qty = qty
		s.carts[key][productID] = line
	}
	return s.snapshotLocked(key), nil
}

func (s *MemoryStore) Remove(ctx context.Context, key Key, productID string) (Cart, error) {
	return s.SetQty(ctx, key, productID, 0)
}

func (s *MemoryStore) Get(_ context.Context, key Key) (Cart, error) {
	if err := key.validate(); err != nil {
		return Cart{}, err
	}
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snapshotLocked(key), nil
}

func (s *MemoryStore) Clear(_ context.Context, key Key) error {
	if err := key.validate(); err != nil {
		return err
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.carts, key)
	return nil
}

func (s *MemoryStore) snapshotLocked(key Key) Cart {
	lines := make([]Line, 0, len(s.carts[key]))
	for _, l := range s.carts[key] {
		lines = append(lines, l)
	}
	sortLines(lines)
	return Cart{Key: key, Lines: lines}
}

var _ Store = (*MemoryStore)(nil)
