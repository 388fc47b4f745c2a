package store

import (
	"context"
	"sort"
	"sync"
)

// MemoryStore is a concurrency-safe map keyed by id.
type MemoryStore[T any] struct {
	mu sync.RWMutex
	m  map[string]T
}

func NewMemoryStore[T any]() *MemoryStore[T] {
	return &MemoryStore[T]{m: map[string]T{}}
}

func (s *MemoryStore[T]) Get(_ context.Context, id string) (T, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	v, ok := s.m[id]
	return v, ok, nil
}

func (s *MemoryStore[T]) Put(_ context.Context, id string, v T) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.m[id] = v
	return nil
}

// Filter returns every value keep accepts, in no particular order.
func (s *MemoryStore[T]) Filter(_ context.Context, keep func(T) bool) ([]T, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var out []T
	for _, v := range s.m {
		if keep(v) {
			out = append(out, v)
		}
	}
	return out, nil
}

// MemoryRepository is a Repository that lives and dies with the process.
type MemoryRepository struct {
	profiles *MemoryStore[Profile]
	battles  *MemoryStore[BattleRecord]
}

func NewMemoryRepository() *MemoryRepository {
	return &MemoryRepository{
		profiles: NewMemoryStore[Profile](),
		battles:  NewMemoryStore[BattleRecord](),
	}
}

func (r *MemoryRepository) GetProfile(ctx context.Context, playerID string) (Profile, error) {
	p, ok, err := r.profiles.Get(ctx, playerID)
	if err != nil {
		return Profile{}, err
	}
	if !ok {
		return Profile{}, ErrNotFound
	}
	return p.clone(), nil
}

func (r *MemoryRepository) SaveProfile(ctx context.Context, p Profile) error {
	return r.profiles.Put(ctx, p.PlayerID, p.clone())
}

func (r *MemoryRepository) AddBattle(ctx context.Context, rec BattleRecord) error {
	return r.battles.Put(ctx, rec.ID, rec)
}

func (r *MemoryRepository) ListBattles(ctx context.Context, playerID string, limit int) ([]BattleRecord, error) {
	out, err := r.battles.Filter(ctx, func(rec BattleRecord) bool {
		return rec.PlayerID == playerID
	})
	if err != nil {
		return nil, err
	}
	sort.Slice(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].ID > out[j].ID
	})
	if limit > 0 && len(out) > limit {
		out = out[:limit]
	}
	return out, nil
}

func (r *MemoryRepository) GetBattle(ctx context.Context, id string) (BattleRecord, error) {
	rec, ok, err := r.battles.Get(ctx, id)
	if err != nil {
		return BattleRecord{}, err
	}
	if !ok {
		return BattleRecord{}, ErrNotFound
	}
	return rec, nil
}

func (r *MemoryRepository) Close() error { return nil }
