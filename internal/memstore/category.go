package memstore

import (
	"context"

	"farmdirect-be/internal/category"
)

type categoryRepo struct {
	s *Store
}

func (r *categoryRepo) GetCategories(_ context.Context) ([]*category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*category.Category, 0, len(r.s.categories))
	for _, id := range sortedIDs(r.s.categories) {
		c := r.s.categories[id]
		out = append(out, &c)
	}
	return out, nil
}

func (r *categoryRepo) GetCategory(_ context.Context, id int64) (*category.Category, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	c, ok := r.s.categories[id]
	if !ok {
		return nil, category.ErrCategoryNotFound
	}
	return &c, nil
}

func (r *categoryRepo) AddCategory(_ context.Context, name, icon, color string) (*category.Category, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	c := category.Category{
		ID:    r.s.next("category"),
		Name:  name,
		Icon:  icon,
		Color: color,
	}
	r.s.categories[c.ID] = c
	return &c, nil
}
