package memstore

import (
	"context"

	"farmdirect-be/internal/product"
)

type productRepo struct {
	s *Store
}

func (r *productRepo) Create(_ context.Context, farmerID int64, input product.NewProductInput) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p := product.Product{
		ID:          r.s.next("product"),
		Name:        input.Name,
		Description: input.Description,
		Price:       input.Price,
		Unit:        input.Unit,
		ImageURLs:   append([]string(nil), input.ImageURLs...),
		Stock:       input.Stock,
		CategoryID:  input.CategoryID,
		FarmerID:    farmerID,
		Organic:     input.Organic,
		Featured:    input.Featured,
	}
	r.s.products[p.ID] = p
	return clone(p), nil
}

func (r *productRepo) GetByID(_ context.Context, id int64) (*product.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}
	return clone(p), nil
}

func (r *productRepo) List(_ context.Context, opts product.ListOptions) ([]*product.Product, error) {
	limit := opts.Limit
	if limit <= 0 || limit > 100 {
		limit = 20
	}
	offset := opts.Offset
	if offset < 0 {
		offset = 0
	}

	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	matched := make([]*product.Product, 0)
	for _, id := range sortedIDs(r.s.products) {
		p := r.s.products[id]
		if opts.CategoryID != nil && p.CategoryID != *opts.CategoryID {
			continue
		}
		if opts.Featured != nil && p.Featured != *opts.Featured {
			continue
		}
		matched = append(matched, clone(p))
	}

	if offset >= len(matched) {
		return []*product.Product{}, nil
	}
	matched = matched[offset:]
	if len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

func (r *productRepo) GetByFarmer(_ context.Context, farmerID int64) ([]*product.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*product.Product, 0)
	for _, id := range sortedIDs(r.s.products) {
		if r.s.products[id].FarmerID == farmerID {
			out = append(out, clone(r.s.products[id]))
		}
	}
	return out, nil
}

func (r *productRepo) Update(_ context.Context, id int64, input product.UpdateProductInput) (*product.Product, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, product.ErrProductNotFound
	}

	if input.Name != nil {
		p.Name = *input.Name
	}
	if input.Description != nil {
		p.Description = *input.Description
	}
	if input.Price != nil {
		p.Price = *input.Price
	}
	if input.Unit != nil {
		p.Unit = *input.Unit
	}
	if input.ImageURLs != nil {
		p.ImageURLs = append([]string(nil), input.ImageURLs...)
	}
	if input.Stock != nil {
		p.Stock = *input.Stock
	}
	if input.CategoryID != nil {
		p.CategoryID = *input.CategoryID
	}
	if input.Organic != nil {
		p.Organic = *input.Organic
	}
	if input.Featured != nil {
		p.Featured = *input.Featured
	}

	r.s.products[id] = p
	return clone(p), nil
}

func (r *productRepo) Delete(_ context.Context, id int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return product.ErrProductNotFound
	}
	delete(r.s.products, id)
	return nil
}

func clone(p product.Product) *product.Product {
	p.ImageURLs = append([]string(nil), p.ImageURLs...)
	return &p
}
