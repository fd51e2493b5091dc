package repository

import (
	"context"
	"fmt"

	"github.com/jacentio/platewise/entity"
)

// CreateFoodItem stores a new food item with zero totals.
func (r *Repository) CreateFoodItem(ctx context.Context, in entity.FoodItemInput) (*entity.FoodItem, error) {
	f, err := entity.NewFoodItem(in, nil)
	if err != nil {
		return nil, err
	}
	item, err := entity.Marshal(f)
	if err != nil {
		return nil, err
	}
	if err := r.backend.Create(ctx, f, item); err != nil {
		return nil, fmt.Errorf("create food item: %w", err)
	}
	return f, nil
}

// GetFoodItem returns a food item by id.
func (r *Repository) GetFoodItem(ctx context.Context, id string) (*entity.FoodItem, error) {
	item, err := r.backend.Get(ctx, entity.Key(id))
	if err != nil {
		return nil, fmt.Errorf("get food item %s: %w", id, err)
	}
	f, err := entity.DecodeFoodItem(item)
	if err != nil {
		return nil, fmt.Errorf("get food item %s: %w", id, err)
	}
	return f, nil
}

// ListFoodItems returns one page of food items, optionally filtered by a
// foodName or foodOrigin prefix.
func (r *Repository) ListFoodItems(ctx context.Context, opts ListOptions) (*Page[entity.FoodItem], error) {
	return list(ctx, r, entity.TypeFoodItem, opts, entity.DecodeFoodItem)
}

// UpdateFoodItem replaces a food item's descriptive attributes. Its totals
// are left to the review operations.
func (r *Repository) UpdateFoodItem(ctx context.Context, id string, in entity.FoodItemInput) (*entity.FoodItem, error) {
	existing, err := r.GetFoodItem(ctx, id)
	if err != nil {
		return nil, err
	}
	f, err := entity.NewFoodItem(in, existing)
	if err != nil {
		return nil, err
	}
	upd, err := entity.UpdateSet(f)
	if err != nil {
		return nil, err
	}

	item, err := r.backend.Update(ctx, f.GetKey(), upd)
	if err != nil {
		return nil, fmt.Errorf("update food item %s: %w", id, err)
	}
	return entity.DecodeFoodItem(item)
}

// DeleteFoodItem deletes a food item and all of its reviews, returning the
// food item as it was. See deleteWithChildren for partial failures.
func (r *Repository) DeleteFoodItem(ctx context.Context, id string) (*entity.FoodItem, error) {
	old, err := r.deleteWithChildren(ctx, entity.TypeFoodItem, id)
	if err != nil {
		return nil, fmt.Errorf("delete food item %s: %w", id, err)
	}
	return entity.DecodeFoodItem(old)
}
