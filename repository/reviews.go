package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/platewise"
	"github.com/jacentio/platewise/entity"
	"github.com/jacentio/platewise/rating"
)

// CreateReview stores a review by caller and adds its rating to the food
// item's totals. The totals are updated before the review row is written; if
// the write fails the totals are put back.
func (r *Repository) CreateReview(ctx context.Context, caller Caller, in entity.ReviewInput) (*entity.Review, error) {
	rev, err := entity.NewReview(in, caller.Subject, nil)
	if err != nil {
		return nil, err
	}
	if _, err := r.GetUser(ctx, rev.UserID); err != nil {
		return nil, fmt.Errorf("create review: %w", err)
	}
	item, err := entity.Marshal(rev)
	if err != nil {
		return nil, err
	}

	if err := r.adjustAggregate(ctx, rev.FoodID, rev.Rating, 1, opCreate); err != nil {
		return nil, fmt.Errorf("create review: food item %s: %w", rev.FoodID, err)
	}
	if err := r.backend.Create(ctx, rev, item); err != nil {
		r.compensate(ctx, rev.FoodID, -rev.Rating, -1, err)
		return nil, fmt.Errorf("create review: %w", err)
	}
	return rev, nil
}

// GetReview returns a review by id.
func (r *Repository) GetReview(ctx context.Context, id string) (*entity.Review, error) {
	item, err := r.backend.Get(ctx, entity.Key(id))
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	rev, err := entity.DecodeReview(item)
	if err != nil {
		return nil, fmt.Errorf("get review %s: %w", id, err)
	}
	return rev, nil
}

// ListReviews returns one page of reviews, optionally filtered by foodId,
// userId or a reviewDate range.
func (r *Repository) ListReviews(ctx context.Context, opts ListOptions) (*Page[entity.Review], error) {
	return list(ctx, r, entity.TypeReview, opts, entity.DecodeReview)
}

// ListReviewsByFoodItem returns one page of the reviews of a food item.
// A food item that doesn't exist has no reviews.
func (r *Repository) ListReviewsByFoodItem(ctx context.Context, foodID string, opts ListOptions) (*Page[entity.Review], error) {
	opts.Attribute, opts.Value = entity.AttrFoodID, foodID
	return r.ListReviews(ctx, opts)
}

// ListReviewsByUser returns one page of the reviews written by a user.
func (r *Repository) ListReviewsByUser(ctx context.Context, userID string, opts ListOptions) (*Page[entity.Review], error) {
	opts.Attribute, opts.Value = entity.AttrUserID, userID
	return r.ListReviews(ctx, opts)
}

// UpdateReview replaces a review's quality and quantity, recomputing its
// rating and moving the food item's totalRating by the difference. The review
// must still carry the rating it was read with; a concurrent edit fails with
// platewise.ErrConflict and the totals are put back.
func (r *Repository) UpdateReview(ctx context.Context, id string, in entity.ReviewInput) (*entity.Review, error) {
	existing, err := r.GetReview(ctx, id)
	if err != nil {
		return nil, err
	}
	rev, err := entity.NewReview(in, "", existing)
	if err != nil {
		return nil, err
	}
	upd, err := entity.UpdateSet(rev)
	if err != nil {
		return nil, err
	}
	upd.Expect = map[string]types.AttributeValue{
		entity.AttrRating: &types.AttributeValueMemberN{Value: strconv.FormatFloat(existing.Rating, 'f', -1, 64)},
	}

	delta := rating.Round(rev.Rating-existing.Rating, 2)
	if delta != 0 {
		if err := r.adjustAggregate(ctx, rev.FoodID, delta, 0, opUpdate); err != nil {
			return nil, fmt.Errorf("update review %s: food item %s: %w", id, rev.FoodID, err)
		}
	}

	item, err := r.backend.Update(ctx, rev.GetKey(), upd)
	if err != nil {
		if delta != 0 {
			r.compensate(ctx, rev.FoodID, -delta, 0, err)
		}
		return nil, fmt.Errorf("update review %s: %w", id, err)
	}
	return entity.DecodeReview(item)
}

// DeleteReview deletes a review and takes its rating off the food item's
// totals, returning the review as it was.
func (r *Repository) DeleteReview(ctx context.Context, id string) (*entity.Review, error) {
	rev, err := r.deleteReview(ctx, id, true)
	if err != nil {
		return nil, fmt.Errorf("delete review %s: %w", id, err)
	}
	return rev, nil
}

// deleteReview removes the review row first and adjusts the totals from the
// removed row, so a review is only ever subtracted once. Once the row is
// removed the adjustment no longer honours cancellation. When adjust is false
// the totals are left alone. A food item that is already gone has no totals
// to adjust.
func (r *Repository) deleteReview(ctx context.Context, id string, adjust bool) (*entity.Review, error) {
	old, err := r.backend.Delete(ctx, entity.Key(id), entity.TypeReview)
	if err != nil {
		return nil, err
	}
	rev, err := entity.DecodeReview(old)
	if err != nil {
		return nil, err
	}
	if !adjust {
		return rev, nil
	}

	// The row is gone, so the decrement must run even if ctx is cancelled.
	err = r.adjustAggregate(context.WithoutCancel(ctx), rev.FoodID, -rev.Rating, -1, opDelete)
	switch {
	case errors.Is(err, platewise.ErrNotFound):
		r.logger.DebugContext(ctx, "review deleted after its food item",
			slog.String("reviewId", id),
			slog.String("foodId", rev.FoodID),
		)
	case err != nil:
		r.logger.ErrorContext(ctx, "review deleted but food item totals not adjusted",
			slog.String("reviewId", id),
			slog.String("foodId", rev.FoodID),
			slog.String("totalRating", formatDelta(-rev.Rating)),
			slog.String("error", err.Error()),
		)
		return nil, fmt.Errorf("food item %s: %w", rev.FoodID, err)
	}
	return rev, nil
}
