package repository

import (
	"context"
	"log/slog"
	"strconv"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/platewise/entity"
	"github.com/jacentio/platewise/rating"
	"github.com/jacentio/platewise/store"
)

// adjustAggregate adds dRating to a food item's totalRating and dCount to its
// numReviews in one conditional increment. The food item must exist; a missing
// row is platewise.ErrNotFound.
func (r *Repository) adjustAggregate(ctx context.Context, foodID string, dRating float64, dCount int, op string) error {
	in := store.UpdateInput{
		Increment: map[string]types.AttributeValue{
			entity.AttrTotalRating: &types.AttributeValueMemberN{Value: formatDelta(dRating)},
		},
		RequireType: entity.TypeFoodItem,
	}
	if dCount != 0 {
		in.Increment[entity.AttrNumReviews] = &types.AttributeValueMemberN{Value: strconv.Itoa(dCount)}
	}

	if _, err := r.backend.Update(ctx, entity.Key(foodID), in); err != nil {
		return err
	}
	r.metrics.aggregateAdjusted(op)
	return nil
}

// compensate reverts an adjustment whose review write failed. It runs even if
// ctx is already cancelled; failures are logged since the caller is already
// returning the original error.
func (r *Repository) compensate(ctx context.Context, foodID string, dRating float64, dCount int, cause error) {
	ctx = context.WithoutCancel(ctx)
	attrs := []any{
		slog.String("foodId", foodID),
		slog.String("totalRating", formatDelta(dRating)),
		slog.Int("numReviews", dCount),
		slog.String("cause", cause.Error()),
	}

	if err := r.adjustAggregate(ctx, foodID, dRating, dCount, opCompensate); err != nil {
		r.logger.ErrorContext(ctx, "aggregate compensation failed", append(attrs, slog.String("error", err.Error()))...)
		return
	}
	r.logger.WarnContext(ctx, "aggregate compensated", attrs...)
}

// formatDelta renders a rating delta with two decimals so the store adds it
// as an exact decimal.
func formatDelta(d float64) string {
	return strconv.FormatFloat(rating.Round(d, 2), 'f', 2, 64)
}
