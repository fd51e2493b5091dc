package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"golang.org/x/sync/errgroup"

	"github.com/jacentio/platewise"
	"github.com/jacentio/platewise/entity"
	"github.com/jacentio/platewise/store"
)

// deleteWithChildren deletes every child of a parent row, then the parent, and
// returns the parent's former attributes. If a child deletion fails the parent
// is left in place and a *platewise.CascadeError is returned; calling again
// resumes with the children that remain.
func (r *Repository) deleteWithChildren(ctx context.Context, parentType, parentID string) (map[string]types.AttributeValue, error) {
	item, err := r.backend.Get(ctx, entity.Key(parentID))
	if err != nil {
		return nil, err
	}
	if entity.TypeOf(item) != parentType {
		return nil, platewise.ErrNotFound
	}

	n, err := r.deleteChildren(ctx, parentType, parentID)
	if err != nil {
		return nil, err
	}

	old, err := r.backend.Delete(ctx, entity.Key(parentID), parentType)
	if err != nil {
		return nil, err
	}
	r.logger.InfoContext(ctx, "cascade delete complete",
		slog.String("parentType", parentType),
		slog.String("parentId", parentID),
		slog.Int("children", n),
	)
	return old, nil
}

// SweepOrphans deletes the children of a parent that is already gone and
// returns how many were removed. It is the child phase of a cascade delete on
// its own, for resuming cascades whose parent row was removed directly.
func (r *Repository) SweepOrphans(ctx context.Context, parentType, parentID string) (int, error) {
	if !r.registry.HasChildren(parentType) {
		return 0, nil
	}
	return r.deleteChildren(ctx, parentType, parentID)
}

// deleteChildren removes every child of parentID along each relationship of
// parentType. Children of one relationship are deleted concurrently; the first
// failure cancels the rest.
func (r *Repository) deleteChildren(ctx context.Context, parentType, parentID string) (int, error) {
	total := 0
	for _, rel := range r.registry.ChildrenOf(parentType) {
		ids, err := r.childIDs(ctx, rel, parentID)
		if err != nil {
			return total, r.cascadeFailed(ctx, parentType, parentID, err)
		}

		var deleted atomic.Int64
		g, gctx := errgroup.WithContext(ctx)
		g.SetLimit(r.concurrency)
		for _, id := range ids {
			g.Go(func() error {
				if err := r.deleteChild(gctx, rel, id); err != nil {
					return fmt.Errorf("delete %s %s: %w", rel.ChildType, id, err)
				}
				deleted.Add(1)
				return nil
			})
		}
		err = g.Wait()

		n := int(deleted.Load())
		total += n
		r.metrics.childrenDeleted(parentType, n)
		if err != nil {
			return total, r.cascadeFailed(ctx, parentType, parentID, err)
		}
	}
	return total, nil
}

// childIDs walks every page of the children of parentID along rel.
func (r *Repository) childIDs(ctx context.Context, rel store.Relationship, parentID string) ([]string, error) {
	items, err := r.backend.QueryAll(ctx, store.QueryInput{
		IndexName: r.config.IndexName(rel.ParentKeyAttr),
		Condition: store.KeyCondition{
			EntityType: rel.ChildType,
			Attribute:  rel.ParentKeyAttr,
			Op:         store.OpEqual,
			Values:     []string{parentID},
		},
		Projection: []string{entity.AttrID},
	})
	if err != nil {
		return nil, fmt.Errorf("list %s children: %w", rel.ChildType, err)
	}

	ids := make([]string, 0, len(items))
	for _, item := range items {
		if id := entity.IDOf(item); id != "" {
			ids = append(ids, id)
		}
	}
	return ids, nil
}

// deleteChild deletes one child. A child that is already gone counts as
// deleted. Children of an aggregated relationship skip the aggregate update
// since their parent is about to go.
func (r *Repository) deleteChild(ctx context.Context, rel store.Relationship, id string) error {
	switch rel.ChildType {
	case entity.TypeReview:
		_, err := r.deleteReview(ctx, id, !rel.Aggregated)
		if errors.Is(err, platewise.ErrNotFound) {
			return nil
		}
		return err
	default:
		return fmt.Errorf("no delete path for child type %q", rel.ChildType)
	}
}

func (r *Repository) cascadeFailed(ctx context.Context, parentType, parentID string, err error) error {
	r.metrics.cascadeFailed(parentType)
	r.logger.ErrorContext(ctx, "cascade delete interrupted",
		slog.String("parentType", parentType),
		slog.String("parentId", parentID),
		slog.String("error", err.Error()),
	)
	return &platewise.CascadeError{ParentType: parentType, ParentID: parentID, Err: err}
}
