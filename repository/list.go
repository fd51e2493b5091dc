package repository

import (
	"context"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/platewise/cursor"
	"github.com/jacentio/platewise/query"
)

// ListOptions filters and pages a listing. Attribute and Value select rows
// whose attribute matches; StartDate and EndDate select a date range. Cursor
// is the NextCursor of the previous page. Descending reverses the index order,
// listing a date range newest first.
type ListOptions struct {
	Attribute  string
	Value      string
	StartDate  string
	EndDate    string
	Limit      int
	Cursor     string
	Descending bool
}

// Page is one page of a listing. NextCursor is empty on the last page.
type Page[T any] struct {
	Items      []T    `json:"items"`
	NextCursor string `json:"nextCursor,omitempty"`
}

func list[T any](ctx context.Context, r *Repository, entityType string, opts ListOptions,
	decode func(map[string]types.AttributeValue) (*T, error)) (*Page[T], error) {
	in, err := r.planner.Plan(query.Request{
		Type: entityType,
		Filter: query.Filter{
			Attribute: opts.Attribute,
			Value:     opts.Value,
			StartDate: opts.StartDate,
			EndDate:   opts.EndDate,
		},
		Limit:      opts.Limit,
		Descending: opts.Descending,
	})
	if err != nil {
		return nil, err
	}

	in.StartKey, err = cursor.Decode(opts.Cursor)
	if err != nil {
		return nil, err
	}

	page, err := r.backend.QueryPage(ctx, in)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entityType, err)
	}

	items := make([]T, 0, len(page.Items))
	for _, item := range page.Items {
		v, err := decode(item)
		if err != nil {
			return nil, fmt.Errorf("list %s: %w", entityType, err)
		}
		items = append(items, *v)
	}

	next, err := cursor.Encode(page.LastKey)
	if err != nil {
		return nil, fmt.Errorf("list %s: %w", entityType, err)
	}
	return &Page[T]{Items: items, NextCursor: next}, nil
}
