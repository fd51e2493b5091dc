// Package repository implements the create, get, list, update and delete
// operations for food items, users and reviews.
//
// Reviews keep their food item's totalRating and numReviews in step through
// atomic increments on the food item row. Deleting a food item or a user first
// deletes every review that references it.
package repository

import (
	"context"
	"log/slog"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/jacentio/platewise/entity"
	"github.com/jacentio/platewise/query"
	"github.com/jacentio/platewise/store"
)

// DefaultCascadeConcurrency bounds in-flight child deletions per cascade.
const DefaultCascadeConcurrency = 8

// Backend is the storage the repository runs on. *store.Store implements it.
type Backend interface {
	Get(ctx context.Context, key store.PK) (map[string]types.AttributeValue, error)
	Create(ctx context.Context, e store.Entity, item map[string]types.AttributeValue) error
	Update(ctx context.Context, key store.PK, in store.UpdateInput) (map[string]types.AttributeValue, error)
	Delete(ctx context.Context, key store.PK, entityType string) (map[string]types.AttributeValue, error)
	QueryPage(ctx context.Context, in store.QueryInput) (*store.Page, error)
	QueryAll(ctx context.Context, in store.QueryInput) ([]map[string]types.AttributeValue, error)
}

var _ Backend = (*store.Store)(nil)

// Caller is the verified identity behind a request.
type Caller struct {
	Subject string
	Roles   []string
}

// Options configures a Repository.
type Options struct {
	// Logger receives compensation and cascade logs. Defaults to slog.Default().
	Logger *slog.Logger

	// Registerer, when set, receives the repository's Prometheus counters.
	Registerer prometheus.Registerer

	// CascadeConcurrency bounds in-flight child deletions per cascade.
	// Default: DefaultCascadeConcurrency
	CascadeConcurrency int
}

// Repository runs entity operations against a Backend.
type Repository struct {
	backend     Backend
	config      store.Config
	planner     *query.Planner
	registry    *store.Registry
	logger      *slog.Logger
	metrics     *metrics
	concurrency int
}

// New creates a Repository. cfg describes the table layout; a zero Config
// means store.DefaultConfig().
func New(backend Backend, cfg store.Config, opts Options) *Repository {
	if cfg.TypeAttr == "" {
		cfg = store.DefaultConfig()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	concurrency := opts.CascadeConcurrency
	if concurrency <= 0 {
		concurrency = DefaultCascadeConcurrency
	}

	return &Repository{
		backend:     backend,
		config:      cfg,
		planner:     query.NewPlanner(cfg),
		registry:    Relationships(),
		logger:      logger,
		metrics:     newMetrics(opts.Registerer),
		concurrency: concurrency,
	}
}

// Relationships returns the parent-child relationships between entity types.
// Food item totals are derived from their reviews, so that relationship is
// marked aggregated.
func Relationships() *store.Registry {
	r := store.NewRegistry()
	r.Register(store.Relationship{
		ParentType:    entity.TypeFoodItem,
		ChildType:     entity.TypeReview,
		ParentKeyAttr: entity.AttrFoodID,
		Aggregated:    true,
	})
	r.Register(store.Relationship{
		ParentType:    entity.TypeUser,
		ChildType:     entity.TypeReview,
		ParentKeyAttr: entity.AttrUserID,
	})
	return r
}

// Registry returns the relationships the repository cascades along.
func (r *Repository) Registry() *store.Registry {
	return r.registry
}
