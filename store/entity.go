package store

import (
	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// PK represents a DynamoDB primary key.
type PK map[string]types.AttributeValue

// Entity is the base interface for all storable types.
type Entity interface {
	// GetKey returns the primary key for this entity.
	GetKey() PK

	// EntityRef returns the type-qualified reference (e.g., "review#uuid").
	EntityRef() string

	// EntityType returns the entity type tag (e.g., "review").
	EntityType() string
}

// UpdateInput describes an in-place update of one row.
type UpdateInput struct {
	// Set assigns attribute values.
	Set map[string]types.AttributeValue

	// Increment adds numeric deltas to existing attributes.
	Increment map[string]types.AttributeValue

	// Remove deletes attributes.
	Remove []string

	// RequireType, when set, additionally requires the row's type tag to match.
	RequireType string

	// Expect lists attributes that must still hold the given values. A row
	// that exists but no longer matches fails with ErrConflict.
	Expect map[string]types.AttributeValue
}

// QueryInput defines parameters for an index query.
type QueryInput struct {
	// IndexName is the GSI to query.
	IndexName string

	// Condition is the key condition on the index.
	Condition KeyCondition

	// Projection limits the returned attributes (empty = all).
	Projection []string

	// Limit is the maximum number of items evaluated per page (0 = no limit).
	Limit int32

	// StartKey resumes a previous query after this key.
	StartKey PK

	// Descending reverses the range key order.
	Descending bool
}

// Page is one page of query results.
type Page struct {
	// Items are the raw DynamoDB items.
	Items []map[string]types.AttributeValue

	// LastKey is the key to resume after, nil when there are no more pages.
	LastKey PK
}
