// Package platewise is the aggregate-consistency and retrieval layer of a food
// review service backed by a single DynamoDB table.
//
// One physical table stores three logical entity kinds, discriminated by the
// entityType attribute and discovered through (entityType, attribute) secondary
// indexes:
//
//   - foodItem: a reviewable item with derived totalRating and numReviews
//   - user: a reviewer
//   - review: one user's rating of one food item
//
// # Packages
//
//   - [github.com/jacentio/platewise/rating] computes a review's rating
//   - [github.com/jacentio/platewise/entity] validates input and builds entities
//   - [github.com/jacentio/platewise/cursor] encodes pagination tokens
//   - [github.com/jacentio/platewise/query] plans index queries
//   - [github.com/jacentio/platewise/store] wraps the DynamoDB primitives
//   - [github.com/jacentio/platewise/repository] maintains aggregates and cascades deletes
//   - [github.com/jacentio/platewise/stream] resumes interrupted cascades from table streams
//
// # Errors
//
// This package defines the error kinds every layer returns:
//
//   - [ErrValidation] - malformed or out-of-range input (see [ValidationError])
//   - [ErrNotFound] - the target entity does not exist
//   - [ErrInvalidCursor] - a pagination token could not be decoded
//   - [ErrConflict] - a create collided with an existing entity id
//
// A cascade that stops part way returns a [CascadeError] naming the parent.
package platewise
