// Package store provides the DynamoDB primitives for a single table that
// multiplexes several entity kinds.
//
// Every row is keyed by entityId and tagged with entityType. Discovery by type
// or by attribute goes through secondary indexes whose hash key is entityType
// and whose range key is the attribute being searched.
//
// # Primitives
//
//   - [Store.Get] - point read by key (strongly consistent)
//   - [Store.Create] - put guarded by attribute_not_exists
//   - [Store.Update] - conditional in-place update returning the new image
//   - [Store.Delete] - conditional delete returning the old image
//   - [Store.QueryPage] - one page of an index query with an opaque last key
//   - [Store.QueryAll] - every page of an index query
//
// No primitive spans more than one item; callers that touch several rows
// order their writes themselves.
//
// # Key conditions
//
// Index queries are described by a [KeyCondition], a small tagged union of
// the conditions DynamoDB allows on a (hash, range) pair:
//
//	store.KeyCondition{EntityType: "foodItem", Attribute: "foodName", Op: store.OpBeginsWith, Values: []string{"Pad"}}
//
// renders to
//
//	#type = :type AND begins_with(#attr, :v0)
//
// # Relationships
//
// A [Registry] records which child entity types reference which parents and
// through which attribute. Cascade deletes read it to find children.
//
// # Errors
//
// Failed conditions are mapped to the module's error kinds:
//
//   - [github.com/jacentio/platewise.ErrNotFound] - the target row doesn't exist
//   - [github.com/jacentio/platewise.ErrConflict] - a create found an existing row
package store
