package store

// Relationship defines a parent-child relationship for cascade operations.
type Relationship struct {
	// ParentType is the parent entity type (e.g., "foodItem").
	ParentType string

	// ChildType is the child entity type (e.g., "review").
	ChildType string

	// ParentKeyAttr is the attribute name in child that references parent (e.g., "foodId").
	ParentKeyAttr string

	// Aggregated marks parents that carry totals derived from their children.
	// Removing such a parent makes per-child aggregate updates pointless.
	Aggregated bool
}

// Registry holds all known entity relationships for cascade operations.
type Registry struct {
	byParent map[string][]Relationship
}

// NewRegistry creates a new empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		byParent: make(map[string][]Relationship),
	}
}

// Register adds a relationship to the registry.
func (r *Registry) Register(rel Relationship) {
	r.byParent[rel.ParentType] = append(r.byParent[rel.ParentType], rel)
}

// ChildrenOf returns all child relationships for a given parent type.
func (r *Registry) ChildrenOf(parentType string) []Relationship {
	return r.byParent[parentType]
}

// HasChildren returns true if the parent type has any registered child relationships.
func (r *Registry) HasChildren(parentType string) bool {
	return len(r.byParent[parentType]) > 0
}
