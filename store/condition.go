package store

import (
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// Operator is a range key comparison allowed in a key condition.
type Operator int

const (
	// OpNone matches every item of the entity type.
	OpNone Operator = iota
	OpEqual
	OpBeginsWith
	OpBetween
	OpGreaterOrEqual
	OpLessOrEqual
)

func (o Operator) String() string {
	switch o {
	case OpNone:
		return "none"
	case OpEqual:
		return "="
	case OpBeginsWith:
		return "begins_with"
	case OpBetween:
		return "BETWEEN"
	case OpGreaterOrEqual:
		return ">="
	case OpLessOrEqual:
		return "<="
	default:
		return fmt.Sprintf("Operator(%d)", int(o))
	}
}

// arity is the number of values the operator takes.
func (o Operator) arity() int {
	switch o {
	case OpNone:
		return 0
	case OpBetween:
		return 2
	default:
		return 1
	}
}

// KeyCondition selects items of one entity type, optionally narrowed by a
// condition on a range key attribute.
type KeyCondition struct {
	EntityType string
	Attribute  string
	Op         Operator
	Values     []string
}

// Validate checks that the operator, attribute and values agree.
func (k KeyCondition) Validate() error {
	if k.EntityType == "" {
		return fmt.Errorf("key condition: entity type is required")
	}
	if k.Op == OpNone && k.Attribute != "" {
		return fmt.Errorf("key condition: attribute %q without operator", k.Attribute)
	}
	if k.Op != OpNone && k.Attribute == "" {
		return fmt.Errorf("key condition: operator %s without attribute", k.Op)
	}
	if len(k.Values) != k.Op.arity() {
		return fmt.Errorf("key condition: operator %s takes %d values, got %d", k.Op, k.Op.arity(), len(k.Values))
	}
	return nil
}

// Expression renders the condition as a DynamoDB key condition expression.
// typeAttr is the index hash key attribute.
func (k KeyCondition) Expression(typeAttr string) (string, map[string]string, map[string]types.AttributeValue, error) {
	if err := k.Validate(); err != nil {
		return "", nil, nil, err
	}

	names := map[string]string{"#type": typeAttr}
	values := map[string]types.AttributeValue{
		":type": &types.AttributeValueMemberS{Value: k.EntityType},
	}
	expr := "#type = :type"
	if k.Op == OpNone {
		return expr, names, values, nil
	}

	names["#attr"] = k.Attribute
	for i, v := range k.Values {
		values[fmt.Sprintf(":v%d", i)] = &types.AttributeValueMemberS{Value: v}
	}

	switch k.Op {
	case OpEqual:
		expr += " AND #attr = :v0"
	case OpBeginsWith:
		expr += " AND begins_with(#attr, :v0)"
	case OpBetween:
		expr += " AND #attr BETWEEN :v0 AND :v1"
	case OpGreaterOrEqual:
		expr += " AND #attr >= :v0"
	case OpLessOrEqual:
		expr += " AND #attr <= :v0"
	}
	return expr, names, values, nil
}
