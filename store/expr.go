package store

import (
	"fmt"
	"sort"
	"strings"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"
)

// ExistsCondition returns the condition guarding writes to an existing row.
func ExistsCondition() string {
	return "attribute_exists(#pk)"
}

// NotExistsCondition returns the condition guarding creates.
func NotExistsCondition() string {
	return "attribute_not_exists(#pk)"
}

// TypeCondition returns the condition requiring the row's type tag to match :type.
func TypeCondition() string {
	return "#type = :type"
}

// buildUpdateExpression renders an UpdateInput as SET/REMOVE clauses.
// Attribute names are sorted so the same input always renders the same expression.
func buildUpdateExpression(in UpdateInput) (string, map[string]string, map[string]types.AttributeValue) {
	names := map[string]string{}
	values := map[string]types.AttributeValue{}

	var setClauses []string
	for i, k := range sortedKeys(in.Set) {
		nameKey := fmt.Sprintf("#s%d", i)
		valueKey := fmt.Sprintf(":s%d", i)
		names[nameKey] = k
		values[valueKey] = in.Set[k]
		setClauses = append(setClauses, fmt.Sprintf("%s = %s", nameKey, valueKey))
	}
	for i, k := range sortedKeys(in.Increment) {
		nameKey := fmt.Sprintf("#i%d", i)
		valueKey := fmt.Sprintf(":i%d", i)
		names[nameKey] = k
		values[valueKey] = in.Increment[k]
		setClauses = append(setClauses, fmt.Sprintf("%s = %s + %s", nameKey, nameKey, valueKey))
	}

	removes := append([]string(nil), in.Remove...)
	sort.Strings(removes)
	var removeClauses []string
	for i, k := range removes {
		nameKey := fmt.Sprintf("#r%d", i)
		names[nameKey] = k
		removeClauses = append(removeClauses, nameKey)
	}

	var parts []string
	if len(setClauses) > 0 {
		parts = append(parts, "SET "+strings.Join(setClauses, ", "))
	}
	if len(removeClauses) > 0 {
		parts = append(parts, "REMOVE "+strings.Join(removeClauses, ", "))
	}
	return strings.Join(parts, " "), names, values
}

func sortedKeys(m map[string]types.AttributeValue) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}

// mergeExprNames merges multiple expression attribute name maps.
func mergeExprNames(maps ...map[string]string) map[string]string {
	result := make(map[string]string)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}

// mergeExprValues merges multiple expression attribute value maps.
func mergeExprValues(maps ...map[string]types.AttributeValue) map[string]types.AttributeValue {
	result := make(map[string]types.AttributeValue)
	for _, m := range maps {
		for k, v := range m {
			result[k] = v
		}
	}
	return result
}
