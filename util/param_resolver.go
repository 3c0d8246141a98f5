package util

import (
	"fmt"
	"reflect"
	"strings"

	"github.com/oliveagle/jsonpath"
)

// ResolveParams substitutes {{key}} placeholders in params with string-coerced
// values from the flat keys of data. Maps and lists are resolved recursively,
// preserving structure. A placeholder with no matching key is left verbatim.
func ResolveParams(params map[string]any, data map[string]any) map[string]any {
	output := make(map[string]any, len(params))
	for k, v := range params {
		output[k] = resolveValue(v, data)
	}
	return output
}

// ResolveString substitutes {{key}} placeholders in a single string.
func ResolveString(template string, data map[string]any) string {
	if !strings.Contains(template, "{{") {
		return template
	}
	for k, v := range data {
		placeholder := fmt.Sprintf("{{%s}}", k)
		if strings.Contains(template, placeholder) {
			template = strings.ReplaceAll(template, placeholder, fmt.Sprintf("%v", v))
		}
	}
	return template
}

func resolveValue(value any, data map[string]any) any {
	switch v := value.(type) {
	case string:
		return ResolveString(v, data)
	case map[string]any:
		return ResolveParams(v, data)
	case []any:
		out := make([]any, len(v))
		for i, item := range v {
			out[i] = resolveValue(item, data)
		}
		return out
	default:
		return value
	}
}

// EvaluateConditions evaluates a conditions object of the shape
// {"all": [{"field": ..., "operator": ..., "value": ...}, ...]}
// against the execution context. Every condition in "all" must hold.
// A nil or empty conditions object evaluates to true.
func EvaluateConditions(conditions map[string]any, data map[string]any) bool {
	if len(conditions) == 0 {
		return true
	}
	all, _ := conditions["all"].([]any)
	for _, c := range all {
		cond, ok := c.(map[string]any)
		if !ok {
			return false
		}
		if !EvaluateCondition(cond, data) {
			return false
		}
	}
	return true
}

// EvaluateCondition evaluates a single {field, operator, value} condition.
// A field starting with "$" is looked up as a jsonpath expression against the
// context, otherwise as a flat context key. Unknown operators evaluate to false.
func EvaluateCondition(condition map[string]any, data map[string]any) bool {
	field, _ := condition["field"].(string)
	operator, _ := condition["operator"].(string)
	if operator == "" {
		operator = "=="
	}
	value := condition["value"]

	var fieldValue any
	if strings.HasPrefix(field, "$") {
		fieldValue, _ = jsonpath.JsonPathLookup(data, field)
	} else {
		fieldValue = data[field]
	}

	switch operator {
	case "==":
		return equalValues(fieldValue, value)
	case "!=":
		return !equalValues(fieldValue, value)
	case ">":
		fv, fok := toFloat(fieldValue)
		vv, vok := toFloat(value)
		return fok && vok && fv > vv
	case "<":
		fv, fok := toFloat(fieldValue)
		vv, vok := toFloat(value)
		return fok && vok && fv < vv
	case "in":
		return contains(value, fieldValue)
	case "not_in":
		return !contains(value, fieldValue)
	}
	return false
}

func contains(list any, value any) bool {
	items, ok := list.([]any)
	if !ok {
		return false
	}
	for _, item := range items {
		if equalValues(item, value) {
			return true
		}
	}
	return false
}

func equalValues(a any, b any) bool {
	if af, ok := toFloat(a); ok {
		if bf, bok := toFloat(b); bok {
			return af == bf
		}
		return false
	}
	return reflect.DeepEqual(a, b)
}

func toFloat(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int32:
		return float64(n), true
	case int64:
		return float64(n), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	}
	return 0, false
}
