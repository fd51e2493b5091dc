// Package cursor converts DynamoDB continuation keys to and from opaque
// pagination tokens.
//
// A token is the key written as tagged JSON, one member per attribute value
// (S, N, B, BOOL, NULL, SS, NS, BS, L, M), then base64url-encoded without
// padding. No next page is the empty token.
package cursor

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"fmt"

	"github.com/aws/aws-sdk-go-v2/service/dynamodb/types"

	"github.com/jacentio/platewise"
)

var encoding = base64.RawURLEncoding

// Encode returns the token for key. A nil or empty key yields "".
func Encode(key map[string]types.AttributeValue) (string, error) {
	if len(key) == 0 {
		return "", nil
	}

	doc := make(map[string]any, len(key))
	for name, av := range key {
		v, err := toJSON(av)
		if err != nil {
			return "", fmt.Errorf("encode cursor attribute %q: %w", name, err)
		}
		doc[name] = v
	}

	raw, err := json.Marshal(doc)
	if err != nil {
		return "", fmt.Errorf("encode cursor: %w", err)
	}
	return encoding.EncodeToString(raw), nil
}

// Decode returns the key a token was made from. "" yields a nil key.
// Malformed tokens fail with platewise.ErrInvalidCursor.
func Decode(token string) (map[string]types.AttributeValue, error) {
	if token == "" {
		return nil, nil
	}

	raw, err := encoding.DecodeString(token)
	if err != nil {
		return nil, invalid(err)
	}

	var doc map[string]json.RawMessage
	if err := json.Unmarshal(raw, &doc); err != nil {
		return nil, invalid(err)
	}
	if len(doc) == 0 {
		return nil, invalid(fmt.Errorf("empty key"))
	}

	key := make(map[string]types.AttributeValue, len(doc))
	for name, member := range doc {
		av, err := fromJSON(member)
		if err != nil {
			return nil, invalid(fmt.Errorf("attribute %q: %w", name, err))
		}
		key[name] = av
	}
	return key, nil
}

func invalid(err error) error {
	return fmt.Errorf("%w: %v", platewise.ErrInvalidCursor, err)
}

func toJSON(av types.AttributeValue) (map[string]any, error) {
	switch v := av.(type) {
	case *types.AttributeValueMemberS:
		return map[string]any{"S": v.Value}, nil
	case *types.AttributeValueMemberN:
		return map[string]any{"N": v.Value}, nil
	case *types.AttributeValueMemberB:
		return map[string]any{"B": nonNilBytes(v.Value)}, nil
	case *types.AttributeValueMemberBOOL:
		return map[string]any{"BOOL": v.Value}, nil
	case *types.AttributeValueMemberNULL:
		return map[string]any{"NULL": v.Value}, nil
	case *types.AttributeValueMemberSS:
		return map[string]any{"SS": nonNilStrings(v.Value)}, nil
	case *types.AttributeValueMemberNS:
		return map[string]any{"NS": nonNilStrings(v.Value)}, nil
	case *types.AttributeValueMemberBS:
		bs := make([][]byte, len(v.Value))
		for i, b := range v.Value {
			bs[i] = nonNilBytes(b)
		}
		return map[string]any{"BS": bs}, nil
	case *types.AttributeValueMemberL:
		list := make([]any, len(v.Value))
		for i, elem := range v.Value {
			e, err := toJSON(elem)
			if err != nil {
				return nil, err
			}
			list[i] = e
		}
		return map[string]any{"L": list}, nil
	case *types.AttributeValueMemberM:
		m := make(map[string]any, len(v.Value))
		for k, elem := range v.Value {
			e, err := toJSON(elem)
			if err != nil {
				return nil, err
			}
			m[k] = e
		}
		return map[string]any{"M": m}, nil
	default:
		return nil, fmt.Errorf("unsupported attribute value %T", av)
	}
}

func fromJSON(raw json.RawMessage) (types.AttributeValue, error) {
	var tagged map[string]json.RawMessage
	if err := json.Unmarshal(raw, &tagged); err != nil {
		return nil, err
	}
	if len(tagged) != 1 {
		return nil, fmt.Errorf("value must have exactly one member, got %d", len(tagged))
	}

	for tag, body := range tagged {
		if bytes.Equal(bytes.TrimSpace(body), []byte("null")) {
			return nil, fmt.Errorf("%s value is null", tag)
		}
		switch tag {
		case "S":
			var s string
			if err := json.Unmarshal(body, &s); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberS{Value: s}, nil
		case "N":
			var n string
			if err := json.Unmarshal(body, &n); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberN{Value: n}, nil
		case "B":
			var b []byte
			if err := json.Unmarshal(body, &b); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberB{Value: nonNilBytes(b)}, nil
		case "BOOL":
			var b bool
			if err := json.Unmarshal(body, &b); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberBOOL{Value: b}, nil
		case "NULL":
			var b bool
			if err := json.Unmarshal(body, &b); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberNULL{Value: b}, nil
		case "SS":
			var ss []string
			if err := json.Unmarshal(body, &ss); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberSS{Value: nonNilStrings(ss)}, nil
		case "NS":
			var ns []string
			if err := json.Unmarshal(body, &ns); err != nil {
				return nil, err
			}
			return &types.AttributeValueMemberNS{Value: nonNilStrings(ns)}, nil
		case "BS":
			var bs [][]byte
			if err := json.Unmarshal(body, &bs); err != nil {
				return nil, err
			}
			for i := range bs {
				bs[i] = nonNilBytes(bs[i])
			}
			if bs == nil {
				bs = [][]byte{}
			}
			return &types.AttributeValueMemberBS{Value: bs}, nil
		case "L":
			var elems []json.RawMessage
			if err := json.Unmarshal(body, &elems); err != nil {
				return nil, err
			}
			list := make([]types.AttributeValue, len(elems))
			for i, elem := range elems {
				av, err := fromJSON(elem)
				if err != nil {
					return nil, fmt.Errorf("L[%d]: %w", i, err)
				}
				list[i] = av
			}
			return &types.AttributeValueMemberL{Value: list}, nil
		case "M":
			var members map[string]json.RawMessage
			if err := json.Unmarshal(body, &members); err != nil {
				return nil, err
			}
			m := make(map[string]types.AttributeValue, len(members))
			for k, elem := range members {
				av, err := fromJSON(elem)
				if err != nil {
					return nil, fmt.Errorf("M[%q]: %w", k, err)
				}
				m[k] = av
			}
			return &types.AttributeValueMemberM{Value: m}, nil
		default:
			return nil, fmt.Errorf("unknown type tag %q", tag)
		}
	}
	return nil, fmt.Errorf("empty value")
}

func nonNilBytes(b []byte) []byte {
	if b == nil {
		return []byte{}
	}
	return b
}

func nonNilStrings(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
