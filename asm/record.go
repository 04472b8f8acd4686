package asm

import (
	"fmt"
	"strings"
)

// Record is one statement as supplied by an external producer: a role field
// selecting the variant and the remaining fields as its constructor arguments.
type Record map[string]any

// Decode builds a Statement from a record. A missing or unrecognized role
// fails with ErrUnknownRole before any other field is looked at.
func Decode(rec Record) (*Statement, error) {
	rawRole, ok := rec["role"]
	if !ok {
		return nil, fmt.Errorf("%w: record has no role", ErrUnknownRole)
	}
	roleName, ok := rawRole.(string)
	if !ok {
		return nil, fmt.Errorf("%w: role %v is not a string", ErrUnknownRole, rawRole)
	}
	role, err := ParseRole(roleName)
	if err != nil {
		return nil, err
	}

	spec := Spec{Role: role}
	if spec.Opcode, err = stringField(rec, "opcode"); err != nil {
		return nil, err
	}
	if spec.Target, err = stringField(rec, "target"); err != nil {
		return nil, err
	}
	if label, err := stringField(rec, "label"); err != nil {
		return nil, err
	} else if label != "" {
		spec.Labels = append(spec.Labels, label)
	}
	labels, err := stringsField(rec, "labels")
	if err != nil {
		return nil, err
	}
	spec.Labels = append(spec.Labels, labels...)

	operands, err := stringsField(rec, "operands")
	if err != nil {
		return nil, err
	}
	for i, text := range operands {
		op, err := ParseOperand(text)
		if err != nil {
			return nil, fmt.Errorf("%w: operand %d: %v", ErrMalformedStatement, i, err)
		}
		spec.Operands = append(spec.Operands, op)
	}
	return New(spec)
}

func stringField(rec Record, key string) (string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return "", nil
	}
	s, ok := v.(string)
	if !ok {
		return "", fmt.Errorf("%w: field %q must be a string, got %T", ErrMalformedStatement, key, v)
	}
	return strings.TrimSpace(s), nil
}

// stringsField accepts a list of scalars or a single comma separated string.
func stringsField(rec Record, key string) ([]string, error) {
	v, ok := rec[key]
	if !ok || v == nil {
		return nil, nil
	}
	switch val := v.(type) {
	case string:
		if strings.TrimSpace(val) == "" {
			return nil, nil
		}
		parts := strings.Split(val, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts, nil
	case []string:
		return val, nil
	case []any:
		out := make([]string, 0, len(val))
		for i, item := range val {
			switch it := item.(type) {
			case string:
				out = append(out, it)
			case int, int64, uint64, float64:
				out = append(out, fmt.Sprint(it))
			default:
				return nil, fmt.Errorf("%w: %s[%d] has unsupported type %T", ErrMalformedStatement, key, i, item)
			}
		}
		return out, nil
	}
	return nil, fmt.Errorf("%w: field %q must be a list, got %T", ErrMalformedStatement, key, v)
}
