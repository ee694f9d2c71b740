package adminapi

import (
	"bytes"
	"encoding/json"

	"github.com/jrsteele09/kubeatlas-console/internal/errors"
)

// ListShape names how an endpoint wraps a list. Each endpoint has exactly
// one expected shape; anything else is ErrUnexpectedShape.
type ListShape int

const (
	// ShapeArray is a bare JSON array.
	ShapeArray ListShape = iota
	// ShapeUsersEnvelope is {"users": [...]}.
	ShapeUsersEnvelope
	// ShapeDataEnvelope is {"data": [...]}.
	ShapeDataEnvelope
	// ShapeSessionsEnvelope is {"sessions": [...]}.
	ShapeSessionsEnvelope
)

var ErrUnexpectedShape = errors.New("unexpected response shape")

func (s ListShape) String() string {
	switch s {
	case ShapeArray:
		return "array"
	case ShapeUsersEnvelope:
		return "users envelope"
	case ShapeDataEnvelope:
		return "data envelope"
	case ShapeSessionsEnvelope:
		return "sessions envelope"
	default:
		return "unknown shape"
	}
}

func (s ListShape) field() string {
	switch s {
	case ShapeUsersEnvelope:
		return "users"
	case ShapeDataEnvelope:
		return "data"
	case ShapeSessionsEnvelope:
		return "sessions"
	}
	return ""
}

// decodeList decodes raw as a list wrapped according to shape. A null list
// inside an envelope decodes as empty.
func decodeList[T any](raw json.RawMessage, shape ListShape) ([]T, error) {
	list := raw
	if shape != ShapeArray {
		field := shape.field()
		if field == "" {
			return nil, errors.Wrapf(ErrUnexpectedShape, "unknown list shape %d", int(shape))
		}

		var envelope map[string]json.RawMessage
		if err := json.Unmarshal(raw, &envelope); err != nil {
			return nil, errors.Wrapf(ErrUnexpectedShape, "want %s", shape)
		}
		inner, ok := envelope[field]
		if !ok {
			return nil, errors.Wrapf(ErrUnexpectedShape, "want %s", shape)
		}
		if isNull(inner) {
			return []T{}, nil
		}
		list = inner
	}

	if !isArray(list) {
		return nil, errors.Wrapf(ErrUnexpectedShape, "want %s", shape)
	}
	items := []T{}
	if err := json.Unmarshal(list, &items); err != nil {
		return nil, errors.Wrapf(err, "decode %s", shape)
	}
	return items, nil
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}

func isNull(raw json.RawMessage) bool {
	return bytes.Equal(bytes.TrimSpace(raw), []byte("null"))
}
