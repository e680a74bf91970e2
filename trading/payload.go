package trading

import (
	"encoding/json"
	"fmt"

	"github.com/go-playground/validator/v10"

	"github.com/hupe1980/trademesh/core"
)

// validate is the shared validator instance. go-playground caches struct
// metadata per instance, so a single one serves the whole package.
var validate = validator.New()

// ToPayload converts a typed value into the free-form payload mapping
// carried by messages, using its JSON field names as keys.
func ToPayload(v any) (core.Payload, error) {
	raw, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("encode %T: %w", v, err)
	}
	var p core.Payload
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, fmt.Errorf("decode %T: %w", v, err)
	}
	return p, nil
}

// MustPayload is ToPayload for values that are known serializable, such
// as the package's own value objects. It panics on encoding failure.
func MustPayload(v any) core.Payload {
	p, err := ToPayload(v)
	if err != nil {
		panic(err)
	}
	return p
}

// FromPayload parses a payload mapping into the typed value out points to
// and validates the result. out must be a pointer to a struct with a
// Validate method or plain validation tags.
func FromPayload(p core.Payload, out any) error {
	raw, err := json.Marshal(p)
	if err != nil {
		return fmt.Errorf("encode payload: %w", err)
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("decode into %T: %w", out, err)
	}
	if v, ok := out.(interface{ Validate() error }); ok {
		return v.Validate()
	}
	return validate.Struct(out)
}
