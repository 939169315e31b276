package domain

import (
	"fmt"
	"strconv"
	"strings"
)

// Composite key of a customer order in the ERP: document prefix (e.g. "OC"),
// series number and sequence number. Immutable once the order is known.
type OrderIdentity struct {
	Prefix string
	Series int
	Number int
}

// Key renders the identity as the stable string used to address orders
// everywhere (URLs, store rows, cache map).
func (id OrderIdentity) Key() string {
	return fmt.Sprintf("%s:%d:%d", id.Prefix, id.Series, id.Number)
}

// ParseOrderKey parses a "PREFIX:series:number" key back into an identity.
func ParseOrderKey(key string) (OrderIdentity, error) {
	parts := strings.Split(key, ":")
	if len(parts) != 3 || parts[0] == "" {
		return OrderIdentity{}, fmt.Errorf("parse order key %q: want PREFIX:series:number", key)
	}

	series, err := strconv.Atoi(parts[1])
	if err != nil {
		return OrderIdentity{}, fmt.Errorf("parse order key %q: series: %w", key, err)
	}

	number, err := strconv.Atoi(parts[2])
	if err != nil {
		return OrderIdentity{}, fmt.Errorf("parse order key %q: number: %w", key, err)
	}

	return OrderIdentity{Prefix: parts[0], Series: series, Number: number}, nil
}
