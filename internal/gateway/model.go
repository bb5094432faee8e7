package gateway

import "errors"

var (
	// ErrNotFound is returned when no gateway has the requested name.
	ErrNotFound = errors.New("gateway not found")
	// ErrExists is returned when a gateway name is already taken.
	ErrExists = errors.New("gateway already exists")
	// ErrUnknownFactory is returned for factory names missing from the registry.
	ErrUnknownFactory = errors.New("unknown gateway factory")
)

// Config is a named, configured instance of a gateway factory.
type Config struct {
	GatewayName string
	FactoryName string
	Config      map[string]any
}
