package payment

import (
	"errors"
	"time"
)

// StatusNew is the status every payment starts in.
const StatusNew = "new"

// ErrNotFound is returned when no payment has the requested id.
var ErrNotFound = errors.New("payment not found")

// Payment is a payment request tracked by the server.
type Payment struct {
	ID           string
	Number       string
	Status       string
	GatewayName  string
	TotalAmount  int64
	CurrencyCode string
	ClientEmail  string
	ClientID     string
	Description  string
	Details      map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}
