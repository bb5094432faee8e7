package payment

import "time"

// Links holds the hypermedia links of a rendered resource.
type Links struct {
	Self string `json:"self"`
}

// View is the JSON rendering of a payment.
type View struct {
	ID           string         `json:"id"`
	Number       string         `json:"number"`
	Status       string         `json:"status"`
	GatewayName  string         `json:"gatewayName"`
	TotalAmount  int64          `json:"totalAmount"`
	CurrencyCode string         `json:"currencyCode"`
	ClientEmail  string         `json:"clientEmail"`
	ClientID     string         `json:"clientId"`
	Description  string         `json:"description"`
	Details      map[string]any `json:"details"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
	Links        Links          `json:"_links"`
}

// NewView renders p with self as its canonical URL.
func NewView(p Payment, self string) View {
	details := p.Details
	if details == nil {
		details = map[string]any{}
	}
	return View{
		ID:           p.ID,
		Number:       p.Number,
		Status:       p.Status,
		GatewayName:  p.GatewayName,
		TotalAmount:  p.TotalAmount,
		CurrencyCode: p.CurrencyCode,
		ClientEmail:  p.ClientEmail,
		ClientID:     p.ClientID,
		Description:  p.Description,
		Details:      details,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
		Links:        Links{Self: self},
	}
}
