package payment

import "github.com/payum-server/payum_server/internal/form"

// Form field names, as submitted and rendered.
const (
	fieldNumber       = "number"
	fieldGatewayName  = "gatewayName"
	fieldTotalAmount  = "totalAmount"
	fieldCurrencyCode = "currencyCode"
	fieldClientEmail  = "clientEmail"
	fieldClientID     = "clientId"
	fieldDescription  = "description"
	fieldDetails      = "details"
)

// NewForm builds the payment form. gatewayName must be one of gateways.
func NewForm(gateways []string) form.Form {
	return form.Form{
		Name: "payment",
		Fields: []form.Field{
			{Name: fieldGatewayName, Type: form.TypeChoice, Required: true, Choices: gateways},
			{Name: fieldTotalAmount, Type: form.TypeInteger, Required: true, Help: "Amount in the currency's minor unit."},
			{Name: fieldCurrencyCode, Type: form.TypeCurrency, Required: true},
			{Name: fieldNumber, Type: form.TypeString},
			{Name: fieldClientEmail, Type: form.TypeEmail},
			{Name: fieldClientID, Label: "Client id", Type: form.TypeString},
			{Name: fieldDescription, Type: form.TypeString},
			{Name: fieldDetails, Type: form.TypeMap},
		},
	}
}

func createInput(v form.Values) CreateInput {
	return CreateInput{
		Number:       v.String(fieldNumber),
		GatewayName:  v.String(fieldGatewayName),
		TotalAmount:  v.Int(fieldTotalAmount),
		CurrencyCode: v.String(fieldCurrencyCode),
		ClientEmail:  v.String(fieldClientEmail),
		ClientID:     v.String(fieldClientID),
		Description:  v.String(fieldDescription),
		Details:      v.Map(fieldDetails),
	}
}

func updateInput(v form.Values) UpdateInput {
	in := UpdateInput{
		Number:       stringField(v, fieldNumber),
		GatewayName:  stringField(v, fieldGatewayName),
		CurrencyCode: stringField(v, fieldCurrencyCode),
		ClientEmail:  stringField(v, fieldClientEmail),
		ClientID:     stringField(v, fieldClientID),
		Description:  stringField(v, fieldDescription),
		Details:      v.Map(fieldDetails),
	}
	if v.Has(fieldTotalAmount) {
		amount := v.Int(fieldTotalAmount)
		in.TotalAmount = &amount
	}
	return in
}

func stringField(v form.Values, name string) *string {
	if !v.Has(name) {
		return nil
	}
	s := v.String(name)
	return &s
}
