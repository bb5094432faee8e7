package gateway

import "github.com/payum-server/payum_server/internal/form"

// Factory describes a payment provider and the options it needs.
type Factory struct {
	Name      string
	Title     string
	Options   []form.Field
	Sensitive []string
}

// Form returns the config form of the factory.
func (f Factory) Form() form.Form {
	return form.Form{Name: f.Name, Fields: f.Options}
}

// IsSensitive reports whether option holds a secret.
func (f Factory) IsSensitive(option string) bool {
	for _, s := range f.Sensitive {
		if s == option {
			return true
		}
	}
	return false
}

// Registry is the read-only set of known factories.
type Registry struct {
	factories []Factory
	byName    map[string]int
}

// NewRegistry indexes factories by name. Later duplicates replace earlier ones.
func NewRegistry(factories ...Factory) *Registry {
	r := &Registry{byName: make(map[string]int, len(factories))}
	for _, f := range factories {
		if i, ok := r.byName[f.Name]; ok {
			r.factories[i] = f
			continue
		}
		r.byName[f.Name] = len(r.factories)
		r.factories = append(r.factories, f)
	}
	return r
}

// Get returns the named factory.
func (r *Registry) Get(name string) (Factory, bool) {
	i, ok := r.byName[name]
	if !ok {
		return Factory{}, false
	}
	return r.factories[i], true
}

// All returns the factories in registration order.
func (r *Registry) All() []Factory {
	return append([]Factory(nil), r.factories...)
}

// Names returns the factory names in registration order.
func (r *Registry) Names() []string {
	names := make([]string, len(r.factories))
	for i, f := range r.factories {
		names[i] = f.Name
	}
	return names
}

func required(name string) form.Field {
	return form.Field{Name: name, Type: form.TypeString, Required: true}
}

func sandbox() form.Field {
	return form.Field{Name: "sandbox", Type: form.TypeBool, Default: true}
}

// DefaultRegistry lists the factories the server ships with.
func DefaultRegistry() *Registry {
	return NewRegistry(
		Factory{Name: "offline", Title: "Offline"},
		Factory{
			Name:      "paypal_express_checkout",
			Title:     "PayPal Express Checkout",
			Options:   []form.Field{required("username"), required("password"), required("signature"), sandbox()},
			Sensitive: []string{"password", "signature"},
		},
		Factory{
			Name:      "stripe_checkout",
			Title:     "Stripe Checkout",
			Options:   []form.Field{required("publishable_key"), required("secret_key")},
			Sensitive: []string{"secret_key"},
		},
		Factory{
			Name:      "stripe_js",
			Title:     "Stripe.js",
			Options:   []form.Field{required("publishable_key"), required("secret_key")},
			Sensitive: []string{"secret_key"},
		},
		Factory{
			Name:      "authorize_net_aim",
			Title:     "Authorize.Net AIM",
			Options:   []form.Field{required("login_id"), required("transaction_key"), sandbox()},
			Sensitive: []string{"transaction_key"},
		},
		Factory{
			Name:      "be2bill_direct",
			Title:     "Be2Bill Direct",
			Options:   []form.Field{required("identifier"), required("password"), sandbox()},
			Sensitive: []string{"password"},
		},
		Factory{
			Name:      "payex",
			Title:     "Payex",
			Options:   []form.Field{required("account_number"), required("encryption_key"), sandbox()},
			Sensitive: []string{"encryption_key"},
		},
		Factory{
			Name:      "klarna_checkout",
			Title:     "Klarna Checkout",
			Options:   []form.Field{required("merchant_id"), required("secret"), sandbox()},
			Sensitive: []string{"secret"},
		},
	)
}
