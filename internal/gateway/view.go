package gateway

const masked = "********"

// Links holds the hypermedia links of a rendered resource.
type Links struct {
	Self string `json:"self"`
}

// View is the JSON rendering of a gateway config. Secrets are masked.
type View struct {
	GatewayName string         `json:"gatewayName"`
	FactoryName string         `json:"factoryName"`
	Config      map[string]any `json:"config"`
	Links       Links          `json:"_links"`
}

// NewView renders cfg with self as its canonical URL.
func NewView(cfg Config, factory Factory, self string) View {
	options := make(map[string]any, len(cfg.Config))
	for k, v := range cfg.Config {
		if s, ok := v.(string); ok && s != "" && factory.IsSensitive(k) {
			v = masked
		}
		options[k] = v
	}
	return View{
		GatewayName: cfg.GatewayName,
		FactoryName: cfg.FactoryName,
		Config:      options,
		Links:       Links{Self: self},
	}
}
