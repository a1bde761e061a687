package types

// CreditBundle is a purchasable credit pack. Bundles are configured
// server-side; the client only ever names one, never prices it.
type CreditBundle struct {
	Name string `json:"name" mapstructure:"name"`
	// Price is the exact decimal string the provider must have captured,
	// e.g. "39.99". Kept as a string so comparison never goes through floats.
	Price    string `json:"price" mapstructure:"price"`
	Currency string `json:"currency" mapstructure:"currency"`
	Credits  int64  `json:"credits" mapstructure:"credits"`
}
