package enums

// Currency is the ISO currency code carried on payments.
type Currency string

const (
	CurrencyMWK Currency = "MWK"
)

// IsValid reports whether the value is a supported currency.
func (c Currency) IsValid() bool {
	return c == CurrencyMWK
}
