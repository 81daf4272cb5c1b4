package enums

import "fmt"

// LedgerTargetType identifies which balance-bearing entity a ledger entry adjusts.
type LedgerTargetType string

const (
	LedgerTargetUser          LedgerTargetType = "user"
	LedgerTargetEstablishment LedgerTargetType = "establishment"
)

var validLedgerTargetTypes = []LedgerTargetType{
	LedgerTargetUser,
	LedgerTargetEstablishment,
}

// IsValid reports whether the value is a known target type.
func (t LedgerTargetType) IsValid() bool {
	for _, candidate := range validLedgerTargetTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// ParseLedgerTargetType converts raw input into a LedgerTargetType.
func ParseLedgerTargetType(value string) (LedgerTargetType, error) {
	for _, candidate := range validLedgerTargetTypes {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid ledger target type %q", value)
}
