package enums

// LedgerEntryType classifies a ledger entry by the sign of its amount.
type LedgerEntryType string

const (
	LedgerEntryCredit LedgerEntryType = "credit"
	LedgerEntryDebit  LedgerEntryType = "debit"
)

// IsValid reports whether the value is a known entry type.
func (t LedgerEntryType) IsValid() bool {
	return t == LedgerEntryCredit || t == LedgerEntryDebit
}
