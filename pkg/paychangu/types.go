package paychangu

import "strings"

// Gateway statuses reported by PayChangu. The API has used both "status" and
// "state" as field names and both "success" and "successful" as values, so
// normalization happens in one place.
const (
	StatusSuccessful = "successful"
	StatusFailed     = "failed"
	StatusPending    = "pending"
	StatusProcessing = "processing"
)

// CreatePaymentRequest is the outbound payload for checkout creation.
// Amount is in the smallest currency unit.
type CreatePaymentRequest struct {
	Amount      int64             `json:"amount"`
	Currency    string            `json:"currency"`
	Description string            `json:"description,omitempty"`
	CallbackURL string            `json:"callback_url,omitempty"`
	Reference   string            `json:"reference,omitempty"`
	Metadata    map[string]string `json:"metadata,omitempty"`
}

// PaymentResponse is the gateway's view of a payment.
type PaymentResponse struct {
	ID            string `json:"id"`
	TransactionID string `json:"transaction_id"`
	Status        string `json:"status"`
	State         string `json:"state"`
	CheckoutURL   string `json:"checkout_url"`
	PaymentURL    string `json:"payment_url"`
	Amount        int64  `json:"amount"`
	Currency      string `json:"currency"`
	Reference     string `json:"reference"`
	FailureReason string `json:"failure_reason"`
}

// PaymentID returns whichever identifier field the gateway populated.
func (p PaymentResponse) PaymentID() string {
	if p.ID != "" {
		return p.ID
	}
	return p.TransactionID
}

// NormalizedStatus collapses the status/state variants into one value.
func (p PaymentResponse) NormalizedStatus() string {
	return NormalizeStatus(firstNonEmpty(p.Status, p.State))
}

// HostedURL returns whichever checkout link field the gateway populated.
func (p PaymentResponse) HostedURL() string {
	return firstNonEmpty(p.CheckoutURL, p.PaymentURL)
}

// NormalizeStatus maps gateway status spellings onto the canonical set.
func NormalizeStatus(status string) string {
	switch strings.ToLower(strings.TrimSpace(status)) {
	case "success", "successful", "completed", "paid":
		return StatusSuccessful
	case "failed", "failure", "cancelled", "canceled", "expired":
		return StatusFailed
	case "processing", "in_progress":
		return StatusProcessing
	case "pending", "created", "":
		return StatusPending
	default:
		return StatusPending
	}
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if strings.TrimSpace(v) != "" {
			return v
		}
	}
	return ""
}
