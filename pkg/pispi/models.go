package pispi

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/shopspring/decimal"
)

// Amount is a monetary value carried as a JSON number.
type Amount struct {
	decimal.Decimal
}

// NewAmount returns an Amount of n francs.
func NewAmount(n int64) Amount {
	return Amount{decimal.NewFromInt(n)}
}

func (a Amount) MarshalJSON() ([]byte, error) {
	return []byte(a.Decimal.String()), nil
}

// UnmarshalJSON accepts both numbers and numeric strings.
func (a *Amount) UnmarshalJSON(data []byte) error {
	data = bytes.Trim(data, `"`)
	if bytes.Equal(data, []byte("null")) {
		return nil
	}
	d, err := decimal.NewFromString(string(data))
	if err != nil {
		return fmt.Errorf("invalid amount %s: %w", data, err)
	}
	a.Decimal = d
	return nil
}

// CompteTransfertIntraRequest is the body of an intra-account transfer.
type CompteTransfertIntraRequest struct {
	TxID         string `json:"txId"`
	Montant      Amount `json:"montant"`
	Motif        string `json:"motif,omitempty"`
	PayeurNumero string `json:"payeurNumero,omitempty"`
	PayeNumero   string `json:"payeNumero,omitempty"`
	PayeurAlias  string `json:"payeurAlias,omitempty"`
	PayeAlias    string `json:"payeAlias,omitempty"`
}

// Validate checks the required fields.
func (r CompteTransfertIntraRequest) Validate() error {
	if err := ValidateTxID(r.TxID); err != nil {
		return err
	}
	if !r.Montant.IsPositive() {
		return fmt.Errorf("%w: montant must be positive, got %s", ErrInvalidArgument, r.Montant.Decimal)
	}
	return nil
}

// WebhookModificationRequest updates a registered webhook.
type WebhookModificationRequest struct {
	CallbackURL string `json:"callbackUrl,omitempty"`
	Alias       string `json:"alias,omitempty"`
}

// Remise is a discount applied to a payment request.
type Remise struct {
	Montant *Amount `json:"montant,omitempty"`
	Taux    *Amount `json:"taux,omitempty"`
}

// Operation is one account movement.
type Operation struct {
	TxID         string  `json:"txId"`
	Montant      Amount  `json:"montant"`
	Statut       string  `json:"statut,omitempty"`
	Motif        string  `json:"motif,omitempty"`
	DateCreation string  `json:"dateCreation,omitempty"`
	Remise       *Remise `json:"remise,omitempty"`
}

// OperationPage is a page of operations.
type OperationPage struct {
	Items []Operation `json:"items"`
	Page  int         `json:"page"`
	Size  int         `json:"size"`
	Total int         `json:"total"`
}

// Transfert is the acknowledgement of a transfer.
type Transfert struct {
	TxID         string `json:"txId"`
	Statut       string `json:"statut"`
	Montant      Amount `json:"montant"`
	DateCreation string `json:"dateCreation,omitempty"`
}

// Webhook is a registered notification endpoint.
type Webhook struct {
	ID          string `json:"id"`
	CallbackURL string `json:"callbackUrl"`
	Alias       string `json:"alias,omitempty"`
}

var _ json.Marshaler = Amount{}
