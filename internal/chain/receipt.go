package chain

import "errors"

type ReceiptStatus string

const (
	ReceiptSuccess ReceiptStatus = "success"
	ReceiptFailed  ReceiptStatus = "reverted"
)

var (
	ErrTxNotSuccessful = errors.New("transaction not successful")
	ErrTargetMismatch  = errors.New("transaction target mismatch")
	ErrSenderMismatch  = errors.New("wallet does not match transaction sender")
)

// Receipt is the part of a transaction receipt the verifier inspects.
type Receipt struct {
	TxHash      string
	Status      ReceiptStatus
	From        string
	To          string
	BlockNumber uint64
}

// Match checks the receipt executed successfully, targeted contract and was sent by wallet.
// Address comparison is case-insensitive.
func (r *Receipt) Match(contract, wallet string) error {
	if r.Status != ReceiptSuccess {
		return ErrTxNotSuccessful
	}
	if !SameAddress(r.To, contract) {
		return ErrTargetMismatch
	}
	if !SameAddress(r.From, wallet) {
		return ErrSenderMismatch
	}
	return nil
}
