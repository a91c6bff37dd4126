package chain

import (
	"strings"
	"testing"
)

func TestValidateAddress(t *testing.T) {
	cases := []struct {
		in   string
		want bool
	}{
		{"0xf39Fd6e51aad88F6F4ce6aB8827279cffFb92266", true},
		{"0xF39FD6E51AAD88F6F4CE6AB8827279CFFFB92266", true},
		{"0xf39fd6e51aad88f6f4ce6ab8827279cfffb92266", true},
		{"f39fd6e51aad88f6f4ce6ab8827279cfffb92266", false},
		{"0xf39fd6e51aad88f6f4ce6ab8827279cfffb9226", false},
		{"0xf39fd6e51aad88f6f4ce6ab8827279cfffb922660", false},
		{"0xg39fd6e51aad88f6f4ce6ab8827279cfffb92266", false},
		{"", false},
	}
	for _, c := range cases {
		if got := ValidateAddress(c.in); got != c.want {
			t.Fatalf("ValidateAddress(%q) = %v; want %v", c.in, got, c.want)
		}
	}
}

func TestNormalizeAddress(t *testing.T) {
	got, err := NormalizeAddress("0xAbC0000000000000000000000000000000000123")
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if got != "0xabc0000000000000000000000000000000000123" {
		t.Fatalf("got %s", got)
	}
	if _, err := NormalizeAddress("0x123"); err != ErrInvalidAddress {
		t.Fatalf("expected ErrInvalidAddress, got %v", err)
	}
}

func TestParseTxHash(t *testing.T) {
	valid := "0x" + strings.Repeat("ab", 32)
	if _, err := ParseTxHash(valid); err != nil {
		t.Fatalf("valid hash rejected: %v", err)
	}
	for _, in := range []string{"", "0x", strings.Repeat("ab", 32), "0x" + strings.Repeat("ab", 31), "0x" + strings.Repeat("zz", 32)} {
		if _, err := ParseTxHash(in); err != ErrInvalidTxHash {
			t.Fatalf("ParseTxHash(%q) err = %v", in, err)
		}
	}
}

func TestReceiptMatch(t *testing.T) {
	contract := "0xAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAAA"
	wallet := "0xAbC0000000000000000000000000000000000123"

	tests := []struct {
		name    string
		receipt Receipt
		wantErr error
	}{
		{"match", Receipt{Status: ReceiptSuccess, To: "0xaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaaa", From: "0xabc0000000000000000000000000000000000123"}, nil},
		{"reverted", Receipt{Status: ReceiptFailed, To: contract, From: wallet}, ErrTxNotSuccessful},
		{"wrong target", Receipt{Status: ReceiptSuccess, To: "0x2222222222222222222222222222222222222222", From: wallet}, ErrTargetMismatch},
		{"contract creation", Receipt{Status: ReceiptSuccess, To: "", From: wallet}, ErrTargetMismatch},
		{"wrong sender", Receipt{Status: ReceiptSuccess, To: contract, From: "0x3333333333333333333333333333333333333333"}, ErrSenderMismatch},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.receipt.Match(contract, wallet); err != tt.wantErr {
				t.Fatalf("Match() = %v; want %v", err, tt.wantErr)
			}
		})
	}
}
