package chain

import (
	"crypto/ecdsa"
	"errors"
	"fmt"
	"strings"

	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
)

var (
	ErrInvalidKey       = errors.New("invalid validator private key")
	ErrInvalidSignature = errors.New("invalid signature")
)

// Signer holds the validator key. It is built once at startup and shared by all requests.
type Signer struct {
	privateKey *ecdsa.PrivateKey
	address    common.Address
}

// NewSigner parses a hex private key, with or without 0x prefix.
func NewSigner(hexKey string) (*Signer, error) {
	hexKey = strings.TrimPrefix(strings.TrimSpace(hexKey), "0x")
	if hexKey == "" {
		return nil, ErrInvalidKey
	}

	privateKey, err := crypto.HexToECDSA(hexKey)
	if err != nil {
		// the parse error may echo key material
		return nil, ErrInvalidKey
	}

	return &Signer{
		privateKey: privateKey,
		address:    crypto.PubkeyToAddress(privateKey.PublicKey),
	}, nil
}

// Address returns the validator's address.
func (s *Signer) Address() common.Address {
	return s.address
}

// SignClaim signs the prefixed claim digest and returns 65 bytes r‖s‖v with v in {27, 28}.
func (s *Signer) SignClaim(gameID string, score uint64, player common.Address) ([]byte, error) {
	digest := SignedClaimDigest(gameID, score, player)

	sig, err := crypto.Sign(digest, s.privateKey)
	if err != nil {
		return nil, fmt.Errorf("sign claim: %w", err)
	}

	return toEthereumV(sig), nil
}

// toEthereumV converts go-ethereum's recovery id (0/1) to the 27/28 form ecrecover expects.
func toEthereumV(sig []byte) []byte {
	if sig[crypto.RecoveryIDOffset] < 27 {
		sig[crypto.RecoveryIDOffset] += 27
	}
	return sig
}

// EncodeSignature renders a 65-byte signature as 0x-prefixed hex (132 chars).
func EncodeSignature(sig []byte) string {
	return hexutil.Encode(sig)
}

// DecodeSignature parses a 0x-prefixed 65-byte signature.
func DecodeSignature(s string) ([]byte, error) {
	sig, err := hexutil.Decode(s)
	if err != nil || len(sig) != crypto.SignatureLength {
		return nil, ErrInvalidSignature
	}
	return sig, nil
}

// RecoverClaimSigner returns the address that produced sig over the claim.
// Accepts v as 0/1 or 27/28.
func RecoverClaimSigner(gameID string, score uint64, player common.Address, sig []byte) (common.Address, error) {
	if len(sig) != crypto.SignatureLength {
		return common.Address{}, ErrInvalidSignature
	}

	normalized := make([]byte, len(sig))
	copy(normalized, sig)
	if normalized[crypto.RecoveryIDOffset] >= 27 {
		normalized[crypto.RecoveryIDOffset] -= 27
	}

	pub, err := crypto.SigToPub(SignedClaimDigest(gameID, score, player), normalized)
	if err != nil {
		return common.Address{}, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}
	return crypto.PubkeyToAddress(*pub), nil
}
