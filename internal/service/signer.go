package service

import (
	"encoding/json"
	"math"
	"strings"

	"timeguesser/internal/chain"
	"timeguesser/internal/domain"
	"timeguesser/internal/logger"

	"github.com/ethereum/go-ethereum/common"
)

// ClaimSigner produces r‖s‖v signatures over score claims.
// *chain.Signer is the production implementation.
type ClaimSigner interface {
	SignClaim(gameID string, score uint64, player common.Address) ([]byte, error)
	Address() common.Address
}

// ScoreSigner authorizes mints. A nil signer means no validator key is provisioned.
type ScoreSigner struct {
	signer ClaimSigner
}

func NewScoreSigner(signer ClaimSigner) *ScoreSigner {
	return &ScoreSigner{signer: signer}
}

// Configured reports whether a validator key is loaded.
func (s *ScoreSigner) Configured() bool {
	return s.signer != nil
}

// Sign validates the raw request values and signs the claim.
// Values come straight from a decoded JSON body, hence any.
func (s *ScoreSigner) Sign(gameID, score, player any) (domain.ValidatorSignature, error) {
	sig, err := s.sign(gameID, score, player)
	SignRequests.WithLabelValues(resultLabel(err)).Inc()
	return sig, err
}

func (s *ScoreSigner) sign(gameID, score, player any) (domain.ValidatorSignature, error) {
	if s.signer == nil {
		return domain.ValidatorSignature{}, newError(ErrNotConfigured, "validator not configured", nil)
	}

	claim, err := ParseScoreClaim(gameID, score, player)
	if err != nil {
		return domain.ValidatorSignature{}, err
	}

	raw, err := s.signer.SignClaim(claim.GameID, claim.Score, common.HexToAddress(claim.Player))
	if err != nil {
		logger.Error("sign score failed", "game_id", claim.GameID, "error", err)
		return domain.ValidatorSignature{}, newError(ErrSigningFailure, "failed to generate signature", err)
	}

	logger.Info("score signed", "game_id", claim.GameID, "score", claim.Score, "player", claim.Player)

	return domain.ValidatorSignature{
		Signature:        chain.EncodeSignature(raw),
		ValidatorAddress: s.signer.Address().Hex(),
	}, nil
}

// ParseScoreClaim checks the shape of a claim. Player is lower-cased.
func ParseScoreClaim(gameID, score, player any) (domain.ScoreClaim, error) {
	id, ok := gameID.(string)
	if !ok || strings.TrimSpace(id) == "" {
		return domain.ScoreClaim{}, newError(ErrInvalidInput, "gameId must be a non-empty string", nil)
	}

	n, ok := scoreValue(score)
	if !ok || n < 0 || n > domain.MaxGameScore {
		return domain.ScoreClaim{}, newError(ErrInvalidInput, "score must be an integer between 0 and 5000", nil)
	}

	addr, ok := player.(string)
	if !ok {
		return domain.ScoreClaim{}, newError(ErrInvalidInput, "player must be an address", nil)
	}
	normalized, err := chain.NormalizeAddress(addr)
	if err != nil {
		return domain.ScoreClaim{}, newError(ErrInvalidInput, "player must be an address", nil)
	}

	return domain.ScoreClaim{GameID: id, Score: uint64(n), Player: normalized}, nil
}

// scoreValue accepts JSON numbers that hold an integer value.
func scoreValue(v any) (int64, bool) {
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) || n != math.Trunc(n) || math.Abs(n) > 1<<53 {
			return 0, false
		}
		return int64(n), true
	case json.Number:
		i, err := n.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	case int:
		return int64(n), true
	case int64:
		return n, true
	case uint64:
		if n > math.MaxInt64 {
			return 0, false
		}
		return int64(n), true
	}
	return 0, false
}

// isNumber reports whether v is any JSON number, integral or not.
func isNumber(v any) bool {
	switch v.(type) {
	case float64, json.Number, int, int64, uint64:
		return true
	}
	return false
}
