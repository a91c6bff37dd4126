package chain

import (
	"math/big"

	"github.com/ethereum/go-ethereum/accounts"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/math"
	"github.com/ethereum/go-ethereum/crypto"
)

// PackScoreClaim reproduces Solidity's abi.encodePacked(string gameId, uint256 score, address player):
// raw UTF-8 bytes of gameId, score as 32 big-endian bytes, then the 20 address bytes.
// This is the only place a 256-bit integer is built.
func PackScoreClaim(gameID string, score uint64, player common.Address) []byte {
	packed := make([]byte, 0, len(gameID)+32+common.AddressLength)
	packed = append(packed, gameID...)
	packed = append(packed, math.U256Bytes(new(big.Int).SetUint64(score))...)
	packed = append(packed, player.Bytes()...)
	return packed
}

// ClaimHash is keccak256 over the packed claim, as recomputed by the contract.
func ClaimHash(gameID string, score uint64, player common.Address) common.Hash {
	return crypto.Keccak256Hash(PackScoreClaim(gameID, score, player))
}

// SignedClaimDigest applies the "\x19Ethereum Signed Message:\n32" prefix to the claim hash,
// matching MessageHashUtils.toEthSignedMessageHash on the contract side.
func SignedClaimDigest(gameID string, score uint64, player common.Address) []byte {
	h := ClaimHash(gameID, score, player)
	return accounts.TextHash(h.Bytes())
}
