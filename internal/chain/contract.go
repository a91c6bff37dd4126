package chain

import (
	"fmt"
	"math/big"
	"strings"

	"github.com/ethereum/go-ethereum/accounts/abi"
)

// scoreContractABI is the subset of the score contract the backend talks to.
const scoreContractABI = `[
	{"type":"function","name":"mintScore","stateMutability":"nonpayable","inputs":[{"name":"gameId","type":"string"},{"name":"score","type":"uint256"},{"name":"signature","type":"bytes"}],"outputs":[]},
	{"type":"function","name":"usedGameIds","stateMutability":"view","inputs":[{"name":"","type":"string"}],"outputs":[{"name":"","type":"bool"}]},
	{"type":"function","name":"validatorAddress","stateMutability":"view","inputs":[],"outputs":[{"name":"","type":"address"}]},
	{"type":"event","name":"ScoreMinted","inputs":[
		{"name":"player","type":"address","indexed":true},
		{"name":"gameId","type":"string","indexed":true},
		{"name":"score","type":"uint256","indexed":false},
		{"name":"timestamp","type":"uint256","indexed":false},
		{"name":"isNewBest","type":"bool","indexed":false}
	]}
]`

var scoreABI = mustParseABI()

func mustParseABI() abi.ABI {
	parsed, err := abi.JSON(strings.NewReader(scoreContractABI))
	if err != nil {
		panic(fmt.Sprintf("parse score contract abi: %v", err))
	}
	return parsed
}

// PackMintScore encodes the calldata of mintScore(gameId, score, signature),
// the transaction the client broadcasts with the validator signature.
func PackMintScore(gameID string, score uint64, sig []byte) ([]byte, error) {
	return scoreABI.Pack("mintScore", gameID, new(big.Int).SetUint64(score), sig)
}
