package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"time"

	"timeguesser/internal/chain"
	"timeguesser/internal/config"
	"timeguesser/internal/logger"
	"timeguesser/internal/service"

	"github.com/ethereum/go-ethereum/common/hexutil"
)

// validator_check signs a sample claim with VALIDATOR_PRIVATE_KEY, recovers the
// signer and, when an RPC endpoint and contract are configured, compares it with
// the contract's validatorAddress().
func main() {
	gameID := flag.String("game", service.NewGameID(), "game id to sign")
	score := flag.Uint64("score", 3500, "score to sign")
	player := flag.String("player", "0x0000000000000000000000000000000000000001", "player address")
	flag.Parse()

	cfg := config.Load()
	logger.Init(cfg.LogLevel, cfg.LogJSON)

	signer, err := chain.NewSigner(cfg.ValidatorPrivateKey)
	if err != nil {
		logger.Fatal("load validator", "error", err)
	}

	sig, err := service.NewScoreSigner(signer).Sign(*gameID, float64(*score), *player)
	if err != nil {
		logger.Fatal("sign claim", "error", err)
	}

	raw, err := chain.DecodeSignature(sig.Signature)
	if err != nil {
		logger.Fatal("decode signature", "error", err)
	}
	playerAddr, err := chain.ParseAddress(*player)
	if err != nil {
		logger.Fatal("parse player", "error", err)
	}
	recovered, err := chain.RecoverClaimSigner(*gameID, *score, playerAddr, raw)
	if err != nil {
		logger.Fatal("recover signer", "error", err)
	}

	fmt.Printf("validator=%s\n", sig.ValidatorAddress)
	fmt.Printf("gameId=%s score=%d player=%s\n", *gameID, *score, *player)
	fmt.Printf("signature=%s\n", sig.Signature)
	fmt.Printf("recovered=%s\n", recovered.Hex())
	if recovered != signer.Address() {
		logger.Error("recovered address does not match validator")
		os.Exit(1)
	}

	calldata, err := chain.PackMintScore(*gameID, *score, raw)
	if err != nil {
		logger.Fatal("pack mintScore", "error", err)
	}
	fmt.Printf("mintScoreCalldata=%s\n", hexutil.Encode(calldata))

	if cfg.ContractAddress == "" {
		return
	}
	contract, err := chain.ParseAddress(cfg.ContractAddress)
	if err != nil {
		logger.Fatal("parse contract address", "error", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	client, err := chain.Dial(ctx, cfg.RPCURL, contract)
	if err != nil {
		logger.Fatal("dial rpc", "error", err)
	}
	defer client.Close()

	onChain, err := client.ValidatorAddress(ctx)
	if err != nil {
		logger.Fatal("read contract validator", "error", err)
	}
	fmt.Printf("contractValidator=%s\n", onChain.Hex())
	if onChain != signer.Address() {
		logger.Error("validator key does not match contract validator")
		os.Exit(1)
	}

	used, err := client.GameIDUsed(ctx, *gameID)
	if err != nil {
		logger.Fatal("read usedGameIds", "error", err)
	}
	fmt.Printf("gameIdUsed=%t\n", used)
}
