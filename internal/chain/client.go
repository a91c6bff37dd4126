package chain

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/ethereum/go-ethereum/rpc"
)

// ErrReceiptNotFound is returned while a transaction is not yet indexed by the node.
var ErrReceiptNotFound = ethereum.NotFound

// Client reads receipts and score contract state over JSON-RPC.
type Client struct {
	rpc      *rpc.Client
	eth      *ethclient.Client
	contract common.Address
}

// rpcReceipt keeps the fields of eth_getTransactionReceipt that go-ethereum's
// types.Receipt drops (from, to).
type rpcReceipt struct {
	TxHash      common.Hash     `json:"transactionHash"`
	Status      hexutil.Uint64  `json:"status"`
	From        common.Address  `json:"from"`
	To          *common.Address `json:"to"`
	BlockNumber *hexutil.Big    `json:"blockNumber"`
}

// Dial connects to the RPC endpoint. contract may be the zero address when only
// receipts are needed.
func Dial(ctx context.Context, url string, contract common.Address) (*Client, error) {
	dialCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	rc, err := rpc.DialContext(dialCtx, url)
	if err != nil {
		return nil, fmt.Errorf("dial rpc: %w", err)
	}

	return &Client{
		rpc:      rc,
		eth:      ethclient.NewClient(rc),
		contract: contract,
	}, nil
}

// Close releases the underlying connection.
func (c *Client) Close() {
	c.rpc.Close()
}

// TransactionReceipt fetches the receipt of txHash. It returns ErrReceiptNotFound
// when the node does not know the transaction (yet).
func (c *Client) TransactionReceipt(ctx context.Context, txHash string) (*Receipt, error) {
	hash, err := ParseTxHash(txHash)
	if err != nil {
		return nil, err
	}

	var raw *rpcReceipt
	if err := c.rpc.CallContext(ctx, &raw, "eth_getTransactionReceipt", hash); err != nil {
		return nil, err
	}
	if raw == nil {
		return nil, ErrReceiptNotFound
	}

	receipt := &Receipt{
		TxHash: raw.TxHash.Hex(),
		Status: ReceiptFailed,
		From:   raw.From.Hex(),
	}
	if raw.Status == 1 {
		receipt.Status = ReceiptSuccess
	}
	if raw.To != nil {
		receipt.To = raw.To.Hex()
	}
	if raw.BlockNumber != nil {
		receipt.BlockNumber = raw.BlockNumber.ToInt().Uint64()
	}
	return receipt, nil
}

// ChainID returns the chain id reported by the node.
func (c *Client) ChainID(ctx context.Context) (int64, error) {
	id, err := c.eth.ChainID(ctx)
	if err != nil {
		return 0, err
	}
	return id.Int64(), nil
}

// Ping checks the node answers with a block number.
func (c *Client) Ping(ctx context.Context) error {
	_, err := c.eth.BlockNumber(ctx)
	return err
}

// GameIDUsed calls the contract's usedGameIds(string) view.
func (c *Client) GameIDUsed(ctx context.Context, gameID string) (bool, error) {
	out, err := c.call(ctx, "usedGameIds", gameID)
	if err != nil {
		return false, err
	}
	used, ok := out[0].(bool)
	if !ok {
		return false, errors.New("usedGameIds: unexpected return type")
	}
	return used, nil
}

// ValidatorAddress calls the contract's validatorAddress() view.
func (c *Client) ValidatorAddress(ctx context.Context) (common.Address, error) {
	out, err := c.call(ctx, "validatorAddress")
	if err != nil {
		return common.Address{}, err
	}
	addr, ok := out[0].(common.Address)
	if !ok {
		return common.Address{}, errors.New("validatorAddress: unexpected return type")
	}
	return addr, nil
}

func (c *Client) call(ctx context.Context, method string, args ...any) ([]any, error) {
	if c.contract == (common.Address{}) {
		return nil, errors.New("score contract address not configured")
	}

	data, err := scoreABI.Pack(method, args...)
	if err != nil {
		return nil, fmt.Errorf("pack %s: %w", method, err)
	}

	to := c.contract
	result, err := c.eth.CallContract(ctx, ethereum.CallMsg{To: &to, Data: data}, nil)
	if err != nil {
		return nil, fmt.Errorf("call %s: %w", method, err)
	}

	out, err := scoreABI.Unpack(method, result)
	if err != nil {
		return nil, fmt.Errorf("unpack %s: %w", method, err)
	}
	if len(out) == 0 {
		return nil, fmt.Errorf("%s: empty result", method)
	}
	return out, nil
}
