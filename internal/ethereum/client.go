package ethereum

import (
	"context"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/blues/trs/internal/config"
	"github.com/blues/trs/internal/logger"
	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/ethclient"
	"github.com/shopspring/decimal"
)

type Client struct {
	client        *ethclient.Client
	tokenAddr     common.Address
	confirmations int
	lookbackBlock int64
	contractABI   abi.ABI
}

// 代币合约ABI定义（只关心购买/兑换事件）
const contractABI = `[
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "buyer", "type": "address"},
			{"indexed": false, "name": "amount", "type": "uint256"}
		],
		"name": "TokensPurchased",
		"type": "event"
	},
	{
		"anonymous": false,
		"inputs": [
			{"indexed": true, "name": "account", "type": "address"},
			{"indexed": false, "name": "amountIn", "type": "uint256"},
			{"indexed": false, "name": "amountOut", "type": "uint256"}
		],
		"name": "TokensSwapped",
		"type": "event"
	}
]`

func Init(cfg config.ChainConfig) (*Client, error) {
	// 连接以太坊客户端
	client, err := ethclient.Dial(cfg.RpcUrl)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to ethereum client: %w", err)
	}

	// 解析ABI
	parsedABI, err := abi.JSON(strings.NewReader(contractABI))
	if err != nil {
		return nil, fmt.Errorf("failed to parse contract ABI: %w", err)
	}

	return &Client{
		client:        client,
		tokenAddr:     common.HexToAddress(cfg.TokenAddress),
		confirmations: cfg.Confirmations,
		lookbackBlock: cfg.LookbackBlock,
		contractABI:   parsedABI,
	}, nil
}

// GetLatestBlock 获取最新区块号
func (c *Client) GetLatestBlock(ctx context.Context) (uint64, error) {
	header, err := c.client.HeaderByNumber(ctx, nil)
	if err != nil {
		return 0, err
	}
	return header.Number.Uint64(), nil
}

// IsTransactionConfirmed 检查交易是否已过确认区块数
func (c *Client) IsTransactionConfirmed(ctx context.Context, txHash common.Hash) (bool, error) {
	receipt, err := c.client.TransactionReceipt(ctx, txHash)
	if err != nil {
		if err == ethereum.NotFound {
			return false, nil
		}
		return false, err
	}
	if receipt == nil || receipt.Status != types.ReceiptStatusSuccessful {
		return false, nil
	}

	latestBlock, err := c.GetLatestBlock(ctx)
	if err != nil {
		return false, err
	}
	return latestBlock >= receipt.BlockNumber.Uint64()+uint64(c.confirmations), nil
}

// PurchaseOccurred 查证声称的购买/兑换交易：该钱包在回溯窗口内的代币合约事件里，
// 确实存在这笔交易哈希且金额完全一致。实现 verify.ChainLookup。
// since 由区块回溯窗口近似，RPC 侧不按时间过滤
func (c *Client) PurchaseOccurred(ctx context.Context, wallet, txHash string, amount decimal.Decimal, since time.Time) (bool, error) {
	confirmed, err := c.IsTransactionConfirmed(ctx, common.HexToHash(txHash))
	if err != nil {
		return false, fmt.Errorf("failed to check transaction confirmation: %w", err)
	}
	if !confirmed {
		return false, nil
	}

	latestBlock, err := c.GetLatestBlock(ctx)
	if err != nil {
		return false, err
	}
	fromBlock := int64(latestBlock) - c.lookbackBlock
	if fromBlock < 0 {
		fromBlock = 0
	}

	// 只按 buyer/account 索引参数过滤该钱包的事件
	query := ethereum.FilterQuery{
		FromBlock: big.NewInt(fromBlock),
		ToBlock:   new(big.Int).SetUint64(latestBlock),
		Addresses: []common.Address{c.tokenAddr},
		Topics: [][]common.Hash{
			{
				c.contractABI.Events["TokensPurchased"].ID,
				c.contractABI.Events["TokensSwapped"].ID,
			},
			{common.BytesToHash(common.HexToAddress(wallet).Bytes())},
		},
	}

	logs, err := c.client.FilterLogs(ctx, query)
	if err != nil {
		return false, fmt.Errorf("failed to filter logs: %w", err)
	}

	wantHash := common.HexToHash(txHash)
	for _, log := range logs {
		if log.TxHash != wantHash {
			continue
		}
		eventAmount, err := c.parseEventAmount(log)
		if err != nil {
			logger.Warn("Failed to parse event amount in tx %s: %v", txHash, err)
			continue
		}
		if eventAmount.Equal(amount) {
			return true, nil
		}
	}
	return false, nil
}

// parseEventAmount 从事件数据解析金额（非索引的第一个 uint256）
func (c *Client) parseEventAmount(log types.Log) (decimal.Decimal, error) {
	if len(log.Data) < 32 {
		return decimal.Zero, fmt.Errorf("event data too short")
	}
	amount := new(big.Int).SetBytes(log.Data[:32])
	return decimal.NewFromBigInt(amount, 0), nil
}
