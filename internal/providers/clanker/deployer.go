// Package clanker deploys pet tokens through the Clanker factory
// contract on Base.
package clanker

import (
	"context"
	"crypto/ecdsa"
	"encoding/json"
	"errors"
	"fmt"
	"math/big"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum"
	"github.com/ethereum/go-ethereum/accounts/abi"
	"github.com/ethereum/go-ethereum/common"
	"github.com/ethereum/go-ethereum/core/types"
	"github.com/ethereum/go-ethereum/crypto"
	"go.uber.org/zap"

	"github.com/petpad-xyz/launchpad/internal/adapter"
	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/logger"
)

const (
	// creatorRewardBps is the share of trading rewards routed to the
	// launching agent; the platform keeps the remainder.
	creatorRewardBps  = 8000
	platformRewardBps = 2000

	receiptPollInterval = 2 * time.Second
	defaultDeployGas    = 120 // percent headroom over the gas estimate
)

// minDeployBalance is 0.001 ETH in wei. Deploys are rejected up front
// below this to avoid burning gas on a doomed transaction.
var minDeployBalance = big.NewInt(1_000_000_000_000_000)

// factoryABIJSON covers the single factory function the deployer calls
const factoryABIJSON = `[{"inputs":[{"components":[{"name":"name","type":"string"},{"name":"symbol","type":"string"},{"name":"image","type":"string"},{"name":"metadata","type":"string"},{"name":"requestor","type":"address"},{"name":"rewardRecipients","type":"address[]"},{"name":"rewardBps","type":"uint16[]"},{"name":"salt","type":"bytes32"}],"name":"config","type":"tuple"}],"name":"deployToken","outputs":[{"name":"token","type":"address"}],"stateMutability":"nonpayable","type":"function"}]`

// tokenCreatedSignature is the topic hash of the factory's
// TokenCreated(address indexed token, address indexed requestor, string symbol) event
var tokenCreatedSignature = crypto.Keccak256Hash([]byte("TokenCreated(address,address,string)"))

// DeployRequest carries everything the factory needs to issue a token
type DeployRequest struct {
	LaunchID    string
	Name        string
	Symbol      string
	Description string
	ImageURL    string
	AgentWallet string
	Website     string
	Twitter     string
}

// DeployResult is the on-chain outcome of a successful deployment
type DeployResult struct {
	TokenAddress  string
	TxHash        string
	DeploymentURL string
	ExplorerURL   string
}

// DeployerInfo describes the deployer wallet for health reporting
type DeployerInfo struct {
	Configured bool
	Address    string
	Balance    float64
}

// Deployer issues tokens on-chain. Failures are returned as
// *domain.DeployError so callers can persist a classified message.
type Deployer interface {
	// Deploy issues a token through the factory and waits for the receipt
	Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error)

	// Info reports whether the deployer wallet is configured and funded
	Info(ctx context.Context) (*DeployerInfo, error)

	// Close closes the underlying connection
	Close()
}

// Config holds the deployer wallet and factory parameters
type Config struct {
	PrivateKey     string
	FactoryAddress string
	PlatformWallet string
	ChainID        int64
	DeployTimeout  time.Duration
}

type deployer struct {
	client         adapter.EthClient
	clock          adapter.Clock
	key            *ecdsa.PrivateKey
	address        common.Address
	factoryAddress common.Address
	platformWallet common.Address
	chainID        *big.Int
	deployTimeout  time.Duration
	factoryABI     abi.ABI
}

// NewDeployer creates a factory gateway signing with the configured
// wallet. An empty private key yields a disabled deployer whose Deploy
// always fails with a deployer-not-configured error; the service stays
// up and reports the state through health.
func NewDeployer(client adapter.EthClient, clock adapter.Clock, cfg Config) (Deployer, error) {
	if cfg.PrivateKey == "" {
		return &disabledDeployer{client: client}, nil
	}

	key, err := crypto.HexToECDSA(strings.TrimPrefix(cfg.PrivateKey, "0x"))
	if err != nil {
		return nil, fmt.Errorf("failed to parse deployer private key: %w", err)
	}

	factoryABI, err := abi.JSON(strings.NewReader(factoryABIJSON))
	if err != nil {
		return nil, fmt.Errorf("failed to parse factory ABI: %w", err)
	}

	return &deployer{
		client:         client,
		clock:          clock,
		key:            key,
		address:        crypto.PubkeyToAddress(key.PublicKey),
		factoryAddress: common.HexToAddress(cfg.FactoryAddress),
		platformWallet: common.HexToAddress(cfg.PlatformWallet),
		chainID:        big.NewInt(cfg.ChainID),
		deployTimeout:  cfg.DeployTimeout,
		factoryABI:     factoryABI,
	}, nil
}

// tokenConfig mirrors the factory's deployToken tuple argument
type tokenConfig struct {
	Name             string
	Symbol           string
	Image            string
	Metadata         string
	Requestor        common.Address
	RewardRecipients []common.Address
	RewardBps        []uint16
	Salt             [32]byte
}

type socialMediaURL struct {
	Platform string `json:"platform"`
	URL      string `json:"url"`
}

type tokenMetadata struct {
	Description     string           `json:"description"`
	SocialMediaURLs []socialMediaURL `json:"socialMediaUrls"`
	AuditURLs       []string         `json:"auditUrls"`
}

func (d *deployer) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	ctx, cancel := context.WithTimeout(ctx, d.deployTimeout)
	defer cancel()

	balance, err := d.client.BalanceAt(ctx, d.address, nil)
	if err != nil {
		return nil, classifyError(ctx, fmt.Errorf("failed to fetch deployer balance: %w", err))
	}
	if balance.Cmp(minDeployBalance) < 0 {
		return nil, domain.NewDeployError(domain.DeployErrorInsufficientFunds, "Insufficient ETH for gas")
	}

	calldata, err := d.packDeployToken(req)
	if err != nil {
		return nil, domain.NewDeployError(domain.DeployErrorUnknown, "failed to encode deploy call: %v", err)
	}

	msg := ethereum.CallMsg{From: d.address, To: &d.factoryAddress, Data: calldata}
	gas, err := d.client.EstimateGas(ctx, msg)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	nonce, err := d.client.PendingNonceAt(ctx, d.address)
	if err != nil {
		return nil, classifyError(ctx, err)
	}
	gasPrice, err := d.client.SuggestGasPrice(ctx)
	if err != nil {
		return nil, classifyError(ctx, err)
	}

	tx := types.NewTx(&types.LegacyTx{
		Nonce:    nonce,
		To:       &d.factoryAddress,
		Gas:      gas * defaultDeployGas / 100,
		GasPrice: gasPrice,
		Data:     calldata,
	})
	signed, err := types.SignTx(tx, types.LatestSignerForChainID(d.chainID), d.key)
	if err != nil {
		return nil, domain.NewDeployError(domain.DeployErrorUnknown, "failed to sign transaction: %v", err)
	}

	if err := d.client.SendTransaction(ctx, signed); err != nil {
		return nil, classifyError(ctx, err)
	}

	logger.InfoCtx(ctx, "Submitted token deployment",
		zap.String("symbol", req.Symbol),
		zap.String("tx_hash", signed.Hash().Hex()),
	)

	receipt, err := d.waitForReceipt(ctx, signed.Hash())
	if err != nil {
		return nil, err
	}
	if receipt.Status == types.ReceiptStatusFailed {
		return nil, domain.NewDeployError(domain.DeployErrorSimulation, "deployment transaction reverted: %s", signed.Hash().Hex())
	}

	tokenAddress, err := d.tokenAddressFromReceipt(receipt)
	if err != nil {
		return nil, domain.NewDeployError(domain.DeployErrorUnknown, "%v", err)
	}

	logger.InfoCtx(ctx, "Token deployed",
		zap.String("symbol", req.Symbol),
		zap.String("token_address", tokenAddress),
		zap.String("tx_hash", signed.Hash().Hex()),
	)

	return &DeployResult{
		TokenAddress:  tokenAddress,
		TxHash:        signed.Hash().Hex(),
		DeploymentURL: TokenURL(tokenAddress),
		ExplorerURL:   ExplorerURL(tokenAddress),
	}, nil
}

func (d *deployer) packDeployToken(req DeployRequest) ([]byte, error) {
	socials := make([]socialMediaURL, 0, 2)
	if req.Website != "" {
		socials = append(socials, socialMediaURL{Platform: "website", URL: req.Website})
	}
	if req.Twitter != "" {
		handle := strings.TrimPrefix(req.Twitter, "@")
		socials = append(socials, socialMediaURL{Platform: "x", URL: "https://twitter.com/" + handle})
	}

	metadata, err := json.Marshal(tokenMetadata{
		Description:     req.Description,
		SocialMediaURLs: socials,
		AuditURLs:       []string{},
	})
	if err != nil {
		return nil, err
	}

	agent := common.HexToAddress(req.AgentWallet)
	return d.factoryABI.Pack("deployToken", tokenConfig{
		Name:             req.Name,
		Symbol:           req.Symbol,
		Image:            req.ImageURL,
		Metadata:         string(metadata),
		Requestor:        agent,
		RewardRecipients: []common.Address{agent, d.platformWallet},
		RewardBps:        []uint16{creatorRewardBps, platformRewardBps},
		Salt:             crypto.Keccak256Hash([]byte(req.LaunchID)),
	})
}

// waitForReceipt polls until the transaction is mined or the deploy
// deadline passes
func (d *deployer) waitForReceipt(ctx context.Context, txHash common.Hash) (*types.Receipt, error) {
	for {
		receipt, err := d.client.TransactionReceipt(ctx, txHash)
		if err == nil {
			return receipt, nil
		}
		if !errors.Is(err, ethereum.NotFound) {
			return nil, classifyError(ctx, err)
		}

		select {
		case <-ctx.Done():
			return nil, domain.NewDeployError(domain.DeployErrorTimeout, "timed out waiting for deployment confirmation: %s", txHash.Hex())
		case <-d.clock.After(receiptPollInterval):
		}
	}
}

func (d *deployer) tokenAddressFromReceipt(receipt *types.Receipt) (string, error) {
	for _, log := range receipt.Logs {
		if log.Address == d.factoryAddress && len(log.Topics) >= 2 && log.Topics[0] == tokenCreatedSignature {
			return common.BytesToAddress(log.Topics[1].Bytes()).Hex(), nil
		}
	}
	return "", fmt.Errorf("token address not found in deployment receipt")
}

func (d *deployer) Info(ctx context.Context) (*DeployerInfo, error) {
	balance, err := d.client.BalanceAt(ctx, d.address, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch deployer balance: %w", err)
	}

	eth, _ := new(big.Float).Quo(new(big.Float).SetInt(balance), big.NewFloat(1e18)).Float64()
	return &DeployerInfo{Configured: true, Address: d.address.Hex(), Balance: eth}, nil
}

func (d *deployer) Close() {
	d.client.Close()
}

// classifyError maps RPC failures onto the deploy error taxonomy
func classifyError(ctx context.Context, err error) *domain.DeployError {
	msg := err.Error()
	switch {
	case errors.Is(err, context.DeadlineExceeded) || ctx.Err() == context.DeadlineExceeded:
		return domain.NewDeployError(domain.DeployErrorTimeout, "deployment timed out: %s", msg)
	case strings.Contains(msg, "insufficient funds"):
		return domain.NewDeployError(domain.DeployErrorInsufficientFunds, "Insufficient ETH for gas")
	case strings.Contains(msg, "execution reverted"):
		return domain.NewDeployError(domain.DeployErrorSimulation, "deployment simulation reverted: %s", msg)
	default:
		return domain.NewDeployError(domain.DeployErrorUnknown, "%s", msg)
	}
}

// disabledDeployer stands in when no wallet is configured
type disabledDeployer struct {
	client adapter.EthClient
}

func (d *disabledDeployer) Deploy(ctx context.Context, req DeployRequest) (*DeployResult, error) {
	return nil, domain.NewDeployError(domain.DeployErrorNotConfigured, "Deployer wallet not configured")
}

func (d *disabledDeployer) Info(ctx context.Context) (*DeployerInfo, error) {
	return &DeployerInfo{Configured: false}, nil
}

func (d *disabledDeployer) Close() {
	if d.client != nil {
		d.client.Close()
	}
}

// TokenURL returns the Clanker page for a deployed token
func TokenURL(tokenAddress string) string {
	return "https://clanker.world/clanker/" + tokenAddress
}

// ExplorerURL returns the Basescan page for a deployed token
func ExplorerURL(tokenAddress string) string {
	return "https://basescan.org/token/" + tokenAddress
}
