// Package dto defines the wire representations served by the REST API.
package dto

import (
	"time"

	"github.com/petpad-xyz/launchpad/internal/ledger"
	"github.com/petpad-xyz/launchpad/internal/store/schema"
)

// Pagination describes the window of a list response
type Pagination struct {
	Limit   int   `json:"limit"`
	Offset  int   `json:"offset"`
	Total   int64 `json:"total"`
	HasMore bool  `json:"hasMore"`
}

// NewPagination computes the pagination envelope for a page of results
func NewPagination(limit, offset, returned int, total int64) Pagination {
	return Pagination{
		Limit:   limit,
		Offset:  offset,
		Total:   total,
		HasMore: int64(offset+returned) < total,
	}
}

// PetSummary is the compact pet identity inside a launch response
type PetSummary struct {
	Name   string `json:"name"`
	Symbol string `json:"symbol"`
	Type   string `json:"type"`
	Emoji  string `json:"emoji"`
}

// ImageInfo describes the generated launch image
type ImageInfo struct {
	URL       string `json:"url"`
	Style     string `json:"style"`
	Generated bool   `json:"generated"`
}

// RewardSplit describes how trading rewards are divided
type RewardSplit struct {
	AgentShare    string `json:"agent_share"`
	PlatformShare string `json:"platform_share"`
	AgentWallet   string `json:"agent_wallet"`
}

// LaunchResponse is the success payload of POST /launch
type LaunchResponse struct {
	Success      bool        `json:"success"`
	Agent        string      `json:"agent"`
	PostID       string      `json:"post_id"`
	PostURL      string      `json:"post_url"`
	Pet          PetSummary  `json:"pet"`
	Image        ImageInfo   `json:"image"`
	TokenAddress string      `json:"token_address"`
	TxHash       string      `json:"tx_hash"`
	ClankerURL   string      `json:"clanker_url"`
	ExplorerURL  string      `json:"explorer_url"`
	Rewards      RewardSplit `json:"rewards"`
}

// NewLaunchResponse maps a ledger result onto the wire format
func NewLaunchResponse(result *ledger.Result) LaunchResponse {
	return LaunchResponse{
		Success: true,
		Agent:   result.AgentName,
		PostID:  result.PostID,
		PostURL: result.PostURL,
		Pet: PetSummary{
			Name:   result.Name,
			Symbol: result.Symbol,
			Type:   string(result.PetType),
			Emoji:  result.PetType.Emoji(),
		},
		Image: ImageInfo{
			URL:       result.ImageURL,
			Style:     "pixel",
			Generated: true,
		},
		TokenAddress: result.TokenAddress,
		TxHash:       result.TxHash,
		ClankerURL:   result.DeploymentURL,
		ExplorerURL:  result.ExplorerURL,
		Rewards: RewardSplit{
			AgentShare:    "80%",
			PlatformShare: "20%",
			AgentWallet:   result.AgentWallet,
		},
	}
}

// Token is the compact listing entry for deployed tokens
type Token struct {
	Symbol          string     `json:"symbol"`
	Name            string     `json:"name"`
	PetType         string     `json:"petType"`
	Emoji           string     `json:"emoji"`
	Image           string     `json:"image"`
	ContractAddress *string    `json:"contractAddress"`
	ClankerURL      *string    `json:"clankerUrl"`
	LaunchedAt      *time.Time `json:"launchedAt"`
}

// NewToken maps a launch row onto the compact token listing entry
func NewToken(launch *schema.Launch) Token {
	return Token{
		Symbol:          launch.Symbol,
		Name:            launch.Name,
		PetType:         string(launch.PetType),
		Emoji:           launch.PetType.Emoji(),
		Image:           launch.ImageURL,
		ContractAddress: launch.ContractAddress,
		ClankerURL:      launch.DeploymentURL,
		LaunchedAt:      launch.LaunchedAt,
	}
}

// Launch is the full launch history entry
type Launch struct {
	ID              string     `json:"id"`
	Symbol          string     `json:"symbol"`
	Name            string     `json:"name"`
	Description     string     `json:"description"`
	PetType         string     `json:"petType"`
	Emoji           string     `json:"emoji"`
	Image           string     `json:"image"`
	AgentName       string     `json:"agentName"`
	AgentWallet     string     `json:"agentWallet"`
	PostID          string     `json:"postId"`
	PostURL         string     `json:"postUrl"`
	Website         *string    `json:"website"`
	Twitter         *string    `json:"twitter"`
	ContractAddress *string    `json:"contractAddress"`
	TxHash          *string    `json:"txHash"`
	ClankerURL      *string    `json:"clankerUrl"`
	Status          string     `json:"status"`
	LaunchedAt      *time.Time `json:"launchedAt"`
}

// NewLaunch maps a launch row onto the full history entry
func NewLaunch(launch *schema.Launch) Launch {
	return Launch{
		ID:              launch.ID,
		Symbol:          launch.Symbol,
		Name:            launch.Name,
		Description:     launch.Description,
		PetType:         string(launch.PetType),
		Emoji:           launch.PetType.Emoji(),
		Image:           launch.ImageURL,
		AgentName:       launch.AgentName,
		AgentWallet:     launch.AgentWallet,
		PostID:          launch.PostID,
		PostURL:         launch.PostURL,
		Website:         launch.Website,
		Twitter:         launch.Twitter,
		ContractAddress: launch.ContractAddress,
		TxHash:          launch.TxHash,
		ClankerURL:      launch.DeploymentURL,
		Status:          string(launch.Status),
		LaunchedAt:      launch.LaunchedAt,
	}
}

// TokenListResponse is the payload of GET /tokens
type TokenListResponse struct {
	Success    bool       `json:"success"`
	Tokens     []Token    `json:"tokens"`
	Pagination Pagination `json:"pagination"`
}

// LaunchListResponse is the payload of GET /launches
type LaunchListResponse struct {
	Success    bool       `json:"success"`
	Launches   []Launch   `json:"launches"`
	Pagination Pagination `json:"pagination"`
}

// PetTypeStat is one per-kind deployment count
type PetTypeStat struct {
	Type  string `json:"type"`
	Emoji string `json:"emoji"`
	Count int64  `json:"count"`
}

// StatsResponse is the payload of GET /stats
type StatsResponse struct {
	Success  bool          `json:"success"`
	Stats    LaunchTotals  `json:"stats"`
	PetTypes []PetTypeStat `json:"petTypes"`
}

// LaunchTotals carries the aggregate deployment counters
type LaunchTotals struct {
	TotalLaunches int64 `json:"totalLaunches"`
}

// DeployerStatus describes the deployer wallet in the health payload
type DeployerStatus struct {
	Configured bool    `json:"configured"`
	Address    string  `json:"address,omitempty"`
	Balance    float64 `json:"balance,omitempty"`
}

// HealthResponse is the payload of GET /health
type HealthResponse struct {
	Status   string         `json:"status"`
	Version  string         `json:"version"`
	Deployer DeployerStatus `json:"deployer"`
}
