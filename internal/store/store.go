package store

import (
	"context"
	"errors"
	"time"

	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/store/schema"
)

var (
	// ErrSymbolTaken is returned when inserting a launch whose symbol
	// is already reserved, in any letter case
	ErrSymbolTaken = errors.New("symbol already launched")

	// ErrPostConsumed is returned when inserting a launch for a post
	// that already has one
	ErrPostConsumed = errors.New("post already used for launch")
)

// LaunchFilter narrows launch listings
type LaunchFilter struct {
	// DeployedOnly restricts results to status=deployed
	DeployedOnly bool
	// PetType filters by pet kind when non-empty
	PetType domain.PetType
	Limit   int
	Offset  int
}

// PetTypeCount is one row of the per-kind deployment statistics
type PetTypeCount struct {
	PetType domain.PetType
	Count   int64
}

// Store defines the interface for database operations
type Store interface {
	// CreateLaunch inserts a pending launch row. The insert is the
	// atomic reservation of both the symbol and the post: it returns
	// ErrSymbolTaken or ErrPostConsumed when the corresponding unique
	// constraint rejects the row.
	CreateLaunch(ctx context.Context, launch *schema.Launch) error
	// MarkLaunchDeployed transitions a pending launch to deployed
	MarkLaunchDeployed(ctx context.Context, id, contractAddress, txHash, deploymentURL string, launchedAt time.Time) error
	// MarkLaunchFailed transitions a pending launch to failed,
	// persisting the error text verbatim
	MarkLaunchFailed(ctx context.Context, id, errorMessage string) error
	// GetLaunchBySymbol retrieves a launch by symbol, case-insensitively
	GetLaunchBySymbol(ctx context.Context, symbol string) (*schema.Launch, error)
	// GetLaunchByContract retrieves a launch by its contract address
	GetLaunchByContract(ctx context.Context, contractAddress string) (*schema.Launch, error)
	// ListLaunches retrieves launches matching the filter, newest
	// first, along with the total deployed count
	ListLaunches(ctx context.Context, filter LaunchFilter) ([]*schema.Launch, int64, error)
	// CountDeployed returns the number of deployed launches
	CountDeployed(ctx context.Context) (int64, error)
	// DeployedCountsByPetType returns deployed counts per pet kind,
	// most popular first
	DeployedCountsByPetType(ctx context.Context) ([]PetTypeCount, error)
	// ListStalePending returns pending launches created before the
	// given cutoff, oldest first
	ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*schema.Launch, error)

	// GetRateLimit retrieves the cooldown record for an agent, nil
	// when the agent has never deployed
	GetRateLimit(ctx context.Context, agentID string) (*schema.RateLimitRecord, error)
	// UpsertRateLimit resets the cooldown clock for an agent and
	// increments its launch count
	UpsertRateLimit(ctx context.Context, agentID, agentName string, launchedAt time.Time) error

	// GetProcessedPost retrieves the marker for a post, nil when the
	// post has never reached a terminal launch attempt
	GetProcessedPost(ctx context.Context, postID string) (*schema.ProcessedPostMarker, error)
	// MarkPostProcessed writes the terminal marker for a post. An
	// existing marker is left untouched.
	MarkPostProcessed(ctx context.Context, postID string, status domain.PostStatus, processedAt time.Time) error
}
