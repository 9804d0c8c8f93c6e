// Package ledger drives a launch attempt from raw post to terminal
// outcome with at-most-once semantics per post and per symbol.
package ledger

import (
	"context"
	"errors"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/petpad-xyz/launchpad/internal/adapter"
	"github.com/petpad-xyz/launchpad/internal/assets"
	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/logger"
	"github.com/petpad-xyz/launchpad/internal/parser"
	"github.com/petpad-xyz/launchpad/internal/pixelart"
	"github.com/petpad-xyz/launchpad/internal/providers/clanker"
	"github.com/petpad-xyz/launchpad/internal/providers/moltbook"
	"github.com/petpad-xyz/launchpad/internal/store"
	"github.com/petpad-xyz/launchpad/internal/store/schema"
)

// descriptionSuffix is appended to every token description sent
// on-chain; the stored description stays without it.
const descriptionSuffix = "\n\n🐾 {LAUNCHED WITH PETPAD}"

// Result is the successful outcome of a launch attempt
type Result struct {
	LaunchID      string
	AgentName     string
	AgentWallet   string
	PostID        string
	PostURL       string
	Name          string
	Symbol        string
	PetType       domain.PetType
	ImageURL      string
	TokenAddress  string
	TxHash        string
	DeploymentURL string
	ExplorerURL   string
}

// Ledger sequences uniqueness checks, rate limiting, persistence and
// the external deployment call. All persistent state is owned here;
// no other component writes launches, rate limits or post markers.
type Ledger struct {
	store           store.Store
	posts           moltbook.Client
	deployer        clanker.Deployer
	assets          assets.Store
	clock           adapter.Clock
	chainID         int64
	rateLimitWindow time.Duration
}

// New creates a launch ledger
func New(s store.Store, posts moltbook.Client, deployer clanker.Deployer, assetStore assets.Store, clock adapter.Clock, chainID int64, rateLimitHours int) *Ledger {
	return &Ledger{
		store:           s,
		posts:           posts,
		deployer:        deployer,
		assets:          assetStore,
		clock:           clock,
		chainID:         chainID,
		rateLimitWindow: time.Duration(rateLimitHours) * time.Hour,
	}
}

// Launch fetches the referenced post, parses it into a launch request
// and drives it to a terminal state. A deployment failure consumes the
// post and the symbol permanently; there is no retry.
func (l *Ledger) Launch(ctx context.Context, credential, postID string) (*Result, error) {
	post, err := l.posts.GetPost(ctx, credential, postID)
	if err != nil {
		return nil, err
	}

	// Pre-checks reject cheaply before any state is touched. The
	// pending insert below remains the authoritative reservation.
	marker, err := l.store.GetProcessedPost(ctx, postID)
	if err != nil {
		return nil, fmt.Errorf("failed to check processed post: %w", err)
	}
	if marker != nil {
		return nil, &domain.ConflictError{Message: "Post already used for launch"}
	}

	req, err := parser.Parse(post.Content)
	if err != nil {
		return nil, err
	}

	existing, err := l.store.GetLaunchBySymbol(ctx, req.Symbol)
	if err != nil {
		return nil, fmt.Errorf("failed to check symbol: %w", err)
	}
	if existing != nil {
		return nil, &domain.ConflictError{Message: fmt.Sprintf("Ticker %s already launched", req.Symbol)}
	}

	agentID := post.AuthorID
	if agentID == "" {
		agentID = credential
	}
	agentName := post.AuthorUsername
	if agentName == "" {
		agentName = "Unknown"
	}

	if err := l.checkRateLimit(ctx, agentID); err != nil {
		return nil, err
	}

	launchID := uuid.New().String()
	image := pixelart.Generate(req.PetType, launchID)
	imageURL, err := l.assets.Put(ctx, launchID+".svg", image, "image/svg+xml")
	if err != nil {
		return nil, fmt.Errorf("failed to store launch image: %w", err)
	}

	launch := &schema.Launch{
		ID:          launchID,
		Symbol:      req.Symbol,
		Name:        req.Name,
		Description: req.Description,
		PetType:     req.PetType,
		ImageURL:    imageURL,
		AgentName:   agentName,
		AgentWallet: req.Wallet,
		ChainID:     l.chainID,
		PostID:      postID,
		PostURL:     post.URL,
		Website:     optional(req.Website),
		Twitter:     optional(req.Twitter),
		Status:      domain.LaunchStatusPending,
		CreatedAt:   l.clock.Now().UTC(),
	}
	if err := l.store.CreateLaunch(ctx, launch); err != nil {
		switch {
		case errors.Is(err, store.ErrSymbolTaken):
			return nil, &domain.ConflictError{Message: fmt.Sprintf("Ticker %s already launched", req.Symbol)}
		case errors.Is(err, store.ErrPostConsumed):
			return nil, &domain.ConflictError{Message: "Post already used for launch"}
		}
		return nil, fmt.Errorf("failed to create launch: %w", err)
	}

	logger.InfoCtx(ctx, "Launch reserved",
		zap.String("launch_id", launchID),
		zap.String("symbol", req.Symbol),
		zap.String("agent", agentName),
	)

	deployed, err := l.deployer.Deploy(ctx, clanker.DeployRequest{
		LaunchID:    launchID,
		Name:        req.Name,
		Symbol:      req.Symbol,
		Description: req.Description + descriptionSuffix,
		ImageURL:    imageURL,
		AgentWallet: req.Wallet,
		Website:     req.Website,
		Twitter:     req.Twitter,
	})
	if err != nil {
		l.recordFailure(ctx, launchID, postID, err)
		return nil, err
	}

	now := l.clock.Now().UTC()
	if err := l.store.MarkLaunchDeployed(ctx, launchID, deployed.TokenAddress, deployed.TxHash, deployed.DeploymentURL, now); err != nil {
		return nil, fmt.Errorf("failed to record deployment: %w", err)
	}
	if err := l.store.UpsertRateLimit(ctx, agentID, agentName, now); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to update rate limit record: %w", err), zap.String("agent_id", agentID))
	}
	if err := l.store.MarkPostProcessed(ctx, postID, domain.PostStatusProcessed, now); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to mark post processed: %w", err), zap.String("post_id", postID))
	}

	logger.InfoCtx(ctx, "Launch deployed",
		zap.String("launch_id", launchID),
		zap.String("symbol", req.Symbol),
		zap.String("token_address", deployed.TokenAddress),
	)

	return &Result{
		LaunchID:      launchID,
		AgentName:     agentName,
		AgentWallet:   req.Wallet,
		PostID:        postID,
		PostURL:       post.URL,
		Name:          req.Name,
		Symbol:        req.Symbol,
		PetType:       req.PetType,
		ImageURL:      imageURL,
		TokenAddress:  deployed.TokenAddress,
		TxHash:        deployed.TxHash,
		DeploymentURL: deployed.DeploymentURL,
		ExplorerURL:   clanker.ExplorerURL(deployed.TokenAddress),
	}, nil
}

// checkRateLimit rejects an agent still inside the cooldown window.
// The reported wait is the ceiling of the remaining hours.
func (l *Ledger) checkRateLimit(ctx context.Context, agentID string) error {
	record, err := l.store.GetRateLimit(ctx, agentID)
	if err != nil {
		return fmt.Errorf("failed to check rate limit: %w", err)
	}
	if record == nil {
		return nil
	}

	elapsed := l.clock.Since(record.LastLaunchAt)
	if elapsed >= l.rateLimitWindow {
		return nil
	}
	remaining := int(math.Ceil((l.rateLimitWindow - elapsed).Hours()))
	return &domain.RateLimitError{RetryAfterHours: remaining}
}

// recordFailure writes the terminal failed state. The post and the
// symbol stay consumed; idempotency wins over retry-ability.
func (l *Ledger) recordFailure(ctx context.Context, launchID, postID string, deployErr error) {
	if err := l.store.MarkLaunchFailed(ctx, launchID, deployErr.Error()); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to record launch failure: %w", err), zap.String("launch_id", launchID))
	}
	if err := l.store.MarkPostProcessed(ctx, postID, domain.PostStatusFailed, l.clock.Now().UTC()); err != nil {
		logger.ErrorCtx(ctx, fmt.Errorf("failed to mark post processed: %w", err), zap.String("post_id", postID))
	}

	logger.WarnCtx(ctx, "Launch failed",
		zap.String("launch_id", launchID),
		zap.String("post_id", postID),
		zap.Error(deployErr),
	)
}

func optional(s string) *string {
	if s == "" {
		return nil
	}
	return &s
}
