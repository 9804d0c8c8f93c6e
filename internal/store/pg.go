package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/store/schema"
)

type pgStore struct {
	db *gorm.DB
}

// NewPGStore creates a new store instance on a GORM connection
func NewPGStore(db *gorm.DB) Store {
	return &pgStore{db: db}
}

// Migrate creates or updates the launchpad tables. Beyond AutoMigrate
// it installs a case-insensitive unique index on launches.symbol; the
// expression form works on both PostgreSQL and SQLite.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(
		&schema.Launch{},
		&schema.RateLimitRecord{},
		&schema.ProcessedPostMarker{},
	); err != nil {
		return fmt.Errorf("failed to migrate schema: %w", err)
	}

	if err := db.Exec("CREATE UNIQUE INDEX IF NOT EXISTS idx_launches_symbol_ci ON launches (upper(symbol))").Error; err != nil {
		return fmt.Errorf("failed to create symbol index: %w", err)
	}

	return nil
}

// ConfigureConnectionPool configures the connection pool settings for
// a GORM database connection
func ConfigureConnectionPool(db *gorm.DB, maxOpenConns, maxIdleConns int, connMaxLifetime, connMaxIdleTime time.Duration) error {
	sqlDB, err := db.DB()
	if err != nil {
		return fmt.Errorf("failed to get underlying sql.DB: %w", err)
	}

	if maxOpenConns == 0 {
		maxOpenConns = 20
	}
	if maxIdleConns == 0 {
		maxIdleConns = 5
	}
	if connMaxLifetime == 0 {
		connMaxLifetime = 5 * time.Minute
	}
	if connMaxIdleTime == 0 {
		connMaxIdleTime = 10 * time.Minute
	}
	if maxIdleConns > maxOpenConns {
		maxIdleConns = maxOpenConns
	}

	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetMaxIdleConns(maxIdleConns)
	sqlDB.SetConnMaxLifetime(connMaxLifetime)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	return nil
}

// CreateLaunch inserts a pending launch row, mapping unique-constraint
// rejections to the sentinel errors callers branch on
func (s *pgStore) CreateLaunch(ctx context.Context, launch *schema.Launch) error {
	err := s.db.WithContext(ctx).Create(launch).Error
	if err != nil {
		if isUniqueViolation(err) {
			msg := err.Error()
			if strings.Contains(msg, "symbol") {
				return ErrSymbolTaken
			}
			if strings.Contains(msg, "post_id") {
				return ErrPostConsumed
			}
			return ErrSymbolTaken
		}
		return fmt.Errorf("failed to create launch: %w", err)
	}
	return nil
}

// MarkLaunchDeployed transitions a pending launch to deployed
func (s *pgStore) MarkLaunchDeployed(ctx context.Context, id, contractAddress, txHash, deploymentURL string, launchedAt time.Time) error {
	err := s.db.WithContext(ctx).
		Model(&schema.Launch{}).
		Where("id = ? AND status = ?", id, domain.LaunchStatusPending).
		Updates(map[string]any{
			"status":           domain.LaunchStatusDeployed,
			"contract_address": contractAddress,
			"tx_hash":          txHash,
			"deployment_url":   deploymentURL,
			"launched_at":      launchedAt,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark launch deployed: %w", err)
	}
	return nil
}

// MarkLaunchFailed transitions a pending launch to failed
func (s *pgStore) MarkLaunchFailed(ctx context.Context, id, errorMessage string) error {
	err := s.db.WithContext(ctx).
		Model(&schema.Launch{}).
		Where("id = ? AND status = ?", id, domain.LaunchStatusPending).
		Updates(map[string]any{
			"status":        domain.LaunchStatusFailed,
			"error_message": errorMessage,
		}).Error
	if err != nil {
		return fmt.Errorf("failed to mark launch failed: %w", err)
	}
	return nil
}

// GetLaunchBySymbol retrieves a launch by symbol, case-insensitively
func (s *pgStore) GetLaunchBySymbol(ctx context.Context, symbol string) (*schema.Launch, error) {
	var launch schema.Launch
	err := s.db.WithContext(ctx).
		Where("upper(symbol) = ?", strings.ToUpper(symbol)).
		First(&launch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get launch by symbol: %w", err)
	}
	return &launch, nil
}

// GetLaunchByContract retrieves a launch by its contract address
func (s *pgStore) GetLaunchByContract(ctx context.Context, contractAddress string) (*schema.Launch, error) {
	var launch schema.Launch
	err := s.db.WithContext(ctx).
		Where("contract_address = ?", contractAddress).
		First(&launch).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get launch by contract: %w", err)
	}
	return &launch, nil
}

// ListLaunches retrieves launches matching the filter, newest first.
// The deployed-only view orders by deployment time, full history by
// creation time.
func (s *pgStore) ListLaunches(ctx context.Context, filter LaunchFilter) ([]*schema.Launch, int64, error) {
	query := s.db.WithContext(ctx).Model(&schema.Launch{})
	order := "created_at DESC"
	if filter.DeployedOnly {
		query = query.Where("status = ?", domain.LaunchStatusDeployed)
		order = "launched_at DESC"
	}
	if filter.PetType != "" {
		query = query.Where("pet_type = ?", filter.PetType)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return nil, 0, fmt.Errorf("failed to count launches: %w", err)
	}

	var launches []*schema.Launch
	err := query.
		Order(order).
		Limit(filter.Limit).
		Offset(filter.Offset).
		Find(&launches).Error
	if err != nil {
		return nil, 0, fmt.Errorf("failed to list launches: %w", err)
	}

	return launches, total, nil
}

// CountDeployed returns the number of deployed launches
func (s *pgStore) CountDeployed(ctx context.Context) (int64, error) {
	var count int64
	err := s.db.WithContext(ctx).
		Model(&schema.Launch{}).
		Where("status = ?", domain.LaunchStatusDeployed).
		Count(&count).Error
	if err != nil {
		return 0, fmt.Errorf("failed to count deployed launches: %w", err)
	}
	return count, nil
}

// DeployedCountsByPetType returns deployed counts per pet kind
func (s *pgStore) DeployedCountsByPetType(ctx context.Context) ([]PetTypeCount, error) {
	var counts []PetTypeCount
	err := s.db.WithContext(ctx).
		Model(&schema.Launch{}).
		Select("pet_type, COUNT(*) as count").
		Where("status = ?", domain.LaunchStatusDeployed).
		Group("pet_type").
		Order("count DESC").
		Scan(&counts).Error
	if err != nil {
		return nil, fmt.Errorf("failed to count launches by pet type: %w", err)
	}
	return counts, nil
}

// ListStalePending returns pending launches created before the cutoff
func (s *pgStore) ListStalePending(ctx context.Context, cutoff time.Time, limit int) ([]*schema.Launch, error) {
	var launches []*schema.Launch
	err := s.db.WithContext(ctx).
		Where("status = ? AND created_at < ?", domain.LaunchStatusPending, cutoff).
		Order("created_at ASC").
		Limit(limit).
		Find(&launches).Error
	if err != nil {
		return nil, fmt.Errorf("failed to list stale pending launches: %w", err)
	}
	return launches, nil
}

// GetRateLimit retrieves the cooldown record for an agent
func (s *pgStore) GetRateLimit(ctx context.Context, agentID string) (*schema.RateLimitRecord, error) {
	var record schema.RateLimitRecord
	err := s.db.WithContext(ctx).
		Where("agent_id = ?", agentID).
		First(&record).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get rate limit: %w", err)
	}
	return &record, nil
}

// UpsertRateLimit resets the cooldown clock and increments the count
func (s *pgStore) UpsertRateLimit(ctx context.Context, agentID, agentName string, launchedAt time.Time) error {
	record := schema.RateLimitRecord{
		AgentID:      agentID,
		AgentName:    agentName,
		LastLaunchAt: launchedAt,
		LaunchCount:  1,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "agent_id"}},
			DoUpdates: clause.Assignments(map[string]any{
				"agent_name":     agentName,
				"last_launch_at": launchedAt,
				"launch_count":   gorm.Expr("rate_limits.launch_count + 1"),
			}),
		}).
		Create(&record).Error
	if err != nil {
		return fmt.Errorf("failed to upsert rate limit: %w", err)
	}
	return nil
}

// GetProcessedPost retrieves the marker for a post
func (s *pgStore) GetProcessedPost(ctx context.Context, postID string) (*schema.ProcessedPostMarker, error) {
	var marker schema.ProcessedPostMarker
	err := s.db.WithContext(ctx).
		Where("post_id = ?", postID).
		First(&marker).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get processed post: %w", err)
	}
	return &marker, nil
}

// MarkPostProcessed writes the terminal marker for a post; a marker
// already present is left untouched so the first outcome sticks
func (s *pgStore) MarkPostProcessed(ctx context.Context, postID string, status domain.PostStatus, processedAt time.Time) error {
	marker := schema.ProcessedPostMarker{
		PostID:      postID,
		ProcessedAt: processedAt,
		Status:      status,
	}
	err := s.db.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "post_id"}},
			DoNothing: true,
		}).
		Create(&marker).Error
	if err != nil {
		return fmt.Errorf("failed to mark post processed: %w", err)
	}
	return nil
}

// isUniqueViolation reports whether err is a unique-constraint
// rejection from PostgreSQL or SQLite
func isUniqueViolation(err error) bool {
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	msg := err.Error()
	return strings.Contains(msg, "duplicate key value") || // postgres
		strings.Contains(msg, "UNIQUE constraint failed") // sqlite
}
