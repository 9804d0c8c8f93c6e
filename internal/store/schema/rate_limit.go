package schema

import "time"

// RateLimitRecord represents the rate_limits table - the per-agent
// cooldown clock, upserted on every successful deployment
type RateLimitRecord struct {
	// AgentID is the author identity from the post, or the caller
	// credential when no author is available
	AgentID      string    `gorm:"column:agent_id;primaryKey;type:text"`
	AgentName    string    `gorm:"column:agent_name;type:text"`
	LastLaunchAt time.Time `gorm:"column:last_launch_at;not null"`
	LaunchCount  int       `gorm:"column:launch_count;not null;default:1"`
}

// TableName specifies the table name for the RateLimitRecord model
func (RateLimitRecord) TableName() string {
	return "rate_limits"
}
