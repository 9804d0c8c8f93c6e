package schema

import (
	"time"

	"github.com/petpad-xyz/launchpad/internal/domain"
)

// ProcessedPostMarker represents the processed_posts table. A marker
// is written once per post, strictly after the deployment attempt
// reached a terminal state; once present the post can never produce
// another launch.
type ProcessedPostMarker struct {
	PostID      string            `gorm:"column:post_id;primaryKey;type:text"`
	ProcessedAt time.Time         `gorm:"column:processed_at;not null"`
	Status      domain.PostStatus `gorm:"column:status;not null;default:processed;type:text"`
}

// TableName specifies the table name for the ProcessedPostMarker model
func (ProcessedPostMarker) TableName() string {
	return "processed_posts"
}
