package schema

import (
	"time"

	"github.com/petpad-xyz/launchpad/internal/domain"
)

// Launch represents the launches table - one row per attempt to turn a
// post into an issued token. Status is pending until the deployment
// gateway answers, then deployed or failed, both terminal.
//
// The unique indexes on symbol and post_id are the enforcement
// mechanism for one-shot-per-symbol and one-shot-per-post: the pending
// insert is the atomic reservation, so two concurrent requests can
// never both pass. Symbols are stored uppercase and additionally
// guarded by a case-insensitive expression index (see Migrate).
type Launch struct {
	// ID is the launch identifier (UUID)
	ID string `gorm:"column:id;primaryKey;type:text"`
	// Symbol is the ticker, always stored uppercase
	Symbol string `gorm:"column:symbol;not null;uniqueIndex:idx_launches_symbol;type:text"`
	Name   string `gorm:"column:name;not null;type:text"`
	// Description is the token description without the promotional suffix
	Description string         `gorm:"column:description;type:text"`
	PetType     domain.PetType `gorm:"column:pet_type;not null;type:text;index:idx_launches_pet_type"`
	ImageURL    string         `gorm:"column:image_url;type:text"`
	// AgentName is the display name of the launching agent
	AgentName string `gorm:"column:agent_name;type:text"`
	// AgentWallet receives the creator share of trading rewards
	AgentWallet     string  `gorm:"column:agent_wallet;not null;type:text"`
	ContractAddress *string `gorm:"column:contract_address;type:text;index:idx_launches_contract"`
	TxHash          *string `gorm:"column:tx_hash;type:text"`
	ChainID         int64   `gorm:"column:chain_id;not null;default:8453"`
	// PostID is the source post; unique so one post yields one launch
	PostID  string  `gorm:"column:post_id;not null;uniqueIndex:idx_launches_post_id;type:text"`
	PostURL string  `gorm:"column:post_url;type:text"`
	Website *string `gorm:"column:website;type:text"`
	Twitter *string `gorm:"column:twitter;type:text"`
	// DeploymentURL points at the issuance platform page for the token
	DeploymentURL *string             `gorm:"column:deployment_url;type:text"`
	Status        domain.LaunchStatus `gorm:"column:status;not null;default:pending;type:text;index:idx_launches_status"`
	// ErrorMessage holds the gateway failure text verbatim
	ErrorMessage *string    `gorm:"column:error_message;type:text"`
	LaunchedAt   *time.Time `gorm:"column:launched_at"`
	CreatedAt    time.Time  `gorm:"column:created_at;not null"`
}

// TableName specifies the table name for the Launch model
func (Launch) TableName() string {
	return "launches"
}
