package domain

import "strings"

// PetType identifies one of the supported thematic pet kinds
type PetType string

const (
	PetTypeDog     PetType = "dog"
	PetTypeCat     PetType = "cat"
	PetTypeHamster PetType = "hamster"
	PetTypeBunny   PetType = "bunny"
	PetTypeBird    PetType = "bird"
	PetTypeTurtle  PetType = "turtle"
	PetTypeLizard  PetType = "lizard"
	PetTypeFish    PetType = "fish"
)

// PetTypes lists every supported pet type in registration order.
// The first entry is the fallback used for unrecognized kinds.
var PetTypes = []PetType{
	PetTypeDog,
	PetTypeCat,
	PetTypeHamster,
	PetTypeBunny,
	PetTypeBird,
	PetTypeTurtle,
	PetTypeLizard,
	PetTypeFish,
}

// petEmojis maps each pet type to its display emoji
var petEmojis = map[PetType]string{
	PetTypeDog:     "🐕",
	PetTypeCat:     "🐈",
	PetTypeHamster: "🐹",
	PetTypeBunny:   "🐰",
	PetTypeBird:    "🦜",
	PetTypeTurtle:  "🐢",
	PetTypeLizard:  "🦎",
	PetTypeFish:    "🐠",
}

// Valid reports whether the pet type is a member of the supported set
func (p PetType) Valid() bool {
	for _, t := range PetTypes {
		if p == t {
			return true
		}
	}
	return false
}

// Emoji returns the display emoji for the pet type, empty when unknown
func (p PetType) Emoji() string {
	return petEmojis[p]
}

// PetTypeNames returns the supported pet type names joined for error messages
func PetTypeNames() string {
	names := make([]string, len(PetTypes))
	for i, t := range PetTypes {
		names[i] = string(t)
	}
	return strings.Join(names, ", ")
}

// LaunchStatus represents the lifecycle state of a launch record
type LaunchStatus string

const (
	// LaunchStatusPending marks a launch persisted but not yet deployed
	LaunchStatusPending LaunchStatus = "pending"
	// LaunchStatusDeployed marks a launch whose token was issued on-chain (terminal)
	LaunchStatusDeployed LaunchStatus = "deployed"
	// LaunchStatusFailed marks a launch whose deployment failed (terminal)
	LaunchStatusFailed LaunchStatus = "failed"
)

// PostStatus represents the terminal outcome recorded for a processed post
type PostStatus string

const (
	PostStatusProcessed PostStatus = "processed"
	PostStatusFailed    PostStatus = "failed"
)

// LaunchRequest holds the validated fields extracted from a post
type LaunchRequest struct {
	Name        string
	Symbol      string
	Wallet      string
	Description string
	PetType     PetType
	Website     string
	Twitter     string
}

// Post is the raw content and author identity fetched from the social network
type Post struct {
	ID             string
	Content        string
	AuthorID       string
	AuthorUsername string
	URL            string
}
