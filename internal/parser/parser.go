// Package parser extracts a structured launch request from free-form
// post content. Extraction strategies are tried in order and the first
// one that yields a name wins; there is no field merging across
// strategies.
package parser

import (
	"encoding/json"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/petpad-xyz/launchpad/internal/domain"
)

// markerToken must be present anywhere in the post for it to be
// considered a launch instruction at all.
const markerToken = "!petpad"

const (
	maxNameLength        = 50
	maxSymbolLength      = 10
	maxDescriptionLength = 500
)

var (
	fencedJSONRe = regexp.MustCompile("(?s)```(?:json)?\\s*(\\{.*?\\})\\s*```")
	rawJSONRe    = regexp.MustCompile(`(?s)\{.*"name".*\}`)
	kvLineRe     = regexp.MustCompile(`^(\w+):\s*(.+)$`)
	symbolRe     = regexp.MustCompile(`^[A-Z0-9]+$`)
	walletRe     = regexp.MustCompile(`^0x[a-fA-F0-9]{40}$`)
	twitterURLRe = regexp.MustCompile(`.*(?:twitter\.com|x\.com)/`)
)

// draft holds raw extracted fields before validation
type draft struct {
	Name        string `json:"name"`
	Symbol      string `json:"symbol"`
	Wallet      string `json:"wallet"`
	Description string `json:"description"`
	PetType     string `json:"petType"`
	Website     string `json:"website"`
	Twitter     string `json:"twitter"`
}

// strategy attempts one extraction approach. A nil draft means the
// strategy did not produce a usable result; violations reported by a
// strategy are kept even when a later strategy succeeds.
type strategy func(content string) (*draft, []string)

var strategies = []strategy{
	parseFencedJSON,
	parseRawJSON,
	parseKeyValues,
}

// Parse turns raw post content into a validated launch request. On
// failure it returns a *domain.ValidationError carrying every
// violation found, never just the first.
func Parse(content string) (*domain.LaunchRequest, error) {
	if !strings.Contains(content, markerToken) {
		return nil, &domain.ValidationError{Violations: []string{"Post must contain " + markerToken}}
	}

	var d *draft
	var violations []string
	for _, s := range strategies {
		result, errs := s(content)
		violations = append(violations, errs...)
		if result != nil {
			d = result
			break
		}
	}
	if d == nil {
		d = &draft{}
	}

	violations = append(violations, validate(d)...)
	normalizeTwitter(d)

	if len(violations) > 0 {
		return nil, &domain.ValidationError{Violations: violations}
	}

	return &domain.LaunchRequest{
		Name:        d.Name,
		Symbol:      d.Symbol,
		Wallet:      d.Wallet,
		Description: d.Description,
		PetType:     domain.PetType(d.PetType),
		Website:     d.Website,
		Twitter:     d.Twitter,
	}, nil
}

// parseFencedJSON extracts a JSON object from a fenced code block.
// Malformed JSON inside a fence is reported as a violation even if a
// later strategy succeeds.
func parseFencedJSON(content string) (*draft, []string) {
	m := fencedJSONRe.FindStringSubmatch(content)
	if m == nil {
		return nil, nil
	}
	d, ok := unmarshalDraft(m[1])
	if !ok {
		return nil, []string{"Invalid JSON"}
	}
	return d, nil
}

// parseRawJSON extracts a bare JSON object containing a "name" key
func parseRawJSON(content string) (*draft, []string) {
	m := rawJSONRe.FindString(content)
	if m == "" {
		return nil, nil
	}
	d, _ := unmarshalDraft(m)
	return d, nil
}

// parseKeyValues scans line-oriented "key: value" pairs. Later lines
// overwrite earlier ones for the same key.
func parseKeyValues(content string) (*draft, []string) {
	d := &draft{}
	for _, line := range strings.Split(content, "\n") {
		m := kvLineRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		value := strings.TrimSpace(m[2])
		switch strings.ToLower(m[1]) {
		case "name":
			d.Name = value
		case "symbol":
			d.Symbol = strings.ToUpper(value)
		case "wallet":
			d.Wallet = value
		case "description":
			d.Description = value
		case "pettype", "pet_type", "type":
			d.PetType = strings.ToLower(value)
		case "website":
			d.Website = value
		case "twitter":
			d.Twitter = value
		}
	}
	if d.Name == "" {
		return nil, nil
	}
	return d, nil
}

// unmarshalDraft parses a JSON object and normalizes symbol and pet
// type casing. A draft without a name does not count as a match.
func unmarshalDraft(s string) (*draft, bool) {
	var d draft
	if err := json.Unmarshal([]byte(s), &d); err != nil {
		return nil, false
	}
	d.Symbol = strings.ToUpper(d.Symbol)
	d.PetType = strings.ToLower(d.PetType)
	if d.Name == "" {
		return nil, true
	}
	return &d, true
}

// validate checks every field and returns the complete violation
// list. Length limits count characters, not bytes.
func validate(d *draft) []string {
	var violations []string

	if d.Name == "" {
		violations = append(violations, "name is required")
	} else if utf8.RuneCountInString(d.Name) > maxNameLength {
		violations = append(violations, "name max 50 chars")
	}

	if d.Symbol == "" {
		violations = append(violations, "symbol is required")
	} else if utf8.RuneCountInString(d.Symbol) > maxSymbolLength {
		violations = append(violations, "symbol max 10 chars")
	} else if !symbolRe.MatchString(d.Symbol) {
		violations = append(violations, "symbol must be uppercase alphanumeric")
	}

	if d.Wallet == "" {
		violations = append(violations, "wallet is required")
	} else if !walletRe.MatchString(d.Wallet) {
		violations = append(violations, "invalid wallet address")
	}

	if d.Description == "" {
		violations = append(violations, "description is required")
	} else if utf8.RuneCountInString(d.Description) > maxDescriptionLength {
		violations = append(violations, "description max 500 chars")
	}

	if d.PetType == "" {
		violations = append(violations, "petType is required")
	} else if !domain.PetType(d.PetType).Valid() {
		violations = append(violations, "petType must be: "+domain.PetTypeNames())
	}

	return violations
}

// normalizeTwitter derives an @handle from a twitter.com or x.com URL
// when the raw value is missing the leading @
func normalizeTwitter(d *draft) {
	if d.Twitter == "" || strings.HasPrefix(d.Twitter, "@") {
		return
	}
	d.Twitter = "@" + twitterURLRe.ReplaceAllString(d.Twitter, "")
}
