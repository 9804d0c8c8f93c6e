package parser_test

import (
	"errors"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/parser"
)

const validWallet = "0xAbC0000000000000000000000000000000000001"

func violations(t *testing.T, err error) []string {
	t.Helper()
	var verr *domain.ValidationError
	require.True(t, errors.As(err, &verr), "expected ValidationError, got %v", err)
	return verr.Violations
}

func TestParse_KeyValueFormat(t *testing.T) {
	content := strings.Join([]string{
		"!petpad launch my pet",
		"name: Fido",
		"symbol: fido",
		"wallet: " + validWallet,
		"description: a good boy",
		"type: dog",
	}, "\n")

	req, err := parser.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "Fido", req.Name)
	assert.Equal(t, "FIDO", req.Symbol)
	assert.Equal(t, validWallet, req.Wallet)
	assert.Equal(t, "a good boy", req.Description)
	assert.Equal(t, domain.PetTypeDog, req.PetType)
}

func TestParse_FencedJSON(t *testing.T) {
	content := "!petpad\n```json\n{\"name\":\"Whiskers\",\"symbol\":\"whsk\",\"wallet\":\"" +
		validWallet + "\",\"description\":\"a cat\",\"petType\":\"CAT\"}\n```"

	req, err := parser.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "Whiskers", req.Name)
	assert.Equal(t, "WHSK", req.Symbol)
	assert.Equal(t, domain.PetTypeCat, req.PetType)
}

func TestParse_RawJSON(t *testing.T) {
	content := `!petpad {"name":"Bubbles","symbol":"BUB","wallet":"` +
		validWallet + `","description":"a fish","petType":"fish"}`

	req, err := parser.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "Bubbles", req.Name)
	assert.Equal(t, domain.PetTypeFish, req.PetType)
}

func TestParse_StrategyOrder_FirstMatchWins(t *testing.T) {
	// Fenced JSON provides a full record; the key:value lines below
	// must not leak into the result.
	content := "!petpad\n```\n{\"name\":\"First\",\"symbol\":\"ONE\",\"wallet\":\"" +
		validWallet + "\",\"description\":\"json wins\",\"petType\":\"dog\"}\n```\n" +
		"name: Second\nsymbol: TWO\n"

	req, err := parser.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "First", req.Name)
	assert.Equal(t, "ONE", req.Symbol)
}

func TestParse_MissingMarker(t *testing.T) {
	content := "name: Fido\nsymbol: FIDO\nwallet: " + validWallet +
		"\ndescription: a good boy\ntype: dog"

	_, err := parser.Parse(content)
	v := violations(t, err)
	require.Len(t, v, 1)
	assert.Contains(t, v[0], "!petpad")
}

func TestParse_CollectsAllViolations(t *testing.T) {
	_, err := parser.Parse("!petpad\nname: " + strings.Repeat("x", 51))
	v := violations(t, err)
	assert.Contains(t, v, "name max 50 chars")
	assert.Contains(t, v, "symbol is required")
	assert.Contains(t, v, "wallet is required")
	assert.Contains(t, v, "description is required")
	assert.Contains(t, v, "petType is required")
}

func TestParse_LengthLimitsCountCharactersNotBytes(t *testing.T) {
	// 50 two-byte characters are 100 bytes but still within the name
	// limit; same for a 500-character description.
	content := strings.Join([]string{
		"!petpad",
		"name: " + strings.Repeat("é", 50),
		"symbol: REX",
		"wallet: " + validWallet,
		"description: " + strings.Repeat("ü", 500),
		"type: dog",
	}, "\n")

	req, err := parser.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, strings.Repeat("é", 50), req.Name)

	content = strings.Join([]string{
		"!petpad",
		"name: " + strings.Repeat("é", 51),
		"symbol: REX",
		"wallet: " + validWallet,
		"description: " + strings.Repeat("ü", 501),
		"type: dog",
	}, "\n")

	_, err = parser.Parse(content)
	v := violations(t, err)
	assert.Contains(t, v, "name max 50 chars")
	assert.Contains(t, v, "description max 500 chars")
}

func TestParse_InvalidFields(t *testing.T) {
	content := strings.Join([]string{
		"!petpad",
		"name: Rex",
		"symbol: toolongsymbol",
		"wallet: 0x123",
		"description: woof",
		"type: dragon",
	}, "\n")

	_, err := parser.Parse(content)
	v := violations(t, err)
	assert.Contains(t, v, "symbol max 10 chars")
	assert.Contains(t, v, "invalid wallet address")
	assert.Contains(t, v, "petType must be: "+domain.PetTypeNames())
}

func TestParse_InvalidFencedJSONPoisonsParse(t *testing.T) {
	// A malformed fenced block is a violation even when key:value
	// lines would otherwise produce a valid request.
	content := strings.Join([]string{
		"!petpad",
		"```json",
		"{not json}",
		"```",
		"name: Rex",
		"symbol: REX",
		"wallet: " + validWallet,
		"description: woof",
		"type: dog",
	}, "\n")

	_, err := parser.Parse(content)
	v := violations(t, err)
	assert.Contains(t, v, "Invalid JSON")
}

func TestParse_TwitterNormalization(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"already prefixed", "@petpad", "@petpad"},
		{"bare handle", "petpad", "@petpad"},
		{"twitter url", "https://twitter.com/petpad", "@petpad"},
		{"x url", "https://x.com/petpad", "@petpad"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			content := strings.Join([]string{
				"!petpad",
				"name: Rex",
				"symbol: REX",
				"wallet: " + validWallet,
				"description: woof",
				"type: dog",
				"twitter: " + tt.raw,
			}, "\n")

			req, err := parser.Parse(content)
			require.NoError(t, err)
			assert.Equal(t, tt.want, req.Twitter)
		})
	}
}

func TestParse_LaterKeyValueLinesWin(t *testing.T) {
	content := strings.Join([]string{
		"!petpad",
		"name: Old Name",
		"name: New Name",
		"symbol: REX",
		"wallet: " + validWallet,
		"description: woof",
		"type: dog",
	}, "\n")

	req, err := parser.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, "New Name", req.Name)
}

func TestParse_Idempotent(t *testing.T) {
	content := "!petpad\nname: Rex\nsymbol: REX\nwallet: " + validWallet +
		"\ndescription: woof\ntype: dog"

	first, err := parser.Parse(content)
	require.NoError(t, err)
	second, err := parser.Parse(content)
	require.NoError(t, err)
	assert.Equal(t, first, second)
}
