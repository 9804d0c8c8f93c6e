package pixelart_test

import (
	"fmt"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/petpad-xyz/launchpad/internal/domain"
	"github.com/petpad-xyz/launchpad/internal/pixelart"
)

func TestGenerate_Deterministic(t *testing.T) {
	first := pixelart.Generate(domain.PetTypeDog, "seed-1")
	second := pixelart.Generate(domain.PetTypeDog, "seed-1")
	assert.Equal(t, first, second, "identical inputs must produce byte-identical output")
}

func TestGenerate_SeedChangesHueNotShape(t *testing.T) {
	a := string(pixelart.Generate(domain.PetTypeCat, "seed-a"))
	b := string(pixelart.Generate(domain.PetTypeCat, "seed-b"))
	require.NotEqual(t, a, b)

	// Stripping fill attributes must leave identical geometry.
	strip := func(svg string) string {
		var out strings.Builder
		for {
			i := strings.Index(svg, `fill="`)
			if i < 0 {
				out.WriteString(svg)
				return out.String()
			}
			out.WriteString(svg[:i])
			rest := svg[i+len(`fill="`):]
			j := strings.Index(rest, `"`)
			require.GreaterOrEqual(t, j, 0)
			svg = rest[j+1:]
		}
	}
	assert.Equal(t, strip(a), strip(b))
}

func TestGenerate_UnknownKindFallsBackToDog(t *testing.T) {
	fallback := pixelart.Generate(domain.PetType("dragon"), "seed")
	dog := pixelart.Generate(domain.PetTypeDog, "seed")
	assert.Equal(t, dog, fallback)
}

func TestGenerate_DocumentShape(t *testing.T) {
	svg := string(pixelart.Generate(domain.PetTypeFish, "abc"))
	assert.True(t, strings.HasPrefix(svg, `<svg xmlns="http://www.w3.org/2000/svg" width="256" height="256"`))
	assert.True(t, strings.HasSuffix(svg, "</svg>"))
	assert.Contains(t, svg, `fill="#FFF8F0"`)
	// Fish stencil keeps the eye color unrotated.
	assert.Contains(t, svg, `fill="#2D2D2D"`)
}

func TestGenerate_CellSizeFollowsImageSize(t *testing.T) {
	svg := string(pixelart.GenerateSized(domain.PetTypeBird, "abc", 120))
	assert.Contains(t, svg, `width="10" height="10"`)
	assert.NotContains(t, svg, `width="21"`)
}

func TestGenerate_EveryKindRenders(t *testing.T) {
	for _, kind := range domain.PetTypes {
		t.Run(string(kind), func(t *testing.T) {
			svg := string(pixelart.Generate(kind, "fixed-seed"))
			// Every stencil has at least one body cell.
			assert.Greater(t, strings.Count(svg, "<rect"), 1, fmt.Sprintf("kind %s rendered no cells", kind))
		})
	}
}
