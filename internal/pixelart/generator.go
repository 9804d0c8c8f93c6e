// Package pixelart renders deterministic pixel-art identities for
// launched tokens. Identical (kind, seed) input always produces a
// byte-identical SVG document; the seed only rotates the palette hue,
// so two launches of the same kind share a stencil but differ in tint.
package pixelart

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/petpad-xyz/launchpad/internal/domain"
)

// DefaultSize is the rendered edge length in pixels
const DefaultSize = 256

// gridSize is the stencil edge length in cells
const gridSize = 12

// Palette holds the four named colors of a pet kind as #RRGGBB hex
type Palette struct {
	Primary   string
	Secondary string
	Accent    string
	Eye       string
}

// stencils holds one 12x12 glyph grid per pet kind. Glyphs: '#' body
// outline (secondary), '@' body fill (primary), '.' eye, '*'/'~' accent.
var stencils = map[domain.PetType][gridSize]string{
	domain.PetTypeDog: {
		"    ####    ", "   ######   ", "  ##@@@@##  ", "  #@@..@@#  ",
		"  #@@..@@#  ", "   #@**@#   ", "    ####    ", "   ######   ",
		"  ##@@@@##  ", "  #@@@@@@#  ", "   #@##@#   ", "   # ## #   ",
	},
	domain.PetTypeCat: {
		" ##    ##   ", "#@@#  #@@#  ", " #@@@@@@#   ", " #@@..@@#   ",
		" #@@..@@#   ", "  #@**@#    ", "   ####     ", "  #@@@@#    ",
		"  #@@@@#    ", "   #@@#     ", "  ## ##~~   ", " #    # ~~  ",
	},
	domain.PetTypeHamster: {
		"   ######   ", "  ########  ", " ##@@@@@@## ", " #@@....@@# ",
		"##@@....@@##", "#@@@@**@@@@#", "#@@@@@@@@@@#", " #@@@@@@@@# ",
		"  ########  ", "   ######   ", "    ####    ", "            ",
	},
	domain.PetTypeBunny: {
		"  ##  ##    ", " #@@##@@#   ", " #@@##@@#   ", " #@@@@@@#   ",
		"#@@....@@#  ", "#@@....@@#  ", " #@@**@@#   ", "  ######    ",
		" #@@@@@@#   ", "  #@##@#    ", " ## ## ##   ", "            ",
	},
	domain.PetTypeBird: {
		"    ###     ", "   #@@@#    ", "  #@@@@@#   ", "  #@@.@@#   ",
		" ##@@.@@##  ", "#@@#**#@@#  ", "#@@@@@@@@ # ", " #@@@@@@@#  ",
		"  #@@@@@#   ", "   #@@@#    ", "    # #     ", "   #   #    ",
	},
	domain.PetTypeTurtle: {
		"    ####    ", "  ##@@@@##  ", " #@@..@@#   ", "  #@@@@#    ",
		"###****###  ", "#@@#***#@@# ", "#@@#***#@@# ", "###****###  ",
		"  ######    ", " #  #  #    ", "#  #  #  #  ", "            ",
	},
	domain.PetTypeLizard: {
		"   ###      ", "  #@@@#     ", " #@@.@@#    ", "  #@*@#     ",
		"   ###      ", "  #@@@#     ", " #@@@@@#    ", "##@@@@@##   ",
		"#  ###  #   ", "   ###      ", "  #   #~~~~ ", "       ~~~~ ",
	},
	domain.PetTypeFish: {
		"            ", "     ###    ", "   ##@@@##  ", " ##@@..@@## ",
		"#@@@@..@@@@#", "#@@@@@*@@@@#", " #@@@@@@@@# ", "  ##@@@##   ",
		"    ###     ", "            ", "            ", "            ",
	},
}

var palettes = map[domain.PetType]Palette{
	domain.PetTypeDog:     {Primary: "#D4A574", Secondary: "#8B6914", Accent: "#FF6B9D", Eye: "#2D2D2D"},
	domain.PetTypeCat:     {Primary: "#9B8AA5", Secondary: "#6B5B7A", Accent: "#7C4DFF", Eye: "#4CAF50"},
	domain.PetTypeHamster: {Primary: "#FFD93D", Secondary: "#E5A620", Accent: "#FF6B9D", Eye: "#2D2D2D"},
	domain.PetTypeBunny:   {Primary: "#F5F5F5", Secondary: "#E0E0E0", Accent: "#FFB6C1", Eye: "#E91E63"},
	domain.PetTypeBird:    {Primary: "#4FC3F7", Secondary: "#0288D1", Accent: "#FFD93D", Eye: "#2D2D2D"},
	domain.PetTypeTurtle:  {Primary: "#6BCB77", Secondary: "#388E3C", Accent: "#8B4513", Eye: "#2D2D2D"},
	domain.PetTypeLizard:  {Primary: "#9CCC65", Secondary: "#7CB342", Accent: "#FF5722", Eye: "#FF5722"},
	domain.PetTypeFish:    {Primary: "#FF8A65", Secondary: "#E64A19", Accent: "#4FC3F7", Eye: "#2D2D2D"},
}

// Generate renders the SVG document for a pet kind and seed at the
// default size
func Generate(kind domain.PetType, seed string) []byte {
	return GenerateSized(kind, seed, DefaultSize)
}

// GenerateSized renders the SVG document at an explicit size. An
// unrecognized kind falls back to the dog stencil and palette rather
// than failing.
func GenerateSized(kind domain.PetType, seed string, size int) []byte {
	stencil, ok := stencils[kind]
	if !ok {
		stencil = stencils[domain.PetTypeDog]
	}
	palette, ok := palettes[kind]
	if !ok {
		palette = palettes[domain.PetTypeDog]
	}

	shift := hueShift(seed)
	adjusted := Palette{
		Primary:   shiftHue(palette.Primary, float64(shift)),
		Secondary: shiftHue(palette.Secondary, float64(shift)),
		Accent:    shiftHue(palette.Accent, float64(shift)/2),
		Eye:       palette.Eye,
	}

	cell := size / gridSize
	var b strings.Builder
	fmt.Fprintf(&b, `<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" style="image-rendering:pixelated">`, size, size)
	b.WriteString(`<rect width="100%" height="100%" fill="#FFF8F0"/>`)
	for y, row := range stencil {
		for x, glyph := range []byte(row) {
			var color string
			switch glyph {
			case '#':
				color = adjusted.Secondary
			case '@':
				color = adjusted.Primary
			case '.':
				color = adjusted.Eye
			case '*', '~':
				color = adjusted.Accent
			default:
				continue
			}
			fmt.Fprintf(&b, `<rect x="%d" y="%d" width="%d" height="%d" fill="%s"/>`, x*cell, y*cell, cell, cell, color)
		}
	}
	b.WriteString(`</svg>`)
	return []byte(b.String())
}

// hueShift reduces a 32-bit rolling hash of the seed to a hue rotation
// in the range [-15, 15) degrees
func hueShift(seed string) int {
	var h int32
	for _, c := range seed {
		h = (h << 5) - h + int32(c)
	}
	v := int64(h)
	if v < 0 {
		v = -v
	}
	return int(v%30) - 15
}

// shiftHue rotates a #RRGGBB color around the HSL hue wheel by deg
// degrees, wrapping negative rotations
func shiftHue(hex string, deg float64) string {
	r := float64(parseHexByte(hex[1:3])) / 255
	g := float64(parseHexByte(hex[3:5])) / 255
	b := float64(parseHexByte(hex[5:7])) / 255

	maxC := math.Max(r, math.Max(g, b))
	minC := math.Min(r, math.Min(g, b))
	l := (maxC + minC) / 2
	var h, s float64
	if maxC != minC {
		d := maxC - minC
		if l > 0.5 {
			s = d / (2 - maxC - minC)
		} else {
			s = d / (maxC + minC)
		}
		switch maxC {
		case r:
			h = (g - b) / d
			if g < b {
				h += 6
			}
			h /= 6
		case g:
			h = ((b-r)/d + 2) / 6
		default:
			h = ((r-g)/d + 4) / 6
		}
	}

	h = math.Mod(h+deg/360+1, 1)

	if s == 0 {
		gray := toHexByte(l)
		return "#" + gray + gray + gray
	}

	var q float64
	if l < 0.5 {
		q = l * (1 + s)
	} else {
		q = l + s - l*s
	}
	p := 2*l - q

	return "#" + toHexByte(hueToRGB(p, q, h+1.0/3)) + toHexByte(hueToRGB(p, q, h)) + toHexByte(hueToRGB(p, q, h-1.0/3))
}

func hueToRGB(p, q, t float64) float64 {
	if t < 0 {
		t++
	}
	if t > 1 {
		t--
	}
	switch {
	case t < 1.0/6:
		return p + (q-p)*6*t
	case t < 1.0/2:
		return q
	case t < 2.0/3:
		return p + (q-p)*(2.0/3-t)*6
	default:
		return p
	}
}

func parseHexByte(s string) uint8 {
	v, _ := strconv.ParseUint(s, 16, 8)
	return uint8(v)
}

func toHexByte(x float64) string {
	return fmt.Sprintf("%02x", int(math.Round(x*255)))
}
