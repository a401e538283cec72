package theme

import (
	"regexp"
	"strconv"
	"strings"
)

type Background struct {
	Name  string
	Title string
	// CSS is the background descriptor persisted as customBackground.
	CSS string
}

//nolint:gochecknoglobals // Immutable palette.
var Backgrounds = []Background{
	{
		Name:  "white-black",
		Title: "White & black",
		CSS:   "linear-gradient(-11deg, #1c1c1cf2 37%, #2c2c2eed 76%)",
	},
	{
		Name:  "black-blue",
		Title: "Black & blue",
		CSS: "linear-gradient(90deg, rgba(2, 0, 36, 1) 0%, rgba(9, 9, 121, 1) 35%, " +
			"rgba(0, 212, 255, 1) 100%)",
	},
	{
		Name:  "red-pink",
		Title: "Red & pink",
		CSS: "linear-gradient(90deg, rgba(131, 58, 180, 1) 0%, rgba(253, 29, 29, 1) 50%, " +
			"rgba(252, 176, 69, 1) 100%)",
	},
	{
		Name:  "black-red",
		Title: "Black & red",
		CSS:   "linear-gradient(-11deg, #9a0f0ff2 40%, #121213ed 62%)",
	},
	{
		Name:  "yellow-green",
		Title: "Yellow & green",
		CSS:   "linear-gradient(to left, rgb(16, 193, 16), rgb(214, 228, 5))",
	},
}

func Find(name string) (Background, bool) {
	name = strings.TrimSpace(name)

	for _, bg := range Backgrounds {
		if bg.Name == name {
			return bg, true
		}
	}

	return Background{}, false
}

// Describe names a stored CSS descriptor, or returns it verbatim when it is
// not part of the palette.
func Describe(css string) string {
	for _, bg := range Backgrounds {
		if bg.CSS == css {
			return bg.Title
		}
	}

	return css
}

type RGB struct {
	R, G, B uint8
}

var (
	hexColorRe = regexp.MustCompile(`#([0-9a-fA-F]{8}|[0-9a-fA-F]{6}|[0-9a-fA-F]{3})\b`)
	rgbColorRe = regexp.MustCompile(`rgba?\(\s*(\d{1,3})\s*,\s*(\d{1,3})\s*,\s*(\d{1,3})`)
)

// PrimaryColor returns the first colour stop of a CSS background.
func PrimaryColor(css string) (RGB, bool) {
	hexLoc := hexColorRe.FindStringSubmatchIndex(css)
	rgbLoc := rgbColorRe.FindStringSubmatchIndex(css)

	switch {
	case hexLoc != nil && (rgbLoc == nil || hexLoc[0] < rgbLoc[0]):
		return parseHex(css[hexLoc[2]:hexLoc[3]])
	case rgbLoc != nil:
		return parseRGB(
			css[rgbLoc[2]:rgbLoc[3]],
			css[rgbLoc[4]:rgbLoc[5]],
			css[rgbLoc[6]:rgbLoc[7]],
		)
	default:
		return RGB{}, false
	}
}

func parseHex(digits string) (RGB, bool) {
	if len(digits) == 3 {
		digits = string([]byte{digits[0], digits[0], digits[1], digits[1], digits[2], digits[2]})
	}

	v, err := strconv.ParseUint(digits[:6], 16, 32)
	if err != nil {
		return RGB{}, false
	}

	return RGB{R: uint8(v >> 16), G: uint8(v >> 8), B: uint8(v)}, true //nolint:gosec // Masked by width.
}

func parseRGB(r, g, b string) (RGB, bool) {
	var out [3]uint8

	for i, s := range []string{r, g, b} {
		v, err := strconv.ParseUint(s, 10, 8)
		if err != nil {
			return RGB{}, false
		}
		out[i] = uint8(v)
	}

	return RGB{R: out[0], G: out[1], B: out[2]}, true
}
