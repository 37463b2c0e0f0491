package tui

import (
	"os"
	"strings"
	"sync"
)

// Terminal apps can't change the user's font, but we can choose between
// Unicode and ASCII glyph sets for the outline affordances (twisties,
// bullets, drop indicators). Useful on terminals that render some glyphs
// poorly.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference() {
	v := strings.ToLower(strings.TrimSpace(os.Getenv("MIRADOR_TUI_GLYPHS")))
	switch v {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	default:
		// Unknown value: ignore.
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	defer glyphsMu.RUnlock()
	return currentGlyphs
}

func glyphTwistyOpen() string {
	if glyphs() == glyphSetASCII {
		return "v "
	}
	return "▾ "
}

func glyphTwistyClosed() string {
	if glyphs() == glyphSetASCII {
		return "> "
	}
	return "▸ "
}

func glyphTwistyLeaf() string { return "  " }

func glyphBullet() string {
	if glyphs() == glyphSetASCII {
		return "* "
	}
	return "• "
}

// Mirror edges get a hollow bullet so shared content is visible at a glance.
func glyphBulletMirror() string {
	if glyphs() == glyphSetASCII {
		return "o "
	}
	return "◦ "
}

func glyphDropRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}

func glyphDropChild() string {
	if glyphs() == glyphSetASCII {
		return ">"
	}
	return "▸"
}
