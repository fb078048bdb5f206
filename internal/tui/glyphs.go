package tui

import (
	"strings"
	"sync"
)

// Some fonts render braille and arrows badly, so every affordance has an ASCII twin.

type glyphSet int

const (
	glyphSetUnicode glyphSet = iota
	glyphSetASCII
)

var (
	glyphsMu      sync.RWMutex
	currentGlyphs = glyphSetUnicode
)

func applyGlyphPreference(v string) {
	switch strings.ToLower(strings.TrimSpace(v)) {
	case "", "unicode", "utf8":
		setGlyphs(glyphSetUnicode)
	case "ascii":
		setGlyphs(glyphSetASCII)
	}
}

func setGlyphs(gs glyphSet) {
	glyphsMu.Lock()
	currentGlyphs = gs
	glyphsMu.Unlock()
}

func glyphs() glyphSet {
	glyphsMu.RLock()
	gs := currentGlyphs
	glyphsMu.RUnlock()
	return gs
}

func glyphDragHandle() string {
	if glyphs() == glyphSetASCII {
		return "::"
	}
	return "⠿"
}

// glyphGrabbed marks the row being dragged.
func glyphGrabbed() string {
	if glyphs() == glyphSetASCII {
		return "=>"
	}
	return "▶"
}

// glyphDropTarget marks the row the grabbed task would land on.
func glyphDropTarget() string {
	if glyphs() == glyphSetASCII {
		return "->"
	}
	return "→"
}

func glyphHRule() string {
	if glyphs() == glyphSetASCII {
		return "-"
	}
	return "─"
}

func glyphCheck() string {
	if glyphs() == glyphSetASCII {
		return "+"
	}
	return "✓"
}

func glyphSwitch(on bool) string {
	if on {
		return "[x]"
	}
	return "[ ]"
}
