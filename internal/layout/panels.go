// Package layout tracks which of the two panels is shown on narrow screens.
// State is kept as class sets so a panel can never be hidden and active at
// the same time.
package layout

import "sort"

// Breakpoint is the width in pixels from which both panels are shown
const Breakpoint = 900

// DefaultCellWidth is the assumed width of one terminal column in pixels
const DefaultCellWidth = 8

// Panel names one of the two panels
type Panel int

const (
	Library Panel = iota
	Player
)

func (p Panel) String() string {
	if p == Library {
		return "library"
	}
	return "player"
}

// Class names
const (
	LibraryHidden = "library-hidden"
	LibraryActive = "library-active"
	PlayerHidden  = "player-hidden"
	PlayerActive  = "player-active"
)

func hiddenClass(p Panel) string {
	if p == Library {
		return LibraryHidden
	}
	return PlayerHidden
}

func activeClass(p Panel) string {
	if p == Library {
		return LibraryActive
	}
	return PlayerActive
}

type classList map[string]struct{}

func (c classList) add(names ...string) {
	for _, n := range names {
		c[n] = struct{}{}
	}
}

func (c classList) remove(names ...string) {
	for _, n := range names {
		delete(c, n)
	}
}

func (c classList) has(name string) bool {
	_, ok := c[name]
	return ok
}

// Panels holds the class sets of the library and player panels. Widths are
// in terminal columns and converted with the cell width.
type Panels struct {
	breakpoint int
	cellWidth  int
	mobile     bool
	classes    [2]classList
}

// NewPanels creates the panel state. Non-positive arguments fall back to
// the defaults.
func NewPanels(breakpoint, cellWidth int) *Panels {
	if breakpoint <= 0 {
		breakpoint = Breakpoint
	}
	if cellWidth <= 0 {
		cellWidth = DefaultCellWidth
	}
	return &Panels{
		breakpoint: breakpoint,
		cellWidth:  cellWidth,
		classes:    [2]classList{{}, {}},
	}
}

func (p *Panels) below(columns int) bool {
	return columns*p.cellWidth < p.breakpoint
}

// Init applies the initial state for a screen of the given width
func (p *Panels) Init(columns int) {
	p.mobile = p.below(columns)
	if p.mobile {
		p.classes[Player].add(PlayerHidden)
	}
}

// OpenPlayer switches to the player panel. Wide screens are left as they are.
func (p *Panels) OpenPlayer(columns int) {
	if !p.below(columns) {
		return
	}
	p.classes[Library].add(LibraryHidden)
	p.classes[Library].remove(LibraryActive)
	p.classes[Player].remove(PlayerHidden)
	p.classes[Player].add(PlayerActive)
}

// Back returns from the player panel to the library
func (p *Panels) Back() {
	p.classes[Player].add(PlayerHidden)
	p.classes[Player].remove(PlayerActive)
	p.classes[Library].remove(LibraryHidden)
	p.classes[Library].add(LibraryActive)
}

// Resize strips the narrow-screen classes on wide screens and restores the
// library view otherwise.
func (p *Panels) Resize(columns int) {
	p.mobile = p.below(columns)
	if !p.mobile {
		p.classes[Library].remove(LibraryHidden, LibraryActive)
		p.classes[Player].remove(PlayerHidden, PlayerActive)
		return
	}
	p.classes[Library].add(LibraryActive)
	p.classes[Library].remove(LibraryHidden)
	p.classes[Player].add(PlayerHidden)
	p.classes[Player].remove(PlayerActive)
}

// Visible reports whether panel is shown
func (p *Panels) Visible(panel Panel) bool {
	return !p.classes[panel].has(hiddenClass(panel))
}

// Active reports whether panel carries its active class
func (p *Panels) Active(panel Panel) bool {
	return p.classes[panel].has(activeClass(panel))
}

// IsMobile reports whether the last known width was below the breakpoint
func (p *Panels) IsMobile() bool {
	return p.mobile
}

// Classes returns the sorted class names of panel
func (p *Panels) Classes(panel Panel) []string {
	names := make([]string, 0, len(p.classes[panel]))
	for n := range p.classes[panel] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}
