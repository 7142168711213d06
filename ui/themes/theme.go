// Package themes holds the terminal color palettes.
package themes

import (
	"fmt"
	"sort"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"
)

type ThemeName string

const (
	ThemeSolarized ThemeName = "solarized"
	ThemeGruvbox   ThemeName = "gruvbox"
	ThemeWalnut    ThemeName = "walnut"
	ThemeTerminal  ThemeName = "terminal"
)

// DefaultTheme is used when no theme is configured.
const DefaultTheme = ThemeSolarized

// Theme represents a color theme for tview applications
type Theme struct {
	Background   tcell.Color
	Contrast     tcell.Color
	MoreContrast tcell.Color
	Border       tcell.Color
	Title        tcell.Color
	Graphics     tcell.Color
	Text         tcell.Color
	Secondary    tcell.Color
	Tertiary     tcell.Color
	Inverse      tcell.Color

	// Transcript colors, in tview color tag syntax.
	UserTag      string
	AssistantTag string
	ErrorTag     string
	MutedTag     string
}

var themes = map[ThemeName]Theme{
	ThemeSolarized: {
		Background:   tcell.NewHexColor(0x002b36),
		Contrast:     tcell.NewHexColor(0x073642),
		MoreContrast: tcell.NewHexColor(0x586e75),
		Border:       tcell.NewHexColor(0x839496),
		Title:        tcell.NewHexColor(0x93a1a1),
		Graphics:     tcell.NewHexColor(0x839496),
		Text:         tcell.NewHexColor(0x839496),
		Secondary:    tcell.NewHexColor(0xb58900),
		Tertiary:     tcell.NewHexColor(0x2aa198),
		Inverse:      tcell.NewHexColor(0xfdf6e3),
		UserTag:      "[#2aa198]",
		AssistantTag: "[#859900]",
		ErrorTag:     "[#dc322f]",
		MutedTag:     "[#586e75]",
	},
	ThemeGruvbox: {
		Background:   tcell.NewHexColor(0x282828),
		Contrast:     tcell.NewHexColor(0x3c3836),
		MoreContrast: tcell.NewHexColor(0x504945),
		Border:       tcell.NewHexColor(0x928374),
		Title:        tcell.NewHexColor(0xfbf1c7),
		Graphics:     tcell.NewHexColor(0x928374),
		Text:         tcell.NewHexColor(0xebdbb2),
		Secondary:    tcell.NewHexColor(0xd79921),
		Tertiary:     tcell.NewHexColor(0x689d6a),
		Inverse:      tcell.NewHexColor(0xfbf1c7),
		UserTag:      "[#83a598]",
		AssistantTag: "[#b8bb26]",
		ErrorTag:     "[#fb4934]",
		MutedTag:     "[#928374]",
	},
	// Board colors: light and dark squares of a wooden set.
	ThemeWalnut: {
		Background:   tcell.NewHexColor(0x2b1d14),
		Contrast:     tcell.NewHexColor(0x3d2a1d),
		MoreContrast: tcell.NewHexColor(0x5c4030),
		Border:       tcell.NewHexColor(0xb58863),
		Title:        tcell.NewHexColor(0xf0d9b5),
		Graphics:     tcell.NewHexColor(0xb58863),
		Text:         tcell.NewHexColor(0xf0d9b5),
		Secondary:    tcell.NewHexColor(0xe8b04b),
		Tertiary:     tcell.NewHexColor(0x9fc27c),
		Inverse:      tcell.NewHexColor(0x2b1d14),
		UserTag:      "[#e8b04b]",
		AssistantTag: "[#9fc27c]",
		ErrorTag:     "[#e06c5a]",
		MutedTag:     "[#8a6d57]",
	},
	ThemeTerminal: {
		Background:   tcell.ColorDefault,
		Contrast:     tcell.ColorBlue,
		MoreContrast: tcell.ColorGreen,
		Border:       tcell.ColorWhite,
		Title:        tcell.ColorWhite,
		Graphics:     tcell.ColorWhite,
		Text:         tcell.ColorWhite,
		Secondary:    tcell.ColorYellow,
		Tertiary:     tcell.ColorGreen,
		Inverse:      tcell.ColorBlack,
		UserTag:      "[cyan]",
		AssistantTag: "[green]",
		ErrorTag:     "[red]",
		MutedTag:     "[gray]",
	},
}

// Names lists the available themes in alphabetical order.
func Names() []string {
	names := make([]string, 0, len(themes))
	for name := range themes {
		names = append(names, string(name))
	}
	sort.Strings(names)
	return names
}

// Get returns the named theme. An empty name selects DefaultTheme.
func Get(name string) (Theme, error) {
	if name == "" {
		name = string(DefaultTheme)
	}
	t, ok := themes[ThemeName(name)]
	if !ok {
		return Theme{}, fmt.Errorf("invalid theme name: %s", name)
	}
	return t, nil
}

// Apply sets the theme as tview's global style.
func (t Theme) Apply() {
	tview.Styles.PrimitiveBackgroundColor = t.Background
	tview.Styles.ContrastBackgroundColor = t.Contrast
	tview.Styles.MoreContrastBackgroundColor = t.MoreContrast
	tview.Styles.BorderColor = t.Border
	tview.Styles.TitleColor = t.Title
	tview.Styles.GraphicsColor = t.Graphics
	tview.Styles.PrimaryTextColor = t.Text
	tview.Styles.SecondaryTextColor = t.Secondary
	tview.Styles.TertiaryTextColor = t.Tertiary
	tview.Styles.InverseTextColor = t.Inverse
	tview.Styles.ContrastSecondaryTextColor = t.Text
}
