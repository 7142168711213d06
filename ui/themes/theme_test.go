package themes

import (
	"testing"

	"github.com/rivo/tview"
)

func TestGet(t *testing.T) {
	def, err := Get("")
	if err != nil {
		t.Fatalf("Get default failed: %v", err)
	}
	solarized, _ := Get(string(ThemeSolarized))
	if def != solarized {
		t.Error("Expected empty name to select the default theme")
	}
	if _, err := Get("neon"); err == nil {
		t.Error("Expected error for unknown theme")
	}
}

func TestNames(t *testing.T) {
	names := Names()
	if len(names) != 4 || names[0] != "gruvbox" {
		t.Errorf("Unexpected names %v", names)
	}
}

func TestApply(t *testing.T) {
	saved := tview.Styles
	t.Cleanup(func() { tview.Styles = saved })

	walnut, _ := Get(string(ThemeWalnut))
	walnut.Apply()
	if tview.Styles.BorderColor != walnut.Border || tview.Styles.PrimaryTextColor != walnut.Text {
		t.Error("Expected theme colors in tview styles")
	}
}
