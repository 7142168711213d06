package tui

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/gdamore/tcell/v2"
	"github.com/rivo/tview"

	"github.com/aschepis/backscratcher/chessinsight/llm"
	"github.com/aschepis/backscratcher/chessinsight/settings"
	"github.com/aschepis/backscratcher/chessinsight/ui"
)

const settingsTimeout = 30 * time.Second

// showSettings displays the provider, model and API key form
func (a *App) showSettings() {
	if a.settings == nil {
		a.setStatus("Settings are unavailable: no settings database is open.")
		return
	}
	if name, _ := a.pages.GetFrontPage(); name != "main" {
		return
	}

	ctx, cancel := context.WithTimeout(a.baseCtx, 5*time.Second)
	sel, err := a.settings.Current(ctx)
	cancel()
	if err != nil {
		a.showModal(fmt.Sprintf("Error loading settings:\n%v", err), nil)
		return
	}

	providers := llm.Providers()
	providerIndex := 0
	for i, id := range providers {
		if id == sel.Provider {
			providerIndex = i
		}
	}

	form := tview.NewForm()
	form.SetBorder(true).SetTitle("Settings (Tab: next field, Esc: back)")

	modelField := tview.NewInputField().
		SetLabel("Model").
		SetText(sel.Model).
		SetFieldWidth(40)
	modelHelp := tview.NewTextView().SetDynamicColors(true)

	updateModelHelp := func(provider string) {
		models := llm.Models(provider)
		if len(models) == 0 {
			modelHelp.SetText(a.theme.MutedTag + "Any model installed on the server.[-]")
			return
		}
		text := a.theme.MutedTag + "Available models:[-]\n"
		for _, m := range models {
			text += fmt.Sprintf("  %s  %s\n", m.Value, tview.Escape(m.Label))
		}
		modelHelp.SetText(text)
	}

	form.AddDropDown("Provider", providers, providerIndex, func(option string, _ int) {
		if option != sel.Provider {
			if pc, err := llm.DefaultProviderConfig(option); err == nil {
				modelField.SetText(pc.Model)
			}
		}
		updateModelHelp(option)
	})
	form.AddFormItem(modelField)
	form.AddPasswordField("API Key", sel.APIKey, 40, '*', nil)

	closeSettings := func() {
		a.pages.RemovePage("settings")
		a.app.SetFocus(a.input)
	}

	form.AddButton("Save", func() {
		_, provider := form.GetFormItemByLabel("Provider").(*tview.DropDown).GetCurrentOption()
		key := form.GetFormItemByLabel("API Key").(*tview.InputField).GetText()
		next := ui.Selection{Provider: provider, Model: modelField.GetText(), APIKey: key}

		a.setStatus("Validating settings...")
		go a.saveSettings(next, closeSettings)
	})
	form.AddButton("Cancel", closeSettings)

	updateModelHelp(sel.Provider)

	layout := tview.NewFlex().SetDirection(tview.FlexColumn).
		AddItem(form, 0, 2, true).
		AddItem(modelHelp, 0, 1, false)
	layout.SetInputCapture(func(ev *tcell.EventKey) *tcell.EventKey {
		if ev.Key() == tcell.KeyEsc {
			closeSettings()
			return nil
		}
		return ev
	})

	a.pages.AddPage("settings", layout, true, true)
	a.app.SetFocus(form)
}

// saveSettings validates and stores the selection in the background
func (a *App) saveSettings(sel ui.Selection, onSaved func()) {
	ctx, cancel := context.WithTimeout(a.baseCtx, settingsTimeout)
	defer cancel()

	provider, credential, err := a.settings.Save(ctx, sel)

	a.app.QueueUpdateDraw(func() {
		if err != nil {
			msg := fmt.Sprintf("Error saving settings:\n%v", err)
			if errors.Is(err, settings.ErrInvalidKey) {
				msg = "Invalid API key. The provider rejected the key."
			}
			a.setStatus("Settings not saved.")
			a.showModal(msg, nil)
			return
		}
		a.service.UseProvider(provider, credential)
		a.updateHeader()
		a.setStatus("Settings saved.")
		a.showModal("Settings saved.\n\nPress Ctrl-R to re-run the analysis with the new provider.", onSaved)
	})
}

func (a *App) showModal(text string, onDone func()) {
	modal := tview.NewModal().
		SetText(text).
		AddButtons([]string{"OK"}).
		SetDoneFunc(func(int, string) {
			a.pages.RemovePage("settings_modal")
			if onDone != nil {
				onDone()
			}
		})
	a.pages.AddPage("settings_modal", modal, true, true)
}
