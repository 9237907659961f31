package ui

import (
	"errors"
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssh-vom/anime-browser/internal/config"
)

type settingsModel struct {
	inputs    []textinput.Model
	focus     int
	errorText string
	infoText  string
}

func (model *model) updateSettings(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if ok {
		model.settings.infoText = ""
		switch key.String() {
		case "ctrl+c":
			return tea.Quit
		case "esc":
			model.state = model.returnState
			return nil
		case "tab", "shift+tab", "up", "down":
			model.settings.focus = updateSettingsFocus(key.String(), model.settings.focus, len(model.settings.inputs))
			model.settings = applySettingsFocus(model.settings)
			return nil
		case "enter":
			return model.saveSettings()
		}
	}

	var cmd tea.Cmd
	current := &model.settings.inputs[model.settings.focus]
	*current, cmd = current.Update(msg)
	return cmd
}

func (model *model) saveSettings() tea.Cmd {
	updated, err := buildConfigFromSettings(model.config, model.settings.inputs)
	if err != nil {
		model.settings.errorText = err.Error()
		return nil
	}

	if err := config.SaveConfig(updated); err != nil {
		model.settings.errorText = err.Error()
		return nil
	}

	model.config = updated
	if model.buildDeps != nil {
		deps, err := model.buildDeps(updated)
		if err != nil {
			model.settings.errorText = err.Error()
			return nil
		}
		model.provider = deps.Provider
		model.covers = deps.Covers
	}

	model.settings.errorText = ""
	model.errorMessage = ""
	model.infoMessage = "Settings saved."
	model.state = model.returnState
	model.logger.Info("Settings saved", "api", updated.APIURL, "listen", updated.ListenAddr())

	// Content loaded from the previous API is stale now.
	model.session.Reset()
	model.searchInput.SetValue("")
	model.suggestionIndex = -1
	model.resultsList = newAnimeList("Results", nil, model.width-4, model.searchListHeight(), false)
	if req, ok := model.browser.Reload(); ok {
		return model.start(req)
	}
	return nil
}

func (model model) settingsView() string {
	lines := []string{
		titleStyle.Render("Settings"),
		"Edit anime API settings.",
	}

	for _, input := range model.settings.inputs {
		lines = append(lines, input.View())
	}
	if model.settings.errorText != "" {
		lines = append(lines, warningStyle.Render(model.settings.errorText))
	}
	if model.settings.infoText != "" {
		lines = append(lines, secondaryStyle.Render(model.settings.infoText))
	}
	lines = append(lines, secondaryStyle.Render("Enter to save · Esc to cancel"))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func updateSettingsFocus(direction string, focus, total int) int {
	if direction == "tab" || direction == "down" {
		focus++
	} else {
		focus--
	}
	if focus >= total {
		focus = 0
	} else if focus < 0 {
		focus = total - 1
	}
	return focus
}

func applySettingsFocus(settings settingsModel) settingsModel {
	for i := range settings.inputs {
		if i == settings.focus {
			settings.inputs[i].Focus()
			settings.inputs[i].PromptStyle = focusedStyle
			settings.inputs[i].TextStyle = focusedStyle
		} else {
			settings.inputs[i].Blur()
			settings.inputs[i].PromptStyle = blurStyle
			settings.inputs[i].TextStyle = blurStyle
		}
	}
	return settings
}

func newSettingsModel(cfg config.Config) settingsModel {
	apiInput := textinput.New()
	apiInput.Prompt = "API URL: "
	apiInput.Placeholder = config.DefaultAPIURL
	apiInput.SetValue(cfg.APIURL)
	apiInput.CharLimit = 200

	listenInput := textinput.New()
	listenInput.Prompt = "Listen address: "
	listenInput.Placeholder = config.DefaultListen
	listenInput.SetValue(cfg.Listen)
	listenInput.CharLimit = 60

	settings := settingsModel{inputs: []textinput.Model{apiInput, listenInput}, focus: 0}
	return applySettingsFocus(settings)
}

func buildConfigFromSettings(cfg config.Config, inputs []textinput.Model) (config.Config, error) {
	apiValue := strings.TrimSpace(inputs[0].Value())
	listenValue := strings.TrimSpace(inputs[1].Value())

	cfg.APIURL = apiValue
	cfg.Listen = listenValue
	if err := cfg.Validate(); err != nil {
		return cfg, err
	}
	if listenValue != "" && !strings.Contains(listenValue, ":") {
		return cfg, errors.New("listen address must include a port")
	}

	return cfg, nil
}
