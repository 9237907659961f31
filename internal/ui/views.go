package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssh-vom/anime-browser/internal/browse"
	"github.com/ssh-vom/anime-browser/internal/cover"
	"github.com/ssh-vom/anime-browser/internal/providers/anime"
	"github.com/ssh-vom/anime-browser/internal/render"
)

func (model model) View() string {
	var view string

	switch model.state {
	case stateSettings:
		view = model.settingsView()
	case stateHelp:
		view = helpView()
	default:
		view = model.browsingView()
	}

	if model.verbose {
		view = lipgloss.JoinVertical(lipgloss.Left, view, model.logView())
	}

	return view
}

func (model model) browsingView() string {
	if modal := model.browser.Modal(); modal.Open {
		return lipgloss.JoinVertical(lipgloss.Left,
			model.tabBar(),
			model.modalView(),
		)
	}

	lines := []string{model.tabBar(), ""}

	switch model.browser.Active() {
	case browse.ViewHome:
		lines = append(lines, model.listPanelView(browse.TargetHome, model.homeList, render.NoAnimeFound, render.HomeError))
	case browse.ViewTopTen:
		lines = append(lines, model.periodBar(), model.listPanelView(browse.TargetTopTen, model.topTenList, render.NoDataAvailable, render.TopTenError))
	case browse.ViewSearch:
		lines = append(lines, model.searchView())
	case browse.ViewRandom:
		lines = append(lines, model.randomView())
	}

	if model.errorMessage != "" {
		lines = append(lines, warningStyle.Render(model.errorMessage))
	}
	if model.infoMessage != "" {
		lines = append(lines, secondaryStyle.Render(model.infoMessage))
	}
	lines = append(lines, secondaryStyle.Render(model.hints()))

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (model model) tabBar() string {
	tabs := make([]string, 0, len(browse.Views))
	for index, view := range browse.Views {
		label := fmt.Sprintf("%d %s", index+1, view.Title())
		if view == model.browser.Active() {
			tabs = append(tabs, activeTabStyle.Render(label))
		} else {
			tabs = append(tabs, inactiveTabStyle.Render(label))
		}
	}
	return lipgloss.JoinHorizontal(lipgloss.Top, titleStyle.Render("Anime Browser")+"  ", lipgloss.JoinHorizontal(lipgloss.Top, tabs...))
}

func (model model) periodBar() string {
	parts := make([]string, 0, len(anime.Periods))
	for _, period := range anime.Periods {
		marker := "( )"
		style := blurStyle
		if period == model.browser.Period() {
			marker = "(•)"
			style = focusedStyle
		}
		parts = append(parts, style.Render(marker+" "+period.Label()))
	}
	return strings.Join(parts, "   ")
}

func (model model) listPanelView(target browse.Target, content list.Model, emptyText string, errText func(error) string) string {
	panel := model.browser.Panel(target)
	switch {
	case panel.Loading:
		return fmt.Sprintf("%s Loading...", model.spinner.View())
	case panel.Err != nil:
		return warningStyle.Width(max(model.width-4, 20)).Render(errText(panel.Err))
	case !panel.Loaded:
		return ""
	case len(panel.Items) == 0:
		return secondaryStyle.Render(emptyText)
	}
	return content.View()
}

func (model model) searchView() string {
	lines := []string{model.searchInput.View()}

	suggestions := model.session.Suggestions()
	for index, suggestion := range suggestions {
		if index >= maxSuggestionRows {
			break
		}
		if index == model.suggestionIndex {
			lines = append(lines, selectedStyle.Render("› "+suggestion.Name))
		} else {
			lines = append(lines, secondaryStyle.Render("  "+suggestion.Name))
		}
	}
	lines = append(lines, "")

	switch {
	case model.session.Searching():
		lines = append(lines, fmt.Sprintf("%s Searching...", model.spinner.View()))
	case model.session.Err() != nil:
		lines = append(lines, warningStyle.Width(max(model.width-4, 20)).Render(render.SearchError(model.session.Err())))
	case model.session.Query() != "" && len(model.session.Results()) == 0:
		lines = append(lines, secondaryStyle.Render(render.NoResultsFound))
	case len(model.session.Results()) > 0:
		lines = append(lines, model.resultsList.View())
	}

	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

func (model model) randomView() string {
	panel := model.browser.Panel(browse.TargetRandom)
	switch {
	case panel.Loading:
		return fmt.Sprintf("%s Loading...", model.spinner.View())
	case panel.Err != nil:
		return warningStyle.Width(max(model.width-4, 20)).Render(render.RandomError(panel.Err))
	case panel.Detail == nil:
		return secondaryStyle.Render("Press space to pick a random anime.")
	}
	return detailText(*panel.Detail, false, max(model.width-4, 20))
}

func (model model) modalView() string {
	width := modalWidth(model.width)
	body := model.detailView.View()
	if posterWidth := posterColumnWidth(model.width); posterWidth > 0 {
		body = lipgloss.JoinHorizontal(lipgloss.Top, model.posterView(posterWidth), body)
	}
	content := lipgloss.JoinVertical(lipgloss.Left,
		body,
		secondaryStyle.Render("↑/↓ scroll · esc close"),
	)
	box := modalStyle.Width(width - 2).Render(content)
	if model.width <= 0 || model.height <= 0 {
		return box
	}
	return lipgloss.Place(model.width, max(model.height-2, 0), lipgloss.Center, lipgloss.Center, box)
}

func (model model) posterView(width int) string {
	panel := lipgloss.NewStyle().Width(width).PaddingRight(2)
	poster := model.poster

	switch {
	case poster.image != nil:
		cols, rows := cover.RenderSize(width, poster.image.Width, poster.image.Height)
		if !model.supportsGraphics {
			return panel.Render(cover.RenderBlocks(*poster.image, cols, rows))
		}
		rendered, err := cover.RenderKitty(*poster.image, cols, rows)
		if err != nil {
			return panel.Render(warningStyle.Render(err.Error()))
		}
		return panel.Render(rendered + "\n" + cover.Placeholder(rows, cols))
	case poster.loading:
		cols, rows := cover.RenderSize(width, 0, 0)
		return panel.Render(secondaryStyle.Render("Loading poster...") + "\n" + cover.Placeholder(rows-1, cols))
	case poster.err != "":
		return panel.Render(warningStyle.Render("Poster unavailable."))
	default:
		return panel.Render(secondaryStyle.Render("No poster."))
	}
}

func (model model) hints() string {
	switch model.browser.Active() {
	case browse.ViewTopTen:
		return "t today · w week · m month · enter details · r reload · tab next view · q quit"
	case browse.ViewSearch:
		if model.searchFocus == focusInput {
			return "type to search · ↑/↓ suggestions · enter search · esc results · tab next view"
		}
		return "enter details · / edit query · tab next view · q quit"
	case browse.ViewRandom:
		return "space roll · enter full details · tab next view · q quit"
	default:
		return "enter details · r reload · 1-4 views · s settings · ? help · q quit"
	}
}

func (model model) logView() string {
	if len(model.logLines) == 0 {
		return secondaryStyle.Render("Logs: (no entries)")
	}

	return lipgloss.JoinVertical(lipgloss.Left,
		secondaryStyle.Render("Logs:"),
		strings.Join(model.logLines, "\n"),
	)
}

func helpView() string {
	return lipgloss.JoinVertical(lipgloss.Left,
		titleStyle.Render("Help"),
		"1-4 or tab       switch view (home, top 10, search, random)",
		"enter            show details of the selected anime",
		"r                reload the current view",
		"t / w / m        top 10 for today, this week, this month",
		"space            pick a random anime",
		"s                settings",
		"q                quit",
		"",
		secondaryStyle.Render("Press esc to go back"),
	)
}

// detailText is the terminal counterpart of the HTML detail block.
func detailText(detail anime.Detail, full bool, width int) string {
	lines := []string{panelTitleStyle.Render(render.TitleOf(detail.Summary)), ""}
	for _, field := range render.DetailFields(detail, full) {
		lines = append(lines, labelStyle.Render(field.Label+":")+" "+field.Value)
	}
	if detail.Description != "" {
		lines = append(lines, "", lipgloss.NewStyle().Width(width).Render(detail.Description))
	}
	if !full && detail.ID != "" {
		lines = append(lines, "", secondaryStyle.Render("Press enter to view full details"))
	}
	return lipgloss.JoinVertical(lipgloss.Left, lines...)
}

const maxSuggestionRows = 8

func listHeight(height int) int {
	if height <= 10 {
		return height
	}

	return height - 8
}

func (model model) searchListHeight() int {
	height := listHeight(model.height) - 3 - min(len(model.session.Suggestions()), maxSuggestionRows)
	return max(height, 3)
}

func modalWidth(totalWidth int) int {
	if totalWidth <= 0 {
		return 60
	}
	if totalWidth < 50 {
		return totalWidth
	}
	return min(totalWidth-6, 100)
}

// posterColumnWidth is the width of the poster beside the detail text, or
// zero when the dialog is too narrow to show one.
func posterColumnWidth(totalWidth int) int {
	if modalWidth(totalWidth) < 70 {
		return 0
	}
	return 26
}

func modalHeight(totalHeight int) int {
	if totalHeight <= 0 {
		return 20
	}
	return max(totalHeight-4, 6)
}
