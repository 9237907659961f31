package ui

import (
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/list"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/log"

	"github.com/ssh-vom/anime-browser/internal/browse"
	"github.com/ssh-vom/anime-browser/internal/config"
	"github.com/ssh-vom/anime-browser/internal/cover"
	"github.com/ssh-vom/anime-browser/internal/providers/anime"
	"github.com/ssh-vom/anime-browser/internal/render"
	"github.com/ssh-vom/anime-browser/internal/search"
)

type appState int

const (
	stateBrowsing appState = iota
	stateSettings
	stateHelp
)

type searchFocus int

const (
	focusInput searchFocus = iota
	focusResults
)

type animeItem struct {
	summary anime.Summary
	card    render.Card
	rank    int
}

func (item animeItem) Title() string {
	if item.rank > 0 {
		return "#" + strconv.Itoa(item.rank) + " " + item.card.Title
	}
	return item.card.Title
}
func (item animeItem) Description() string {
	return item.card.Type + " · EP: " + item.card.Episodes
}
func (item animeItem) FilterValue() string { return item.card.Title }

type loadedMsg struct {
	req    browse.Request
	result browse.Result
}

type suggestDueMsg struct {
	token search.Token
}

type suggestionsMsg struct {
	token       search.Token
	query       string
	suggestions []anime.Suggestion
	err         error
}

type searchResultsMsg struct {
	token   search.Token
	query   string
	results []anime.Summary
	err     error
}

type coverLoadedMsg struct {
	url   string
	image cover.Image
	err   error
}

type logMsg string

// posterState tracks the poster of the detail dialog.
type posterState struct {
	url     string
	image   *cover.Image
	loading bool
	err     string
}

type model struct {
	state appState

	config    config.Config
	provider  anime.Provider
	covers    *cover.Fetcher
	buildDeps BuildDependencies
	logger    *log.Logger

	browser   *browse.Controller
	session   *search.Session
	startView browse.View

	homeList        list.Model
	topTenList      list.Model
	resultsList     list.Model
	searchInput     textinput.Model
	searchFocus     searchFocus
	suggestionIndex int
	detailView      viewport.Model

	poster           posterState
	supportsGraphics bool

	spinner spinner.Model

	settings     settingsModel
	returnState  appState
	errorMessage string
	infoMessage  string

	width  int
	height int

	logChannel chan logMsg
	logLines   []string
	verbose    bool
}

type Dependencies struct {
	Provider anime.Provider
	Covers   *cover.Fetcher
}

type BuildDependencies func(cfg config.Config) (Dependencies, error)

func NewModel(cfg config.Config, deps Dependencies, buildDeps BuildDependencies, logger *log.Logger, startupErr error) model {
	spinnerModel := spinner.New()
	spinnerModel.Spinner = spinner.Dot

	if logger == nil {
		logger = log.Default()
	}

	model := model{
		state:            stateBrowsing,
		config:           cfg,
		provider:         deps.Provider,
		covers:           deps.Covers,
		buildDeps:        buildDeps,
		logger:           logger,
		browser:          browse.NewController(),
		session:          &search.Session{},
		startView:        browse.ViewHome,
		homeList:         newAnimeList("Trending", nil, 0, 0, false),
		topTenList:       newAnimeList("Top 10 · Today", nil, 0, 0, true),
		resultsList:      newAnimeList("Results", nil, 0, 0, false),
		searchInput:      newSearchInput(),
		suggestionIndex:  -1,
		detailView:       viewport.New(0, 0),
		supportsGraphics: cover.SupportsKittyGraphics(),
		spinner:          spinnerModel,
		verbose:          cfg.Verbose,
	}

	if cfg.StartView != "" {
		if view, ok := browse.ParseView(cfg.StartView); ok {
			model.startView = view
		} else {
			logger.Warn("Unknown start view", "view", cfg.StartView)
		}
	}
	if model.startView == browse.ViewSearch {
		model.searchInput.Focus()
	}

	if startupErr != nil {
		model.errorMessage = startupErr.Error()
	}

	if model.verbose {
		model.logChannel = make(chan logMsg, 200)
		logger.SetOutput(logWriter{channel: model.logChannel})
		logger.SetLevel(log.DebugLevel)
	}

	return model
}

func (model model) Init() tea.Cmd {
	commands := []tea.Cmd{model.spinner.Tick}
	if req, ok := model.browser.Activate(model.startView); ok {
		commands = append(commands, loadCmd(model.provider, req))
	}
	if model.verbose {
		commands = append(commands, listenLogCmd(model.logChannel))
	}
	return tea.Batch(commands...)
}

func (model model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		model.width = msg.Width
		model.height = msg.Height
		model.resize()
		return model, nil
	case loadedMsg:
		cmd := model.applyLoaded(msg)
		return model, cmd
	case suggestDueMsg:
		query, ok := model.session.Due(msg.token)
		if !ok {
			return model, nil
		}
		return model, suggestCmd(model.provider, msg.token, query)
	case suggestionsMsg:
		if msg.err != nil {
			model.logger.Warn("Suggestions error", "query", msg.query, "error", msg.err)
		}
		if model.session.ApplySuggestions(msg.token, msg.suggestions, msg.err) {
			model.suggestionIndex = -1
		}
		return model, nil
	case searchResultsMsg:
		if !model.session.ApplyResults(msg.token, msg.results, msg.err) {
			model.logger.Debug("Dropped stale search results", "query", msg.query)
			return model, nil
		}
		model.resultsList = newAnimeList("Results for "+msg.query, msg.results, model.width-4, model.searchListHeight(), false)
		if msg.err == nil && len(msg.results) > 0 {
			model.searchFocus = focusResults
			model.searchInput.Blur()
		}
		return model, nil
	case coverLoadedMsg:
		model.applyCover(msg)
		return model, nil
	case spinner.TickMsg:
		if !model.loading() {
			return model, nil
		}
		var cmd tea.Cmd
		model.spinner, cmd = model.spinner.Update(msg)
		return model, cmd
	case logMsg:
		if model.verbose {
			model.logLines = append(model.logLines, string(msg))
			if len(model.logLines) > 6 {
				model.logLines = model.logLines[len(model.logLines)-6:]
			}
			return model, listenLogCmd(model.logChannel)
		}
		return model, nil
	}

	return model.handleStateUpdate(msg)
}

func (model *model) handleStateUpdate(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd
	switch model.state {
	case stateSettings:
		cmd = model.updateSettings(msg)
	case stateHelp:
		cmd = model.updateHelp(msg)
	default:
		cmd = model.updateBrowsing(msg)
	}
	return *model, cmd
}

func (model *model) applyLoaded(msg loadedMsg) tea.Cmd {
	if !model.browser.Complete(msg.req, msg.result) {
		model.logger.Debug("Dropped stale response", "target", msg.req.Target, "seq", msg.req.Seq)
		return nil
	}
	if msg.result.Err != nil {
		model.logger.Error("Load failed", "target", msg.req.Target, "error", msg.result.Err)
	}

	switch msg.req.Target {
	case browse.TargetHome:
		model.homeList = newAnimeList("Trending", msg.result.Items, model.width-4, listHeight(model.height), false)
	case browse.TargetTopTen:
		model.topTenList = newAnimeList("Top 10 · "+msg.req.Period.Label(), msg.result.Items, model.width-4, listHeight(model.height), true)
	case browse.TargetDetails:
		model.refreshDetailView()
		model.detailView.GotoTop()
		if detail := msg.result.Detail; detail != nil && detail.Poster != "" && model.covers != nil {
			model.poster = posterState{url: detail.Poster, loading: true}
			return coverCmd(model.covers, detail.Poster)
		}
	}
	return nil
}

// applyCover keeps a fetched poster only while the dialog still shows the
// anime it was requested for.
func (model *model) applyCover(msg coverLoadedMsg) {
	if !model.browser.Modal().Open || model.poster.url != msg.url {
		model.logger.Debug("Dropped stale cover", "url", msg.url)
		return
	}
	model.poster.loading = false
	if msg.err != nil {
		model.logger.Warn("Cover failed", "url", msg.url, "error", msg.err)
		model.poster.err = msg.err.Error()
		return
	}
	image := msg.image
	model.poster.image = &image
}

// start issues the load for req along with a spinner tick.
func (model *model) start(req browse.Request) tea.Cmd {
	if req.Target == browse.TargetDetails {
		model.poster = posterState{}
		model.refreshDetailView()
	}
	return tea.Batch(loadCmd(model.provider, req), model.spinner.Tick)
}

func (model *model) loading() bool {
	if model.session.Searching() || model.browser.Modal().Loading {
		return true
	}
	for _, target := range []browse.Target{browse.TargetHome, browse.TargetTopTen, browse.TargetRandom} {
		if model.browser.Panel(target).Loading {
			return true
		}
	}
	return false
}

func (model *model) resize() {
	model.homeList.SetSize(model.width-4, listHeight(model.height))
	model.topTenList.SetSize(model.width-4, listHeight(model.height))
	model.resultsList.SetSize(model.width-4, model.searchListHeight())
	model.searchInput.Width = max(model.width-8, 10)
	model.detailView.Width = modalWidth(model.width) - 4 - posterColumnWidth(model.width)
	model.detailView.Height = max(modalHeight(model.height)-4, 3)
	model.refreshDetailView()
}

func (model *model) updateBrowsing(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)

	if model.browser.Modal().Open {
		if ok {
			switch key.String() {
			case "ctrl+c":
				return tea.Quit
			case "esc", "q", "backspace", "enter":
				model.browser.CloseDetails()
				model.poster = posterState{}
				return nil
			}
		}
		var cmd tea.Cmd
		model.detailView, cmd = model.detailView.Update(msg)
		return cmd
	}

	if !ok {
		return model.updateActiveList(msg)
	}

	typing := model.browser.Active() == browse.ViewSearch && model.searchFocus == focusInput

	switch key.String() {
	case "ctrl+c":
		return tea.Quit
	case "tab":
		return model.activate(nextView(model.browser.Active(), 1))
	case "shift+tab":
		return model.activate(nextView(model.browser.Active(), -1))
	}

	if !typing {
		switch key.String() {
		case "q":
			return tea.Quit
		case "1", "2", "3", "4":
			return model.activate(browse.Views[int(key.String()[0]-'1')])
		case "s":
			model.settings = newSettingsModel(model.config)
			model.returnState = stateBrowsing
			model.state = stateSettings
			return nil
		case "?":
			model.state = stateHelp
			return nil
		case "r":
			if req, ok := model.browser.Reload(); ok {
				return model.start(req)
			}
			return nil
		}
	}

	switch model.browser.Active() {
	case browse.ViewHome:
		return model.updateListView(&model.homeList, key)
	case browse.ViewTopTen:
		return model.updateTopTen(key)
	case browse.ViewSearch:
		return model.updateSearch(key)
	case browse.ViewRandom:
		return model.updateRandom(key)
	}
	return nil
}

func (model *model) activate(view browse.View) tea.Cmd {
	model.errorMessage = ""
	req, ok := model.browser.Activate(view)
	if view == browse.ViewSearch {
		model.searchFocus = focusInput
		return model.searchInput.Focus()
	}
	model.searchInput.Blur()
	if !ok {
		return nil
	}
	return model.start(req)
}

func (model *model) openSelected(selected list.Item) tea.Cmd {
	item, ok := selected.(animeItem)
	if !ok {
		return nil
	}
	req, ok := model.browser.OpenDetails(item.summary.ID)
	if !ok {
		model.errorMessage = "No details available for " + item.card.Title
		return nil
	}
	model.errorMessage = ""
	return model.start(req)
}

func (model *model) updateListView(target *list.Model, key tea.KeyMsg) tea.Cmd {
	if key.String() == "enter" {
		return model.openSelected(target.SelectedItem())
	}
	var cmd tea.Cmd
	*target, cmd = target.Update(key)
	return cmd
}

func (model *model) updateActiveList(msg tea.Msg) tea.Cmd {
	var cmd tea.Cmd
	switch model.browser.Active() {
	case browse.ViewHome:
		model.homeList, cmd = model.homeList.Update(msg)
	case browse.ViewTopTen:
		model.topTenList, cmd = model.topTenList.Update(msg)
	case browse.ViewSearch:
		if model.searchFocus == focusInput {
			model.searchInput, cmd = model.searchInput.Update(msg)
		} else {
			model.resultsList, cmd = model.resultsList.Update(msg)
		}
	}
	return cmd
}

func (model *model) updateTopTen(key tea.KeyMsg) tea.Cmd {
	period := anime.Period("")
	switch key.String() {
	case "t":
		period = anime.PeriodToday
	case "w":
		period = anime.PeriodWeek
	case "m":
		period = anime.PeriodMonth
	case "p":
		period = nextPeriod(model.browser.Period())
	}
	if period != "" {
		if req, ok := model.browser.SelectPeriod(period); ok {
			return model.start(req)
		}
		return nil
	}
	return model.updateListView(&model.topTenList, key)
}

func (model *model) updateRandom(key tea.KeyMsg) tea.Cmd {
	switch key.String() {
	case " ", "n":
		return model.start(model.browser.Roll())
	case "enter":
		panel := model.browser.Panel(browse.TargetRandom)
		if panel.Detail == nil {
			return model.start(model.browser.Roll())
		}
		if req, ok := model.browser.OpenDetails(panel.Detail.ID); ok {
			return model.start(req)
		}
	}
	return nil
}

func (model *model) updateSearch(key tea.KeyMsg) tea.Cmd {
	if model.searchFocus == focusResults {
		switch key.String() {
		case "/", "i", "esc":
			model.searchFocus = focusInput
			return model.searchInput.Focus()
		}
		return model.updateListView(&model.resultsList, key)
	}

	suggestions := model.session.Suggestions()
	switch key.String() {
	case "enter":
		value := ""
		if model.suggestionIndex >= 0 && model.suggestionIndex < len(suggestions) {
			value = suggestions[model.suggestionIndex].Name
		}
		return model.submitSearch(value)
	case "down":
		if len(suggestions) > 0 {
			model.suggestionIndex = min(model.suggestionIndex+1, len(suggestions)-1)
			return nil
		}
		if len(model.resultsList.Items()) > 0 {
			model.searchFocus = focusResults
			model.searchInput.Blur()
		}
		return nil
	case "up":
		if model.suggestionIndex >= 0 {
			model.suggestionIndex--
		}
		return nil
	case "esc":
		if model.suggestionIndex >= 0 {
			model.suggestionIndex = -1
			return nil
		}
		if len(model.resultsList.Items()) > 0 {
			model.searchFocus = focusResults
			model.searchInput.Blur()
		}
		return nil
	}

	before := model.searchInput.Value()
	var cmd tea.Cmd
	model.searchInput, cmd = model.searchInput.Update(key)
	if model.searchInput.Value() == before {
		return cmd
	}

	model.suggestionIndex = -1
	token, ok := model.session.Input(model.searchInput.Value())
	if !ok {
		return cmd
	}
	return tea.Batch(cmd, suggestDueCmd(token))
}

func (model *model) submitSearch(value string) tea.Cmd {
	token, query, ok := model.session.Submit(value)
	if !ok {
		return nil
	}
	model.suggestionIndex = -1
	model.searchInput.SetValue(query)
	model.searchInput.CursorEnd()
	model.resultsList = newAnimeList("Results for "+query, nil, model.width-4, model.searchListHeight(), false)
	model.logger.Info("Searching", "keyword", query)
	return tea.Batch(searchCmd(model.provider, token, query), model.spinner.Tick)
}

func (model *model) updateHelp(msg tea.Msg) tea.Cmd {
	key, ok := msg.(tea.KeyMsg)
	if !ok {
		return nil
	}
	switch key.String() {
	case "ctrl+c":
		return tea.Quit
	case "esc", "q", "?", "enter":
		model.state = stateBrowsing
	}
	return nil
}

func (model *model) refreshDetailView() {
	modal := model.browser.Modal()
	if !modal.Open {
		return
	}
	width := max(model.detailView.Width, 20)
	switch {
	case modal.Loading:
		model.detailView.SetContent(secondaryStyle.Render("Loading details..."))
	case modal.Err != nil:
		model.detailView.SetContent(warningStyle.Width(width).Render(render.DetailsError(modal.Err)))
	case modal.Detail != nil:
		model.detailView.SetContent(detailText(*modal.Detail, true, width))
	}
}

func nextView(current browse.View, step int) browse.View {
	count := len(browse.Views)
	return browse.Views[((int(current)+step)%count+count)%count]
}

func nextPeriod(current anime.Period) anime.Period {
	for index, period := range anime.Periods {
		if period == current {
			return anime.Periods[(index+1)%len(anime.Periods)]
		}
	}
	return anime.PeriodToday
}

func newAnimeList(title string, summaries []anime.Summary, width, height int, ranked bool) list.Model {
	items := make([]list.Item, 0, len(summaries))
	for index, summary := range summaries {
		item := animeItem{summary: summary, card: render.NewCard(summary)}
		if ranked {
			item.rank = index + 1
		}
		items = append(items, item)
	}

	animeList := list.New(items, list.NewDefaultDelegate(), max(width, 0), max(height, 0))
	animeList.Title = title
	animeList.SetShowStatusBar(false)
	animeList.SetFilteringEnabled(false)
	animeList.SetShowHelp(false)
	animeList.DisableQuitKeybindings()

	return animeList
}

func newSearchInput() textinput.Model {
	input := textinput.New()
	input.Placeholder = "Search anime, e.g. Naruto"
	input.Prompt = "> "
	input.CharLimit = 120
	return input
}

type logWriter struct {
	channel chan<- logMsg
}

func (writer logWriter) Write(data []byte) (int, error) {
	message := strings.TrimSpace(string(data))
	if message == "" {
		return len(data), nil
	}

	for _, line := range strings.Split(message, "\n") {
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		select {
		case writer.channel <- logMsg(line):
		default:
		}
	}

	return len(data), nil
}

var (
	titleStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("205"))
	secondaryStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("244"))
	warningStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("196"))
	focusedStyle     = lipgloss.NewStyle().Foreground(lipgloss.Color("205"))
	blurStyle        = lipgloss.NewStyle().Foreground(lipgloss.Color("240"))
	panelTitleStyle  = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("213"))
	labelStyle       = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("110"))
	activeTabStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("230")).Background(lipgloss.Color("62")).Padding(0, 2)
	inactiveTabStyle = lipgloss.NewStyle().Foreground(lipgloss.Color("244")).Padding(0, 2)
	selectedStyle    = lipgloss.NewStyle().Foreground(lipgloss.Color("205")).Bold(true)
	modalStyle       = lipgloss.NewStyle().Border(lipgloss.RoundedBorder()).BorderForeground(lipgloss.Color("62")).Padding(1, 2)
)
