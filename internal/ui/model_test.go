package ui

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/log"

	"github.com/ssh-vom/anime-browser/internal/browse"
	"github.com/ssh-vom/anime-browser/internal/config"
	"github.com/ssh-vom/anime-browser/internal/cover"
	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

type fakeProvider struct {
	mu          sync.Mutex
	home        anime.Home
	detail      anime.Detail
	suggestions []anime.Suggestion
	results     []anime.Summary
	err         error

	periods  []anime.Period
	suggests []string
	searches []string
	infos    []string
}

func (provider *fakeProvider) Home(ctx context.Context) (anime.Home, error) {
	return provider.home, provider.err
}

func (provider *fakeProvider) Info(ctx context.Context, id string) (anime.Detail, error) {
	provider.mu.Lock()
	provider.infos = append(provider.infos, id)
	provider.mu.Unlock()
	return provider.detail, provider.err
}

func (provider *fakeProvider) Search(ctx context.Context, keyword string) ([]anime.Summary, error) {
	provider.mu.Lock()
	provider.searches = append(provider.searches, keyword)
	provider.mu.Unlock()
	return provider.results, provider.err
}

func (provider *fakeProvider) Suggest(ctx context.Context, query string) ([]anime.Suggestion, error) {
	provider.mu.Lock()
	provider.suggests = append(provider.suggests, query)
	provider.mu.Unlock()
	return provider.suggestions, provider.err
}

func (provider *fakeProvider) TopTen(ctx context.Context, period anime.Period) ([]anime.Summary, error) {
	provider.mu.Lock()
	provider.periods = append(provider.periods, period)
	provider.mu.Unlock()
	return provider.results, provider.err
}

func (provider *fakeProvider) Random(ctx context.Context) (anime.Detail, error) {
	return provider.detail, provider.err
}

func newTestModel(provider anime.Provider) model {
	return NewModel(config.Config{}, Dependencies{Provider: provider}, nil, log.New(io.Discard), nil)
}

func update(t *testing.T, current model, msg tea.Msg) (model, tea.Cmd) {
	t.Helper()
	updated, cmd := current.Update(msg)
	next, ok := updated.(model)
	if !ok {
		t.Fatalf("unexpected model type %T", updated)
	}
	return next, cmd
}

func keyRune(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

// drain runs cmd and any batched commands and collects their messages.
// Only use it on commands that return immediately.
func drain(cmd tea.Cmd) []tea.Msg {
	if cmd == nil {
		return nil
	}
	msg := cmd()
	if batch, ok := msg.(tea.BatchMsg); ok {
		var msgs []tea.Msg
		for _, inner := range batch {
			msgs = append(msgs, drain(inner)...)
		}
		return msgs
	}
	return []tea.Msg{msg}
}

func findLoaded(t *testing.T, msgs []tea.Msg) loadedMsg {
	t.Helper()
	for _, msg := range msgs {
		if loaded, ok := msg.(loadedMsg); ok {
			return loaded
		}
	}
	t.Fatalf("no loadedMsg in %v", msgs)
	return loadedMsg{}
}

func TestStaleHomeResponseIsDropped(t *testing.T) {
	current := newTestModel(&fakeProvider{})

	first, _ := current.browser.Activate(browse.ViewHome)
	second, _ := current.browser.Activate(browse.ViewHome)

	current, _ = update(t, current, loadedMsg{req: first, result: browse.Result{Items: []anime.Summary{{ID: "old", Title: "Old"}}}})
	if len(current.homeList.Items()) != 0 || !current.browser.Panel(browse.TargetHome).Loading {
		t.Fatalf("stale response was applied")
	}

	current, _ = update(t, current, loadedMsg{req: second, result: browse.Result{Items: []anime.Summary{{ID: "new", Title: "New"}}}})
	items := current.homeList.Items()
	if len(items) != 1 || items[0].(animeItem).summary.ID != "new" {
		t.Fatalf("unexpected home items: %v", items)
	}
}

func TestEmptyHomeShowsMessage(t *testing.T) {
	current := newTestModel(&fakeProvider{})
	req, _ := current.browser.Activate(browse.ViewHome)
	current, _ = update(t, current, loadedMsg{req: req, result: browse.Result{}})

	view := current.View()
	if !strings.Contains(view, "Anime Browser") || !strings.Contains(view, "No anime found") {
		t.Fatalf("unexpected view: %q", view)
	}
}

func TestHomeErrorIsInline(t *testing.T) {
	current := newTestModel(&fakeProvider{})
	current, _ = update(t, current, tea.WindowSizeMsg{Width: 120, Height: 40})
	req, _ := current.browser.Activate(browse.ViewHome)
	current, _ = update(t, current, loadedMsg{req: req, result: browse.Result{Err: errors.New("boom")}})

	if view := current.View(); !strings.Contains(view, "Error loading content: boom") {
		t.Fatalf("missing inline error: %q", view)
	}
}

func TestPeriodKeyFetchesOnce(t *testing.T) {
	provider := &fakeProvider{results: []anime.Summary{{ID: "a", Title: "A"}}}
	current := newTestModel(provider)
	current.browser.Activate(browse.ViewTopTen)

	current, cmd := update(t, current, keyRune('w'))
	if current.browser.Period() != anime.PeriodWeek {
		t.Fatalf("period not switched: %s", current.browser.Period())
	}
	loaded := findLoaded(t, drain(cmd))
	current, _ = update(t, current, loaded)

	if len(provider.periods) != 1 || provider.periods[0] != anime.PeriodWeek {
		t.Fatalf("unexpected fetches: %v", provider.periods)
	}
	items := current.topTenList.Items()
	if len(items) != 1 || items[0].(animeItem).Title() != "#1 A" {
		t.Fatalf("unexpected top ten items: %v", items)
	}

	if _, cmd := update(t, current, keyRune('w')); cmd != nil {
		t.Fatalf("re-selecting the period should not fetch")
	}
}

func TestSearchFlow(t *testing.T) {
	provider := &fakeProvider{
		suggestions: []anime.Suggestion{{ID: "naruto-shippuden", Name: "Naruto Shippuden"}, {ID: "naruto", Name: "Naruto"}},
		results:     []anime.Summary{{ID: "naruto-shippuden", Title: "Naruto Shippuden"}},
	}
	current := newTestModel(provider)

	current, _ = update(t, current, keyRune('3'))
	if current.browser.Active() != browse.ViewSearch {
		t.Fatalf("expected search view, got %s", current.browser.Active())
	}
	for _, r := range "naruto" {
		current, _ = update(t, current, keyRune(r))
	}
	if current.searchInput.Value() != "naruto" {
		t.Fatalf("unexpected input %q", current.searchInput.Value())
	}

	if _, cmd := update(t, current, suggestDueMsg{token: 9999}); cmd != nil {
		t.Fatalf("unknown token should not fetch")
	}

	token, _ := current.session.Input(current.searchInput.Value())
	current, cmd := update(t, current, suggestDueMsg{token: token})
	if cmd == nil {
		t.Fatalf("expected suggestion fetch")
	}
	current, _ = update(t, current, cmd())
	if len(current.session.Suggestions()) != 2 || len(provider.suggests) != 1 || provider.suggests[0] != "naruto" {
		t.Fatalf("unexpected suggestions %v (fetches %v)", current.session.Suggestions(), provider.suggests)
	}

	current, _ = update(t, current, tea.KeyMsg{Type: tea.KeyDown})
	current, cmd = update(t, current, tea.KeyMsg{Type: tea.KeyEnter})
	if len(current.session.Suggestions()) != 0 || !current.session.Searching() {
		t.Fatalf("submit should clear suggestions and start searching")
	}

	for _, msg := range drain(cmd) {
		current, _ = update(t, current, msg)
	}
	if len(provider.searches) != 1 || provider.searches[0] != "Naruto Shippuden" {
		t.Fatalf("unexpected searches: %v", provider.searches)
	}
	if len(current.resultsList.Items()) != 1 || current.searchFocus != focusResults {
		t.Fatalf("results not shown")
	}
}

func TestDetailsModalLifecycle(t *testing.T) {
	provider := &fakeProvider{detail: anime.Detail{Summary: anime.Summary{ID: "one", Title: "One Piece"}, JName: "Wan Pisu"}}
	current := newTestModel(provider)
	current, _ = update(t, current, tea.WindowSizeMsg{Width: 100, Height: 40})

	req, _ := current.browser.Activate(browse.ViewHome)
	current, _ = update(t, current, loadedMsg{req: req, result: browse.Result{Items: []anime.Summary{{ID: "one", Title: "One Piece"}}}})

	current, cmd := update(t, current, tea.KeyMsg{Type: tea.KeyEnter})
	if !current.browser.Modal().Open || !current.browser.Modal().Loading {
		t.Fatalf("expected loading modal")
	}
	loaded := findLoaded(t, drain(cmd))
	current, _ = update(t, current, loaded)
	if len(provider.infos) != 1 || provider.infos[0] != "one" {
		t.Fatalf("unexpected info fetches: %v", provider.infos)
	}
	if view := current.View(); !strings.Contains(view, "Wan Pisu") {
		t.Fatalf("detail not rendered: %q", view)
	}

	current, _ = update(t, current, tea.KeyMsg{Type: tea.KeyEsc})
	if current.browser.Modal().Open {
		t.Fatalf("modal should be closed")
	}
	current, _ = update(t, current, loaded)
	if current.browser.Modal().Open {
		t.Fatalf("late response reopened the modal")
	}
}

func TestSaveSettingsRebuildsProvider(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())

	replacement := &fakeProvider{}
	var built config.Config
	current := NewModel(config.Config{}, Dependencies{Provider: &fakeProvider{}}, func(cfg config.Config) (Dependencies, error) {
		built = cfg
		return Dependencies{Provider: replacement}, nil
	}, log.New(io.Discard), nil)

	current.session.Submit("naruto")

	current, _ = update(t, current, keyRune('s'))
	if current.state != stateSettings {
		t.Fatalf("expected settings state")
	}
	current.settings.inputs[0].SetValue("not a url::")
	current, _ = update(t, current, tea.KeyMsg{Type: tea.KeyEnter})
	if current.state != stateSettings || current.settings.errorText == "" {
		t.Fatalf("invalid url should keep settings open")
	}

	current.settings.inputs[0].SetValue("anime.example:4444/api/")
	current, _ = update(t, current, tea.KeyMsg{Type: tea.KeyEnter})
	if current.state != stateBrowsing {
		t.Fatalf("expected browsing state, got %d (%s)", current.state, current.settings.errorText)
	}
	if built.APIURL != "anime.example:4444/api/" || current.provider != anime.Provider(replacement) {
		t.Fatalf("provider not rebuilt: %+v", built)
	}
	if current.session.Query() != "" || current.session.Searching() {
		t.Fatalf("search session should be reset after switching API")
	}

	loaded, err := config.LoadConfig()
	if err != nil {
		t.Fatalf("load config: %v", err)
	}
	if loaded.APIURL != "anime.example:4444/api/" {
		t.Fatalf("config not saved: %+v", loaded)
	}
}

func TestStartViewFromConfig(t *testing.T) {
	provider := &fakeProvider{}
	current := NewModel(config.Config{StartView: "top-ten"}, Dependencies{Provider: provider}, nil, log.New(io.Discard), nil)
	current.Init()

	if current.browser.Active() != browse.ViewTopTen || !current.browser.Panel(browse.TargetTopTen).Loading {
		t.Fatalf("expected top ten to be loading, got %s", current.browser.Active())
	}

	current = NewModel(config.Config{StartView: "settings"}, Dependencies{Provider: provider}, nil, log.New(io.Discard), nil)
	current.Init()
	if current.browser.Active() != browse.ViewHome {
		t.Fatalf("unknown start view should fall back to home, got %s", current.browser.Active())
	}
}

func posterServer(t *testing.T) *httptest.Server {
	t.Helper()
	source := image.NewRGBA(image.Rect(0, 0, 10, 14))
	for y := 0; y < 14; y++ {
		for x := 0; x < 10; x++ {
			source.Set(x, y, color.RGBA{R: 200, G: uint8(y * 15), B: 40, A: 255})
		}
	}
	var buffer bytes.Buffer
	if err := png.Encode(&buffer, source); err != nil {
		t.Fatalf("encode png: %v", err)
	}
	data := buffer.Bytes()

	server := httptest.NewServer(http.HandlerFunc(func(writer http.ResponseWriter, request *http.Request) {
		writer.Header().Set("Content-Type", "image/png")
		_, _ = writer.Write(data)
	}))
	t.Cleanup(server.Close)
	return server
}

func TestDetailsModalShowsPoster(t *testing.T) {
	server := posterServer(t)
	posterURL := server.URL + "/frieren.png"
	provider := &fakeProvider{detail: anime.Detail{Summary: anime.Summary{ID: "frieren", Title: "Frieren", Poster: posterURL}}}
	current := NewModel(config.Config{}, Dependencies{Provider: provider, Covers: cover.NewFetcher(server.Client())}, nil, log.New(io.Discard), nil)
	current.supportsGraphics = false
	current, _ = update(t, current, tea.WindowSizeMsg{Width: 120, Height: 40})

	req, ok := current.browser.OpenDetails("frieren")
	if !ok {
		t.Fatalf("expected details request")
	}
	current, cmd := update(t, current, findLoaded(t, drain(current.start(req))))
	if cmd == nil || !current.poster.loading || current.poster.url != posterURL {
		t.Fatalf("expected poster fetch for %q, got %+v", posterURL, current.poster)
	}

	loaded := cmd()
	current, _ = update(t, current, loaded)
	if current.poster.image == nil || current.poster.image.Width != 10 {
		t.Fatalf("poster not applied: %+v", current.poster)
	}
	if view := current.View(); !strings.Contains(view, "▀") {
		t.Fatalf("poster not rendered in the dialog")
	}

	current, _ = update(t, current, tea.KeyMsg{Type: tea.KeyEsc})
	current, _ = update(t, current, loaded)
	if current.poster.image != nil {
		t.Fatalf("poster applied after the dialog closed")
	}
}
