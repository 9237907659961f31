package browse

import (
	"context"
	"errors"
	"testing"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

type recordingProvider struct {
	calls  []string
	home   anime.Home
	topTen map[anime.Period][]anime.Summary
	detail anime.Detail
	err    error
}

func (provider *recordingProvider) Home(ctx context.Context) (anime.Home, error) {
	provider.calls = append(provider.calls, "home")
	return provider.home, provider.err
}

func (provider *recordingProvider) Info(ctx context.Context, id string) (anime.Detail, error) {
	provider.calls = append(provider.calls, "info:"+id)
	return provider.detail, provider.err
}

func (provider *recordingProvider) Search(ctx context.Context, keyword string) ([]anime.Summary, error) {
	provider.calls = append(provider.calls, "search:"+keyword)
	return nil, provider.err
}

func (provider *recordingProvider) Suggest(ctx context.Context, query string) ([]anime.Suggestion, error) {
	provider.calls = append(provider.calls, "suggest:"+query)
	return nil, provider.err
}

func (provider *recordingProvider) TopTen(ctx context.Context, period anime.Period) ([]anime.Summary, error) {
	provider.calls = append(provider.calls, "top-ten:"+string(period))
	return provider.topTen[period], provider.err
}

func (provider *recordingProvider) Random(ctx context.Context) (anime.Detail, error) {
	provider.calls = append(provider.calls, "random")
	return provider.detail, provider.err
}

func run(controller *Controller, provider anime.Provider, req Request) bool {
	return controller.Complete(req, Load(context.Background(), provider, req))
}

func TestActivateLoadsOnlyHomeAndTopTen(t *testing.T) {
	controller := NewController()

	for _, view := range []View{ViewSearch, ViewRandom} {
		if _, ok := controller.Activate(view); ok {
			t.Fatalf("%s should not load on activation", view)
		}
		if controller.Active() != view {
			t.Fatalf("expected %s active, got %s", view, controller.Active())
		}
	}

	req, ok := controller.Activate(ViewTopTen)
	if !ok || req.Target != TargetTopTen || req.Period != anime.PeriodToday {
		t.Fatalf("unexpected top-ten request: %+v %v", req, ok)
	}
	if !controller.Panel(TargetTopTen).Loading {
		t.Fatalf("expected top-ten panel to be loading")
	}
}

func TestReturningHomeRefetches(t *testing.T) {
	provider := &recordingProvider{home: anime.Home{Trending: []anime.Summary{{ID: "a"}}}}
	controller := NewController()

	req, _ := controller.Activate(ViewHome)
	run(controller, provider, req)
	controller.Activate(ViewSearch)
	req, ok := controller.Activate(ViewHome)
	if !ok {
		t.Fatalf("expected home to load again")
	}
	if panel := controller.Panel(TargetHome); !panel.Loading || len(panel.Items) != 0 {
		t.Fatalf("previous home content should be cleared while loading: %+v", panel)
	}
	run(controller, provider, req)

	if len(provider.calls) != 2 || provider.calls[0] != "home" || provider.calls[1] != "home" {
		t.Fatalf("expected two home fetches, got %v", provider.calls)
	}
}

func TestPeriodSwitchFetchesOnceAndReplacesContent(t *testing.T) {
	provider := &recordingProvider{topTen: map[anime.Period][]anime.Summary{
		anime.PeriodToday: {{ID: "today-1"}},
		anime.PeriodWeek:  {{ID: "week-1"}, {ID: "week-2"}},
	}}
	controller := NewController()

	req, _ := controller.Activate(ViewTopTen)
	run(controller, provider, req)

	req, ok := controller.SelectPeriod(anime.PeriodWeek)
	if !ok || req.Period != anime.PeriodWeek {
		t.Fatalf("expected a week request, got %+v %v", req, ok)
	}
	if _, again := controller.SelectPeriod(anime.PeriodWeek); again {
		t.Fatalf("re-selecting the same period should not fetch")
	}
	run(controller, provider, req)

	if len(provider.calls) != 2 || provider.calls[1] != "top-ten:week" {
		t.Fatalf("unexpected fetches: %v", provider.calls)
	}
	items := controller.Panel(TargetTopTen).Items
	if len(items) != 2 || items[0].ID != "week-1" {
		t.Fatalf("today content should be replaced, got %+v", items)
	}
}

func TestStaleCompletionIsDiscarded(t *testing.T) {
	controller := NewController()

	first, _ := controller.Activate(ViewTopTen)
	second, _ := controller.SelectPeriod(anime.PeriodMonth)

	if !controller.Complete(second, Result{Items: []anime.Summary{{ID: "month"}}}) {
		t.Fatalf("latest request should apply")
	}
	if controller.Complete(first, Result{Items: []anime.Summary{{ID: "today"}}}) {
		t.Fatalf("older request should be discarded")
	}
	if items := controller.Panel(TargetTopTen).Items; len(items) != 1 || items[0].ID != "month" {
		t.Fatalf("stale response overwrote fresh content: %+v", items)
	}
}

func TestFailureStaysInItsPanel(t *testing.T) {
	controller := NewController()

	home, _ := controller.Activate(ViewHome)
	controller.Complete(home, Result{Items: []anime.Summary{{ID: "a"}}})
	roll := controller.Roll()
	controller.Complete(roll, Result{Err: errors.New("boom")})

	if controller.Panel(TargetRandom).Err == nil {
		t.Fatalf("expected random panel error")
	}
	if panel := controller.Panel(TargetHome); panel.Err != nil || len(panel.Items) != 1 {
		t.Fatalf("home panel should be unaffected: %+v", panel)
	}
}

func TestDetailsModalLifecycle(t *testing.T) {
	provider := &recordingProvider{detail: anime.Detail{Summary: anime.Summary{ID: "x", Title: "X"}}}
	controller := NewController()

	if _, ok := controller.OpenDetails(""); ok {
		t.Fatalf("empty id should not open details")
	}

	req, ok := controller.OpenDetails("x")
	if !ok || !controller.Modal().Open || !controller.Modal().Loading {
		t.Fatalf("expected open loading modal")
	}
	run(controller, provider, req)
	if detail := controller.Modal().Detail; detail == nil || detail.Title != "X" {
		t.Fatalf("unexpected modal detail: %+v", controller.Modal())
	}

	req, _ = controller.OpenDetails("y")
	controller.CloseDetails()
	if run(controller, provider, req) {
		t.Fatalf("details arriving after close should be dropped")
	}
	if controller.Modal().Open {
		t.Fatalf("modal should stay closed")
	}
}

func TestLoadWithoutProvider(t *testing.T) {
	result := Load(context.Background(), nil, Request{Target: TargetHome})
	if !errors.Is(result.Err, ErrNoProvider) {
		t.Fatalf("expected ErrNoProvider, got %v", result.Err)
	}
}

func TestParseView(t *testing.T) {
	view, ok := ParseView("top-ten")
	if !ok || view != ViewTopTen {
		t.Fatalf("unexpected view: %v %v", view, ok)
	}
	if _, ok := ParseView("settings"); ok {
		t.Fatalf("unknown view should not parse")
	}
}
