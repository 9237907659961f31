package ui

import (
	"context"
	"errors"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/ssh-vom/anime-browser/internal/browse"
	"github.com/ssh-vom/anime-browser/internal/cover"
	"github.com/ssh-vom/anime-browser/internal/providers/anime"
	"github.com/ssh-vom/anime-browser/internal/search"
)

const fetchTimeout = 20 * time.Second

var errNoProvider = errors.New("anime provider unavailable")

func loadCmd(provider anime.Provider, req browse.Request) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		return loadedMsg{req: req, result: browse.Load(ctx, provider, req)}
	}
}

func suggestDueCmd(token search.Token) tea.Cmd {
	return tea.Tick(search.Delay, func(time.Time) tea.Msg {
		return suggestDueMsg{token: token}
	})
}

func suggestCmd(provider anime.Provider, token search.Token, query string) tea.Cmd {
	return func() tea.Msg {
		if provider == nil {
			return suggestionsMsg{token: token, query: query, err: errNoProvider}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		suggestions, err := provider.Suggest(ctx, query)
		return suggestionsMsg{token: token, query: query, suggestions: suggestions, err: err}
	}
}

func searchCmd(provider anime.Provider, token search.Token, query string) tea.Cmd {
	return func() tea.Msg {
		if provider == nil {
			return searchResultsMsg{token: token, query: query, err: errNoProvider}
		}
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		results, err := provider.Search(ctx, query)
		return searchResultsMsg{token: token, query: query, results: results, err: err}
	}
}

func coverCmd(fetcher *cover.Fetcher, coverURL string) tea.Cmd {
	return func() tea.Msg {
		ctx, cancel := context.WithTimeout(context.Background(), fetchTimeout)
		defer cancel()
		image, err := fetcher.Fetch(ctx, coverURL)
		return coverLoadedMsg{url: coverURL, image: image, err: err}
	}
}

func listenLogCmd(ch <-chan logMsg) tea.Cmd {
	return func() tea.Msg {
		return <-ch
	}
}
