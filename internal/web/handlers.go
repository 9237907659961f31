package web

import (
	"context"
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
	"github.com/ssh-vom/anime-browser/internal/render"
	"github.com/ssh-vom/anime-browser/internal/search"
)

var (
	errNoProvider = errors.New("anime provider unavailable")
	errMissingID  = errors.New("missing anime id")
)

func (s *Server) handleGetPage(c echo.Context) error {
	return c.HTML(http.StatusOK, page)
}

func (s *Server) handleGetHealth(c echo.Context) error {
	return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
}

// Upstream failures are rendered inline with status 200 so htmx swaps them
// into the view like any other content.

func (s *Server) handleGetHome(c echo.Context) error {
	ctx, cancel := s.context(c)
	defer cancel()

	if s.Provider == nil {
		return c.HTML(http.StatusOK, render.Message(render.HomeError(errNoProvider)))
	}
	home, err := s.Provider.Home(ctx)
	if err != nil {
		s.Logger.Error("Home failed", "error", err)
		return c.HTML(http.StatusOK, render.Message(render.HomeError(err)))
	}

	featured := home.Featured()
	if len(featured) == 0 {
		return c.HTML(http.StatusOK, render.Message(render.NoAnimeFound))
	}
	return c.HTML(http.StatusOK, render.Cards(featured))
}

func (s *Server) handleGetTopTen(c echo.Context) error {
	period, err := anime.ParsePeriod(c.QueryParam("filter"))
	if err != nil {
		return c.HTML(http.StatusBadRequest, render.Message(render.TopTenError(err)))
	}

	ctx, cancel := s.context(c)
	defer cancel()

	if s.Provider == nil {
		return c.HTML(http.StatusOK, render.Message(render.TopTenError(errNoProvider)))
	}
	items, err := s.Provider.TopTen(ctx, period)
	if err != nil {
		s.Logger.Error("Top ten failed", "period", period, "error", err)
		return c.HTML(http.StatusOK, render.Message(render.TopTenError(err)))
	}
	if len(items) == 0 {
		return c.HTML(http.StatusOK, render.Message(render.NoDataAvailable))
	}
	return c.HTML(http.StatusOK, render.TopTenList(items))
}

func (s *Server) handleGetSearch(c echo.Context) error {
	keyword := strings.TrimSpace(c.QueryParam("keyword"))
	if keyword == "" {
		return c.HTML(http.StatusOK, "")
	}

	ctx, cancel := s.context(c)
	defer cancel()

	if s.Provider == nil {
		return c.HTML(http.StatusOK, render.Message(render.SearchError(errNoProvider)))
	}
	results, err := s.Provider.Search(ctx, keyword)
	if err != nil {
		s.Logger.Error("Search failed", "keyword", keyword, "error", err)
		return c.HTML(http.StatusOK, render.Message(render.SearchError(err)))
	}
	if len(results) == 0 {
		return c.HTML(http.StatusOK, render.Message(render.NoResultsFound))
	}
	return c.HTML(http.StatusOK, render.Cards(results))
}

// handleGetSuggest never surfaces errors; a failed lookup just yields no
// suggestions.
func (s *Server) handleGetSuggest(c echo.Context) error {
	query := strings.TrimSpace(c.QueryParam("q"))
	if len([]rune(query)) < search.MinQueryLength || s.Provider == nil {
		return c.HTML(http.StatusOK, "")
	}

	ctx, cancel := s.context(c)
	defer cancel()

	suggestions, err := s.Provider.Suggest(ctx, query)
	if err != nil {
		s.Logger.Warn("Suggestions failed", "query", query, "error", err)
		return c.HTML(http.StatusOK, "")
	}
	return c.HTML(http.StatusOK, render.Suggestions(suggestions))
}

func (s *Server) handleGetRandom(c echo.Context) error {
	ctx, cancel := s.context(c)
	defer cancel()

	if s.Provider == nil {
		return c.HTML(http.StatusOK, render.Message(render.RandomError(errNoProvider)))
	}
	detail, err := s.Provider.Random(ctx)
	if err != nil {
		s.Logger.Error("Random failed", "error", err)
		return c.HTML(http.StatusOK, render.Message(render.RandomError(err)))
	}
	return c.HTML(http.StatusOK, render.RandomDetail(detail))
}

func (s *Server) handleGetInfo(c echo.Context) error {
	id := strings.TrimSpace(c.QueryParam("id"))
	if id == "" {
		return c.HTML(http.StatusBadRequest, render.Message(render.DetailsError(errMissingID)))
	}

	ctx, cancel := s.context(c)
	defer cancel()

	if s.Provider == nil {
		return c.HTML(http.StatusOK, render.Message(render.DetailsError(errNoProvider)))
	}
	detail, err := s.Provider.Info(ctx, id)
	if err != nil {
		s.Logger.Error("Info failed", "id", id, "error", err)
		return c.HTML(http.StatusOK, render.Message(render.DetailsError(err)))
	}
	return c.HTML(http.StatusOK, render.Detail(detail))
}

func (s *Server) context(c echo.Context) (context.Context, context.CancelFunc) {
	return context.WithTimeout(c.Request().Context(), fetchTimeout)
}
