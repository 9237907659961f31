// Package search holds the state of the search view: the debounced
// suggestion lookup and the submitted search. It performs no I/O. Callers
// schedule a timer for each Token handed out and report fetched data back;
// a Token that has been superseded is rejected everywhere, so a late
// response can never overwrite a fresher one.
package search

import (
	"strings"
	"time"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

const (
	Delay          = 300 * time.Millisecond
	MinQueryLength = 2
)

type Phase int

const (
	PhaseIdle Phase = iota
	PhaseTyping
	PhaseSuggestionsShown
	PhaseSearching
	PhaseResultsShown
)

func (phase Phase) String() string {
	switch phase {
	case PhaseTyping:
		return "typing"
	case PhaseSuggestionsShown:
		return "suggestions-shown"
	case PhaseSearching:
		return "searching"
	case PhaseResultsShown:
		return "results-shown"
	default:
		return "idle"
	}
}

type Token uint64

type Session struct {
	phase Phase
	input string

	next          Token
	suggestToken  Token
	pendingQuery  string
	searchToken   Token
	lastSubmitted string

	suggestions []anime.Suggestion
	results     []anime.Summary
	resultsErr  error
}

func (session *Session) Phase() Phase                    { return session.phase }
func (session *Session) Query() string                   { return session.lastSubmitted }
func (session *Session) Suggestions() []anime.Suggestion { return session.suggestions }
func (session *Session) Results() []anime.Summary        { return session.results }
func (session *Session) Err() error                      { return session.resultsErr }

func (session *Session) issue() Token {
	session.next++
	return session.next
}

// Input records a new input value. It returns a token to fire after Delay
// when the trimmed value is long enough to look up, and false when the
// suggestions were cleared without scheduling a fetch. Any earlier pending
// token is invalidated either way.
func (session *Session) Input(value string) (Token, bool) {
	session.input = value
	query := strings.TrimSpace(value)

	if len([]rune(query)) < MinQueryLength {
		session.suggestToken = 0
		session.pendingQuery = ""
		session.suggestions = nil
		if session.phase == PhaseTyping || session.phase == PhaseSuggestionsShown {
			session.phase = PhaseIdle
		}
		return 0, false
	}

	session.suggestToken = session.issue()
	session.pendingQuery = query
	if session.phase != PhaseSearching {
		session.phase = PhaseTyping
	}
	return session.suggestToken, true
}

// Due reports that the quiet period for token elapsed. The query is
// returned only when no newer input arrived in between.
func (session *Session) Due(token Token) (string, bool) {
	if token == 0 || token != session.suggestToken {
		return "", false
	}
	return session.pendingQuery, true
}

// ApplySuggestions stores fetched suggestions for token. Failed lookups
// clear the list.
func (session *Session) ApplySuggestions(token Token, suggestions []anime.Suggestion, err error) bool {
	if token == 0 || token != session.suggestToken {
		return false
	}
	session.suggestToken = 0
	session.pendingQuery = ""

	if err != nil || len(suggestions) == 0 {
		session.suggestions = nil
		if session.phase == PhaseTyping {
			session.phase = PhaseIdle
		}
		return true
	}

	session.suggestions = suggestions
	if session.phase != PhaseSearching {
		session.phase = PhaseSuggestionsShown
	}
	return true
}

// Submit starts a search for value, or for the current input when value is
// empty. Suggestions are cleared and any pending lookup dropped first.
func (session *Session) Submit(value string) (Token, string, bool) {
	query := strings.TrimSpace(value)
	if query == "" {
		query = strings.TrimSpace(session.input)
	}
	if query == "" {
		return 0, "", false
	}

	session.input = query
	session.suggestions = nil
	session.suggestToken = 0
	session.pendingQuery = ""

	session.searchToken = session.issue()
	session.lastSubmitted = query
	session.results = nil
	session.resultsErr = nil
	session.phase = PhaseSearching
	return session.searchToken, query, true
}

func (session *Session) ApplyResults(token Token, results []anime.Summary, err error) bool {
	if token == 0 || token != session.searchToken {
		return false
	}
	session.searchToken = 0
	session.results = results
	session.resultsErr = err
	session.phase = PhaseResultsShown
	return true
}

// Searching reports whether a submitted search is still in flight.
func (session *Session) Searching() bool {
	return session.searchToken != 0
}

// Reset drops input, suggestions and results. Tokens issued before the
// reset stay invalid.
func (session *Session) Reset() {
	*session = Session{next: session.next}
}
