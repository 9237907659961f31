package browse

import (
	"context"
	"errors"
	"fmt"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

var ErrNoProvider = errors.New("anime provider unavailable")

// Load performs req against provider. Home resolves to the trending list,
// falling back to spotlight.
func Load(ctx context.Context, provider anime.Provider, req Request) Result {
	if provider == nil {
		return Result{Err: ErrNoProvider}
	}

	switch req.Target {
	case TargetHome:
		home, err := provider.Home(ctx)
		if err != nil {
			return Result{Err: err}
		}
		return Result{Items: home.Featured()}
	case TargetTopTen:
		items, err := provider.TopTen(ctx, req.Period)
		return Result{Items: items, Err: err}
	case TargetRandom:
		detail, err := provider.Random(ctx)
		if err != nil {
			return Result{Err: err}
		}
		return Result{Detail: &detail}
	case TargetDetails:
		detail, err := provider.Info(ctx, req.ID)
		if err != nil {
			return Result{Err: err}
		}
		return Result{Detail: &detail}
	default:
		return Result{Err: fmt.Errorf("unknown load target %d", req.Target)}
	}
}
