package anime

import "context"

type Provider interface {
	Home(ctx context.Context) (Home, error)
	Info(ctx context.Context, id string) (Detail, error)
	Search(ctx context.Context, keyword string) ([]Summary, error)
	Suggest(ctx context.Context, query string) ([]Suggestion, error)
	TopTen(ctx context.Context, period Period) ([]Summary, error)
	Random(ctx context.Context) (Detail, error)
}
