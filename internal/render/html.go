package render

import (
	"bytes"
	"html/template"
	"net/url"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

var fragments = template.Must(template.New("fragments").Funcs(template.FuncMap{
	"infoURL":   InfoURL,
	"searchURL": SearchURL,
}).Parse(`
{{define "card"}}<div class="anime-card"{{if .ID}} data-id="{{.ID}}" hx-get="{{infoURL .ID}}" hx-target="#modal-body"{{end}}>
	<img src="{{.Image}}" alt="{{.Title}}" loading="lazy">
	<div class="anime-card-body">
		<h3>{{.Title}}</h3>
		<div class="anime-info">
			<span>{{.Type}}</span>
			<span>EP: {{.Episodes}}</span>
		</div>
	</div>
</div>
{{end}}
{{define "cards"}}{{range .}}{{template "card" .}}{{end}}{{end}}
{{define "rows"}}{{range .}}<div class="anime-list-item"{{if .ID}} data-id="{{.ID}}" hx-get="{{infoURL .ID}}" hx-target="#modal-body"{{end}}>
	<div class="rank">#{{.Rank}}</div>
	<img src="{{.Image}}" alt="{{.Title}}" loading="lazy">
	<div class="anime-list-item-info">
		<h3>{{.Title}}</h3>
		<p>Episodes: {{.Episodes}}</p>
	</div>
</div>
{{end}}{{end}}
{{define "detail"}}<div class="anime-detail-content"{{if .ID}} data-id="{{.ID}}"{{end}}>
	<img src="{{.Image}}" alt="{{.Title}}">
	<div class="anime-detail-info">
		<h2>{{.Title}}</h2>
		{{range .Fields}}<p><span class="label">{{.Label}}:</span> {{.Value}}</p>
		{{end}}{{if .Description}}<p class="description">{{.Description}}</p>
		{{end}}{{if and .ShowFullDetails .ID}}<button class="big-btn" hx-get="{{infoURL .ID}}" hx-target="#modal-body">View Full Details</button>
		{{end}}
	</div>
</div>
{{end}}
{{define "suggestions"}}{{range .}}<div class="suggestion-item" data-name="{{.Name}}" hx-get="{{searchURL .Name}}" hx-target="#search-results">{{.Name}}</div>
{{end}}{{end}}
{{define "message"}}<p class="error-message">{{.}}</p>{{end}}
`))

type row struct {
	Card
	Rank int
}

type detailView struct {
	ID              string
	Title           string
	Image           string
	Fields          []Field
	Description     string
	ShowFullDetails bool
}

func Cards(summaries []anime.Summary) string {
	cards := make([]Card, 0, len(summaries))
	for _, summary := range summaries {
		cards = append(cards, NewCard(summary))
	}
	return execute("cards", cards)
}

// TopTenList renders ranked rows starting at #1.
func TopTenList(summaries []anime.Summary) string {
	rows := make([]row, 0, len(summaries))
	for index, summary := range summaries {
		card := NewCard(summary)
		card.Image = orDefault(summary.Poster, PlaceholderRowImage)
		rows = append(rows, row{Card: card, Rank: index + 1})
	}
	return execute("rows", rows)
}

func Detail(detail anime.Detail) string {
	return execute("detail", newDetailView(detail, true))
}

// RandomDetail is the compact block shown in the random view, with a
// button that opens the full detail.
func RandomDetail(detail anime.Detail) string {
	return execute("detail", newDetailView(detail, false))
}

func Suggestions(suggestions []anime.Suggestion) string {
	return execute("suggestions", suggestions)
}

func Message(text string) string {
	return execute("message", text)
}

func newDetailView(detail anime.Detail, full bool) detailView {
	return detailView{
		ID:              detail.ID,
		Title:           orDefault(detail.Title, UnknownTitle),
		Image:           orDefault(detail.Poster, PlaceholderDetailImage),
		Fields:          DetailFields(detail, full),
		Description:     detail.Description,
		ShowFullDetails: !full,
	}
}

// InfoURL is the fragment route that loads the full detail of an anime.
func InfoURL(id string) string {
	return "/views/info?" + url.Values{"id": {id}}.Encode()
}

func SearchURL(keyword string) string {
	return "/views/search?" + url.Values{"keyword": {keyword}}.Encode()
}

func execute(name string, data any) string {
	var buffer bytes.Buffer
	if err := fragments.ExecuteTemplate(&buffer, name, data); err != nil {
		buffer.Reset()
		_ = fragments.ExecuteTemplate(&buffer, "message", "render failed: "+err.Error())
	}
	return buffer.String()
}
