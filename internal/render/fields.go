package render

import (
	"strings"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

const (
	UnknownTitle = "Unknown Title"
	NotAvailable = "N/A"

	PlaceholderImage       = "https://via.placeholder.com/200x280?text=No+Image"
	PlaceholderDetailImage = "https://via.placeholder.com/250x350"
	PlaceholderRowImage    = "https://via.placeholder.com/80x110"
)

type Field struct {
	Label string
	Value string
}

// Card is a Summary with display defaults applied.
type Card struct {
	ID       string
	Title    string
	Image    string
	Type     string
	Episodes string
}

func NewCard(summary anime.Summary) Card {
	return Card{
		ID:       strings.TrimSpace(summary.ID),
		Title:    orDefault(summary.Title, UnknownTitle),
		Image:    orDefault(summary.Poster, PlaceholderImage),
		Type:     orDefault(summary.Type, NotAvailable),
		Episodes: orDefault(summary.Episodes, NotAvailable),
	}
}

func TitleOf(summary anime.Summary) string {
	return orDefault(summary.Title, UnknownTitle)
}

// DetailFields lists the labelled fields of a detail block. The compact
// form is used for the random view.
func DetailFields(detail anime.Detail, full bool) []Field {
	info := detail.Info
	if !full {
		return []Field{
			{Label: "Japanese", Value: orDefault(detail.JName, NotAvailable)},
			{Label: "Type", Value: orDefault(info.Type, NotAvailable)},
			{Label: "Episodes", Value: orDefault(info.Episodes, NotAvailable)},
			{Label: "Status", Value: orDefault(info.Status, NotAvailable)},
			{Label: "Rating", Value: orDefault(info.Rating, NotAvailable)},
			{Label: "Genres", Value: orDefault(info.Genres, NotAvailable)},
		}
	}

	return []Field{
		{Label: "Japanese", Value: orDefault(detail.JName, NotAvailable)},
		{Label: "Type", Value: orDefault(info.Type, NotAvailable)},
		{Label: "Episodes", Value: orDefault(info.Episodes, NotAvailable)},
		{Label: "Status", Value: orDefault(info.Status, NotAvailable)},
		{Label: "Aired", Value: orDefault(info.Aired, NotAvailable)},
		{Label: "Premiered", Value: orDefault(info.Premiered, NotAvailable)},
		{Label: "Duration", Value: orDefault(info.Duration, NotAvailable)},
		{Label: "Rating", Value: orDefault(info.Rating, NotAvailable)},
		{Label: "Studios", Value: orDefault(info.Studios, NotAvailable)},
		{Label: "Genres", Value: orDefault(info.Genres, NotAvailable)},
	}
}

// Messages shown in place of a view's content.
const (
	NoAnimeFound    = "No anime found"
	NoResultsFound  = "No results found"
	NoDataAvailable = "No data available"
)

func HomeError(err error) string    { return "Error loading content: " + err.Error() }
func DetailsError(err error) string { return "Error loading details: " + err.Error() }
func SearchError(err error) string  { return "Error searching: " + err.Error() }
func TopTenError(err error) string  { return "Error loading top ten: " + err.Error() }
func RandomError(err error) string  { return "Error loading random anime: " + err.Error() }

func orDefault(value, fallback string) string {
	if trimmed := strings.TrimSpace(value); trimmed != "" {
		return trimmed
	}
	return fallback
}
