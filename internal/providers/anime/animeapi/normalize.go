package animeapi

import (
	"bytes"
	"encoding/json"
	"sort"
	"strings"

	"github.com/PuerkitoBio/goquery"

	"github.com/ssh-vom/anime-browser/internal/providers/anime"
)

// flexValue accepts the loosely typed scalars the API sends (strings,
// numbers, arrays, episode-count objects) and keeps a display string.
// Zero, false and null collapse to empty so display defaults apply.
type flexValue string

func (value *flexValue) UnmarshalJSON(data []byte) error {
	text, err := flexText(data)
	if err != nil {
		return err
	}
	*value = flexValue(text)
	return nil
}

func (value flexValue) String() string {
	return string(value)
}

func flexText(data []byte) (string, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return "", nil
	}

	switch trimmed[0] {
	case '"':
		var text string
		if err := json.Unmarshal(trimmed, &text); err != nil {
			return "", err
		}
		return strings.TrimSpace(text), nil
	case '[':
		var items []flexValue
		if err := json.Unmarshal(trimmed, &items); err != nil {
			return "", err
		}
		parts := make([]string, 0, len(items))
		for _, item := range items {
			if item != "" {
				parts = append(parts, string(item))
			}
		}
		return strings.Join(parts, ", "), nil
	case '{':
		var counts map[string]flexValue
		if err := json.Unmarshal(trimmed, &counts); err != nil {
			return "", err
		}
		return formatCounts(counts), nil
	case 't':
		return "true", nil
	case 'f':
		return "", nil
	default:
		var number json.Number
		if err := json.Unmarshal(trimmed, &number); err != nil {
			return "", err
		}
		if value, err := number.Float64(); err == nil && value == 0 {
			return "", nil
		}
		return number.String(), nil
	}
}

// formatCounts renders {"sub": 12, "dub": 10} as "sub 12 / dub 10".
func formatCounts(counts map[string]flexValue) string {
	keys := make([]string, 0, len(counts))
	for key, value := range counts {
		if value != "" {
			keys = append(keys, key)
		}
	}
	sort.Slice(keys, func(i, j int) bool {
		return countOrder(keys[i]) < countOrder(keys[j]) ||
			(countOrder(keys[i]) == countOrder(keys[j]) && keys[i] < keys[j])
	})

	parts := make([]string, 0, len(keys))
	for _, key := range keys {
		parts = append(parts, key+" "+string(counts[key]))
	}
	return strings.Join(parts, " / ")
}

func countOrder(key string) int {
	switch key {
	case "sub":
		return 0
	case "dub":
		return 1
	default:
		return 2
	}
}

// rawSummary keeps every field loosely typed: one odd value must not fail
// the whole list.
type rawSummary struct {
	ID            flexValue `json:"id"`
	AnimeID       flexValue `json:"animeId"`
	Name          flexValue `json:"name"`
	Title         flexValue `json:"title"`
	Poster        flexValue `json:"poster"`
	Image         flexValue `json:"image"`
	Episodes      flexValue `json:"episodes"`
	TotalEpisodes flexValue `json:"totalEpisodes"`
	Type          flexValue `json:"type"`
	Category      flexValue `json:"category"`
}

func (raw rawSummary) normalize() anime.Summary {
	return anime.Summary{
		ID:       firstNonEmpty(raw.ID.String(), raw.AnimeID.String()),
		Title:    firstNonEmpty(raw.Name.String(), raw.Title.String()),
		Poster:   firstNonEmpty(raw.Poster.String(), raw.Image.String()),
		Episodes: firstNonEmpty(raw.Episodes.String(), raw.TotalEpisodes.String()),
		Type:     firstNonEmpty(raw.Type.String(), raw.Category.String()),
	}
}

func normalizeSummaries(raws []rawSummary) []anime.Summary {
	summaries := make([]anime.Summary, 0, len(raws))
	for _, raw := range raws {
		summaries = append(summaries, raw.normalize())
	}
	return summaries
}

type rawInfo struct {
	Type      flexValue `json:"type"`
	Episodes  flexValue `json:"episodes"`
	Status    flexValue `json:"status"`
	Aired     flexValue `json:"aired"`
	Premiered flexValue `json:"premiered"`
	Duration  flexValue `json:"duration"`
	Rating    flexValue `json:"rating"`
	Studios   flexValue `json:"studios"`
	Genres    flexValue `json:"genres"`
	Japanese  flexValue `json:"japanese"`
}

func (raw rawInfo) normalize() anime.Info {
	return anime.Info{
		Type:      raw.Type.String(),
		Episodes:  raw.Episodes.String(),
		Status:    raw.Status.String(),
		Aired:     raw.Aired.String(),
		Premiered: raw.Premiered.String(),
		Duration:  raw.Duration.String(),
		Rating:    raw.Rating.String(),
		Studios:   raw.Studios.String(),
		Genres:    raw.Genres.String(),
	}
}

// mergeInfo fills empty fields of primary from fallback.
func mergeInfo(primary, fallback anime.Info) anime.Info {
	return anime.Info{
		Type:      firstNonEmpty(primary.Type, fallback.Type),
		Episodes:  firstNonEmpty(primary.Episodes, fallback.Episodes),
		Status:    firstNonEmpty(primary.Status, fallback.Status),
		Aired:     firstNonEmpty(primary.Aired, fallback.Aired),
		Premiered: firstNonEmpty(primary.Premiered, fallback.Premiered),
		Duration:  firstNonEmpty(primary.Duration, fallback.Duration),
		Rating:    firstNonEmpty(primary.Rating, fallback.Rating),
		Studios:   firstNonEmpty(primary.Studios, fallback.Studios),
		Genres:    firstNonEmpty(primary.Genres, fallback.Genres),
	}
}

// rawDetail accepts both the flat detail shape and the nested
// {anime: {info, moreInfo}} shape.
type rawDetail struct {
	rawSummary
	JName       flexValue `json:"jname"`
	Description flexValue `json:"description"`
	Info        rawInfo   `json:"info"`
	Anime       *struct {
		Info struct {
			rawSummary
			Description flexValue `json:"description"`
			Stats       rawInfo   `json:"stats"`
		} `json:"info"`
		MoreInfo rawInfo `json:"moreInfo"`
	} `json:"anime"`
}

func (raw rawDetail) normalize() anime.Detail {
	detail := anime.Detail{
		Summary:     raw.rawSummary.normalize(),
		JName:       raw.JName.String(),
		Description: plainText(raw.Description.String()),
		Info:        raw.Info.normalize(),
	}
	if detail.JName == "" {
		detail.JName = raw.Info.Japanese.String()
	}

	if raw.Anime != nil {
		nested := raw.Anime.Info.rawSummary.normalize()
		detail.ID = firstNonEmpty(detail.ID, nested.ID)
		detail.Title = firstNonEmpty(detail.Title, nested.Title)
		detail.Poster = firstNonEmpty(detail.Poster, nested.Poster)
		detail.Description = firstNonEmpty(detail.Description, plainText(raw.Anime.Info.Description.String()))
		detail.JName = firstNonEmpty(detail.JName, raw.Anime.MoreInfo.Japanese.String())
		detail.Info = mergeInfo(detail.Info, mergeInfo(raw.Anime.MoreInfo.normalize(), raw.Anime.Info.Stats.normalize()))
	}

	detail.Episodes = firstNonEmpty(detail.Episodes, detail.Info.Episodes)
	detail.Type = firstNonEmpty(detail.Type, detail.Info.Type)
	return detail
}

type rawSuggestion struct {
	ID    string
	Name  string
	JName string
}

func (suggestion *rawSuggestion) UnmarshalJSON(data []byte) error {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) > 0 && trimmed[0] == '"' {
		var name string
		if err := json.Unmarshal(trimmed, &name); err != nil {
			return err
		}
		*suggestion = rawSuggestion{Name: strings.TrimSpace(name)}
		return nil
	}

	var object struct {
		ID    flexValue `json:"id"`
		Name  string    `json:"name"`
		JName string    `json:"jname"`
	}
	if err := json.Unmarshal(trimmed, &object); err != nil {
		return err
	}
	*suggestion = rawSuggestion{ID: object.ID.String(), Name: strings.TrimSpace(object.Name), JName: strings.TrimSpace(object.JName)}
	return nil
}

// plainText strips markup from API descriptions, keeping <br> as newlines.
func plainText(fragment string) string {
	fragment = strings.TrimSpace(fragment)
	if !strings.ContainsAny(fragment, "<&") {
		return fragment
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(fragment))
	if err != nil {
		return fragment
	}
	doc.Find("br").ReplaceWithHtml("\n")

	lines := strings.Split(doc.Text(), "\n")
	kept := make([]string, 0, len(lines))
	for _, line := range lines {
		line = strings.Join(strings.Fields(line), " ")
		if line != "" {
			kept = append(kept, line)
		}
	}
	return strings.Join(kept, "\n")
}

func firstNonEmpty(values ...string) string {
	for _, value := range values {
		if trimmed := strings.TrimSpace(value); trimmed != "" {
			return trimmed
		}
	}
	return ""
}
