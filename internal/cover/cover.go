// Package cover fetches poster images and draws them in the terminal.
// Posters live in memory for as long as the detail dialog shows them.
package cover

import (
	"bytes"
	"context"
	"encoding/base64"
	"errors"
	"fmt"
	"image"
	_ "image/gif"
	_ "image/jpeg"
	"image/png"
	"io"
	"math"
	"net/http"
	"os"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"
	_ "golang.org/x/image/webp"
)

const (
	userAgent    = "anime-browser/0.1"
	maxBodyBytes = 4 << 20

	// kitty limits each escape payload to 4096 bytes.
	kittyChunkSize = 4096

	cellAspectRatio = 0.5
)

type Image struct {
	URL    string
	Source image.Image
	PNG    []byte
	Width  int
	Height int
}

type Fetcher struct {
	httpClient *http.Client
}

func NewFetcher(httpClient *http.Client) *Fetcher {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: 30 * time.Second}
	}
	return &Fetcher{httpClient: httpClient}
}

func (fetcher *Fetcher) Fetch(ctx context.Context, coverURL string) (Image, error) {
	if strings.TrimSpace(coverURL) == "" {
		return Image{}, errors.New("cover url missing")
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodGet, coverURL, nil)
	if err != nil {
		return Image{}, fmt.Errorf("error building cover request: %w", err)
	}
	request.Header.Set("User-Agent", userAgent)

	response, err := fetcher.httpClient.Do(request)
	if err != nil {
		return Image{}, fmt.Errorf("error fetching cover: %w", err)
	}
	defer response.Body.Close()

	if response.StatusCode != http.StatusOK {
		return Image{}, fmt.Errorf("cover request failed: %s", response.Status)
	}

	data, err := io.ReadAll(io.LimitReader(response.Body, maxBodyBytes))
	if err != nil {
		return Image{}, fmt.Errorf("error reading cover: %w", err)
	}

	return Decode(coverURL, data)
}

// Decode reads a JPEG, PNG, GIF or WebP poster and keeps a PNG copy for
// the kitty graphics protocol.
func Decode(coverURL string, data []byte) (Image, error) {
	if len(data) == 0 {
		return Image{}, errors.New("empty image data")
	}

	decoded, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return Image{}, fmt.Errorf("unable to decode cover image: %w", err)
	}

	var encoded bytes.Buffer
	if err := png.Encode(&encoded, decoded); err != nil {
		return Image{}, fmt.Errorf("unable to encode cover png: %w", err)
	}

	bounds := decoded.Bounds()
	return Image{
		URL:    coverURL,
		Source: decoded,
		PNG:    encoded.Bytes(),
		Width:  bounds.Dx(),
		Height: bounds.Dy(),
	}, nil
}

// RenderSize fits an image into a panel of the given width, in cells.
func RenderSize(panelWidth int, imageWidth, imageHeight int) (int, int) {
	cols := panelWidth - 2
	if cols < 12 {
		cols = 12
	}

	rows := 12
	if imageWidth > 0 && imageHeight > 0 {
		ratio := float64(imageHeight) / float64(imageWidth)
		rows = int(math.Round(float64(cols) * ratio * cellAspectRatio))
	}

	if rows < 6 {
		rows = 6
	}
	if rows > 24 {
		rows = 24
	}

	return cols, rows
}

// RenderKitty transmits the image inline with the kitty graphics protocol.
// The cursor does not move, so callers follow it with Placeholder.
func RenderKitty(img Image, cols, rows int) (string, error) {
	if len(img.PNG) == 0 {
		return "", errors.New("cover image missing")
	}
	if cols <= 0 {
		cols = 20
	}
	if rows <= 0 {
		rows = 10
	}

	encoded := base64.StdEncoding.EncodeToString(img.PNG)
	params := fmt.Sprintf("a=T,f=100,t=d,c=%d,r=%d,q=2,C=1", cols, rows)

	var builder strings.Builder
	for start := 0; start < len(encoded); start += kittyChunkSize {
		end := min(start+kittyChunkSize, len(encoded))
		more := 0
		if end < len(encoded) {
			more = 1
		}
		if start == 0 {
			fmt.Fprintf(&builder, "\x1b_G%s,m=%d;%s\x1b\\", params, more, encoded[start:end])
		} else {
			fmt.Fprintf(&builder, "\x1b_Gm=%d;%s\x1b\\", more, encoded[start:end])
		}
	}
	return builder.String(), nil
}

// RenderBlocks draws the image with upper half blocks, two pixels per cell,
// for terminals without graphics support.
func RenderBlocks(img Image, cols, rows int) string {
	if img.Source == nil || cols <= 0 || rows <= 0 {
		return Placeholder(rows, cols)
	}

	bounds := img.Source.Bounds()
	sample := func(col, pixelRow int) lipgloss.Color {
		x := bounds.Min.X + col*bounds.Dx()/cols
		y := bounds.Min.Y + pixelRow*bounds.Dy()/(rows*2)
		r, g, b, _ := img.Source.At(x, y).RGBA()
		return lipgloss.Color(fmt.Sprintf("#%02x%02x%02x", r>>8, g>>8, b>>8))
	}

	lines := make([]string, rows)
	for row := 0; row < rows; row++ {
		var line strings.Builder
		for col := 0; col < cols; col++ {
			cell := lipgloss.NewStyle().
				Foreground(sample(col, row*2)).
				Background(sample(col, row*2+1))
			line.WriteString(cell.Render("▀"))
		}
		lines[row] = line.String()
	}
	return strings.Join(lines, "\n")
}

func Placeholder(rows, cols int) string {
	if rows <= 0 || cols <= 0 {
		return ""
	}

	line := strings.Repeat(" ", cols)
	lines := make([]string, rows)
	for i := 0; i < rows; i++ {
		lines[i] = line
	}
	return strings.Join(lines, "\n")
}

func SupportsKittyGraphics() bool {
	term := strings.ToLower(os.Getenv("TERM"))
	return strings.Contains(term, "ghostty") || strings.Contains(term, "kitty")
}
