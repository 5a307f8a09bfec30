// Package ioc fetches detided sea level readings from the IOC Sea Level
// Station Monitoring Facility.
package ioc

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/jonboulle/clockwork"
	"golang.org/x/net/html"

	"github.com/misua/quake-monitor-web/internal/domain"
)

// maxRows caps how many trailing table rows are parsed per fetch, matching
// the monitor's rolling window.
const maxRows = 30

// radColumn is the detided radar sensor column in the bgraph table.
const radColumn = 3

// Client implements sealevel.Fetcher against the IOC bgraph endpoint.
type Client struct {
	baseURL    string
	httpClient *http.Client
	clock      clockwork.Clock
	logger     *slog.Logger
}

// NewClient creates an IOC station client. baseURL is the facility root,
// e.g. "https://www.ioc-sealevelmonitoring.org".
func NewClient(baseURL string, timeout time.Duration, logger *slog.Logger) *Client {
	return &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: timeout,
		},
		clock:  clockwork.NewRealClock(),
		logger: logger,
	}
}

// SetClock swaps the capture-time source. Tests inject a fake clock so
// Reading.Timestamp is deterministic.
func (c *Client) SetClock(clock clockwork.Clock) {
	c.clock = clock
}

// FetchReadings requests the station's recent history and returns the parsed
// readings oldest first. Rows with a missing or non-numeric detided value are
// skipped; a page without a table is an error.
func (c *Client) FetchReadings(ctx context.Context, station string, lookback time.Duration) ([]domain.Reading, error) {
	params := url.Values{
		"code":   {station},
		"output": {"tab"},
		// The bgraph period parameter is in hours.
		"period": {strconv.FormatFloat(lookback.Hours(), 'g', -1, 64)},
	}
	fullURL := c.baseURL + "/bgraph.php?" + params.Encode()

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fullURL, nil)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("ioc station request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("ioc station error: status %d", resp.StatusCode)
	}

	rows, err := parseTable(resp.Body)
	if err != nil {
		return nil, err
	}

	captured := float64(c.clock.Now().UnixMilli()) / 1000
	readings := make([]domain.Reading, 0, maxRows)
	start := 0
	if len(rows) > maxRows {
		start = len(rows) - maxRows
	}
	for _, row := range rows[start:] {
		if len(row) <= radColumn {
			continue
		}
		timeStr := strings.TrimSpace(row[0])
		radStr := strings.TrimSpace(row[radColumn])
		if radStr == "" {
			continue
		}
		level, err := strconv.ParseFloat(radStr, 64)
		if err != nil {
			// Malformed reading, skip without aborting the batch.
			continue
		}
		readings = append(readings, domain.Reading{
			Time:      timeStr,
			Level:     level,
			Timestamp: captured,
		})
	}

	c.logger.Debug("ioc readings parsed", "station", station, "rows", len(rows), "readings", len(readings))
	return readings, nil
}

// parseTable extracts the cell text of every non-header row of the first
// table in the document.
func parseTable(body io.Reader) ([][]string, error) {
	doc, err := html.Parse(body)
	if err != nil {
		return nil, fmt.Errorf("parse station page: %w", err)
	}

	table := findFirst(doc, "table")
	if table == nil {
		return nil, fmt.Errorf("station page has no data table")
	}

	var rows [][]string
	for _, tr := range findAll(table, "tr") {
		cells := findAll(tr, "td")
		if len(cells) == 0 {
			// Header rows use <th>.
			continue
		}
		row := make([]string, len(cells))
		for i, td := range cells {
			row[i] = nodeText(td)
		}
		rows = append(rows, row)
	}
	return rows, nil
}

func findFirst(n *html.Node, tag string) *html.Node {
	if n.Type == html.ElementNode && n.Data == tag {
		return n
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		if found := findFirst(c, tag); found != nil {
			return found
		}
	}
	return nil
}

func findAll(n *html.Node, tag string) []*html.Node {
	var out []*html.Node
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.ElementNode && n.Data == tag {
			out = append(out, n)
			return
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for c := n.FirstChild; c != nil; c = c.NextSibling {
		walk(c)
	}
	return out
}

func nodeText(n *html.Node) string {
	var b strings.Builder
	var walk func(*html.Node)
	walk = func(n *html.Node) {
		if n.Type == html.TextNode {
			b.WriteString(n.Data)
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	walk(n)
	return b.String()
}
