// Package calendar scrapes the upcoming-events finance calendar.
package calendar

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
)

const calendarURL = "http://www.yuncaijing.com/insider/simple.html"

// The page blocks default client user agents.
const userAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/134.0.0.0 Safari/537.36"

// Event is one upcoming market event with its related securities.
type Event struct {
	Time          string
	Title         string
	RelatedStocks string
}

// Client fetches and parses the finance calendar page.
type Client struct {
	client *resty.Client
	url    string
	logger *zap.Logger
}

// NewClient creates a calendar client.
func NewClient(logger *zap.Logger) *Client {
	return &Client{
		client: resty.New().SetHeader("User-Agent", userAgent),
		url:    calendarURL,
		logger: logger,
	}
}

var (
	spaceRun = regexp.MustCompile(`\s+`)
	digits   = regexp.MustCompile(`\d+`)
)

// Fetch returns the events of the coming month.
func (c *Client) Fetch(ctx context.Context) ([]Event, error) {
	resp, err := c.client.R().SetContext(ctx).Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("calendar request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("calendar request failed with status %s", resp.Status())
	}

	doc, err := goquery.NewDocumentFromReader(strings.NewReader(resp.String()))
	if err != nil {
		return nil, fmt.Errorf("failed to parse calendar page: %w", err)
	}

	var events []Event
	doc.Find("li.list").Each(func(_ int, item *goquery.Selection) {
		title := spaceRun.ReplaceAllString(strings.TrimSpace(item.Find("h4 a").Text()), " ")
		time := strings.TrimSpace(item.Find("time").Text())

		var related []string
		item.Find(`.related-stock a[href*="/quote/"]`).Each(func(_ int, stock *goquery.Selection) {
			if stock.HasClass("to-multi") {
				return
			}
			raw := strings.TrimSpace(stock.Text())
			code := digits.FindString(raw)
			name := strings.TrimSpace(digits.ReplaceAllString(raw, ""))
			name = strings.NewReplacer("%", "", "\n", "").Replace(name)
			if code == "" && name == "" {
				return
			}
			related = append(related, fmt.Sprintf("(%s)%s", code, name))
		})

		events = append(events, Event{
			Time:          time,
			Title:         title,
			RelatedStocks: strings.Join(related, ","),
		})
	})
	return events, nil
}
