package insider

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"strconv"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"star-go/internal/textenc"
)

const szseURL = "http://www.szse.cn/api/report/ShowReport/data"

// szNoDataText is the sentinel the exchange embeds when the window holds
// no records. It must be told apart from a genuinely empty page.
const szNoDataText = "没有找到符合条件的数据"

// PageSize is the fixed row count of one Shenzhen result page.
const PageSize = 20

// SZSEClient queries the Shenzhen exchange disclosure endpoint. Responses
// are GBK-encoded HTML fragments with pagination metadata embedded as a
// navigation-control expression.
type SZSEClient struct {
	client  *resty.Client
	url     string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewSZSEClient creates a Shenzhen disclosure client.
func NewSZSEClient(logger *zap.Logger) *SZSEClient {
	return &SZSEClient{
		client:  resty.New(),
		url:     szseURL,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

// Query fetches one result page of disclosure events for a security.
func (c *SZSEClient) Query(ctx context.Context, code string, dr DateRange, page int) ([]Trading, PageInfo, error) {
	return c.query(ctx, code, dr, page)
}

// Latest fetches one result page across the whole market for a date range.
func (c *SZSEClient) Latest(ctx context.Context, dr DateRange, page int) ([]Trading, PageInfo, error) {
	return c.query(ctx, "", dr, page)
}

func (c *SZSEClient) query(ctx context.Context, code string, dr DateRange, page int) ([]Trading, PageInfo, error) {
	if page < 1 {
		page = 1
	}
	from, to := dr.Wire()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, PageInfo{}, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"SHOWTYPE":    "JSON",
			"CATALOGID":   "1801_cxda",
			"TABKEY":      "tab1",
			"txtStart":    from,
			"txtEnd":      to,
			"txtGgxm":     "",
			"txtDMorJC":   code,
			"tab1PAGENUM": strconv.Itoa(page),
		}).
		Get(c.url)
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("szse request failed: %w", err)
	}
	if resp.StatusCode() == http.StatusRequestTimeout {
		return nil, PageInfo{}, fmt.Errorf("szse: %w", ErrBusy)
	}
	if resp.IsError() {
		return nil, PageInfo{}, fmt.Errorf("szse request failed with status %s", resp.Status())
	}

	html := textenc.DecodeGBK(resp.Body())
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(html))
	if err != nil {
		return nil, PageInfo{}, fmt.Errorf("failed to parse szse response: %w", err)
	}

	if msg := strings.TrimSpace(doc.Find(`td[colspan="12"]`).First().Text()); strings.Contains(msg, szNoDataText) {
		return nil, PageInfo{}, nil
	}

	tradings := parseSzRows(doc)
	return tradings, szPageInfo(doc, len(tradings)), nil
}

func parseSzRows(doc *goquery.Document) []Trading {
	var tradings []Trading
	doc.Find(`#REPORTID_tab1 tr[bgcolor]`).Each(func(_ int, row *goquery.Selection) {
		cells := row.Find("td").Map(func(_ int, td *goquery.Selection) string {
			return strings.TrimSpace(td.Text())
		})
		if len(cells) < 12 {
			return
		}
		tradings = append(tradings, Trading{
			CompanyCode:  cells[0],
			CompanyName:  strings.ReplaceAll(cells[1], " ", ""),
			PersonName:   cells[2],
			ChangeDate:   cells[3],
			ChangeShares: numOrZero(cells[4]),
			AvgPrice:     numOrZero(cells[5]),
			Reason:       cells[6],
			HoldingAfter: numOrNaN(cells[8]),
			Role:         cells[10],
		})
	})
	return tradings
}

// szPageInfo recovers total page and row counts from the navigation
// controls. The metadata is encoded as a call-looking expression in an
// onclick attribute; it is parsed as text, never evaluated.
func szPageInfo(doc *goquery.Document, rows int) PageInfo {
	expr := doc.Find("input.cls-navigate-next").AttrOr("onclick", "")
	if expr == "" {
		expr = doc.Find("input.cls-navigate-prev").AttrOr("onclick", "")
	}
	if expr == "" {
		return PageInfo{TotalPages: 1, TotalRows: rows}
	}
	if info, ok := parsePagingExpr(expr); ok {
		return info
	}
	return PageInfo{TotalPages: 1, TotalRows: rows}
}

// parsePagingExpr extracts the two trailing numeric arguments (total
// pages, total rows) of a gotoReportPageNo(...) expression.
func parsePagingExpr(expr string) (PageInfo, bool) {
	open := strings.Index(expr, "gotoReportPageNo(")
	if open < 0 {
		return PageInfo{}, false
	}
	rest := expr[open+len("gotoReportPageNo("):]
	close_ := strings.Index(rest, ")")
	if close_ < 0 {
		return PageInfo{}, false
	}

	args := strings.Split(rest[:close_], ",")
	if len(args) < 2 {
		return PageInfo{}, false
	}

	pages, err1 := strconv.Atoi(trimArg(args[len(args)-2]))
	count, err2 := strconv.Atoi(trimArg(args[len(args)-1]))
	if err1 != nil || err2 != nil {
		return PageInfo{}, false
	}
	return PageInfo{TotalPages: pages, TotalRows: count}, true
}

func trimArg(s string) string {
	return strings.Trim(strings.TrimSpace(s), `'"`)
}

func numOrZero(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}

func numOrNaN(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return math.NaN()
	}
	return v
}
