package quote

import (
	"context"
	"errors"
	"fmt"
	"math"
	"regexp"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"

	"star-go/internal/market"
	"star-go/internal/textenc"
)

// MaxBatch is the largest number of codes one request may carry. Callers
// chunk their symbol sets; the client never truncates silently.
const MaxBatch = 25

// ErrOversizedBatch reports a caller error, not a provider failure.
var ErrOversizedBatch = errors.New("quote batch exceeds the maximum of 25 codes")

// Quote is the canonical quote record, normalized across providers.
// Capacity, PE and PB are nil when the active provider does not supply
// them; absence means unknown, not zero.
type Quote struct {
	Code  string
	Name  string
	Price float64
	Close float64
	Open  float64
	Low   float64
	High  float64
	// Inc is Price - Close; IncPct is Inc / Close * 100. When the previous
	// close is zero IncPct is NaN rather than a division artifact.
	Inc    float64
	IncPct float64

	Capacity *float64
	PE       *float64
	PB       *float64
}

// Client fetches batched quotes from one provider.
type Client struct {
	client  *resty.Client
	schema  Schema
	url     string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewClient creates a quote client for the given provider schema.
func NewClient(schema Schema, logger *zap.Logger, rps float64, burst int) *Client {
	return &Client{
		client:  resty.New(),
		schema:  schema,
		url:     schema.URL,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(rps), burst),
	}
}

// Fetch issues one batched request for up to MaxBatch codes and returns a
// canonical record per code the provider recognizes. Codes the provider
// does not know come back in the second return value; they do not fail the
// batch.
func (c *Client) Fetch(ctx context.Context, codes []string) ([]Quote, []string, error) {
	if len(codes) > MaxBatch {
		return nil, nil, fmt.Errorf("%w: got %d", ErrOversizedBatch, len(codes))
	}

	var notFound []string
	symbols := make(map[string]string, len(codes))
	parts := make([]string, 0, len(codes))
	for _, code := range codes {
		sym, err := market.Symbol(code)
		if err != nil {
			c.logger.Warn("Cannot resolve market for code", zap.String("code", code))
			notFound = append(notFound, code)
			continue
		}
		symbols[code] = sym
		parts = append(parts, sym)
	}
	if len(parts) == 0 {
		return nil, notFound, nil
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resp, err := c.client.R().SetContext(ctx).Get(c.url + strings.Join(parts, ","))
	if err != nil {
		return nil, nil, fmt.Errorf("quote request failed: %w", err)
	}
	if resp.IsError() {
		return nil, nil, fmt.Errorf("quote request failed with status %s", resp.Status())
	}

	body := textenc.DecodeGBK(resp.Body())

	quotes := make([]Quote, 0, len(parts))
	for _, code := range codes {
		sym, ok := symbols[code]
		if !ok {
			continue
		}
		value, ok := extractAssignment(body, c.schema.Flag+sym)
		if !ok || value == "" {
			c.logger.Warn("Symbol not found in provider response",
				zap.String("code", code), zap.String("provider", c.schema.Name))
			notFound = append(notFound, code)
			continue
		}
		quotes = append(quotes, c.parseFields(code, value))
	}
	return quotes, notFound, nil
}

// extractAssignment locates one symbol's pseudo-assignment statement by
// its sentinel prefix and returns the quoted value. The body is plain text
// to us; it is never evaluated.
func extractAssignment(body, sentinel string) (string, bool) {
	re := regexp.MustCompile(regexp.QuoteMeta(sentinel) + `\s*=\s*"([^"]*)"`)
	m := re.FindStringSubmatch(body)
	if m == nil {
		return "", false
	}
	return m[1], true
}

func (c *Client) parseFields(code, value string) Quote {
	fields := strings.Split(value, c.schema.Sep)

	q := Quote{
		Code:  code,
		Name:  field(fields, c.schema.NameIdx),
		Close: num(fields, c.schema.CloseIdx),
		Open:  num(fields, c.schema.OpenIdx),
		Low:   num(fields, c.schema.LowIdx),
		High:  num(fields, c.schema.HighIdx),
	}

	// Outside trading hours some providers report a zero price; fall back
	// to the previous close.
	q.Price = num(fields, c.schema.PriceIdx)
	if q.Price == 0 {
		q.Price = q.Close
	}

	q.Inc = q.Price - q.Close
	if q.Close == 0 {
		q.IncPct = math.NaN()
	} else {
		q.IncPct = q.Inc / q.Close * 100
	}

	if c.schema.CapacityIdx != nil {
		v := num(fields, *c.schema.CapacityIdx)
		q.Capacity = &v
	}
	if c.schema.PEIdx != nil {
		v := num(fields, *c.schema.PEIdx)
		q.PE = &v
	}
	if c.schema.PBIdx != nil {
		v := num(fields, *c.schema.PBIdx)
		q.PB = &v
	}
	return q
}

func field(fields []string, i int) string {
	if i < 0 || i >= len(fields) {
		return ""
	}
	return fields[i]
}

func num(fields []string, i int) float64 {
	v, err := strconv.ParseFloat(field(fields, i), 64)
	if err != nil {
		return 0
	}
	return v
}
