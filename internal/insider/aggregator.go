package insider

import (
	"context"
	"fmt"
	"strconv"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const (
	aggregatorURL    = "http://uzfin.com/api/v1/star"
	aggregatorTopURL = "http://uzfin.com/api/v1/star/top"
)

// TopOrder selects the ranking of the aggregator's top-list endpoint.
type TopOrder string

const (
	TopBuyValue  TopOrder = "top_buy_value"
	TopSellValue TopOrder = "top_sell_value"
)

// AggregatorClient queries the third-party disclosure aggregator, a plain
// JSON API with paged queries and a pre-ranked top list.
type AggregatorClient struct {
	client  *resty.Client
	url     string
	topURL  string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewAggregatorClient creates an aggregator client.
func NewAggregatorClient(logger *zap.Logger) *AggregatorClient {
	return &AggregatorClient{
		client:  resty.New(),
		url:     aggregatorURL,
		topURL:  aggregatorTopURL,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

// MiscQuery parameterizes a paged aggregator query. Zero values mean "let
// the service decide" except Span, which defaults to three months when no
// date constraint is given at all.
type MiscQuery struct {
	Code   string
	Market string
	Span   string
	From   string
	To     string
	Page   int
	Limit  int
}

// MiscResult is one page of aggregator events plus the paging totals and
// the date window the service actually applied.
type MiscResult struct {
	Tradings []Trading
	Total    int
	From     string
	To       string
	Page     int
	Limit    int
}

type aggRecord struct {
	CompanyCode string  `json:"COMPANY_CODE"`
	CompanyAbbr string  `json:"COMPANY_ABBR"`
	Name        string  `json:"NAME"`
	ChangeDate  string  `json:"CHANGE_DATE"`
	ChangeNum   float64 `json:"CHANGE_NUM"`
	AvgPrice    float64 `json:"CURRENT_AVG_PRICE"`
	Reason      string  `json:"CHANGE_REASON"`
	HoldNum     float64 `json:"HOLDSTOCK_NUM"`
	Duty        string  `json:"DUTY"`
}

type aggCondition struct {
	BeginDate string `json:"beginDate"`
	EndDate   string `json:"endDate"`
	Span      string `json:"span"`
}

type aggEnvelope struct {
	Data      []aggRecord  `json:"data"`
	Condition aggCondition `json:"condition"`
	Total     int          `json:"total"`
}

// Query fetches one page of insider events by code, market and date span.
func (c *AggregatorClient) Query(ctx context.Context, q MiscQuery) (*MiscResult, error) {
	if q.Page < 1 {
		q.Page = 1
	}
	if q.Limit < 1 {
		q.Limit = 20
	}
	if q.Span == "" && q.From == "" && q.To == "" {
		q.Span = "3m"
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var envelope aggEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"span":   q.Span,
			"code":   q.Code,
			"market": q.Market,
			"from":   q.From,
			"to":     q.To,
			"page":   strconv.Itoa(q.Page),
			"limit":  strconv.Itoa(q.Limit),
		}).
		SetResult(&envelope).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("aggregator request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("aggregator request failed with status %s", resp.Status())
	}

	tradings := make([]Trading, 0, len(envelope.Data))
	for _, r := range envelope.Data {
		tradings = append(tradings, Trading{
			CompanyCode:  r.CompanyCode,
			CompanyName:  r.CompanyAbbr,
			PersonName:   r.Name,
			ChangeDate:   r.ChangeDate,
			ChangeShares: r.ChangeNum,
			AvgPrice:     r.AvgPrice,
			Reason:       r.Reason,
			HoldingAfter: r.HoldNum,
			Role:         r.Duty,
		})
	}
	return &MiscResult{
		Tradings: tradings,
		Total:    envelope.Total,
		From:     envelope.Condition.BeginDate,
		To:       envelope.Condition.EndDate,
		Page:     q.Page,
		Limit:    q.Limit,
	}, nil
}

// TopEntry is one pre-ranked row of the top buyers/sellers list; the
// service computes and orders the values, the client only decodes them.
type TopEntry struct {
	CompanyCode string  `json:"COMPANY_CODE"`
	CompanyName string  `json:"COMPANY_ABBR"`
	MeanPrice   float64 `json:"meanPrice"`
	Shares      float64 `json:"amount"`
	TotalValue  float64 `json:"totalValue"`
}

// TopResult carries the ranked rows and the span the service applied,
// in months.
type TopResult struct {
	Entries    []TopEntry
	SpanMonths int
}

type topEnvelope struct {
	Data      []TopEntry   `json:"data"`
	Condition aggCondition `json:"condition"`
}

// TopList fetches the top buyers or sellers by traded value over a span of
// 1 to 12 months.
func (c *AggregatorClient) TopList(ctx context.Context, span string, order TopOrder) (*TopResult, error) {
	if span == "" {
		span = "3m"
	}

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	var envelope topEnvelope
	resp, err := c.client.R().
		SetContext(ctx).
		SetQueryParams(map[string]string{
			"span":  span,
			"order": string(order),
		}).
		SetResult(&envelope).
		Get(c.topURL)
	if err != nil {
		return nil, fmt.Errorf("aggregator top request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("aggregator top request failed with status %s", resp.Status())
	}

	months := 3
	if n, ok := leadingInt(envelope.Condition.Span); ok {
		months = n
	}
	return &TopResult{Entries: envelope.Data, SpanMonths: months}, nil
}
