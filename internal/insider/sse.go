package insider

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/go-resty/resty/v2"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

const sseURL = "http://query.sse.com.cn/commonQuery.do"

// SSEClient queries the Shanghai exchange disclosure endpoint. Responses
// arrive wrapped in a padding-callback envelope around a JSON payload.
type SSEClient struct {
	client  *resty.Client
	url     string
	logger  *zap.Logger
	limiter *rate.Limiter
}

// NewSSEClient creates a Shanghai disclosure client.
func NewSSEClient(logger *zap.Logger) *SSEClient {
	return &SSEClient{
		client:  resty.New(),
		url:     sseURL,
		logger:  logger,
		limiter: rate.NewLimiter(rate.Limit(2), 1),
	}
}

// sseRecord mirrors the exchange's field naming; every value is a string
// on the wire.
type sseRecord struct {
	CompanyCode string `json:"COMPANY_CODE"`
	CompanyAbbr string `json:"COMPANY_ABBR"`
	Name        string `json:"NAME"`
	ChangeDate  string `json:"CHANGE_DATE"`
	FormDate    string `json:"FORM_DATE"`
	ChangeNum   string `json:"CHANGE_NUM"`
	AvgPrice    string `json:"CURRENT_AVG_PRICE"`
	Reason      string `json:"CHANGE_REASON"`
	HoldNum     string `json:"HOLDSTOCK_NUM"`
	Duty        string `json:"DUTY"`
}

type sseEnvelope struct {
	Result []sseRecord `json:"result"`
}

// Query fetches disclosure events for a security (or the whole market when
// code is empty) within the date range.
func (c *SSEClient) Query(ctx context.Context, code string, dr DateRange) ([]Trading, error) {
	from, to := dr.Wire()

	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter wait failed: %w", err)
	}

	resp, err := c.client.R().
		SetContext(ctx).
		SetHeader("Referer", "http://www.sse.com.cn/disclosure/listedinfo/credibility/change/").
		SetQueryParams(map[string]string{
			"jsonCallBack":       "jsonpCallback77077",
			"sqlId":              "COMMON_SSE_XXPL_CXJL_SSGSGFBDQK_S",
			"isPagination":       "false",
			"COMPANY_CODE":       code,
			"NAME":               "",
			"BEGIN_DATE":         from,
			"END_DATE":           to,
			"pageHelp.pageSize":  "15",
			"pageHelp.cacheSize": "5",
		}).
		Get(c.url)
	if err != nil {
		return nil, fmt.Errorf("sse request failed: %w", err)
	}
	if resp.IsError() {
		return nil, fmt.Errorf("sse request failed with status %s", resp.Status())
	}

	payload, err := stripJSONP(resp.String())
	if err != nil {
		return nil, fmt.Errorf("failed to unwrap sse response: %w", err)
	}

	var envelope sseEnvelope
	if err := json.Unmarshal([]byte(payload), &envelope); err != nil {
		return nil, fmt.Errorf("failed to decode sse response: %w", err)
	}

	tradings := make([]Trading, 0, len(envelope.Result))
	for _, r := range envelope.Result {
		tradings = append(tradings, Trading{
			CompanyCode:  r.CompanyCode,
			CompanyName:  strings.ReplaceAll(r.CompanyAbbr, " ", ""),
			PersonName:   strings.ReplaceAll(r.Name, " ", ""),
			ChangeDate:   r.ChangeDate,
			FormDate:     r.FormDate,
			ChangeShares: coerce(r.ChangeNum),
			AvgPrice:     coerce(r.AvgPrice),
			Reason:       r.Reason,
			HoldingAfter: coerce(r.HoldNum),
			Role:         r.Duty,
		})
	}
	return tradings, nil
}

// stripJSONP recovers the JSON object from a padding-callback envelope
// like jsonpCallback77077({...}).
func stripJSONP(body string) (string, error) {
	start := strings.Index(body, "({")
	end := strings.LastIndex(body, "})")
	if start < 0 || end < 0 || end <= start {
		return "", fmt.Errorf("no callback envelope in response")
	}
	return body[start+1 : end+1], nil
}

// coerce parses a numeric string the way the upstream consumers do: any
// unparseable value becomes zero.
func coerce(s string) float64 {
	v, err := strconv.ParseFloat(strings.ReplaceAll(s, ",", ""), 64)
	if err != nil {
		return 0
	}
	return v
}
