package insider

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const aggSampleBody = `{
  "data": [
    {"COMPANY_CODE":"000768","COMPANY_ABBR":"中航飞机","NAME":"赵六","CHANGE_DATE":"2015-06-18",
     "CHANGE_NUM":30000,"CURRENT_AVG_PRICE":22.5,"CHANGE_REASON":"竞价交易","HOLDSTOCK_NUM":90000,"DUTY":"副总经理"}
  ],
  "condition": {"beginDate":"2015/04/09","endDate":"2015/07/09","span":"3m"},
  "total": 57
}`

const topSampleBody = `{
  "data": [
    {"COMPANY_ABBR":"万科A","COMPANY_CODE":"000002","meanPrice":13.2,"amount":5000000,"totalValue":66000000},
    {"COMPANY_ABBR":"招商银行","COMPANY_CODE":"600036","meanPrice":18.0,"amount":2000000,"totalValue":36000000}
  ],
  "condition": {"span":"6m"}
}`

func TestAggregatorQuery(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		q := r.URL.Query()
		assert.Equal(t, "000768", q.Get("code"))
		assert.Equal(t, "SZM", q.Get("market"))
		assert.Equal(t, "1", q.Get("page"))
		assert.Equal(t, "20", q.Get("limit"))
		// No explicit dates or span: the three month default applies.
		assert.Equal(t, "3m", q.Get("span"))

		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(aggSampleBody))
	}))
	defer server.Close()

	c := NewAggregatorClient(zap.NewNop())
	c.url = server.URL

	res, err := c.Query(context.Background(), MiscQuery{Code: "000768", Market: "SZM"})
	require.NoError(t, err)
	require.Len(t, res.Tradings, 1)

	tr := res.Tradings[0]
	assert.Equal(t, "中航飞机", tr.CompanyName)
	assert.Equal(t, 30000.0, tr.ChangeShares)
	assert.Equal(t, 22.5, tr.AvgPrice)

	assert.Equal(t, 57, res.Total)
	assert.Equal(t, "2015/04/09", res.From)
	assert.Equal(t, "2015/07/09", res.To)
	assert.Equal(t, 1, res.Page)
	assert.Equal(t, 20, res.Limit)
}

func TestAggregatorQueryExplicitDatesSkipDefaultSpan(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.URL.Query().Get("span"))
		assert.Equal(t, "2015/01/01", r.URL.Query().Get("from"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(aggSampleBody))
	}))
	defer server.Close()

	c := NewAggregatorClient(zap.NewNop())
	c.url = server.URL

	_, err := c.Query(context.Background(), MiscQuery{From: "2015/01/01", To: "2015/07/01"})
	require.NoError(t, err)
}

func TestAggregatorTopList(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "top_buy_value", r.URL.Query().Get("order"))
		assert.Equal(t, "6m", r.URL.Query().Get("span"))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(topSampleBody))
	}))
	defer server.Close()

	c := NewAggregatorClient(zap.NewNop())
	c.topURL = server.URL

	res, err := c.TopList(context.Background(), "6m", TopBuyValue)
	require.NoError(t, err)
	require.Len(t, res.Entries, 2)

	// Rows come pre-ranked; order is the service's, untouched.
	assert.Equal(t, "000002", res.Entries[0].CompanyCode)
	assert.Equal(t, 66000000.0, res.Entries[0].TotalValue)
	assert.Equal(t, 6, res.SpanMonths)
}

func TestAggregatorServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewAggregatorClient(zap.NewNop())
	c.url = server.URL
	c.topURL = server.URL

	_, err := c.Query(context.Background(), MiscQuery{})
	assert.Error(t, err)

	_, err = c.TopList(context.Background(), "", TopSellValue)
	assert.Error(t, err)
}
