package quote

import (
	"context"
	"fmt"
	"math"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"golang.org/x/text/encoding/simplifiedchinese"
)

// sinaLine renders one Sina pseudo-assignment for a wire symbol.
func sinaLine(sym, name string, open, close, price, high, low float64) string {
	return fmt.Sprintf("var hq_str_%s=\"%s,%.2f,%.2f,%.2f,%.2f,%.2f,10.00,10.01\";\n",
		sym, name, open, close, price, high, low)
}

// tencentLine renders one Tencent pseudo-assignment with the sparse field
// layout the real endpoint uses.
func tencentLine(sym, name string, price, close, open, high, low, pe, cap_, pb float64) string {
	fields := make([]string, 50)
	for i := range fields {
		fields[i] = "0"
	}
	fields[1] = name
	fields[3] = fmt.Sprintf("%.2f", price)
	fields[4] = fmt.Sprintf("%.2f", close)
	fields[5] = fmt.Sprintf("%.2f", open)
	fields[33] = fmt.Sprintf("%.2f", high)
	fields[34] = fmt.Sprintf("%.2f", low)
	fields[39] = fmt.Sprintf("%.2f", pe)
	fields[45] = fmt.Sprintf("%.2f", cap_)
	fields[46] = fmt.Sprintf("%.2f", pb)
	return fmt.Sprintf("v_%s=\"%s\";\n", sym, strings.Join(fields, "~"))
}

// setupTestServer serves a GBK-encoded body and returns a client pointed
// at it.
func setupTestServer(t *testing.T, schema Schema, body string) (*Client, *httptest.Server) {
	t.Helper()
	raw, err := simplifiedchinese.GBK.NewEncoder().Bytes([]byte(body))
	require.NoError(t, err)

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=GBK")
		_, _ = w.Write(raw)
	}))

	c := NewClient(schema, zap.NewNop(), 1000, 1000)
	c.url = server.URL + "/q="
	return c, server
}

func TestFetchSina(t *testing.T) {
	body := sinaLine("sz000002", "万科A", 10.00, 10.10, 10.30, 10.40, 9.95) +
		sinaLine("sh600036", "招商银行", 35.00, 34.50, 35.20, 35.50, 34.80)
	c, server := setupTestServer(t, Sina, body)
	defer server.Close()

	quotes, notFound, err := c.Fetch(context.Background(), []string{"000002", "600036"})
	require.NoError(t, err)
	assert.Empty(t, notFound)
	require.Len(t, quotes, 2)

	q := quotes[0]
	assert.Equal(t, "000002", q.Code)
	assert.Equal(t, "万科A", q.Name)
	assert.Equal(t, 10.30, q.Price)
	assert.Equal(t, 10.10, q.Close)
	assert.Equal(t, 10.00, q.Open)
	assert.Equal(t, 9.95, q.Low)
	assert.Equal(t, 10.40, q.High)

	// Sina carries no capitalization or valuation fields: absent, not zero.
	assert.Nil(t, q.Capacity)
	assert.Nil(t, q.PE)
	assert.Nil(t, q.PB)

	assert.InDelta(t, (q.Price-q.Close)/q.Close*100, q.IncPct, 1e-9)
}

func TestFetchTencent(t *testing.T) {
	body := tencentLine("sz000002", "万科A", 10.30, 10.10, 10.00, 10.40, 9.95, 8.5, 1200, 1.1)
	c, server := setupTestServer(t, Tencent, body)
	defer server.Close()

	quotes, notFound, err := c.Fetch(context.Background(), []string{"000002"})
	require.NoError(t, err)
	assert.Empty(t, notFound)
	require.Len(t, quotes, 1)

	q := quotes[0]
	assert.Equal(t, "万科A", q.Name)
	assert.Equal(t, 10.30, q.Price)
	require.NotNil(t, q.PE)
	require.NotNil(t, q.Capacity)
	require.NotNil(t, q.PB)
	assert.Equal(t, 8.5, *q.PE)
	assert.Equal(t, 1200.0, *q.Capacity)
	assert.Equal(t, 1.1, *q.PB)
}

func TestFetchIncPctInvariant(t *testing.T) {
	body := sinaLine("sz000002", "万科A", 10.00, 7.77, 8.12, 8.20, 7.70)
	c, server := setupTestServer(t, Sina, body)
	defer server.Close()

	quotes, _, err := c.Fetch(context.Background(), []string{"000002"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.InDelta(t, (8.12-7.77)/7.77*100, quotes[0].IncPct, 1e-9)
}

func TestFetchZeroClosePinned(t *testing.T) {
	// A zero previous close must not crash; IncPct is pinned to NaN.
	body := sinaLine("sz000002", "新股", 10.00, 0, 8.12, 8.20, 7.70)
	c, server := setupTestServer(t, Sina, body)
	defer server.Close()

	quotes, _, err := c.Fetch(context.Background(), []string{"000002"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.True(t, math.IsNaN(quotes[0].IncPct))
	assert.Equal(t, 8.12, quotes[0].Inc)
}

func TestFetchPriceFallsBackToClose(t *testing.T) {
	// Suspended stocks report a zero price outside trading.
	body := sinaLine("sz000002", "万科A", 10.00, 10.10, 0, 0, 0)
	c, server := setupTestServer(t, Sina, body)
	defer server.Close()

	quotes, _, err := c.Fetch(context.Background(), []string{"000002"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, 10.10, quotes[0].Price)
	assert.Equal(t, 0.0, quotes[0].Inc)
}

func TestFetchPartialNotFound(t *testing.T) {
	// One unlisted code in the batch: empty assignment value.
	body := sinaLine("sz000002", "万科A", 10.00, 10.10, 10.30, 10.40, 9.95) +
		"var hq_str_sz000099=\"\";\n"
	c, server := setupTestServer(t, Sina, body)
	defer server.Close()

	quotes, notFound, err := c.Fetch(context.Background(), []string{"000002", "000099", "600036"})
	require.NoError(t, err)
	require.Len(t, quotes, 1)
	assert.Equal(t, "000002", quotes[0].Code)
	// 000099 answered empty, 600036 has no sentinel at all.
	assert.ElementsMatch(t, []string{"000099", "600036"}, notFound)
}

func TestFetchOversizedBatch(t *testing.T) {
	c := NewClient(Sina, zap.NewNop(), 1000, 1000)

	codes := make([]string, MaxBatch+1)
	for i := range codes {
		codes[i] = fmt.Sprintf("0000%02d", i)
	}

	_, _, err := c.Fetch(context.Background(), codes)
	require.Error(t, err)
	assert.ErrorIs(t, err, ErrOversizedBatch)
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	}))
	defer server.Close()

	c := NewClient(Sina, zap.NewNop(), 1000, 1000)
	c.url = server.URL + "/q="

	_, _, err := c.Fetch(context.Background(), []string{"000002"})
	assert.Error(t, err)
}

func TestSchemaFor(t *testing.T) {
	s, err := SchemaFor("SINA")
	require.NoError(t, err)
	assert.Equal(t, "sina", s.Name)

	s, err = SchemaFor("")
	require.NoError(t, err)
	assert.Equal(t, "tencent", s.Name)

	_, err = SchemaFor("bloomberg")
	assert.Error(t, err)
}
