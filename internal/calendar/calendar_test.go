package calendar

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const samplePage = `<html><body><ul>
<li class="list">
  <h4><a href="/news/1.html">  工业互联网
     大会召开 </a></h4>
  <time>09-05</time>
  <div class="related-stock">
    <a href="/quote/000938.html">紫光股份000938</a>
    <a href="/quote/600036.html">招商银行600036</a>
    <a class="to-multi" href="/quote/multi.html">更多</a>
  </div>
</li>
<li class="list">
  <h4><a href="/news/2.html">中报披露截止</a></h4>
  <time>08-31</time>
  <div class="related-stock"></div>
</li>
</ul></body></html>`

func TestFetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Contains(t, r.Header.Get("User-Agent"), "Mozilla")
		_, _ = w.Write([]byte(samplePage))
	}))
	defer server.Close()

	c := NewClient(zap.NewNop())
	c.url = server.URL

	events, err := c.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, events, 2)

	assert.Equal(t, "09-05", events[0].Time)
	assert.Equal(t, "工业互联网 大会召开", events[0].Title)
	assert.Equal(t, "(000938)紫光股份,(600036)招商银行", events[0].RelatedStocks)

	assert.Equal(t, "中报披露截止", events[1].Title)
	assert.Empty(t, events[1].RelatedStocks)
}

func TestFetchServerError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusForbidden)
	}))
	defer server.Close()

	c := NewClient(zap.NewNop())
	c.url = server.URL

	_, err := c.Fetch(context.Background())
	assert.Error(t, err)
}
