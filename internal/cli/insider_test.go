package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"star-go/internal/insider"
)

func TestSzLatestFooter(t *testing.T) {
	t.Run("PagedRange", func(t *testing.T) {
		got := szLatestFooter("12 ms", insider.PageInfo{TotalPages: 8, TotalRows: 152}, 2, 20)
		assert.Contains(t, got, "总记录: 152")
		assert.Contains(t, got, "当前: 21-40")
		assert.Contains(t, got, "页码: 2 / 8")
	})

	t.Run("EmptyPageDropsTheRange", func(t *testing.T) {
		got := szLatestFooter("12 ms", insider.PageInfo{}, 1, 0)
		assert.Contains(t, got, "总记录: 0")
		assert.NotContains(t, got, "当前:")
	})
}

func TestPrintCompanySummariesEmpty(t *testing.T) {
	a := testApp(t)

	dr := insider.ResolveLatest("10d", a.now())
	a.printCompanySummaries(dr, nil)

	out := a.out.(*bytes.Buffer).String()
	assert.Contains(t, out, "无董监高交易记录")
	assert.NotContains(t, out, showDetailTip)
}

func TestPrintCompanySummaries(t *testing.T) {
	a := testApp(t)

	tradings := []insider.Trading{
		{CompanyCode: "000002", CompanyName: "万科A", ChangeShares: 100, AvgPrice: 10},
	}
	a.printCompanySummaries(insider.ResolveLatest("", a.now()), tradings)

	out := a.out.(*bytes.Buffer).String()
	require.Contains(t, out, "万科A")
	assert.Contains(t, out, "净增持股数")
	assert.Contains(t, out, showDetailTip)
}
