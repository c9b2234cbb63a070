package insider

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummarize(t *testing.T) {
	t.Run("BuysOnly", func(t *testing.T) {
		tradings := []Trading{
			{ChangeShares: 100, AvgPrice: 10},
			{ChangeShares: 200, AvgPrice: 12},
		}

		s := Summarize(tradings)
		assert.Equal(t, 300.0, s.BuyShares)
		assert.Equal(t, 3400.0, s.BuyCost)
		assert.Equal(t, 0.0, s.SellShares)
		assert.Equal(t, 300.0, s.NetBuyShares)
		assert.Equal(t, 3400.0, s.NetBuyCost)

		avg, ok := s.BuyAvgPrice()
		require.True(t, ok)
		assert.InDelta(t, 11.3333333, avg, 1e-6)

		// No sells: the sell average is not applicable, not 0/0.
		_, ok = s.SellAvgPrice()
		assert.False(t, ok)
	})

	t.Run("MixedSides", func(t *testing.T) {
		tradings := []Trading{
			{ChangeShares: 100, AvgPrice: 10},
			{ChangeShares: -50, AvgPrice: 20},
		}

		s := Summarize(tradings)
		assert.Equal(t, 100.0, s.BuyShares)
		assert.Equal(t, 50.0, s.SellShares)
		assert.Equal(t, 1000.0, s.BuyCost)
		assert.Equal(t, 1000.0, s.SellProceeds)
		assert.Equal(t, 50.0, s.NetBuyShares)
		assert.Equal(t, 0.0, s.NetBuyCost)

		sell, ok := s.SellAvgPrice()
		require.True(t, ok)
		assert.Equal(t, 20.0, sell)
	})

	t.Run("Empty", func(t *testing.T) {
		s := Summarize(nil)
		assert.Equal(t, Summary{}, s)
	})
}

func TestSummarizeByCompany(t *testing.T) {
	tradings := []Trading{
		{CompanyCode: "000001", CompanyName: "平安银行", ChangeShares: 100, AvgPrice: 10},
		{CompanyCode: "000002", CompanyName: "万科A", ChangeShares: 500, AvgPrice: 8},
		{CompanyCode: "000001", CompanyName: "平安银行", ChangeShares: -20, AvgPrice: 11},
	}

	groups := SummarizeByCompany(tradings)
	require.Len(t, groups, 2)

	// 万科A: 4000 net vs 平安银行: 1000 - 220 = 780.
	assert.Equal(t, "000002 - 万科A", groups[0].Company)
	assert.Equal(t, 4000.0, groups[0].NetBuyCost)
	assert.Equal(t, "000001 - 平安银行", groups[1].Company)
	assert.InDelta(t, 780.0, groups[1].NetBuyCost, 1e-9)
}

func TestSummarizeByCompanyStableOrder(t *testing.T) {
	// Two companies with identical net buy cost keep first-seen order.
	tradings := []Trading{
		{CompanyCode: "600001", CompanyName: "甲", ChangeShares: 100, AvgPrice: 10},
		{CompanyCode: "600002", CompanyName: "乙", ChangeShares: 200, AvgPrice: 5},
		{CompanyCode: "600003", CompanyName: "丙", ChangeShares: 300, AvgPrice: 10},
	}

	groups := SummarizeByCompany(tradings)
	require.Len(t, groups, 3)
	assert.Equal(t, "600003 - 丙", groups[0].Company)
	assert.Equal(t, "600001 - 甲", groups[1].Company)
	assert.Equal(t, "600002 - 乙", groups[2].Company)
}
