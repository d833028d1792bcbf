package models

import (
	"encoding/json"
	"math"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestPercent(t *testing.T) {
	v, ok := Percent(450, 1500).Value()
	require.True(t, ok)
	require.InDelta(t, 30.0, v, 1e-12)

	require.False(t, Percent(10, 0).Defined())
	require.False(t, Percent(math.Inf(1), 10).Defined())
	require.False(t, Percent(math.NaN(), 10).Defined())
	require.False(t, DefinedMetric(math.Inf(-1)).Defined())
}

func TestMetric_JSON(t *testing.T) {
	body, err := json.Marshal(struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}{A: DefinedMetric(12.5), B: UndefinedMetric()})
	require.NoError(t, err)
	require.JSONEq(t, `{"a":12.5,"b":null}`, string(body))

	var decoded struct {
		A Metric `json:"a"`
		B Metric `json:"b"`
	}
	require.NoError(t, json.Unmarshal(body, &decoded))
	require.Equal(t, DefinedMetric(12.5), decoded.A)
	require.False(t, decoded.B.Defined())
}

func TestMetric_Less(t *testing.T) {
	undefined := UndefinedMetric()
	low, high := DefinedMetric(-50), DefinedMetric(3)

	require.True(t, low.Less(high))
	require.False(t, high.Less(low))
	require.True(t, undefined.Less(low))
	require.False(t, low.Less(undefined))
	require.False(t, undefined.Less(undefined))
	require.False(t, high.Less(high))
}

func TestUser_password(t *testing.T) {
	u := &User{Email: "a@example.com", Password: "password123"}
	require.NoError(t, u.HashPassword())
	require.NotEqual(t, "password123", u.Password)
	require.True(t, u.CheckPassword("password123"))
	require.False(t, u.CheckPassword("password124"))

	body, err := json.Marshal(u)
	require.NoError(t, err)
	require.NotContains(t, string(body), u.Password)
}

func TestNormalizeStockSymbol(t *testing.T) {
	require.Equal(t, "AAPL", NormalizeStockSymbol(" aapl "))
	require.Equal(t, "", NormalizeStockSymbol("   "))
}
