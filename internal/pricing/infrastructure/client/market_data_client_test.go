package client

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/wyfcoding/optionpricing/pkg/config"
)

func TestStaticMarketDataClient(t *testing.T) {
	c := NewStaticMarketDataClient(map[string]float64{"aapl": 187.5})

	p, err := c.GetPrice(context.Background(), "AAPL")
	require.NoError(t, err)
	assert.True(t, p.Equal(decimal.RequireFromString("187.5")))

	_, err = c.GetPrice(context.Background(), "MSFT")
	assert.ErrorIs(t, err, ErrNoQuote)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err = c.GetPrice(ctx, "AAPL")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestNewMarketDataClient(t *testing.T) {
	c, err := NewMarketDataClient(config.MarketDataConfig{Provider: "none"})
	require.NoError(t, err)
	assert.Nil(t, c)

	c, err = NewMarketDataClient(config.MarketDataConfig{Provider: "static", Static: map[string]float64{"SPY": 500}})
	require.NoError(t, err)
	assert.IsType(t, &StaticMarketDataClient{}, c)

	c, err = NewMarketDataClient(config.MarketDataConfig{Provider: "polygon", APIKey: "key", LookbackDays: 5})
	require.NoError(t, err)
	assert.IsType(t, &PolygonMarketDataClient{}, c)

	_, err = NewMarketDataClient(config.MarketDataConfig{Provider: "polygon"})
	assert.Error(t, err)

	_, err = NewMarketDataClient(config.MarketDataConfig{Provider: "bloomberg"})
	assert.Error(t, err)
}
