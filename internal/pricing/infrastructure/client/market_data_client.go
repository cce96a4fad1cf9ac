package client

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	polygon "github.com/polygon-io/client-go/rest"
	"github.com/polygon-io/client-go/rest/models"
	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/utils"
)

// ErrNoQuote 行情源没有该标的的报价
var ErrNoQuote = errors.New("no quote for symbol")

const (
	defaultLookbackDays = 10
	retryInitialDelay   = 200 * time.Millisecond
	retryMaxDelay       = 2 * time.Second
)

// PolygonMarketDataClient 基于 Polygon REST 日线数据的行情客户端
// 取回看窗口内最后一根日线的收盘价作为现价
type PolygonMarketDataClient struct {
	client   *polygon.Client
	lookback time.Duration
	attempts int
	now      func() time.Time
}

// NewPolygonMarketDataClient 创建 Polygon 行情客户端
func NewPolygonMarketDataClient(cfg config.MarketDataConfig) *PolygonMarketDataClient {
	lookbackDays := cfg.LookbackDays
	if lookbackDays <= 0 {
		lookbackDays = defaultLookbackDays
	}
	return &PolygonMarketDataClient{
		client:   polygon.New(cfg.APIKey),
		lookback: time.Duration(lookbackDays) * 24 * time.Hour,
		attempts: cfg.Retries + 1,
		now:      time.Now,
	}
}

// GetPrice 获取最近一个交易日的收盘价，网络错误按退避重试
func (c *PolygonMarketDataClient) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	var price decimal.Decimal
	err := utils.RetryWithBackoff(ctx, c.attempts, retryInitialDelay, retryMaxDelay, func() error {
		p, err := c.lastClose(ctx, symbol)
		if errors.Is(err, ErrNoQuote) {
			return utils.Permanent(err)
		}
		if err != nil {
			logger.Warn(ctx, "polygon request failed", "symbol", symbol, "error", err)
			return err
		}
		price = p
		return nil
	})
	return price, err
}

func (c *PolygonMarketDataClient) lastClose(ctx context.Context, symbol string) (decimal.Decimal, error) {
	to := c.now()
	params := models.ListAggsParams{
		Ticker:     strings.ToUpper(symbol),
		Multiplier: 1,
		Timespan:   models.Timespan("day"),
		From:       models.Millis(to.Add(-c.lookback)),
		To:         models.Millis(to),
	}.WithOrder(models.Asc).WithAdjusted(true)

	iter := c.client.ListAggs(ctx, params)
	var (
		last  float64
		found bool
	)
	for iter.Next() {
		last = iter.Item().Close
		found = true
	}
	if err := iter.Err(); err != nil {
		return decimal.Zero, fmt.Errorf("polygon aggregates for %s: %w", symbol, err)
	}
	if !found || last <= 0 {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoQuote, symbol)
	}
	logger.Debug(ctx, "fetched spot price from polygon", "symbol", symbol, "close", last)
	return decimal.NewFromFloat(last), nil
}

// StaticMarketDataClient 固定报价的行情客户端，用于离线运行与测试
type StaticMarketDataClient struct {
	prices map[string]decimal.Decimal
}

// NewStaticMarketDataClient 创建固定报价客户端，代码不区分大小写
func NewStaticMarketDataClient(prices map[string]float64) *StaticMarketDataClient {
	m := make(map[string]decimal.Decimal, len(prices))
	for symbol, p := range prices {
		m[strings.ToUpper(symbol)] = decimal.NewFromFloat(p)
	}
	return &StaticMarketDataClient{prices: m}
}

// GetPrice 返回固定报价
func (c *StaticMarketDataClient) GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error) {
	if err := ctx.Err(); err != nil {
		return decimal.Zero, err
	}
	p, ok := c.prices[strings.ToUpper(symbol)]
	if !ok {
		return decimal.Zero, fmt.Errorf("%w: %s", ErrNoQuote, symbol)
	}
	return p, nil
}

// NewMarketDataClient 按配置选择行情源，provider 为 none 时返回 nil
func NewMarketDataClient(cfg config.MarketDataConfig) (domain.MarketDataClient, error) {
	switch strings.ToLower(cfg.Provider) {
	case "", "none":
		return nil, nil
	case "static":
		return NewStaticMarketDataClient(cfg.Static), nil
	case "polygon":
		if cfg.APIKey == "" {
			return nil, errors.New("polygon provider requires an api key")
		}
		return NewPolygonMarketDataClient(cfg), nil
	}
	return nil, fmt.Errorf("unknown market data provider %q", cfg.Provider)
}
