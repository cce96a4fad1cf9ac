package application

import (
	"context"
	"errors"
	"fmt"
	"math"
	"math/rand"
	"runtime"
	"time"

	"github.com/shopspring/decimal"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/config"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/optionpricing/pkg/metrics"
	"golang.org/x/sync/errgroup"
)

var (
	// ErrSpotUnavailable 未给出现价且行情源无法提供
	ErrSpotUnavailable = errors.New("spot price unavailable")
	// ErrNonFiniteResult 引擎输出了 NaN 或 Inf
	ErrNonFiniteResult = errors.New("non-finite pricing result")
)

const (
	// outputPlaces 对外输出的小数位数
	outputPlaces = 6
	// maxSweepPoints 单次扫描点数上限
	maxSweepPoints = 1000
)

// PricingService 期权定价应用服务
// 负责参数补全、行情查询、引擎选择与结果转换，定价本身由领域引擎完成
type PricingService struct {
	cfg     config.PricingConfig
	market  domain.MarketDataClient
	metrics *metrics.Metrics
	now     func() time.Time
}

// NewPricingService 创建定价服务，market 与 m 均可为 nil
func NewPricingService(cfg config.PricingConfig, market domain.MarketDataClient, m *metrics.Metrics) *PricingService {
	return &PricingService{
		cfg:     cfg,
		market:  market,
		metrics: m,
		now:     time.Now,
	}
}

// pricingRequest 补全默认值后的定价请求
type pricingRequest struct {
	symbol   string
	kinds    []domain.OptionKind
	method   Method
	style    domain.ExerciseStyle
	params   domain.ContractParameters
	steps    int
	paths    int
	seed     *int64
	warnings []string
}

// Quote 计算看涨与看跌（或指定类型）期权的价格与 Greeks
func (s *PricingService) Quote(ctx context.Context, cmd PriceOptionCommand) (*QuoteResult, error) {
	start := time.Now()
	defer logger.LogDuration(ctx, "option quote evaluated", "symbol", cmd.Symbol, "method", cmd.Method)()

	req, err := s.prepare(ctx, cmd, s.cfg.Paths)
	if err != nil {
		s.recordError(cmd.Method, err)
		return nil, err
	}

	rng := newRand(req.seed, 0)
	quotes := make([]OptionQuote, 0, len(req.kinds))
	for _, kind := range req.kinds {
		q, err := s.quoteOne(req, kind, rng)
		if err != nil {
			s.recordError(string(req.method), err)
			return nil, err
		}
		quotes = append(quotes, q)
	}
	s.observe(req.method, "quote", start)

	p := req.params
	return &QuoteResult{
		Symbol:        req.symbol,
		Method:        req.method,
		ExerciseStyle: string(req.style),
		Spot:          decimal.NewFromFloat(p.Spot),
		Strike:        decimal.NewFromFloat(p.Strike),
		Maturity:      decimal.NewFromFloat(p.Maturity).Round(outputPlaces),
		RiskFreeRate:  decimal.NewFromFloat(p.Rate),
		Volatility:    decimal.NewFromFloat(p.Volatility),
		Quotes:        quotes,
		Warnings:      req.warnings,
		CreatedAt:     s.now(),
	}, nil
}

func (s *PricingService) quoteOne(req *pricingRequest, kind domain.OptionKind, rng *rand.Rand) (OptionQuote, error) {
	params := req.params
	params.Kind = kind
	engine, err := newEngine(engineSpec{method: req.method, style: req.style, steps: req.steps, paths: req.paths, rng: rng}, params)
	if err != nil {
		return OptionQuote{}, err
	}
	price, stdErr, greeks := evaluate(engine)
	s.countEvaluation(req, kind)
	if err := checkFinite(price, greeks); err != nil {
		return OptionQuote{}, fmt.Errorf("%s %s: %w", req.method, kind, err)
	}

	q := OptionQuote{
		OptionType: string(kind),
		Price:      toDecimal(price),
		Delta:      toDecimal(greeks.Delta),
		Gamma:      toDecimal(greeks.Gamma),
		Theta:      toDecimal(greeks.Theta),
		Vega:       toDecimal(greeks.Vega),
		Rho:        toDecimal(greeks.Rho),
	}
	if stdErr != nil && !math.IsNaN(*stdErr) && !math.IsInf(*stdErr, 0) {
		se := toDecimal(*stdErr)
		q.StdErr = &se
	}
	return q, nil
}

// Sweep 在现价区间内均匀取点，计算看涨/看跌价格与看涨 Greeks 曲线
func (s *PricingService) Sweep(ctx context.Context, cmd SweepCommand) (*SweepResult, error) {
	start := time.Now()
	defer logger.LogDuration(ctx, "spot sweep evaluated", "symbol", cmd.Symbol, "method", cmd.Method)()

	req, err := s.prepare(ctx, cmd.PriceOptionCommand, s.cfg.SweepPaths)
	if err != nil {
		s.recordError(cmd.Method, err)
		return nil, err
	}
	spots, err := s.sweepSpots(req.params.Spot, cmd)
	if err != nil {
		s.recordError(string(req.method), err)
		return nil, err
	}

	workers := s.cfg.SweepWorkers
	if workers <= 0 {
		workers = runtime.GOMAXPROCS(0)
	}

	points := make([]SweepPoint, len(spots))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(workers)
	for i, spot := range spots {
		if gctx.Err() != nil {
			break
		}
		g.Go(func() error {
			if err := gctx.Err(); err != nil {
				return err
			}
			point, err := s.sweepPoint(req, spot, newRand(req.seed, int64(i)))
			if err != nil {
				return fmt.Errorf("sweep point %d (spot %.4f): %w", i, spot, err)
			}
			points[i] = point
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		s.recordError(string(req.method), err)
		return nil, err
	}
	if err := ctx.Err(); err != nil {
		s.recordError(string(req.method), err)
		return nil, err
	}
	s.observe(req.method, "sweep", start)

	return &SweepResult{
		Symbol:        req.symbol,
		Method:        req.method,
		ExerciseStyle: string(req.style),
		Points:        points,
		Warnings:      req.warnings,
	}, nil
}

// sweepSpots 等价于 linspace(low·S, high·S, points)
func (s *PricingService) sweepSpots(spot float64, cmd SweepCommand) ([]float64, error) {
	points, low, high := cmd.Points, cmd.Low, cmd.High
	if points == 0 {
		points = s.cfg.SweepPoints
	}
	if low == 0 {
		low = s.cfg.SweepLow
	}
	if high == 0 {
		high = s.cfg.SweepHigh
	}
	if points < 2 || points > maxSweepPoints {
		return nil, fmt.Errorf("%w: sweep points must be in [2, %d], got %d", domain.ErrInvalidParameter, maxSweepPoints, points)
	}
	if !(low > 0) || !(high > low) || math.IsInf(high, 0) {
		return nil, fmt.Errorf("%w: invalid sweep range [%v, %v]", domain.ErrInvalidParameter, low, high)
	}

	from, to := low*spot, high*spot
	step := (to - from) / float64(points-1)
	spots := make([]float64, points)
	for i := range spots {
		spots[i] = from + float64(i)*step
	}
	spots[points-1] = to
	return spots, nil
}

func (s *PricingService) sweepPoint(req *pricingRequest, spot float64, rng *rand.Rand) (SweepPoint, error) {
	spec := engineSpec{method: req.method, style: req.style, steps: req.steps, paths: req.paths, rng: rng}
	params := req.params
	params.Spot = spot

	params.Kind = domain.OptionKindCall
	call, err := newEngine(spec, params)
	if err != nil {
		return SweepPoint{}, err
	}
	callPrice, _, greeks := evaluate(call)
	s.countEvaluation(req, domain.OptionKindCall)

	params.Kind = domain.OptionKindPut
	put, err := newEngine(spec, params)
	if err != nil {
		return SweepPoint{}, err
	}
	putPrice := put.Price()
	s.countEvaluation(req, domain.OptionKindPut)

	if err := checkFinite(callPrice, greeks); err != nil {
		return SweepPoint{}, err
	}
	if err := checkFinite(putPrice, domain.Greeks{}); err != nil {
		return SweepPoint{}, err
	}
	return SweepPoint{
		Spot:      round(spot),
		CallPrice: round(callPrice),
		PutPrice:  round(putPrice),
		Delta:     round(greeks.Delta),
		Gamma:     round(greeks.Gamma),
		Theta:     round(greeks.Theta),
		Vega:      round(greeks.Vega),
		Rho:       round(greeks.Rho),
	}, nil
}

// prepare 补全默认值、解析枚举并查询现价
func (s *PricingService) prepare(ctx context.Context, cmd PriceOptionCommand, defaultPaths int) (*pricingRequest, error) {
	methodName := cmd.Method
	if methodName == "" {
		methodName = s.cfg.DefaultMethod
	}
	method, err := ParseMethod(methodName)
	if err != nil {
		return nil, err
	}
	requested, err := domain.ParseExerciseStyle(cmd.ExerciseStyle)
	if err != nil {
		return nil, err
	}

	req := &pricingRequest{symbol: cmd.Symbol, method: method, seed: cmd.Seed}
	style, warning := resolveExercise(method, requested)
	req.style = style
	if warning != "" {
		logger.Warn(ctx, "early exercise not supported, falling back to european", "method", method, "symbol", cmd.Symbol)
		req.warnings = append(req.warnings, warning)
		if s.metrics != nil {
			s.metrics.ExerciseDowngradesTotal.WithLabelValues(method.label()).Inc()
		}
	}

	if cmd.OptionType == "" {
		req.kinds = []domain.OptionKind{domain.OptionKindCall, domain.OptionKindPut}
	} else {
		kind, err := domain.ParseOptionKind(cmd.OptionType)
		if err != nil {
			return nil, err
		}
		req.kinds = []domain.OptionKind{kind}
	}

	if req.steps, err = tuning("steps", cmd.Steps, s.cfg.Steps, s.cfg.MaxSteps); err != nil {
		return nil, err
	}
	if req.paths, err = tuning("paths", cmd.Paths, defaultPaths, s.cfg.MaxPaths); err != nil {
		return nil, err
	}

	maturity := cmd.Maturity
	if maturity == 0 {
		if cmd.Expiry.IsZero() {
			return nil, fmt.Errorf("%w: maturity or expiry is required", domain.ErrInvalidParameter)
		}
		maturity = YearFraction(cmd.Expiry, s.now())
	}
	rate := s.cfg.DefaultRate
	if cmd.RiskFreeRate != nil {
		rate = *cmd.RiskFreeRate
	}
	vol := s.cfg.DefaultVolatility
	if cmd.Volatility != nil {
		vol = *cmd.Volatility
	}

	spot := cmd.Spot
	if spot <= 0 && cmd.Symbol != "" {
		if spot, err = s.spot(ctx, cmd.Symbol); err != nil {
			return nil, err
		}
	}

	req.params = domain.ContractParameters{
		Spot:       spot,
		Strike:     cmd.Strike,
		Maturity:   maturity,
		Rate:       rate,
		Volatility: vol,
		Kind:       req.kinds[0],
	}
	if err := req.params.Validate(); err != nil {
		return nil, err
	}
	return req, nil
}

// spot 从行情源获取现价
func (s *PricingService) spot(ctx context.Context, symbol string) (float64, error) {
	if s.market == nil {
		return 0, fmt.Errorf("%w: no market data provider configured for %s", ErrSpotUnavailable, symbol)
	}
	price, err := s.market.GetPrice(ctx, symbol)
	if err != nil {
		logger.Error(ctx, "failed to fetch spot price", "symbol", symbol, "error", err)
		return 0, fmt.Errorf("%w: %s: %v", ErrSpotUnavailable, symbol, err)
	}
	if !price.IsPositive() {
		return 0, fmt.Errorf("%w: %s returned non-positive price %s", ErrSpotUnavailable, symbol, price)
	}
	return price.InexactFloat64(), nil
}

// tuning 取请求值或默认值，并检查上限
func tuning(name string, requested, def, limit int) (int, error) {
	if requested == 0 {
		requested = def
	}
	if requested < 0 || requested > limit {
		return 0, fmt.Errorf("%w: %s must not exceed %d, got %d", domain.ErrInvalidParameter, name, limit, requested)
	}
	return requested, nil
}

// evaluate 计算价格与 Greeks，蒙特卡洛引擎额外给出标准误差
func evaluate(e domain.Engine) (price float64, stdErr *float64, greeks domain.Greeks) {
	if sim, ok := e.(*domain.SimulationEngine); ok {
		est := sim.Estimate()
		price, stdErr = est.Price, &est.StdErr
	} else {
		price = e.Price()
	}
	greeks = domain.Greeks{
		Delta: e.Delta(),
		Gamma: e.Gamma(),
		Theta: e.Theta(),
		Vega:  e.Vega(),
		Rho:   e.Rho(),
	}
	return price, stdErr, greeks
}

func checkFinite(price float64, g domain.Greeks) error {
	for _, v := range []float64{price, g.Delta, g.Gamma, g.Theta, g.Vega, g.Rho} {
		if math.IsNaN(v) || math.IsInf(v, 0) {
			return ErrNonFiniteResult
		}
	}
	return nil
}

// newRand 有种子时按 seed+offset 播种，保证扫描各点独立且可复现
func newRand(seed *int64, offset int64) *rand.Rand {
	if seed != nil {
		return rand.New(rand.NewSource(*seed + offset))
	}
	return rand.New(rand.NewSource(time.Now().UnixNano() + offset))
}

func toDecimal(v float64) decimal.Decimal {
	return decimal.NewFromFloat(v).Round(outputPlaces)
}

func round(v float64) float64 {
	return toDecimal(v).InexactFloat64()
}

func (s *PricingService) countEvaluation(req *pricingRequest, kind domain.OptionKind) {
	if s.metrics == nil {
		return
	}
	s.metrics.EvaluationsTotal.WithLabelValues(req.method.label(), string(kind)).Inc()
	if req.method == MethodMonteCarlo {
		s.metrics.SimulatedPathsTotal.Add(float64(req.paths))
	}
}

func (s *PricingService) observe(method Method, operation string, start time.Time) {
	if s.metrics != nil {
		s.metrics.ObserveEvaluation(method.label(), operation, start)
	}
}

func (s *PricingService) recordError(method string, err error) {
	if s.metrics == nil {
		return
	}
	if method == "" {
		method = s.cfg.DefaultMethod
	}
	if m, perr := ParseMethod(method); perr == nil {
		method = m.label()
	} else {
		method = "unknown"
	}
	s.metrics.PricingErrorsTotal.WithLabelValues(method, ErrorReason(err)).Inc()
}

// ErrorReason 把错误归类为稳定的标签
func ErrorReason(err error) string {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter):
		return "invalid_parameter"
	case errors.Is(err, domain.ErrDegenerateInput):
		return "degenerate_input"
	case errors.Is(err, ErrSpotUnavailable):
		return "spot_unavailable"
	case errors.Is(err, ErrNonFiniteResult):
		return "non_finite"
	case errors.Is(err, context.Canceled), errors.Is(err, context.DeadlineExceeded):
		return "canceled"
	}
	return "internal"
}
