package domain

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/montanaflynn/stats"
)

// SimulationEngine 蒙特卡洛定价引擎 (风险中性 GBM 终值抽样)
//
// 结果是统计估计量：相同参数、不同随机数会得到不同的价格。
// 每个 Greek 都在扰动参数上构造新引擎并重新抽样，各次抽样相互独立，
// 因此 Greeks 带有叠加的抽样噪声，gamma 的二阶差分尤其不稳定。
// 只有在随机源固定种子时结果才可复现。
// 引擎持有 *rand.Rand，不可并发使用。
type SimulationEngine struct {
	params ContractParameters
	paths  int
	rng    *rand.Rand
}

// SimulationOption 蒙特卡洛引擎选项
type SimulationOption func(*SimulationEngine)

// WithSeed 使用固定种子的随机源
func WithSeed(seed int64) SimulationOption {
	return func(e *SimulationEngine) {
		e.rng = rand.New(rand.NewSource(seed))
	}
}

// WithRand 使用调用方提供的随机源
func WithRand(rng *rand.Rand) SimulationOption {
	return func(e *SimulationEngine) {
		if rng != nil {
			e.rng = rng
		}
	}
}

// NewSimulationEngine 创建蒙特卡洛引擎，paths 至少为 2 (标准误差需要样本方差)
func NewSimulationEngine(params ContractParameters, paths int, opts ...SimulationOption) (*SimulationEngine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if paths < 2 {
		return nil, fmt.Errorf("%w: simulation needs at least 2 paths, got %d", ErrDegenerateInput, paths)
	}
	e := &SimulationEngine{params: params, paths: paths}
	for _, opt := range opts {
		opt(e)
	}
	if e.rng == nil {
		e.rng = rand.New(rand.NewSource(time.Now().UnixNano()))
	}
	return e, nil
}

func (e *SimulationEngine) Parameters() ContractParameters { return e.params }

// Paths 抽样次数
func (e *SimulationEngine) Paths() int { return e.paths }

// Estimate 价格估计及其抽样标准误差
type Estimate struct {
	Price  float64
	StdErr float64
	Paths  int
}

// discountedPayoffs S_T = S·exp((r-σ²/2)T + σ√T·Z)，返回贴现后的收益样本
func (e *SimulationEngine) discountedPayoffs() []float64 {
	p := e.params
	drift := (p.Rate - 0.5*p.Volatility*p.Volatility) * p.Maturity
	diffusion := p.Volatility * math.Sqrt(p.Maturity)
	discount := math.Exp(-p.Rate * p.Maturity)

	out := make([]float64, e.paths)
	for i := range out {
		z := e.rng.NormFloat64()
		st := p.Spot * math.Exp(drift+diffusion*z)
		out[i] = discount * Intrinsic(p.Kind, st, p.Strike)
	}
	return out
}

// Estimate 一次抽样得到价格与标准误差
func (e *SimulationEngine) Estimate() Estimate {
	samples := e.discountedPayoffs()
	mean, _ := stats.Mean(samples)
	sd, _ := stats.StandardDeviationSample(samples)
	return Estimate{
		Price:  mean,
		StdErr: sd / math.Sqrt(float64(e.paths)),
		Paths:  e.paths,
	}
}

// Price 贴现收益的样本均值 e^(-rT)·mean(payoff)
func (e *SimulationEngine) Price() float64 {
	mean, _ := stats.Mean(e.discountedPayoffs())
	return mean
}

// Delta 现价 ±1% 的中心差分
func (e *SimulationEngine) Delta() float64 {
	bump := 0.01 * e.params.Spot
	up := e.reprice(FieldSpot, bump)
	down := e.reprice(FieldSpot, -bump)
	return (up - down) / (2 * bump)
}

// Gamma 上/中/下三次独立抽样的二阶差分，噪声很大
func (e *SimulationEngine) Gamma() float64 {
	bump := 0.01 * e.params.Spot
	up := e.reprice(FieldSpot, bump)
	mid := e.reprice(FieldSpot, 0)
	down := e.reprice(FieldSpot, -bump)
	return (up - 2*mid + down) / (bump * bump)
}

func (e *SimulationEngine) Vega() float64 {
	return volatilityDifference(e.params.Volatility, func(delta float64) float64 {
		return e.reprice(FieldVolatility, delta)
	}) / percent
}

// Theta T 减少一天后的单侧差分，T-1/365 不为正时截断为 1/365
func (e *SimulationEngine) Theta() float64 {
	const day = 1 / daysPerYear
	shorter := e.params.Maturity - day
	if shorter <= 0 {
		shorter = day
	}
	now := e.Price()
	future := e.derive(WithPerturbed(e.params, FieldMaturity, shorter-e.params.Maturity)).Price()
	return (future - now) / day / daysPerYear
}

func (e *SimulationEngine) Rho() float64 {
	up := e.reprice(FieldRate, bumpSize)
	down := e.reprice(FieldRate, -bumpSize)
	return (up - down) / (2 * bumpSize) / percent
}

// derive 在新参数上构造新引擎，沿用同一随机源顺序抽取新样本
func (e *SimulationEngine) derive(params ContractParameters) *SimulationEngine {
	return &SimulationEngine{params: params, paths: e.paths, rng: e.rng}
}

func (e *SimulationEngine) reprice(field Field, delta float64) float64 {
	return e.derive(WithPerturbed(e.params, field, delta)).Price()
}
