package domain

import (
	"fmt"
	"math"
)

// LatticeEngine Cox-Ross-Rubinstein 二叉树定价引擎
// 支持欧式与美式行权，美式在每个节点比较继续持有价值与立即行权价值
type LatticeEngine struct {
	params ContractParameters
	steps  int
	style  ExerciseStyle

	dt       float64 // 单步时长 T/N
	up       float64 // 上行因子 u = e^(σ√dt)
	down     float64 // 下行因子 d = 1/u
	prob     float64 // 风险中性上行概率 p
	discount float64 // 单步贴现 e^(-r·dt)
}

// NewLatticeEngine 创建二叉树引擎，steps 至少为 2 (theta 需要 N-2 步的子树)
func NewLatticeEngine(params ContractParameters, steps int, style ExerciseStyle) (*LatticeEngine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	if !style.valid() {
		return nil, fmt.Errorf("%w: exercise style %q", ErrInvalidParameter, style)
	}
	if steps < 2 {
		return nil, fmt.Errorf("%w: lattice needs at least 2 steps, got %d", ErrDegenerateInput, steps)
	}
	return newLattice(params, steps, style), nil
}

// newLattice 不做校验，供 Greeks 派生子树使用；steps 为 0 时按内在价值定价
func newLattice(params ContractParameters, steps int, style ExerciseStyle) *LatticeEngine {
	e := &LatticeEngine{params: params, steps: steps, style: style}
	if steps == 0 {
		return e
	}
	e.dt = params.Maturity / float64(steps)
	e.up = math.Exp(params.Volatility * math.Sqrt(e.dt))
	e.down = 1 / e.up
	e.prob = (math.Exp(params.Rate*e.dt) - e.down) / (e.up - e.down)
	e.discount = math.Exp(-params.Rate * e.dt)
	return e
}

func (e *LatticeEngine) Parameters() ContractParameters { return e.params }

// Steps 时间步数 N
func (e *LatticeEngine) Steps() int { return e.steps }

// Style 行权方式
func (e *LatticeEngine) Style() ExerciseStyle { return e.style }

// RiskNeutralProbability 风险中性上行概率，超出 [0,1] 说明步长过粗
func (e *LatticeEngine) RiskNeutralProbability() float64 { return e.prob }

// nodePrice 第 step 层、上行 j 次的节点价格 S·u^j·d^(step-j)
func (e *LatticeEngine) nodePrice(step, j int) float64 {
	return e.params.Spot * math.Pow(e.up, float64(j)) * math.Pow(e.down, float64(step-j))
}

func (e *LatticeEngine) payoff(spot float64) float64 {
	return Intrinsic(e.params.Kind, spot, e.params.Strike)
}

// Price 逆向归纳：从 N-1 层回推到根节点
func (e *LatticeEngine) Price() float64 {
	n := e.steps
	if n == 0 {
		return e.payoff(e.params.Spot)
	}

	values := make([]float64, n+1)
	for j := 0; j <= n; j++ {
		values[j] = e.payoff(e.nodePrice(n, j))
	}

	american := e.style == ExerciseAmerican
	for i := n - 1; i >= 0; i-- {
		// values[j] 只依赖 values[j] 与 values[j+1]，可原地覆盖
		for j := 0; j <= i; j++ {
			v := e.discount * (e.prob*values[j+1] + (1-e.prob)*values[j])
			if american {
				v = math.Max(v, e.payoff(e.nodePrice(i, j)))
			}
			values[j] = v
		}
	}
	return values[0]
}

// Delta 第一层两个节点的内在价值差
func (e *LatticeEngine) Delta() float64 {
	sUp := e.params.Spot * e.up
	sDown := e.params.Spot * e.down
	return (e.payoff(sUp) - e.payoff(sDown)) / (sUp - sDown)
}

// Gamma 第二层三个节点的内在价值二阶差分
func (e *LatticeEngine) Gamma() float64 {
	s := e.params.Spot
	sUpUp := s * e.up * e.up
	sUpDown := s * e.up * e.down
	sDownDown := s * e.down * e.down

	spread := s * (e.up - e.down)
	deltaUp := (e.payoff(sUpUp) - e.payoff(sUpDown)) / spread
	deltaDown := (e.payoff(sUpDown) - e.payoff(sDownDown)) / spread
	return (deltaUp - deltaDown) / (0.5 * (sUpUp - sDownDown))
}

// Theta 用 T-2dt、N-2 的子树重新定价
// 时间差分步长与树步长耦合在一起，是已知的近似
func (e *LatticeEngine) Theta() float64 {
	now := e.Price()
	future := newLattice(WithPerturbed(e.params, FieldMaturity, -2*e.dt), e.steps-2, e.style).Price()
	return (future - now) / (2 * e.dt) / daysPerYear
}

func (e *LatticeEngine) Vega() float64 {
	return volatilityDifference(e.params.Volatility, func(delta float64) float64 {
		return e.reprice(FieldVolatility, delta)
	}) / percent
}

func (e *LatticeEngine) Rho() float64 {
	return (e.reprice(FieldRate, bumpSize) - e.reprice(FieldRate, -bumpSize)) / (2 * bumpSize) / percent
}

// reprice 在扰动参数上构造全新的同规模二叉树
func (e *LatticeEngine) reprice(field Field, delta float64) float64 {
	return newLattice(WithPerturbed(e.params, field, delta), e.steps, e.style).Price()
}
