package domain

import (
	"fmt"
	"math"
)

// ContractParameters 单个期权定价所需的市场与合约参数
// 引擎构造后不可变，Greeks 计算只会派生新的参数副本
type ContractParameters struct {
	Spot       float64    // 标的资产现价 S
	Strike     float64    // 行权价 K
	Maturity   float64    // 到期时间 T (年)
	Rate       float64    // 连续复利无风险利率 r，可为负
	Volatility float64    // 年化波动率 σ
	Kind       OptionKind // CALL / PUT
}

// Validate 校验参数
func (p ContractParameters) Validate() error {
	if !p.Kind.valid() {
		return fmt.Errorf("%w: option type %q must be CALL or PUT", ErrInvalidParameter, p.Kind)
	}
	if !(p.Spot > 0) || math.IsInf(p.Spot, 0) {
		return fmt.Errorf("%w: spot must be positive, got %v", ErrInvalidParameter, p.Spot)
	}
	if !(p.Strike > 0) || math.IsInf(p.Strike, 0) {
		return fmt.Errorf("%w: strike must be positive, got %v", ErrInvalidParameter, p.Strike)
	}
	if !(p.Maturity > 0) || math.IsInf(p.Maturity, 0) {
		return fmt.Errorf("%w: maturity must be positive, got %v", ErrDegenerateInput, p.Maturity)
	}
	if !(p.Volatility > 0) || math.IsInf(p.Volatility, 0) {
		return fmt.Errorf("%w: volatility must be positive, got %v", ErrDegenerateInput, p.Volatility)
	}
	if math.IsNaN(p.Rate) || math.IsInf(p.Rate, 0) {
		return fmt.Errorf("%w: rate must be finite, got %v", ErrInvalidParameter, p.Rate)
	}
	return nil
}

// Field 可被扰动的参数字段
type Field int

const (
	FieldSpot Field = iota
	FieldVolatility
	FieldRate
	FieldMaturity
)

func (f Field) String() string {
	switch f {
	case FieldSpot:
		return "spot"
	case FieldVolatility:
		return "volatility"
	case FieldRate:
		return "rate"
	case FieldMaturity:
		return "maturity"
	}
	return fmt.Sprintf("Field(%d)", int(f))
}

// WithPerturbed 返回仅有一个字段被平移 delta 的参数副本，原参数不受影响
func WithPerturbed(p ContractParameters, field Field, delta float64) ContractParameters {
	switch field {
	case FieldSpot:
		p.Spot += delta
	case FieldVolatility:
		p.Volatility += delta
	case FieldRate:
		p.Rate += delta
	case FieldMaturity:
		p.Maturity += delta
	}
	return p
}

// Intrinsic 内在价值 max(S-K,0) 或 max(K-S,0)
func Intrinsic(kind OptionKind, spot, strike float64) float64 {
	if kind == OptionKindCall {
		return math.Max(spot-strike, 0)
	}
	return math.Max(strike-spot, 0)
}
