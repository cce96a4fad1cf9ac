package domain

import "math"

// AnalyticEngine Black-Scholes 闭式解定价引擎
// 只支持欧式行权，美式请求由应用层降级
type AnalyticEngine struct {
	params ContractParameters
	d1     float64
	d2     float64
}

// NewAnalyticEngine 创建 Black-Scholes 引擎
func NewAnalyticEngine(params ContractParameters) (*AnalyticEngine, error) {
	if err := params.Validate(); err != nil {
		return nil, err
	}
	sqrtT := math.Sqrt(params.Maturity)
	d1 := (math.Log(params.Spot/params.Strike) + (params.Rate+0.5*params.Volatility*params.Volatility)*params.Maturity) / (params.Volatility * sqrtT)
	return &AnalyticEngine{
		params: params,
		d1:     d1,
		d2:     d1 - params.Volatility*sqrtT,
	}, nil
}

func (e *AnalyticEngine) Parameters() ContractParameters { return e.params }

// D1 返回 d1
func (e *AnalyticEngine) D1() float64 { return e.d1 }

// D2 返回 d2
func (e *AnalyticEngine) D2() float64 { return e.d2 }

func (e *AnalyticEngine) discountedStrike() float64 {
	return e.params.Strike * math.Exp(-e.params.Rate*e.params.Maturity)
}

// Price C = S·N(d1) - K·e^(-rT)·N(d2)；P = K·e^(-rT)·N(-d2) - S·N(-d1)
func (e *AnalyticEngine) Price() float64 {
	if e.params.Kind == OptionKindCall {
		return e.params.Spot*normCdf(e.d1) - e.discountedStrike()*normCdf(e.d2)
	}
	return e.discountedStrike()*normCdf(-e.d2) - e.params.Spot*normCdf(-e.d1)
}

func (e *AnalyticEngine) Delta() float64 {
	if e.params.Kind == OptionKindCall {
		return normCdf(e.d1)
	}
	return normCdf(e.d1) - 1
}

// Gamma 看涨看跌相同
func (e *AnalyticEngine) Gamma() float64 {
	return normPdf(e.d1) / (e.params.Spot * e.params.Volatility * math.Sqrt(e.params.Maturity))
}

func (e *AnalyticEngine) Vega() float64 {
	return e.params.Spot * normPdf(e.d1) * math.Sqrt(e.params.Maturity) / percent
}

func (e *AnalyticEngine) Theta() float64 {
	decay := -e.params.Spot * normPdf(e.d1) * e.params.Volatility / (2 * math.Sqrt(e.params.Maturity))
	var carry float64
	if e.params.Kind == OptionKindCall {
		carry = -e.params.Rate * e.discountedStrike() * normCdf(e.d2)
	} else {
		carry = e.params.Rate * e.discountedStrike() * normCdf(-e.d2)
	}
	return (decay + carry) / daysPerYear
}

func (e *AnalyticEngine) Rho() float64 {
	if e.params.Kind == OptionKindCall {
		return e.params.Maturity * e.discountedStrike() * normCdf(e.d2) / percent
	}
	return -e.params.Maturity * e.discountedStrike() * normCdf(-e.d2) / percent
}
