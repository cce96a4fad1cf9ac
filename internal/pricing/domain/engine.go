package domain

import "math"

const (
	// daysPerYear theta 按日历日归一化
	daysPerYear = 365.0
	// percent vega 与 rho 按 1 个百分点归一化
	percent = 100.0
	// bumpSize 波动率与利率的有限差分步长
	bumpSize = 0.01
)

// Engine 定价引擎统一契约
// 三种实现 (解析 / 二叉树 / 蒙特卡洛) 可相互替换、横向对比
type Engine interface {
	// Price 风险中性现值
	Price() float64
	// Delta ∂V/∂S
	Delta() float64
	// Gamma ∂²V/∂S²
	Gamma() float64
	// Vega ∂V/∂σ，按每 1 个波动率百分点
	Vega() float64
	// Theta ∂V/∂t，按每个日历日，多头通常为负
	Theta() float64
	// Rho ∂V/∂r，按每 1 个利率百分点
	Rho() float64
	// Parameters 引擎持有的参数副本
	Parameters() ContractParameters
}

// Greeks 希腊字母
type Greeks struct {
	Delta float64
	Gamma float64
	Theta float64
	Vega  float64
	Rho   float64
}

// Evaluate 依次计算价格与全部 Greeks
func Evaluate(e Engine) (price float64, greeks Greeks) {
	price = e.Price()
	greeks = Greeks{
		Delta: e.Delta(),
		Gamma: e.Gamma(),
		Theta: e.Theta(),
		Vega:  e.Vega(),
		Rho:   e.Rho(),
	}
	return price, greeks
}

// volatilityDifference σ 的中心差分，σ-h 不为正时退化为前向差分
func volatilityDifference(sigma float64, reprice func(delta float64) float64) float64 {
	if sigma-bumpSize <= 0 {
		return (reprice(bumpSize) - reprice(0)) / bumpSize
	}
	return (reprice(bumpSize) - reprice(-bumpSize)) / (2 * bumpSize)
}

// normCdf 标准正态分布累积分布函数
func normCdf(x float64) float64 {
	return 0.5 * (1 + math.Erf(x/math.Sqrt2))
}

// normPdf 标准正态分布概率密度函数
func normPdf(x float64) float64 {
	return math.Exp(-x*x/2) / math.Sqrt(2*math.Pi)
}
