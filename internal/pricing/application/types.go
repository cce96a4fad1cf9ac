package application

import (
	"time"

	"github.com/shopspring/decimal"
)

// PriceOptionCommand 期权定价命令
type PriceOptionCommand struct {
	// Symbol 标的代码，Spot 未给出时用于查询行情
	Symbol string
	// OptionType CALL/PUT，为空时同时计算两者
	OptionType string
	// Method 定价方法，为空时使用配置默认值
	Method string
	// ExerciseStyle EUROPEAN/AMERICAN，为空时视为 EUROPEAN
	ExerciseStyle string
	Spot          float64
	Strike        float64
	// Expiry 到期日，Maturity 未给出时按日历日折算年限
	Expiry time.Time
	// Maturity 到期年限，优先于 Expiry
	Maturity float64
	// RiskFreeRate 与 Volatility 为空时使用配置默认值
	RiskFreeRate *float64
	Volatility   *float64
	// Steps 二叉树步数，0 表示默认值
	Steps int
	// Paths 蒙特卡洛抽样次数，0 表示默认值
	Paths int
	// Seed 蒙特卡洛随机种子，为空时按时间播种
	Seed *int64
}

// SweepCommand 现价扫描命令
type SweepCommand struct {
	PriceOptionCommand
	// Points 扫描点数，0 表示默认值
	Points int
	// Low/High 扫描区间（现价倍数），0 表示默认值
	Low  float64
	High float64
}

// OptionQuote 单个期权的价格与 Greeks
type OptionQuote struct {
	OptionType string          `json:"option_type"`
	Price      decimal.Decimal `json:"price"`
	Delta      decimal.Decimal `json:"delta"`
	Gamma      decimal.Decimal `json:"gamma"`
	Theta      decimal.Decimal `json:"theta"`
	Vega       decimal.Decimal `json:"vega"`
	Rho        decimal.Decimal `json:"rho"`
	// StdErr 蒙特卡洛价格的标准误差
	StdErr *decimal.Decimal `json:"std_err,omitempty"`
}

// QuoteResult 定价结果
type QuoteResult struct {
	Symbol        string          `json:"symbol,omitempty"`
	Method        Method          `json:"method"`
	ExerciseStyle string          `json:"exercise_style"`
	Spot          decimal.Decimal `json:"spot"`
	Strike        decimal.Decimal `json:"strike"`
	Maturity      decimal.Decimal `json:"maturity"`
	RiskFreeRate  decimal.Decimal `json:"risk_free_rate"`
	Volatility    decimal.Decimal `json:"volatility"`
	Quotes        []OptionQuote   `json:"quotes"`
	// Warnings 例如美式请求被降级为欧式
	Warnings  []string  `json:"warnings,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

// SweepPoint 扫描曲线上的一个点，Greeks 为看涨期权的
type SweepPoint struct {
	Spot      float64 `json:"spot" csv:"spot"`
	CallPrice float64 `json:"call_price" csv:"call_price"`
	PutPrice  float64 `json:"put_price" csv:"put_price"`
	Delta     float64 `json:"delta" csv:"delta"`
	Gamma     float64 `json:"gamma" csv:"gamma"`
	Theta     float64 `json:"theta" csv:"theta"`
	Vega      float64 `json:"vega" csv:"vega"`
	Rho       float64 `json:"rho" csv:"rho"`
}

// SweepResult 现价扫描结果
type SweepResult struct {
	Symbol        string       `json:"symbol,omitempty"`
	Method        Method       `json:"method"`
	ExerciseStyle string       `json:"exercise_style"`
	Points        []SweepPoint `json:"points"`
	Warnings      []string     `json:"warnings,omitempty"`
}
