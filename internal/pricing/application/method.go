package application

import (
	"fmt"
	"math"
	"math/rand"
	"strings"
	"time"

	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
)

// Method 定价方法
type Method string

const (
	MethodBlackScholes Method = "BLACK_SCHOLES"
	MethodBinomial     Method = "BINOMIAL"
	MethodMonteCarlo   Method = "MONTE_CARLO"
)

// ParseMethod 解析定价方法，大小写不敏感，支持常用别名
func ParseMethod(s string) (Method, error) {
	key := strings.ToLower(strings.TrimSpace(s))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	switch key {
	case "black_scholes", "blackscholes", "bs", "analytic":
		return MethodBlackScholes, nil
	case "binomial", "binomial_tree", "lattice", "crr":
		return MethodBinomial, nil
	case "monte_carlo", "montecarlo", "mc", "simulation":
		return MethodMonteCarlo, nil
	}
	return "", fmt.Errorf("%w: unknown pricing method %q", domain.ErrInvalidParameter, s)
}

// SupportsEarlyExercise 是否支持美式行权
func (m Method) SupportsEarlyExercise() bool {
	return m == MethodBinomial
}

// label 指标标签
func (m Method) label() string {
	return strings.ToLower(string(m))
}

const minYearFraction = 1.0 / 365

// YearFraction 按整日历日折算到期年限，不足一天按一天计
func YearFraction(expiry, now time.Time) float64 {
	days := math.Floor(expiry.Sub(now).Hours() / 24)
	return math.Max(days/365, minYearFraction)
}

// engineSpec 构造单个引擎所需的全部输入
type engineSpec struct {
	method Method
	style  domain.ExerciseStyle
	steps  int
	paths  int
	rng    *rand.Rand
}

// newEngine 按方法构造定价引擎
func newEngine(spec engineSpec, params domain.ContractParameters) (domain.Engine, error) {
	switch spec.method {
	case MethodBlackScholes:
		return domain.NewAnalyticEngine(params)
	case MethodBinomial:
		return domain.NewLatticeEngine(params, spec.steps, spec.style)
	case MethodMonteCarlo:
		return domain.NewSimulationEngine(params, spec.paths, domain.WithRand(spec.rng))
	}
	return nil, fmt.Errorf("%w: unknown pricing method %q", domain.ErrInvalidParameter, spec.method)
}

// resolveExercise 不支持提前行权的方法把美式请求降级为欧式，并返回提示
func resolveExercise(method Method, style domain.ExerciseStyle) (domain.ExerciseStyle, string) {
	if style == domain.ExerciseAmerican && !method.SupportsEarlyExercise() {
		return domain.ExerciseEuropean, fmt.Sprintf("%s supports European exercise only, pricing as EUROPEAN", method)
	}
	return style, ""
}
