// 包 定价服务的领域模型
package domain

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
)

var (
	// ErrInvalidParameter 参数取值非法，例如期权类型不是 CALL/PUT
	ErrInvalidParameter = errors.New("invalid parameter")
	// ErrDegenerateInput 输入退化，例如到期时间或波动率不为正
	ErrDegenerateInput = errors.New("degenerate input")
)

// OptionKind 期权类型
type OptionKind string

const (
	OptionKindCall OptionKind = "CALL" // 看涨期权
	OptionKindPut  OptionKind = "PUT"  // 看跌期权
)

// ParseOptionKind 解析期权类型，大小写不敏感
func ParseOptionKind(s string) (OptionKind, error) {
	switch OptionKind(strings.ToUpper(strings.TrimSpace(s))) {
	case OptionKindCall:
		return OptionKindCall, nil
	case OptionKindPut:
		return OptionKindPut, nil
	}
	return "", fmt.Errorf("%w: option type %q must be call or put", ErrInvalidParameter, s)
}

func (k OptionKind) valid() bool {
	return k == OptionKindCall || k == OptionKindPut
}

// ExerciseStyle 行权方式
type ExerciseStyle string

const (
	ExerciseEuropean ExerciseStyle = "EUROPEAN" // 仅到期日行权
	ExerciseAmerican ExerciseStyle = "AMERICAN" // 到期前任意时点可行权
)

// ParseExerciseStyle 解析行权方式，空字符串视为 EUROPEAN
func ParseExerciseStyle(s string) (ExerciseStyle, error) {
	switch ExerciseStyle(strings.ToUpper(strings.TrimSpace(s))) {
	case "", ExerciseEuropean:
		return ExerciseEuropean, nil
	case ExerciseAmerican:
		return ExerciseAmerican, nil
	}
	return "", fmt.Errorf("%w: exercise style %q must be european or american", ErrInvalidParameter, s)
}

func (s ExerciseStyle) valid() bool {
	return s == ExerciseEuropean || s == ExerciseAmerican
}

// MarketDataClient 市场数据客户端接口
// 定价引擎本身从不调用它，只有应用层在缺少现价时才会查询
type MarketDataClient interface {
	GetPrice(ctx context.Context, symbol string) (decimal.Decimal, error)
}
