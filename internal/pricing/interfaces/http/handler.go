package http

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/pkg/logger"
	"github.com/wyfcoding/pkg/response"
)

// PricingHandler HTTP 处理器
// 负责处理期权定价与现价扫描请求
type PricingHandler struct {
	svc *application.PricingService
}

// NewPricingHandler 创建 HTTP 处理器实例
func NewPricingHandler(svc *application.PricingService) *PricingHandler {
	return &PricingHandler{svc: svc}
}

// RegisterRoutes 注册路由
func (h *PricingHandler) RegisterRoutes(router *gin.RouterGroup) {
	api := router.Group("/api/v1/pricing")
	{
		api.POST("/option/quote", h.Quote)
		api.POST("/option/sweep", h.Sweep)
	}
}

// QuoteRequest 定价请求
// maturity（年）优先于 expiry_date；spot 缺省时按 symbol 查询行情
type QuoteRequest struct {
	Symbol        string     `json:"symbol"`
	OptionType    string     `json:"option_type"`
	Method        string     `json:"method"`
	ExerciseStyle string     `json:"exercise_style"`
	Spot          float64    `json:"spot"`
	Strike        float64    `json:"strike" binding:"required"`
	ExpiryDate    *time.Time `json:"expiry_date"`
	Maturity      float64    `json:"maturity"`
	RiskFreeRate  *float64   `json:"risk_free_rate"`
	Volatility    *float64   `json:"volatility"`
	Steps         int        `json:"steps"`
	Paths         int        `json:"paths"`
	Seed          *int64     `json:"seed"`
}

// SweepRequest 现价扫描请求
type SweepRequest struct {
	QuoteRequest
	Points int     `json:"points"`
	Low    float64 `json:"low"`
	High   float64 `json:"high"`
}

func (r QuoteRequest) command() application.PriceOptionCommand {
	cmd := application.PriceOptionCommand{
		Symbol:        r.Symbol,
		OptionType:    r.OptionType,
		Method:        r.Method,
		ExerciseStyle: r.ExerciseStyle,
		Spot:          r.Spot,
		Strike:        r.Strike,
		Maturity:      r.Maturity,
		RiskFreeRate:  r.RiskFreeRate,
		Volatility:    r.Volatility,
		Steps:         r.Steps,
		Paths:         r.Paths,
		Seed:          r.Seed,
	}
	if r.ExpiryDate != nil {
		cmd.Expiry = *r.ExpiryDate
	}
	return cmd
}

// Quote 计算期权价格与 Greeks
func (h *PricingHandler) Quote(c *gin.Context) {
	var req QuoteRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.svc.Quote(c.Request.Context(), req.command())
	if err != nil {
		h.fail(c, "Failed to quote option", err)
		return
	}
	response.Success(c, result)
}

// Sweep 计算现价区间上的价格与 Greeks 曲线
func (h *PricingHandler) Sweep(c *gin.Context) {
	var req SweepRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.ErrorWithStatus(c, http.StatusBadRequest, err.Error(), "")
		return
	}

	result, err := h.svc.Sweep(c.Request.Context(), application.SweepCommand{
		PriceOptionCommand: req.command(),
		Points:             req.Points,
		Low:                req.Low,
		High:               req.High,
	})
	if err != nil {
		h.fail(c, "Failed to sweep spot range", err)
		return
	}
	response.Success(c, result)
}

func (h *PricingHandler) fail(c *gin.Context, msg string, err error) {
	status := statusFor(err)
	if status >= http.StatusInternalServerError {
		logger.Error(c.Request.Context(), msg, "error", err)
	} else {
		logger.Warn(c.Request.Context(), msg, "error", err)
	}
	response.ErrorWithStatus(c, status, err.Error(), application.ErrorReason(err))
}

// statusFor 错误到 HTTP 状态码的映射
func statusFor(err error) int {
	switch {
	case errors.Is(err, domain.ErrInvalidParameter), errors.Is(err, domain.ErrDegenerateInput):
		return http.StatusBadRequest
	case errors.Is(err, application.ErrSpotUnavailable):
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}
