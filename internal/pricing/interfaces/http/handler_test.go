package http

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/wyfcoding/optionpricing/internal/pricing/application"
	"github.com/wyfcoding/optionpricing/internal/pricing/domain"
	"github.com/wyfcoding/optionpricing/internal/pricing/infrastructure/client"
	"github.com/wyfcoding/optionpricing/pkg/config"
)

func newRouter() *gin.Engine {
	gin.SetMode(gin.TestMode)
	cfg := config.PricingConfig{
		DefaultMethod:     "black_scholes",
		Steps:             100,
		MaxSteps:          1000,
		Paths:             5_000,
		MaxPaths:          50_000,
		SweepPaths:        500,
		SweepPoints:       10,
		SweepLow:          0.5,
		SweepHigh:         1.5,
		DefaultRate:       0.05,
		DefaultVolatility: 0.2,
	}
	market := client.NewStaticMarketDataClient(map[string]float64{"SPY": 100})
	svc := application.NewPricingService(cfg, market, nil)

	r := gin.New()
	NewPricingHandler(svc).RegisterRoutes(r.Group(""))
	return r
}

func post(r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestPricingHandler_QuoteStatusCodes(t *testing.T) {
	r := newRouter()
	cases := []struct {
		name string
		body string
		want int
	}{
		{"analytic", `{"spot":100,"strike":100,"maturity":1}`, http.StatusOK},
		{"lattice american", `{"spot":36,"strike":40,"maturity":1,"risk_free_rate":0.06,"method":"binomial","exercise_style":"american","option_type":"put"}`, http.StatusOK},
		{"zero rate is kept", `{"spot":100,"strike":100,"maturity":1,"risk_free_rate":0}`, http.StatusOK},
		{"monte carlo seeded", `{"spot":100,"strike":100,"maturity":1,"method":"mc","paths":2000,"seed":7}`, http.StatusOK},
		{"spot from market data", `{"symbol":"SPY","strike":100,"expiry_date":"2099-01-01T00:00:00Z"}`, http.StatusOK},
		{"malformed json", `{"spot":`, http.StatusBadRequest},
		{"missing strike", `{"spot":100,"maturity":1}`, http.StatusBadRequest},
		{"unknown method", `{"spot":100,"strike":100,"maturity":1,"method":"heston"}`, http.StatusBadRequest},
		{"zero volatility", `{"spot":100,"strike":100,"maturity":1,"volatility":0}`, http.StatusBadRequest},
		{"unknown symbol", `{"symbol":"QQQ","strike":100,"maturity":1}`, http.StatusBadGateway},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			w := post(r, "/api/v1/pricing/option/quote", tc.body)
			assert.Equal(t, tc.want, w.Code, w.Body.String())
		})
	}
}

func TestPricingHandler_SweepStatusCodes(t *testing.T) {
	r := newRouter()

	w := post(r, "/api/v1/pricing/option/sweep", `{"spot":100,"strike":100,"maturity":0.5,"points":5}`)
	assert.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Contains(t, w.Body.String(), "call_price")

	w = post(r, "/api/v1/pricing/option/sweep", `{"spot":100,"strike":100,"maturity":0.5,"low":2,"high":1}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStatusFor(t *testing.T) {
	assert.Equal(t, http.StatusBadRequest, statusFor(fmt.Errorf("wrap: %w", domain.ErrInvalidParameter)))
	assert.Equal(t, http.StatusBadRequest, statusFor(domain.ErrDegenerateInput))
	assert.Equal(t, http.StatusBadGateway, statusFor(application.ErrSpotUnavailable))
	assert.Equal(t, http.StatusInternalServerError, statusFor(application.ErrNonFiniteResult))
	assert.Equal(t, http.StatusInternalServerError, statusFor(context.DeadlineExceeded))
	assert.Equal(t, http.StatusInternalServerError, statusFor(errors.New("boom")))
}
