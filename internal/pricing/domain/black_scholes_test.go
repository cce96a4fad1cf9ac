package domain

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func atmParams(kind OptionKind) ContractParameters {
	return ContractParameters{Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2, Kind: kind}
}

func TestAnalyticEngine_ReferenceCase(t *testing.T) {
	call, err := NewAnalyticEngine(atmParams(OptionKindCall))
	require.NoError(t, err)
	put, err := NewAnalyticEngine(atmParams(OptionKindPut))
	require.NoError(t, err)

	assert.InDelta(t, 10.4506, call.Price(), 1e-4)
	assert.InDelta(t, 5.5735, put.Price(), 1e-4)
	assert.InDelta(t, 0.6368, call.Delta(), 1e-4)
	assert.InDelta(t, 0.6368-1, put.Delta(), 1e-4)
	assert.InDelta(t, 0.018762, call.Gamma(), 1e-5)
	assert.Equal(t, call.Gamma(), put.Gamma())
	assert.InDelta(t, 0.37524, call.Vega(), 1e-4)
	assert.Equal(t, call.Vega(), put.Vega())
	assert.InDelta(t, -6.4140/365, call.Theta(), 1e-4)
	assert.InDelta(t, 0.53232, call.Rho(), 1e-4)
	assert.Less(t, put.Rho(), 0.0)
}

func TestAnalyticEngine_PutCallParity(t *testing.T) {
	cases := []ContractParameters{
		{Spot: 100, Strike: 100, Maturity: 1, Rate: 0.05, Volatility: 0.2},
		{Spot: 36, Strike: 40, Maturity: 1, Rate: 0.06, Volatility: 0.2},
		{Spot: 250, Strike: 180, Maturity: 0.25, Rate: -0.01, Volatility: 0.65},
		{Spot: 12.5, Strike: 20, Maturity: 3, Rate: 0.1, Volatility: 0.05},
	}
	for _, p := range cases {
		p.Kind = OptionKindCall
		call, err := NewAnalyticEngine(p)
		require.NoError(t, err)
		p.Kind = OptionKindPut
		put, err := NewAnalyticEngine(p)
		require.NoError(t, err)

		want := p.Spot - p.Strike*math.Exp(-p.Rate*p.Maturity)
		assert.InDelta(t, want, call.Price()-put.Price(), 1e-9, "params %+v", p)
	}
}

func TestAnalyticEngine_Deterministic(t *testing.T) {
	a, err := NewAnalyticEngine(atmParams(OptionKindCall))
	require.NoError(t, err)
	b, err := NewAnalyticEngine(atmParams(OptionKindCall))
	require.NoError(t, err)

	pa, ga := Evaluate(a)
	pb, gb := Evaluate(b)
	assert.Equal(t, pa, pb)
	assert.Equal(t, ga, gb)
	assert.Equal(t, pa, a.Price())
}

func TestAnalyticEngine_NearExpiryIsIntrinsic(t *testing.T) {
	for _, kind := range []OptionKind{OptionKindCall, OptionKindPut} {
		for _, spot := range []float64{80, 110} {
			e, err := NewAnalyticEngine(ContractParameters{Spot: spot, Strike: 100, Maturity: 1e-8, Rate: 0.05, Volatility: 0.2, Kind: kind})
			require.NoError(t, err)
			assert.InDelta(t, Intrinsic(kind, spot, 100), e.Price(), 1e-4)
		}
	}
}

func TestAnalyticEngine_RejectsBadInput(t *testing.T) {
	p := atmParams("STRADDLE")
	_, err := NewAnalyticEngine(p)
	assert.ErrorIs(t, err, ErrInvalidParameter)

	p = atmParams(OptionKindCall)
	p.Maturity = 0
	_, err = NewAnalyticEngine(p)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	p = atmParams(OptionKindCall)
	p.Volatility = -0.2
	_, err = NewAnalyticEngine(p)
	assert.ErrorIs(t, err, ErrDegenerateInput)

	p = atmParams(OptionKindCall)
	p.Spot = 0
	_, err = NewAnalyticEngine(p)
	assert.ErrorIs(t, err, ErrInvalidParameter)
}
