package signal

import (
	"testing"

	"github.com/rustyeddy/tickbot/market"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// bufferWithDigits builds a buffer whose derived digit sequence is exactly
// the given digits. Prices stay near 100 so the price-side indicators see a
// flat series.
func bufferWithDigits(t *testing.T, digits []int) *market.Buffer {
	t.Helper()
	b := market.NewBuffer()
	for _, d := range digits {
		price := 100 + float64(d)*0.1
		b.Add(price)
		require.Equal(t, d, market.LastDigit(price))
	}
	return b
}

func bufferWithPrices(prices []float64) *market.Buffer {
	b := market.NewBuffer()
	for _, p := range prices {
		b.Add(p)
	}
	return b
}

func TestScoreDirectionalUptrend(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100 + float64(i)*0.5
	}
	s := NewScorer(Policy{})

	sig := s.Score(bufferWithPrices(prices), "R_100", Request{Contract: market.Call})

	require.NotNil(t, sig)
	assert.Equal(t, market.Call, sig.Contract)
	assert.GreaterOrEqual(t, sig.Confidence, 70.0)
	assert.LessOrEqual(t, sig.Confidence, float64(MaxConfidence))
	assert.Equal(t, "R_100", sig.Symbol)
	assert.NotEmpty(t, sig.ID)
	assert.NotEmpty(t, sig.Reason)
}

func TestScoreDirectionalDowntrend(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 200 - float64(i)*0.5
	}
	s := NewScorer(Policy{})

	sig := s.Score(bufferWithPrices(prices), "R_100", Request{Contract: market.Call})

	require.NotNil(t, sig)
	assert.Equal(t, market.Put, sig.Contract)
	assert.GreaterOrEqual(t, sig.Confidence, 70.0)
}

func TestScoreDirectionalFlatNoTrade(t *testing.T) {
	prices := make([]float64, 60)
	for i := range prices {
		prices[i] = 100
	}
	s := NewScorer(Policy{})

	sig := s.Score(bufferWithPrices(prices), "R_100", Request{Contract: market.Call})
	assert.Nil(t, sig, "a flat window clears no entry threshold")
}

func TestScoreDirectionalInsufficientHistory(t *testing.T) {
	s := NewScorer(Policy{})
	sig := s.Score(bufferWithPrices([]float64{100, 101}), "R_100", Request{Contract: market.Put})
	assert.Nil(t, sig)
}

// Sixty digit samples, all even except five: the even-share reversion layer
// must call odd regardless of the configured side.
func TestScoreParityHeavyEvenRevertsToOdd(t *testing.T) {
	digits := make([]int, 0, 60)
	for i := 0; i < 55; i++ {
		digits = append(digits, (i%5)*2) // 0,2,4,6,8
	}
	for i := 0; i < 5; i++ {
		digits = append(digits, i*2+1) // 1,3,5,7,9
	}
	s := NewScorer(Policy{})

	sig := s.Score(bufferWithDigits(t, digits), "R_50", Request{Contract: market.DigitEven})

	require.NotNil(t, sig)
	assert.Equal(t, market.DigitOdd, sig.Contract)
	assert.GreaterOrEqual(t, sig.Confidence, 70.0)
	assert.LessOrEqual(t, sig.Confidence, float64(MaxConfidence))
}

func TestScoreParityHeavyOddRevertsToEven(t *testing.T) {
	digits := make([]int, 0, 60)
	for i := 0; i < 55; i++ {
		digits = append(digits, (i%5)*2+1)
	}
	for i := 0; i < 5; i++ {
		digits = append(digits, i*2)
	}
	s := NewScorer(Policy{})

	sig := s.Score(bufferWithDigits(t, digits), "R_50", Request{Contract: market.DigitEven})

	require.NotNil(t, sig)
	assert.Equal(t, market.DigitEven, sig.Contract)
	assert.GreaterOrEqual(t, sig.Confidence, 70.0)
}

func TestScoreParityStreakReverses(t *testing.T) {
	// Balanced share (20 even / 20 odd) with a trailing run of five evens.
	digits := make([]int, 0, 40)
	for i := 0; i < 15; i++ {
		digits = append(digits, 1, 2)
	}
	digits = append(digits, 1, 3, 5, 7, 9)
	digits = append(digits, 2, 4, 6, 8, 0)
	s := NewScorer(Policy{})

	sig := s.Score(bufferWithDigits(t, digits), "R_50", Request{Contract: market.DigitOdd})

	require.NotNil(t, sig)
	assert.Equal(t, market.DigitOdd, sig.Contract)
	assert.InDelta(t, 72, sig.Confidence, 0.001)
}

func TestScoreParityTooFewSamples(t *testing.T) {
	s := NewScorer(Policy{})
	sig := s.Score(bufferWithDigits(t, []int{2, 4, 6, 8}), "R_50", Request{Contract: market.DigitEven})
	assert.Nil(t, sig)
}

func TestScoreParityBalancedNoTrade(t *testing.T) {
	digits := make([]int, 0, 40)
	for i := 0; i < 20; i++ {
		digits = append(digits, 1, 2)
	}
	// Trailing digits alternate parity, so no streak either.
	s := NewScorer(Policy{})

	sig := s.Score(bufferWithDigits(t, digits), "R_50", Request{Contract: market.DigitEven})
	assert.Nil(t, sig)
}

// An odd-heavy first half and an even-heavy second half keep the full-window
// share balanced at 0.50 and every parity run at two, yet the trailing twenty
// digits run 70% even. Only the short-horizon ratio layer can see that.
func TestScoreParityRecentRatioBias(t *testing.T) {
	s := NewScorer(Policy{})

	digits := make([]int, 0, 40)
	for i := 0; i < 6; i++ {
		digits = append(digits, 1, 1, 2)
	}
	digits = append(digits, 1, 1)
	for i := 0; i < 6; i++ {
		digits = append(digits, 2, 2, 1)
	}
	digits = append(digits, 2, 2)

	sig := s.Score(bufferWithDigits(t, digits), "R_50", Request{Contract: market.DigitEven})

	require.NotNil(t, sig)
	assert.Equal(t, market.DigitOdd, sig.Contract)
	assert.InDelta(t, 75, sig.Confidence, 0.001)
}

func TestScoreParityRecentRatioBiasOddSide(t *testing.T) {
	s := NewScorer(Policy{})

	digits := make([]int, 0, 40)
	for i := 0; i < 6; i++ {
		digits = append(digits, 2, 2, 1)
	}
	digits = append(digits, 2, 2)
	for i := 0; i < 6; i++ {
		digits = append(digits, 1, 1, 2)
	}
	digits = append(digits, 1, 1)

	sig := s.Score(bufferWithDigits(t, digits), "R_50", Request{Contract: market.DigitEven})

	require.NotNil(t, sig)
	assert.Equal(t, market.DigitEven, sig.Contract)
	assert.InDelta(t, 75, sig.Confidence, 0.001)
}

func TestConfidenceAlwaysInRange(t *testing.T) {
	s := NewScorer(Policy{})

	requests := []Request{
		{Contract: market.Call},
		{Contract: market.DigitEven},
		{Contract: market.DigitOver, Barrier: 5},
		{Contract: market.DigitMatch, Barrier: 7},
		{Contract: market.DigitDiff, Barrier: 7},
	}

	// A spread of windows: flat, trending, digit-skewed, tiny.
	windows := [][]float64{
		{},
		{100.1},
		{100.2, 100.4, 100.6, 100.8},
	}
	trend := make([]float64, 80)
	for i := range trend {
		trend[i] = 100 + float64(i)*0.7
	}
	windows = append(windows, trend)
	skew := make([]float64, 60)
	for i := range skew {
		skew[i] = 100 + float64(i%2)*0.2 // digits 0 and 2 only
	}
	windows = append(windows, skew)

	for _, w := range windows {
		for _, req := range requests {
			sig := s.Score(bufferWithPrices(w), "R_100", req)
			if sig == nil {
				continue
			}
			assert.GreaterOrEqual(t, sig.Confidence, 0.0)
			assert.LessOrEqual(t, sig.Confidence, float64(MaxConfidence))
		}
	}
}

func TestScoreUnknownFamily(t *testing.T) {
	s := NewScorer(Policy{})
	sig := s.Score(bufferWithPrices([]float64{100, 101}), "R_100", Request{Contract: market.ContractType("NOPE")})
	assert.Nil(t, sig)
}
