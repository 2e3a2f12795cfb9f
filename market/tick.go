package market

import "strconv"

// Tick is one price update for a symbol.
type Tick struct {
	Symbol string
	Price  float64
	Epoch  int64
}

// LastDigit returns the last significant decimal digit of a price, the value
// the digit contract families settle on.
//
// The broker quotes prices at the symbol's native precision and the final
// printed digit is the one that matters, so we derive it from the shortest
// decimal representation rather than from a fixed pip size.
func LastDigit(price float64) int {
	s := strconv.FormatFloat(price, 'f', -1, 64)
	for i := len(s) - 1; i >= 0; i-- {
		c := s[i]
		if c >= '0' && c <= '9' {
			return int(c - '0')
		}
	}
	return 0
}
