package pattern

// DuePrediction names the least-frequent digit as "due" under mean reversion.
type DuePrediction struct {
	Digit      int
	Confidence float64
}

// DigitStats is the frequency analysis of a trailing digit window.
type DigitStats struct {
	Counts    [10]int
	Hot       []int // count > 1.3x average
	Cold      []int // count < 0.7x average
	Hottest   int
	Coldest   int
	EvenRatio float64
	Due       *DuePrediction
}

// AnalyzeDigits computes per-digit counts, hot/cold membership, the even/odd
// ratio and a mean-reversion "due" prediction. The prediction only appears
// when the hottest-minus-coldest count gap is at least 3, with confidence
// min(85, 55 + gap*5).
func AnalyzeDigits(digits []int) DigitStats {
	var s DigitStats
	if len(digits) == 0 {
		return s
	}

	even := 0
	for _, d := range digits {
		if d < 0 || d > 9 {
			continue
		}
		s.Counts[d]++
		if d%2 == 0 {
			even++
		}
	}
	s.EvenRatio = float64(even) / float64(len(digits))

	avg := float64(len(digits)) / 10
	for d, c := range s.Counts {
		if float64(c) > 1.3*avg {
			s.Hot = append(s.Hot, d)
		}
		if float64(c) < 0.7*avg {
			s.Cold = append(s.Cold, d)
		}
		if c > s.Counts[s.Hottest] {
			s.Hottest = d
		}
		if c < s.Counts[s.Coldest] {
			s.Coldest = d
		}
	}

	gap := s.Counts[s.Hottest] - s.Counts[s.Coldest]
	if gap >= 3 {
		conf := 55 + float64(gap)*5
		if conf > 85 {
			conf = 85
		}
		s.Due = &DuePrediction{Digit: s.Coldest, Confidence: conf}
	}

	return s
}

// ParityStreak returns the length of the trailing run of same-parity digits
// and whether that run is even. Zero length for an empty window.
func ParityStreak(digits []int) (length int, even bool) {
	if len(digits) == 0 {
		return 0, false
	}
	even = digits[len(digits)-1]%2 == 0
	for i := len(digits) - 1; i >= 0; i-- {
		if (digits[i]%2 == 0) != even {
			break
		}
		length++
	}
	return length, even
}

// SideStreak returns the length of the trailing run of digits strictly on one
// side of the barrier, and which side. Digits equal to the barrier break the
// run.
func SideStreak(digits []int, barrier int) (length int, over bool) {
	if len(digits) == 0 {
		return 0, false
	}
	last := digits[len(digits)-1]
	if last == barrier {
		return 0, false
	}
	over = last > barrier
	for i := len(digits) - 1; i >= 0; i-- {
		d := digits[i]
		if d == barrier || (d > barrier) != over {
			break
		}
		length++
	}
	return length, over
}

// DigitStreak returns the length of the trailing run of the exact digit.
func DigitStreak(digits []int, target int) int {
	n := 0
	for i := len(digits) - 1; i >= 0; i-- {
		if digits[i] != target {
			break
		}
		n++
	}
	return n
}
