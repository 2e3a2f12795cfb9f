package market

// Capacity is the bound on the per-symbol rolling window. Older samples are
// evicted first once the window is full.
const Capacity = 100

// Buffer is a bounded rolling window of prices for one symbol, with the
// derived last-digit sequence kept in lockstep. Both sequences always have
// equal length.
type Buffer struct {
	prices []float64
	digits []int
}

// NewBuffer returns an empty buffer.
func NewBuffer() *Buffer {
	return &Buffer{
		prices: make([]float64, 0, Capacity),
		digits: make([]int, 0, Capacity),
	}
}

// Add appends a price sample and its derived digit, evicting the oldest
// sample if the window is full.
func (b *Buffer) Add(price float64) {
	b.prices = append(b.prices, price)
	b.digits = append(b.digits, LastDigit(price))
	if len(b.prices) > Capacity {
		b.prices = b.prices[1:]
		b.digits = b.digits[1:]
	}
}

// Len returns the number of samples currently held.
func (b *Buffer) Len() int { return len(b.prices) }

// Prices returns a copy of the price window, oldest first.
func (b *Buffer) Prices() []float64 {
	out := make([]float64, len(b.prices))
	copy(out, b.prices)
	return out
}

// Digits returns a copy of the digit window, oldest first.
func (b *Buffer) Digits() []int {
	out := make([]int, len(b.digits))
	copy(out, b.digits)
	return out
}

// LastPrice returns the most recent price, or 0 when empty.
func (b *Buffer) LastPrice() float64 {
	if len(b.prices) == 0 {
		return 0
	}
	return b.prices[len(b.prices)-1]
}

// LastDigits returns a copy of the most recent n digits, oldest first.
// When fewer than n samples exist the whole window is returned.
func (b *Buffer) LastDigits(n int) []int {
	if n > len(b.digits) {
		n = len(b.digits)
	}
	out := make([]int, n)
	copy(out, b.digits[len(b.digits)-n:])
	return out
}

// Reset drops all samples.
func (b *Buffer) Reset() {
	b.prices = b.prices[:0]
	b.digits = b.digits[:0]
}

// Book holds one Buffer per symbol. Buffers are created on first use.
type Book struct {
	buffers map[string]*Buffer
}

// NewBook returns an empty book.
func NewBook() *Book {
	return &Book{buffers: make(map[string]*Buffer)}
}

// Add appends a price sample to the symbol's buffer, creating it if needed.
func (bk *Book) Add(symbol string, price float64) {
	bk.Buffer(symbol).Add(price)
}

// Buffer returns the buffer for symbol, creating it if needed.
func (bk *Book) Buffer(symbol string) *Buffer {
	b, ok := bk.buffers[symbol]
	if !ok {
		b = NewBuffer()
		bk.buffers[symbol] = b
	}
	return b
}

// Reset drops every symbol's samples.
func (bk *Book) Reset() {
	bk.buffers = make(map[string]*Buffer)
}
