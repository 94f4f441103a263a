package u256

import "math/big"

// DigitsPerWord is the number of base-10 digits carried by one 256-bit word.
// Above 10^77 - 1 a 256-bit register can no longer hold every 77-digit value
// with a spare decimal place, so encoders roll to the next word there.
const DigitsPerWord = 77

var (
	ten = big.NewInt(10)

	// ModLimit is 10^77 - 1, the largest radix marker that still fits a
	// 256-bit register with a full digit of headroom.
	ModLimit = func() *big.Int {
		limit := new(big.Int).Exp(ten, big.NewInt(DigitsPerWord), nil)
		return limit.Sub(limit, big.NewInt(1))
	}()
)

// DigitStream reads base-10 digits LSD-first across a sequence of 256-bit
// words. It keeps the two running radix markers (mod and prev) of the
// on-chain encoding: each read computes (word mod 10*mod) / prev and then
// advances both markers by a factor of ten. When the marker would pass
// ModLimit the stream moves to the next word and resets the markers.
//
// Reads past the final word yield zero digits, so decoding is total on any
// input.
type DigitStream struct {
	words []Word
	idx   int
	cur   *big.Int
	mod   *big.Int
	prev  *big.Int

	// scratch values reused across reads
	tenMod *big.Int
	digit  *big.Int
}

// NewDigitStream builds a digit reader over words. skip pre-advances the
// markers by skip digit positions within the first word, which is how the
// solution stream steps over its leading 3-digit counter.
func NewDigitStream(words []Word, skip int) *DigitStream {
	start := new(big.Int).Exp(ten, big.NewInt(int64(skip)), nil)
	s := &DigitStream{
		words:  words,
		mod:    new(big.Int).Set(start),
		prev:   start,
		tenMod: new(big.Int),
		digit:  new(big.Int),
	}
	s.loadWord()
	return s
}

func (s *DigitStream) loadWord() {
	if s.idx < len(s.words) {
		s.cur = s.words[s.idx].Big()
	} else {
		s.cur = new(big.Int)
	}
}

func (s *DigitStream) advanceWord() {
	s.idx++
	s.loadWord()
	s.mod.SetInt64(1)
	s.prev = new(big.Int).SetInt64(1)
}

func (s *DigitStream) step() {
	s.tenMod.Mul(s.mod, ten)
	s.prev = new(big.Int).Set(s.tenMod)
	s.mod.Set(s.tenMod)
}

// Next returns the next digit in the stream.
func (s *DigitStream) Next() uint8 {
	if s.mod.Cmp(ModLimit) > 0 {
		s.advanceWord()
	}
	s.tenMod.Mul(s.mod, ten)
	s.digit.Mod(s.cur, s.tenMod)
	s.digit.Div(s.digit, s.prev)
	d := uint8(s.digit.Uint64())
	s.step()
	return d
}

// Skip advances n digit positions without reading them. Skipped positions
// still move the markers (and roll words) so later digits stay aligned.
func (s *DigitStream) Skip(n int) {
	for i := 0; i < n; i++ {
		if s.mod.Cmp(ModLimit) > 0 {
			s.advanceWord()
		}
		s.step()
	}
}

// DigitWriter is the encoder-side inverse of DigitStream: digits are appended
// LSD-first, 77 per word, and flushed into 256-bit words.
type DigitWriter struct {
	words []Word
	cur   *big.Int
	place *big.Int
	count int
}

// NewDigitWriter builds an empty digit writer.
func NewDigitWriter() *DigitWriter {
	return &DigitWriter{
		cur:   new(big.Int),
		place: big.NewInt(1),
	}
}

// Push appends one digit. Digits above 9 are reduced mod 10.
func (w *DigitWriter) Push(d uint8) {
	if w.count == DigitsPerWord {
		w.flush()
	}
	term := new(big.Int).Mul(w.place, big.NewInt(int64(d%10)))
	w.cur.Add(w.cur, term)
	w.place.Mul(w.place, ten)
	w.count++
}

// PushN appends n copies of the same digit.
func (w *DigitWriter) PushN(d uint8, n int) {
	for i := 0; i < n; i++ {
		w.Push(d)
	}
}

func (w *DigitWriter) flush() {
	w.words = append(w.words, FromBig(w.cur))
	w.cur = new(big.Int)
	w.place = big.NewInt(1)
	w.count = 0
}

// Words returns the encoded words, padding with zero words up to min entries.
func (w *DigitWriter) Words(min int) []Word {
	out := make([]Word, len(w.words))
	copy(out, w.words)
	if w.count > 0 {
		out = append(out, FromBig(w.cur))
	}
	for len(out) < min {
		out = append(out, Zero)
	}
	return out
}
