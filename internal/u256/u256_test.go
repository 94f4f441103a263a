package u256

import (
	"encoding/json"
	"math/big"
	"testing"
)

func TestFromUint64RoundTrip(t *testing.T) {
	cases := []uint64{0, 1, 9, 10, 255, 1 << 32, 18446744073709551615}
	for _, v := range cases {
		w := FromUint64(v)
		if got := w.Uint64(); got != v {
			t.Errorf("FromUint64(%d).Uint64() = %d", v, got)
		}
	}
}

func TestFromDecimal(t *testing.T) {
	cases := []struct {
		in      string
		want    uint64
		wantErr bool
	}{
		{in: "0", want: 0},
		{in: "123456789", want: 123456789},
		{in: "", wantErr: true},
		{in: "abc", wantErr: true},
		{in: "-5", wantErr: true},
	}
	for _, tc := range cases {
		w, err := FromDecimal(tc.in)
		if tc.wantErr {
			if err == nil {
				t.Errorf("FromDecimal(%q): expected error", tc.in)
			}
			continue
		}
		if err != nil {
			t.Errorf("FromDecimal(%q): %v", tc.in, err)
			continue
		}
		if got := w.Uint64(); got != tc.want {
			t.Errorf("FromDecimal(%q).Uint64() = %d, want %d", tc.in, got, tc.want)
		}
	}
}

func TestFromHex(t *testing.T) {
	w, err := FromHex("0xff")
	if err != nil {
		t.Fatalf("FromHex: %v", err)
	}
	if got := w.Uint64(); got != 255 {
		t.Fatalf("FromHex(0xff).Uint64() = %d", got)
	}
	if _, err := FromHex("0xzz"); err == nil {
		t.Fatal("FromHex(0xzz): expected error")
	}
}

func TestFromBigWraps(t *testing.T) {
	// 2^256 + 7 reduces to 7.
	v := new(big.Int).Lsh(big.NewInt(1), 256)
	v.Add(v, big.NewInt(7))
	w := FromBig(v)
	if got := w.Uint64(); got != 7 {
		t.Fatalf("FromBig(2^256+7).Uint64() = %d, want 7", got)
	}
}

func TestStringIsDecimal(t *testing.T) {
	w := FromUint64(1234567890)
	if got := w.String(); got != "1234567890" {
		t.Fatalf("String() = %q", got)
	}
}

func TestJSONRoundTrip(t *testing.T) {
	w := FromUint64(987654321)
	raw, err := json.Marshal(w)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	if string(raw) != `"987654321"` {
		t.Fatalf("Marshal = %s", raw)
	}
	var back Word
	if err := json.Unmarshal(raw, &back); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if back != w {
		t.Fatalf("round trip mismatch: %s != %s", back, w)
	}
}

func TestCmp(t *testing.T) {
	a := FromUint64(1)
	b := FromUint64(2)
	if a.Cmp(b) >= 0 || b.Cmp(a) <= 0 || a.Cmp(a) != 0 {
		t.Fatal("Cmp ordering wrong")
	}
}

func TestDigitStreamReadsLSDFirst(t *testing.T) {
	words := []Word{FromUint64(90210)}
	s := NewDigitStream(words, 0)
	want := []uint8{0, 1, 2, 0, 9, 0, 0}
	for i, d := range want {
		if got := s.Next(); got != d {
			t.Fatalf("digit %d = %d, want %d", i, got, d)
		}
	}
}

func TestDigitStreamSkip(t *testing.T) {
	words := []Word{FromUint64(123456)}
	s := NewDigitStream(words, 3)
	if got := s.Next(); got != 3 {
		t.Fatalf("skipped stream first digit = %d, want 3", got)
	}
	if got := s.Next(); got != 2 {
		t.Fatalf("skipped stream second digit = %d, want 2", got)
	}
}

func TestDigitStreamWordBoundary(t *testing.T) {
	words := []Word{FromUint64(5), FromUint64(7)}
	s := NewDigitStream(words, 0)
	if got := s.Next(); got != 5 {
		t.Fatalf("first digit = %d, want 5", got)
	}
	for i := 1; i < DigitsPerWord; i++ {
		if got := s.Next(); got != 0 {
			t.Fatalf("digit %d = %d, want 0", i, got)
		}
	}
	// Digit 77 is the first digit of the second word.
	if got := s.Next(); got != 7 {
		t.Fatalf("digit %d = %d, want 7", DigitsPerWord, got)
	}
}

func TestDigitStreamPastEndYieldsZeros(t *testing.T) {
	s := NewDigitStream([]Word{FromUint64(1)}, 0)
	for i := 0; i < DigitsPerWord*2; i++ {
		s.Next()
	}
	if got := s.Next(); got != 0 {
		t.Fatalf("past-end digit = %d, want 0", got)
	}
}

func TestDigitWriterRoundTrip(t *testing.T) {
	digits := make([]uint8, 0, 200)
	for i := 0; i < 200; i++ {
		digits = append(digits, uint8(i*7%10))
	}

	w := NewDigitWriter()
	for _, d := range digits {
		w.Push(d)
	}
	words := w.Words(0)
	if len(words) != 3 {
		t.Fatalf("200 digits packed into %d words, want 3", len(words))
	}

	s := NewDigitStream(words, 0)
	for i, d := range digits {
		if got := s.Next(); got != d {
			t.Fatalf("digit %d = %d, want %d", i, got, d)
		}
	}
}

func TestDigitWriterPads(t *testing.T) {
	w := NewDigitWriter()
	w.Push(4)
	words := w.Words(4)
	if len(words) != 4 {
		t.Fatalf("Words(4) returned %d words", len(words))
	}
	if words[0].Uint64() != 4 {
		t.Fatalf("first word = %s", words[0])
	}
	for i := 1; i < 4; i++ {
		if !words[i].IsZero() {
			t.Fatalf("padding word %d not zero", i)
		}
	}
}

func TestDigitWriterSkipAlignment(t *testing.T) {
	// Encoder-side counter digits followed by payload digits must align with
	// a reader that skips the counter.
	w := NewDigitWriter()
	w.Push(1)
	w.Push(0)
	w.Push(0)
	payload := []uint8{9, 8, 7, 6}
	for _, d := range payload {
		w.Push(d)
	}
	words := w.Words(0)

	s := NewDigitStream(words, 3)
	for i, d := range payload {
		if got := s.Next(); got != d {
			t.Fatalf("payload digit %d = %d, want %d", i, got, d)
		}
	}
}
