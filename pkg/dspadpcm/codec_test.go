// ABOUTME: Tests for the DSP-ADPCM decoder and encoder
// ABOUTME: Frame sizes, clamp bounds, loop history and round-trip quality
package dspadpcm

import (
	"bytes"
	"encoding/binary"
	"errors"
	"math"
	"math/rand"
	"testing"

	"github.com/Resonate-Protocol/dspadpcm-go/pkg/binio"
)

func sine(n int, amplitude, period float64) []int16 {
	out := make([]int16, n)
	for i := range out {
		out[i] = int16(amplitude * math.Sin(2*math.Pi*float64(i)/period))
	}
	return out
}

func snr(ref, got []int16) float64 {
	var signal, noise float64
	for i := range ref {
		s := float64(ref[i])
		d := s - float64(got[i])
		signal += s * s
		noise += d * d
	}
	if noise == 0 {
		return math.Inf(1)
	}
	return 10 * math.Log10(signal/noise)
}

func TestDecodeTruncated(t *testing.T) {
	_, _, err := Decode(make([]byte, 7), Context{}, 14)
	if !errors.Is(err, ErrTruncated) {
		t.Fatalf("expected ErrTruncated, got %v", err)
	}

	if _, _, err := Decode(make([]byte, 8), Context{}, 14); err != nil {
		t.Fatalf("unexpected error for a full frame: %v", err)
	}
}

func TestDecodeKnownFrame(t *testing.T) {
	var ctx Context
	ctx.Coefs[1] = [2]int16{2048, 0}

	// coef pair 1, scale 2^0; nibbles 1 and -1 alternate
	frame := []byte{0x10, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F, 0x1F}
	samples, next, err := Decode(frame, ctx, 14)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	for i, s := range samples {
		want := int16(1)
		if i%2 == 1 {
			want = 0
		}
		if s != want {
			t.Errorf("sample %d: expected %d, got %d", i, want, s)
		}
	}
	if next.Yn1 != 0 || next.Yn2 != 1 {
		t.Errorf("expected history (0, 1), got (%d, %d)", next.Yn1, next.Yn2)
	}
	if next.PredScale != 0x10 {
		t.Errorf("expected PredScale 0x10, got %#x", next.PredScale)
	}
	if ctx.Yn1 != 0 || ctx.PredScale != 0 {
		t.Errorf("input context was modified")
	}
}

func TestDecodeClampBounds(t *testing.T) {
	rng := rand.New(rand.NewSource(1))

	for round := 0; round < 50; round++ {
		var ctx Context
		for i := range ctx.Coefs {
			ctx.Coefs[i][0] = int16(rng.Intn(65536) - 32768)
			ctx.Coefs[i][1] = int16(rng.Intn(65536) - 32768)
		}
		ctx.Yn1 = int16(rng.Intn(65536) - 32768)
		ctx.Yn2 = int16(rng.Intn(65536) - 32768)

		src := make([]byte, 8*16)
		rng.Read(src)

		samples, _, err := Decode(src, ctx, 14*16)
		if err != nil {
			t.Fatalf("Decode failed: %v", err)
		}
		for i, s := range samples {
			if s < ClampMin || s > ClampMax {
				t.Fatalf("round %d sample %d out of bounds: %d", round, i, s)
			}
		}
	}
}

func TestDecodeStopsMidFrame(t *testing.T) {
	samples, _, err := Decode(make([]byte, 8), Context{}, 5)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(samples) != 5 {
		t.Errorf("expected 5 samples, got %d", len(samples))
	}
}

func TestEncodeRamp(t *testing.T) {
	samples := make([]int16, 14)
	for i := range samples {
		samples[i] = int16(i * 1000)
	}

	data, ctx, err := EncodeAuto(samples, -1)
	if err != nil && !errors.Is(err, ErrCoefficientOverflow) {
		t.Fatalf("EncodeAuto failed: %v", err)
	}
	if len(data) != 8 {
		t.Fatalf("expected 8 bytes, got %d", len(data))
	}
	if ctx.PredScale != uint16(data[0]) {
		t.Errorf("expected PredScale %#x, got %#x", data[0], ctx.PredScale)
	}

	decoded, _, err := Decode(data, ctx, len(samples))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	if len(decoded) != 14 {
		t.Fatalf("expected 14 samples, got %d", len(decoded))
	}
}

func TestEncodeLoopHistory(t *testing.T) {
	samples := sine(28, 8000, 20)

	tests := []struct {
		name      string
		loopStart int
		wantYn1   int16
		wantYn2   int16
	}{
		{"no loop", -1, 0, 0},
		{"loop at start", 0, 0, 0},
		{"loop at one", 1, samples[0], 0},
		{"loop at frame boundary", 14, samples[13], samples[12]},
		{"loop mid frame", 20, samples[19], samples[18]},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			coefs, _ := CalculateCoefficients(samples, DefaultCoefficientSettings())
			data, ctx, err := Encode(samples, Context{Coefs: coefs}, tt.loopStart)
			if err != nil {
				t.Fatalf("Encode failed: %v", err)
			}
			if ctx.LoopYn1 != tt.wantYn1 || ctx.LoopYn2 != tt.wantYn2 {
				t.Errorf("expected loop history (%d, %d), got (%d, %d)",
					tt.wantYn1, tt.wantYn2, ctx.LoopYn1, ctx.LoopYn2)
			}
			if tt.loopStart >= 0 {
				frame := tt.loopStart / SamplesPerFrame
				if ctx.LoopPredScale != uint16(data[frame*BytesPerFrame]) {
					t.Errorf("expected loop pred scale %#x, got %#x",
						data[frame*BytesPerFrame], ctx.LoopPredScale)
				}
			}
		})
	}
}

func TestEncodeInvalidLoop(t *testing.T) {
	_, _, err := Encode(make([]int16, 14), Context{}, 15)
	if !errors.Is(err, ErrInvalidLoop) {
		t.Fatalf("expected ErrInvalidLoop, got %v", err)
	}
}

func TestEncodeLength(t *testing.T) {
	for _, n := range []int{0, 1, 2, 13, 14, 15, 27, 28, 29, 500} {
		samples := sine(n, 12000, 37)
		data, _, err := Encode(samples, Context{}, -1)
		if err != nil {
			t.Fatalf("Encode(%d) failed: %v", n, err)
		}
		if len(data) != SampleCountToByteCount(n) {
			t.Errorf("Encode(%d): expected %d bytes, got %d", n, SampleCountToByteCount(n), len(data))
		}
	}
}

func TestEncodeRoundTripQuality(t *testing.T) {
	samples := sine(1400, 10000, 100)

	data, ctx, err := EncodeAuto(samples, 0)
	if err != nil {
		t.Fatalf("EncodeAuto failed: %v", err)
	}

	decoded, _, err := Decode(data, ctx, len(samples))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	if got := snr(samples, decoded); got < 10 {
		t.Errorf("expected SNR above 10 dB, got %.1f", got)
	}
}

func TestEncodeSilence(t *testing.T) {
	samples := make([]int16, 140)
	coefs, err := CalculateCoefficients(samples, DefaultCoefficientSettings())
	if err != nil {
		t.Fatalf("CalculateCoefficients failed: %v", err)
	}
	if coefs != (Coefficients{}) {
		t.Errorf("expected zero coefficients for silence, got %v", coefs)
	}

	data, ctx, err := Encode(samples, Context{Coefs: coefs}, -1)
	if err != nil {
		t.Fatalf("Encode failed: %v", err)
	}
	decoded, _, err := Decode(data, ctx, len(samples))
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}
	for i, s := range decoded {
		if s != 0 {
			t.Fatalf("sample %d: expected silence, got %d", i, s)
		}
	}
}

func TestDecodeResumes(t *testing.T) {
	samples := sine(56, 9000, 31)
	data, ctx, err := EncodeAuto(samples, -1)
	if err != nil {
		t.Fatalf("EncodeAuto failed: %v", err)
	}

	whole, _, err := Decode(data, ctx, 56)
	if err != nil {
		t.Fatalf("Decode failed: %v", err)
	}

	first, next, err := Decode(data, ctx, 28)
	if err != nil {
		t.Fatalf("Decode first half failed: %v", err)
	}
	second, _, err := DecodeFrom(data, ctx, next.History(), 28, 28)
	if err != nil {
		t.Fatalf("DecodeFrom failed: %v", err)
	}

	joined := append(first, second...)
	for i := range whole {
		if whole[i] != joined[i] {
			t.Fatalf("sample %d: expected %d, got %d", i, whole[i], joined[i])
		}
	}
}

func TestDecodeFromUnaligned(t *testing.T) {
	if _, _, err := DecodeFrom(make([]byte, 16), Context{}, History{}, 3, 5); err == nil {
		t.Fatal("expected error for unaligned start")
	}
}

func TestContextRoundTrip(t *testing.T) {
	ctx := Context{
		Gain:          1,
		PredScale:     0x25,
		Yn1:           -300,
		Yn2:           400,
		LoopPredScale: 0x41,
		LoopYn1:       -5,
		LoopYn2:       32767,
	}
	for i := range ctx.Coefs {
		ctx.Coefs[i] = [2]int16{int16(i * 100), int16(-i * 300)}
	}

	for _, order := range []binary.ByteOrder{binary.BigEndian, binary.LittleEndian} {
		buf := binio.NewBuffer(nil)
		w := binio.NewWriter(buf, order)
		if err := ctx.Write(w); err != nil {
			t.Fatalf("Write failed: %v", err)
		}
		if buf.Len() != ContextSize {
			t.Fatalf("expected %d bytes, got %d", ContextSize, buf.Len())
		}

		got, err := ReadContext(binio.NewReader(bytes.NewReader(buf.Bytes()), order))
		if err != nil {
			t.Fatalf("ReadContext failed: %v", err)
		}
		if got != ctx {
			t.Errorf("expected %+v, got %+v", ctx, got)
		}
	}
}

func TestContextTruncated(t *testing.T) {
	_, err := ReadContext(binio.NewReader(bytes.NewReader(make([]byte, ContextSize-1)), binary.BigEndian))
	if !errors.Is(err, binio.ErrTruncated) {
		t.Fatalf("expected binio.ErrTruncated, got %v", err)
	}
}

func TestCoefficientsFlat(t *testing.T) {
	var flat [16]int16
	for i := range flat {
		flat[i] = int16(i - 8)
	}
	c := CoefficientsFromFlat(flat)
	if c[3][0] != flat[6] || c[3][1] != flat[7] {
		t.Errorf("expected pair 3 = (%d, %d), got %v", flat[6], flat[7], c[3])
	}
	if c.Flat() != flat {
		t.Errorf("Flat did not restore original order")
	}
}
