// ABOUTME: DSP-ADPCM predictor context
// ABOUTME: Coefficient table plus current and loop-point history, 46-byte record
package dspadpcm

import (
	"github.com/Resonate-Protocol/dspadpcm-go/pkg/binio"
)

// ContextSize is the serialized size of a Context record in bytes
const ContextSize = 16*2 + 7*2

// Coefficients holds the eight predictor pairs; [i][0] weights the previous
// sample and [i][1] the one before it.
type Coefficients [8][2]int16

// Flat returns the coefficients in file order
func (c Coefficients) Flat() [16]int16 {
	var out [16]int16
	for i, pair := range c {
		out[i*2] = pair[0]
		out[i*2+1] = pair[1]
	}
	return out
}

// CoefficientsFromFlat splits a flat sequence of 16 values into pairs
func CoefficientsFromFlat(flat [16]int16) Coefficients {
	var c Coefficients
	for i := range c {
		c[i][0] = flat[i*2]
		c[i][1] = flat[i*2+1]
	}
	return c
}

// History is the two most recent samples fed to the predictor
type History struct {
	Yn1 int16
	Yn2 int16
}

// Context is the full predictor state of one DSP-ADPCM channel
type Context struct {
	Coefs     Coefficients
	Gain      uint16
	PredScale uint16
	Yn1       int16
	Yn2       int16

	LoopPredScale uint16
	LoopYn1       int16
	LoopYn2       int16
}

// History returns the current predictor history
func (c Context) History() History {
	return History{Yn1: c.Yn1, Yn2: c.Yn2}
}

// LoopHistory returns the history captured just before the loop start
func (c Context) LoopHistory() History {
	return History{Yn1: c.LoopYn1, Yn2: c.LoopYn2}
}

// WithHistory returns a copy of the context with its current history replaced
func (c Context) WithHistory(h History) Context {
	c.Yn1 = h.Yn1
	c.Yn2 = h.Yn2
	return c
}

// ReadContext reads a context record using the reader's byte order
func ReadContext(r *binio.Reader) (Context, error) {
	var ctx Context
	var flat [16]int16
	for i := range flat {
		v, err := r.I16()
		if err != nil {
			return Context{}, err
		}
		flat[i] = v
	}
	ctx.Coefs = CoefficientsFromFlat(flat)

	var err error
	if ctx.Gain, err = r.U16(); err != nil {
		return Context{}, err
	}
	if ctx.PredScale, err = r.U16(); err != nil {
		return Context{}, err
	}
	if ctx.Yn1, err = r.I16(); err != nil {
		return Context{}, err
	}
	if ctx.Yn2, err = r.I16(); err != nil {
		return Context{}, err
	}
	if ctx.LoopPredScale, err = r.U16(); err != nil {
		return Context{}, err
	}
	if ctx.LoopYn1, err = r.I16(); err != nil {
		return Context{}, err
	}
	if ctx.LoopYn2, err = r.I16(); err != nil {
		return Context{}, err
	}
	return ctx, nil
}

// Write serializes the context using the writer's byte order
func (c Context) Write(w *binio.Writer) error {
	for _, v := range c.Coefs.Flat() {
		w.I16(v)
	}
	w.U16(c.Gain)
	w.U16(c.PredScale)
	w.I16(c.Yn1)
	w.I16(c.Yn2)
	w.U16(c.LoopPredScale)
	w.I16(c.LoopYn1)
	w.I16(c.LoopYn2)
	return w.Err()
}
