// SPDX-License-Identifier: EPL-2.0

package click

import (
	"fmt"
	"math"
	"math/cmplx"
)

// biquad is one second-order section with normalized a0 = 1.
type biquad struct {
	b0, b1, b2 float64
	a1, a2     float64
}

// sosChain is a cascade of second-order sections in direct-form II
// transposed, holding two state scalars per section. State carries
// across blocks so a file can be filtered block by block.
type sosChain struct {
	sections []biquad
	state    [][2]float64
}

// newBandpass designs a Butterworth bandpass of the given prototype
// order via the analog prototype → lp2bp → bilinear transform route and
// returns it factored into order second-order sections (2·order poles).
func newBandpass(order int, low, high, fs float64) (*sosChain, error) {
	if low <= 0 || high <= low || high >= fs/2 {
		return nil, fmt.Errorf("bandpass edges %g..%g invalid for %g Hz", low, high, fs)
	}

	// analog Butterworth prototype poles, left half plane
	proto := make([]complex128, order)
	for k := range order {
		theta := math.Pi/2 + math.Pi*float64(2*k+1)/float64(2*order)
		proto[k] = cmplx.Exp(complex(0, theta))
	}

	// pre-warp the band edges for the bilinear transform
	w1 := 2 * fs * math.Tan(math.Pi*low/fs)
	w2 := 2 * fs * math.Tan(math.Pi*high/fs)
	bw := w2 - w1
	w0sq := complex(w1*w2, 0)

	// lowpass → bandpass: every prototype pole splits into a pair; the
	// transform adds order zeros at s = 0 and a gain of bw^order
	poles := make([]complex128, 0, 2*order)
	for _, p := range proto {
		ps := p * complex(bw/2, 0)
		d := cmplx.Sqrt(ps*ps - w0sq)
		poles = append(poles, ps+d, ps-d)
	}
	gain := math.Pow(bw, float64(order))

	// bilinear transform; the analog zeros at 0 map to z = 1 and the
	// remaining order zeros land at z = -1
	fs2 := complex(2*fs, 0)
	zpoles := make([]complex128, len(poles))
	den := complex(1, 0)
	for i, p := range poles {
		zpoles[i] = (fs2 + p) / (fs2 - p)
		den *= fs2 - p
	}
	k := gain * math.Pow(2*fs, float64(order)) / real(den)

	// pair conjugate poles into sections; every section gets one zero
	// at +1 and one at -1, so b = [1, 0, -1] with the gain on the first
	upper := make([]complex128, 0, order)
	for _, p := range zpoles {
		if imag(p) > 0 {
			upper = append(upper, p)
		}
	}
	if len(upper) != order {
		return nil, fmt.Errorf("pole pairing failed: %d upper-half poles for order %d",
			len(upper), order)
	}

	chain := &sosChain{
		sections: make([]biquad, order),
		state:    make([][2]float64, order),
	}
	for i, p := range upper {
		s := biquad{
			b0: 1,
			b2: -1,
			a1: -2 * real(p),
			a2: real(p)*real(p) + imag(p)*imag(p),
		}
		if i == 0 {
			s.b0 = k
			s.b2 = -k
		}
		chain.sections[i] = s
	}
	return chain, nil
}

// process filters one sample through the cascade.
func (c *sosChain) process(x float64) float64 {
	for i, s := range c.sections {
		st := &c.state[i]
		y := s.b0*x + st[0]
		st[0] = s.b1*x - s.a1*y + st[1]
		st[1] = s.b2*x - s.a2*y
		x = y
	}
	return x
}

// movingAverage is a causal running mean over the last width samples,
// carried across blocks.
type movingAverage struct {
	width int
	ring  []float64
	sum   float64
	pos   int
	fill  int
}

func newMovingAverage(width int) *movingAverage {
	if width < 1 {
		width = 1
	}
	return &movingAverage{width: width, ring: make([]float64, width)}
}

func (m *movingAverage) process(x float64) float64 {
	m.sum -= m.ring[m.pos]
	m.ring[m.pos] = x
	m.sum += x
	m.pos = (m.pos + 1) % m.width
	if m.fill < m.width {
		m.fill++
	}
	return m.sum / float64(m.fill)
}
