package dsp

import "math"

// besselI0 evaluates the zeroth-order modified Bessel function of the
// first kind via its power series; used to shape the Kaiser window.
// The series converges quickly for the beta values used in practice
// (roughly 0-20), so a fixed number of terms is sufficient.
func besselI0(x float64) float64 {
	sum := 1.0
	term := 1.0
	halfX := x / 2
	for k := 1; k < 32; k++ {
		term *= (halfX / float64(k))
		term *= halfX
		sum += term
		if term < sum*1e-16 {
			break
		}
	}
	return sum
}

// KaiserWindow returns an n-point Kaiser window with shape parameter
// beta. beta trades main-lobe width for stop-band attenuation; larger
// beta gives more stop-band attenuation at the cost of a wider
// transition band.
func KaiserWindow(n int, beta float64) []float64 {
	w := make([]float64, n)
	if n == 1 {
		w[0] = 1
		return w
	}

	denom := besselI0(beta)
	m := float64(n - 1)
	for i := 0; i < n; i++ {
		r := 2*float64(i)/m - 1 // -1..1
		arg := beta * math.Sqrt(1-r*r)
		w[i] = besselI0(arg) / denom
	}
	return w
}

// FrequencyKernel builds the frequency-domain gain mask used to select
// a channel's passband directly out of the shared spectrum: ~1 across
// the interior of [minIF, maxIF] (both expressed as fractions of the
// sample rate, so they may be negative or straddle 0 for a
// complex-sampled front end), 0 outside it, with the transition at
// each edge shaped by the rising half of a Kaiser window.
//
// A channel's tuned frequency lands at bin 0 of the slice this kernel
// multiplies (FilterOutput.Retune puts the desired frequency at slice
// DC), so the passband sits near bin 0 and wraps toward bin n-1, not
// around n/2. Indexing a plain n-point Kaiser window by raw bin
// position would put that window's own peak at n/2 - Nyquist, not the
// passband - and its minimum at the edges where the passband actually
// is. Building the taper from each band edge inward avoids that: the
// interior of the band stays flat at unity gain regardless of where
// it falls in the bin range, and only the edges taper.
//
// n is the number of frequency bins the kernel covers (the channel's
// output block length, olen, since the kernel multiplies the
// bin-selected slice of the shared spectrum element-wise before the
// inverse FFT).
func FrequencyKernel(n int, minIF, maxIF, beta float64) []float64 {
	kernel := make([]float64, n)

	lo := minIF * float64(n)
	hi := maxIF * float64(n)
	if lo > hi {
		lo, hi = hi, lo
	}

	bandWidth := hi - lo
	if bandWidth <= 0 {
		return kernel
	}

	rampBins := int(bandWidth / 4)
	if maxRamp := n / 16; rampBins > maxRamp {
		rampBins = maxRamp
	}
	if rampBins < 1 {
		rampBins = 1
	}
	trans := float64(rampBins)

	// The rising half of a (2*rampBins-1)-point Kaiser window climbs
	// monotonically from the skirt minimum to 1.0 at its center tap;
	// used as the taper shape on both edges of the band.
	ramp := KaiserWindow(2*rampBins-1, beta)[:rampBins]

	for i := 0; i < n; i++ {
		// Map bin index i (0..n-1) onto a centered frequency axis the
		// same way an FFT's bins wrap: bins past n/2 represent negative
		// frequency.
		f := float64(i)
		if f > float64(n)/2 {
			f -= float64(n)
		}

		switch {
		case f < lo-trans || f > hi+trans:
			kernel[i] = 0
		case f >= lo+trans && f <= hi-trans:
			kernel[i] = 1
		case f < lo+trans:
			// Rising left edge: lo-trans (gain 0) .. lo+trans (gain 1).
			pos := (f - (lo - trans)) / (2 * trans) * float64(rampBins-1)
			kernel[i] = ramp[clampRampIndex(pos, rampBins)]
		default:
			// Falling right edge: hi-trans (gain 1) .. hi+trans (gain 0).
			pos := (f - (hi - trans)) / (2 * trans) * float64(rampBins-1)
			kernel[i] = ramp[rampBins-1-clampRampIndex(pos, rampBins)]
		}
	}
	return kernel
}

func clampRampIndex(pos float64, rampBins int) int {
	idx := int(math.Round(pos))
	if idx < 0 {
		return 0
	}
	if idx >= rampBins {
		return rampBins - 1
	}
	return idx
}
