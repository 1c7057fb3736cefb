package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
	"gonum.org/v1/gonum/stat"
)

// Spectrum is a one-sided amplitude spectrum.
type Spectrum struct {
	Freq  []float64 // Hz
	Power []float64
}

// PowerSpectrum returns the amplitude spectrum of data sampled every dt
// seconds. The mean is removed first so the DC bin only holds residue.
func PowerSpectrum(data []float64, dt float64) (Spectrum, error) {
	n := len(data)
	if n < 2 {
		return Spectrum{}, fmt.Errorf("need at least 2 samples, got %d", n)
	}
	if dt <= 0 {
		return Spectrum{}, fmt.Errorf("sample interval must be positive, got %f", dt)
	}

	mean := stat.Mean(data, nil)
	centred := make([]float64, n)
	for i, v := range data {
		centred[i] = v - mean
	}

	fft := fourier.NewFFT(n)
	coeff := fft.Coefficients(nil, centred)

	s := Spectrum{
		Freq:  make([]float64, len(coeff)),
		Power: make([]float64, len(coeff)),
	}
	for i, c := range coeff {
		s.Freq[i] = fft.Freq(i) / dt
		s.Power[i] = 2 * cmplx.Abs(c) / float64(n)
	}
	return s, nil
}

// Peak returns the strongest non-DC component.
func (s Spectrum) Peak() (freq, power float64) {
	for i := 1; i < len(s.Power); i++ {
		if s.Power[i] > power {
			freq, power = s.Freq[i], s.Power[i]
		}
	}
	return freq, power
}
