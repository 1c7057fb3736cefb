// Package analysis looks at recorded axis traces in the frequency domain.
//
// A scan sweeps pan at three times the tilt frequency, so the spectrum of a
// clean scan shows peaks at 3/T and 1/T:
//
//	pan, _ := analysis.Trace(analysis.Window(records, "scan"), "act_pan")
//	s, _ := analysis.PowerSpectrum(pan, dt)
//	f, _ := s.Peak()
package analysis
