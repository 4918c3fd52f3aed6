package audio

import "math"

// LevelWindow is how many trailing samples the level helpers look at.
const LevelWindow = 1024

// Tail returns at most the last n samples.
func Tail(samples []float32, n int) []float32 {
	if n <= 0 {
		return nil
	}
	if len(samples) > n {
		return samples[len(samples)-n:]
	}
	return samples
}

// RMS is the root mean square of samples, 0 for none.
func RMS(samples []float32) float32 {
	if len(samples) == 0 {
		return 0
	}
	var sum float64
	for _, s := range samples {
		sum += float64(s) * float64(s)
	}
	return float32(math.Sqrt(sum / float64(len(samples))))
}

// Level maps the RMS of the trailing window to 0..1 for meters.
// Typical speech sits around 0.1-0.3 RMS.
func Level(samples []float32) float32 {
	level := RMS(Tail(samples, LevelWindow)) * 3
	if level > 1 {
		level = 1
	}
	return level
}

// DecibelLevel converts an RMS value to dBFS, floored at -100.
func DecibelLevel(rms float32) float32 {
	if rms <= 0 {
		return -100
	}
	db := 20 * math.Log10(float64(rms))
	if db < -100 {
		db = -100
	}
	return float32(db)
}

// Pad appends silence so the result holds at least n samples.
func Pad(samples []float32, n int) []float32 {
	if len(samples) >= n {
		return samples
	}
	return append(samples, make([]float32, n-len(samples))...)
}
