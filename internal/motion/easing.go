package motion

import "fmt"

// EasingFunc maps normalized time t in [0,1] to normalized progress in [0,1].
type EasingFunc func(t float64) float64

// Easing curve names accepted in configuration.
const (
	EasingLinear       = "linear"
	EasingInQuad       = "ease-in-quad"
	EasingOutQuad      = "ease-out-quad"
	EasingInOutQuad    = "ease-in-out-quad"
	EasingInCubic      = "ease-in-cubic"
	EasingOutCubic     = "ease-out-cubic"
	EasingInOutCubic   = "ease-in-out-cubic"
)

var easings = map[string]EasingFunc{
	EasingLinear:     func(t float64) float64 { return t },
	EasingInQuad:     func(t float64) float64 { return t * t },
	EasingOutQuad:    func(t float64) float64 { return t * (2 - t) },
	EasingInOutQuad:  easeInOutQuad,
	EasingInCubic:    func(t float64) float64 { return t * t * t },
	EasingOutCubic:   easeOutCubic,
	EasingInOutCubic: easeInOutCubic,
}

// EasingByName returns the named curve, or an error listing is left to the
// caller. Unknown names fail rather than silently falling back so a config
// typo is visible at startup.
func EasingByName(name string) (EasingFunc, error) {
	f, ok := easings[name]
	if !ok {
		return nil, fmt.Errorf("unknown easing curve %q", name)
	}
	return f, nil
}

func easeOutCubic(t float64) float64 {
	u := 1 - t
	return 1 - u*u*u
}

func easeInOutQuad(t float64) float64 {
	if t < 0.5 {
		return 2 * t * t
	}
	return -1 + (4-2*t)*t
}

func easeInOutCubic(t float64) float64 {
	if t < 0.5 {
		return 4 * t * t * t
	}
	u := 2*t - 2
	return 1 + u*u*u/2
}
