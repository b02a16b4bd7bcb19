package timing

import (
	"log"
	"time"
)

// Freq defines the type of frequency, used to pace a simulation against the
// wall clock.
type Freq float64

// Defines the unit of frequency
const (
	Hz  Freq = 1
	KHz Freq = 1e3
	MHz Freq = 1e6
)

// Period returns the wall-clock time between two consecutive ticks.
func (f Freq) Period() time.Duration {
	if f <= 0 {
		log.Panic("frequency must be positive")
	}

	return time.Duration(float64(time.Second) / float64(f))
}

// NCyclesLater returns the wall-clock duration of n ticks.
func (f Freq) NCyclesLater(n int) time.Duration {
	return time.Duration(n) * f.Period()
}
