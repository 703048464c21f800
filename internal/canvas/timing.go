package canvas

const TickRate = 20 // ticks per second

// SecsToTicks converts a duration in seconds to loop ticks.
func SecsToTicks(s float64) int {
	t := int(s * TickRate)
	if t < 1 {
		t = 1
	}
	return t
}

// Timing constants, all expressed in seconds and converted to ticks at init.
var (
	StatusDuration = SecsToTicks(4.0) // how long a status message stays in the HUD
)
