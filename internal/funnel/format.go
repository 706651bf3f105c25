package funnel

import "fmt"

// FormatPercent renders a ratio as a percentage string with one decimal
// place, e.g. 0.666 -> "66.6%". Used uniformly for conversion rates and the
// realization rate.
func FormatPercent(ratio float64) string {
	return fmt.Sprintf("%.1f%%", ratio*100)
}
