package recording

import "fmt"

// FormatElapsed renders whole seconds as zero-padded HH:MM:SS. Hours are not
// capped at 24 and negative input is treated as zero.
func FormatElapsed(seconds int) string {
	if seconds < 0 {
		seconds = 0
	}
	return fmt.Sprintf("%02d:%02d:%02d", seconds/3600, (seconds%3600)/60, seconds%60)
}
