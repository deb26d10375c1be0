package corpus

import "time"

// Weekdays labels the histogram rows, Monday first.
var Weekdays = [7]string{"Mon", "Tue", "Wed", "Thu", "Fri", "Sat", "Sun"}

// Histogram counts messages by weekday (Monday = 0) and hour of day.
type Histogram [7][24]int

// Add increments the cell for t. The caller converts t to the wanted
// location first.
func (h *Histogram) Add(t time.Time) {
	h[weekdayIndex(t.Weekday())][t.Hour()]++
}

func (h *Histogram) Total() int {
	total := 0
	for _, row := range h {
		for _, n := range row {
			total += n
		}
	}
	return total
}

func (h *Histogram) Max() int {
	max := 0
	for _, row := range h {
		for _, n := range row {
			if n > max {
				max = n
			}
		}
	}
	return max
}

func weekdayIndex(d time.Weekday) int {
	return (int(d) + 6) % 7
}
