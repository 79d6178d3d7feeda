package route

import "time"

// Preset is a one-tap route: both endpoints and a date a few days out.
type Preset struct {
	ID          string
	Label       string
	Sub         string
	Origin      string
	Destination string
	Date        string
}

// Presets lists the quick routes. Dates count from tomorrow, so every preset
// date is selectable.
func Presets(now time.Time) []Preset {
	return []Preset{
		{
			ID:          "s1",
			Label:       "Dallas → New York",
			Sub:         "Popular business route",
			Origin:      "Dallas/Fort Worth, TX",
			Destination: "New York City, NY (Metropolitan Area)",
			Date:        DaysFrom(now, 1+2),
		},
		{
			ID:          "s2",
			Label:       "Chicago → Los Angeles",
			Sub:         "High volume route",
			Origin:      "Chicago, IL",
			Destination: "Los Angeles, CA (Metropolitan Area)",
			Date:        DaysFrom(now, 1+5),
		},
		{
			ID:          "s3",
			Label:       "Boston → Washington, DC",
			Sub:         "Short-haul (often cheaper)",
			Origin:      "Boston, MA (Metropolitan Area)",
			Destination: "Washington, DC (Metropolitan Area)",
			Date:        DaysFrom(now, 1+1),
		},
		{
			ID:          "s4",
			Label:       "San Francisco → Seattle",
			Sub:         "West coast hop",
			Origin:      "San Francisco, CA (Metropolitan Area)",
			Destination: "Seattle, WA",
			Date:        DaysFrom(now, 1+3),
		},
	}
}
