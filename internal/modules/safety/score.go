// README: Safety score formula. Pure function of a driver's trip history.
package safety

import "math"

// Stats summarizes the trip history the score derives from. TotalTrips counts
// trips that reached a terminal state (completed or cancelled).
type Stats struct {
	TotalTrips     int
	CompletedTrips int
	IncidentCount  int
	RatedTrips     int
	RatingSum      float64
}

// Compute derives the 0–100 score: completion rate (100 with no history),
// minus 5 points per incident, blended 60/40 with the average trip rating when
// rated trips exist. Rounded to one decimal.
func Compute(st Stats) float64 {
	rate := 100.0
	if st.TotalTrips > 0 {
		rate = float64(st.CompletedTrips) / float64(st.TotalTrips) * 100
	}

	base := rate - 5*float64(st.IncidentCount)
	if base < 0 {
		base = 0
	}

	score := base
	if st.RatedTrips > 0 {
		avg := st.RatingSum / float64(st.RatedTrips)
		score = base*0.6 + avg*0.4
	}

	if score < 0 {
		score = 0
	}
	if score > 100 {
		score = 100
	}
	return math.Round(score*10) / 10
}
