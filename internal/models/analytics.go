package models

// TimeframeStats aggregates readings over a query window.
type TimeframeStats struct {
	AverageStress       float64             `json:"average_stress"`
	AverageWellness     float64             `json:"average_wellness"`
	DominantEmotions    map[Emotion]int     `json:"dominant_emotions"`
	EmotionDistribution map[Emotion]float64 `json:"emotion_distribution"`
	TotalReadings       int                 `json:"total_readings"`
}

// Trends compares the two halves of a window.
type Trends struct {
	StressTrend   float64 `json:"stress_trend"`
	WellnessTrend float64 `json:"wellness_trend"`
	Direction     string  `json:"direction"` // improving | declining
}

// DashboardData is the stats bundle served to the dashboard.
type DashboardData struct {
	Today  TimeframeStats `json:"today"`
	Week   TimeframeStats `json:"week"`
	Month  TimeframeStats `json:"month"`
	Trends *Trends        `json:"trends,omitempty"`
}

// DailyReport is the end-of-day summary, AI-enriched when the upstream
// text generator is available and rule-based otherwise.
type DailyReport struct {
	Summary          string         `json:"summary"`
	Highlights       []string       `json:"highlights"`
	Lowlights        []string       `json:"lowlights"`
	Recommendations  []string       `json:"recommendations"`
	TomorrowForecast string         `json:"tomorrow_forecast,omitempty"`
	Stats            TimeframeStats `json:"stats"`
}
