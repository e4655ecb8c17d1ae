package emotion

import (
	"moodlens-backend/internal/models"
)

const (
	patternMinReadings   = 5
	patternWindow        = 10
	patternDominantCount = 7

	triggerStressJump = 20.0
	maxTriggers       = 3

	highStressHourAvg = 60.0

	minClusterLen = 3
	maxClusters   = 5
)

// DetectPattern classifies the most recent readings. History is ordered
// newest-first. Returns nil when fewer than 5 readings are available.
func DetectPattern(history []models.Reading) *models.Pattern {
	if len(history) < patternMinReadings {
		return nil
	}

	recent := history
	if len(recent) > patternWindow {
		recent = recent[:patternWindow]
	}

	counts := make(map[models.Emotion]int)
	for _, r := range recent {
		counts[r.DominantEmotion]++
	}

	// Persistent negative emotion. Tie favors sad.
	if counts[models.EmotionSad] >= patternDominantCount || counts[models.EmotionAngry] >= patternDominantCount {
		emotion := models.EmotionAngry
		if counts[models.EmotionSad] >= patternDominantCount {
			emotion = models.EmotionSad
		}
		frequency := counts[models.EmotionSad]
		if counts[models.EmotionAngry] > frequency {
			frequency = counts[models.EmotionAngry]
		}
		return &models.Pattern{
			Type:      models.PatternConcerning,
			Pattern:   "persistent_negative_emotion",
			Emotion:   emotion,
			Frequency: frequency,
		}
	}

	if counts[models.EmotionHappy] >= patternDominantCount {
		return &models.Pattern{
			Type:      models.PatternPositive,
			Pattern:   "consistent_happiness",
			Emotion:   models.EmotionHappy,
			Frequency: counts[models.EmotionHappy],
		}
	}

	return &models.Pattern{
		Type:         models.PatternNeutral,
		Pattern:      "varied_emotions",
		Distribution: counts,
	}
}

// DetectTriggers finds sharp stress increases between consecutive
// readings. History is ordered chronologically. At most the 3 most
// recent triggers are returned.
func DetectTriggers(history []models.Reading) []models.Trigger {
	var triggers []models.Trigger

	for i := 1; i < len(history); i++ {
		prev := history[i-1]
		curr := history[i]

		increase := curr.StressLevel - prev.StressLevel
		if increase > triggerStressJump {
			triggers = append(triggers, models.Trigger{
				Timestamp:      curr.Timestamp,
				StressIncrease: increase,
				FromEmotion:    prev.DominantEmotion,
				ToEmotion:      curr.DominantEmotion,
			})
		}
	}

	if len(triggers) > maxTriggers {
		triggers = triggers[len(triggers)-maxTriggers:]
	}
	return triggers
}

// DetectTimePatterns buckets readings by hour of day and reports hours
// whose average stress exceeds the high-stress threshold.
func DetectTimePatterns(history []models.Reading) []models.TimePattern {
	type hourAgg struct {
		total  int
		stress float64
	}
	hours := make(map[int]*hourAgg)

	for _, r := range history {
		h := r.Timestamp.Hour()
		agg := hours[h]
		if agg == nil {
			agg = &hourAgg{}
			hours[h] = agg
		}
		agg.total++
		agg.stress += r.StressLevel
	}

	var patterns []models.TimePattern
	for h := 0; h < 24; h++ {
		agg := hours[h]
		if agg == nil {
			continue
		}
		avg := agg.stress / float64(agg.total)
		if avg > highStressHourAvg {
			patterns = append(patterns, models.TimePattern{
				Hour:      h,
				Type:      "high_stress",
				AvgStress: avg,
			})
		}
	}
	return patterns
}

// ClusterEmotions run-length-encodes consecutive identical dominant
// emotions over a chronological history, keeping runs of length >= 3.
// Up to 5 clusters are returned.
func ClusterEmotions(history []models.Reading) []models.EmotionCluster {
	var clusters []models.EmotionCluster
	var current *models.EmotionCluster

	for _, r := range history {
		if current == nil || current.Emotion != r.DominantEmotion {
			if current != nil && current.Count >= minClusterLen {
				clusters = append(clusters, *current)
			}
			current = &models.EmotionCluster{
				Emotion:   r.DominantEmotion,
				Count:     1,
				StartTime: r.Timestamp,
			}
		} else {
			current.Count++
			t := r.Timestamp
			current.EndTime = &t
		}
	}
	if current != nil && current.Count >= minClusterLen {
		clusters = append(clusters, *current)
	}

	if len(clusters) > maxClusters {
		clusters = clusters[:maxClusters]
	}
	return clusters
}
