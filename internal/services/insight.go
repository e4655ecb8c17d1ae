package services

import (
	"context"
	"encoding/json"
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"

	"moodlens-backend/internal/models"
)

const insightTimeout = 10 * time.Second

// InsightService generates free-form wellness text through Gemini.
// Every call has a deterministic rule-based fallback: an unreachable or
// slow upstream degrades insight quality but never surfaces an error.
// With an empty API key the service runs in fallback-only mode.
type InsightService struct {
	client   *genai.Client
	model    *genai.GenerativeModel
	rateChan chan struct{} // Token bucket
}

func NewInsightService(apiKey string, concurrentReqs int) (*InsightService, error) {
	s := &InsightService{}

	if apiKey == "" {
		log.Println("⚠ Insight service running in FALLBACK-ONLY MODE (no API key)")
		return s, nil
	}

	ctx := context.Background()
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	model := client.GenerativeModel("gemini-3-flash-preview")
	model.SetTemperature(0.7)
	model.SetTopP(0.95)

	if concurrentReqs <= 0 {
		concurrentReqs = 5
	}
	rateChan := make(chan struct{}, concurrentReqs)
	for i := 0; i < concurrentReqs; i++ {
		rateChan <- struct{}{}
	}

	s.client = client
	s.model = model
	s.rateChan = rateChan
	return s, nil
}

func (s *InsightService) Close() {
	if s.client != nil {
		s.client.Close()
	}
}

// InsightContext carries the structured data an insight is built from.
type InsightContext struct {
	Emotions        models.EmotionSnapshot
	DominantEmotion models.Emotion
	StressLevel     float64
	WellnessScore   float64
	RecentPattern   string
}

// GenerateInsight returns a short supportive insight for the given
// emotional state. Falls back to templated text on any upstream
// failure.
func (s *InsightService) GenerateInsight(ctx context.Context, ic InsightContext) string {
	text, err := s.generate(ctx, buildInsightPrompt(ic))
	if err != nil {
		log.Printf("insight generation failed, using fallback: %v", err)
		return fallbackInsight(ic)
	}
	return text
}

// AnalyzeJournalEntry returns supportive feedback on a journal entry.
func (s *InsightService) AnalyzeJournalEntry(ctx context.Context, text string, moodRating int) string {
	prompt := fmt.Sprintf(`Analyze this journal entry and provide supportive feedback (2-3 sentences):

Mood Rating: %d/10
Entry: %q

Provide empathetic, constructive analysis that validates their feelings and offers gentle guidance.`, moodRating, text)

	result, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("journal analysis failed, using fallback: %v", err)
		return "Thank you for taking time to journal. Reflecting on your feelings is an important step in emotional wellness."
	}
	return result
}

// GenerateDailyReport builds the end-of-day report. The statistics and
// highlights are always computed locally; the upstream only refines the
// prose.
func (s *InsightService) GenerateDailyReport(ctx context.Context, stats models.TimeframeStats, journalEntries int) models.DailyReport {
	fallback := fallbackDailyReport(stats)
	if stats.TotalReadings == 0 {
		return fallback
	}

	prompt := buildDailyReportPrompt(stats, journalEntries)
	raw, err := s.generate(ctx, prompt)
	if err != nil {
		log.Printf("daily report generation failed, using fallback: %v", err)
		return fallback
	}

	var report struct {
		Summary          string   `json:"summary"`
		Highlights       []string `json:"highlights"`
		Lowlights        []string `json:"lowlights"`
		Recommendations  []string `json:"recommendations"`
		TomorrowForecast string   `json:"tomorrow_forecast"`
	}
	if err := json.Unmarshal([]byte(extractJSON(raw)), &report); err != nil || report.Summary == "" {
		return fallback
	}

	return models.DailyReport{
		Summary:          report.Summary,
		Highlights:       report.Highlights,
		Lowlights:        report.Lowlights,
		Recommendations:  report.Recommendations,
		TomorrowForecast: report.TomorrowForecast,
		Stats:            stats,
	}
}

// generate performs one rate-limited, deadline-bounded Gemini call.
func (s *InsightService) generate(ctx context.Context, prompt string) (string, error) {
	if s.model == nil {
		return "", fmt.Errorf("no AI provider configured")
	}

	select {
	case <-s.rateChan:
	case <-ctx.Done():
		return "", ctx.Err()
	}
	defer func() { s.rateChan <- struct{}{} }()

	ctx, cancel := context.WithTimeout(ctx, insightTimeout)
	defer cancel()

	resp, err := s.model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}

	text := strings.TrimSpace(extractText(resp))
	if text == "" {
		return "", fmt.Errorf("Gemini returned empty text")
	}
	return text, nil
}

// Helper functions

func extractText(resp *genai.GenerateContentResponse) string {
	var text strings.Builder
	for _, cand := range resp.Candidates {
		if cand.Content != nil {
			for _, part := range cand.Content.Parts {
				if t, ok := part.(genai.Text); ok {
					text.WriteString(string(t))
				}
			}
		}
	}
	return text.String()
}

func extractJSON(raw string) string {
	raw = strings.TrimPrefix(raw, "```json")
	raw = strings.TrimPrefix(raw, "```")
	raw = strings.TrimSuffix(raw, "```")
	raw = strings.TrimSpace(raw)

	start := strings.Index(raw, "{")
	end := strings.LastIndex(raw, "}")
	if start >= 0 && end > start {
		return raw[start : end+1]
	}
	return raw
}

func buildInsightPrompt(ic InsightContext) string {
	var b strings.Builder

	b.WriteString("You are an empathetic AI wellness assistant. Analyze this emotional state and provide a brief, supportive insight (2-3 sentences max).\n\n")

	emotions, _ := json.Marshal(ic.Emotions)
	b.WriteString(fmt.Sprintf("Emotions detected: %s\n", emotions))
	b.WriteString(fmt.Sprintf("Dominant emotion: %s\n", ic.DominantEmotion))
	b.WriteString(fmt.Sprintf("Stress level: %.0f/100\n", ic.StressLevel))
	b.WriteString(fmt.Sprintf("Wellness score: %.0f/100\n", ic.WellnessScore))
	if ic.RecentPattern != "" {
		b.WriteString(fmt.Sprintf("Recent pattern: %s\n", ic.RecentPattern))
	}

	b.WriteString("\nProvide personalized, actionable insight that is compassionate and constructive.")
	return b.String()
}

func buildDailyReportPrompt(stats models.TimeframeStats, journalEntries int) string {
	distribution, _ := json.Marshal(stats.DominantEmotions)

	return fmt.Sprintf(`Generate a compassionate daily emotional wellness report:

Today's Statistics:
- Total readings: %d
- Average wellness: %.1f
- Average stress: %.1f
- Emotion distribution: %s

Journal Entries: %d

CRITICAL: Return ONLY a valid JSON object. No preamble, no markdown, no backticks.

JSON schema:
{"summary": "Overall assessment (3-4 sentences)", "highlights": ["positive moment"], "lowlights": ["challenge"], "recommendations": ["suggestion for tomorrow"], "tomorrow_forecast": "Brief prediction"}`,
		stats.TotalReadings, stats.AverageWellness, stats.AverageStress, distribution, journalEntries)
}

// fallbackInsights is the deterministic per-emotion insight table used
// whenever the upstream is unavailable.
var fallbackInsights = map[models.Emotion]string{
	models.EmotionHappy:     "You're experiencing positive emotions! This is a great time to engage in activities you enjoy.",
	models.EmotionSad:       "It's okay to feel sad. Remember that emotions are temporary. Consider reaching out to someone you trust.",
	models.EmotionAngry:     "Anger can be overwhelming. Try some deep breathing or physical activity to help process these feelings.",
	models.EmotionFearful:   "Feeling anxious is common. Grounding techniques and mindfulness can help you feel more centered.",
	models.EmotionNeutral:   "You're in a balanced state. This is a good time for reflection or planning.",
	models.EmotionSurprised: "Surprise can be energizing! Use this alertness constructively.",
	models.EmotionDisgusted: "These feelings will pass. Focus on self-care and things that bring you comfort.",
}

func fallbackInsight(ic InsightContext) string {
	insight, ok := fallbackInsights[ic.DominantEmotion]
	if !ok {
		insight = fallbackInsights[models.EmotionNeutral]
	}

	if ic.WellnessScore < 40 {
		insight += " Your wellness score suggests you might benefit from additional support or self-care activities."
	}
	return insight
}

func fallbackDailyReport(stats models.TimeframeStats) models.DailyReport {
	if stats.TotalReadings == 0 {
		return models.DailyReport{
			Summary: "No emotion data available for today.",
			Stats:   stats,
		}
	}

	top := models.EmotionNeutral
	best := -1
	for _, e := range models.EmotionVocabulary {
		if stats.DominantEmotions[e] > best {
			top = e
			best = stats.DominantEmotions[e]
		}
	}

	return models.DailyReport{
		Summary: fmt.Sprintf("Today you had %d emotion readings. Your most common emotion was %s.", stats.TotalReadings, top),
		Stats:   stats,
	}
}
