// Package scoring holds the pure relationship-metric functions: the
// four-factor intimacy score, the day-bucketed activity score, and the
// word-frequency aggregation. No I/O, no state.
package scoring

import "math"

const (
	sentimentFactorMax = 40.0
	frequencyFactorMax = 30.0
	frequencyLogScale  = 10.0

	flowMutual   = 20.0
	flowOneSided = 10.0

	activityScoreMax       = 100.0
	activitySentimentScale = 20.0

	intimacyMin = 0.0
	intimacyMax = 100.0
)

// Breakdown is an intimacy score together with its contributing factors, so
// clients can explain why a pair scored the way it did.
type Breakdown struct {
	IntimacyScore     float64 `json:"intimacy_score"`
	SentimentFactor   float64 `json:"sentiment_factor"`
	FrequencyFactor   float64 `json:"frequency_factor"`
	FlowFactor        float64 `json:"flow_factor"`
	ConsecutiveFactor float64 `json:"consecutive_factor"`
}

// SentimentFactor maps the average of the sentiment scores from [-1,1] to
// [0,40]. An empty sequence averages to 0 and therefore lands on the 20.0
// midpoint, not 0.
func SentimentFactor(scores []float64) float64 {
	avg := 0.0
	if len(scores) > 0 {
		sum := 0.0
		for _, s := range scores {
			sum += s
		}
		avg = sum / float64(len(scores))
	}
	return sentimentFactorFromAvg(avg)
}

func sentimentFactorFromAvg(avg float64) float64 {
	return (avg + 1) / 2 * sentimentFactorMax
}

// FrequencyFactor maps a message count to [0,30] on a logarithmic scale, so
// high-volume exchanges cannot dominate the score.
func FrequencyFactor(count int64) float64 {
	if count <= 0 {
		return 0.0
	}
	return math.Min(frequencyFactorMax, math.Log(float64(count)+1)*frequencyLogScale)
}

// FlowFactor rewards the other party having sent the most recent message, a
// signal of mutual initiative.
func FlowFactor(lastSenderID, currentUserID int64) float64 {
	if lastSenderID != currentUserID {
		return flowMutual
	}
	return flowOneSided
}

// ConsecutiveFactor penalizes long one-sided bursts. The input maps each user
// to their longest consecutive-message run; only the maximum matters.
func ConsecutiveFactor(consecutive map[int64]int) float64 {
	maxRun := 0
	for _, run := range consecutive {
		if run > maxRun {
			maxRun = run
		}
	}
	switch {
	case maxRun <= 3:
		return 10.0
	case maxRun <= 5:
		return 7.0
	case maxRun <= 10:
		return 4.0
	default:
		return 0.0
	}
}

// Intimacy combines the four factors into a [0,100] score.
func Intimacy(sentiments []float64, messageCount, lastSenderID, currentUserID int64, consecutive map[int64]int) Breakdown {
	b := Breakdown{
		SentimentFactor:   SentimentFactor(sentiments),
		FrequencyFactor:   FrequencyFactor(messageCount),
		FlowFactor:        FlowFactor(lastSenderID, currentUserID),
		ConsecutiveFactor: ConsecutiveFactor(consecutive),
	}
	b.IntimacyScore = clamp(b.SentimentFactor + b.FrequencyFactor + b.FlowFactor + b.ConsecutiveFactor)
	return b
}

// DailyActivityScore is the cheap single-day variant used for trend lines:
// log-scaled count plus sentiment, capped at 100. Zero messages score zero.
func DailyActivityScore(count int64, avgSentiment float64) float64 {
	if count <= 0 {
		return 0.0
	}
	return math.Min(activityScoreMax,
		math.Log(float64(count)+1)*frequencyLogScale+(avgSentiment+1)*activitySentimentScale)
}

// FallbackIntimacy recomputes an intimacy score from full-history stats using
// the sentiment and frequency factors only. Used when a friendship row has no
// stored score; the live pipeline's incremental score and this recompute
// coexist deliberately.
func FallbackIntimacy(count int64, avgSentiment float64) float64 {
	return clamp(sentimentFactorFromAvg(avgSentiment) + FrequencyFactor(count))
}

func clamp(score float64) float64 {
	return math.Max(intimacyMin, math.Min(intimacyMax, score))
}
