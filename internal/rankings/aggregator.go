// Package rankings computes the top-friends leaderboard: per-friend intimacy
// plus day-bucketed activity and score trends over a recent window.
package rankings

import (
	"context"
	"math"
	"sort"
	"time"

	"sns-backend/internal/models"
	"sns-backend/internal/repositories"
	"sns-backend/internal/scoring"
)

const dayFormat = "2006-01-02"

// ActivityPoint is one day of message volume.
type ActivityPoint struct {
	Date  string `json:"date"`
	Count int64  `json:"count"`
}

// ScorePoint is one day of activity score.
type ScorePoint struct {
	Date  string  `json:"date"`
	Score float64 `json:"score"`
}

// FriendRanking is one leaderboard row.
type FriendRanking struct {
	FriendID             int64           `json:"friend_id"`
	Username             string          `json:"username"`
	FullName             *string         `json:"full_name"`
	IntimacyScore        float64         `json:"intimacy_score"`
	InteractionCount     int64           `json:"interaction_count"`
	PositiveInteractions int64           `json:"positive_interactions"`
	NegativeInteractions int64           `json:"negative_interactions"`
	LastInteraction      *time.Time      `json:"last_interaction"`
	ActivityTrend        []ActivityPoint `json:"activity_trend"`
	ScoreTrend           []ScorePoint    `json:"score_trend"`
}

// Aggregator builds friend rankings from the friendship aggregates and the
// message history.
type Aggregator struct {
	friendships repositories.FriendshipRepository
	messages    repositories.MessageRepository

	now func() time.Time
}

// NewAggregator constructs an Aggregator.
func NewAggregator(friendships repositories.FriendshipRepository, messages repositories.MessageRepository) *Aggregator {
	return &Aggregator{friendships: friendships, messages: messages, now: time.Now}
}

// TopFriends ranks the user's accepted friends by intimacy score, descending.
// Trends cover the last `days` calendar days in UTC, today included; every day
// in the window appears in both trends, zero-filled when quiet. limit 0 means
// no truncation.
func (a *Aggregator) TopFriends(ctx context.Context, userID int64, limit, days int) ([]FriendRanking, error) {
	links, err := a.friendships.ListAcceptedLinks(ctx, userID)
	if err != nil {
		return nil, err
	}

	now := a.now().UTC()
	windowStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC).
		AddDate(0, 0, -(days - 1))

	rankings := make([]FriendRanking, 0, len(links))
	for _, link := range links {
		ranking, err := a.buildRanking(ctx, userID, link, windowStart, days)
		if err != nil {
			return nil, err
		}
		rankings = append(rankings, ranking)
	}

	sort.SliceStable(rankings, func(i, j int) bool {
		return rankings[i].IntimacyScore > rankings[j].IntimacyScore
	})
	if limit > 0 && len(rankings) > limit {
		rankings = rankings[:limit]
	}
	return rankings, nil
}

func (a *Aggregator) buildRanking(ctx context.Context, userID int64, link models.FriendLink, windowStart time.Time, days int) (FriendRanking, error) {
	ranking := FriendRanking{
		FriendID:             link.FriendID,
		Username:             link.Username,
		FullName:             link.FullName,
		InteractionCount:     link.Friendship.InteractionCount,
		PositiveInteractions: link.Friendship.PositiveInteractions,
		NegativeInteractions: link.Friendship.NegativeInteractions,
	}

	score := link.Friendship.IntimacyScore
	if score <= 0 {
		stats, err := a.messages.ConversationStats(ctx, userID, link.FriendID)
		if err != nil {
			return FriendRanking{}, err
		}
		score = scoring.FallbackIntimacy(stats.Count, stats.AvgSentiment)
	}
	ranking.IntimacyScore = round2(score)

	last, err := a.messages.LastMessageAt(ctx, userID, link.FriendID)
	if err != nil {
		return FriendRanking{}, err
	}
	ranking.LastInteraction = last

	msgs, err := a.messages.ListConversationSince(ctx, userID, link.FriendID, windowStart)
	if err != nil {
		return FriendRanking{}, err
	}
	ranking.ActivityTrend, ranking.ScoreTrend = buildTrends(msgs, windowStart, days)
	return ranking, nil
}

// buildTrends buckets messages by UTC calendar day and emits one point per day
// in the window, oldest first.
func buildTrends(msgs []models.Message, windowStart time.Time, days int) ([]ActivityPoint, []ScorePoint) {
	counts := make(map[string]int64, days)
	sentimentSums := make(map[string]float64, days)
	sentimentCounts := make(map[string]int64, days)

	for _, msg := range msgs {
		day := msg.CreatedAt.UTC().Format(dayFormat)
		counts[day]++
		if msg.Sentiment != nil {
			sentimentSums[day] += msg.Sentiment.Score
			sentimentCounts[day]++
		}
	}

	activity := make([]ActivityPoint, 0, days)
	scores := make([]ScorePoint, 0, days)
	for i := 0; i < days; i++ {
		day := windowStart.AddDate(0, 0, i).Format(dayFormat)
		count := counts[day]

		avg := 0.0
		if sentimentCounts[day] > 0 {
			avg = sentimentSums[day] / float64(sentimentCounts[day])
		}

		activity = append(activity, ActivityPoint{Date: day, Count: count})
		scores = append(scores, ScorePoint{Date: day, Score: round2(scoring.DailyActivityScore(count, avg))})
	}
	return activity, scores
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
