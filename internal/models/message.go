package models

import "time"

// Sentiment groups the enrichment scores for a message. The four values are
// written together or not at all; Message carries them as a single nullable
// group so partial sentiment can never be observed.
type Sentiment struct {
	Score    float64 `json:"sentiment_score"`
	Positive float64 `json:"positive_score"`
	Negative float64 `json:"negative_score"`
	Neutral  float64 `json:"neutral_score"`
}

// Message represents a direct chat message between two users.
type Message struct {
	ID         int64      `db:"id" json:"id"`
	SenderID   int64      `db:"sender_id" json:"sender_id"`
	ReceiverID int64      `db:"receiver_id" json:"receiver_id"`
	Content    string     `db:"content" json:"content"`
	IsRead     bool       `db:"is_read" json:"is_read"`
	Sentiment  *Sentiment `db:"-" json:"sentiment,omitempty"`
	CreatedAt  time.Time  `db:"created_at" json:"created_at"`
}

// MessagePayload is the wire representation delivered over websockets and the
// history endpoint. The sentiment fields serialize as null when enrichment
// did not happen.
type MessagePayload struct {
	ID             int64    `json:"id"`
	SenderID       int64    `json:"sender_id"`
	ReceiverID     int64    `json:"receiver_id"`
	Content        string   `json:"content"`
	IsRead         bool     `json:"is_read"`
	CreatedAt      string   `json:"created_at"`
	SentimentScore *float64 `json:"sentiment_score"`
	PositiveScore  *float64 `json:"positive_score"`
	NegativeScore  *float64 `json:"negative_score"`
	NeutralScore   *float64 `json:"neutral_score"`
}

// Payload builds the outbound representation of the message.
func (m Message) Payload() MessagePayload {
	p := MessagePayload{
		ID:         m.ID,
		SenderID:   m.SenderID,
		ReceiverID: m.ReceiverID,
		Content:    m.Content,
		IsRead:     m.IsRead,
		CreatedAt:  m.CreatedAt.UTC().Format(time.RFC3339),
	}
	if m.Sentiment != nil {
		s := *m.Sentiment
		p.SentimentScore = &s.Score
		p.PositiveScore = &s.Positive
		p.NegativeScore = &s.Negative
		p.NeutralScore = &s.Neutral
	}
	return p
}
