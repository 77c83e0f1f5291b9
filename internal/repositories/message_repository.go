package repositories

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/jmoiron/sqlx"

	"sns-backend/internal/models"
)

var ErrMessageNotFound = errors.New("message not found")

// ConversationStats summarizes the full message history between two users.
type ConversationStats struct {
	Count        int64
	AvgSentiment float64
}

// MessageRepository defines interactions for direct messages.
type MessageRepository interface {
	Create(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error)
	UpdateSentiment(ctx context.Context, messageID int64, s models.Sentiment) error
	ListConversation(ctx context.Context, userID, friendID int64, skip, limit int) ([]models.Message, error)
	ListConversationSince(ctx context.Context, userID, friendID int64, since time.Time) ([]models.Message, error)
	MarkConversationRead(ctx context.Context, readerID, friendID int64) (int64, error)
	CountUnread(ctx context.Context, readerID, friendID int64) (int64, error)
	ConversationStats(ctx context.Context, userID, friendID int64) (ConversationStats, error)
	LastMessageAt(ctx context.Context, userID, friendID int64) (*time.Time, error)
}

// MessageRepo is a sqlx-backed repository.
type MessageRepo struct {
	db *sqlx.DB
}

// NewMessageRepo constructs a MessageRepo.
func NewMessageRepo(db *sqlx.DB) *MessageRepo {
	return &MessageRepo{db: db}
}

// messageRow carries the nullable sentiment columns. toModel enforces the
// all-or-nothing sentiment invariant: the group is set only when every
// column is present.
type messageRow struct {
	ID             int64           `db:"id"`
	SenderID       int64           `db:"sender_id"`
	ReceiverID     int64           `db:"receiver_id"`
	Content        string          `db:"content"`
	IsRead         bool            `db:"is_read"`
	SentimentScore sql.NullFloat64 `db:"sentiment_score"`
	PositiveScore  sql.NullFloat64 `db:"positive_score"`
	NegativeScore  sql.NullFloat64 `db:"negative_score"`
	NeutralScore   sql.NullFloat64 `db:"neutral_score"`
	CreatedAt      time.Time       `db:"created_at"`
}

func (row messageRow) toModel() models.Message {
	msg := models.Message{
		ID:         row.ID,
		SenderID:   row.SenderID,
		ReceiverID: row.ReceiverID,
		Content:    row.Content,
		IsRead:     row.IsRead,
		CreatedAt:  row.CreatedAt,
	}
	if row.SentimentScore.Valid && row.PositiveScore.Valid && row.NegativeScore.Valid && row.NeutralScore.Valid {
		msg.Sentiment = &models.Sentiment{
			Score:    row.SentimentScore.Float64,
			Positive: row.PositiveScore.Float64,
			Negative: row.NegativeScore.Float64,
			Neutral:  row.NeutralScore.Float64,
		}
	}
	return msg
}

const messageColumns = `id, sender_id, receiver_id, content, is_read,
        sentiment_score, positive_score, negative_score, neutral_score, created_at`

// Create stores a new message. Sentiment columns start NULL; enrichment
// back-fills them later.
func (r *MessageRepo) Create(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error) {
	var row messageRow
	err := r.db.QueryRowxContext(ctx, `INSERT INTO messages (sender_id, receiver_id, content)
        VALUES ($1, $2, $3) RETURNING `+messageColumns, senderID, receiverID, content).
		StructScan(&row)
	if err != nil {
		return models.Message{}, err
	}
	return row.toModel(), nil
}

// UpdateSentiment back-fills all four sentiment columns at once.
func (r *MessageRepo) UpdateSentiment(ctx context.Context, messageID int64, s models.Sentiment) error {
	res, err := r.db.ExecContext(ctx, `UPDATE messages
        SET sentiment_score=$2, positive_score=$3, negative_score=$4, neutral_score=$5
        WHERE id=$1`, messageID, s.Score, s.Positive, s.Negative, s.Neutral)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrMessageNotFound
	}
	return nil
}

// ListConversation returns a page of messages between two users in
// chronological order. Pagination walks backwards from the newest message;
// the page itself is returned oldest first.
func (r *MessageRepo) ListConversation(ctx context.Context, userID, friendID int64, skip, limit int) ([]models.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+messageColumns+` FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at DESC
        OFFSET $3 LIMIT $4`, userID, friendID, skip, limit)
	if err != nil {
		return nil, err
	}

	msgs := make([]models.Message, len(rows))
	for i, row := range rows {
		msgs[len(rows)-1-i] = row.toModel()
	}
	return msgs, nil
}

// ListConversationSince returns all messages between two users created at or
// after the given time, in chronological order.
func (r *MessageRepo) ListConversationSince(ctx context.Context, userID, friendID int64, since time.Time) ([]models.Message, error) {
	var rows []messageRow
	err := r.db.SelectContext(ctx, &rows, `SELECT `+messageColumns+` FROM messages
        WHERE ((sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1))
        AND created_at >= $3
        ORDER BY created_at ASC`, userID, friendID, since)
	if err != nil {
		return nil, err
	}

	msgs := make([]models.Message, 0, len(rows))
	for _, row := range rows {
		msgs = append(msgs, row.toModel())
	}
	return msgs, nil
}

// MarkConversationRead marks every unread message from friendID to readerID
// as read and returns the number of rows touched.
func (r *MessageRepo) MarkConversationRead(ctx context.Context, readerID, friendID int64) (int64, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE messages SET is_read = TRUE
        WHERE sender_id=$1 AND receiver_id=$2 AND is_read = FALSE`, friendID, readerID)
	if err != nil {
		return 0, err
	}
	return res.RowsAffected()
}

// CountUnread counts unread messages from friendID to readerID.
func (r *MessageRepo) CountUnread(ctx context.Context, readerID, friendID int64) (int64, error) {
	var count int64
	err := r.db.GetContext(ctx, &count, `SELECT COUNT(*) FROM messages
        WHERE sender_id=$1 AND receiver_id=$2 AND is_read = FALSE`, friendID, readerID)
	return count, err
}

// ConversationStats returns the total message count and the average sentiment
// over the full history between two users. Messages without sentiment are
// excluded from the average; an all-unscored history averages to 0.
func (r *MessageRepo) ConversationStats(ctx context.Context, userID, friendID int64) (ConversationStats, error) {
	var stats ConversationStats
	err := r.db.QueryRowxContext(ctx, `SELECT COUNT(*), COALESCE(AVG(sentiment_score), 0)
        FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)`,
		userID, friendID).Scan(&stats.Count, &stats.AvgSentiment)
	return stats, err
}

// LastMessageAt returns the timestamp of the most recent message between two
// users, or nil when they have never exchanged one.
func (r *MessageRepo) LastMessageAt(ctx context.Context, userID, friendID int64) (*time.Time, error) {
	var ts time.Time
	err := r.db.GetContext(ctx, &ts, `SELECT created_at FROM messages
        WHERE (sender_id=$1 AND receiver_id=$2) OR (sender_id=$2 AND receiver_id=$1)
        ORDER BY created_at DESC LIMIT 1`, userID, friendID)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &ts, nil
}
