package repositories

import (
	"context"
	"database/sql"
	"errors"

	"github.com/jmoiron/sqlx"

	"sns-backend/internal/models"
)

var (
	ErrFriendshipNotFound = errors.New("friendship not found")
	ErrFriendshipExists   = errors.New("friendship already exists")
)

// FriendshipRepository abstracts friendship persistence. A pair of users has
// at most one row, in either column order; every lookup checks both.
type FriendshipRepository interface {
	Create(ctx context.Context, userID, friendID int64) (models.Friendship, error)
	GetByPair(ctx context.Context, userID, friendID int64) (models.Friendship, error)
	UpdateStatus(ctx context.Context, userID, friendID int64, status string) (models.Friendship, error)
	Delete(ctx context.Context, userID, friendID int64) error
	ListFriends(ctx context.Context, userID int64) ([]models.Friend, error)
	ListAcceptedLinks(ctx context.Context, userID int64) ([]models.FriendLink, error)
	RecordInteraction(ctx context.Context, userID, friendID int64) (bool, error)
}

// FriendshipRepo is a sqlx-backed repository.
type FriendshipRepo struct {
	db *sqlx.DB
}

// NewFriendshipRepo constructs a FriendshipRepo.
func NewFriendshipRepo(db *sqlx.DB) *FriendshipRepo {
	return &FriendshipRepo{db: db}
}

const friendshipColumns = `id, user_id, friend_id, status, intimacy_score,
        interaction_count, positive_interactions, negative_interactions, created_at, updated_at`

// Create stores a new pending friendship with zeroed counters.
func (r *FriendshipRepo) Create(ctx context.Context, userID, friendID int64) (models.Friendship, error) {
	if _, err := r.GetByPair(ctx, userID, friendID); err == nil {
		return models.Friendship{}, ErrFriendshipExists
	} else if !errors.Is(err, ErrFriendshipNotFound) {
		return models.Friendship{}, err
	}

	var fs models.Friendship
	err := r.db.QueryRowxContext(ctx, `INSERT INTO friendships (user_id, friend_id, status)
        VALUES ($1, $2, 'pending') RETURNING `+friendshipColumns, userID, friendID).
		StructScan(&fs)
	return fs, err
}

// GetByPair fetches the friendship row for an unordered user pair.
func (r *FriendshipRepo) GetByPair(ctx context.Context, userID, friendID int64) (models.Friendship, error) {
	var fs models.Friendship
	err := r.db.GetContext(ctx, &fs, `SELECT `+friendshipColumns+` FROM friendships
        WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)`, userID, friendID)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Friendship{}, ErrFriendshipNotFound
	}
	return fs, err
}

// UpdateStatus changes the status of the pair's friendship.
func (r *FriendshipRepo) UpdateStatus(ctx context.Context, userID, friendID int64, status string) (models.Friendship, error) {
	var fs models.Friendship
	err := r.db.QueryRowxContext(ctx, `UPDATE friendships
        SET status=$3, updated_at=NOW()
        WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)
        RETURNING `+friendshipColumns, userID, friendID, status).
		StructScan(&fs)
	if errors.Is(err, sql.ErrNoRows) {
		return models.Friendship{}, ErrFriendshipNotFound
	}
	return fs, err
}

// Delete removes the pair's friendship row.
func (r *FriendshipRepo) Delete(ctx context.Context, userID, friendID int64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM friendships
        WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)`, userID, friendID)
	if err != nil {
		return err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if count == 0 {
		return ErrFriendshipNotFound
	}
	return nil
}

// ListFriends returns every friend of the user across both row orderings,
// de-duplicated by the other party's id. Rows initiated by the user win over
// rows initiated by the friend.
func (r *FriendshipRepo) ListFriends(ctx context.Context, userID int64) ([]models.Friend, error) {
	links, err := r.listLinks(ctx, userID, "")
	if err != nil {
		return nil, err
	}

	friends := make([]models.Friend, 0, len(links))
	for _, link := range links {
		friends = append(friends, models.Friend{
			ID:            link.FriendID,
			Username:      link.Username,
			FullName:      link.FullName,
			IntimacyScore: link.Friendship.IntimacyScore,
			Status:        link.Friendship.Status,
		})
	}
	return friends, nil
}

// ListAcceptedLinks returns accepted friendships joined with the friend's
// identity, de-duplicated the same way as ListFriends.
func (r *FriendshipRepo) ListAcceptedLinks(ctx context.Context, userID int64) ([]models.FriendLink, error) {
	return r.listLinks(ctx, userID, models.StatusAccepted)
}

type friendLinkRow struct {
	models.Friendship
	OtherID       int64   `db:"other_id"`
	OtherUsername string  `db:"other_username"`
	OtherFullName *string `db:"other_full_name"`
}

func (r *FriendshipRepo) listLinks(ctx context.Context, userID int64, status string) ([]models.FriendLink, error) {
	// Rows where the user initiated come first so they win de-duplication.
	query := `SELECT f.id, f.user_id, f.friend_id, f.status, f.intimacy_score,
            f.interaction_count, f.positive_interactions, f.negative_interactions,
            f.created_at, f.updated_at,
            u.id AS other_id, u.username AS other_username, u.full_name AS other_full_name,
            (f.user_id=$1) AS initiated
        FROM friendships f
        JOIN users u ON u.id = CASE WHEN f.user_id=$1 THEN f.friend_id ELSE f.user_id END
        WHERE (f.user_id=$1 OR f.friend_id=$1)`
	args := []interface{}{userID}
	if status != "" {
		query += ` AND f.status=$2`
		args = append(args, status)
	}
	query += ` ORDER BY initiated DESC, f.id ASC`

	rows, err := r.db.QueryxContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []models.FriendLink
	seen := map[int64]struct{}{}
	for rows.Next() {
		var row friendLinkRow
		var initiated bool
		if err := rows.Scan(&row.ID, &row.UserID, &row.FriendID, &row.Status, &row.IntimacyScore,
			&row.InteractionCount, &row.PositiveInteractions, &row.NegativeInteractions,
			&row.CreatedAt, &row.UpdatedAt,
			&row.OtherID, &row.OtherUsername, &row.OtherFullName, &initiated); err != nil {
			return nil, err
		}
		if _, ok := seen[row.OtherID]; ok {
			continue
		}
		seen[row.OtherID] = struct{}{}
		links = append(links, models.FriendLink{
			FriendID:   row.OtherID,
			Username:   row.OtherUsername,
			FullName:   row.OtherFullName,
			Friendship: row.Friendship,
		})
	}
	return links, rows.Err()
}

// RecordInteraction atomically bumps the pair's aggregate for one exchanged
// message: interaction_count+1 and intimacy_score+0.1 capped at 100. A single
// UPDATE keeps concurrent messages between the same pair from losing
// increments. Returns false when the pair has no friendship row, which is not
// an error.
func (r *FriendshipRepo) RecordInteraction(ctx context.Context, userID, friendID int64) (bool, error) {
	res, err := r.db.ExecContext(ctx, `UPDATE friendships
        SET interaction_count = interaction_count + 1,
            intimacy_score = LEAST(100.0, COALESCE(intimacy_score, 0.0) + 0.1),
            updated_at = NOW()
        WHERE (user_id=$1 AND friend_id=$2) OR (user_id=$2 AND friend_id=$1)`,
		userID, friendID)
	if err != nil {
		return false, err
	}
	count, err := res.RowsAffected()
	if err != nil {
		return false, err
	}
	return count > 0, nil
}
