package mocks

import (
	"context"
	"time"

	"github.com/stretchr/testify/mock"

	"sns-backend/internal/models"
	"sns-backend/internal/repositories"
	"sns-backend/internal/sentiment"
)

type UserRepositoryMock struct {
	mock.Mock
}

func (m *UserRepositoryMock) Create(ctx context.Context, username, email, hashedPassword string, fullName *string) (models.User, error) {
	args := m.Called(ctx, username, email, hashedPassword, fullName)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByID(ctx context.Context, userID int64) (models.User, error) {
	args := m.Called(ctx, userID)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByUsername(ctx context.Context, username string) (models.User, error) {
	args := m.Called(ctx, username)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) GetByEmail(ctx context.Context, email string) (models.User, error) {
	args := m.Called(ctx, email)
	var user models.User
	if val := args.Get(0); val != nil {
		user = val.(models.User)
	}
	return user, args.Error(1)
}

func (m *UserRepositoryMock) Exists(ctx context.Context, userID int64) (bool, error) {
	args := m.Called(ctx, userID)
	return args.Bool(0), args.Error(1)
}

type MessageRepositoryMock struct {
	mock.Mock
}

func (m *MessageRepositoryMock) Create(ctx context.Context, senderID, receiverID int64, content string) (models.Message, error) {
	args := m.Called(ctx, senderID, receiverID, content)
	var msg models.Message
	if val := args.Get(0); val != nil {
		msg = val.(models.Message)
	}
	return msg, args.Error(1)
}

func (m *MessageRepositoryMock) UpdateSentiment(ctx context.Context, messageID int64, s models.Sentiment) error {
	args := m.Called(ctx, messageID, s)
	return args.Error(0)
}

func (m *MessageRepositoryMock) ListConversation(ctx context.Context, userID, friendID int64, skip, limit int) ([]models.Message, error) {
	args := m.Called(ctx, userID, friendID, skip, limit)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) ListConversationSince(ctx context.Context, userID, friendID int64, since time.Time) ([]models.Message, error) {
	args := m.Called(ctx, userID, friendID, since)
	var msgs []models.Message
	if val := args.Get(0); val != nil {
		msgs = val.([]models.Message)
	}
	return msgs, args.Error(1)
}

func (m *MessageRepositoryMock) MarkConversationRead(ctx context.Context, readerID, friendID int64) (int64, error) {
	args := m.Called(ctx, readerID, friendID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) CountUnread(ctx context.Context, readerID, friendID int64) (int64, error) {
	args := m.Called(ctx, readerID, friendID)
	return args.Get(0).(int64), args.Error(1)
}

func (m *MessageRepositoryMock) ConversationStats(ctx context.Context, userID, friendID int64) (repositories.ConversationStats, error) {
	args := m.Called(ctx, userID, friendID)
	var stats repositories.ConversationStats
	if val := args.Get(0); val != nil {
		stats = val.(repositories.ConversationStats)
	}
	return stats, args.Error(1)
}

func (m *MessageRepositoryMock) LastMessageAt(ctx context.Context, userID, friendID int64) (*time.Time, error) {
	args := m.Called(ctx, userID, friendID)
	var ts *time.Time
	if val := args.Get(0); val != nil {
		ts = val.(*time.Time)
	}
	return ts, args.Error(1)
}

type FriendshipRepositoryMock struct {
	mock.Mock
}

func (m *FriendshipRepositoryMock) Create(ctx context.Context, userID, friendID int64) (models.Friendship, error) {
	args := m.Called(ctx, userID, friendID)
	var fs models.Friendship
	if val := args.Get(0); val != nil {
		fs = val.(models.Friendship)
	}
	return fs, args.Error(1)
}

func (m *FriendshipRepositoryMock) GetByPair(ctx context.Context, userID, friendID int64) (models.Friendship, error) {
	args := m.Called(ctx, userID, friendID)
	var fs models.Friendship
	if val := args.Get(0); val != nil {
		fs = val.(models.Friendship)
	}
	return fs, args.Error(1)
}

func (m *FriendshipRepositoryMock) UpdateStatus(ctx context.Context, userID, friendID int64, status string) (models.Friendship, error) {
	args := m.Called(ctx, userID, friendID, status)
	var fs models.Friendship
	if val := args.Get(0); val != nil {
		fs = val.(models.Friendship)
	}
	return fs, args.Error(1)
}

func (m *FriendshipRepositoryMock) Delete(ctx context.Context, userID, friendID int64) error {
	args := m.Called(ctx, userID, friendID)
	return args.Error(0)
}

func (m *FriendshipRepositoryMock) ListFriends(ctx context.Context, userID int64) ([]models.Friend, error) {
	args := m.Called(ctx, userID)
	var friends []models.Friend
	if val := args.Get(0); val != nil {
		friends = val.([]models.Friend)
	}
	return friends, args.Error(1)
}

func (m *FriendshipRepositoryMock) ListAcceptedLinks(ctx context.Context, userID int64) ([]models.FriendLink, error) {
	args := m.Called(ctx, userID)
	var links []models.FriendLink
	if val := args.Get(0); val != nil {
		links = val.([]models.FriendLink)
	}
	return links, args.Error(1)
}

func (m *FriendshipRepositoryMock) RecordInteraction(ctx context.Context, userID, friendID int64) (bool, error) {
	args := m.Called(ctx, userID, friendID)
	return args.Bool(0), args.Error(1)
}

type AnalyzerMock struct {
	mock.Mock
}

func (m *AnalyzerMock) Analyze(ctx context.Context, text string) (models.Sentiment, error) {
	args := m.Called(ctx, text)
	var scores models.Sentiment
	if val := args.Get(0); val != nil {
		scores = val.(models.Sentiment)
	}
	return scores, args.Error(1)
}

type PublisherMock struct {
	mock.Mock
}

func (m *PublisherMock) PublishJSON(ctx context.Context, routingKey string, message interface{}, headers map[string]string) error {
	args := m.Called(ctx, routingKey, message, headers)
	return args.Error(0)
}

var _ repositories.UserRepository = (*UserRepositoryMock)(nil)
var _ repositories.MessageRepository = (*MessageRepositoryMock)(nil)
var _ repositories.FriendshipRepository = (*FriendshipRepositoryMock)(nil)
var _ sentiment.Analyzer = (*AnalyzerMock)(nil)
