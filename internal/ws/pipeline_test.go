package ws

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"sns-backend/internal/mocks"
	"sns-backend/internal/models"
)

// recordingRegistry captures directed sends for assertions.
type recordingRegistry struct {
	sends []struct {
		UserID  int64
		Payload models.MessagePayload
	}
}

func (r *recordingRegistry) SendTo(userID int64, payload models.MessagePayload) {
	r.sends = append(r.sends, struct {
		UserID  int64
		Payload models.MessagePayload
	}{userID, payload})
}

func newTestPipeline() (*Pipeline, *mocks.MessageRepositoryMock, *mocks.FriendshipRepositoryMock, *mocks.AnalyzerMock, *recordingRegistry) {
	messages := new(mocks.MessageRepositoryMock)
	friendships := new(mocks.FriendshipRepositoryMock)
	analyzer := new(mocks.AnalyzerMock)
	registry := &recordingRegistry{}
	p := NewPipeline(messages, friendships, analyzer, registry, zap.NewNop())
	return p, messages, friendships, analyzer, registry
}

func TestPipelineBlankContentIsDiscarded(t *testing.T) {
	p, messages, _, _, registry := newTestPipeline()

	for _, raw := range []string{"", "   ", `{"content":""}`, `{"content":"  "}`, `{"other":"x"}`} {
		payload, err := p.Handle(context.Background(), 1, 2, []byte(raw))
		require.NoError(t, err, "raw=%q", raw)
		assert.Nil(t, payload, "raw=%q", raw)
	}

	messages.AssertNotCalled(t, "Create", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, registry.sends)
}

func TestPipelineStructuredAndRawContent(t *testing.T) {
	cases := []struct {
		name    string
		raw     string
		content string
	}{
		{"structured", `{"content":"hello"}`, "hello"},
		{"raw text", "plain words", "plain words"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			p, messages, friendships, analyzer, registry := newTestPipeline()

			stored := models.Message{ID: 10, SenderID: 1, ReceiverID: 2, Content: tc.content, CreatedAt: time.Now()}
			messages.On("Create", mock.Anything, int64(1), int64(2), tc.content).Return(stored, nil).Once()
			analyzer.On("Analyze", mock.Anything, tc.content).Return(models.Sentiment{}, assert.AnError).Once()
			friendships.On("RecordInteraction", mock.Anything, int64(1), int64(2)).Return(true, nil).Once()

			payload, err := p.Handle(context.Background(), 1, 2, []byte(tc.raw))
			require.NoError(t, err)
			require.NotNil(t, payload)
			assert.Equal(t, tc.content, payload.Content)

			messages.AssertExpectations(t)
			friendships.AssertExpectations(t)
			require.Len(t, registry.sends, 1)
			assert.Equal(t, int64(2), registry.sends[0].UserID)
		})
	}
}

func TestPipelinePersistFailureIsFatalForEvent(t *testing.T) {
	p, messages, friendships, analyzer, registry := newTestPipeline()

	messages.On("Create", mock.Anything, int64(1), int64(2), "hi").Return(models.Message{}, assert.AnError).Once()

	payload, err := p.Handle(context.Background(), 1, 2, []byte(`{"content":"hi"}`))
	require.Error(t, err)
	assert.Nil(t, payload)

	// Nothing past persistence runs.
	analyzer.AssertNotCalled(t, "Analyze", mock.Anything, mock.Anything)
	friendships.AssertNotCalled(t, "RecordInteraction", mock.Anything, mock.Anything, mock.Anything)
	assert.Empty(t, registry.sends)
}

func TestPipelineEnrichmentFailureIsNonFatal(t *testing.T) {
	p, messages, friendships, analyzer, registry := newTestPipeline()

	stored := models.Message{ID: 11, SenderID: 1, ReceiverID: 2, Content: "hi", CreatedAt: time.Now()}
	messages.On("Create", mock.Anything, int64(1), int64(2), "hi").Return(stored, nil).Once()
	analyzer.On("Analyze", mock.Anything, "hi").Return(models.Sentiment{}, assert.AnError).Once()
	friendships.On("RecordInteraction", mock.Anything, int64(1), int64(2)).Return(true, nil).Once()

	payload, err := p.Handle(context.Background(), 1, 2, []byte("hi"))
	require.NoError(t, err)
	require.NotNil(t, payload)

	// Sentiment fields stay absent as a group.
	assert.Nil(t, payload.SentimentScore)
	assert.Nil(t, payload.PositiveScore)
	assert.Nil(t, payload.NegativeScore)
	assert.Nil(t, payload.NeutralScore)

	messages.AssertNotCalled(t, "UpdateSentiment", mock.Anything, mock.Anything, mock.Anything)
	require.Len(t, registry.sends, 1)
}

func TestPipelineEnrichmentSuccessBackfillsAllFields(t *testing.T) {
	p, messages, friendships, analyzer, _ := newTestPipeline()

	stored := models.Message{ID: 12, SenderID: 1, ReceiverID: 2, Content: "great day", CreatedAt: time.Now()}
	scores := models.Sentiment{Score: 0.8, Positive: 0.9, Negative: 0.05, Neutral: 0.05}

	messages.On("Create", mock.Anything, int64(1), int64(2), "great day").Return(stored, nil).Once()
	analyzer.On("Analyze", mock.Anything, "great day").Return(scores, nil).Once()
	messages.On("UpdateSentiment", mock.Anything, int64(12), scores).Return(nil).Once()
	friendships.On("RecordInteraction", mock.Anything, int64(1), int64(2)).Return(true, nil).Once()

	payload, err := p.Handle(context.Background(), 1, 2, []byte("great day"))
	require.NoError(t, err)
	require.NotNil(t, payload)

	require.NotNil(t, payload.SentimentScore)
	assert.Equal(t, 0.8, *payload.SentimentScore)
	assert.Equal(t, 0.9, *payload.PositiveScore)
	assert.Equal(t, 0.05, *payload.NegativeScore)
	assert.Equal(t, 0.05, *payload.NeutralScore)

	messages.AssertExpectations(t)
}

func TestPipelineNoFriendshipRowIsTolerated(t *testing.T) {
	// Messages between users without an established relationship still flow;
	// the aggregate update is simply a no-op.
	p, messages, friendships, analyzer, registry := newTestPipeline()

	stored := models.Message{ID: 13, SenderID: 3, ReceiverID: 4, Content: "hey", CreatedAt: time.Now()}
	messages.On("Create", mock.Anything, int64(3), int64(4), "hey").Return(stored, nil).Once()
	analyzer.On("Analyze", mock.Anything, "hey").Return(models.Sentiment{}, assert.AnError).Once()
	friendships.On("RecordInteraction", mock.Anything, int64(3), int64(4)).Return(false, nil).Once()

	payload, err := p.Handle(context.Background(), 3, 4, []byte("hey"))
	require.NoError(t, err)
	require.NotNil(t, payload)
	require.Len(t, registry.sends, 1)
}

func TestPipelineAggregateFailureDoesNotBlockDelivery(t *testing.T) {
	p, messages, friendships, analyzer, registry := newTestPipeline()

	stored := models.Message{ID: 14, SenderID: 1, ReceiverID: 2, Content: "hi", CreatedAt: time.Now()}
	messages.On("Create", mock.Anything, int64(1), int64(2), "hi").Return(stored, nil).Once()
	analyzer.On("Analyze", mock.Anything, "hi").Return(models.Sentiment{}, assert.AnError).Once()
	friendships.On("RecordInteraction", mock.Anything, int64(1), int64(2)).Return(false, assert.AnError).Once()

	payload, err := p.Handle(context.Background(), 1, 2, []byte("hi"))
	require.NoError(t, err)
	require.NotNil(t, payload)
	require.Len(t, registry.sends, 1)
}

func TestMessagePayloadRoundTripPreservesPresence(t *testing.T) {
	score := 0.5
	withSentiment := models.MessagePayload{
		ID: 1, SenderID: 2, ReceiverID: 3, Content: "x",
		CreatedAt:      time.Now().UTC().Format(time.RFC3339),
		SentimentScore: &score, PositiveScore: &score, NegativeScore: &score, NeutralScore: &score,
	}
	without := models.MessagePayload{ID: 2, SenderID: 3, ReceiverID: 2, Content: "y",
		CreatedAt: time.Now().UTC().Format(time.RFC3339)}

	for _, payload := range []models.MessagePayload{withSentiment, without} {
		body, err := json.Marshal(payload)
		require.NoError(t, err)

		var decoded models.MessagePayload
		require.NoError(t, json.Unmarshal(body, &decoded))

		if payload.SentimentScore != nil {
			require.NotNil(t, decoded.SentimentScore)
			assert.Equal(t, *payload.SentimentScore, *decoded.SentimentScore)
		} else {
			// Absent fields must stay absent, never default to 0.
			assert.Nil(t, decoded.SentimentScore)
			assert.Nil(t, decoded.PositiveScore)
			assert.Nil(t, decoded.NegativeScore)
			assert.Nil(t, decoded.NeutralScore)
		}
	}
}
