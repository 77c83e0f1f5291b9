package ws

import (
	"context"
	"encoding/json"
	"strings"

	"go.uber.org/zap"

	"sns-backend/internal/models"
	"sns-backend/internal/observability"
	"sns-backend/internal/repositories"
	"sns-backend/internal/sentiment"
)

// Pipeline processes one inbound chat event: validate, persist, enrich with
// sentiment, bump the pair's relationship aggregate, and route to the
// recipient. Steps for a single session run sequentially; pipelines of
// different sessions run concurrently and share only the registry and the
// database.
type Pipeline struct {
	messages    repositories.MessageRepository
	friendships repositories.FriendshipRepository
	analyzer    sentiment.Analyzer
	registry    Registry
	logger      *zap.Logger
}

// NewPipeline constructs a Pipeline.
func NewPipeline(
	messages repositories.MessageRepository,
	friendships repositories.FriendshipRepository,
	analyzer sentiment.Analyzer,
	registry Registry,
	logger *zap.Logger,
) *Pipeline {
	return &Pipeline{
		messages:    messages,
		friendships: friendships,
		analyzer:    analyzer,
		registry:    registry,
		logger:      logger,
	}
}

// inboundFrame is the structured form of a client payload. Raw text frames
// are accepted as-is.
type inboundFrame struct {
	Content string `json:"content"`
}

// extractContent pulls the message text out of a frame: either the content
// field of a JSON object or the raw frame itself.
func extractContent(raw []byte) string {
	var frame inboundFrame
	if err := json.Unmarshal(raw, &frame); err == nil {
		return strings.TrimSpace(frame.Content)
	}
	return strings.TrimSpace(string(raw))
}

// Handle runs the pipeline for one inbound frame. It returns the outbound
// payload for the sender's echo, nil when the frame was blank and silently
// discarded, or an error when persistence failed. Enrichment, aggregate and
// delivery failures are recovered locally and never surface here.
func (p *Pipeline) Handle(ctx context.Context, senderID, receiverID int64, raw []byte) (*models.MessagePayload, error) {
	content := extractContent(raw)
	if content == "" {
		return nil, nil
	}

	msg, err := p.messages.Create(ctx, senderID, receiverID, content)
	if err != nil {
		return nil, err
	}
	observability.IncMessagePersisted()
	_ = observability.PublishEvent(ctx, "messages.persisted", observability.EventEnvelope{
		EventType: "messages",
		EventName: "message_persisted",
		Payload: map[string]interface{}{
			"message_id":  msg.ID,
			"sender_id":   senderID,
			"receiver_id": receiverID,
		},
	}, nil)

	p.enrich(ctx, &msg)
	p.recordInteraction(ctx, senderID, receiverID)

	payload := msg.Payload()
	p.registry.SendTo(receiverID, payload)
	return &payload, nil
}

// enrich back-fills sentiment on the already-persisted message. Failure at
// any point leaves the message without sentiment; the fields stay absent as
// a group.
func (p *Pipeline) enrich(ctx context.Context, msg *models.Message) {
	scores, err := p.analyzer.Analyze(ctx, msg.Content)
	if err != nil {
		observability.IncEnrichment("failed")
		p.logger.Info("sentiment enrichment unavailable",
			zap.Int64("message_id", msg.ID), zap.Error(err))
		return
	}

	if err := p.messages.UpdateSentiment(ctx, msg.ID, scores); err != nil {
		observability.IncEnrichment("failed")
		p.logger.Warn("sentiment back-fill failed",
			zap.Int64("message_id", msg.ID), zap.Error(err))
		return
	}

	observability.IncEnrichment("ok")
	msg.Sentiment = &scores
}

// recordInteraction bumps the pair's friendship aggregate. A missing row
// means no relationship has been established yet and is a no-op; a failure is
// logged but never blocks delivery.
func (p *Pipeline) recordInteraction(ctx context.Context, senderID, receiverID int64) {
	updated, err := p.friendships.RecordInteraction(ctx, senderID, receiverID)
	if err != nil {
		p.logger.Warn("relationship aggregate update failed",
			zap.Int64("sender_id", senderID),
			zap.Int64("receiver_id", receiverID),
			zap.Error(err))
		return
	}
	if !updated {
		p.logger.Debug("no friendship row for pair, skipping aggregate",
			zap.Int64("sender_id", senderID),
			zap.Int64("receiver_id", receiverID))
	}
}
