// Package events carries workspace change snapshots and upload notices to whoever
// renders them, over an in-process watermill pub/sub.
package events

import (
	"context"
	"encoding/json"

	"github.com/ThreeDotsLabs/watermill"
	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/ThreeDotsLabs/watermill/pubsub/gochannel"
	"go.uber.org/zap"

	"docspace/internal/model"
)

const (
	// TopicWorkspace carries a JSON model.Snapshot after every workspace change.
	TopicWorkspace = "workspace.changed"
	// TopicNotices carries a JSON model.Notice for every upload outcome.
	TopicNotices = "upload.notices"
)

// Bus publishes workspace events. Messages published while nobody is subscribed are dropped.
type Bus struct {
	pubsub *gochannel.GoChannel
	logger *zap.Logger
}

// NewBus returns a bus logging through logger (nil means no logging).
func NewBus(logger *zap.Logger) *Bus {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Bus{
		pubsub: gochannel.NewGoChannel(
			gochannel.Config{OutputChannelBuffer: 64},
			NewZapAdapter(logger),
		),
		logger: logger,
	}
}

// WorkspaceChanged publishes s on TopicWorkspace. Decode payloads with DecodeSnapshot.
func (b *Bus) WorkspaceChanged(s model.Snapshot) {
	b.publish(TopicWorkspace, newWireSnapshot(s))
}

// UploadNotice publishes n on TopicNotices.
func (b *Bus) UploadNotice(n model.Notice) {
	b.publish(TopicNotices, n)
}

// Subscribe returns the messages published on topic until ctx is done.
// Every received message must be acked before the next one is delivered.
func (b *Bus) Subscribe(ctx context.Context, topic string) (<-chan *message.Message, error) {
	return b.pubsub.Subscribe(ctx, topic)
}

// Close stops delivery to every subscriber.
func (b *Bus) Close() error {
	return b.pubsub.Close()
}

func (b *Bus) publish(topic string, v any) {
	payload, err := json.Marshal(v)
	if err != nil {
		b.logger.Error("marshal event", zap.String("topic", topic), zap.Error(err))
		return
	}
	msg := message.NewMessage(watermill.NewUUID(), payload)
	if err := b.pubsub.Publish(topic, msg); err != nil {
		b.logger.Warn("publish event", zap.String("topic", topic), zap.Error(err))
	}
}
