// Package events publishes application events to EventBridge, with an
// in-memory recorder for tests and local runs.
package events

import (
	"context"
	"encoding/json"
	"fmt"

	"social-campaign-backend/internal/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"go.uber.org/zap"
)

// EventBridge limits PutEvents to 10 entries.
const maxBatchSize = 10

// PutEventsAPI is the slice of the EventBridge client the bus needs.
type PutEventsAPI interface {
	PutEvents(ctx context.Context, params *eventbridge.PutEventsInput, optFns ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error)
}

// PublishRecorder receives one call per published event.
type PublishRecorder interface {
	RecordPublish(detailType string, err error)
}

// EventBridgeBus implements ports.EventBus on EventBridge.
type EventBridgeBus struct {
	client   PutEventsAPI
	busName  string
	source   string
	recorder PublishRecorder
	logger   *zap.Logger
}

var _ ports.EventBus = (*EventBridgeBus)(nil)

// NewEventBridgeBus creates a bus. recorder may be nil.
func NewEventBridgeBus(client PutEventsAPI, busName, source string, recorder PublishRecorder, logger *zap.Logger) *EventBridgeBus {
	if busName == "" {
		busName = "default"
	}
	if source == "" {
		source = "social-campaign-backend"
	}
	return &EventBridgeBus{
		client:   client,
		busName:  busName,
		source:   source,
		recorder: recorder,
		logger:   logger.Named("eventbridge"),
	}
}

// Publish sends events in batches of ten. Entries EventBridge rejects are
// logged and reported as one error after every batch has been tried.
func (b *EventBridgeBus) Publish(ctx context.Context, events ...ports.Event) error {
	var failed int
	for start := 0; start < len(events); start += maxBatchSize {
		end := start + maxBatchSize
		if end > len(events) {
			end = len(events)
		}
		n, err := b.publishBatch(ctx, events[start:end])
		if err != nil {
			return err
		}
		failed += n
	}
	if failed > 0 {
		return fmt.Errorf("%d events failed to publish", failed)
	}
	return nil
}

func (b *EventBridgeBus) publishBatch(ctx context.Context, batch []ports.Event) (int, error) {
	entries := make([]types.PutEventsRequestEntry, 0, len(batch))
	for _, event := range batch {
		detail, err := json.Marshal(event.Detail)
		if err != nil {
			return 0, fmt.Errorf("marshal %s detail: %w", event.DetailType, err)
		}
		entry := types.PutEventsRequestEntry{
			EventBusName: aws.String(b.busName),
			Source:       aws.String(b.source),
			DetailType:   aws.String(event.DetailType),
			Detail:       aws.String(string(detail)),
		}
		if !event.Time.IsZero() {
			entry.Time = aws.Time(event.Time)
		}
		if event.Resource != "" {
			entry.Resources = []string{event.Resource}
		}
		entries = append(entries, entry)
	}

	out, err := b.client.PutEvents(ctx, &eventbridge.PutEventsInput{Entries: entries})
	if err != nil {
		for _, event := range batch {
			b.record(event.DetailType, err)
		}
		return 0, fmt.Errorf("put events: %w", err)
	}

	for i, event := range batch {
		var entryErr error
		if i < len(out.Entries) && out.Entries[i].ErrorCode != nil {
			entryErr = fmt.Errorf("%s: %s", aws.ToString(out.Entries[i].ErrorCode), aws.ToString(out.Entries[i].ErrorMessage))
			b.logger.Error("event rejected",
				zap.String("detail_type", event.DetailType),
				zap.String("resource", event.Resource),
				zap.Error(entryErr))
		}
		b.record(event.DetailType, entryErr)
	}

	b.logger.Debug("events published",
		zap.Int("count", len(entries)),
		zap.Int32("failed", out.FailedEntryCount),
		zap.String("event_bus", b.busName))
	return int(out.FailedEntryCount), nil
}

func (b *EventBridgeBus) record(detailType string, err error) {
	if b.recorder != nil {
		b.recorder.RecordPublish(detailType, err)
	}
}
