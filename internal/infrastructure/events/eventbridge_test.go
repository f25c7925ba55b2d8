package events

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"social-campaign-backend/internal/application/ports"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge"
	"github.com/aws/aws-sdk-go-v2/service/eventbridge/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type fakeEventBridge struct {
	inputs []*eventbridge.PutEventsInput
	output func(in *eventbridge.PutEventsInput) *eventbridge.PutEventsOutput
	err    error
}

func (f *fakeEventBridge) PutEvents(ctx context.Context, in *eventbridge.PutEventsInput, _ ...func(*eventbridge.Options)) (*eventbridge.PutEventsOutput, error) {
	f.inputs = append(f.inputs, in)
	if f.err != nil {
		return nil, f.err
	}
	if f.output != nil {
		return f.output(in), nil
	}
	return &eventbridge.PutEventsOutput{Entries: make([]types.PutEventsResultEntry, len(in.Entries))}, nil
}

type publishCounter struct {
	ok, failed int
}

func (c *publishCounter) RecordPublish(_ string, err error) {
	if err != nil {
		c.failed++
		return
	}
	c.ok++
}

func statusEvent(i int) ports.Event {
	return ports.Event{
		DetailType: "CampaignStatusChanged",
		Resource:   fmt.Sprintf("c%d", i),
		TenantID:   "t1",
		Time:       time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC),
		Detail:     map[string]string{"campaignId": fmt.Sprintf("c%d", i), "toStatus": "completed"},
	}
}

func TestEventBridgeBus(t *testing.T) {
	ctx := context.Background()

	t.Run("Should build one entry per event", func(t *testing.T) {
		fake := &fakeEventBridge{}
		bus := NewEventBridgeBus(fake, "campaigns", "campaign-service", nil, zap.NewNop())

		require.NoError(t, bus.Publish(ctx, statusEvent(1)))
		require.Len(t, fake.inputs, 1)
		entry := fake.inputs[0].Entries[0]
		assert.Equal(t, "campaigns", aws.ToString(entry.EventBusName))
		assert.Equal(t, "campaign-service", aws.ToString(entry.Source))
		assert.Equal(t, "CampaignStatusChanged", aws.ToString(entry.DetailType))
		assert.Equal(t, []string{"c1"}, entry.Resources)

		var detail map[string]string
		require.NoError(t, json.Unmarshal([]byte(aws.ToString(entry.Detail)), &detail))
		assert.Equal(t, "completed", detail["toStatus"])
	})

	t.Run("Should split large publishes into batches of ten", func(t *testing.T) {
		fake := &fakeEventBridge{}
		bus := NewEventBridgeBus(fake, "", "", nil, zap.NewNop())
		events := make([]ports.Event, 23)
		for i := range events {
			events[i] = statusEvent(i)
		}
		require.NoError(t, bus.Publish(ctx, events...))
		require.Len(t, fake.inputs, 3)
		assert.Len(t, fake.inputs[2].Entries, 3)
		assert.Equal(t, "default", aws.ToString(fake.inputs[0].Entries[0].EventBusName))
	})

	t.Run("Should report rejected entries", func(t *testing.T) {
		fake := &fakeEventBridge{output: func(in *eventbridge.PutEventsInput) *eventbridge.PutEventsOutput {
			entries := make([]types.PutEventsResultEntry, len(in.Entries))
			entries[1] = types.PutEventsResultEntry{ErrorCode: aws.String("InternalFailure"), ErrorMessage: aws.String("boom")}
			return &eventbridge.PutEventsOutput{Entries: entries, FailedEntryCount: 1}
		}}
		counter := &publishCounter{}
		bus := NewEventBridgeBus(fake, "campaigns", "", counter, zap.NewNop())

		err := bus.Publish(ctx, statusEvent(1), statusEvent(2), statusEvent(3))
		require.Error(t, err)
		assert.Contains(t, err.Error(), "1 events failed")
		assert.Equal(t, 2, counter.ok)
		assert.Equal(t, 1, counter.failed)
	})

	t.Run("Should surface client errors", func(t *testing.T) {
		fake := &fakeEventBridge{err: errors.New("network down")}
		counter := &publishCounter{}
		bus := NewEventBridgeBus(fake, "campaigns", "", counter, zap.NewNop())
		assert.Error(t, bus.Publish(ctx, statusEvent(1)))
		assert.Equal(t, 1, counter.failed)
	})

	t.Run("Should not call the client for nothing", func(t *testing.T) {
		fake := &fakeEventBridge{}
		bus := NewEventBridgeBus(fake, "campaigns", "", nil, zap.NewNop())
		require.NoError(t, bus.Publish(ctx))
		assert.Empty(t, fake.inputs)
	})
}

func TestMemoryBus(t *testing.T) {
	bus := NewMemoryBus()
	require.NoError(t, bus.Publish(context.Background(), statusEvent(1)))
	assert.Len(t, bus.Events(), 1)

	bus.Fail(errors.New("down"))
	assert.Error(t, bus.Publish(context.Background(), statusEvent(2)))
	assert.Len(t, bus.Events(), 1)
}

func TestDiscardBus(t *testing.T) {
	assert.NoError(t, DiscardBus{}.Publish(context.Background(), statusEvent(1)))
}
