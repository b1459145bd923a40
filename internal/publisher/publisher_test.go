package publisher_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/billrun/billrun/internal/config"
	"github.com/billrun/billrun/internal/logger"
	"github.com/billrun/billrun/internal/publisher"
	"github.com/billrun/billrun/internal/testutil"
	"github.com/billrun/billrun/internal/types"
)

func newTestPublisher(t *testing.T) (publisher.EventPublisher, *testutil.InMemoryPubSub) {
	log, err := logger.NewLogger(config.GetDefaultConfig())
	require.NoError(t, err)

	ps := testutil.NewInMemoryPubSub()
	return publisher.NewEventPublisher(ps, log), ps
}

func TestPublishGenerationCompleted(t *testing.T) {
	pub, ps := newTestPublisher(t)
	billingDate := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	err := pub.PublishGenerationCompleted(context.Background(), billingDate, 42)
	require.NoError(t, err)

	msgs := ps.GetMessages(types.TopicGenerationCompleted)
	require.Len(t, msgs, 1)
	assert.NotEmpty(t, msgs[0].UUID)

	var event types.GenerationCompletedEvent
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &event))
	assert.True(t, event.BillingDate.Equal(billingDate))
	assert.Equal(t, 42, event.CreatedCount)
	assert.False(t, event.Timestamp.IsZero())
}

func TestPublishPdfsGenerated(t *testing.T) {
	pub, ps := newTestPublisher(t)
	billingDate := time.Date(2026, time.March, 15, 0, 0, 0, 0, time.UTC)

	err := pub.PublishPdfsGenerated(context.Background(), billingDate, 7)
	require.NoError(t, err)

	msgs := ps.GetMessages(types.TopicPdfsGenerated)
	require.Len(t, msgs, 1)

	var event types.PdfsGeneratedEvent
	require.NoError(t, json.Unmarshal(msgs[0].Payload, &event))
	assert.True(t, event.BillingDate.Equal(billingDate))
	assert.Equal(t, 7, event.PdfCount)
}
