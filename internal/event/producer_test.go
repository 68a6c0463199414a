package event

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"log/slog"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	pkgkafka "github.com/amritage/age-fabric-shop-admin-panel/pkg/kafka"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/logger"
)

type published struct {
	topic string
	event *pkgkafka.Event
}

type recordingPublisher struct {
	sent []published
	err  error
}

func (r *recordingPublisher) Publish(_ context.Context, topic string, evt *pkgkafka.Event) error {
	if r.err != nil {
		return r.err
	}
	r.sent = append(r.sent, published{topic: topic, event: evt})
	return nil
}

func newTestProducer() (*Producer, *recordingPublisher) {
	rec := &recordingPublisher{}
	l := slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
	return NewProducer(rec, l), rec
}

func TestPublishProductSubmitted(t *testing.T) {
	p, rec := newTestProducer()
	s := domain.NewIntakeSession("admin-1", domain.ModeCreate, "")
	s.Media["image1"] = domain.MediaHandle{Slot: "image1"}
	s.Media["video"] = domain.MediaHandle{Slot: "video"}

	ctx := logger.WithCorrelationID(context.Background(), "req-1")
	ctx = logger.WithAdminID(ctx, "admin-1")
	err := p.PublishProductSubmitted(ctx, s, "p1", domain.Draft{"name": "Twill", "sku": "T-1", "slug": "twill"})
	require.NoError(t, err)

	require.Len(t, rec.sent, 1)
	evt := rec.sent[0].event
	assert.Equal(t, TopicProductSubmitted, rec.sent[0].topic)
	assert.Equal(t, "product.submitted", evt.Type)
	assert.Equal(t, "p1", evt.AggregateID)
	assert.Equal(t, SourceCatalogAdmin, evt.Source)
	assert.Equal(t, "req-1", evt.CorrelationID)
	assert.Equal(t, "admin-1", evt.Actor)

	var data ProductSubmittedData
	require.NoError(t, json.Unmarshal(evt.Data, &data))
	assert.Equal(t, "create", data.Mode)
	assert.Equal(t, "T-1", data.SKU)
	assert.Equal(t, []string{"image1", "video"}, data.MediaSlots)
}

func TestPublishDraftCleared_AggregateID(t *testing.T) {
	p, rec := newTestProducer()
	require.NoError(t, p.PublishDraftCleared(context.Background(), "admin-1", "create"))

	require.Len(t, rec.sent, 1)
	assert.Equal(t, TopicDraftCleared, rec.sent[0].topic)
	assert.Equal(t, "admin-1:create", rec.sent[0].event.AggregateID)
	assert.Empty(t, rec.sent[0].event.Metadata)
}

func TestPublishProductDeleted_WrapsError(t *testing.T) {
	p, rec := newTestProducer()
	rec.err = errors.New("broker down")

	err := p.PublishProductDeleted(context.Background(), "admin-1", "p1")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish product.deleted event")
}

func TestNop(t *testing.T) {
	var n Nop
	assert.NoError(t, n.PublishProductSubmitted(context.Background(), nil, "", nil))
	assert.NoError(t, n.PublishProductDeleted(context.Background(), "", ""))
	assert.NoError(t, n.PublishDraftCleared(context.Background(), "", ""))
}
