package queue

import (
	"context"
	"encoding/json"
	"errors"
	"testing"

	"github.com/segmentio/kafka-go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"anime-api/internal/config"
	"anime-api/internal/models"
)

type captureWriter struct {
	msgs   []kafka.Message
	err    error
	closed bool
}

func (w *captureWriter) WriteMessages(_ context.Context, msgs ...kafka.Message) error {
	if w.err != nil {
		return w.err
	}
	w.msgs = append(w.msgs, msgs...)
	return nil
}

func (w *captureWriter) Close() error {
	w.closed = true
	return nil
}

func TestPublishKeysByAnimeID(t *testing.T) {
	w := &captureWriter{}
	p := &Publisher{w: w}

	require.NoError(t, p.Publish(context.Background(), models.NewAnimeEvent(models.ActionUpdated, "id-1", "Naruto")))
	require.Len(t, w.msgs, 1)
	assert.Equal(t, []byte("id-1"), w.msgs[0].Key)

	var ev models.AnimeEvent
	require.NoError(t, json.Unmarshal(w.msgs[0].Value, &ev))
	assert.Equal(t, models.ActionUpdated, ev.Action)
	assert.Equal(t, "Naruto", ev.Title)
	assert.False(t, ev.OccurredAt.IsZero())

	require.NoError(t, p.Close())
	assert.True(t, w.closed)
}

func TestPublishError(t *testing.T) {
	boom := errors.New("broker down")
	p := &Publisher{w: &captureWriter{err: boom}}
	assert.ErrorIs(t, p.Publish(context.Background(), models.NewAnimeEvent(models.ActionDeleted, "id-1", "")), boom)
}

func TestDisabledPublisherDropsEvents(t *testing.T) {
	p := NewPublisher(context.Background(), &config.Config{})
	assert.NoError(t, p.Publish(context.Background(), models.NewAnimeEvent(models.ActionCreated, "id-1", "x")))
	assert.NoError(t, p.Close())

	var nilPublisher *Publisher
	assert.NoError(t, nilPublisher.Publish(context.Background(), models.NewAnimeEvent(models.ActionCreated, "id-1", "x")))
}
