package notify

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEvent_Key(t *testing.T) {
	event := NewEvent(KindSetMetadata, map[string]any{"scope": "user", "name": "file.root", "key": "owner"})
	assert.Equal(t, "user:file.root", event.Key())
	assert.NotEmpty(t, event.ID)

	assert.Empty(t, NewEvent(KindSetMetadata, map[string]any{"key": "owner"}).Key())
}

func TestMemory_Records(t *testing.T) {
	m := &Memory{}
	m.Publish(context.Background(), KindSetMetadata, map[string]any{"key": "a"})
	m.Publish(context.Background(), KindDeleteMetadata, map[string]any{"key": "b"})

	events := m.Events()
	require.Len(t, events, 2)
	assert.Equal(t, KindDeleteMetadata, events[1].Kind)
	assert.NotEqual(t, events[0].ID, events[1].ID)
}

func TestKafka_PublishDoesNotBlock(t *testing.T) {
	k, err := NewKafka(KafkaConfig{
		Brokers:         []string{"127.0.0.1:1"},
		DeliveryTimeout: 200 * time.Millisecond,
	}, nil)
	require.NoError(t, err)

	start := time.Now()
	k.Publish(context.Background(), KindSetMetadata, map[string]any{"scope": "user", "name": "f"})
	assert.Less(t, time.Since(start), 100*time.Millisecond)

	_ = k.Close(time.Second)
}

func TestKafka_RequiresBrokers(t *testing.T) {
	_, err := NewKafka(KafkaConfig{}, nil)
	assert.Error(t, err)
}
