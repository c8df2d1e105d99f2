package kafka

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func TestPublishDropsWhenInboxFull(t *testing.T) {
	core, logs := observer.New(zap.WarnLevel)
	p := NewProducer([]string{"127.0.0.1:1"}, 1, zap.New(core))

	p.Publish("crm.customer.created", []byte("k1"), []byte("v1"))
	p.Publish("crm.customer.created", []byte("k2"), []byte("v2"))

	require.Len(t, p.inbox, 1)
	m := <-p.inbox
	assert.Equal(t, "crm.customer.created", m.Topic)
	assert.Equal(t, []byte("k1"), m.Key)
	assert.Equal(t, 1, logs.FilterMessage("kafka inbox full, event dropped").Len())
}

func TestUnwrapPayload(t *testing.T) {
	type payload struct {
		ID string `json:"id"`
	}
	got, err := UnwrapPayload[payload](json.RawMessage(`{"id":"abc"}`))
	require.NoError(t, err)
	assert.Equal(t, "abc", got.ID)

	_, err = UnwrapPayload[payload](json.RawMessage(`[1]`))
	assert.Error(t, err)
}
