package events

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromWireRestoresTypeAndTime(t *testing.T) {
	sent := UnauthorizedAccess("customer456", "customer123", "denied", "s1")

	raw, err := json.Marshal(sent.Payload())
	require.NoError(t, err)
	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &payload))

	got := FromWire("events."+sent.EventType(), payload)
	assert.Equal(t, TypeUnauthorizedAccess, got.EventType())
	assert.True(t, sent.Timestamp().Equal(got.Timestamp()))
	assert.Equal(t, "customer456", got.Payload()["requested_identifier"])
}

func TestFromWireUnknownSubject(t *testing.T) {
	got := FromWire("other", map[string]interface{}{})
	assert.Equal(t, "other", got.EventType())
	assert.False(t, got.Timestamp().IsZero())
}
