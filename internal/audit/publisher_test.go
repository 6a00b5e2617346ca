package audit

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
)

func TestEventRoundTrip(t *testing.T) {
	event := Event{
		V:          1,
		TS:         1700000000000,
		ActorID:    "u-1",
		ActorEmail: "admin@example.com",
		Action:     ActionCreated,
		Resource:   "members",
		ResourceID: "m-1",
	}

	data, err := msgpack.Marshal(event)
	require.NoError(t, err)

	var decoded Event
	require.NoError(t, msgpack.Unmarshal(data, &decoded))
	assert.Equal(t, event, decoded)
}

func TestRecord_NilPublisherIsSafe(t *testing.T) {
	var p *Publisher

	assert.NotPanics(t, func() {
		p.Record(Event{Action: ActionDeleted, Resource: "accounts", ResourceID: "a-1"})
	})
}
