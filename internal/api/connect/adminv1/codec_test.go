package adminv1

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJSONCodec(t *testing.T) {
	c := JSONCodec{}
	assert.Equal(t, "json", c.Name())

	data, err := c.Marshal(&BroadcastToastRequest{Kind: "info", Message: "hi"})
	require.NoError(t, err)
	assert.JSONEq(t, `{"kind":"info","message":"hi"}`, string(data))

	var empty GetStatusRequest
	require.NoError(t, c.Unmarshal(nil, &empty))

	var bad BroadcastToastRequest
	assert.Error(t, c.Unmarshal([]byte(`{"kind":`), &bad))
}
