package queue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExtractSNSPayloadValidEnvelope(t *testing.T) {
	inner := `{"ticker":"AAPL","filing_type":"10-K"}`
	envelope := map[string]string{"Type": "Notification", "Message": inner}
	raw, err := json.Marshal(envelope)
	require.NoError(t, err)
	body := string(raw)

	payload, err := extractSNSPayload(&body)
	require.NoError(t, err)
	assert.JSONEq(t, inner, string(payload))
}

func TestExtractSNSPayloadRawBody(t *testing.T) {
	raw := `{"ticker":"AAPL"}`
	payload, err := extractSNSPayload(&raw)
	require.NoError(t, err)
	assert.Equal(t, raw, string(payload))
}

func TestExtractSNSPayloadNilBody(t *testing.T) {
	_, err := extractSNSPayload(nil)
	assert.Error(t, err)
}
