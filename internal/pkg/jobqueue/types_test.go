package jobqueue

import (
	"encoding/json"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestJobLifecycle(t *testing.T) {
	job := &Job{
		ID:         "test-id",
		Type:       JobTypeListingImage,
		Status:     JobStatusPending,
		MaxRetries: DefaultMaxRetries,
	}

	job.MarkAsProcessing()
	assert.Equal(t, JobStatusProcessing, job.Status)
	require.NotNil(t, job.ProcessedAt)

	job.MarkAsFailed("boom")
	assert.Equal(t, JobStatusFailed, job.Status)
	assert.Equal(t, "boom", job.ErrorMsg)
	assert.Equal(t, 1, job.RetryCount)
	assert.True(t, job.IsRetryable())

	job.MarkAsFailed("boom")
	job.MarkAsFailed("boom")
	assert.Equal(t, 3, job.RetryCount)
	assert.False(t, job.IsRetryable())

	job.MarkAsCompleted()
	assert.Equal(t, JobStatusCompleted, job.Status)
	require.NotNil(t, job.CompletedAt)
}

func TestUintFromPayload(t *testing.T) {
	// Payloads round-trip through JSON, so numbers come back as float64
	data, err := json.Marshal(map[string]interface{}{"image_id": uint(42)})
	require.NoError(t, err)

	var payload map[string]interface{}
	require.NoError(t, json.Unmarshal(data, &payload))

	id, ok := UintFromPayload(payload, "image_id")
	require.True(t, ok)
	assert.Equal(t, uint(42), id)

	_, ok = UintFromPayload(payload, "missing")
	assert.False(t, ok)

	_, ok = UintFromPayload(map[string]interface{}{"image_id": "nope"}, "image_id")
	assert.False(t, ok)
}
