package uuid

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNew(t *testing.T) {
	id := New()
	assert.NotEqual(t, uuid.Nil, id)
	assert.True(t, IsUUIDv7(id))
}

func TestNewID(t *testing.T) {
	s := NewID("task")
	id, err := Parse(s)
	require.NoError(t, err)
	assert.True(t, IsUUIDv7(id))
	assert.NotEqual(t, s, NewID("task"))
}

func TestParse(t *testing.T) {
	validUUID := "123e4567-e89b-12d3-a456-426614174000"
	id, err := Parse(validUUID)
	assert.NoError(t, err)
	assert.Equal(t, validUUID, id.String())

	_, err = Parse("invalid-uuid")
	assert.Error(t, err)
}

func TestGetTimestampFromUUID(t *testing.T) {
	before := time.Now().Add(-time.Second)
	id := New()
	after := time.Now().Add(time.Second)
	ts := GetTimestampFromUUID(id)
	assert.True(t, ts.After(before) && ts.Before(after))
}
