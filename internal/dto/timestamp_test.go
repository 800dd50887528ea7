package dto

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimestamp_Layouts(t *testing.T) {
	cases := map[string]time.Time{
		`"2024-05-01T12:30:00Z"`:       time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		`"2024-05-01T12:30:00.123456"`: time.Date(2024, 5, 1, 12, 30, 0, 123456000, time.UTC),
		`"2024-05-01T12:30:00"`:        time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
		`"2024-05-01"`:                 time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC),
		`"2024-05-01T14:30:00+02:00"`:  time.Date(2024, 5, 1, 12, 30, 0, 0, time.UTC),
	}
	for input, want := range cases {
		var ts Timestamp
		require.NoError(t, json.Unmarshal([]byte(input), &ts), input)
		assert.True(t, want.Equal(ts.Time), input)
	}
}

func TestTimestamp_Invalid(t *testing.T) {
	var ts Timestamp
	assert.Error(t, json.Unmarshal([]byte(`"yesterday"`), &ts))
	assert.Error(t, json.Unmarshal([]byte(`12345`), &ts))

	var holder struct {
		At *Timestamp `json:"at"`
	}
	require.NoError(t, json.Unmarshal([]byte(`{"at":null}`), &holder))
	assert.Nil(t, holder.At)
	assert.Nil(t, holder.At.Ptr())
	assert.True(t, holder.At.Value().IsZero())
}
