package model

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewDateTruncates(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 15, 17, 45, 12, 0, time.FixedZone("CET", 3600)))
	assert.Equal(t, "2024-03-15", d.Format("2006-01-02"))
	assert.Equal(t, time.UTC, d.Location())
}

func TestDaysUntil(t *testing.T) {
	a := NewDate(time.Date(2024, 1, 5, 0, 0, 0, 0, time.UTC))
	b := NewDate(time.Date(2024, 1, 14, 0, 0, 0, 0, time.UTC))
	assert.Equal(t, 9, a.DaysUntil(b))
	assert.Equal(t, -9, b.DaysUntil(a))
	assert.Equal(t, 0, a.DaysUntil(a))
}

func TestDateCSVRoundTrip(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	b, err := d.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "2024-03-15", string(b))

	var back Date
	require.NoError(t, back.UnmarshalCSV(b))
	assert.True(t, d.Equal(back.Time))

	assert.Error(t, back.UnmarshalCSV([]byte("15/03/2024")))
}

func TestDateJSON(t *testing.T) {
	d := NewDate(time.Date(2024, 3, 15, 0, 0, 0, 0, time.UTC))

	b, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"2024-03-15"`, string(b))

	var back Date
	require.NoError(t, json.Unmarshal(b, &back))
	assert.True(t, d.Equal(back.Time))
}
