package utils

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDaysBetween(t *testing.T) {
	start := time.Date(2026, time.March, 1, 23, 59, 0, 0, time.UTC)
	end := time.Date(2026, time.March, 20, 0, 1, 0, 0, time.UTC)
	assert.Equal(t, 19, DaysBetween(start, end))
	assert.Equal(t, 0, DaysBetween(end, end))
	assert.Equal(t, -19, DaysBetween(end, start))
}

func TestDateOnly(t *testing.T) {
	loc := time.FixedZone("EST", -5*3600)
	got := DateOnly(time.Date(2026, time.March, 1, 22, 0, 0, 0, loc))
	assert.Equal(t, time.Date(2026, time.March, 1, 0, 0, 0, 0, time.UTC), got)
}

func TestDayJSON(t *testing.T) {
	type payload struct {
		Date *Day `json:"date"`
	}

	t.Run("marshal", func(t *testing.T) {
		d := NewDay(2026, time.January, 9)
		out, err := json.Marshal(payload{Date: &d})
		require.NoError(t, err)
		assert.JSONEq(t, `{"date":"2026-01-09"}`, string(out))
	})

	t.Run("unmarshal date", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-01-09"}`), &p))
		require.NotNil(t, p.Date)
		assert.Equal(t, time.Date(2026, time.January, 9, 0, 0, 0, 0, time.UTC), p.Date.Time())
	})

	t.Run("unmarshal timestamp keeps the calendar day", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"date":"2026-01-09T18:30:00-05:00"}`), &p))
		assert.Equal(t, "2026-01-09", p.Date.String())
	})

	t.Run("null and absent", func(t *testing.T) {
		var p payload
		require.NoError(t, json.Unmarshal([]byte(`{"date":null}`), &p))
		assert.Nil(t, p.Date)
		require.NoError(t, json.Unmarshal([]byte(`{}`), &p))
		assert.Nil(t, p.Date)
	})

	t.Run("rejects", func(t *testing.T) {
		var p payload
		assert.Error(t, json.Unmarshal([]byte(`{"date":"09/01/2026"}`), &p))
		assert.Error(t, json.Unmarshal([]byte(`{"date":20260109}`), &p))
	})
}
