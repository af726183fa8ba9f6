package timeclock

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestEventType_Predecessor(t *testing.T) {
	_, ok := TimeIn.Predecessor()
	assert.False(t, ok, "time in has no predecessor")

	pred, ok := BreakIn.Predecessor()
	assert.True(t, ok)
	assert.Equal(t, TimeIn, pred)

	pred, ok = BreakOut.Predecessor()
	assert.True(t, ok)
	assert.Equal(t, BreakIn, pred)

	pred, ok = TimeOut.Predecessor()
	assert.True(t, ok)
	assert.Equal(t, BreakOut, pred)
}

func TestEventType_Valid(t *testing.T) {
	for _, et := range EventOrder {
		assert.True(t, et.Valid())
	}
	assert.False(t, EventType("LUNCH_IN").Valid())
	assert.False(t, EventType("").Valid())
}

func TestDailyTimeRecord_CanSubmitFollowsChronology(t *testing.T) {
	rec := DailyTimeRecord{EmployeeNumber: "100234", Date: time.Now()}

	assert.True(t, rec.CanSubmit(TimeIn))
	assert.False(t, rec.CanSubmit(BreakIn))
	assert.False(t, rec.CanSubmit(BreakOut))
	assert.False(t, rec.CanSubmit(TimeOut))

	rec.SetEntry(TimeIn, &ClockEntry{Timestamp: time.Now()})
	assert.False(t, rec.CanSubmit(TimeIn), "recorded events are not resubmittable")
	assert.True(t, rec.CanSubmit(BreakIn))
	assert.False(t, rec.CanSubmit(TimeOut))

	rec.SetEntry(BreakIn, &ClockEntry{})
	rec.SetEntry(BreakOut, &ClockEntry{})
	assert.True(t, rec.CanSubmit(TimeOut))
	assert.False(t, rec.CanSubmit(EventType("LUNCH_IN")))
}

func TestDailyTimeRecord_SetEntryFirstWriteWins(t *testing.T) {
	rec := DailyTimeRecord{}
	first := &ClockEntry{Timestamp: time.Date(2026, 8, 29, 8, 0, 0, 0, time.Local)}
	second := &ClockEntry{Timestamp: time.Date(2026, 8, 29, 9, 0, 0, 0, time.Local)}

	rec.SetEntry(TimeIn, first)
	rec.SetEntry(TimeIn, second)

	assert.Same(t, first, rec.Entry(TimeIn))
}
