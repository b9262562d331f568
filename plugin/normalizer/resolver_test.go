package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestResolveUsesDeclaredTimes(t *testing.T) {
	got := Resolve(EventArgs{
		Title:       "市區接送",
		Description: "上車地址：台北車站",
		StartTime:   "2024-08-15T14:00",
		EndTime:     "2024-08-15T15:00",
	}, testNow)

	assert.Equal(t, "2024-08-15T06:00:00Z", got.Start.UTC().Format(time.RFC3339))
	assert.Equal(t, "2024-08-15T07:00:00Z", got.End.UTC().Format(time.RFC3339))
	assert.False(t, got.AllDay)
}

func TestResolveEmbeddedDateOverridesDeclaredTimes(t *testing.T) {
	// The transport document inside the description says the 16th; the model
	// computed the 15th. The document wins.
	got := Resolve(EventArgs{
		Title:       "CI123 接機",
		Description: "行程日期：2024年8月16日\n行程時間：09:30\n上車地址：桃園機場第二航廈",
		StartTime:   "2024-08-15T09:30",
		EndTime:     "2024-08-15T10:30",
	}, testNow)

	assert.Equal(t, "2024-08-16T01:30:00Z", got.Start.UTC().Format(time.RFC3339))
	assert.Equal(t, "2024-08-16T02:30:00Z", got.End.UTC().Format(time.RFC3339))
	assert.False(t, got.AllDay)
}

func TestResolveOverrideImpliesTimedEvent(t *testing.T) {
	got := Resolve(EventArgs{
		Description: "行程日期：2024年8月16日\n行程時間：09:30",
		StartTime:   "2024-08-16",
	}, testNow)

	assert.False(t, got.AllDay)
	assert.Equal(t, time.Hour, got.End.Sub(got.Start))
}

func TestResolveAllDayRequestWinsFinalSnap(t *testing.T) {
	got := Resolve(EventArgs{
		Description: "行程日期：2024年8月16日\n行程時間：09:30",
		StartTime:   "2024-08-15T09:30",
		AllDay:      true,
	}, testNow)

	// Override moves the date to the 16th, the all-day request then snaps it.
	assert.True(t, got.AllDay)
	assert.Equal(t, "2024-08-15T16:00:00Z", got.Start.UTC().Format(time.RFC3339))
	assert.Equal(t, 24*time.Hour, got.End.Sub(got.Start))
}

func TestResolveDeterministicAcrossCallSites(t *testing.T) {
	// The interactive client path and the webhook path hand the same
	// arguments to the same function; the outputs must be identical.
	args := EventArgs{
		Title:       "BR756 接機",
		Description: "行程日期：2024年9月1日\n行程時間：22:10\n上車地址：桃園機場第一航廈",
		StartTime:   "2024-09-01T22:10",
	}

	a := Resolve(args, testNow)
	b := Resolve(args, testNow.Add(3*time.Hour))

	assert.True(t, a.Start.Equal(b.Start))
	assert.True(t, a.End.Equal(b.End))
	assert.Equal(t, a.AllDay, b.AllDay)
}
