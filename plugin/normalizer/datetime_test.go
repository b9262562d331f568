package normalizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var testNow = time.Date(2024, 8, 1, 4, 0, 0, 0, time.UTC)

func TestParseLocal(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string // RFC3339 UTC, "" for nil
	}{
		{
			name:  "explicit UTC marker",
			input: "2024-08-15T06:00:00Z",
			want:  "2024-08-15T06:00:00Z",
		},
		{
			name:  "explicit offset without seconds",
			input: "2024-08-15T14:00+08:00",
			want:  "2024-08-15T06:00:00Z",
		},
		{
			name:  "local datetime with T",
			input: "2024-08-15T14:00",
			want:  "2024-08-15T06:00:00Z",
		},
		{
			name:  "local datetime with space",
			input: "2024-08-15 14:00",
			want:  "2024-08-15T06:00:00Z",
		},
		{
			name:  "local datetime with seconds",
			input: "2024-08-15T14:00:30",
			want:  "2024-08-15T06:00:30Z",
		},
		{
			name:  "date only is local midnight",
			input: "2025-11-30",
			want:  "2025-11-29T16:00:00Z",
		},
		{
			name:  "slash date last resort",
			input: "2024/08/15 14:00",
			want:  "2024-08-15T06:00:00Z",
		},
		{
			name:  "cjk date last resort",
			input: "2024年8月15日 14:00",
			want:  "2024-08-15T06:00:00Z",
		},
		{
			name:  "surrounding whitespace",
			input: "  2024-08-15T14:00  ",
			want:  "2024-08-15T06:00:00Z",
		},
		{
			name:  "garbage",
			input: "next tuesday-ish",
			want:  "",
		},
		{
			name:  "empty",
			input: "",
			want:  "",
		},
		{
			name:  "invalid offset time",
			input: "2024-13-45T99:99:00Z",
			want:  "",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseLocal(tt.input)
			if tt.want == "" {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.Equal(t, tt.want, got.UTC().Format(time.RFC3339))
		})
	}
}

func TestResolveTriple(t *testing.T) {
	tests := []struct {
		name      string
		start     string
		end       string
		allDay    bool
		wantStart string
		wantEnd   string
	}{
		{
			name:      "end before start corrected to one hour",
			start:     "2024-08-15T14:00",
			end:       "2024-08-15T13:00",
			allDay:    false,
			wantStart: "2024-08-15T06:00:00Z",
			wantEnd:   "2024-08-15T07:00:00Z",
		},
		{
			name:      "all day snaps to local midnight and 24h span",
			start:     "2025-11-30",
			end:       "",
			allDay:    true,
			wantStart: "2025-11-29T16:00:00Z",
			wantEnd:   "2025-11-30T16:00:00Z",
		},
		{
			name:      "all day discards a computed end",
			start:     "2025-11-30T10:00",
			end:       "2025-11-30T20:00",
			allDay:    true,
			wantStart: "2025-11-29T16:00:00Z",
			wantEnd:   "2025-11-30T16:00:00Z",
		},
		{
			name:      "missing end defaults to start plus one hour",
			start:     "2024-08-15T14:00",
			end:       "",
			allDay:    false,
			wantStart: "2024-08-15T06:00:00Z",
			wantEnd:   "2024-08-15T07:00:00Z",
		},
		{
			name:      "missing start defaults to now",
			start:     "",
			end:       "",
			allDay:    false,
			wantStart: "2024-08-01T04:00:00Z",
			wantEnd:   "2024-08-01T05:00:00Z",
		},
		{
			name:      "unparseable start defaults to now",
			start:     "soonish",
			end:       "",
			allDay:    false,
			wantStart: "2024-08-01T04:00:00Z",
			wantEnd:   "2024-08-01T05:00:00Z",
		},
		{
			name:      "equal start and end corrected",
			start:     "2024-08-15T14:00",
			end:       "2024-08-15T14:00",
			allDay:    false,
			wantStart: "2024-08-15T06:00:00Z",
			wantEnd:   "2024-08-15T07:00:00Z",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ResolveTriple(tt.start, tt.end, tt.allDay, testNow)
			assert.Equal(t, tt.wantStart, got.Start.UTC().Format(time.RFC3339))
			assert.Equal(t, tt.wantEnd, got.End.UTC().Format(time.RFC3339))
			assert.Equal(t, tt.allDay, got.AllDay)
			assert.True(t, got.End.After(got.Start))
		})
	}
}

func TestResolveTripleIdempotent(t *testing.T) {
	inputs := []struct {
		start  string
		end    string
		allDay bool
	}{
		{"2024-08-15T14:00", "2024-08-15T13:00", false},
		{"2025-11-30", "", true},
		{"", "", false},
		{"2024-08-15 09:30", "2024-08-15 18:00", false},
	}

	for _, in := range inputs {
		first := ResolveTriple(in.start, in.end, in.allDay, testNow)
		second := ResolveTriple(
			first.Start.UTC().Format(time.RFC3339),
			first.End.UTC().Format(time.RFC3339),
			first.AllDay,
			testNow.Add(48*time.Hour), // a different "now" must not matter
		)
		assert.True(t, first.Start.Equal(second.Start), "start drifted for %+v", in)
		assert.True(t, first.End.Equal(second.End), "end drifted for %+v", in)
		assert.Equal(t, first.AllDay, second.AllDay)
	}
}

func TestAllDayInvariant(t *testing.T) {
	got := ResolveTriple("2024-02-29T23:59", "", true, testNow)

	local := got.Start.In(TaipeiZone)
	assert.Zero(t, local.Hour())
	assert.Zero(t, local.Minute())
	assert.Zero(t, local.Second())
	assert.Equal(t, 24*time.Hour, got.End.Sub(got.Start))
}

func TestSameLocalDate(t *testing.T) {
	// 2024-08-15T15:59Z is still 2024-08-15 in Taipei; 16:00Z rolls over.
	a := time.Date(2024, 8, 15, 15, 59, 0, 0, time.UTC)
	b := time.Date(2024, 8, 15, 16, 0, 0, 0, time.UTC)
	c := time.Date(2024, 8, 15, 2, 0, 0, 0, time.UTC)

	assert.True(t, SameLocalDate(a, c))
	assert.False(t, SameLocalDate(a, b))
}
