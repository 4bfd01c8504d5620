package casetag

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestExtractCaseID(t *testing.T) {
	tests := []struct {
		name      string
		tags      []string
		wantID    int64
		wantOK    bool
		wantKnown bool
	}{
		{name: "single marker", tags: []string{"@C42"}, wantID: 42, wantOK: true, wantKnown: true},
		{name: "marker after other tags", tags: []string{"@Regression", "@C17"}, wantID: 17, wantOK: true, wantKnown: true},
		{name: "first marker wins", tags: []string{"@C5", "@C6"}, wantID: 5, wantOK: true, wantKnown: true},
		{name: "no marker", tags: []string{"@Smoke", "@API"}},
		{name: "empty", tags: nil},
		{name: "lowercase marker is not a case", tags: []string{"@c42"}},
		{name: "word after digits", tags: []string{"@C42abc"}},
		{name: "prefix only", tags: []string{"@C"}},
		{name: "zero id is mapped but unusable", tags: []string{"@Regression", "@C0"}, wantKnown: true},
		{name: "overflow is mapped but unusable", tags: []string{"@C99999999999999999999999"}, wantKnown: true},
		{name: "unusable marker skipped for a later one", tags: []string{"@C0", "@C9"}, wantID: 9, wantOK: true, wantKnown: true},
		{name: "tag without at sign", tags: []string{"C42"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			id, ok := ExtractCaseID(tt.tags)
			assert.Equal(t, tt.wantOK, ok)
			assert.Equal(t, tt.wantID, id)
			assert.Equal(t, tt.wantKnown, HasKnownCaseID(tt.tags))
		})
	}
}

func TestFormatCaseIDTagRoundTrip(t *testing.T) {
	for _, id := range []int64{1, 7, 42, 1000, 1<<31 + 5, 1<<62 + 1} {
		tag := FormatCaseIDTag(id)
		got, ok := ExtractCaseID([]string{tag})
		assert.True(t, ok, tag)
		assert.Equal(t, id, got)
	}
	assert.Equal(t, "@C42", FormatCaseIDTag(42))
}

func TestIsSmoke(t *testing.T) {
	assert.True(t, IsSmoke([]string{"@Smoke"}))
	assert.True(t, IsSmoke([]string{"@API", "@smoke"}))
	assert.False(t, IsSmoke([]string{"@SmokeTest"}))
	assert.False(t, IsSmoke(nil))
}
