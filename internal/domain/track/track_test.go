package track

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRequest_ID(t *testing.T) {
	tests := []struct {
		name     string
		request  Request
		ext      string
		expected string
	}{
		{
			name:     "default collection first item",
			request:  Request{Collection: 3, Item: 0},
			ext:      "mp3",
			expected: "3/0.mp3",
		},
		{
			name:     "extension with leading dot",
			request:  Request{Collection: 0, Item: 12},
			ext:      ".mp3",
			expected: "0/12.mp3",
		},
		{
			name:     "multi digit indices",
			request:  Request{Collection: 10, Item: 105},
			ext:      "wav",
			expected: "10/105.wav",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expected, tt.request.ID(tt.ext))
		})
	}
}

func TestParseID(t *testing.T) {
	t.Run("round trip", func(t *testing.T) {
		r := Request{Collection: 7, Item: 42}
		got, ext, err := ParseID(r.ID("mp3"))
		require.NoError(t, err)
		assert.Equal(t, r, got)
		assert.Equal(t, "mp3", ext)
	})

	invalid := []string{
		"3.mp3",
		"3/0",
		"a/b.mp3",
		"-1/0.mp3",
		"3/1x.mp3",
		"3/1/2.mp3",
		"3x/1.mp3",
		"03/1.mp3",
		"3/.mp3",
		"3/1.",
		"/1.mp3",
		"3/+1.mp3",
	}
	for _, id := range invalid {
		t.Run("invalid "+id, func(t *testing.T) {
			_, _, err := ParseID(id)
			assert.Error(t, err)
		})
	}
}

func TestParseID_KeepsExtensionCase(t *testing.T) {
	r, ext, err := ParseID("3/12.MP3")
	require.NoError(t, err)
	assert.Equal(t, Request{Collection: 3, Item: 12}, r)
	assert.Equal(t, "MP3", ext)
	assert.Equal(t, "3/12.MP3", r.ID(ext))
}

func TestParseIndex(t *testing.T) {
	valid := map[string]int{"0": 0, "7": 7, "12": 12}
	for name, want := range valid {
		got, ok := ParseIndex(name)
		assert.True(t, ok, name)
		assert.Equal(t, want, got, name)
	}

	for _, name := range []string{"", "01", "-1", "+1", "a", "1a", " 1", "99999999999999999999"} {
		_, ok := ParseIndex(name)
		assert.False(t, ok, name)
	}
}

func TestRequest_String(t *testing.T) {
	assert.Equal(t, "3/1", Request{Collection: 3, Item: 1}.String())
}
