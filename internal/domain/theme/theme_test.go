package theme

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Preference
	}{
		{"system", System},
		{"light", Light},
		{" DARK ", Dark},
		{"", System},
		{"sepia", System},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, Parse(tt.in, System), "input %q", tt.in)
	}
	assert.Equal(t, Dark, Parse("bogus", Dark))
}

func TestPreference_Next(t *testing.T) {
	assert.Equal(t, Light, System.Next())
	assert.Equal(t, Dark, Light.Next())
	assert.Equal(t, System, Dark.Next())
	assert.Equal(t, System, Preference("x").Next())
}

func TestPreference_ServerClass(t *testing.T) {
	assert.Equal(t, "", System.ServerClass())
	assert.Equal(t, "light", Light.ServerClass())
	assert.Equal(t, "dark", Dark.ServerClass())
}

func TestPreference_Valid(t *testing.T) {
	assert.True(t, System.Valid())
	assert.False(t, Preference("").Valid())
}
