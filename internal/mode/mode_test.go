package mode

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestParse(t *testing.T) {
	tests := []struct {
		in   string
		want Mode
		ok   bool
	}{
		{"dependencies", Dependencies, true},
		{"inline", Inline, true},
		{"", "", false},
		{"Inline", "", false},
		{"vendored", "", false},
	}

	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, ok := Parse(tt.in)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolve(t *testing.T) {
	tests := []struct {
		name       string
		explicit   string
		env        map[string]string
		wantMode   Mode
		wantSource Source
	}{
		{"explicit wins over env", "inline", map[string]string{EnvVar: "dependencies"}, Inline, SourceExplicit},
		{"env used without explicit", "", map[string]string{EnvVar: "inline"}, Inline, SourceEnvironment},
		{"invalid explicit falls through to env", "bogus", map[string]string{EnvVar: "inline"}, Inline, SourceEnvironment},
		{"invalid env falls through to default", "", map[string]string{EnvVar: "bogus"}, Dependencies, SourceDefault},
		{"nothing set", "", nil, Default, SourceDefault},
		{"other variables ignored", "", map[string]string{"MODE": "inline"}, Dependencies, SourceDefault},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			m, src := Resolve(tt.explicit, MapLookup(tt.env))
			assert.Equal(t, tt.wantMode, m)
			assert.Equal(t, tt.wantSource, src)
		})
	}
}

func TestResolve_NilLookup(t *testing.T) {
	m, src := Resolve("", nil)
	assert.Equal(t, Dependencies, m)
	assert.Equal(t, SourceDefault, src)
}

func TestResolve_OSLookup(t *testing.T) {
	t.Setenv(EnvVar, "inline")

	m, src := Resolve("", OSLookup)
	assert.Equal(t, Inline, m)
	assert.Equal(t, SourceEnvironment, src)
}

func TestMode_Valid(t *testing.T) {
	assert.True(t, Inline.Valid())
	assert.True(t, Dependencies.Valid())
	assert.False(t, Mode("x").Valid())
	assert.Equal(t, "inline", Inline.String())
}
