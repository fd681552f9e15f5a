package tags

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   []string
		want []string
	}{
		{"nil input", nil, []string{}},
		{"trims and drops empties", []string{"  a ", "", "   "}, []string{"a"}},
		{"case-insensitive dedupe keeps first spelling", []string{"Education", "education", "EDUCATION"}, []string{"Education"}},
		{"order preserved", []string{"b", "a", "B"}, []string{"b", "a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestContainsFold(t *testing.T) {
	assert.True(t, ContainsFold([]string{"Environment"}, "environment"))
	assert.False(t, ContainsFold([]string{"Environment"}, "env"))
	assert.False(t, ContainsFold(nil, "x"))
}
