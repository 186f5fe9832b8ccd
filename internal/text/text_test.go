package text

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"Empty", "", ""},
		{"Only Whitespace", " \n\t ", ""},
		{"Trims Edges", "  hello world  ", "hello world"},
		{"Collapses Inner Runs", "hello \n\n\t world", "hello world"},
		{"Non-Breaking Space Is Whitespace", "a\u00a0\u00a0b", "a b"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, Normalize(tt.in))
		})
	}
}

func TestIsSubstantive(t *testing.T) {
	nine := strings.Repeat("word ", 9)
	ten := strings.Repeat("word ", 10)

	assert.Equal(t, 9, WordCount(nine))
	assert.False(t, IsSubstantive(nine))
	assert.True(t, IsSubstantive(ten))
	assert.False(t, IsSubstantive("one two three four five"))
}
