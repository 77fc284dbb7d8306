package pagination

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNormalize(t *testing.T) {
	tests := []struct {
		name string
		in   Params
		def  int
		max  int
		want Params
	}{
		{"defaults", Params{}, 20, 100, Params{Page: 1, Limit: 20}},
		{"package defaults", Params{}, 0, 0, Params{Page: 1, Limit: DefaultLimit}},
		{"caps limit", Params{Page: 3, Limit: 500}, 10, 100, Params{Page: 3, Limit: 100}},
		{"negative page", Params{Page: -2, Limit: 5}, 10, 100, Params{Page: 1, Limit: 5}},
		{"default above max", Params{}, 50, 25, Params{Page: 1, Limit: 25}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.in.Normalize(tt.def, tt.max))
		})
	}
}

func TestOffset(t *testing.T) {
	assert.Equal(t, 0, Params{Page: 1, Limit: 10}.Offset())
	assert.Equal(t, 40, Params{Page: 3, Limit: 20}.Offset())
	assert.Equal(t, 0, Params{}.Offset())
}

func TestNewMeta(t *testing.T) {
	assert.Equal(t, Meta{Page: 1, Limit: 10, Total: 0, Pages: 0}, NewMeta(Params{Page: 1, Limit: 10}, 0))
	assert.Equal(t, Meta{Page: 2, Limit: 10, Total: 21, Pages: 3}, NewMeta(Params{Page: 2, Limit: 10}, 21))
	assert.Equal(t, Meta{Page: 1, Limit: 20, Total: 20, Pages: 1}, NewMeta(Params{Page: 1, Limit: 20}, 20))
}
