package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewSelectionSet_DeduplicatesAndSorts(t *testing.T) {
	set := NewSelectionSet(5, 3, 5, 1, 3)

	assert.Equal(t, SelectionSet{1, 3, 5}, set)
	assert.Equal(t, 3, set.Len())
}

func TestSelectionSet_RoundTrip(t *testing.T) {
	tests := []struct {
		name string
		ids  []int64
	}{
		{"empty", nil},
		{"single", []int64{42}},
		{"ordered", []int64{1, 2, 3}},
		{"reversed with duplicates", []int64{9, 7, 9, 1, 7}},
		{"large ids", []int64{9007199254740993, 2}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			original := NewSelectionSet(tt.ids...)

			parsed, err := ParseSelectionSet(original.String())
			require.NoError(t, err)

			assert.True(t, original.Equal(parsed), "got %v, want %v", parsed, original)
		})
	}
}

func TestParseSelectionSet(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    SelectionSet
		wantErr bool
	}{
		{"empty string", "", SelectionSet{}, false},
		{"whitespace", "  ", SelectionSet{}, false},
		{"unordered with duplicates", "3,1,3,2", SelectionSet{1, 2, 3}, false},
		{"spaces around ids", " 4 , 2", SelectionSet{2, 4}, false},
		{"non numeric", "1,a", nil, true},
		{"trailing separator", "1,", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ParseSelectionSet(tt.input)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestSelectionSet_Union(t *testing.T) {
	a := NewSelectionSet(1, 2)
	b := NewSelectionSet(2, 3)

	t.Run("commutative", func(t *testing.T) {
		assert.Equal(t, a.Union(b), b.Union(a))
	})

	t.Run("idempotent", func(t *testing.T) {
		once := a.Union(b)
		assert.Equal(t, once, once.Union(b))
	})

	t.Run("does not modify operands", func(t *testing.T) {
		_ = a.Union(b)
		assert.Equal(t, SelectionSet{1, 2}, a)
	})

	t.Run("contains all members", func(t *testing.T) {
		u := a.Union(b)
		for _, id := range []int64{1, 2, 3} {
			assert.True(t, u.Contains(id))
		}
		assert.False(t, u.Contains(4))
	})
}

func TestSelectionSet_String(t *testing.T) {
	assert.Equal(t, "", NewSelectionSet().String())
	assert.Equal(t, "1,10,2000", NewSelectionSet(2000, 1, 10).String())
}
