package inventory

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewIsFullyStocked(t *testing.T) {
	inv := New(DefaultCount)
	for i := range Size {
		assert.Equal(t, int32(DefaultCount), inv.Count(i))
	}
	assert.Equal(t, int32(0), inv.Count(Size))
	assert.Equal(t, int32(0), inv.Count(-1))
}

func TestConsumeNeverGoesNegative(t *testing.T) {
	inv := New(3)

	ok := 0
	for range 4 {
		if inv.Consume(5) {
			ok++
		}
	}
	assert.Equal(t, 3, ok)
	assert.Equal(t, int32(0), inv.Count(5))
	assert.False(t, inv.Consume(Size))
}

func TestRestore(t *testing.T) {
	inv := New(0)
	counts := make([]int32, Size)
	for i := range counts {
		counts[i] = int32(i * 7)
	}
	require.NoError(t, inv.Restore(counts))
	assert.Equal(t, counts, inv.Counts())

	assert.Error(t, inv.Restore(counts[:5]))
	assert.Equal(t, counts, inv.Counts(), "failed restore leaves counts untouched")
}

func TestCountsIsACopy(t *testing.T) {
	inv := New(1)
	c := inv.Counts()
	c[0] = 99
	assert.Equal(t, int32(1), inv.Count(0))
}

func TestSelection(t *testing.T) {
	inv := New(1)
	inv.SetCurrentItem(4)
	assert.Equal(t, 4, inv.CurrentItem)
	inv.SetCurrentItem(Size)
	assert.Equal(t, 4, inv.CurrentItem)

	inv.SetCurrentItem(0)
	inv.ChangeCurrentItem(1)
	assert.Equal(t, Size-1, inv.CurrentItem, "scrolling up from the first slot wraps")
	inv.ChangeCurrentItem(-5)
	assert.Equal(t, 0, inv.CurrentItem)
}
