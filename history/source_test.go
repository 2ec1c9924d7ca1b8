package history

import (
	"sync"
	"testing"

	"github.com/bcdannyboy/stocvar/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoaderMemoizes(t *testing.T) {
	l := NewLoader()

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := l.History("testdata/prices.csv")
			assert.NoError(t, err)
		}()
	}
	wg.Wait()
	assert.Equal(t, 1, l.Cached())

	_, err := l.History("testdata/missing.csv")
	assert.ErrorIs(t, err, models.ErrDataIO)
	assert.Equal(t, 1, l.Cached())
}

func TestReturnsFromSource(t *testing.T) {
	src := MemorySource{"XYZ": {102, 101, 100}}

	returns, err := Returns(src, "XYZ")
	require.NoError(t, err)
	assert.Len(t, returns, 2)

	_, err = Returns(src, "ABC")
	assert.ErrorIs(t, err, models.ErrDataIO)

	_, err = Returns(MemorySource{"ONE": {100}}, "ONE")
	assert.ErrorIs(t, err, models.ErrNumerical)
}
