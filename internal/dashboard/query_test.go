package dashboard

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWindow_Default(t *testing.T) {
	latest := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	rng, err := Query{}.Window(latest, 30)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 2, 4, 0, 0, 0, 0, time.UTC), rng.From)
	assert.Equal(t, time.Date(2024, 3, 5, 23, 59, 59, 999999999, time.UTC), rng.To)
	assert.True(t, rng.Contains(latest))
}

func TestWindow_ExplicitDates(t *testing.T) {
	latest := time.Date(2024, 3, 5, 14, 0, 0, 0, time.UTC)
	rng, err := Query{Start: "2024-03-01", End: "2024-03-02"}.Window(latest, 30)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), rng.From)
	assert.True(t, rng.Contains(time.Date(2024, 3, 2, 23, 59, 59, 0, time.UTC)), "end covers the whole day")
	assert.False(t, rng.Contains(time.Date(2024, 3, 3, 0, 0, 0, 0, time.UTC)))
}

func TestWindow_StartAfterEnd(t *testing.T) {
	_, err := Query{Start: "2024-03-05", End: "2024-03-01"}.Window(time.Now(), 30)
	require.Error(t, err)
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}

func TestExportRange(t *testing.T) {
	rng, err := Query{}.ExportRange()
	require.NoError(t, err)
	assert.True(t, rng.IsZero())

	rng, err = Query{End: "2024-03-02"}.ExportRange()
	require.NoError(t, err)
	assert.True(t, rng.From.IsZero())
	assert.Equal(t, time.Date(2024, 3, 2, 23, 59, 59, 999999999, time.UTC), rng.To)

	_, err = Query{Start: "2024-03-05", End: "2024-03-01"}.ExportRange()
	assert.True(t, errors.Is(err, ErrInvalidQuery))
}
