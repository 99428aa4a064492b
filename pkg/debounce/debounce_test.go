package debounce

import (
	"sync/atomic"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/stretchr/testify/assert"
)

func TestDebouncer(t *testing.T) {
	t.Parallel()

	t.Run("fires once after quiet period", func(t *testing.T) {
		mock := clock.NewMock()
		var fired atomic.Int32
		d := New(mock, time.Second, func() { fired.Add(1) })

		assert.True(t, d.Call())
		mock.Add(500 * time.Millisecond)
		assert.False(t, d.Call())
		mock.Add(500 * time.Millisecond)
		assert.Equal(t, int32(0), fired.Load())

		mock.Add(600 * time.Millisecond)
		assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
		assert.False(t, d.Active())
	})

	t.Run("cancel drops pending signal", func(t *testing.T) {
		mock := clock.NewMock()
		var fired atomic.Int32
		d := New(mock, time.Second, func() { fired.Add(1) })

		d.Call()
		assert.True(t, d.Cancel())
		assert.False(t, d.Cancel())
		mock.Add(2 * time.Second)
		assert.Equal(t, int32(0), fired.Load())
	})

	t.Run("new burst after fire", func(t *testing.T) {
		mock := clock.NewMock()
		var fired atomic.Int32
		d := New(mock, time.Second, func() { fired.Add(1) })

		d.Call()
		mock.Add(time.Second)
		assert.Eventually(t, func() bool { return fired.Load() == 1 }, time.Second, 5*time.Millisecond)
		assert.True(t, d.Call())
		assert.Equal(t, mock.Now(), d.LastCall())
	})
}
