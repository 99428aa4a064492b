package util

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetCounterVec(t *testing.T) {
	first, err := GetCounterVec("util_test_counter_total", "test counter", "kind")
	require.NoError(t, err)
	second, err := GetCounterVec("util_test_counter_total", "test counter", "kind")
	require.NoError(t, err)
	assert.Same(t, first, second)

	first.WithLabelValues("a").Inc()
	assert.Equal(t, 1.0, testutil.ToFloat64(second.WithLabelValues("a")))
}

func TestRemove(t *testing.T) {
	t.Parallel()
	values := []string{"a", "b", "a", "c"}
	assert.Equal(t, []string{"b", "c"}, Remove(values, "a"))
	assert.Equal(t, []string{"a", "b", "a", "c"}, values)
	assert.Empty(t, Remove([]string{}, "a"))
}

func TestPtr(t *testing.T) {
	t.Parallel()
	p := Ptr(3)
	*p = 4
	assert.Equal(t, 4, *Ptr(*p))
}
