package metrics

import (
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollector(t *testing.T) {
	reg := prometheus.NewRegistry()
	c, err := New(reg)
	require.NoError(t, err)

	c.Component("VEVENT")
	c.Component("VEVENT")
	c.Error("schema")
	c.Occurrence()

	assert.Equal(t, 2.0, testutil.ToFloat64(c.components.WithLabelValues("VEVENT")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.errors.WithLabelValues("schema")))
	assert.Equal(t, 1.0, testutil.ToFloat64(c.occurrences))

	again, err := New(reg)
	require.NoError(t, err)
	again.Component("VEVENT")
	assert.Equal(t, 3.0, testutil.ToFloat64(c.components.WithLabelValues("VEVENT")))
}

func TestNilCollector(t *testing.T) {
	c, err := New(nil)
	require.NoError(t, err)
	assert.Nil(t, c)
	assert.NotPanics(t, func() {
		c.Component("VEVENT")
		c.Error("grammar")
		c.Occurrence()
	})
}
