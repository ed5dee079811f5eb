package main

import (
	"context"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/taurusgroup/allosaur/pkg/pool"
)

const testConfig = `
log:
  level: debug
  format: json
authorities: 3
threshold: 2
holders: 3
rounds: 2
history-limit: 4
timeout: 30s
`

func TestReadConfig(t *testing.T) {
	config, err := parseConfig([]byte(testConfig))
	require.NoError(t, err)
	assert.Equal(t, 3, config.Authorities)
	assert.Equal(t, "30s", config.Timeout)
	assert.Equal(t, "debug", config.Log.level.String())

	for name, raw := range map[string]string{
		"missing authorities": "threshold: 1\nholders: 2\nrounds: 1\ntimeout: 1s\n",
		"threshold too large": "authorities: 2\nthreshold: 3\nholders: 2\nrounds: 1\ntimeout: 1s\n",
		"single holder":       "authorities: 2\nthreshold: 1\nholders: 1\nrounds: 1\ntimeout: 1s\n",
		"short history":       "authorities: 2\nthreshold: 1\nholders: 2\nrounds: 1\nhistory-limit: 1\ntimeout: 1s\n",
		"bad timeout":         "authorities: 2\nthreshold: 1\nholders: 2\nrounds: 1\ntimeout: soon\n",
		"bad level":           "log:\n  level: loud\nauthorities: 2\nthreshold: 1\nholders: 2\nrounds: 1\ntimeout: 1s\n",
		"unknown field":       "authorities: 2\nthreshold: 1\nholders: 2\nrounds: 1\ntimeout: 1s\nshards: 3\n",
	} {
		_, err := parseConfig([]byte(raw))
		assert.Error(t, err, name)
	}
}

func TestSimulate(t *testing.T) {
	config, err := parseConfig([]byte(testConfig))
	require.NoError(t, err)
	log, hook := logtest.NewNullLogger()

	pl := pool.NewPool(2)
	defer pl.TearDown()
	reg := prometheus.NewRegistry()
	g, err := NewGroup(config, reg, log, pl)
	require.NoError(t, err)
	require.Len(t, g.Replicas(), 3)

	require.NoError(t, Simulate(context.Background(), config, g, log))

	// 3 holders joined, then each round deletes one and admits one
	assert.Equal(t, uint64(3+2*2), g.Epoch())
	assert.Equal(t, 3, g.Replicas()[0].Members())
	families, err := reg.Gather()
	require.NoError(t, err)
	var epoch *float64
	for _, f := range families {
		if f.GetName() == "allosaur_authority_epoch" {
			v := f.GetMetric()[0].GetGauge().GetValue()
			epoch = &v
		}
	}
	require.NotNil(t, epoch, "epoch gauge not registered")
	assert.Equal(t, float64(g.Epoch()), *epoch)
	assert.NotEmpty(t, hook.AllEntries())
}
