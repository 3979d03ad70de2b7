package metrics

import (
	"encoding/json"
	"maps"
	"slices"

	"github.com/prometheus/client_golang/prometheus"
	gocl "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/require"
)

// Checker is a test helper over a gathered snapshot of a registry.
// Lookups fail the test instead of returning errors.
type Checker struct {
	t        require.TestingT
	families map[string]*gocl.MetricFamily
}

// NewChecker gathers reg once. Take a new Checker to observe later updates.
func NewChecker(t require.TestingT, reg *prometheus.Registry) *Checker {
	gathered, err := reg.Gather()
	require.NoError(t, err, "must gather metrics")
	families := make(map[string]*gocl.MetricFamily, len(gathered))
	for _, f := range gathered {
		families[f.GetName()] = f
	}
	return &Checker{t: t, families: families}
}

// Family returns the metric family with the full metric name.
func (c *Checker) Family(name string) *Family {
	f, ok := c.families[name]
	require.True(c.t, ok, "cannot find metric family %q, have %v", name, slices.Sorted(maps.Keys(c.families)))
	return &Family{t: c.t, fam: f}
}

// Dump renders the snapshot as indented JSON.
func (c *Checker) Dump() string {
	out, _ := json.MarshalIndent(c.families, "", "  ")
	return string(out)
}

type Family struct {
	t   require.TestingT
	fam *gocl.MetricFamily
}

// With returns the single series carrying all of the given labels.
func (f *Family) With(labels map[string]string) *gocl.Metric {
	var found *gocl.Metric
	for _, m := range f.fam.GetMetric() {
		if !matches(m, labels) {
			continue
		}
		require.Nil(f.t, found, "more than one %s series matches %v", f.fam.GetName(), labels)
		found = m
	}
	require.NotNil(f.t, found, "no %s series matches %v", f.fam.GetName(), labels)
	return found
}

// Counter is shorthand for the counter value of With(labels).
func (f *Family) Counter(labels map[string]string) float64 {
	return f.With(labels).GetCounter().GetValue()
}

func matches(m *gocl.Metric, labels map[string]string) bool {
	have := make(map[string]string, len(m.GetLabel()))
	for _, l := range m.GetLabel() {
		have[l.GetName()] = l.GetValue()
	}
	for k, v := range labels {
		if got, ok := have[k]; !ok || got != v {
			return false
		}
	}
	return true
}
