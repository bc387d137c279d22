package metrics

import "video-renditions/internal/probe"

// probeObserver implements probe.Observer using the Prometheus
// metrics declared in this package.
type probeObserver struct{}

// NewProbeObserver creates an observer that records probe cache lookups.
func NewProbeObserver() probe.Observer {
	return &probeObserver{}
}

func (o *probeObserver) ObserveProbe(hit bool, err error) {
	switch {
	case hit:
		ProbeLookupsTotal.WithLabelValues("hit").Inc()
	case err != nil:
		ProbeLookupsTotal.WithLabelValues("error").Inc()
	default:
		ProbeLookupsTotal.WithLabelValues("miss").Inc()
	}
}
