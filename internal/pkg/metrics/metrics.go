// Package metrics defines the Prometheus collectors of the service. Every recorder
// is nil-safe so components can run without metrics in tests.
package metrics

const namespace = "deliveryhub"

func normalizeLabel(v string) string {
	if v == "" {
		return "unknown"
	}
	return v
}
