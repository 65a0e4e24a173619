package metrics

import (
	"runtime"

	"github.com/prometheus/client_golang/prometheus"
)

func init() { register(buildInfo) }

var buildInfo = prometheus.NewGaugeVec(
	prometheus.GaugeOpts{
		Name: "invoiceqa_build_info",
		Help: "Constant 1, labeled with the binary, its version and the Go runtime.",
	},
	[]string{"binary", "version", "goversion"},
)

// SetBuildInfo is called once from main.
func SetBuildInfo(binary, version string) {
	buildInfo.WithLabelValues(binary, version, runtime.Version()).Set(1)
}
