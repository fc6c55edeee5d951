package bootstrap

import (
	"net/http"

	"commerce-core/internal/pkg/metrics"

	"go.uber.org/fx"
)

var MetricsModule = fx.Module("metrics",
	fx.Provide(
		metrics.NewPrometheus,
		func(p *metrics.Prometheus) metrics.Recorder { return p },
		fx.Annotate(
			func(p *metrics.Prometheus) http.Handler { return p.Handler() },
			fx.ResultTags(`name:"metrics"`),
		),
	),
)
