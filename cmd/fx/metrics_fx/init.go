package metrics_fx

import (
	"go.uber.org/fx"

	"stayflo/pkg/metrics"
)

var Module = fx.Provide(metrics.New)
