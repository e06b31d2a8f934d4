package ports

import (
	"context"

	"gopower/domain/power"
)

// CurveRendererPort renders a power curve to some presentation surface
// (spreadsheet chart, terminal table). The computation never depends on it.
type CurveRendererPort interface {
	Render(ctx context.Context, curve power.Curve, cfg power.ExperimentConfig, rates power.GroupRates) error
}
