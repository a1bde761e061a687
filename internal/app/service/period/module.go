package period

import "go.uber.org/fx"

// Module exposes the period manager via Fx.
var Module = fx.Options(
	fx.Provide(NewManager),
)
