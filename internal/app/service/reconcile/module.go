package reconcile

import "go.uber.org/fx"

// Module exposes the reconciler via Fx.
var Module = fx.Options(
	fx.Provide(NewService),
	fx.Provide(func(s *Service) Reconciler { return s }),
)
