package app

import (
	"time"

	"github.com/bloomfeed/billing/internal/app/api/server"
	"github.com/bloomfeed/billing/internal/app/service/entitlement"
	"github.com/bloomfeed/billing/internal/app/service/identity"
	"github.com/bloomfeed/billing/internal/app/service/ledger"
	"github.com/bloomfeed/billing/internal/app/service/period"
	"github.com/bloomfeed/billing/internal/app/service/reconcile"
	"github.com/bloomfeed/billing/internal/app/service/statistics"
	"github.com/bloomfeed/billing/internal/platform/db"
	"github.com/bloomfeed/billing/internal/platform/paypalclient"
	"github.com/bloomfeed/billing/pkg/config"
	"github.com/bloomfeed/billing/pkg/logger"

	"go.uber.org/fx"
)

const (
	DefaultStartTimeout = 15 * time.Second
	DefaultStopTimeout  = 10 * time.Second
)

var Module = fx.Options(
	logger.Module,
	config.Module,
	db.Module,
	server.Module,
	paypalclient.Module,
	identity.Module,
	ledger.Module,
	period.Module,
	entitlement.Module,
	reconcile.Module,
	statistics.Module,
)
