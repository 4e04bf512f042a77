package app

import (
	"github.com/analytica/atomflow/internal/atom"
	"github.com/analytica/atomflow/modules/alert"
	"github.com/analytica/atomflow/modules/budget"
	"github.com/analytica/atomflow/modules/data"
	"github.com/analytica/atomflow/modules/export"
	"github.com/analytica/atomflow/modules/forecast"
	"github.com/analytica/atomflow/modules/investment"
	"github.com/analytica/atomflow/modules/metrics"
	"github.com/analytica/atomflow/modules/report"
	"github.com/analytica/atomflow/modules/transform"
	"github.com/analytica/atomflow/modules/view"
)

// coreModules is the definitive list of all atom modules that are compiled
// into the atomflow binary.
var coreModules = []atom.Module{
	&data.Module{},
	&transform.Module{},
	&metrics.Module{},
	&view.Module{},
	&export.Module{},
	&alert.Module{},
	&report.Module{},
	&budget.Module{},
	&investment.Module{},
	&forecast.Module{},
}
