package blocklogger

import (
	"github.com/kaspanet/mergedag/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDAG")
