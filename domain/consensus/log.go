package consensus

import (
	"github.com/kaspanet/mergedag/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BDAG")
