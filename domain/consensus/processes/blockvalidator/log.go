package blockvalidator

import (
	"github.com/kaspanet/mergedag/infrastructure/logger"
)

var log = logger.RegisterSubSystem("BLVL")
