package main

import (
	"github.com/kaspanet/mergedag/infrastructure/logger"
	"github.com/kaspanet/mergedag/util/panics"
)

var (
	log   = logger.RegisterSubSystem("DGCR")
	spawn = panics.GoroutineWrapperFunc(log)
)
