package blocklogger

import (
	"sync"
	"time"

	"github.com/kaspanet/mergedag/domain/consensus/model/externalapi"
)

var (
	receivedLogBlocks  int64
	receivedLogDeploys int64
	lastBlockLogTime   = time.Now()
	mtx                sync.Mutex
)

// LogBlock logs a new block as an information message to show progress to
// the user. In order to prevent spam, it limits logging to one message every
// 10 seconds with duration and totals included.
func LogBlock(block *externalapi.DomainBlock) {
	mtx.Lock()
	defer mtx.Unlock()

	receivedLogBlocks++
	receivedLogDeploys += int64(len(block.Deploys))

	now := time.Now()
	duration := now.Sub(lastBlockLogTime)
	if duration < time.Second*10 {
		return
	}

	// Truncate the duration to 10s of milliseconds.
	tDuration := duration.Round(10 * time.Millisecond)

	blockStr := "blocks"
	if receivedLogBlocks == 1 {
		blockStr = "block"
	}
	deployStr := "deploys"
	if receivedLogDeploys == 1 {
		deployStr = "deploy"
	}

	log.Infof("Processed %d %s in the last %s (%d %s, sequence number %d of %s)",
		receivedLogBlocks, blockStr, tDuration, receivedLogDeploys, deployStr,
		block.Header.SequenceNumber, block.Header.Sender)

	receivedLogBlocks = 0
	receivedLogDeploys = 0
	lastBlockLogTime = now
}
