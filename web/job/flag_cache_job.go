package job

import (
	"github.com/aguszappia/proyecto-de-software/web/service"
)

// FlagCacheJob reloads the feature flag snapshot so out-of-band database
// edits are picked up without a restart.
type FlagCacheJob struct {
	flagService service.FlagService
}

func NewFlagCacheJob() *FlagCacheJob {
	return new(FlagCacheJob)
}

// Here Run is an interface method of the Job interface
func (j *FlagCacheJob) Run() {
	j.flagService.RefreshSnapshot()
}
