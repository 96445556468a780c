package job

import (
	"github.com/aguszappia/proyecto-de-software/config"
	"github.com/aguszappia/proyecto-de-software/logger"
	"github.com/aguszappia/proyecto-de-software/web/service"
)

// HistoryCleanupJob prunes audit rows older than the retention window.
type HistoryCleanupJob struct {
	historyService service.HistoryService
}

func NewHistoryCleanupJob() *HistoryCleanupJob {
	return new(HistoryCleanupJob)
}

// Here Run is an interface method of the Job interface
func (j *HistoryCleanupJob) Run() {
	days := config.GetHistoryRetentionDays()
	if days <= 0 {
		return
	}
	if err := j.historyService.CleanOldEvents(days); err != nil {
		logger.Warning("history cleanup job err:", err)
	}
}
