package service

import (
	"io"
	"mime/multipart"
	"os"
	"runtime"
	"time"

	"github.com/aguszappia/proyecto-de-software/config"
	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/logger"
	"github.com/aguszappia/proyecto-de-software/util/common"

	"github.com/shirou/gopsutil/v4/cpu"
	"github.com/shirou/gopsutil/v4/disk"
	"github.com/shirou/gopsutil/v4/host"
	"github.com/shirou/gopsutil/v4/load"
	"github.com/shirou/gopsutil/v4/mem"
)

// Status groups the system and data counters the panel dashboard shows.
type Status struct {
	T        time.Time `json:"-"`
	Cpu      float64   `json:"cpu"`
	CpuCores int       `json:"cpuCores"`
	Mem      struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"mem"`
	Disk struct {
		Current uint64 `json:"current"`
		Total   uint64 `json:"total"`
	} `json:"disk"`
	Uptime   uint64    `json:"uptime"`
	Loads    []float64 `json:"loads"`
	AppStats struct {
		Threads uint32 `json:"threads"`
		Mem     uint64 `json:"mem"`
		Uptime  uint64 `json:"uptime"`
	} `json:"appStats"`
	Counts struct {
		Sites          int64 `json:"sites"`
		Users          int64 `json:"users"`
		PendingReviews int64 `json:"pendingReviews"`
	} `json:"counts"`
}

// ServerService collects host metrics and record counts for the dashboard.
type ServerService struct {
	startTime time.Time
}

func NewServerService() *ServerService {
	return &ServerService{startTime: time.Now()}
}

// GetStatus fills a Status snapshot. Metric failures are logged and leave
// the field at its zero value instead of aborting the whole snapshot.
func (s *ServerService) GetStatus() *Status {
	now := time.Now()
	status := &Status{T: now}

	percents, err := cpu.Percent(0, false)
	if err != nil {
		logger.Warning("get cpu percent failed:", err)
	} else if len(percents) > 0 {
		status.Cpu = percents[0]
	}

	cores, err := cpu.Counts(false)
	if err != nil {
		logger.Warning("get cpu core count failed:", err)
	} else {
		status.CpuCores = cores
	}

	upTime, err := host.Uptime()
	if err != nil {
		logger.Warning("get uptime failed:", err)
	} else {
		status.Uptime = upTime
	}

	memInfo, err := mem.VirtualMemory()
	if err != nil {
		logger.Warning("get virtual memory failed:", err)
	} else {
		status.Mem.Current = memInfo.Used
		status.Mem.Total = memInfo.Total
	}

	diskInfo, err := disk.Usage("/")
	if err != nil {
		logger.Warning("get disk usage failed:", err)
	} else {
		status.Disk.Current = diskInfo.Used
		status.Disk.Total = diskInfo.Total
	}

	avgState, err := load.Avg()
	if err != nil {
		logger.Warning("get load avg failed:", err)
	} else {
		status.Loads = []float64{avgState.Load1, avgState.Load5, avgState.Load15}
	}

	var rtm runtime.MemStats
	runtime.ReadMemStats(&rtm)
	status.AppStats.Mem = rtm.Sys
	status.AppStats.Threads = uint32(runtime.NumGoroutine())
	status.AppStats.Uptime = uint64(now.Sub(s.startTime).Seconds())

	s.fillCounts(status)
	return status
}

// GetDb checkpoints the WAL and returns the database file for download.
func (s *ServerService) GetDb() ([]byte, error) {
	if err := database.Checkpoint(); err != nil {
		return nil, err
	}
	return os.ReadFile(config.GetDBPath())
}

// ImportDB replaces the live database with an uploaded sqlite file and
// re-opens the connection.
func (s *ServerService) ImportDB(file multipart.File) error {
	isValidDb, err := database.IsSQLiteDB(file)
	if err != nil {
		return common.NewErrorf("no se pudo inspeccionar el archivo: %v", err)
	}
	if !isValidDb {
		return common.NewError("el archivo no es una base sqlite válida")
	}
	if _, err := file.Seek(0, 0); err != nil {
		return err
	}

	tempPath := config.GetDBPath() + ".temp"
	tempFile, err := os.Create(tempPath)
	if err != nil {
		return err
	}
	defer os.Remove(tempPath)

	if _, err := io.Copy(tempFile, file); err != nil {
		tempFile.Close()
		return err
	}
	if err := tempFile.Close(); err != nil {
		return err
	}

	if err := database.CloseDB(); err != nil {
		logger.Warning("close db before import failed:", err)
	}
	if err := os.Rename(tempPath, config.GetDBPath()); err != nil {
		return err
	}
	return database.InitDB(config.GetDBPath())
}

func (s *ServerService) fillCounts(status *Status) {
	db := database.GetDB()
	if err := db.Model(&model.HistoricSite{}).Count(&status.Counts.Sites).Error; err != nil {
		logger.Warning("count sites failed:", err)
	}
	if err := db.Model(&model.User{}).Count(&status.Counts.Users).Error; err != nil {
		logger.Warning("count users failed:", err)
	}
	err := db.Model(&model.SiteReview{}).
		Where("status = ?", model.ReviewPending).
		Count(&status.Counts.PendingReviews).Error
	if err != nil {
		logger.Warning("count pending reviews failed:", err)
	}
}
