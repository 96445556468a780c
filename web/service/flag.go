package service

import (
	"sync"
	"time"

	"github.com/aguszappia/proyecto-de-software/database"
	"github.com/aguszappia/proyecto-de-software/database/model"
	"github.com/aguszappia/proyecto-de-software/util/common"

	"go.uber.org/atomic"
)

// MaxFlagMessageLength caps the banner message stored with an enabled flag.
const MaxFlagMessageLength = 150

// flagSnapshot is the cached state the maintenance middleware reads on every
// request, refreshed on writes and by a cron job.
type flagSnapshot struct {
	adminMaintenance  atomic.Bool
	portalMaintenance atomic.Bool
	reviewsEnabled    atomic.Bool

	mu             sync.RWMutex
	adminMessage   string
	portalMessage  string
	reviewsMessage string
}

var snapshot flagSnapshot

func init() {
	snapshot.reviewsEnabled.Store(true)
}

type FlagService struct{}

func (s *FlagService) GetFlag(key string) (*model.FeatureFlag, error) {
	db := database.GetDB()
	flag := &model.FeatureFlag{}
	err := db.Where("key = ?", key).First(flag).Error
	if err != nil {
		return nil, err
	}
	return flag, nil
}

func (s *FlagService) ListFlags() ([]model.FeatureFlag, error) {
	db := database.GetDB()
	var flags []model.FeatureFlag
	err := db.Order("key ASC").Find(&flags).Error
	return flags, err
}

// LoadFlags returns all flags keyed by flag key.
func (s *FlagService) LoadFlags() (map[string]model.FeatureFlag, error) {
	flags, err := s.ListFlags()
	if err != nil {
		return nil, err
	}
	byKey := make(map[string]model.FeatureFlag, len(flags))
	for _, flag := range flags {
		byKey[flag.Key] = flag
	}
	return byKey, nil
}

// EnsureFlag creates the flag with base data when missing.
func (s *FlagService) EnsureFlag(key, name, description string, enabled bool, message string) (*model.FeatureFlag, error) {
	db := database.GetDB()
	flag, err := s.GetFlag(key)
	if err == nil {
		return flag, nil
	}
	if !database.IsNotFound(err) {
		return nil, err
	}
	flag = &model.FeatureFlag{
		Key:         key,
		Name:        name,
		Description: description,
		Enabled:     enabled,
		Message:     message,
	}
	if err := db.Create(flag).Error; err != nil {
		return nil, err
	}
	return flag, nil
}

// SetFlag updates enabled state and message. An enabled flag requires a
// message of at most MaxFlagMessageLength characters; disabling clears the
// message so stale banners never resurface.
func (s *FlagService) SetFlag(key string, enabled bool, message string, userId *int) (*model.FeatureFlag, error) {
	db := database.GetDB()
	flag, err := s.GetFlag(key)
	if err != nil {
		if database.IsNotFound(err) {
			return nil, common.NewErrorf("no existe el flag %q", key)
		}
		return nil, err
	}

	cleanMessage := common.CleanString(message)
	if enabled {
		if cleanMessage == "" {
			return nil, common.NewError("el mensaje es obligatorio cuando el flag está activo")
		}
		if len([]rune(cleanMessage)) > MaxFlagMessageLength {
			return nil, common.NewErrorf("el mensaje no puede superar %d caracteres", MaxFlagMessageLength)
		}
	} else {
		cleanMessage = ""
	}

	flag.Enabled = enabled
	flag.Message = cleanMessage
	flag.UpdatedById = userId
	flag.UpdatedAt = time.Now()

	if err := db.Save(flag).Error; err != nil {
		return nil, err
	}
	s.RefreshSnapshot()
	return flag, nil
}

// RefreshSnapshot reloads the cached gate state from the database.
func (s *FlagService) RefreshSnapshot() {
	flags, err := s.LoadFlags()
	if err != nil {
		return
	}
	snapshot.mu.Lock()
	defer snapshot.mu.Unlock()
	if flag, ok := flags[database.FlagAdminMaintenance]; ok {
		snapshot.adminMaintenance.Store(flag.Enabled)
		snapshot.adminMessage = flag.Message
	}
	if flag, ok := flags[database.FlagPortalMaintenance]; ok {
		snapshot.portalMaintenance.Store(flag.Enabled)
		snapshot.portalMessage = flag.Message
	}
	if flag, ok := flags[database.FlagReviewsEnabled]; ok {
		snapshot.reviewsEnabled.Store(flag.Enabled)
		snapshot.reviewsMessage = flag.Message
	}
}

// AdminMaintenance reports the cached admin gate state.
func (s *FlagService) AdminMaintenance() (bool, string) {
	snapshot.mu.RLock()
	defer snapshot.mu.RUnlock()
	return snapshot.adminMaintenance.Load(), snapshot.adminMessage
}

// PortalMaintenance reports the cached portal gate state.
func (s *FlagService) PortalMaintenance() (bool, string) {
	snapshot.mu.RLock()
	defer snapshot.mu.RUnlock()
	return snapshot.portalMaintenance.Load(), snapshot.portalMessage
}

// ReviewsEnabled reports whether the portal accepts new reviews.
func (s *FlagService) ReviewsEnabled() bool {
	return snapshot.reviewsEnabled.Load()
}
