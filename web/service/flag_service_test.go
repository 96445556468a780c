package service

import (
	"strings"
	"testing"

	"github.com/aguszappia/proyecto-de-software/database"

	"github.com/stretchr/testify/assert"
)

func TestFlagService(t *testing.T) {
	setup()
	defer teardown()

	flagService := FlagService{}
	flagService.RefreshSnapshot()

	// The base flags come seeded and disabled, except reviews.
	flags, err := flagService.LoadFlags()
	assert.NoError(t, err)
	assert.Contains(t, flags, database.FlagAdminMaintenance)
	assert.Contains(t, flags, database.FlagPortalMaintenance)
	assert.Contains(t, flags, database.FlagReviewsEnabled)
	assert.False(t, flags[database.FlagPortalMaintenance].Enabled)
	assert.True(t, flags[database.FlagReviewsEnabled].Enabled)

	// Enabling needs a message within bounds.
	_, err = flagService.SetFlag(database.FlagPortalMaintenance, true, "   ", nil)
	assert.Error(t, err)
	_, err = flagService.SetFlag(database.FlagPortalMaintenance, true, strings.Repeat("x", MaxFlagMessageLength+1), nil)
	assert.Error(t, err)
	_, err = flagService.SetFlag("unknown_flag", true, "mensaje", nil)
	assert.Error(t, err)

	userId := 1
	flag, err := flagService.SetFlag(database.FlagPortalMaintenance, true, "  Portal en  mantenimiento ", &userId)
	assert.NoError(t, err)
	assert.True(t, flag.Enabled)
	assert.Equal(t, "Portal en mantenimiento", flag.Message)
	assert.Equal(t, &userId, flag.UpdatedById)

	// The middleware snapshot follows the write.
	enabled, message := flagService.PortalMaintenance()
	assert.True(t, enabled)
	assert.Equal(t, "Portal en mantenimiento", message)

	// Disabling clears the stored message.
	flag, err = flagService.SetFlag(database.FlagPortalMaintenance, false, "queda colgado", nil)
	assert.NoError(t, err)
	assert.False(t, flag.Enabled)
	assert.Empty(t, flag.Message)
	enabled, message = flagService.PortalMaintenance()
	assert.False(t, enabled)
	assert.Empty(t, message)

	// Review gating feeds the public API middleware.
	assert.True(t, flagService.ReviewsEnabled())
	_, err = flagService.SetFlag(database.FlagReviewsEnabled, false, "", nil)
	assert.NoError(t, err)
	assert.False(t, flagService.ReviewsEnabled())

	// EnsureFlag returns the existing row without touching it.
	existing, err := flagService.EnsureFlag(database.FlagReviewsEnabled, "Reseñas", "", true, "")
	assert.NoError(t, err)
	assert.False(t, existing.Enabled)

	created, err := flagService.EnsureFlag("beta_banner", "Banner beta", "Aviso temporal", true, "Probando")
	assert.NoError(t, err)
	assert.Equal(t, "beta_banner", created.Key)
	assert.True(t, created.Enabled)
}
