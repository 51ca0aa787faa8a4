package maintenance

import (
	"context"
	"testing"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/models"
	"github.com/ZephyrexTechnologies/ServerFramework-sub002/internal/services"
)

func setupCleanupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open("file::memory:?cache=shared"), &gorm.Config{})
	require.NoError(t, err)

	require.NoError(t, db.AutoMigrate(
		&models.User{},
		&models.PermissionGrant{},
		&models.AccessAuditEntry{},
	))

	sqlDB, err := db.DB()
	require.NoError(t, err)
	t.Cleanup(func() {
		_ = sqlDB.Close()
	})

	return db
}

func TestCleanupDeadGrants(t *testing.T) {
	db := setupCleanupTestDB(t)
	now := time.Date(2025, 2, 10, 15, 0, 0, 0, time.UTC)
	cutoff := now.AddDate(0, 0, -30)

	userID := "user-1"
	oldDeletion := cutoff.Add(-time.Hour)
	oldExpiry := cutoff.Add(-2 * time.Hour)
	recentDeletion := cutoff.Add(time.Hour)
	futureExpiry := now.Add(time.Hour)

	staleDeleted := models.PermissionGrant{
		ResourceType:  "invitations",
		ResourceID:    "res-1",
		UserID:        &userID,
		CapabilitySet: models.CapabilitySet{CanView: true},
	}
	staleDeleted.DeletedAt = &oldDeletion
	staleExpired := models.PermissionGrant{
		ResourceType:  "invitations",
		ResourceID:    "res-2",
		UserID:        &userID,
		CapabilitySet: models.CapabilitySet{CanView: true},
		ExpiresAt:     &oldExpiry,
	}
	recentDeleted := models.PermissionGrant{
		ResourceType:  "invitations",
		ResourceID:    "res-3",
		UserID:        &userID,
		CapabilitySet: models.CapabilitySet{CanView: true},
	}
	recentDeleted.DeletedAt = &recentDeletion
	live := models.PermissionGrant{
		ResourceType:  "invitations",
		ResourceID:    "res-4",
		UserID:        &userID,
		CapabilitySet: models.CapabilitySet{CanView: true},
		ExpiresAt:     &futureExpiry,
	}

	for _, g := range []*models.PermissionGrant{&staleDeleted, &staleExpired, &recentDeleted, &live} {
		require.NoError(t, db.Create(g).Error)
	}

	removed, err := CleanupDeadGrants(context.Background(), db, cutoff)
	require.NoError(t, err)
	require.EqualValues(t, 1, removed)

	var remaining int64
	require.NoError(t, db.Model(&models.PermissionGrant{}).Count(&remaining).Error)
	require.EqualValues(t, 3, remaining)

	// Expired grants are ignored during resolution but never removed.
	var expired int64
	require.NoError(t, db.Model(&models.PermissionGrant{}).
		Where("resource_id = ?", "res-2").Count(&expired).Error)
	require.EqualValues(t, 1, expired)
}

func TestCleanerRunOnce(t *testing.T) {
	db := setupCleanupTestDB(t)
	now := time.Date(2025, 2, 10, 15, 0, 0, 0, time.UTC)

	audit, err := services.NewAccessAuditService(db)
	require.NoError(t, err)

	old := models.AccessAuditEntry{
		RequesterID:  "user-1",
		ResourceType: "invitations",
		ResourceID:   "res-1",
		Capability:   "view",
		Result:       "denied",
	}
	require.NoError(t, db.Create(&old).Error)
	require.NoError(t, db.Model(&old).Update("created_at", now.AddDate(0, 0, -120)).Error)

	fresh := models.AccessAuditEntry{
		RequesterID:  "user-1",
		ResourceType: "invitations",
		ResourceID:   "res-2",
		Capability:   "view",
		Result:       "granted",
	}
	require.NoError(t, db.Create(&fresh).Error)

	cleaner := NewCleaner(db, audit,
		WithNow(func() time.Time { return now }),
		WithRetentionDays(90),
	)
	require.NoError(t, cleaner.RunOnce(context.Background()))

	var count int64
	require.NoError(t, db.Model(&models.AccessAuditEntry{}).Count(&count).Error)
	require.EqualValues(t, 1, count)
}

func TestCleanerStartRegistersJobs(t *testing.T) {
	db := setupCleanupTestDB(t)
	audit, err := services.NewAccessAuditService(db)
	require.NoError(t, err)

	scheduler := cron.New(cron.WithLogger(cron.DiscardLogger))
	cleaner := NewCleaner(db, audit, WithCron(scheduler), WithAuditSchedule("@every 1h"), WithGrantSchedule("@every 1h"))

	require.NoError(t, cleaner.Start())
	require.Len(t, scheduler.Entries(), 2)
	<-cleaner.Stop().Done()
}
