package migration

import (
	"context"
	"time"

	"github.com/garmonpay/reward-ledger/internal/infrastructure/adapter/model"
	"gorm.io/gorm"
)

// Default watch-to-earn placements seeded into an empty database
var defaultAds = []model.Ad{
	{Title: "Intro offer", RewardCents: 5, RequiredSeconds: 15, CooldownSeconds: 300, Active: true},
	{Title: "Daily sponsor spot", RewardCents: 10, RequiredSeconds: 30, CooldownSeconds: 900, Active: true},
	{Title: "Premium placement", RewardCents: 25, RequiredSeconds: 60, CooldownSeconds: 3600, Active: true},
}

// SeedDefaultAds inserts the default ads if the table is empty
func SeedDefaultAds(ctx context.Context, db *gorm.DB, now time.Time) error {
	var count int64
	if err := db.WithContext(ctx).Model(&model.Ad{}).Count(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	ads := make([]model.Ad, len(defaultAds))
	copy(ads, defaultAds)
	for i := range ads {
		ads[i].CreatedAt = now
	}

	return db.WithContext(ctx).Create(&ads).Error
}
