package services

import (
	"log"

	"investlearn-gamification/models"

	"github.com/gosimple/slug"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// SeedCatalog upserts the static badge and achievement catalogs. Codes are
// slugs of the names, so renames that keep the slug stable update in place.
// Safe to run on every startup; IsActive is left alone on existing badges.
func SeedCatalog(db *gorm.DB) error {
	for _, badge := range models.BadgeCatalog {
		badge.Code = slug.Make(badge.Name)
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "category", "rarity", "points",
			}),
		}).Create(&badge).Error; err != nil {
			return err
		}
	}

	for _, ach := range models.AchievementCatalog {
		ach.Code = slug.Make(ach.Name)
		if err := db.Clauses(clause.OnConflict{
			Columns: []clause.Column{{Name: "code"}},
			DoUpdates: clause.AssignmentColumns([]string{
				"name", "description", "type", "target", "reward_points", "reward_badge_code",
			}),
		}).Create(&ach).Error; err != nil {
			return err
		}
	}

	log.Printf("✅ Catalog seeded: %d badges, %d achievements", len(models.BadgeCatalog), len(models.AchievementCatalog))
	return nil
}
