// Package di provides dependency injection factories for creating application components.
package di

import (
	"time"

	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"

	medicineadapters "medicine_backend/internal/feature/medicine/adapters"
	medicinehandler "medicine_backend/internal/feature/medicine/transport/handler"
	"medicine_backend/internal/feature/medicine/usecase"
	"medicine_backend/internal/platform/cache"
)

// NewMedicineRepository creates a MedicineRepository implementation.
// If Redis is available, the GORM repository is wrapped with a list cache.
// Otherwise, the GORM repository is used directly.
func NewMedicineRepository(rdb *redis.Client, db *gorm.DB, ttl time.Duration) usecase.MedicineRepository {
	repo := medicineadapters.NewMedicineRepository(db)
	if rdb != nil {
		return cache.NewCachingMedicineRepository(rdb, ttl, repo, "meds")
	}
	return repo
}

// NewMedicineHandler wires the medicine usecase and handler on top of repo.
func NewMedicineHandler(repo usecase.MedicineRepository) *medicinehandler.MedicineHandler {
	return medicinehandler.NewMedicineHandler(usecase.NewMedicineUsecase(repo))
}
