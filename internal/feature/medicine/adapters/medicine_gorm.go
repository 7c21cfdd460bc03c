// Package adapters はmedicineフィーチャーのリポジトリ実装を提供します。
package adapters

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"medicine_backend/internal/feature/medicine/domain"
	"medicine_backend/internal/feature/medicine/domain/entity"
	"medicine_backend/internal/feature/medicine/usecase"
)

// medicineGorm はMedicineRepositoryインターフェースのGORM実装です。
// 所有者の確認は常にWHERE句で行います。
type medicineGorm struct {
	db *gorm.DB
}

// medicineGormがMedicineRepositoryを実装していることをコンパイル時に検証します。
var _ usecase.MedicineRepository = (*medicineGorm)(nil)

// NewMedicineRepository は指定されたgorm.DB接続でmedicineGormの新しいインスタンスを生成します。
func NewMedicineRepository(db *gorm.DB) *medicineGorm {
	return &medicineGorm{db: db}
}

// withLog は服用履歴を挿入順でプリロードします。
func withLog(db *gorm.DB) *gorm.DB {
	return db.Preload("IntakeLog", func(tx *gorm.DB) *gorm.DB {
		return tx.Order("intake_events.id ASC")
	})
}

// ownedBy は所有者スコープの条件です。
func ownedBy(ownerID, id string) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("id = ? AND owner_id = ?", id, ownerID)
	}
}

// Create は薬を保存し、生成されたIDとタイムスタンプを m に反映します。
func (r *medicineGorm) Create(ctx context.Context, m *entity.Medicine) error {
	row := toModel(m)
	if err := r.db.WithContext(ctx).Omit("IntakeLog").Create(row).Error; err != nil {
		return err
	}
	m.ID = row.ID
	m.CreatedAt = row.CreatedAt.UTC()
	m.UpdatedAt = row.UpdatedAt.UTC()
	if m.IntakeLog == nil {
		m.IntakeLog = []entity.IntakeEvent{}
	}
	return nil
}

// List は所有者の薬を有効期限の昇順で返します。期限が同じ場合は作成順です。
func (r *medicineGorm) List(ctx context.Context, ownerID string, window *domain.DateRange) ([]entity.Medicine, error) {
	q := withLog(r.db.WithContext(ctx)).Where("owner_id = ?", ownerID)
	if window != nil {
		q = q.Where("expiry_date >= ? AND expiry_date <= ?", window.From, window.To)
	}

	var rows []MedicineModel
	if err := q.Order("expiry_date ASC").Order("created_at ASC").Find(&rows).Error; err != nil {
		return nil, err
	}

	out := make([]entity.Medicine, 0, len(rows))
	for i := range rows {
		out = append(out, toEntity(&rows[i]))
	}
	return out, nil
}

// FindByID は所有者スコープで1件取得します。見つからない場合はusecase.ErrRecordNotFoundを返します。
func (r *medicineGorm) FindByID(ctx context.Context, ownerID, id string) (*entity.Medicine, error) {
	row, err := r.find(r.db.WithContext(ctx), ownerID, id)
	if err != nil {
		return nil, err
	}
	m := toEntity(row)
	return &m, nil
}

func (r *medicineGorm) find(db *gorm.DB, ownerID, id string) (*MedicineModel, error) {
	var row MedicineModel
	if err := withLog(db).Scopes(ownedBy(ownerID, id)).First(&row).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, usecase.ErrRecordNotFound
		}
		return nil, err
	}
	return &row, nil
}

// Update は許可されたカラムのみを書き換えます。owner_id と id は条件にのみ使用します。
func (r *medicineGorm) Update(ctx context.Context, m *entity.Medicine) error {
	res := r.db.WithContext(ctx).Model(&MedicineModel{}).
		Scopes(ownedBy(m.OwnerID, m.ID)).
		Updates(map[string]any{
			"name":        m.Name,
			"dosage":      m.Dosage,
			"frequency":   m.Frequency,
			"start_date":  m.StartDate,
			"end_date":    m.EndDate,
			"expiry_date": m.ExpiryDate,
			"quantity":    m.Quantity,
			"notes":       m.Notes,
		})
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return usecase.ErrRecordNotFound
	}

	var row MedicineModel
	if err := r.db.WithContext(ctx).Select("updated_at").Scopes(ownedBy(m.OwnerID, m.ID)).First(&row).Error; err == nil {
		m.UpdatedAt = row.UpdatedAt.UTC()
	}
	return nil
}

// Delete は薬と服用履歴を同一トランザクションで削除します。
func (r *medicineGorm) Delete(ctx context.Context, ownerID, id string) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		res := tx.Scopes(ownedBy(ownerID, id)).Delete(&MedicineModel{})
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return usecase.ErrRecordNotFound
		}
		return tx.Where("medicine_id = ?", id).Delete(&IntakeEventModel{}).Error
	})
}

// AppendIntake は所有者を確認したうえで服用イベントを追加し、更新後の薬を返します。
func (r *medicineGorm) AppendIntake(ctx context.Context, ownerID, id string, ev entity.IntakeEvent) (*entity.Medicine, error) {
	var out entity.Medicine
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var owned int64
		if err := tx.Model(&MedicineModel{}).Scopes(ownedBy(ownerID, id)).Count(&owned).Error; err != nil {
			return err
		}
		if owned == 0 {
			return usecase.ErrRecordNotFound
		}

		row := IntakeEventModel{MedicineID: id, TakenAt: ev.Date.UTC(), Taken: ev.Taken}
		if err := tx.Create(&row).Error; err != nil {
			return err
		}
		if err := tx.Model(&MedicineModel{}).Scopes(ownedBy(ownerID, id)).Update("updated_at", row.TakenAt).Error; err != nil {
			return err
		}

		m, err := r.find(tx, ownerID, id)
		if err != nil {
			return err
		}
		out = toEntity(m)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &out, nil
}
