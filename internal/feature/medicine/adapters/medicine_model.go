package adapters

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"medicine_backend/internal/feature/medicine/domain/entity"
)

// MedicineModel は medicines テーブルの行を表します。
type MedicineModel struct {
	ID         string     `gorm:"primaryKey;size:36"`
	OwnerID    string     `gorm:"size:36;not null;index:idx_medicines_owner_expiry,priority:1"`
	Name       string     `gorm:"not null"`
	Dosage     string     `gorm:"not null"`
	Frequency  string     `gorm:"not null"`
	StartDate  *time.Time
	EndDate    *time.Time
	ExpiryDate time.Time `gorm:"not null;index:idx_medicines_owner_expiry,priority:2"`
	Quantity   int       `gorm:"not null"`
	Notes      string    `gorm:"not null"`
	IntakeLog  []IntakeEventModel `gorm:"foreignKey:MedicineID"`
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// TableName はテーブル名を明示します。
func (MedicineModel) TableName() string { return "medicines" }

// BeforeCreate はIDが未設定の場合にUUIDを割り当てます。
func (m *MedicineModel) BeforeCreate(*gorm.DB) error {
	if m.ID == "" {
		m.ID = uuid.NewString()
	}
	return nil
}

// IntakeEventModel は intake_events テーブルの行です。自動採番IDが挿入順を表します。
type IntakeEventModel struct {
	ID         uint      `gorm:"primaryKey;autoIncrement"`
	MedicineID string    `gorm:"size:36;not null;index"`
	TakenAt    time.Time `gorm:"not null"`
	Taken      bool      `gorm:"not null"`
}

// TableName はテーブル名を明示します。
func (IntakeEventModel) TableName() string { return "intake_events" }

// Models はマイグレーション対象のモデル一覧です。
func Models() []any {
	return []any{&MedicineModel{}, &IntakeEventModel{}}
}

func toModel(m *entity.Medicine) *MedicineModel {
	return &MedicineModel{
		ID:         m.ID,
		OwnerID:    m.OwnerID,
		Name:       m.Name,
		Dosage:     m.Dosage,
		Frequency:  m.Frequency,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		ExpiryDate: m.ExpiryDate,
		Quantity:   m.Quantity,
		Notes:      m.Notes,
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

func toEntity(row *MedicineModel) entity.Medicine {
	log := make([]entity.IntakeEvent, 0, len(row.IntakeLog))
	for _, ev := range row.IntakeLog {
		log = append(log, entity.IntakeEvent{Date: ev.TakenAt.UTC(), Taken: ev.Taken})
	}
	return entity.Medicine{
		ID:         row.ID,
		OwnerID:    row.OwnerID,
		Name:       row.Name,
		Dosage:     row.Dosage,
		Frequency:  row.Frequency,
		StartDate:  utcPtr(row.StartDate),
		EndDate:    utcPtr(row.EndDate),
		ExpiryDate: row.ExpiryDate.UTC(),
		Quantity:   row.Quantity,
		Notes:      row.Notes,
		IntakeLog:  log,
		CreatedAt:  row.CreatedAt.UTC(),
		UpdatedAt:  row.UpdatedAt.UTC(),
	}
}

func utcPtr(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	u := t.UTC()
	return &u
}
