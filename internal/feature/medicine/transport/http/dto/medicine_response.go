package dto

import (
	"time"

	"medicine_backend/internal/feature/medicine/domain/entity"
)

// IntakeEventView は服用履歴の1件です。
type IntakeEventView struct {
	Date  time.Time `json:"date"`
	Taken bool      `json:"taken"`
}

// MedicineView はクライアントに返す薬のレコードです。IDのキーはフロントエンドに合わせ "_id" です。
type MedicineView struct {
	ID         string            `json:"_id"`
	UserID     string            `json:"userId"`
	Name       string            `json:"name"`
	Dosage     string            `json:"dosage"`
	Frequency  string            `json:"frequency"`
	StartDate  *time.Time        `json:"startDate,omitempty"`
	EndDate    *time.Time        `json:"endDate,omitempty"`
	ExpiryDate time.Time         `json:"expiryDate"`
	Quantity   int               `json:"quantity"`
	Notes      string            `json:"notes"`
	IntakeLog  []IntakeEventView `json:"intakeLog"`
	CreatedAt  time.Time         `json:"createdAt"`
	UpdatedAt  time.Time         `json:"updatedAt"`
	Warning    string            `json:"warning,omitempty"`
}

// MedicineRes は作成・更新時のレスポンスです。
type MedicineRes struct {
	Message  string       `json:"message"`
	Medicine MedicineView `json:"medicine"`
}

// ListMedicinesRes は一覧取得のレスポンスです。
type ListMedicinesRes struct {
	Message                   string         `json:"message"`
	Count                     int            `json:"count"`
	ExpiringSoonFilterApplied bool           `json:"expiringSoonFilterApplied"`
	Medicines                 []MedicineView `json:"medicines"`
}

// DeleteMedicineRes は削除成功時のレスポンスです。
type DeleteMedicineRes struct {
	Message   string `json:"message"`
	DeletedID string `json:"deletedId"`
}

// DoseLogView は服用記録後に返す薬の要約です。
type DoseLogView struct {
	ID        string            `json:"_id"`
	Name      string            `json:"name"`
	IntakeLog []IntakeEventView `json:"intakeLog"`
}

// LogDoseRes は服用記録のレスポンスです。
type LogDoseRes struct {
	Message  string      `json:"message"`
	Medicine DoseLogView `json:"medicine"`
}

// LogsRes は服用履歴と遵守率のレスポンスです。
type LogsRes struct {
	Name              string            `json:"name"`
	TotalLogs         int               `json:"totalLogs"`
	TakenCount        int               `json:"takenCount"`
	MissedCount       int               `json:"missedCount"`
	CompliancePercent int               `json:"compliancePercent"`
	Logs              []IntakeEventView `json:"logs"`
}

// MessageResponse はメッセージのみのレスポンス（主にエラー）です。
type MessageResponse struct {
	Message string `json:"message"`
}

// FromEntity はエンティティを公開用の表現に変換します。
func FromEntity(m *entity.Medicine) MedicineView {
	return MedicineView{
		ID:         m.ID,
		UserID:     m.OwnerID,
		Name:       m.Name,
		Dosage:     m.Dosage,
		Frequency:  m.Frequency,
		StartDate:  m.StartDate,
		EndDate:    m.EndDate,
		ExpiryDate: m.ExpiryDate,
		Quantity:   m.Quantity,
		Notes:      m.Notes,
		IntakeLog:  FromEvents(m.IntakeLog),
		CreatedAt:  m.CreatedAt,
		UpdatedAt:  m.UpdatedAt,
	}
}

// FromEvents は服用履歴を変換します。空でも null ではなく [] を返します。
func FromEvents(log []entity.IntakeEvent) []IntakeEventView {
	out := make([]IntakeEventView, 0, len(log))
	for _, ev := range log {
		out = append(out, IntakeEventView{Date: ev.Date, Taken: ev.Taken})
	}
	return out
}
