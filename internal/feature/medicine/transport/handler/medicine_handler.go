// Package handler はmedicineフィーチャーのHTTPハンドラーを提供します。
package handler

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"

	"medicine_backend/internal/feature/medicine/domain/entity"
	"medicine_backend/internal/feature/medicine/transport/http/dto"
	"medicine_backend/internal/feature/medicine/usecase"
	jwtmw "medicine_backend/internal/platform/jwt"
	"medicine_backend/internal/shared/apperr"
)

// MedicineUsecase は薬管理のユースケースを定義します。
type MedicineUsecase interface {
	Create(ctx context.Context, ownerID string, in usecase.CreateInput) (*entity.Medicine, error)
	List(ctx context.Context, ownerID string, expiringSoon bool) ([]usecase.ListedMedicine, error)
	Update(ctx context.Context, ownerID, id string, f usecase.UpdateFields) (*entity.Medicine, error)
	Delete(ctx context.Context, ownerID, id string) (string, error)
	LogDose(ctx context.Context, ownerID, id string) (*entity.Medicine, error)
	GetLogs(ctx context.Context, ownerID, id string) (*usecase.LogsReport, error)
}

// MedicineHandler は /meds 配下のHTTPリクエストを処理します。
// ルートは jwtmw.AuthRequired の後ろに登録される前提です。
type MedicineHandler struct {
	meds MedicineUsecase
}

// NewMedicineHandler はMedicineHandlerの新しいインスタンスを生成します。
func NewMedicineHandler(meds MedicineUsecase) *MedicineHandler {
	return &MedicineHandler{meds: meds}
}

// Create は薬の登録を処理します。
func (h *MedicineHandler) Create(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req dto.CreateMedicineReq
	if !bind(c, &req) {
		return
	}

	m, err := h.meds.Create(c.Request.Context(), id.UserID, usecase.CreateInput{
		Name:       req.Name,
		Dosage:     req.Dosage,
		Frequency:  req.Frequency,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		ExpiryDate: req.ExpiryDate,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
	})
	if err != nil {
		fail(c, "create medicine failed", err, id.UserID)
		return
	}

	slog.Info("medicine created", "medicine_id", m.ID, "user_id", id.UserID)
	c.JSON(http.StatusCreated, dto.MedicineRes{Message: "Medicine added successfully", Medicine: dto.FromEntity(m)})
}

// List は薬の一覧を返します。?expiringSoon=true で30日以内に期限を迎えるものに絞り込みます。
func (h *MedicineHandler) List(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	expiringSoon := c.Query("expiringSoon") == "true"
	meds, err := h.meds.List(c.Request.Context(), id.UserID, expiringSoon)
	if err != nil {
		fail(c, "list medicines failed", err, id.UserID)
		return
	}

	views := make([]dto.MedicineView, 0, len(meds))
	for i := range meds {
		v := dto.FromEntity(&meds[i].Medicine)
		v.Warning = meds[i].Warning
		views = append(views, v)
	}

	c.JSON(http.StatusOK, dto.ListMedicinesRes{
		Message:                   "Medicines retrieved",
		Count:                     len(views),
		ExpiringSoonFilterApplied: expiringSoon,
		Medicines:                 views,
	})
}

// Update は許可リストのフィールドのみを更新します。
func (h *MedicineHandler) Update(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	var req dto.UpdateMedicineReq
	if !bind(c, &req) {
		return
	}

	m, err := h.meds.Update(c.Request.Context(), id.UserID, c.Param("id"), usecase.UpdateFields{
		Name:       req.Name,
		Dosage:     req.Dosage,
		Frequency:  req.Frequency,
		StartDate:  req.StartDate,
		EndDate:    req.EndDate,
		ExpiryDate: req.ExpiryDate,
		Quantity:   req.Quantity,
		Notes:      req.Notes,
	})
	if err != nil {
		fail(c, "update medicine failed", err, id.UserID)
		return
	}

	slog.Info("medicine updated", "medicine_id", m.ID, "user_id", id.UserID)
	c.JSON(http.StatusOK, dto.MedicineRes{Message: "Medicine updated successfully", Medicine: dto.FromEntity(m)})
}

// Delete は薬を削除し、削除したIDを返します。
func (h *MedicineHandler) Delete(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	deleted, err := h.meds.Delete(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		fail(c, "delete medicine failed", err, id.UserID)
		return
	}

	slog.Info("medicine deleted", "medicine_id", deleted, "user_id", id.UserID)
	c.JSON(http.StatusOK, dto.DeleteMedicineRes{Message: "Medicine deleted successfully", DeletedID: deleted})
}

// LogDose は服用を記録します。リクエストボディは参照しません。
func (h *MedicineHandler) LogDose(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	m, err := h.meds.LogDose(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		fail(c, "log dose failed", err, id.UserID)
		return
	}

	slog.Info("dose logged", "medicine_id", m.ID, "user_id", id.UserID, "total_logs", len(m.IntakeLog))
	c.JSON(http.StatusCreated, dto.LogDoseRes{
		Message: "Dose logged successfully",
		Medicine: dto.DoseLogView{
			ID:        m.ID,
			Name:      m.Name,
			IntakeLog: dto.FromEvents(m.IntakeLog),
		},
	})
}

// GetLogs は服用履歴（新しい順）と遵守率を返します。
func (h *MedicineHandler) GetLogs(c *gin.Context) {
	id, ok := identity(c)
	if !ok {
		return
	}

	r, err := h.meds.GetLogs(c.Request.Context(), id.UserID, c.Param("id"))
	if err != nil {
		fail(c, "get logs failed", err, id.UserID)
		return
	}

	c.JSON(http.StatusOK, dto.LogsRes{
		Name:              r.Name,
		TotalLogs:         r.Total,
		TakenCount:        r.Taken,
		MissedCount:       r.Missed,
		CompliancePercent: r.Percent,
		Logs:              dto.FromEvents(r.Logs),
	})
}

// identity は認証ミドルウェアが設定した識別情報を取り出します。欠落時は401を書き込みます。
func identity(c *gin.Context) (jwtmw.Identity, bool) {
	id, ok := jwtmw.IdentityFrom(c)
	if !ok || id.UserID == "" {
		c.AbortWithStatusJSON(http.StatusUnauthorized, dto.MessageResponse{Message: "No token, authorization denied"})
		return jwtmw.Identity{}, false
	}
	return id, true
}

// bind はJSONボディをデコードします。失敗時は400を書き込みます。
func bind(c *gin.Context, req any) bool {
	if err := c.ShouldBindJSON(req); err != nil {
		slog.Warn("medicine request bind failed", "error", err, "remote_addr", c.ClientIP())
		c.JSON(http.StatusBadRequest, dto.MessageResponse{Message: "Invalid request body"})
		return false
	}
	return true
}

// fail はエラーを分類してレスポンスを書き込みます。サーバーエラーの詳細はログにのみ出力します。
func fail(c *gin.Context, msg string, err error, userID string) {
	status := apperr.HTTPStatus(err)
	if status == http.StatusInternalServerError {
		slog.Error(msg, "error", err, "user_id", userID, "medicine_id", c.Param("id"))
	} else {
		slog.Warn(msg, "error", err, "user_id", userID, "medicine_id", c.Param("id"))
	}
	c.JSON(status, dto.MessageResponse{Message: apperr.Message(err)})
}
