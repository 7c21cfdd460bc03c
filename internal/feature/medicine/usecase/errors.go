package usecase

import (
	"errors"

	"medicine_backend/internal/shared/apperr"
)

// ErrRecordNotFound はリポジトリが所有者スコープ内でレコードを見つけられない場合に返します。
// 他ユーザーのレコードも「存在しない」として扱われます。
var ErrRecordNotFound = errors.New("medicine record not found")

var (
	// ErrMedicineNotFound は存在しないか呼び出し元の所有ではない薬を示します。
	ErrMedicineNotFound = apperr.New(apperr.ErrNotFound, "Medicine not found or you do not have permission")

	// ErrDeleteNotFound は削除対象が見つからない場合のエラーです。
	ErrDeleteNotFound = apperr.New(apperr.ErrNotFound, "Medicine not found or you do not have permission to delete it")

	// ErrRequiredFields は作成時の必須項目の欠落を示します。
	ErrRequiredFields = apperr.New(apperr.ErrValidation, "Required fields: name, dosage, frequency, expiryDate")

	// ErrNegativeQuantity は在庫数が負の場合のエラーです。
	ErrNegativeQuantity = apperr.New(apperr.ErrValidation, "Quantity cannot be negative")
)

// invalidDate は解釈できない日付フィールドのエラーを生成します。
func invalidDate(field string) error {
	return apperr.New(apperr.ErrValidation, "Invalid date for "+field+", expected YYYY-MM-DD")
}

// emptyField は更新で必須項目が空にされた場合のエラーを生成します。
func emptyField(field string) error {
	return apperr.New(apperr.ErrValidation, field+" cannot be empty")
}
