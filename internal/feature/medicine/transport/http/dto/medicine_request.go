// Package dto はmedicineフィーチャーのHTTPトランスポート層のデータ転送オブジェクトを定義します。
package dto

// CreateMedicineReq は POST /meds のリクエストボディです。
// 日付は "YYYY-MM-DD" またはRFC 3339形式の文字列で受け取ります。
type CreateMedicineReq struct {
	Name       string  `json:"name"`
	Dosage     string  `json:"dosage"`
	Frequency  string  `json:"frequency"`
	StartDate  string  `json:"startDate"`
	EndDate    string  `json:"endDate"`
	ExpiryDate string  `json:"expiryDate"`
	Quantity   *int    `json:"quantity"`
	Notes      *string `json:"notes"`
}

// UpdateMedicineReq は PUT /meds/:id のリクエストボディです。
// 許可リスト外のキー（userId、_id など）はデコード時に破棄されます。
type UpdateMedicineReq struct {
	Name       *string `json:"name"`
	Dosage     *string `json:"dosage"`
	Frequency  *string `json:"frequency"`
	StartDate  *string `json:"startDate"`
	EndDate    *string `json:"endDate"`
	ExpiryDate *string `json:"expiryDate"`
	Quantity   *int    `json:"quantity"`
	Notes      *string `json:"notes"`
}
