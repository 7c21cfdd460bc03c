package handler

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"os"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"medicine_backend/internal/feature/medicine/domain"
	"medicine_backend/internal/feature/medicine/domain/entity"
	"medicine_backend/internal/feature/medicine/usecase"
	jwtmw "medicine_backend/internal/platform/jwt"
)

const (
	userID = "0b7e2c58-95a7-4d5e-9d36-6f5a3c1c2a01"
	medID  = "5f0c1a2b-3c4d-4e5f-8a9b-0c1d2e3f4a5b"
)

// TestMain はテスト実行前にGinをテストモードに設定します。
func TestMain(m *testing.M) {
	gin.SetMode(gin.TestMode)
	os.Exit(m.Run())
}

// mockMedicineUsecase is a mock implementation of the MedicineUsecase interface.
type mockMedicineUsecase struct {
	CreateFunc  func(ctx context.Context, ownerID string, in usecase.CreateInput) (*entity.Medicine, error)
	ListFunc    func(ctx context.Context, ownerID string, expiringSoon bool) ([]usecase.ListedMedicine, error)
	UpdateFunc  func(ctx context.Context, ownerID, id string, f usecase.UpdateFields) (*entity.Medicine, error)
	DeleteFunc  func(ctx context.Context, ownerID, id string) (string, error)
	LogDoseFunc func(ctx context.Context, ownerID, id string) (*entity.Medicine, error)
	GetLogsFunc func(ctx context.Context, ownerID, id string) (*usecase.LogsReport, error)
}

func (m *mockMedicineUsecase) Create(ctx context.Context, ownerID string, in usecase.CreateInput) (*entity.Medicine, error) {
	if m.CreateFunc != nil {
		return m.CreateFunc(ctx, ownerID, in)
	}
	return nil, errors.New("create failed")
}

func (m *mockMedicineUsecase) List(ctx context.Context, ownerID string, expiringSoon bool) ([]usecase.ListedMedicine, error) {
	if m.ListFunc != nil {
		return m.ListFunc(ctx, ownerID, expiringSoon)
	}
	return nil, errors.New("list failed")
}

func (m *mockMedicineUsecase) Update(ctx context.Context, ownerID, id string, f usecase.UpdateFields) (*entity.Medicine, error) {
	if m.UpdateFunc != nil {
		return m.UpdateFunc(ctx, ownerID, id, f)
	}
	return nil, errors.New("update failed")
}

func (m *mockMedicineUsecase) Delete(ctx context.Context, ownerID, id string) (string, error) {
	if m.DeleteFunc != nil {
		return m.DeleteFunc(ctx, ownerID, id)
	}
	return "", errors.New("delete failed")
}

func (m *mockMedicineUsecase) LogDose(ctx context.Context, ownerID, id string) (*entity.Medicine, error) {
	if m.LogDoseFunc != nil {
		return m.LogDoseFunc(ctx, ownerID, id)
	}
	return nil, errors.New("log failed")
}

func (m *mockMedicineUsecase) GetLogs(ctx context.Context, ownerID, id string) (*usecase.LogsReport, error) {
	if m.GetLogsFunc != nil {
		return m.GetLogsFunc(ctx, ownerID, id)
	}
	return nil, errors.New("logs failed")
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

func sampleMedicine() *entity.Medicine {
	return &entity.Medicine{
		ID:         medID,
		OwnerID:    userID,
		Name:       "Paracetamol",
		Dosage:     "500mg",
		Frequency:  "daily",
		ExpiryDate: day(2026, 6, 30),
		IntakeLog:  []entity.IntakeEvent{},
		CreatedAt:  day(2026, 5, 1),
		UpdatedAt:  day(2026, 5, 1),
	}
}

// newRouter は認証済みの識別情報を注入した状態でルートを登録します。
func newRouter(h *MedicineHandler, authenticated bool) *gin.Engine {
	r := gin.New()
	meds := r.Group("/meds", func(c *gin.Context) {
		if authenticated {
			c.Set(jwtmw.ContextIdentity, jwtmw.Identity{UserID: userID, Email: "a@example.com", Name: "A"})
		}
		c.Next()
	})
	meds.POST("", h.Create)
	meds.GET("", h.List)
	meds.PUT("/:id", h.Update)
	meds.DELETE("/:id", h.Delete)
	meds.POST("/:id/log", h.LogDose)
	meds.GET("/:id/logs", h.GetLogs)
	return r
}

func do(r http.Handler, method, path, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()
	var body map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	return body
}

func TestMedicineHandler_Create(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		var got usecase.CreateInput
		h := NewMedicineHandler(&mockMedicineUsecase{CreateFunc: func(ctx context.Context, ownerID string, in usecase.CreateInput) (*entity.Medicine, error) {
			assert.Equal(t, userID, ownerID)
			got = in
			return sampleMedicine(), nil
		}})

		w := do(newRouter(h, true), http.MethodPost, "/meds",
			`{"name":"Paracetamol","dosage":"500mg","frequency":"daily","expiryDate":"2026-06-30","userId":"someone-else"}`)

		require.Equal(t, http.StatusCreated, w.Code)
		assert.Equal(t, "2026-06-30", got.ExpiryDate)
		assert.Nil(t, got.Quantity)

		body := decode(t, w)
		assert.Equal(t, "Medicine added successfully", body["message"])
		med := body["medicine"].(map[string]any)
		assert.Equal(t, medID, med["_id"])
		assert.Equal(t, userID, med["userId"])
		assert.Equal(t, float64(0), med["quantity"])
		assert.Equal(t, "", med["notes"])
		assert.Equal(t, []any{}, med["intakeLog"])
		assert.NotContains(t, med, "warning")
		assert.NotContains(t, med, "startDate")
	})

	t.Run("validation error", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{CreateFunc: func(ctx context.Context, ownerID string, in usecase.CreateInput) (*entity.Medicine, error) {
			return nil, usecase.ErrRequiredFields
		}})

		w := do(newRouter(h, true), http.MethodPost, "/meds", `{"name":"Paracetamol"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Required fields: name, dosage, frequency, expiryDate", decode(t, w)["message"])
	})

	t.Run("malformed body", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{})

		w := do(newRouter(h, true), http.MethodPost, "/meds", `{"quantity":"many"}`)

		assert.Equal(t, http.StatusBadRequest, w.Code)
		assert.Equal(t, "Invalid request body", decode(t, w)["message"])
	})

	t.Run("store failure hides details", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{CreateFunc: func(ctx context.Context, ownerID string, in usecase.CreateInput) (*entity.Medicine, error) {
			return nil, errors.New("pq: relation medicines does not exist")
		}})

		w := do(newRouter(h, true), http.MethodPost, "/meds", `{}`)

		assert.Equal(t, http.StatusInternalServerError, w.Code)
		assert.Equal(t, "Server error", decode(t, w)["message"])
		assert.NotContains(t, w.Body.String(), "relation")
	})

	t.Run("missing identity", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{})

		w := do(newRouter(h, false), http.MethodPost, "/meds", `{}`)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}

func TestMedicineHandler_List(t *testing.T) {
	tests := []struct {
		name       string
		query      string
		wantFilter bool
	}{
		{"no filter", "", false},
		{"filter on", "?expiringSoon=true", true},
		{"other value is ignored", "?expiringSoon=yes", false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h := NewMedicineHandler(&mockMedicineUsecase{ListFunc: func(ctx context.Context, ownerID string, expiringSoon bool) ([]usecase.ListedMedicine, error) {
				assert.Equal(t, tt.wantFilter, expiringSoon)
				return []usecase.ListedMedicine{{Medicine: *sampleMedicine(), Warning: "expires soon, 20 days left"}}, nil
			}})

			w := do(newRouter(h, true), http.MethodGet, "/meds"+tt.query, "")

			require.Equal(t, http.StatusOK, w.Code)
			body := decode(t, w)
			assert.Equal(t, float64(1), body["count"])
			assert.Equal(t, tt.wantFilter, body["expiringSoonFilterApplied"])
			meds := body["medicines"].([]any)
			require.Len(t, meds, 1)
			assert.Equal(t, "expires soon, 20 days left", meds[0].(map[string]any)["warning"])
		})
	}

	t.Run("empty list is an array", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{ListFunc: func(ctx context.Context, ownerID string, expiringSoon bool) ([]usecase.ListedMedicine, error) {
			return nil, nil
		}})

		w := do(newRouter(h, true), http.MethodGet, "/meds", "")

		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, []any{}, decode(t, w)["medicines"])
	})
}

func TestMedicineHandler_Update(t *testing.T) {
	t.Run("only allow-listed keys reach the usecase", func(t *testing.T) {
		var got usecase.UpdateFields
		h := NewMedicineHandler(&mockMedicineUsecase{UpdateFunc: func(ctx context.Context, ownerID, id string, f usecase.UpdateFields) (*entity.Medicine, error) {
			assert.Equal(t, medID, id)
			got = f
			m := sampleMedicine()
			m.Quantity = *f.Quantity
			return m, nil
		}})

		w := do(newRouter(h, true), http.MethodPut, "/meds/"+medID, `{"quantity":7,"userId":"x","_id":"y"}`)

		require.Equal(t, http.StatusOK, w.Code)
		require.NotNil(t, got.Quantity)
		assert.Equal(t, 7, *got.Quantity)
		assert.Nil(t, got.Name)
		assert.Nil(t, got.ExpiryDate)
		body := decode(t, w)
		assert.Equal(t, "Medicine updated successfully", body["message"])
		assert.Equal(t, userID, body["medicine"].(map[string]any)["userId"])
	})

	t.Run("not found", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{UpdateFunc: func(ctx context.Context, ownerID, id string, f usecase.UpdateFields) (*entity.Medicine, error) {
			return nil, usecase.ErrMedicineNotFound
		}})

		w := do(newRouter(h, true), http.MethodPut, "/meds/"+medID, `{"name":"x"}`)

		assert.Equal(t, http.StatusNotFound, w.Code)
		assert.Equal(t, "Medicine not found or you do not have permission", decode(t, w)["message"])
	})
}

func TestMedicineHandler_Delete(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{DeleteFunc: func(ctx context.Context, ownerID, id string) (string, error) {
			return id, nil
		}})

		w := do(newRouter(h, true), http.MethodDelete, "/meds/"+medID, "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Medicine deleted successfully", body["message"])
		assert.Equal(t, medID, body["deletedId"])
	})

	t.Run("not found", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{DeleteFunc: func(ctx context.Context, ownerID, id string) (string, error) {
			return "", usecase.ErrDeleteNotFound
		}})

		w := do(newRouter(h, true), http.MethodDelete, "/meds/"+medID, "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}

func TestMedicineHandler_LogDose(t *testing.T) {
	at := time.Date(2026, 10, 19, 8, 0, 0, 0, time.UTC)
	h := NewMedicineHandler(&mockMedicineUsecase{LogDoseFunc: func(ctx context.Context, ownerID, id string) (*entity.Medicine, error) {
		m := sampleMedicine()
		m.IntakeLog = []entity.IntakeEvent{{Date: at, Taken: true}}
		return m, nil
	}})

	w := do(newRouter(h, true), http.MethodPost, "/meds/"+medID+"/log", `ignored body`)

	require.Equal(t, http.StatusCreated, w.Code)
	body := decode(t, w)
	assert.Equal(t, "Dose logged successfully", body["message"])
	med := body["medicine"].(map[string]any)
	assert.Equal(t, medID, med["_id"])
	assert.Equal(t, "Paracetamol", med["name"])
	assert.Equal(t, []any{map[string]any{"date": "2026-10-19T08:00:00Z", "taken": true}}, med["intakeLog"])
	assert.NotContains(t, med, "dosage")
}

func TestMedicineHandler_GetLogs(t *testing.T) {
	t.Run("success", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{GetLogsFunc: func(ctx context.Context, ownerID, id string) (*usecase.LogsReport, error) {
			return &usecase.LogsReport{
				Name:       "Paracetamol",
				Compliance: domain.Compliance{Total: 3, Taken: 2, Missed: 1, Percent: 67},
				Logs: []entity.IntakeEvent{
					{Date: day(2026, 10, 3), Taken: true},
					{Date: day(2026, 10, 2), Taken: false},
					{Date: day(2026, 10, 1), Taken: true},
				},
			}, nil
		}})

		w := do(newRouter(h, true), http.MethodGet, "/meds/"+medID+"/logs", "")

		require.Equal(t, http.StatusOK, w.Code)
		body := decode(t, w)
		assert.Equal(t, "Paracetamol", body["name"])
		assert.Equal(t, float64(3), body["totalLogs"])
		assert.Equal(t, float64(2), body["takenCount"])
		assert.Equal(t, float64(1), body["missedCount"])
		assert.Equal(t, float64(67), body["compliancePercent"])
		logs := body["logs"].([]any)
		require.Len(t, logs, 3)
		assert.Equal(t, "2026-10-03T00:00:00Z", logs[0].(map[string]any)["date"])
	})

	t.Run("not found", func(t *testing.T) {
		h := NewMedicineHandler(&mockMedicineUsecase{GetLogsFunc: func(ctx context.Context, ownerID, id string) (*usecase.LogsReport, error) {
			return nil, usecase.ErrMedicineNotFound
		}})

		w := do(newRouter(h, true), http.MethodGet, "/meds/"+medID+"/logs", "")

		assert.Equal(t, http.StatusNotFound, w.Code)
	})
}
