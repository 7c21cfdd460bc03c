// Package usecase はmedicineフィーチャーのビジネスロジックを実装します。
package usecase

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"medicine_backend/internal/feature/medicine/domain"
	"medicine_backend/internal/feature/medicine/domain/entity"
	"medicine_backend/internal/shared/dateutil"
)

// MedicineRepository は薬エンティティの永続化層を抽象化します。
// すべての操作は所有者IDで絞り込まれ、対象外のレコードにはErrRecordNotFoundを返します。
type MedicineRepository interface {
	// Create は新しい薬を保存し、IDとタイムスタンプを設定します。
	Create(ctx context.Context, m *entity.Medicine) error

	// List は所有者の薬を有効期限の昇順で返します。window が nil でなければ期限がその範囲内のものに限定します。
	List(ctx context.Context, ownerID string, window *domain.DateRange) ([]entity.Medicine, error)

	// FindByID は所有者の薬を服用履歴付きで取得します。
	FindByID(ctx context.Context, ownerID, id string) (*entity.Medicine, error)

	// Update は許可されたフィールドを上書きします。所有者とIDは変更されません。
	Update(ctx context.Context, m *entity.Medicine) error

	// Delete は薬とその服用履歴を削除します。
	Delete(ctx context.Context, ownerID, id string) error

	// AppendIntake は服用イベントを1件追加し、更新後の薬を返します。
	AppendIntake(ctx context.Context, ownerID, id string, ev entity.IntakeEvent) (*entity.Medicine, error)
}

// CreateInput は作成リクエストの入力値です。日付は文字列のまま受け取り、ここで解釈します。
type CreateInput struct {
	Name       string
	Dosage     string
	Frequency  string
	StartDate  string
	EndDate    string
	ExpiryDate string
	Quantity   *int
	Notes      *string
}

// UpdateFields は更新可能なフィールドの許可リストです。nil のフィールドは変更しません。
type UpdateFields struct {
	Name       *string
	Dosage     *string
	Frequency  *string
	StartDate  *string
	EndDate    *string
	ExpiryDate *string
	Quantity   *int
	Notes      *string
}

// ListedMedicine は読み取り時に算出した警告付きの薬です。
type ListedMedicine struct {
	entity.Medicine
	Warning string
}

// LogsReport は服用履歴と遵守率の集計です。Logs は新しい順に並びます。
type LogsReport struct {
	Name string
	domain.Compliance
	Logs []entity.IntakeEvent
}

// medicineUsecase は薬管理のビジネスロジックを実装します。
type medicineUsecase struct {
	repo MedicineRepository
	now  func() time.Time
}

// NewMedicineUsecase はmedicineUsecaseの新しいインスタンスを生成します。
func NewMedicineUsecase(repo MedicineRepository) *medicineUsecase {
	return &medicineUsecase{repo: repo, now: time.Now}
}

// Create は入力を検証して薬を登録します。数量は省略時0、メモは省略時空文字です。
func (u *medicineUsecase) Create(ctx context.Context, ownerID string, in CreateInput) (*entity.Medicine, error) {
	name := strings.TrimSpace(in.Name)
	dosage := strings.TrimSpace(in.Dosage)
	frequency := strings.TrimSpace(in.Frequency)
	if name == "" || dosage == "" || frequency == "" || strings.TrimSpace(in.ExpiryDate) == "" {
		return nil, ErrRequiredFields
	}

	expiry, err := dateutil.Parse(in.ExpiryDate)
	if err != nil {
		return nil, invalidDate("expiryDate")
	}
	start, err := optionalDate("startDate", in.StartDate)
	if err != nil {
		return nil, err
	}
	end, err := optionalDate("endDate", in.EndDate)
	if err != nil {
		return nil, err
	}

	m := &entity.Medicine{
		OwnerID:    ownerID,
		Name:       name,
		Dosage:     dosage,
		Frequency:  frequency,
		StartDate:  start,
		EndDate:    end,
		ExpiryDate: expiry,
		IntakeLog:  []entity.IntakeEvent{},
	}
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return nil, ErrNegativeQuantity
		}
		m.Quantity = *in.Quantity
	}
	if in.Notes != nil {
		m.Notes = *in.Notes
	}

	if err := u.repo.Create(ctx, m); err != nil {
		return nil, fmt.Errorf("failed to create medicine: %w", err)
	}
	return m, nil
}

// List は所有者の薬を期限の近い順に返し、各レコードに警告を付与します。
// expiringSoon が true の場合、今日から30日以内に期限を迎えるものに限定します。
func (u *medicineUsecase) List(ctx context.Context, ownerID string, expiringSoon bool) ([]ListedMedicine, error) {
	now := u.now()

	var window *domain.DateRange
	if expiringSoon {
		w := domain.ExpiringSoonWindow(now)
		window = &w
	}

	meds, err := u.repo.List(ctx, ownerID, window)
	if err != nil {
		return nil, fmt.Errorf("failed to list medicines: %w", err)
	}

	out := make([]ListedMedicine, 0, len(meds))
	for _, m := range meds {
		out = append(out, ListedMedicine{Medicine: m, Warning: domain.Warning(m.ExpiryDate, now)})
	}
	return out, nil
}

// Update は許可リストのフィールドのみを上書きします。
// 日付フィールドが空文字の場合は以前の値を保持します。
func (u *medicineUsecase) Update(ctx context.Context, ownerID, id string, f UpdateFields) (*entity.Medicine, error) {
	m, err := u.find(ctx, ownerID, id, ErrMedicineNotFound)
	if err != nil {
		return nil, err
	}

	if err := applyUpdate(m, f); err != nil {
		return nil, err
	}

	if err := u.repo.Update(ctx, m); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrMedicineNotFound
		}
		return nil, fmt.Errorf("failed to update medicine: %w", err)
	}
	return m, nil
}

// Delete は薬を物理削除し、削除したIDを返します。
func (u *medicineUsecase) Delete(ctx context.Context, ownerID, id string) (string, error) {
	if !validID(id) {
		return "", ErrDeleteNotFound
	}
	if err := u.repo.Delete(ctx, ownerID, id); err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return "", ErrDeleteNotFound
		}
		return "", fmt.Errorf("failed to delete medicine: %w", err)
	}
	return id, nil
}

// LogDose は現在時刻で「服用済み」のイベントを履歴に追加します。
func (u *medicineUsecase) LogDose(ctx context.Context, ownerID, id string) (*entity.Medicine, error) {
	if !validID(id) {
		return nil, ErrMedicineNotFound
	}
	ev := entity.IntakeEvent{Date: u.now().UTC(), Taken: true}
	m, err := u.repo.AppendIntake(ctx, ownerID, id, ev)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, ErrMedicineNotFound
		}
		return nil, fmt.Errorf("failed to log dose: %w", err)
	}
	return m, nil
}

// GetLogs は服用履歴を新しい順に並べ、遵守率とともに返します。保存順は変更しません。
func (u *medicineUsecase) GetLogs(ctx context.Context, ownerID, id string) (*LogsReport, error) {
	m, err := u.find(ctx, ownerID, id, ErrMedicineNotFound)
	if err != nil {
		return nil, err
	}
	return &LogsReport{
		Name:       m.Name,
		Compliance: domain.ComputeCompliance(m.IntakeLog),
		Logs:       domain.NewestFirst(m.IntakeLog),
	}, nil
}

// find は所有者スコープでレコードを取得し、未検出を notFound に変換します。
func (u *medicineUsecase) find(ctx context.Context, ownerID, id string, notFound error) (*entity.Medicine, error) {
	if !validID(id) {
		return nil, notFound
	}
	m, err := u.repo.FindByID(ctx, ownerID, id)
	if err != nil {
		if errors.Is(err, ErrRecordNotFound) {
			return nil, notFound
		}
		return nil, fmt.Errorf("failed to find medicine: %w", err)
	}
	return m, nil
}

// applyUpdate は UpdateFields を m に適用します。エラー時も m は部分的に変更され得るため、呼び出し側は保存しないこと。
func applyUpdate(m *entity.Medicine, f UpdateFields) error {
	for _, src := range []struct {
		field string
		in    *string
		dst   *string
	}{
		{"name", f.Name, &m.Name},
		{"dosage", f.Dosage, &m.Dosage},
		{"frequency", f.Frequency, &m.Frequency},
	} {
		if src.in == nil {
			continue
		}
		v := strings.TrimSpace(*src.in)
		if v == "" {
			return emptyField(src.field)
		}
		*src.dst = v
	}

	if f.ExpiryDate != nil && strings.TrimSpace(*f.ExpiryDate) != "" {
		t, err := dateutil.Parse(*f.ExpiryDate)
		if err != nil {
			return invalidDate("expiryDate")
		}
		m.ExpiryDate = t
	}
	if f.StartDate != nil {
		t, err := optionalDate("startDate", *f.StartDate)
		if err != nil {
			return err
		}
		if t != nil {
			m.StartDate = t
		}
	}
	if f.EndDate != nil {
		t, err := optionalDate("endDate", *f.EndDate)
		if err != nil {
			return err
		}
		if t != nil {
			m.EndDate = t
		}
	}

	if f.Quantity != nil {
		if *f.Quantity < 0 {
			return ErrNegativeQuantity
		}
		m.Quantity = *f.Quantity
	}
	if f.Notes != nil {
		m.Notes = *f.Notes
	}
	return nil
}

// optionalDate は空文字なら nil を、そうでなければ解釈した日付を返します。
func optionalDate(field, s string) (*time.Time, error) {
	if strings.TrimSpace(s) == "" {
		return nil, nil
	}
	t, err := dateutil.Parse(s)
	if err != nil {
		return nil, invalidDate(field)
	}
	return &t, nil
}

// validID は不正な形式のIDを「存在しない」と同様に扱うための判定です。
func validID(id string) bool {
	_, err := uuid.Parse(id)
	return err == nil
}
