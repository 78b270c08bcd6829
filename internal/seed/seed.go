// Package seed builds the starter dataset a fresh installation boots with.
package seed

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"residency/internal/auth"
	"residency/internal/core"
	"residency/pkg/domain"
)

type account struct {
	username, password, fullName, phone string
	role                                domain.Role
}

var accounts = []account{
	{"admin", "admin123", "Quản trị viên", "0901234567", domain.RoleAdmin},
	{"truongkp", "chief123", "Nguyễn Văn An", "0902345678", domain.RoleChief},
	{"congan", "police123", "Trần Văn Bình", "0903456789", domain.RolePolice},
	{"thanhvien", "member123", "Lê Thị Cẩm", "0904567890", domain.RoleMember},
}

var households = []domain.Household{
	{HouseholdCode: "HK001", Address: "123 Đường Long Trường", HouseNumber: ptr("123"), Street: ptr("Long Trường"), Area: ptr("Tổ 1"), HouseholdType: domain.HouseholdPermanent, HouseholdStatus: domain.StatusBusiness},
	{HouseholdCode: "HK002", Address: "45 Đường Nguyễn Duy Trinh", HouseNumber: ptr("45"), Street: ptr("Nguyễn Duy Trinh"), Area: ptr("Tổ 1"), HouseholdType: domain.HouseholdPermanent, HouseholdStatus: domain.StatusPolicy},
	{HouseholdCode: "HK003", Address: "78/2 Hẻm 234", HouseNumber: ptr("78/2"), Lane: ptr("234"), Street: ptr("Long Trường"), Area: ptr("Tổ 2"), HouseholdType: domain.HouseholdPermanent, HouseholdStatus: domain.StatusNormal},
	{HouseholdCode: "HK004", Address: "90 Đường Long Trường", HouseNumber: ptr("90"), Street: ptr("Long Trường"), Area: ptr("Tổ 2"), HouseholdType: domain.HouseholdTemporary, HouseholdStatus: domain.StatusRental},
	{HouseholdCode: "HK005", Address: "156 Đường Long Phước", HouseNumber: ptr("156"), Street: ptr("Long Phước"), Area: ptr("Tổ 3"), HouseholdType: domain.HouseholdPermanent, HouseholdStatus: domain.StatusNormal},
}

// member is a resident keyed by the index of its household in households.
type member struct {
	household int
	resident  domain.Resident
}

var members = []member{
	{0, domain.Resident{FullName: "Nguyễn Văn Minh", BirthDate: ptr("1975-05-15"), Gender: ptr("Nam"), IDNumber: ptr("079123456789"), Phone: ptr("0901111111"), Occupation: ptr("Kinh doanh"), Workplace: ptr("Công ty ABC"), Education: ptr("Đại học"), Relationship: ptr("Chủ hộ"), IsHouseholdHead: true, CurrentAddress: ptr("123 Đường Long Trường, P. Long Trường")}},
	{0, domain.Resident{FullName: "Trần Thị Hoa", BirthDate: ptr("1978-08-20"), Gender: ptr("Nữ"), IDNumber: ptr("079123456790"), Phone: ptr("0901111112"), Occupation: ptr("Nội trợ"), Education: ptr("THPT"), Relationship: ptr("Vợ"), CurrentAddress: ptr("123 Đường Long Trường, P. Long Trường")}},
	{0, domain.Resident{FullName: "Nguyễn Văn Nam", BirthDate: ptr("2005-03-10"), Gender: ptr("Nam"), IDNumber: ptr("079123456791"), Occupation: ptr("Sinh viên"), Workplace: ptr("Đại học Bách khoa"), Education: ptr("Đại học"), Relationship: ptr("Con"), CurrentAddress: ptr("KTX Đại học Bách khoa, Q.10")}},
	{1, domain.Resident{FullName: "Lê Văn Tùng", BirthDate: ptr("1968-12-01"), Gender: ptr("Nam"), IDNumber: ptr("079234567890"), Phone: ptr("0902222222"), Occupation: ptr("Hưu trí"), Education: ptr("Đại học"), Relationship: ptr("Chủ hộ"), IsHouseholdHead: true, CurrentAddress: ptr("45 Đường Nguyễn Duy Trinh, P. Long Trường")}},
	{1, domain.Resident{FullName: "Phạm Thị Mai", BirthDate: ptr("1970-04-25"), Gender: ptr("Nữ"), IDNumber: ptr("079234567891"), Phone: ptr("0902222223"), Occupation: ptr("Hưu trí"), Education: ptr("Trung cấp"), Relationship: ptr("Vợ"), CurrentAddress: ptr("45 Đường Nguyễn Duy Trinh, P. Long Trường")}},
	{2, domain.Resident{FullName: "Hoàng Văn Đức", BirthDate: ptr("1985-07-18"), Gender: ptr("Nam"), IDNumber: ptr("079345678901"), Phone: ptr("0903333333"), Occupation: ptr("Công nhân"), Workplace: ptr("Khu CN Thủ Đức"), Education: ptr("THPT"), Relationship: ptr("Chủ hộ"), IsHouseholdHead: true, CurrentAddress: ptr("78/2 Hẻm 234, P. Long Trường")}},
	{2, domain.Resident{FullName: "Nguyễn Thị Lan", BirthDate: ptr("1988-11-30"), Gender: ptr("Nữ"), IDNumber: ptr("079345678902"), Phone: ptr("0903333334"), Occupation: ptr("Công nhân"), Workplace: ptr("Khu CN Thủ Đức"), Education: ptr("THPT"), Relationship: ptr("Vợ"), CurrentAddress: ptr("78/2 Hẻm 234, P. Long Trường")}},
	{2, domain.Resident{FullName: "Hoàng Văn Bảo", BirthDate: ptr("2015-02-14"), Gender: ptr("Nam"), Occupation: ptr("Học sinh"), Workplace: ptr("Trường TH Long Trường"), Education: ptr("Tiểu học"), Relationship: ptr("Con"), CurrentAddress: ptr("78/2 Hẻm 234, P. Long Trường")}},
	{3, domain.Resident{FullName: "Võ Văn Hải", BirthDate: ptr("1990-01-22"), Gender: ptr("Nam"), IDNumber: ptr("079456789012"), Phone: ptr("0904444444"), Occupation: ptr("Lái xe"), Education: ptr("THPT"), Relationship: ptr("Chủ hộ"), IsHouseholdHead: true, ResidenceType: domain.ResidenceTemporary, CurrentAddress: ptr("90 Đường Long Trường (tạm trú)")}},
	{4, domain.Resident{FullName: "Đặng Văn Phong", BirthDate: ptr("1972-06-08"), Gender: ptr("Nam"), IDNumber: ptr("079567890123"), Phone: ptr("0905555555"), Occupation: ptr("Buôn bán"), Workplace: ptr("Chợ Long Trường"), Education: ptr("THCS"), Religion: ptr("Phật giáo"), Relationship: ptr("Chủ hộ"), IsHouseholdHead: true, CurrentAddress: ptr("156 Đường Long Phước, P. Long Trường")}},
	{4, domain.Resident{FullName: "Lý Thị Hương", BirthDate: ptr("1975-10-12"), Gender: ptr("Nữ"), IDNumber: ptr("079567890124"), Phone: ptr("0905555556"), Occupation: ptr("Buôn bán"), Workplace: ptr("Chợ Long Trường"), Education: ptr("THCS"), Religion: ptr("Phật giáo"), Relationship: ptr("Vợ"), CurrentAddress: ptr("156 Đường Long Phước, P. Long Trường")}},
	{4, domain.Resident{FullName: "Đặng Văn Long", BirthDate: ptr("1998-04-20"), Gender: ptr("Nam"), IDNumber: ptr("079567890125"), Phone: ptr("0905555557"), Occupation: ptr("Nhân viên văn phòng"), Workplace: ptr("Công ty XYZ"), Education: ptr("Đại học"), Relationship: ptr("Con"), CurrentAddress: ptr("156 Đường Long Phước, P. Long Trường")}},
}

var notifications = []domain.Notification{
	{
		Title:      "Thông báo về việc đóng phí vệ sinh tháng 1/2026",
		Content:    "Kính gửi các hộ dân,\n\nĐề nghị các hộ đóng phí vệ sinh tháng 1/2026 trước ngày 15/01/2026.\n\nSố tiền: 30.000đ/hộ\nNơi thu: Nhà Trưởng khu phố\n\nTrân trọng!",
		Type:       domain.NotificationFee,
		Priority:   domain.PriorityHigh,
		TargetType: domain.TargetAll,
		IsPinned:   true,
	},
	{
		Title:      "Lịch họp khu phố đầu năm 2026",
		Content:    "Khu phố tổ chức họp đầu năm 2026:\n\n- Thời gian: 19h00 ngày 20/01/2026\n- Địa điểm: Nhà văn hóa khu phố\n- Nội dung: Tổng kết năm 2025 và kế hoạch năm 2026\n\nĐề nghị các hộ cử đại diện tham dự đầy đủ.",
		Type:       domain.NotificationMeeting,
		Priority:   domain.PriorityNormal,
		TargetType: domain.TargetAll,
		IsPinned:   true,
	},
}

// Options tune dataset generation.
type Options struct {
	Now   time.Time
	NewID func() string
	// HashPassword defaults to auth.HashPassword.
	HashPassword func(string) (string, error)
}

// Dataset returns the starter neighborhood: default settings, one account per
// role, five households, twelve residents and two pinned notifications.
func Dataset(opts Options) (domain.Dataset, error) {
	now := opts.Now
	if now.IsZero() {
		now = time.Now().UTC()
	}
	newID := opts.NewID
	if newID == nil {
		newID = uuid.NewString
	}
	hash := opts.HashPassword
	if hash == nil {
		hash = auth.HashPassword
	}

	ds := domain.Dataset{
		Settings:      domain.DefaultSettings(),
		Users:         make([]domain.User, 0, len(accounts)),
		Households:    make([]domain.Household, 0, len(households)),
		Residents:     make([]domain.Resident, 0, len(members)),
		Notifications: make([]domain.Notification, 0, len(notifications)),
		ActivityLogs:  []domain.ActivityLog{},
	}
	for _, a := range accounts {
		h, err := hash(a.password)
		if err != nil {
			return domain.Dataset{}, fmt.Errorf("seed user %s: %w", a.username, err)
		}
		ds.Users = append(ds.Users, domain.User{
			ID:           newID(),
			Username:     a.username,
			PasswordHash: h,
			FullName:     a.fullName,
			Phone:        ptr(a.phone),
			Role:         a.role,
			IsActive:     true,
			CreatedAt:    now,
			UpdatedAt:    now,
		})
	}
	for _, h := range households {
		h = domain.CloneHousehold(h)
		h.ID = newID()
		h.CreatedAt, h.UpdatedAt = now, now
		ds.Households = append(ds.Households, h)
	}
	for _, m := range members {
		r := domain.CloneResident(m.resident)
		r.ID = newID()
		r.HouseholdID = ptr(ds.Households[m.household].ID)
		r.Ethnicity = domain.DefaultEthnicity
		if r.ResidenceType == "" {
			r.ResidenceType = domain.ResidencePermanent
		}
		r.ResidenceStatus = domain.DefaultResidenceStatus
		r.CreatedAt, r.UpdatedAt = now, now
		ds.Residents = append(ds.Residents, r)
	}
	for _, n := range notifications {
		n = domain.CloneNotification(n)
		n.ID = newID()
		n.CreatedAt = now
		ds.Notifications = append(ds.Notifications, n)
	}
	return ds, nil
}

// IfEmpty restores the starter dataset into store when nothing was loaded.
// It reports whether seeding happened.
func IfEmpty(ctx context.Context, store *core.Store, loaded bool) (bool, error) {
	if loaded {
		return false, nil
	}
	ds, err := Dataset(Options{Now: store.Now()})
	if err != nil {
		return false, err
	}
	if err := store.Restore(ctx, ds); err != nil {
		return false, fmt.Errorf("seed dataset: %w", err)
	}
	return true, nil
}

func ptr(s string) *string { return &s }
