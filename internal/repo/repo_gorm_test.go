package repo_test

import (
	"context"
	"fmt"
	"testing"
	"time"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"biotrack/internal/domain"
	"biotrack/internal/repo"
)

func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	// one named in-memory database per test so tests never share rows
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=on", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	if err != nil {
		t.Fatalf("failed to open test db: %v", err)
	}
	if err := repo.Migrate(db); err != nil {
		t.Fatalf("failed to migrate test db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("sql db: %v", err)
	}
	t.Cleanup(func() { _ = sqlDB.Close() })
	return db
}

func fp(v float64) *float64 { return &v }

func newUser(name, email string) *domain.User {
	return &domain.User{
		Name:         name,
		BirthDate:    domain.NewDate(1990, time.May, 15),
		ZipCode:      "12345-678",
		Email:        email,
		PasswordHash: "hash",
	}
}

func newMeasure(userID uint, at time.Time, weight float64) *domain.Measure {
	return &domain.Measure{UserID: userID, MeasurementDate: at, WeightKg: weight, HeightCm: 175}
}

func day(d int) time.Time { return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC) }

func TestUserRepo_SaveFindDelete(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := repo.NewUserRepo(db)

	u := newUser("João Silva", "joao.silva@email.com")
	if err := users.Save(ctx, u); err != nil {
		t.Fatalf("save: %v", err)
	}
	if u.ID == 0 {
		t.Fatalf("expected storage-assigned id")
	}

	got, err := users.FindByID(ctx, u.ID)
	if err != nil || got == nil {
		t.Fatalf("find: %v %v", got, err)
	}
	if got.Name != u.Name || got.Email != u.Email || got.ZipCode != u.ZipCode {
		t.Fatalf("fields differ: %+v", got)
	}
	if got.BirthDate.String() != "1990-05-15" {
		t.Fatalf("birth date round trip: %s", got.BirthDate)
	}

	got.Name = "João Silva Atualizado"
	if err := users.Save(ctx, got); err != nil {
		t.Fatalf("update: %v", err)
	}
	again, _ := users.FindByID(ctx, u.ID)
	if again.Name != "João Silva Atualizado" {
		t.Fatalf("update not persisted: %q", again.Name)
	}

	ok, err := users.ExistsByID(ctx, u.ID)
	if err != nil || !ok {
		t.Fatalf("exists: %v %v", ok, err)
	}

	if err := users.DeleteByID(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	gone, err := users.FindByID(ctx, u.ID)
	if err != nil || gone != nil {
		t.Fatalf("expected nil after delete, got %v %v", gone, err)
	}
	ok, _ = users.ExistsByID(ctx, u.ID)
	if ok {
		t.Fatalf("exists after delete")
	}
}

func TestUserRepo_FindWithoutMeasures(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := repo.NewUserRepo(db)
	measures := repo.NewMeasureRepo(db)

	withM := newUser("João Silva", "joao@email.com")
	without := newUser("Maria Santos", "maria@email.com")
	_ = users.Save(ctx, withM)
	_ = users.Save(ctx, without)
	if err := measures.Save(ctx, newMeasure(withM.ID, day(10), 75)); err != nil {
		t.Fatalf("save measure: %v", err)
	}

	got, err := users.FindWithoutMeasures(ctx)
	if err != nil {
		t.Fatalf("query: %v", err)
	}
	if len(got) != 1 || got[0].ID != without.ID {
		t.Fatalf("expected only Maria, got %+v", got)
	}

	all, _ := users.FindAll(ctx)
	if len(all) != 2 {
		t.Fatalf("expected 2 users, got %d", len(all))
	}
}

func TestUserRepo_DeleteWithMeasures(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := repo.NewUserRepo(db)
	measures := repo.NewMeasureRepo(db)

	u := newUser("João Silva", "joao@email.com")
	_ = users.Save(ctx, u)
	_ = measures.Save(ctx, newMeasure(u.ID, day(10), 75))
	_ = measures.Save(ctx, newMeasure(u.ID, day(11), 76))

	if err := users.DeleteWithMeasures(ctx, u.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	n, _ := measures.CountByUser(ctx, u.ID)
	if n != 0 {
		t.Fatalf("expected measures removed, %d left", n)
	}
	if got, _ := users.FindByID(ctx, u.ID); got != nil {
		t.Fatalf("user still present")
	}
}

func TestUserRepo_Page(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := repo.NewUserRepo(db)

	_ = users.Save(ctx, newUser("João Silva", "joao@email.com"))
	_ = users.Save(ctx, newUser("Maria Santos", "maria@email.com"))
	_ = users.Save(ctx, newUser("Mariana Lima", "mariana@email.com"))

	got, total, err := users.Page(ctx, 0, 10, "maria")
	if err != nil {
		t.Fatalf("page: %v", err)
	}
	if total != 2 || len(got) != 2 {
		t.Fatalf("expected 2 matches, got total=%d len=%d", total, len(got))
	}

	got, total, _ = users.Page(ctx, 0, 1, "")
	if total != 3 || len(got) != 1 {
		t.Fatalf("expected total=3 len=1, got total=%d len=%d", total, len(got))
	}
}

func TestMeasureRepo_Ordering(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := repo.NewUserRepo(db)
	measures := repo.NewMeasureRepo(db)

	u := newUser("João Silva", "joao@email.com")
	_ = users.Save(ctx, u)
	other := newUser("Maria Santos", "maria@email.com")
	_ = users.Save(ctx, other)

	for _, m := range []*domain.Measure{
		newMeasure(u.ID, day(10), 75),
		newMeasure(u.ID, day(20), 76),
		newMeasure(u.ID, day(15), 77),
		newMeasure(other.ID, day(25), 60),
	} {
		if err := measures.Save(ctx, m); err != nil {
			t.Fatalf("save: %v", err)
		}
	}

	list, err := measures.ListByUser(ctx, u.ID)
	if err != nil || len(list) != 3 {
		t.Fatalf("list: %v %v", list, err)
	}
	if list[0].WeightKg != 75 || list[2].WeightKg != 77 {
		t.Fatalf("expected insertion order, got %+v", list)
	}

	desc, err := measures.ListByUserOrderByDateDesc(ctx, u.ID)
	if err != nil || len(desc) != 3 {
		t.Fatalf("desc: %v %v", desc, err)
	}
	for i := 1; i < len(desc); i++ {
		if desc[i].MeasurementDate.After(desc[i-1].MeasurementDate) {
			t.Fatalf("not descending at %d: %+v", i, desc)
		}
	}

	latest, err := measures.FindLatestByUser(ctx, u.ID)
	if err != nil || latest == nil {
		t.Fatalf("latest: %v %v", latest, err)
	}
	if !latest.MeasurementDate.Equal(day(20)) {
		t.Fatalf("expected 2024-01-20, got %v", latest.MeasurementDate)
	}

	none, err := measures.FindLatestByUser(ctx, 999)
	if err != nil || none != nil {
		t.Fatalf("expected nil latest for unknown user, got %v %v", none, err)
	}
}

func TestMeasureRepo_SaveClearsOptionalFields(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := repo.NewUserRepo(db)
	measures := repo.NewMeasureRepo(db)

	u := newUser("João Silva", "joao@email.com")
	_ = users.Save(ctx, u)

	m := newMeasure(u.ID, day(10), 75.5)
	m.WaistCm = fp(85)
	if err := measures.Save(ctx, m); err != nil {
		t.Fatalf("save: %v", err)
	}

	m.WeightKg = 80
	m.WaistCm = nil
	if err := measures.Save(ctx, m); err != nil {
		t.Fatalf("update: %v", err)
	}

	got, _ := measures.FindByID(ctx, m.ID)
	if got.WeightKg != 80 {
		t.Fatalf("weight not updated: %v", got.WeightKg)
	}
	if got.WaistCm != nil {
		t.Fatalf("waist should be cleared, got %v", *got.WaistCm)
	}
}

func TestMeasureRepo_DeleteAndExists(t *testing.T) {
	ctx := context.Background()
	db := setupTestDB(t)
	users := repo.NewUserRepo(db)
	measures := repo.NewMeasureRepo(db)

	u := newUser("João Silva", "joao@email.com")
	_ = users.Save(ctx, u)
	m := newMeasure(u.ID, day(10), 75)
	_ = measures.Save(ctx, m)
	_ = measures.Save(ctx, newMeasure(u.ID, day(11), 75))

	if ok, _ := measures.ExistsByID(ctx, m.ID); !ok {
		t.Fatalf("expected measure to exist")
	}
	if err := measures.DeleteByID(ctx, m.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if got, _ := measures.FindByID(ctx, m.ID); got != nil {
		t.Fatalf("expected nil after delete")
	}

	n, err := measures.DeleteByUser(ctx, u.ID)
	if err != nil || n != 1 {
		t.Fatalf("delete by user: n=%d err=%v", n, err)
	}
}
