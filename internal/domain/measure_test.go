package domain_test

import (
	"errors"
	"testing"
	"time"

	"biotrack/internal/domain"
)

func f(v float64) *float64 { return &v }

func validMeasureRequest() domain.MeasureRequest {
	at := domain.Timestamp{Time: time.Date(2024, 1, 15, 10, 30, 0, 0, time.UTC)}
	return domain.MeasureRequest{
		MeasurementDate:   &at,
		WeightKg:          f(75.5),
		HeightCm:          f(175.0),
		WaistCm:           f(85.0),
		HipCm:             f(95.0),
		ChestCm:           f(100.0),
		ArmRightCm:        f(32.0),
		ArmLeftCm:         f(31.5),
		ThighRightCm:      f(58.0),
		ThighLeftCm:       f(57.5),
		BodyFatPercentage: f(18.5),
	}
}

func TestMeasureRequestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *domain.MeasureRequest)
		wantErr bool
	}{
		{name: "valid", mutate: func(r *domain.MeasureRequest) {}},
		{name: "only_required_fields", mutate: func(r *domain.MeasureRequest) {
			r.WaistCm, r.HipCm, r.ChestCm = nil, nil, nil
			r.ArmRightCm, r.ArmLeftCm, r.ThighRightCm, r.ThighLeftCm = nil, nil, nil, nil
			r.BodyFatPercentage = nil
		}},
		{name: "missing_date", mutate: func(r *domain.MeasureRequest) { r.MeasurementDate = nil }, wantErr: true},
		{name: "missing_weight", mutate: func(r *domain.MeasureRequest) { r.WeightKg = nil }, wantErr: true},
		{name: "missing_height", mutate: func(r *domain.MeasureRequest) { r.HeightCm = nil }, wantErr: true},
		{name: "negative_weight", mutate: func(r *domain.MeasureRequest) { r.WeightKg = f(-70) }, wantErr: true},
		{name: "zero_height", mutate: func(r *domain.MeasureRequest) { r.HeightCm = f(0) }, wantErr: true},
		{name: "negative_optional", mutate: func(r *domain.MeasureRequest) { r.HipCm = f(-1) }, wantErr: true},
		{name: "body_fat_over_100", mutate: func(r *domain.MeasureRequest) { r.BodyFatPercentage = f(101) }, wantErr: true},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			req := validMeasureRequest()
			tt.mutate(&req)

			err := req.Validate()
			if tt.wantErr {
				if !errors.Is(err, domain.ErrValidation) {
					t.Fatalf("expected validation error, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("unexpected error: %v", err)
			}
		})
	}
}

func TestMeasureRequestApplyToIsFullReplace(t *testing.T) {
	m := domain.Measure{
		ID:        7,
		UserID:    3,
		WeightKg:  70,
		HeightCm:  170,
		WaistCm:   f(80),
		HipCm:     f(90),
		ChestCm:   f(95),
		ArmLeftCm: f(30),
	}

	req := validMeasureRequest()
	req.WeightKg = f(80)
	req.WaistCm = nil
	req.HipCm = nil

	req.ApplyTo(&m)

	if m.ID != 7 || m.UserID != 3 {
		t.Fatalf("id/owner must not change, got id=%d user=%d", m.ID, m.UserID)
	}
	if m.WeightKg != 80 {
		t.Fatalf("weight not replaced: %v", m.WeightKg)
	}
	if m.WaistCm != nil || m.HipCm != nil {
		t.Fatalf("omitted optional fields must be cleared, got waist=%v hip=%v", m.WaistCm, m.HipCm)
	}
	if m.ArmLeftCm == nil || *m.ArmLeftCm != 31.5 {
		t.Fatalf("armLeftCm not replaced: %v", m.ArmLeftCm)
	}
	if !m.MeasurementDate.Equal(req.MeasurementDate.Time) {
		t.Fatalf("date not replaced: %v", m.MeasurementDate)
	}

	// the measure must not alias the request's pointers
	*req.ChestCm = 1
	if *m.ChestCm == 1 {
		t.Fatalf("measure shares memory with request")
	}
}

func TestLatestMeasure(t *testing.T) {
	day := func(d int) time.Time { return time.Date(2024, 1, d, 10, 0, 0, 0, time.UTC) }

	t.Run("empty", func(t *testing.T) {
		if got := domain.LatestMeasure(nil); got != nil {
			t.Fatalf("expected nil, got %+v", got)
		}
	})

	t.Run("picks_max_date_regardless_of_order", func(t *testing.T) {
		ms := []domain.Measure{
			{ID: 1, MeasurementDate: day(10), WeightKg: 75},
			{ID: 2, MeasurementDate: day(20), WeightKg: 76},
			{ID: 3, MeasurementDate: day(15), WeightKg: 77},
		}
		got := domain.LatestMeasure(ms)
		if got == nil || got.ID != 2 {
			t.Fatalf("expected measure 2, got %+v", got)
		}
	})

	t.Run("tie_goes_to_last_found", func(t *testing.T) {
		ms := []domain.Measure{
			{ID: 1, MeasurementDate: day(20)},
			{ID: 2, MeasurementDate: day(20)},
		}
		if got := domain.LatestMeasure(ms); got.ID != 2 {
			t.Fatalf("expected measure 2, got %d", got.ID)
		}
	})
}

func TestFindOwned(t *testing.T) {
	ms := []domain.Measure{{ID: 1}, {ID: 4}}

	if m, ok := domain.FindOwned(ms, 4); !ok || m.ID != 4 {
		t.Fatalf("expected to find 4, got %v %v", m, ok)
	}
	if _, ok := domain.FindOwned(ms, 2); ok {
		t.Fatalf("did not expect to find 2")
	}
}
