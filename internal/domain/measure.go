package domain

import "time"

// Measure is one timestamped set of body measurements owned by a user.
// Optional circumferences are pointers: nil means "not measured", not zero.
type Measure struct {
	ID                uint      `gorm:"primaryKey" json:"id"`
	UserID            uint      `gorm:"not null;index:idx_measures_user_date,priority:1" json:"userId"`
	MeasurementDate   time.Time `gorm:"not null;index:idx_measures_user_date,priority:2" json:"measurementDate"`
	WeightKg          float64   `gorm:"not null" json:"weightKg"`
	HeightCm          float64   `gorm:"not null" json:"heightCm"`
	WaistCm           *float64  `json:"waistCm"`
	HipCm             *float64  `json:"hipCm"`
	ChestCm           *float64  `json:"chestCm"`
	ArmRightCm        *float64  `json:"armRightCm"`
	ArmLeftCm         *float64  `json:"armLeftCm"`
	ThighRightCm      *float64  `json:"thighRightCm"`
	ThighLeftCm       *float64  `json:"thighLeftCm"`
	BodyFatPercentage *float64  `json:"bodyFatPercentage"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`

	User *User `gorm:"constraint:OnDelete:RESTRICT" json:"-"`
}

func (Measure) TableName() string { return "measures" }

// BMI of this measure.
func (m Measure) BMI() float64 { return BMI(m.WeightKg, m.HeightCm) }

// MeasureRequest is the body of POST /measures/:userId and PUT /measures/:id.
type MeasureRequest struct {
	MeasurementDate   *Timestamp `json:"measurementDate"   binding:"required"`
	WeightKg          *float64   `json:"weightKg"          binding:"required,gt=0"`
	HeightCm          *float64   `json:"heightCm"          binding:"required,gt=0"`
	WaistCm           *float64   `json:"waistCm"           binding:"omitempty,gt=0"`
	HipCm             *float64   `json:"hipCm"             binding:"omitempty,gt=0"`
	ChestCm           *float64   `json:"chestCm"           binding:"omitempty,gt=0"`
	ArmRightCm        *float64   `json:"armRightCm"        binding:"omitempty,gt=0"`
	ArmLeftCm         *float64   `json:"armLeftCm"         binding:"omitempty,gt=0"`
	ThighRightCm      *float64   `json:"thighRightCm"      binding:"omitempty,gt=0"`
	ThighLeftCm       *float64   `json:"thighLeftCm"       binding:"omitempty,gt=0"`
	BodyFatPercentage *float64   `json:"bodyFatPercentage" binding:"omitempty,gt=0,lte=100"`
}

// Validate applies the field-local rules; there are no cross-field checks.
func (r MeasureRequest) Validate() error {
	if r.MeasurementDate == nil || r.MeasurementDate.IsZero() {
		return Validation("measurementDate is required")
	}
	if r.WeightKg == nil {
		return Validation("weightKg is required")
	}
	if r.HeightCm == nil {
		return Validation("heightCm is required")
	}
	for _, f := range r.numericFields() {
		if f.v != nil && *f.v <= 0 {
			return Validation("%s must be positive", f.name)
		}
	}
	if r.BodyFatPercentage != nil && *r.BodyFatPercentage > 100 {
		return Validation("bodyFatPercentage must be at most 100")
	}
	return nil
}

type namedValue struct {
	name string
	v    *float64
}

func (r MeasureRequest) numericFields() []namedValue {
	return []namedValue{
		{"weightKg", r.WeightKg},
		{"heightCm", r.HeightCm},
		{"waistCm", r.WaistCm},
		{"hipCm", r.HipCm},
		{"chestCm", r.ChestCm},
		{"armRightCm", r.ArmRightCm},
		{"armLeftCm", r.ArmLeftCm},
		{"thighRightCm", r.ThighRightCm},
		{"thighLeftCm", r.ThighLeftCm},
		{"bodyFatPercentage", r.BodyFatPercentage},
	}
}

// ApplyTo overwrites every field of m from the request, optional ones included,
// so an omitted optional field is cleared. Owner and id are left alone.
// The request must have passed Validate.
func (r MeasureRequest) ApplyTo(m *Measure) {
	m.MeasurementDate = r.MeasurementDate.Time.UTC()
	m.WeightKg = *r.WeightKg
	m.HeightCm = *r.HeightCm
	m.WaistCm = copyFloat(r.WaistCm)
	m.HipCm = copyFloat(r.HipCm)
	m.ChestCm = copyFloat(r.ChestCm)
	m.ArmRightCm = copyFloat(r.ArmRightCm)
	m.ArmLeftCm = copyFloat(r.ArmLeftCm)
	m.ThighRightCm = copyFloat(r.ThighRightCm)
	m.ThighLeftCm = copyFloat(r.ThighLeftCm)
	m.BodyFatPercentage = copyFloat(r.BodyFatPercentage)
}

func copyFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

// LatestMeasure returns the measure with the greatest MeasurementDate, or nil for none.
// On equal dates the one found last wins.
func LatestMeasure(ms []Measure) *Measure {
	var latest *Measure
	for i := range ms {
		if latest == nil || !ms[i].MeasurementDate.Before(latest.MeasurementDate) {
			latest = &ms[i]
		}
	}
	return latest
}

// FindOwned looks id up among a user's own measures.
func FindOwned(ms []Measure, id uint) (*Measure, bool) {
	for i := range ms {
		if ms[i].ID == id {
			return &ms[i], true
		}
	}
	return nil, false
}
