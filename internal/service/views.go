package service

import "biotrack/internal/domain"

type UserView struct {
	ID        uint        `json:"id"`
	Name      string      `json:"name"`
	BirthDate domain.Date `json:"birthDate"`
	ZipCode   string      `json:"zipCode"`
	Email     string      `json:"email"`
}

type MeasureView struct {
	domain.Measure
	BMI float64 `json:"bmi"`
}

type UserWithMeasures struct {
	UserView
	Measures []MeasureView `json:"measures"`
}

type UserBMI struct {
	UserView
	LatestMeasure MeasureView    `json:"latestMeasure"`
	BMI           float64        `json:"bmi"`
	Band          domain.BMIBand `json:"band"`
	BandLabel     string         `json:"bandLabel"`
}

func toUserView(u domain.User) UserView {
	return UserView{
		ID:        u.ID,
		Name:      u.Name,
		BirthDate: u.BirthDate,
		ZipCode:   u.ZipCode,
		Email:     u.Email,
	}
}

func toUserViews(us []domain.User) []UserView {
	out := make([]UserView, 0, len(us))
	for _, u := range us {
		out = append(out, toUserView(u))
	}
	return out
}

func toMeasureView(m domain.Measure) MeasureView {
	return MeasureView{Measure: m, BMI: domain.RoundBMI(m.BMI())}
}

func toMeasureViews(ms []domain.Measure) []MeasureView {
	out := make([]MeasureView, 0, len(ms))
	for _, m := range ms {
		out = append(out, toMeasureView(m))
	}
	return out
}
