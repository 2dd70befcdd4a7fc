package patient

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
)

// StableActionsMessage is stored as the generated actions text when the
// classifier reports a non-outlier. The recommendation service is not
// consulted for stable patients.
const StableActionsMessage = "Patient classified as stable. Maintain standard follow-up."

// Risk labels derived at read time from the outlier flag. They are pure
// presentation values and are never persisted.
const (
	RiskNotComputed = "not computed"
	RiskCritical    = "critical"
	RiskStable      = "stable"
)

// NoRecommendationMessage is shown when no actions text has been generated yet.
const NoRecommendationMessage = "No recommendation generated."

// Date is a calendar date that travels as "YYYY-MM-DD" on the wire.
type Date struct {
	time.Time
}

const dateLayout = "2006-01-02"

func (d Date) MarshalJSON() ([]byte, error) {
	return []byte(`"` + d.Format(dateLayout) + `"`), nil
}

func (d *Date) UnmarshalJSON(b []byte) error {
	s := strings.Trim(string(b), `"`)
	if s == "" || s == "null" {
		return fmt.Errorf("birth date is required")
	}
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return fmt.Errorf("invalid date %q, expected YYYY-MM-DD", s)
	}
	d.Time = t
	return nil
}

// Patient maps to the pacientes table.
type Patient struct {
	ID      uuid.UUID `db:"id" json:"id"`
	Email   string    `db:"email" json:"email"`
	Name    string    `db:"name" json:"name"`
	Address *string   `db:"address" json:"address,omitempty"`

	BirthDate Date `db:"birth_date" json:"birth_date"`

	// Demographics
	Sex           *string `db:"sex" json:"sex,omitempty"`
	Education     *string `db:"education" json:"education,omitempty"`
	IncomeBracket *string `db:"income_bracket" json:"income_bracket,omitempty"`

	// Lifestyle
	PhysicalActivity *string `db:"physical_activity" json:"physical_activity,omitempty"`
	AlcoholUse       *string `db:"alcohol_use" json:"alcohol_use,omitempty"`
	Smoker           bool    `db:"smoker" json:"smoker"`
	DietQuality      *string `db:"diet_quality" json:"diet_quality,omitempty"`
	SleepQuality     *string `db:"sleep_quality" json:"sleep_quality,omitempty"`

	// Psychosocial
	StressLevel   *string `db:"stress_level" json:"stress_level,omitempty"`
	SocialSupport *string `db:"social_support" json:"social_support,omitempty"`

	// History and access
	FamilyDiseaseHistory bool    `db:"family_disease_history" json:"family_disease_history"`
	HealthcareAccess     *string `db:"healthcare_access" json:"healthcare_access,omitempty"`
	MedicationAdherence  *string `db:"medication_adherence" json:"medication_adherence,omitempty"`
	VisitsLastYear       int     `db:"visits_last_year" json:"visits_last_year"`

	// Clinical measurements
	BMI                  float64 `db:"bmi" json:"bmi"`
	SystolicMmHg         int     `db:"systolic_mmhg" json:"systolic_mmhg"`
	DiastolicMmHg        int     `db:"diastolic_mmhg" json:"diastolic_mmhg"`
	FastingGlucoseMgDl   int     `db:"fasting_glucose_mg_dl" json:"fasting_glucose_mg_dl"`
	TotalCholesterolMgDl int     `db:"total_cholesterol_mg_dl" json:"total_cholesterol_mg_dl"`
	HDLMgDl              int     `db:"hdl_mg_dl" json:"hdl_mg_dl"`
	TriglyceridesMgDl    int     `db:"triglycerides_mg_dl" json:"triglycerides_mg_dl"`

	CreatedAt time.Time `db:"created_at" json:"created_at"`

	// Orchestration results. Absent until the workflow has run at least once;
	// they stay absent permanently if it never succeeds.
	IsOutlier        *bool   `db:"is_outlier" json:"is_outlier,omitempty"`
	GeneratedActions *string `db:"generated_actions" json:"generated_actions,omitempty"`
}

// View is the API representation of a patient: the stored record plus the
// read-time presentation fields the frontend expects.
type View struct {
	*Patient
	RiskDiabetes          string `json:"risk_diabetes"`
	RiskHypertension      string `json:"risk_hypertension"`
	GeneralRecommendation string `json:"general_recommendation"`
}

// NewView maps a stored record to its API representation.
func NewView(p *Patient) *View {
	risk := riskLabel(p.IsOutlier)
	rec := NoRecommendationMessage
	if p.GeneratedActions != nil && *p.GeneratedActions != "" {
		rec = *p.GeneratedActions
	}
	return &View{
		Patient:               p,
		RiskDiabetes:          risk,
		RiskHypertension:      risk,
		GeneralRecommendation: rec,
	}
}

// NewViews maps a page of records.
func NewViews(patients []*Patient) []*View {
	views := make([]*View, 0, len(patients))
	for _, p := range patients {
		views = append(views, NewView(p))
	}
	return views
}

func riskLabel(isOutlier *bool) string {
	switch {
	case isOutlier == nil:
		return RiskNotComputed
	case *isOutlier:
		return RiskCritical
	default:
		return RiskStable
	}
}
