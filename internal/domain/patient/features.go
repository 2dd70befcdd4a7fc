package patient

import "time"

// Features flattens a record into the map sent to the classification and
// recommendation services. Identity fields (name, email, address, birth date)
// are stripped; the birth date is replaced by the age derived at call time.
// Age is never stored.
func Features(p *Patient, today time.Time) map[string]any {
	return map[string]any{
		"age":                     AgeAt(p.BirthDate.Time, today),
		"sex":                     deref(p.Sex),
		"education":               deref(p.Education),
		"income_bracket":          deref(p.IncomeBracket),
		"physical_activity":       deref(p.PhysicalActivity),
		"alcohol_use":             deref(p.AlcoholUse),
		"smoker":                  p.Smoker,
		"diet_quality":            deref(p.DietQuality),
		"sleep_quality":           deref(p.SleepQuality),
		"stress_level":            deref(p.StressLevel),
		"social_support":          deref(p.SocialSupport),
		"family_disease_history":  p.FamilyDiseaseHistory,
		"healthcare_access":       deref(p.HealthcareAccess),
		"medication_adherence":    deref(p.MedicationAdherence),
		"visits_last_year":        p.VisitsLastYear,
		"bmi":                     p.BMI,
		"systolic_mmhg":           p.SystolicMmHg,
		"diastolic_mmhg":          p.DiastolicMmHg,
		"fasting_glucose_mg_dl":   p.FastingGlucoseMgDl,
		"total_cholesterol_mg_dl": p.TotalCholesterolMgDl,
		"hdl_mg_dl":               p.HDLMgDl,
		"triglycerides_mg_dl":     p.TriglyceridesMgDl,
	}
}

// AgeAt returns the age in whole years at the given date. A birthday that has
// not yet been reached this year does not count.
func AgeAt(born, today time.Time) int {
	age := today.Year() - born.Year()
	if today.Month() < born.Month() ||
		(today.Month() == born.Month() && today.Day() < born.Day()) {
		age--
	}
	return age
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
