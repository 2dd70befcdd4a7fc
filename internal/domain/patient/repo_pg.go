package patient

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type repoPG struct {
	pool *pgxpool.Pool
}

func NewRepo(pool *pgxpool.Pool) Repository {
	return &repoPG{pool: pool}
}

const patientCols = `id, email, name, address, birth_date,
	sex, education, income_bracket,
	physical_activity, alcohol_use, smoker, diet_quality, sleep_quality,
	stress_level, social_support,
	family_disease_history, healthcare_access, medication_adherence, visits_last_year,
	bmi, systolic_mmhg, diastolic_mmhg, fasting_glucose_mg_dl,
	total_cholesterol_mg_dl, hdl_mg_dl, triglycerides_mg_dl,
	created_at, is_outlier, generated_actions`

func (r *repoPG) Create(ctx context.Context, p *Patient) error {
	p.ID = uuid.New()

	err := r.pool.QueryRow(ctx, `
		INSERT INTO pacientes (
			id, email, name, address, birth_date,
			sex, education, income_bracket,
			physical_activity, alcohol_use, smoker, diet_quality, sleep_quality,
			stress_level, social_support,
			family_disease_history, healthcare_access, medication_adherence, visits_last_year,
			bmi, systolic_mmhg, diastolic_mmhg, fasting_glucose_mg_dl,
			total_cholesterol_mg_dl, hdl_mg_dl, triglycerides_mg_dl
		) VALUES (
			$1,$2,$3,$4,$5,
			$6,$7,$8,
			$9,$10,$11,$12,$13,
			$14,$15,
			$16,$17,$18,$19,
			$20,$21,$22,$23,
			$24,$25,$26
		) RETURNING created_at`,
		p.ID, p.Email, p.Name, p.Address, p.BirthDate.Time,
		p.Sex, p.Education, p.IncomeBracket,
		p.PhysicalActivity, p.AlcoholUse, p.Smoker, p.DietQuality, p.SleepQuality,
		p.StressLevel, p.SocialSupport,
		p.FamilyDiseaseHistory, p.HealthcareAccess, p.MedicationAdherence, p.VisitsLastYear,
		p.BMI, p.SystolicMmHg, p.DiastolicMmHg, p.FastingGlucoseMgDl,
		p.TotalCholesterolMgDl, p.HDLMgDl, p.TriglyceridesMgDl,
	).Scan(&p.CreatedAt)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("insert patient: %w", err)
	}
	return nil
}

func (r *repoPG) GetByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	p, err := scanPatient(r.pool.QueryRow(ctx, `SELECT `+patientCols+` FROM pacientes WHERE id = $1`, id))
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("get patient by id: %w", err)
	}
	return p, nil
}

func (r *repoPG) Search(ctx context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	where := ``
	args := []any{}
	if query != "" {
		where = ` WHERE name ILIKE $1 OR email ILIKE $1`
		args = append(args, "%"+query+"%")
	}

	var total int
	if err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM pacientes`+where, args...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("count patients: %w", err)
	}

	args = append(args, limit, offset)
	rows, err := r.pool.Query(ctx, fmt.Sprintf(
		`SELECT %s FROM pacientes%s ORDER BY created_at DESC, id LIMIT $%d OFFSET $%d`,
		patientCols, where, len(args)-1, len(args)), args...)
	if err != nil {
		return nil, 0, fmt.Errorf("search patients: %w", err)
	}
	defer rows.Close()

	var patients []*Patient
	for rows.Next() {
		p, err := scanPatient(rows)
		if err != nil {
			return nil, 0, fmt.Errorf("scan patient: %w", err)
		}
		patients = append(patients, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, fmt.Errorf("iterate patients: %w", err)
	}

	return patients, total, nil
}

func (r *repoPG) Update(ctx context.Context, p *Patient) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pacientes SET
			email=$2, name=$3, address=$4, birth_date=$5,
			sex=$6, education=$7, income_bracket=$8,
			physical_activity=$9, alcohol_use=$10, smoker=$11, diet_quality=$12, sleep_quality=$13,
			stress_level=$14, social_support=$15,
			family_disease_history=$16, healthcare_access=$17, medication_adherence=$18, visits_last_year=$19,
			bmi=$20, systolic_mmhg=$21, diastolic_mmhg=$22, fasting_glucose_mg_dl=$23,
			total_cholesterol_mg_dl=$24, hdl_mg_dl=$25, triglycerides_mg_dl=$26
		WHERE id = $1`,
		p.ID, p.Email, p.Name, p.Address, p.BirthDate.Time,
		p.Sex, p.Education, p.IncomeBracket,
		p.PhysicalActivity, p.AlcoholUse, p.Smoker, p.DietQuality, p.SleepQuality,
		p.StressLevel, p.SocialSupport,
		p.FamilyDiseaseHistory, p.HealthcareAccess, p.MedicationAdherence, p.VisitsLastYear,
		p.BMI, p.SystolicMmHg, p.DiastolicMmHg, p.FastingGlucoseMgDl,
		p.TotalCholesterolMgDl, p.HDLMgDl, p.TriglyceridesMgDl,
	)
	if isUniqueViolation(err) {
		return ErrDuplicateEmail
	}
	if err != nil {
		return fmt.Errorf("update patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}

	// Refresh server-assigned fields and prior orchestration results.
	stored, err := r.GetByID(ctx, p.ID)
	if err != nil {
		return err
	}
	p.CreatedAt = stored.CreatedAt
	p.IsOutlier = stored.IsOutlier
	p.GeneratedActions = stored.GeneratedActions
	return nil
}

func (r *repoPG) UpdateOrchestration(ctx context.Context, id uuid.UUID, isOutlier *bool, actions *string) error {
	tag, err := r.pool.Exec(ctx, `
		UPDATE pacientes SET
			is_outlier = $2,
			generated_actions = COALESCE($3, generated_actions)
		WHERE id = $1`,
		id, isOutlier, actions,
	)
	if err != nil {
		return fmt.Errorf("update orchestration results: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func (r *repoPG) Delete(ctx context.Context, id uuid.UUID) error {
	tag, err := r.pool.Exec(ctx, `DELETE FROM pacientes WHERE id = $1`, id)
	if err != nil {
		return fmt.Errorf("delete patient: %w", err)
	}
	if tag.RowsAffected() == 0 {
		return ErrNotFound
	}
	return nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanPatient(row rowScanner) (*Patient, error) {
	p := &Patient{}
	var birthDate time.Time
	err := row.Scan(
		&p.ID, &p.Email, &p.Name, &p.Address, &birthDate,
		&p.Sex, &p.Education, &p.IncomeBracket,
		&p.PhysicalActivity, &p.AlcoholUse, &p.Smoker, &p.DietQuality, &p.SleepQuality,
		&p.StressLevel, &p.SocialSupport,
		&p.FamilyDiseaseHistory, &p.HealthcareAccess, &p.MedicationAdherence, &p.VisitsLastYear,
		&p.BMI, &p.SystolicMmHg, &p.DiastolicMmHg, &p.FastingGlucoseMgDl,
		&p.TotalCholesterolMgDl, &p.HDLMgDl, &p.TriglyceridesMgDl,
		&p.CreatedAt, &p.IsOutlier, &p.GeneratedActions,
	)
	if err != nil {
		return nil, err
	}
	p.BirthDate = Date{birthDate}
	return p, nil
}
