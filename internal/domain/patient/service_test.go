package patient

import (
	"context"
	"errors"
	"sort"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// -- Mock repository --

type mockRepo struct {
	patients map[uuid.UUID]*Patient

	orchestrationCalls int
	updateCalls        int
	failOrchestration  bool
}

func newMockRepo() *mockRepo {
	return &mockRepo{patients: make(map[uuid.UUID]*Patient)}
}

func (m *mockRepo) Create(_ context.Context, p *Patient) error {
	for _, existing := range m.patients {
		if existing.Email == p.Email {
			return ErrDuplicateEmail
		}
	}
	p.ID = uuid.New()
	p.CreatedAt = time.Now()
	clone := *p
	m.patients[p.ID] = &clone
	return nil
}

func (m *mockRepo) GetByID(_ context.Context, id uuid.UUID) (*Patient, error) {
	p, ok := m.patients[id]
	if !ok {
		return nil, ErrNotFound
	}
	clone := *p
	return &clone, nil
}

func (m *mockRepo) Search(_ context.Context, query string, limit, offset int) ([]*Patient, int, error) {
	var all []*Patient
	for _, p := range m.patients {
		if query == "" || strings.Contains(p.Name, query) || strings.Contains(p.Email, query) {
			all = append(all, p)
		}
	}
	sort.Slice(all, func(i, j int) bool { return all[i].Email < all[j].Email })

	total := len(all)
	if offset >= total {
		return nil, total, nil
	}
	end := offset + limit
	if end > total {
		end = total
	}
	return all[offset:end], total, nil
}

func (m *mockRepo) Update(_ context.Context, p *Patient) error {
	m.updateCalls++
	stored, ok := m.patients[p.ID]
	if !ok {
		return ErrNotFound
	}
	p.CreatedAt = stored.CreatedAt
	p.IsOutlier = stored.IsOutlier
	p.GeneratedActions = stored.GeneratedActions
	clone := *p
	m.patients[p.ID] = &clone
	return nil
}

func (m *mockRepo) UpdateOrchestration(_ context.Context, id uuid.UUID, isOutlier *bool, actions *string) error {
	m.orchestrationCalls++
	if m.failOrchestration {
		return errors.New("database gone")
	}
	p, ok := m.patients[id]
	if !ok {
		return ErrNotFound
	}
	p.IsOutlier = isOutlier
	if actions != nil {
		p.GeneratedActions = actions
	}
	return nil
}

func (m *mockRepo) Delete(_ context.Context, id uuid.UUID) error {
	if _, ok := m.patients[id]; !ok {
		return ErrNotFound
	}
	delete(m.patients, id)
	return nil
}

// -- Fake downstream services --

type fakeClassifier struct {
	isOutlier bool
	err       error
	calls     int
	features  map[string]any
}

func (f *fakeClassifier) Classify(_ context.Context, features map[string]any) (bool, error) {
	f.calls++
	f.features = features
	return f.isOutlier, f.err
}

type fakeRecommender struct {
	actions string
	err     error
	calls   int
}

func (f *fakeRecommender) Recommend(_ context.Context, _ map[string]any) (string, error) {
	f.calls++
	return f.actions, f.err
}

func newTestService(repo *mockRepo, cls *fakeClassifier, rec *fakeRecommender) *Service {
	return NewService(repo, cls, rec, zerolog.Nop())
}

func validPatient(email string) *Patient {
	address := "12 Harbor Lane"
	sex := "F"
	return &Patient{
		Email:          email,
		Name:           "Ana Souza",
		Address:        &address,
		BirthDate:      Date{time.Date(1960, 3, 15, 0, 0, 0, 0, time.UTC)},
		Sex:            &sex,
		Smoker:         false,
		VisitsLastYear: 2,
		BMI:            27.4,
		SystolicMmHg:   130,
		DiastolicMmHg:  85,
	}
}

// -- Create --

func TestCreate_StablePatient(t *testing.T) {
	repo := newMockRepo()
	cls := &fakeClassifier{isOutlier: false}
	rec := &fakeRecommender{}
	svc := newTestService(repo, cls, rec)

	p, err := svc.Create(context.Background(), validPatient("ana@clinic.example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsOutlier == nil || *p.IsOutlier {
		t.Error("expected is_outlier false")
	}
	if p.GeneratedActions == nil || *p.GeneratedActions != StableActionsMessage {
		t.Errorf("expected the fixed stable message, got %v", p.GeneratedActions)
	}
	if rec.calls != 0 {
		t.Errorf("recommender must not be called for stable patients, called %d times", rec.calls)
	}

	stored, _ := repo.GetByID(context.Background(), p.ID)
	if stored.GeneratedActions == nil || *stored.GeneratedActions != StableActionsMessage {
		t.Error("expected stable message persisted")
	}
}

func TestCreate_OutlierPatient(t *testing.T) {
	repo := newMockRepo()
	cls := &fakeClassifier{isOutlier: true}
	rec := &fakeRecommender{actions: "Schedule a cardiology consult within 30 days."}
	svc := newTestService(repo, cls, rec)

	p, err := svc.Create(context.Background(), validPatient("ana@clinic.example"))
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if p.IsOutlier == nil || !*p.IsOutlier {
		t.Error("expected is_outlier true")
	}
	if p.GeneratedActions == nil || *p.GeneratedActions != rec.actions {
		t.Errorf("expected verbatim recommender text, got %v", p.GeneratedActions)
	}
	if rec.calls != 1 {
		t.Errorf("expected exactly one recommender call, got %d", rec.calls)
	}
}

func TestCreate_DuplicateEmail(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &fakeClassifier{}, &fakeRecommender{})

	if _, err := svc.Create(context.Background(), validPatient("ana@clinic.example")); err != nil {
		t.Fatalf("first create failed: %v", err)
	}
	_, err := svc.Create(context.Background(), validPatient("ana@clinic.example"))
	if !errors.Is(err, ErrDuplicateEmail) {
		t.Fatalf("expected ErrDuplicateEmail, got %v", err)
	}
	if len(repo.patients) != 1 {
		t.Errorf("expected no duplicate record, store has %d", len(repo.patients))
	}
}

func TestCreate_ClassifierUnavailable(t *testing.T) {
	repo := newMockRepo()
	cls := &fakeClassifier{err: errors.New("classifier offline")}
	rec := &fakeRecommender{}
	svc := newTestService(repo, cls, rec)

	p, err := svc.Create(context.Background(), validPatient("ana@clinic.example"))
	if err != nil {
		t.Fatalf("classifier failure must not fail the request: %v", err)
	}
	if p.IsOutlier != nil {
		t.Error("expected is_outlier to stay absent")
	}
	if p.GeneratedActions != nil {
		t.Error("expected generated actions to stay absent")
	}
	if rec.calls != 0 {
		t.Error("recommender must not be called when classification failed")
	}
	if repo.orchestrationCalls != 0 {
		t.Error("results must not be persisted when classification failed")
	}
}

func TestCreate_RecommenderUnavailable(t *testing.T) {
	repo := newMockRepo()
	cls := &fakeClassifier{isOutlier: true}
	rec := &fakeRecommender{err: errors.New("recommender offline")}
	svc := newTestService(repo, cls, rec)

	p, err := svc.Create(context.Background(), validPatient("ana@clinic.example"))
	if err != nil {
		t.Fatalf("recommender failure must not fail the request: %v", err)
	}
	if p.IsOutlier == nil || !*p.IsOutlier {
		t.Error("expected the outlier flag to survive the recommender failure")
	}
	if p.GeneratedActions != nil {
		t.Error("expected generated actions to stay unset, not fall back")
	}

	stored, _ := repo.GetByID(context.Background(), p.ID)
	if stored.IsOutlier == nil || !*stored.IsOutlier {
		t.Error("expected outlier flag persisted despite recommender failure")
	}
	if stored.GeneratedActions != nil {
		t.Error("expected no actions text persisted")
	}
}

func TestCreate_PersistFailureContained(t *testing.T) {
	repo := newMockRepo()
	repo.failOrchestration = true
	svc := newTestService(repo, &fakeClassifier{isOutlier: false}, &fakeRecommender{})

	if _, err := svc.Create(context.Background(), validPatient("ana@clinic.example")); err != nil {
		t.Fatalf("orchestration persist failure must not fail the request: %v", err)
	}
}

func TestCreate_Validation(t *testing.T) {
	svc := newTestService(newMockRepo(), &fakeClassifier{}, &fakeRecommender{})

	cases := []struct {
		name   string
		mutate func(*Patient)
	}{
		{"missing email", func(p *Patient) { p.Email = "" }},
		{"missing name", func(p *Patient) { p.Name = "" }},
		{"missing birth date", func(p *Patient) { p.BirthDate = Date{} }},
	}
	for _, tc := range cases {
		p := validPatient("ana@clinic.example")
		tc.mutate(p)
		if _, err := svc.Create(context.Background(), p); err == nil {
			t.Errorf("%s: expected validation error", tc.name)
		}
	}
}

// -- Feature derivation --

func TestCreate_FeatureMap(t *testing.T) {
	repo := newMockRepo()
	cls := &fakeClassifier{isOutlier: false}
	svc := newTestService(repo, cls, &fakeRecommender{})

	if _, err := svc.Create(context.Background(), validPatient("ana@clinic.example")); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	for _, identity := range []string{"name", "email", "address", "birth_date"} {
		if _, ok := cls.features[identity]; ok {
			t.Errorf("identity field %q must be stripped from the feature map", identity)
		}
	}
	if _, ok := cls.features["age"]; !ok {
		t.Error("expected derived age in the feature map")
	}
	if cls.features["bmi"] != 27.4 {
		t.Errorf("expected bmi 27.4, got %v", cls.features["bmi"])
	}
}

func TestAgeAt(t *testing.T) {
	today := time.Date(2026, 8, 31, 12, 0, 0, 0, time.UTC)
	cases := []struct {
		name string
		born time.Time
		age  int
	}{
		{"birthday passed", time.Date(1990, 3, 15, 0, 0, 0, 0, time.UTC), 36},
		{"birthday today", time.Date(1990, 8, 31, 0, 0, 0, 0, time.UTC), 36},
		{"birthday tomorrow", time.Date(1990, 9, 1, 0, 0, 0, 0, time.UTC), 35},
		{"birthday next month", time.Date(1990, 12, 25, 0, 0, 0, 0, time.UTC), 35},
	}
	for _, tc := range cases {
		if got := AgeAt(tc.born, today); got != tc.age {
			t.Errorf("%s: expected age %d, got %d", tc.name, tc.age, got)
		}
	}
}

// -- Update --

func TestUpdate_RerunsOrchestration(t *testing.T) {
	repo := newMockRepo()
	cls := &fakeClassifier{isOutlier: false}
	svc := newTestService(repo, cls, &fakeRecommender{})

	p, err := svc.Create(context.Background(), validPatient("ana@clinic.example"))
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	// Unchanged payload still re-runs the full workflow.
	updated, err := svc.Update(context.Background(), p.ID, validPatient("ana@clinic.example"))
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if cls.calls != 2 {
		t.Errorf("expected classification on create and update, got %d calls", cls.calls)
	}
	if updated.GeneratedActions == nil || *updated.GeneratedActions != StableActionsMessage {
		t.Error("expected stable message after update")
	}
}

func TestUpdate_NotFound(t *testing.T) {
	repo := newMockRepo()
	cls := &fakeClassifier{}
	svc := newTestService(repo, cls, &fakeRecommender{})

	_, err := svc.Update(context.Background(), uuid.New(), validPatient("ana@clinic.example"))
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
	if cls.calls != 0 {
		t.Error("orchestration must not run for a missing record")
	}
	if len(repo.patients) != 0 {
		t.Error("store must not be mutated")
	}
}

// -- Round trip --

func TestCreate_RoundTrip(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &fakeClassifier{isOutlier: false}, &fakeRecommender{})

	in := validPatient("ana@clinic.example")
	created, err := svc.Create(context.Background(), in)
	if err != nil {
		t.Fatalf("create: %v", err)
	}

	got, err := svc.Get(context.Background(), created.ID)
	if err != nil {
		t.Fatalf("get: %v", err)
	}
	if got.Email != in.Email || got.Name != in.Name {
		t.Error("identity fields did not round-trip")
	}
	if !got.BirthDate.Equal(in.BirthDate.Time) {
		t.Error("birth date did not round-trip")
	}
	if got.BMI != in.BMI || got.SystolicMmHg != in.SystolicMmHg || got.VisitsLastYear != in.VisitsLastYear {
		t.Error("clinical fields did not round-trip")
	}
	if got.Address == nil || *got.Address != *in.Address {
		t.Error("address did not round-trip")
	}
}

func TestDelete(t *testing.T) {
	repo := newMockRepo()
	svc := newTestService(repo, &fakeClassifier{}, &fakeRecommender{})

	p, _ := svc.Create(context.Background(), validPatient("ana@clinic.example"))
	if err := svc.Delete(context.Background(), p.ID); err != nil {
		t.Fatalf("delete: %v", err)
	}
	if err := svc.Delete(context.Background(), p.ID); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound on second delete, got %v", err)
	}
}
