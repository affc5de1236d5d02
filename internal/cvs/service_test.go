package cvs

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"testing"

	"cv-backend/internal/cvform"
	"cv-backend/internal/generation"
	"cv-backend/internal/resumes"
)

// spyStore wraps a real store and records write calls.
type spyStore struct {
	*resumes.Store
	mu     sync.Mutex
	writes []string
	failOn string
	err    error
}

func newSpyStore() *spyStore {
	return &spyStore{Store: resumes.NewStore(resumes.NewMemoryRepo(), resumes.NewHub())}
}

func (s *spyStore) record(op string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.writes = append(s.writes, op)
	if s.failOn == op {
		return s.err
	}
	return nil
}

func (s *spyStore) writeCount() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.writes)
}

func (s *spyStore) Create(ctx context.Context, ownerID string, cv cvform.CV) (resumes.Record, error) {
	if err := s.record("create"); err != nil {
		return resumes.Record{}, err
	}
	return s.Store.Create(ctx, ownerID, cv)
}

func (s *spyStore) Update(ctx context.Context, id string, patch resumes.Patch) (resumes.Record, error) {
	if err := s.record("update"); err != nil {
		return resumes.Record{}, err
	}
	return s.Store.Update(ctx, id, patch)
}

func (s *spyStore) Delete(ctx context.Context, id string) error {
	if err := s.record("delete"); err != nil {
		return err
	}
	return s.Store.Delete(ctx, id)
}

// mockGateway returns a fixed result or error.
type mockGateway struct {
	result   generation.Result
	err      error
	requests []generation.Request
	docTypes [][]generation.DocType
}

func (m *mockGateway) Generate(ctx context.Context, req generation.Request, docTypes ...generation.DocType) (generation.Result, error) {
	m.requests = append(m.requests, req)
	m.docTypes = append(m.docTypes, docTypes)
	if m.err != nil {
		return generation.Result{}, m.err
	}
	return m.result, nil
}

func (m *mockGateway) SuggestSkills(ctx context.Context, jobTitle string) ([]string, error) {
	return []string{"Go"}, m.err
}

func (m *mockGateway) SummarizeExperience(ctx context.Context, text string) (string, error) {
	return "summary", m.err
}

func validInput() cvform.FormInput {
	return cvform.FormInput{
		PersonalInfo: cvform.PersonalInfo{
			Name:    "山田 太郎",
			Email:   "taro@example.com",
			Phone:   "090-1234-5678",
			Address: "Tokyo",
			DOB:     "1990-04-01",
			Gender:  "male",
		},
		JobTitle:       "Frontend Engineer",
		Education:      []cvform.Education{{Institution: "Waseda", Degree: "BA", Major: "Economics", GraduationDate: "2013-03"}},
		Experience:     []cvform.Experience{{Company: "Acme", Position: "Engineer", StartDate: "2013-04", EndDate: "2023-03", Responsibilities: "Web apps"}},
		Skills:         cvform.Skills{Selected: []string{"React", "AWS"}, Other: "Figma, SQL, React"},
		Certifications: []cvform.Certification{{Name: "基本情報技術者", Date: "2014-10"}},
		Goals:          "Grow into a tech lead",
	}
}

func newTestService(gw *mockGateway) (*Service, *spyStore) {
	store := newSpyStore()
	if gw == nil {
		gw = &mockGateway{}
	}
	return &Service{Store: store, Gateway: gw}, store
}

func TestSaveThenGetReturnsFormFields(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	in := validInput()

	id, err := svc.SaveCv(ctx, "owner-1", in, "")
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	rec, found, err := svc.GetCv(ctx, id, "owner-1")
	if err != nil || !found {
		t.Fatalf("get: found=%v err=%v", found, err)
	}
	want, _ := cvform.Validate(in)
	if !reflect.DeepEqual(rec.CV, want) {
		t.Fatalf("form fields differ:\n got %+v\nwant %+v", rec.CV, want)
	}
	if rec.FormattedResumeDoc != nil || rec.CareerHistoryDoc != nil {
		t.Fatalf("documents must be unset after first save")
	}
	if rec.OwnerID != "owner-1" {
		t.Fatalf("unexpected owner %q", rec.OwnerID)
	}
}

func TestSaveInvalidInputNeverWrites(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*cvform.FormInput)
	}{
		{name: "empty goals", mutate: func(in *cvform.FormInput) { in.Goals = "  " }},
		{name: "no education", mutate: func(in *cvform.FormInput) { in.Education = nil }},
		{name: "bad email", mutate: func(in *cvform.FormInput) { in.PersonalInfo.Email = "nope" }},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			svc, store := newTestService(nil)
			in := validInput()
			tt.mutate(&in)

			_, err := svc.SaveCv(context.Background(), "owner-1", in, "")
			if !errors.Is(err, cvform.ErrInvalid) {
				t.Fatalf("expected validation error, got %v", err)
			}
			if store.writeCount() != 0 {
				t.Fatalf("expected zero store writes, got %v", store.writes)
			}
		})
	}
}

func TestSaveExistingReplacesFormOnly(t *testing.T) {
	gw := &mockGateway{result: generation.Result{ResumeDoc: "R"}}
	svc, _ := newTestService(gw)
	ctx := context.Background()

	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")
	if err := svc.GenerateDocument(ctx, id, "owner-1", generation.DocResume); err != nil {
		t.Fatalf("generate: %v", err)
	}

	in := validInput()
	in.Goals = "Become a CTO"
	if got, err := svc.SaveCv(ctx, "owner-1", in, id); err != nil || got != id {
		t.Fatalf("update: id=%q err=%v", got, err)
	}
	rec, _, _ := svc.GetCv(ctx, id, "owner-1")
	if rec.Goals != "Become a CTO" {
		t.Fatalf("form not updated: %q", rec.Goals)
	}
	if rec.FormattedResumeDoc == nil || *rec.FormattedResumeDoc != "R" {
		t.Fatalf("document must survive a form save")
	}
}

func TestSaveExistingOwnedByOther(t *testing.T) {
	svc, store := newTestService(nil)
	ctx := context.Background()
	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")
	before := store.writeCount()

	if _, err := svc.SaveCv(ctx, "intruder", validInput(), id); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
	if store.writeCount() != before {
		t.Fatalf("expected no writes")
	}
}

func TestGenerateDocumentWritesOnlyRequestedField(t *testing.T) {
	gw := &mockGateway{result: generation.Result{ResumeDoc: "X"}}
	svc, store := newTestService(gw)
	ctx := context.Background()

	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")
	career := "existing career"
	if _, err := store.Store.Update(ctx, id, resumes.Patch{CareerHistoryDoc: &career}); err != nil {
		t.Fatalf("seed: %v", err)
	}
	before, _, _ := svc.GetCv(ctx, id, "owner-1")

	if err := svc.GenerateDocument(ctx, id, "owner-1", generation.DocResume); err != nil {
		t.Fatalf("generate: %v", err)
	}
	after, _, _ := svc.GetCv(ctx, id, "owner-1")

	if after.FormattedResumeDoc == nil || *after.FormattedResumeDoc != "X" {
		t.Fatalf("expected resume doc X, got %v", after.FormattedResumeDoc)
	}
	if !reflect.DeepEqual(after.CareerHistoryDoc, before.CareerHistoryDoc) {
		t.Fatalf("career history changed")
	}
	if !reflect.DeepEqual(after.CV, before.CV) {
		t.Fatalf("form fields changed")
	}
	if !reflect.DeepEqual(gw.docTypes[0], []generation.DocType{generation.DocResume}) {
		t.Fatalf("expected exactly the requested doc type, got %v", gw.docTypes[0])
	}
	if !reflect.DeepEqual(gw.requests[0].Skills, []string{"React", "AWS", "Figma", "SQL"}) {
		t.Fatalf("unexpected derived skills %v", gw.requests[0].Skills)
	}
}

func TestGenerateDocumentNormalizesDocType(t *testing.T) {
	gw := &mockGateway{result: generation.Result{ResumeDoc: "X"}}
	svc, _ := newTestService(gw)
	ctx := context.Background()

	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")
	if err := svc.GenerateDocument(ctx, id, "owner-1", generation.DocType(" RESUMEDOC ")); err != nil {
		t.Fatalf("generate: %v", err)
	}
	after, _, _ := svc.GetCv(ctx, id, "owner-1")
	if after.FormattedResumeDoc == nil || *after.FormattedResumeDoc != "X" {
		t.Fatalf("expected resume doc X, got %v", after.FormattedResumeDoc)
	}
	if !reflect.DeepEqual(gw.docTypes[0], []generation.DocType{generation.DocResume}) {
		t.Fatalf("expected canonical doc type, got %v", gw.docTypes[0])
	}
}

func TestGenerateDocumentPermissionDenied(t *testing.T) {
	gw := &mockGateway{result: generation.Result{ResumeDoc: "X"}}
	svc, store := newTestService(gw)
	ctx := context.Background()
	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")
	before := store.writeCount()

	err := svc.GenerateDocument(ctx, id, "someone-else", generation.DocResume)
	if !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
	if err.Error() != "permission denied" {
		t.Fatalf("permission error must not leak details: %q", err.Error())
	}
	if store.writeCount() != before {
		t.Fatalf("expected zero store writes")
	}
	if len(gw.requests) != 0 {
		t.Fatalf("gateway must not be called")
	}
}

func TestGenerateDocumentNotFound(t *testing.T) {
	svc, _ := newTestService(&mockGateway{})
	err := svc.GenerateDocument(context.Background(), "missing", "owner-1", generation.DocCareerHistory)
	if !errors.Is(err, ErrNotFound) {
		t.Fatalf("expected ErrNotFound, got %v", err)
	}
}

func TestGenerateDocumentSchemaViolationLeavesRecordUnchanged(t *testing.T) {
	backendOutput := `{"resumeDoc":""}`
	gw := generation.NewGateway(fixedBackend(backendOutput), 0)
	store := newSpyStore()
	svc := &Service{Store: store, Gateway: gw}
	ctx := context.Background()

	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")
	before, _, _ := svc.GetCv(ctx, id, "owner-1")
	writes := store.writeCount()

	err := svc.GenerateDocument(ctx, id, "owner-1", generation.DocResume)
	if !errors.Is(err, generation.ErrGeneration) || !errors.Is(err, generation.ErrSchemaViolation) {
		t.Fatalf("expected generation error, got %v", err)
	}
	after, _, _ := svc.GetCv(ctx, id, "owner-1")
	if !reflect.DeepEqual(before, after) {
		t.Fatalf("record changed:\nbefore %+v\nafter  %+v", before, after)
	}
	if store.writeCount() != writes {
		t.Fatalf("expected no writes after failed generation")
	}
}

func TestDeleteThenGetIsAbsent(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")

	if err := svc.DeleteCv(ctx, id, "intruder"); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
	if err := svc.DeleteCv(ctx, id, "owner-1"); err != nil {
		t.Fatalf("delete: %v", err)
	}
	rec, found, err := svc.GetCv(ctx, id, "owner-1")
	if err != nil || found {
		t.Fatalf("expected absent without error, got found=%v err=%v", found, err)
	}
	if rec.ID != "" {
		t.Fatalf("expected zero record")
	}
}

func TestGetCvOwnedByOther(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")
	if _, _, err := svc.GetCv(ctx, id, "intruder"); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}
}

func TestStoreFailureSurfacesAsStoreError(t *testing.T) {
	svc, store := newTestService(nil)
	boom := errors.New("connection refused")
	store.failOn, store.err = "create", boom

	_, err := svc.SaveCv(context.Background(), "owner-1", validInput(), "")
	var storeErr *StoreError
	if !errors.As(err, &storeErr) || !errors.Is(err, boom) {
		t.Fatalf("expected StoreError wrapping cause, got %v", err)
	}
}

func TestListCvsScopedToOwner(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	_, _ = svc.SaveCv(ctx, "owner-1", validInput(), "")
	_, _ = svc.SaveCv(ctx, "owner-2", validInput(), "")

	recs, err := svc.ListCvs(ctx, "owner-1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(recs) != 1 || recs[0].OwnerID != "owner-1" {
		t.Fatalf("unexpected list %+v", recs)
	}
}

func TestSubscribeCvChecksOwnership(t *testing.T) {
	svc, _ := newTestService(nil)
	ctx := context.Background()
	id, _ := svc.SaveCv(ctx, "owner-1", validInput(), "")

	if _, err := svc.SubscribeCv(ctx, id, "intruder", func(*resumes.Record) {}); !errors.Is(err, ErrPermission) {
		t.Fatalf("expected ErrPermission, got %v", err)
	}

	got := make(chan *resumes.Record, 1)
	unsubscribe, err := svc.SubscribeCv(ctx, id, "owner-1", func(rec *resumes.Record) { got <- rec })
	if err != nil {
		t.Fatalf("subscribe: %v", err)
	}
	defer unsubscribe()
	if rec := <-got; rec == nil || rec.ID != id {
		t.Fatalf("unexpected initial snapshot %+v", rec)
	}
}
