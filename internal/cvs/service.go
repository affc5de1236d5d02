package cvs

import (
	"context"
	"errors"
	"fmt"

	"cv-backend/internal/cvform"
	"cv-backend/internal/generation"
	"cv-backend/internal/resumes"
	"cv-backend/internal/shared/metrics"
	"cv-backend/internal/shared/telemetry"
)

// ResumeStore is the persistence surface the orchestrator needs.
type ResumeStore interface {
	Create(ctx context.Context, ownerID string, cv cvform.CV) (resumes.Record, error)
	Update(ctx context.Context, id string, patch resumes.Patch) (resumes.Record, error)
	Delete(ctx context.Context, id string) error
	GetByID(ctx context.Context, id string) (resumes.Record, error)
	ListByOwner(ctx context.Context, ownerID string) ([]resumes.Record, error)
	Subscribe(ctx context.Context, ownerID string, fn func([]resumes.Record)) (resumes.Unsubscribe, error)
	SubscribeOne(ctx context.Context, id string, fn func(*resumes.Record)) (resumes.Unsubscribe, error)
}

// Generator produces documents and the auxiliary suggestions.
type Generator interface {
	Generate(ctx context.Context, req generation.Request, docTypes ...generation.DocType) (generation.Result, error)
	SuggestSkills(ctx context.Context, jobTitle string) ([]string, error)
	SummarizeExperience(ctx context.Context, text string) (string, error)
}

// Service orchestrates validation, generation and persistence of CVs. It is
// the only place owner access is checked.
type Service struct {
	Store   ResumeStore
	Gateway Generator
}

// SaveCv validates the form and creates a record, or replaces the form fields
// of existingID. Document fields are never touched.
func (s *Service) SaveCv(ctx context.Context, ownerID string, in cvform.FormInput, existingID string) (string, error) {
	cv, err := cvform.Validate(in)
	if err != nil {
		return "", err
	}

	if existingID == "" {
		rec, err := s.Store.Create(ctx, ownerID, cv)
		if err != nil {
			return "", &StoreError{Op: "create", Err: err}
		}
		metrics.IncCvSaved()
		telemetry.Info("cv.created", map[string]any{"resume_id": rec.ID, "user_id": ownerID})
		return rec.ID, nil
	}

	if _, err := s.load(ctx, existingID, ownerID); err != nil {
		return "", err
	}
	if _, err := s.Store.Update(ctx, existingID, resumes.Patch{Form: &cv}); err != nil {
		return "", storeErr("update", err)
	}
	metrics.IncCvSaved()
	telemetry.Info("cv.updated", map[string]any{"resume_id": existingID, "user_id": ownerID})
	return existingID, nil
}

// GenerateDocument generates one document from the stored form and writes
// only that document field. On failure the record is left unchanged.
func (s *Service) GenerateDocument(ctx context.Context, id, ownerID string, docType generation.DocType) error {
	docType, err := generation.ParseDocType(string(docType))
	if err != nil {
		return err
	}
	rec, err := s.load(ctx, id, ownerID)
	if err != nil {
		return err
	}

	res, err := s.Gateway.Generate(ctx, generation.NewRequest(rec.CV), docType)
	if err != nil {
		return err
	}

	doc := res.Doc(docType)
	var patch resumes.Patch
	switch docType {
	case generation.DocResume:
		patch.FormattedResumeDoc = &doc
	case generation.DocCareerHistory:
		patch.CareerHistoryDoc = &doc
	}
	if _, err := s.Store.Update(ctx, id, patch); err != nil {
		return storeErr("update", err)
	}
	telemetry.Info("cv.document_generated", map[string]any{
		"resume_id": id,
		"user_id":   ownerID,
		"doc_type":  string(docType),
	})
	return nil
}

// DeleteCv removes an owned record.
func (s *Service) DeleteCv(ctx context.Context, id, ownerID string) error {
	if _, err := s.load(ctx, id, ownerID); err != nil {
		return err
	}
	if err := s.Store.Delete(ctx, id); err != nil {
		return storeErr("delete", err)
	}
	metrics.IncCvDeleted()
	telemetry.Info("cv.deleted", map[string]any{"resume_id": id, "user_id": ownerID})
	return nil
}

// ListCvs returns the owner's records, most recently updated first.
func (s *Service) ListCvs(ctx context.Context, ownerID string) ([]resumes.Record, error) {
	recs, err := s.Store.ListByOwner(ctx, ownerID)
	if err != nil {
		return nil, &StoreError{Op: "list", Err: err}
	}
	return recs, nil
}

// GetCv returns an owned record. A missing record is reported with
// found == false and a nil error.
func (s *Service) GetCv(ctx context.Context, id, ownerID string) (resumes.Record, bool, error) {
	rec, err := s.load(ctx, id, ownerID)
	if errors.Is(err, ErrNotFound) {
		return resumes.Record{}, false, nil
	}
	if err != nil {
		return resumes.Record{}, false, err
	}
	return rec, true, nil
}

// SubscribeCvs streams snapshots of the owner's record list to fn.
func (s *Service) SubscribeCvs(ctx context.Context, ownerID string, fn func([]resumes.Record)) (resumes.Unsubscribe, error) {
	unsubscribe, err := s.Store.Subscribe(ctx, ownerID, fn)
	if err != nil {
		return nil, &StoreError{Op: "subscribe", Err: err}
	}
	return unsubscribe, nil
}

// SubscribeCv streams snapshots of one owned record to fn; nil means deleted.
func (s *Service) SubscribeCv(ctx context.Context, id, ownerID string, fn func(*resumes.Record)) (resumes.Unsubscribe, error) {
	if _, err := s.load(ctx, id, ownerID); err != nil {
		return nil, err
	}
	unsubscribe, err := s.Store.SubscribeOne(ctx, id, func(rec *resumes.Record) {
		if rec != nil && rec.OwnerID != ownerID {
			fn(nil)
			return
		}
		fn(rec)
	})
	if err != nil {
		return nil, &StoreError{Op: "subscribe", Err: err}
	}
	return unsubscribe, nil
}

// SuggestSkills proposes skills for a job title.
func (s *Service) SuggestSkills(ctx context.Context, jobTitle string) ([]string, error) {
	return s.Gateway.SuggestSkills(ctx, jobTitle)
}

// SummarizeExperience condenses free-form work experience text.
func (s *Service) SummarizeExperience(ctx context.Context, text string) (string, error) {
	return s.Gateway.SummarizeExperience(ctx, text)
}

// load fetches a record and enforces ownership.
func (s *Service) load(ctx context.Context, id, ownerID string) (resumes.Record, error) {
	rec, err := s.Store.GetByID(ctx, id)
	if err != nil {
		return resumes.Record{}, storeErr("get", err)
	}
	if rec.OwnerID != ownerID {
		telemetry.Warn("cv.permission_denied", map[string]any{"resume_id": id, "user_id": ownerID})
		return resumes.Record{}, ErrPermission
	}
	return rec, nil
}

func storeErr(op string, err error) error {
	if errors.Is(err, resumes.ErrNotFound) {
		return fmt.Errorf("%w: %v", ErrNotFound, err)
	}
	return &StoreError{Op: op, Err: err}
}
