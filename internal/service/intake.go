package service

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/catalog"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/repository"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/storage"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/logger"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/validator"
)

// ScopeCreate is the scope of the create wizard. Edit wizards are scoped by
// product id.
const ScopeCreate = string(domain.ModeCreate)

// Messages returned to the admin on success.
const (
	SubmittedMessage = "Product saved successfully!"
	ListingRedirect  = "/fabric-products/view"
)

// IntakeDeps are the collaborators of the intake service.
type IntakeDeps struct {
	Sessions    repository.SessionRepository
	Drafts      *DraftStore
	Filters     *FilterService
	Backend     CatalogBackend
	Assembler   *Assembler
	Media       storage.Storage
	Events      EventPublisher
	Activity    repository.ActivityRepository
	MaxFileSize int64
	Logger      *slog.Logger
}

// IntakeService drives the two-step product intake wizard.
type IntakeService struct {
	sessions    repository.SessionRepository
	drafts      *DraftStore
	filters     *FilterService
	backend     CatalogBackend
	assembler   *Assembler
	media       storage.Storage
	events      EventPublisher
	activity    repository.ActivityRepository
	maxFileSize int64
	logger      *slog.Logger
}

// NewIntakeService creates a new intake service.
func NewIntakeService(deps IntakeDeps) *IntakeService {
	return &IntakeService{
		sessions:    deps.Sessions,
		drafts:      deps.Drafts,
		filters:     deps.Filters,
		backend:     deps.Backend,
		assembler:   deps.Assembler,
		media:       deps.Media,
		events:      deps.Events,
		activity:    deps.Activity,
		maxFileSize: deps.MaxFileSize,
		logger:      deps.Logger,
	}
}

// DraftUpdate is the draft after a change plus the sub-filters it touched.
type DraftUpdate struct {
	Draft       domain.Draft        `json:"draft"`
	Resolutions []domain.Resolution `json:"resolutions,omitempty"`
}

// StepResult reports the wizard after a step transition.
type StepResult struct {
	State domain.WizardState `json:"state"`
	Draft domain.Draft       `json:"draft,omitempty"`
}

// SubmitResult is returned when the backend accepts a product.
type SubmitResult struct {
	ProductID string             `json:"productId"`
	Message   string             `json:"message"`
	Redirect  string             `json:"redirect"`
	State     domain.WizardState `json:"state"`
}

// EditView is a backend product loaded into an edit wizard.
type EditView struct {
	Draft       domain.Draft        `json:"draft"`
	Resolutions []domain.Resolution `json:"resolutions"`
	State       domain.WizardState  `json:"state"`
}

// StageMediaInput holds an upload for one media slot.
type StageMediaInput struct {
	Scope       string
	Slot        string
	Filename    string
	ContentType string
	Size        int64
	Data        io.Reader
}

// State returns the wizard of scope, opening a new one when none exists.
func (s *IntakeService) State(ctx context.Context, actor Actor, scope string) (*domain.IntakeSession, error) {
	return s.session(ctx, actor.Owner, scope)
}

// GetDraft returns the durable create-mode draft with its media markers, or
// nil when nothing has been entered yet.
func (s *IntakeService) GetDraft(ctx context.Context, actor Actor) (domain.Draft, error) {
	d, err := s.drafts.Get(ctx, actor.Owner, ScopeCreate)
	if err != nil || d == nil {
		return nil, err
	}
	sess, err := s.session(ctx, actor.Owner, ScopeCreate)
	if err != nil {
		return nil, err
	}
	return d.MediaMarkers(sess.Media), nil
}

// UpdateDraft merges partial into the create-mode draft. Derived measures
// are recomputed and every sub-filter touched by the change is reconciled.
func (s *IntakeService) UpdateDraft(ctx context.Context, actor Actor, partial domain.Draft) (*DraftUpdate, error) {
	sess, err := s.openBaseStep(ctx, actor.Owner, ScopeCreate)
	if err != nil {
		return nil, err
	}

	cur, err := s.drafts.Get(ctx, actor.Owner, ScopeCreate)
	if err != nil {
		return nil, err
	}
	next := ApplyPartial(cur, partial)

	var affected []domain.FilterDefinition
	seen := make(map[string]bool)
	for field := range partial {
		for _, def := range domain.SubFiltersAffectedBy(field) {
			if !seen[def.Name] {
				seen[def.Name] = true
				affected = append(affected, def)
			}
		}
	}
	next, resolutions := s.filters.Reconcile(ctx, actor, next, affected)

	if err := s.drafts.Save(ctx, actor.Owner, ScopeCreate, next); err != nil {
		return nil, err
	}
	return &DraftUpdate{Draft: next.MediaMarkers(sess.Media), Resolutions: resolutions}, nil
}

// StageMedia stores a file for a media slot, replacing any file staged there
// before.
func (s *IntakeService) StageMedia(ctx context.Context, actor Actor, input *StageMediaInput) (*domain.MediaHandle, error) {
	if !domain.IsMediaSlot(input.Slot) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("%q is not a media slot", input.Slot))
	}
	if input.Size <= 0 {
		return nil, apperrors.InvalidInput("file size must be greater than zero")
	}
	if input.Size > s.maxFileSize {
		return nil, apperrors.InvalidInput(fmt.Sprintf("file size %d exceeds maximum allowed size of %d bytes", input.Size, s.maxFileSize))
	}
	wantType := "image/"
	if input.Slot == "video" {
		wantType = "video/"
	}
	if !strings.HasPrefix(input.ContentType, wantType) {
		return nil, apperrors.InvalidInput(fmt.Sprintf("content type %q is not allowed for %s", input.ContentType, input.Slot))
	}

	sess, err := s.session(ctx, actor.Owner, input.Scope)
	if err != nil {
		return nil, err
	}
	if sess.State == domain.StateSubmitting {
		return nil, apperrors.Conflict("cannot change media while the product is submitting")
	}

	h := domain.MediaHandle{
		Slot:        input.Slot,
		Handle:      uuid.NewString(),
		Filename:    input.Filename,
		ContentType: input.ContentType,
		Size:        input.Size,
		StagedAt:    time.Now().UTC(),
	}
	if _, err := s.media.Upload(ctx, &storage.UploadInput{
		Key:         domain.MediaKey(actor.Owner, sess.Scope(), h),
		ContentType: h.ContentType,
		Size:        h.Size,
		Data:        input.Data,
	}); err != nil {
		return nil, fmt.Errorf("stage %s: %w", input.Slot, err)
	}

	if old, ok := sess.Media[input.Slot]; ok {
		s.dropBlob(ctx, actor.Owner, sess.Scope(), old)
	}
	sess.Media[input.Slot] = h
	sess.UpdatedAt = h.StagedAt
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	return &h, nil
}

// RemoveMedia drops the file staged for slot.
func (s *IntakeService) RemoveMedia(ctx context.Context, actor Actor, scope, slot string) error {
	if !domain.IsMediaSlot(slot) {
		return apperrors.InvalidInput(fmt.Sprintf("%q is not a media slot", slot))
	}
	sess, err := s.session(ctx, actor.Owner, scope)
	if err != nil {
		return err
	}
	h, ok := sess.Media[slot]
	if !ok {
		return nil
	}
	s.dropBlob(ctx, actor.Owner, scope, h)
	delete(sess.Media, slot)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

// Next completes the create-mode base step. The validated draft becomes the
// handoff read by the metadata step and the durable draft is cleared.
func (s *IntakeService) Next(ctx context.Context, actor Actor) (*StepResult, error) {
	sess, err := s.openBaseStep(ctx, actor.Owner, ScopeCreate)
	if err != nil {
		return nil, err
	}
	d, err := s.drafts.Get(ctx, actor.Owner, ScopeCreate)
	if err != nil {
		return nil, err
	}
	d = withMarkers(sess, domain.DeriveMeasures(d.Clone()))

	return s.completeBase(ctx, sess, d)
}

// EditNext completes the edit-mode base step for productID with the record
// held by the client.
func (s *IntakeService) EditNext(ctx context.Context, actor Actor, productID string, base domain.Draft) (*StepResult, error) {
	sess, err := s.openBaseStep(ctx, actor.Owner, productID)
	if err != nil {
		return nil, err
	}
	d := domain.DeriveMeasures(domain.NormalizeRecord(base.Without("oz", "inch")))
	d, _ = s.filters.Reconcile(ctx, actor, d, domain.SubFilters())

	return s.completeBase(ctx, sess, d)
}

func (s *IntakeService) completeBase(ctx context.Context, sess *domain.IntakeSession, d domain.Draft) (*StepResult, error) {
	if err := domain.ValidateBase(d); err != nil {
		return nil, err
	}
	if err := sess.Apply(domain.EventNext, ""); err != nil {
		return nil, err
	}
	if err := s.drafts.PutHandoff(ctx, sess.Owner, sess.Scope(), d); err != nil {
		return nil, err
	}
	if sess.Mode == domain.ModeCreate {
		if err := s.drafts.Discard(ctx, sess.Owner, sess.Scope()); err != nil {
			return nil, err
		}
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.record(ctx, sess, domain.ActionStepNext, "")
	return &StepResult{State: sess.State}, nil
}

// Metadata opens the metadata step: the handed-off base record with blank
// metadata keys filled from the defaults. Without a handoff the base step
// must be completed first. Reopening after a rejection resumes editing.
func (s *IntakeService) Metadata(ctx context.Context, actor Actor, scope string) (domain.Draft, error) {
	handoff, err := s.drafts.Handoff(ctx, actor.Owner, scope)
	if err != nil {
		return nil, err
	}
	sess, err := s.session(ctx, actor.Owner, scope)
	if err != nil {
		return nil, err
	}
	if !sess.OnMetadataStep() {
		return nil, apperrors.Conflict(fmt.Sprintf("metadata step is not open while wizard is %s", sess.State))
	}
	if sess.State == domain.StateFailed {
		if err := sess.Apply(domain.EventEdit, ""); err != nil {
			return nil, err
		}
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
	}
	return withMarkers(sess, domain.ApplySEODefaults(handoff)), nil
}

// Previous returns to the base step. In create mode the handed-off record is
// written back as the durable draft so the base step reopens populated.
func (s *IntakeService) Previous(ctx context.Context, actor Actor, scope string) (*StepResult, error) {
	sess, err := s.session(ctx, actor.Owner, scope)
	if err != nil {
		return nil, err
	}
	if err := sess.Apply(domain.EventPrevious, ""); err != nil {
		return nil, err
	}

	handoff, err := s.drafts.Handoff(ctx, actor.Owner, scope)
	if err != nil && !errors.Is(err, apperrors.ErrNotFound) {
		return nil, err
	}
	var restored domain.Draft
	if handoff != nil {
		restored = handoff
		if sess.Mode == domain.ModeCreate {
			restored = handoff.Without(domain.MediaSlots...)
			if err := s.drafts.Save(ctx, actor.Owner, scope, restored); err != nil {
				return nil, err
			}
		}
		restored = withMarkers(sess, restored)
	}

	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	s.record(ctx, sess, domain.ActionStepPrevious, "")
	return &StepResult{State: sess.State, Draft: restored}, nil
}

// Submit merges the metadata step into the handed-off base record and sends
// the product to the backend: a create in create mode, an update in edit
// mode. A rejection leaves the wizard failed on the metadata step.
func (s *IntakeService) Submit(ctx context.Context, actor Actor, scope string, meta domain.Draft) (*SubmitResult, error) {
	sess, err := s.session(ctx, actor.Owner, scope)
	if err != nil {
		return nil, err
	}
	if _, err := sess.State.Next(domain.EventSubmit); err != nil {
		return nil, err
	}

	handoff, err := s.drafts.Handoff(ctx, actor.Owner, scope)
	if err != nil {
		if errors.Is(err, apperrors.ErrNotFound) {
			return nil, apperrors.Gone("The base step has expired. Please fill in the product details again.")
		}
		return nil, err
	}

	merged := Merge(handoff, meta)
	if err := domain.ValidateSubmit(merged); err != nil {
		return nil, err
	}
	if err := validateMetadata(merged); err != nil {
		return nil, err
	}

	if err := sess.Apply(domain.EventSubmit, ""); err != nil {
		return nil, err
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	payload := Coerce(merged)
	if err := s.assembler.Validate(payload); err != nil {
		var failure *domain.ValidationFailure
		if errors.As(err, &failure) {
			s.reject(ctx, sess, failure.Message)
		} else {
			s.reject(ctx, sess, "Failed to save product")
		}
		return nil, err
	}

	body, err := s.assembler.Encode(ctx, actor.Owner, scope, payload, sess.Media)
	if err != nil {
		s.reject(ctx, sess, "Failed to save product")
		return nil, err
	}

	var resp map[string]any
	if sess.Mode == domain.ModeEdit {
		resp, err = s.backend.UpdateProduct(ctx, actor.Token, sess.ProductID, body.ContentType, body.Body)
	} else {
		resp, err = s.backend.CreateProduct(ctx, actor.Token, body.ContentType, body.Body)
	}
	if err != nil {
		msg := catalog.SubmissionMessage(err)
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "product submission rejected",
			slog.String("scope", scope),
			slog.String("error", err.Error()),
		)
		s.reject(ctx, sess, msg)
		return nil, catalog.Rejection(err, catalog.CodeSubmissionRejected, msg)
	}

	productID := domain.ResolveID(resp)
	if productID == "" {
		productID = sess.ProductID
	}

	// The backend has the product; finish even if the caller went away.
	ctx = context.WithoutCancel(ctx)
	if err := sess.Apply(domain.EventAccepted, ""); err != nil {
		return nil, err
	}
	for _, h := range sess.Media {
		s.dropBlob(ctx, actor.Owner, scope, h)
	}
	sess.Media = make(map[string]domain.MediaHandle)
	if err := s.drafts.Clear(ctx, actor.Owner, scope); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to clear submitted draft",
			slog.String("scope", scope),
			slog.String("error", err.Error()),
		)
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}

	if err := s.events.PublishProductSubmitted(ctx, sess, productID, payload); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to publish product submitted event",
			slog.String("product_id", productID),
			slog.String("error", err.Error()),
		)
	}
	s.recordFor(ctx, sess, domain.ActionSubmitted, productID, "")

	logger.WithContext(ctx, s.logger).InfoContext(ctx, "product submitted",
		slog.String("product_id", productID),
		slog.String("mode", string(sess.Mode)),
	)

	return &SubmitResult{
		ProductID: productID,
		Message:   SubmittedMessage,
		Redirect:  ListingRedirect,
		State:     sess.State,
	}, nil
}

// Clear drops the draft, the handoff and every staged file of scope and
// resets the wizard.
func (s *IntakeService) Clear(ctx context.Context, actor Actor, scope string) error {
	sess, err := s.session(ctx, actor.Owner, scope)
	if err != nil {
		return err
	}
	if sess.State == domain.StateSubmitting {
		return apperrors.Conflict("cannot clear while the product is submitting")
	}
	if err := s.drafts.Clear(ctx, actor.Owner, scope); err != nil {
		return err
	}
	for _, h := range sess.Media {
		s.dropBlob(ctx, actor.Owner, scope, h)
	}
	if err := s.sessions.Delete(ctx, actor.Owner, scope); err != nil {
		return fmt.Errorf("delete session: %w", err)
	}

	if err := s.events.PublishDraftCleared(ctx, actor.Owner, scope); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to publish draft cleared event",
			slog.String("scope", scope),
			slog.String("error", err.Error()),
		)
	}
	s.record(ctx, sess, domain.ActionDraftCleared, "")
	return nil
}

// LoadForEdit fetches a product and opens an edit wizard on it. Option
// references are normalized to ids and dangling sub-filter selections are
// cleared.
func (s *IntakeService) LoadForEdit(ctx context.Context, actor Actor, productID string) (*EditView, error) {
	rec, err := s.backend.GetProduct(ctx, actor.Token, productID)
	if err != nil {
		return nil, err
	}
	d := domain.NormalizeRecord(rec)
	d, resolutions := s.filters.Reconcile(ctx, actor, d, domain.SubFilters())

	if prev, err := s.sessions.Get(ctx, actor.Owner, productID); err == nil {
		for _, h := range prev.Media {
			s.dropBlob(ctx, actor.Owner, productID, h)
		}
	}
	sess := domain.NewIntakeSession(actor.Owner, domain.ModeEdit, productID)
	if err := s.sessions.Save(ctx, sess); err != nil {
		return nil, fmt.Errorf("save session: %w", err)
	}
	if err := s.drafts.Clear(ctx, actor.Owner, productID); err != nil {
		return nil, err
	}

	if resolutions == nil {
		resolutions = []domain.Resolution{}
	}
	return &EditView{Draft: d, Resolutions: resolutions, State: sess.State}, nil
}

// Activity returns the admin's most recent audit trail entries.
func (s *IntakeService) Activity(ctx context.Context, actor Actor, limit int) ([]domain.Activity, error) {
	entries, err := s.activity.ListByOwner(ctx, actor.Owner, limit)
	if err != nil {
		return nil, fmt.Errorf("list activity: %w", err)
	}
	return entries, nil
}

func (s *IntakeService) session(ctx context.Context, owner, scope string) (*domain.IntakeSession, error) {
	sess, err := s.sessions.Get(ctx, owner, scope)
	if err == nil {
		if sess.RecoverStale(time.Now()) {
			logger.WithContext(ctx, s.logger).WarnContext(ctx, "recovered stale submission",
				slog.String("scope", scope),
			)
			if err := s.sessions.Save(ctx, sess); err != nil {
				return nil, fmt.Errorf("save session: %w", err)
			}
		}
		return sess, nil
	}
	if !errors.Is(err, apperrors.ErrNotFound) {
		return nil, fmt.Errorf("load session: %w", err)
	}
	if scope == ScopeCreate {
		return domain.NewIntakeSession(owner, domain.ModeCreate, ""), nil
	}
	return domain.NewIntakeSession(owner, domain.ModeEdit, scope), nil
}

// openBaseStep loads the wizard for a base-step change. A finished wizard
// starts over; one past the base step refuses the change.
func (s *IntakeService) openBaseStep(ctx context.Context, owner, scope string) (*domain.IntakeSession, error) {
	sess, err := s.session(ctx, owner, scope)
	if err != nil {
		return nil, err
	}
	switch sess.State {
	case domain.StateEditingBase:
		return sess, nil
	case domain.StateDone:
		if err := sess.Apply(domain.EventReset, ""); err != nil {
			return nil, err
		}
		if err := s.sessions.Save(ctx, sess); err != nil {
			return nil, fmt.Errorf("save session: %w", err)
		}
		return sess, nil
	default:
		return nil, apperrors.Conflict(fmt.Sprintf("base step is not open while wizard is %s", sess.State))
	}
}

// reject lands the wizard in failed. The bookkeeping outlives the request so
// a dropped client or a router timeout cannot leave it submitting.
func (s *IntakeService) reject(ctx context.Context, sess *domain.IntakeSession, reason string) {
	ctx = context.WithoutCancel(ctx)
	if err := sess.Apply(domain.EventRejected, reason); err != nil {
		return
	}
	if err := s.sessions.Save(ctx, sess); err != nil {
		logger.WithContext(ctx, s.logger).ErrorContext(ctx, "failed to save rejected session",
			slog.String("scope", sess.Scope()),
			slog.String("error", err.Error()),
		)
	}
	s.record(ctx, sess, domain.ActionSubmitFailed, reason)
}

func (s *IntakeService) record(ctx context.Context, sess *domain.IntakeSession, action domain.ActivityAction, detail string) {
	s.recordFor(ctx, sess, action, sess.ProductID, detail)
}

func (s *IntakeService) recordFor(ctx context.Context, sess *domain.IntakeSession, action domain.ActivityAction, productID, detail string) {
	entry := domain.NewActivity(sess.Owner, action, sess.Mode, productID, detail)
	if err := s.activity.Append(ctx, entry); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to record activity",
			slog.String("action", string(action)),
			slog.String("error", err.Error()),
		)
	}
}

func (s *IntakeService) dropBlob(ctx context.Context, owner, scope string, h domain.MediaHandle) {
	if err := s.media.Delete(ctx, domain.MediaKey(owner, scope, h)); err != nil {
		logger.WithContext(ctx, s.logger).WarnContext(ctx, "failed to delete staged media",
			slog.String("slot", h.Slot),
			slog.String("error", err.Error()),
		)
	}
}

// withMarkers marks the media slots of d. A create draft only ever holds
// markers; an edit record keeps the URLs of files it already has unless a
// replacement is staged.
func withMarkers(sess *domain.IntakeSession, d domain.Draft) domain.Draft {
	if sess.Mode == domain.ModeCreate {
		return d.MediaMarkers(sess.Media)
	}
	out := d.Clone()
	for slot := range sess.Media {
		out[slot] = slot
	}
	return out
}

// validateMetadata checks the metadata-step constraints of d.
func validateMetadata(d domain.Draft) error {
	m, err := domain.SEOFromDraft(d)
	if err != nil {
		return apperrors.InvalidInput(err.Error())
	}

	fields := m.CheckEnums()
	var valErr *validator.ValidationError
	if err := validator.Validate(m); err != nil {
		if !errors.As(err, &valErr) {
			return err
		}
		for name, msg := range valErr.Fields() {
			fields[name] = msg
		}
	}
	if len(fields) == 0 {
		return nil
	}

	failure := &domain.ValidationFailure{Fields: fields}
	labels := make([]string, 0, len(fields))
	for _, name := range failure.FieldNames() {
		labels = append(labels, domain.Label(name))
	}
	failure.Message = "Invalid values: " + strings.Join(labels, ", ")
	return failure
}
