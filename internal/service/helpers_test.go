package service

import (
	"context"
	"errors"
	"log/slog"
	"os"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	memrepo "github.com/amritage/age-fabric-shop-admin-panel/internal/repository/memory"
	redisrepo "github.com/amritage/age-fabric-shop-admin-panel/internal/repository/redis"
	memstorage "github.com/amritage/age-fabric-shop-admin-panel/internal/storage/memory"
)

// --- Mock Backend ---

type mockBackend struct {
	mock.Mock
}

func (m *mockBackend) ListProducts(ctx context.Context, token string, page, limit int) ([]map[string]any, error) {
	args := m.Called(ctx, token, page, limit)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

func (m *mockBackend) GetProduct(ctx context.Context, token, id string) (map[string]any, error) {
	args := m.Called(ctx, token, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *mockBackend) ProductsByGroupCode(ctx context.Context, token, groupCodeID string) ([]map[string]any, error) {
	args := m.Called(ctx, token, groupCodeID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).([]map[string]any), args.Error(1)
}

func (m *mockBackend) CreateProduct(ctx context.Context, token, contentType string, body []byte) (map[string]any, error) {
	args := m.Called(ctx, token, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *mockBackend) UpdateProduct(ctx context.Context, token, id, contentType string, body []byte) (map[string]any, error) {
	args := m.Called(ctx, token, id, contentType, body)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(map[string]any), args.Error(1)
}

func (m *mockBackend) DeleteProduct(ctx context.Context, token, id string) error {
	args := m.Called(ctx, token, id)
	return args.Error(0)
}

// --- Stub Option Loader ---

type stubLoader struct {
	options map[string][]domain.Option
	failing map[string]bool
}

func newStubLoader() *stubLoader {
	return &stubLoader{
		options: map[string][]domain.Option{
			"structureId": {
				{ID: "S1", Name: "Woven"},
				{ID: "S2", Name: "Knit"},
			},
			"finishId": {
				{ID: "F1", Name: "Peached"},
				{ID: "F2", Name: "Mercerized"},
			},
			"subStructureId": {
				{ID: "SS1", Name: "Twill", ParentID: "S1"},
				{ID: "SS2", Name: "Jersey", ParentID: "S2"},
			},
			"subFinishId": {
				{ID: "SFa", Name: "Soft", ParentID: "F1"},
				{ID: "SFb", Name: "Lustre", ParentID: "F2"},
			},
			"subSuitableId": {
				{ID: "SU1", Name: "Shirts", ParentID: "SF1"},
			},
		},
		failing: map[string]bool{},
	}
}

func (l *stubLoader) Load(ctx context.Context, token string, defs []domain.FilterDefinition) domain.FilterSet {
	set := domain.FilterSet{Errors: map[string]string{}}
	for _, def := range defs {
		opts, err := l.LoadOne(ctx, token, def)
		if err != nil {
			set.Errors[def.Name] = "Failed to load " + def.Label
			opts = []domain.Option{}
		}
		set.Filters = append(set.Filters, domain.Filter{Name: def.Name, Label: def.Label, Options: opts})
	}
	return set
}

func (l *stubLoader) LoadOne(_ context.Context, _ string, def domain.FilterDefinition) ([]domain.Option, error) {
	if l.failing[def.Name] {
		return nil, errors.New("backend down")
	}
	opts, ok := l.options[def.Name]
	if !ok {
		return []domain.Option{}, nil
	}
	return opts, nil
}

// --- Recording Publisher ---

type recordingEvents struct {
	mu        sync.Mutex
	submitted []string
	deleted   []string
	cleared   []string
	payloads  []domain.Draft
}

func (r *recordingEvents) PublishProductSubmitted(_ context.Context, _ *domain.IntakeSession, productID string, d domain.Draft) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.submitted = append(r.submitted, productID)
	r.payloads = append(r.payloads, d)
	return nil
}

func (r *recordingEvents) PublishProductDeleted(_ context.Context, _, productID string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.deleted = append(r.deleted, productID)
	return nil
}

func (r *recordingEvents) PublishDraftCleared(_ context.Context, _, scope string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.cleared = append(r.cleared, scope)
	return nil
}

// --- Test Helpers ---

func newTestLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelError}))
}

var testActor = Actor{Owner: "admin-1", Token: "tok"}

type intakeHarness struct {
	svc      *IntakeService
	drafts   *DraftStore
	sessions *redisrepo.SessionRepository
	backend  *mockBackend
	loader   *stubLoader
	media    *memstorage.Storage
	activity *memrepo.ActivityRepository
	events   *recordingEvents
	mr       *miniredis.Miniredis
}

func newIntakeHarness(t *testing.T) *intakeHarness {
	t.Helper()
	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	logger := newTestLogger()
	h := &intakeHarness{
		drafts:   NewDraftStore(redisrepo.NewDraftRepository(client, 7*24*time.Hour, time.Hour)),
		sessions: redisrepo.NewSessionRepository(client, 7*24*time.Hour),
		backend:  new(mockBackend),
		loader:   newStubLoader(),
		media:    memstorage.New(),
		activity: memrepo.NewActivityRepository(100),
		events:   &recordingEvents{},
		mr:       mr,
	}

	assembler, err := NewAssembler(h.media)
	require.NoError(t, err)

	h.svc = NewIntakeService(IntakeDeps{
		Sessions:    h.sessions,
		Drafts:      h.drafts,
		Filters:     NewFilterService(h.loader, logger),
		Backend:     h.backend,
		Assembler:   assembler,
		Media:       h.media,
		Events:      h.events,
		Activity:    h.activity,
		MaxFileSize: 1 << 20,
		Logger:      logger,
	})
	return h
}

// fullBase is a base step that passes validation once measures are derived.
func fullBase() domain.Draft {
	return domain.Draft{
		"name":              "Cotton Twill",
		"sku":               "CT-001",
		"productIdentifier": "PI-1",
		"locationCode":      "A1",
		"css":               "soft",
		"newCategoryId":     "cat1",
		"structureId":       "S1",
		"subStructureId":    "SS1",
		"contentId":         "C1",
		"gsm":               "120",
		"cm":                "150",
		"quantity":          "25",
		"um":                "meter",
		"currency":          "INR",
		"finishId":          "F1",
		"designId":          "D1",
		"colorId":           "CL1",
		"motifsizeId":       "M1",
		"suitableforId":     "SF1",
		"vendorId":          "V1",
		"groupcodeId":       "G1",
		"purchasePrice":     "100",
		"salesPrice":        "150",
		"popularproduct":    true,
	}
}

// fullMetadata fills every metadata key required at submit.
func fullMetadata() domain.Draft {
	return domain.Draft{
		"title":         "Cotton Twill",
		"description":   "Soft cotton twill for shirts",
		"keywords":      "cotton, twill",
		"ogTitle":       "Cotton Twill",
		"ogDescription": "Soft cotton twill",
		"ogUrl":         "https://shop.example.com/fabric/cotton-twill",
	}
}
