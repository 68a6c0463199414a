package http

import (
	"bytes"
	"encoding/json"
	"io"
	"log/slog"
	"mime"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/textproto"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/golang-jwt/jwt/v5"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/catalog"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/event"
	memrepo "github.com/amritage/age-fabric-shop-admin-panel/internal/repository/memory"
	redisrepo "github.com/amritage/age-fabric-shop-admin-panel/internal/repository/redis"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/service"
	memstorage "github.com/amritage/age-fabric-shop-admin-panel/internal/storage/memory"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/health"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httpclient"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/httputil"
	"github.com/amritage/age-fabric-shop-admin-panel/pkg/middleware"
)

// ============================================================================
// Fake catalog backend
// ============================================================================

type fakeBackend struct {
	mu          sync.Mutex
	products    []map[string]any
	deleteCode  int
	created     *multipart.Form
	createdAuth string
}

func (b *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	b.mu.Lock()
	defer b.mu.Unlock()

	switch {
	case r.URL.Path == "/api/structure/view":
		writeBackend(w, http.StatusOK, []map[string]any{
			{"_id": "S1", "name": "Woven"},
			{"_id": "S2", "name": "Knit"},
		})
	case r.URL.Path == "/api/substructure/view":
		writeBackend(w, http.StatusOK, []map[string]any{
			{"_id": "SS1", "name": "Twill", "structureId": "S1"},
			{"_id": "SS2", "name": "Jersey", "structureId": map[string]any{"_id": "S2"}},
		})
	case r.URL.Path == "/api/newproduct/view":
		writeBackend(w, http.StatusOK, b.products)
	case r.URL.Path == "/api/newproduct/add":
		_, params, _ := mime.ParseMediaType(r.Header.Get("Content-Type"))
		form, err := multipart.NewReader(r.Body, params["boundary"]).ReadForm(8 << 20)
		if err != nil {
			writeBackend(w, http.StatusBadRequest, nil)
			return
		}
		b.created = form
		b.createdAuth = r.Header.Get("Authorization")
		writeBackend(w, http.StatusCreated, map[string]any{"_id": "p-new"})
	case r.Method == http.MethodDelete:
		if b.deleteCode != 0 {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(b.deleteCode)
			_, _ = w.Write([]byte(`{"message":"product is referenced by an order"}`))
			return
		}
		w.WriteHeader(http.StatusNoContent)
	case r.Method == http.MethodGet && strings.HasSuffix(r.URL.Path, "/view"):
		writeBackend(w, http.StatusOK, []map[string]any{})
	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func writeBackend(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(map[string]any{"data": data})
}

// ============================================================================
// Test server
// ============================================================================

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, &slog.HandlerOptions{Level: slog.LevelError}))
}

type testServer struct {
	router  http.Handler
	backend *fakeBackend
	media   *memstorage.Storage
}

func newTestServer(t *testing.T) *testServer {
	t.Helper()
	logger := testLogger()

	fb := &fakeBackend{}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)

	httpCfg := httpclient.DefaultConfig()
	httpCfg.MaxRetries = 0
	client, err := catalog.NewClient(httpclient.New(httpCfg), srv.URL, logger)
	require.NoError(t, err)
	options := catalog.NewOptionProvider(client, 4, logger)

	mr := miniredis.RunT(t)
	rdb := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })

	media := memstorage.New()
	assembler, err := service.NewAssembler(media)
	require.NoError(t, err)

	activity := memrepo.NewActivityRepository(100)
	filters := service.NewFilterService(options, logger)
	intake := service.NewIntakeService(service.IntakeDeps{
		Sessions:    redisrepo.NewSessionRepository(rdb, 24*time.Hour),
		Drafts:      service.NewDraftStore(redisrepo.NewDraftRepository(rdb, 24*time.Hour, time.Hour)),
		Filters:     filters,
		Backend:     client,
		Assembler:   assembler,
		Media:       media,
		Events:      event.Nop{},
		Activity:    activity,
		MaxFileSize: 1 << 20,
		Logger:      logger,
	})
	products := service.NewProductService(client, options, event.Nop{}, activity, logger)

	router := NewRouter(filters, intake, products, health.NewHandler(), logger, RouterConfig{
		ServiceName:     "catalog-admin-test",
		AdminCookieName: "admin",
		AdminJWTSecret:  adminSecret,
		CORS:            middleware.DefaultCORSConfig(),
		MaxUploadSize:   1 << 20,
	})
	return &testServer{router: router, backend: fb, media: media}
}

const adminSecret = "catalog-admin-test-secret"

// adminToken signs a token for owner with the router's secret.
func adminToken(t *testing.T, owner string) string {
	t.Helper()
	tok, err := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{"sub": owner}).SignedString([]byte(adminSecret))
	require.NoError(t, err)
	return tok
}

// do sends a request as the admin identified by owner.
func (s *testServer) do(t *testing.T, owner, method, target string, body any) *httptest.ResponseRecorder {
	t.Helper()
	req := jsonRequest(t, method, target, body)
	req.Header.Set("Authorization", "Bearer "+adminToken(t, owner))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

func jsonRequest(t *testing.T, method, target string, body any) *http.Request {
	t.Helper()
	var reader io.Reader
	if body != nil {
		b, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(b)
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	return req
}

// upload stages one file into slot.
func (s *testServer) upload(t *testing.T, owner, target, filename, contentType string, data []byte) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	header := make(textproto.MIMEHeader)
	header.Set("Content-Disposition", `form-data; name="file"; filename="`+filename+`"`)
	header.Set("Content-Type", contentType)
	part, err := mw.CreatePart(header)
	require.NoError(t, err)
	_, err = part.Write(data)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, target, &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	req.Header.Set("Authorization", "Bearer "+adminToken(t, owner))
	rec := httptest.NewRecorder()
	s.router.ServeHTTP(rec, req)
	return rec
}

// decodeResponse reads the response body into the standard Response struct.
func decodeResponse(t *testing.T, rec *httptest.ResponseRecorder) httputil.Response {
	t.Helper()
	var resp httputil.Response
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp
}

// decodeData unmarshals the data member of the envelope into out.
func decodeData(t *testing.T, rec *httptest.ResponseRecorder, out any) {
	t.Helper()
	var env struct {
		Data json.RawMessage `json:"data"`
	}
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&env))
	require.NoError(t, json.Unmarshal(env.Data, out))
}

func fullBase() map[string]any {
	return map[string]any{
		"name":              "Cotton Twill",
		"sku":               "CT-001",
		"productIdentifier": "PI-1",
		"locationCode":      "A1",
		"css":               "soft",
		"newCategoryId":     "cat1",
		"structureId":       "S1",
		"subStructureId":    "SS1",
		"contentId":         "C1",
		"gsm":               120,
		"cm":                150,
		"quantity":          25,
		"um":                "meter",
		"currency":          "INR",
		"finishId":          "F1",
		"designId":          "D1",
		"colorId":           "CL1",
		"motifsizeId":       "M1",
		"suitableforId":     "SF1",
		"vendorId":          "V1",
		"groupcodeId":       "G1",
		"purchasePrice":     100,
		"salesPrice":        150,
	}
}

func fullMetadata() map[string]any {
	return map[string]any{
		"title":         "Cotton Twill",
		"description":   "Soft cotton twill for shirts",
		"keywords":      "cotton, twill",
		"ogTitle":       "Cotton Twill",
		"ogDescription": "Soft cotton twill",
		"ogUrl":         "https://shop.example.com/fabric/cotton-twill",
	}
}
