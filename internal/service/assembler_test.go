package service

import (
	"bytes"
	"context"
	"errors"
	"mime"
	"mime/multipart"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
	"github.com/amritage/age-fabric-shop-admin-panel/internal/storage"
	memstorage "github.com/amritage/age-fabric-shop-admin-panel/internal/storage/memory"
	apperrors "github.com/amritage/age-fabric-shop-admin-panel/pkg/errors"
)

func validPayload() domain.Draft {
	base := domain.DeriveMeasures(fullBase())
	base["slug"] = "cotton-twill"
	return Coerce(Merge(base, fullMetadata()))
}

func storageInput(key, content string) *storage.UploadInput {
	return &storage.UploadInput{Key: key, Size: int64(len(content)), Data: strings.NewReader(content)}
}

func newTestAssembler(t *testing.T) *Assembler {
	t.Helper()
	a, err := NewAssembler(memstorage.New())
	require.NoError(t, err)
	return a
}

func TestMerge_DescriptionSources(t *testing.T) {
	base := domain.Draft{"name": "Twill", "productdescription": "Base text", "description": "stale"}
	meta := domain.Draft{"description": "SEO text", "title": "Twill", "sku": "ignored"}

	merged := Merge(base, meta)
	assert.Equal(t, "Base text", merged["productdescription"])
	assert.Equal(t, "SEO text", merged["description"])
	assert.Equal(t, "Twill", merged["title"])
	assert.NotContains(t, merged, "sku")
}

func TestMerge_ProductNameFromMetadataStep(t *testing.T) {
	base := domain.Draft{"name": "Cotton Twill", "sku": "CT-1"}

	assert.Equal(t, "Renamed Twill", Merge(base, domain.Draft{"name": "Renamed Twill"})["name"])
	assert.Equal(t, "", Merge(base, domain.Draft{"name": ""})["name"])
	assert.Equal(t, "Cotton Twill", Merge(base, domain.Draft{"title": "x"})["name"])
}

func TestCoerce_Rules(t *testing.T) {
	out := Coerce(domain.Draft{
		"_id":                 "p-1",
		"createdAt":           "2024-01-01",
		"name":                "Twill",
		"gsm":                 "120",
		"quantity":            "",
		"css":                 nil,
		"locationCode":        "",
		"vendorId":            map[string]any{"_id": "V1", "name": "Mill"},
		"subStructureId":      nil,
		"popularproduct":      true,
		"topratedproduct":     "on",
		"productoffer":        "maybe",
		"productdescription":  []any{"Soft", "cotton"},
		"image":               "image",
		"image1":              "https://cdn.example.com/a.jpg",
		"mobileWebAppCapable": "true",
		"unknownField":        "x",
	})

	assert.NotContains(t, out, "_id")
	assert.NotContains(t, out, "createdAt")
	assert.NotContains(t, out, "unknownField")
	assert.NotContains(t, out, "image")
	assert.Equal(t, "https://cdn.example.com/a.jpg", out["image1"])

	assert.Equal(t, "Twill", out["name"])
	assert.Equal(t, float64(120), out["gsm"])
	assert.Nil(t, out["quantity"])
	assert.Nil(t, out["css"])
	assert.Nil(t, out["locationCode"])
	assert.Equal(t, "V1", out["vendorId"])
	assert.Equal(t, "", out["subStructureId"])
	assert.Equal(t, "", out["sku"])
	assert.Equal(t, float64(0), out["salesPrice"])
	assert.Equal(t, "yes", out["popularproduct"])
	assert.Equal(t, "yes", out["topratedproduct"])
	assert.Equal(t, "no", out["productoffer"])
	assert.Equal(t, "Soft cotton", out["productdescription"])
	assert.Equal(t, true, out["mobileWebAppCapable"])
	assert.Equal(t, "", out["ogUrl"])
}

func TestCoerce_Idempotent(t *testing.T) {
	once := validPayload()
	assert.Equal(t, once, Coerce(once))

	odd := Coerce(domain.Draft{"gsm": "abc", "quantity": "3", "groupcodeId": ""})
	assert.Equal(t, odd, Coerce(odd))
}

func TestAssembler_Validate(t *testing.T) {
	a := newTestAssembler(t)
	assert.NoError(t, a.Validate(validPayload()))

	bad := validPayload()
	bad["um"] = "furlong"
	bad["salesPrice"] = float64(0)

	err := a.Validate(bad)
	var failure *domain.ValidationFailure
	require.True(t, errors.As(err, &failure))
	assert.Equal(t, []string{"salesPrice", "um"}, failure.FieldNames())
	assert.Equal(t, "Invalid values: Sales Price, Unit", failure.Message)
	assert.True(t, errors.Is(err, apperrors.ErrValidation))
}

func TestAssembler_ValidateRejectsUnknownKeys(t *testing.T) {
	a := newTestAssembler(t)
	p := validPayload()
	p["discount"] = "10%"

	err := a.Validate(p)
	require.Error(t, err)
}

func TestAssembler_Encode(t *testing.T) {
	store := memstorage.New()
	a, err := NewAssembler(store)
	require.NoError(t, err)
	ctx := context.Background()

	h := domain.MediaHandle{Slot: "video", Handle: "h1", Filename: "drape.mp4", ContentType: "video/mp4", Size: 4}
	_, err = store.Upload(ctx, storageInput(domain.MediaKey("admin-1", "create", h), "mp4!"))
	require.NoError(t, err)

	payload := domain.Draft{"name": "Twill", "quantity": nil, "gsm": float64(120), "mobileWebAppCapable": false}
	out, err := a.Encode(ctx, "admin-1", "create", payload, map[string]domain.MediaHandle{"video": h})
	require.NoError(t, err)

	_, params, err := mime.ParseMediaType(out.ContentType)
	require.NoError(t, err)
	form, err := multipart.NewReader(bytes.NewReader(out.Body), params["boundary"]).ReadForm(1 << 20)
	require.NoError(t, err)

	assert.Equal(t, "Twill", form.Value["name"][0])
	assert.Equal(t, "null", form.Value["quantity"][0])
	assert.Equal(t, "120", form.Value["gsm"][0])
	assert.Equal(t, "false", form.Value["mobileWebAppCapable"][0])
	require.Len(t, form.File["video"], 1)
	assert.Equal(t, "drape.mp4", form.File["video"][0].Filename)
	assert.Equal(t, "video/mp4", form.File["video"][0].Header.Get("Content-Type"))
}

func TestAssembler_EncodeMissingBlob(t *testing.T) {
	a := newTestAssembler(t)
	h := domain.MediaHandle{Slot: "image", Handle: "gone", Filename: "a.jpg", ContentType: "image/jpeg"}

	_, err := a.Encode(context.Background(), "admin-1", "create", domain.Draft{}, map[string]domain.MediaHandle{"image": h})
	assert.True(t, errors.Is(err, apperrors.ErrNotFound))
}
