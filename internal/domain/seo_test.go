package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestApplySEODefaults(t *testing.T) {
	d := ApplySEODefaults(Draft{"name": "Cotton Twill", "gsm": "120", "robots": "noindex, follow"})

	assert.Equal(t, "Cotton Twill", d["title"])
	assert.Equal(t, "Cotton Twill", d["ogTitle"])
	assert.Equal(t, "UTF-8", d["charset"])
	assert.Equal(t, "noindex, follow", d["robots"])
	assert.Equal(t, "summary_large_image", d["twitterCard"])
	assert.Equal(t, true, d["mobileWebAppCapable"])
	assert.Equal(t, "120", d["gsm"])
}

func TestApplySEODefaults_KeepsExplicitFalse(t *testing.T) {
	d := ApplySEODefaults(Draft{"name": "x", "mobileWebAppCapable": false})
	assert.Equal(t, false, d["mobileWebAppCapable"])
}

func TestSEOFromDraft(t *testing.T) {
	m, err := SEOFromDraft(Draft{
		"title":               "Twill",
		"description":         []any{"Soft", "twill"},
		"mobileWebAppCapable": "true",
		"gsm":                 float64(120),
	})
	require.NoError(t, err)
	assert.Equal(t, "Twill", m.Title)
	assert.Equal(t, "Soft twill", m.Description)
	assert.True(t, m.MobileWebAppCapable)
}

func TestSEOMetadata_CheckEnums(t *testing.T) {
	m := DefaultSEO("x")
	assert.Empty(t, m.CheckEnums())

	m.Robots = "follow"
	m.FormatDetection = "telephone=maybe"
	fields := m.CheckEnums()
	assert.Contains(t, fields, "robots")
	assert.Contains(t, fields, "formatDetection")
}
