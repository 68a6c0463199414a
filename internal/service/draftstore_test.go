package service

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/amritage/age-fabric-shop-admin-panel/internal/domain"
)

func TestApplyPartial_NewDraftDefaults(t *testing.T) {
	d := ApplyPartial(nil, domain.Draft{"name": "Crêpe de Chine"})

	for _, flag := range domain.FlagFields {
		assert.Equal(t, "no", d[flag], flag)
	}
	assert.Equal(t, "crepe-de-chine", d["slug"])
	assert.Equal(t, "", d["oz"])
	assert.Equal(t, "", d["inch"])
}

func TestApplyPartial_IgnoresDerivedAndMedia(t *testing.T) {
	cur := domain.Draft{"gsm": "200", "popularproduct": "yes"}
	d := ApplyPartial(cur, domain.Draft{"oz": "1", "inch": "1", "image": "x.jpg", "cm": "100"})

	assert.Equal(t, "5.90", d["oz"])
	assert.Equal(t, "39.37", d["inch"])
	assert.NotContains(t, d, "image")
	assert.Equal(t, "yes", d["popularproduct"])
	assert.Equal(t, "200", cur["gsm"])
	assert.NotContains(t, cur, "cm", "input draft is not mutated")
}

func TestApplyPartial_ClearingGSMBlanksOz(t *testing.T) {
	d := ApplyPartial(domain.Draft{"gsm": "120", "oz": "3.54"}, domain.Draft{"gsm": ""})
	assert.Equal(t, "", d["oz"])
}
