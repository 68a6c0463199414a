package slug

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestGenerate(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Hello World", "hello-world"},
		{"ALL UPPER CASE", "all-upper-case"},
		{"  Cotton Twill  ", "cotton-twill"},
		{"Crêpe de Chine", "crepe-de-chine"},
		{"Façonné Jacquard", "faconne-jacquard"},
		{"Größe 150cm", "grosse-150cm"},
		{"İstanbul Velvet", "istanbul-velvet"},
		{"Linen & Silk", "linen-and-silk"},
		{"100% Polyester", "100-percent-polyester"},
		{"Rayon---Slub!!", "rayon-slub"},
		{"--leading-and-trailing--", "leading-and-trailing"},
		{"GSM 120 / 58\"", "gsm-120-58"},
		{"", ""},
		{"!!!", ""},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Generate(tt.input))
		})
	}
}

func TestGenerate_Idempotent(t *testing.T) {
	once := Generate("Organic Cotton Poplin 40s")
	assert.Equal(t, once, Generate(once))
}
