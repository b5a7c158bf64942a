package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		input    string
		expected string
	}{
		{"Ev Dekorasyonu", "ev-dekorasyonu"},
		{"  Çiçekli Şık Ürünler ", "cicekli-sik-urunler"},
		{"İğne & Iplik", "igne-iplik"},
		{"3D Baskı -- Modeller!", "3d-baski-modeller"},
		{"", ""},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			assert.Equal(t, tt.expected, Slugify(tt.input))
		})
	}
}
