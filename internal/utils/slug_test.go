package utils

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestSlugify(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Student Innovation Fair", "student-innovation-fair"},
		{"  Exams -- 2024!  ", "exams-2024"},
		{"Already-slugged", "already-slugged"},
		{"Café & Résumé", "caf-r-sum"},
		{"!!!", ""},
		{"", ""},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, Slugify(tt.in))
		})
	}
}
