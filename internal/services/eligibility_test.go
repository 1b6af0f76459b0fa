package services

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/poofware/macro-service/internal/config"
)

func TestEligibilityFilter_IsEligible(t *testing.T) {
	f := NewEligibilityFilter(config.DefaultPolicy())

	tests := []struct {
		name     string
		fileName string
		want     bool
	}{
		{"makro file", "gerceklesenmakrodata_20250915153256.xlsx", true},
		{"hesap file", "gerceklesenhesap_20250905104743.xlsx", true},
		{"include marker upper case", "GERCEKLESENMAKRO_2024.XLSX", true},
		{"include marker mixed case", "Q3_GercekLesenHesap.xlsx", true},
		{"exclusion marker", "GERÇEKLEŞEN_gerceklesenmakro.xlsx", false},
		{"exclusion marker lower case", "gerçekleşen_gerceklesenhesap.xlsx", false},
		{"no marker", "budget_2025.xlsx", false},
		{"partial marker", "gerceklesen_makro.xlsx", false},
		{"empty", "", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, f.IsEligible(tt.fileName))
		})
	}
}

func TestEligibilityFilter_MarkersAreCaseInsensitive(t *testing.T) {
	policy := config.DefaultPolicy()
	policy.IncludeMarkers = []string{"GercekLesenMakro"}
	policy.ExcludeMarker = "arşiv"
	f := NewEligibilityFilter(policy)

	assert.True(t, f.IsEligible("gerceklesenmakro_1.xlsx"))
	assert.False(t, f.IsEligible("ARŞIV_gerceklesenmakro_1.xlsx"))
	assert.False(t, f.IsEligible("gerceklesenhesap_1.xlsx"))
}

func TestEligibilityFilter_EligibleFilesKeepsOrder(t *testing.T) {
	f := NewEligibilityFilter(config.DefaultPolicy())

	got := f.EligibleFiles([]string{otherFile, hesapFile, excludedFile, makroFile, oldMakroFile})

	assert.Equal(t, []string{hesapFile, makroFile, oldMakroFile}, got)
	assert.Empty(t, f.EligibleFiles(nil))
}
