package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestUniversity_DedupKey(t *testing.T) {
	tests := []struct {
		name string
		uni  University
		want string
	}{
		{"uses external id", University{ID: " AU-001 ", Name: "Monash University"}, "AU-001"},
		{"falls back to lower-cased name", University{Name: "  Monash University "}, "name:monash university"},
		{"blank id counts as absent", University{ID: "   ", Name: "UBC"}, "name:ubc"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.uni.DedupKey())
		})
	}

	t.Run("id and name keys never collide", func(t *testing.T) {
		byID := University{ID: "ubc", Name: "University of British Columbia"}
		byName := University{Name: "UBC"}
		assert.NotEqual(t, byID.DedupKey(), byName.DedupKey())
	})
}

func TestUserPreferences_WithDefaults(t *testing.T) {
	t.Run("fills unset budget max", func(t *testing.T) {
		p := UserPreferences{}.WithDefaults()
		assert.Equal(t, 0.0, p.BudgetMin)
		assert.Equal(t, DefaultBudgetMax, p.BudgetMax)
	})

	t.Run("keeps explicit budget", func(t *testing.T) {
		p := UserPreferences{BudgetMin: 5000, BudgetMax: 20000}.WithDefaults()
		assert.Equal(t, 5000.0, p.BudgetMin)
		assert.Equal(t, 20000.0, p.BudgetMax)
	})

	t.Run("drops blank countries without touching the original", func(t *testing.T) {
		orig := UserPreferences{Countries: []string{" Canada ", "", "  "}}
		p := orig.WithDefaults()
		assert.Equal(t, []string{"Canada"}, p.Countries)
		assert.Len(t, orig.Countries, 3)
	})
}

func TestParseCountryList(t *testing.T) {
	tests := []struct {
		name string
		raw  string
		want []string
	}{
		{"empty", "", nil},
		{"json array", `["Canada", "Australia"]`, []string{"Canada", "Australia"}},
		{"comma list", "Canada, Australia ,", []string{"Canada", "Australia"}},
		{"broken json", `["Canada", "USA"`, []string{"Canada", "USA"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParseCountryList(tt.raw)
			if tt.want == nil {
				assert.Empty(t, got)
				return
			}
			assert.Equal(t, tt.want, got)
		})
	}
}
