package cleansing_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/ugrc/geocode-cli/internal/cleansing"
)

func TestStreet_Ampersand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "main and state", cleansing.Street("main & state"))
}

func TestStreet_Spacing(t *testing.T) {
	t.Parallel()

	streets := []string{
		"  123 main street",
		"123      main street",
		"123 main street    ",
		"123 main$%# street",
	}

	for _, street := range streets {
		assert.Equal(t, "123 main street", cleansing.Street(street), "input: %q", street)
	}
}

func TestStreet_Idempotent(t *testing.T) {
	t.Parallel()

	streets := []string{
		"main & state",
		"  123 main$%# street ",
		"",
		"324 s. state st, ste #500",
	}

	for _, street := range streets {
		once := cleansing.Street(street)
		assert.Equal(t, once, cleansing.Street(once), "input: %q", street)
	}
}

func TestZone_ZIPVariants(t *testing.T) {
	t.Parallel()

	zones := []any{84124, "84124   ", "   84124", "84124-1234"}

	for _, zone := range zones {
		assert.Equal(t, "84124", cleansing.Zone(zone), "input: %v", zone)
	}
}

func TestZone_DropsAmpersand(t *testing.T) {
	t.Parallel()

	assert.Equal(t, "salt lake city", cleansing.Zone("salt & lake city"))
}
