package ingest

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNormalizeHeader(t *testing.T) {
	tests := map[string]string{
		"  Postl Code ":                   "POSTL CODE",
		"MEANS OF TRANSPORT,":             "MEANS OF TRANSPORT",
		"\uFEFFLocation":                  "LOCATION",
		"co\u2082 emissions (empty load)": "CO\u2082 EMISSIONS (EMPTY LOAD)",
		"Gross Weight ,,":                 "GROSS WEIGHT",
		"Mu\u0308nchen":                   "M\u00dcNCHEN", // combining diaeresis composes
	}
	for in, want := range tests {
		assert.Equal(t, want, NormalizeHeader(in), "%q", in)
	}
}

func TestPickColumn(t *testing.T) {
	headers := []string{"KEY", "STOP CATEGORY", "STOP", "GROSS WEIGHT.1", "GROSS WEIGHT (KG)", "LOCATION ID"}

	assert.Equal(t, 0, pickColumn(headers, "KEY", false))
	assert.Equal(t, 2, pickColumn(headers, "STOP", false), "exact match beats prefix")
	assert.Equal(t, 3, pickColumn(headers, "GROSS WEIGHT", true), "dotted suffix beats plain prefix")
	assert.Equal(t, 5, pickColumn(headers, "LOCATION", true))
	assert.Equal(t, -1, pickColumn(headers, "LOCATION", false))
	assert.Equal(t, -1, pickColumn(headers, "PARENT_KEY", true))
}

func TestBind_ReportsMissingRequiredColumnsOnly(t *testing.T) {
	b := addressMapping.bind([]string{"LOCATION", "NAME"})
	assert.Equal(t, []string{"C/R", "CITY", "POSTL CODE", "STREET"}, b.missing)
	assert.Contains(t, b.index, "external_code")
	assert.NotContains(t, b.index, "latitude")
}

func touch(t *testing.T, path string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte("X\n"), 0o644))
}

func TestResolvePath(t *testing.T) {
	t.Run("alternate filename", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "RESSOURCE_EQUIPTMENT_ATTRIBUTES.csv"))
		assert.Equal(t, filepath.Join(dir, "RESSOURCE_EQUIPTMENT_ATTRIBUTES.csv"), vehicleAttributesMapping.resolvePath(dir))
	})
	t.Run("primary wins over alternate", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "RESSOURCE_EQUIPTMENT_ATTRIBUTES.csv"))
		touch(t, filepath.Join(dir, "RESOURCE_EQUIPMENT_ATTRIBUTES.csv"))
		assert.Equal(t, filepath.Join(dir, "RESOURCE_EQUIPMENT_ATTRIBUTES.csv"), vehicleAttributesMapping.resolvePath(dir))
	})
	t.Run("doubled extension", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "ADDRESSDATA.csv.csv"))
		assert.Equal(t, filepath.Join(dir, "ADDRESSDATA.csv.csv"), addressMapping.resolvePath(dir))
	})
	t.Run("subdirectory then root", func(t *testing.T) {
		dir := t.TempDir()
		touch(t, filepath.Join(dir, "normal_planning_freight_unit_header.csv"))
		assert.Equal(t, filepath.Join(dir, "normal_planning_freight_unit_header.csv"), unitHeaderMapping.resolvePath(dir))

		touch(t, filepath.Join(dir, "movement", "normal_planning_freight_unit_header.csv"))
		assert.Equal(t, filepath.Join(dir, "movement", "normal_planning_freight_unit_header.csv"), unitHeaderMapping.resolvePath(dir))
	})
	t.Run("missing", func(t *testing.T) {
		assert.Empty(t, orderStageMapping.resolvePath(t.TempDir()))
	})
}
