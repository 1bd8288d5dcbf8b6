package ingest

import (
	"os"
	"path/filepath"
	"sort"
	"strings"

	"golang.org/x/text/unicode/norm"
)

// Column maps one source header onto a canonical attribute.
type Column struct {
	Source string // header name, already in normalized (upper-case) form
	Attr   string

	// Optional columns are not reported when absent.
	Optional bool
	// Prefix allows headers carrying a suffix ("GROSS WEIGHT.1",
	// "GROSS WEIGHT (KG)") to match when the exact name is absent.
	Prefix bool
}

// TableMapping declares how one extract file maps onto an entity.
type TableMapping struct {
	Table        string
	Filename     string
	AltFilenames []string
	// Subdir is searched first; the data root is the fallback.
	Subdir  string
	Columns []Column
	// DateColumns lists attributes parsed as dates while reading.
	DateColumns []string
	Comma       rune
}

const movementDir = "movement"

var (
	addressMapping = TableMapping{
		Table:    "addresses",
		Filename: "ADDRESSDATA.csv",
		Columns: []Column{
			{Source: "LOCATION", Attr: "external_code"},
			{Source: "NAME", Attr: "name"},
			{Source: "CITY", Attr: "city"},
			{Source: "POSTL CODE", Attr: "postal_code"},
			{Source: "STREET", Attr: "street"},
			{Source: "C/R", Attr: "country"},
			{Source: "LATITUDE", Attr: "latitude", Optional: true},
			{Source: "LONGITUDE", Attr: "longitude", Optional: true},
		},
		Comma: ';',
	}

	transportTypeMapping = TableMapping{
		Table:    "transport_types",
		Filename: "MEANS_OF_TRANSPORT.csv",
		Columns: []Column{
			{Source: "MEANS OF TRANSPORT", Attr: "name"},
			{Source: "MTR DESCRIPTION", Attr: "description"},
		},
		Comma: ';',
	}

	vehicleMapping = TableMapping{
		Table:    "vehicles",
		Filename: "RESSOURCE_HEAD.csv",
		Columns: []Column{
			{Source: "RESOURCE", Attr: "license_plate"},
			{Source: "MEANS OF TRANSPORT", Attr: "transport_type"},
		},
		Comma: ';',
	}

	vehicleAttributesMapping = TableMapping{
		Table:        "vehicle_attributes",
		Filename:     "RESOURCE_EQUIPMENT_ATTRIBUTES.csv",
		AltFilenames: []string{"RESSOURCE_EQUIPTMENT_ATTRIBUTES.csv"},
		Columns: []Column{
			{Source: "MEANS OF TRANSPORT", Attr: "transport_type"},
			{Source: "MAXIMUM PAYLOAD WEIGHT", Attr: "capacity_kg"},
			{Source: "CUBIC CAPACITY", Attr: "capacity_volume"},
			{Source: "CO₂ EMISSIONS (EMPTY LOAD)", Attr: "co2_empty_kg_km"},
			{Source: "CO₂ EMISSIONS (FULL LOAD)", Attr: "co2_loaded_kg_km"},
		},
		Comma: ';',
	}

	unitHeaderMapping = TableMapping{
		Table:    "freight_units",
		Filename: "normal_planning_freight_unit_header.csv",
		Subdir:   movementDir,
		Columns: []Column{
			{Source: "KEY", Attr: "key"},
			{Source: "GROSS WEIGHT", Attr: "weight", Prefix: true},
			{Source: "GROSS VOLUME", Attr: "volume", Prefix: true},
			{Source: "TOTAL DISTANCE", Attr: "distance", Prefix: true},
			{Source: "TOTAL NET DURATION", Attr: "duration", Prefix: true},
			{Source: "PLANNED DATE", Attr: "planned_date", Optional: true, Prefix: true},
		},
		DateColumns: []string{"planned_date"},
		Comma:       ';',
	}

	unitStopMapping = TableMapping{
		Table:    "freight_unit_stops",
		Filename: "normal_planning_freight_unit_stops.csv",
		Subdir:   movementDir,
		Columns:  stopColumns,
		Comma:    ';',
	}

	orderHeaderMapping = TableMapping{
		Table:    "freight_orders",
		Filename: "normal_planning_freight_order_header.csv",
		Subdir:   movementDir,
		Columns: []Column{
			{Source: "KEY", Attr: "key"},
			{Source: "MEANS OF TRANSPORT", Attr: "transport_type", Prefix: true},
			{Source: "NET WEIGHT", Attr: "weight"},
			{Source: "GROSS VOLUME", Attr: "volume"},
			{Source: "TOTAL DISTANCE", Attr: "distance"},
			{Source: "TOTAL NET DURATION", Attr: "duration"},
			{Source: "PLANNED DATE", Attr: "planned_date", Optional: true, Prefix: true},
		},
		DateColumns: []string{"planned_date"},
		Comma:       ';',
	}

	orderItemMapping = TableMapping{
		Table:    "freight_order_items",
		Filename: "normal_planning_freight_order_items.csv",
		Subdir:   movementDir,
		Columns: []Column{
			{Source: "KEY", Attr: "key"},
			{Source: "PARENT_KEY", Attr: "parent_key"},
			{Source: "FREIGHT UNIT", Attr: "unit_key"},
			{Source: "GROSS WEIGHT", Attr: "weight", Prefix: true},
			{Source: "GROSS VOLUME", Attr: "volume", Prefix: true},
		},
		Comma: ';',
	}

	orderStopMapping = TableMapping{
		Table:    "freight_order_stops",
		Filename: "normal_planning_freight_order_stops.csv",
		Subdir:   movementDir,
		Columns:  stopColumns,
		Comma:    ';',
	}

	orderStageMapping = TableMapping{
		Table:    "freight_order_stages",
		Filename: "normal_planning_freight_order_stages.csv",
		Subdir:   movementDir,
		Columns: []Column{
			{Source: "KEY", Attr: "key"},
			{Source: "PARENT_KEY", Attr: "parent_key"},
			{Source: "ROOT_KEY", Attr: "from_key"},
			{Source: "TO STOP KEY", Attr: "to_key"},
			{Source: "DECIMAL VALUE", Attr: "distance"},
			{Source: "DURATION", Attr: "duration"},
		},
		Comma: ';',
	}

	stopColumns = []Column{
		{Source: "KEY", Attr: "key"},
		{Source: "PARENT_KEY", Attr: "parent_key"},
		{Source: "LOCATION", Attr: "location", Prefix: true},
		{Source: "STOP CATEGORY", Attr: "category"},
		{Source: "STOP", Attr: "sequence"},
	}
)

// NormalizeHeader canonicalizes a header cell: NFC, trimmed, upper-cased,
// trailing commas removed.
func NormalizeHeader(h string) string {
	h = strings.TrimPrefix(h, utf8BOM)
	h = strings.ToUpper(strings.TrimSpace(norm.NFC.String(h)))
	return strings.TrimSpace(strings.TrimRight(h, ","))
}

// pickColumn returns the index of the header matching name: exact first,
// then (when prefix is set) "NAME." and finally any header starting with
// name. -1 when nothing matches.
func pickColumn(headers []string, name string, prefix bool) int {
	for i, h := range headers {
		if h == name {
			return i
		}
	}
	if !prefix {
		return -1
	}
	for i, h := range headers {
		if strings.HasPrefix(h, name+".") {
			return i
		}
	}
	for i, h := range headers {
		if strings.HasPrefix(h, name) {
			return i
		}
	}
	return -1
}

// binding is a mapping resolved against one file's header row.
type binding struct {
	index   map[string]int // attr -> column index
	missing []string       // required source columns not found, sorted
}

func (m TableMapping) bind(headers []string) binding {
	b := binding{index: make(map[string]int, len(m.Columns))}
	for _, c := range m.Columns {
		if i := pickColumn(headers, NormalizeHeader(c.Source), c.Prefix); i >= 0 {
			b.index[c.Attr] = i
			continue
		}
		if !c.Optional {
			b.missing = append(b.missing, c.Source)
		}
	}
	sort.Strings(b.missing)
	return b
}

// resolvePath finds the file for m under dataDir. Candidates are tried in
// order, each also with a doubled ".csv" suffix as some exports produce;
// the subdirectory is searched before the data root. Empty when not found.
func (m TableMapping) resolvePath(dataDir string) string {
	candidates := append([]string{m.Filename}, m.AltFilenames...)
	bases := []string{dataDir}
	if m.Subdir != "" {
		bases = []string{filepath.Join(dataDir, m.Subdir), dataDir}
	}
	for _, base := range bases {
		for _, name := range candidates {
			p := filepath.Join(base, name)
			if isFile(p) {
				return p
			}
			if strings.HasSuffix(name, ".csv") && isFile(p+".csv") {
				return p + ".csv"
			}
		}
	}
	return ""
}

func isFile(p string) bool {
	fi, err := os.Stat(p)
	return err == nil && !fi.IsDir()
}
