package main

import (
	"bytes"
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"greentrack/internal/analytics"
	"greentrack/internal/config"
	"greentrack/internal/middleware"
	"greentrack/internal/models"
	"greentrack/internal/testutil"
)

func testApp(t *testing.T, s config.Settings) (*app, *gorm.DB) {
	t.Helper()
	db := testutil.DB(t)
	return &app{
		load: func() config.Settings { return s },
		openDB: func(config.Settings, *logrus.Logger) (*gorm.DB, func(), error) {
			return db, func() {}, nil
		},
	}, db
}

func execute(t *testing.T, a *app, args ...string) (string, error) {
	t.Helper()
	var out, errOut bytes.Buffer
	rc := newRootCommand(a, strings.NewReader(""), &out, &errOut)
	rc.SetArgs(args)
	err := rc.ExecuteContext(context.Background())
	return out.String(), err
}

func TestTokenCommand(t *testing.T) {
	a, _ := testApp(t, config.Settings{JWTSecret: "cli-secret"})

	out, err := execute(t, a, "token", "--role", "admin", "--ttl", "1h")
	require.NoError(t, err)

	tok, err := middleware.ValidateToken("cli-secret", strings.TrimSpace(out))
	require.NoError(t, err)
	assert.True(t, tok.Valid)
}

func TestIngestBuildReport(t *testing.T) {
	dir := t.TempDir()
	files := map[string]string{
		"ADDRESSDATA.csv":        "LOCATION;NAME;CITY;POSTL CODE;STREET;C/R\nHAM;Hub;Hamburg;20095;Kai 1;DE\n",
		"MEANS_OF_TRANSPORT.csv": "MEANS OF TRANSPORT;MTR DESCRIPTION\nELECTRIC_TRUCK;Electric Truck\n",
		"RESSOURCE_HEAD.csv":     "RESOURCE;MEANS OF TRANSPORT\nEV-1;ELECTRIC_TRUCK\n",
		"RESOURCE_EQUIPMENT_ATTRIBUTES.csv": "MEANS OF TRANSPORT;MAXIMUM PAYLOAD WEIGHT;CUBIC CAPACITY;CO₂ EMISSIONS (EMPTY LOAD);CO₂ EMISSIONS (FULL LOAD)\n" +
			"ELECTRIC_TRUCK;1.000;10;0,1;0,25\n",
		"movement/normal_planning_freight_order_header.csv": "KEY;MEANS OF TRANSPORT;NET WEIGHT;GROSS VOLUME;TOTAL DISTANCE;TOTAL NET DURATION\nFO1;ELECTRIC_TRUCK;200;1;100;1:30\n",
		"movement/normal_planning_freight_order_stops.csv":  "KEY;PARENT_KEY;LOCATION;STOP CATEGORY;STOP\nS1;FO1;HAM;O;10\nS2;FO1;HAM;I;20\n",
		"movement/normal_planning_freight_order_stages.csv": "KEY;PARENT_KEY;ROOT_KEY;TO STOP KEY;DECIMAL VALUE;DURATION\nST1;FO1;S1;S2;100;1:30\n",
	}
	for name, content := range files {
		p := filepath.Join(dir, filepath.FromSlash(name))
		require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
		require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	}

	a, db := testApp(t, config.Settings{
		DataDir:         dir,
		BatchSize:       100,
		ElectricMarkers: analytics.DefaultElectricMarkers,
	})

	out, err := execute(t, a, "ingest", "--replace")
	require.NoError(t, err)
	assert.Contains(t, out, "freight_order_stages")
	assert.Regexp(t, `total\s+8`, out)

	out, err = execute(t, a, "build-facts")
	require.NoError(t, err)
	assert.Equal(t, "inserted 1 rows into transport_stage_fact\n", out)

	var f models.TransportStageFact
	require.NoError(t, db.First(&f).Error)
	assert.InDelta(t, 100*(0.1+0.2*(0.25-0.1)), f.Co2Kg, 1e-9)

	out, err = execute(t, a, "report", "--json", "--top", "3")
	require.NoError(t, err)
	var r analytics.Report
	require.NoError(t, json.Unmarshal([]byte(out), &r))
	assert.EqualValues(t, 1, r.Totals.Stages)
	require.Len(t, r.Electric, 1)
	require.Len(t, r.Underutilized, 1)

	out, err = execute(t, a, "refresh-views")
	require.NoError(t, err)
	assert.Equal(t, "views refreshed\n", out)

	out, err = execute(t, a, "report")
	require.NoError(t, err)
	assert.Contains(t, out, "ELECTRIC VEHICLES")
}

func TestIngestCommand_MissingDir(t *testing.T) {
	a, _ := testApp(t, config.Settings{DataDir: filepath.Join(t.TempDir(), "absent")})
	_, err := execute(t, a, "ingest")
	require.Error(t, err)
}

func TestInitDBCommand(t *testing.T) {
	a, db := testApp(t, config.Settings{})
	out, err := execute(t, a, "init-db")
	require.NoError(t, err)
	assert.Equal(t, "database initialized\n", out)
	assert.True(t, db.Migrator().HasTable("transport_stage_fact"))

	out, err = execute(t, a, "init-db", "--reset")
	require.NoError(t, err)
	assert.Equal(t, "database reset\n", out)
}
