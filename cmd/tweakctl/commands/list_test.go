package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/tweakctl/tweakctl/internal/config"
)

const listFixtureYAML = `id: disable-telemetry
name: Disable Telemetry
description: Stops the connected user experiences service and telemetry collection.
elevated: true
options:
  - label: Enabled
    registry:
      - hive: HKLM
        key: SOFTWARE\Policies\Microsoft\Windows\DataCollection
        value: AllowTelemetry
        type: dword
        data: 1
  - label: Disabled
    registry:
      - hive: HKLM
        key: SOFTWARE\Policies\Microsoft\Windows\DataCollection
        value: AllowTelemetry
        type: dword
        data: 0
`

// withCatalogDir points the loaded config at a temp catalog for the test.
func withCatalogDir(t *testing.T, files map[string]string) {
	t.Helper()
	dir := t.TempDir()
	for name, content := range files {
		if err := os.WriteFile(filepath.Join(dir, name), []byte(content), 0o644); err != nil {
			t.Fatal(err)
		}
	}
	prev := appConfig
	appConfig = &config.Config{Version: 1, CatalogDir: dir, OSVersion: config.DefaultOSVersion}
	t.Cleanup(func() { appConfig = prev })
}

func TestRunList_Text(t *testing.T) {
	withCatalogDir(t, map[string]string{"telemetry.yaml": listFixtureYAML})

	var buf bytes.Buffer
	if err := runListWithWriter(nil, nil, &buf); err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	out := buf.String()
	for _, want := range []string{"disable-telemetry", "[elevated]", "Enabled, Disabled"} {
		if !strings.Contains(out, want) {
			t.Errorf("output missing %q:\n%s", want, out)
		}
	}
}

func TestRunList_NoColorWhenNotTerminal(t *testing.T) {
	withCatalogDir(t, map[string]string{"telemetry.yaml": listFixtureYAML})

	var buf bytes.Buffer
	if err := runListWithWriter(nil, nil, &buf); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	if strings.Contains(buf.String(), "\033[") {
		t.Errorf("piped output contains ANSI escapes:\n%q", buf.String())
	}
}

func TestRunList_JSON(t *testing.T) {
	withCatalogDir(t, map[string]string{"telemetry.yaml": listFixtureYAML})

	listJSON = true
	defer func() { listJSON = false }()

	var buf bytes.Buffer
	if err := runListWithWriter(nil, nil, &buf); err != nil {
		t.Fatalf("runList() error = %v", err)
	}

	var out []struct {
		ID       string `json:"id"`
		Elevated bool   `json:"elevated"`
		Options  []struct {
			Label string `json:"label"`
		} `json:"options"`
	}
	if err := json.Unmarshal(buf.Bytes(), &out); err != nil {
		t.Fatalf("output is not valid JSON: %v\n%s", err, buf.String())
	}
	if len(out) != 1 || out[0].ID != "disable-telemetry" || !out[0].Elevated {
		t.Errorf("unexpected JSON output: %+v", out)
	}
	if len(out[0].Options) != 2 {
		t.Errorf("options = %d, want 2", len(out[0].Options))
	}
}

func TestRunList_EmptyCatalog(t *testing.T) {
	withCatalogDir(t, nil)

	var buf bytes.Buffer
	if err := runListWithWriter(nil, nil, &buf); err != nil {
		t.Fatalf("runList() error = %v", err)
	}
	if !strings.Contains(buf.String(), "No tweaks") {
		t.Errorf("expected empty-catalog message, got:\n%s", buf.String())
	}
}

func TestRunCatalogValidate(t *testing.T) {
	withCatalogDir(t, map[string]string{"telemetry.yaml": listFixtureYAML})

	var buf bytes.Buffer
	if err := runCatalogValidateWithWriter(nil, nil, &buf); err != nil {
		t.Fatalf("runCatalogValidate() error = %v", err)
	}
	if !strings.Contains(buf.String(), "1 tweak(s)") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestRunCatalogValidate_Invalid(t *testing.T) {
	withCatalogDir(t, map[string]string{"bad.yaml": "id: Bad Id\nname: x\noptions: []\n"})

	var buf bytes.Buffer
	if err := runCatalogValidateWithWriter(nil, nil, &buf); err == nil {
		t.Fatal("expected a validation error")
	}
}
