package bootstrap

import (
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/pagecraft/pagecraft/config"
)

func testConfig(t *testing.T) *config.Config {
	t.Helper()
	cfg, err := config.LoadFromEnv()
	if err != nil {
		t.Fatalf("LoadFromEnv: %v", err)
	}
	return cfg
}

func TestNewWiresEverything(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if a.HTTPServer == nil || a.HTTPServer.Handler == nil {
		t.Fatal("http server not wired")
	}
	if a.usageSvc == nil || a.limiter == nil || a.generateSvc == nil {
		t.Fatal("services not wired")
	}

	// Smoke the wired handler end to end.
	w := httptest.NewRecorder()
	r := httptest.NewRequest(http.MethodGet, "/health", nil)
	a.HTTPServer.Handler.ServeHTTP(w, r)
	if w.Code != http.StatusOK {
		t.Errorf("health status = %d, want 200", w.Code)
	}
}

func TestNewWithSqliteStore(t *testing.T) {
	cfg := testConfig(t)
	cfg.Usage.Store = "sqlite"
	cfg.Usage.DSN = filepath.Join(t.TempDir(), "usage.db")

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if a.DB == nil {
		t.Error("sqlite store should open a database")
	}
}

func TestNewWithSweeper(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sweep.Enabled = true
	cfg.Sweep.Schedule = "@hourly"

	a, err := New(cfg)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if a.sweeper == nil {
		t.Error("sweeper should be scheduled")
	}
}

func TestNewRejectsBadSweepSchedule(t *testing.T) {
	cfg := testConfig(t)
	cfg.Sweep.Enabled = true
	cfg.Sweep.Schedule = "not a schedule"

	if _, err := New(cfg); err == nil {
		t.Error("expected error for invalid cron expression")
	}
}

func TestApplyConfigReconfiguresServices(t *testing.T) {
	a, err := New(testConfig(t))
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	defer a.Shutdown()

	if got := a.usageSvc.ResolveContext("").Plan; got != "basic" {
		t.Fatalf("initial plan = %q, want basic", got)
	}

	cfg := testConfig(t)
	cfg.Usage.DemoMode = true
	a.applyConfig(cfg)

	if got := a.usageSvc.ResolveContext("").Plan; got != "demo" {
		t.Errorf("plan after reload = %q, want demo", got)
	}
}

func TestNewWithHotReload(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "pagecraft.yaml")
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\nusage:\n  demo_mode: true\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	a, err := NewWithHotReload(path)
	if err != nil {
		t.Fatalf("NewWithHotReload: %v", err)
	}
	defer a.Shutdown()

	if !strings.HasSuffix(a.HTTPServer.Addr, ":9090") {
		t.Errorf("addr = %q, want port 9090", a.HTTPServer.Addr)
	}

	if got := a.usageSvc.ResolveContext("").Plan; got != "demo" {
		t.Fatalf("initial plan = %q, want demo", got)
	}

	// Manual reload path.
	if err := os.WriteFile(path, []byte("server:\n  port: 9090\n"), 0o644); err != nil {
		t.Fatalf("rewrite config: %v", err)
	}
	if err := a.Reload(); err != nil {
		t.Fatalf("Reload: %v", err)
	}

	deadline := time.Now().Add(time.Second)
	for time.Now().Before(deadline) {
		if a.usageSvc.ResolveContext("").Plan == "basic" {
			return
		}
		time.Sleep(10 * time.Millisecond)
	}
	t.Error("reload did not reconfigure usage service")
}
