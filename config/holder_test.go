package config_test

import (
	"os"
	"testing"

	"github.com/pagecraft/pagecraft/config"
	"github.com/rs/zerolog"
)

func TestHolder_GetAndReload(t *testing.T) {
	path := writeConfig(t, "rate_limit:\n  max_requests: 10\n")

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	defer h.Stop()

	if h.Get().RateLimit.MaxRequests != 10 {
		t.Errorf("initial max = %d, want 10", h.Get().RateLimit.MaxRequests)
	}

	if err := os.WriteFile(path, []byte("rate_limit:\n  max_requests: 50\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if h.Get().RateLimit.MaxRequests != 50 {
		t.Errorf("reloaded max = %d, want 50", h.Get().RateLimit.MaxRequests)
	}
}

func TestHolder_ReloadKeepsOldConfigOnError(t *testing.T) {
	path := writeConfig(t, "rate_limit:\n  max_requests: 10\n")

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	defer h.Stop()

	if err := os.WriteFile(path, []byte("usage:\n  store: redis\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err == nil {
		t.Fatal("expected reload error")
	}

	if h.Get().RateLimit.MaxRequests != 10 {
		t.Error("old config was not kept after failed reload")
	}
}

func TestHolder_OnChange(t *testing.T) {
	path := writeConfig(t, "rate_limit:\n  max_requests: 10\n")

	h, err := config.NewHolder(path, zerolog.Nop())
	if err != nil {
		t.Fatalf("new holder: %v", err)
	}
	defer h.Stop()

	var got *config.Config
	h.OnChange(func(c *config.Config) { got = c })

	if err := os.WriteFile(path, []byte("rate_limit:\n  max_requests: 99\n"), 0o644); err != nil {
		t.Fatal(err)
	}
	if err := h.Reload(); err != nil {
		t.Fatalf("reload: %v", err)
	}

	if got == nil || got.RateLimit.MaxRequests != 99 {
		t.Error("onChange callback did not receive new config")
	}
}
