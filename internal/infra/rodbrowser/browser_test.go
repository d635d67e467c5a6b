package rodbrowser

import (
	"testing"

	"github.com/go-rod/rod/lib/launcher/flags"
	"github.com/stretchr/testify/assert"

	"github.com/aalvaropc/glimpse/internal/domain"
)

func TestLauncher_Flags(t *testing.T) {
	tests := []struct {
		name       string
		cfg        domain.BrowserConfig
		windowSize string
		headless   bool
		noSandbox  bool
	}{
		{
			name:       "viewport sets window size",
			cfg:        domain.BrowserConfig{Headless: true, ViewportWidth: 1280, ViewportHeight: 720},
			windowSize: "1280,720",
			headless:   true,
		},
		{
			name:      "no viewport leaves window size alone",
			cfg:       domain.BrowserConfig{NoSandbox: true},
			noSandbox: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := &Browser{cfg: tt.cfg}
			l := b.launcher()

			assert.Equal(t, tt.windowSize, l.Get(flags.Flag("window-size")))
			assert.Equal(t, tt.headless, l.Has(flags.Headless))
			assert.Equal(t, tt.noSandbox, l.Has(flags.NoSandbox))
			assert.True(t, l.Has(flags.Flag("disable-dev-shm-usage")))
		})
	}
}
