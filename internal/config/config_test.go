package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, "localhost:8050", cfg.Address())
	assert.Equal(t, "data/aug_dec_2016.xlsx", cfg.Data.InputFile)
	assert.Equal(t, "data/results.xlsx", cfg.Data.OutputFile)
	assert.Equal(t, "dateordered", cfg.Data.OrderDateColumn)
	assert.Equal(t, "datereturned", cfg.Data.ReturnDateColumn)
	assert.Equal(t, "orderstatus", cfg.Data.StatusColumn)
	assert.Equal(t, "orders", cfg.Data.QuantityColumn)
	assert.True(t, cfg.Data.CacheEnabled)
	assert.Equal(t, "info", cfg.Logger.Level)
	assert.Equal(t, "json", cfg.Logger.Format)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("SERVER_PORT", "9000")
	t.Setenv("SERVER_READ_TIMEOUT", "3s")
	t.Setenv("DATA_INPUT_FILE", "/tmp/orders.csv")
	t.Setenv("DATA_OUTPUT_FILE", "/tmp/out/summary.csv")
	t.Setenv("DATA_CACHE_ENABLED", "false")
	t.Setenv("LOG_FORMAT", "text")
	t.Setenv("SECURITY_ALLOWED_ORIGINS", "http://a.example, http://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 9000, cfg.Server.Port)
	assert.Equal(t, 3*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, "/tmp/orders.csv", cfg.Data.InputFile)
	assert.Equal(t, "/tmp/out/summary.csv", cfg.Data.OutputFile)
	assert.False(t, cfg.Data.CacheEnabled)
	assert.Equal(t, "text", cfg.Logger.Format)
	assert.Equal(t, []string{"http://a.example", "http://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoad_MalformedValuesFallBack(t *testing.T) {
	t.Setenv("SERVER_PORT", "eighty")
	t.Setenv("SERVER_IDLE_TIMEOUT", "forever")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 8050, cfg.Server.Port)
	assert.Equal(t, 60*time.Second, cfg.Server.IdleTimeout)
}

func TestLoad_Invalid(t *testing.T) {
	tests := []struct {
		name  string
		key   string
		value string
	}{
		{"port out of range", "SERVER_PORT", "70000"},
		{"negative write timeout", "SERVER_WRITE_TIMEOUT", "-1s"},
		{"unsupported input", "DATA_INPUT_FILE", "orders.json"},
		{"unsupported output", "DATA_OUTPUT_FILE", "summary.txt"},
		{"blank column", "DATA_STATUS_COLUMN", "   "},
		{"log level", "LOG_LEVEL", "verbose"},
		{"log format", "LOG_FORMAT", "xml"},
		{"rate limit", "SECURITY_RATE_LIMIT_RPS", "-5"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(tt.key, tt.value)
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestValidate_OutputOptional(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	cfg.Data.OutputFile = ""
	assert.NoError(t, cfg.validate())

	cfg.Data.InputFile = ""
	assert.ErrorContains(t, cfg.validate(), "input file")
}
