package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/foldrag/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/foldrag/internal/core/domain"
)

func noEnv(string) string { return "" }

func TestSettingsService_Get_ReturnsDefaults(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), WithGetenv(noEnv))

	cfg, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestSettingsService_Get_ReturnsStoredValues(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyModelQA, "llama3")
	_ = store.Set(KeyProviderEmbed, "openai")
	_ = store.Set(KeyChunkSize, int64(800))
	_ = store.Set(KeyTimeoutOCR, "90s")
	_ = store.Set(KeyRequestsPerSecond, 1.5)
	_ = store.Set("unrelated.key", "ignored")

	service := NewSettingsService(store, WithGetenv(func(k string) string {
		if k == domain.EnvOpenAIAPIKey {
			return "sk-env"
		}
		return ""
	}))

	cfg, err := service.Get()

	require.NoError(t, err)
	assert.Equal(t, "llama3", cfg.QA.Model)
	assert.Equal(t, domain.AIProviderOpenAI, cfg.Embed.Provider)
	assert.Equal(t, "sk-env", cfg.Embed.APIKey)
	assert.Equal(t, 800, cfg.ChunkSize)
	assert.Equal(t, 90*time.Second, cfg.Timeouts.OCR)
	assert.InDelta(t, 1.5, cfg.RequestsPerSecond, 1e-9)
}

func TestSettingsService_Get_InvalidStoredValue(t *testing.T) {
	store := memory.NewConfigStore()
	_ = store.Set(KeyProviderQA, "bedrock")

	_, err := NewSettingsService(store, WithGetenv(noEnv)).Get()

	require.Error(t, err)
	assert.ErrorIs(t, err, domain.ErrConfig)
	assert.Contains(t, err.Error(), KeyProviderQA)
}

func TestSettingsService_Get_OllamaHost(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), WithGetenv(func(k string) string {
		if k == domain.EnvOllamaHost {
			return "10.0.0.5:11434"
		}
		return ""
	}))

	cfg, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.OCR.BaseURL)
	assert.Equal(t, "http://10.0.0.5:11434", cfg.Embed.BaseURL)
}

func TestSettingsService_Set(t *testing.T) {
	tests := []struct {
		key     string
		value   string
		stored  any
		wantErr bool
	}{
		{KeyModelOCR, "llava", "llava", false},
		{KeyChunkSize, "600", 600, false},
		{KeyChunkSize, "0", nil, true},
		{KeyChunkSize, "big", nil, true},
		{KeyChunkOverlap, "0", 0, false},
		{KeyTimeoutAnswer, "120", "2m0s", false},
		{KeyTimeoutAnswer, "5m", "5m0s", false},
		{KeyTimeoutAnswer, "-1s", nil, true},
		{KeyProviderQA, "anthropic", "anthropic", false},
		{KeyProviderQA, "cohere", nil, true},
		{KeyRequestsPerSecond, "0.5", 0.5, false},
		{KeyRequestsPerSecond, "-2", nil, true},
		{"no.such.key", "x", nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.key+"="+tt.value, func(t *testing.T) {
			store := memory.NewConfigStore()
			service := NewSettingsService(store, WithGetenv(noEnv))

			err := service.Set(tt.key, tt.value)
			if tt.wantErr {
				require.Error(t, err)
				assert.ErrorIs(t, err, domain.ErrConfig)
				_, ok := store.Get(tt.key)
				assert.False(t, ok)
				return
			}
			require.NoError(t, err)
			got, ok := store.Get(tt.key)
			require.True(t, ok)
			assert.Equal(t, tt.stored, got)
		})
	}
}

func TestSettingsService_Lookup(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), WithGetenv(noEnv))
	require.NoError(t, service.Set(KeyTopK, "4"))

	got, err := service.Lookup(KeyTopK)
	require.NoError(t, err)
	assert.Equal(t, "4", got)

	got, err = service.Lookup(KeyTimeoutEmbed)
	require.NoError(t, err)
	assert.Equal(t, "1m0s", got)

	got, err = service.Lookup(KeyStoreDir)
	require.NoError(t, err)
	assert.Equal(t, "rag_store", got)

	_, err = service.Lookup("bogus")
	assert.ErrorIs(t, err, domain.ErrConfig)
}

func TestSettingsService_SetThenGetRoundTrip(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore(), WithGetenv(noEnv))
	for _, key := range service.Keys() {
		value, err := service.Lookup(key)
		require.NoError(t, err, key)
		if value == "" {
			continue
		}
		require.NoError(t, service.Set(key, value), key)
	}

	cfg, err := service.Get()
	require.NoError(t, err)
	assert.Equal(t, domain.DefaultConfig(), cfg)
}

func TestSettingsService_KeysAndPath(t *testing.T) {
	service := NewSettingsService(memory.NewConfigStore())
	keys := service.Keys()
	assert.Contains(t, keys, KeyModelOCR)
	assert.Contains(t, keys, KeyRequestsPerSecond)
	assert.IsIncreasing(t, keys)
	assert.Equal(t, ":memory:", service.Path())
}
