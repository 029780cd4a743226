package main

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"soc-dashboard/internal/reports"
	"soc-dashboard/pkg/registry"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func TestRetryWithBackoff(t *testing.T) {
	log := zaptest.NewLogger(t)

	t.Run("succeeds after failures", func(t *testing.T) {
		attempts := 0
		err := retryWithBackoff(context.Background(), func() error {
			attempts++
			if attempts < 3 {
				return errors.New("not yet")
			}
			return nil
		}, 5, time.Millisecond, log, "op")

		assert.NoError(t, err)
		assert.Equal(t, 3, attempts)
	})

	t.Run("gives up", func(t *testing.T) {
		attempts := 0
		err := retryWithBackoff(context.Background(), func() error {
			attempts++
			return errors.New("down")
		}, 3, time.Millisecond, log, "op")

		assert.ErrorContains(t, err, "op failed after 3 attempts: down")
		assert.Equal(t, 3, attempts)
	})

	t.Run("stops on cancel", func(t *testing.T) {
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		attempts := 0
		err := retryWithBackoff(ctx, func() error {
			attempts++
			return errors.New("down")
		}, 5, time.Hour, log, "op")

		assert.ErrorIs(t, err, context.Canceled)
		assert.Equal(t, 1, attempts)
	})
}

func TestLoadCatalog(t *testing.T) {
	service := reports.NewService(nil, nil, nil)

	t.Run("built-in", func(t *testing.T) {
		catalog, err := loadCatalog("", service)
		require.NoError(t, err)
		assert.Len(t, catalog.Reports, 8)
	})

	t.Run("file replaces built-in", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "reports.json")
		require.NoError(t, os.WriteFile(path, []byte(`{"version":"2","reports":[
			{"id":"mitre","displayName":"MITRE","path":"/api/v2/mitre","kind":"search","aggregation":"mitre"}
		]}`), 0o600))

		catalog, err := loadCatalog(path, service)
		require.NoError(t, err)
		require.Len(t, catalog.Reports, 1)
		assert.Equal(t, "/api/v2/mitre", catalog.Reports[0].Path)
	})

	t.Run("file contradicting the implementation is rejected", func(t *testing.T) {
		reg := registry.Default()
		for i := range reg.Reports {
			if reg.Reports[i].ID == "mitre" {
				reg.Reports[i].Aggregation = "techniques"
			}
		}
		data, err := json.Marshal(reg)
		require.NoError(t, err)
		path := filepath.Join(t.TempDir(), "reports.json")
		require.NoError(t, os.WriteFile(path, data, 0o600))

		_, err = loadCatalog(path, service)
		assert.ErrorContains(t, err, `report mitre has aggregation "techniques"`)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := loadCatalog(filepath.Join(t.TempDir(), "nope.json"), service)
		assert.ErrorContains(t, err, "failed to load report catalog")
	})
}
