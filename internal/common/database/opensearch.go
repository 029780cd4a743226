// internal/common/database/opensearch.go
package database

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"soc-dashboard/internal/common/config"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

// OpenSearchClient wraps the OpenSearch API client
type OpenSearchClient struct {
	Client *opensearchapi.Client
}

// NewOpenSearch creates a new OpenSearch client
func NewOpenSearch(cfg config.DatastoreConfig, transport http.RoundTripper) (*OpenSearchClient, error) {
	osCfg := opensearch.Config{
		Addresses:    []string{cfg.URL},
		Transport:    transport,
		DisableRetry: true,
	}

	if cfg.Username != "" {
		osCfg.Username = cfg.Username
		osCfg.Password = cfg.Password
	}

	client, err := opensearchapi.NewClient(opensearchapi.Config{Client: osCfg})
	if err != nil {
		return nil, fmt.Errorf("failed to create opensearch client: %w", err)
	}

	return &OpenSearchClient{Client: client}, nil
}

// Ping tests the OpenSearch connection
func (c *OpenSearchClient) Ping(ctx context.Context) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := c.Client.Ping(ctx, &opensearchapi.PingReq{})
	if err != nil {
		return fmt.Errorf("opensearch ping failed: %w", err)
	}
	if res != nil && res.IsError() {
		return fmt.Errorf("opensearch ping error: %s", res.Status())
	}

	return nil
}
