package datastore

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"soc-dashboard/internal/common/config"
	"soc-dashboard/internal/common/database"

	"github.com/opensearch-project/opensearch-go/v4"
	"github.com/opensearch-project/opensearch-go/v4/opensearchapi"
)

type openSearchDriver struct {
	client *database.OpenSearchClient
}

func newOpenSearchDriver(cfg config.DatastoreConfig, transport http.RoundTripper) (*openSearchDriver, error) {
	client, err := database.NewOpenSearch(cfg, transport)
	if err != nil {
		return nil, err
	}
	return &openSearchDriver{client: client}, nil
}

func (d *openSearchDriver) name() string { return config.DriverOpenSearch }

// The low-level Do with a nil data pointer leaves the body unparsed, so
// non-2xx answers reach the caller with their status and payload intact.
func (d *openSearchDriver) search(ctx context.Context, index string, body io.Reader) (*response, error) {
	return d.do(ctx, &opensearchapi.SearchReq{
		Indices: []string{index},
		Body:    body,
	})
}

func (d *openSearchDriver) count(ctx context.Context, index string, body io.Reader) (*response, error) {
	return d.do(ctx, &opensearchapi.IndicesCountReq{
		Indices: []string{index},
		Body:    body,
	})
}

func (d *openSearchDriver) do(ctx context.Context, req opensearch.Request) (*response, error) {
	res, err := d.client.Client.Client.Do(ctx, req, nil)
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read opensearch response: %w", err)
	}

	return &response{status: res.StatusCode, body: payload}, nil
}

func (d *openSearchDriver) ping(ctx context.Context) error {
	return d.client.Ping(ctx)
}
