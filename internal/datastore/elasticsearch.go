package datastore

import (
	"context"
	"fmt"
	"io"
	"net/http"

	"soc-dashboard/internal/common/config"
	"soc-dashboard/internal/common/database"

	"github.com/elastic/go-elasticsearch/v8/esapi"
)

type elasticsearchDriver struct {
	client *database.ElasticsearchClient
}

func newElasticsearchDriver(cfg config.DatastoreConfig, transport http.RoundTripper) (*elasticsearchDriver, error) {
	client, err := database.NewElasticsearch(cfg, transport)
	if err != nil {
		return nil, err
	}
	return &elasticsearchDriver{client: client}, nil
}

func (d *elasticsearchDriver) name() string { return config.DriverElasticsearch }

func (d *elasticsearchDriver) search(ctx context.Context, index string, body io.Reader) (*response, error) {
	es := d.client.Client
	res, err := es.Search(
		es.Search.WithContext(ctx),
		es.Search.WithIndex(index),
		es.Search.WithBody(body),
	)
	return read(res, err)
}

func (d *elasticsearchDriver) count(ctx context.Context, index string, body io.Reader) (*response, error) {
	es := d.client.Client
	opts := []func(*esapi.CountRequest){
		es.Count.WithContext(ctx),
		es.Count.WithIndex(index),
	}
	if body != nil {
		opts = append(opts, es.Count.WithBody(body))
	}
	res, err := es.Count(opts...)
	return read(res, err)
}

func (d *elasticsearchDriver) ping(ctx context.Context) error {
	return d.client.Ping(ctx)
}

func read(res *esapi.Response, err error) (*response, error) {
	if err != nil {
		return nil, err
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, fmt.Errorf("failed to read elasticsearch response: %w", err)
	}

	return &response{status: res.StatusCode, body: payload}, nil
}
