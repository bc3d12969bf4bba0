// Package elasticsearch manages the search-index side of the pipeline:
// client construction, index lifecycle, and idempotent bulk upserts.
package elasticsearch

import (
	"fmt"
	"net/http"
	"strings"

	es "github.com/elastic/go-elasticsearch/v8"
)

// Config holds Elasticsearch connection configuration.
type Config struct {
	URL        string
	Username   string
	Password   string
	MaxRetries int
}

// NewClient creates an Elasticsearch client and verifies the connection
// with a ping.
func NewClient(cfg Config) (*es.Client, error) {
	addresses := []string{normalizeURL(cfg.URL)}

	clientConfig := es.Config{
		Addresses:  addresses,
		MaxRetries: cfg.MaxRetries,
	}
	if cfg.Username != "" && cfg.Password != "" {
		clientConfig.Username = cfg.Username
		clientConfig.Password = cfg.Password
	}

	client, err := es.NewClient(clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create Elasticsearch client: %w", err)
	}

	res, err := client.Ping()
	if err != nil {
		return nil, fmt.Errorf("failed to ping Elasticsearch: %w", err)
	}
	defer res.Body.Close()

	if res.IsError() {
		return nil, fmt.Errorf("error pinging Elasticsearch: %s", res.String())
	}

	return client, nil
}

func normalizeURL(url string) string {
	if url == "" {
		return "http://localhost:9200"
	}
	if !strings.HasPrefix(url, "http://") && !strings.HasPrefix(url, "https://") {
		return "http://" + url
	}
	return url
}

// isNotFound reports whether an ES response is a plain 404.
func isNotFound(statusCode int) bool {
	return statusCode == http.StatusNotFound
}
