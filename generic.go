package didmeta

import (
	"fmt"
	"net/url"
	"strings"

	"github.com/mwantia/didmeta/log"
	"github.com/mwantia/didmeta/metrics"
	"github.com/mwantia/didmeta/store"
	"github.com/mwantia/didmeta/store/generic/consul"
	"github.com/mwantia/didmeta/store/generic/jsonmeta"
	"github.com/mwantia/didmeta/store/generic/memory"
)

// ParseGenericAddress selects the generic store implementation:
//
//	"" or ":database:"                       JSON documents in the shared database
//	":memory:"                               in-process index
//	consul://<host>:<port>/<prefix>?token=&dc=  Consul KV
func ParseGenericAddress(address string, db *store.Database, logger *log.Logger, m *metrics.Metrics) (store.GenericMetadataStore, error) {
	address = strings.TrimSpace(address)

	switch address {
	case "", ":database:":
		return jsonmeta.New(db, logger, m), nil
	case ":memory:", ":ephemeral:":
		return memory.New(m), nil
	}

	switch {
	case strings.HasPrefix(address, "consul://"):
		return parseConsulAddress(address, logger, m)
	}

	return nil, fmt.Errorf("failed to parse generic store address '%s': unknown protocol", address)
}

func parseConsulAddress(address string, logger *log.Logger, m *metrics.Metrics) (store.GenericMetadataStore, error) {
	u, err := url.Parse(address)
	if err != nil {
		return nil, fmt.Errorf("failed to parse generic store address '%s': %w", address, err)
	}

	query := u.Query()
	return consul.New(&consul.Config{
		Address:    u.Host,
		Prefix:     u.Path,
		Token:      query.Get("token"),
		Datacenter: query.Get("dc"),
	}, logger, m)
}
