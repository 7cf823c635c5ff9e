// Package consultest provides an in-process stand-in for the subset of the
// Consul HTTP API used by the consul metadata store.
package consultest

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sort"
	"strconv"
	"strings"
	"sync"
	"testing"

	"github.com/hashicorp/consul/api"
)

// Server serves /v1/status/leader and the KV get, list and check-and-set
// endpoints from memory.
type Server struct {
	*httptest.Server

	mu     sync.Mutex
	pairs  map[string]*api.KVPair
	index  uint64
	leader string

	// BeforeWrite, if set, runs before each PUT is applied.
	BeforeWrite func(key string)
}

// NewServer starts a server that is shut down when the test ends.
func NewServer(t testing.TB) *Server {
	t.Helper()

	s := &Server{
		pairs:  make(map[string]*api.KVPair),
		leader: "127.0.0.1:8300",
	}
	s.Server = httptest.NewServer(http.HandlerFunc(s.handle))
	t.Cleanup(s.Close)

	return s
}

// Address returns host:port for api.Config.Address.
func (s *Server) Address() string {
	return strings.TrimPrefix(s.URL, "http://")
}

// SetLeader changes the reported leader; empty means no leader.
func (s *Server) SetLeader(leader string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.leader = leader
}

// Put writes a value unconditionally, bumping its modify index.
func (s *Server) Put(key string, value []byte) {
	s.mu.Lock()
	defer s.mu.Unlock()

	s.put(key, value)
}

func (s *Server) put(key string, value []byte) {
	s.index++
	pair, ok := s.pairs[key]
	if !ok {
		pair = &api.KVPair{Key: key, CreateIndex: s.index}
		s.pairs[key] = pair
	}
	pair.Value = value
	pair.ModifyIndex = s.index
}

func (s *Server) handle(w http.ResponseWriter, r *http.Request) {
	switch {
	case r.URL.Path == "/v1/status/leader":
		s.mu.Lock()
		leader := s.leader
		s.mu.Unlock()
		writeJSON(w, leader)

	case strings.HasPrefix(r.URL.Path, "/v1/kv/"):
		key := strings.TrimPrefix(r.URL.Path, "/v1/kv/")
		switch r.Method {
		case http.MethodGet:
			s.get(w, r, key)
		case http.MethodPut:
			s.cas(w, r, key)
		default:
			w.WriteHeader(http.StatusMethodNotAllowed)
		}

	default:
		w.WriteHeader(http.StatusNotFound)
	}
}

func (s *Server) get(w http.ResponseWriter, r *http.Request, key string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	var pairs []*api.KVPair
	if _, recurse := r.URL.Query()["recurse"]; recurse {
		for k, pair := range s.pairs {
			if strings.HasPrefix(k, key) {
				pairs = append(pairs, pair)
			}
		}
		sort.Slice(pairs, func(i, j int) bool { return pairs[i].Key < pairs[j].Key })
	} else if pair, ok := s.pairs[key]; ok {
		pairs = append(pairs, pair)
	}

	if len(pairs) == 0 {
		w.WriteHeader(http.StatusNotFound)
		return
	}

	w.Header().Set("X-Consul-Index", strconv.FormatUint(s.index, 10))
	writeJSON(w, pairs)
}

func (s *Server) cas(w http.ResponseWriter, r *http.Request, key string) {
	value, err := io.ReadAll(r.Body)
	if err != nil {
		w.WriteHeader(http.StatusBadRequest)
		return
	}

	if s.BeforeWrite != nil {
		s.BeforeWrite(key)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if raw := r.URL.Query().Get("cas"); raw != "" {
		index, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		pair, exists := s.pairs[key]
		if (index == 0 && exists) || (index != 0 && (!exists || pair.ModifyIndex != index)) {
			writeJSON(w, false)
			return
		}
	}

	s.put(key, value)
	writeJSON(w, true)
}

func writeJSON(w http.ResponseWriter, v any) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}
