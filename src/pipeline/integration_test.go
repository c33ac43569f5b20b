package pipeline

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"snpscope/src/config"
	"snpscope/src/contracts"
	"snpscope/src/logger"
	"snpscope/src/search"
	"snpscope/src/store"
)

// fakeService answers like the lookup service with two known variants.
func fakeService(t *testing.T) *httptest.Server {
	t.Helper()
	known := map[string]map[string]interface{}{
		"rs53576": {"rsid": "rs53576", "allele1": "A", "allele2": "G", "chromosome": "3", "position": 8762685},
		"rs7412":  {"rsid": "rs7412", "allele1": "C", "allele2": "C", "chromosome": "19", "position": 44908822},
	}

	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		id := r.URL.Query().Get("rsid")
		rec, ok := known[id]
		w.Header().Set("Content-Type", "application/json")
		if !ok {
			_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": false, "message": "RSID " + id + " not found"})
			return
		}
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": rec})
	})
	mux.HandleFunc("/api/batch-search", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RSIDs []string `json:"rsids"`
		}
		_ = json.NewDecoder(r.Body).Decode(&body)
		var data []interface{}
		for _, id := range body.RSIDs {
			if rec, ok := known[id]; ok {
				data = append(data, rec)
			}
		}
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{"success": true, "data": data, "count": len(data)})
	})
	return httptest.NewServer(mux)
}

func waitForHistory(t *testing.T, st store.Store, want int) []contracts.SearchEvent {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		recent, err := st.RecentSearches(context.Background(), 10)
		require.NoError(t, err)
		if len(recent) >= want {
			return recent
		}
		if time.Now().After(deadline) {
			t.Fatalf("Timeout waiting for %d history entries, have %d", want, len(recent))
		}
		time.Sleep(5 * time.Millisecond)
	}
}

// TestEndToEndSearchHistory runs searches through the local runtime and
// checks that the history agent records them.
func TestEndToEndSearchHistory(t *testing.T) {
	srv := fakeService(t)
	defer srv.Close()

	cfg := &config.Config{
		ServiceURL:       srv.URL,
		DebounceInterval: config.DefaultDebounceInterval,
		RequestTimeout:   5 * time.Second,
	}

	rt, err := Start(context.Background(), cfg, logger.NewSilentLogger())
	require.NoError(t, err)
	defer rt.Close()

	require.Equal(t, LocalMode, rt.Mode)

	single := rt.Coordinator.Single(context.Background(), "53576")
	require.Equal(t, search.Found, single.Kind)
	require.Equal(t, "8,762,685", single.Display.PositionText)

	batch := rt.Coordinator.Batch(context.Background(), "rs7412, rs1, rs7412")
	require.Equal(t, "Found 2 out of 3 RSIDs", batch.Message)

	recent := waitForHistory(t, rt.Store, 2)
	require.Equal(t, contracts.SearchBatch, recent[0].Kind)
	require.Equal(t, []string{"rs1"}, recent[0].NotFound)
	require.Equal(t, contracts.SearchSingle, recent[1].Kind)
	require.Equal(t, rt.Coordinator.SessionID(), recent[1].SessionID)
}

// TestEndToEndSQLiteHistory checks history survives a runtime restart.
func TestEndToEndSQLiteHistory(t *testing.T) {
	srv := fakeService(t)
	defer srv.Close()

	cfg := &config.Config{
		ServiceURL:     srv.URL,
		RequestTimeout: 5 * time.Second,
		HistoryDBPath:  filepath.Join(t.TempDir(), "history.db"),
	}

	rt, err := Start(context.Background(), cfg, logger.NewSilentLogger())
	require.NoError(t, err)

	out := rt.Coordinator.Single(context.Background(), "rs999")
	require.Equal(t, search.NotFound, out.Kind)
	waitForHistory(t, rt.Store, 1)
	require.NoError(t, rt.Close())

	rt, err = Start(context.Background(), cfg, logger.NewSilentLogger())
	require.NoError(t, err)
	defer rt.Close()

	recent, err := rt.Store.RecentSearches(context.Background(), 10)
	require.NoError(t, err)
	require.Len(t, recent, 1)
	require.Equal(t, []string{"rs999"}, recent[0].NotFound)
}
