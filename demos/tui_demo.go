// Demo program to showcase the snpscope TUI against a local lookup service
// loaded with a small, realistic genotype sample.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"os"
	"sort"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"snpscope/src/config"
	"snpscope/src/contracts"
	"snpscope/src/logger"
	"snpscope/src/pipeline"
	"snpscope/src/scheduler"
	"snpscope/src/tui"
)

// maxPartialMatches mirrors the service's cap on suggestion results.
const maxPartialMatches = 10

func main() {
	fmt.Println("Loading sample genotype data...")
	records := generateSampleData()

	srv := httptest.NewServer(newDemoService(records))
	defer srv.Close()

	fmt.Printf("Loaded %d SNPs across %d chromosomes.\n", len(records), countChromosomes(records))
	fmt.Println("Launching TUI...")
	time.Sleep(500 * time.Millisecond) // Brief pause for effect

	cfg := &config.Config{
		ServiceURL:       srv.URL,
		DebounceInterval: config.DefaultDebounceInterval,
		RequestTimeout:   config.DefaultRequestTimeout,
	}
	log := logger.NewSilentLogger()

	rt, err := pipeline.Start(context.Background(), cfg, log)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error starting runtime: %v\n", err)
		os.Exit(1)
	}
	defer rt.Close()

	sched := scheduler.New(rt.Client, scheduler.WithQuietPeriod(cfg.DebounceInterval))
	model := tui.NewMainModel(rt.Coordinator, sched,
		tui.WithStats(rt.Client),
		tui.WithHistory(rt.Store),
		tui.WithServiceURL(cfg.ServiceURL),
	)

	if _, err := tea.NewProgram(model, tea.WithAltScreen()).Run(); err != nil {
		fmt.Fprintf(os.Stderr, "Error running TUI: %v\n", err)
		os.Exit(1)
	}
}

func countChromosomes(records []contracts.VariantRecord) int {
	chroms := make(map[string]bool)
	for _, r := range records {
		chroms[r.Chromosome] = true
	}
	return len(chroms)
}

type envelope map[string]interface{}

func writeJSON(w http.ResponseWriter, v envelope) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

// newDemoService answers the lookup API from records.
func newDemoService(records []contracts.VariantRecord) http.Handler {
	byID := make(map[string]contracts.VariantRecord, len(records))
	ids := make([]string, 0, len(records))
	for _, r := range records {
		byID[r.RSID] = r
		ids = append(ids, r.RSID)
	}
	sort.Strings(ids)

	mux := http.NewServeMux()
	mux.HandleFunc("/api/search", func(w http.ResponseWriter, r *http.Request) {
		id := strings.ToLower(strings.TrimSpace(r.URL.Query().Get("rsid")))
		if id == "" {
			writeJSON(w, envelope{"success": false, "message": "Missing rsid parameter"})
			return
		}

		if r.URL.Query().Get("partial") == "true" {
			matches := []string{}
			for _, candidate := range ids {
				if strings.HasPrefix(candidate, id) {
					matches = append(matches, candidate)
					if len(matches) == maxPartialMatches {
						break
					}
				}
			}
			writeJSON(w, envelope{"success": true, "matches": matches, "partial": true})
			return
		}

		rec, ok := byID[id]
		if !ok {
			writeJSON(w, envelope{"success": false, "message": fmt.Sprintf("RSID %s not found", id)})
			return
		}
		writeJSON(w, envelope{"success": true, "data": rec})
	})

	mux.HandleFunc("/api/batch-search", func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			RSIDs []string `json:"rsids"`
		}
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil || len(body.RSIDs) == 0 {
			writeJSON(w, envelope{"success": false, "message": "No RSIDs provided"})
			return
		}

		data := []contracts.VariantRecord{}
		for _, raw := range body.RSIDs {
			id := strings.ToLower(strings.TrimSpace(raw))
			if !strings.HasPrefix(id, "rs") {
				id = "rs" + id
			}
			if rec, ok := byID[id]; ok {
				data = append(data, rec)
			}
		}
		writeJSON(w, envelope{"success": true, "data": data, "count": len(data)})
	})

	mux.HandleFunc("/api/stats", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, envelope{"success": true, "totalSNPs": len(records), "isSorted": true})
	})

	return mux
}

func generateSampleData() []contracts.VariantRecord {
	return []contracts.VariantRecord{
		// Oxytocin receptor, often discussed for social behaviour
		{RSID: "rs53576", Allele1: "A", Allele2: "G", Chromosome: "3", Position: 8762685},
		{RSID: "rs2254298", Allele1: "G", Allele2: "G", Chromosome: "3", Position: 8760542},

		// APOE, together these two define e2/e3/e4
		{RSID: "rs429358", Allele1: "T", Allele2: "T", Chromosome: "19", Position: 44908684},
		{RSID: "rs7412", Allele1: "C", Allele2: "C", Chromosome: "19", Position: 44908822},

		// MTHFR
		{RSID: "rs1801133", Allele1: "A", Allele2: "G", Chromosome: "1", Position: 11796321},
		{RSID: "rs1801131", Allele1: "T", Allele2: "T", Chromosome: "1", Position: 11794419},

		// Lactase persistence
		{RSID: "rs4988235", Allele1: "A", Allele2: "G", Chromosome: "2", Position: 135851076},

		// Caffeine metabolism (CYP1A2)
		{RSID: "rs762551", Allele1: "A", Allele2: "A", Chromosome: "15", Position: 74749576},

		// Alcohol flush (ALDH2)
		{RSID: "rs671", Allele1: "G", Allele2: "G", Chromosome: "12", Position: 111803962},

		// ACTN3 sprint/endurance
		{RSID: "rs1815739", Allele1: "C", Allele2: "T", Chromosome: "11", Position: 66560624},

		// Eye colour (HERC2)
		{RSID: "rs12913832", Allele1: "G", Allele2: "G", Chromosome: "15", Position: 28120472},

		// Bitter taste (TAS2R38)
		{RSID: "rs713598", Allele1: "C", Allele2: "G", Chromosome: "7", Position: 141673345},

		// COMT Val158Met
		{RSID: "rs4680", Allele1: "A", Allele2: "G", Chromosome: "22", Position: 19963748},

		// Factor V Leiden
		{RSID: "rs6025", Allele1: "C", Allele2: "C", Chromosome: "1", Position: 169549811},

		// Neighbours of rs53576 by prefix, to make suggestions interesting
		{RSID: "rs535761", Allele1: "C", Allele2: "T", Chromosome: "6", Position: 31112345},
		{RSID: "rs5357", Allele1: "T", Allele2: "T", Chromosome: "9", Position: 2201934},
	}
}
