package mcp

import (
	"fmt"
	"testing"

	"snpscope/src/present"
)

func TestInMemoryStore(t *testing.T) {
	store := NewInMemoryStore()

	variants := []present.Display{
		{RSID: "rs7412", Genotype: "C;T"},
		{RSID: "rs53576", Genotype: "A;G"},
	}

	// Test Store
	store.Store("req-123", variants)

	// Test Get - found, case-insensitive
	v, found := store.Get("req-123", "RS53576")
	if !found {
		t.Error("Get() expected to find rs53576")
	}
	if v.Genotype != "A;G" {
		t.Errorf("Get() genotype = %q, want %q", v.Genotype, "A;G")
	}

	// Test Get - not found (wrong request)
	_, found = store.Get("req-999", "rs7412")
	if found {
		t.Error("Get() expected not to find variant in wrong request")
	}

	// Test Get - not found (wrong rsid)
	_, found = store.Get("req-123", "rs1")
	if found {
		t.Error("Get() expected not to find rs1")
	}

	// Test GetAll keeps service order
	all, found := store.GetAll("req-123")
	if !found {
		t.Fatal("GetAll() expected to find request")
	}
	if len(all) != 2 || all[0].RSID != "rs7412" {
		t.Errorf("GetAll() = %+v, want service order", all)
	}

	// Test GetAll - not found
	_, found = store.GetAll("req-999")
	if found {
		t.Error("GetAll() expected not to find non-existent request")
	}
}

func TestInMemoryStore_StoreCopies(t *testing.T) {
	store := NewInMemoryStore()
	variants := []present.Display{{RSID: "rs1"}}

	store.Store("req-1", variants)
	variants[0].RSID = "changed"

	all, _ := store.GetAll("req-1")
	if all[0].RSID != "rs1" {
		t.Errorf("stored batch changed with caller slice: %q", all[0].RSID)
	}
}

func TestInMemoryStore_EvictsOldest(t *testing.T) {
	store := NewInMemoryStore()

	for i := 0; i <= maxStoredBatches; i++ {
		store.Store(fmt.Sprintf("req-%d", i), []present.Display{{RSID: "rs1"}})
	}

	if _, found := store.GetAll("req-0"); found {
		t.Error("expected oldest batch to be evicted")
	}
	if _, found := store.Get(fmt.Sprintf("req-%d", maxStoredBatches), "rs1"); !found {
		t.Error("expected newest batch to be kept")
	}
}
