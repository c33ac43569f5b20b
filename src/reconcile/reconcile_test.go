package reconcile

import (
	"testing"

	"github.com/stretchr/testify/require"

	"snpscope/src/contracts"
	"snpscope/src/lookup"
	"snpscope/src/rsid"
)

func rec(id string) contracts.VariantRecord {
	return contracts.VariantRecord{RSID: id, Allele1: "A", Allele2: "G", Chromosome: "1", Position: 100}
}

func TestReconcile(t *testing.T) {
	tests := []struct {
		name          string
		requested     []string
		returned      []contracts.VariantRecord
		wantRecords   []string
		wantNotFound  []rsid.Identifier
		wantFound     int
		wantRequested int
		wantRatio     string
	}{
		{
			name:          "duplicates and case",
			requested:     []string{"rs123", "RS456", "rs123"},
			returned:      []contracts.VariantRecord{rec("rs123")},
			wantRecords:   []string{"rs123"},
			wantNotFound:  []rsid.Identifier{"rs456"},
			wantFound:     1,
			wantRequested: 3,
			wantRatio:     "1 out of 3",
		},
		{
			name:          "all found in service order",
			requested:     []string{"rs1", "rs2"},
			returned:      []contracts.VariantRecord{rec("rs2"), rec("rs1")},
			wantRecords:   []string{"rs2", "rs1"},
			wantNotFound:  []rsid.Identifier{},
			wantFound:     2,
			wantRequested: 2,
			wantRatio:     "2 out of 2",
		},
		{
			name:          "all missing is still a result",
			requested:     []string{"rs7", "8", "rs7"},
			returned:      nil,
			wantRecords:   []string{},
			wantNotFound:  []rsid.Identifier{"rs7", "rs8"},
			wantFound:     0,
			wantRequested: 3,
			wantRatio:     "0 out of 3",
		},
		{
			name:          "returned identifier in different case",
			requested:     []string{"rs42"},
			returned:      []contracts.VariantRecord{rec("RS42")},
			wantRecords:   []string{"RS42"},
			wantNotFound:  []rsid.Identifier{},
			wantFound:     1,
			wantRequested: 1,
			wantRatio:     "1 out of 1",
		},
		{
			name:          "blank tokens are not counted",
			requested:     []string{"rs1", " ", "rs2"},
			returned:      []contracts.VariantRecord{rec("rs1")},
			wantRecords:   []string{"rs1"},
			wantNotFound:  []rsid.Identifier{"rs2"},
			wantFound:     1,
			wantRequested: 2,
			wantRatio:     "1 out of 2",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Reconcile(tt.requested, tt.returned)

			ids := make([]string, 0, len(got.Records))
			for _, r := range got.Records {
				ids = append(ids, r.RSID)
			}
			require.Equal(t, tt.wantRecords, ids)
			require.Equal(t, tt.wantNotFound, got.NotFound)
			require.Equal(t, tt.wantFound, got.Found)
			require.Equal(t, tt.wantRequested, got.Requested)
			require.Equal(t, tt.wantRatio, got.Ratio())
		})
	}
}

// Every requested identifier is either matched by a record or listed as
// not found, and never both.
func TestReconcile_Partition(t *testing.T) {
	requested := []string{"rs1", "Rs2", "3", "rs4", "rs1", "RS5"}
	returned := []contracts.VariantRecord{rec("rs5"), rec("rs2"), rec("rs9")}

	got := Reconcile(requested, returned)

	found := map[string]bool{}
	for _, r := range got.Records {
		found[string(rsid.Normalize(r.RSID))] = true
	}
	missing := map[string]bool{}
	for _, id := range got.NotFound {
		missing[string(id)] = true
	}

	for _, raw := range requested {
		id := string(rsid.Normalize(raw))
		require.NotEqual(t, found[id], missing[id], "identifier %s must be in exactly one set", id)
	}
	require.Equal(t, []rsid.Identifier{"rs1", "rs3", "rs4"}, got.NotFound)
	require.False(t, got.Complete())
}

func TestReconcile_DoesNotAliasInput(t *testing.T) {
	returned := []contracts.VariantRecord{rec("rs1")}
	got := Reconcile([]string{"rs1"}, returned)
	got.Records[0].RSID = "changed"
	require.Equal(t, "rs1", returned[0].RSID)
}

func TestPrepareBatch(t *testing.T) {
	tokens, err := PrepareBatch(" rs1 , ,RS2,\n3 ")
	require.NoError(t, err)
	require.Equal(t, []string{"rs1", "RS2", "3"}, tokens)

	_, err = PrepareBatch(" , ,  ")
	require.ErrorIs(t, err, lookup.ErrValidation)

	_, err = PrepareBatch("")
	require.ErrorIs(t, err, lookup.ErrValidation)
}
