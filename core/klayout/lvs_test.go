package klayout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseLVS(t *testing.T) {
	tests := []struct {
		name      string
		content   string
		wantMatch bool
		wantErrs  []string
	}{
		{
			name: "Clean",
			content: `#%lvsdb-klayout
J(
 C(INV)
)
Z(
 X(INV INV 1
  Z(
   N(1 1 1)
   N(2 2 1)
   P(1 1 1)
   D(1 1 1)
  )
 )
)`,
			wantMatch: true,
			wantErrs:  []string{},
		},
		{
			name: "Mismatches",
			content: `#%lvsdb-klayout
Z(
 X(NAND2 NAND2 0
  Z(
   N(3 4 0)
   D(2 2 0)
   P(1 2 0)
   N(7 0 0)
   N(0 9 0)
   D(5 0 0)
   D(0 6 0)
  )
 )
)`,
			wantMatch: false,
			wantErrs: []string{
				"Net mismatch: layout net 3 vs schematic net 4",
				"Device mismatch: layout device 2 vs schematic device 2",
				"Pin mismatch: layout pin 1 vs schematic pin 2",
				"Extra net in layout: 7",
				"Missing net from schematic: 9",
				"Extra device in layout: 5",
				"Missing device from schematic: 6",
			},
		},
		{
			name: "UnresolvedPair",
			content: `#%lvsdb-klayout
Z(
 X(BUF BUF 0
  Z(
   N(1 1 1)
   N(0 0 0)
  )
 )
)`,
			wantMatch: false,
			wantErrs:  []string{"Net mismatch: layout net 0 vs schematic net 0"},
		},
		{
			name:      "NoCrossReference",
			content:   "#%lvsdb-klayout\nJ(\n C(INV)\n)\n",
			wantMatch: false,
			wantErrs:  []string{"No cross-reference section found"},
		},
		{
			name:      "TextReportMatch",
			content:   "Congratulations! Netlists match.",
			wantMatch: true,
			wantErrs:  []string{},
		},
		{
			name:      "TextReportLowercase",
			content:   "comparison done: netlists match",
			wantMatch: true,
			wantErrs:  []string{},
		},
		{
			name:      "TextReportFailure",
			content:   "ERROR: nets differ",
			wantMatch: false,
			wantErrs:  []string{"LVS comparison failed"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			report, err := ParseLVS(strings.NewReader(tt.content))
			require.NoError(t, err)
			assert.Equal(t, tt.wantMatch, report.Match)
			assert.Equal(t, tt.wantErrs, report.Errors)
		})
	}
}

func TestParseLVSFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseLVSFile(filepath.Join(dir, "INV-lvslvs.lvsdb"))
	assert.ErrorIs(t, err, ErrNoReport)

	path := filepath.Join(dir, "INV-lvslvs.lvsdb")
	require.NoError(t, os.WriteFile(path, []byte("netlists match"), 0o644))
	report, err := ParseLVSFile(path)
	require.NoError(t, err)
	assert.True(t, report.Match)
}
