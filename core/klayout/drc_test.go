package klayout

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sampleLyrdb = `<?xml version="1.0" encoding="utf-8"?>
<report-database>
 <description>DRC Run Report</description>
 <categories>
  <category>
   <name>M1.W</name>
   <description>Metal1 width &lt; 0.065</description>
   <categories/>
  </category>
  <category>
   <name>M1.S</name>
   <description/>
  </category>
  <category>
   <name>POLY</name>
   <description>Poly rules</description>
   <categories>
    <category>
     <name>POLY.EX</name>
     <description>Poly endcap</description>
    </category>
   </categories>
  </category>
 </categories>
 <cells>
  <cell><name>INV</name></cell>
 </cells>
 <items>
  <item><category>'M1.S'</category><cell>INV</cell></item>
  <item><category>'M1.W'</category><cell>INV</cell></item>
  <item><category>'M1.S'</category><cell>INV</cell></item>
  <item><category>'POLY.EX'</category><cell>INV</cell></item>
  <item><cell>INV</cell></item>
 </items>
</report-database>`

func TestParseDRC(t *testing.T) {
	report, err := ParseDRC(strings.NewReader(sampleLyrdb))
	require.NoError(t, err)

	assert.Equal(t, 5, report.Total)
	assert.False(t, report.Clean())
	assert.Equal(t, []RuleCount{
		{Rule: "M1.S", Count: 2},
		{Rule: "M1.W", Description: "Metal1 width < 0.065", Count: 1},
		{Rule: "POLY.EX", Description: "Poly endcap", Count: 1},
		{Rule: "unknown", Count: 1},
	}, report.ByRule)

	assert.Equal(t, "M1.S", report.ByRule[0].Label())
	assert.Equal(t, "M1.W: Metal1 width < 0.065", report.ByRule[1].Label())
}

func TestParseDRC_Clean(t *testing.T) {
	report, err := ParseDRC(strings.NewReader(`<report-database><categories/><items/></report-database>`))
	require.NoError(t, err)
	assert.True(t, report.Clean())
	assert.Empty(t, report.ByRule)
}

func TestParseDRC_Malformed(t *testing.T) {
	_, err := ParseDRC(strings.NewReader(`<report-database><items>`))
	assert.Error(t, err)
}

func TestParseDRCFile(t *testing.T) {
	dir := t.TempDir()

	_, err := ParseDRCFile(filepath.Join(dir, "missing.lyrdb"))
	assert.ErrorIs(t, err, ErrNoReport)

	path := filepath.Join(dir, "INV_drc.lyrdb")
	require.NoError(t, os.WriteFile(path, []byte(sampleLyrdb), 0o644))
	report, err := ParseDRCFile(path)
	require.NoError(t, err)
	assert.Equal(t, 5, report.Total)
}
