package klayout

// Config holds the KLayout batch settings.
type Config struct {
	// Binary is the klayout executable. KLAYOUT is honored as well.
	Binary string `mapstructure:"binary" default:"klayout"`
	// DRCDeck is the DRC runset (.lydrc).
	DRCDeck string `mapstructure:"drc_deck" default:"scripts/drc/batch/cell.lydrc"`
	// LVSDeck is the LVS runset (.lylvs).
	LVSDeck string `mapstructure:"lvs_deck" default:"scripts/lvs/batch-process/batch-cell-lvs.lylvs"`
	// DRCOutputDir receives one .lyrdb report per cell.
	DRCOutputDir string `mapstructure:"drc_output_dir" default:"drc-results"`
	// LVSOutputDir receives one .lvsdb report per cell.
	LVSOutputDir string `mapstructure:"lvs_output_dir" default:"lvs_results"`
	// ExtractionDir receives the extracted netlists.
	ExtractionDir string `mapstructure:"extraction_dir" default:"extraction_results"`
	// SkipCells are never checked (filler cells have no schematic).
	SkipCells []string `mapstructure:"skip_cells" default:"FILL"`
}
