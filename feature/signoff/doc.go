// Package signoff runs batch DRC and LVS over standard cells.
//
// A batch walks the requested cells one at a time (skip-listed cells such as
// FILL are dropped), invokes the KLayout runset for each, and classifies the
// cell as pass, fail or error. Error covers cells that could not be checked:
// no schematic, or no report produced. Each batch writes into its own
// directory named after the batch id, so reports left by earlier or
// concurrent batches are never read.
//
// # History and Archive
//
// With a database, every batch is recorded through GORM and can be listed
// over HTTP. With object storage, each produced report is uploaded under
// reports/<batch id>/. Both are optional and their failures are only logged.
//
// # Routes
//
// Every route needs the API key. Run bodies name the layout, schematic and
// cells; runsets and output directories come from the configuration.
//
//	GET  /runs                      recent batches
//	GET  /runs/:id                  one batch
//	GET  /runs/:id/reports/:file    archived report
//	POST /runs/drc                  run DRC (superusers only)
//	POST /runs/lvs                  run LVS (superusers only)
package signoff
