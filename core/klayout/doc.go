// Package klayout drives KLayout sign-off runsets and reads their reports.
//
// DRC runsets write a report database (.lyrdb, XML) that ParseDRC reduces
// to a violation count per rule. LVS runsets write an .lvsdb database whose
// Z() cross-reference section ParseLVS scans for unmatched nets, devices and
// pins.
//
// Runner shells out to "klayout -b -r <deck> -rd name=value ..." once per
// cell. Tests replace the Exec hook instead of running the real tool.
package klayout
