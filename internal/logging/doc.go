// Package logging routes the textual output of a run.
//
// A run has two channels. Interim lines (one per step in verbose mode, plus
// warnings) and result lines each go to the console and to their own file in
// the run directory, log_interim.txt and log_result.txt.
package logging
