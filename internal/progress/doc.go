// Package progress turns executor percent-complete readings into integer
// frame ticks and renders them.
//
// A Ticker belongs to one job and only ever emits non-negative deltas, so
// the sum of everything it reports never exceeds the job's frame total,
// whatever order or repetition the percentages arrive in. Reporters
// receive those deltas: Bar draws a terminal progress bar, LogReporter
// writes milestones to the log.
package progress
