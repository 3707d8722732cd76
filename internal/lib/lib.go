// Package lib acts as a library for modules that do not fit
// strictly into other layers.
//
// It contains shared utilities and the background dependency
// monitor (scheduled with robfig/cron).
package lib
