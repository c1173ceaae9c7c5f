// Package videodiff wraps an external frame-comparison tool as an alternate
// delay discovery engine for sources whose audio differs too much to
// correlate (different dubs, heavy restoration).
package videodiff
