// Package audiocorr estimates the delay between two sources by
// cross-correlating short audio windows sampled across the program. Each
// window votes for an offset; the modal offset wins and its best match
// percentage becomes the confidence.
package audiocorr
