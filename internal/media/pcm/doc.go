// Package pcm decodes audio windows into normalized mono samples for
// cross-correlation. All decoding goes through ffmpeg so any input codec
// the system can demux is usable for analysis.
package pcm
