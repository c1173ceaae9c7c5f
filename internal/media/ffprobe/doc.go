// Package ffprobe wraps ffprobe invocations for container duration and
// keyframe timestamp probes.
package ffprobe
