// Package chapters adjusts Matroska chapter timelines for a merge: renaming
// to uniform labels, shifting by the plan's global delay, snapping starts to
// keyframes, and repairing end times so players never see overlap.
package chapters
