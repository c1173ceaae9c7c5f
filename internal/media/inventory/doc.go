// Package inventory reads container metadata through mkvmerge's JSON
// identification output. It is the single source of truth for track roles,
// codec ids, language tags, and container delays used by later stages.
package inventory
