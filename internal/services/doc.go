// Package services provides the shared error taxonomy and context carriers
// used by every pipeline stage. Stages tag failures with sentinel markers so
// callers can classify them with errors.Is without string matching.
package services
