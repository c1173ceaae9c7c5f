// Package language normalizes ISO 639 language codes so stream-selection
// preferences compare reliably against MKV track properties.
package language
