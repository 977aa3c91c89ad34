// Package echo implements the Message Loop component.
//
// The loop moves between three states:
//
//	listening  --text frame-->         processing
//	listening  --binary frame-->       listening (ignored)
//	processing --decoded, logged, echoed--> listening
//	any        --close or error-->     closed
//
// Malformed JSON is either skipped or fatal, depending on Config.DecodeErrors.
package echo
