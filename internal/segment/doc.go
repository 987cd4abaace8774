// Package segment owns the audio chunk lifecycle: splitting one media file
// into an ordered sequence of fixed-duration scratch chunks, enumerating
// them, and removing them when the file's inference loop finishes.
package segment
