// Package wav reads and writes the mono 16 kHz 16-bit PCM WAV files the
// pipeline exchanges with the acoustic model. Conversion from arbitrary
// media formats happens upstream via ffmpeg; this package only handles the
// canonical model input format.
package wav
