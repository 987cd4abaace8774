// Command yammer is the batch speech-transcription CLI: it chunks media
// files, decodes them with an external acoustic model runner, and produces
// transcripts, metadata, and keyword databases.
package main
