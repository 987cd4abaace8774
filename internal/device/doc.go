// Package device selects the compute device for inference and performs
// periodic memory housekeeping between chunks.
package device
