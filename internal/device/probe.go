package device

import (
	"time"

	"github.com/pilebones/go-udev/crawler"
)

// acceleratorSubsystems are the sysfs device classes that indicate a usable
// compute accelerator.
var acceleratorSubsystems = map[string]bool{
	"drm":   true,
	"accel": true,
}

const probeTimeout = 2 * time.Second

// probeAccelerator walks the udev device tree looking for an accelerator
// node. Any failure (no udev, permission, timeout) reports false: absence of
// an accelerated device is not an error, it just selects the fallback.
func probeAccelerator() bool {
	queue := make(chan crawler.Device)
	errs := make(chan error)
	quit := crawler.ExistingDevices(queue, errs, nil)
	defer close(quit)

	deadline := time.NewTimer(probeTimeout)
	defer deadline.Stop()

	for {
		select {
		case dev, ok := <-queue:
			if !ok {
				return false
			}
			if acceleratorSubsystems[dev.Env["SUBSYSTEM"]] {
				return true
			}
		case <-errs:
			return false
		case <-deadline.C:
			return false
		}
	}
}
