// Package printer dispatches raw label payloads to physical print devices.
//
// The payload is written as an opaque byte stream; no driver-level
// reinterpretation happens on this side. Rasterization is the printer
// firmware's job.
package printer

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/avikko/labelrun-go/internal/conf"
	"github.com/avikko/labelrun-go/internal/errors"
	"github.com/avikko/labelrun-go/internal/logging"
)

// Transport sends finished payloads to a named device.
type Transport interface {
	// Send writes payload to the device. An empty deviceName resolves to the
	// OS default device. Exactly one fallback delivery attempt is made after
	// a primary transport error.
	Send(deviceName string, payload []byte) error

	// ListDevices returns the names of all devices the OS registry reports.
	ListDevices() ([]string, error)

	// DefaultDevice returns the OS default device name, or empty when none.
	DefaultDevice() (string, error)

	// SelfTest sends a small fixed diagnostic payload through Send.
	SelfTest(deviceName string) error
}

// selfTestPayload is a minimal ZPL job used by SelfTest.
const selfTestPayload = "^XA^FO50,50^ADN,36,20^FDTest Print^FS^XZ"

// System is the OS print-spooler backed Transport. Platform specifics live in
// the per-OS build files and are injected as function values so tests can
// substitute them.
type System struct {
	timeout       time.Duration
	spoolFallback bool
	log           *slog.Logger

	listDevices   func() ([]string, error)
	defaultDevice func() (string, error)
	sendRaw       func(deviceName string, payload []byte, timeout time.Duration) error
	spoolFile     func(deviceName string, payload []byte, timeout time.Duration) error
}

// NewSystem builds the system transport from configuration.
func NewSystem(settings *conf.Settings) *System {
	log := logging.ForService("printer")
	if log == nil {
		log = slog.Default()
	}
	return &System{
		timeout:       settings.Print.Timeout,
		spoolFallback: settings.Print.SpoolFallback,
		log:           log,
		listDevices:   listSystemDevices,
		defaultDevice: systemDefaultDevice,
		sendRaw:       sendRawToDevice,
		spoolFile:     spoolViaFile,
	}
}

// Send resolves the device, then tries the raw channel and at most one
// spool-file fallback.
func (s *System) Send(deviceName string, payload []byte) error {
	if len(payload) == 0 {
		return errors.Newf("payload must not be empty").
			Category(errors.CategoryValidation).
			Build()
	}

	devices, err := s.ListDevices()
	if err != nil {
		return errors.New(fmt.Errorf("enumerating devices: %w", err)).
			Category(errors.CategoryDeviceNotFound).
			Build()
	}
	defaultDevice, _ := s.DefaultDevice()

	name, err := resolveDevice(deviceName, devices, defaultDevice)
	if err != nil {
		return err
	}

	start := time.Now()
	primaryErr := s.sendRaw(name, payload, s.timeout)
	if primaryErr == nil {
		s.log.Debug("raw dispatch ok", "device", name, "bytes", len(payload),
			"elapsed", time.Since(start))
		return nil
	}

	if !s.spoolFallback {
		return errors.New(fmt.Errorf("raw write to %q failed: %w", name, primaryErr)).
			Category(errors.CategoryDeviceWrite).
			Context("device", name).
			Build()
	}

	s.log.Warn("raw dispatch failed, trying spool-file fallback",
		"device", name, "error", primaryErr)

	fallbackErr := s.spoolFile(name, payload, s.timeout)
	if fallbackErr == nil {
		s.log.Info("spool-file fallback succeeded", "device", name)
		return nil
	}

	return errors.New(fmt.Errorf("both delivery methods to %q failed; raw: %v; spool file: %v",
		name, primaryErr, fallbackErr)).
		Category(errors.CategoryFallbackTransport).
		Context("device", name).
		Context("raw_error", primaryErr.Error()).
		Context("spool_error", fallbackErr.Error()).
		Build()
}

// ListDevices returns all device names known to the OS registry.
func (s *System) ListDevices() ([]string, error) {
	return s.listDevices()
}

// DefaultDevice returns the OS-reported default device name.
func (s *System) DefaultDevice() (string, error) {
	return s.defaultDevice()
}

// SelfTest exercises the transport with the fixed diagnostic payload.
func (s *System) SelfTest(deviceName string) error {
	return s.Send(deviceName, []byte(selfTestPayload))
}

// resolveDevice maps the requested name to a registered device. An empty
// request resolves to the default device; a name not present in the registry
// fails before any write is attempted. Matching is case-insensitive the way
// OS print registries are.
func resolveDevice(requested string, devices []string, defaultDevice string) (string, error) {
	name := strings.TrimSpace(requested)
	if name == "" {
		if defaultDevice == "" {
			return "", errors.Newf("no device specified and no default device found").
				Category(errors.CategoryDeviceNotFound).
				Build()
		}
		name = defaultDevice
	}

	for _, d := range devices {
		if strings.EqualFold(d, name) {
			return d, nil
		}
	}

	return "", errors.Newf("device %q not found, available: %s",
		name, strings.Join(devices, ", ")).
		Category(errors.CategoryDeviceNotFound).
		Context("device", name).
		Build()
}
