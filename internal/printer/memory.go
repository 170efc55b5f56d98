package printer

import (
	"sync"

	"github.com/avikko/labelrun-go/internal/errors"
)

// Job records one payload delivered to the in-memory transport.
type Job struct {
	Device  string
	Payload []byte
}

// Memory is a Transport backed by an in-memory device registry. It is used
// in tests and wherever a dry-run transport is wanted; it applies the same
// device resolution rules as the system transport.
type Memory struct {
	mu          sync.Mutex
	devices     []string
	defaultName string

	// FailAt makes the n-th Send call (1-based) fail with a device-write
	// error. Zero disables failure injection.
	FailAt int

	calls int
	jobs  []Job
}

// NewMemory creates an in-memory transport with the given registry.
func NewMemory(devices []string, defaultName string) *Memory {
	return &Memory{devices: devices, defaultName: defaultName}
}

// Send resolves the device and records the payload.
func (m *Memory) Send(deviceName string, payload []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	name, err := resolveDevice(deviceName, m.devices, m.defaultName)
	if err != nil {
		return err
	}

	m.calls++
	if m.FailAt != 0 && m.calls == m.FailAt {
		return errors.Newf("injected write failure on call %d", m.calls).
			Category(errors.CategoryDeviceWrite).
			Context("device", name).
			Build()
	}

	buf := make([]byte, len(payload))
	copy(buf, payload)
	m.jobs = append(m.jobs, Job{Device: name, Payload: buf})
	return nil
}

// ListDevices returns the configured registry.
func (m *Memory) ListDevices() ([]string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]string, len(m.devices))
	copy(out, m.devices)
	return out, nil
}

// DefaultDevice returns the configured default name.
func (m *Memory) DefaultDevice() (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.defaultName, nil
}

// SelfTest sends the diagnostic payload.
func (m *Memory) SelfTest(deviceName string) error {
	return m.Send(deviceName, []byte(selfTestPayload))
}

// Jobs returns a snapshot of delivered payloads.
func (m *Memory) Jobs() []Job {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]Job, len(m.jobs))
	copy(out, m.jobs)
	return out
}
