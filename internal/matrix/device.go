package matrix

import (
	"fmt"
	"io"
	"time"

	"go.bug.st/serial"
)

// Port is the slice of a serial connection the device layer needs.
// Production code uses go.bug.st/serial ports; tests inject fakes.
type Port interface {
	io.ReadWriteCloser
	SetReadTimeout(t time.Duration) error
}

// PortOpener opens a serial port by platform name. Swappable in tests.
type PortOpener func(name string, baud int) (Port, error)

// OpenSerialPort is the default PortOpener backed by go.bug.st/serial.
func OpenSerialPort(name string, baud int) (Port, error) {
	mode := &serial.Mode{BaudRate: baud}
	p, err := serial.Open(name, mode)
	if err != nil {
		return nil, fmt.Errorf("failed to open serial port '%s': %w", name, err)
	}
	return p, nil
}

// Device is a synchronous handle on one LED matrix module. It owns the open
// port; exactly one goroutine may use it at a time (the Controller's writer
// loop, or a one-shot CLI invocation).
type Device struct {
	info DeviceInfo
	port Port

	responseTimeout time.Duration
}

// Open connects to the module on the given port.
func Open(info DeviceInfo, baud int, responseTimeout time.Duration, opener PortOpener) (*Device, error) {
	if opener == nil {
		opener = OpenSerialPort
	}
	if baud <= 0 {
		baud = DefaultBaudRate
	}
	p, err := opener(info.Port, baud)
	if err != nil {
		return nil, err
	}
	return &Device{info: info, port: p, responseTimeout: responseTimeout}, nil
}

// Info returns the discovery metadata for this device.
func (d *Device) Info() DeviceInfo { return d.info }

// Send writes a framed command without waiting for a response.
func (d *Device) Send(payload []byte) error {
	if _, err := d.port.Write(payload); err != nil {
		return fmt.Errorf("write to '%s' failed: %w", d.info.Port, err)
	}
	return nil
}

// Request writes a framed command and reads back up to ResponseSize bytes.
// USB CDC may deliver the response in arbitrary chunks, so reads accumulate
// until the buffer is full or the port times out (a zero-byte read).
func (d *Device) Request(payload []byte) ([]byte, error) {
	if err := d.Send(payload); err != nil {
		return nil, err
	}
	if d.responseTimeout > 0 {
		_ = d.port.SetReadTimeout(d.responseTimeout)
	}
	buf := make([]byte, ResponseSize)
	n := 0
	for n < ResponseSize {
		k, err := d.port.Read(buf[n:])
		if err != nil {
			return nil, fmt.Errorf("read from '%s' failed: %w", d.info.Port, err)
		}
		if k == 0 {
			break
		}
		n += k
	}
	if n == 0 {
		return nil, fmt.Errorf("no response from '%s'", d.info.Port)
	}
	return buf[:n], nil
}

// Close releases the serial port.
func (d *Device) Close() error {
	return d.port.Close()
}
