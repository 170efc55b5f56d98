//go:build windows

package printer

import (
	"fmt"
	"os"
	"os/exec"
	"time"
	"unsafe"

	"golang.org/x/sys/windows"
)

var (
	winspool              = windows.NewLazySystemDLL("winspool.drv")
	procOpenPrinter       = winspool.NewProc("OpenPrinterW")
	procClosePrinter      = winspool.NewProc("ClosePrinter")
	procStartDocPrinter   = winspool.NewProc("StartDocPrinterW")
	procEndDocPrinter     = winspool.NewProc("EndDocPrinter")
	procStartPagePrinter  = winspool.NewProc("StartPagePrinter")
	procEndPagePrinter    = winspool.NewProc("EndPagePrinter")
	procWritePrinter      = winspool.NewProc("WritePrinter")
	procGetDefaultPrinter = winspool.NewProc("GetDefaultPrinterW")
	procEnumPrinters      = winspool.NewProc("EnumPrintersW")
)

const (
	printerEnumLocal       = 0x00000002
	printerEnumConnections = 0x00000004
)

// printerInfo4 mirrors PRINTER_INFO_4W.
type printerInfo4 struct {
	printerName *uint16
	serverName  *uint16
	attributes  uint32
}

// docInfo1 mirrors DOC_INFO_1W.
type docInfo1 struct {
	docName    *uint16
	outputFile *uint16
	datatype   *uint16
}

// listSystemDevices enumerates local and connected printers from the spooler.
func listSystemDevices() ([]string, error) {
	flags := uintptr(printerEnumLocal | printerEnumConnections)

	var needed, returned uint32
	// First call sizes the buffer.
	procEnumPrinters.Call(flags, 0, 4, 0, 0,
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if needed == 0 {
		return nil, nil
	}

	buf := make([]byte, needed)
	ret, _, err := procEnumPrinters.Call(flags, 0, 4,
		uintptr(unsafe.Pointer(&buf[0])), uintptr(needed),
		uintptr(unsafe.Pointer(&needed)), uintptr(unsafe.Pointer(&returned)))
	if ret == 0 {
		return nil, fmt.Errorf("EnumPrinters: %w", err)
	}

	infos := unsafe.Slice((*printerInfo4)(unsafe.Pointer(&buf[0])), returned)
	devices := make([]string, 0, returned)
	for i := range infos {
		if infos[i].printerName != nil {
			devices = append(devices, windows.UTF16PtrToString(infos[i].printerName))
		}
	}
	return devices, nil
}

// systemDefaultDevice returns the spooler's default printer name.
func systemDefaultDevice() (string, error) {
	var size uint32
	procGetDefaultPrinter.Call(0, uintptr(unsafe.Pointer(&size)))
	if size == 0 {
		return "", nil
	}

	buf := make([]uint16, size)
	ret, _, _ := procGetDefaultPrinter.Call(
		uintptr(unsafe.Pointer(&buf[0])), uintptr(unsafe.Pointer(&size)))
	if ret == 0 {
		return "", nil
	}
	return windows.UTF16ToString(buf), nil
}

// sendRawToDevice writes the payload through the spooler as a RAW document.
// The printer handle is released on every exit path; the timeout bounds the
// whole open/write/close sequence.
func sendRawToDevice(deviceName string, payload []byte, timeout time.Duration) error {
	done := make(chan error, 1)
	go func() {
		done <- writeRawDocument(deviceName, payload)
	}()

	select {
	case err := <-done:
		return err
	case <-time.After(timeout):
		// The blocked spooler call still owns the handle and will close it
		// whenever it returns.
		return fmt.Errorf("raw write to %q timed out after %s", deviceName, timeout)
	}
}

func writeRawDocument(deviceName string, payload []byte) error {
	namePtr, err := windows.UTF16PtrFromString(deviceName)
	if err != nil {
		return err
	}

	var handle windows.Handle
	ret, _, callErr := procOpenPrinter.Call(
		uintptr(unsafe.Pointer(namePtr)), uintptr(unsafe.Pointer(&handle)), 0)
	if ret == 0 {
		return fmt.Errorf("OpenPrinter %q: %w", deviceName, callErr)
	}
	defer procClosePrinter.Call(uintptr(handle))

	docName, _ := windows.UTF16PtrFromString("labelrun print job")
	datatype, _ := windows.UTF16PtrFromString("RAW")
	di := docInfo1{docName: docName, datatype: datatype}

	ret, _, callErr = procStartDocPrinter.Call(uintptr(handle), 1, uintptr(unsafe.Pointer(&di)))
	if ret == 0 {
		return fmt.Errorf("StartDocPrinter on %q: %w", deviceName, callErr)
	}
	defer procEndDocPrinter.Call(uintptr(handle))

	ret, _, callErr = procStartPagePrinter.Call(uintptr(handle))
	if ret == 0 {
		return fmt.Errorf("StartPagePrinter on %q: %w", deviceName, callErr)
	}
	defer procEndPagePrinter.Call(uintptr(handle))

	if len(payload) == 0 {
		return nil
	}

	var written uint32
	ret, _, callErr = procWritePrinter.Call(uintptr(handle),
		uintptr(unsafe.Pointer(&payload[0])), uintptr(len(payload)),
		uintptr(unsafe.Pointer(&written)))
	if ret == 0 {
		return fmt.Errorf("WritePrinter on %q: %w", deviceName, callErr)
	}
	if int(written) != len(payload) {
		return fmt.Errorf("short write to %q: %d of %d bytes", deviceName, written, len(payload))
	}
	return nil
}

// spoolViaFile stages the payload in a temp file and copies it to the
// printer share. Best-effort secondary path, attempted once.
func spoolViaFile(deviceName string, payload []byte, timeout time.Duration) error {
	tmp, err := os.CreateTemp("", "labelrun-*.prn")
	if err != nil {
		return fmt.Errorf("creating spool file: %w", err)
	}
	tmpName := tmp.Name()
	defer os.Remove(tmpName)

	if _, err := tmp.Write(payload); err != nil {
		tmp.Close()
		return fmt.Errorf("writing spool file: %w", err)
	}
	if err := tmp.Close(); err != nil {
		return fmt.Errorf("closing spool file: %w", err)
	}

	share := fmt.Sprintf(`\\localhost\%s`, deviceName)
	cmd := exec.Command("cmd.exe", "/c", "copy", "/b", tmpName, share)
	done := make(chan error, 1)
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("starting copy to %s: %w", share, err)
	}
	go func() { done <- cmd.Wait() }()

	select {
	case err := <-done:
		if err != nil {
			return fmt.Errorf("copy to %s: %w", share, err)
		}
		return nil
	case <-time.After(timeout):
		_ = cmd.Process.Kill()
		return fmt.Errorf("copy to %s timed out after %s", share, timeout)
	}
}
