// Package romio loads the flat boot ROM and cartridge ROM images the core
// expects: no archive formats, no region detection, just the two fixed-size
// byte buffers the SoC is built from.
package romio

import (
	"errors"
	"fmt"
	"io"
	"os"
)

// BootROMSize is the exact size a boot ROM file must be.
const BootROMSize = 256

// CartridgeROMSize is the size of the flat cartridge ROM window the Bus
// maps at 0x0000-0x7FFF.
const CartridgeROMSize = 0x8000

// ErrBootROMSize is returned when a boot ROM file isn't exactly
// BootROMSize bytes.
var ErrBootROMSize = errors.New("boot ROM must be exactly 256 bytes")

// LoadBootROM reads the boot ROM at path, requiring an exact 256-byte file.
func LoadBootROM(path string) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("romio: reading boot ROM %s: %w", path, err)
	}
	if len(data) != BootROMSize {
		return nil, fmt.Errorf("romio: %s is %d bytes: %w", path, len(data), ErrBootROMSize)
	}
	return data, nil
}

// LoadCartridge reads the cartridge ROM at path into a CartridgeROMSize
// buffer. A short file is padded with 0xFF, matching an empty-socket
// cartridge bus. Bytes beyond CartridgeROMSize are ignored rather than
// rejected: this core has no bank switching to map them in, but a longer
// file (e.g. one carrying banks this core can't use) is not an error.
func LoadCartridge(path string) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("romio: opening cartridge ROM %s: %w", path, err)
	}
	defer f.Close()

	buf := make([]byte, CartridgeROMSize)
	for i := range buf {
		buf[i] = 0xFF
	}
	if _, err := io.ReadFull(f, buf); err != nil && !errors.Is(err, io.ErrUnexpectedEOF) && !errors.Is(err, io.EOF) {
		return nil, fmt.Errorf("romio: reading cartridge ROM %s: %w", path, err)
	}
	return buf, nil
}
