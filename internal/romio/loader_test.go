package romio

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func writeTempFile(t *testing.T, data []byte) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "rom.bin")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		t.Fatalf("WriteFile: %v", err)
	}
	return path
}

func TestLoadBootROMRequiresExact256Bytes(t *testing.T) {
	path := writeTempFile(t, make([]byte, BootROMSize))
	data, err := LoadBootROM(path)
	if err != nil {
		t.Fatalf("LoadBootROM: %v", err)
	}
	if len(data) != BootROMSize {
		t.Fatalf("len = %d, want %d", len(data), BootROMSize)
	}
}

func TestLoadBootROMRejectsWrongSize(t *testing.T) {
	path := writeTempFile(t, make([]byte, BootROMSize-1))
	_, err := LoadBootROM(path)
	if !errors.Is(err, ErrBootROMSize) {
		t.Fatalf("err = %v, want ErrBootROMSize", err)
	}
}

func TestLoadCartridgePadsShortFiles(t *testing.T) {
	path := writeTempFile(t, []byte{0x01, 0x02, 0x03})
	data, err := LoadCartridge(path)
	if err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	if len(data) != CartridgeROMSize {
		t.Fatalf("len = %d, want %d", len(data), CartridgeROMSize)
	}
	if data[0] != 0x01 || data[1] != 0x02 || data[2] != 0x03 {
		t.Fatalf("leading bytes = %v, want [1 2 3]", data[:3])
	}
	if data[3] != 0xFF || data[CartridgeROMSize-1] != 0xFF {
		t.Fatalf("padding byte = %#x, want 0xFF", data[3])
	}
}

func TestLoadCartridgeExactSize(t *testing.T) {
	full := make([]byte, CartridgeROMSize)
	full[0] = 0x42
	path := writeTempFile(t, full)
	data, err := LoadCartridge(path)
	if err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	if data[0] != 0x42 {
		t.Fatalf("data[0] = %#x, want 0x42", data[0])
	}
}

func TestLoadCartridgeIgnoresBytesBeyondTheMappedWindow(t *testing.T) {
	oversized := make([]byte, CartridgeROMSize+1)
	oversized[0] = 0x42
	oversized[CartridgeROMSize] = 0x99 // beyond the mapped window; must be ignored, not rejected
	path := writeTempFile(t, oversized)
	data, err := LoadCartridge(path)
	if err != nil {
		t.Fatalf("LoadCartridge: %v", err)
	}
	if len(data) != CartridgeROMSize {
		t.Fatalf("len = %d, want %d", len(data), CartridgeROMSize)
	}
	if data[0] != 0x42 {
		t.Fatalf("data[0] = %#x, want 0x42", data[0])
	}
}

func TestLoadBootROMMissingFile(t *testing.T) {
	_, err := LoadBootROM(filepath.Join(t.TempDir(), "missing.bin"))
	if err == nil {
		t.Fatal("expected an error for a missing file")
	}
}
