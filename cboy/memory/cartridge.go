package memory

import (
	"errors"
	"fmt"
	"strings"
	"unicode"
)

const (
	entryPointAddress      = 0x100
	titleAddress           = 0x134
	titleLength            = 16
	cgbFlagAddress         = 0x143
	cartridgeTypeAddress   = 0x147
	romSizeAddress         = 0x148
	ramSizeAddress         = 0x149
	versionNumberAddress   = 0x14C
	headerChecksumAddress  = 0x14D
	globalChecksumAddress  = 0x14E
	headerEnd              = 0x150
	minimumCartridgeLength = headerEnd
)

// ErrInvalidROM is returned when the data is too short to hold a cartridge header.
var ErrInvalidROM = errors.New("invalid ROM image")

// Cartridge holds the raw ROM image and the metadata parsed from its header.
type Cartridge struct {
	data           []byte
	title          string
	cgbFlag        uint8
	cartType       uint8
	romSize        uint8
	ramSize        uint8
	version        uint8
	headerChecksum uint8
	globalChecksum uint16
}

// NewCartridge creates an empty 32KB cartridge, useful for tests and for
// running without a game inserted.
func NewCartridge() *Cartridge {
	return &Cartridge{
		data:  make([]byte, 0x8000),
		title: "(Untitled)",
	}
}

// NewCartridgeWithData initializes a new Cartridge from a slice of bytes.
func NewCartridgeWithData(bytes []byte) (*Cartridge, error) {
	if len(bytes) < minimumCartridgeLength {
		return nil, fmt.Errorf("%w: %d bytes, need at least %d", ErrInvalidROM, len(bytes), minimumCartridgeLength)
	}

	cart := &Cartridge{
		data:           make([]byte, len(bytes)),
		cgbFlag:        bytes[cgbFlagAddress],
		cartType:       bytes[cartridgeTypeAddress],
		romSize:        bytes[romSizeAddress],
		ramSize:        bytes[ramSizeAddress],
		version:        bytes[versionNumberAddress],
		headerChecksum: bytes[headerChecksumAddress],
		globalChecksum: uint16(bytes[globalChecksumAddress])<<8 | uint16(bytes[globalChecksumAddress+1]),
	}
	copy(cart.data, bytes)

	titleBytes := bytes[titleAddress : titleAddress+titleLength]
	if cart.SupportsColor() {
		// the last 5 title bytes are the manufacturer code and CGB flag on newer carts
		titleBytes = titleBytes[:11]
	}
	cart.title = cleanTitle(titleBytes)

	return cart, nil
}

// Title returns the printable game title.
func (c *Cartridge) Title() string { return c.title }

// Data returns the raw ROM bytes. Callers must not modify them.
func (c *Cartridge) Data() []byte { return c.data }

// Type returns the cartridge type byte (0x147).
func (c *Cartridge) Type() uint8 { return c.cartType }

// ROMBanks returns the number of 16KB banks declared by the header.
func (c *Cartridge) ROMBanks() int {
	if c.romSize > 8 {
		return len(c.data) / 0x4000
	}
	return 2 << c.romSize
}

// SupportsColor reports whether the header flags the game as CGB-aware.
func (c *Cartridge) SupportsColor() bool {
	return c.cgbFlag == 0x80 || c.cgbFlag == 0xC0
}

// HeaderChecksumValid verifies the header checksum at 0x14D, the one the boot
// ROM refuses to start without.
func (c *Cartridge) HeaderChecksumValid() bool {
	if len(c.data) < headerEnd {
		return false
	}
	var sum uint8
	for _, b := range c.data[titleAddress:headerChecksumAddress] {
		sum = sum - b - 1
	}
	return sum == c.headerChecksum
}

// cleanTitle turns the raw header title into something printable: NUL
// padding is dropped, non printable bytes become '?'.
func cleanTitle(titleBytes []byte) string {
	runes := make([]rune, 0, len(titleBytes))
	for _, b := range titleBytes {
		r := rune(b)
		if r == 0 {
			r = ' '
		} else if r > unicode.MaxASCII || !unicode.IsPrint(r) {
			r = '?'
		}
		runes = append(runes, r)
	}

	title := strings.TrimSpace(string(runes))
	if title == "" {
		return "(Untitled)"
	}
	return title
}
