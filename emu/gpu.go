package emu

// PixelColor is one of the four grayscale shades a DMG LCD can show.
type PixelColor uint8

const (
	White     PixelColor = 255
	LightGray PixelColor = 192
	DarkGray  PixelColor = 96
	Black     PixelColor = 0
)

// Palette maps the 2-bit pixel values produced by the tile pipeline to
// screen colors.
type Palette [4]PixelColor

func paletteColorForBits(bits uint8) PixelColor {
	switch bits & 0x03 {
	case 0:
		return White
	case 1:
		return LightGray
	case 2:
		return DarkGray
	default:
		return Black
	}
}

func bitsForPaletteColor(c PixelColor) uint8 {
	switch c {
	case White:
		return 0
	case LightGray:
		return 1
	case DarkGray:
		return 2
	default:
		return 3
	}
}

// DecodePalette unpacks an 8-bit BGP/OBP register value into its 4-tuple.
func DecodePalette(v uint8) Palette {
	var p Palette
	for i := range p {
		p[i] = paletteColorForBits(v >> uint(i*2))
	}
	return p
}

// EncodePalette repacks a Palette back into its register form, the inverse
// of DecodePalette.
func EncodePalette(p Palette) uint8 {
	var v uint8
	for i, c := range p {
		v |= bitsForPaletteColor(c) << uint(i*2)
	}
	return v
}

// TileMapArea is one of the two VRAM base offsets a tile map can live at.
type TileMapArea uint16

const (
	TileMap9800 TileMapArea = 0x1800
	TileMap9C00 TileMapArea = 0x1C00
)

// ObjectSize selects between 8x8 and 8x16 sprites. Not rendered by this
// core; kept so OAM and LCDC round-trip correctly for a future object
// renderer.
type ObjectSize uint8

const (
	ObjectSize8x8 ObjectSize = iota
	ObjectSize8x16
)

// ObjectData is the decoded form of one 4-byte OAM entry. Reserved: this
// core never composites objects into the frame buffer.
type ObjectData struct {
	X, Y       int16
	Tile       uint8
	Palette    uint8
	FlipX      bool
	FlipY      bool
	BGPriority bool
}

// DecodeObject reads the OAM entry at the given byte offset (a multiple of
//4) into its ObjectData form.
func (g *GPU) DecodeObject(offset uint16) ObjectData {
	y := g.oam[offset]
	x := g.oam[offset+1]
	tile := g.oam[offset+2]
	attr := g.oam[offset+3]
	return ObjectData{
		X:          int16(x) - 8,
		Y:          int16(y) - 16,
		Tile:       tile,
		Palette:    (attr >> 4) & 0x01,
		FlipX:      attr&0x20 != 0,
		FlipY:      attr&0x40 != 0,
		BGPriority: attr&0x80 != 0,
	}
}

// Mode is the GPU's scanline phase. Values match the 2-bit STAT mode
// encoding directly: 0=HorizontalBlank, 1=VerticalBlank, 2=OAMScan,
// 3=DrawPixel.
type Mode uint8

const (
	ModeHorizontalBlank Mode = 0
	ModeVerticalBlank   Mode = 1
	ModeOAMScan         Mode = 2
	ModeDrawPixel       Mode = 3
)

// GPUInterruptRequest is the join semilattice {None, VBlank, LCDStat, Both}
// from a single GPU.Advance call, encoded as a bitmask so Add is a plain
// bitwise OR: commutative and idempotent for free.
type GPUInterruptRequest uint8

const (
	IRQNone    GPUInterruptRequest = 0
	IRQVBlank  GPUInterruptRequest = 1 << 0
	IRQLCDStat GPUInterruptRequest = 1 << 1
	IRQBoth    GPUInterruptRequest = IRQVBlank | IRQLCDStat
)

// Add joins two requests: None yields the other side, VBlank joined with
// LCDStat yields Both, and joining a value with itself yields itself.
func (r GPUInterruptRequest) Add(other GPUInterruptRequest) GPUInterruptRequest {
	return r | other
}

const (
	screenWidth  = 160
	screenHeight = 144
)

// GPU is the PPU: mode state machine, VRAM/OAM storage, LCD registers, and
// the background-only scanline renderer.
type GPU struct {
	vram [0x2000]uint8
	oam  [0xA0]uint8

	lcdEnable      bool
	windowTileMap  TileMapArea
	windowEnable   bool
	bgTileDataArea bool // true = $8000 unsigned addressing
	bgTileMapArea  TileMapArea
	objSize        ObjectSize
	objEnable      bool
	bgEnable       bool

	lycInterruptEnable    bool
	oamInterruptEnable    bool
	vblankInterruptEnable bool
	hblankInterruptEnable bool
	lycEqualsLY           bool

	mode        Mode
	currentLine uint8
	compareLine uint8
	primed      bool

	scy, scx uint8
	wy, wx   uint8

	bgp, obp0, obp1 Palette

	cycles int

	frameBuffer [screenWidth * screenHeight]uint8

	nvic *NVIC
}

// NewGPU returns a GPU wired to nvic, in the power-on state described in
// the data model: HorizontalBlank at line 0.
func NewGPU(nvic *NVIC) *GPU {
	return &GPU{
		mode:          ModeHorizontalBlank,
		bgTileMapArea: TileMap9800,
		windowTileMap: TileMap9800,
		bgp:           DecodePalette(0),
		obp0:          DecodePalette(0),
		obp1:          DecodePalette(0),
		nvic:          nvic,
	}
}

func (g *GPU) Mode() Mode           { return g.mode }
func (g *GPU) CurrentLine() uint8   { return g.currentLine }
func (g *GPU) FrameBuffer(i int) uint8 { return g.frameBuffer[i] }

// ReadVRAM reads byte offset within the 8 KiB VRAM window.
func (g *GPU) ReadVRAM(offset uint16) uint8 { return g.vram[offset&0x1FFF] }

// WriteVRAM writes byte offset within the 8 KiB VRAM window.
func (g *GPU) WriteVRAM(offset uint16, v uint8) { g.vram[offset&0x1FFF] = v }

// ReadOAM reads byte offset within the 160-byte OAM table.
func (g *GPU) ReadOAM(offset uint16) uint8 { return g.oam[offset%0xA0] }

// WriteOAM writes byte offset within the 160-byte OAM table.
func (g *GPU) WriteOAM(offset uint16, v uint8) { g.oam[offset%0xA0] = v }

// ReadRegister reads one of the FF40-FF4B LCD registers.
func (g *GPU) ReadRegister(addr uint16) uint8 {
	switch addr {
	case 0xFF40:
		return g.lcdc()
	case 0xFF41:
		return g.stat()
	case 0xFF42:
		return g.scy
	case 0xFF43:
		return g.scx
	case 0xFF44:
		return g.currentLine
	case 0xFF45:
		return g.compareLine
	case 0xFF47:
		return EncodePalette(g.bgp)
	case 0xFF48:
		return EncodePalette(g.obp0)
	case 0xFF49:
		return EncodePalette(g.obp1)
	case 0xFF4A:
		return g.wy
	case 0xFF4B:
		return g.wx
	default:
		return 0xFF
	}
}

// WriteRegister writes one of the FF40-FF4B LCD registers. FF44 (LY) is
// read-only and silently ignores writes.
func (g *GPU) WriteRegister(addr uint16, v uint8) {
	switch addr {
	case 0xFF40:
		g.setLCDC(v)
	case 0xFF41:
		g.setStat(v)
	case 0xFF42:
		g.scy = v
	case 0xFF43:
		g.scx = v
	case 0xFF44:
		// read-only
	case 0xFF45:
		g.compareLine = v
	case 0xFF47:
		g.bgp = DecodePalette(v)
	case 0xFF48:
		g.obp0 = DecodePalette(v)
	case 0xFF49:
		g.obp1 = DecodePalette(v)
	case 0xFF4A:
		g.wy = v
	case 0xFF4B:
		g.wx = v
	}
}

func (g *GPU) lcdc() uint8 {
	var v uint8
	if g.lcdEnable {
		v |= 0x80
	}
	if g.windowTileMap == TileMap9C00 {
		v |= 0x40
	}
	if g.windowEnable {
		v |= 0x20
	}
	if g.bgTileDataArea {
		v |= 0x10
	}
	if g.bgTileMapArea == TileMap9C00 {
		v |= 0x08
	}
	if g.objSize == ObjectSize8x16 {
		v |= 0x04
	}
	if g.objEnable {
		v |= 0x02
	}
	if g.bgEnable {
		v |= 0x01
	}
	return v
}

func (g *GPU) setLCDC(v uint8) {
	g.lcdEnable = v&0x80 != 0
	if v&0x40 != 0 {
		g.windowTileMap = TileMap9C00
	} else {
		g.windowTileMap = TileMap9800
	}
	g.windowEnable = v&0x20 != 0
	g.bgTileDataArea = v&0x10 != 0
	if v&0x08 != 0 {
		g.bgTileMapArea = TileMap9C00
	} else {
		g.bgTileMapArea = TileMap9800
	}
	if v&0x04 != 0 {
		g.objSize = ObjectSize8x16
	} else {
		g.objSize = ObjectSize8x8
	}
	g.objEnable = v&0x02 != 0
	g.bgEnable = v&0x01 != 0
}

func (g *GPU) stat() uint8 {
	v := uint8(0x80) // bit 7 unused, reads high
	if g.lycInterruptEnable {
		v |= 0x40
	}
	if g.oamInterruptEnable {
		v |= 0x20
	}
	if g.vblankInterruptEnable {
		v |= 0x10
	}
	if g.hblankInterruptEnable {
		v |= 0x08
	}
	if g.lycEqualsLY {
		v |= 0x04
	}
	v |= uint8(g.mode) & 0x03
	return v
}

func (g *GPU) setStat(v uint8) {
	g.lycInterruptEnable = v&0x40 != 0
	g.oamInterruptEnable = v&0x20 != 0
	g.vblankInterruptEnable = v&0x10 != 0
	g.hblankInterruptEnable = v&0x08 != 0
}

// Advance runs the mode state machine for cycles master cycles, rendering
// any completed scanlines and returning the interrupts this call raised.
// lcdEnable does not gate the mode machine: the reference source runs it
// unconditionally, and this core preserves that.
func (g *GPU) Advance(cycles int) GPUInterruptRequest {
	req := IRQNone

	// The GPU is constructed in HorizontalBlank at line 0 to match the
	// documented power-on state. The first call to Advance primes it into
	// OAMScan for line 0 at zero cost, so current_line tracks the row being
	// drawn directly rather than trailing it by one line on every frame.
	if !g.primed {
		g.primed = true
		g.mode = ModeOAMScan
	}

	g.cycles += cycles

loop:
	for {
		switch g.mode {
		case ModeOAMScan:
			if g.cycles < 80 {
				break loop
			}
			g.cycles -= 80
			g.mode = ModeDrawPixel
			if g.oamInterruptEnable {
				req = req.Add(IRQLCDStat)
			}

		case ModeDrawPixel:
			if g.cycles < 172 {
				break loop
			}
			g.cycles -= 172
			g.drawLine()
			g.mode = ModeHorizontalBlank
			if g.hblankInterruptEnable {
				req = req.Add(IRQLCDStat)
			}

		case ModeHorizontalBlank:
			if g.cycles < 204 {
				break loop
			}
			g.cycles -= 204
			if g.currentLine < 143 {
				g.currentLine++
				req = g.updateLYC(req)
				g.mode = ModeOAMScan
			} else {
				g.currentLine = 144
				req = g.updateLYC(req)
				g.mode = ModeVerticalBlank
				req = req.Add(IRQVBlank)
				if g.vblankInterruptEnable {
					req = req.Add(IRQLCDStat)
				}
			}

		case ModeVerticalBlank:
			if g.cycles < 456 {
				break loop
			}
			g.cycles -= 456
			g.currentLine++
			if g.currentLine > 153 {
				g.currentLine = 0
				g.mode = ModeOAMScan
			}
			req = g.updateLYC(req)
		}
	}

	if req&IRQVBlank != 0 {
		g.nvic.Request(IntVBlank)
	}
	if req&IRQLCDStat != 0 {
		g.nvic.Request(IntLCDStat)
	}
	return req
}

func (g *GPU) updateLYC(req GPUInterruptRequest) GPUInterruptRequest {
	was := g.lycEqualsLY
	g.lycEqualsLY = g.currentLine == g.compareLine
	if !was && g.lycEqualsLY && g.lycInterruptEnable {
		req = req.Add(IRQLCDStat)
	}
	return req
}

// drawLine renders the background layer for g.currentLine into the frame
// buffer, following the tile-map/tile-data addressing and scrolling rules.
func (g *GPU) drawLine() {
	if !g.bgEnable {
		return
	}

	y := g.currentLine
	for x := 0; x < screenWidth; x++ {
		fy := uint16(y) + uint16(g.scy)
		fx := (uint16(x) + uint16(g.scx)) & 0xFF
		fy &= 0xFF

		tileMapIndex := (fy/8)*32 + (fx / 8)
		tileMapAddr := (uint16(g.bgTileMapArea) + tileMapIndex) & 0x1FFF
		tileID := g.vram[tileMapAddr]

		var tileAddr uint16
		if g.bgTileDataArea {
			tileAddr = uint16(tileID) * 16
		} else {
			tileAddr = uint16(int32(0x1000) + int32(int8(tileID))*16)
		}

		rowOffset := (fy % 8) * 2
		d0 := g.vram[(tileAddr+rowOffset)&0x1FFF]
		d1 := g.vram[(tileAddr+rowOffset+1)&0x1FFF]

		bit := 7 - (fx % 8)
		v := ((d1>>bit)&1)<<1 | ((d0>>bit)&1)

		g.frameBuffer[int(y)*screenWidth+x] = uint8(g.bgp[v])
	}
}
