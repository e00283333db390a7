package io

import (
	"github.com/lucasb-eyer/go-colorful"
)

func colorTo8Bit(c colorful.Color) (uint8, uint8, uint8) {
	return c.Clamped().RGB255()
}

func colorFrom8Bit(r, g, b uint8) colorful.Color {
	return colorful.Color{R: float64(r) / 255, G: float64(g) / 255, B: float64(b) / 255}
}

// PCD stores colors packed as 0x00RRGGBB
func packRGB(c colorful.Color) uint32 {
	r, g, b := colorTo8Bit(c)
	return uint32(r)<<16 | uint32(g)<<8 | uint32(b)
}

func unpackRGB(v uint32) colorful.Color {
	return colorFrom8Bit(uint8(v>>16), uint8(v>>8), uint8(v))
}
