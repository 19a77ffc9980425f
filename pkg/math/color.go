package math

// Color4 is an RGBA color with float components.
type Color4 struct {
	R, G, B, A float64
}

// Color3 is an RGB color with float components.
type Color3 struct {
	R, G, B float64
}

// White returns opaque white.
func White() Color4 {
	return Color4{1, 1, 1, 1}
}

// RGB drops the alpha channel.
func (c Color4) RGB() Color3 {
	return Color3{c.R, c.G, c.B}
}

// Array returns the components as an array.
func (c Color4) Array() [4]float64 {
	return [4]float64{c.R, c.G, c.B, c.A}
}

// RGBA extends c with the given alpha.
func (c Color3) RGBA(a float64) Color4 {
	return Color4{c.R, c.G, c.B, a}
}

// Array returns the components as an array.
func (c Color3) Array() [3]float64 {
	return [3]float64{c.R, c.G, c.B}
}
