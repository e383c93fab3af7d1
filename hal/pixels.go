package hal

// PixelStrip drives a chain of addressable RGB pixels
type PixelStrip interface {
	// PutRGB sends one pixel's color. Successive calls address successive
	// pixels along the chain.
	PutRGB(r, g, b uint8) error
}
