package hal

// Display is a buffered monochrome screen
type Display interface {
	// ClearBuffer blanks the frame buffer without touching the panel
	ClearBuffer()

	// Display pushes the frame buffer to the panel
	Display() error
}
