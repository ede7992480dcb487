package imageutil

import "math"

// CreateGradientImage creates a horizontal black-to-white gradient.
func CreateGradientImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			v := uint8(255 * x / max(width-1, 1))
			img.SetRGB(x, y, v, v, v)
		}
	}
	return img
}

// CreateColorGradientImage creates a gradient where red runs along x, green
// along y and blue along the diagonal.
func CreateColorGradientImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			r := uint8(255 * x / max(width-1, 1))
			g := uint8(255 * y / max(height-1, 1))
			b := uint8(255 * (x + y) / max(width+height-2, 1))
			img.SetRGB(x, y, r, g, b)
		}
	}
	return img
}

// CreateCheckerboardImage creates a black and white checkerboard.
func CreateCheckerboardImage(width, height, squareSize int) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			if ((x/squareSize)+(y/squareSize))%2 == 0 {
				img.SetRGB(x, y, 255, 255, 255)
			} else {
				img.SetRGB(x, y, 0, 0, 0)
			}
		}
	}
	return img
}

// CreateSolidImage creates a solid color image.
func CreateSolidImage(width, height int, r, g, b uint8) *RGBAImage {
	img := NewRGBAImage(width, height)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			img.SetRGB(x, y, r, g, b)
		}
	}
	return img
}

// CreateColorBarsImage creates an eight-bar color test pattern.
func CreateColorBarsImage(width, height int) *RGBAImage {
	img := NewRGBAImage(width, height)
	colors := [][3]uint8{
		{255, 255, 255}, // White
		{255, 255, 0},   // Yellow
		{0, 255, 255},   // Cyan
		{0, 255, 0},     // Green
		{255, 0, 255},   // Magenta
		{255, 0, 0},     // Red
		{0, 0, 255},     // Blue
		{0, 0, 0},       // Black
	}

	barWidth := max(width/len(colors), 1)
	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c := colors[min(x/barWidth, len(colors)-1)]
			img.SetRGB(x, y, c[0], c[1], c[2])
		}
	}
	return img
}

// CreateEdgeImage creates a gray field with a white rectangle in the
// center and a black diagonal line.
func CreateEdgeImage(width, height int) *RGBAImage {
	img := CreateSolidImage(width, height, 128, 128, 128)

	rx1, ry1 := width/4, height/4
	rx2, ry2 := 3*width/4, 3*height/4
	for y := ry1; y < ry2; y++ {
		for x := rx1; x < rx2; x++ {
			img.SetRGB(x, y, 255, 255, 255)
		}
	}

	for i := 0; i < min(width, height)/2; i++ {
		img.SetRGB(i, i, 0, 0, 0)
	}

	return img
}

// CalculateMSE calculates the per-channel mean squared error between two
// RGBA images over R, G and B.
func CalculateMSE(img1, img2 *RGBAImage) float64 {
	if img1.Width() != img2.Width() || img1.Height() != img2.Height() {
		return math.MaxFloat64
	}

	width, height := img1.Width(), img1.Height()
	var sumSq float64
	count := float64(width * height * 3)

	for y := 0; y < height; y++ {
		for x := 0; x < width; x++ {
			c1 := img1.RGBAAt(x, y)
			c2 := img2.RGBAAt(x, y)
			dr := float64(c1.R) - float64(c2.R)
			dg := float64(c1.G) - float64(c2.G)
			db := float64(c1.B) - float64(c2.B)
			sumSq += dr*dr + dg*dg + db*db
		}
	}

	return sumSq / count
}
