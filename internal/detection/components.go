package detection

import (
	"image"
)

// Region is a connected group of foreground pixels, with its holes filled.
type Region struct {
	ID   int
	Rect image.Rectangle
	Area int
}

// FindRegions labels the 8-connected foreground regions of mask (non-zero = foreground).
//
// Background pixels that cannot reach the image border through 4-connected
// background are holes; they are counted as part of the region enclosing them.
// Only outermost regions are therefore reported, and a region's Area is the
// number of pixels inside its outer boundary.
//
// Regions are returned in raster order of their first pixel, IDs numbered from 0.
func FindRegions(mask *image.Gray) []Region {
	bounds := mask.Bounds()
	width, height := bounds.Dx(), bounds.Dy()
	if width == 0 || height == 0 {
		return nil
	}

	ink := make([]bool, width*height)
	for y := 0; y < height; y++ {
		row := mask.Pix[mask.PixOffset(bounds.Min.X, bounds.Min.Y+y):]
		for x := 0; x < width; x++ {
			ink[y*width+x] = row[x] != 0
		}
	}

	outside := markOutside(ink, width, height)

	solid := make([]bool, len(ink))
	for i := range ink {
		solid[i] = ink[i] || !outside[i]
	}

	visited := make([]bool, len(solid))
	regions := make([]Region, 0)
	for i := range solid {
		if solid[i] && !visited[i] {
			r := floodFill(solid, visited, i, width, height)
			r.ID = len(regions)
			r.Rect = r.Rect.Add(bounds.Min)
			regions = append(regions, r)
		}
	}
	return regions
}

// markOutside flags background pixels reachable from the border through
// 4-connected background.
func markOutside(ink []bool, width, height int) []bool {
	outside := make([]bool, len(ink))
	stack := make([]int, 0, 2*(width+height))

	push := func(i int) {
		if !ink[i] && !outside[i] {
			outside[i] = true
			stack = append(stack, i)
		}
	}

	for x := 0; x < width; x++ {
		push(x)
		push((height-1)*width + x)
	}
	for y := 0; y < height; y++ {
		push(y * width)
		push(y*width + width - 1)
	}

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		if x > 0 {
			push(i - 1)
		}
		if x < width-1 {
			push(i + 1)
		}
		if y > 0 {
			push(i - width)
		}
		if y < height-1 {
			push(i + width)
		}
	}
	return outside
}

// floodFill performs iterative 8-connected flood fill from start, marking
// visited pixels and returning the region's bounds and pixel count.
//
// Uses an explicit stack to avoid deep recursion on large regions.
func floodFill(solid, visited []bool, start, width, height int) Region {
	minX, minY := width, height
	maxX, maxY := -1, -1
	area := 0

	stack := []int{start}
	visited[start] = true

	for len(stack) > 0 {
		i := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		x, y := i%width, i/width

		area++
		if x < minX {
			minX = x
		}
		if x > maxX {
			maxX = x
		}
		if y < minY {
			minY = y
		}
		if y > maxY {
			maxY = y
		}

		// 8-connected neighbors
		for dy := -1; dy <= 1; dy++ {
			for dx := -1; dx <= 1; dx++ {
				if dx == 0 && dy == 0 {
					continue
				}
				nx, ny := x+dx, y+dy
				if nx < 0 || nx >= width || ny < 0 || ny >= height {
					continue
				}
				n := ny*width + nx
				if solid[n] && !visited[n] {
					visited[n] = true
					stack = append(stack, n)
				}
			}
		}
	}

	return Region{
		Rect: image.Rect(minX, minY, maxX+1, maxY+1),
		Area: area,
	}
}
