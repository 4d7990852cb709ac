// Package tube lays out the static buffers for a field of tube meshes, one
// tube per link, that a compute stage animates every frame.
package tube

// IndexTemplate builds the triangle list shared by every tube.
//
// A tube has rings+1 rings of sides vertices each. Every side of every ring
// transition becomes a quad split into two triangles, so the result has
// 6*sides*rings entries, all in [0, sides*(rings+1)). The neighbour of the
// last vertex in a ring wraps back to the first vertex of the same ring,
// which closes the tube without a seam.
func IndexTemplate(rings, sides int) []int32 {
	if rings < 1 || sides < 1 {
		return nil
	}

	indices := make([]int32, 6*sides*rings)
	for ring := 1; ring <= rings; ring++ {
		lo := ring * sides // first vertex of this ring
		hi := lo + sides   // one past the last vertex of this ring
		prevLo := lo - sides

		for k := 0; k < sides; k++ {
			cur := lo + k
			prev := prevLo + k

			prevNext := prev + 1
			if prevNext >= lo {
				prevNext = prevLo
			}
			curNext := cur + 1
			if curNext >= hi {
				curNext = lo
			}

			i := 6 * ((ring-1)*sides + k)
			indices[i+0] = int32(prevNext)
			indices[i+1] = int32(prev)
			indices[i+2] = int32(cur)
			indices[i+3] = int32(cur)
			indices[i+4] = int32(curNext)
			indices[i+5] = int32(prevNext)
		}
	}
	return indices
}
