package contour

// traceLevel runs marching squares for one level and returns its vertex
// stream and segment offsets. img is width*height row-major; cells span
// [0,width-2] x [0,height-2].
func traceLevel(img []float32, width, height int32, level float32, scale, offset [2]float64) LevelResult {
	maxCX, maxCY := width-1, height-1
	if maxCX <= 0 || maxCY <= 0 {
		return LevelResult{Level: level}
	}

	visited := make(map[edgeKey]bool)
	var vertices []float32
	var segmentOffsets []int32

	emit := func(px, py float64) {
		vertices = append(vertices, float32(px*scale[0]+offset[0]), float32(py*scale[1]+offset[1]))
	}

	// startPolyline traces forward from a crossing edge of (cx,cy), in one
	// direction only, until it closes into a loop or runs off the image
	// boundary, emitting one contiguous polyline.
	startPolyline := func(cx, cy int32, e edge) {
		startKey := canonical(cx, cy, e)
		if visited[startKey] {
			return // already consumed by an earlier trace from the other side
		}
		caseIdx, a, b, c, d := cellCase(img, width, cx, cy, level)
		pairs := edgePairs(caseIdx, a, b, c, d, level)
		if _, ok := partnerOf(pairs, e); !ok {
			return
		}

		segStart := int32(len(vertices))
		var forward [][2]float64

		entryPX, entryPY := point(cx, cy, e, a, b, c, d, level)
		forward = append(forward, [2]float64{entryPX, entryPY})

		// Walk forward from e until boundary or loop closure. Each step
		// consumes the entry edge and its in-cell partner (the exit edge),
		// emitting only the exit point: the exit point of one cell and the
		// entry point of its neighbor are the same physical location, so
		// emitting both would duplicate every interior vertex.
		curCX, curCY, curE := cx, cy, e
		for {
			visited[canonical(curCX, curCY, curE)] = true

			caseIdx, a, b, c, d := cellCase(img, width, curCX, curCY, level)
			pairs := edgePairs(caseIdx, a, b, c, d, level)
			partner, ok := partnerOf(pairs, curE)
			if !ok {
				break
			}
			visited[canonical(curCX, curCY, partner)] = true
			ppx, ppy := point(curCX, curCY, partner, a, b, c, d, level)
			forward = append(forward, [2]float64{ppx, ppy})

			ncx, ncy, ne, ok := neighbor(curCX, curCY, partner, maxCX, maxCY)
			if !ok {
				break // ran off the image boundary: open curve ends here
			}
			if canonical(ncx, ncy, ne) == startKey {
				// Closed loop: repeat the entry point so the polyline's
				// first and last vertices coincide.
				forward = append(forward, [2]float64{entryPX, entryPY})
				break
			}
			curCX, curCY, curE = ncx, ncy, ne
		}

		if len(forward) == 0 {
			return
		}
		segmentOffsets = append(segmentOffsets, segStart)
		for _, v := range forward {
			emit(v[0], v[1])
		}
	}

	// Boundary seeds first: cells on the image border whose border-facing
	// edge crosses the level get an open-curve start point, emitted even
	// if a later interior sweep would otherwise have reached them first
	// ("boundary seeds are always emitted").
	for cx := int32(0); cx < maxCX; cx++ {
		startPolyline(cx, 0, edgeTop)
		startPolyline(cx, maxCY-1, edgeBottom)
	}
	for cy := int32(0); cy < maxCY; cy++ {
		startPolyline(0, cy, edgeLeft)
		startPolyline(maxCX-1, cy, edgeRight)
	}

	// Sweep remaining cells for interior closed loops.
	for cy := int32(0); cy < maxCY; cy++ {
		for cx := int32(0); cx < maxCX; cx++ {
			for _, e := range [4]edge{edgeTop, edgeRight, edgeBottom, edgeLeft} {
				if !visited[canonical(cx, cy, e)] {
					startPolyline(cx, cy, e)
				}
			}
		}
	}

	return LevelResult{Level: level, Vertices: vertices, SegmentOffsets: segmentOffsets}
}
