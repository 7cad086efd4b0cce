package contour

import (
	"image"

	"github.com/paulmach/orb"
	"github.com/paulmach/orb/planar"
)

// Tracer is the pure Go contour source. It labels 8-connected foreground
// regions of a binary mask and follows the outer boundary of each with
// Moore-neighbour tracing. Runs of collinear boundary pixels are compressed
// to their end points, and regions lying inside another region's boundary
// are not reported: only external contours are returned.
type Tracer struct{}

// Extract implements Source. Any non-zero mask pixel is foreground.
func (Tracer) Extract(mask *image.Gray) ([]Contour, error) {
	if mask == nil {
		return nil, nil
	}
	lm := labelMask(mask)

	regions := make([]region, 0, len(lm.stats))
	for label := 1; label < len(lm.stats); label++ {
		st := lm.stats[label]
		c := New(lm.traceBoundary(label, st.start))
		regions = append(regions, region{ring: c.Ring(), box: st.box, start: st.start})
	}

	contours := make([]Contour, 0, len(regions))
	for i, r := range regions {
		if r.enclosedBy(regions, i) {
			continue
		}
		contours = append(contours, FromPoints(r.ring))
	}
	return contours, nil
}

type region struct {
	ring  orb.Ring
	box   image.Rectangle
	start image.Point
}

// enclosedBy reports whether the start pixel of the region falls inside the
// boundary of another region whose bounding box contains it.
func (r region) enclosedBy(regions []region, self int) bool {
	p := orb.Point{float64(r.start.X), float64(r.start.Y)}
	for j, other := range regions {
		if j == self || len(other.ring) < 4 || !r.box.In(other.box) {
			continue
		}
		if planar.RingContains(other.ring, p) {
			return true
		}
	}
	return false
}

type regionStats struct {
	start image.Point
	box   image.Rectangle
}

type labelMap struct {
	w, h   int
	labels []int
	stats  []regionStats // index 0 unused
}

// labelMask assigns a label to every 8-connected foreground region using an
// iterative flood fill. Regions are numbered in raster order, so every
// region's start pixel is its top-most, left-most pixel.
func labelMask(mask *image.Gray) *labelMap {
	b := mask.Bounds()
	w, h := b.Dx(), b.Dy()
	lm := &labelMap{
		w:      w,
		h:      h,
		labels: make([]int, w*h),
		stats:  []regionStats{{}},
	}

	stack := make([]image.Point, 0, 64)
	for y := 0; y < h; y++ {
		for x := 0; x < w; x++ {
			if lm.labels[y*w+x] != 0 || mask.GrayAt(x+b.Min.X, y+b.Min.Y).Y == 0 {
				continue
			}
			label := len(lm.stats)
			st := regionStats{start: image.Pt(x, y), box: image.Rect(x, y, x+1, y+1)}

			stack = append(stack[:0], image.Pt(x, y))
			for len(stack) > 0 {
				p := stack[len(stack)-1]
				stack = stack[:len(stack)-1]

				if p.X < 0 || p.X >= w || p.Y < 0 || p.Y >= h {
					continue
				}
				idx := p.Y*w + p.X
				if lm.labels[idx] != 0 || mask.GrayAt(p.X+b.Min.X, p.Y+b.Min.Y).Y == 0 {
					continue
				}
				lm.labels[idx] = label
				st.box = st.box.Union(image.Rect(p.X, p.Y, p.X+1, p.Y+1))

				for dy := -1; dy <= 1; dy++ {
					for dx := -1; dx <= 1; dx++ {
						if dx == 0 && dy == 0 {
							continue
						}
						stack = append(stack, image.Pt(p.X+dx, p.Y+dy))
					}
				}
			}
			lm.stats = append(lm.stats, st)
		}
	}
	return lm
}

func (lm *labelMap) is(label, x, y int) bool {
	if x < 0 || y < 0 || x >= lm.w || y >= lm.h {
		return false
	}
	return lm.labels[y*lm.w+x] == label
}

// Clockwise neighbour order in image coordinates: E, SE, S, SW, W, NW, N, NE.
var (
	ndx = [8]int{1, 1, 0, -1, -1, -1, 0, 1}
	ndy = [8]int{0, 1, 1, 1, 0, -1, -1, -1}
)

func dirIndex(dx, dy int) int {
	for i := range ndx {
		if ndx[i] == dx && ndy[i] == dy {
			return i
		}
	}
	return 0
}

// nextBoundary sweeps the neighbours of cur clockwise, starting just after
// the direction of back, and returns the first pixel of the region.
func (lm *labelMap) nextBoundary(label int, cur, back image.Point) (image.Point, bool) {
	start := dirIndex(back.X-cur.X, back.Y-cur.Y)
	for k := 1; k <= 8; k++ {
		i := (start + k) % 8
		x, y := cur.X+ndx[i], cur.Y+ndy[i]
		if lm.is(label, x, y) {
			return image.Pt(x, y), true
		}
	}
	return image.Point{}, false
}

// traceBoundary follows the outer boundary of a region from its top-most,
// left-most pixel. Tracing stops when the walk is back at the start pixel
// and about to repeat its first move.
func (lm *labelMap) traceBoundary(label int, start image.Point) []image.Point {
	pts := []image.Point{start}
	cur := start
	back := image.Pt(start.X-1, start.Y)
	var first image.Point

	maxSteps := 4*lm.w*lm.h + 8
	for steps := 0; steps < maxSteps; steps++ {
		next, ok := lm.nextBoundary(label, cur, back)
		if !ok {
			break
		}
		if steps == 0 {
			first = next
		} else if cur == start && next == first {
			break
		}
		back = cur
		cur = next
		pts = append(pts, cur)
	}
	if len(pts) > 1 && pts[len(pts)-1] == pts[0] {
		pts = pts[:len(pts)-1]
	}
	return compress(pts)
}

// compress drops boundary pixels that continue a straight run, keeping only
// the pixels where the direction changes.
func compress(pts []image.Point) []image.Point {
	if len(pts) < 3 {
		return pts
	}
	n := len(pts)
	out := make([]image.Point, 0, n)
	for i := 0; i < n; i++ {
		prev := pts[(i+n-1)%n]
		cur := pts[i]
		next := pts[(i+1)%n]
		d1 := cur.Sub(prev)
		d2 := next.Sub(cur)
		cross := d1.X*d2.Y - d1.Y*d2.X
		dot := d1.X*d2.X + d1.Y*d2.Y
		if cross == 0 && dot > 0 {
			continue
		}
		out = append(out, cur)
	}
	if len(out) == 0 {
		return pts[:1]
	}
	return out
}
