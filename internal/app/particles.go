package app

import (
	"math"
	"math/rand/v2"
	"strings"

	"github.com/ocn-sys/ocn/internal/config"
	"github.com/ocn-sys/ocn/internal/pool"
)

type particle struct {
	x, y   float64
	vx, vy float64
}

// Field is the animated background: drifting particles joined by faint
// links when they come close.
type Field struct {
	W, H    int
	Running bool

	ps   []particle
	n    int
	link float64
	rng  *rand.Rand
}

// cellAspect corrects distances for cells being about twice as tall as wide.
const cellAspect = 2.0

// NewField creates a field of n particles. Particles are scattered on the
// first Resize.
func NewField(n int, link float64, seed uint64) *Field {
	if seed == 0 {
		seed = rand.Uint64()
	}
	return &Field{
		n:    n,
		link: link,
		rng:  rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15)),
	}
}

// Len returns the number of particles.
func (f *Field) Len() int { return len(f.ps) }

// Resize fits the field to w by h cells.
func (f *Field) Resize(w, h int) {
	f.W, f.H = max(w, 0), max(h, 0)
	if len(f.ps) == 0 && f.W > 0 && f.H > 0 {
		f.ps = make([]particle, f.n)
		for i := range f.ps {
			f.ps[i] = particle{
				x:  f.rng.Float64() * float64(f.W),
				y:  f.rng.Float64() * float64(f.H),
				vx: (f.rng.Float64() - 0.5) * 2 * config.ParticleMaxSpeed,
				vy: (f.rng.Float64() - 0.5) * 2 * config.ParticleMaxSpeed / cellAspect,
			}
		}
		return
	}
	for i := range f.ps {
		p := &f.ps[i]
		p.x = math.Min(p.x, float64(f.W))
		p.y = math.Min(p.y, float64(f.H))
	}
}

// Step advances every particle one frame, bouncing off the edges.
func (f *Field) Step() {
	w, h := float64(f.W), float64(f.H)
	for i := range f.ps {
		p := &f.ps[i]
		p.x += p.vx
		p.y += p.vy
		if p.x < 0 || p.x > w {
			p.vx = -p.vx
		}
		if p.y < 0 || p.y > h {
			p.vy = -p.vy
		}
	}
}

// Positions returns the particle positions, for tests.
func (f *Field) Positions() [][2]float64 {
	out := make([][2]float64, len(f.ps))
	for i, p := range f.ps {
		out[i] = [2]float64{p.x, p.y}
	}
	return out
}

const (
	cellEmpty byte = iota
	cellLink
	cellDot
)

// grid rasterises the field into cell kinds.
func (f *Field) grid() [][]byte {
	g := make([][]byte, f.H)
	for y := range g {
		g[y] = make([]byte, f.W)
	}
	set := func(x, y int, k byte) {
		if x >= 0 && x < f.W && y >= 0 && y < f.H && g[y][x] < k {
			g[y][x] = k
		}
	}
	for i := range f.ps {
		a := f.ps[i]
		for j := i + 1; j < len(f.ps); j++ {
			b := f.ps[j]
			dx, dy := a.x-b.x, (a.y-b.y)*cellAspect
			if math.Sqrt(dx*dx+dy*dy) >= f.link {
				continue
			}
			steps := int(math.Max(math.Abs(a.x-b.x), math.Abs(a.y-b.y)))
			for s := 1; s < steps; s++ {
				t := float64(s) / float64(steps)
				set(int(a.x+(b.x-a.x)*t), int(a.y+(b.y-a.y)*t), cellLink)
			}
		}
	}
	for _, p := range f.ps {
		set(int(p.x), int(p.y), cellDot)
	}
	return g
}

// Render draws the field as styled lines.
func (f *Field) Render(ascii bool) []string {
	dot, link := "•", "·"
	if ascii {
		dot, link = "*", "."
	}
	dotStyle := particleStyle()
	linkStyle := particleLinkStyle()

	g := f.grid()
	lines := make([]string, len(g))
	sb := pool.GetStringBuilder()
	defer pool.PutStringBuilder(sb)
	for y, row := range g {
		sb.Reset()
		for x := 0; x < len(row); {
			k := row[x]
			end := x
			for end < len(row) && row[end] == k {
				end++
			}
			n := end - x
			switch k {
			case cellDot:
				sb.WriteString(dotStyle.Render(strings.Repeat(dot, n)))
			case cellLink:
				sb.WriteString(linkStyle.Render(strings.Repeat(link, n)))
			default:
				sb.WriteString(strings.Repeat(" ", n))
			}
			x = end
		}
		lines[y] = sb.String()
	}
	return lines
}
