package export

import (
	"image"
	"image/color"
	"image/draw"
	"math"

	"golang.org/x/image/vector"

	"github.com/vertexforge/vertexforge/internal/engine"
	"github.com/vertexforge/vertexforge/internal/geometry"
	"github.com/vertexforge/vertexforge/internal/shape"
)

const (
	DefaultSize      = 512
	MinSize          = 16
	MaxSize          = 2048
	DefaultLineWidth = 1.5 // pixels
)

type Options struct {
	Size       int
	Background color.Color
	LineWidth  float64
}

func (o Options) withDefaults() Options {
	if o.Size <= 0 {
		o.Size = DefaultSize
	}
	o.Size = min(max(o.Size, MinSize), MaxSize)
	if o.Background == nil {
		o.Background = color.White
	}
	if o.LineWidth <= 0 {
		o.LineWidth = DefaultLineWidth
	}
	return o
}

// point is a resolved vertex record in pixel space.
type point struct {
	x, y  float32
	color geometry.Vector3
}

// Rasterize paints draw commands onto a square image. Clip space [-1, 1]
// maps onto the full image with y pointing up. Every primitive is filled
// with the mean color of its vertices.
func Rasterize(commands []engine.DrawCommand, opts Options) *image.RGBA {
	opts = opts.withDefaults()
	img := image.NewRGBA(image.Rect(0, 0, opts.Size, opts.Size))
	draw.Draw(img, img.Bounds(), image.NewUniform(opts.Background), image.Point{}, draw.Src)

	r := &rasterizer{
		img:       img,
		ras:       vector.NewRasterizer(opts.Size, opts.Size),
		size:      float64(opts.Size),
		lineWidth: opts.LineWidth,
		clip:      clipToPixel(float64(opts.Size)),
	}
	for _, cmd := range commands {
		r.command(cmd)
	}
	return img
}

type rasterizer struct {
	img       *image.RGBA
	ras       *vector.Rasterizer
	size      float64
	lineWidth float64
	clip      geometry.Matrix2D
}

// clipToPixel maps clip space [-1, 1]² onto a size×size image, flipping y.
func clipToPixel(size float64) geometry.Matrix2D {
	return geometry.Translate(size/2, size/2).Multiply(geometry.Scale(size/2, -size/2))
}

func (r *rasterizer) command(cmd engine.DrawCommand) {
	pts := r.resolve(cmd.Data)
	switch cmd.Mode {
	case shape.DrawTriangles:
		for i := 0; i+2 < len(pts); i += 3 {
			r.polygon(pts[i], pts[i+1], pts[i+2])
		}
	case shape.DrawTriangleFan:
		for i := 1; i+1 < len(pts); i++ {
			r.polygon(pts[0], pts[i], pts[i+1])
		}
	case shape.DrawLineStrip:
		for i := 0; i+1 < len(pts); i++ {
			r.segment(pts[i], pts[i+1])
		}
	case shape.DrawLineLoop:
		if len(pts) < 2 {
			return
		}
		for i := range pts {
			r.segment(pts[i], pts[(i+1)%len(pts)])
		}
	case shape.DrawPoints:
		radius := engine.PointRadius * r.size / 2
		for _, p := range pts {
			r.dot(p, max(radius, r.lineWidth))
		}
	}
}

// resolve applies each record's parent transform and maps it to pixels.
func (r *rasterizer) resolve(data []float64) []point {
	n := len(data) / shape.VertexSize
	pts := make([]point, n)
	for i := range n {
		rec := data[i*shape.VertexSize : (i+1)*shape.VertexSize]
		parent := geometry.NewTransform(
			geometry.Vec2(rec[shape.ParentPositionIndex], rec[shape.ParentPositionIndex+1]),
			rec[shape.ParentRotationIndex],
			rec[shape.ParentScaleIndex],
		)
		px := r.clip.Multiply(parent.Matrix()).TransformPoint(geometry.Vec2(rec[0], rec[1]))
		pts[i] = point{
			x:     float32(px.X),
			y:     float32(px.Y),
			color: geometry.Vec3(rec[shape.PositionSize], rec[shape.PositionSize+1], rec[shape.PositionSize+2]),
		}
	}
	return pts
}

func (r *rasterizer) polygon(pts ...point) {
	c := meanColor(pts...)

	r.ras.Reset(int(r.size), int(r.size))
	r.ras.MoveTo(pts[0].x, pts[0].y)
	for _, p := range pts[1:] {
		r.ras.LineTo(p.x, p.y)
	}
	r.ras.ClosePath()
	r.fill(c)
}

// segment strokes a to b as a quad lineWidth pixels wide.
func (r *rasterizer) segment(a, b point) {
	dx, dy := float64(b.x-a.x), float64(b.y-a.y)
	length := math.Hypot(dx, dy)
	if length == 0 {
		return
	}
	nx := float32(-dy / length * r.lineWidth / 2)
	ny := float32(dx / length * r.lineWidth / 2)

	r.ras.Reset(int(r.size), int(r.size))
	r.ras.MoveTo(a.x+nx, a.y+ny)
	r.ras.LineTo(b.x+nx, b.y+ny)
	r.ras.LineTo(b.x-nx, b.y-ny)
	r.ras.LineTo(a.x-nx, a.y-ny)
	r.ras.ClosePath()
	r.fill(meanColor(a, b))
}

// dot fills an octagon of the given pixel radius around p.
func (r *rasterizer) dot(p point, radius float64) {
	r.ras.Reset(int(r.size), int(r.size))
	for i := range 8 {
		a := float64(i) * math.Pi / 4
		x := p.x + float32(radius*math.Cos(a))
		y := p.y + float32(radius*math.Sin(a))
		if i == 0 {
			r.ras.MoveTo(x, y)
		} else {
			r.ras.LineTo(x, y)
		}
	}
	r.ras.ClosePath()
	r.fill(p.color)
}

func (r *rasterizer) fill(c geometry.Vector3) {
	r.ras.DrawOp = draw.Over
	r.ras.Draw(r.img, r.img.Bounds(), image.NewUniform(toRGBA(c)), image.Point{})
}

func meanColor(pts ...point) geometry.Vector3 {
	var c geometry.Vector3
	for _, p := range pts {
		c.X += p.color.X
		c.Y += p.color.Y
		c.Z += p.color.Z
	}
	n := float64(len(pts))
	return geometry.Vec3(c.X/n, c.Y/n, c.Z/n)
}

func toRGBA(c geometry.Vector3) color.RGBA {
	ch := func(f float64) uint8 {
		return uint8(math.Round(min(max(f, 0), 1) * 255))
	}
	return color.RGBA{R: ch(c.X), G: ch(c.Y), B: ch(c.Z), A: 0xff}
}
