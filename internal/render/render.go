// Package render rasterizes point clouds to images.
package render

import (
	"image"
	"math"
	"os"
	"path/filepath"
	"sort"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/fogleman/gg"
	"github.com/golang/geo/r3"
	"github.com/golang/glog"
	"github.com/google/uuid"
	"github.com/lucasb-eyer/go-colorful"
	"github.com/pkg/errors"
)

const (
	DefaultWidth  = 1024
	DefaultHeight = 768
	// share of the image used by the cloud at zoom 1
	fillRatio = 0.9
)

// color of points of clouds without colors
var defaultPointColor = colorful.Color{R: 1, G: 1, B: 1}

// Camera orbits the center of the cloud. Angles are in degrees.
type Camera struct {
	Yaw   float64
	Pitch float64
	Zoom  float64
}

func DefaultCamera() Camera {
	return Camera{Yaw: 30, Pitch: 25, Zoom: 1}
}

// Orbit returns the camera rotated by the given angles, pitch is clamped to
// [-90, 90]
func (c Camera) Orbit(yaw float64, pitch float64) Camera {
	c.Yaw = math.Mod(c.Yaw+yaw, 360)
	c.Pitch = math.Max(-90, math.Min(90, c.Pitch+pitch))
	return c
}

// Scaled returns the camera with the zoom multiplied by factor
func (c Camera) Scaled(factor float64) Camera {
	if factor > 0 {
		c.Zoom *= factor
	}
	return c
}

// Frame holds everything needed to draw a cloud once
type Frame struct {
	Cloud      *data.PointCloud
	PointSize  float64
	Background colorful.Color
	Camera     Camera
	Width      int
	Height     int
}

func (f Frame) size() (int, int) {
	w, h := f.Width, f.Height
	if w <= 0 {
		w = DefaultWidth
	}
	if h <= 0 {
		h = DefaultHeight
	}
	return w, h
}

// Projection maps cloud coordinates to image coordinates
type Projection struct {
	center r3.Vector
	scale  float64
	yaw    float64
	pitch  float64
	width  float64
	height float64
}

// NewProjection fits an orthographic view of the cloud in the frame
func NewProjection(f Frame) Projection {
	w, h := f.size()
	p := Projection{
		yaw:    f.Camera.Yaw * math.Pi / 180,
		pitch:  f.Camera.Pitch * math.Pi / 180,
		width:  float64(w),
		height: float64(h),
		scale:  1,
	}
	zoom := f.Camera.Zoom
	if zoom <= 0 {
		zoom = 1
	}
	if box, ok := f.Cloud.Bounds(); ok {
		p.center = box.Center()
		if d := box.Diagonal(); d > 0 {
			p.scale = fillRatio * math.Min(p.width, p.height) / d
		}
	}
	p.scale *= zoom
	return p
}

// Project returns the image coordinates of v and its depth, larger depths
// are closer to the viewer
func (p Projection) Project(v r3.Vector) (float64, float64, float64) {
	d := v.Sub(p.center)
	// yaw around Z, then pitch around the rotated X axis
	sy, cy := math.Sincos(p.yaw)
	x := d.X*cy - d.Y*sy
	y := d.X*sy + d.Y*cy
	sp, cp := math.Sincos(p.pitch)
	up := d.Z*cp - y*sp
	depth := -(d.Z*sp + y*cp)
	return p.width/2 + x*p.scale, p.height/2 - up*p.scale, depth
}

// Rasterize draws the frame, far points first
func Rasterize(f Frame) (image.Image, error) {
	if f.Cloud == nil {
		return nil, errors.Wrap(failure.ErrInvalidArgument, "nothing to render")
	}
	w, h := f.size()
	dc := gg.NewContext(w, h)
	dc.SetRGB(f.Background.R, f.Background.G, f.Background.B)
	dc.Clear()

	projection := NewProjection(f)
	type projected struct {
		x, y, depth float64
		index       int
	}
	points := make([]projected, f.Cloud.Size())
	for i, v := range f.Cloud.Points {
		x, y, depth := projection.Project(v)
		points[i] = projected{x, y, depth, i}
	}
	sort.SliceStable(points, func(i, j int) bool { return points[i].depth < points[j].depth })

	radius := math.Max(f.PointSize, 1) / 2
	for _, p := range points {
		c := defaultPointColor
		if f.Cloud.HasColors() {
			c = f.Cloud.Colors[p.index].Clamped()
		}
		dc.SetRGB(c.R, c.G, c.B)
		dc.DrawPoint(p.x, p.y, radius)
		dc.Fill()
	}
	return dc.Image(), nil
}

// SavePNG renders the frame into dir under a random name and returns the
// path of the written file
func SavePNG(f Frame, dir string) (string, error) {
	img, err := Rasterize(f)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", failure.Mark(err, failure.ErrEncode)
	}
	path := filepath.Join(dir, "frame-"+uuid.NewString()+".png")
	if err := gg.SavePNG(path, img); err != nil {
		return "", failure.Mark(err, failure.ErrEncode)
	}
	glog.V(2).Infof("rendered %d points to %s", f.Cloud.Size(), path)
	return path, nil
}

// Surface is a modal view onto a cloud. Both calls block until the user
// closes the view.
type Surface interface {
	// Show displays the frame, letting the user move the camera
	Show(f Frame) error
	// Pick lets the user select points of the cloud and returns their
	// indices in selection order
	Pick(cloud *data.PointCloud) ([]int, error)
}
