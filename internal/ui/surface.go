package ui

import (
	"fmt"
	"io"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/render"
	"github.com/ecopia-map/cloudview/internal/session"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/golang/geo/r3"
	"github.com/pkg/errors"
)

type viewAction string

const (
	actionYawLeft   viewAction = "yaw-left"
	actionYawRight  viewAction = "yaw-right"
	actionPitchUp   viewAction = "pitch-up"
	actionPitchDown viewAction = "pitch-down"
	actionZoomIn    viewAction = "zoom-in"
	actionZoomOut   viewAction = "zoom-out"
	actionReset     viewAction = "reset"
	actionClose     viewAction = "close"
)

const (
	orbitStep = 15
	zoomStep  = 1.25
)

// Surface shows clouds as PNG frames written to a folder, the camera being
// driven from a terminal menu
type Surface struct {
	renderDir string
	out       io.Writer
}

func NewSurface(renderDir string, out io.Writer) *Surface {
	return &Surface{renderDir: renderDir, out: out}
}

// moves the camera according to the action, the second return is false when
// the view should close
func applyViewAction(camera render.Camera, action viewAction) (render.Camera, bool) {
	switch action {
	case actionYawLeft:
		return camera.Orbit(-orbitStep, 0), true
	case actionYawRight:
		return camera.Orbit(orbitStep, 0), true
	case actionPitchUp:
		return camera.Orbit(0, orbitStep), true
	case actionPitchDown:
		return camera.Orbit(0, -orbitStep), true
	case actionZoomIn:
		return camera.Scaled(zoomStep), true
	case actionZoomOut:
		return camera.Scaled(1 / zoomStep), true
	case actionReset:
		return render.DefaultCamera(), true
	}
	return camera, false
}

func (s *Surface) Show(frame render.Frame) error {
	for {
		path, err := render.SavePNG(frame, s.renderDir)
		if err != nil {
			return err
		}
		action := actionClose
		err = huh.NewForm(huh.NewGroup(
			huh.NewNote().
				Title("Point Cloud View").
				Description(fmt.Sprintf("Frame written to %s\n%d points, yaw %.0f, pitch %.0f, zoom %.2f",
					path, frame.Cloud.Size(), frame.Camera.Yaw, frame.Camera.Pitch, frame.Camera.Zoom)),
			huh.NewSelect[viewAction]().
				Title("Camera").
				Options(
					huh.NewOption("Rotate left", actionYawLeft),
					huh.NewOption("Rotate right", actionYawRight),
					huh.NewOption("Tilt up", actionPitchUp),
					huh.NewOption("Tilt down", actionPitchDown),
					huh.NewOption("Zoom in", actionZoomIn),
					huh.NewOption("Zoom out", actionZoomOut),
					huh.NewOption("Reset camera", actionReset),
					huh.NewOption("Close view", actionClose),
				).
				Value(&action),
		)).Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		var open bool
		frame.Camera, open = applyViewAction(frame.Camera, action)
		if !open {
			return nil
		}
	}
}

// Pick asks for points until two are picked or the answer is empty. Each
// answer is either a point index written as #index or coordinates "x y z"
// snapped to the closest point.
func (s *Surface) Pick(cloud *data.PointCloud) ([]int, error) {
	path, err := render.SavePNG(render.Frame{
		Cloud:      cloud,
		PointSize:  viewer.DefaultPointSize,
		Background: viewer.Background,
		Camera:     render.DefaultCamera(),
	}, s.renderDir)
	if err != nil {
		return nil, err
	}
	fmt.Fprintf(s.out, "Reference frame written to %s\n", path)

	picker := geometry.NewPicker(cloud)
	picked := make([]int, 0, session.MeasurementPicks)
	for !pickingDone(picked) {
		var answer string
		err := huh.NewForm(huh.NewGroup(
			huh.NewInput().
				Title(fmt.Sprintf("Pick point %d of %d", len(picked)+1, session.MeasurementPicks)).
				Description("Point index as #index, or coordinates as x y z. Leave empty to finish.").
				Value(&answer).
				Validate(func(value string) error {
					if strings.TrimSpace(value) == "" {
						return nil
					}
					_, err := resolvePick(picker, value)
					return err
				}),
		)).Run()
		if errors.Is(err, huh.ErrUserAborted) {
			return picked, nil
		}
		if err != nil {
			return picked, err
		}
		if strings.TrimSpace(answer) == "" {
			return picked, nil
		}
		index, err := resolvePick(picker, answer)
		if err != nil {
			return picked, err
		}
		picked = append(picked, index)
		fmt.Fprintln(s.out, describePoint(cloud, index))
	}
	return picked, nil
}

// pickingDone tells whether enough points were picked for a measurement
func pickingDone(picked []int) bool {
	return len(picked) >= session.MeasurementPicks
}

func describePoint(cloud *data.PointCloud, index int) string {
	p := cloud.At(index)
	line := fmt.Sprintf("Picked point #%d at (%g, %g, %g)", index, p.Position.X, p.Position.Y, p.Position.Z)
	if p.Color != nil {
		line += " color " + p.Color.Hex()
	}
	return line
}

func resolvePick(picker *geometry.Picker, answer string) (int, error) {
	answer = strings.TrimSpace(answer)
	if strings.HasPrefix(answer, "#") {
		index, err := strconv.Atoi(strings.TrimSpace(answer[1:]))
		if err != nil || index < 0 || index >= picker.Size() {
			return 0, errors.Wrapf(failure.ErrInvalidArgument, "no point %s", answer)
		}
		return index, nil
	}
	fields := strings.FieldsFunc(answer, func(r rune) bool { return r == ' ' || r == ',' || r == '\t' })
	if len(fields) != 3 {
		return 0, errors.Wrap(failure.ErrInvalidArgument, "expected three coordinates")
	}
	var values [3]float64
	for i, field := range fields {
		v, err := strconv.ParseFloat(field, 64)
		if err != nil {
			return 0, errors.Wrapf(failure.ErrInvalidArgument, "invalid coordinate %q", field)
		}
		values[i] = v
	}
	index, _, ok := picker.Nearest(r3.Vector{X: values[0], Y: values[1], Z: values[2]})
	if !ok {
		return 0, errors.Wrap(failure.ErrInvalidArgument, "the cloud is empty")
	}
	return index, nil
}
