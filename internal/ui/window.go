package ui

import (
	"fmt"
	"io"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/charmbracelet/huh/spinner"
	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/ecopia-map/cloudview/pkg"
	"github.com/ecopia-map/cloudview/tools"
	"github.com/golang/glog"
	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/pkg/errors"
	"github.com/samber/lo"
	"github.com/shopspring/decimal"
	"go.uber.org/multierr"
)

type command string

const (
	commandOpen      command = "open"
	commandSample    command = "sample"
	commandSave      command = "save"
	commandColor     command = "color"
	commandPointSize command = "point-size"
	commandVoxelSize command = "voxel-size"
	commandProcess   command = "process"
	commandView      command = "view"
	commandMeasure   command = "measure"
	commandQuit      command = "quit"
)

// Window is the main menu of the viewer. It owns the file browsing and the
// controls, and forwards every command to the controller.
type Window struct {
	controller  *pkg.Controller
	folder      string
	sampleCount int
	out         io.Writer
}

func NewWindow(controller *pkg.Controller, opts *viewer.Options, out io.Writer) *Window {
	folder := opts.StartDir
	if folder == "" {
		folder = "."
	}
	return &Window{controller: controller, folder: folder, sampleCount: opts.SampleCount, out: out}
}

// Run shows the menu until the user quits
func (w *Window) Run() error {
	for {
		fmt.Fprintln(w.out, statusTable(w.controller))
		cmd, err := w.askCommand()
		if errors.Is(err, huh.ErrUserAborted) {
			return nil
		}
		if err != nil {
			return err
		}
		if cmd == commandQuit {
			return nil
		}
		if err := w.run(cmd); err != nil {
			if errors.Is(err, huh.ErrUserAborted) {
				continue
			}
			glog.V(1).Infof("%s: %v", cmd, err)
		}
	}
}

// statusTable renders the labels and controls of the window
func statusTable(c *pkg.Controller) string {
	state := c.State()
	t := table.NewWriter()
	t.SetStyle(table.StyleLight)
	t.SetTitle("cloudview")
	t.AppendRows([]table.Row{
		{"Status", c.Status()},
		{"Points", strings.TrimPrefix(c.PointsLabel(), "Points: ")},
		{"Distance", strings.TrimPrefix(c.DistanceLabel(), "Distance: ")},
	})
	t.AppendSeparator()
	t.AppendRows([]table.Row{
		{"Point size", state.PointSize()},
		{"Color", state.Color().String()},
		{"Voxel size", decimal.NewFromFloat(state.VoxelLength()).StringFixed(2)},
	})
	return t.Render()
}

// availableCommands lists the menu entries, processing commands need a
// loaded cloud
func availableCommands(enabled bool) []huh.Option[command] {
	options := []huh.Option[command]{
		huh.NewOption("Open point cloud", commandOpen),
		huh.NewOption("Load sample shape", commandSample),
	}
	if enabled {
		options = append(options,
			huh.NewOption("Save point cloud", commandSave),
			huh.NewOption("Process (downsample and normals)", commandProcess),
			huh.NewOption("View", commandView),
			huh.NewOption("Measure distance", commandMeasure),
		)
	}
	options = append(options,
		huh.NewOption("Change color", commandColor),
		huh.NewOption("Point size", commandPointSize),
		huh.NewOption("Voxel size", commandVoxelSize),
		huh.NewOption("Quit", commandQuit),
	)
	return options
}

func (w *Window) askCommand() (command, error) {
	cmd := commandOpen
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[command]().
			Title("Command").
			Options(availableCommands(w.controller.State().ControlsEnabled())...).
			Value(&cmd),
	)).Run()
	return cmd, err
}

func (w *Window) run(cmd command) error {
	switch cmd {
	case commandOpen:
		path, err := w.askOpenPath()
		if err != nil || path == "" {
			return err
		}
		_, err = w.controller.Load(path)
		return err
	case commandSample:
		return w.loadSample()
	case commandSave:
		path, err := w.askSavePath()
		if err != nil {
			return err
		}
		return w.controller.Save(path)
	case commandColor:
		color, err := w.askColor()
		if err != nil {
			return err
		}
		return w.controller.ChangeColor(color.String())
	case commandPointSize:
		size, err := w.askPointSize()
		if err != nil {
			return err
		}
		return w.controller.SetPointSize(size)
	case commandVoxelSize:
		size, err := w.askVoxelSize()
		if err != nil {
			return err
		}
		return w.controller.SetVoxelSize(size)
	case commandProcess:
		var err error
		spinErr := spinner.New().
			Title("Processing point cloud...").
			Action(func() { err = w.controller.Process() }).
			Run()
		return errors.Wrap(multierr.Combine(spinErr, err), "process")
	case commandView:
		return w.controller.View()
	case commandMeasure:
		measurement, err := w.controller.MeasureDistance()
		if err == nil && measurement.Available {
			fmt.Fprintf(w.out, "Distance between #%d and #%d: %s\n",
				measurement.Indices[0], measurement.Indices[1], strings.TrimPrefix(measurement.Label(), "Distance: "))
		}
		return err
	}
	return nil
}

type entryKind int

const (
	entryParent entryKind = iota
	entryFolder
	entryFile
	entryManual
)

type browserEntry struct {
	kind entryKind
	path string
}

// browserOptions lists the entries of folder shown by the open dialog
func browserOptions(folder string, subfolders []string, files []string) []huh.Option[browserEntry] {
	options := []huh.Option[browserEntry]{
		huh.NewOption("..", browserEntry{kind: entryParent, path: filepath.Dir(filepath.Clean(folder))}),
	}
	options = append(options, lo.Map(subfolders, func(path string, _ int) huh.Option[browserEntry] {
		return huh.NewOption(filepath.Base(path)+string(filepath.Separator), browserEntry{kind: entryFolder, path: path})
	})...)
	options = append(options, lo.Map(files, func(path string, _ int) huh.Option[browserEntry] {
		return huh.NewOption(filepath.Base(path), browserEntry{kind: entryFile, path: path})
	})...)
	return append(options, huh.NewOption("Enter a path...", browserEntry{kind: entryManual}))
}

// askOpenPath browses folders until a file is chosen. An empty path means
// the user cancelled.
func (w *Window) askOpenPath() (string, error) {
	for {
		subfolders, err := w.controller.Subfolders(w.folder)
		if err != nil {
			glog.Warningf("listing %s: %v", w.folder, err)
		}
		files, err := w.controller.CandidateFiles(w.folder)
		if err != nil {
			glog.Warningf("listing %s: %v", w.folder, err)
		}

		var entry browserEntry
		err = huh.NewForm(huh.NewGroup(
			huh.NewSelect[browserEntry]().
				Title("Open Point Cloud").
				Description(w.folder + "\nPoint Cloud files (" + strings.Join(tools.CloudFileExtensions, " ") + ")").
				Options(browserOptions(w.folder, subfolders, files)...).
				Value(&entry),
		)).Run()
		if err != nil {
			return "", err
		}

		switch entry.kind {
		case entryParent, entryFolder:
			w.folder = entry.path
		case entryFile:
			return entry.path, nil
		case entryManual:
			var path string
			err := huh.NewForm(huh.NewGroup(
				huh.NewInput().
					Title("Open Point Cloud").
					Description("Path of a .ply, .pcd or .obj file").
					Value(&path),
			)).Run()
			if err != nil {
				return "", err
			}
			return strings.TrimSpace(path), nil
		}
	}
}

func (w *Window) askSavePath() (string, error) {
	path := filepath.Join(w.folder, "cloud.ply")
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Save Point Cloud").
			Description("Destination path (.ply, .pcd or .obj)").
			Value(&path).
			Validate(validateSavePath),
	)).Run()
	return strings.TrimSpace(path), err
}

func validateSavePath(path string) error {
	if !tools.IsCloudFile(strings.TrimSpace(path)) {
		return errors.Errorf("the file must end with one of %s", strings.Join(tools.CloudFileExtensions, ", "))
	}
	return nil
}

func (w *Window) askColor() (viewer.Color, error) {
	color := w.controller.State().Color()
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[viewer.Color]().
			Title("Color").
			Options(lo.Map(viewer.Colors(), func(c viewer.Color, _ int) huh.Option[viewer.Color] {
				return huh.NewOption(c.String(), c)
			})...).
			Value(&color),
	)).Run()
	return color, err
}

func (w *Window) askPointSize() (int, error) {
	size := w.controller.State().PointSize()
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[int]().
			Title("Point Size").
			Options(lo.Map(lo.RangeFrom(viewer.MinPointSize, viewer.MaxPointSize-viewer.MinPointSize+1), func(n int, _ int) huh.Option[int] {
				return huh.NewOption(strconv.Itoa(n), n)
			})...).
			Value(&size),
	)).Run()
	return size, err
}

func (w *Window) askVoxelSize() (int, error) {
	value := strconv.Itoa(w.controller.State().VoxelSize())
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Voxel Size").
			Description(fmt.Sprintf("In hundredths of a unit, %d to %d", viewer.MinVoxelSize, viewer.MaxVoxelSize)).
			Value(&value).
			Validate(func(s string) error {
				_, err := parseVoxelSize(s)
				return err
			}),
	)).Run()
	if err != nil {
		return 0, err
	}
	return parseVoxelSize(value)
}

func (w *Window) loadSample() error {
	shape := geometry.ShapeSphere
	count := strconv.Itoa(w.sampleCount)
	err := huh.NewForm(huh.NewGroup(
		huh.NewSelect[geometry.Shape]().
			Title("Sample Shape").
			Options(
				huh.NewOption("Sphere", geometry.ShapeSphere),
				huh.NewOption("Cube", geometry.ShapeCube),
			).
			Value(&shape),
		huh.NewInput().
			Title("Sample Points").
			Value(&count).
			Validate(func(s string) error {
				_, err := parseSampleCount(s)
				return err
			}),
	)).Run()
	if err != nil {
		return err
	}
	n, err := parseSampleCount(count)
	if err != nil {
		return err
	}
	w.sampleCount = n

	var loadErr error
	spinErr := spinner.New().
		Title(fmt.Sprintf("Sampling %d points...", n)).
		Action(func() { _, loadErr = w.controller.LoadSample(shape, n) }).
		Run()
	return multierr.Combine(spinErr, loadErr)
}
