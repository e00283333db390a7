package pkg

import (
	"fmt"

	"github.com/ecopia-map/cloudview/internal/data"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/io"
	"github.com/ecopia-map/cloudview/internal/pipeline"
	"github.com/ecopia-map/cloudview/internal/session"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/ecopia-map/cloudview/pkg/algorithm_manager"
	"github.com/ecopia-map/cloudview/tools"
	"github.com/golang/geo/r3"
	"github.com/golang/glog"
	"github.com/pkg/errors"
	"github.com/shopspring/decimal"
)

const (
	StatusNoCloud        = "No point cloud loaded"
	StatusProcessed      = "Processing complete"
	StatusLoadFirst      = "Please load a point cloud first"
	DistanceUnavailable  = "Distance: N/A"
	DistancePrompt       = "Click two points to measure distance"
	DistanceNeedTwo      = "Distance: N/A (Need two points)"
	OutOfMemoryMessage   = "Not enough memory to load this point cloud."
	errorDialogTitle     = "Error"
	largeFileDialogTitle = "Large File Warning"
)

// Dialogs are the modal questions the controller may ask while running a
// command. Every call blocks until the user answers.
type Dialogs interface {
	// ConfirmLargeFile asks whether a file of the given size should be loaded
	ConfirmLargeFile(title string, path string, size int64) bool
	// AskSampleCount asks how many points to sample from a mesh. The second
	// return is false when the user cancelled.
	AskSampleCount(defaultCount int) (int, bool)
	ShowError(title string, message string)
}

// LoadError reports the file a failed Load was reading
type LoadError struct {
	Path string
	Err  error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("loading %s: %v", e.Path, e.Err)
}

func (e *LoadError) Unwrap() error {
	return e.Err
}

// Measurement is the result of a distance measurement. Available is false
// when fewer than two points were picked.
type Measurement struct {
	Available bool
	Indices   []int
	P1        r3.Vector
	P2        r3.Vector
	Distance  float64
}

func (m Measurement) Label() string {
	if !m.Available {
		return DistanceNeedTwo
	}
	return "Distance: " + decimal.NewFromFloat(m.Distance).StringFixed(3) + " units"
}

// the load was declined by the user
var errLoadCancelled = errors.New("load cancelled")

// Controller runs the commands of the viewer against the session state. It
// has no knowledge of the presentation: questions go through Dialogs and
// rendering through the geometry service.
type Controller struct {
	fileFinder tools.FileFinder
	service    geometry.Service
	pipeline   *pipeline.Pipeline
	dialogs    Dialogs
	options    *viewer.Options
	state      *session.State
	status     string
	distance   string
}

func NewController(fileFinder tools.FileFinder, algorithmManager algorithm_manager.AlgorithmManager, dialogs Dialogs, opts *viewer.Options) *Controller {
	return &Controller{
		fileFinder: fileFinder,
		service:    algorithmManager.GetGeometryService(),
		pipeline:   algorithmManager.GetPipeline(),
		dialogs:    dialogs,
		options:    opts,
		state:      session.NewFromOptions(opts),
		status:     StatusNoCloud,
		distance:   DistanceUnavailable,
	}
}

func (c *Controller) State() *session.State {
	return c.state
}

func (c *Controller) Status() string {
	return c.status
}

func (c *Controller) PointsLabel() string {
	return fmt.Sprintf("Points: %d", c.state.PointCount())
}

func (c *Controller) DistanceLabel() string {
	return c.distance
}

// CandidateFiles lists the files of folder the viewer can open
func (c *Controller) CandidateFiles(folder string) ([]string, error) {
	return c.fileFinder.GetCloudFilesInFolder(folder)
}

// Subfolders lists the folders the open dialog can descend into
func (c *Controller) Subfolders(folder string) ([]string, error) {
	return c.fileFinder.GetSubfolders(folder)
}

// Load reads a PLY or PCD file, or samples an OBJ mesh into a cloud, paints
// it with the selected color and makes it the current cloud. When the user
// declines to load a large file nothing changes and both returns are nil.
func (c *Controller) Load(path string) (*data.PointCloud, error) {
	tools.LogOutput("Loading " + path)
	cloud, message, err := c.load(path)
	if errors.Is(err, errLoadCancelled) {
		glog.Infof("load of %s cancelled", path)
		return nil, nil
	}
	if err != nil {
		glog.Errorf("loading %s: %s: %v", path, failure.Kind(err), err)
		c.status = "Error loading file: " + err.Error()
		if errors.Is(err, failure.ErrOutOfMemory) {
			c.dialogs.ShowError(errorDialogTitle, OutOfMemoryMessage)
		} else {
			c.dialogs.ShowError(errorDialogTitle, "Failed to load point cloud: "+err.Error())
		}
		return nil, &LoadError{Path: path, Err: err}
	}

	c.state.SetCloud(cloud)
	c.status = message
	tools.LogOutput(message)
	return cloud, nil
}

func (c *Controller) load(path string) (*data.PointCloud, string, error) {
	format, err := io.FormatFromPath(path)
	if err != nil {
		return nil, "", err
	}
	size, err := tools.FileSize(path)
	if err != nil {
		return nil, "", failure.Mark(err, failure.ErrDecode)
	}
	if size > c.options.LargeFileThreshold && !c.dialogs.ConfirmLargeFile(largeFileDialogTitle, path, size) {
		return nil, "", errLoadCancelled
	}

	var cloud *data.PointCloud
	var message string
	if format.IsDirectFormat() {
		cloud, err = c.service.DecodePointCloud(path)
		if err != nil {
			return nil, "", err
		}
		message = "Loaded point cloud: " + path
	} else {
		cloud, err = c.meshToPointCloud(path)
		if err != nil {
			return nil, "", err
		}
		message = fmt.Sprintf("Loaded OBJ mesh and converted to %d points", cloud.Size())
	}

	cloud, err = c.pipeline.Recolor(cloud, c.state.Color().String())
	if err != nil {
		return nil, "", err
	}
	return cloud, message, nil
}

func (c *Controller) meshToPointCloud(path string) (*data.PointCloud, error) {
	mesh, err := c.service.DecodeMesh(path)
	if err != nil {
		return nil, err
	}
	if !mesh.HasVertices() {
		return nil, errors.Wrap(failure.ErrEmptyMesh, "no vertices found in OBJ file")
	}
	glog.Infof("%s: %d vertices, %d triangles, surface area %.3f", path, mesh.VertexCount(), mesh.TriangleCount(), mesh.SurfaceArea())
	count, ok := c.dialogs.AskSampleCount(c.options.SampleCount)
	if !ok {
		count = c.options.SampleCount
	}
	cloud, err := c.pipeline.MeshToPointCloud(mesh, count)
	if failure.IsWarning(err) {
		glog.Warningf("%s: %v", path, err)
		err = nil
	}
	return cloud, err
}

// LoadSample replaces the current cloud with points sampled over a sphere
// or a cube
func (c *Controller) LoadSample(shape geometry.Shape, count int) (*data.PointCloud, error) {
	if shape != geometry.ShapeSphere && shape != geometry.ShapeCube {
		err := errors.Wrapf(failure.ErrInvalidArgument, "unknown shape %q", shape)
		c.status = "Error loading file: " + err.Error()
		return nil, err
	}
	cloud, err := c.pipeline.MeshToPointCloud(shape.Mesh(), count)
	if failure.IsWarning(err) {
		glog.Warningf("sample %s: %v", shape, err)
		err = nil
	}
	if err == nil {
		cloud, err = c.pipeline.Recolor(cloud, c.state.Color().String())
	}
	if err != nil {
		c.status = "Error loading file: " + err.Error()
		return nil, err
	}
	c.state.SetCloud(cloud)
	c.status = fmt.Sprintf("Loaded sample %s with %d points", shape, cloud.Size())
	return cloud, nil
}

// Save writes the current cloud. OBJ files receive the positions only, as
// a mesh without faces.
func (c *Controller) Save(path string) error {
	cloud := c.state.Cloud()
	if cloud == nil {
		return nil
	}
	err := c.save(cloud, path)
	if err != nil {
		glog.Errorf("saving %s: %s: %v", path, failure.Kind(err), err)
		c.status = "Error saving file: " + err.Error()
		c.dialogs.ShowError(errorDialogTitle, "Failed to save point cloud: "+err.Error())
		return err
	}
	c.status = "Saved to: " + path
	tools.LogOutput(c.status)
	return nil
}

func (c *Controller) save(cloud *data.PointCloud, path string) error {
	format, err := io.FormatFromPath(path)
	if err != nil {
		return err
	}
	if format == io.FormatOBJ {
		return c.service.EncodeMesh(data.MeshFromPointCloud(cloud), path)
	}
	return c.service.EncodePointCloud(cloud, path)
}

// ChangeColor stores the color selection and repaints the current cloud,
// if any
func (c *Controller) ChangeColor(name string) error {
	color := viewer.ParseColor(name)
	if err := c.state.SetColor(color); err != nil {
		c.status = "Error changing color: " + err.Error()
		return err
	}
	cloud := c.state.Cloud()
	if cloud == nil {
		return nil
	}
	recolored, err := c.pipeline.Recolor(cloud, color.String())
	if err != nil {
		c.status = "Error changing color: " + err.Error()
		return err
	}
	c.state.SetCloud(recolored)
	return nil
}

func (c *Controller) SetPointSize(n int) error {
	if err := c.state.SetPointSize(n); err != nil {
		c.status = "Error setting point size: " + err.Error()
		return err
	}
	return nil
}

func (c *Controller) SetVoxelSize(n int) error {
	if err := c.state.SetVoxelSize(n); err != nil {
		c.status = "Error setting voxel size: " + err.Error()
		return err
	}
	return nil
}

// Process downsamples the current cloud with the voxel control, estimates
// its normals and repaints it. Without a cloud nothing happens.
func (c *Controller) Process() error {
	cloud := c.state.Cloud()
	if cloud == nil {
		return nil
	}
	processed, warnings, err := c.pipeline.Process(cloud, c.state.VoxelLength(), c.state.Color().String())
	for _, warning := range warnings {
		glog.Warningf("processing: %v", warning)
	}
	if err != nil {
		glog.Errorf("processing: %v", err)
		c.status = "Processing error: " + err.Error()
		return err
	}
	c.state.SetCloud(processed)
	c.status = StatusProcessed
	tools.LogOutput(fmt.Sprintf("Processed %d points into %d", cloud.Size(), processed.Size()))
	return nil
}

// View shows the current cloud on the render surface
func (c *Controller) View() error {
	cloud := c.state.Cloud()
	if cloud == nil {
		c.status = StatusLoadFirst
		return nil
	}
	if c.state.Measuring() {
		return nil
	}
	err := c.service.RenderInteractive(cloud, float64(c.state.PointSize()), viewer.Background)
	if err != nil {
		glog.Errorf("rendering: %v", err)
		c.status = "Error viewing point cloud: " + err.Error()
	}
	return err
}

// MeasureDistance lets the user pick points on the current cloud and
// measures the distance between the first two
func (c *Controller) MeasureDistance() (Measurement, error) {
	cloud := c.state.Cloud()
	if cloud == nil {
		return Measurement{}, nil
	}
	c.state.BeginMeasurement()
	defer c.state.EndMeasurement()
	c.distance = DistancePrompt

	picked, err := c.service.RenderWithPicking(cloud)
	if err != nil {
		glog.Errorf("picking: %v", err)
		c.distance = DistanceNeedTwo
		c.status = "Error measuring distance: " + err.Error()
		return Measurement{}, err
	}
	for _, index := range picked {
		if err := c.state.Pick(index); err != nil {
			glog.V(2).Infof("ignoring pick %d: %v", index, err)
		}
	}

	measurement := Measurement{Indices: c.state.Selection()}
	if len(measurement.Indices) >= 2 {
		measurement.Available = true
		measurement.P1 = cloud.Points[measurement.Indices[0]]
		measurement.P2 = cloud.Points[measurement.Indices[1]]
		measurement.Distance = measurement.P1.Distance(measurement.P2)
	}
	c.distance = measurement.Label()
	return measurement, nil
}
