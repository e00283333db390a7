package std_algorithm_manager

import (
	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/pipeline"
	"github.com/ecopia-map/cloudview/internal/render"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/ecopia-map/cloudview/pkg/algorithm_manager"
)

type StandardAlgorithmManager struct {
	service  geometry.Service
	pipeline *pipeline.Pipeline
}

// Wires the geometry service with the codec options, the sampling seed and the
// render surface of the viewer options
func NewAlgorithmManager(opt *viewer.Options, surface render.Surface) algorithm_manager.AlgorithmManager {
	service := geometry.NewStandardService(opt.IOOptions(), surface, opt.Seed)
	return &StandardAlgorithmManager{
		service:  service,
		pipeline: pipeline.New(service),
	}
}

func (am *StandardAlgorithmManager) GetGeometryService() geometry.Service {
	return am.service
}

func (am *StandardAlgorithmManager) GetPipeline() *pipeline.Pipeline {
	return am.pipeline
}
