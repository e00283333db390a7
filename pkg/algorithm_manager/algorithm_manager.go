package algorithm_manager

import (
	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/pipeline"
)

type AlgorithmManager interface {
	GetGeometryService() geometry.Service
	GetPipeline() *pipeline.Pipeline
}
