package ui

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/huh"
	"github.com/docker/go-units"
	"github.com/ecopia-map/cloudview/internal/failure"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

// Dialogs asks the controller questions through modal terminal forms
type Dialogs struct{}

func NewDialogs() *Dialogs {
	return &Dialogs{}
}

func (d *Dialogs) ConfirmLargeFile(title string, path string, size int64) bool {
	confirmed := false
	err := huh.NewForm(huh.NewGroup(
		huh.NewConfirm().
			Title(title).
			Description(fmt.Sprintf("%s is large (%s) and might take time to load. Continue?", filepath.Base(path), units.HumanSize(float64(size)))).
			Affirmative("Yes").
			Negative("No").
			Value(&confirmed),
	)).Run()
	if err != nil {
		glog.V(2).Infof("large file dialog: %v", err)
		return false
	}
	return confirmed
}

func (d *Dialogs) AskSampleCount(defaultCount int) (int, bool) {
	value := strconv.Itoa(defaultCount)
	err := huh.NewForm(huh.NewGroup(
		huh.NewInput().
			Title("Sample Points").
			Description(fmt.Sprintf("Number of points to sample (%d to %d, step %d):", viewer.MinSampleCount, viewer.MaxSampleCount, viewer.SampleCountStep)).
			Value(&value).
			Validate(func(s string) error {
				_, err := parseSampleCount(s)
				return err
			}),
	)).Run()
	if err != nil {
		return 0, false
	}
	count, err := parseSampleCount(value)
	if err != nil {
		return 0, false
	}
	return count, true
}

func (d *Dialogs) ShowError(title string, message string) {
	err := huh.NewForm(huh.NewGroup(
		huh.NewNote().Title(title).Description(message),
	)).Run()
	if err != nil {
		glog.V(2).Infof("error dialog: %v", err)
	}
}

// parseInt accepts digit group separators such as 100_000 or 100,000
func parseInt(value string) (int, error) {
	cleaned := strings.NewReplacer("_", "", ",", "", " ", "").Replace(value)
	n, err := strconv.Atoi(cleaned)
	if err != nil {
		return 0, errors.Wrapf(failure.ErrInvalidArgument, "%q is not a whole number", value)
	}
	return n, nil
}

func parseSampleCount(value string) (int, error) {
	n, err := parseInt(value)
	if err != nil {
		return 0, err
	}
	return n, viewer.ValidateSampleCount(n)
}

func parseVoxelSize(value string) (int, error) {
	n, err := parseInt(value)
	if err != nil {
		return 0, err
	}
	if n < viewer.MinVoxelSize || n > viewer.MaxVoxelSize {
		return 0, errors.Wrapf(failure.ErrInvalidArgument, "voxel size must be between %d and %d", viewer.MinVoxelSize, viewer.MaxVoxelSize)
	}
	return n, nil
}
