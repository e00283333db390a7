/*
 * This file is part of the Go Cesium Point Cloud Tiler distribution (https://github.com/mfbonfigli/gocesiumtiler).
 * Copyright (c) 2019 Massimo Federico Bonfigli - m.federico.bonfigli@gmail.com
 *
 * This program is free software; you can redistribute it and/or modify it
 * under the terms of the GNU Lesser General Public License Version 3 as
 * published by the Free Software Foundation;
 *
 * This program is distributed in the hope that it will be useful,
 * but WITHOUT ANY WARRANTY; without even the implied warranty of
 * MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the GNU
 * Lesser General Public License for more details.
 *
 * You should have received a copy of the GNU Lesser General Public License
 * along with this program. If not, see <http://www.gnu.org/licenses/>.
 *
 * This software also uses third party components. You can find information
 * on their credits and licensing in the file LICENSE-3RD-PARTIES.md that
 * you should have received togheter with the source code.
 */

package main

import (
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/docker/go-units"
	"github.com/ecopia-map/cloudview/internal/geometry"
	"github.com/ecopia-map/cloudview/internal/io"
	"github.com/ecopia-map/cloudview/internal/ui"
	"github.com/ecopia-map/cloudview/internal/viewer"
	"github.com/ecopia-map/cloudview/pkg"
	"github.com/ecopia-map/cloudview/pkg/algorithm_manager/std_algorithm_manager"
	"github.com/ecopia-map/cloudview/tools"
	"github.com/golang/glog"
	"github.com/pkg/errors"
)

const VERSION = "0.3.0"

const logo = `
      _                 _       _
  ___| | ___  _   _  __| |_   _(_) _____      __
 / __| |/ _ \| | | |/ _  \ \ / / |/ _ \ \ /\ / /
| (__| | (_) | |_| | (_| |\ V /| |  __/\ V  V /
 \___|_|\___/ \__,_|\__,_| \_/ |_|\___| \_/\_/
  A point cloud viewer for the terminal
  Copyright YYYY - Ecopia Map
`

func main() {
	defer glog.Flush()

	flags, err := tools.ParseFlags()
	if err != nil {
		glog.Exitf("Error parsing command line: %v", err)
	}

	if *flags.Help {
		showHelp()
		return
	}

	if *flags.Version {
		printVersion()
		return
	}

	if *flags.Silent {
		tools.DisableLogger()
	} else {
		printLogo()
	}
	glog.V(1).Info(tools.FmtJSONString(flags))

	opts, shape, err := optionsFromFlags(&flags)
	if err != nil {
		glog.Exitf("Error parsing input parameters: %v", err)
	}
	if err := tools.CreateDirectoryIfDoesNotExist(opts.RenderDir); err != nil {
		glog.Exitf("Cannot create the render folder: %v", err)
	}

	signals := make(chan os.Signal, 1)
	signal.Notify(signals, os.Interrupt, syscall.SIGTERM)
	go func() {
		<-signals
		glog.Flush()
		os.Exit(0)
	}()

	surface := ui.NewSurface(opts.RenderDir, os.Stdout)
	controller := pkg.NewController(
		tools.NewStandardFileFinder(),
		std_algorithm_manager.NewAlgorithmManager(opts, surface),
		ui.NewDialogs(),
		opts,
	)
	if shape != "" {
		if _, err := controller.LoadSample(shape, opts.SampleCount); err != nil {
			glog.Errorf("sampling %s: %v", shape, err)
		}
	}
	if err := ui.NewWindow(controller, opts, os.Stdout).Run(); err != nil {
		glog.Exitf("Viewer stopped: %v", err)
	}
	tools.LogOutput("Bye")
}

// Builds the viewer options out of the command line flags and validates them,
// along with the sample shape to start with, if any
func optionsFromFlags(flags *tools.Flags) (*viewer.Options, geometry.Shape, error) {
	threshold, err := units.FromHumanSize(*flags.LargeFile)
	if err != nil {
		return nil, "", err
	}

	opts := viewer.DefaultOptions()
	opts.StartDir = *flags.Dir
	opts.RenderDir = *flags.RenderDir
	opts.LargeFileThreshold = threshold
	opts.Seed = uint64(*flags.Seed)
	opts.Encoding = io.ParseEncoding(*flags.Encoding)
	if _, err := os.Stat(opts.StartDir); os.IsNotExist(err) {
		return nil, "", errors.Errorf("start folder %s not found", opts.StartDir)
	}

	var shape geometry.Shape
	if *flags.Sample != "" {
		if shape = geometry.ParseShape(*flags.Sample); shape == "" {
			return nil, "", errors.Errorf("sample should be either SPHERE or CUBE")
		}
	}
	return opts, shape, opts.Validate()
}

func printLogo() {
	fmt.Println(strings.ReplaceAll(logo, "YYYY", strconv.Itoa(time.Now().Year())))
}

func showHelp() {
	printLogo()
	fmt.Println("***")
	fmt.Println("cloudview opens PLY, PCD and OBJ files, downsamples them, estimates their normals and measures distances between points")
	printVersion()
	fmt.Println("***")
	fmt.Println("")
	fmt.Println("Command line flags: ")
	flag.CommandLine.SetOutput(os.Stdout)
	flag.PrintDefaults()
}

func printVersion() {
	fmt.Println("v." + VERSION)
}
