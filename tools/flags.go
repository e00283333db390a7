package tools

import (
	"flag"
	"os"
)

type Flags struct {
	Help      *bool   `json:"help"`
	Version   *bool   `json:"version"`
	Dir       *string `json:"dir"`
	RenderDir *string `json:"render_dir"`
	LargeFile *string `json:"large_file"`
	Seed      *int    `json:"seed"`
	Encoding  *string `json:"encoding"`
	Sample    *string `json:"sample"`
	Silent    *bool   `json:"silent"`
}

// ParseFlags parses the command line. glog registers its own flags
// (-logtostderr, -v, -log_dir...) on the same flag set.
func ParseFlags() (Flags, error) {
	return ParseFlagsFrom(flag.CommandLine, os.Args[1:])
}

// ParseFlagsFrom defines the viewer flags on flagSet and parses args
func ParseFlagsFrom(flagSet *flag.FlagSet, args []string) (Flags, error) {
	flags := Flags{
		Help:      defineBoolFlag(flagSet, "help", "h", false, "Displays this help."),
		Version:   defineBoolFlag(flagSet, "version", "", false, "Displays the version of cloudview."),
		Dir:       defineStringFlag(flagSet, "dir", "d", ".", "Folder the open dialog starts from."),
		RenderDir: defineStringFlag(flagSet, "render-dir", "r", "renders", "Folder where rendered frames are written."),
		LargeFile: defineStringFlag(flagSet, "large-file", "l", "100MB", "Files larger than this need a confirmation before loading."),
		Seed:      defineIntFlag(flagSet, "seed", "", 42, "Seed of the random generator used to sample meshes."),
		Encoding:  defineStringFlag(flagSet, "encoding", "e", "binary", "Encoding of saved PLY files, binary or ascii."),
		Sample:    defineStringFlag(flagSet, "sample", "", "", "Starts with points sampled from a sphere or a cube."),
		Silent:    defineBoolFlag(flagSet, "silent", "s", false, "Use to suppress all the non-error messages."),
	}

	err := flagSet.Parse(args)
	return flags, err
}

func defineStringFlag(flagSet *flag.FlagSet, name string, shortHand string, defaultValue string, usage string) *string {
	var output string
	flagSet.StringVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagSet.StringVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineIntFlag(flagSet *flag.FlagSet, name string, shortHand string, defaultValue int, usage string) *int {
	var output int
	flagSet.IntVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagSet.IntVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}

	return &output
}

func defineBoolFlag(flagSet *flag.FlagSet, name string, shortHand string, defaultValue bool, usage string) *bool {
	var output bool
	flagSet.BoolVar(&output, name, defaultValue, usage)
	if shortHand != name && shortHand != "" {
		flagSet.BoolVar(&output, shortHand, defaultValue, usage+" (shorthand for "+name+")")
	}
	return &output
}
