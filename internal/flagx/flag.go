// Package flagx lets several packages parse their own subset of os.Args
// without tripping over each other's flags.
package flagx

import (
	"flag"
	"io"
	"os"
	"strings"
)

// Set describes the flags a caller wants to keep. Names are given without
// dashes; both "-name" and "--name" spellings are matched.
type Set struct {
	// Valued flags take an argument, either "-name value" or "-name=value".
	Valued []string
	// Bool flags never consume the following argument.
	Bool []string
}

func flagName(arg string) (name string, ok bool) {
	if !strings.HasPrefix(arg, "-") || arg == "-" || arg == "--" {
		return "", false
	}
	name = strings.TrimLeft(arg, "-")
	if i := strings.IndexByte(name, '='); i >= 0 {
		name = name[:i]
	}
	return name, name != ""
}

// FilterArgs returns the members of args that belong to s, together with
// their values, in their original order. Everything else is dropped.
func FilterArgs(args []string, s Set) []string {
	valued := make(map[string]struct{}, len(s.Valued))
	for _, f := range s.Valued {
		valued[f] = struct{}{}
	}
	boolean := make(map[string]struct{}, len(s.Bool))
	for _, f := range s.Bool {
		boolean[f] = struct{}{}
	}

	filtered := make([]string, 0, len(args))
	for i := 0; i < len(args); i++ {
		arg := args[i]
		name, ok := flagName(arg)
		if !ok {
			continue
		}

		if _, ok := boolean[name]; ok {
			filtered = append(filtered, arg)
			continue
		}

		if _, ok := valued[name]; !ok {
			continue
		}
		filtered = append(filtered, arg)
		if strings.Contains(arg, "=") {
			continue
		}
		if i+1 < len(args) && !strings.HasPrefix(args[i+1], "-") {
			filtered = append(filtered, args[i+1])
			i++
		}
	}

	return filtered
}

// ConfigFile returns the path given with -c or -config in args, or "" when
// neither is present.
func ConfigFile(args []string) string {
	var path string

	fs := flag.NewFlagSet("config-file", flag.ContinueOnError)
	fs.SetOutput(io.Discard)
	fs.StringVar(&path, "config", "", "path to config file (JSON or YAML)")
	fs.StringVar(&path, "c", "", "path to config file (short)")
	_ = fs.Parse(FilterArgs(args, Set{Valued: []string{"c", "config"}}))

	return path
}

// ConfigFileFlag is ConfigFile applied to os.Args.
func ConfigFileFlag() string {
	return ConfigFile(os.Args[1:])
}
