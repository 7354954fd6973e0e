// Package buildinfo generates the CMake include that wires a recipe build to
// the orchestrator: dependency paths, build type and option values.
package buildinfo

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"text/template"

	"github.com/cybercalc/minisat-recipe/formula"
)

// FileName is the name of the generated file inside the build directory.
const FileName = "llarbuildinfo.cmake"

// Splice is the text recipes insert after project() to load the build info.
const Splice = "include(${CMAKE_BINARY_DIR}/" + FileName + ")\nllar_basic_setup()"

// Info is the data rendered into the build info file.
type Info struct {
	Name      string
	BuildType string
	Options   formula.Options
	Deps      []string // install prefixes
}

type option struct {
	Var   string
	Value string
}

var tmpl = template.Must(template.New(FileName).Parse(`# Generated for {{.Name}}. Do not edit.
set(LLAR_INCLUDE_DIRS{{range .IncludeDirs}} "{{.}}"{{end}})
set(LLAR_LIB_DIRS{{range .LibDirs}} "{{.}}"{{end}})
{{- range .Options}}
set({{.Var}} "{{.Value}}")
{{- end}}

macro(llar_basic_setup)
  if(LLAR_INCLUDE_DIRS)
    include_directories(${LLAR_INCLUDE_DIRS})
  endif()
  if(LLAR_LIB_DIRS)
    link_directories(${LLAR_LIB_DIRS})
  endif()
{{- if .BuildType}}
  if(NOT CMAKE_CONFIGURATION_TYPES AND NOT CMAKE_BUILD_TYPE)
    set(CMAKE_BUILD_TYPE "{{.BuildType}}")
  endif()
{{- end}}
  set(CMAKE_EXPORT_COMPILE_COMMANDS ON)
endmacro()
`))

// Render returns the build info file content.
func Render(info Info) ([]byte, error) {
	data := struct {
		Name        string
		BuildType   string
		IncludeDirs []string
		LibDirs     []string
		Options     []option
	}{
		Name:      info.Name,
		BuildType: info.BuildType,
	}
	for _, dep := range info.Deps {
		data.IncludeDirs = append(data.IncludeDirs, filepath.ToSlash(filepath.Join(dep, "include")))
		data.LibDirs = append(data.LibDirs, filepath.ToSlash(filepath.Join(dep, "lib")))
	}
	names := make([]string, 0, len(info.Options))
	for k := range info.Options {
		names = append(names, k)
	}
	sort.Strings(names)
	for _, k := range names {
		data.Options = append(data.Options, option{
			Var:   "LLAR_OPTION_" + strings.ToUpper(k),
			Value: info.Options[k],
		})
	}

	var buf bytes.Buffer
	if err := tmpl.Execute(&buf, data); err != nil {
		return nil, fmt.Errorf("render %s: %w", FileName, err)
	}
	return buf.Bytes(), nil
}

// Write renders info into dir/FileName, creating dir if needed.
func Write(dir string, info Info) (string, error) {
	content, err := Render(info)
	if err != nil {
		return "", err
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", err
	}
	path := filepath.Join(dir, FileName)
	return path, os.WriteFile(path, content, 0o644)
}
