package internal

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/cybercalc/minisat-recipe/formula"
	"github.com/cybercalc/minisat-recipe/recipes/minisat"
	"github.com/spf13/cobra"
)

var infoJSON bool

var infoCmd = &cobra.Command{
	Use:   "info",
	Short: "Show package metadata, options and declared libraries",
	Args:  cobra.NoArgs,
	RunE:  runInfo,
}

func init() {
	infoCmd.Flags().BoolVar(&infoJSON, "json", false, "Print as JSON")
	rootCmd.AddCommand(infoCmd)
}

type optionInfo struct {
	Values  []string `json:"values"`
	Default string   `json:"default"`
}

type recipeInfo struct {
	Name        string                `json:"name"`
	URL         string                `json:"url"`
	Homepage    string                `json:"homepage"`
	License     string                `json:"license"`
	Author      string                `json:"author"`
	Description string                `json:"description"`
	Options     map[string]optionInfo `json:"options"`
	Libs        []string              `json:"libs"`
}

func describe(r formula.Recipe) recipeInfo {
	d := r.Descriptor()
	out := recipeInfo{
		Name:        d.Name,
		URL:         d.URL,
		Homepage:    d.Homepage,
		License:     d.License,
		Author:      d.Author,
		Description: d.Description,
		Options:     map[string]optionInfo{},
	}
	for name, o := range r.Options() {
		out.Options[name] = optionInfo{Values: o.Values, Default: o.Default}
	}
	info := formula.NewPackageInfo()
	r.PackageInfo(&formula.Context{Options: r.Options().Defaults()}, info)
	out.Libs = info.CppInfo.Libs
	return out
}

func runInfo(cmd *cobra.Command, args []string) error {
	r := minisat.New()
	info := describe(r)
	if infoJSON {
		enc := json.NewEncoder(cmd.OutOrStdout())
		enc.SetIndent("", "  ")
		return enc.Encode(info)
	}
	printInfo(cmd.OutOrStdout(), r.Options(), info)
	return nil
}

func printInfo(w io.Writer, set formula.OptionSet, info recipeInfo) {
	fmt.Fprintf(w, "name:        %s\n", info.Name)
	fmt.Fprintf(w, "url:         %s\n", info.URL)
	fmt.Fprintf(w, "license:     %s\n", info.License)
	fmt.Fprintf(w, "author:      %s\n", info.Author)
	fmt.Fprintf(w, "description: %s\n", info.Description)
	fmt.Fprintln(w, "options:")
	for _, name := range set.Names() {
		o := set[name]
		fmt.Fprintf(w, "  %s: [%s] default %s\n", name, strings.Join(o.Values, ", "), o.Default)
	}
	fmt.Fprintf(w, "libs:        %s\n", strings.Join(info.Libs, " "))
}
