// actool is a CLI utility for inspecting and converting AC3D .ac model files.
package main

import (
	"flag"
	"fmt"
	"os"
	"strings"

	"github.com/skymesh/actools/pkg/ac3d"
	"github.com/skymesh/actools/pkg/math"
)

func main() {
	if len(os.Args) < 2 {
		printUsage()
		os.Exit(1)
	}

	command := os.Args[1]
	args := os.Args[2:]

	switch command {
	case "info":
		cmdInfo(args)
	case "dump", "tree":
		cmdDump(args)
	case "validate", "check":
		cmdValidate(args)
	case "convert", "conv":
		cmdConvert(args)
	case "help", "-h", "--help":
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
		os.Exit(1)
	}
}

func printUsage() {
	fmt.Println(`actool - AC3D model file utility

Usage:
  actool <command> [options]

Commands:
  info <file.ac>               Show model information
  dump <file.ac>               Print the object tree
  validate <file.ac>           Parse and report every warning
  convert <file.ac> <out.ac>   Rewrite a model (normalizes layout)

Examples:
  actool info cockpit.ac
  actool dump -v cockpit.ac
  actool validate -strict cockpit.ac
  actool convert -rev c -p 5 cockpit.ac cockpit-c.ac`)
}

func cmdInfo(args []string) {
	if len(args) < 1 {
		fmt.Fprintln(os.Stderr, "Usage: actool info <file.ac>")
		os.Exit(1)
	}

	doc, err := ac3d.ParseFile(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	var polys, groups, lights, verts, surfs int
	textures := make(map[string]bool)
	countObjects(doc.Root, &polys, &groups, &lights, &verts, &surfs, textures)

	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Revision:  AC3D%s\n", doc.Version)
	fmt.Printf("Materials: %d\n", len(doc.Materials))
	fmt.Printf("Objects:   %d (%d poly, %d group, %d light)\n",
		doc.Root.Count(), polys, groups, lights)
	fmt.Printf("Vertices:  %d\n", verts)
	fmt.Printf("Surfaces:  %d\n", surfs)

	if len(textures) > 0 {
		fmt.Println("\nTextures:")
		for tex := range textures {
			fmt.Printf("  %s\n", tex)
		}
	}

	if len(doc.Warnings) > 0 {
		fmt.Printf("\n%d warning(s), run 'actool validate' for details\n", len(doc.Warnings))
	}
}

func countObjects(o *ac3d.Object, polys, groups, lights, verts, surfs *int, textures map[string]bool) {
	switch o.Kind {
	case ac3d.KindPoly:
		*polys++
	case ac3d.KindGroup:
		*groups++
	case ac3d.KindLight:
		*lights++
	}
	*verts += len(o.Vertices)
	*surfs += len(o.Surfaces)
	if o.Texture != "" {
		textures[o.Texture] = true
	}
	for _, child := range o.Children {
		countObjects(child, polys, groups, lights, verts, surfs, textures)
	}
}

func cmdDump(args []string) {
	fs := flag.NewFlagSet("dump", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show geometry and transform details")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: actool dump <file.ac>")
		os.Exit(1)
	}

	doc, err := ac3d.ParseFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for i, m := range doc.Materials {
		fmt.Printf("material %d %q rgb %.3g %.3g %.3g trans %.3g\n",
			i, m.Name, m.Diffuse[0], m.Diffuse[1], m.Diffuse[2], m.Transparency)
	}

	dumpObject(doc.Root, 0, *verbose)
}

func dumpObject(o *ac3d.Object, depth int, verbose bool) {
	indent := strings.Repeat("  ", depth)

	name := o.Name
	if name == "" {
		name = "(unnamed)"
	}
	fmt.Printf("%s%s %s", indent, o.Kind, name)
	if len(o.Vertices) > 0 {
		fmt.Printf(" [%d verts, %d surfs]", len(o.Vertices), len(o.Surfaces))
	}
	fmt.Println()

	if verbose {
		if o.Loc != [3]float32{} {
			fmt.Printf("%s  loc %g %g %g\n", indent, o.Loc[0], o.Loc[1], o.Loc[2])
		}
		if !math.Mat3(o.Rot).IsIdentity(0) {
			fmt.Printf("%s  rot %v\n", indent, o.Rot)
		}
		if o.Texture != "" {
			fmt.Printf("%s  texture %q\n", indent, o.Texture)
		}
		if o.CreaseSet {
			fmt.Printf("%s  crease %g\n", indent, o.Crease)
		}
		if o.Data != "" {
			fmt.Printf("%s  data %q\n", indent, o.Data)
		}
	}

	for _, child := range o.Children {
		dumpObject(child, depth+1, verbose)
	}
}

func cmdValidate(args []string) {
	fs := flag.NewFlagSet("validate", flag.ExitOnError)
	strict := fs.Bool("strict", false, "Also warn about tolerated legacy quirks")
	fs.Parse(args)

	if fs.NArg() < 1 {
		fmt.Fprintln(os.Stderr, "Usage: actool validate <file.ac>")
		os.Exit(1)
	}

	f, err := os.Open(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer f.Close()

	doc, err := ac3d.ParseWithOptions(f, ac3d.ParseOptions{Strict: *strict})
	if err != nil {
		fmt.Fprintf(os.Stderr, "%s: FAILED: %v\n", fs.Arg(0), err)
		os.Exit(1)
	}

	for _, w := range doc.Warnings {
		fmt.Printf("%s: %s\n", fs.Arg(0), w)
	}

	if len(doc.Warnings) == 0 {
		fmt.Printf("%s: OK\n", fs.Arg(0))
	} else {
		fmt.Fprintf(os.Stderr, "\n%d warning(s)\n", len(doc.Warnings))
	}
}

func cmdConvert(args []string) {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	revision := fs.String("rev", "", "Output revision, 'b' or 'c' (default: same as input)")
	precision := fs.Int("p", ac3d.DefaultPrecision, "Vertex coordinate digits")
	fs.Parse(args)

	if fs.NArg() < 2 {
		fmt.Fprintln(os.Stderr, "Usage: actool convert <file.ac> <out.ac>")
		os.Exit(1)
	}

	doc, err := ac3d.ParseFile(fs.Arg(0))
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	for _, w := range doc.Warnings {
		fmt.Fprintf(os.Stderr, "warning: %s\n", w)
	}

	opts := ac3d.WriteOptions{Precision: *precision}
	switch *revision {
	case "":
		opts.Version = doc.Version
	case "b":
		opts.Version = ac3d.VersionB
	case "c":
		opts.Version = ac3d.VersionC
	default:
		fmt.Fprintf(os.Stderr, "Unknown revision: %s (want 'b' or 'c')\n", *revision)
		os.Exit(1)
	}

	if err := ac3d.WriteFile(doc, fs.Arg(1), opts); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	fmt.Printf("Wrote %s (AC3D%s, %d objects)\n", fs.Arg(1), opts.Version, doc.Root.Count())
}
