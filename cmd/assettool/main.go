// assettool is a CLI utility for inspecting and converting glTF assets.
package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/assetkit/internal/assets"
	"github.com/Faultbox/assetkit/internal/config"
	"github.com/Faultbox/assetkit/internal/logger"
	"github.com/Faultbox/assetkit/pkg/assetio"
	"github.com/Faultbox/assetkit/pkg/gltf1"
	"github.com/Faultbox/assetkit/pkg/gltf2"
	"github.com/Faultbox/assetkit/pkg/scene"
)

// errUsage marks errors already reported with a usage line.
var errUsage = errors.New("usage")

func main() {
	config.ParseFlags()
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	args := config.Args()
	if len(args) < 1 {
		printUsage(os.Stderr)
		os.Exit(1)
	}

	t := &tool{
		cfg:    cfg,
		reg:    newRegistry(),
		loader: assets.NewManager(assetio.FileLoader{}),
		writer: assetio.FileWriter{},
		out:    os.Stdout,
	}
	if err := t.run(args[0], args[1:]); err != nil {
		if !errors.Is(err, errUsage) {
			logger.Error("command failed", zap.String("command", args[0]), zap.Error(err))
		}
		logger.Sync()
		os.Exit(1)
	}
}

// newRegistry registers every codec. glTF 2.0 comes first so its probe sees
// .gltf and .glb files before the 1.0 importer.
func newRegistry() *assetio.Registry {
	reg := assetio.NewRegistry()
	reg.RegisterImporter(gltf2.Importer{})
	reg.RegisterImporter(gltf1.Importer{})
	reg.RegisterExporter(gltf2.Exporter{})
	reg.RegisterExporter(gltf2.Exporter{Binary: true})
	reg.RegisterExporter(gltf1.Exporter{})
	reg.RegisterExporter(gltf1.Exporter{Binary: true})
	return reg
}

type tool struct {
	cfg    *config.Config
	reg    *assetio.Registry
	loader assetio.Loader
	writer assetio.Writer
	out    io.Writer
}

func (t *tool) run(command string, args []string) error {
	switch command {
	case "info":
		return t.cmdInfo(args)
	case "nodes", "tree":
		return t.cmdNodes(args)
	case "convert", "c":
		return t.cmdConvert(args)
	case "formats":
		return t.cmdFormats()
	case "config":
		return t.cmdConfig(args)
	case "help", "-h", "--help":
		printUsage(t.out)
		return nil
	default:
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage(os.Stderr)
		return errUsage
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, `assettool - glTF asset utility

Usage:
  assettool [global options] <command> [options]

Commands:
  info <file>                           Show scene counts, flags and metadata
  nodes <file>                          Print the node hierarchy
  convert [-format id] [-props file.yaml] <in> <out>
                                        Convert between glTF 1.0 and 2.0
  formats                               List importers and export formats
  config [-save]                        Print (or save) the effective config

Global options:
  -config path   -debug   -log-file path   -trs   -epsilon value   -text

Examples:
  assettool info model.glb
  assettool convert -format gltf1 model.glb legacy.gltf
  assettool -trs convert model.gltf model.glb`)
}

func usage(line string) error {
	fmt.Fprintln(os.Stderr, "Usage: assettool "+line)
	return errUsage
}

// load imports path and logs the warnings collected on the way.
func (t *tool) load(path string) (*scene.Scene, error) {
	s, err := t.reg.Import(path, t.loader)
	if err != nil {
		return nil, err
	}
	logger.Warnings(path, s.Warnings)
	logger.Debug("imported",
		zap.String("path", path),
		zap.Int("nodes", s.Nodes.Len()),
		zap.Int("meshes", len(s.Meshes)))
	return s, nil
}

func (t *tool) cmdInfo(args []string) error {
	if len(args) < 1 {
		return usage("info <file>")
	}
	s, err := t.load(args[0])
	if err != nil {
		return err
	}

	faces, vertices := 0, 0
	for i := range s.Meshes {
		faces += len(s.Meshes[i].Faces)
		vertices += len(s.Meshes[i].Vertices)
	}
	fmt.Fprintf(t.out, "Scene:      %s\n", s.Name)
	fmt.Fprintf(t.out, "Flags:      %s\n", s.Flags)
	fmt.Fprintf(t.out, "Nodes:      %d\n", s.Nodes.Len())
	fmt.Fprintf(t.out, "Meshes:     %d (%d vertices, %d faces)\n", len(s.Meshes), vertices, faces)
	fmt.Fprintf(t.out, "Materials:  %d\n", len(s.Materials))
	fmt.Fprintf(t.out, "Textures:   %d\n", len(s.Textures))
	fmt.Fprintf(t.out, "Cameras:    %d\n", len(s.Cameras))
	fmt.Fprintf(t.out, "Lights:     %d\n", len(s.Lights))
	fmt.Fprintf(t.out, "Animations: %d\n", len(s.Animations))

	if s.Metadata.Len() > 0 {
		fmt.Fprintln(t.out)
		fmt.Fprintln(t.out, "Metadata:")
		for _, k := range s.Metadata.Keys() {
			e, _ := s.Metadata.Get(k)
			fmt.Fprintf(t.out, "  %-28s %s\n", k, e.Format())
		}
	}
	if len(s.Warnings) > 0 {
		fmt.Fprintf(t.out, "\nWarnings:   %d\n", len(s.Warnings))
	}
	return nil
}

func (t *tool) cmdNodes(args []string) error {
	if len(args) < 1 {
		return usage("nodes <file>")
	}
	s, err := t.load(args[0])
	if err != nil {
		return err
	}
	if !s.Nodes.HasRoot() {
		fmt.Fprintln(t.out, "(no nodes)")
		return nil
	}
	t.printNode(s, s.Nodes.Root, 0, make(map[int]bool))
	return nil
}

func (t *tool) printNode(s *scene.Scene, idx, depth int, seen map[int]bool) {
	if seen[idx] {
		return
	}
	seen[idx] = true
	n := &s.Nodes.Arena[idx]

	var extra []string
	if len(n.MeshIndexes) > 0 {
		extra = append(extra, fmt.Sprintf("meshes=%v", n.MeshIndexes))
	}
	if _, ok := s.CameraByName(n.Name); ok {
		extra = append(extra, "camera")
	}
	if li, ok := s.LightByName(n.Name); ok {
		extra = append(extra, "light="+s.Lights[li].Type.String())
	}
	if !n.Transform.IsIdentity(t.cfg.Export.Properties().Tolerance()) {
		extra = append(extra, "transformed")
	}
	line := strings.Repeat("  ", depth) + n.Name
	if len(extra) > 0 {
		line += " [" + strings.Join(extra, " ") + "]"
	}
	fmt.Fprintln(t.out, line)

	for _, c := range n.Children {
		if c >= 0 && c < s.Nodes.Len() {
			t.printNode(s, c, depth+1, seen)
		}
	}
}

func (t *tool) cmdConvert(args []string) error {
	fs := flag.NewFlagSet("convert", flag.ContinueOnError)
	format := fs.String("format", "", "Export format id (default from the output extension)")
	propsFile := fs.String("props", "", "YAML file of export properties")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if fs.NArg() < 2 {
		return usage("convert [-format id] [-props file.yaml] <in> <out>")
	}
	in, out := fs.Arg(0), fs.Arg(1)

	props := t.cfg.Export.Properties()
	if *propsFile != "" {
		p, err := assetio.LoadProperties(*propsFile)
		if err != nil {
			return fmt.Errorf("properties %s: %w", *propsFile, err)
		}
		props = p
	}

	id := *format
	if id == "" {
		id = t.formatFor(out)
	}

	s, err := t.load(in)
	if err != nil {
		return err
	}
	if err := t.reg.Export(s, out, id, props, t.writer); err != nil {
		return err
	}
	logger.Info("converted", zap.String("in", in), zap.String("out", out), zap.String("format", id))
	return nil
}

// formatFor picks a 2.0 exporter by output extension, falling back to the
// configured default.
func (t *tool) formatFor(path string) string {
	switch assetio.Ext(path) {
	case "glb":
		return gltf2.FormatGLB
	case "gltf":
		return gltf2.FormatGLTF
	default:
		return t.cfg.Export.Format()
	}
}

func (t *tool) cmdFormats() error {
	fmt.Fprintln(t.out, "Importers:")
	for _, imp := range t.reg.Importers() {
		fmt.Fprintf(t.out, "  %-22s .%s\n", imp.Name(), strings.Join(imp.Extensions(), " ."))
	}
	fmt.Fprintln(t.out)
	fmt.Fprintln(t.out, "Export formats:")
	for _, exp := range t.reg.Exporters() {
		fmt.Fprintf(t.out, "  %-8s .%-5s %s\n", exp.ID(), exp.Extension(), exp.Description())
	}
	return nil
}

func (t *tool) cmdConfig(args []string) error {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	save := fs.Bool("save", false, "Write the effective config to the user config directory")
	if err := fs.Parse(args); err != nil {
		return errUsage
	}
	if *save {
		path, err := t.cfg.Save()
		if err != nil {
			return err
		}
		logger.Info("saved config", zap.String("path", path))
		return nil
	}
	data, err := t.cfg.Marshal()
	if err != nil {
		return err
	}
	_, err = t.out.Write(data)
	return err
}
