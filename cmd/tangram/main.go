package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"os/signal"

	"github.com/ironsheep/tangram-classifier/internal/config"
	"github.com/ironsheep/tangram-classifier/internal/imaging"
	"github.com/ironsheep/tangram-classifier/internal/pipeline"
	"github.com/ironsheep/tangram-classifier/internal/reference"
	"github.com/ironsheep/tangram-classifier/internal/server"
)

// Version information - set by ldflags during build
var (
	Version   = "dev"
	BuildTime = "unknown"
	GitCommit = "unknown"
)

func usage() {
	fmt.Println("tangram - tangram silhouette classifier")
	fmt.Println()
	fmt.Println("Usage: tangram <command> [options]")
	fmt.Println()
	fmt.Println("Commands:")
	fmt.Println("  classify <photo>        Predict the label of a silhouette photo")
	fmt.Println("  features <photo>        Print the feature vector of a photo")
	fmt.Println("  pieces <photo>          Print the detected pieces of a photo")
	fmt.Println("  overlay <photo> <png>   Render the detected pieces to a PNG file")
	fmt.Println("  build-reference         Build the reference table from the dataset")
	fmt.Println("  init-config [path]      Write the default configuration file")
	fmt.Println("  serve                   Run the MCP server on stdin/stdout")
	fmt.Println("  version                 Print version information")
	fmt.Println()
	fmt.Println("Run 'tangram <command> -h' for the options of a command.")
	fmt.Println()
	fmt.Println("Environment variables:")
	fmt.Println("  TANGRAM_CONFIG=path            Configuration file (default tangram.yaml)")
	fmt.Println("  TANGRAM_REFERENCE=path         Reference table, .csv or .db")
	fmt.Println("  TANGRAM_DATASET=dir            Dataset directory for build-reference")
	fmt.Println("  TANGRAM_SENSITIVITY=50         Silhouette gray level threshold")
	fmt.Println("  TANGRAM_CONTOUR_SOURCE=trace   Contour extractor")
	fmt.Println("  TANGRAM_LOG_LEVEL=debug        Enable debug logging")
}

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	// Configure logging to stderr (stdout is for results and MCP protocol)
	log.SetOutput(os.Stderr)
	log.SetFlags(log.Ldate | log.Ltime | log.Lshortfile)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	cmd, args := os.Args[1], os.Args[2:]
	var err error
	switch cmd {
	case "--version", "-v", "version":
		fmt.Printf("tangram %s\n", Version)
		fmt.Printf("  Build time: %s\n", BuildTime)
		fmt.Printf("  Git commit: %s\n", GitCommit)
		return
	case "--help", "-h", "help":
		usage()
		return
	case "classify", "features", "pieces":
		err = runPhoto(ctx, cmd, args)
	case "overlay":
		err = runOverlay(ctx, args)
	case "build-reference":
		err = runBuildReference(ctx, args)
	case "init-config":
		err = runInitConfig(args)
	case "serve":
		err = runServe(args)
	default:
		fmt.Fprintf(os.Stderr, "unknown command: %s\n\n", cmd)
		usage()
		os.Exit(2)
	}
	if err != nil {
		log.Fatalf("%s: %v", cmd, err)
	}
}

// photoFlags are the flags shared by commands that process one photo.
type photoFlags struct {
	config      string
	reference   string
	side        string
	crop        bool
	sensitivity int
}

func (p *photoFlags) register(fs *flag.FlagSet) {
	fs.StringVar(&p.config, "config", "", "configuration file")
	fs.StringVar(&p.reference, "reference", "", "reference table, overrides the configuration")
	fs.StringVar(&p.side, "side", "", "keep one half of the photo: left or right (implies -crop)")
	fs.BoolVar(&p.crop, "crop", false, "crop the photo before thresholding")
	fs.IntVar(&p.sensitivity, "sensitivity", 0, "silhouette gray level threshold, overrides the configuration")
}

// resolve loads the configuration and applies the flags that were set on
// the command line.
func (p *photoFlags) resolve(fs *flag.FlagSet) (*config.Config, error) {
	cfg, path, err := config.Resolve(p.config)
	if err != nil {
		return nil, err
	}

	fs.Visit(func(f *flag.Flag) {
		switch f.Name {
		case "reference":
			cfg.ReferencePath = p.reference
		case "side":
			cfg.Crop.Side = p.side
			cfg.Crop.Enabled = true
		case "sensitivity":
			cfg.Sensitivity = p.sensitivity
		}
	})
	// An explicit -crop=false wins over -side and drops the side.
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "crop" {
			cfg.Crop.Enabled = p.crop
			if !p.crop {
				cfg.Crop.Side = ""
			}
		}
	})
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	if cfg.Debug() {
		log.Printf("tangram %s (built %s, commit %s), config %s", Version, BuildTime, GitCommit, path)
	}
	return cfg, nil
}

func runPhoto(ctx context.Context, cmd string, args []string) error {
	fs := flag.NewFlagSet(cmd, flag.ExitOnError)
	var pf photoFlags
	pf.register(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 1 {
		return fmt.Errorf("expected one photo path, got %d arguments", fs.NArg())
	}
	path := fs.Arg(0)

	cfg, err := pf.resolve(fs)
	if err != nil {
		return err
	}

	var table *reference.Table
	if cmd == "classify" {
		if table, err = reference.Load(ctx, cfg.ReferencePath); err != nil {
			return err
		}
	}
	c, err := pipeline.New(cfg, table)
	if err != nil {
		return err
	}

	switch cmd {
	case "classify":
		result, err := c.ClassifyFile(ctx, path, c.Options())
		if err != nil {
			return err
		}
		return printJSON(result)
	case "features":
		a, err := c.AnalyzeFile(ctx, path, c.Options())
		if err != nil {
			return err
		}
		return printJSON(a.Features)
	default:
		a, err := c.AnalyzeFile(ctx, path, c.Options())
		if err != nil {
			return err
		}
		return printJSON(a)
	}
}

func runOverlay(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("overlay", flag.ExitOnError)
	var pf photoFlags
	pf.register(fs)
	_ = fs.Parse(args)
	if fs.NArg() != 2 {
		return fmt.Errorf("expected a photo path and an output path, got %d arguments", fs.NArg())
	}

	cfg, err := pf.resolve(fs)
	if err != nil {
		return err
	}
	c, err := pipeline.New(cfg, nil)
	if err != nil {
		return err
	}
	a, err := c.AnalyzeFile(ctx, fs.Arg(0), c.Options())
	if err != nil {
		return err
	}
	if err := imaging.SaveOverlay(pipeline.Overlay(a), fs.Arg(1)); err != nil {
		return err
	}
	log.Printf("Wrote %d pieces to %s", len(a.Pieces.Pieces)+len(a.Pieces.Unlabeled), fs.Arg(1))
	return nil
}

func runBuildReference(ctx context.Context, args []string) error {
	fs := flag.NewFlagSet("build-reference", flag.ExitOnError)
	configPath := fs.String("config", "", "configuration file")
	dataset := fs.String("dataset", "", "dataset directory, overrides the configuration")
	output := fs.String("output", "", "reference table to write (.csv or .db), overrides the configuration")
	_ = fs.Parse(args)

	cfg, _, err := config.Resolve(*configPath)
	if err != nil {
		return err
	}
	if *dataset != "" {
		cfg.DatasetDir = *dataset
	}
	if *output != "" {
		cfg.ReferencePath = *output
	}

	c, err := pipeline.New(cfg, nil)
	if err != nil {
		return err
	}
	table, err := reference.Build(ctx, cfg.DatasetDir, c)
	if err != nil {
		return err
	}
	if err := reference.Save(ctx, cfg.ReferencePath, table); err != nil {
		return err
	}
	log.Printf("Wrote %d reference rows to %s", table.Len(), cfg.ReferencePath)
	return nil
}

func runInitConfig(args []string) error {
	fs := flag.NewFlagSet("init-config", flag.ExitOnError)
	force := fs.Bool("force", false, "overwrite an existing file")
	_ = fs.Parse(args)

	path := config.DefaultPath
	if fs.NArg() > 0 {
		path = fs.Arg(0)
	}
	if _, err := os.Stat(path); err == nil && !*force {
		return fmt.Errorf("%s already exists, use -force to overwrite", path)
	}
	if err := config.Save(path, config.Default()); err != nil {
		return err
	}
	log.Printf("Wrote default configuration to %s", path)
	return nil
}

func runServe(args []string) error {
	fs := flag.NewFlagSet("serve", flag.ExitOnError)
	var pf photoFlags
	pf.register(fs)
	_ = fs.Parse(args)

	cfg, err := pf.resolve(fs)
	if err != nil {
		return err
	}

	// The server still answers the analysis tools without a reference table.
	table, err := reference.Load(context.Background(), cfg.ReferencePath)
	if err != nil {
		if !errors.Is(err, os.ErrNotExist) {
			return err
		}
		log.Printf("Reference table %s not found, tangram_classify is disabled", cfg.ReferencePath)
		table = nil
	}

	c, err := pipeline.New(cfg, table)
	if err != nil {
		return err
	}

	srv := server.New(c)
	srv.SetDebug(cfg.Debug())
	if cfg.Debug() {
		log.Printf("Tangram MCP Server v%s, %d reference rows", Version, table.Len())
	}
	return srv.Run()
}

func printJSON(v interface{}) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
