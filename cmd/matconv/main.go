// matconv converts FLVER2 mesh materials to Elden Ring shaders using a material bank.
package main

import (
	"errors"
	"flag"
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/Faultbox/flver-matconv/internal/config"
	"github.com/Faultbox/flver-matconv/internal/convert"
	"github.com/Faultbox/flver-matconv/internal/logger"
	"github.com/Faultbox/flver-matconv/pkg/encoding"
	"github.com/Faultbox/flver-matconv/pkg/flver"
	"github.com/Faultbox/flver-matconv/pkg/matbank"
)

// usageError is a usage line printed as is instead of as an error.
type usageError string

func (e usageError) Error() string {
	return string(e)
}

var errUnknownCommand = errors.New("unknown command")

func main() {
	config.ParseFlags()
	args := config.Args()
	if len(args) < 1 {
		printUsage()
		os.Exit(1)
	}

	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
	if err := logger.Init(cfg.Logging.Level, cfg.Logging.LogFile); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	os.Exit(run(cfg, args[0], args[1:]))
}

// run dispatches a command and turns panics into a crash log. It returns the exit code.
func run(cfg *config.Config, command string, args []string) (code int) {
	defer logger.Sync()
	defer func() {
		if r := recover(); r != nil {
			if err := logger.WriteCrashLog(cfg.Logging.CrashLog, r); err != nil {
				fmt.Fprintf(os.Stderr, "Error writing crash log: %v\n", err)
			}
			fmt.Fprintf(os.Stderr, "Fatal: %v (details in %s)\n", r, cfg.Logging.CrashLog)
			code = 2
		}
	}()

	err := dispatch(cfg, command, args)
	if err == nil {
		return 0
	}

	var usage usageError
	switch {
	case errors.As(err, &usage):
		fmt.Fprintln(os.Stderr, string(usage))
	case errors.Is(err, errUnknownCommand):
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n", command)
		printUsage()
	default:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	return 1
}

// dispatch runs one command and returns its error.
func dispatch(cfg *config.Config, command string, args []string) error {
	switch command {
	case "info":
		return cmdInfo(args)
	case "bank", "ls":
		return cmdBank(cfg, args)
	case "convert":
		return cmdConvert(cfg, args)
	case "swap":
		return cmdSwap(cfg, args)
	case "verify":
		return cmdVerify(args)
	case "config":
		return cmdConfig(cfg, args)
	case "help", "-h", "--help":
		printUsage()
		return nil
	}
	return errUnknownCommand
}

func printUsage() {
	fmt.Println(`matconv - FLVER2 material conversion utility

Usage:
  matconv [flags] <command> [options]

Commands:
  info <file.flver.yaml>                  Show header, materials, layouts and meshes
  bank [-v] [pattern]                     List material bank definitions
  convert [-o out] <file.flver.yaml>      Convert every material using the configured mapping
  swap [-o out] <file> <material#> <mtd>  Swap one material to a bank definition
  verify <file.flver.yaml>                Check every mesh encodes against its layouts
  config [-o path]                        Save the effective config (default: user config dir)

Flags:
  -config <path>    Config file (default ./matconv.yaml, ./config.yaml or user config dir)
  -bank <path>      Material bank (.xml, .yaml, .toml)
  -map src=dst      Map a source MTD to a bank MTD (repeatable)
  -no-backup        Do not keep a .bak of overwritten files
  -no-verify        Skip the structural check before saving
  -log-file <path>  Also write JSON logs to this file
  -debug            Enable debug logging

Examples:
  matconv info c3000.flver.yaml
  matconv -bank BankER.xml bank "c[amsn]*"
  matconv -map "p_metal[dsb]=C[AMSN].mtd" convert c3000.flver.yaml
  matconv swap c3000.flver.yaml 2 C[AMSN]_Cloth.mtd`)
}

func cmdInfo(args []string) error {
	if len(args) < 1 {
		return usageError("Usage: matconv info <file.flver.yaml>")
	}

	f, err := flver.ReadFile(args[0])
	if err != nil {
		return err
	}

	last := flver.LastEnabledNode(f.Nodes)
	fmt.Printf("File:      %s\n", args[0])
	fmt.Printf("Version:   %#x\n", f.Header.Version)
	fmt.Printf("Unk68:     %d\n", f.Header.Unk68)
	fmt.Printf("Nodes:     %d (last enabled #%d, wide bone indices: %v)\n",
		len(f.Nodes), last, flver.DefaultEncodingTable().NeedsWideBoneIndices(f.Nodes))
	fmt.Printf("Skeletons: %v\n", f.Skeletons != nil)
	fmt.Println()

	fmt.Println("Materials:")
	for i, mat := range f.Materials {
		fmt.Printf("  #%-3d %-24s %-40s index %d, gx %d, %d textures, %d meshes\n",
			i, mat.Name, mat.MTD, mat.Index, mat.GXIndex, len(mat.Textures), len(f.MeshesForMaterial(i)))
	}
	fmt.Println()

	fmt.Println("Buffer layouts:")
	for i, layout := range f.Layouts.All() {
		members := make([]string, len(layout))
		for j, m := range layout {
			members[j] = m.String()
		}
		fmt.Printf("  #%-3d %3d bytes  %s\n", i, layout.Size(), strings.Join(members, " "))
	}
	fmt.Println()

	fmt.Println("Meshes:")
	for i, mesh := range f.Meshes {
		indices := make([]int, len(mesh.VertexBuffers))
		for j, vb := range mesh.VertexBuffers {
			indices[j] = vb.LayoutIndex
		}
		set, err := f.Layouts.Layouts(indices)
		if err != nil {
			fmt.Printf("  #%-3d material %d, %d vertices, buffers %v: %v\n", i, mesh.MaterialIndex, len(mesh.Vertices), indices, err)
			continue
		}
		required := flver.RequiredCounts(set)
		fmt.Printf("  #%-3d material %d, %d vertices, buffers %v (needs %d tangents, %d uvs, %d colors)\n",
			i, mesh.MaterialIndex, len(mesh.Vertices), indices, required.Tangents, required.UVs, required.Colors)
	}
	return nil
}

func loadBank(cfg *config.Config) (*matbank.Bank, error) {
	log := logger.Named("bank")
	bank, err := matbank.Load(cfg.Bank.Path)
	if err != nil {
		return nil, err
	}
	log.Debug("bank loaded", zap.String("path", cfg.Bank.Path), zap.Int("materials", bank.Len()))
	return bank, nil
}

func cmdBank(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("bank", flag.ExitOnError)
	verbose := fs.Bool("v", false, "Show declarations and texture channels")
	fs.Parse(args)

	bank, err := loadBank(cfg)
	if err != nil {
		return err
	}

	pattern := ""
	if fs.NArg() > 0 {
		pattern = strings.ToLower(fs.Arg(0))
	}

	shown := 0
	for _, def := range bank.Defs() {
		name := encoding.NormalizeMTDName(def.MTD)
		if pattern != "" {
			matched, err := path.Match(pattern, name)
			if err != nil {
				return fmt.Errorf("invalid pattern: %w", err)
			}
			if !matched && !strings.Contains(name, pattern) {
				continue
			}
		}
		shown++
		fmt.Printf("%-40s %-24s %d declarations\n", def.MTD, def.Shader, len(def.Declarations))
		if !*verbose {
			continue
		}
		for _, ch := range def.TextureChannels {
			fmt.Printf("    texture %-16s %s\n", ch.Key, ch.Name)
		}
		for i, set := range def.LayoutCandidates() {
			counts := flver.RequiredCounts(set)
			fmt.Printf("    declaration #%d: %d buffers, %d tangents, %d uvs, %d colors\n",
				i, len(set), counts.Tangents, counts.UVs, counts.Colors)
		}
	}

	fmt.Printf("\n%d of %d definitions\n", shown, bank.Len())
	return nil
}

func cmdConvert(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("convert", flag.ExitOnError)
	output := fs.String("o", "", "Write the result here instead of overwriting the input")
	fs.Parse(args)

	if fs.NArg() < 1 {
		return usageError("Usage: matconv convert [-o output] <file.flver.yaml>")
	}
	input := fs.Arg(0)

	f, err := flver.ReadFile(input)
	if err != nil {
		return err
	}
	bank, err := loadBank(cfg)
	if err != nil {
		return err
	}

	conv := convert.New(bank, logger.Named("convert"))
	reports, err := conv.ConvertFlver(f, cfg.Convert.Mapping)
	if errors.Is(err, convert.ErrUnmappedMaterial) {
		fmt.Fprintln(os.Stderr, "Source materials (map each with -map src=dst or convert.mapping):")
		for _, name := range convert.SourceMaterials(f) {
			fmt.Fprintf(os.Stderr, "  %s\n", name)
		}
	}
	if err != nil {
		return fmt.Errorf("conversion failed, nothing saved: %w", err)
	}

	printReports(reports)
	return save(cfg, conv, f, input, *output)
}

func cmdSwap(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("swap", flag.ExitOnError)
	output := fs.String("o", "", "Write the result here instead of overwriting the input")
	fs.Parse(args)

	if fs.NArg() < 3 {
		return usageError("Usage: matconv swap [-o output] <file.flver.yaml> <material#> <mtd>")
	}
	input := fs.Arg(0)
	matIndex, err := strconv.Atoi(fs.Arg(1))
	if err != nil {
		return fmt.Errorf("invalid material index %q", fs.Arg(1))
	}

	f, err := flver.ReadFile(input)
	if err != nil {
		return err
	}
	bank, err := loadBank(cfg)
	if err != nil {
		return err
	}

	conv := convert.New(bank, logger.Named("convert"))
	report, err := conv.SwapMaterial(f, matIndex, fs.Arg(2))
	if err != nil {
		return fmt.Errorf("swap failed, nothing saved: %w", err)
	}

	printReports([]*convert.Report{report})
	return save(cfg, conv, f, input, *output)
}

func cmdVerify(args []string) error {
	if len(args) < 1 {
		return usageError("Usage: matconv verify <file.flver.yaml>")
	}

	f, err := flver.ReadFile(args[0])
	if err != nil {
		return err
	}
	if err := f.Verify(); err != nil {
		return err
	}
	fmt.Printf("%s: %d meshes encode against %d layouts\n", args[0], len(f.Meshes), f.Layouts.Len())
	return nil
}

func cmdConfig(cfg *config.Config, args []string) error {
	fs := flag.NewFlagSet("config", flag.ExitOnError)
	output := fs.String("o", "", "Write the config here instead of the user config directory")
	fs.Parse(args)

	target := *output
	var err error
	if target == "" {
		target = filepath.Join(config.ConfigDir(), "config.yaml")
		err = cfg.Save()
	} else {
		err = cfg.SaveTo(target)
	}
	if err != nil {
		return err
	}
	logger.Info("config saved", zap.String("path", target))
	fmt.Printf("Saved config to %s\n", target)
	return nil
}

func printReports(reports []*convert.Report) {
	for _, r := range reports {
		note := ""
		if r.Fallback {
			note += " (fallback declaration)"
		}
		if r.Promoted {
			note += " (wide bone indices)"
		}
		fmt.Printf("  #%-3d %-24s -> %-32s layouts %v, %d meshes, %d vertices, %d values padded%s\n",
			r.Material, r.Name, r.MTD, r.LayoutIndices, r.Meshes, r.Vertices, r.Padded.Total(), note)
	}
}

// save verifies the container when configured and writes it to output, or over input when
// output is empty.
func save(cfg *config.Config, conv *convert.Converter, f *flver.FLVER, input, output string) error {
	if cfg.Convert.Verify {
		if err := conv.Verify(f); err != nil {
			return fmt.Errorf("verification failed, nothing saved: %w", err)
		}
	} else {
		logger.Warn("saving without the structural check")
	}

	target := input
	if output != "" {
		target = output
	}
	if err := f.WriteFile(target, cfg.Convert.Backup); err != nil {
		return err
	}

	logger.Debug("container written", zap.String("path", target), zap.Bool("backup", cfg.Convert.Backup))
	fmt.Printf("Saved %s\n", target)
	if cfg.Convert.Backup {
		if _, err := os.Stat(flver.BackupPath(target)); err == nil {
			fmt.Printf("Backup %s\n", flver.BackupPath(target))
		}
	}
	return nil
}
