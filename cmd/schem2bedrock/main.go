package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"

	"github.com/urfave/cli/v2"

	"github.com/blockforge/schem2bedrock/internal/convert"
	"github.com/blockforge/schem2bedrock/internal/translate"
)

func main() {
	app := &cli.App{
		Name:      "schem2bedrock",
		Usage:     "convert Java-edition .schematic files into Bedrock setblock/fill command streams",
		ArgsUsage: "FILE [FILE ...]",
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:     "table",
				Usage:    "path to the java-to-bedrock translation table JSON",
				Required: true,
			},
			&cli.StringFlag{
				Name:  "legacy-map",
				Usage: "path to the legacy id:data -> Java descriptor table JSON",
			},
			&cli.StringFlag{
				Name:  "out-dir",
				Usage: "directory to write <name>.mcfunction files into (defaults to each input's directory)",
			},
		},
		Action: run,
	}

	if err := app.Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func run(c *cli.Context) error {
	inputs := c.Args().Slice()
	if len(inputs) == 0 {
		return fmt.Errorf("no input files given")
	}

	table, err := loadTable(c.String("table"))
	if err != nil {
		return err
	}

	legacy := translate.LegacyTable{}
	if path := c.String("legacy-map"); path != "" {
		legacy, err = loadLegacyTable(path)
		if err != nil {
			return err
		}
	}

	outDir := c.String("out-dir")

	var wg sync.WaitGroup
	wg.Add(len(inputs))
	errs := make(chan error, len(inputs))
	for _, in := range inputs {
		go func(path string) {
			defer wg.Done()
			if err := convertOne(path, outDir, table, legacy); err != nil {
				errs <- fmt.Errorf("%s: %w", path, err)
				return
			}
			fmt.Println("converted", path)
		}(in)
	}
	wg.Wait()
	close(errs)

	var failures []string
	for err := range errs {
		failures = append(failures, err.Error())
	}
	if len(failures) > 0 {
		return fmt.Errorf("%d of %d files failed:\n%s", len(failures), len(inputs), strings.Join(failures, "\n"))
	}
	return nil
}

func convertOne(path, outDir string, table translate.Table, legacy translate.LegacyTable) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading input: %w", err)
	}

	outPath := outputPath(path, outDir)
	if err := os.MkdirAll(filepath.Dir(outPath), 0o755); err != nil {
		return fmt.Errorf("creating output directory: %w", err)
	}
	out, err := os.Create(outPath)
	if err != nil {
		return fmt.Errorf("creating output file: %w", err)
	}
	defer out.Close()

	if err := convert.Convert(data, table, legacy, out); err != nil {
		return err
	}
	return nil
}

func outputPath(inputPath, outDir string) string {
	base := strings.TrimSuffix(filepath.Base(inputPath), filepath.Ext(inputPath)) + ".mcfunction"
	if outDir == "" {
		return filepath.Join(filepath.Dir(inputPath), base)
	}
	return filepath.Join(outDir, base)
}

func loadTable(path string) (translate.Table, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading translation table: %w", err)
	}
	table, err := translate.LoadTable(data)
	if err != nil {
		return nil, err
	}
	return table, nil
}

func loadLegacyTable(path string) (translate.LegacyTable, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading legacy map: %w", err)
	}
	legacy, err := translate.LoadLegacyTable(data)
	if err != nil {
		return nil, err
	}
	return legacy, nil
}
