package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/io"
	"github.com/matzehuels/ladderkit/pkg/pipeline"
)

// layoutCommand creates the command that recomputes node positions.
func (c *CLI) layoutCommand() *cobra.Command {
	var output string

	cmd := &cobra.Command{
		Use:   "layout [diagram.json]",
		Short: "Recompute the layout of every rung of a diagram",
		Long: `Recompute the layout of every rung of a diagram.

Positions, sizes and connector positions are derived from the rung topology
and the [layout] section of the config file. The file is rewritten in place
unless --output is given.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runLayout(cmd.Context(), args[0], output)
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default: rewrite the input)")

	return cmd
}

func (c *CLI) runLayout(ctx context.Context, input, output string) error {
	prog := newProgress(c.Logger)
	d, err := pipeline.Load(input)
	if err != nil {
		return err
	}
	laid, err := pipeline.LayoutDiagram(ctx, d, c.Config.Layout)
	if err != nil {
		return err
	}
	if output == "" {
		output = input
	}
	if err := io.ExportDiagram(laid, output); err != nil {
		return fmt.Errorf("write output %s: %w", output, err)
	}
	prog.done(fmt.Sprintf("Laid out %d rungs", len(laid.Rungs)))

	nodes, edges := 0, 0
	for _, r := range laid.Rungs {
		nodes += len(r.Nodes)
		edges += len(r.Edges)
	}
	printSuccess("Layout complete")
	printFile(output)
	printStats(nodes, edges, false)
	return nil
}

// validateCommand creates the command that checks a diagram file.
func (c *CLI) validateCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "validate [diagram.json]",
		Short: "Check the structure of every rung of a diagram",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runValidate(args[0])
		},
	}
}

func (c *CLI) runValidate(path string) error {
	d, err := io.InspectDiagram(path)
	if err != nil {
		return err
	}
	rows := make([]rungSummary, len(d.Rungs))
	var invalid []string
	for i, r := range d.Rungs {
		rows[i] = summarize(r)
		if err := rows[i].Err; err != nil {
			invalid = append(invalid, r.ID)
			if bg, ok := perrors.IsBrokenGraph(err); ok {
				c.Logger.Error("broken rung", "rung", r.ID, "node", bg.NodeID, "reason", bg.Reason)
			} else {
				c.Logger.Error("invalid rung", "rung", r.ID, "error", err)
			}
		}
	}

	printKeyValue("Diagram", d.Name)
	printKeyValue("Rungs", fmt.Sprint(len(d.Rungs)))
	fmt.Fprintln(stdout, rungTable(rows))
	if len(invalid) > 0 {
		return perrors.New(perrors.ErrCodeInvalidInput, "%d of %d rungs are invalid: %s",
			len(invalid), len(d.Rungs), strings.Join(invalid, ", "))
	}
	printSuccess("All rungs are valid")
	return nil
}

// exportFlags are shared by export and render.
type exportFlags struct {
	rungFlags
	output   string
	formats  string
	detailed bool
	noCache  bool
	refresh  bool
}

func (f *exportFlags) register(cmd *cobra.Command) {
	f.rungFlags.register(cmd)
	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (single format) or base path (multiple)")
	cmd.Flags().BoolVar(&f.detailed, "detailed", false, "label Graphviz output with node ids and connectors")
	cmd.Flags().BoolVar(&f.noCache, "no-cache", false, "disable caching")
	cmd.Flags().BoolVar(&f.refresh, "refresh", false, "ignore cached artifacts")
}

// exportCommand creates the command that writes PLCopen XML and JSON.
func (c *CLI) exportCommand() *cobra.Command {
	var (
		f       exportFlags
		compact bool
	)

	cmd := &cobra.Command{
		Use:   "export [diagram.json]",
		Short: "Export a diagram as PLCopen XML or JSON",
		Long: `Export a diagram as PLCopen XML or JSON.

Without --rung the whole diagram is exported as one POU body. With --rung
only that rung is exported, and the Graphviz formats (dot, svg, png) are
available as well.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			opts := c.exportOptions(parseFormats(f.formats, pipeline.FormatXML))
			opts.Detailed = opts.Detailed || f.detailed
			opts.Compact = opts.Compact || compact
			opts.Refresh = f.refresh
			return c.runExport(cmd.Context(), args[0], f, opts, false)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): xml (default), json, dot, svg, png (comma-separated)")
	cmd.Flags().BoolVar(&compact, "compact", false, "write XML on a single line")

	return cmd
}

// graphvizFormats are the formats render produces.
var graphvizFormats = []string{pipeline.FormatDOT, pipeline.FormatSVG, pipeline.FormatPNG}

// renderCommand creates the command that draws a rung with Graphviz.
func (c *CLI) renderCommand() *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "render [diagram.json]",
		Short: "Draw the graph of a rung with Graphviz",
		Long: `Draw the graph of a rung with Graphviz.

The drawing shows every node and wire of the rung, including the synthetic
variables of blocks, for inspecting the structure of a rung. SVG and PNG
output is cached by the DOT source.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			formats := parseFormats(f.formats, pipeline.FormatSVG)
			for _, format := range formats {
				if !slices.Contains(graphvizFormats, format) {
					return perrors.New(perrors.ErrCodeInvalidInput, "invalid format: %s (must be 'dot', 'svg' or 'png')", format)
				}
			}
			opts := c.exportOptions(formats)
			opts.Detailed = opts.Detailed || f.detailed
			opts.Refresh = f.refresh
			return c.runExport(cmd.Context(), args[0], f, opts, true)
		},
	}
	f.register(cmd)
	cmd.Flags().StringVarP(&f.formats, "format", "f", "", "output format(s): svg (default), png, dot (comma-separated)")

	return cmd
}

func (c *CLI) runExport(ctx context.Context, input string, f exportFlags, opts pipeline.Options, spin bool) error {
	if err := pipeline.ValidateFormats(opts.Formats); err != nil {
		return err
	}
	d, err := pipeline.Load(input)
	if err != nil {
		return err
	}

	runner, err := c.newRunner(f.noCache)
	if err != nil {
		return fmt.Errorf("initialize runner: %w", err)
	}
	defer runner.Close()

	var spinner *Spinner
	if spin {
		spinner = newSpinner(ctx, "Rendering...")
		spinner.Start()
	}

	var result *pipeline.Result
	if f.rung == "" && !needsRung(opts.Formats) {
		result, err = runner.ExportDiagram(ctx, d, opts)
	} else {
		r, pickErr := pipeline.PickRung(d, f.rung)
		if pickErr != nil {
			err = pickErr
		} else {
			result, err = runner.Export(ctx, r, opts)
		}
	}
	if spinner != nil {
		if err != nil {
			spinner.StopWithError("Render failed")
		} else {
			spinner.Stop()
		}
	}
	if err != nil {
		return err
	}
	if ctx.Err() != nil {
		return ctx.Err()
	}

	base := basePath(f.output, input)
	var written []string
	for _, format := range opts.Formats {
		path := outputPath(f.output, base, input, format, len(opts.Formats))
		if err := os.WriteFile(path, result.Artifacts[format], 0o644); err != nil {
			return fmt.Errorf("write output %s: %w", path, err)
		}
		written = append(written, path)
	}

	printSuccess("Exported %s", strings.Join(opts.Formats, ", "))
	for _, path := range written {
		printFile(path)
	}
	printStats(result.Stats.NodeCount, result.Stats.EdgeCount, len(result.CacheHits) > 0)
	return nil
}

// needsRung reports whether formats include one that only exists per rung.
func needsRung(formats []string) bool {
	for _, f := range formats {
		if !slices.Contains(pipeline.DiagramFormats, f) {
			return true
		}
	}
	return false
}

// basePath derives the base output path from the output and input file paths.
// If output is empty, it strips the extension from input.
// If output has a format extension (.xml, .svg, etc.), it strips that extension.
func basePath(output, input string) string {
	if output == "" {
		return strings.TrimSuffix(input, filepath.Ext(input))
	}
	ext := filepath.Ext(output)
	if slices.Contains(pipeline.Formats, strings.TrimPrefix(ext, ".")) {
		return strings.TrimSuffix(output, ext)
	}
	return output
}

// outputPath names the file of one format. A single format goes to output
// verbatim when it is set. The input file is never overwritten.
func outputPath(output, base, input, format string, count int) string {
	if output != "" && count == 1 {
		return output
	}
	path := base + "." + format
	if path == input {
		path = base + ".export." + format
	}
	return path
}
