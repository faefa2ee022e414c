package cli

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"slices"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	perrors "github.com/matzehuels/ladderkit/pkg/errors"
	"github.com/matzehuels/ladderkit/pkg/io"
	"github.com/matzehuels/ladderkit/pkg/ladder"
	"github.com/matzehuels/ladderkit/pkg/ladder/layout"
	"github.com/matzehuels/ladderkit/pkg/pipeline"
	"github.com/matzehuels/ladderkit/pkg/session"
)

// newCommand creates the command that starts a diagram file.
func (c *CLI) newCommand() *cobra.Command {
	var (
		name       string
		rungs      int
		appendRung bool
		force      bool
	)

	cmd := &cobra.Command{
		Use:   "new [diagram.json]",
		Short: "Create a diagram file with empty rungs",
		Long: `Create a diagram file with empty rungs.

Each rung starts as a left power rail wired straight to the right power rail.
With --append the rungs are added to an existing diagram instead.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runNew(args[0], name, rungs, appendRung, force)
		},
	}

	cmd.Flags().StringVar(&name, "name", "main", "POU name of the diagram")
	cmd.Flags().IntVar(&rungs, "rungs", 1, "number of empty rungs")
	cmd.Flags().BoolVar(&appendRung, "append", false, "append the rungs to an existing diagram")
	cmd.Flags().BoolVarP(&force, "force", "f", false, "overwrite an existing file")

	return cmd
}

func (c *CLI) runNew(path, name string, rungs int, appendRung, force bool) error {
	if rungs < 1 {
		return perrors.New(perrors.ErrCodeInvalidInput, "--rungs must be at least 1")
	}
	if err := perrors.ValidateIdentifier(name); err != nil {
		return err
	}

	var d *ladder.Diagram
	switch _, err := os.Stat(path); {
	case appendRung:
		if d, err = pipeline.Load(path); err != nil {
			return err
		}
	case err == nil && !force:
		return perrors.New(perrors.ErrCodeConflict, "%s already exists (use --force to overwrite)", path)
	case err != nil && !errors.Is(err, fs.ErrNotExist):
		return err
	default:
		d = ladder.NewDiagram(name)
	}

	for range rungs {
		r := d.AddRung("", c.Config.Layout.Bounds)
		laid, err := layout.Compute(r, c.Config.Layout)
		if err != nil {
			return err
		}
		if err := d.ReplaceRung(laid); err != nil {
			return err
		}
		c.Logger.Debug("rung created", "id", laid.ID)
	}
	if err := io.ExportDiagram(d, path); err != nil {
		return err
	}

	printSuccess("Diagram %s has %d rungs", StyleHighlight.Render(d.Name), len(d.Rungs))
	printFile(path)
	printNewline()
	printNextStep("Insert an element", "ladderkit add "+path+" --kind contact --var Start --pick")
	return nil
}

// rungFlags are the flags that pick a rung of a diagram file.
type rungFlags struct {
	rung string
}

func (f *rungFlags) register(cmd *cobra.Command) {
	cmd.Flags().StringVar(&f.rung, "rung", "", "rung id (required when the diagram has several rungs)")
}

// openSession loads a rung of a diagram file into an editing session.
func (c *CLI) openSession(path, rungID string) (*session.Session, *ladder.Diagram, error) {
	r, d, err := pipeline.LoadRung(path, rungID)
	if err != nil {
		return nil, nil, err
	}
	sess, err := session.New(r, 0, c.editOptions())
	if err != nil {
		return nil, nil, fmt.Errorf("open rung %s: %w", r.ID, err)
	}
	return sess, d, nil
}

// save writes the session's committed rung back into its diagram file.
func (c *CLI) save(path string, d *ladder.Diagram, sess *session.Session) error {
	if err := d.ReplaceRung(sess.Snapshot()); err != nil {
		return err
	}
	return io.ExportDiagram(d, path)
}

// parsePoint parses "x,y".
func parsePoint(s string) (ladder.Point, error) {
	xs, ys, ok := strings.Cut(s, ",")
	if !ok {
		return ladder.Point{}, perrors.New(perrors.ErrCodeInvalidInput, "point %q: want x,y", s)
	}
	x, errX := strconv.ParseFloat(strings.TrimSpace(xs), 64)
	y, errY := strconv.ParseFloat(strings.TrimSpace(ys), 64)
	if err := errors.Join(errX, errY); err != nil {
		return ladder.Point{}, perrors.Wrap(perrors.ErrCodeInvalidInput, err, "point %q", s)
	}
	return ladder.Point{X: x, Y: y}, nil
}

// target is where an insertion or a drop goes: a placeholder id, the
// placeholder nearest to a point, or one chosen interactively.
type target struct {
	id   string
	near string
	pick bool
}

func (t *target) register(cmd *cobra.Command, idFlag string) {
	cmd.Flags().StringVar(&t.id, idFlag, "", "placeholder id (see 'ladderkit placeholders')")
	cmd.Flags().StringVar(&t.near, "near", "", "use the placeholder nearest to x,y")
	cmd.MarkFlagsMutuallyExclusive(idFlag, "near")
}

// selectIn selects the target among the placeholders sess currently shows.
func (t target) selectIn(sess *session.Session) error {
	id := t.id
	switch {
	case t.pick:
		picked, err := pickPlaceholder(sess.Rung())
		if err != nil {
			return err
		}
		if picked == "" {
			return context.Canceled
		}
		id = picked
	case t.near != "":
		p, err := parsePoint(t.near)
		if err != nil {
			return err
		}
		if _, ok := sess.SelectNearest(p); !ok {
			return perrors.New(perrors.ErrCodeNotFound, "no placeholder to select")
		}
		return nil
	case id == "":
		return perrors.New(perrors.ErrCodeInvalidInput, "no placeholder chosen: name one, or use --near or --pick")
	}
	if !sess.Select(id) {
		return perrors.New(perrors.ErrCodeNodeNotFound, "placeholder %s not found", id)
	}
	return nil
}

// addCommand creates the command that inserts an element.
func (c *CLI) addCommand() *cobra.Command {
	var (
		rf   rungFlags
		at   target
		el   session.Element
		kind string
	)

	cmd := &cobra.Command{
		Use:   "add [diagram.json]",
		Short: "Insert a contact, coil or block into a rung",
		Long: `Insert a contact, coil or block into a rung.

The element goes to a placeholder: a slot beside an element (spliced into the
wire) or below it (a new parallel branch). List the placeholders with
'ladderkit placeholders', or choose one interactively with --pick.

Blocks are named by their type with --variant (TON, ADD, ...). The other
ports of a block are bound with --bind PORT=VARIABLE.`,
		Example: `  ladderkit add plant.json --kind contact --var Start --at ph_right-rail_left
  ladderkit add plant.json --kind coil --variant set --var Motor --pick
  ladderkit add plant.json --kind block --variant TON --var T1 --bind PT=T#2s --near 200,40`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			el.Kind = ladder.Kind(kind)
			return c.runAdd(cmd.Context(), args[0], rf.rung, at, el)
		},
	}

	rf.register(cmd)
	at.register(cmd, "at")
	cmd.Flags().BoolVar(&at.pick, "pick", false, "choose the placeholder interactively")
	cmd.Flags().StringVarP(&kind, "kind", "k", "", "element kind: contact, coil, block")
	cmd.Flags().StringVar(&el.Variant, "variant", "", "contact/coil modifier or block type")
	cmd.Flags().StringVar(&el.Variable, "var", "", "variable, or instance name of a function block")
	cmd.Flags().StringToStringVar(&el.Bindings, "bind", nil, "block port bindings (PORT=VARIABLE)")
	cmd.MarkFlagsMutuallyExclusive("at", "pick")
	cmd.MarkFlagsMutuallyExclusive("near", "pick")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func (c *CLI) runAdd(ctx context.Context, path, rungID string, at target, el session.Element) error {
	// A bad element fails before any picker opens.
	if _, err := el.Node(); err != nil {
		return err
	}
	sess, d, err := c.openSession(path, rungID)
	if err != nil {
		return err
	}
	before := sess.Snapshot()
	if _, err := sess.ShowPlaceholders(); err != nil {
		return err
	}
	if err := at.selectIn(sess); err != nil {
		return err
	}
	out, err := sess.Add(ctx, el)
	if err != nil {
		return err
	}
	added := newElements(before, out)
	if len(added) == 0 {
		printWarning("Nothing inserted")
		return nil
	}
	if err := c.save(path, d, sess); err != nil {
		return err
	}

	printSuccess("Inserted %s %s", el.Kind, StyleHighlight.Render(added[0]))
	printFile(path)
	printStats(len(out.Nodes), len(out.Edges), false)
	return nil
}

// newElements returns the ids of the elements of after that are not in
// before.
func newElements(before, after *ladder.Rung) []string {
	var ids []string
	for _, n := range after.Elements() {
		if _, ok := before.Node(n.ID); !ok {
			ids = append(ids, n.ID)
		}
	}
	return ids
}

// removeCommand creates the command that deletes elements.
func (c *CLI) removeCommand() *cobra.Command {
	var rf rungFlags

	cmd := &cobra.Command{
		Use:   "remove [diagram.json] [element-id...]",
		Short: "Remove elements from a rung",
		Long: `Remove elements from a rung.

The neighbours of each removed element are joined, and a branch left with an
empty lane collapses into the surrounding wire.`,
		Args: cobra.MinimumNArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runRemove(cmd.Context(), args[0], rf.rung, args[1:])
		},
	}
	rf.register(cmd)

	return cmd
}

func (c *CLI) runRemove(ctx context.Context, path, rungID string, ids []string) error {
	sess, d, err := c.openSession(path, rungID)
	if err != nil {
		return err
	}
	before := sess.Snapshot()
	var missing []string
	for _, id := range ids {
		if n, ok := before.Node(id); !ok || !n.Kind.IsElement() {
			missing = append(missing, id)
		}
	}
	if len(missing) > 0 {
		return perrors.New(perrors.ErrCodeNodeNotFound, "no element %s", strings.Join(missing, ", "))
	}
	out, err := sess.Remove(ctx, ids...)
	if err != nil {
		return err
	}
	if err := c.save(path, d, sess); err != nil {
		return err
	}

	printSuccess("Removed %d elements", len(before.Elements())-len(out.Elements()))
	printFile(path)
	printStats(len(out.Nodes), len(out.Edges), false)
	return nil
}

// moveCommand creates the command that drags an element to a placeholder.
func (c *CLI) moveCommand() *cobra.Command {
	var (
		rf rungFlags
		to target
	)

	cmd := &cobra.Command{
		Use:   "move [diagram.json] [element-id]",
		Short: "Move an element to another placeholder",
		Long: `Move an element to another placeholder.

The element is lifted out of the rung, the placeholders are offered around
what remains, and the element is dropped at the chosen one. It keeps its id,
its variables and its export id. Dropping next to its own position leaves the
rung as it was.`,
		Args: cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runMove(cmd.Context(), args[0], rf.rung, args[1], to)
		},
	}
	rf.register(cmd)
	to.register(cmd, "to")
	cmd.Flags().BoolVar(&to.pick, "pick", false, "choose the placeholder interactively")
	cmd.MarkFlagsMutuallyExclusive("to", "pick")
	cmd.MarkFlagsMutuallyExclusive("near", "pick")

	return cmd
}

func (c *CLI) runMove(ctx context.Context, path, rungID, id string, to target) error {
	sess, d, err := c.openSession(path, rungID)
	if err != nil {
		return err
	}
	if _, err := sess.DragStart(ctx, id); err != nil {
		return err
	}
	if !sess.Dragging() {
		return perrors.New(perrors.ErrCodeInvalidElement, "%s is not a contact, coil or block", id)
	}
	if err := to.selectIn(sess); err != nil {
		if _, cancelErr := sess.Cancel(ctx); cancelErr != nil {
			return errors.Join(err, cancelErr)
		}
		return err
	}
	before := sess.Snapshot()
	out, err := sess.Drop(ctx)
	if err != nil {
		return err
	}
	if slices.Equal(edgeKeys(before), edgeKeys(out)) {
		printInfo("%s stays where it was", id)
		return nil
	}
	if err := c.save(path, d, sess); err != nil {
		return err
	}

	printSuccess("Moved %s", StyleHighlight.Render(id))
	printFile(path)
	printStats(len(out.Nodes), len(out.Edges), false)
	return nil
}

// edgeKeys lists the wires of r as sorted "source->target" keys.
func edgeKeys(r *ladder.Rung) []string {
	keys := make([]string, len(r.Edges))
	for i, e := range r.Edges {
		keys[i] = e.Source + "->" + e.Target
	}
	slices.Sort(keys)
	return keys
}

// placeholdersCommand creates the command that lists insertion points.
func (c *CLI) placeholdersCommand() *cobra.Command {
	var (
		rf   rungFlags
		near string
	)

	cmd := &cobra.Command{
		Use:   "placeholders [diagram.json]",
		Short: "List the insertion points of a rung",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.runPlaceholders(args[0], rf.rung, near)
		},
	}
	rf.register(cmd)
	cmd.Flags().StringVar(&near, "near", "", "mark the placeholder nearest to x,y")

	return cmd
}

func (c *CLI) runPlaceholders(path, rungID, near string) error {
	sess, _, err := c.openSession(path, rungID)
	if err != nil {
		return err
	}
	view, err := sess.ShowPlaceholders()
	if err != nil {
		return err
	}
	if near != "" {
		p, err := parsePoint(near)
		if err != nil {
			return err
		}
		sess.SelectNearest(p)
		view = sess.Rung()
	}

	printInfo("Rung %s: %d placeholders", StyleHighlight.Render(view.ID), len(view.Placeholders()))
	fmt.Fprintln(stdout, placeholderTable(placeholderRows(view), -1))
	return nil
}
