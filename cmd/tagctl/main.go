package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"text/tabwriter"
	"time"

	"video-tagger/internal/filesystem"
	"video-tagger/internal/library"
	"video-tagger/internal/logging"
	"video-tagger/internal/mediatypes"
	"video-tagger/internal/startup"
	"video-tagger/internal/tagging"

	"golang.org/x/term"
)

// Default timeout for store operations
const defaultTimeout = 5 * time.Minute

var errUsage = errors.New("usage")

func main() {
	if len(os.Args) < 2 {
		printUsage(os.Stderr)
		os.Exit(2)
	}

	ctx, cancel := context.WithTimeout(context.Background(), defaultTimeout)
	defer cancel()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	go func() {
		<-sigChan
		fmt.Fprintln(os.Stderr, "\nInterrupted, shutting down...")
		cancel()
	}()

	if os.Getenv("LOG_LEVEL") == "" {
		logging.SetLevel(logging.LevelWarn)
	}

	config, err := startup.ResolveConfig()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}

	store, err := startup.OpenStore(ctx, config)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		fmt.Fprintf(os.Stderr, "Make sure DATABASE_DIR is set correctly (current: %s)\n", config.DatabaseDir)
		os.Exit(1)
	}

	fs := filesystem.NewOS(config.RetryConfig())
	lib := library.New(store, fs, library.Options{Workers: config.AggregateWorkers})

	tty := term.IsTerminal(int(os.Stdout.Fd()))
	err = run(ctx, lib, os.Args[1:], os.Stdout, tty)

	if cerr := store.Close(); cerr != nil {
		fmt.Fprintf(os.Stderr, "Warning: failed to close store: %v\n", cerr)
	}

	switch {
	case errors.Is(err, errUsage):
		printUsage(os.Stderr)
		os.Exit(2)
	case err != nil:
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func printUsage(w io.Writer) {
	fmt.Fprintln(w, "Video Tagger catalog tool")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Usage: tagctl <command> [arguments]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  ls [-sort name|size|date] [-desc] <dir>   List video folders and files")
	fmt.Fprintln(w, "  tag [-replace] <file> <tag,tag,...>       Add (or replace) tags")
	fmt.Fprintln(w, "  untag <file>                              Remove all tags from a file")
	fmt.Fprintln(w, "  show [-v] <file>                          Show the tags (or the catalog record) of a file")
	fmt.Fprintln(w, "  du <dir>                                  Video count, size and latest time of a tree")
	fmt.Fprintln(w, "  find <tag> [tag...]                       Videos carrying every tag")
	fmt.Fprintln(w, "  top [n]                                   Most used tags")
	fmt.Fprintln(w, "  suggest <query> [n]                       Tag suggestions")
	fmt.Fprintln(w, "  prune                                     Remove records of deleted files")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Environment:")
	fmt.Fprintln(w, "  DATABASE_DIR, STORE_BACKEND, CONFIG_FILE (see video-tagger)")
}

// run executes one command. tty selects aligned tables over tab separated output.
func run(ctx context.Context, lib *library.Library, args []string, out io.Writer, tty bool) error {
	if len(args) == 0 {
		return errUsage
	}
	p := newPrinter(out, tty)
	defer p.flush()

	cmd, rest := args[0], args[1:]
	switch cmd {
	case "ls":
		return cmdList(ctx, lib, rest, p)
	case "tag":
		return cmdTag(ctx, lib, rest, p)
	case "untag":
		if len(rest) != 1 {
			return errUsage
		}
		return lib.RemoveAllTags(ctx, rest[0])
	case "show":
		return cmdShow(ctx, lib, rest, p)
	case "du":
		if len(rest) != 1 {
			return errUsage
		}
		res := lib.Aggregate(ctx, rest[0])
		p.header("PATH", "VIDEOS", "SIZE", "MODIFIED")
		p.row(rest[0], strconv.Itoa(res.Videos), mediatypes.FormatSize(res.Size), mediatypes.FormatTime(res.ModTime))
		return nil
	case "find":
		return cmdFind(ctx, lib, rest, p)
	case "top":
		return cmdTop(ctx, lib, rest, p)
	case "suggest":
		return cmdSuggest(ctx, lib, rest, p)
	case "prune":
		report, err := lib.PruneStale(ctx)
		if err != nil {
			return err
		}
		for _, path := range report.Removed {
			p.row("removed", path)
		}
		p.row("checked", strconv.Itoa(report.Checked))
		return nil
	default:
		fmt.Fprintf(out, "Unknown command: %s\n", sanitizeCommand(cmd))
		return errUsage
	}
}

func cmdList(ctx context.Context, lib *library.Library, args []string, p *printer) error {
	flags := flag.NewFlagSet("ls", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	sortBy := flags.String("sort", "name", "name, size or date")
	desc := flags.Bool("desc", false, "descending order")
	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		return errUsage
	}

	order := string(mediatypes.SortAsc)
	if *desc {
		order = string(mediatypes.SortDesc)
	}
	field, dir, err := library.ParseSort(*sortBy, order)
	if err != nil {
		return err
	}

	entries, err := lib.ListDirectory(ctx, flags.Arg(0))
	if err != nil {
		return err
	}
	library.SortEntries(entries, field, dir)

	p.header("TYPE", "NAME", "SIZE", "MODIFIED", "TAGS")
	for _, e := range entries {
		p.row(string(e.Type), e.Name, mediatypes.FormatSize(e.Size), mediatypes.FormatTime(e.ModTime), strings.Join(e.Tags, ", "))
	}
	return nil
}

func cmdTag(ctx context.Context, lib *library.Library, args []string, p *printer) error {
	flags := flag.NewFlagSet("tag", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	replace := flags.Bool("replace", false, "replace existing tags")
	if err := flags.Parse(args); err != nil || flags.NArg() != 2 {
		return errUsage
	}

	mode := tagging.Append
	if *replace {
		mode = tagging.Replace
	}

	tags, err := lib.AddOrUpdateTags(ctx, flags.Arg(0), tagging.ParseTagList(flags.Arg(1)), mode)
	if err != nil {
		return err
	}
	p.row(flags.Arg(0), strings.Join(tags, ", "))
	return nil
}

func cmdShow(ctx context.Context, lib *library.Library, args []string, p *printer) error {
	flags := flag.NewFlagSet("show", flag.ContinueOnError)
	flags.SetOutput(io.Discard)
	verbose := flags.Bool("v", false, "show the catalog record")
	if err := flags.Parse(args); err != nil || flags.NArg() != 1 {
		return errUsage
	}
	path := flags.Arg(0)

	if !*verbose {
		tags, err := lib.GetTagsForFile(ctx, path)
		if err != nil {
			return err
		}
		p.row(path, strings.Join(tags, ", "))
		return nil
	}

	rec, err := lib.GetFile(ctx, path)
	if err != nil {
		return err
	}
	p.header("PATH", "SIZE", "MODIFIED", "TAGS")
	p.row(rec.Path, mediatypes.FormatSize(rec.Size), mediatypes.FormatTime(rec.LastModifiedTime), strings.Join(rec.Tags, ", "))
	return nil
}

func cmdFind(ctx context.Context, lib *library.Library, args []string, p *printer) error {
	tags := tagging.NormalizeTags(args)
	if len(tags) == 0 {
		return errUsage
	}

	var (
		records []mediatypes.FileRecord
		err     error
	)
	if len(tags) == 1 {
		records, err = lib.FindByTag(ctx, tags[0])
	} else {
		records, err = lib.FindByAllTags(ctx, tags)
	}
	if err != nil {
		return err
	}

	p.header("PATH", "SIZE", "TAGS")
	for _, rec := range records {
		p.row(rec.Path, mediatypes.FormatSize(rec.Size), strings.Join(rec.Tags, ", "))
	}
	return nil
}

func cmdTop(ctx context.Context, lib *library.Library, args []string, p *printer) error {
	if len(args) > 1 {
		return errUsage
	}
	limit, err := optionalLimit(args, 0)
	if err != nil {
		return err
	}

	tags, err := lib.TopTags(ctx, limit)
	if err != nil {
		return err
	}
	p.header("TAG", "COUNT")
	for _, t := range tags {
		p.row(t.Name, strconv.Itoa(t.Count))
	}
	return nil
}

func cmdSuggest(ctx context.Context, lib *library.Library, args []string, p *printer) error {
	if len(args) == 0 || len(args) > 2 {
		return errUsage
	}
	limit, err := optionalLimit(args, 1)
	if err != nil {
		return err
	}

	names, err := lib.SearchSimilarTags(ctx, args[0], limit)
	if err != nil {
		return err
	}
	for _, name := range names {
		p.row(name)
	}
	return nil
}

// optionalLimit parses args[i] as a count when present.
func optionalLimit(args []string, i int) (int, error) {
	if len(args) <= i {
		return 0, nil
	}
	n, err := strconv.Atoi(args[i])
	if err != nil || n < 0 {
		return 0, fmt.Errorf("invalid count %q", args[i])
	}
	return n, nil
}

// sanitizeCommand returns a safe representation of a command string for display.
func sanitizeCommand(cmd string) string {
	var b strings.Builder
	b.Grow(len(cmd))
	for _, r := range cmd {
		if (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z') || (r >= '0' && r <= '9') || r == '-' || r == '_' {
			b.WriteRune(r)
		} else {
			b.WriteRune('_')
		}
	}
	return b.String()
}

// printer writes aligned columns on a terminal and plain TSV otherwise.
// Headers are only printed on a terminal.
type printer struct {
	w   io.Writer
	tw  *tabwriter.Writer
	tty bool
}

func newPrinter(out io.Writer, tty bool) *printer {
	p := &printer{w: out, tty: tty}
	if tty {
		p.tw = tabwriter.NewWriter(out, 0, 4, 2, ' ', 0)
		p.w = p.tw
	}
	return p
}

func (p *printer) header(cols ...string) {
	if p.tty {
		p.row(cols...)
	}
}

func (p *printer) row(cols ...string) {
	fmt.Fprintln(p.w, strings.Join(cols, "\t"))
}

func (p *printer) flush() {
	if p.tw != nil {
		p.tw.Flush()
	}
}
