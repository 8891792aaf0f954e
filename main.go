package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/spf13/cobra"

	"github.com/haasele/focus-reader/internal/book"
	"github.com/haasele/focus-reader/internal/config"
	"github.com/haasele/focus-reader/internal/library"
	"github.com/haasele/focus-reader/internal/logging"
	"github.com/haasele/focus-reader/internal/rsvp"
)

// Version info (injected via ldflags)
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

var (
	flagWPM           float64
	flagLongWordDelay bool
	flagORP           string
	flagPageSize      int
	flagFresh         bool
	flagDebug         bool
	flagNoLibrary     bool
	flagSaveConfig    bool
)

// session is one openable book: its parsed document, the library record when
// persistence is on, and the word index to resume from.
type session struct {
	doc    *book.Document
	meta   library.BookMetadata
	resume int
}

// program is everything a frontend needs to run: effective preferences, the
// library store (nil when persistence is off), and an optional starting
// session. A nil start means the frontend opens on the library picker.
type program struct {
	cfg    config.Config
	policy rsvp.Policy
	store  *library.Store
	start  *session
	fresh  bool
}

// newScheduler builds the playback scheduler for a session, wired to a
// progress tracker when the session has a library record.
func (p *program) newScheduler(sess *session) (*rsvp.Scheduler, *library.Tracker) {
	var tracker *library.Tracker
	var onSave func(int, bool)
	if p.store != nil && sess.meta.ID != "" {
		tracker = library.NewTracker(p.store, sess.meta.ID, sess.resume)
		onSave = tracker.Record
	}
	sched := rsvp.NewScheduler(sess.doc.Words, rsvp.Options{
		WPM:           p.cfg.WPM,
		LongWordDelay: p.cfg.LongWordDelay,
		ResumeIndex:   sess.resume,
		OnSave:        onSave,
	})
	return sched, tracker
}

// importFile reads and parses a file from disk, then records it in the
// library so it shows up in the picker and resumes next time. A library
// failure costs persistence, not the reading session.
func importFile(store *library.Store, path string, fresh bool) (*session, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	name := filepath.Base(path)
	fallback := strings.TrimSuffix(name, filepath.Ext(name))
	doc, err := book.Parse(name, data, fallback)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", name, err)
	}

	sess := &session{doc: doc}
	if store == nil {
		return sess, nil
	}

	id := library.ComputeID(data)
	meta := library.BookMetadata{
		ID:           id,
		Title:        doc.Title,
		Author:       doc.Author,
		FileName:     name,
		FileType:     strings.ToLower(filepath.Ext(name)),
		TotalWords:   doc.WordCount(),
		LastOpenedAt: time.Now(),
	}
	var cover []byte
	if meta.FileType == ".epub" {
		cover = library.ExtractCover(data)
	}
	if err := store.Save(meta, data, cover); err != nil {
		logging.Warn("library save failed, reading without persistence", "err", err)
		return sess, nil
	}
	// Re-read the row: an earlier import of the same bytes owns the reading
	// position.
	if stored, err := store.GetMetadata(id); err == nil {
		meta = stored
		if !fresh {
			sess.resume = stored.LastReadIndex
		}
	}
	sess.meta = meta
	return sess, nil
}

// openStored loads a book back out of the library by id.
func openStored(store *library.Store, id string, fresh bool) (*session, error) {
	data, err := store.Load(id)
	if err != nil {
		return nil, err
	}
	meta, err := store.GetMetadata(id)
	if err != nil {
		return nil, err
	}
	doc, err := book.Parse(meta.FileName, data, meta.Title)
	if err != nil {
		return nil, fmt.Errorf("parse %s: %w", meta.FileName, err)
	}
	if err := store.Touch(id); err != nil {
		logging.Debug("recency bump failed", "book", id, "err", err)
	}

	sess := &session{doc: doc, meta: meta}
	if !fresh {
		sess.resume = meta.LastReadIndex
	}
	return sess, nil
}

func stdinPiped() bool {
	stat, err := os.Stdin.Stat()
	return err == nil && stat.Mode()&os.ModeCharDevice == 0
}

func openDefaultStore() *library.Store {
	path, err := library.DefaultPath()
	if err != nil {
		logging.Warn("library path unresolved, persistence off", "err", err)
		return nil
	}
	store, err := library.OpenStore(path)
	if err != nil {
		logging.Warn("library unavailable, persistence off", "err", err)
		return nil
	}
	return store
}

// effectiveConfig merges stored preferences with any flags set on this run.
func effectiveConfig(cmd *cobra.Command) config.Config {
	cfg := config.Load()
	if cmd.Flags().Changed("wpm") {
		cfg.WPM = rsvp.ClampWPM(flagWPM)
	}
	if cmd.Flags().Changed("long-word-delay") {
		cfg.LongWordDelay = flagLongWordDelay
	}
	if cmd.Flags().Changed("orp") {
		cfg.ORPPolicy = rsvp.ParsePolicy(flagORP).String()
	}
	if cmd.Flags().Changed("page-size") && flagPageSize >= 1 {
		cfg.PageSize = flagPageSize
	}
	return cfg
}

func runRoot(cmd *cobra.Command, args []string) error {
	if err := logging.Init(flagDebug); err != nil {
		fmt.Fprintf(os.Stderr, "warning: %v\n", err)
	}
	defer logging.Close()

	cfg := effectiveConfig(cmd)
	if flagSaveConfig {
		if err := config.Save(cfg); err != nil {
			logging.Warn("preferences not saved", "err", err)
		}
	}

	p := &program{cfg: cfg, policy: rsvp.ParsePolicy(cfg.ORPPolicy), fresh: flagFresh}
	if !flagNoLibrary {
		p.store = openDefaultStore()
	}
	if p.store != nil {
		defer p.store.Close()
	}

	switch {
	case len(args) > 0:
		sess, err := importFile(p.store, args[0], flagFresh)
		if err != nil {
			return err
		}
		p.start = sess

	case stdinPiped():
		data, err := io.ReadAll(os.Stdin)
		if err != nil {
			return fmt.Errorf("read stdin: %w", err)
		}
		doc, err := book.Parse("stdin.txt", data, "Standard input")
		if err != nil {
			return err
		}
		p.start = &session{doc: doc}

	default:
		// No input: open on the library picker, if there is a library.
		if p.store == nil {
			return errors.New("no input: provide a file or pipe text to stdin")
		}
	}

	return runFrontend(p)
}

func runLibraryList(cmd *cobra.Command, _ []string) error {
	store := openDefaultStore()
	if store == nil {
		return errors.New("library unavailable")
	}
	defer store.Close()

	books, err := store.ListAll()
	if err != nil {
		return err
	}
	if len(books) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "Library is empty. Open a file to add it.")
		return nil
	}

	w := tabwriter.NewWriter(cmd.OutOrStdout(), 2, 4, 2, ' ', 0)
	fmt.Fprintln(w, "ID\tTITLE\tAUTHOR\tWORDS\tPROGRESS\tLAST OPENED")
	for _, b := range books {
		pct := 0
		if b.TotalWords > 0 {
			pct = b.LastReadIndex * 100 / b.TotalWords
		}
		fmt.Fprintf(w, "%s\t%s\t%s\t%d\t%d%%\t%s\n",
			b.ID[:8], b.Title, b.Author, b.TotalWords, pct,
			b.LastOpenedAt.Local().Format("2006-01-02 15:04"))
	}
	return w.Flush()
}

func runLibraryRemove(_ *cobra.Command, args []string) error {
	store := openDefaultStore()
	if store == nil {
		return errors.New("library unavailable")
	}
	defer store.Close()

	books, err := store.ListAll()
	if err != nil {
		return err
	}
	for _, b := range books {
		if b.ID == args[0] || strings.HasPrefix(b.ID, args[0]) {
			return store.Delete(b.ID)
		}
	}
	return fmt.Errorf("%w: %s", library.ErrBookNotFound, args[0])
}

func runInfo(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	name := filepath.Base(args[0])
	doc, err := book.Parse(name, data, strings.TrimSuffix(name, filepath.Ext(name)))
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintf(out, "Title:    %s\n", doc.Title)
	if doc.Author != "" {
		fmt.Fprintf(out, "Author:   %s\n", doc.Author)
	}
	fmt.Fprintf(out, "Words:    %d\n", doc.WordCount())
	fmt.Fprintf(out, "Chapters: %d\n", len(doc.Chapters))
	for _, c := range doc.Chapters {
		fmt.Fprintf(out, "  %7d  %s\n", c.WordStart, c.Title)
	}
	return nil
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "focus-reader [file]",
		Short: "RSVP speed reader for e-books and text",
		Long: `focus-reader displays one word at a time at an adjustable pace, with the
optimal recognition point highlighted. It reads EPUB, Markdown, and plain
text, remembers your position per book, and falls back to a page view for
manual navigation.

Supported formats: ` + strings.Join(book.SupportedFormats(), ", "),
		Example: `  focus-reader book.epub          read a book at the saved pace
  focus-reader -w 500 notes.md    read markdown at 500 WPM
  cat article.txt | focus-reader  read from stdin
  focus-reader                    pick a book from the library`,
		Args:          cobra.MaximumNArgs(1),
		RunE:          runRoot,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.Flags().Float64VarP(&flagWPM, "wpm", "w", rsvp.DefaultWPM, "words per minute (60-1200)")
	root.Flags().BoolVar(&flagLongWordDelay, "long-word-delay", true, "linger on words longer than 9 characters")
	root.Flags().StringVar(&flagORP, "orp", "proportional", "focus point policy: proportional or banded")
	root.Flags().IntVar(&flagPageSize, "page-size", 0, "words per page in the page view")
	root.Flags().BoolVar(&flagFresh, "fresh", false, "ignore the saved reading position")
	root.Flags().BoolVar(&flagNoLibrary, "no-library", false, "do not save the book or reading position")
	root.Flags().BoolVar(&flagSaveConfig, "save-config", false, "persist the effective settings as defaults")
	root.PersistentFlags().BoolVar(&flagDebug, "debug", false, "verbose logging")

	libraryCmd := &cobra.Command{
		Use:   "library",
		Short: "List saved books",
		Args:  cobra.NoArgs,
		RunE:  runLibraryList,
	}
	libraryCmd.AddCommand(&cobra.Command{
		Use:   "rm <id>",
		Short: "Remove a book from the library",
		Args:  cobra.ExactArgs(1),
		RunE:  runLibraryRemove,
	})

	infoCmd := &cobra.Command{
		Use:   "info <file>",
		Short: "Show a book's recovered metadata without opening it",
		Args:  cobra.ExactArgs(1),
		RunE:  runInfo,
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "focus-reader %s (commit: %s, built: %s)\n", version, commit, date)
		},
	}

	root.AddCommand(libraryCmd, infoCmd, versionCmd)
	return root
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
