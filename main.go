package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/charmbracelet/log"
	"github.com/chazu/armature/pkg/config"
	"github.com/chazu/armature/pkg/logging"
	"github.com/chazu/armature/pkg/persist"
	"github.com/fsnotify/fsnotify"
)

// watchDebounce coalesces the burst of events an editor save produces.
const watchDebounce = 100 * time.Millisecond

const usage = `usage:
  armature run [-i scene.toml] [-o scene.toml] script.lisp...
  armature watch [-o scene.toml] script.lisp
  armature info scene.toml`

func main() {
	if len(os.Args) < 2 {
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	cfg, err := config.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
	logger := logging.New(os.Stderr, cfg.Log.Level)

	switch os.Args[1] {
	case "run":
		err = runCmd(cfg, logger, os.Args[2:])
	case "watch":
		err = watchCmd(cfg, logger, os.Args[2:])
	case "info":
		err = infoCmd(os.Stdout, os.Args[2:])
	default:
		fmt.Fprintln(os.Stderr, usage)
		os.Exit(2)
	}
	if err != nil {
		logger.Error(err.Error())
		os.Exit(1)
	}
}

func runCmd(cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	in := fs.String("i", "", "scene to load before running")
	out := fs.String("o", "", "write the resulting scene here")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() == 0 {
		return errors.New("run: no script given")
	}
	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	return runScripts(app, logger, *in, *out, fs.Args())
}

// runScripts loads in (if set), executes every script in order against
// the same scene and saves to out (if set). Scripts that fail stop the run.
func runScripts(app *App, logger *log.Logger, in, out string, scripts []string) error {
	if in != "" {
		f, err := os.Open(in)
		if err != nil {
			return err
		}
		err = app.Load(f)
		f.Close()
		if err != nil {
			return fmt.Errorf("load %s: %w", in, err)
		}
	}
	for _, path := range scripts {
		src, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		res := app.Exec(string(src))
		report(logger, path, res)
		if len(res.Errors) > 0 {
			return fmt.Errorf("%s: %d errors", path, len(res.Errors))
		}
	}
	if out != "" {
		return saveTo(app, out)
	}
	return nil
}

func saveTo(app *App, path string) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	if err := app.Save(f); err != nil {
		f.Close()
		return fmt.Errorf("save %s: %w", path, err)
	}
	return f.Close()
}

func report(logger *log.Logger, path string, res EvalResult) {
	for _, e := range res.Errors {
		logger.Error(e.Message, "script", path, "line", e.Line)
	}
	for _, w := range res.Warnings {
		logger.Warn(w.Message, "script", path)
	}
	logger.Info("evaluated", "script", path, "meshes", len(res.Meshes))
}

func watchCmd(cfg config.Config, logger *log.Logger, args []string) error {
	fs := flag.NewFlagSet("watch", flag.ContinueOnError)
	out := fs.String("o", "", "write the scene here after every successful run")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if fs.NArg() != 1 {
		return errors.New("watch: expected exactly one script")
	}
	app, err := NewApp(cfg, logger)
	if err != nil {
		return err
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return watch(ctx, app, logger, fs.Arg(0), *out)
}

// watch re-evaluates script from an empty scene every time it changes,
// until ctx is done. The script's directory is watched because editors
// often save by replacing the file.
func watch(ctx context.Context, app *App, logger *log.Logger, script, out string) error {
	script, err := filepath.Abs(script)
	if err != nil {
		return err
	}
	w, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer w.Close()
	if err := w.Add(filepath.Dir(script)); err != nil {
		return err
	}

	rerun := func() {
		src, err := os.ReadFile(script)
		if err != nil {
			logger.Error("read script", "err", err)
			return
		}
		res := app.Evaluate(string(src))
		report(logger, script, res)
		if out != "" && len(res.Errors) == 0 {
			if err := saveTo(app, out); err != nil {
				logger.Error(err.Error())
			}
		}
	}
	rerun()

	timer := time.NewTimer(watchDebounce)
	timer.Stop()
	for {
		select {
		case <-ctx.Done():
			return nil
		case e, ok := <-w.Events:
			if !ok {
				return nil
			}
			if touches(e, script) {
				timer.Reset(watchDebounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			logger.Error("watch", "err", err)
		case <-timer.C:
			rerun()
		}
	}
}

// touches reports whether e changed the file at path.
func touches(e fsnotify.Event, path string) bool {
	if filepath.Clean(e.Name) != path {
		return false
	}
	return e.Op&(fsnotify.Write|fsnotify.Create|fsnotify.Rename) != 0
}

func infoCmd(w io.Writer, args []string) error {
	if len(args) != 1 {
		return errors.New("info: expected exactly one scene file")
	}
	f, err := os.Open(args[0])
	if err != nil {
		return err
	}
	defer f.Close()
	doc, err := persist.Decode(f)
	if err != nil {
		return err
	}
	describe(w, doc)
	return nil
}

// describe prints a short summary of doc.
func describe(w io.Writer, doc persist.Document) {
	fmt.Fprintf(w, "version %d: %d objects, %d joints\n", doc.Version, len(doc.Objects), len(doc.Joints))
	for _, o := range doc.Objects {
		fmt.Fprintf(w, "  %-16s %-9s at (%g, %g, %g) %s\n",
			o.Name, o.Geometry.Kind, o.Position[0], o.Position[1], o.Position[2], o.Material.Color)
	}
	names := make(map[string]string, len(doc.Objects))
	for _, o := range doc.Objects {
		names[o.ID] = o.Name
	}
	for _, j := range doc.Joints {
		children := make([]string, len(j.Children))
		for i, c := range j.Children {
			children[i] = names[c]
		}
		fmt.Fprintf(w, "  %-16s %-9s %s -> %v\n", j.Name, j.Kind, names[j.Parent], children)
	}
}
