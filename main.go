package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"time"

	"github.com/adnsv/dbrst/config"
	"github.com/adnsv/dbrst/convert"
	"github.com/adnsv/dbrst/entities"
	"github.com/adnsv/dbrst/hooks"
	"github.com/adnsv/dbrst/logging"
	"github.com/adnsv/dbrst/pandoc"
	"github.com/adnsv/dbrst/rst"
	ufs "github.com/adnsv/go-utils/fs"
	cli "github.com/jawher/mow.cli"
	"go.uber.org/zap"
)

// exit status for problems found before any document is touched
const exitConfig = 42

type globals struct {
	debug   *bool
	verbose *bool
	quiet   *bool
}

func (g *globals) logger() *zap.Logger {
	return logging.BuildLogger(*g.debug, *g.verbose, *g.quiet)
}

func exit(log *zap.Logger, code int) {
	log.Sync()
	cli.Exit(code)
}

func main() {
	app := cli.App("dbrst", "DocBook XML to reStructuredText migration")
	app.Version("v version", app_version())

	g := &globals{
		debug: app.Bool(cli.BoolOpt{
			Name:   "debug",
			EnvVar: "DEBUG",
			Desc:   "debug logging, keep work files, do not recover from hook panics",
		}),
		verbose: app.BoolOpt("verbose", false, "report progress"),
		quiet:   app.BoolOpt("quiet", false, "report errors only"),
	}

	app.Command("convert", "migrate DocBook documents to reST", func(cmd *cli.Cmd) {
		migrateCmd(cmd, g, false)
	})
	app.Command("xml", "run the XML hooks only, writing the migrated XML and its fragments", func(cmd *cli.Cmd) {
		migrateCmd(cmd, g, true)
	})
	app.Command("fixrst", "repair the reST written by pandoc", func(cmd *cli.Cmd) {
		cmd.Spec = "SRC DST"
		src := cmd.StringArg("SRC", "", "reST file written by pandoc")
		dst := cmd.StringArg("DST", "", "repaired output")
		cmd.Action = func() {
			log := g.logger()
			if err := rst.FixFile(*src, *dst); err != nil {
				log.Error("Failed to fix reST", zap.String("file", *src), zap.Error(err))
				exit(log, 1)
			}
			log.Sync()
		}
	})

	app.Run(os.Args)
}

func migrateCmd(cmd *cli.Cmd, g *globals, xmlOnly bool) {
	cmd.Spec = "[-c=<CONFIG>] [-o=<FOLDER>] [--resources=<DIR>] [--entities=<FILE>] [--pandoc=<EXE>] [--timeout=<DURATION>] INPUTS..."
	var (
		cfgFN     = cmd.StringOpt("c config", "", "YAML configuration file")
		folder    = cmd.StringOpt("o output", "", "output folder")
		resources = cmd.StringOpt("resources", "", "folder searched for fileref resources")
		entFN     = cmd.StringOpt("entities", "", "entity map file")
		exe       = cmd.StringOpt("pandoc", "", "pandoc executable")
		timeout   = cmd.StringOpt("timeout", "", "limit for every pandoc run")
		inputs    = cmd.StringsArg("INPUTS", nil, "DocBook XML files (glob patterns accepted)")
	)

	cmd.Action = func() {
		log := g.logger()

		cfg := config.Default()
		if *cfgFN != "" {
			if !ufs.FileExists(*cfgFN) {
				log.Error("Missing configuration file", zap.String("file", *cfgFN))
				exit(log, exitConfig)
			}
			c, err := config.Load(*cfgFN)
			if err != nil {
				log.Error("Bad configuration", zap.Error(err))
				exit(log, exitConfig)
			}
			cfg = c
		}
		if *folder != "" {
			cfg.Folder = *folder
		}
		if *resources != "" {
			cfg.Resources = *resources
		}
		if *entFN != "" {
			cfg.Entities = *entFN
		}
		if *exe != "" {
			cfg.Pandoc = *exe
		}
		if *timeout != "" {
			d, err := time.ParseDuration(*timeout)
			if err != nil {
				log.Error("Bad timeout", zap.String("timeout", *timeout), zap.Error(err))
				exit(log, exitConfig)
			}
			cfg.Timeout = d
		}
		if cfg.Entities == "" {
			cfg.Entities = filepath.Join(cfg.Folder, "entities.json")
		}
		if err := cfg.Validate(); err != nil {
			log.Error("Bad configuration", zap.Error(err))
			exit(log, exitConfig)
		}

		opts := hooks.Options{Resources: cfg.Resources}
		if err := checkHooks(cfg, opts, log); err != nil {
			log.Error("Bad hook configuration", zap.Error(err))
			exit(log, exitConfig)
		}

		var runner *pandoc.Runner
		if !xmlOnly {
			path, err := pandoc.LookupExecutable(cfg.Pandoc)
			if err != nil {
				log.Error("Cannot run pandoc", zap.Error(err))
				exit(log, exitConfig)
			}
			runner = pandoc.NewRunner(path, cfg.Timeout, log)
		}

		ents, err := entities.Load(cfg.Entities, log)
		if err != nil {
			log.Error("Failed to load entities", zap.Error(err))
			exit(log, exitConfig)
		}

		conv := &convert.Converter{
			Folder:   cfg.Folder,
			Entities: ents,
			Hooks: func(fname string) ([]*hooks.Hook, error) {
				return hooks.Build(cfg.HooksFor(fname), opts, log)
			},
			Pandoc: runner,
			Log:    log,
			Debug:  *g.debug,
		}

		ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
		defer stop()

		failed := 0
		for _, fn := range expandInputs(*inputs, log) {
			if ctx.Err() != nil {
				log.Warn("Interrupted")
				failed++
				break
			}
			job := convert.NewJob(fn, ".")
			if xmlOnly {
				_, _, err = conv.Prepare(job)
			} else {
				err = conv.Convert(ctx, job)
			}
			if err != nil {
				logFailure(log, job, err)
				failed++
			}
		}

		if err := ents.Save(); err != nil {
			log.Error("Failed to save entities", zap.String("file", cfg.Entities), zap.Error(err))
			failed++
		}
		if failed > 0 {
			log.Error("Migration incomplete", zap.Int("failed", failed))
			exit(log, 1)
		}
		log.Info("Mission accomplished")
		log.Sync()
	}
}

// checkHooks builds every configured hook list once so that unknown hooks
// and bad parameters are reported before any document is touched.
func checkHooks(cfg *config.Config, opts hooks.Options, log *zap.Logger) error {
	if _, err := hooks.Build(config.DefaultHooks(), opts, log); err != nil {
		return err
	}
	for _, r := range cfg.Documents {
		if _, err := hooks.Build(r.Hooks, opts, log); err != nil {
			return fmt.Errorf("documents %q: %w", r.Match, err)
		}
	}
	return nil
}

func expandInputs(inputs []string, log *zap.Logger) []string {
	var ret []string
	for _, in := range inputs {
		g, err := filepath.Glob(in)
		if err != nil {
			log.Error("Bad input pattern", zap.String("pattern", in), zap.Error(err))
			continue
		}
		if len(g) == 0 {
			// let the converter report the missing file
			g = []string{in}
		}
		ret = append(ret, g...)
	}
	return ret
}

func logFailure(log *zap.Logger, job convert.Job, err error) {
	fields := []zap.Field{zap.String("file", job.FileName), zap.Error(err)}
	var he *hooks.HookError
	if errors.As(err, &he) {
		fields = append(fields, zap.String("hook", he.Hook))
	}
	var ce *entities.CollisionError
	if errors.As(err, &ce) {
		fields = append(fields, zap.String("entity", ce.Name))
	}
	log.Error("Migration failed", fields...)
}
