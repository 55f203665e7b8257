package rla

import (
	"fmt"
	"io/fs"
	"os"
	"time"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rla/internal/version"
	"github.com/arthur-debert/rla/pkg/cobrax/topics"
	"github.com/arthur-debert/rla/pkg/config"
	"github.com/arthur-debert/rla/pkg/errors"
	"github.com/arthur-debert/rla/pkg/logging"
	"github.com/arthur-debert/rla/pkg/output"
	"github.com/arthur-debert/rla/pkg/output/styles"
	"github.com/arthur-debert/rla/pkg/runner"
	"github.com/arthur-debert/rla/pkg/session"
)

// App supplies what commands need from the outside world. Tests swap the
// runner and settings for fakes.
type App struct {
	Settings func() (*config.Settings, error)
	Runner   func() runner.Runner
	// TempRoot is where session scratch directories go, empty for the
	// system default
	TempRoot string
}

// DefaultApp loads the user's settings and runs real processes
func DefaultApp() App {
	return App{
		Settings: config.Load,
		Runner:   func() runner.Runner { return runner.New() },
	}
}

type globals struct {
	verbosity int
	format    string
	styles    string
	started   time.Time
}

// NewRootCmd creates the root command wired to the real environment
func NewRootCmd() *cobra.Command {
	return NewRootCmdWith(DefaultApp())
}

// NewRootCmdWith creates the root command for app
func NewRootCmdWith(app App) *cobra.Command {
	initTemplateFormatting()

	g := &globals{}

	rootCmd := &cobra.Command{
		Use:     "rla",
		Short:   MsgRootShort,
		Long:    MsgRootLong,
		Version: version.Version,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			g.started = time.Now()
			logging.SetupLogger(g.verbosity)
			logging.LogCommand(log.Logger, cmd.CommandPath(), args)
			if g.styles != "" {
				return styles.LoadStylesFromFile(g.styles)
			}
			return nil
		},
		PersistentPostRun: func(cmd *cobra.Command, args []string) {
			log.Info().Str("command", cmd.Name()).Dur("elapsed", time.Since(g.started)).Msg("Done")
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			_ = cmd.Help()
			return errors.New(errors.ErrInvalidInput, MsgErrNoCommand)
		},
		SilenceUsage:      true,
		SilenceErrors:     true,
		DisableAutoGenTag: true,
	}

	rootCmd.PersistentFlags().CountVarP(&g.verbosity, "verbose", "v", MsgFlagVerbose)
	rootCmd.PersistentFlags().StringVar(&g.format, "format", "auto", MsgFlagFormat)
	rootCmd.PersistentFlags().StringVar(&g.styles, "styles", "", MsgFlagStyles)

	rootCmd.AddGroup(&cobra.Group{ID: "project", Title: "PROJECT COMMANDS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "tools", Title: "TOOLS:"})
	rootCmd.AddGroup(&cobra.Group{ID: "misc", Title: "MISC:"})
	rootCmd.SetUsageTemplate(MsgUsageTemplate)

	c := &commander{app: app, globals: g}
	rootCmd.AddCommand(c.newUnpackCmd())
	rootCmd.AddCommand(c.newPackCmd())
	rootCmd.AddCommand(c.newSignCmd())
	rootCmd.AddCommand(c.newSmali2JavaCmd())
	rootCmd.AddCommand(c.newJava2SmaliCmd())
	for _, p := range passthroughs {
		rootCmd.AddCommand(c.newPassthroughCmd(p))
	}
	rootCmd.AddCommand(c.newConfigCmd())
	rootCmd.AddCommand(newVersionCmd())
	rootCmd.AddCommand(newCompletionCmd())

	source, err := fs.Sub(HelpTopics, "topics")
	if err == nil {
		_, err = topics.Initialize(rootCmd, source, topics.Options{Renderer: topics.NewGlamourRenderer()})
	}
	if err != nil {
		log.Warn().Err(err).Msg("Help topics unavailable")
	}

	return rootCmd
}

// commander holds what every subcommand shares
type commander struct {
	app     App
	globals *globals
}

// withSession runs fn with a fresh session, closed afterwards
func (c *commander) withSession(fn func(*session.Session) error) error {
	settings, err := c.app.Settings()
	if err != nil {
		return err
	}
	sess := session.New(settings, c.app.Runner())
	sess.TempRoot = c.app.TempRoot
	defer func() {
		if err := sess.Close(); err != nil {
			log.Warn().Err(err).Msg("Could not remove scratch directory")
		}
	}()
	return fn(sess)
}

// printer writes results to the command's output in the chosen format
func (c *commander) printer(cmd *cobra.Command) (*output.Printer, error) {
	format, err := output.ParseFormat(c.globals.format)
	if err != nil {
		return nil, err
	}
	return output.NewPrinter(cmd.OutOrStdout(), format.Resolve(os.Stdout)), nil
}

// PrintError reports a failed command on stderr
func PrintError(cmd *cobra.Command, err error) {
	format, _ := cmd.Flags().GetString("format")
	f, perr := output.ParseFormat(format)
	if perr != nil {
		f = output.FormatAuto
	}
	p := output.NewPrinter(cmd.ErrOrStderr(), f.Resolve(os.Stderr))
	if perr := p.Error(err); perr != nil {
		fmt.Fprintln(cmd.ErrOrStderr(), err)
	}
}
