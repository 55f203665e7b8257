package rla

import (
	"fmt"
	"strings"

	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/arthur-debert/rla/internal/version"
	"github.com/arthur-debert/rla/pkg/config"
	"github.com/arthur-debert/rla/pkg/convert"
	"github.com/arthur-debert/rla/pkg/deps"
	"github.com/arthur-debert/rla/pkg/output"
	"github.com/arthur-debert/rla/pkg/pack"
	"github.com/arthur-debert/rla/pkg/project"
	"github.com/arthur-debert/rla/pkg/session"
	"github.com/arthur-debert/rla/pkg/tools"
	"github.com/arthur-debert/rla/pkg/unpack"
)

func (c *commander) newUnpackCmd() *cobra.Command {
	var noJadx, noGit, smali, force bool

	cmd := &cobra.Command{
		Use:     "unpack <apk>",
		Short:   MsgUnpackShort,
		Long:    MsgUnpackLong,
		Example: MsgUnpackExample,
		GroupID: "project",
		Args:    cobra.ExactArgs(1),
		ValidArgsFunction: func(cmd *cobra.Command, args []string, toComplete string) ([]string, cobra.ShellCompDirective) {
			return []string{"apk"}, cobra.ShellCompDirectiveFilterFileExt
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := c.printer(cmd)
			if err != nil {
				return err
			}
			cfg := project.Config{
				SmaliOnly:     smali,
				GitEnable:     !noGit,
				JadxEnable:    !noJadx,
				ForceOverride: force,
			}

			return c.withSession(func(sess *session.Session) error {
				res, err := unpack.New(sess).Unpack(cmd.Context(), unpack.Options{Apk: args[0], Config: cfg})
				if err != nil {
					return err
				}
				mode := "full"
				if cfg.SmaliOnly {
					mode = "smali-only"
				}
				fields := []output.Field{
					{Label: "project", Value: res.Layout.Root, Path: true},
					{Label: "mode", Value: mode},
					{Label: "units", Value: strings.Join(res.Units, ", ")},
				}
				if m := res.Manifest; m != nil {
					fields = append(fields, output.Field{Label: "package", Value: m.Package})
					if m.VersionName != "" {
						fields = append(fields, output.Field{Label: "version", Value: m.VersionName})
					}
				}
				return printer.Summary(output.Summary{
					Title:  fmt.Sprintf(MsgUnpackedFormat, args[0]),
					Fields: fields,
					Tasks:  res.Report.Results,
				})
			})
		},
	}

	cmd.Flags().BoolVar(&noJadx, "no-jadx", false, MsgFlagNoJadx)
	cmd.Flags().BoolVar(&noGit, "no-git", false, MsgFlagNoGit)
	cmd.Flags().BoolVar(&smali, "smali", false, MsgFlagSmali)
	cmd.Flags().BoolVarP(&force, "force", "f", false, MsgFlagForce)
	return cmd
}

func (c *commander) newPackCmd() *cobra.Command {
	var dir string

	cmd := &cobra.Command{
		Use:     "pack",
		Short:   MsgPackShort,
		Long:    MsgPackLong,
		Example: MsgPackExample,
		GroupID: "project",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := c.printer(cmd)
			if err != nil {
				return err
			}
			return c.withSession(func(sess *session.Session) error {
				res, err := pack.New(sess).Pack(cmd.Context(), dir)
				if err != nil {
					if res != nil {
						log.Debug().Str("output", res.Output).Msg("Pack failed")
					}
					return err
				}
				return printer.Summary(output.Summary{
					Title: fmt.Sprintf(MsgPackedFormat, res.Output),
					Fields: []output.Field{
						{Label: "output", Value: res.Output, Path: true},
						{Label: "strategy", Value: res.Strategy},
					},
					Tasks: res.Report.Results,
				})
			})
		},
	}

	cmd.Flags().StringVarP(&dir, "dir", "d", "", MsgFlagDir)
	_ = cmd.MarkFlagDirname("dir")
	return cmd
}

func (c *commander) newSignCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "sign <apk>",
		Short:   MsgSignShort,
		GroupID: "tools",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := c.printer(cmd)
			if err != nil {
				return err
			}
			return c.withSession(func(sess *session.Session) error {
				report, err := pack.New(sess).Sign(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printer.Summary(output.Summary{
					Title: fmt.Sprintf(MsgSignedFormat, args[0]),
					Tasks: report.Results,
				})
			})
		},
	}
}

func (c *commander) newSmali2JavaCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "smali2java <file.smali>",
		Short:   MsgSmali2JavaShort,
		Long:    MsgConvertLong,
		GroupID: "tools",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := c.printer(cmd)
			if err != nil {
				return err
			}
			return c.withSession(func(sess *session.Session) error {
				java, err := convert.New(sess).SmaliToJava(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				return printer.Line(fmt.Sprintf(MsgWroteFormat, java))
			})
		},
	}
}

func (c *commander) newJava2SmaliCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "java2smali <file.java>",
		Short:   MsgJava2SmaliShort,
		Long:    MsgConvertLong,
		GroupID: "tools",
		Args:    cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			printer, err := c.printer(cmd)
			if err != nil {
				return err
			}
			return c.withSession(func(sess *session.Session) error {
				written, err := convert.New(sess).JavaToSmali(cmd.Context(), args[0])
				if err != nil {
					return err
				}
				for _, path := range written {
					if err := printer.Line(fmt.Sprintf(MsgWroteFormat, path)); err != nil {
						return err
					}
				}
				return nil
			})
		},
	}
}

type passthrough struct {
	name  string
	short string
	dep   deps.Dep
}

var passthroughs = []passthrough{
	{"smali", MsgSmaliShort, deps.Smali},
	{"baksmali", MsgBaksmaliShort, deps.Baksmali},
	{"apksigner", MsgApksignerShort, deps.Apksigner},
}

func (c *commander) newPassthroughCmd(p passthrough) *cobra.Command {
	return &cobra.Command{
		Use:                p.name + " [args...]",
		Short:              p.short,
		GroupID:            "tools",
		DisableFlagParsing: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return c.withSession(func(sess *session.Session) error {
				return tools.New(sess).Passthrough(cmd.Context(), p.dep, args)
			})
		},
	}
}

func (c *commander) newConfigCmd() *cobra.Command {
	var template bool

	cmd := &cobra.Command{
		Use:     "config",
		Short:   MsgConfigShort,
		Long:    MsgConfigLong,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if template {
				fmt.Fprint(cmd.OutOrStdout(), config.GenerateConfigContent())
				return nil
			}
			settings, err := c.app.Settings()
			if err != nil {
				return err
			}
			rendered, err := config.Render(settings)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "# %s\n%s", config.UserConfigPath(), rendered)
			return nil
		},
	}

	cmd.Flags().BoolVar(&template, "template", false, MsgFlagTmpl)
	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:     "version",
		Short:   MsgVersionShort,
		GroupID: "misc",
		Args:    cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "rla version %s\n", version.Version)
			fmt.Fprintf(out, "  commit: %s\n", version.Commit)
			fmt.Fprintf(out, "  built:  %s\n", version.Date)
		},
	}
}

func newCompletionCmd() *cobra.Command {
	return &cobra.Command{
		Use:                   "completion [bash|zsh|fish|powershell]",
		Short:                 MsgCompletionShort,
		Long:                  MsgCompletionLong,
		GroupID:               "misc",
		DisableFlagsInUseLine: true,
		ValidArgs:             []string{"bash", "zsh", "fish", "powershell"},
		Args:                  cobra.MatchAll(cobra.ExactArgs(1), cobra.OnlyValidArgs),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			switch args[0] {
			case "bash":
				return cmd.Root().GenBashCompletionV2(out, true)
			case "zsh":
				return cmd.Root().GenZshCompletion(out)
			case "fish":
				return cmd.Root().GenFishCompletion(out, true)
			default:
				return cmd.Root().GenPowerShellCompletionWithDesc(out)
			}
		},
	}
}
