package main

import (
	"fmt"
	"io"

	"screen-agent/internal/application/port/output"
	"screen-agent/internal/di"
	"screen-agent/internal/infrastructure/config"
	"screen-agent/internal/infrastructure/env"
	"screen-agent/internal/infrastructure/logger"
	"screen-agent/internal/infrastructure/userinteraction"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

type app struct {
	in  io.Reader
	out io.Writer

	v          *viper.Viper
	configPath string
	outputFlag string

	// llm replaces the provider client when set.
	llm output.LLMPort

	format    userinteraction.Format
	console   *userinteraction.Console
	container *di.Container
}

func newApp(in io.Reader, out io.Writer) *app {
	return &app{in: in, out: out, v: config.New()}
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "agent",
		Short:         "Plan desktop automation goals and ground screenshots into UI elements",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.setup()
		},
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.out)

	flags := root.PersistentFlags()
	flags.StringVarP(&a.configPath, "config", "c", "", "config file (yaml, json or toml)")
	flags.StringVarP(&a.outputFlag, "output", "o", string(userinteraction.FormatTree), "output format: tree, json or yaml")
	flags.String("log-level", "", "log level: debug, info, warn or error")
	flags.String("model", "", "model used for planning and grounding")
	_ = a.v.BindPFlag("logger.level", flags.Lookup("log-level"))
	_ = a.v.BindPFlag("llm.model", flags.Lookup("model"))

	root.AddCommand(a.planCmd(), a.groundCmd(), a.describeCmd())
	return root
}

func (a *app) setup() error {
	a.console = userinteraction.NewConsole(a.in, a.out)

	if _, err := env.Load(); err != nil {
		a.console.ShowError(err)
		return err
	}

	format, err := userinteraction.ParseFormat(a.outputFlag)
	if err != nil {
		a.console.ShowError(err)
		return err
	}
	a.format = format

	if err := config.ReadFile(a.v, a.configPath); err != nil {
		a.console.ShowError(err)
		return err
	}
	cfg, err := config.NewConfigFromViper(a.v)
	if err != nil {
		a.console.ShowError(err)
		return err
	}

	if a.llm != nil {
		a.container, err = di.NewContainerWithLLM(cfg, a.llm, logger.NewNop())
	} else {
		a.container, err = di.NewContainer(cfg)
	}
	if err != nil {
		err = fmt.Errorf("initialization failed: %w", err)
		a.console.ShowError(err)
		return err
	}
	return nil
}

func (a *app) close() {
	if a.container != nil {
		a.container.Close()
		a.container = nil
	}
}

// fail reports err on the console and hands it back to cobra for the exit code.
func (a *app) fail(err error) error {
	a.console.ShowError(err)
	return err
}
