package cli

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/spf13/cobra"

	"github.com/sttts/simconsole/internal/fakesim"
	"github.com/sttts/simconsole/pkg/appconfig"
)

func newNamespaceCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:     "namespace",
		Aliases: []string{"ns"},
		Short:   "Manage simulator namespaces",
	}
	var save bool
	create := &cobra.Command{
		Use:   "create",
		Short: "Create a simulator and print its id",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := createSimulator(cmd.Context(), e.client)
			if err != nil {
				return err
			}
			if save {
				cfg, err := appconfig.Load()
				if err != nil {
					return err
				}
				cfg.Simulator.ID = id
				if err := appconfig.Save(cfg); err != nil {
					return fmt.Errorf("save config: %w", err)
				}
			}
			fmt.Fprintln(cmd.OutOrStdout(), id)
			return nil
		},
	}
	create.Flags().BoolVar(&save, "save", false, "store the new id as the default simulator in the config file")
	cmd.AddCommand(create, &cobra.Command{
		Use:   "get NAME",
		Short: "Print a namespace as YAML",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			ns, err := e.client.Namespaces().Get(cmd.Context(), args[0])
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), ns.Object)
		},
	})
	return cmd
}

func newSchedulerConfigCommand(e *env) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "schedulerconfig",
		Short: "Read or replace the scheduler configuration",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "get",
		Short: "Print the scheduler configuration as YAML",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.simulatorID()
			if err != nil {
				return err
			}
			cfg, err := e.client.SchedulerConfiguration().Get(cmd.Context(), id)
			if err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), cfg.Object)
		},
	})

	var file string
	apply := &cobra.Command{
		Use:   "apply -f FILE",
		Short: "Replace the scheduler configuration",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.simulatorID()
			if err != nil {
				return err
			}
			if file == "" {
				return fmt.Errorf("-f is required")
			}
			cfg, err := readObject(file)
			if err != nil {
				return err
			}
			if _, err := e.client.SchedulerConfiguration().Apply(cmd.Context(), cfg, id); err != nil {
				return err
			}
			fmt.Fprintln(cmd.ErrOrStderr(), "scheduler configuration applied")
			return nil
		},
	}
	apply.Flags().StringVarP(&file, "filename", "f", "", "YAML or JSON file, - for stdin")
	cmd.AddCommand(apply)
	return cmd
}

func newFakeServerCommand(e *env) *cobra.Command {
	var addr string
	cmd := &cobra.Command{
		Use:    "fake-server",
		Short:  "Serve an in-memory simulator API for local testing",
		Args:   cobra.NoArgs,
		Hidden: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			e.log.Info("serving fake simulator", "addr", addr)
			err := fakesim.New(e.log.WithName("fakesim")).Start(addr)
			if errors.Is(err, http.ErrServerClosed) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&addr, "addr", ":1212", "listen address")
	return cmd
}

func newVersionCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			fmt.Fprintf(cmd.OutOrStdout(), "simconsole version %s\nCommit: %s\nDate: %s\n", e.build.Version, e.build.Commit, e.build.Date)
			return nil
		},
	}
}
