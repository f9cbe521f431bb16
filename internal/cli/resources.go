package cli

import (
	"fmt"

	"github.com/spf13/cobra"
	"sigs.k8s.io/controller-runtime/pkg/client"

	"github.com/sttts/simconsole/pkg/store"
	"github.com/sttts/simconsole/pkg/templates"
)

func newGetCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "get KIND [NAME]",
		Short: "Print objects of a kind as YAML",
		Args:  cobra.RangeArgs(1, 2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.simulatorID()
			if err != nil {
				return err
			}
			_, st, err := e.store(args[0])
			if err != nil {
				return err
			}
			if len(args) == 2 {
				obj, err := st.Get(cmd.Context(), args[1], id)
				if err != nil {
					return err
				}
				return printYAML(cmd.OutOrStdout(), obj.Object)
			}
			if err := st.List(cmd.Context(), id); err != nil {
				return err
			}
			return printYAML(cmd.OutOrStdout(), asList(st.Items()))
		},
	}
}

func newApplyCommand(e *env) *cobra.Command {
	var (
		file         string
		fromTemplate bool
	)
	cmd := &cobra.Command{
		Use:   "apply KIND (-f FILE | --template)",
		Short: "Create or update an object and print the refreshed collection",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.simulatorID()
			if err != nil {
				return err
			}
			k, st, err := e.store(args[0])
			if err != nil {
				return err
			}
			var obj store.Object
			switch {
			case file != "" && fromTemplate:
				return fmt.Errorf("-f and --template are mutually exclusive")
			case file != "":
				if obj, err = readObject(file); err != nil {
					return err
				}
			case fromTemplate:
				tmpl, err := templates.Load(e.lookupEnv)
				if err != nil {
					return err
				}
				if obj, err = tmpl.For(k, id); err != nil {
					return err
				}
			default:
				return fmt.Errorf("one of -f or --template is required")
			}
			if err := st.Apply(cmd.Context(), obj, id); err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "applied %s %q\n", k.Short, obj.GetName())
			return printYAML(cmd.OutOrStdout(), asList(st.Items()))
		},
	}
	cmd.Flags().StringVarP(&file, "filename", "f", "", "YAML or JSON file with the object, - for stdin")
	cmd.Flags().BoolVar(&fromTemplate, "template", false, "apply the kind's template from the environment")
	return cmd
}

func newDeleteCommand(e *env) *cobra.Command {
	var ignoreNotFound bool
	cmd := &cobra.Command{
		Use:   "delete KIND NAME",
		Short: "Delete an object",
		Args:  cobra.ExactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.simulatorID()
			if err != nil {
				return err
			}
			k, st, err := e.store(args[0])
			if err != nil {
				return err
			}
			err = st.Delete(cmd.Context(), args[1], id)
			if ignoreNotFound {
				err = client.IgnoreNotFound(err)
			}
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.ErrOrStderr(), "deleted %s %q\n", k.Short, args[1])
			return nil
		},
	}
	cmd.Flags().BoolVar(&ignoreNotFound, "ignore-not-found", false, "treat a missing object as success")
	return cmd
}

type nodeGroup struct {
	Node string   `json:"node"`
	Pods []string `json:"pods"`
}

func newPodsByNodeCommand(e *env) *cobra.Command {
	return &cobra.Command{
		Use:   "pods-by-node",
		Short: "Print pod names grouped by node, unscheduled first",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			id, err := e.simulatorID()
			if err != nil {
				return err
			}
			pods := e.stores().Pods
			if err := pods.List(cmd.Context(), id); err != nil {
				return err
			}
			idx := pods.Index()
			groups := make([]nodeGroup, 0, len(idx.Keys()))
			for _, key := range idx.Keys() {
				names := make([]string, 0)
				for _, p := range idx.Pods(key) {
					names = append(names, p.GetName())
				}
				groups = append(groups, nodeGroup{Node: key, Pods: names})
			}
			return printYAML(cmd.OutOrStdout(), groups)
		},
	}
}
