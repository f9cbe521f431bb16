// Package cli holds the simconsole command tree.
package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/go-logr/logr"
	"github.com/spf13/cobra"
	"k8s.io/apimachinery/pkg/apis/meta/v1/unstructured"
	yaml "sigs.k8s.io/yaml"

	"github.com/sttts/simconsole/internal/console"
	"github.com/sttts/simconsole/internal/logging"
	"github.com/sttts/simconsole/pkg/appconfig"
	"github.com/sttts/simconsole/pkg/resources"
	"github.com/sttts/simconsole/pkg/simclient"
	"github.com/sttts/simconsole/pkg/store"
	"github.com/sttts/simconsole/pkg/templates"
)

// BuildInfo is stamped at link time.
type BuildInfo struct {
	Version string
	Commit  string
	Date    string
}

// env is the state shared by all commands once flags are parsed.
type env struct {
	build BuildInfo

	server    string
	simulator string
	debug     bool

	lookupEnv func(string) (string, bool)

	cfg    *appconfig.Config
	log    logr.Logger
	client *simclient.Client
}

// NewRootCommand builds the simconsole command tree.
func NewRootCommand(build BuildInfo) *cobra.Command {
	return newRootCommand(&env{build: build, lookupEnv: os.LookupEnv})
}

func newRootCommand(e *env) *cobra.Command {
	root := &cobra.Command{
		Use:   "simconsole",
		Short: "Console for the scheduler simulator",
		Long: "simconsole inspects and edits the nodes, pods, volumes, claims and storage classes of a scheduler simulator.\n" +
			"Without a subcommand it starts the interactive console.",
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return e.complete(cmd)
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return e.runConsole(cmd)
		},
	}
	root.PersistentFlags().StringVar(&e.server, "server", "", "simulator base URL (default from config or BASE_URL)")
	root.PersistentFlags().StringVar(&e.simulator, "simulator", "", "simulator id (default from config or SIMULATOR_ID)")
	root.PersistentFlags().BoolVar(&e.debug, "debug", false, "verbose logging")

	root.AddCommand(
		newGetCommand(e),
		newApplyCommand(e),
		newDeleteCommand(e),
		newPodsByNodeCommand(e),
		newNamespaceCommand(e),
		newSchedulerConfigCommand(e),
		newFakeServerCommand(e),
		newVersionCommand(e),
	)
	return root
}

// complete merges config file, environment and flags, in that order.
func (e *env) complete(cmd *cobra.Command) error {
	cfg, err := appconfig.Load()
	if err != nil {
		return fmt.Errorf("load config: %w", err)
	}
	cfg.ApplyEnv(e.lookupEnv)
	if cmd.Flags().Changed("server") {
		cfg.Server.URL = e.server
	}
	if cmd.Flags().Changed("simulator") {
		cfg.Simulator.ID = e.simulator
	}
	e.cfg = cfg

	debug := e.debug
	if v, ok := e.lookupEnv("DEBUG"); ok && v != "" {
		debug = true
	}
	e.debug = debug
	e.log = logging.Setup(logging.Options{Debug: debug, Writer: cmd.ErrOrStderr()})

	e.client, err = simclient.New(simclient.Config{
		Server:    cfg.Server.URL,
		QPS:       cfg.Server.QPS,
		Burst:     cfg.Server.Burst,
		UserAgent: "simconsole/" + e.build.Version,
	})
	return err
}

func (e *env) simulatorID() (string, error) {
	if e.cfg.Simulator.ID == "" {
		return "", fmt.Errorf("no simulator selected: pass --simulator, set SIMULATOR_ID or create one with 'simconsole namespace create'")
	}
	return e.cfg.Simulator.ID, nil
}

func (e *env) stores() *store.Set {
	return store.NewSet(e.log, func(k resources.Kind) store.Client[store.Object] {
		return e.client.Resource(k)
	})
}

func (e *env) store(kind string) (resources.Kind, *store.Store[store.Object], error) {
	k, err := resources.Lookup(kind)
	if err != nil || !k.SimulatorScoped {
		return resources.Kind{}, nil, fmt.Errorf("unknown kind %q, expected one of %v", kind, simulatorKindNames())
	}
	st, err := e.stores().For(k)
	return k, st, err
}

func simulatorKindNames() []string {
	var names []string
	for _, k := range resources.SimulatorKinds() {
		names = append(names, k.Resource)
	}
	return names
}

// runConsole starts the terminal UI. Logs go to a file so they do not
// garble the screen. Without a simulator id a fresh simulator is created.
func (e *env) runConsole(cmd *cobra.Command) error {
	dir, err := appconfig.Dir()
	if err != nil {
		return err
	}
	f, err := logging.OpenFile(dir)
	if err != nil {
		return err
	}
	defer f.Close()
	e.log = logging.Setup(logging.Options{Debug: e.debug, Writer: f})

	ctx := cmd.Context()
	id := e.cfg.Simulator.ID
	if id == "" {
		if id, err = createSimulator(ctx, e.client); err != nil {
			return err
		}
		e.log.Info("created simulator", "id", id)
	}

	tmpl, err := templates.Load(e.lookupEnv)
	if err != nil {
		return err
	}
	p, err := appconfig.Path()
	if err != nil {
		return err
	}
	updates, err := appconfig.Watch(ctx, p, e.log.WithName("config"))
	if err != nil {
		// the console works without live reload
		e.log.Error(err, "config reload disabled")
	}
	return console.Run(ctx, console.Options{
		Stores:        e.stores(),
		Templates:     tmpl,
		SimulatorID:   id,
		Server:        e.cfg.Server.URL,
		Theme:         e.cfg.Viewer.Theme,
		Log:           e.log,
		ConfigUpdates: updates,
	})
}

// createSimulator creates a namespace with a server-generated name and
// returns that name as the simulator id.
func createSimulator(ctx context.Context, c *simclient.Client) (string, error) {
	ns, err := c.Namespaces().Apply(ctx, simclient.NewNamespace(""))
	if err != nil {
		return "", fmt.Errorf("create simulator: %w", err)
	}
	if ns == nil || ns.GetName() == "" {
		return "", fmt.Errorf("create simulator: simulator returned no namespace")
	}
	return ns.GetName(), nil
}

func printYAML(w io.Writer, v interface{}) error {
	data, err := yaml.Marshal(v)
	if err != nil {
		return err
	}
	_, err = w.Write(data)
	return err
}

// asList wraps objects the way kubectl prints collections.
func asList(items []store.Object) map[string]interface{} {
	out := make([]interface{}, 0, len(items))
	for _, it := range items {
		out = append(out, it.Object)
	}
	return map[string]interface{}{"apiVersion": "v1", "kind": "List", "items": out}
}

func readObject(path string) (*unstructured.Unstructured, error) {
	var data []byte
	var err error
	if path == "-" {
		data, err = io.ReadAll(os.Stdin)
	} else {
		data, err = os.ReadFile(path)
	}
	if err != nil {
		return nil, err
	}
	obj := map[string]interface{}{}
	if err := yaml.Unmarshal(data, &obj); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	if len(obj) == 0 {
		return nil, fmt.Errorf("parse %s: empty object", path)
	}
	return &unstructured.Unstructured{Object: obj}, nil
}
