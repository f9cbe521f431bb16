// Package console is the interactive terminal view over the entity stores.
// Store actions run as tea commands; their results and the stores' change
// signals come back as messages.
package console

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea/v2"
	"github.com/charmbracelet/lipgloss/v2"
	"github.com/charmbracelet/x/ansi"
	"github.com/go-logr/logr"

	"github.com/sttts/simconsole/internal/overlay"
	"github.com/sttts/simconsole/pkg/appconfig"
	"github.com/sttts/simconsole/pkg/resources"
	"github.com/sttts/simconsole/pkg/store"
	"github.com/sttts/simconsole/pkg/templates"
)

const confirmWidth = 56

// Options wires the console to its stores.
type Options struct {
	Stores      *store.Set
	Templates   *templates.Templates
	SimulatorID string
	Server      string
	Theme       string
	Log         logr.Logger
	// ConfigUpdates delivers reloaded configuration; the theme is taken over.
	ConfigUpdates <-chan *appconfig.Config
}

// actionDoneMsg reports a finished store action.
type actionDoneMsg struct {
	kind  resources.Kind
	op    string
	name  string
	isNew bool
	err   error
}

// storeChangedMsg is sent when a store signalled a committed change.
type storeChangedMsg struct {
	kind resources.Kind
}

// configChangedMsg carries a reloaded configuration file.
type configChangedMsg struct {
	cfg *appconfig.Config
}

// App is the root model.
type App struct {
	ctx  context.Context
	opts Options
	log  logr.Logger

	kinds  []resources.Kind
	active int
	cursor map[string]int
	mode   detailMode
	offset int

	width, height int

	confirm     *DeleteConfirmModel
	confirmKind resources.Kind

	busy      int
	status    string
	statusErr bool
}

// New returns the console model. Store actions run with ctx.
func New(ctx context.Context, opts Options) *App {
	if opts.Templates == nil {
		opts.Templates, _ = templates.Load(func(string) (string, bool) { return "", false })
	}
	log := opts.Log
	if log.GetSink() == nil {
		log = logr.Discard()
	}
	return &App{
		ctx:    ctx,
		opts:   opts,
		log:    log.WithName("console"),
		kinds:  resources.SimulatorKinds(),
		cursor: map[string]int{},
	}
}

// Run starts the console and blocks until the user quits or ctx ends.
func Run(ctx context.Context, opts Options) error {
	app := New(ctx, opts)
	p := tea.NewProgram(app, tea.WithAltScreen(), tea.WithContext(ctx))
	_, err := p.Run()
	return err
}

func (a *App) Init() tea.Cmd {
	cmds := make([]tea.Cmd, 0, 2*len(a.kinds))
	for _, k := range a.kinds {
		st := a.store(k)
		cmds = append(cmds, a.run(k, "list", "", false, func(ctx context.Context) error {
			return st.List(ctx, a.opts.SimulatorID)
		}))
		cmds = append(cmds, a.watch(k))
	}
	if a.opts.ConfigUpdates != nil {
		cmds = append(cmds, a.watchConfig())
	}
	return tea.Batch(cmds...)
}

func (a *App) store(k resources.Kind) *store.Store[store.Object] {
	st, err := a.opts.Stores.For(k)
	if err != nil {
		panic(err) // only simulator kinds are shown
	}
	return st
}

func (a *App) kind() resources.Kind { return a.kinds[a.active] }

// run wraps a store action into a command reporting back with actionDoneMsg.
func (a *App) run(k resources.Kind, op, name string, isNew bool, fn func(context.Context) error) tea.Cmd {
	a.busy++
	ctx := a.ctx
	return func() tea.Msg {
		return actionDoneMsg{kind: k, op: op, name: name, isNew: isNew, err: fn(ctx)}
	}
}

// watch waits for the next change signal of k's store.
func (a *App) watch(k resources.Kind) tea.Cmd {
	ch := a.store(k).Changed()
	ctx := a.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return storeChangedMsg{kind: k}
		case <-ctx.Done():
			return nil
		}
	}
}

func (a *App) watchConfig() tea.Cmd {
	ch := a.opts.ConfigUpdates
	return func() tea.Msg {
		cfg, ok := <-ch
		if !ok {
			return nil
		}
		return configChangedMsg{cfg: cfg}
	}
}

func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.width = max(40, msg.Width)
		a.height = max(8, msg.Height)
		return a, nil
	case storeChangedMsg:
		a.clampCursor(msg.kind)
		return a, a.watch(msg.kind)
	case configChangedMsg:
		if theme := msg.cfg.Viewer.Theme; theme != "" && theme != a.opts.Theme {
			a.opts.Theme = theme
			a.log.Info("theme changed", "theme", theme)
			a.setStatus("theme "+theme, false)
		}
		return a, a.watchConfig()
	case actionDoneMsg:
		a.busy = max(0, a.busy-1)
		a.finish(msg)
		return a, nil
	case DeleteConfirmMsg:
		if a.confirm == nil {
			return a, nil
		}
		k := a.confirmKind
		_, name := a.confirm.Target()
		a.confirm = nil
		if !msg.Confirm {
			a.setStatus("delete cancelled", false)
			return a, nil
		}
		st := a.store(k)
		return a, a.run(k, "delete", name, false, func(ctx context.Context) error {
			return st.Delete(ctx, name, a.opts.SimulatorID)
		})
	case tea.KeyMsg:
		if a.confirm != nil {
			_, cmd := a.confirm.Update(msg)
			return a, cmd
		}
		return a, a.handleKey(msg)
	}
	return a, nil
}

func (a *App) handleKey(key tea.KeyMsg) tea.Cmd {
	k := a.kind()
	st := a.store(k)
	id := a.opts.SimulatorID

	switch key.String() {
	case "q", "ctrl+c":
		return tea.Quit
	case "tab":
		a.active = (a.active + 1) % len(a.kinds)
		a.offset = 0
	case "shift+tab":
		a.active = (a.active + len(a.kinds) - 1) % len(a.kinds)
		a.offset = 0
	case "up":
		a.moveCursor(-1)
	case "down":
		a.moveCursor(1)
	case "pgup":
		a.offset = max(0, a.offset-a.detailHeight()/2)
	case "pgdown":
		a.offset += a.detailHeight() / 2
	case "enter":
		if obj := a.current(); obj != nil {
			st.Select(obj, false)
			a.offset = 0
		}
	case "n":
		obj, err := a.opts.Templates.For(k, id)
		if err != nil {
			a.setStatus(err.Error(), true)
			return nil
		}
		st.Select(obj, true)
		a.offset = 0
	case "a":
		sel := st.Selected()
		if sel == nil {
			a.setStatus("nothing selected to apply", true)
			return nil
		}
		obj := sel.Item
		return a.run(k, "apply", obj.GetName(), sel.IsNew, func(ctx context.Context) error {
			return st.Apply(ctx, obj, id)
		})
	case "d":
		name := ""
		if sel := st.Selected(); sel != nil && !sel.IsNew {
			name = sel.Item.GetName()
		} else if obj := a.current(); obj != nil {
			name = obj.GetName()
		}
		if name == "" {
			a.setStatus("nothing to delete", true)
			return nil
		}
		a.confirm = NewDeleteConfirmModel(k.Short, name)
		a.confirmKind = k
	case "r":
		return a.run(k, "relist", "", false, func(ctx context.Context) error {
			return st.List(ctx, id)
		})
	case "f":
		if st.Selected() == nil {
			a.setStatus("nothing selected to refresh", true)
			return nil
		}
		return a.run(k, "refresh", "", false, func(ctx context.Context) error {
			return st.RefreshSelected(ctx, id)
		})
	case "t":
		if a.mode == detailYAML {
			a.mode = detailTree
		} else {
			a.mode = detailYAML
		}
		a.offset = 0
	case "esc":
		st.ResetSelected()
		a.offset = 0
	}
	return nil
}

func (a *App) finish(msg actionDoneMsg) {
	if msg.err != nil {
		a.log.Error(msg.err, "store action failed", "op", msg.op, "kind", msg.kind.Short, "name", msg.name)
		a.setStatus(fmt.Sprintf("%s %s: %v", msg.op, msg.kind.Short, msg.err), true)
		return
	}
	a.log.V(1).Info("store action done", "op", msg.op, "kind", msg.kind.Short, "name", msg.name)
	st := a.store(msg.kind)
	switch msg.op {
	case "apply":
		// the backend may rename new objects; drop the stale draft
		if sel := st.Selected(); msg.isNew && sel != nil && sel.IsNew {
			st.ResetSelected()
		}
		a.setStatus(fmt.Sprintf("applied %s %q", msg.kind.Short, msg.name), false)
	case "delete":
		if sel := st.Selected(); sel != nil && !sel.IsNew && sel.Item.GetName() == msg.name {
			st.ResetSelected()
		}
		a.setStatus(fmt.Sprintf("deleted %s %q", msg.kind.Short, msg.name), false)
	case "relist":
		a.setStatus(fmt.Sprintf("listed %d %s", a.count(msg.kind), msg.kind.Short), false)
	case "refresh":
		a.setStatus("selection refreshed", false)
	}
	a.clampCursor(msg.kind)
}

func (a *App) setStatus(s string, isErr bool) {
	a.status, a.statusErr = s, isErr
}

// objects returns the selectable rows of k in display order.
func (a *App) objects(k resources.Kind) []store.Object {
	if k.Name == resources.Pod.Name {
		idx := a.opts.Stores.Pods.Index()
		var out []store.Object
		for _, key := range idx.Keys() {
			out = append(out, idx.Pods(key)...)
		}
		return out
	}
	return a.store(k).Items()
}

func (a *App) count(k resources.Kind) int {
	if k.Name == resources.Pod.Name {
		return a.opts.Stores.Pods.Count()
	}
	return a.store(k).Count()
}

func (a *App) current() store.Object {
	objs := a.objects(a.kind())
	if len(objs) == 0 {
		return nil
	}
	return objs[min(a.cursor[a.kind().Name], len(objs)-1)]
}

func (a *App) moveCursor(delta int) {
	k := a.kind()
	n := len(a.objects(k))
	if n == 0 {
		return
	}
	a.cursor[k.Name] = min(n-1, max(0, a.cursor[k.Name]+delta))
}

func (a *App) clampCursor(k resources.Kind) {
	n := len(a.objects(k))
	a.cursor[k.Name] = min(max(0, n-1), a.cursor[k.Name])
}

func (a *App) detailHeight() int { return max(1, a.height-5) }

func (a *App) View() (string, *tea.Cursor) {
	if a.width == 0 || a.height == 0 {
		return "", nil
	}
	contentHeight := a.detailHeight()
	leftWidth := a.width * 2 / 5
	rightWidth := a.width - leftWidth
	left := PanelFrameStyle.Render(fit(a.renderList(contentHeight), 0, leftWidth-2, contentHeight))
	right := PanelFrameStyle.Render(fit(a.renderDetail(), a.offset, rightWidth-2, contentHeight))
	body := lipgloss.JoinHorizontal(lipgloss.Top, left, right)

	screen := lipgloss.JoinVertical(lipgloss.Left,
		a.renderTabs(),
		body,
		a.renderStatus(),
		a.renderFooter(),
	)
	if a.confirm != nil {
		a.confirm.SetWidth(min(a.width, confirmWidth))
		screen = overlay.Composite(a.confirm.View(), screen, overlay.Center, overlay.Center, 0, 0)
	}
	return screen, nil
}

func (a *App) renderTabs() string {
	var b strings.Builder
	for i, k := range a.kinds {
		label := fmt.Sprintf("%s %d", k.Short, a.count(k))
		if i == a.active {
			b.WriteString(TabActiveStyle.Render(label))
		} else {
			b.WriteString(TabStyle.Render(label))
		}
	}
	b.WriteString(StatusStyle.Render(fmt.Sprintf("  simulator %s", a.opts.SimulatorID)))
	return ansi.Truncate(b.String(), a.width, "…")
}

func (a *App) renderList(height int) []string {
	k := a.kind()
	pinned := ""
	if sel := a.store(k).Selected(); sel != nil && !sel.IsNew {
		pinned = sel.Item.GetName()
	}
	cursor := a.cursor[k.Name]

	var lines []string
	cursorLine, i := 0, 0
	emit := func(obj store.Object) {
		label := "  " + obj.GetName()
		switch {
		case i == cursor:
			cursorLine = len(lines)
			label = PanelItemSelectedStyle.Render(label)
		case obj.GetName() == pinned:
			label = PanelItemPinnedStyle.Render(label)
		default:
			label = PanelItemStyle.Render(label)
		}
		lines = append(lines, label)
		i++
	}

	if k.Name == resources.Pod.Name {
		idx := a.opts.Stores.Pods.Index()
		for _, key := range idx.Keys() {
			pods := idx.Pods(key)
			lines = append(lines, GroupHeaderStyle.Render(fmt.Sprintf("%s (%d)", key, len(pods))))
			for _, p := range pods {
				emit(p)
			}
		}
	} else {
		for _, obj := range a.store(k).Items() {
			emit(obj)
		}
	}
	if len(lines) == 0 {
		return []string{StatusStyle.Render("  no " + k.Resource)}
	}
	if cursorLine >= height {
		lines = lines[cursorLine-height+1:]
	}
	return lines
}

func (a *App) renderDetail() []string {
	sel := a.store(a.kind()).Selected()
	if sel == nil {
		return []string{
			StatusStyle.Render("nothing selected"),
			"",
			StatusStyle.Render("enter: select  n: new from template"),
		}
	}
	title := fmt.Sprintf("%s %s [%s]", sel.ResourceKind, sel.Item.GetName(), a.mode)
	if sel.IsNew {
		title += " (new)"
	}
	lines := []string{GroupHeaderStyle.Render(title), ""}
	if a.mode == detailTree {
		return append(lines, renderTree(TreeNodes(sel.Item.Object))...)
	}
	body, err := renderYAML(sel.Item, a.opts.Theme)
	if err != nil {
		return append(lines, StatusErrorStyle.Render(err.Error()))
	}
	return append(lines, body...)
}

func (a *App) renderStatus() string {
	s := a.status
	if a.busy > 0 {
		s = "working… " + s
	}
	if a.statusErr {
		return ansi.Truncate(StatusErrorStyle.Render(s), a.width, "…")
	}
	return ansi.Truncate(StatusStyle.Render(s), a.width, "…")
}

var footerHints = [][2]string{
	{"Tab", "Kind"}, {"Enter", "Select"}, {"n", "New"}, {"a", "Apply"}, {"d", "Delete"},
	{"r", "Relist"}, {"f", "Refresh"}, {"t", "YAML/Tree"}, {"Esc", "Reset"}, {"q", "Quit"},
}

func (a *App) renderFooter() string {
	var b strings.Builder
	for _, h := range footerHints {
		b.WriteString(FunctionKeyStyle.Render(h[0]))
		b.WriteString(FunctionKeyDescriptionStyle.Render(h[1]))
	}
	return ansi.Truncate(b.String(), a.width, "")
}
