package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"taskdeck/internal/focus"
	"taskdeck/internal/locale"
	"taskdeck/internal/model"
	"taskdeck/internal/store"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/list"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"
)

type mode int

const (
	modeList mode = iota
	modeForm
	modeConfirm
)

type actionSource int

const (
	sourceList actionSource = iota
	sourceForm
	sourceFocus
)

type snapshotMsg struct{ snap store.Snapshot }

type changedMsg struct{}

type actionDoneMsg struct {
	source actionSource
	err    error
}

// resyncMsg reloads the list after a burst of local changes settles. Only
// the message of the latest burst triggers a load.
type resyncMsg struct{ gen int }

// focusTickMsg carries the timer generation it was scheduled for. Ticks from
// an older generation (restarted, paused or stopped timer) are dropped.
type focusTickMsg struct{ gen int }

// Narrower terminals show the list and the detail pane one at a time.
const splitMinWidth = 80

type appModel struct {
	ctx  context.Context
	st   *store.Store
	tr   *locale.Translator
	log  *zap.Logger
	keys keyMap

	snaps   <-chan store.Snapshot
	changes <-chan struct{}

	snap         store.Snapshot
	autoSelected bool

	width  int
	height int

	list       list.Model
	mode       mode
	form       taskForm
	confirmID  int64
	detailOpen bool

	flash      string
	flashIsErr bool

	focusSession *focus.Session
	focusTaskID  int64
	focusGen     int
	tickEvery    time.Duration

	resyncGen   int
	resyncAfter time.Duration
}

// newAppModel subscribes to st and returns the model plus a function that
// drops the subscriptions.
func newAppModel(ctx context.Context, st *store.Store, opts Options) (appModel, func()) {
	tr := opts.Translator
	if tr == nil {
		tr = locale.MustNew(locale.LanguageEn)
	}
	log := opts.Logger
	if log == nil {
		log = zap.NewNop()
	}

	snaps := make(chan store.Snapshot, 1)
	cancelWatch := st.Watch(func(s store.Snapshot) {
		// Latest wins: a snapshot is the whole state, so dropping an unread
		// older one loses nothing.
		for {
			select {
			case snaps <- s:
				return
			default:
			}
			select {
			case <-snaps:
			default:
			}
		}
	})

	changes := make(chan struct{}, 1)
	cancelChanges := st.Changes().Subscribe(func() {
		select {
		case changes <- struct{}{}:
		default:
		}
	})

	m := appModel{
		ctx:          ctx,
		st:           st,
		tr:           tr,
		log:          log.Named("tui"),
		keys:         newKeyMap(tr),
		snaps:        snaps,
		changes:      changes,
		snap:         st.Snapshot(),
		list:         newList(nil),
		focusSession: focus.NewSession(opts.Focus),
		tickEvery:    time.Second,
		resyncAfter:  2 * time.Second,
	}
	return m, func() {
		cancelWatch()
		cancelChanges()
	}
}

func (m appModel) Init() tea.Cmd {
	return tea.Batch(m.loadCmd(), m.waitForSnapshot(), m.waitForChange())
}

func (m appModel) waitForSnapshot() tea.Cmd {
	ch, ctx := m.snaps, m.ctx
	return func() tea.Msg {
		select {
		case s := <-ch:
			return snapshotMsg{snap: s}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m appModel) waitForChange() tea.Cmd {
	ch, ctx := m.changes, m.ctx
	return func() tea.Msg {
		select {
		case <-ch:
			return changedMsg{}
		case <-ctx.Done():
			return nil
		}
	}
}

func (m appModel) loadCmd() tea.Cmd {
	st, ctx := m.st, m.ctx
	return func() tea.Msg {
		return actionDoneMsg{source: sourceList, err: st.Load(ctx)}
	}
}

func (m appModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.width, m.height = msg.Width, msg.Height
		m.resize()
		return m, nil

	case snapshotMsg:
		m.applySnapshot(msg.snap)
		return m, m.waitForSnapshot()

	case changedMsg:
		// Updates are merged on the service, so its copy can differ from
		// ours once other clients write too. Reload when changes settle.
		m.resyncGen++
		gen := m.resyncGen
		resync := tea.Tick(m.resyncAfter, func(time.Time) tea.Msg { return resyncMsg{gen: gen} })
		return m, tea.Batch(m.waitForChange(), resync)

	case resyncMsg:
		if msg.gen != m.resyncGen {
			return m, nil
		}
		m.log.Debug("resync after local changes", zap.Int("count", len(m.snap.Tasks())))
		return m, m.loadCmd()

	case actionDoneMsg:
		return m.handleActionDone(msg)

	case focusTickMsg:
		return m.handleFocusTick(msg)

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return m, tea.Quit
		}
		switch m.mode {
		case modeForm:
			return m.updateForm(msg)
		case modeConfirm:
			return m.updateConfirm(msg)
		default:
			return m.updateList(msg)
		}
	}

	if m.mode == modeForm {
		var cmd tea.Cmd
		m.form, cmd = m.form.update(msg)
		return m, cmd
	}
	return m, nil
}

func (m *appModel) applySnapshot(s store.Snapshot) {
	m.snap = s
	items := taskItems(s.FilteredTasks(), m.tr)
	m.list.SetItems(items)
	if i := indexOfTask(items, s.SelectedTaskID()); i >= 0 {
		m.list.Select(i)
	}

	// Select the first task once, after the first successful load.
	if !m.autoSelected && !s.Loading() && len(items) > 0 {
		m.autoSelected = true
		if s.SelectedTaskID() == 0 {
			m.st.Select(items[0].(taskItem).task.ID)
		}
	}
}

func (m appModel) handleActionDone(msg actionDoneMsg) (tea.Model, tea.Cmd) {
	if msg.err != nil {
		m.log.Debug("action failed", zap.Error(msg.err))
		if msg.source == sourceForm && m.mode == modeForm {
			m.form.err = m.storeErrorText(msg.err)
		}
		return m, nil
	}
	if msg.source == sourceForm && m.mode == modeForm {
		m.mode = modeList
	}
	return m, nil
}

func (m appModel) updateList(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	m.flash = ""
	k := m.keys

	switch {
	case key.Matches(msg, k.Quit):
		return m, tea.Quit

	case key.Matches(msg, k.Back):
		if m.detailOpen {
			m.detailOpen = false
			return m, nil
		}
		m.st.ClearSelection()
		return m, nil

	case key.Matches(msg, k.Open):
		if t, ok := m.cursorTask(); ok {
			m.st.Select(t.ID)
			m.detailOpen = true
		}
		return m, nil

	case key.Matches(msg, k.Add):
		m.openForm(nil)
		return m, nil

	case key.Matches(msg, k.Edit):
		if t, ok := m.cursorTask(); ok {
			m.openForm(&t)
		}
		return m, nil

	case key.Matches(msg, k.Delete):
		if t, ok := m.cursorTask(); ok {
			m.confirmID = t.ID
			m.mode = modeConfirm
		}
		return m, nil

	case key.Matches(msg, k.Status):
		if t, ok := m.cursorTask(); ok {
			st, ctx, next := m.st, m.ctx, t.Status.Next()
			return m, func() tea.Msg {
				_, err := st.UpdateStatus(ctx, t.ID, next)
				return actionDoneMsg{source: sourceList, err: err}
			}
		}
		return m, nil

	case key.Matches(msg, k.Complete):
		if t, ok := m.cursorTask(); ok {
			st, ctx := m.st, m.ctx
			done := t.Status != model.StatusCompleted
			return m, func() tea.Msg {
				_, err := st.UpdateFields(ctx, t.ID, model.Patch{Completed: &done})
				return actionDoneMsg{source: sourceList, err: err}
			}
		}
		return m, nil

	case key.Matches(msg, k.Filter):
		m.st.SetFilter(m.snap.Filter().Next())
		return m, nil

	case key.Matches(msg, k.Reload):
		return m, m.loadCmd()

	case key.Matches(msg, k.Focus):
		return m, m.startFocus()

	case key.Matches(msg, k.Pause):
		return m, m.toggleFocusPause()

	case key.Matches(msg, k.Stop):
		m.stopFocus()
		return m, nil
	}

	var cmd tea.Cmd
	m.list, cmd = m.list.Update(msg)
	if t, ok := m.cursorTask(); ok && t.ID != m.snap.SelectedTaskID() {
		m.st.Select(t.ID)
	}
	return m, cmd
}

func (m *appModel) openForm(editing *model.Task) {
	m.form = newTaskForm(m.tr, editing)
	m.form.setWidth(modalBodyWidth(m.width))
	m.mode = modeForm
}

func (m appModel) updateForm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "esc", "ctrl+g":
		m.mode = modeList
		return m, nil
	case "ctrl+s":
		return m.submitForm()
	}
	var cmd tea.Cmd
	m.form, cmd = m.form.update(msg)
	return m, cmd
}

func (m appModel) submitForm() (tea.Model, tea.Cmd) {
	st, ctx := m.st, m.ctx

	if m.form.editing == nil {
		draft, err := m.form.draft()
		if err != nil {
			m.form.err = m.formErrorText(err)
			return m, nil
		}
		m.form.err = ""
		return m, func() tea.Msg {
			_, err := st.Add(ctx, draft)
			return actionDoneMsg{source: sourceForm, err: err}
		}
	}

	p, err := m.form.patch()
	if err != nil {
		m.form.err = m.formErrorText(err)
		return m, nil
	}
	m.form.err = ""
	if p.IsEmpty() {
		m.mode = modeList
		return m, nil
	}
	id := m.form.editing.ID
	return m, func() tea.Msg {
		_, err := st.UpdateFields(ctx, id, p)
		return actionDoneMsg{source: sourceForm, err: err}
	}
}

func (m appModel) updateConfirm(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch msg.String() {
	case "y", "Y", "enter":
		m.mode = modeList
		st, ctx, id := m.st, m.ctx, m.confirmID
		if id == m.focusTaskID {
			m.stopFocus()
		}
		return m, func() tea.Msg {
			return actionDoneMsg{source: sourceList, err: st.Remove(ctx, id)}
		}
	case "n", "N", "esc", "ctrl+g", "q":
		m.mode = modeList
	}
	return m, nil
}

// cursorTask is the task under the list cursor.
func (m appModel) cursorTask() (model.Task, bool) {
	it, ok := m.list.SelectedItem().(taskItem)
	if !ok {
		return model.Task{}, false
	}
	return it.task, true
}

func (m *appModel) startFocus() tea.Cmd {
	t, ok := m.snap.SelectedTask()
	if !ok {
		m.setFlash(m.tr.T("focus_no_task"), true)
		return nil
	}
	m.focusTaskID = t.ID
	m.focusSession.Start()
	m.focusGen++
	return m.focusTick()
}

func (m *appModel) toggleFocusPause() tea.Cmd {
	if m.focusSession.State() == focus.StateIdle {
		return nil
	}
	m.focusGen++
	if m.focusSession.TogglePause() {
		return nil
	}
	return m.focusTick()
}

func (m *appModel) stopFocus() {
	m.focusSession.Stop()
	m.focusGen++
}

func (m appModel) focusTick() tea.Cmd {
	gen := m.focusGen
	return tea.Tick(m.tickEvery, func(time.Time) tea.Msg { return focusTickMsg{gen: gen} })
}

func (m appModel) handleFocusTick(msg focusTickMsg) (tea.Model, tea.Cmd) {
	if msg.gen != m.focusGen {
		return m, nil
	}
	ev := m.focusSession.Tick()

	var cmds []tea.Cmd
	switch ev {
	case focus.EventWorkDone:
		m.setFlash(m.tr.T("focus_work_done"), false)
	case focus.EventBreakDone:
		m.setFlash(m.tr.T("focus_break_done"), false)
	case focus.EventFinished:
		m.setFlash(m.tr.T("focus_finished"), false)
	}
	if ev == focus.EventWorkDone || ev == focus.EventFinished {
		st, ctx, id := m.st, m.ctx, m.focusTaskID
		cmds = append(cmds, func() tea.Msg {
			_, err := st.RecordFocusSession(ctx, id)
			return actionDoneMsg{source: sourceFocus, err: err}
		})
	}
	if m.focusSession.State() != focus.StateIdle && !m.focusSession.Paused() {
		cmds = append(cmds, m.focusTick())
	}
	return m, tea.Batch(cmds...)
}

func (m *appModel) setFlash(s string, isErr bool) {
	m.flash = s
	m.flashIsErr = isErr
}

var storeMessageIDs = map[string]string{
	store.MsgLoadFailed:   "err_load",
	store.MsgCreateFailed: "err_create",
	store.MsgUpdateFailed: "err_update",
	store.MsgStatusFailed: "err_status",
	store.MsgDeleteFailed: "err_delete",
	store.MsgFocusFailed:  "err_focus",
}

// localizeStoreMessage translates one of the store's fixed failure messages.
func (m appModel) localizeStoreMessage(s string) string {
	if id, ok := storeMessageIDs[s]; ok {
		return m.tr.T(id)
	}
	return s
}

func (m appModel) storeErrorText(err error) string {
	var ae *store.ActionError
	if errors.As(err, &ae) {
		return m.localizeStoreMessage(ae.Message)
	}
	return err.Error()
}

func (m appModel) formErrorText(err error) string {
	switch {
	case errors.Is(err, errTitleRequired):
		return m.tr.T("title_required")
	case errors.Is(err, errInvalidDue):
		return m.tr.T("invalid_due")
	default:
		return err.Error()
	}
}

func (m *appModel) split() bool { return m.width >= splitMinWidth }

func (m *appModel) listWidth() int {
	if m.split() {
		return m.width * 2 / 5
	}
	return m.width
}

func (m *appModel) bodyHeight() int {
	h := m.height - 3 // header, status line, help
	if h < 1 {
		h = 1
	}
	return h
}

func (m *appModel) resize() {
	m.list.SetSize(m.listWidth(), m.bodyHeight())
	if m.mode == modeForm {
		m.form.setWidth(modalBodyWidth(m.width))
	}
}

func (m appModel) View() string {
	if m.width == 0 {
		return m.tr.T("loading")
	}

	header := m.renderHeader()
	body := m.renderBody()
	status := m.renderStatusLine()
	help := styleMuted().Render(truncateToWidth(renderHelp(m.keys.ShortHelp()), m.width))
	screen := lipgloss.JoinVertical(lipgloss.Left, header, body, status, help)

	switch m.mode {
	case modeForm:
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, m.form.view(m.tr, m.width))
	case modeConfirm:
		title := ""
		for _, t := range m.snap.Tasks() {
			if t.ID == m.confirmID {
				title = t.Title
			}
		}
		modal := renderConfirmModal(m.width, m.tr.T("help_delete"),
			m.tr.Tf("confirm_delete", map[string]any{"Title": title}), m.tr.T("confirm_hint"))
		return lipgloss.Place(m.width, m.height, lipgloss.Center, lipgloss.Center, modal)
	}
	return screen
}

func (m appModel) renderHeader() string {
	parts := []string{
		styleHeader().Render(m.tr.T("app_title")),
		styleMuted().Render(fmt.Sprintf("%s: %s", m.tr.T("filter_label"), m.tr.Filter(m.snap.Filter()))),
		styleMuted().Render(fmt.Sprintf("%d/%d", len(m.snap.FilteredTasks()), len(m.snap.Tasks()))),
	}
	if m.snap.Loading() {
		parts = append(parts, styleMuted().Render(m.tr.T("loading")))
	}
	if badge := m.focusBadge(); badge != "" {
		parts = append(parts, badge)
	}
	return truncateToWidth(strings.Join(parts, "  "), m.width)
}

func (m appModel) renderBody() string {
	h := m.bodyHeight()
	var listView string
	if len(m.list.Items()) == 0 {
		listView = lipgloss.NewStyle().Width(m.listWidth()).Height(h).Render(styleMuted().Render(m.tr.T("empty_list")))
	} else {
		listView = lipgloss.NewStyle().Width(m.listWidth()).Height(h).MaxHeight(h).Render(m.list.View())
	}

	if !m.split() {
		if m.detailOpen {
			return lipgloss.NewStyle().Width(m.width).Height(h).MaxHeight(h).Render(m.renderDetail(m.width))
		}
		return listView
	}

	detailW := m.width - m.listWidth() - 3
	detail := lipgloss.NewStyle().
		Width(detailW).
		Height(h).
		MaxHeight(h).
		BorderStyle(lipgloss.NormalBorder()).
		BorderLeft(true).
		BorderForeground(colorBorder).
		PaddingLeft(1).
		Render(m.renderDetail(detailW))
	return lipgloss.JoinHorizontal(lipgloss.Top, listView, detail)
}

func (m appModel) renderStatusLine() string {
	switch {
	case m.snap.Error() != "":
		return styleError().Render(truncateToWidth(m.localizeStoreMessage(m.snap.Error()), m.width))
	case m.flash != "" && m.flashIsErr:
		return styleError().Render(truncateToWidth(m.flash, m.width))
	case m.flash != "":
		return styleMuted().Render(truncateToWidth(m.flash, m.width))
	}
	return ""
}
