// Package gui is the Fyne front end: two display panels side by side, each
// browsing its own folder.
package gui

import (
	"path/filepath"
	"time"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/dialog"

	"twinview/internal/browse"
	"twinview/internal/config"
	"twinview/internal/logger"
	"twinview/internal/panel"
	"twinview/internal/viewport"
)

type Options struct {
	Starter       panel.Starter
	Recent        *config.Recent
	Logger        logger.Logger
	Dispatch      panel.Dispatcher
	Interpolation viewport.Interpolation
	Filter        string
	// Watch re-lists a side when files appear or disappear in its folder.
	Watch         bool
	WatchDebounce time.Duration
}

type sideState struct {
	seq   browse.Sequence
	panel *panel.Panel
}

// Shell wires the panels, folder sequences and widgets together. All methods
// run on the UI goroutine.
type Shell struct {
	window   fyne.Window
	view     *View
	sides    [2]*sideState
	recent   *config.Recent
	watcher  *browse.Watcher
	filter   *browse.Filter
	dispatch panel.Dispatcher
	logger   logger.Logger
}

func NewShell(window fyne.Window, opts Options) (*Shell, error) {
	log := opts.Logger
	if log == nil {
		log = logger.NewNop()
	}
	dispatch := opts.Dispatch
	if dispatch == nil {
		dispatch = fyne.Do
	}

	s := &Shell{
		window:   window,
		recent:   opts.Recent,
		dispatch: dispatch,
		logger:   log,
	}
	for _, side := range sides {
		p := panel.New(side.String(), opts.Starter, dispatch, log)
		p.SetInterpolation(opts.Interpolation)
		s.sides[side] = &sideState{panel: p}
	}
	s.view = NewView(window, s.sides[Left].panel, s.sides[Right].panel)
	s.view.Controls().SetInterpolation(opts.Interpolation)

	if opts.Watch {
		w, err := browse.NewWatcher(opts.WatchDebounce, func(dir string) {
			s.dispatch(func() { s.folderChanged(dir) })
		}, log)
		if err != nil {
			log.Warning("Shell", "folder watching disabled", map[string]interface{}{
				"error": err.Error(),
			})
		} else {
			s.watcher = w
		}
	}

	if opts.Filter != "" {
		s.view.Controls().SetFilter(opts.Filter)
		s.SetFilter(opts.Filter)
	}

	s.setupEventHandlers()
	s.updateRecent()
	s.update()
	return s, nil
}

func (s *Shell) setupEventHandlers() {
	for _, side := range sides {
		side := side
		header := s.view.Header(side)
		header.SetOpenHandler(func() { s.chooseFolder(side) })
		header.SetRecentHandler(func(dir string) { _ = s.OpenFolder(side, dir) })

		p := s.sides[side].panel
		repaint := p.OnChange
		p.OnChange = func() {
			if repaint != nil {
				repaint()
			}
			s.updateIdentical()
		}
		p.OnPixelInfo = func(info *panel.PixelInfo) {
			s.view.Status().SetPixel(side.Short(), info)
		}
		p.OnLoadError = func(msg string) {
			s.view.Status().SetPixel(side.Short(), nil)
		}
	}

	s.view.Controls().SetFilterChangeHandler(func(pattern string) { _ = s.SetFilter(pattern) })
	s.view.Controls().SetInterpolationChangeHandler(s.SetInterpolation)

	if s.window != nil {
		s.window.Canvas().SetOnTypedKey(func(ev *fyne.KeyEvent) {
			s.HandleKey(ev.Name)
		})
	}
}

func (s *Shell) Content() fyne.CanvasObject {
	return s.view.GetContainer()
}

func (s *Shell) View() *View {
	return s.view
}

func (s *Shell) Panel(side Side) *panel.Panel {
	return s.sides[side].panel
}

func (s *Shell) Sequence(side Side) *browse.Sequence {
	return &s.sides[side].seq
}

func (s *Shell) chooseFolder(side Side) {
	d := dialog.NewFolderOpen(func(uri fyne.ListableURI, err error) {
		if err != nil {
			dialog.ShowError(err, s.window)
			return
		}
		if uri == nil {
			return
		}
		_ = s.OpenFolder(side, uri.Path())
	}, s.window)
	d.Show()
}

// OpenFolder lists dir on side and shows its first image.
func (s *Shell) OpenFolder(side Side, dir string) error {
	dir = filepath.Clean(dir)
	files, err := browse.ListImages(dir)
	if err != nil {
		s.logger.Error("Shell", err, map[string]interface{}{
			"side": side.String(),
			"dir":  dir,
		})
		if s.window != nil {
			dialog.ShowError(err, s.window)
		}
		return err
	}

	st := s.sides[side]
	if s.watcher != nil {
		if old := st.seq.Dir(); old != "" {
			s.watcher.Unwatch(old)
		}
		if err := s.watcher.Watch(dir); err != nil {
			s.logger.Warning("Shell", "cannot watch folder", map[string]interface{}{
				"dir":   dir,
				"error": err.Error(),
			})
		}
	}

	st.seq.SetFilter(s.filter)
	st.seq.Open(dir, files)
	s.view.Header(side).SetTitle(st.seq.Title(side.DefaultTitle()))

	if s.recent != nil {
		s.recent.Add(dir)
		s.updateRecent()
	}

	s.logger.Info("Shell", "folder opened", map[string]interface{}{
		"side":   side.String(),
		"dir":    dir,
		"images": len(files),
		"shown":  st.seq.Len(),
	})
	s.reload(side, true)
	s.update()
	return nil
}

// HandleKey applies the navigation keys and reports whether anything moved.
func (s *Shell) HandleKey(key fyne.KeyName) bool {
	left, right := &s.sides[Left].seq, &s.sides[Right].seq

	var changed bool
	switch key {
	case fyne.KeyRight:
		changed = browse.StepBoth(left, right, 1)
	case fyne.KeyLeft:
		changed = browse.StepBoth(left, right, -1)
	case fyne.KeyD:
		changed = left.Next()
	case fyne.KeyA:
		changed = left.Prev()
	case fyne.KeyL:
		changed = right.Next()
	case fyne.KeyJ:
		changed = right.Prev()
	default:
		return false
	}

	if changed {
		s.update()
	}
	return changed
}

// SetFilter applies a file name pattern to both sides. An invalid pattern
// is reported and the previous filter stays active.
func (s *Shell) SetFilter(pattern string) error {
	f, err := browse.NewFilter(pattern)
	if err != nil {
		s.view.Controls().SetFilterError("Invalid pattern")
		s.logger.Debug("Shell", "filter rejected", map[string]interface{}{
			"pattern": pattern,
			"error":   err.Error(),
		})
		return err
	}
	s.view.Controls().SetFilterError("")

	s.filter = f
	for _, st := range s.sides {
		st.seq.SetFilter(f)
	}
	s.update()
	return nil
}

func (s *Shell) SetInterpolation(mode viewport.Interpolation) {
	for _, st := range s.sides {
		st.panel.SetInterpolation(mode)
	}
}

func (s *Shell) folderChanged(dir string) {
	for _, side := range sides {
		st := s.sides[side]
		if st.seq.Dir() != dir {
			continue
		}
		files, err := browse.ListImages(dir)
		if err != nil {
			s.logger.Warning("Shell", "folder refresh failed", map[string]interface{}{
				"dir":   dir,
				"error": err.Error(),
			})
			files = nil
		}
		st.seq.Refresh(files)
	}
	s.update()
}

// update reloads any side whose current file changed and refreshes labels.
func (s *Shell) update() {
	for _, side := range sides {
		s.reload(side, false)
	}
	s.view.Status().SetPosition(browse.Status(&s.sides[Left].seq, &s.sides[Right].seq))
	s.updateIdentical()
}

func (s *Shell) reload(side Side, force bool) {
	st := s.sides[side]
	current := st.seq.Current()

	name := ""
	if current != "" {
		name = filepath.Base(current)
	}
	s.view.Header(side).SetFileName(name)

	if force || current != st.panel.Path() {
		st.panel.Load(current)
	}
}

func (s *Shell) updateRecent() {
	if s.recent == nil {
		return
	}
	dirs := s.recent.Available()
	for _, side := range sides {
		s.view.Header(side).SetRecent(dirs)
	}
}

// Identical reports whether both sides show images with the same pixels.
func (s *Shell) Identical() bool {
	a, okA := s.sides[Left].panel.Digest()
	b, okB := s.sides[Right].panel.Digest()
	if !okA || !okB || a != b {
		return false
	}
	return sameShape(s.sides[Left].panel, s.sides[Right].panel)
}

func sameShape(a, b *panel.Panel) bool {
	x, y := a.Image(), b.Image()
	return x.Layout == y.Layout && x.Width == y.Width && x.Height == y.Height
}

func (s *Shell) updateIdentical() {
	s.view.Status().SetIdentical(s.Identical())
}

// Close makes outstanding loads stale. It runs on the UI goroutine when the
// window closes.
func (s *Shell) Close() {
	for _, st := range s.sides {
		st.panel.Close()
	}
}

// Shutdown stops folder watching. Safe from any goroutine.
func (s *Shell) Shutdown() {
	if s.watcher == nil {
		return
	}
	if err := s.watcher.Close(); err != nil {
		s.logger.Debug("Shell", "watcher close failed", map[string]interface{}{
			"error": err.Error(),
		})
	}
}
