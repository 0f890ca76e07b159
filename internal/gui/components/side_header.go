package components

import (
	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/theme"
	"fyne.io/fyne/v2/widget"
)

// SideHeader is the folder picker and file name row above one panel.
type SideHeader struct {
	container    *fyne.Container
	openButton   *widget.Button
	recentButton *widget.Button
	fileLabel    *widget.Label

	recent []string

	openHandler   func()
	recentHandler func(dir string)
}

func NewSideHeader(title string) *SideHeader {
	sh := &SideHeader{}
	sh.openButton = widget.NewButtonWithIcon(title, theme.FolderOpenIcon(), sh.onOpen)
	sh.openButton.Importance = widget.HighImportance
	sh.recentButton = widget.NewButtonWithIcon("", theme.HistoryIcon(), sh.onRecent)

	sh.fileLabel = widget.NewLabel("")
	sh.fileLabel.Alignment = fyne.TextAlignCenter
	sh.fileLabel.Truncation = fyne.TextTruncateEllipsis

	sh.container = container.NewVBox(
		container.NewBorder(nil, nil, nil, sh.recentButton, sh.openButton),
		sh.fileLabel,
	)
	return sh
}

func (sh *SideHeader) GetContainer() *fyne.Container {
	return sh.container
}

func (sh *SideHeader) SetOpenHandler(handler func()) {
	sh.openHandler = handler
}

func (sh *SideHeader) SetRecentHandler(handler func(dir string)) {
	sh.recentHandler = handler
}

func (sh *SideHeader) SetTitle(title string) {
	sh.openButton.SetText(title)
}

func (sh *SideHeader) SetFileName(name string) {
	sh.fileLabel.SetText(name)
}

// SetRecent replaces the folders offered in the recent menu.
func (sh *SideHeader) SetRecent(dirs []string) {
	sh.recent = append([]string(nil), dirs...)
}

// RecentMenu builds the menu shown by the recent button.
func (sh *SideHeader) RecentMenu() *fyne.Menu {
	if len(sh.recent) == 0 {
		item := fyne.NewMenuItem("No Recent Folders", nil)
		item.Disabled = true
		return fyne.NewMenu("", item)
	}

	items := make([]*fyne.MenuItem, 0, len(sh.recent))
	for _, dir := range sh.recent {
		dir := dir
		items = append(items, fyne.NewMenuItem(dir, func() {
			if sh.recentHandler != nil {
				sh.recentHandler(dir)
			}
		}))
	}
	return fyne.NewMenu("Recent Folders", items...)
}

func (sh *SideHeader) onOpen() {
	if sh.openHandler != nil {
		sh.openHandler()
	}
}

func (sh *SideHeader) onRecent() {
	c := fyne.CurrentApp().Driver().CanvasForObject(sh.recentButton)
	if c == nil {
		return
	}
	widget.ShowPopUpMenuAtRelativePosition(sh.RecentMenu(), c,
		fyne.NewPos(0, sh.recentButton.Size().Height), sh.recentButton)
}
