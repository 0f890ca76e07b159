package components

import (
	"fmt"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"twinview/internal/panel"
)

type StatusBar struct {
	container      *fyne.Container
	positionLabel  *widget.Label
	pixelLabel     *widget.Label
	identicalLabel *widget.Label
}

func NewStatusBar() *StatusBar {
	positionLabel := widget.NewLabel("0 / 0")
	positionLabel.TextStyle = fyne.TextStyle{Bold: true}
	pixelLabel := widget.NewLabel("")
	pixelLabel.TextStyle = fyne.TextStyle{Monospace: true}
	identicalLabel := widget.NewLabel("")
	identicalLabel.Importance = widget.SuccessImportance

	hint := widget.NewLabel(KeyHint)
	hint.Importance = widget.LowImportance

	mainContainer := container.NewVBox(
		container.NewBorder(
			nil, nil,
			positionLabel,
			identicalLabel,
			pixelLabel,
		),
		hint,
	)

	return &StatusBar{
		container:      mainContainer,
		positionLabel:  positionLabel,
		pixelLabel:     pixelLabel,
		identicalLabel: identicalLabel,
	}
}

func (sb *StatusBar) GetContainer() *fyne.Container {
	return sb.container
}

func (sb *StatusBar) SetPosition(status string) {
	sb.positionLabel.SetText(status)
}

// SetPixel shows the pixel under the pointer of the named side; nil clears.
func (sb *StatusBar) SetPixel(side string, info *panel.PixelInfo) {
	sb.pixelLabel.SetText(FormatPixel(side, info))
}

func (sb *StatusBar) SetIdentical(identical bool) {
	if identical {
		sb.identicalLabel.SetText("Identical pixels")
	} else {
		sb.identicalLabel.SetText("")
	}
}

func FormatPixel(side string, info *panel.PixelInfo) string {
	if info == nil {
		return ""
	}
	switch info.Channels {
	case 1:
		return fmt.Sprintf("%s (%d, %d)  V:%d", side, info.X, info.Y, info.R)
	case 4:
		return fmt.Sprintf("%s (%d, %d)  R:%d G:%d B:%d A:%d", side, info.X, info.Y, info.R, info.G, info.B, info.A)
	default:
		return fmt.Sprintf("%s (%d, %d)  R:%d G:%d B:%d", side, info.X, info.Y, info.R, info.G, info.B)
	}
}
