package ui

import (
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"
)

// StatusLevel selects the color pair of the status line.
type StatusLevel int

const (
	StatusNeutral StatusLevel = iota
	StatusOK
	StatusWorking
	StatusWarning
	StatusError
)

type statusColors struct {
	bg   color.Color
	text color.Color
}

var statusPalette = map[StatusLevel]statusColors{
	StatusNeutral: {color.NRGBA{R: 128, G: 128, B: 128, A: 60}, color.White},
	StatusOK:      {color.NRGBA{R: 0, G: 255, B: 0, A: 100}, color.Black},
	StatusWorking: {color.NRGBA{R: 255, G: 165, B: 0, A: 100}, color.Black},
	StatusWarning: {color.NRGBA{R: 255, G: 165, B: 0, A: 100}, color.Black},
	StatusError:   {color.NRGBA{R: 255, G: 0, B: 0, A: 100}, color.White},
}

// StatusLabel is a custom widget that displays the connection status with
// a severity-colored background
type StatusLabel struct {
	widget.BaseWidget
	text      string
	bgColor   color.Color
	textColor color.Color
	textObj   *canvas.Text
	bgRect    *canvas.Rectangle
	container *fyne.Container
}

// NewStatusLabel creates a status label in the neutral state
func NewStatusLabel() *StatusLabel {
	colors := statusPalette[StatusNeutral]
	sl := &StatusLabel{
		text:      "",
		bgColor:   colors.bg,
		textColor: colors.text,
	}
	sl.ExtendBaseWidget(sl)
	return sl
}

// CreateRenderer implements fyne.Widget
func (sl *StatusLabel) CreateRenderer() fyne.WidgetRenderer {
	sl.textObj = canvas.NewText(sl.text, sl.textColor)
	sl.textObj.TextStyle = fyne.TextStyle{}
	sl.textObj.Alignment = fyne.TextAlignCenter

	sl.bgRect = canvas.NewRectangle(sl.bgColor)

	sl.container = container.NewStack(sl.bgRect, sl.textObj)

	return &statusLabelRenderer{
		label:     sl,
		container: sl.container,
		bgRect:    sl.bgRect,
		textObj:   sl.textObj,
	}
}

// SetStatus updates the text and recolors the label for the level
func (sl *StatusLabel) SetStatus(level StatusLevel, text string) {
	colors, ok := statusPalette[level]
	if !ok {
		colors = statusPalette[StatusNeutral]
	}
	sl.text = text
	sl.bgColor = colors.bg
	sl.textColor = colors.text
	if sl.textObj != nil {
		sl.textObj.Text = text
		sl.textObj.Color = colors.text
		sl.textObj.Refresh()
	}
	if sl.bgRect != nil {
		sl.bgRect.FillColor = colors.bg
		sl.bgRect.Refresh()
	}
}

// Text returns the current status line
func (sl *StatusLabel) Text() string {
	return sl.text
}

// statusLabelRenderer implements fyne.WidgetRenderer
type statusLabelRenderer struct {
	label     *StatusLabel
	container *fyne.Container
	bgRect    *canvas.Rectangle
	textObj   *canvas.Text
}

func (r *statusLabelRenderer) MinSize() fyne.Size {
	return r.container.MinSize()
}

func (r *statusLabelRenderer) Layout(size fyne.Size) {
	r.container.Resize(size)
}

func (r *statusLabelRenderer) Refresh() {
	r.textObj.Text = r.label.text
	r.textObj.Color = r.label.textColor
	r.bgRect.FillColor = r.label.bgColor
	r.textObj.Refresh()
	r.bgRect.Refresh()
}

func (r *statusLabelRenderer) Objects() []fyne.CanvasObject {
	return []fyne.CanvasObject{r.container}
}

func (r *statusLabelRenderer) Destroy() {
	// Nothing to destroy
}
