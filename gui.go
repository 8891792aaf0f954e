//go:build gui

package main

import (
	"fmt"
	"image/color"

	"fyne.io/fyne/v2"
	"fyne.io/fyne/v2/app"
	"fyne.io/fyne/v2/canvas"
	"fyne.io/fyne/v2/container"
	"fyne.io/fyne/v2/widget"

	"github.com/haasele/focus-reader/internal/library"
	"github.com/haasele/focus-reader/internal/logging"
	"github.com/haasele/focus-reader/internal/rsvp"
)

type guiReader struct {
	prog *program
	win  fyne.Window
	app  fyne.App

	sess    *session
	sched   *rsvp.Scheduler
	tracker *library.Tracker

	fontSize   float32
	tocVisible bool
	finished   bool

	wordContainer *fyne.Container
	statusLabel   *widget.Label
	tocPanel      *container.Split
	tocContainer  fyne.CanvasObject

	done   chan struct{}
	closed bool
}

func runFrontend(p *program) error {
	a := app.New()
	w := a.NewWindow("focus-reader")
	w.Resize(fyne.NewSize(900, 620))

	g := &guiReader{prog: p, app: a, win: w, fontSize: 72}
	if p.start != nil {
		g.openSession(p.start)
	} else {
		g.showLibrary()
	}

	w.ShowAndRun()
	return nil
}

// showLibrary fills the window with the saved-book picker.
func (g *guiReader) showLibrary() {
	books, err := g.prog.store.ListAll()
	if err != nil {
		g.win.SetContent(widget.NewLabel(fmt.Sprintf("Library unavailable: %v", err)))
		return
	}

	bookList := widget.NewList(
		func() int { return len(books) },
		func() fyne.CanvasObject {
			title := widget.NewLabel("Title")
			title.TextStyle.Bold = true
			return container.NewVBox(title, widget.NewLabel("Detail"))
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			b := books[id]
			vbox := obj.(*fyne.Container)
			vbox.Objects[0].(*widget.Label).SetText(b.Title)
			pct := 0
			if b.TotalWords > 0 {
				pct = b.LastReadIndex * 100 / b.TotalWords
			}
			author := b.Author
			if author == "" {
				author = "Unknown author"
			}
			vbox.Objects[1].(*widget.Label).SetText(
				fmt.Sprintf("%s · %d words · %d%% read", author, b.TotalWords, pct))
		},
	)
	bookList.OnSelected = func(id widget.ListItemID) {
		bookID := books[id].ID
		go func() {
			sess, err := openStored(g.prog.store, bookID, g.prog.fresh)
			fyne.Do(func() {
				if err != nil {
					logging.Error("open from library failed", "book", bookID, "err", err)
					bookList.UnselectAll()
					return
				}
				g.openSession(sess)
			})
		}()
	}

	header := widget.NewLabel("Library — click a book to read")
	header.Alignment = fyne.TextAlignCenter
	g.win.SetContent(container.NewBorder(header, nil, nil, nil, bookList))
}

// openSession swaps the window over to the reading view for one book.
func (g *guiReader) openSession(sess *session) {
	g.sess = sess
	g.sched, g.tracker = g.prog.newScheduler(sess)
	g.done = make(chan struct{})
	g.closed = false
	g.finished = false

	g.statusLabel = widget.NewLabel("")
	g.statusLabel.Alignment = fyne.TextAlignCenter

	controls := widget.NewLabel("SPACE: pause  ↑/↓: speed  +/-: font  ←/→: sentence  R: restart  T: chapters  F: fullscreen  Q: quit")
	controls.Alignment = fyne.TextAlignCenter

	g.wordContainer = container.NewStack()

	reading := container.NewBorder(g.statusLabel, controls, nil, nil, g.wordContainer)

	chapters := sess.doc.Chapters
	tocList := widget.NewList(
		func() int { return len(chapters) },
		func() fyne.CanvasObject {
			return widget.NewLabel("Chapter")
		},
		func(id widget.ListItemID, obj fyne.CanvasObject) {
			obj.(*widget.Label).SetText(chapters[id].Title)
		},
	)
	tocList.OnSelected = func(id widget.ListItemID) {
		g.sched.JumpTo(chapters[id].WordStart)
		g.finished = false
		g.setTOCVisible(false)
		tocList.UnselectAll()
		g.update()
	}
	g.tocContainer = container.NewBorder(
		widget.NewLabel("Chapters"),
		widget.NewLabel("Click to jump • T to close"),
		nil, nil,
		tocList,
	)
	g.tocPanel = container.NewHSplit(g.tocContainer, reading)
	g.tocPanel.Offset = 0.3
	g.tocContainer.Hide()

	g.win.SetContent(container.NewStack(g.tocPanel))
	g.bindKeys()
	g.win.SetOnClosed(func() { g.teardown() })

	// Display events arrive on the scheduler's channel; every one is a frame.
	go func() {
		for {
			select {
			case <-g.done:
				return
			case ev := <-g.sched.Events():
				if ev.Kind == rsvp.EventFinished {
					g.finished = true
				}
				fyne.Do(g.update)
			}
		}
	}()

	// First frame after the window has a size.
	fyne.Do(g.update)
}

// teardown flushes progress and stops the event pump. Window close and Q
// quit both funnel here, always on the fyne main goroutine, so a plain flag
// makes the second call a no-op.
func (g *guiReader) teardown() {
	if g.closed {
		return
	}
	g.closed = true
	close(g.done)
	if g.sched != nil {
		g.sched.Pause()
		g.sched.Close()
	}
	if g.tracker != nil {
		g.tracker.Close()
	}
}

func (g *guiReader) setTOCVisible(visible bool) {
	g.tocVisible = visible
	if visible {
		g.sched.Pause()
		g.tocContainer.Show()
	} else {
		g.tocContainer.Hide()
	}
	g.tocPanel.Refresh()
}

func (g *guiReader) bindKeys() {
	g.win.Canvas().SetOnTypedKey(func(key *fyne.KeyEvent) {
		switch key.Name {
		case fyne.KeySpace:
			g.finished = false
			if g.sched.Snapshot().Playing {
				g.sched.Pause()
			} else {
				g.sched.Play()
			}
			g.update()

		case fyne.KeyUp:
			g.sched.AdjustWPM(50)
			g.update()

		case fyne.KeyDown:
			g.sched.AdjustWPM(-50)
			g.update()

		case fyne.KeyLeft:
			g.sched.JumpToPrevSentence()
			g.update()

		case fyne.KeyRight:
			g.sched.JumpToNextSentence()
			g.update()

		case fyne.KeyF:
			g.win.SetFullScreen(!g.win.FullScreen())

		case fyne.KeyQ:
			g.teardown()
			g.app.Quit()
		}
	})

	g.win.Canvas().SetOnTypedRune(func(r rune) {
		switch r {
		case 't', 'T':
			g.setTOCVisible(!g.tocVisible)
			g.update()

		case 'r', 'R':
			g.sched.Reset()
			g.finished = false
			g.update()

		case '+', '=':
			if g.fontSize < 200 {
				g.fontSize += 5
				g.update()
			}
		case '-':
			if g.fontSize > 20 {
				g.fontSize -= 5
				g.update()
			}
		}
	})
}

// update redraws the word display and status line from the scheduler's
// current state. Must run on the fyne main goroutine.
func (g *guiReader) update() {
	snap := g.sched.Snapshot()

	width := g.win.Canvas().Size().Width
	if width <= 0 {
		width = 900
	}

	if g.finished {
		done := canvas.NewText("Reading complete!", color.RGBA{G: 200, A: 255})
		done.TextSize = g.fontSize / 2
		done.TextStyle.Bold = true
		g.wordContainer.Objects = []fyne.CanvasObject{container.NewCenter(done)}
	} else {
		word := g.sched.Word(snap.Index)
		g.wordContainer.Objects = []fyne.CanvasObject{g.wordDisplay(word, width)}
	}
	g.wordContainer.Refresh()

	pause := ""
	if !snap.Playing {
		pause = " [PAUSED]"
	}
	chapter := ""
	if c := g.sess.doc.ChapterAt(snap.Index); c != nil {
		chapter = " | " + c.Title
	}
	g.statusLabel.SetText(fmt.Sprintf("%s — Word %d/%d | %.0f WPM%s%s",
		g.sess.doc.Title, snap.Index+1, g.sched.WordCount(), snap.WPM, chapter, pause))
}

// wordDisplay renders the word as three canvas texts with the focus rune
// colored and anchored at the horizontal center.
func (g *guiReader) wordDisplay(word string, windowWidth float32) *fyne.Container {
	parts := g.prog.policy.Split(word)

	beforeText := canvas.NewText(parts.Before, color.White)
	beforeText.TextSize = g.fontSize
	beforeText.TextStyle.Bold = true

	focusText := canvas.NewText(parts.Focus, color.RGBA{R: 255, A: 255})
	focusText.TextSize = g.fontSize
	focusText.TextStyle.Bold = true

	afterText := canvas.NewText(parts.After, color.White)
	afterText.TextSize = g.fontSize
	afterText.TextStyle.Bold = true

	centerX := windowWidth / 2
	beforeX := centerX - beforeText.MinSize().Width
	if beforeX < 0 {
		beforeX = 0
	}

	beforeText.Move(fyne.NewPos(beforeX, 0))
	focusText.Move(fyne.NewPos(centerX, 0))
	afterText.Move(fyne.NewPos(centerX+focusText.MinSize().Width, 0))

	return &fyne.Container{
		Layout:  &centerVerticalLayout{},
		Objects: []fyne.CanvasObject{beforeText, focusText, afterText},
	}
}

// centerVerticalLayout keeps the word texts at their manually set X positions
// while centering them vertically in the available space.
type centerVerticalLayout struct{}

func (l *centerVerticalLayout) MinSize(objects []fyne.CanvasObject) fyne.Size {
	var maxH float32
	for _, o := range objects {
		if h := o.MinSize().Height; h > maxH {
			maxH = h
		}
	}
	return fyne.NewSize(0, maxH)
}

func (l *centerVerticalLayout) Layout(objects []fyne.CanvasObject, size fyne.Size) {
	var maxH float32
	for _, o := range objects {
		if h := o.MinSize().Height; h > maxH {
			maxH = h
		}
	}
	y := (size.Height - maxH) / 2
	if y < 0 {
		y = 0
	}
	for _, o := range objects {
		o.Move(fyne.NewPos(o.Position().X, y))
		o.Resize(o.MinSize())
	}
}
