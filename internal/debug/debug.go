// Package debug provides sinks for the intermediate images produced
// while localizing iris boundaries.
package debug

import (
	"log"
	"path/filepath"
	"strconv"

	"gocv.io/x/gocv"
)

// A Sink receives named intermediate images. The Mat is only valid
// for the duration of the call; sinks that keep it must Clone it.
type Sink interface {
	Trace(name string, m gocv.Mat)
}

// Discard is a Sink that ignores everything.
var Discard Sink = discard{}

type discard struct{}

func (discard) Trace(string, gocv.Mat) {}

// Multi returns a Sink that passes every image on to each of sinks,
// in order. With no sinks it returns Discard.
func Multi(sinks ...Sink) Sink {
	switch len(sinks) {
	case 0:
		return Discard
	case 1:
		return sinks[0]
	}
	return multi(sinks)
}

type multi []Sink

func (ms multi) Trace(name string, m gocv.Mat) {
	for _, s := range ms {
		s.Trace(name, m)
	}
}

// DirSink writes every traced image to Dir as <Prefix><name>.png.
type DirSink struct {
	Dir    string
	Prefix string
}

func (s DirSink) Trace(name string, m gocv.Mat) {
	path := filepath.Join(s.Dir, s.Prefix+name+".png")
	if !gocv.IMWrite(path, m) {
		log.Printf("debug: failed to write %s", path)
	}
}

// WindowSink collects traced images so they can all be shown at once
// with Show.
type WindowSink struct {
	names []string
	mats  []gocv.Mat
}

func (s *WindowSink) Trace(name string, m gocv.Mat) {
	s.names = append(s.names, name)
	s.mats = append(s.mats, m.Clone())
}

// Names returns the names of the collected images, in trace order.
func (s *WindowSink) Names() []string {
	return append([]string(nil), s.names...)
}

// Close releases the collected images without showing them.
func (s *WindowSink) Close() {
	for _, m := range s.mats {
		m.Close()
	}
	s.names, s.mats = nil, nil
}

// Show opens one window per collected image, waits for a key press,
// then releases the images.
func (s *WindowSink) Show() {
	if len(s.mats) == 0 {
		return
	}
	ShowNamedMats(s.names, s.mats...)
	s.Close()
}

// ShowMats opens a window per Mat, numbered in order, and waits for a
// key press.
func ShowMats(ms ...gocv.Mat) {
	names := make([]string, len(ms))
	for i := range ms {
		names[i] = strconv.Itoa(i)
	}
	ShowNamedMats(names, ms...)
}

// ShowNamedMats is ShowMats with explicit window titles.
func ShowNamedMats(names []string, ms ...gocv.Mat) {
	var window *gocv.Window
	for i, m := range ms {
		window = gocv.NewWindow(names[i])
		defer window.Close()
		window.IMShow(m)
	}
	if window != nil {
		window.WaitKey(0)
	}
}
