package vsplayer

import (
	"log/slog"
)

// Walker finds playable files in the directory opened on a Volume.
type Walker struct {
	volume Volume
	log    *slog.Logger

	// visit is called with the name of every entry which is not excluded by its attributes.
	visit func(name string)
}

// NewWalker creates a Walker. visit may be nil.
func NewWalker(volume Volume, visit func(name string), log *slog.Logger) *Walker {
	if visit == nil {
		visit = func(string) {}
	}
	if log == nil {
		log = discardLogger()
	}
	return &Walker{
		volume: volume,
		log:    log,
		visit:  visit,
	}
}

// next reads the next entry. Read errors end the enumeration like the end of the directory does.
func (w *Walker) next() (Entry, bool) {
	entry, err := w.volume.NextEntry()
	if err != nil {
		w.log.Debug("reading directory failed", "err", err)
		return Entry{}, false
	}
	return entry, true
}

func (w *Walker) rewind() {
	if err := w.volume.Rewind(); err != nil {
		w.log.Debug("rewinding directory failed", "err", err)
	}
}

// accept reports the entry and decides whether it is a match.
func (w *Walker) accept(entry Entry, filter string) bool {
	if entry.Excluded() {
		return false
	}

	w.visit(entry.Name)

	if entry.MediaType() == MediaUnknown {
		return false
	}
	return filter == "" || matchesFilter(entry.Name, filter)
}

// FindFirst rewinds the directory and returns the first playable entry whose name starts
// with filter. An empty filter accepts any playable entry.
func (w *Walker) FindFirst(filter string) (Entry, bool) {
	w.rewind()

	for {
		entry, ok := w.next()
		if !ok || entry.IsEnd() {
			return Entry{}, false
		}

		if w.accept(entry, filter) {
			return entry, true
		}
	}
}

// FindNext continues after the last returned entry and returns the next playable one.
// At the end of the directory it starts over from the top once; hitting the end a second
// time gives up, so an empty directory cannot loop forever.
func (w *Walker) FindNext() (Entry, bool) {
	rewinds := 0

	for {
		entry, ok := w.next()
		if !ok {
			return Entry{}, false
		}

		if entry.IsEnd() {
			if rewinds < 1 {
				rewinds++
				w.rewind()
				continue
			}
			return Entry{}, false
		}

		if w.accept(entry, "") {
			return entry, true
		}
	}
}
