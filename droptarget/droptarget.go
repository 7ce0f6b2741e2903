// Package droptarget adapts a desktop window into a drop target for
// files dragged from the system file browser.
//
// The adapter subscribes to the window's drag-enter and drag-drop
// notifications. On a qualifying drop it hands the dropped path list to
// the host's OpenFiles, posted onto the window's own UI execution
// context so the drag source (which is blocked until the drop handler
// returns) is never kept waiting on application code.
package droptarget

import (
	"fmt"
	"log/slog"

	"github.com/cockroachdb/errors"
)

// Effect is the visual feedback reported to the drag source.
// Values mirror the OLE drop effect constants.
type Effect uint32

const (
	EffectNone Effect = 0
	EffectCopy Effect = 1
)

// FileOpener is the capability a host must provide to receive drops.
type FileOpener interface {
	// OpenFiles handles an ordered list of dropped file paths.
	// It runs on the host's UI execution context and may block.
	OpenFiles(paths []string)
}

// Payload is the toolkit-provided bag of typed data available during a
// drag gesture. The adapter only ever reads the file-drop list.
type Payload interface {
	// HasFileList reports whether the payload advertises a file-drop list.
	HasFileList() bool
	// FileList extracts the file-drop list. A nil slice with nil error
	// means the list is absent.
	FileList() ([]string, error)
}

// Host is the window-like object the adapter binds to. The host's
// lifetime must outlive the adapter.
type Host interface {
	// AcceptDrops marks the window as willing to accept drag gestures.
	AcceptDrops(enabled bool)
	// OnDragEnter subscribes the handler consulted when a drag enters
	// the window. The handler is pure and must not block.
	OnDragEnter(fn func(Payload) Effect)
	// OnDragDrop subscribes the handler invoked when a drag is dropped.
	OnDragDrop(fn func(Payload))
	// Post queues a task onto the window's UI execution context and
	// returns without waiting for it to run. Delivery is FIFO.
	Post(task func())
	// RaiseWindow brings the window to the foreground, best-effort.
	RaiseWindow()
}

var (
	// ErrContractViolation is returned by Bind when the host does not
	// implement FileOpener. A programming error in the caller, not a
	// recoverable runtime condition.
	ErrContractViolation = errors.New("host does not implement the file-open capability")

	// ErrAlreadyBound is returned by Bind on an adapter that is
	// already bound. Binding is one-shot.
	ErrAlreadyBound = errors.New("drop target already bound to a host")
)

// Adapter relays file drops from a host window to its OpenFiles
// capability. Create with New, then Bind once.
type Adapter struct {
	host Host
	open func([]string)
	log  *slog.Logger
}

// New creates an unbound adapter. A nil logger falls back to
// slog.Default; the logger only receives the drop-boundary error line.
func New(log *slog.Logger) *Adapter {
	if log == nil {
		log = slog.Default()
	}
	return &Adapter{log: log}
}

// Bind stores the host, enables drag acceptance on it, and subscribes
// the drag handlers. Fails with ErrContractViolation when host is nil
// or does not implement FileOpener; in that case nothing is subscribed.
func (a *Adapter) Bind(host Host) error {
	if a.host != nil {
		return ErrAlreadyBound
	}
	if host == nil {
		return errors.Wrap(ErrContractViolation, "nil host")
	}
	opener, ok := host.(FileOpener)
	if !ok {
		return errors.Wrapf(ErrContractViolation, "%T", host)
	}

	a.host = host
	a.open = opener.OpenFiles
	host.AcceptDrops(true)
	host.OnDragEnter(a.dragEntered)
	host.OnDragDrop(a.dragDropped)
	return nil
}

// dragEntered decides the feedback shown to the drag source. Pure; no
// state is touched.
func (a *Adapter) dragEntered(p Payload) Effect {
	if p != nil && p.HasFileList() {
		return EffectCopy
	}
	return EffectNone
}

// dragDropped extracts the dropped file list and schedules OpenFiles on
// the host's UI context, returning before it runs. The drag source is
// synchronously blocked until this handler returns, and OpenFiles may
// itself block (modal dialogs), so a direct call is never made.
//
// Any failure here is logged and swallowed: the caller is the external
// drag source's toolkit machinery and cannot observe an error.
func (a *Adapter) dragDropped(p Payload) {
	defer func() {
		if r := recover(); r != nil {
			a.log.Error("Error in drop handler: " + fmt.Sprint(r))
		}
	}()

	if p == nil {
		return
	}
	paths, err := p.FileList()
	if err != nil {
		a.log.Error("Error in drop handler: " + err.Error())
		return
	}
	if paths == nil {
		return
	}

	open := a.open
	a.host.Post(func() { open(paths) })

	// The drag source's window usually overlaps ours at this point.
	a.host.RaiseWindow()
}
