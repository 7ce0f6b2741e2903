package main

import (
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// Event name constants for Wails runtime events
const (
	EventFilesOpened    = "files-opened"
	EventHistoryCleared = "history-cleared"
)

// Safe event emission helpers - check for a live Wails context first.
// Emission itself is non-blocking from the caller's point of view.

func (a *DesktopApp) emitFilesOpened(batch DropBatch) {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, EventFilesOpened, batch)
}

func (a *DesktopApp) emitHistoryCleared() {
	if a.ctx == nil {
		return
	}
	wailsRuntime.EventsEmit(a.ctx, EventHistoryCleared)
}
