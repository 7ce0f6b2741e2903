//go:build !windows

package main

import (
	wailsRuntime "github.com/wailsapp/wails/v2/pkg/runtime"
)

// pathsPayload is a drag payload that already carries its file list.
// The Wails runtime only reports drops that contain files, so there is
// nothing further to query.
type pathsPayload []string

func (p pathsPayload) HasFileList() bool { return len(p) > 0 }

func (p pathsPayload) FileList() ([]string, error) {
	if len(p) == 0 {
		return nil, nil
	}
	return p, nil
}

// hookPlatformDrop wires the toolkit's file-drop events to the bound
// drop adapter. On non-Windows platforms Wails' built-in drop handling
// is reliable, so no native registration is needed.
func hookPlatformDrop(a *DesktopApp) {
	wailsRuntime.OnFileDrop(a.ctx, func(x, y int, paths []string) {
		if a.dragDrop == nil {
			return
		}
		a.dragDrop(pathsPayload(paths))
	})
	Log.Info("file drop hooked via Wails runtime")
}
