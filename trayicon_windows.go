//go:build windows

package main

import _ "embed"

//go:embed build/windows/icon.ico
var trayIconICO []byte

// trayIcon returns the ICO-format icon bytes for the Windows systray.
func trayIcon() []byte {
	return trayIconICO
}
