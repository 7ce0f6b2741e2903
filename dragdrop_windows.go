//go:build windows

package main

import (
	"sync/atomic"
	"syscall"
	"unsafe"

	"github.com/cockroachdb/errors"
	"golang.org/x/sys/windows"

	"dropdock/droptarget"
)

// Win32/COM APIs for custom drag-drop handling.
// We bypass WebView2's built-in IDropTarget (which loads dropped file
// content and crashes on large files) and register our own lightweight
// IDropTarget on Chrome_WidgetWin_0. Our handler only reads CF_HDROP
// path strings; the actual accept/dispatch decisions live in the
// droptarget adapter, this file is just the COM shim.
var (
	modOle32   = windows.NewLazySystemDLL("ole32.dll")
	modShell32 = windows.NewLazySystemDLL("shell32.dll")
	modUser32  = windows.NewLazySystemDLL("user32.dll")

	procOleInitialize    = modOle32.NewProc("OleInitialize")
	procRevokeDragDrop   = modOle32.NewProc("RevokeDragDrop")
	procRegisterDragDrop = modOle32.NewProc("RegisterDragDrop")
	procReleaseStgMedium = modOle32.NewProc("ReleaseStgMedium")
	procDragQueryFileW   = modShell32.NewProc("DragQueryFileW")

	procFindWindowW      = modUser32.NewProc("FindWindowW")
	procEnumChildWindows = modUser32.NewProc("EnumChildWindows")
	procGetClassNameW    = modUser32.NewProc("GetClassNameW")
)

// COM constants
const (
	cfHDROP         = 15
	tymedHGlobal    = 1
	dvaspectContent = 1
	comSOK          = 0
	comENoInterface = 0x80004002
)

// COM GUIDs
var (
	iidIUnknown    = syscall.GUID{Data1: 0x00000000, Data2: 0x0000, Data3: 0x0000, Data4: [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}}
	iidIDropTarget = syscall.GUID{Data1: 0x00000122, Data2: 0x0000, Data3: 0x0000, Data4: [8]byte{0xC0, 0x00, 0x00, 0x00, 0x00, 0x00, 0x00, 0x46}}
)

// FORMATETC — matches Win64 layout with padding for pointer alignment.
type formatETC struct {
	cfFormat uint16
	_pad     [6]byte
	ptd      uintptr
	dwAspect uint32
	lindex   int32
	tymed    uint32
	_pad2    [4]byte
}

// STGMEDIUM — Win64 layout.
type stgMEDIUM struct {
	tymed          uint32
	_pad           uint32
	hGlobal        uintptr
	pUnkForRelease uintptr
}

// dropTargetVtbl is the COM vtable for IDropTarget.
type dropTargetVtbl struct {
	QueryInterface uintptr
	AddRef         uintptr
	Release        uintptr
	DragEnter      uintptr
	DragOver       uintptr
	DragLeave      uintptr
	Drop           uintptr
}

// oleDropTarget implements IDropTarget and forwards to the adapter
// handlers subscribed on the DesktopApp. The first field (lpVtbl) must
// be the vtable pointer for COM interop.
type oleDropTarget struct {
	lpVtbl   *dropTargetVtbl
	refCount int32
	app      *DesktopApp
	effect   uint32 // decided in DragEnter, replayed by DragOver/Drop
}

// Global references to prevent GC collection while COM holds pointers.
var (
	gDropTarget     *oleDropTarget
	gDropTargetVtbl *dropTargetVtbl
)

// hdropPayload wraps the IDataObject presented during the drag. Only
// valid for the duration of the COM call that produced it.
type hdropPayload struct {
	pDataObj uintptr
}

// HasFileList calls IDataObject::QueryGetData (vtable index 5) to check
// if the CF_HDROP format is available.
func (p hdropPayload) HasFileList() bool {
	if p.pDataObj == 0 {
		return false
	}
	fe := formatETC{
		cfFormat: cfHDROP,
		dwAspect: dvaspectContent,
		lindex:   -1,
		tymed:    tymedHGlobal,
	}
	vtblPtr := *(*uintptr)(unsafe.Pointer(p.pDataObj))
	queryGetData := *(*uintptr)(unsafe.Pointer(vtblPtr + 5*unsafe.Sizeof(uintptr(0))))
	ret, _, _ := syscall.SyscallN(queryGetData, p.pDataObj, uintptr(unsafe.Pointer(&fe)))
	return ret == comSOK
}

// FileList calls IDataObject::GetData (vtable index 3) with CF_HDROP,
// then extracts file paths with DragQueryFileW. Only path strings are
// read, never file content — safe for any file size.
func (p hdropPayload) FileList() ([]string, error) {
	if p.pDataObj == 0 || !p.HasFileList() {
		return nil, nil
	}
	fe := formatETC{
		cfFormat: cfHDROP,
		dwAspect: dvaspectContent,
		lindex:   -1,
		tymed:    tymedHGlobal,
	}
	var medium stgMEDIUM

	vtblPtr := *(*uintptr)(unsafe.Pointer(p.pDataObj))
	getData := *(*uintptr)(unsafe.Pointer(vtblPtr + 3*unsafe.Sizeof(uintptr(0))))
	ret, _, _ := syscall.SyscallN(getData, p.pDataObj, uintptr(unsafe.Pointer(&fe)), uintptr(unsafe.Pointer(&medium)))
	if ret != comSOK {
		return nil, errors.Newf("IDataObject::GetData failed: HRESULT 0x%08x", ret)
	}
	defer procReleaseStgMedium.Call(uintptr(unsafe.Pointer(&medium)))

	hdrop := medium.hGlobal
	count, _, _ := procDragQueryFileW.Call(hdrop, 0xFFFFFFFF, 0, 0)

	var paths []string
	buf := make([]uint16, 4096)
	for i := uintptr(0); i < count; i++ {
		n, _, _ := procDragQueryFileW.Call(hdrop, i, uintptr(unsafe.Pointer(&buf[0])), uintptr(len(buf)))
		if n > 0 {
			paths = append(paths, syscall.UTF16ToString(buf[:n]))
		}
	}
	return paths, nil
}

// ── COM method implementations ─────────────────────────────────────────────

func dtQueryInterface(this, riid, ppvObject uintptr) uintptr {
	if ppvObject == 0 {
		return comENoInterface
	}
	guid := (*syscall.GUID)(unsafe.Pointer(riid))
	if *guid == iidIUnknown || *guid == iidIDropTarget {
		*(*uintptr)(unsafe.Pointer(ppvObject)) = this
		dtAddRef(this)
		return comSOK
	}
	*(*uintptr)(unsafe.Pointer(ppvObject)) = 0
	return comENoInterface
}

func dtAddRef(this uintptr) uintptr {
	dt := (*oleDropTarget)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&dt.refCount, 1))
}

func dtRelease(this uintptr) uintptr {
	dt := (*oleDropTarget)(unsafe.Pointer(this))
	return uintptr(atomic.AddInt32(&dt.refCount, -1))
}

// DragEnter: ask the adapter whether the payload qualifies. The effect
// it reports is written back for the drag source's cursor feedback.
// On x64: this=RCX, pDataObj=RDX, grfKeyState=R8, pt=R9, pdwEffect=stack
func dtDragEnter(this, pDataObj, grfKeyState, pt, pdwEffect uintptr) uintptr {
	dt := (*oleDropTarget)(unsafe.Pointer(this))
	dt.effect = uint32(droptarget.EffectNone)
	if enter := dt.app.dragEnter; enter != nil {
		dt.effect = uint32(enter(hdropPayload{pDataObj: pDataObj}))
	}
	*(*uint32)(unsafe.Pointer(pdwEffect)) = dt.effect
	return comSOK
}

// DragOver: replay the effect decided in DragEnter.
func dtDragOver(this, grfKeyState, pt, pdwEffect uintptr) uintptr {
	dt := (*oleDropTarget)(unsafe.Pointer(this))
	*(*uint32)(unsafe.Pointer(pdwEffect)) = dt.effect
	return comSOK
}

func dtDragLeave(this uintptr) uintptr {
	return comSOK
}

// Drop: hand the payload to the adapter's drop handler. The handler
// extracts the paths synchronously but posts the host callback, so we
// return to the blocked drag source promptly.
func dtDrop(this, pDataObj, grfKeyState, pt, pdwEffect uintptr) uintptr {
	dt := (*oleDropTarget)(unsafe.Pointer(this))
	*(*uint32)(unsafe.Pointer(pdwEffect)) = dt.effect
	Log.Debug("IDropTarget::Drop", "accepted", dt.effect != uint32(droptarget.EffectNone))

	if drop := dt.app.dragDrop; drop != nil && dt.effect != uint32(droptarget.EffectNone) {
		drop(hdropPayload{pDataObj: pDataObj})
	}
	return comSOK
}

// ── Setup ──────────────────────────────────────────────────────────────────

// hookPlatformDrop registers a custom IDropTarget on the WebView2
// content window and routes its callbacks to the drop adapter bound to
// the app.
func hookPlatformDrop(a *DesktopApp) {
	// OleInitialize is required for RegisterDragDrop. Wails only calls
	// CoInitializeEx which is insufficient for OLE drag-drop. Calling
	// OleInitialize when COM is already initialized returns S_FALSE (OK).
	ret, _, _ := procOleInitialize.Call(0)
	Log.Debug("OleInitialize", "hresult", ret)

	// Find the Wails window by title
	title, _ := windows.UTF16PtrFromString("DropDock")
	hwnd, _, _ := procFindWindowW.Call(0, uintptr(unsafe.Pointer(title)))
	if hwnd == 0 {
		Log.Warn("hookPlatformDrop: main window not found")
		return
	}

	// Find all Chrome_WidgetWin_0 descendant windows
	chromeHwnds := findAllChromeWidgetChildren(hwnd)
	Log.Info("Chrome_WidgetWin_0 windows found", "count", len(chromeHwnds))
	if len(chromeHwnds) == 0 {
		Log.Warn("hookPlatformDrop: Chrome_WidgetWin_0 not found")
		return
	}

	gDropTargetVtbl = &dropTargetVtbl{
		QueryInterface: syscall.NewCallback(dtQueryInterface),
		AddRef:         syscall.NewCallback(dtAddRef),
		Release:        syscall.NewCallback(dtRelease),
		DragEnter:      syscall.NewCallback(dtDragEnter),
		DragOver:       syscall.NewCallback(dtDragOver),
		DragLeave:      syscall.NewCallback(dtDragLeave),
		Drop:           syscall.NewCallback(dtDrop),
	}
	gDropTarget = &oleDropTarget{
		lpVtbl:   gDropTargetVtbl,
		refCount: 1,
		app:      a,
	}

	// Try each Chrome_WidgetWin_0: revoke any existing IDropTarget, then register ours.
	for _, ch := range chromeHwnds {
		procRevokeDragDrop.Call(ch) // ignore error — may not have one
		ret, _, _ = procRegisterDragDrop.Call(ch, uintptr(unsafe.Pointer(gDropTarget)))
		if ret == comSOK {
			Log.Info("custom drop target registered", "hwnd", ch)
			return
		}
		Log.Debug("RegisterDragDrop failed", "hwnd", ch, "hresult", ret)
	}

	// Fallback: try the Wails window itself
	procRevokeDragDrop.Call(hwnd)
	ret, _, _ = procRegisterDragDrop.Call(hwnd, uintptr(unsafe.Pointer(gDropTarget)))
	Log.Info("RegisterDragDrop on main window", "hwnd", hwnd, "hresult", ret)
}

// enumChromeHwnds collects Chrome_WidgetWin_0 HWNDs found by EnumChildWindows.
var enumChromeHwnds []uintptr

func findAllChromeWidgetChildren(parentHwnd uintptr) []uintptr {
	enumChromeHwnds = nil
	cb := syscall.NewCallback(func(childHwnd, lParam uintptr) uintptr {
		var className [256]uint16
		procGetClassNameW.Call(childHwnd, uintptr(unsafe.Pointer(&className[0])), 256)
		if syscall.UTF16ToString(className[:]) == "Chrome_WidgetWin_0" {
			enumChromeHwnds = append(enumChromeHwnds, childHwnd)
		}
		return 1 // continue to find all
	})
	procEnumChildWindows.Call(parentHwnd, cb, 0)
	result := make([]uintptr, len(enumChromeHwnds))
	copy(result, enumChromeHwnds)
	return result
}
