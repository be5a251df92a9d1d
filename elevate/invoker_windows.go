/*
 * Copyright (C) 2023-2026 The golang-elevated Authors. All rights reserved.
 * SPDX-License-Identifier: Apache-2.0
 */
//go:build windows

package elevate

import (
	"context"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/elevated-command/golang-elevated/elevated/commonerrors"
	"github.com/elevated-command/golang-elevated/elevated/parallelisation"
)

const (
	seeMaskNoCloseProcess = 0x00000040
	seeMaskNoAsync        = 0x00000100
	elevationVerb         = "runas"
	// Wait slice so that a blocked wait still honours context cancellation.
	waitSliceMilliseconds = 100
)

var (
	modshell32          = windows.NewLazySystemDLL("shell32.dll")
	procShellExecuteExW = modshell32.NewProc("ShellExecuteExW")
)

// shellExecuteInfo mirrors SHELLEXECUTEINFOW.
type shellExecuteInfo struct {
	cbSize         uint32
	fMask          uint32
	hwnd           windows.Handle
	lpVerb         *uint16
	lpFile         *uint16
	lpParameters   *uint16
	lpDirectory    *uint16
	nShow          int32
	hInstApp       windows.Handle
	lpIDList       uintptr
	lpClass        *uint16
	hkeyClass      windows.Handle
	dwHotKey       uint32
	hIconOrMonitor windows.Handle
	hProcess       windows.Handle
}

// shellExecuteBroker elevates through the shell `runas` verb, which raises the consent prompt
// when the current process is not already elevated. The shell offers no way to plumb pipes to
// the elevated process, hence the capture files.
type shellExecuteBroker struct{}

// launch requests elevated execution of the script and returns a handle over the broker
// process. Any launch failure is a rejection: the command never started.
func (b *shellExecuteBroker) launch(scriptPath string) (handle windows.Handle, err error) {
	verb, err := windows.UTF16PtrFromString(elevationVerb)
	if err != nil {
		err = commonerrors.WrapError(commonerrors.ErrUnexpected, err, "invalid elevation verb")
		return
	}
	file, err := windows.UTF16PtrFromString(scriptPath)
	if err != nil {
		err = commonerrors.WrapErrorf(commonerrors.ErrInvalid, err, "invalid script path `%v`", scriptPath)
		return
	}
	info := shellExecuteInfo{
		fMask:  seeMaskNoCloseProcess | seeMaskNoAsync,
		lpVerb: verb,
		lpFile: file,
		nShow:  windows.SW_HIDE,
	}
	info.cbSize = uint32(unsafe.Sizeof(info))
	ret, _, callErr := procShellExecuteExW.Call(uintptr(unsafe.Pointer(&info)))
	if ret == 0 || info.hProcess == 0 {
		err = commonerrors.WrapError(ErrElevationRejected, callErr, "ShellExecuteEx failed")
		return
	}
	handle = info.hProcess
	return
}

func (b *shellExecuteBroker) ElevateAndWait(ctx context.Context, scriptPath string) (brokerCode int, err error) {
	handle, err := b.launch(scriptPath)
	if err != nil {
		return
	}
	defer func() { _ = windows.CloseHandle(handle) }()
	for {
		event, waitErr := windows.WaitForSingleObject(handle, waitSliceMilliseconds)
		if waitErr != nil {
			err = commonerrors.WrapError(commonerrors.ErrUnexpected, waitErr, "failed waiting on the elevation broker")
			return
		}
		if event == windows.WAIT_OBJECT_0 {
			break
		}
		if err = parallelisation.DetermineContextError(ctx); err != nil {
			return
		}
	}
	var code uint32
	if exitErr := windows.GetExitCodeProcess(handle, &code); exitErr != nil {
		err = commonerrors.WrapError(commonerrors.ErrUnexpected, exitErr, "failed fetching the elevation broker exit code")
		return
	}
	brokerCode = int(code)
	return
}

func (b *shellExecuteBroker) ElevateDetached(_ context.Context, scriptPath string) (pid int, err error) {
	handle, err := b.launch(scriptPath)
	if err != nil {
		return
	}
	defer func() { _ = windows.CloseHandle(handle) }()
	id, pidErr := windows.GetProcessId(handle)
	if pidErr != nil {
		// Monitoring falls back to the capture files alone.
		return
	}
	pid = int(id)
	return
}
