// Package extension exports the C entry points the host calls and routes
// each call through the dispatcher.
package extension

/*
#include <stdlib.h>
#include <stdio.h>
#include <string.h>
*/
import "C"
import (
	"encoding/json"
	"fmt"
	"strconv"
	"strings"
	"time"
	"unsafe"

	"github.com/OCAP2/objectives/internal/dispatcher"
)

// called by the host to get the version of the extension
//
//export RVExtensionVersion
func RVExtensionVersion(output *C.char, outputsize C.size_t) {
	replyToSyncCall(current.version, output, outputsize)
}

// called by the host in the format of: "extensionName" callExtension "command|arg|arg"
//
//export RVExtension
func RVExtension(output *C.char, outputsize C.size_t, input *C.char) {
	parts := strings.Split(C.GoString(input), "|")
	replyToSyncCall(Call(parts[0], parts[1:]), output, outputsize)
}

// called by the host in the format of: "extensionName" callExtension ["command", [args]]
//
//export RVExtensionArgs
func RVExtensionArgs(output *C.char, outputsize C.size_t, input *C.char, argv **C.char, argc C.int) {
	command := C.GoString(input)
	replyToSyncCall(Call(command, parseArgsFromC(argv, argc)), output, outputsize)
}

// Call dispatches one host command and returns the formatted response.
func Call(command string, args []string) string {
	if command == ":TIMESTAMP:" {
		return formatDispatchResponse(command, strconv.FormatInt(time.Now().UTC().UnixNano(), 10), nil)
	}
	d := current.dispatcher
	if d == nil || !d.HasHandler(command) {
		return formatDispatchResponse(command, nil, fmt.Errorf("no handler registered"))
	}
	result, err := d.Dispatch(dispatcher.Event{
		Command:   command,
		Args:      args,
		Timestamp: time.Now(),
	})
	return formatDispatchResponse(command, result, err)
}

// parseArgsFromC converts C argv array to Go string slice
func parseArgsFromC(argv **C.char, argc C.int) []string {
	var offset = unsafe.Sizeof(uintptr(0))
	data := make([]string, 0, int(argc))
	for index := C.int(0); index < argc; index++ {
		data = append(data, C.GoString(*argv))
		argv = (**C.char)(unsafe.Pointer(uintptr(unsafe.Pointer(argv)) + offset))
	}
	return data
}

// formatDispatchResponse encodes ["ok", command, result] or
// ["error", command, message] as JSON.
func formatDispatchResponse(command string, result any, err error) string {
	var reply []any
	switch {
	case err != nil:
		reply = []any{"error", command, err.Error()}
	case result == nil:
		reply = []any{"ok", command}
	default:
		reply = []any{"ok", command, result}
	}
	b, mErr := json.Marshal(reply)
	if mErr != nil {
		b, _ = json.Marshal([]any{"error", command, mErr.Error()})
	}
	return string(b)
}

// replyToSyncCall copies response into the host's output buffer, truncating
// to outputsize.
func replyToSyncCall(response string, output *C.char, outputsize C.size_t) {
	result := C.CString(response)
	defer C.free(unsafe.Pointer(result))
	var size = C.strlen(result) + 1
	if size > outputsize {
		size = outputsize
	}
	C.memmove(unsafe.Pointer(output), unsafe.Pointer(result), size)
}
