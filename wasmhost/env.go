package wasmhost

import (
	"context"
	"fmt"

	"github.com/tetratelabs/wazero"
	"github.com/tetratelabs/wazero/api"

	"github.com/hanatsumi/rakuyomi/memory"
	"github.com/hanatsumi/rakuyomi/rerr"
)

// AbortError is the error a guest's call to env.abort produces, carrying
// the message and source location the guest reported about itself.
type AbortError struct {
	Message  string
	FileName string
	Line     int32
	Column   int32
}

func (e *AbortError) Error() string {
	return fmt.Sprintf("%s (at %s:%d:%d)", e.Message, e.FileName, e.Line, e.Column)
}

// instantiateEnv registers the env module: print, for guest-side logging,
// and abort, which aborts the guest call with a fatal, library-raised
// error rather than letting execution continue.
func (h *Host) instantiateEnv(ctx context.Context, runtime wazero.Runtime) error {
	_, err := runtime.NewHostModuleBuilder("env").
		NewFunctionBuilder().
		WithFunc(h.envPrint).
		Export("print").
		NewFunctionBuilder().
		WithFunc(h.envAbort).
		Export("abort").
		Instantiate(ctx)
	return err
}

func (h *Host) envPrint(ctx context.Context, mod api.Module, strOffset, strLength uint32) {
	mem := mustMemory(mod)
	s, err := memory.ReadString(mem, strOffset, strLength)
	if err != nil {
		h.log(fmt.Sprintf("%s: env.print: <unreadable: %v>", h.SourceID, err))
		return
	}
	h.log(fmt.Sprintf("%s: env.print: %s", h.SourceID, s))
}

// envAbort reads the AssemblyScript-style length-prefixed message string
// and raises a host error, which source.Source's caller turns into a
// rerr.GuestTrap. wazero stops guest execution as soon as a host function
// returns a non-nil error, so this never returns to the guest.
func (h *Host) envAbort(ctx context.Context, mod api.Module, msgOffset, fileOffset, line, column uint32) error {
	mem := mustMemory(mod)

	message, err := memory.ReadLengthPrefixedString(mem, msgOffset)
	if err != nil {
		message = "<unreadable abort message>"
	}
	fileName, err := memory.ReadLengthPrefixedString(mem, fileOffset)
	if err != nil {
		fileName = "<unknown>"
	}

	abortErr := &AbortError{
		Message:  message,
		FileName: fileName,
		Line:     int32(line),
		Column:   int32(column),
	}
	h.log(fmt.Sprintf("%s: env.abort: %s", h.SourceID, abortErr.Error()))
	return rerr.New(rerr.GuestTrap, abortErr)
}
