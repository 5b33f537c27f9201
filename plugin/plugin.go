// Package plugin loads an external WASM code-generation backend and
// drives it through the allocate/generate/read-response protocol, so a
// `-g <path.wasm>` backend can sit alongside the built-in `native` and
// `evolved` emitters. The call sequence is adapted from the teacher's
// WASM codegen driver (bin/idol/idol_cmd_codegen.go), generalized from
// a fixed "go" export suffix to an arbitrary plugin path and from a
// binary schema codec to a JSON request/response envelope, since this
// compiler has no analogous binary schema format of its own.
package plugin

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	wasm "github.com/tetratelabs/wazero"
)

// Request is the JSON envelope passed to a plugin: one entry per source
// file, each already carrying the generated serialize/deserialize
// source text the compiler would otherwise have written directly.
type Request struct {
	Files []RequestFile `json:"files"`
}

type RequestFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Response is the JSON envelope a plugin returns: either an error
// message, or the final set of output files to write.
type Response struct {
	Error string         `json:"error,omitempty"`
	Files []ResponseFile `json:"files"`
}

type ResponseFile struct {
	Path    string `json:"path"`
	Content string `json:"content"`
}

// Run loads the WASM module at pluginPath, sends req as a JSON-encoded
// byte buffer via its allocate/generate exports, and decodes the
// response. The exported function names mirror the teacher's
// idol_codegen_allocate / idol_codegen_generate/<lang> pair, fixed here
// to eprotoc_codegen_allocate / eprotoc_codegen_generate since a plugin
// path already disambiguates the backend (no per-language export suffix
// is needed).
func Run(ctx context.Context, pluginPath string, req *Request) (*Response, error) {
	reqBuf, err := json.Marshal(req)
	if err != nil {
		return nil, err
	}

	pluginBin, err := os.ReadFile(pluginPath)
	if err != nil {
		return nil, err
	}

	runtimeConfig := wasm.NewRuntimeConfigInterpreter().WithMemoryLimitPages(16384)
	runtime := wasm.NewRuntimeWithConfig(ctx, runtimeConfig)
	defer runtime.Close(ctx)

	module, err := runtime.CompileModule(ctx, pluginBin)
	if err != nil {
		return nil, fmt.Errorf("compiling plugin %s: %w", pluginPath, err)
	}

	instance, err := runtime.InstantiateModule(ctx, module, wasm.NewModuleConfig())
	if err != nil {
		return nil, fmt.Errorf("instantiating plugin %s: %w", pluginPath, err)
	}
	mem := instance.Memory()

	alloc := instance.ExportedFunction("eprotoc_codegen_allocate")
	generate := instance.ExportedFunction("eprotoc_codegen_generate")
	if alloc == nil || generate == nil {
		return nil, fmt.Errorf("plugin %s does not export eprotoc_codegen_allocate/generate", pluginPath)
	}

	results, err := alloc.Call(ctx, uint64(len(reqBuf)))
	if err != nil {
		return nil, err
	}
	requestPtr := results[0]
	if ok := mem.Write(uint32(requestPtr), reqBuf); !ok {
		return nil, fmt.Errorf("failed to write request into plugin memory")
	}

	results, err = alloc.Call(ctx, 4)
	if err != nil {
		return nil, err
	}
	responsePtrPtr := uint32(results[0])

	results, err = generate.Call(ctx, requestPtr, uint64(len(reqBuf)), uint64(responsePtrPtr))
	if err != nil {
		return nil, err
	}
	rc := uint8(results[0])

	responsePtr, ok := mem.ReadUint32Le(responsePtrPtr)
	if !ok {
		return nil, fmt.Errorf("failed to read response pointer")
	}
	responseLen, ok := mem.ReadUint32Le(responsePtr)
	if !ok {
		return nil, fmt.Errorf("failed to read response length")
	}
	responseBuf, ok := mem.Read(responsePtr+4, responseLen)
	if !ok {
		return nil, fmt.Errorf("failed to read response body")
	}

	var resp Response
	if err := json.Unmarshal(responseBuf, &resp); err != nil {
		return nil, fmt.Errorf("decoding plugin response: %w", err)
	}
	if rc != 0 && resp.Error == "" {
		resp.Error = "plugin returned a non-zero status with no error message"
	}
	return &resp, nil
}
