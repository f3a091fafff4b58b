// Package lspapi is the handle-based JSON surface of spec.md §6's
// language-service workspace, exported for both a native host (cmd/btdsl
// could grow an `lsp` subcommand speaking this over stdio) and
// cmd/btdsl-wasm's syscall/js bridge. Every method takes a workspace handle
// plus a JSON request payload and returns a JSON response string, so a host
// binding only ever marshals strings across the boundary.
//
// Handles are google/uuid values, treated like file descriptors per
// spec.md §9: explicit Create/Destroy, no implicit lifetime.
package lspapi

import (
	"encoding/json"
	"fmt"
	"sync"

	"github.com/google/uuid"

	"github.com/btdsl/btdsl/internal/lspwire"
	"github.com/btdsl/btdsl/internal/workspace"
)

// API is the process-wide handle table. One API typically backs one host
// process (one WASM module instance, or one native LSP server process).
type API struct {
	mu         sync.Mutex
	workspaces map[string]*workspace.Workspace
}

// NewAPI returns an API with no open workspaces.
func NewAPI() *API {
	return &API{workspaces: make(map[string]*workspace.Workspace)}
}

// CreateWorkspace allocates a new empty workspace and returns its handle.
func (a *API) CreateWorkspace() string {
	a.mu.Lock()
	defer a.mu.Unlock()
	handle := uuid.NewString()
	a.workspaces[handle] = workspace.New()
	return handle
}

// DestroyWorkspace releases handle. A no-op if it doesn't exist.
func (a *API) DestroyWorkspace(handle string) {
	a.mu.Lock()
	defer a.mu.Unlock()
	delete(a.workspaces, handle)
}

func (a *API) get(handle string) (*workspace.Workspace, error) {
	a.mu.Lock()
	defer a.mu.Unlock()
	ws, ok := a.workspaces[handle]
	if !ok {
		return nil, fmt.Errorf("lspapi: no workspace for handle %q", handle)
	}
	return ws, nil
}

func marshal(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		b, _ = json.Marshal(map[string]string{"error": err.Error()})
	}
	return string(b)
}

func errorJSON(err error) string {
	return marshal(map[string]string{"error": err.Error()})
}

// SetDocument handles `{"uri":..., "text":...}`.
func (a *API) SetDocument(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	ws.SetDocument(req.URI, req.Text)
	return lspwire.WithURI(`{"ok":true}`, req.URI)
}

// RemoveDocument handles `{"uri":...}`.
func (a *API) RemoveDocument(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	ws.RemoveDocument(req.URI)
	return lspwire.WithURI(`{"ok":true}`, req.URI)
}

// HasDocument handles `{"uri":...}`.
func (a *API) HasDocument(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	return lspwire.WithURI(marshal(map[string]bool{"exists": ws.HasDocument(req.URI)}), req.URI)
}

// DiagnosticsJSON handles `{"uri":..., "imports":[...]}`.
func (a *API) DiagnosticsJSON(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	result, err := ws.Diagnostics(req.URI, req.Imports)
	if err != nil {
		return errorJSON(err)
	}
	return lspwire.WithURI(marshal(result), req.URI)
}

// CompletionJSON handles `{"uri":..., "byteOffset":N, "imports":[...], "trigger":"."}`.
func (a *API) CompletionJSON(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	result, err := ws.Completion(req.URI, req.ByteOffset, req.Imports, req.Trigger)
	if err != nil {
		return errorJSON(err)
	}
	return lspwire.WithURI(marshal(result), req.URI)
}

// HoverJSON handles `{"uri":..., "byteOffset":N, "imports":[...]}`.
func (a *API) HoverJSON(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	result, err := ws.Hover(req.URI, req.ByteOffset, req.Imports)
	if err != nil {
		return errorJSON(err)
	}
	return lspwire.WithURI(marshal(result), req.URI)
}

// DefinitionJSON handles `{"uri":..., "byteOffset":N, "imports":[...]}`.
func (a *API) DefinitionJSON(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	result, err := ws.Definition(req.URI, req.ByteOffset, req.Imports)
	if err != nil {
		return errorJSON(err)
	}
	return lspwire.WithURI(marshal(result), req.URI)
}

// DocumentSymbolsJSON handles `{"uri":...}`.
func (a *API) DocumentSymbolsJSON(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	result, err := ws.DocumentSymbols(req.URI)
	if err != nil {
		return errorJSON(err)
	}
	return lspwire.WithURI(marshal(result), req.URI)
}

// DocumentHighlightsJSON handles `{"uri":..., "byteOffset":N, "imports":[...]}`.
func (a *API) DocumentHighlightsJSON(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	result, err := ws.DocumentHighlights(req.URI, req.ByteOffset, req.Imports)
	if err != nil {
		return errorJSON(err)
	}
	return lspwire.WithURI(marshal(result), req.URI)
}

// SemanticTokensJSON handles `{"uri":..., "imports":[...]}`.
func (a *API) SemanticTokensJSON(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	result, err := ws.SemanticTokens(req.URI, req.Imports)
	if err != nil {
		return errorJSON(err)
	}
	return lspwire.WithURI(marshal(result), req.URI)
}

// ResolveImportsJSON handles `{"uri":..., "stdlibUri":...}`.
func (a *API) ResolveImportsJSON(handle, payload string) string {
	ws, err := a.get(handle)
	if err != nil {
		return errorJSON(err)
	}
	req := lspwire.Parse(payload)
	result, err := ws.ResolveImports(req.URI, req.StdlibURI)
	if err != nil {
		return errorJSON(err)
	}
	return lspwire.WithURI(marshal(result), req.URI)
}
