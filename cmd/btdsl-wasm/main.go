//go:build js && wasm

// Command btdsl-wasm is the WebAssembly entry point for the BT-DSL
// language-service workspace. It exports pkg/lspapi to JavaScript and
// handles the WASM lifecycle, adapted from the teacher's
// cmd/dwscript-wasm registration pattern.
//
// Build with:
//   GOOS=js GOARCH=wasm go build -o btdsl.wasm ./cmd/btdsl-wasm
//
// Usage from JavaScript:
//   <script src="wasm_exec.js"></script>
//   <script>
//     const go = new Go();
//     WebAssembly.instantiateStreaming(fetch("btdsl.wasm"), go.importObject)
//       .then((result) => {
//         go.run(result.instance);
//         const handle = window.BTDSL.createWorkspace();
//         window.BTDSL.setDocument(handle, JSON.stringify({uri: "a.ast.json", text: "..."}));
//       });
//   </script>
package main

import (
	"syscall/js"

	"github.com/btdsl/btdsl/pkg/lspapi"
)

func main() {
	done := make(chan struct{})

	api := lspapi.NewAPI()
	registerAPI(api)

	js.Global().Get("console").Call("log", "btdsl WASM module initialized")

	<-done
}

// registerAPI exposes every lspapi method as a synchronous JS function
// under window.BTDSL, one js.Func per method, mirroring the teacher's
// single wasm.RegisterAPI() entry point.
func registerAPI(api *lspapi.API) {
	obj := js.Global().Get("Object").New()

	obj.Set("createWorkspace", js.FuncOf(func(this js.Value, args []js.Value) any {
		return api.CreateWorkspace()
	}))
	obj.Set("destroyWorkspace", js.FuncOf(func(this js.Value, args []js.Value) any {
		api.DestroyWorkspace(arg(args, 0))
		return nil
	}))
	obj.Set("setDocument", jsonMethod(api.SetDocument))
	obj.Set("removeDocument", jsonMethod(api.RemoveDocument))
	obj.Set("hasDocument", jsonMethod(api.HasDocument))
	obj.Set("diagnostics", jsonMethod(api.DiagnosticsJSON))
	obj.Set("completion", jsonMethod(api.CompletionJSON))
	obj.Set("hover", jsonMethod(api.HoverJSON))
	obj.Set("definition", jsonMethod(api.DefinitionJSON))
	obj.Set("documentSymbols", jsonMethod(api.DocumentSymbolsJSON))
	obj.Set("documentHighlights", jsonMethod(api.DocumentHighlightsJSON))
	obj.Set("semanticTokens", jsonMethod(api.SemanticTokensJSON))
	obj.Set("resolveImports", jsonMethod(api.ResolveImportsJSON))

	js.Global().Set("BTDSL", obj)
}

// jsonMethod adapts a (handle, payloadJSON string) string lspapi method into
// a js.Func taking (handle, payloadJSON) from JavaScript.
func jsonMethod(fn func(handle, payload string) string) js.Func {
	return js.FuncOf(func(this js.Value, args []js.Value) any {
		return fn(arg(args, 0), arg(args, 1))
	})
}

func arg(args []js.Value, i int) string {
	if i >= len(args) {
		return ""
	}
	return args[i].String()
}
