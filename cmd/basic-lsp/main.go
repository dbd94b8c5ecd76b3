package main

import (
	"strings"

	"github.com/tliron/commonlog"
	_ "github.com/tliron/commonlog/simple"
	"github.com/tliron/glsp"
	protocol "github.com/tliron/glsp/protocol_3_16"
	"github.com/tliron/glsp/server"

	"linebasic/internal/lsp"
)

const (
	lsName  = "basic-lsp"
	version = "0.1"
)

var store = lsp.NewStore()
var handler protocol.Handler
var log = commonlog.GetLogger(lsName)

func main() {
	commonlog.Configure(1, nil)

	handler = protocol.Handler{
		Initialize:                     initialize,
		Initialized:                    initialized,
		Shutdown:                       shutdown,
		TextDocumentDidOpen:            textDocumentDidOpen,
		TextDocumentDidChange:          textDocumentDidChange,
		TextDocumentDidSave:            textDocumentDidSave,
		TextDocumentDidClose:           textDocumentDidClose,
		TextDocumentFormatting:         textDocumentFormatting,
		TextDocumentSemanticTokensFull: textDocumentSemanticTokensFull,
		TextDocumentDefinition:         textDocumentDefinition,
		TextDocumentDocumentSymbol:     textDocumentDocumentSymbol,
	}

	server := server.NewServer(&handler, lsName, false)
	server.RunStdio()
}

func initialize(ctx *glsp.Context, params *protocol.InitializeParams) (any, error) {
	full := protocol.TextDocumentSyncKindFull
	caps := protocol.ServerCapabilities{
		TextDocumentSync: &protocol.TextDocumentSyncOptions{
			OpenClose: &protocol.True,
			Change:    &full,
			Save:      protocol.SaveOptions{IncludeText: &protocol.False},
		},
		SemanticTokensProvider: &protocol.SemanticTokensOptions{
			Legend: protocol.SemanticTokensLegend{
				TokenTypes:     lsp.TokenTypes,
				TokenModifiers: lsp.TokenModifiers,
			},
			Full:  true,
			Range: false,
		},
		DocumentFormattingProvider: true,
		DefinitionProvider:         true,
		DocumentSymbolProvider:     true,
	}

	log.Infof("initialize: %s %s", lsName, version)
	return protocol.InitializeResult{
		Capabilities: caps,
		ServerInfo: &protocol.InitializeResultServerInfo{
			Name:    lsName,
			Version: ptrString(version),
		},
	}, nil
}

func initialized(ctx *glsp.Context, params *protocol.InitializedParams) error {
	return nil
}

func shutdown(ctx *glsp.Context) error {
	protocol.SetTraceValue(protocol.TraceValueOff)
	return nil
}

func isProgram(uri string) bool {
	return strings.HasSuffix(strings.ToLower(uri), ".bas")
}

func textDocumentDidOpen(ctx *glsp.Context, params *protocol.DidOpenTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	doc := store.Set(uri, params.TextDocument.Text)
	return publishDiagnostics(ctx, uri, doc)
}

func textDocumentDidChange(ctx *glsp.Context, params *protocol.DidChangeTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if len(params.ContentChanges) == 0 {
		return nil
	}

	text, ok := extractFullText(params.ContentChanges[len(params.ContentChanges)-1])
	if !ok {
		log.Warningf("ignoring incremental change for %s", uri)
		return nil
	}

	doc := store.Set(uri, text)
	return publishDiagnostics(ctx, uri, doc)
}

func textDocumentDidSave(ctx *glsp.Context, params *protocol.DidSaveTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	if doc, ok := store.Get(uri); ok {
		return publishDiagnostics(ctx, uri, doc)
	}
	return nil
}

func textDocumentDidClose(ctx *glsp.Context, params *protocol.DidCloseTextDocumentParams) error {
	uri := string(params.TextDocument.URI)
	store.Delete(uri)
	return publishDiagnostics(ctx, uri, nil)
}

func textDocumentFormatting(ctx *glsp.Context, params *protocol.DocumentFormattingParams) ([]protocol.TextEdit, error) {
	uri := string(params.TextDocument.URI)
	doc, ok := store.Get(uri)
	if !ok || !isProgram(uri) {
		return []protocol.TextEdit{}, nil
	}
	return lsp.Formatting(doc), nil
}

func textDocumentSemanticTokensFull(ctx *glsp.Context, params *protocol.SemanticTokensParams) (*protocol.SemanticTokens, error) {
	uri := string(params.TextDocument.URI)
	doc, ok := store.Get(uri)
	if !ok {
		return &protocol.SemanticTokens{Data: []uint32{}}, nil
	}

	sem := lsp.SemanticTokensForText(doc.Text)
	data := lsp.EncodeSemanticTokens(sem)
	return &protocol.SemanticTokens{Data: data}, nil
}

func textDocumentDefinition(ctx *glsp.Context, params *protocol.DefinitionParams) (any, error) {
	uri := string(params.TextDocument.URI)
	doc, ok := store.Get(uri)
	if !ok {
		return nil, nil
	}
	rng, ok := lsp.DefinitionAt(doc, params.Position)
	if !ok {
		return nil, nil
	}
	return []protocol.Location{{URI: params.TextDocument.URI, Range: rng}}, nil
}

func textDocumentDocumentSymbol(ctx *glsp.Context, params *protocol.DocumentSymbolParams) (any, error) {
	doc, ok := store.Get(string(params.TextDocument.URI))
	if !ok {
		return []protocol.DocumentSymbol{}, nil
	}
	return lsp.DocumentSymbols(doc), nil
}

func publishDiagnostics(ctx *glsp.Context, uri string, doc *lsp.Document) error {
	diags := []protocol.Diagnostic{}
	if doc != nil && isProgram(uri) {
		diags = lsp.Diagnostics(doc)
	}
	log.Debugf("publish %d diagnostics for %s", len(diags), uri)
	ctx.Notify(protocol.ServerTextDocumentPublishDiagnostics, &protocol.PublishDiagnosticsParams{
		URI:         protocol.DocumentUri(uri),
		Diagnostics: diags,
	})
	return nil
}

func extractFullText(change any) (string, bool) {
	switch typed := change.(type) {
	case protocol.TextDocumentContentChangeEventWhole:
		return typed.Text, true
	case protocol.TextDocumentContentChangeEvent:
		return typed.Text, true
	default:
		return "", false
	}
}

func ptrString(s string) *string { return &s }
