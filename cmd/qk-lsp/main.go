// Command qk-lsp is a language server for Questicle scripts: full-text
// sync, parse and type diagnostics, hover docs, completion, document
// symbols and whole-document formatting over stdio.
package main

import (
	"bufio"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"os"
	"strconv"
	"strings"
)

func main() {
	log.SetOutput(os.Stderr)
	log.SetPrefix("qk-lsp: ")
	log.SetFlags(0)

	srv := newServer(bufio.NewWriter(os.Stdout))
	reader := bufio.NewReader(os.Stdin)
	for {
		body, err := readMessage(reader)
		if err != nil {
			if err == io.EOF {
				return
			}
			log.Printf("read: %v", err)
			return
		}
		var req request
		if err := json.Unmarshal(body, &req); err != nil {
			log.Printf("decode: %v", err)
			continue
		}
		srv.dispatch(&req)
	}
}

// readMessage reads one Content-Length framed JSON-RPC message.
func readMessage(r *bufio.Reader) ([]byte, error) {
	length := 0
	for {
		line, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		line = strings.TrimRight(line, "\r\n")
		if line == "" {
			break
		}
		if v, ok := strings.CutPrefix(line, "Content-Length: "); ok {
			length, err = strconv.Atoi(strings.TrimSpace(v))
			if err != nil {
				return nil, err
			}
		}
	}
	if length <= 0 {
		return nil, fmt.Errorf("missing Content-Length")
	}
	body := make([]byte, length)
	if _, err := io.ReadFull(r, body); err != nil {
		return nil, err
	}
	return body, nil
}

func (s *server) dispatch(req *request) {
	switch req.Method {
	case "initialize":
		caps := serverCapabilities{
			TextDocumentSync:           1,
			HoverProvider:              true,
			DocumentSymbolProvider:     true,
			DocumentFormattingProvider: true,
		}
		s.reply(req.ID, initializeResult{
			Capabilities: caps,
			ServerInfo:   serverInfo{Name: "qk-lsp", Version: serverVersion()},
		})
	case "initialized":
		// client ack, nothing to do
	case "shutdown":
		s.reply(req.ID, nil)
	case "exit":
		os.Exit(0)
	case "textDocument/didOpen":
		var p didOpenParams
		if json.Unmarshal(req.Params, &p) == nil {
			s.open(p.TextDocument.URI, p.TextDocument.Text)
		}
	case "textDocument/didChange":
		var p didChangeParams
		if json.Unmarshal(req.Params, &p) == nil && len(p.ContentChanges) > 0 {
			// full sync: the last change is the whole document
			s.open(p.TextDocument.URI, p.ContentChanges[len(p.ContentChanges)-1].Text)
		}
	case "textDocument/didClose":
		var p didCloseParams
		if json.Unmarshal(req.Params, &p) == nil {
			s.close(p.TextDocument.URI)
		}
	case "textDocument/hover":
		var p textDocumentPositionParams
		if json.Unmarshal(req.Params, &p) != nil {
			s.reply(req.ID, nil)
			return
		}
		s.reply(req.ID, s.hover(p))
	case "textDocument/completion":
		var p textDocumentPositionParams
		if json.Unmarshal(req.Params, &p) != nil {
			s.reply(req.ID, []completionItem{})
			return
		}
		s.reply(req.ID, s.complete(p))
	case "textDocument/documentSymbol":
		var p documentParams
		if json.Unmarshal(req.Params, &p) != nil {
			s.reply(req.ID, []symbolInformation{})
			return
		}
		s.reply(req.ID, s.symbols(p.TextDocument.URI))
	case "textDocument/formatting":
		var p documentParams
		if json.Unmarshal(req.Params, &p) != nil {
			s.reply(req.ID, []textEdit{})
			return
		}
		s.reply(req.ID, s.format(p.TextDocument.URI))
	default:
		if req.ID != nil {
			s.replyError(req.ID, -32601, "method not found: "+req.Method)
		}
	}
}
