package skel

import (
	"context"
	"encoding/json"
	"errors"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/shimware/skel/kit"
	"github.com/shimware/skel/registry"
)

// RegisterMCP registers the skeleton tools on an MCP server.
func (s *Service) RegisterMCP(srv *mcp.Server) {
	s.registerGenerateTool(srv)
	s.registerValidateTool(srv)
	s.registerGetSpecTool(srv)
	s.registerExportTool(srv)
	s.registerImportTool(srv)
	s.registerStatsTool(srv)
}

// inputSchema builds a JSON Schema object with type "object".
func inputSchema(properties map[string]any, required []string) map[string]any {
	sc := map[string]any{
		"type":       "object",
		"properties": properties,
	}
	if len(required) > 0 {
		sc["required"] = required
	}
	return sc
}

// --- generate ---

type mcpGenerateRequest struct {
	Name   string         `json:"name"`
	HTML   string         `json:"html"`
	Params map[string]any `json:"params,omitempty"`
}

func (s *Service) registerGenerateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "skel_generate",
		Description: "Generate a skeleton spec from an HTML fragment. Results are cached per component and params.",
		InputSchema: inputSchema(map[string]any{
			"name":   map[string]any{"type": "string", "description": "Component name used as the cache key"},
			"html":   map[string]any{"type": "string", "description": "HTML fragment to derive the skeleton from"},
			"params": map[string]any{"type": "object", "description": "Optional variant params folded into the cache key"},
		}, []string{"name", "html"}),
	}

	endpoint := func(ctx context.Context, req any) (any, error) {
		r := req.(*mcpGenerateRequest)
		if r.Name == "" || r.HTML == "" {
			return nil, errors.New("name and html are required")
		}
		return s.Generate(ctx, r.Name, []byte(r.HTML), r.Params)
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[mcpGenerateRequest])
}

// --- validate ---

type mcpValidateRequest struct {
	Spec json.RawMessage `json:"spec"`
}

func (s *Service) registerValidateTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "skel_validate",
		Description: "Validate a serialized skeleton spec. Returns every violation, not just the first.",
		InputSchema: inputSchema(map[string]any{
			"spec": map[string]any{"type": "object", "description": "Skeleton spec document"},
		}, []string{"spec"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*mcpValidateRequest)
		return s.ValidateJSON(r.Spec), nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[mcpValidateRequest])
}

// --- get spec ---

type mcpGetSpecRequest struct {
	Key string `json:"key"`
}

func (s *Service) registerGetSpecTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "skel_get_spec",
		Description: "Fetch a cached or predefined skeleton spec by its key.",
		InputSchema: inputSchema(map[string]any{
			"key": map[string]any{"type": "string", "description": "Cache key (component::params)"},
		}, []string{"key"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*mcpGetSpecRequest)
		result, ok := s.reg.Get(r.Key)
		if !ok {
			return nil, errors.New("no spec under key " + r.Key)
		}
		return result, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[mcpGetSpecRequest])
}

// --- export / import ---

func (s *Service) registerExportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "skel_cache_export",
		Description: "Export all cached and predefined skeleton specs as a JSON array.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(_ context.Context, _ any) (any, error) {
		data, err := s.reg.Export()
		if err != nil {
			return nil, err
		}
		var entries []registry.Entry
		if err := json.Unmarshal(data, &entries); err != nil {
			return nil, err
		}
		return entries, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[struct{}])
}

type mcpImportRequest struct {
	Entries json.RawMessage `json:"entries"`
}

func (s *Service) registerImportTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "skel_cache_import",
		Description: "Import previously exported skeleton specs. Invalid entries are dropped, a malformed document is rejected whole.",
		InputSchema: inputSchema(map[string]any{
			"entries": map[string]any{"type": "array", "description": "Exported entries ([{key, spec}])"},
		}, []string{"entries"}),
	}

	endpoint := func(_ context.Context, req any) (any, error) {
		r := req.(*mcpImportRequest)
		n, err := s.reg.Import(r.Entries)
		if err != nil {
			return nil, err
		}
		return map[string]int{"imported": n}, nil
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[mcpImportRequest])
}

// --- stats ---

func (s *Service) registerStatsTool(srv *mcp.Server) {
	tool := &mcp.Tool{
		Name:        "skel_stats",
		Description: "Cache hit/miss counters and generation outcome totals.",
		InputSchema: inputSchema(map[string]any{}, nil),
	}

	endpoint := func(ctx context.Context, _ any) (any, error) {
		return s.Stats(ctx)
	}

	kit.RegisterMCPTool(srv, tool, endpoint, decodeInto[struct{}])
}

// decodeInto unmarshals tool arguments into a typed request.
func decodeInto[T any](req *mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
	var r T
	if len(req.Params.Arguments) > 0 {
		if err := json.Unmarshal(req.Params.Arguments, &r); err != nil {
			return nil, err
		}
	}
	return &kit.MCPDecodeResult{Request: &r}, nil
}
