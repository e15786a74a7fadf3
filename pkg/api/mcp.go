package api

import (
	"github.com/hazyhaar/wordsort/pkg/kit"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// NewMCPServer builds an MCP server with every wordsort tool registered.
func NewMCPServer(svc *Service, version string) *server.MCPServer {
	srv := server.NewMCPServer("wordsort", version, server.WithToolCapabilities(false))
	RegisterMCPTools(srv, svc)
	return srv
}

// RegisterMCPTools registers the three wordsort MCP tools on the server.
func RegisterMCPTools(srv *server.MCPServer, svc *Service) {
	registerSortWords(srv, svc)
	registerListPresets(srv, svc)
	registerListLocales(srv, svc)
}

func registerSortWords(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("sort_words",
		mcp.WithDescription("Split text into words and sort them with locale-aware collation. Words are separated by whitespace, commas and semicolons."),
		mcp.WithString("text", mcp.Required(), mcp.Description("The raw text to sort")),
		mcp.WithString("preset", mcp.Description("Preset to start from (default, strict, dictionary or a custom one)")),
		mcp.WithString("locale", mcp.Description("BCP 47 locale tag used for collation (e.g. fr, en, tr)")),
		mcp.WithBoolean("descending", mcp.Description("Sort Z to A")),
		mcp.WithBoolean("case_sensitive", mcp.Description("Distinguish upper and lower case")),
		mcp.WithBoolean("keep_accents", mcp.Description("Distinguish accented letters")),
		mcp.WithBoolean("remove_duplicates", mcp.Description("Drop words equal under the active comparison")),
	)

	kit.RegisterMCPTool(srv, tool, sortPipeline(svc), func(req mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		args := req.GetArguments()
		text, _ := args["text"].(string)
		presetID, _ := args["preset"].(string)

		var o optionOverrides
		o.Ascending = negate(boolArg(args, "descending"))
		o.IgnoreCase = negate(boolArg(args, "case_sensitive"))
		o.IgnoreAccents = negate(boolArg(args, "keep_accents"))
		o.RemoveDuplicates = boolArg(args, "remove_duplicates")
		if v, ok := args["locale"].(string); ok && v != "" {
			o.Locale = &v
		}
		return &kit.MCPDecodeResult{Request: &sortReq{Text: text, Preset: presetID, Overrides: o}}, nil
	})
}

func registerListPresets(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("list_presets",
		mcp.WithDescription("List the sort presets with their options."),
	)

	kit.RegisterMCPTool(srv, tool, listPresetsEndpoint(svc), func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func registerListLocales(srv *server.MCPServer, svc *Service) {
	tool := mcp.NewTool("list_locales",
		mcp.WithDescription("List the locales available for collation and the fallback locale."),
	)

	kit.RegisterMCPTool(srv, tool, listLocalesEndpoint(svc), func(_ mcp.CallToolRequest) (*kit.MCPDecodeResult, error) {
		return &kit.MCPDecodeResult{Request: nil}, nil
	})
}

func boolArg(args map[string]any, name string) *bool {
	v, ok := args[name].(bool)
	if !ok {
		return nil
	}
	return &v
}

