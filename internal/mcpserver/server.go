// Package mcpserver provides an MCP (Model Context Protocol) server
// that exposes the course to LLM clients via stdio transport.
package mcpserver

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/starford/learnclj/internal/apperr"
	"github.com/starford/learnclj/internal/courseservice"
)

// ContentFormatURI is the resource URI of ContentFormatContract.
const ContentFormatURI = "learnclj://content-format"

// Server wraps the MCP server with course tools.
type Server struct {
	mcp *server.MCPServer
	svc *courseservice.Service
}

// New creates a new MCP server with all course tools registered.
func New(svc *courseservice.Service, version string) *Server {
	s := &Server{svc: svc}

	s.mcp = server.NewMCPServer(
		"learnclj",
		version,
		server.WithToolCapabilities(false),
		server.WithResourceCapabilities(false, false),
	)

	s.mcp.AddTool(mcp.NewTool("list_chapters",
		mcp.WithDescription("List the course chapters and their parts in reading order, with page URLs."),
	), s.listChapters)

	s.mcp.AddTool(mcp.NewTool("read_page",
		mcp.WithDescription("Read a rendered course page as JSON: prose HTML segments, code blocks "+
			"(lang, content, evaluable), outline and prev/next links."),
		mcp.WithString("chapter", mcp.Required(), mcp.Description("Chapter id (directory name)")),
		mcp.WithString("part", mcp.Description("Part id (file stem); omit for the chapter landing page")),
	), s.readPage)

	s.mcp.AddTool(mcp.NewTool("search_course",
		mcp.WithDescription("Full-text search through page titles and bodies."),
		mcp.WithString("query", mcp.Required(), mcp.Description("Search query string")),
		mcp.WithNumber("limit", mcp.Description("Maximum number of results (default 20)")),
	), s.searchCourse)

	s.mcp.AddTool(mcp.NewTool("get_content_contract",
		mcp.WithDescription("Returns the course content format: directory layout, header fields "+
			"and code fence conventions. Call this before drafting lessons."),
	), s.getContentContract)

	s.mcp.AddResource(
		mcp.NewResource(ContentFormatURI, "Content Format",
			mcp.WithResourceDescription("Layout and file format of course content."),
			mcp.WithMIMEType("text/markdown"),
		),
		s.readContentFormatResource,
	)

	return s
}

// ServeStdio starts the MCP server on stdin/stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcp)
}

// MCPServer returns the underlying server for testing.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcp
}

func jsonResult(v any) (*mcp.CallToolResult, error) {
	out, err := json.MarshalIndent(v, "", "  ")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return mcp.NewToolResultText(string(out)), nil
}

func (s *Server) listChapters(ctx context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	tree, err := s.svc.Tree(ctx)
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(courseservice.ViewOf(tree))
}

func (s *Server) readPage(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	chapter, err := req.RequireString("chapter")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	part := req.GetString("part", "")

	page, err := s.svc.Page(ctx, chapter, part)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			return mcp.NewToolResultError(fmt.Sprintf("not found: %s", err.Error())), nil
		}
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(page)
}

func (s *Server) searchCourse(ctx context.Context, req mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	query, err := req.RequireString("query")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	results, err := s.svc.Search(ctx, query, req.GetInt("limit", 20))
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}
	return jsonResult(results)
}

func (s *Server) getContentContract(_ context.Context, _ mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	return mcp.NewToolResultText(ContentFormatContract), nil
}

func (s *Server) readContentFormatResource(_ context.Context, _ mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
	return []mcp.ResourceContents{
		mcp.TextResourceContents{
			URI:      ContentFormatURI,
			MIMEType: "text/markdown",
			Text:     ContentFormatContract,
		},
	}, nil
}
