package mcpserver

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/mlin93/snaplink/internal/model"
	"github.com/mlin93/snaplink/internal/service"
)

// New 构建一个 MCP 服务器，把短链接的核心操作暴露成工具，
// 供 Agent（见 cmd/agent）或其它 MCP 客户端调用。
// shorten_url 以配置的服务账号身份创建记录。
func New(urlService *service.URLService, serviceUserID int64) *server.MCPServer {
	s := server.NewMCPServer("snaplink", "1.0.0", server.WithToolCapabilities(false))

	shortenTool := mcp.NewTool("shorten_url",
		mcp.WithDescription("为给定的目标 URL 创建短链接，返回创建的记录"),
		mcp.WithString("url", mcp.Required(), mcp.Description("要缩短的目标 URL，必须是 http/https 地址")),
		mcp.WithString("custom_code", mcp.Description("可选的自定义短码，3-50 位字母数字、连字符或下划线")),
		mcp.WithString("title", mcp.Description("可选的标题")),
	)
	s.AddTool(shortenTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if serviceUserID == 0 {
			return mcp.NewToolResultError("未配置 MCP 服务账号，无法创建短链接"), nil
		}

		rawURL, err := request.RequireString("url")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		req := model.CreateURLRequest{
			OriginalURL: rawURL,
			CustomCode:  request.GetString("custom_code", ""),
		}
		if title := request.GetString("title", ""); title != "" {
			req.Title = &title
		}

		created, err := urlService.Create(ctx, serviceUserID, req)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		payload, err := json.Marshal(model.NewURLResponse(created))
		if err != nil {
			return nil, fmt.Errorf("failed to marshal url response: %w", err)
		}
		return mcp.NewToolResultText(string(payload)), nil
	})

	resolveTool := mcp.NewTool("resolve_url",
		mcp.WithDescription("把短码解析回原始目标 URL"),
		mcp.WithString("code", mcp.Required(), mcp.Description("短码")),
	)
	s.AddTool(resolveTool, func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		code, err := request.RequireString("code")
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}

		resolved, err := urlService.Resolve(ctx, code)
		if err != nil {
			return mcp.NewToolResultError(err.Error()), nil
		}
		return mcp.NewToolResultText(resolved.OriginalUrl), nil
	})

	return s
}

// NewHTTPServer 包装成 Streamable HTTP 形式，挂载在 /mcp 路径
func NewHTTPServer(s *server.MCPServer) *server.StreamableHTTPServer {
	return server.NewStreamableHTTPServer(s)
}
