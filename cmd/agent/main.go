package main

import (
	"context"
	"fmt"
	"log"
	"os"

	langchaingo_mcp_adapter "github.com/i2y/langchaingo-mcp-adapter"
	"github.com/mark3labs/mcp-go/client"
	"github.com/tmc/langchaingo/agents"
	"github.com/tmc/langchaingo/chains"
	"github.com/tmc/langchaingo/llms/openai"
)

// 演示：让 Agent 通过 MCP 工具创建并解析短链接。
// 需要先启动主服务并配置 MCP_SERVER_ADDRESS。
func main() {
	mcpServiceURL := os.Getenv("SNAPLINK_MCP_URL")
	if mcpServiceURL == "" {
		mcpServiceURL = "http://localhost:3000/mcp"
	}

	// 通过网络连接到已经启动的 snaplink MCP 服务
	mcpClient, err := client.NewStreamableHttpClient(mcpServiceURL)
	if err != nil {
		log.Fatalf("无法创建 MCP HTTP 客户端，请确保服务正在运行于 %s : %v", mcpServiceURL, err)
	}

	// 使用适配器从 MCP 服务获取所有可用工具
	adapter, err := langchaingo_mcp_adapter.New(mcpClient)
	if err != nil {
		log.Fatalf("无法创建 MCP 适配器: %v", err)
	}

	toolList, err := adapter.Tools()
	if err != nil {
		log.Fatalf("无法从 MCP 服务获取工具列表: %v", err)
	}

	log.Printf("从 MCP 服务成功加载了 %d 个工具。\n", len(toolList))
	for _, tool := range toolList {
		log.Printf("- 工具名称: %s", tool.Name())
	}

	ctx := context.Background()

	llm, err := openai.New(
		openai.WithBaseURL("https://dashscope.aliyuncs.com/compatible-mode/v1"),
		openai.WithModel("qwen-plus"),
	)
	if err != nil {
		log.Fatalf("创建 LLM 客户端失败: %v", err)
	}

	agent := agents.NewOneShotAgent(
		llm,
		toolList,
		agents.WithMaxIterations(5),
	)
	executor := agents.NewExecutor(agent)

	question := "请帮我为 https://go.dev/blog/error-handling-and-go 创建一个短链接，然后把生成的短码再解析回原始地址验证一下。"
	fmt.Println(">> 用户问题:", question)

	result, err := chains.Run(ctx, executor, question)
	if err != nil {
		log.Fatalf("Agent 执行出错: %v", err)
	}

	fmt.Println("\n>> Agent 的最终回答:")
	fmt.Println(result)
}
