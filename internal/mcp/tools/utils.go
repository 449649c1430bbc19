package tools

import (
	"encoding/json"
	"fmt"
	"math"

	"github.com/mark3labs/mcp-go/mcp"
)

// positiveInt reads a JSON number argument. MCP clients send numbers as
// float64; fractional values are rejected.
func positiveInt(name string, value any) (int, error) {
	var n float64
	switch v := value.(type) {
	case float64:
		n = v
	case int:
		n = float64(v)
	case nil:
		return 0, fmt.Errorf("%s must be provided", name)
	default:
		return 0, fmt.Errorf("%s must be a number", name)
	}
	if n <= 0 || n != math.Trunc(n) {
		return 0, fmt.Errorf("%s must be a positive integer", name)
	}
	if n > math.MaxInt32 {
		return 0, fmt.Errorf("%s is out of range", name)
	}
	return int(n), nil
}

func jsonResult(v any) *mcp.CallToolResult {
	b, err := json.Marshal(v)
	if err != nil {
		return mcp.NewToolResultError("encode result: " + err.Error())
	}
	return mcp.NewToolResultText(string(b))
}
