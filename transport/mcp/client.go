package mcp

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"

	"github.com/wricardo/tactics-duel/game/command"
	"github.com/wricardo/tactics-duel/game/engine"
	"github.com/wricardo/tactics-duel/game/events"
	"github.com/wricardo/tactics-duel/game/service"
)

// Client is a thin MCP server that proxies tool calls to the REST API
type Client struct {
	baseURL    string
	httpClient *http.Client
	mcpServer  *server.MCPServer
}

// NewClient creates a new MCP client that calls the REST API at baseURL
func NewClient(baseURL string) *Client {
	c := &Client{
		baseURL: strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{
			Timeout: 10 * time.Second,
		},
	}

	c.initMCPServer()
	return c
}

// initMCPServer initializes the MCP server with all tools
func (c *Client) initMCPServer() {
	c.mcpServer = server.NewMCPServer(
		"Tactics Duel",
		"1.0.0",
		server.WithToolCapabilities(true),
		server.WithInstructions(`Tactics Duel - MCP Interface

Read-only operator view of the duel session server. Sessions are created by
browser renderers connecting to /ws; these tools inspect and close them.

AVAILABLE TOOLS:
- list_sessions: List live sessions with turn, round and player health
- get_session: Headline state of one session
- board_view: ASCII rendering of a session's board with unit stats
- close_session: Close a session and drop its connection
- list_configs: List available rule sets
- protocol_reference: Inbound event types and outbound command types`),
	)

	c.registerTools()
}

func sessionIDSchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type: "object",
		Properties: map[string]interface{}{
			"session_id": map[string]interface{}{
				"type":        "string",
				"description": "Session ID (UUID)",
			},
		},
		Required: []string{"session_id"},
	}
}

func emptySchema() mcp.ToolInputSchema {
	return mcp.ToolInputSchema{
		Type:       "object",
		Properties: map[string]interface{}{},
	}
}

// registerTools registers all MCP tools
func (c *Client) registerTools() {
	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_sessions",
		Description: "List all live duel sessions",
		InputSchema: emptySchema(),
	}, c.handleListSessions)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "get_session",
		Description: "Get the headline state of a session",
		InputSchema: sessionIDSchema(),
	}, c.handleGetSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "board_view",
		Description: "Render a session's board as ASCII with a unit legend",
		InputSchema: sessionIDSchema(),
	}, c.handleBoardView)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "close_session",
		Description: "Close a session; its WebSocket connection is dropped",
		InputSchema: sessionIDSchema(),
	}, c.handleCloseSession)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "list_configs",
		Description: "List available rule sets",
		InputSchema: emptySchema(),
	}, c.handleListConfigs)

	c.mcpServer.AddTool(mcp.Tool{
		Name:        "protocol_reference",
		Description: "Describe the WebSocket protocol: inbound event types and outbound command types",
		InputSchema: emptySchema(),
	}, c.handleProtocolReference)
}

// GetMCPServer returns the underlying MCP server for serving
func (c *Client) GetMCPServer() *server.MCPServer {
	return c.mcpServer
}

// HTTPHandler answers single JSON-RPC messages posted to it
func (c *Client) HTTPHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			http.Error(w, "Method not allowed", http.StatusMethodNotAllowed)
			return
		}

		body, err := io.ReadAll(r.Body)
		if err != nil {
			http.Error(w, "Failed to read request", http.StatusBadRequest)
			return
		}
		defer r.Body.Close()

		response := c.mcpServer.HandleMessage(r.Context(), body)
		if response == nil {
			// Notifications have no reply
			w.WriteHeader(http.StatusAccepted)
			return
		}

		responseData, err := json.Marshal(response)
		if err != nil {
			http.Error(w, "Failed to marshal response", http.StatusInternalServerError)
			return
		}
		w.Header().Set("Content-Type", "application/json")
		w.Write(responseData)
	})
}

// ServeStdio runs the MCP server over stdin/stdout until the input closes
func (c *Client) ServeStdio() error {
	return server.ServeStdio(c.mcpServer)
}

// Helper methods for API calls

func (c *Client) apiCall(ctx context.Context, method, path string, body interface{}, result interface{}) error {
	var reqBody io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return err
		}
		reqBody = bytes.NewBuffer(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reqBody)
	if err != nil {
		return err
	}

	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode >= 400 {
		var errResp map[string]string
		json.NewDecoder(resp.Body).Decode(&errResp)
		if msg, ok := errResp["error"]; ok {
			return fmt.Errorf("%s", msg)
		}
		return fmt.Errorf("API error: %d", resp.StatusCode)
	}

	if result != nil {
		return json.NewDecoder(resp.Body).Decode(result)
	}

	return nil
}

func sessionPath(id string, suffix string) string {
	return "/api/sessions/" + url.PathEscape(id) + suffix
}

// Tool handlers

func (c *Client) handleListSessions(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var response struct {
		Count    int                   `json:"count"`
		Sessions []service.SessionInfo `json:"sessions"`
	}

	if err := c.apiCall(ctx, "GET", "/api/sessions", nil, &response); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Live Sessions (%d):\n\n", response.Count)
	for _, s := range response.Sessions {
		fmt.Fprintf(&b, "- %s (Rules: %s, Round %d, %s, Created: %s)\n",
			s.ID, s.ConfigName, s.Round, turnLabel(s.GameOver, s.Turn, s.Winner), s.CreatedAt.Format("15:04:05"))
	}

	return mcp.NewToolResultText(b.String()), nil
}

func (c *Client) handleGetSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var info service.SessionInfo
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, ""), nil, &info); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatSessionInfo(&info)), nil
}

func (c *Client) handleBoardView(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var snap engine.Snapshot
	if err := c.apiCall(ctx, "GET", sessionPath(sessionID, "/state"), nil, &snap); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(formatBoard(&snap)), nil
}

func (c *Client) handleCloseSession(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	sessionID, err := request.RequireString("session_id")
	if err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	if err := c.apiCall(ctx, "DELETE", sessionPath(sessionID, ""), nil, nil); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	return mcp.NewToolResultText(fmt.Sprintf("Closed session %s", sessionID)), nil
}

func (c *Client) handleListConfigs(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var configs []service.ConfigInfo
	if err := c.apiCall(ctx, "GET", "/api/configs", nil, &configs); err != nil {
		return mcp.NewToolResultError(err.Error()), nil
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rule Sets (%d):\n\n", len(configs))
	for _, cfg := range configs {
		fmt.Fprintf(&b, "- %s: %s (%dx%d board, %d-card decks)\n",
			cfg.ConfigID, cfg.Name, cfg.BoardWidth, cfg.BoardHeight, cfg.DeckSize)
		if cfg.Description != "" {
			fmt.Fprintf(&b, "  %s\n", cfg.Description)
		}
	}
	b.WriteString("\nConnect with ws://<host>/ws?ruleset=<id> to play a rule set.\n")

	return mcp.NewToolResultText(b.String()), nil
}

var outboundCommands = []struct {
	name   string
	fields string
}{
	{command.TypeActorReady, "preloadImages"},
	{command.TypeError, "error"},
	{command.TypeDrawTile, "tile, mode"},
	{command.TypeDrawUnit, "unit, tile"},
	{command.TypeDeleteUnit, "unit"},
	{command.TypeSetUnitAttack, "unit, attack"},
	{command.TypeSetUnitHealth, "unit, health"},
	{command.TypeMoveUnitToTile, "unit, tile, yfirst?"},
	{command.TypePlayUnitAnimation, "unit, animation"},
	{"setPlayer1Health / setPlayer2Health", "player"},
	{"setPlayer1Mana / setPlayer2Mana", "player"},
	{command.TypeDrawCard, "card, position, mode"},
	{command.TypeDeleteCard, "position"},
	{command.TypePlayEffectAnimation, "effect, tile"},
	{command.TypeDrawProjectile, "effect, tile, targetTile, mode"},
	{"addPlayer1Notification / addPlayer2Notification", "text, seconds"},
}

func (c *Client) handleProtocolReference(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var b strings.Builder
	b.WriteString("TACTICS DUEL WEBSOCKET PROTOCOL\n\n")
	b.WriteString("Every frame is one JSON object whose \"messagetype\" field names it.\n")
	b.WriteString("Connecting to /ws opens a session; closing the socket discards it.\n\n")

	b.WriteString("INBOUND EVENTS (renderer -> server):\n")
	for _, t := range events.DefaultRegistry().Types() {
		fmt.Fprintf(&b, "- %s\n", t)
	}
	b.WriteString("Unknown types are ignored. Malformed JSON or bad fields produce an ERR command.\n\n")

	b.WriteString("OUTBOUND COMMANDS (server -> renderer):\n")
	for _, cmd := range outboundCommands {
		fmt.Fprintf(&b, "- %s {%s}\n", cmd.name, cmd.fields)
	}
	b.WriteString("\nCommands are delivered in emission order and never coalesced.\n")

	return mcp.NewToolResultText(b.String()), nil
}

// Formatting helpers

func turnLabel(gameOver bool, turn, winner engine.PlayerSlot) string {
	if gameOver {
		return fmt.Sprintf("Game over, player %d won", winner)
	}
	return fmt.Sprintf("Player %d to move", turn)
}

func formatSessionInfo(s *service.SessionInfo) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Session: %s\n", s.ID)
	fmt.Fprintf(&b, "Rules: %s\n", s.ConfigName)
	fmt.Fprintf(&b, "Created: %s\n", s.CreatedAt.Format(time.RFC3339))
	fmt.Fprintf(&b, "Last activity: %s\n", s.LastActivity.Format(time.RFC3339))
	fmt.Fprintf(&b, "Messages processed: %d\n", s.Processed)
	fmt.Fprintf(&b, "Round %d, %s\n\n", s.Round, turnLabel(s.GameOver, s.Turn, s.Winner))
	for _, p := range s.Players {
		fmt.Fprintf(&b, "Player %d: health %d, mana %d, %d cards in hand, %d in deck, %d units\n",
			p.Slot, p.Health, p.Mana, p.Hand, p.DeckSize, p.Units)
	}
	return b.String()
}

// unitGlyph marks avatars with their owner number and other units with the
// first letter of their name, upper case for player 1 and lower case for player 2
func unitGlyph(u engine.UnitSnapshot) string {
	if u.Avatar {
		return fmt.Sprintf("%d", u.Owner)
	}
	letter := "?"
	if u.Name != "" {
		letter = u.Name[:1]
	}
	if u.Owner == engine.Player2 {
		return strings.ToLower(letter)
	}
	return strings.ToUpper(letter)
}

func formatBoard(s *engine.Snapshot) string {
	grid := make([][]string, s.BoardHeight)
	for y := range grid {
		grid[y] = make([]string, s.BoardWidth)
		for x := range grid[y] {
			grid[y][x] = "."
		}
	}
	for _, h := range s.Highlighted {
		if h.TileY < 0 || h.TileY >= s.BoardHeight || h.TileX < 0 || h.TileX >= s.BoardWidth {
			continue
		}
		switch h.Mode {
		case engine.TileHighlighted:
			grid[h.TileY][h.TileX] = "+"
		case engine.TileAttackable:
			grid[h.TileY][h.TileX] = "x"
		}
	}
	for _, u := range s.Units {
		p := u.Position
		if p.TileY < 0 || p.TileY >= s.BoardHeight || p.TileX < 0 || p.TileX >= s.BoardWidth {
			continue
		}
		grid[p.TileY][p.TileX] = unitGlyph(u)
	}

	var b strings.Builder
	fmt.Fprintf(&b, "Rules: %s | Round %d | %s\n\n", s.Config, s.Round, turnLabel(s.GameOver, s.Turn, s.Winner))

	b.WriteString("   ")
	for x := 0; x < s.BoardWidth; x++ {
		fmt.Fprintf(&b, "%d ", x%10)
	}
	b.WriteString("\n")
	for y, row := range grid {
		fmt.Fprintf(&b, "%d  %s\n", y%10, strings.Join(row, " "))
	}

	b.WriteString("\nLegend: 1/2 = avatars, UPPER = player 1, lower = player 2, + = move target, x = attack target\n\n")

	units := append([]engine.UnitSnapshot(nil), s.Units...)
	sort.Slice(units, func(i, j int) bool { return units[i].ID < units[j].ID })
	b.WriteString("Units:\n")
	for _, u := range units {
		fmt.Fprintf(&b, "- #%d %s [%s] P%d at (%d,%d) atk %d hp %d",
			u.ID, u.Name, unitGlyph(u), u.Owner, u.Position.TileX, u.Position.TileY, u.Attack, u.Health)
		if u.Moved {
			b.WriteString(" moved")
		}
		if u.Attacked {
			b.WriteString(" attacked")
		}
		b.WriteString("\n")
	}

	b.WriteString("\nPlayers:\n")
	for _, p := range s.Players {
		fmt.Fprintf(&b, "- Player %d: health %d, mana %d, %d cards in hand, %d in deck\n",
			p.Slot, p.Health, p.Mana, len(p.Hand), p.DeckSize)
	}
	return b.String()
}
