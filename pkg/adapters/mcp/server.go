package mcp

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/rulebook"
	"github.com/aretw0/rulebook/internal/compiler"
	"github.com/aretw0/rulebook/pkg/domain"
	"github.com/aretw0/rulebook/pkg/ports"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// RulesURI is the resource exposing the configured rule book.
const RulesURI = "rulebook://rules"

// EvaluateResponse is the structured result of evaluate_rules and run_rulebook.
type EvaluateResponse struct {
	Payloads []any          `json:"payloads" jsonschema_description:"Payloads of the rules whose condition held, in rule order"`
	Report   *domain.Report `json:"report" jsonschema_description:"Per-rule outcomes; aborted is true when a malformed rule stopped the pass"`
}

// CheckResponse is the structured result of check_condition.
type CheckResponse struct {
	Result bool        `json:"result" jsonschema_description:"Whether the condition holds"`
	Trace  []TraceNode `json:"trace,omitempty" jsonschema_description:"Evaluation trace in depth-first order, when explain is set"`
}

// TraceNode is one node of an evaluation trace. The tree shape is carried by
// Path ("$", "$.all[0]", "$.all[0].any[1]") so the output schema stays flat.
type TraceNode struct {
	Path    string `json:"path"`
	Kind    string `json:"kind"`
	ID      string `json:"id,omitempty"`
	Result  bool   `json:"result"`
	Skipped bool   `json:"skipped,omitempty"`
}

// FlattenTrace lists t and its descendants in depth-first order.
func FlattenTrace(t domain.Trace) []TraceNode {
	var out []TraceNode
	var walk func(t domain.Trace, path string)
	walk = func(t domain.Trace, path string) {
		out = append(out, TraceNode{Path: path, Kind: t.Kind, ID: t.ID, Result: t.Result, Skipped: t.Skipped})
		for i, c := range t.Children {
			walk(c, fmt.Sprintf("%s.%s[%d]", path, t.Kind, i))
		}
	}
	walk(t, "$")
	return out
}

// Server wraps the rulebook Engine and exposes it as an MCP Server.
type Server struct {
	engine    ports.Evaluator
	rules     ports.RuleLoader
	facts     ports.FactLoader
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithSources registers the rules and facts used by run_rulebook and the
// rules resource. Either may be nil.
func WithSources(rules ports.RuleLoader, facts ports.FactLoader) Option {
	return func(s *Server) {
		s.rules = rules
		s.facts = facts
	}
}

// WithLogger sets the logger. Logs must not go to stdout when serving stdio.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine ports.Evaluator, opts ...Option) *Server {
	s := &Server{
		engine: engine,
		logger: slog.Default(),
		mcpServer: server.NewMCPServer("rulebook-mcp", strings.TrimSpace(rulebook.Version),
			server.WithToolCapabilities(false),
			server.WithResourceCapabilities(false, false),
		),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// MCPServer returns the underlying mcp-go server.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

func (s *Server) registerTools() {
	// TOOL: evaluate_rules
	evaluateTool := mcp.NewTool("evaluate_rules",
		mcp.WithDescription("Evaluate a list of rules against a fact set and return the payloads of the rules that fire."),
		mcp.WithString("rules", mcp.Required(), mcp.Description(`JSON rules document ({"rules": [{"cond": ..., "payload": ...}]}) or bare JSON list of rules`)),
		mcp.WithString("vals", mcp.Required(), mcp.Description(`JSON array of fact identifiers, e.g. ["a", "b"]`)),
		mcp.WithOutputSchema[EvaluateResponse](),
	)
	s.mcpServer.AddTool(evaluateTool, mcp.NewStructuredToolHandler(s.handleEvaluate))

	// TOOL: check_condition
	checkTool := mcp.NewTool("check_condition",
		mcp.WithDescription("Evaluate a single condition tree (string, or object with one of any/all/val) against a fact set."),
		mcp.WithString("cond", mcp.Required(), mcp.Description(`JSON condition, e.g. {"all": ["a", {"any": ["x", "b"]}]}`)),
		mcp.WithString("vals", mcp.Required(), mcp.Description("JSON array of fact identifiers")),
		mcp.WithBoolean("explain", mcp.Description("Include the evaluation trace")),
		mcp.WithOutputSchema[CheckResponse](),
	)
	s.mcpServer.AddTool(checkTool, mcp.NewStructuredToolHandler(s.handleCheck))

	if s.rules == nil || s.facts == nil {
		return
	}

	// TOOL: run_rulebook
	s.mcpServer.AddTool(mcp.NewTool("run_rulebook",
		mcp.WithDescription("Evaluate the configured rule book against the configured fact set."),
		mcp.WithOutputSchema[EvaluateResponse](),
	), mcp.NewStructuredToolHandler(s.handleRun))
}

func (s *Server) handleEvaluate(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResponse, error) {
	rulesStr, _ := args["rules"].(string)
	valsStr, _ := args["vals"].(string)

	book, err := parseRules(rulesStr)
	if err != nil {
		return EvaluateResponse{}, err
	}
	facts, err := parseVals(valsStr)
	if err != nil {
		return EvaluateResponse{}, err
	}

	return s.evaluate(ctx, book, facts)
}

func (s *Server) handleRun(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (EvaluateResponse, error) {
	facts, err := s.facts.LoadFacts(ctx)
	if err != nil {
		return EvaluateResponse{}, fmt.Errorf("failed to load facts: %w", err)
	}
	book, err := s.rules.LoadRules(ctx)
	if err != nil {
		return EvaluateResponse{}, fmt.Errorf("failed to load rules: %w", err)
	}
	return s.evaluate(ctx, book, facts)
}

// evaluate reports aborted passes through the report rather than as a tool
// error, so the caller still sees the outcomes of the rules before the abort.
func (s *Server) evaluate(ctx context.Context, book domain.RuleBook, facts domain.FactSet) (EvaluateResponse, error) {
	report, err := s.engine.Run(ctx, book, facts)
	if report == nil {
		return EvaluateResponse{}, fmt.Errorf("evaluation failed: %w", err)
	}
	if err != nil {
		s.logger.Warn("MCP evaluate: pass did not complete", "err", err)
	}
	payloads := report.Payloads()
	if payloads == nil {
		payloads = []any{}
	}
	return EvaluateResponse{Payloads: payloads, Report: report}, nil
}

func (s *Server) handleCheck(ctx context.Context, request mcp.CallToolRequest, args map[string]interface{}) (CheckResponse, error) {
	condStr, _ := args["cond"].(string)
	valsStr, _ := args["vals"].(string)
	explain, _ := args["explain"].(bool)

	cond, err := compiler.DecodeJSON([]byte(condStr))
	if err != nil {
		return CheckResponse{}, fmt.Errorf("%w: cond: %v", domain.ErrMalformedDocument, err)
	}
	facts, err := parseVals(valsStr)
	if err != nil {
		return CheckResponse{}, err
	}

	if explain {
		trace, err := s.engine.Explain(cond, facts)
		if err != nil {
			return CheckResponse{}, err
		}
		return CheckResponse{Result: trace.Result, Trace: FlattenTrace(*trace)}, nil
	}

	result, err := s.engine.Check(cond, facts)
	if err != nil {
		return CheckResponse{}, err
	}
	return CheckResponse{Result: result}, nil
}

func (s *Server) registerResources() {
	if s.rules == nil {
		return
	}

	// EXPOSE: rulebook://rules
	s.mcpServer.AddResource(mcp.NewResource(RulesURI, "Configured Rule Book",
		mcp.WithMIMEType("application/json"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		book, err := s.rules.LoadRules(ctx)
		if err != nil {
			return nil, fmt.Errorf("failed to load rules: %w", err)
		}
		jsonBytes, err := json.Marshal(map[string]any{domain.KeyRules: book.Entries})
		if err != nil {
			return nil, fmt.Errorf("failed to encode rules: %w", err)
		}

		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      RulesURI,
				MIMEType: "application/json",
				Text:     string(jsonBytes),
			},
		}, nil
	})
}

// parseRules accepts either a whole rules document or a bare list of rules.
func parseRules(s string) (domain.RuleBook, error) {
	doc, err := compiler.DecodeDocument([]byte(s), compiler.FormatJSON)
	if err != nil {
		return domain.RuleBook{}, fmt.Errorf("rules: %w", err)
	}
	if list, ok := doc.([]any); ok {
		return domain.RuleBook{Source: "mcp", Entries: list}, nil
	}
	return compiler.RuleBookFromDocument("mcp", doc)
}

func parseVals(s string) (domain.FactSet, error) {
	raw, err := compiler.DecodeDocument([]byte(s), compiler.FormatJSON)
	if err != nil {
		return domain.FactSet{}, fmt.Errorf("vals: %w", err)
	}
	return compiler.FactSetFromList(raw)
}
