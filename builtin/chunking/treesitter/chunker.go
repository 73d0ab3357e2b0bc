// Package treesitter implements chunking using Tree-sitter for AST-aware splitting.
//
// One chunk is emitted per top-level definition (function, method,
// class), including its decorators and leading comment block. Top-level
// code outside any definition is grouped into statement runs bounded by
// blank-line gaps. Nested definitions stay inside their enclosing
// chunk unless the enclosing body grows past the configured maximum, in
// which case they are emitted separately and the outer chunk shrinks to
// its signature.
package treesitter

import (
	"context"
	"fmt"
	"sort"
	"strings"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/bash"
	tsc "github.com/smacker/go-tree-sitter/c"
	"github.com/smacker/go-tree-sitter/cpp"
	"github.com/smacker/go-tree-sitter/csharp"
	"github.com/smacker/go-tree-sitter/elixir"
	"github.com/smacker/go-tree-sitter/golang"
	"github.com/smacker/go-tree-sitter/java"
	"github.com/smacker/go-tree-sitter/javascript"
	"github.com/smacker/go-tree-sitter/kotlin"
	"github.com/smacker/go-tree-sitter/lua"
	"github.com/smacker/go-tree-sitter/php"
	"github.com/smacker/go-tree-sitter/python"
	"github.com/smacker/go-tree-sitter/ruby"
	"github.com/smacker/go-tree-sitter/rust"
	"github.com/smacker/go-tree-sitter/scala"
	"github.com/smacker/go-tree-sitter/sql"
	"github.com/smacker/go-tree-sitter/swift"
	"github.com/smacker/go-tree-sitter/typescript/tsx"
	tstype "github.com/smacker/go-tree-sitter/typescript/typescript"

	"github.com/spetr/mcp-coderag/pkg/provider"
	"github.com/spetr/mcp-coderag/pkg/types"
)

// Default values
const (
	DefaultMaxChunkBytes  = 6000 // bytes before nested definitions are split out
	DefaultSmallFileLines = 30   // files at or under this become a single chunk
	DefaultGapLines       = 2    // blank lines that end a statement run
)

// Config contains configuration for TreeSitter chunking.
type Config struct {
	MaxChunkBytes  int // Max chunk size in bytes
	SmallFileLines int // Single-chunk threshold
	GapLines       int // Blank-line gap that separates statement runs
}

// Chunker implements AST-aware chunking using Tree-sitter.
type Chunker struct {
	config Config
}

// New creates a new TreeSitter chunker.
func New(cfg Config) *Chunker {
	if cfg.MaxChunkBytes <= 0 {
		cfg.MaxChunkBytes = DefaultMaxChunkBytes
	}
	if cfg.SmallFileLines <= 0 {
		cfg.SmallFileLines = DefaultSmallFileLines
	}
	if cfg.GapLines <= 0 {
		cfg.GapLines = DefaultGapLines
	}
	return &Chunker{config: cfg}
}

// Name returns the strategy name.
func (c *Chunker) Name() string {
	return "treesitter"
}

// getParser returns a parser for the given language.
func (c *Chunker) getParser(lang string) (*sitter.Parser, bool) {
	var language *sitter.Language

	switch lang {
	case "go":
		language = golang.GetLanguage()
	case "python":
		language = python.GetLanguage()
	case "javascript", "jsx":
		language = javascript.GetLanguage()
	case "typescript":
		language = tstype.GetLanguage()
	case "tsx":
		language = tsx.GetLanguage()
	case "rust":
		language = rust.GetLanguage()
	case "java":
		language = java.GetLanguage()
	case "c", "h":
		language = tsc.GetLanguage()
	case "cpp", "hpp", "cc", "cxx":
		language = cpp.GetLanguage()
	case "ruby", "rb":
		language = ruby.GetLanguage()
	case "php":
		language = php.GetLanguage()
	case "csharp", "cs":
		language = csharp.GetLanguage()
	case "kotlin", "kt", "kts":
		language = kotlin.GetLanguage()
	case "swift":
		language = swift.GetLanguage()
	case "scala", "sc":
		language = scala.GetLanguage()
	case "lua":
		language = lua.GetLanguage()
	case "sql":
		language = sql.GetLanguage()
	case "bash", "sh", "shell":
		language = bash.GetLanguage()
	case "elixir", "ex", "exs":
		language = elixir.GetLanguage()
	default:
		return nil, false
	}

	parser := sitter.NewParser()
	parser.SetLanguage(language)

	return parser, true
}

// supportedLanguages lists every language getParser accepts.
var supportedLanguages = []string{
	"go", "python", "javascript", "jsx", "typescript", "tsx",
	"rust", "java", "c", "h", "cpp", "ruby", "php", "csharp",
	"kotlin", "swift", "scala", "lua", "bash", "elixir",
}

// Chunk splits a file into semantic chunks based on AST structure.
// Re-chunking an unchanged file produces identical chunk ids.
func (c *Chunker) Chunk(file *types.SourceFile) ([]*types.Chunk, error) {
	parser, ok := c.getParser(file.Language)
	if !ok {
		return nil, fmt.Errorf("language %s not supported by TreeSitter: %w", file.Language, types.ErrParseError)
	}
	defer parser.Close()

	tree, err := parser.ParseCtx(context.Background(), nil, file.Content)
	if err != nil {
		return nil, fmt.Errorf("parsing %s: %w", file.Path, types.ErrParseError)
	}
	defer tree.Close()

	root := tree.RootNode()
	if root == nil {
		return nil, fmt.Errorf("parsing %s: empty tree: %w", file.Path, types.ErrParseError)
	}

	content := string(file.Content)
	lines := splitLines(content)
	if len(lines) == 0 || strings.TrimSpace(content) == "" {
		return nil, nil
	}

	// Small files are a single chunk, whatever their structure.
	if len(lines) <= c.config.SmallFileLines {
		return []*types.Chunk{c.createChunk(file, lines, types.ChunkKindUnknown, "", "", 1, len(lines))}, nil
	}

	b := &builder{
		chunker: c,
		file:    file,
		content: content,
		lines:   lines,
	}
	b.walkTopLevel(root)
	b.flushRun()

	chunks := b.chunks
	sort.Slice(chunks, func(i, j int) bool {
		if chunks[i].StartLine != chunks[j].StartLine {
			return chunks[i].StartLine < chunks[j].StartLine
		}
		return chunks[i].EndLine < chunks[j].EndLine
	})

	// Whole file as one chunk when the AST yielded nothing usable.
	if len(chunks) == 0 {
		chunks = append(chunks, c.createChunk(file, lines, types.ChunkKindUnknown, "", "", 1, len(lines)))
	}

	return chunks, nil
}

// builder accumulates chunks during a single top-level pass.
type builder struct {
	chunker *Chunker
	file    *types.SourceFile
	content string
	lines   []string
	chunks  []*types.Chunk

	// pending statement run, as line bounds
	runStart int
	runEnd   int
	sawDef   bool
	// comments waiting to attach to the next definition
	commentStart int
	commentEnd   int
}

// walkTopLevel visits the root's children once: definitions become
// chunks, everything else accumulates into statement runs.
func (b *builder) walkTopLevel(root *sitter.Node) {
	for i := 0; i < int(root.NamedChildCount()); i++ {
		node := root.NamedChild(i)
		nodeStart := int(node.StartPoint().Row) + 1
		nodeEnd := int(node.EndPoint().Row) + 1

		kind, name := b.chunker.classifyNode(node.Type(), node, b.content, b.file.Language)
		if kind != "" {
			b.flushRun()
			start := nodeStart
			// Attach the directly preceding comment block.
			if b.commentEnd == nodeStart-1 && b.commentStart > 0 {
				start = b.commentStart
			}
			b.commentStart, b.commentEnd = 0, 0
			b.emitDefinition(node, kind, name, "", start, nodeEnd)
			b.sawDef = true
			continue
		}

		if isCommentNode(node.Type()) {
			// Buffer; attaches to a definition only when adjacent.
			if b.commentEnd == 0 || nodeStart > b.commentEnd+1 {
				b.flushComments()
				b.commentStart = nodeStart
			}
			b.commentEnd = nodeEnd
			continue
		}

		b.flushComments()
		b.addToRun(nodeStart, nodeEnd)
	}
	b.flushComments()
}

// addToRun extends the pending statement run, or flushes it first when
// the blank-line gap to the previous statement is large enough.
func (b *builder) addToRun(start, end int) {
	if b.runStart == 0 {
		b.runStart, b.runEnd = start, end
		return
	}
	if start-b.runEnd > b.chunker.config.GapLines {
		b.flushRun()
		b.runStart, b.runEnd = start, end
		return
	}
	if end > b.runEnd {
		b.runEnd = end
	}
}

// flushComments folds buffered comments that did not attach to any
// definition into the statement run.
func (b *builder) flushComments() {
	if b.commentStart > 0 {
		b.addToRun(b.commentStart, b.commentEnd)
	}
	b.commentStart, b.commentEnd = 0, 0
}

// flushRun emits the pending statement run as one chunk.
func (b *builder) flushRun() {
	if b.runStart == 0 {
		return
	}
	name := ""
	if !b.sawDef {
		name = "(imports)"
	}
	b.chunks = append(b.chunks, b.chunker.createChunk(b.file, b.lines, types.ChunkKindStatement, name, "", b.runStart, b.runEnd))
	b.runStart, b.runEnd = 0, 0
}

// emitDefinition emits one definition chunk. Oversized definitions
// containing nested definitions are split: the nested ones become
// chunks of their own and the outer shrinks to its signature span.
func (b *builder) emitDefinition(node *sitter.Node, kind types.ChunkKind, name string, parentName string, startLine, endLine int) {
	size := b.spanBytes(startLine, endLine)
	if size > b.chunker.config.MaxChunkBytes {
		nested := b.collectNested(node, name)
		if len(nested) > 0 {
			sigEnd := b.signatureEnd(node, startLine)
			if nested[0].StartLine <= sigEnd {
				sigEnd = nested[0].StartLine - 1
			}
			if sigEnd < startLine {
				sigEnd = startLine
			}
			outer := b.chunker.createChunk(b.file, b.lines, kind, name+" (truncated)", parentName, startLine, sigEnd)
			b.chunks = append(b.chunks, outer)
			b.chunks = append(b.chunks, nested...)
			return
		}
	}
	b.chunks = append(b.chunks, b.chunker.createChunk(b.file, b.lines, kind, name, parentName, startLine, endLine))
}

// collectNested finds definitions nested inside node, depth-first.
func (b *builder) collectNested(node *sitter.Node, parentName string) []*types.Chunk {
	var nested []*types.Chunk
	for i := 0; i < int(node.NamedChildCount()); i++ {
		child := node.NamedChild(i)
		kind, name := b.chunker.classifyNode(child.Type(), child, b.content, b.file.Language)
		if kind != "" {
			start := int(child.StartPoint().Row) + 1
			end := int(child.EndPoint().Row) + 1
			nb := &builder{chunker: b.chunker, file: b.file, content: b.content, lines: b.lines}
			nb.emitDefinition(child, kind, name, parentName, start, end)
			nested = append(nested, nb.chunks...)
			continue
		}
		nested = append(nested, b.collectNested(child, parentName)...)
	}
	return nested
}

// signatureEnd returns the last line of a definition's signature: the
// line where its body starts, or the first line when the body opens on
// the same line.
func (b *builder) signatureEnd(node *sitter.Node, startLine int) int {
	body := findBody(node)
	if body == nil {
		return startLine
	}
	bodyStart := int(body.StartPoint().Row) + 1
	if bodyStart <= startLine {
		return startLine
	}
	return bodyStart
}

// bodyNodeTypes are the AST node types that hold a definition's body
// across the supported grammars.
var bodyNodeTypes = map[string]bool{
	"block":                  true,
	"body":                   true,
	"statement_block":        true,
	"class_body":             true,
	"declaration_list":       true,
	"field_declaration_list": true,
	"compound_statement":     true,
	"do_block":               true,
	"function_body":          true,
	"class_body_declaration": true,
	"template_body":          true,
}

func findBody(node *sitter.Node) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		child := node.Child(i)
		if bodyNodeTypes[child.Type()] {
			return child
		}
	}
	return nil
}

// spanBytes measures the byte size of a 1-based inclusive line span.
func (b *builder) spanBytes(startLine, endLine int) int {
	size := 0
	for i := startLine - 1; i < endLine && i < len(b.lines); i++ {
		size += len(b.lines[i]) + 1
	}
	return size
}

func isCommentNode(nodeType string) bool {
	switch nodeType {
	case "comment", "line_comment", "block_comment", "doc_comment":
		return true
	}
	return false
}

// classifyNode determines the chunk kind and name for a node.
func (c *Chunker) classifyNode(nodeType string, node *sitter.Node, content string, lang string) (types.ChunkKind, string) {
	switch lang {
	case "go":
		return c.classifyGoNode(nodeType, node, content)
	case "python":
		return c.classifyPythonNode(nodeType, node, content)
	case "javascript", "jsx", "typescript", "tsx":
		return c.classifyJSNode(nodeType, node, content)
	case "rust":
		return c.classifyRustNode(nodeType, node, content)
	case "java":
		return c.classifyJavaNode(nodeType, node, content)
	case "c", "cpp", "h", "hpp":
		return c.classifyCNode(nodeType, node, content)
	case "ruby", "rb":
		return c.classifyRubyNode(nodeType, node, content)
	case "php":
		return c.classifyPHPNode(nodeType, node, content)
	case "csharp", "cs":
		return c.classifyCSharpNode(nodeType, node, content)
	case "kotlin", "kt", "kts":
		return c.classifyKotlinNode(nodeType, node, content)
	case "swift":
		return c.classifySwiftNode(nodeType, node, content)
	case "scala", "sc":
		return c.classifyScalaNode(nodeType, node, content)
	case "lua":
		return c.classifyLuaNode(nodeType, node, content)
	case "sql":
		return c.classifySQLNode(nodeType, node, content)
	case "bash", "sh", "shell":
		return c.classifyBashNode(nodeType, node, content)
	case "elixir", "ex", "exs":
		return c.classifyElixirNode(nodeType, node, content)
	}
	return "", ""
}

func (c *Chunker) classifyGoNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_declaration":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindFunction, name
	case "method_declaration":
		name := c.findChildByType(node, "field_identifier", content)
		return types.ChunkKindMethod, name
	case "type_declaration":
		spec := c.findChildNodeByType(node, "type_spec")
		if spec != nil {
			name := c.findChildByType(spec, "type_identifier", content)
			return types.ChunkKindClass, name
		}
	}
	return "", ""
}

func (c *Chunker) classifyPythonNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_definition":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindFunction, name
	case "class_definition":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindClass, name
	case "decorated_definition":
		// Decorators belong to the definition they annotate.
		if def := c.findChildNodeByType(node, "function_definition"); def != nil {
			return types.ChunkKindFunction, c.findChildByType(def, "identifier", content)
		}
		if def := c.findChildNodeByType(node, "class_definition"); def != nil {
			return types.ChunkKindClass, c.findChildByType(def, "identifier", content)
		}
	}
	return "", ""
}

func (c *Chunker) classifyJSNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_declaration", "function", "generator_function_declaration":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindFunction, name
	case "class_declaration", "class":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindClass, name
	case "method_definition":
		name := c.findChildByType(node, "property_identifier", content)
		return types.ChunkKindMethod, name
	case "lexical_declaration", "variable_declaration":
		// const f = () => {...} and friends
		decl := c.findChildNodeByType(node, "variable_declarator")
		if decl != nil {
			for i := 0; i < int(decl.ChildCount()); i++ {
				t := decl.Child(i).Type()
				if t == "arrow_function" || t == "function" {
					return types.ChunkKindFunction, c.findChildByType(decl, "identifier", content)
				}
			}
		}
	case "export_statement":
		for i := 0; i < int(node.NamedChildCount()); i++ {
			if kind, name := c.classifyJSNode(node.NamedChild(i).Type(), node.NamedChild(i), content); kind != "" {
				return kind, name
			}
		}
	}
	return "", ""
}

func (c *Chunker) classifyRustNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_item":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindFunction, name
	case "impl_item":
		typeNode := c.findChildNodeByType(node, "type_identifier")
		if typeNode != nil {
			name := content[typeNode.StartByte():typeNode.EndByte()]
			return types.ChunkKindClass, "impl " + name
		}
	case "struct_item", "enum_item", "trait_item":
		name := c.findChildByType(node, "type_identifier", content)
		return types.ChunkKindClass, name
	}
	return "", ""
}

func (c *Chunker) classifyJavaNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "method_declaration":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindMethod, name
	case "class_declaration", "interface_declaration", "enum_declaration", "record_declaration":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindClass, name
	}
	return "", ""
}

func (c *Chunker) classifyCNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_definition":
		decl := c.findChildNodeByType(node, "function_declarator")
		if decl != nil {
			name := c.findChildByType(decl, "identifier", content)
			return types.ChunkKindFunction, name
		}
		return types.ChunkKindFunction, ""
	case "struct_specifier", "class_specifier", "enum_specifier":
		// Only when it carries a body; bare references are statements.
		if findBody(node) != nil || c.findChildNodeByType(node, "field_declaration_list") != nil {
			name := c.findChildByType(node, "type_identifier", content)
			return types.ChunkKindClass, name
		}
	}
	return "", ""
}

func (c *Chunker) classifyRubyNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "method":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindMethod, name
	case "class", "module":
		name := c.findChildByType(node, "constant", content)
		return types.ChunkKindClass, name
	}
	return "", ""
}

func (c *Chunker) classifyPHPNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_definition":
		name := c.findChildByType(node, "name", content)
		return types.ChunkKindFunction, name
	case "method_declaration":
		name := c.findChildByType(node, "name", content)
		return types.ChunkKindMethod, name
	case "class_declaration", "interface_declaration", "trait_declaration":
		name := c.findChildByType(node, "name", content)
		return types.ChunkKindClass, name
	}
	return "", ""
}

func (c *Chunker) classifyCSharpNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "method_declaration", "constructor_declaration":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindMethod, name
	case "class_declaration", "interface_declaration", "struct_declaration", "record_declaration", "enum_declaration":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindClass, name
	}
	return "", ""
}

func (c *Chunker) classifyKotlinNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_declaration":
		name := c.findChildByType(node, "simple_identifier", content)
		return types.ChunkKindFunction, name
	case "class_declaration", "object_declaration":
		name := c.findChildByType(node, "type_identifier", content)
		return types.ChunkKindClass, name
	}
	return "", ""
}

func (c *Chunker) classifySwiftNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_declaration":
		name := c.findChildByType(node, "simple_identifier", content)
		return types.ChunkKindFunction, name
	case "class_declaration", "protocol_declaration":
		name := c.findChildByType(node, "type_identifier", content)
		return types.ChunkKindClass, name
	}
	return "", ""
}

func (c *Chunker) classifyScalaNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_definition":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindFunction, name
	case "class_definition", "object_definition", "trait_definition":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindClass, name
	}
	return "", ""
}

func (c *Chunker) classifyLuaNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "function_declaration", "function_definition_statement":
		for _, t := range []string{"identifier", "dot_index_expression", "method_index_expression"} {
			if name := c.findChildByType(node, t, content); name != "" {
				return types.ChunkKindFunction, name
			}
		}
		return types.ChunkKindFunction, ""
	}
	return "", ""
}

func (c *Chunker) classifySQLNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	switch nodeType {
	case "create_function_statement", "create_procedure_statement", "create_trigger_statement":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindFunction, name
	case "create_table_statement":
		name := c.findChildByType(node, "identifier", content)
		if name == "" {
			name = c.findChildByType(node, "object_reference", content)
		}
		return types.ChunkKindClass, name
	case "create_view_statement":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindClass, name
	case "create_index_statement":
		name := c.findChildByType(node, "identifier", content)
		return types.ChunkKindBlock, name
	}
	return "", ""
}

func (c *Chunker) classifyBashNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	if nodeType == "function_definition" {
		name := c.findChildByType(node, "word", content)
		return types.ChunkKindFunction, name
	}
	return "", ""
}

func (c *Chunker) classifyElixirNode(nodeType string, node *sitter.Node, content string) (types.ChunkKind, string) {
	if nodeType == "call" {
		target := c.findChildByType(node, "identifier", content)
		switch target {
		case "def", "defp", "defmacro":
			return types.ChunkKindFunction, c.callArgumentName(node, content)
		case "defmodule", "defprotocol", "defimpl":
			return types.ChunkKindClass, c.callArgumentName(node, content)
		}
	}
	return "", ""
}

// callArgumentName extracts the first argument of an Elixir def-style
// call, which names the definition.
func (c *Chunker) callArgumentName(node *sitter.Node, content string) string {
	args := c.findChildNodeByType(node, "arguments")
	if args == nil || args.NamedChildCount() == 0 {
		return ""
	}
	first := args.NamedChild(0)
	name := content[first.StartByte():first.EndByte()]
	if idx := strings.IndexAny(name, "(\n"); idx > 0 {
		name = name[:idx]
	}
	return strings.TrimSpace(name)
}

// findChildByType returns the text of the first direct child with the
// given type, searching one level of nesting as a fallback.
func (c *Chunker) findChildByType(node *sitter.Node, childType string, content string) string {
	child := c.findChildNodeByType(node, childType)
	if child == nil {
		return ""
	}
	return content[child.StartByte():child.EndByte()]
}

// findChildNodeByType returns the first child (breadth-first, two
// levels) with the given type.
func (c *Chunker) findChildNodeByType(node *sitter.Node, childType string) *sitter.Node {
	for i := 0; i < int(node.ChildCount()); i++ {
		if node.Child(i).Type() == childType {
			return node.Child(i)
		}
	}
	for i := 0; i < int(node.ChildCount()); i++ {
		inner := node.Child(i)
		for j := 0; j < int(inner.ChildCount()); j++ {
			if inner.Child(j).Type() == childType {
				return inner.Child(j)
			}
		}
	}
	return nil
}

// createChunk builds a chunk whose content is exactly the file's bytes
// in the given 1-based inclusive line span.
func (c *Chunker) createChunk(file *types.SourceFile, lines []string, kind types.ChunkKind, name, parentName string, startLine, endLine int) *types.Chunk {
	if startLine < 1 {
		startLine = 1
	}
	if endLine > len(lines) {
		endLine = len(lines)
	}
	chunk := &types.Chunk{
		FilePath:   file.Path,
		Language:   file.Language,
		Content:    strings.Join(lines[startLine-1:endLine], "\n"),
		Kind:       kind,
		Name:       name,
		ParentName: parentName,
		StartLine:  startLine,
		EndLine:    endLine,
	}
	chunk.Hash = chunk.ComputeHash()
	chunk.ID = chunk.GenerateID()
	return chunk
}

// splitLines splits content into lines without a phantom trailing
// element for a final newline.
func splitLines(content string) []string {
	lines := strings.Split(content, "\n")
	if len(lines) > 1 && lines[len(lines)-1] == "" {
		lines = lines[:len(lines)-1]
	}
	return lines
}

// SupportedLanguages returns languages this strategy supports.
func (c *Chunker) SupportedLanguages() []string {
	out := make([]string, len(supportedLanguages))
	copy(out, supportedLanguages)
	return out
}

// SupportsLanguage checks if a language is supported.
func (c *Chunker) SupportsLanguage(lang string) bool {
	parser, ok := c.getParser(lang)
	if ok {
		parser.Close()
	}
	return ok
}

// Close releases resources.
func (c *Chunker) Close() error {
	return nil
}

// Ensure Chunker implements ChunkingStrategy interface
var _ provider.ChunkingStrategy = (*Chunker)(nil)
