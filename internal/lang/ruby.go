package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/ruby"
)

func init() {
	Languages["ruby"] = &Language{
		Name:       "ruby",
		Extensions: []string{".rb"},
		lang:       ruby.GetLanguage(),
		Skip:       set("comment"),
		TextTypes:  set("identifier", "constant", "string_content", "integer", "float", "simple_symbol", "true", "false", "nil"),
		Label:      rubyLabel,
	}
}

func rubyLabel(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "binary", "unary", "operator_assignment":
		return operatorLabel(node, source)
	}
	return ""
}
