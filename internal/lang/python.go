package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/python"
)

func init() {
	Languages["python"] = &Language{
		Name:       "python",
		Extensions: []string{".py"},
		lang:       python.GetLanguage(),
		Skip:       set("comment"),
		TextTypes:  set("identifier", "string", "integer", "float", "true", "false", "none"),
		Label:      pythonLabel,
	}
}

func pythonLabel(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "binary_operator", "unary_operator", "boolean_operator", "augmented_assignment":
		return operatorLabel(node, source)
	}
	return ""
}
