package lang

import (
	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/golang"
)

func init() {
	Languages["go"] = &Language{
		Name:       "go",
		Extensions: []string{".go"},
		lang:       golang.GetLanguage(),
		Skip:       set("comment"),
		TextTypes: set(
			"identifier", "field_identifier", "type_identifier", "package_identifier",
			"interpreted_string_literal", "raw_string_literal", "int_literal", "float_literal",
			"true", "false", "nil",
		),
		Label: goLabel,
	}
}

// goLabel distinguishes operators, including compound assignments.
func goLabel(node *sitter.Node, source []byte) string {
	switch node.Type() {
	case "binary_expression", "unary_expression", "assignment_statement":
		return operatorLabel(node, source)
	}
	return ""
}
