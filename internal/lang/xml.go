package lang

func init() {
	// XML is parsed by internal/xmldoc; it has no tree-sitter grammar.
	Languages["xml"] = &Language{
		Name:       "xml",
		Extensions: []string{".xml", ".xsd", ".xsl", ".xslt", ".svg", ".xhtml"},
	}
}
