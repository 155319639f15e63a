// Package knowledge embeds the feline infectious peritonitis (FIP)
// reference data the assistant is grounded on.
//
// The data ships as YAML inside the binary and is parsed once:
//
//	kb := knowledge.MustDefault()
//	system := "Reference data:\n" + kb.PromptText()
//
// A Bundle is immutable after loading and safe for concurrent use.
package knowledge
