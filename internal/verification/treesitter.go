package verification

import (
	"context"
	"fmt"

	sitter "github.com/smacker/go-tree-sitter"
	"github.com/smacker/go-tree-sitter/php"
)

// StrictValidator parses candidates with a real PHP grammar. It is an
// optional second stage layered on the token oracle for callers that cannot
// tolerate token-count false positives. Not safe for concurrent use; create
// one per goroutine.
type StrictValidator struct {
	parser *sitter.Parser
}

// NewStrictValidator creates a validator backed by tree-sitter's PHP
// grammar.
func NewStrictValidator() *StrictValidator {
	p := sitter.NewParser()
	p.SetLanguage(php.GetLanguage())
	return &StrictValidator{parser: p}
}

// Close releases the underlying parser.
func (v *StrictValidator) Close() {
	v.parser.Close()
}

// Check parses the candidate and reports whether the resulting tree is free
// of error nodes. A candidate that fails the token oracle should not reach
// this stage; the validator only tightens, never loosens, the verdict.
func (v *StrictValidator) Check(ctx context.Context, candidate []byte) (bool, error) {
	tree, err := v.parser.ParseCtx(ctx, nil, candidate)
	if err != nil {
		return false, fmt.Errorf("parse php candidate: %w", err)
	}
	defer tree.Close()

	root := tree.RootNode()
	return !hasErrorNode(root), nil
}

func hasErrorNode(n *sitter.Node) bool {
	if n.IsError() || n.IsMissing() {
		return true
	}
	for i := 0; i < int(n.ChildCount()); i++ {
		if hasErrorNode(n.Child(i)) {
			return true
		}
	}
	return false
}
