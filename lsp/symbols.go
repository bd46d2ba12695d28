package lsp

import (
	"fmt"

	"github.com/toonlang/toon-ls/ast"
)

// SymbolKind classifies outline entries; values follow the protocol's
// SymbolKind numbering so the transport layer can pass them through.
type SymbolKind uint32

const (
	SymbolModule  SymbolKind = 2
	SymbolField   SymbolKind = 8
	SymbolString  SymbolKind = 15
	SymbolNumber  SymbolKind = 16
	SymbolBoolean SymbolKind = 17
	SymbolArray   SymbolKind = 18
	SymbolObject  SymbolKind = 19
	SymbolNull    SymbolKind = 21
)

// Symbol is one node of the hierarchical document outline.
type Symbol struct {
	Name          string
	Detail        string
	Kind          SymbolKind
	Span          ast.Span
	SelectionSpan ast.Span
	Children      []Symbol
}

// DocumentSymbols walks the tree depth first and produces the outline in
// source order: containers for objects and arrays, leaves for primitives.
func DocumentSymbols(snap *Snapshot) []Symbol {
	root := snap.Root
	if root == nil || len(root.Children) == 0 {
		return nil
	}
	top := root.Children[0]
	switch top.Kind {
	case ast.KindObject:
		return objectSymbols(top)
	case ast.KindArray:
		return arraySymbols(top)
	default:
		return nil
	}
}

func objectSymbols(obj *ast.Node) []Symbol {
	symbols := make([]Symbol, 0, len(obj.Entries))
	for _, entry := range obj.Entries {
		symbols = append(symbols, entrySymbol(entry))
	}
	return symbols
}

func arraySymbols(arr *ast.Node) []Symbol {
	symbols := make([]Symbol, 0, len(arr.Items))
	for i, item := range arr.Items {
		symbols = append(symbols, valueSymbol(fmt.Sprintf("[%d]", i), item.Span, item))
	}
	return symbols
}

func entrySymbol(entry ast.ObjectEntry) Symbol {
	return valueSymbol(entry.Key, entry.KeySpan, entry.Value)
}

func valueSymbol(name string, selection ast.Span, value *ast.Node) Symbol {
	sym := Symbol{
		Name:          name,
		Detail:        value.Kind.String(),
		Span:          selection.Merge(value.Span),
		SelectionSpan: selection,
	}
	switch value.Kind {
	case ast.KindObject:
		sym.Kind = SymbolObject
		sym.Children = objectSymbols(value)
	case ast.KindArray:
		sym.Kind = SymbolArray
		sym.Children = arraySymbols(value)
	case ast.KindString:
		sym.Kind = SymbolString
	case ast.KindNumber:
		sym.Kind = SymbolNumber
	case ast.KindBool:
		sym.Kind = SymbolBoolean
	default:
		sym.Kind = SymbolNull
	}
	return sym
}
