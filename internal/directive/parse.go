package directive

import (
	"fmt"
	"go/ast"
	"go/scanner"
	"go/token"
	"strconv"
	"strings"

	"errgen/internal/match"
)

// Option keys accepted by root and variant directives.
const (
	KeyDesc = "desc"
	KeyFmt  = "fmt"
)

// Error codes reported by the parser.
const (
	CodeSyntax           = "syntax"
	CodeUnknownKey       = "unknown_key"
	CodeDuplicateKey     = "duplicate_key"
	CodeInvalidValue     = "invalid_value"
	CodeInvalidVerb      = "invalid_verb"
	CodeInvalidTemplate  = "invalid_template"
	CodeUnknownDirective = "unknown_directive"
)

var (
	directiveNames = []string{"error", "variant"}
	optionKeys     = []string{KeyDesc, KeyFmt}
)

// Prefix starts every errgen directive comment.
const Prefix = "//errgen:"

// Kind is the level a directive is attached to.
type Kind int

const (
	KindError   Kind = iota + 1 // error
	KindVariant                 // variant
)

// String returns the directive name.
func (k Kind) String() string {
	switch k {
	case KindError:
		return "error"
	case KindVariant:
		return "variant"
	default:
		return "Kind(" + strconv.Itoa(int(k)) + ")"
	}
}

// Directive is a parsed //errgen: comment.
type Directive struct {
	Kind   Kind
	Config Config
	Pos    token.Pos
}

// Error is a parse failure. Offset is relative to the parsed text; Pos is set
// when the text came from a comment in a file set.
type Error struct {
	Code   string
	Msg    string
	Offset int
	Pos    token.Pos
}

func (e *Error) Error() string {
	return e.Msg
}

// Find returns the errgen directives in a comment group, in source order.
// It stops at the first malformed directive.
func Find(cg *ast.CommentGroup) ([]Directive, error) {
	if cg == nil {
		return nil, nil
	}

	var out []Directive

	for _, c := range cg.List {
		if !strings.HasPrefix(c.Text, Prefix) {
			continue
		}

		rest := c.Text[len(Prefix):]
		name, args, _ := strings.Cut(rest, " ")
		argsOffset := len(Prefix) + len(name) + 1

		var kind Kind

		switch name {
		case "error":
			kind = KindError
		case "variant":
			kind = KindVariant
		default:
			msg := fmt.Sprintf("unknown directive %q (expected errgen:error or errgen:variant)%s",
				"errgen:"+name, match.DidYouMean(name, directiveNames))

			return out, &Error{Code: CodeUnknownDirective, Msg: msg, Pos: c.Slash}
		}

		cfg, err := ParseArgs(args)
		if err != nil {
			if perr, ok := err.(*Error); ok {
				perr.Pos = c.Slash + token.Pos(argsOffset+perr.Offset)
			}

			return out, err
		}

		cfg.Pos = c.Slash
		out = append(out, Directive{Kind: kind, Config: cfg, Pos: c.Slash})
	}

	return out, nil
}

// ParseArgs parses the argument list of a root or variant directive:
//
//	desc="text", fmt=debug
//
// An empty list yields an empty Config.
func ParseArgs(src string) (Config, error) {
	p := newParser(src)

	var cfg Config

	seen := make(map[string]bool, 2)

	for p.tok != token.EOF {
		if p.err != nil {
			return Config{}, p.err
		}

		if p.tok != token.IDENT {
			return Config{}, p.errorf(p.offset, CodeSyntax, "expected key, found %s", p.describe())
		}

		key, keyOffset := p.lit, p.offset

		if key != KeyDesc && key != KeyFmt {
			return Config{}, p.errorf(keyOffset, CodeUnknownKey, "unknown key %q (expected desc or fmt)%s",
				key, match.DidYouMean(key, optionKeys))
		}

		if seen[key] {
			return Config{}, p.errorf(keyOffset, CodeDuplicateKey, "%q is already defined", key)
		}

		seen[key] = true

		p.next()

		if p.tok != token.ASSIGN {
			return Config{}, p.errorf(p.offset, CodeSyntax, "expected = after %q, found %s", key, p.describe())
		}

		p.next()

		switch key {
		case KeyDesc:
			desc, err := p.parseDesc()
			if err != nil {
				return Config{}, err
			}

			cfg.Desc = &desc
		case KeyFmt:
			f, err := p.parseFormat()
			if err != nil {
				return Config{}, err
			}

			cfg.Fmt = &f
		}

		p.next()

		if p.tok == token.COMMA {
			p.next()
		}
	}

	if p.err != nil {
		return Config{}, p.err
	}

	return cfg, nil
}

type parser struct {
	scanner scanner.Scanner
	file    *token.File

	offset int
	tok    token.Token
	lit    string
	err    *Error
}

func newParser(src string) *parser {
	fset := token.NewFileSet()
	p := &parser{file: fset.AddFile("", fset.Base(), len(src))}

	p.scanner.Init(p.file, []byte(src), func(pos token.Position, msg string) {
		if p.err == nil {
			p.err = &Error{Code: CodeSyntax, Msg: msg, Offset: pos.Offset}
		}
	}, 0)
	p.next()

	return p
}

func (p *parser) next() {
	pos, tok, lit := p.scanner.Scan()

	// The scanner terminates the last identifier or literal with an
	// implicit semicolon.
	if tok == token.SEMICOLON && lit == "\n" {
		tok = token.EOF
	}

	p.offset, p.tok, p.lit = p.file.Offset(pos), tok, lit
}

func (p *parser) describe() string {
	switch {
	case p.tok == token.EOF:
		return "end of directive"
	case p.lit != "":
		return strconv.Quote(p.lit)
	default:
		return strconv.Quote(p.tok.String())
	}
}

func (p *parser) errorf(offset int, code, format string, args ...any) *Error {
	return &Error{Code: code, Msg: fmt.Sprintf(format, args...), Offset: offset}
}

func (p *parser) parseDesc() (string, error) {
	if p.tok != token.STRING {
		return "", p.errorf(p.offset, CodeInvalidValue, "desc must be a string, found %s", p.describe())
	}

	return p.unquote()
}

func (p *parser) parseFormat() (Format, error) {
	switch p.tok {
	case token.IDENT:
		switch p.lit {
		case "display":
			return Display(), nil
		case "debug":
			return Debug(), nil
		}
	case token.STRING:
		s, err := p.unquote()
		if err != nil {
			return Format{}, err
		}

		if _, err := ParseTemplate(s); err != nil {
			if terr, ok := err.(*Error); ok {
				terr.Offset = p.offset
			}

			return Format{}, err
		}

		return Custom(s), nil
	}

	return Format{}, p.errorf(p.offset, CodeInvalidValue,
		"fmt must be either display, debug or a custom string, found %s", p.describe())
}

func (p *parser) unquote() (string, error) {
	s, err := strconv.Unquote(p.lit)
	if err != nil {
		return "", p.errorf(p.offset, CodeInvalidValue, "malformed string literal %s: %v", p.lit, err)
	}

	return s, nil
}

func quote(s string) string {
	return strconv.Quote(s)
}
