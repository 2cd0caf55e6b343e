package css

import (
	"fmt"
	"strings"
	"unicode"
)

type parser struct {
	input      string
	pos        int
	length     int
	inQuote    bool
	quoteChar  byte
	openParens int
}

func newParser(input string) *parser {
	return &parser{input: input, length: len(input)}
}

// Parse compiles stylesheet text into a Stylesheet. The parser is
// tolerant of comments and whitespace and keeps at-rules raw; a
// structurally broken sheet (unterminated block, unmatched quote or
// paren) is an error with the offending position.
func Parse(text string) (*Stylesheet, error) {
	p := newParser(text)
	var rules []Rule
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		var (
			rule Rule
			err  error
		)
		if p.peekChar() == '@' {
			rule, err = p.parseAtRule()
		} else {
			rule, err = p.parseRule()
		}
		if err != nil {
			return nil, err
		}
		rules = append(rules, rule)
	}
	return &Stylesheet{Source: text, Rules: rules}, nil
}

// ParseDeclarations parses bare declaration text ("color: red; margin:
// 0"), the form carried by inline style attributes.
func ParseDeclarations(text string) ([]Declaration, error) {
	p := newParser(text)
	decls, err := p.parseDeclarations(false)
	if err != nil {
		return nil, err
	}
	p.skipSpace()
	if !p.eof() {
		return nil, fmt.Errorf("bad style text, unexpected character %q at pos %d", string(p.input[p.pos]), p.pos+1)
	}
	return decls, nil
}

func (p *parser) parseRule() (Rule, error) {
	selector, err := p.parseSelector()
	if err != nil {
		return Rule{}, err
	}
	p.advance() // consume '{'
	decls, err := p.parseDeclarations(true)
	if err != nil {
		return Rule{}, err
	}
	if p.eof() || p.peekChar() != '}' {
		return Rule{}, fmt.Errorf("bad stylesheet, unterminated block for selector %q at pos %d", selector, p.pos+1)
	}
	p.advance() // consume '}'
	return Rule{Selector: selector, Declarations: decls}, nil
}

func (p *parser) parseSelector() (string, error) {
	start := p.pos
	for !p.eof() {
		c := p.peekChar()
		if p.inQuote {
			if c == p.quoteChar {
				p.inQuote = false
			} else if c == '\\' {
				p.advance()
			}
		} else if c == '"' || c == '\'' {
			p.inQuote = true
			p.quoteChar = c
		} else if c == '{' {
			selector := strings.TrimSpace(p.input[start:p.pos])
			if selector == "" {
				return "", fmt.Errorf("bad stylesheet, empty selector at pos %d", p.pos+1)
			}
			return selector, nil
		}
		p.advance()
	}
	return "", fmt.Errorf("bad stylesheet, expected '{' after %q at pos %d", strings.TrimSpace(p.input[start:]), p.pos+1)
}

// parseAtRule keeps the whole at-rule raw: statement at-rules run to the
// terminating semicolon, block at-rules to the matching close brace.
func (p *parser) parseAtRule() (Rule, error) {
	start := p.pos
	for !p.eof() {
		c := p.peekChar()
		if c == ';' {
			p.advance()
			raw := p.input[start:p.pos]
			return Rule{Selector: strings.TrimSpace(strings.TrimSuffix(raw, ";")), AtRule: true, Raw: raw}, nil
		}
		if c == '{' {
			prelude := strings.TrimSpace(p.input[start:p.pos])
			if err := p.skipBlock(); err != nil {
				return Rule{}, fmt.Errorf("bad stylesheet, unterminated at-rule %q: %w", prelude, err)
			}
			return Rule{Selector: prelude, AtRule: true, Raw: p.input[start:p.pos]}, nil
		}
		p.advance()
	}
	return Rule{}, fmt.Errorf("bad stylesheet, unterminated at-rule at pos %d", start+1)
}

// skipBlock advances past a brace-balanced block, quote-aware.
func (p *parser) skipBlock() error {
	depth := 0
	for !p.eof() {
		c := p.peekChar()
		if p.inQuote {
			if c == p.quoteChar {
				p.inQuote = false
			} else if c == '\\' {
				p.advance()
			}
		} else if c == '"' || c == '\'' {
			p.inQuote = true
			p.quoteChar = c
		} else if c == '{' {
			depth++
		} else if c == '}' {
			depth--
			if depth == 0 {
				p.advance()
				return nil
			}
		}
		p.advance()
	}
	return fmt.Errorf("missing '}' before pos %d", p.pos+1)
}

func (p *parser) parseDeclarations(inBlock bool) ([]Declaration, error) {
	var decls []Declaration
	lastProp := ""
	for {
		p.skipSpace()
		if p.eof() {
			break
		}
		if inBlock && p.peekChar() == '}' {
			break
		}
		prop, err := p.parseIdentifierColon(lastProp)
		if err != nil {
			return nil, err
		}
		lastProp = prop
		p.skipSpace()
		value, err := p.parseValue(prop, inBlock)
		if err != nil {
			return nil, err
		}
		decls = append(decls, Declaration{Property: prop, Value: value})
		p.skipSpace()
		if p.eof() {
			break
		}
		if !p.expectChar(';') {
			break
		}
	}
	return decls, nil
}

func (p *parser) parseIdentifierColon(lastProp string) (string, error) {
	start := p.pos
	for !p.eof() {
		c := p.peekChar()
		if isIdentChar(rune(c)) || c == '-' {
			p.advance()
		} else {
			break
		}
	}
	prop := p.input[start:p.pos]
	p.skipSpace()
	if p.eof() {
		return "", fmt.Errorf("bad stylesheet, expected colon after property %q, got EOF, at pos %d", prop, p.pos+1)
	}
	if prop == "" {
		return "", fmt.Errorf("bad stylesheet, invalid property name after property %q, at pos %d", lastProp, p.pos+1)
	}
	if !p.expectChar(':') {
		return "", fmt.Errorf("bad stylesheet, property %q missing colon, got %q, at pos %d", prop, string(p.input[p.pos]), p.pos+1)
	}
	return prop, nil
}

// parseValue scans a declaration value, quote- and paren-aware, so
// semicolons inside url(...) or quoted strings do not terminate it.
func (p *parser) parseValue(prop string, inBlock bool) (string, error) {
	start := p.pos
	quotePos := 0
	parenPosStack := make([]int, 0)
	for !p.eof() {
		c := p.peekChar()
		if p.inQuote {
			if c == p.quoteChar {
				p.inQuote = false
			} else if c == '\\' {
				p.advance()
			}
		} else {
			if c == '"' || c == '\'' {
				p.inQuote = true
				p.quoteChar = c
				quotePos = p.pos
			} else if c == '(' {
				p.openParens++
				parenPosStack = append(parenPosStack, p.pos)
			} else if c == ')' {
				if p.openParens == 0 {
					return "", fmt.Errorf("bad stylesheet, unmatched ')' at pos %d", p.pos+1)
				}
				p.openParens--
				parenPosStack = parenPosStack[:len(parenPosStack)-1]
			} else if c == ';' && p.openParens == 0 {
				break
			} else if inBlock && c == '}' && p.openParens == 0 {
				break
			}
		}
		p.advance()
	}
	if p.eof() && p.inQuote {
		return "", fmt.Errorf("bad stylesheet, while parsing %q, unmatched quote at pos %d", prop, quotePos+1)
	}
	if p.eof() && p.openParens > 0 {
		return "", fmt.Errorf("bad stylesheet, while parsing %q, unmatched '(' at pos %d", prop, parenPosStack[len(parenPosStack)-1]+1)
	}
	return strings.TrimSpace(p.input[start:p.pos]), nil
}

func isIdentChar(r rune) bool {
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}

// skipSpace advances past whitespace and /* */ comments.
func (p *parser) skipSpace() {
	for !p.eof() {
		c := p.peekChar()
		if unicode.IsSpace(rune(c)) {
			p.advance()
			continue
		}
		if c == '/' && p.pos+1 < p.length && p.input[p.pos+1] == '*' {
			p.pos += 2
			for p.pos+1 < p.length && !(p.input[p.pos] == '*' && p.input[p.pos+1] == '/') {
				p.advance()
			}
			p.pos += 2
			if p.pos > p.length {
				p.pos = p.length
			}
			continue
		}
		break
	}
}

func (p *parser) expectChar(expected byte) bool {
	if !p.eof() && p.peekChar() == expected {
		p.advance()
		return true
	}
	return false
}

func (p *parser) peekChar() byte {
	if p.pos >= p.length {
		return 0
	}
	return p.input[p.pos]
}

func (p *parser) advance() {
	p.pos++
}

func (p *parser) eof() bool {
	return p.pos >= p.length
}
