package trace

import (
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
)

// ---------------------------------------------------------------------------
// Parser: recursive descent parser for the text trace format
// ---------------------------------------------------------------------------
//
// One event per line:
//
//	+ [Controlled] [Adjoint] Name [value]
//	- [Controlled] [Adjoint] Name [value]
//
// Values:
//
//	()            void
//	(a, b, ...)   tuple
//	[a, b, ...]   array
//	q7            qubit
//	-3, 42        integer
//	PauliX        basis label (PauliI, PauliX, PauliY, PauliZ)
//	le[q0, q1]    little-endian integer register
//	coset[q0]     coset-encoded register
//	ctl(value)    arguments applied with controls

// ErrSyntax is wrapped by every parse error.
var ErrSyntax = errors.New("trace syntax error")

// Parser parses trace text into events.
type Parser struct {
	lexer     *Lexer
	curToken  Token
	peekToken Token
	errors    []string
}

// NewParser creates a new parser for the given input.
func NewParser(input string) *Parser {
	p := &Parser{lexer: NewLexer(input)}
	// Read two tokens to fill curToken and peekToken
	p.nextToken()
	p.nextToken()
	return p
}

// nextToken advances to the next token.
func (p *Parser) nextToken() {
	p.curToken = p.peekToken
	p.peekToken = p.lexer.NextToken()
}

// curTokenIs checks if the current token is of the given type.
func (p *Parser) curTokenIs(t TokenType) bool {
	return p.curToken.Type == t
}

// expect advances if the current token matches, otherwise records an error.
func (p *Parser) expect(t TokenType) bool {
	if p.curTokenIs(t) {
		p.nextToken()
		return true
	}
	p.errorf("expected %s, got %s", t, p.curToken)
	return false
}

// errorf records a parse error.
func (p *Parser) errorf(format string, args ...interface{}) {
	msg := fmt.Sprintf("line %d: %s", p.curToken.Pos.Line, fmt.Sprintf(format, args...))
	p.errors = append(p.errors, msg)
}

// Errors returns accumulated parse errors.
func (p *Parser) Errors() []string {
	return p.errors
}

// err folds the accumulated errors into one.
func (p *Parser) err() error {
	if len(p.errors) == 0 {
		return nil
	}
	return fmt.Errorf("%w: %s", ErrSyntax, strings.Join(p.errors, "; "))
}

// skipLine discards tokens up to and including the next newline.
func (p *Parser) skipLine() {
	for !p.curTokenIs(TokenNewline) && !p.curTokenIs(TokenEOF) {
		p.nextToken()
	}
	if p.curTokenIs(TokenNewline) {
		p.nextToken()
	}
}

// ---------------------------------------------------------------------------
// Top-level parsing
// ---------------------------------------------------------------------------

// ParseEvents parses every line of the input.
func (p *Parser) ParseEvents() []Event {
	var events []Event
	for !p.curTokenIs(TokenEOF) {
		if p.curTokenIs(TokenNewline) {
			p.nextToken()
			continue
		}
		before := len(p.errors)
		ev, ok := p.parseEvent()
		if ok && len(p.errors) == before {
			events = append(events, ev)
		}
		if !p.curTokenIs(TokenNewline) && !p.curTokenIs(TokenEOF) {
			if len(p.errors) == before {
				p.errorf("unexpected %s after event", p.curToken)
			}
		}
		p.skipLine()
	}
	return events
}

func (p *Parser) parseEvent() (Event, bool) {
	var ev Event
	switch p.curToken.Type {
	case TokenPlus:
		ev.Kind = Enter
	case TokenMinus:
		ev.Kind = Exit
	default:
		p.errorf("expected + or -, got %s", p.curToken)
		return ev, false
	}
	p.nextToken()

	controlled, adjoint := false, false
functors:
	for p.curTokenIs(TokenIdentifier) {
		switch {
		case p.curToken.Literal == "Controlled" && !controlled:
			controlled = true
		case p.curToken.Literal == "Adjoint" && !adjoint:
			adjoint = true
		default:
			break functors
		}
		p.nextToken()
	}
	if !p.curTokenIs(TokenIdentifier) {
		p.errorf("expected operation name, got %s", p.curToken)
		return ev, false
	}
	ev.Op.Name = p.curToken.Literal
	switch {
	case controlled && adjoint:
		ev.Op.Functor = FunctorControlledAdjoint
	case controlled:
		ev.Op.Functor = FunctorControlled
	case adjoint:
		ev.Op.Functor = FunctorAdjoint
	}
	p.nextToken()

	ev.Arg = Void{}
	if !p.curTokenIs(TokenNewline) && !p.curTokenIs(TokenEOF) {
		v, ok := p.parseValue()
		if !ok {
			return ev, false
		}
		ev.Arg = v
	}
	return ev, true
}

// ---------------------------------------------------------------------------
// Values
// ---------------------------------------------------------------------------

func (p *Parser) parseValue() (Value, bool) {
	switch p.curToken.Type {
	case TokenInteger:
		n, err := strconv.ParseInt(p.curToken.Literal, 10, 64)
		if err != nil {
			p.errorf("bad integer %q: %v", p.curToken.Literal, err)
			return nil, false
		}
		p.nextToken()
		return Int(n), true

	case TokenLParen:
		items, ok := p.parseList(TokenLParen, TokenRParen)
		if !ok {
			return nil, false
		}
		if len(items) == 0 {
			return Void{}, true
		}
		return Tuple(items), true

	case TokenLBracket:
		items, ok := p.parseList(TokenLBracket, TokenRBracket)
		if !ok {
			return nil, false
		}
		return Array(items), true

	case TokenIdentifier:
		return p.parseIdentifierValue()
	}
	p.errorf("expected value, got %s", p.curToken)
	return nil, false
}

func (p *Parser) parseIdentifierValue() (Value, bool) {
	lit := p.curToken.Literal
	if pauli, ok := ParsePauli(lit); ok {
		p.nextToken()
		return pauli, true
	}
	if id, ok := qubitLiteral(lit); ok {
		p.nextToken()
		return Qubit{ID: id}, true
	}
	switch lit {
	case "le", "coset":
		p.nextToken()
		qs, ok := p.parseQubitList()
		if !ok {
			return nil, false
		}
		if lit == "le" {
			return LittleEndian{Qubits: qs}, true
		}
		return CosetLittleEndian{Qubits: qs}, true
	case "ctl":
		p.nextToken()
		if !p.expect(TokenLParen) {
			return nil, false
		}
		inner := Value(Void{})
		if !p.curTokenIs(TokenRParen) {
			v, ok := p.parseValue()
			if !ok {
				return nil, false
			}
			inner = v
		}
		if !p.expect(TokenRParen) {
			return nil, false
		}
		return Controlled{Inner: inner}, true
	}
	p.errorf("unknown value %q", lit)
	return nil, false
}

func (p *Parser) parseList(open, close TokenType) ([]Value, bool) {
	if !p.expect(open) {
		return nil, false
	}
	items := []Value{}
	if p.curTokenIs(close) {
		p.nextToken()
		return items, true
	}
	for {
		v, ok := p.parseValue()
		if !ok {
			return nil, false
		}
		items = append(items, v)
		if p.curTokenIs(TokenComma) {
			p.nextToken()
			continue
		}
		break
	}
	if !p.expect(close) {
		return nil, false
	}
	return items, true
}

func (p *Parser) parseQubitList() ([]Qubit, bool) {
	items, ok := p.parseList(TokenLBracket, TokenRBracket)
	if !ok {
		return nil, false
	}
	qs := make([]Qubit, len(items))
	for i, e := range items {
		q, isQubit := e.(Qubit)
		if !isQubit {
			p.errorf("register element %s is not a qubit", FormatValue(e))
			return nil, false
		}
		qs[i] = q
	}
	return qs, true
}

// qubitLiteral recognizes q<digits>.
func qubitLiteral(lit string) (int, bool) {
	if len(lit) < 2 || lit[0] != 'q' {
		return 0, false
	}
	id, err := strconv.Atoi(lit[1:])
	if err != nil || id < 0 {
		return 0, false
	}
	return id, true
}

// ---------------------------------------------------------------------------
// Entry points
// ---------------------------------------------------------------------------

// ParseText parses a complete text trace.
func ParseText(src string) ([]Event, error) {
	p := NewParser(src)
	events := p.ParseEvents()
	if err := p.err(); err != nil {
		return nil, err
	}
	return events, nil
}

// ReadText reads and parses a text trace.
func ReadText(r io.Reader) ([]Event, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return nil, fmt.Errorf("read trace: %w", err)
	}
	return ParseText(string(data))
}

// ParseValue parses a single value.
func ParseValue(src string) (Value, error) {
	p := NewParser(src)
	v, ok := p.parseValue()
	if ok && !p.curTokenIs(TokenEOF) && !p.curTokenIs(TokenNewline) {
		p.errorf("unexpected %s after value", p.curToken)
	}
	if err := p.err(); err != nil {
		return nil, err
	}
	return v, nil
}
