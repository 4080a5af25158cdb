package lexer

import (
	"fmt"
	"strings"
)

type TokenType int

const (
	// Special
	ILLEGAL TokenType = iota
	EOF

	// Literals
	IDENTIFIER // table_name, column_name, INT
	STRING     // 'value' or "value"
	NUMBER     // 123, -1.23

	// Keywords
	SELECT
	FROM
	WHERE
	INSERT
	INTO
	VALUES
	AND
	OR
	CREATE
	DROP
	DATABASE
	TABLE
	USE
	SHOW
	TABLES
	DATABASES
	DESCRIBE
	ORDER
	BY
	ASC
	DESC
	COUNT

	// Operators & Punctuation
	ASTERISK    // *
	COMMA       // ,
	PAREN_OPEN  // (
	PAREN_CLOSE // )
	EQUALS      // =
	SEMICOLON   // ;
)

var keywords = map[string]TokenType{
	"SELECT":    SELECT,
	"FROM":      FROM,
	"WHERE":     WHERE,
	"INSERT":    INSERT,
	"INTO":      INTO,
	"VALUES":    VALUES,
	"AND":       AND,
	"OR":        OR,
	"CREATE":    CREATE,
	"DROP":      DROP,
	"DATABASE":  DATABASE,
	"TABLE":     TABLE,
	"USE":       USE,
	"SHOW":      SHOW,
	"TABLES":    TABLES,
	"DATABASES": DATABASES,
	"DESCRIBE":  DESCRIBE,
	"ORDER":     ORDER,
	"BY":        BY,
	"ASC":       ASC,
	"DESC":      DESC,
	"COUNT":     COUNT,
}

type Token struct {
	Type    TokenType
	Literal string
	Line    int
	Column  int
}

func (t Token) String() string {
	return fmt.Sprintf("Token(%d, %q)", t.Type, t.Literal)
}

type Lexer struct {
	input        string
	position     int  // current position in input (points to current char)
	readPosition int  // current reading position in input (after current char)
	ch           byte // current char under examination
	line         int
	column       int
}

func New(input string) *Lexer {
	l := &Lexer{input: input, line: 1, column: 0}
	l.readChar()
	return l
}

func (l *Lexer) readChar() {
	if l.readPosition >= len(l.input) {
		l.ch = 0
	} else {
		l.ch = l.input[l.readPosition]
	}
	l.position = l.readPosition
	l.readPosition += 1
	l.column++
}

func (l *Lexer) peekChar() byte {
	if l.readPosition >= len(l.input) {
		return 0
	}
	return l.input[l.readPosition]
}

func (l *Lexer) NextToken() Token {
	var tok Token

	l.skipWhitespace()

	tok.Line = l.line
	tok.Column = l.column

	switch l.ch {
	case '*':
		tok = newToken(ASTERISK, l.ch, l.line, l.column)
	case ',':
		tok = newToken(COMMA, l.ch, l.line, l.column)
	case '(':
		tok = newToken(PAREN_OPEN, l.ch, l.line, l.column)
	case ')':
		tok = newToken(PAREN_CLOSE, l.ch, l.line, l.column)
	case '=':
		tok = newToken(EQUALS, l.ch, l.line, l.column)
	case ';':
		tok = newToken(SEMICOLON, l.ch, l.line, l.column)
	case '\'', '"':
		lit, ok := l.readString()
		if !ok {
			tok.Type = ILLEGAL
			tok.Literal = "unterminated string"
			return tok
		}
		tok.Type = STRING
		tok.Literal = lit
		return tok
	case '-':
		if !isDigit(l.peekChar()) {
			tok = newToken(ILLEGAL, l.ch, l.line, l.column)
			break
		}
		tok.Type = NUMBER
		tok.Literal = l.readNumber()
		return tok
	case 0:
		tok.Literal = ""
		tok.Type = EOF
	default:
		if isLetter(l.ch) {
			tok.Literal = l.readIdentifier()
			tok.Type = LookupIdent(tok.Literal)
			return tok
		} else if isDigit(l.ch) {
			tok.Type = NUMBER
			tok.Literal = l.readNumber()
			return tok
		} else {
			tok = newToken(ILLEGAL, l.ch, l.line, l.column)
		}
	}

	l.readChar()
	return tok
}

func (l *Lexer) skipWhitespace() {
	for l.ch == ' ' || l.ch == '\t' || l.ch == '\n' || l.ch == '\r' {
		if l.ch == '\n' {
			l.line++
			l.column = 0
		}
		l.readChar()
	}
}

func (l *Lexer) readIdentifier() string {
	position := l.position
	for isLetter(l.ch) || isDigit(l.ch) || l.ch == '_' {
		l.readChar()
	}
	return l.input[position:l.position]
}

func (l *Lexer) readNumber() string {
	position := l.position
	if l.ch == '-' {
		l.readChar()
	}
	for isDigit(l.ch) {
		l.readChar()
	}
	// Support simple floats
	if l.ch == '.' && isDigit(l.peekChar()) {
		l.readChar()
		for isDigit(l.ch) {
			l.readChar()
		}
	}
	return l.input[position:l.position]
}

// readString reads a literal quoted with ' or ". A doubled quote inside
// the literal stands for one quote character.
func (l *Lexer) readString() (string, bool) {
	quote := l.ch
	var out strings.Builder
	for {
		l.readChar()
		switch l.ch {
		case 0:
			return "", false
		case quote:
			if l.peekChar() == quote {
				out.WriteByte(quote)
				l.readChar()
				continue
			}
			// Consume the closing quote
			l.readChar()
			return out.String(), true
		case '\n':
			l.line++
			l.column = 0
		}
		out.WriteByte(l.ch)
	}
}

func newToken(tokenType TokenType, ch byte, line, col int) Token {
	return Token{Type: tokenType, Literal: string(ch), Line: line, Column: col}
}

func LookupIdent(ident string) TokenType {
	if tok, ok := keywords[strings.ToUpper(ident)]; ok {
		return tok
	}
	return IDENTIFIER
}

func isLetter(ch byte) bool {
	return 'a' <= ch && ch <= 'z' || 'A' <= ch && ch <= 'Z' || ch == '_'
}

func isDigit(ch byte) bool {
	return '0' <= ch && ch <= '9'
}

// Helper to tokenize entire string at once
func Tokenize(input string) ([]Token, error) {
	l := New(input)
	var tokens []Token
	for {
		tok := l.NextToken()
		if tok.Type == EOF {
			break
		}
		if tok.Type == ILLEGAL {
			return nil, fmt.Errorf("illegal token at line %d, col %d: %s", tok.Line, tok.Column, tok.Literal)
		}
		tokens = append(tokens, tok)
	}
	return tokens, nil
}
