package parser

import (
	"fmt"
	"strconv"

	"github.com/leengari/simpledb/internal/parser/ast"
	"github.com/leengari/simpledb/internal/parser/lexer"
)

type Parser struct {
	tokens  []lexer.Token
	curPos  int
	curTok  lexer.Token
	peekTok lexer.Token
}

func New(tokens []lexer.Token) *Parser {
	p := &Parser{tokens: tokens, curPos: 0}
	// Read two tokens to set curTok and peekTok
	p.nextToken()
	p.nextToken()
	return p
}

// ParseString tokenizes and parses a single statement
func ParseString(input string) (ast.Statement, error) {
	tokens, err := lexer.Tokenize(input)
	if err != nil {
		return nil, fmt.Errorf("lexer error: %w", err)
	}
	return New(tokens).Parse()
}

func (p *Parser) nextToken() {
	p.curTok = p.peekTok
	if p.curPos < len(p.tokens) {
		p.peekTok = p.tokens[p.curPos]
		p.curPos++
	} else {
		p.peekTok = lexer.Token{Type: lexer.EOF}
	}
}

func (p *Parser) Parse() (ast.Statement, error) {
	var (
		stmt ast.Statement
		err  error
	)

	switch p.curTok.Type {
	case lexer.SELECT:
		stmt, err = p.parseSelect()
	case lexer.INSERT:
		stmt, err = p.parseInsert()
	case lexer.CREATE:
		stmt, err = p.parseCreate()
	case lexer.DROP:
		stmt, err = p.parseDrop()
	case lexer.USE:
		stmt, err = p.parseUse()
	case lexer.SHOW:
		stmt, err = p.parseShow()
	case lexer.DESCRIBE:
		stmt, err = p.parseDescribe()
	case lexer.EOF:
		return nil, fmt.Errorf("empty statement")
	default:
		return nil, fmt.Errorf("unexpected token %q at start of statement", p.curTok.Literal)
	}
	if err != nil {
		return nil, err
	}

	// Semicolon (Optional)
	if p.curTok.Type == lexer.SEMICOLON {
		p.nextToken()
	}
	if p.curTok.Type != lexer.EOF {
		return nil, fmt.Errorf("unexpected token %q after statement", p.curTok.Literal)
	}

	return stmt, nil
}

func (p *Parser) parseSelect() (*ast.SelectStatement, error) {
	stmt := &ast.SelectStatement{}

	// SELECT
	p.nextToken()

	// COUNT(*) or field list
	if p.curTok.Type == lexer.COUNT {
		p.nextToken()
		for _, want := range []lexer.TokenType{lexer.PAREN_OPEN, lexer.ASTERISK, lexer.PAREN_CLOSE} {
			if p.curTok.Type != want {
				return nil, fmt.Errorf("expected COUNT(*), got %s", p.curTok.Literal)
			}
			p.nextToken()
		}
		stmt.Count = true
	} else {
		fields, err := p.parseIdentifierList()
		if err != nil {
			return nil, err
		}
		stmt.Fields = fields
	}

	// FROM
	if p.curTok.Type != lexer.FROM {
		return nil, fmt.Errorf("expected FROM, got %s", p.curTok.Literal)
	}
	p.nextToken()

	// Table Name
	name, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	stmt.TableName = name

	// WHERE (Optional)
	if p.curTok.Type == lexer.WHERE {
		p.nextToken()
		where, err := p.parseConditions()
		if err != nil {
			return nil, err
		}
		stmt.Where = where
	}

	// ORDER BY (Optional)
	if p.curTok.Type == lexer.ORDER {
		p.nextToken()
		if p.curTok.Type != lexer.BY {
			return nil, fmt.Errorf("expected BY after ORDER, got %s", p.curTok.Literal)
		}
		p.nextToken()

		col, err := p.parseIdentifier("column name")
		if err != nil {
			return nil, err
		}
		stmt.OrderBy = &ast.OrderBy{Column: col}

		switch p.curTok.Type {
		case lexer.ASC:
			p.nextToken()
		case lexer.DESC:
			stmt.OrderBy.Desc = true
			p.nextToken()
		}
	}

	return stmt, nil
}

func (p *Parser) parseInsert() (*ast.InsertStatement, error) {
	stmt := &ast.InsertStatement{}

	// INSERT
	p.nextToken()

	// INTO
	if p.curTok.Type != lexer.INTO {
		return nil, fmt.Errorf("expected INTO, got %s", p.curTok.Literal)
	}
	p.nextToken()

	// Table Name
	name, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	stmt.TableName = name

	// VALUES
	if p.curTok.Type != lexer.VALUES {
		return nil, fmt.Errorf("expected VALUES, got %s", p.curTok.Literal)
	}
	p.nextToken()

	// (
	if p.curTok.Type != lexer.PAREN_OPEN {
		return nil, fmt.Errorf("expected (, got %s", p.curTok.Literal)
	}
	p.nextToken()

	// Parse Values List
	for {
		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		stmt.Values = append(stmt.Values, lit)

		if p.curTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
	}

	if p.curTok.Type != lexer.PAREN_CLOSE {
		return nil, fmt.Errorf("expected ), got %s", p.curTok.Literal)
	}
	p.nextToken()

	return stmt, nil
}

func (p *Parser) parseCreate() (ast.Statement, error) {
	// CREATE
	p.nextToken()

	switch p.curTok.Type {
	case lexer.DATABASE:
		p.nextToken()
		name, err := p.parseIdentifier("database name")
		if err != nil {
			return nil, err
		}
		return &ast.CreateDatabaseStatement{Name: name.Value}, nil
	case lexer.TABLE:
		p.nextToken()
		return p.parseCreateTable()
	default:
		return nil, fmt.Errorf("expected DATABASE or TABLE after CREATE, got %s", p.curTok.Literal)
	}
}

func (p *Parser) parseCreateTable() (*ast.CreateTableStatement, error) {
	name, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	stmt := &ast.CreateTableStatement{TableName: name}

	if p.curTok.Type != lexer.PAREN_OPEN {
		return nil, fmt.Errorf("expected ( after table name, got %s", p.curTok.Literal)
	}
	p.nextToken()

	for {
		colName, err := p.parseIdentifier("column name")
		if err != nil {
			return nil, err
		}
		if p.curTok.Type != lexer.IDENTIFIER {
			return nil, fmt.Errorf("expected type for column %s, got %s", colName.Value, p.curTok.Literal)
		}
		stmt.Columns = append(stmt.Columns, &ast.ColumnDefinition{Name: colName, Type: p.curTok.Literal})
		p.nextToken()

		if p.curTok.Type != lexer.COMMA {
			break
		}
		p.nextToken()
	}

	if p.curTok.Type != lexer.PAREN_CLOSE {
		return nil, fmt.Errorf("expected ) after column definitions, got %s", p.curTok.Literal)
	}
	p.nextToken()

	return stmt, nil
}

func (p *Parser) parseDrop() (*ast.DropDatabaseStatement, error) {
	// DROP
	p.nextToken()

	if p.curTok.Type != lexer.DATABASE {
		return nil, fmt.Errorf("expected DATABASE after DROP, got %s", p.curTok.Literal)
	}
	p.nextToken()

	name, err := p.parseIdentifier("database name")
	if err != nil {
		return nil, err
	}
	return &ast.DropDatabaseStatement{Name: name.Value}, nil
}

func (p *Parser) parseUse() (*ast.UseDatabaseStatement, error) {
	// USE
	p.nextToken()

	name, err := p.parseIdentifier("database name")
	if err != nil {
		return nil, err
	}
	return &ast.UseDatabaseStatement{Name: name.Value}, nil
}

func (p *Parser) parseShow() (*ast.ShowStatement, error) {
	// SHOW
	p.nextToken()

	switch p.curTok.Type {
	case lexer.TABLES:
		p.nextToken()
		return &ast.ShowStatement{}, nil
	case lexer.DATABASES:
		p.nextToken()
		return &ast.ShowStatement{Databases: true}, nil
	default:
		return nil, fmt.Errorf("expected TABLES or DATABASES after SHOW, got %s", p.curTok.Literal)
	}
}

func (p *Parser) parseDescribe() (*ast.DescribeStatement, error) {
	// DESCRIBE
	p.nextToken()

	name, err := p.parseIdentifier("table name")
	if err != nil {
		return nil, err
	}
	return &ast.DescribeStatement{TableName: name}, nil
}

func (p *Parser) parseIdentifier(what string) (*ast.Identifier, error) {
	if p.curTok.Type != lexer.IDENTIFIER {
		return nil, fmt.Errorf("expected %s, got %s", what, p.curTok.Literal)
	}
	ident := &ast.Identifier{TokenLiteralValue: p.curTok.Literal, Value: p.curTok.Literal}
	p.nextToken()
	return ident, nil
}

func (p *Parser) parseIdentifierList() ([]*ast.Identifier, error) {
	var identifiers []*ast.Identifier

	// Handle first identifier or *
	if p.curTok.Type == lexer.ASTERISK {
		identifiers = append(identifiers, &ast.Identifier{TokenLiteralValue: "*", Value: "*"})
		p.nextToken()
		return identifiers, nil
	}

	ident, err := p.parseIdentifier("column name")
	if err != nil {
		return nil, err
	}
	identifiers = append(identifiers, ident)

	for p.curTok.Type == lexer.COMMA {
		p.nextToken()
		ident, err := p.parseIdentifier("column name after comma")
		if err != nil {
			return nil, err
		}
		identifiers = append(identifiers, ident)
	}

	return identifiers, nil
}

// parseConditions reads `col = value [OR col = value ...]`.
// Rows match when any condition holds, so AND is rejected.
func (p *Parser) parseConditions() ([]*ast.Condition, error) {
	var conds []*ast.Condition

	for {
		col, err := p.parseIdentifier("column name")
		if err != nil {
			return nil, err
		}
		if p.curTok.Type != lexer.EQUALS {
			return nil, fmt.Errorf("expected = after %s, got %s", col.Value, p.curTok.Literal)
		}
		p.nextToken()

		lit, err := p.parseLiteral()
		if err != nil {
			return nil, err
		}
		conds = append(conds, &ast.Condition{Column: col, Value: lit})

		switch p.curTok.Type {
		case lexer.OR:
			p.nextToken()
		case lexer.AND:
			return nil, fmt.Errorf("AND is not supported: conditions are OR-joined")
		default:
			return conds, nil
		}
	}
}

func (p *Parser) parseLiteral() (*ast.Literal, error) {
	switch p.curTok.Type {
	case lexer.STRING:
		val := p.curTok.Literal
		p.nextToken()
		return &ast.Literal{TokenLiteralValue: val, Value: val, Kind: ast.LiteralString}, nil
	case lexer.NUMBER:
		valStr := p.curTok.Literal
		p.nextToken()
		// Try int
		if i, err := strconv.ParseInt(valStr, 10, 64); err == nil {
			return &ast.Literal{TokenLiteralValue: valStr, Value: i, Kind: ast.LiteralInt}, nil
		}
		// Try float
		if f, err := strconv.ParseFloat(valStr, 64); err == nil {
			return &ast.Literal{TokenLiteralValue: valStr, Value: f, Kind: ast.LiteralFloat}, nil
		}
		return nil, fmt.Errorf("invalid number: %s", valStr)
	default:
		return nil, fmt.Errorf("expected a string or number, got %s", p.curTok.Literal)
	}
}
